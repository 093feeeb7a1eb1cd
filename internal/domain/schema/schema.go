// Package schema описывает все настройки галереи: тип, значение по умолчанию
// и допустимые значения. По этой таблице приводятся значения при записи.
package schema

// Type тип значения настройки.
type Type string

const (
	TypeBool   Type = "bool"
	TypeInt    Type = "int"
	TypeString Type = "string"
	TypeEnum   Type = "enum"
	TypeColor  Type = "color"
)

// Kind способ очистки строковых настроек.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindURL      Kind = "url"
	KindKey      Kind = "key"
	KindSlug     Kind = "slug"
	KindHexColor Kind = "hex_color"
)

// Field описание одной настройки.
type Field struct {
	Key     string
	Type    Type
	Kind    Kind
	Default any
	Options []string
	Min     int
	Max     int
}

var fields = []Field{
	// Сетка
	enumField("layout_type", "grid", "grid", "masonry", "justified", "packed"),
	intField("columns_lg", 3, 1, 6),
	intField("columns_md", 3, 1, 6),
	intField("columns_sm", 2, 1, 6),
	intField("gap", 15, 0, 100),
	intField("border_radius", 0, 0, 100),
	enumField("image_size", "large", "thumbnail", "medium", "large", "full"),
	intField("thumbnail_width", 300, 0, 4000),
	intField("thumbnail_height", 300, 0, 4000),
	enumField("sort_order", "custom", "custom", "title_asc", "title_desc", "random"),
	boolField("rtl", false),
	boolField("lazy_load", true),
	boolField("preloader", false),
	boolField("shadow", false),

	// Подписи и наведение
	boolField("show_title", true),
	boolField("show_description", false),
	enumField("title_position", "overlay", "overlay", "below", "none"),
	enumField("hover_effect", "fade", "none", "fade", "zoom", "slide-up", "grayscale"),
	boolField("image_hover_zoom", false),
	colorField("overlay_color", "#000000"),
	intField("overlay_opacity", 50, 0, 100),
	colorField("caption_bg_color", "#ffffff"),
	colorField("caption_text_color", "#333333"),
	enumField("animation", "fade", "none", "fade", "scale", "slide"),
	intField("animation_speed", 400, 0, 5000),

	// Лайтбокс
	enumField("lightbox", "built-in", "none", "built-in", "bootstrap"),
	boolField("lightbox_title", true),
	boolField("lightbox_description", false),
	boolField("video_autoplay", false),
	boolField("deep_linking", false),
	textField("deep_link_param", KindKey, "pfg"),

	// Фильтры
	boolField("filters_enabled", true),
	enumField("filter_position", "top", "top", "left", "right"),
	enumField("filter_style", "buttons", "buttons", "pills", "underline", "dropdown"),
	enumField("filter_align", "center", "left", "center", "right"),
	boolField("show_all_button", true),
	textField("all_button_text", KindText, "All"),
	colorField("filter_active_color", "#3498db"),
	colorField("filter_text_color", "#333333"),
	textField("default_filter", KindSlug, ""),
	boolField("multi_level_filters", false),
	enumField("filter_logic", "or", "or", "and"),
	boolField("show_filter_count", false),

	// Ссылки
	enumField("url_target", "_self", "_self", "_blank"),
	boolField("direct_links", false),

	// Поиск и пагинация
	boolField("search_enabled", false),
	textField("search_placeholder", KindText, "Search..."),
	boolField("pagination_enabled", false),
	intField("items_per_page", 12, 1, 500),
	enumField("pagination_type", "numbered", "numbered", "load_more", "infinite"),
	textField("load_more_text", KindText, "Load More"),

	// WooCommerce
	boolField("woocommerce_enabled", false),
	boolField("show_price", true),
	boolField("show_add_to_cart", false),
	textField("add_to_cart_text", KindText, "Add to cart"),
	boolField("show_sale_badge", true),
	textField("shop_url", KindURL, ""),

	// Водяной знак и прочее
	boolField("watermark_enabled", false),
	textField("watermark_text", KindText, ""),
	textField("gallery_class", KindKey, ""),
	textField("custom_css", KindTextarea, ""),
}

var index = func() map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Key] = f
	}
	return m
}()

// Fields возвращает копию таблицы в объявленном порядке.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Lookup ищет описание настройки по ключу.
func Lookup(key string) (Field, bool) {
	f, ok := index[key]
	return f, ok
}

// Defaults возвращает новый map со значениями по умолчанию для всех ключей.
func Defaults() map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Default
	}
	return out
}

// BoolKeys возвращает ключи всех булевых настроек.
func BoolKeys() []string {
	var keys []string
	for _, f := range fields {
		if f.Type == TypeBool {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

func boolField(key string, def bool) Field {
	return Field{Key: key, Type: TypeBool, Default: def}
}

func intField(key string, def, min, max int) Field {
	return Field{Key: key, Type: TypeInt, Default: def, Min: min, Max: max}
}

func enumField(key, def string, options ...string) Field {
	return Field{Key: key, Type: TypeEnum, Default: def, Options: options}
}

func colorField(key, def string) Field {
	return Field{Key: key, Type: TypeColor, Kind: KindHexColor, Default: def}
}

func textField(key string, kind Kind, def string) Field {
	return Field{Key: key, Type: TypeString, Kind: kind, Default: def}
}
