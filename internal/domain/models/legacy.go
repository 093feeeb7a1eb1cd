package models

// LegacyRecord настройки галереи в старом формате, который читают
// прежние шаблоны вывода. Всегда пересобирается целиком из текущих данных.
type LegacyRecord struct {
	GalleryID int64 `json:"gallery_id"`

	ColLargeDesktops string `json:"col_large_desktops"`
	ColDesktops      string `json:"col_desktops"`
	ColTablets       string `json:"col_tablets"`
	ColPhones        string `json:"col_phones"`

	LightBox         int    `json:"light_box"`
	LightboxTitle    int    `json:"lightbox_title"`
	LightboxDesc     int    `json:"lightbox_desc"`
	ThumbnailQuality string `json:"thumbnail_quality"`
	TitleThumb       int    `json:"title_thumb"`
	ImageHoverEffect string `json:"image_hover_effect_type"`
	NoSpacing        int    `json:"no_spacing"`
	Gutter           int    `json:"gutter"`
	URLTarget        string `json:"url_target"`
	SortByTitle      string `json:"sort_by_title"`
	LazyLoad         int    `json:"lazy_load"`
	HideFilters      int    `json:"hide_filters"`
	FilterPosition   string `json:"filter_position"`
	ShowAllFilter    int    `json:"show_all_filter"`
	AllText          string `json:"all_txt"`
	FilterBg         string `json:"filter_bg"`
	FilterTitleColor string `json:"filter_title_color"`
	SearchBox        int    `json:"search_box"`
	SearchText       string `json:"search_txt"`
	CustomCSS        string `json:"custom-css"`

	ImageIDs    []int64            `json:"image-ids"`
	ImageTitle  []string           `json:"image_title"`
	ImageDesc   []string           `json:"image_desc"`
	ImageLink   []string           `json:"image-link"`
	SlideType   []string           `json:"slide-type"`
	SlideAlt    []string           `json:"slide-alt"`
	FilterImage map[string][]int64 `json:"filter-image"`
}

// Empty true, если в записи нет ни изображений, ни сетки.
func (r *LegacyRecord) Empty() bool {
	return r == nil || (len(r.ImageIDs) == 0 && r.ColLargeDesktops == "" && r.ColDesktops == "")
}
