package services

import (
	"sort"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/domain/schema"

	"github.com/samber/lo"
)

// Классы колонок старых шаблонов по числу колонок 1..6.
var (
	largeColumnClasses = map[int]string{
		1: "col-lg-12", 2: "col-lg-6", 3: "col-lg-4", 4: "col-lg-3", 5: "col-lg-5ths", 6: "col-lg-2",
	}
	desktopColumnClasses = map[int]string{
		1: "col-md-12", 2: "col-md-6", 3: "col-md-4", 4: "col-md-3", 5: "col-md-5ths", 6: "col-md-2",
	}
	tabletColumnClasses = map[int]string{
		1: "col-sm-12", 2: "col-sm-6", 3: "col-sm-4", 4: "col-sm-3", 5: "col-sm-5ths", 6: "col-sm-2",
	}
)

const (
	fallbackLargeClass   = "col-lg-4"
	fallbackDesktopClass = "col-md-4"
	fallbackTabletClass  = "col-sm-6"
	phoneClass           = "col-xs-12"
)

var lightboxCodes = map[string]int{
	"none":      0,
	"built-in":  4,
	"bootstrap": 5,
}

const fallbackLightboxCode = 4

var sortByTitle = map[string]string{
	"title_asc":  "asc",
	"title_desc": "desc",
	"random":     "random",
}

// ColumnClass класс колонки для точки перелома; вне 1..6 возвращается запасной класс.
func ColumnClass(table map[int]string, fallback string, columns int) string {
	if c, ok := table[columns]; ok {
		return c
	}
	return fallback
}

func LargeColumnClass(columns int) string {
	return ColumnClass(largeColumnClasses, fallbackLargeClass, columns)
}

func LightboxCode(lightbox string) int {
	if code, ok := lightboxCodes[lightbox]; ok {
		return code
	}
	return fallbackLightboxCode
}

// Build строит запись старого формата из текущих настроек и изображений.
// filters нужен для сопоставления slug-ов фильтров с их id.
func Build(galleryID int64, settings map[string]any, images []models.Image, filters []models.Filter) *models.LegacyRecord {
	st := reader(settings)

	rec := &models.LegacyRecord{
		GalleryID: galleryID,

		ColLargeDesktops: ColumnClass(largeColumnClasses, fallbackLargeClass, st.rawInt("columns_lg")),
		ColDesktops:      ColumnClass(desktopColumnClasses, fallbackDesktopClass, st.rawInt("columns_md")),
		ColTablets:       ColumnClass(tabletColumnClasses, fallbackTabletClass, st.rawInt("columns_sm")),
		ColPhones:        phoneClass,

		LightBox:         LightboxCode(st.str("lightbox")),
		LightboxTitle:    st.flag("lightbox_title"),
		LightboxDesc:     st.flag("lightbox_description"),
		ThumbnailQuality: st.str("image_size"),
		TitleThumb:       st.flag("show_title"),
		ImageHoverEffect: st.str("hover_effect"),
		Gutter:           st.num("gap"),
		URLTarget:        st.str("url_target"),
		SortByTitle:      lo.ValueOr(sortByTitle, st.str("sort_order"), "none"),
		LazyLoad:         st.flag("lazy_load"),
		HideFilters:      1 - st.flag("filters_enabled"),
		FilterPosition:   st.str("filter_position"),
		ShowAllFilter:    st.flag("show_all_button"),
		AllText:          st.str("all_button_text"),
		FilterBg:         st.str("filter_active_color"),
		FilterTitleColor: st.str("filter_text_color"),
		SearchBox:        st.flag("search_enabled"),
		SearchText:       st.str("search_placeholder"),
		CustomCSS:        st.str("custom_css"),

		ImageIDs:    make([]int64, 0, len(images)),
		ImageTitle:  make([]string, 0, len(images)),
		ImageDesc:   make([]string, 0, len(images)),
		ImageLink:   make([]string, 0, len(images)),
		SlideType:   make([]string, 0, len(images)),
		SlideAlt:    make([]string, 0, len(images)),
		FilterImage: map[string][]int64{},
	}
	if rec.Gutter == 0 {
		rec.NoSpacing = 1
	}

	resolve := filterResolver(filters)

	for _, img := range images {
		rec.ImageIDs = append(rec.ImageIDs, img.ID)
		rec.ImageTitle = append(rec.ImageTitle, img.Title)
		rec.ImageDesc = append(rec.ImageDesc, img.Description)
		rec.ImageLink = append(rec.ImageLink, img.Link)
		rec.SlideType = append(rec.SlideType, string(img.Type))
		rec.SlideAlt = append(rec.SlideAlt, img.Alt)

		for _, f := range img.Filters {
			id := resolve(f)
			if !lo.Contains(rec.FilterImage[id], img.ID) {
				rec.FilterImage[id] = append(rec.FilterImage[id], img.ID)
			}
		}
	}

	return rec
}

// filterResolver сводит slug и id фильтра к id; неизвестное значение остаётся как есть.
func filterResolver(filters []models.Filter) func(string) string {
	ids := make(map[string]bool, len(filters))
	bySlug := make(map[string]string, len(filters))
	for _, f := range filters {
		ids[f.ID] = true
		if f.Slug != "" {
			bySlug[f.Slug] = f.ID
		}
	}

	return func(v string) string {
		if ids[v] {
			return v
		}
		if id, ok := bySlug[v]; ok {
			return id
		}
		return v
	}
}

// Reverse восстанавливает текущий формат из записи старого формата.
func Reverse(rec *models.LegacyRecord, filters []models.Filter) (map[string]any, []models.Image) {
	settings := schema.Defaults()

	set := func(key string, raw any) {
		if v, err := schema.Coerce(key, raw); err == nil {
			settings[key] = v
		}
	}

	if n, ok := columnsFor(largeColumnClasses, rec.ColLargeDesktops); ok {
		settings["columns_lg"] = n
	}
	if n, ok := columnsFor(desktopColumnClasses, rec.ColDesktops); ok {
		settings["columns_md"] = n
	}
	if n, ok := columnsFor(tabletColumnClasses, rec.ColTablets); ok {
		settings["columns_sm"] = n
	}

	settings["lightbox"] = lightboxName(rec.LightBox)
	settings["lightbox_title"] = rec.LightboxTitle != 0
	settings["lightbox_description"] = rec.LightboxDesc != 0
	settings["show_title"] = rec.TitleThumb != 0
	settings["lazy_load"] = rec.LazyLoad != 0
	settings["filters_enabled"] = rec.HideFilters == 0
	settings["show_all_button"] = rec.ShowAllFilter != 0
	settings["search_enabled"] = rec.SearchBox != 0

	if rec.NoSpacing != 0 {
		settings["gap"] = 0
	} else if rec.Gutter > 0 {
		set("gap", rec.Gutter)
	}

	set("image_size", rec.ThumbnailQuality)
	set("hover_effect", rec.ImageHoverEffect)
	set("url_target", rec.URLTarget)
	set("filter_position", rec.FilterPosition)
	set("filter_active_color", rec.FilterBg)
	set("filter_text_color", rec.FilterTitleColor)
	if rec.AllText != "" {
		set("all_button_text", rec.AllText)
	}
	if rec.SearchText != "" {
		set("search_placeholder", rec.SearchText)
	}
	set("custom_css", rec.CustomCSS)

	switch rec.SortByTitle {
	case "asc":
		settings["sort_order"] = "title_asc"
	case "desc":
		settings["sort_order"] = "title_desc"
	case "random":
		settings["sort_order"] = "random"
	}

	order := filterKeyOrder(rec.FilterImage, filters)

	images := make([]models.Image, 0, len(rec.ImageIDs))
	seen := make(map[int64]bool, len(rec.ImageIDs))
	for i, id := range rec.ImageIDs {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true

		img := models.Image{
			ID:          id,
			Title:       at(rec.ImageTitle, i),
			Description: at(rec.ImageDesc, i),
			Link:        at(rec.ImageLink, i),
			Type:        models.ImageType(at(rec.SlideType, i)),
			Alt:         at(rec.SlideAlt, i),
			Filters:     []string{},
		}

		for _, key := range order {
			if lo.Contains(rec.FilterImage[key], id) {
				img.Filters = append(img.Filters, key)
			}
		}

		images = append(images, img.Normalize())
	}

	return settings, images
}

// сначала фильтры в порядке реестра, затем прочие ключи по алфавиту
func filterKeyOrder(index map[string][]int64, filters []models.Filter) []string {
	order := make([]string, 0, len(index))
	for _, f := range filters {
		if _, ok := index[f.ID]; ok {
			order = append(order, f.ID)
		}
	}

	var rest []string
	for key := range index {
		if !lo.Contains(order, key) {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)

	return append(order, rest...)
}

func columnsFor(table map[int]string, class string) (int, bool) {
	for n, c := range table {
		if c == class {
			return n, true
		}
	}
	return 0, false
}

func lightboxName(code int) string {
	for name, c := range lightboxCodes {
		if c == code {
			return name
		}
	}
	return "built-in"
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

type settingsReader map[string]any

func reader(settings map[string]any) settingsReader {
	return settingsReader(settings)
}

func (r settingsReader) value(key string) any {
	if v, ok := r[key]; ok {
		return v
	}
	if f, ok := schema.Lookup(key); ok {
		return f.Default
	}
	return nil
}

// rawInt без ограничения диапазоном, чтобы значения вне 1..6 получали запасной класс
func (r settingsReader) rawInt(key string) int {
	n, ok := schema.ToInt(r.value(key))
	if !ok {
		f, _ := schema.Lookup(key)
		n, _ = f.Default.(int)
	}
	return n
}

func (r settingsReader) num(key string) int {
	v, _ := schema.Coerce(key, r.value(key))
	n, _ := v.(int)
	return n
}

func (r settingsReader) str(key string) string {
	v, _ := schema.Coerce(key, r.value(key))
	s, _ := v.(string)
	return s
}

func (r settingsReader) flag(key string) int {
	if schema.ToBool(r.value(key)) {
		return 1
	}
	return 0
}
