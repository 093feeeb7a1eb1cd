package models

// Filter категория для фильтрации изображений. Parent пустой у фильтров
// верхнего уровня. Order плотный (0..n-1) среди фильтров одного уровня.
type Filter struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent string `json:"parent"`
	Color  string `json:"color"`
	Order  int    `json:"order"`
}

// FilterNode узел дерева фильтров.
type FilterNode struct {
	Filter
	Children []*FilterNode `json:"children"`
}

// FilterUpdate частичное обновление фильтра.
type FilterUpdate struct {
	Name   *string
	Slug   *string
	Parent *string
	Color  *string
}
