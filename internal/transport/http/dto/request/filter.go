package request

type CreateFilterRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Parent string `json:"parent"`
	Color  string `json:"color"`
}

type UpdateFilterRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=200"`
	Slug   *string `json:"slug"`
	Parent *string `json:"parent"`
	Color  *string `json:"color"`
}

type FilterParentRequest struct {
	Parent string `json:"parent"`
}

type FilterColorRequest struct {
	Color string `json:"color"`
}

type FilterSlugRequest struct {
	Slug string `json:"slug" validate:"required"`
}

type FilterOrderRequest struct {
	IDs []string `json:"ids" validate:"required"`
}
