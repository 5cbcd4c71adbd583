package category

type Category struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Slug          string         `json:"slug"`
	Description   *string        `json:"description,omitempty"`
	Subcategories []*Subcategory `json:"subcategories"`
}

type Subcategory struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
}

type CategoryInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=80"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type SubcategoryInput struct {
	CategoryID string `json:"categoryId" validate:"required"`
	Name       string `json:"name" validate:"required,min=2,max=80"`
}

type ListParams struct {
	Filter *string
	Limit  *int32
	Page   *int32
}
