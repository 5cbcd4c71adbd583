package category

import "errors"

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSubcategoryNotFound = errors.New("subcategory not found")
	ErrSlugExists          = errors.New("category slug already exists")
	ErrCategoryInUse       = errors.New("category still referenced by products")
)
