package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must be positive and discount lower than price")
	ErrNoChanges       = errors.New("no product fields to update")
	ErrSlugExists      = errors.New("product slug already exists")
)
