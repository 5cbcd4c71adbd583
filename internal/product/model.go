package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultPageSize = 12

type ArtisanRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Product is the display model of a catalog entry, expanded with its
// artisan, category and review aggregate.
type Product struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Slug          string              `json:"slug"`
	Description   *string             `json:"description,omitempty"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice *decimal.Decimal    `json:"discountPrice,omitempty"`
	Stock         int                 `json:"stock"`
	Images        []string            `json:"images"`
	Variations    map[string][]string `json:"variations,omitempty"`
	IsFeatured    bool                `json:"isFeatured"`
	IsActive      bool                `json:"isActive"`
	SubcategoryID *string             `json:"subcategoryId,omitempty"`
	Artisan       *ArtisanRef         `json:"artisan,omitempty"`
	Category      *CategoryRef        `json:"category,omitempty"`
	Rating        float64             `json:"rating"`
	ReviewCount   int                 `json:"reviewCount"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     *time.Time          `json:"updatedAt,omitempty"`
}

// EffectivePrice is the discount price when one is set, the list price
// otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.IsPositive() {
		return *p.DiscountPrice
	}
	return p.Price
}

type ListResult struct {
	Items      []*Product `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

type CreateInput struct {
	ArtisanID     string              `json:"artisanId" validate:"required"`
	CategoryID    *string             `json:"categoryId"`
	SubcategoryID *string             `json:"subcategoryId"`
	Name          string              `json:"name" validate:"required,min=2,max=200"`
	Description   *string             `json:"description" validate:"omitempty,max=5000"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice *decimal.Decimal    `json:"discountPrice"`
	Stock         int                 `json:"stock" validate:"gte=0"`
	Images        []string            `json:"images" validate:"dive,url"`
	Variations    map[string][]string `json:"variations"`
	IsFeatured    bool                `json:"isFeatured"`
	IsActive      *bool               `json:"isActive"`
}

// UpdateInput is a partial patch, nil fields are left untouched.
type UpdateInput struct {
	CategoryID    *string              `json:"categoryId"`
	SubcategoryID *string              `json:"subcategoryId"`
	Name          *string              `json:"name" validate:"omitempty,min=2,max=200"`
	Description   *string              `json:"description" validate:"omitempty,max=5000"`
	Price         *decimal.Decimal     `json:"price"`
	DiscountPrice *decimal.Decimal     `json:"discountPrice"`
	Stock         *int                 `json:"stock" validate:"omitempty,gte=0"`
	Images        *[]string            `json:"images" validate:"omitempty,dive,url"`
	Variations    *map[string][]string `json:"variations"`
	IsFeatured    *bool                `json:"isFeatured"`
	IsActive      *bool                `json:"isActive"`
}

func (in UpdateInput) HasChanges() bool {
	return in.CategoryID != nil || in.SubcategoryID != nil || in.Name != nil ||
		in.Description != nil || in.Price != nil || in.DiscountPrice != nil ||
		in.Stock != nil || in.Images != nil || in.Variations != nil ||
		in.IsFeatured != nil || in.IsActive != nil
}
