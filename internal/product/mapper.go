package product

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Row is one products row joined with its artisan, category and review
// aggregate, as scanned from the database.
type Row struct {
	ID            string
	ArtisanID     string
	CategoryID    sql.NullString
	SubcategoryID sql.NullString
	Name          string
	Slug          string
	Description   sql.NullString
	Price         decimal.Decimal
	DiscountPrice decimal.NullDecimal
	Stock         int
	Images        pq.StringArray
	Variations    []byte
	IsFeatured    bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     sql.NullTime
	ArtisanName   string
	ArtisanSlug   string
	CategoryName  sql.NullString
	CategorySlug  sql.NullString
	Rating        float64
	ReviewCount   int
}

// ToDisplayModel maps a row to the display model. Undecodable variations
// are dropped rather than failing the whole product.
func ToDisplayModel(r Row) *Product {
	p := &Product{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Price:       r.Price,
		Stock:       r.Stock,
		Images:      []string(r.Images),
		IsFeatured:  r.IsFeatured,
		IsActive:    r.IsActive,
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
		CreatedAt:   r.CreatedAt,
		Artisan: &ArtisanRef{
			ID:   r.ArtisanID,
			Name: r.ArtisanName,
			Slug: r.ArtisanSlug,
		},
	}

	if p.Images == nil {
		p.Images = []string{}
	}
	if r.Description.Valid {
		p.Description = &r.Description.String
	}
	if r.DiscountPrice.Valid {
		d := r.DiscountPrice.Decimal
		p.DiscountPrice = &d
	}
	if r.SubcategoryID.Valid {
		p.SubcategoryID = &r.SubcategoryID.String
	}
	if r.UpdatedAt.Valid {
		p.UpdatedAt = &r.UpdatedAt.Time
	}
	if r.CategoryID.Valid {
		p.Category = &CategoryRef{
			ID:   r.CategoryID.String,
			Name: r.CategoryName.String,
			Slug: r.CategorySlug.String,
		}
	}
	if len(r.Variations) > 0 {
		var v map[string][]string
		if err := json.Unmarshal(r.Variations, &v); err == nil && len(v) > 0 {
			p.Variations = v
		}
	}

	return p
}
