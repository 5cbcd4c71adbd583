package product

import (
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToDisplayModel(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Full row", func(t *testing.T) {
		p := ToDisplayModel(Row{
			ID:            "p1",
			ArtisanID:     "a1",
			CategoryID:    sql.NullString{String: "c1", Valid: true},
			SubcategoryID: sql.NullString{String: "s1", Valid: true},
			Name:          "Bol en terre",
			Slug:          "a1-bol-en-terre",
			Description:   sql.NullString{String: "Fait main", Valid: true},
			Price:         decimal.NewFromInt(100),
			DiscountPrice: decimal.NullDecimal{Decimal: decimal.NewFromInt(80), Valid: true},
			Stock:         4,
			Images:        pq.StringArray{"https://img/1.jpg"},
			Variations:    []byte(`{"couleur":["bleu","vert"]}`),
			IsFeatured:    true,
			IsActive:      true,
			CreatedAt:     created,
			ArtisanName:   "Atelier Nour",
			ArtisanSlug:   "atelier-nour",
			CategoryName:  sql.NullString{String: "Poterie", Valid: true},
			CategorySlug:  sql.NullString{String: "poterie", Valid: true},
			Rating:        4.5,
			ReviewCount:   2,
		})

		assert.Equal(t, "p1", p.ID)
		assert.Equal(t, "Fait main", *p.Description)
		assert.True(t, p.DiscountPrice.Equal(decimal.NewFromInt(80)))
		assert.Equal(t, "s1", *p.SubcategoryID)
		assert.Equal(t, &ArtisanRef{ID: "a1", Name: "Atelier Nour", Slug: "atelier-nour"}, p.Artisan)
		assert.Equal(t, &CategoryRef{ID: "c1", Name: "Poterie", Slug: "poterie"}, p.Category)
		assert.Equal(t, map[string][]string{"couleur": {"bleu", "vert"}}, p.Variations)
		assert.Equal(t, []string{"https://img/1.jpg"}, p.Images)
		assert.Nil(t, p.UpdatedAt)
		assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(80)))
	})

	t.Run("Sparse row", func(t *testing.T) {
		p := ToDisplayModel(Row{
			ID:         "p2",
			ArtisanID:  "a1",
			Price:      decimal.NewFromInt(50),
			Variations: []byte(`not json`),
			CreatedAt:  created,
		})

		assert.Nil(t, p.Category)
		assert.Nil(t, p.DiscountPrice)
		assert.Nil(t, p.Variations)
		assert.Equal(t, []string{}, p.Images)
		assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(50)))
	})
}

func TestEffectivePrice_ZeroDiscountIgnored(t *testing.T) {
	zero := decimal.Zero
	p := &Product{Price: decimal.NewFromInt(30), DiscountPrice: &zero}
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(30)))
}
