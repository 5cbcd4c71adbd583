package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"artisanlink/internal/db"
	"artisanlink/internal/logger"
	"artisanlink/internal/search"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ListOptions drives Search. Inactive products are hidden from the public
// catalog and shown in the back-office.
type ListOptions struct {
	Filters         search.Filters
	PageSize        int
	IncludeInactive bool
}

type Repository interface {
	Search(ctx context.Context, opts ListOptions) ([]*Product, int, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, input CreateInput, slug string) (string, error)
	Update(ctx context.Context, id string, input UpdateInput, slug *string) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const effectivePriceExpr = "COALESCE(NULLIF(p.discount_price, 0), p.price)"

const selectProduct = `
	SELECT
		p.id,
		p.artisan_id,
		p.category_id,
		p.subcategory_id,
		p.name,
		p.slug,
		p.description,
		p.price,
		p.discount_price,
		p.stock,
		p.images,
		p.variations,
		p.is_featured,
		p.is_active,
		p.created_at,
		p.updated_at,
		a.name,
		a.slug,
		c.name,
		c.slug,
		COALESCE(rv.avg_rating, 0),
		COALESCE(rv.review_count, 0)`

const fromProduct = `
	FROM products p
	JOIN artisans a ON a.id = p.artisan_id
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN (
		SELECT product_id, AVG(rating)::float8 AS avg_rating, COUNT(*) AS review_count
		FROM reviews
		GROUP BY product_id
	) rv ON rv.product_id = p.id`

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner, extra ...any) (Row, error) {
	var r Row
	dest := []any{
		&r.ID,
		&r.ArtisanID,
		&r.CategoryID,
		&r.SubcategoryID,
		&r.Name,
		&r.Slug,
		&r.Description,
		&r.Price,
		&r.DiscountPrice,
		&r.Stock,
		&r.Images,
		&r.Variations,
		&r.IsFeatured,
		&r.IsActive,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.ArtisanName,
		&r.ArtisanSlug,
		&r.CategoryName,
		&r.CategorySlug,
		&r.Rating,
		&r.ReviewCount,
	}
	err := s.Scan(append(dest, extra...)...)
	return r, err
}

// buildSearchWhere translates filters into a WHERE clause and its args.
func buildSearchWhere(f search.Filters, includeInactive bool) (string, []any) {
	where := []string{}
	args := []any{}

	if !includeInactive {
		where = append(where, "p.is_active = TRUE")
	}

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", n, n))
	}

	// Facet ids come from the URL. Ids that are not UUIDs match nothing.
	anyOf := func(col string, ids []string) {
		if len(ids) == 0 {
			return
		}
		valid := validUUIDs(ids)
		if len(valid) == 0 {
			where = append(where, "FALSE")
			return
		}
		args = append(args, pq.Array(valid))
		where = append(where, fmt.Sprintf("%s = ANY($%d)", col, len(args)))
	}
	anyOf("p.category_id", f.Categories)
	anyOf("p.subcategory_id", f.Subcategories)
	anyOf("p.artisan_id", f.Artisans)

	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		where = append(where, fmt.Sprintf("%s >= $%d", effectivePriceExpr, len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		where = append(where, fmt.Sprintf("%s <= $%d", effectivePriceExpr, len(args)))
	}

	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(id); err == nil {
			out = append(out, u.String())
		}
	}
	return out
}

func orderBy(s search.Sort) string {
	switch s {
	case search.SortPriceAsc:
		return " ORDER BY " + effectivePriceExpr + " ASC, p.id ASC"
	case search.SortPriceDesc:
		return " ORDER BY " + effectivePriceExpr + " DESC, p.id ASC"
	case search.SortNewest:
		return " ORDER BY p.created_at DESC, p.id ASC"
	case search.SortRating:
		return " ORDER BY COALESCE(rv.avg_rating, 0) DESC, p.id ASC"
	default:
		return " ORDER BY p.is_featured DESC, p.created_at DESC, p.id ASC"
	}
}

func (r *repository) Search(ctx context.Context, opts ListOptions) ([]*Product, int, error) {
	f := opts.Filters.Normalize()
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "SearchProducts"),
		zap.Int("page", f.Page),
		zap.Int("page_size", pageSize),
	)

	// ---------- BASE QUERY ----------
	where, args := buildSearchWhere(f, opts.IncludeInactive)
	query := selectProduct + ",\n\t\tCOUNT(*) OVER() AS total_count" + fromProduct + where + orderBy(f.Sort)

	// ---------- PAGINATION ----------
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, (f.Page-1)*pageSize)

	log.Debug("executing product search", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("product search query failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	products := []*Product{}
	total := 0
	for rows.Next() {
		row, err := scanRow(rows, &total)
		if err != nil {
			log.Error("product row scan failed", zap.Error(err))
			return nil, 0, err
		}
		products = append(products, ToDisplayModel(row))
	}
	if err := rows.Err(); err != nil {
		log.Error("product rows iteration failed", zap.Error(err))
		return nil, 0, err
	}

	return products, total, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	row, err := scanRow(r.db.QueryRowContext(ctx, selectProduct+fromProduct+" WHERE p.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get product",
			zap.String("layer", "repository"),
			zap.String("product_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	return ToDisplayModel(row), nil
}

func (r *repository) Create(ctx context.Context, input CreateInput, slug string) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateProduct"),
	)

	variations, err := marshalVariations(input.Variations)
	if err != nil {
		return "", err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	var id string
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO products (
			artisan_id, category_id, subcategory_id, name, slug, description,
			price, discount_price, stock, images, variations, is_featured, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`,
		input.ArtisanID,
		input.CategoryID,
		input.SubcategoryID,
		input.Name,
		slug,
		input.Description,
		input.Price,
		input.DiscountPrice,
		input.Stock,
		pq.Array(input.Images),
		variations,
		input.IsFeatured,
		active,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return "", ErrSlugExists
		}
		log.Error("failed to insert product", zap.Error(err))
		return "", err
	}

	log.Info("product created", zap.String("product_id", id))
	return id, nil
}

func (r *repository) Update(ctx context.Context, id string, input UpdateInput, slug *string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateProduct"),
		zap.String("product_id", id),
	)

	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if input.Name != nil {
		add("name", *input.Name)
	}
	if slug != nil {
		add("slug", *slug)
	}
	if input.CategoryID != nil {
		add("category_id", *input.CategoryID)
	}
	if input.SubcategoryID != nil {
		add("subcategory_id", *input.SubcategoryID)
	}
	if input.Description != nil {
		add("description", *input.Description)
	}
	if input.Price != nil {
		add("price", *input.Price)
	}
	if input.DiscountPrice != nil {
		add("discount_price", *input.DiscountPrice)
	}
	if input.Stock != nil {
		add("stock", *input.Stock)
	}
	if input.Images != nil {
		add("images", pq.Array(*input.Images))
	}
	if input.Variations != nil {
		v, err := marshalVariations(*input.Variations)
		if err != nil {
			return err
		}
		add("variations", v)
	}
	if input.IsFeatured != nil {
		add("is_featured", *input.IsFeatured)
	}
	if input.IsActive != nil {
		add("is_active", *input.IsActive)
	}

	if len(set) == 0 {
		return ErrNoChanges
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE products SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(set, ", "), len(args),
	)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrSlugExists
		}
		log.Error("failed to update product", zap.Error(err))
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}

	log.Info("product updated")
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to delete product",
			zap.String("layer", "repository"),
			zap.String("product_id", id),
			zap.Error(err),
		)
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func marshalVariations(v map[string][]string) ([]byte, error) {
	if len(v) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(v)
}
