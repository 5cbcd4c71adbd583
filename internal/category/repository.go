package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"artisanlink/internal/db"
	"artisanlink/internal/logger"
	"artisanlink/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	GetCategories(ctx context.Context, params ListParams) ([]*Category, int64, error)
	GetSubcategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string][]*Subcategory, error)
	GetSubcategories(ctx context.Context, categoryID string, params ListParams) ([]*Subcategory, int64, error)
	AddCategory(ctx context.Context, input CategoryInput, slug string) (*Category, error)
	UpdateCategory(ctx context.Context, id string, input CategoryInput, slug string) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error
	AddSubcategory(ctx context.Context, input SubcategoryInput, slug string) (*Subcategory, error)
	UpdateSubcategory(ctx context.Context, id string, input SubcategoryInput, slug string) (*Subcategory, error)
	DeleteSubcategory(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func pagination(params ListParams) (limit, page, offset int32) {
	limit, page = 50, 1
	if params.Limit != nil && *params.Limit > 0 {
		limit = *params.Limit
	}
	if params.Page != nil && *params.Page > 0 {
		page = *params.Page
	}
	return limit, page, (page - 1) * limit
}

func (r *repository) GetCategories(ctx context.Context, params ListParams) ([]*Category, int64, error) {
	limit, page, offset := pagination(params)

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("filter", utils.PtrString(params.Filter)),
		zap.Int32("limit", limit),
		zap.Int32("page", page),
	)

	// ---------- BASE QUERY ----------
	query := `
		SELECT
			c.id,
			c.name,
			c.slug,
			c.description,
			COUNT(*) OVER() AS total_count
		FROM categories c
	`
	args := []any{}

	// ---------- FILTER ----------
	if params.Filter != nil && *params.Filter != "" {
		query += fmt.Sprintf(" WHERE c.name ILIKE $%d", len(args)+1)
		args = append(args, "%"+*params.Filter+"%")
	}

	// ---------- ORDER & PAGINATION ----------
	query += " ORDER BY c.name ASC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed GetCategories", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	categories := []*Category{}
	var total int64
	for rows.Next() {
		c := &Category{Subcategories: []*Subcategory{}}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &total); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, 0, err
	}

	return categories, total, nil
}

// GetSubcategoriesByIDs loads the subcategories of several categories in
// one query, keyed by category id.
func (r *repository) GetSubcategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string][]*Subcategory, error) {
	out := make(map[string][]*Subcategory, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category_id, name, slug
		FROM subcategories
		WHERE category_id = ANY($1)
		ORDER BY name ASC
	`, pq.Array(categoryIDs))
	if err != nil {
		return nil, fmt.Errorf("query subcategories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s := &Subcategory{}
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		out[s.CategoryID] = append(out[s.CategoryID], s)
	}
	return out, rows.Err()
}

func (r *repository) GetSubcategories(ctx context.Context, categoryID string, params ListParams) ([]*Subcategory, int64, error) {
	if categoryID == "" {
		return nil, 0, ErrCategoryNotFound
	}
	limit, _, offset := pagination(params)

	query := `SELECT s.id, s.category_id, s.name, s.slug, COUNT(*) OVER() FROM subcategories s`
	args := []any{categoryID}
	where := []string{"s.category_id = $1"}

	if params.Filter != nil && *params.Filter != "" {
		where = append(where, fmt.Sprintf("s.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+*params.Filter+"%")
	}

	query += " WHERE " + strings.Join(where, " AND ")
	query += " ORDER BY s.name ASC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	subcategories := make([]*Subcategory, 0, limit)
	var total int64
	for rows.Next() {
		s := &Subcategory{}
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug, &total); err != nil {
			return nil, 0, fmt.Errorf("scan failed: %w", err)
		}
		subcategories = append(subcategories, s)
	}
	return subcategories, total, rows.Err()
}

func (r *repository) AddCategory(ctx context.Context, input CategoryInput, slug string) (*Category, error) {
	c := &Category{Subcategories: []*Subcategory{}}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, slug, description
	`, input.Name, slug, input.Description).Scan(&c.ID, &c.Name, &c.Slug, &c.Description)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("add category failed: %w", err)
	}
	return c, nil
}

func (r *repository) UpdateCategory(ctx context.Context, id string, input CategoryInput, slug string) (*Category, error) {
	c := &Category{Subcategories: []*Subcategory{}}
	err := r.db.QueryRowContext(ctx, `
		UPDATE categories
		SET name = $1, slug = $2, description = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING id, name, slug, description
	`, input.Name, slug, input.Description, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("update category failed: %w", err)
	}
	return c, nil
}

func (r *repository) DeleteCategory(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "categories", id, ErrCategoryNotFound)
}

func (r *repository) AddSubcategory(ctx context.Context, input SubcategoryInput, slug string) (*Subcategory, error) {
	s := &Subcategory{}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO subcategories (category_id, name, slug)
		VALUES ($1, $2, $3)
		RETURNING id, category_id, name, slug
	`, input.CategoryID, input.Name, slug).Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, ErrSlugExists
		case db.IsForeignKeyViolation(err):
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("add subcategory failed: %w", err)
	}
	return s, nil
}

func (r *repository) UpdateSubcategory(ctx context.Context, id string, input SubcategoryInput, slug string) (*Subcategory, error) {
	s := &Subcategory{}
	err := r.db.QueryRowContext(ctx, `
		UPDATE subcategories
		SET category_id = $1, name = $2, slug = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING id, category_id, name, slug
	`, input.CategoryID, input.Name, slug, id).Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubcategoryNotFound
	}
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, ErrSlugExists
		case db.IsForeignKeyViolation(err):
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update subcategory failed: %w", err)
	}
	return s, nil
}

func (r *repository) DeleteSubcategory(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "subcategories", id, ErrSubcategoryNotFound)
}

// deleteByID only receives table names from this file.
func (r *repository) deleteByID(ctx context.Context, table, id string, notFound error) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
