package artisan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"artisanlink/internal/db"
	"artisanlink/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, query string) ([]*Artisan, error)
	GetByID(ctx context.Context, id string) (*Artisan, error)
	Create(ctx context.Context, input CreateInput, slug string) (*Artisan, error)
	Update(ctx context.Context, id string, input UpdateInput, slug *string) (*Artisan, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const artisanColumns = `id, user_id, name, slug, bio, location, specialty,
		avatar_url, cover_url, website, is_verified, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanArtisan(s scanner) (*Artisan, error) {
	var (
		a      Artisan
		userID sql.NullInt64
	)
	err := s.Scan(&a.ID, &userID, &a.Name, &a.Slug, &a.Bio, &a.Location, &a.Specialty,
		&a.AvatarURL, &a.CoverURL, &a.Website, &a.IsVerified, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		v := uint(userID.Int64)
		a.UserID = &v
	}
	return &a, nil
}

func (r *repository) List(ctx context.Context, query string) ([]*Artisan, error) {
	q := `SELECT ` + artisanColumns + ` FROM artisans`
	args := []any{}
	if query = strings.TrimSpace(query); query != "" {
		q += " WHERE name ILIKE $1 OR location ILIKE $1 OR specialty ILIKE $1"
		args = append(args, "%"+query+"%")
	}
	q += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list artisans", zap.String("layer", "repository"), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := []*Artisan{}
	for rows.Next() {
		a, err := scanArtisan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Artisan, error) {
	a, err := scanArtisan(r.db.QueryRowContext(ctx,
		`SELECT `+artisanColumns+` FROM artisans WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArtisanNotFound
	}
	return a, err
}

func (r *repository) Create(ctx context.Context, input CreateInput, slug string) (*Artisan, error) {
	a, err := scanArtisan(r.db.QueryRowContext(ctx, `
		INSERT INTO artisans (user_id, name, slug, bio, location, specialty, avatar_url, cover_url, website)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+artisanColumns,
		input.UserID, input.Name, slug, input.Bio, input.Location, input.Specialty,
		input.AvatarURL, input.CoverURL, input.Website,
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		logger.FromCtx(ctx).Error("failed to insert artisan",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, err
	}
	return a, nil
}

func (r *repository) Update(ctx context.Context, id string, input UpdateInput, slug *string) (*Artisan, error) {
	cols := input.columns()
	if slug != nil {
		cols["slug"] = slug
	}

	keys := make([]string, 0, len(cols))
	for k := range cols {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	set := []string{}
	args := []any{}
	for _, k := range keys {
		args = append(args, *cols[k])
		set = append(set, fmt.Sprintf("%s = $%d", k, len(args)))
	}
	if input.IsVerified != nil {
		args = append(args, *input.IsVerified)
		set = append(set, fmt.Sprintf("is_verified = $%d", len(args)))
	}
	if len(set) == 0 {
		return nil, ErrNoChanges
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE artisans SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), artisanColumns)

	a, err := scanArtisan(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArtisanNotFound
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		logger.FromCtx(ctx).Error("failed to update artisan",
			zap.String("layer", "repository"),
			zap.String("artisan_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	return a, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM artisans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrArtisanNotFound
	}
	return nil
}
