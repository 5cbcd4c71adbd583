package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"artisanlink/internal/db"
	"artisanlink/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, publishedOnly bool) ([]*Post, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*Post, error)
	GetByID(ctx context.Context, id string) (*Post, error)
	Create(ctx context.Context, input CreateInput, slug string, authorID *uint) (*Post, error)
	Update(ctx context.Context, id string, input UpdateInput, slug *string) (*Post, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const postColumns = `id, title, slug, excerpt, content, cover_url, author_id,
		published, published_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*Post, error) {
	var (
		p        Post
		authorID sql.NullInt64
	)
	err := s.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.CoverURL, &authorID,
		&p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if authorID.Valid {
		v := uint(authorID.Int64)
		p.AuthorID = &v
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, publishedOnly bool) ([]*Post, error) {
	q := `SELECT ` + postColumns + ` FROM blog_posts`
	if publishedOnly {
		q += ` WHERE published = TRUE ORDER BY published_at DESC NULLS LAST`
	} else {
		q += ` ORDER BY created_at DESC`
	}

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list blog posts",
			zap.String("layer", "repository"),
			zap.Bool("published_only", publishedOnly),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	posts := []*Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *repository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*Post, error) {
	q := `SELECT ` + postColumns + ` FROM blog_posts WHERE slug = $1`
	if publishedOnly {
		q += ` AND published = TRUE`
	}
	p, err := scanPost(r.db.QueryRowContext(ctx, q, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	return p, err
}

func (r *repository) GetByID(ctx context.Context, id string) (*Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, input CreateInput, slug string, authorID *uint) (*Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, `
		INSERT INTO blog_posts (title, slug, excerpt, content, cover_url, author_id, published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CASE WHEN $7 THEN NOW() END)
		RETURNING `+postColumns,
		input.Title, slug, input.Excerpt, input.Content, input.CoverURL, authorID, input.Published,
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		logger.FromCtx(ctx).Error("failed to insert blog post",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, err
	}
	return p, nil
}

// Update sets published_at the first time a post is published and keeps it afterwards.
func (r *repository) Update(ctx context.Context, id string, input UpdateInput, slug *string) (*Post, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	// ---------- SET CLAUSE ----------
	if input.Title != nil {
		add("title", *input.Title)
	}
	if slug != nil {
		add("slug", *slug)
	}
	if input.Excerpt != nil {
		add("excerpt", *input.Excerpt)
	}
	if input.Content != nil {
		add("content", *input.Content)
	}
	if input.CoverURL != nil {
		add("cover_url", *input.CoverURL)
	}
	if input.Published != nil {
		add("published", *input.Published)
		sets = append(sets, fmt.Sprintf(
			"published_at = CASE WHEN $%d THEN COALESCE(published_at, NOW()) ELSE published_at END", len(args)))
	}
	if len(sets) == 0 {
		return nil, ErrNoChanges
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	q := fmt.Sprintf(`UPDATE blog_posts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), postColumns)

	p, err := scanPost(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("update blog post failed: %w", err)
	}
	return p, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}
