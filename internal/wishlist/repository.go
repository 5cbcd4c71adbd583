package wishlist

import (
	"context"
	"database/sql"

	"artisanlink/internal/db"
	"artisanlink/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, userID uint) ([]Entry, error)
	// Insert returns ErrAlreadyPresent when the (user, product) pair exists.
	Insert(ctx context.Context, userID uint, productID string) (Entry, error)
	Delete(ctx context.Context, userID uint, productID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, userID uint) ([]Entry, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListWishlist"),
		zap.Uint("user_id", userID),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, created_at
		FROM wishlists
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		log.Error("failed to query wishlist", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ProductID, &e.CreatedAt); err != nil {
			log.Error("failed to scan wishlist entry", zap.Error(err))
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) Insert(ctx context.Context, userID uint, productID string) (Entry, error) {
	e := Entry{}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO wishlists (user_id, product_id)
		VALUES ($1, $2)
		RETURNING id, user_id, product_id, created_at
	`, userID, productID).Scan(&e.ID, &e.UserID, &e.ProductID, &e.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Entry{}, ErrAlreadyPresent
		}
		logger.FromCtx(ctx).Error("failed to insert wishlist entry",
			zap.String("layer", "repository"),
			zap.Uint("user_id", userID),
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return Entry{}, err
	}
	return e, nil
}

func (r *repository) Delete(ctx context.Context, userID uint, productID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM wishlists
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to delete wishlist entry",
			zap.String("layer", "repository"),
			zap.Uint("user_id", userID),
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
