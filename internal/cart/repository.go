package cart

import (
	"context"
	"database/sql"
	"encoding/json"

	"artisanlink/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	ListItems(ctx context.Context, userID uint) ([]LineItem, error)
	// ReplaceItems overwrites the whole remote cart of the user.
	ReplaceItems(ctx context.Context, userID uint, items []LineItem) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListItems(ctx context.Context, userID uint) ([]LineItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListCartItems"),
		zap.Uint("user_id", userID),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, selected_variations
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		log.Error("failed to query cart items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	stored := []storedItem{}
	for rows.Next() {
		var (
			s    storedItem
			vars []byte
		)
		if err := rows.Scan(&s.ProductID, &s.Quantity, &vars); err != nil {
			log.Error("failed to scan cart item", zap.Error(err))
			return nil, err
		}
		if len(vars) > 0 {
			if err := json.Unmarshal(vars, &s.SelectedVariations); err != nil {
				log.Warn("invalid selected_variations, ignoring",
					zap.String("product_id", s.ProductID),
					zap.Error(err),
				)
			}
		}
		stored = append(stored, s)
	}
	if err := rows.Err(); err != nil {
		log.Error("cart rows iteration failed", zap.Error(err))
		return nil, err
	}

	return fromStored(stored), nil
}

func (r *repository) ReplaceItems(ctx context.Context, userID uint, items []LineItem) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ReplaceCartItems"),
		zap.Uint("user_id", userID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		log.Error("failed to clear cart items", zap.Error(err))
		return err
	}

	for _, it := range items {
		vars, err := json.Marshal(it.SelectedVariations)
		if err != nil {
			return err
		}
		if it.SelectedVariations == nil {
			vars = []byte("{}")
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO cart_items (user_id, product_id, quantity, selected_variations)
			VALUES ($1, $2, $3, $4)
		`, userID, it.ProductID, it.Quantity, vars)
		if err != nil {
			log.Error("failed to insert cart item",
				zap.String("product_id", it.ProductID),
				zap.Error(err),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit cart", zap.Error(err))
		return err
	}

	log.Debug("cart persisted", zap.Int("items", len(items)))
	return nil
}
