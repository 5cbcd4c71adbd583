package user

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
	Create(ctx context.Context, email, password string, role Role, fields ProfileFields) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetProfile(ctx context.Context, userID uint) (*Profile, error)
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (*Profile, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Create inserts the user and its profile in one transaction.
func (r *repository) Create(
	ctx context.Context,
	email, password string,
	role Role,
	fields ProfileFields,
) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateUser"),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	u := &User{}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, password, role)
		VALUES ($1, $2, $3)
		RETURNING id, email, password, role, created_at
	`, email, password, string(role)).Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		log.Error("failed to insert user", zap.Error(err))
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, full_name, phone)
		VALUES ($1, $2, $3)
	`, u.ID, fields.FullName, fields.Phone)
	if err != nil {
		log.Error("failed to insert profile", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", zap.Error(err))
		return nil, err
	}

	log.Info("user created", zap.Uint("user_id", u.ID))
	return u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := r.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.password, u.role, a.id, u.created_at
		FROM users u
		LEFT JOIN artisans a ON a.user_id = u.id
		WHERE u.email = $1
	`, email).Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.ArtisanID, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repository) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	p := &Profile{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, full_name, phone, avatar_url, bio, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID).Scan(&p.ID, &p.UserID, &p.FullName, &p.Phone, &p.AvatarURL, &p.Bio, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProfile only touches the provided fields.
func (r *repository) UpdateProfile(ctx context.Context, params UpdateProfileParams) (*Profile, error) {
	set := []string{}
	args := []any{}

	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("full_name", params.FullName)
	add("phone", params.Phone)
	add("avatar_url", params.AvatarURL)
	add("bio", params.Bio)

	if len(set) == 0 {
		return nil, ErrNoProfileChanges
	}

	args = append(args, params.UserID)
	query := `
		UPDATE profiles
		SET ` + strings.Join(set, ", ") + `, updated_at = NOW()
		WHERE user_id = $` + fmt.Sprint(len(args)) + `
		RETURNING id, user_id, full_name, phone, avatar_url, bio, created_at, updated_at`

	p := &Profile{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&p.ID, &p.UserID, &p.FullName, &p.Phone, &p.AvatarURL, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
