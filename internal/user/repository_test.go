package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"artisanlink/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	fields := ProfileFields{FullName: "Maya"}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO users").
			WithArgs("maya@example.com", "hash", "USER").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role", "created_at"}).
				AddRow(1, "maya@example.com", "hash", "USER", time.Now()))
		mock.ExpectExec("INSERT INTO profiles").
			WithArgs(1, "Maya", nil).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		u, err := repo.Create(context.Background(), "maya@example.com", "hash", RoleUser, fields)
		require.NoError(t, err)
		assert.Equal(t, uint(1), u.ID)
		assert.Equal(t, RoleUser, u.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate email", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		_, err := repo.Create(context.Background(), "maya@example.com", "hash", RoleUser, fields)
		assert.ErrorIs(t, err, ErrEmailExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Profile insert fails", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO users").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role", "created_at"}).
				AddRow(2, "b@example.com", "hash", "USER", time.Now()))
		mock.ExpectExec("INSERT INTO profiles").WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		_, err := repo.Create(context.Background(), "b@example.com", "hash", RoleUser, fields)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Artisan user", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM users u LEFT JOIN artisans a").
			WithArgs("a@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role", "artisan_id", "created_at"}).
				AddRow(5, "a@example.com", "hash", "ARTISAN", "art-1", time.Now()))

		u, err := repo.FindByEmail(context.Background(), "a@example.com")
		require.NoError(t, err)
		require.NotNil(t, u.ArtisanID)
		assert.Equal(t, "art-1", *u.ArtisanID)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM users").
			WithArgs("none@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role", "artisan_id", "created_at"}))

		_, err := repo.FindByEmail(context.Background(), "none@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRepository_UpdateProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	cols := []string{"id", "user_id", "full_name", "phone", "avatar_url", "bio", "created_at", "updated_at"}

	t.Run("Partial update", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE profiles SET full_name = \$1, bio = \$2, updated_at = NOW\(\) WHERE user_id = \$3`).
			WithArgs("Lina", "Potière", uint(9)).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("6f1c2a8e-5d0b-4b8e-9a57-3c8d1e2f4a10", 9, "Lina", nil, nil, "Potière", time.Now(), time.Now()))

		p, err := repo.UpdateProfile(context.Background(), UpdateProfileParams{
			UserID:   9,
			FullName: utils.StrPtr("Lina"),
			Bio:      utils.StrPtr("Potière"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Lina", p.FullName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nothing to update", func(t *testing.T) {
		_, err := repo.UpdateProfile(context.Background(), UpdateProfileParams{UserID: 9})
		assert.ErrorIs(t, err, ErrNoProfileChanges)
	})
}
