package category

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_GetCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("Success with filter", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		filter := "pot"
		limit := int32(10)
		page := int32(2)

		mock.ExpectQuery(`(?s)SELECT .* FROM categories c\s+WHERE c.name ILIKE \$1 ORDER BY c.name ASC LIMIT \$2 OFFSET \$3`).
			WithArgs("%pot%", int32(10), int32(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "description", "total_count"}).
				AddRow("c1", "Poterie", "poterie", nil, 11))

		res, total, err := NewRepository(db).GetCategories(ctx, ListParams{Filter: &filter, Limit: &limit, Page: &page})

		require.NoError(t, err)
		assert.Equal(t, int64(11), total)
		require.Len(t, res, 1)
		assert.Equal(t, "poterie", res[0].Slug)
		assert.NotNil(t, res[0].Subcategories)
	})

	t.Run("Query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("db error"))

		_, _, err = NewRepository(db).GetCategories(ctx, ListParams{})
		assert.Error(t, err)
	})
}

func TestRepository_GetSubcategoriesByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, category_id, name, slug\s+FROM subcategories\s+WHERE category_id = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "name", "slug"}).
			AddRow("s1", "c1", "Bols", "bols").
			AddRow("s2", "c1", "Vases", "vases").
			AddRow("s3", "c2", "Tapis", "tapis"))

	res, err := NewRepository(db).GetSubcategoriesByIDs(context.Background(), []string{"c1", "c2"})

	require.NoError(t, err)
	assert.Len(t, res["c1"], 2)
	assert.Len(t, res["c2"], 1)
}

func TestRepository_GetSubcategoriesByIDsEmpty(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	res, err := NewRepository(db).GetSubcategoriesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestRepository_GetSubcategories(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT s.id, s.category_id, s.name, s.slug, COUNT\(\*\) OVER\(\) FROM subcategories s WHERE s.category_id = \$1 ORDER BY s.name ASC LIMIT \$2 OFFSET \$3`).
		WithArgs("c1", int32(50), int32(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "name", "slug", "count"}).
			AddRow("s1", "c1", "Bols", "bols", 1))

	subs, total, err := NewRepository(db).GetSubcategories(context.Background(), "c1", ListParams{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, subs, 1)
}

func TestRepository_AddCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO categories \(name, slug, description\)`).
			WithArgs("Poterie", "poterie", nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "description"}).
				AddRow("c1", "Poterie", "poterie", nil))

		c, err := NewRepository(db).AddCategory(ctx, CategoryInput{Name: "Poterie"}, "poterie")
		require.NoError(t, err)
		assert.Equal(t, "c1", c.ID)
	})

	t.Run("Duplicate", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO categories`).WillReturnError(&pq.Error{Code: "23505"})

		_, err = NewRepository(db).AddCategory(ctx, CategoryInput{Name: "Poterie"}, "poterie")
		assert.ErrorIs(t, err, ErrSlugExists)
	})
}

func TestRepository_AddSubcategoryUnknownCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO subcategories`).WillReturnError(&pq.Error{Code: "23503"})

	_, err = NewRepository(db).AddSubcategory(context.Background(), SubcategoryInput{CategoryID: "zz", Name: "Bols"}, "bols")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestRepository_UpdateCategoryNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`UPDATE categories`).
		WithArgs("Bois", "bois", nil, "c9").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "description"}))

	_, err = NewRepository(db).UpdateCategory(context.Background(), "c9", CategoryInput{Name: "Bois"}, "bois")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("In use", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM categories WHERE id = \$1`).
			WithArgs("c1").
			WillReturnError(&pq.Error{Code: "23503"})

		assert.ErrorIs(t, NewRepository(db).DeleteCategory(ctx, "c1"), ErrCategoryInUse)
	})

	t.Run("Missing subcategory", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM subcategories WHERE id = \$1`).
			WithArgs("s1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, NewRepository(db).DeleteSubcategory(ctx, "s1"), ErrSubcategoryNotFound)
	})
}
