package category

import (
	"context"
	"errors"
	"testing"

	"artisanlink/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetCategories(ctx context.Context, params ListParams) ([]*Category, int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Category), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) GetSubcategoriesByIDs(ctx context.Context, ids []string) (map[string][]*Subcategory, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]*Subcategory), args.Error(1)
}

func (m *MockRepository) GetSubcategories(ctx context.Context, categoryID string, params ListParams) ([]*Subcategory, int64, error) {
	args := m.Called(ctx, categoryID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Subcategory), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) AddCategory(ctx context.Context, input CategoryInput, slug string) (*Category, error) {
	args := m.Called(ctx, input, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) UpdateCategory(ctx context.Context, id string, input CategoryInput, slug string) (*Category, error) {
	args := m.Called(ctx, id, input, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) DeleteCategory(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) AddSubcategory(ctx context.Context, input SubcategoryInput, slug string) (*Subcategory, error) {
	args := m.Called(ctx, input, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subcategory), args.Error(1)
}

func (m *MockRepository) UpdateSubcategory(ctx context.Context, id string, input SubcategoryInput, slug string) (*Subcategory, error) {
	args := m.Called(ctx, id, input, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subcategory), args.Error(1)
}

func (m *MockRepository) DeleteSubcategory(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestService_GetCategories(t *testing.T) {
	ctx := context.Background()
	params := ListParams{}

	t.Run("Attaches subcategories", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		cats := []*Category{
			{ID: "c1", Name: "Poterie", Subcategories: []*Subcategory{}},
			{ID: "c2", Name: "Textile", Subcategories: []*Subcategory{}},
		}
		repo.On("GetCategories", ctx, params).Return(cats, int64(2), nil)
		repo.On("GetSubcategoriesByIDs", ctx, []string{"c1", "c2"}).
			Return(map[string][]*Subcategory{"c1": {{ID: "s1", CategoryID: "c1", Name: "Bols"}}}, nil)

		res, total, err := svc.GetCategories(ctx, params)

		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, res[0].Subcategories, 1)
		assert.NotNil(t, res[1].Subcategories)
		assert.Empty(t, res[1].Subcategories)
	})

	t.Run("Empty", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		repo.On("GetCategories", ctx, params).Return([]*Category{}, int64(0), nil)

		res, total, err := svc.GetCategories(ctx, params)
		require.NoError(t, err)
		assert.Empty(t, res)
		assert.Zero(t, total)
		repo.AssertNotCalled(t, "GetSubcategoriesByIDs", mock.Anything, mock.Anything)
	})

	t.Run("Subcategory error", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		repo.On("GetCategories", ctx, params).Return([]*Category{{ID: "c1"}}, int64(1), nil)
		repo.On("GetSubcategoriesByIDs", ctx, []string{"c1"}).Return(nil, errors.New("db error"))

		_, _, err := svc.GetCategories(ctx, params)
		assert.Error(t, err)
	})
}

func TestService_AddCategory(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("AddCategory", ctx, CategoryInput{Name: "Céramique"}, "ceramique").
		Return(&Category{ID: "c1", Name: "Céramique", Slug: "ceramique"}, nil)

	c, err := svc.AddCategory(ctx, CategoryInput{Name: " Céramique "})
	require.NoError(t, err)
	assert.Equal(t, "ceramique", c.Slug)

	_, err = svc.AddCategory(ctx, CategoryInput{Name: ""})
	assert.True(t, utils.IsValidationError(err))
}

func TestService_AddSubcategoryValidation(t *testing.T) {
	svc := NewService(new(MockRepository))
	_, err := svc.AddSubcategory(context.Background(), SubcategoryInput{Name: "Bols"})
	assert.True(t, utils.IsValidationError(err))
}
