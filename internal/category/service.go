package category

import (
	"context"
	"strings"

	"artisanlink/internal/logger"
	"artisanlink/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	GetCategories(ctx context.Context, params ListParams) ([]*Category, int64, error)
	GetSubcategories(ctx context.Context, categoryID string, params ListParams) ([]*Subcategory, int64, error)
	AddCategory(ctx context.Context, input CategoryInput) (*Category, error)
	UpdateCategory(ctx context.Context, id string, input CategoryInput) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error
	AddSubcategory(ctx context.Context, input SubcategoryInput) (*Subcategory, error)
	UpdateSubcategory(ctx context.Context, id string, input SubcategoryInput) (*Subcategory, error)
	DeleteSubcategory(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// GetCategories returns categories with their subcategories attached.
func (s *service) GetCategories(ctx context.Context, params ListParams) ([]*Category, int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetCategories"),
	)

	// 1. Parent categories
	categories, total, err := s.repo.GetCategories(ctx, params)
	if err != nil {
		log.Error("failed to get categories", zap.Error(err))
		return nil, 0, err
	}
	if len(categories) == 0 {
		return []*Category{}, 0, nil
	}

	// 2. Subcategories of every category in one query
	ids := make([]string, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	byCategory, err := s.repo.GetSubcategoriesByIDs(ctx, ids)
	if err != nil {
		log.Error("failed to get subcategories by ids", zap.Error(err))
		return nil, 0, err
	}

	// 3. Attach
	for _, c := range categories {
		if subs := byCategory[c.ID]; subs != nil {
			c.Subcategories = subs
		}
	}

	log.Debug("GetCategories success", zap.Int("count", len(categories)))
	return categories, total, nil
}

func (s *service) GetSubcategories(ctx context.Context, categoryID string, params ListParams) ([]*Subcategory, int64, error) {
	subs, total, err := s.repo.GetSubcategories(ctx, categoryID, params)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get subcategories",
			zap.String("layer", "service"),
			zap.String("category_id", categoryID),
			zap.Error(err),
		)
		return nil, 0, err
	}
	return subs, total, nil
}

func (s *service) AddCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.Validate(input); err != nil {
		return nil, err
	}

	c, err := s.repo.AddCategory(ctx, input, utils.Slugify(input.Name, ""))
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("category added", zap.String("category_id", c.ID))
	return c, nil
}

func (s *service) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	return s.repo.UpdateCategory(ctx, id, input, utils.Slugify(input.Name, ""))
}

func (s *service) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *service) AddSubcategory(ctx context.Context, input SubcategoryInput) (*Subcategory, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.Validate(input); err != nil {
		return nil, err
	}

	sc, err := s.repo.AddSubcategory(ctx, input, utils.Slugify(input.Name, ""))
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("subcategory added",
		zap.String("category_id", input.CategoryID),
		zap.String("subcategory_id", sc.ID),
	)
	return sc, nil
}

func (s *service) UpdateSubcategory(ctx context.Context, id string, input SubcategoryInput) (*Subcategory, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	return s.repo.UpdateSubcategory(ctx, id, input, utils.Slugify(input.Name, ""))
}

func (s *service) DeleteSubcategory(ctx context.Context, id string) error {
	return s.repo.DeleteSubcategory(ctx, id)
}
