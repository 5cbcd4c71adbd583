package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"artisanlink/internal/logger"
	"artisanlink/internal/search"
	"artisanlink/internal/utils"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	Search(ctx context.Context, f search.Filters) (*ListResult, error)
	AdminList(ctx context.Context, f search.Filters) (*ListResult, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	// GetSnapshot resolves the display fields attached to cart and wishlist
	// entries. Results are cached for a short while.
	GetSnapshot(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, input CreateInput) (*Product, error)
	Update(ctx context.Context, id string, input UpdateInput) (*Product, error)
	Delete(ctx context.Context, id string) error
}

type CacheConfig struct {
	Size int
	TTL  time.Duration
}

type service struct {
	repo      Repository
	snapshots *expirable.LRU[string, *Product]
	pageSize  int
}

func NewService(repo Repository, cache CacheConfig) Service {
	if cache.Size <= 0 {
		cache.Size = 512
	}
	if cache.TTL <= 0 {
		cache.TTL = time.Minute
	}
	return &service{
		repo:      repo,
		snapshots: expirable.NewLRU[string, *Product](cache.Size, nil, cache.TTL),
		pageSize:  DefaultPageSize,
	}
}

func (s *service) Search(ctx context.Context, f search.Filters) (*ListResult, error) {
	return s.list(ctx, f, false)
}

func (s *service) AdminList(ctx context.Context, f search.Filters) (*ListResult, error) {
	return s.list(ctx, f, true)
}

func (s *service) list(ctx context.Context, f search.Filters, includeInactive bool) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SearchProducts"),
	)
	start := time.Now()

	f = f.Normalize()
	items, total, err := s.repo.Search(ctx, ListOptions{
		Filters:         f,
		PageSize:        s.pageSize,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		log.Error("failed to search products", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	log.Info("search products success",
		zap.String("query", f.Encode()),
		zap.Int("count", len(items)),
		zap.Int("total", total),
		zap.Duration("duration", time.Since(start)),
	)

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		PageSize:   s.pageSize,
		TotalPages: (total + s.pageSize - 1) / s.pageSize,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrProductNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.snapshots.Add(id, p)
	return p, nil
}

func (s *service) GetSnapshot(ctx context.Context, id string) (*Product, error) {
	if p, ok := s.snapshots.Get(id); ok {
		return p, nil
	}
	return s.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateProduct"),
	)

	input.Name = strings.TrimSpace(input.Name)
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	if err := checkPrices(input.Price, input.DiscountPrice); err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, input, utils.Slugify(input.Name, input.ArtisanID))
	if err != nil {
		if !errors.Is(err, ErrSlugExists) {
			log.Error("failed to create product", zap.Error(err))
		}
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProduct"),
		zap.String("product_id", id),
	)

	if !input.HasChanges() {
		return nil, ErrNoChanges
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
	}
	if err := utils.Validate(input); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	price := current.Price
	if input.Price != nil {
		price = *input.Price
	}
	discount := current.DiscountPrice
	if input.DiscountPrice != nil {
		discount = input.DiscountPrice
	}
	if err := checkPrices(price, discount); err != nil {
		return nil, err
	}

	var slug *string
	if input.Name != nil && *input.Name != current.Name {
		owner := ""
		if current.Artisan != nil {
			owner = current.Artisan.ID
		}
		slug = utils.StrPtr(utils.Slugify(*input.Name, owner))
	}

	if err := s.repo.Update(ctx, id, input, slug); err != nil {
		if !errors.Is(err, ErrProductNotFound) && !errors.Is(err, ErrSlugExists) {
			log.Error("failed to update product", zap.Error(err))
		}
		return nil, err
	}
	s.snapshots.Remove(id)

	return s.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.snapshots.Remove(id)
	logger.FromCtx(ctx).Info("product deleted",
		zap.String("layer", "service"),
		zap.String("product_id", id),
	)
	return nil
}

// checkPrices accepts a zero discount as "no discount".
func checkPrices(price decimal.Decimal, discount *decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if discount != nil && (discount.IsNegative() || discount.GreaterThanOrEqual(price)) {
		return ErrInvalidPrice
	}
	return nil
}
