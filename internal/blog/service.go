package blog

import (
	"context"
	"strings"

	"artisanlink/internal/logger"
	"artisanlink/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	// ListPublished and GetPublished serve the public blog.
	ListPublished(ctx context.Context) ([]*Post, error)
	GetPublished(ctx context.Context, slug string) (*Post, error)

	AdminList(ctx context.Context) ([]*Post, error)
	Get(ctx context.Context, id string) (*Post, error)
	Create(ctx context.Context, input CreateInput) (*Post, error)
	Update(ctx context.Context, id string, input UpdateInput) (*Post, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListPublished(ctx context.Context) ([]*Post, error) {
	return s.repo.List(ctx, true)
}

func (s *service) GetPublished(ctx context.Context, slug string) (*Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrPostNotFound
	}
	return s.repo.GetBySlug(ctx, slug, true)
}

func (s *service) AdminList(ctx context.Context) ([]*Post, error) {
	return s.repo.List(ctx, false)
}

func (s *service) Get(ctx context.Context, id string) (*Post, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Post, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := utils.Validate(input); err != nil {
		return nil, err
	}

	var authorID *uint
	if id, ok := utils.GetUserIDFromContext(ctx); ok {
		authorID = &id
	}

	p, err := s.repo.Create(ctx, input, utils.Slugify(input.Title, ""), authorID)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("blog post created",
		zap.String("layer", "service"),
		zap.String("post_id", p.ID),
		zap.Bool("published", p.Published),
	)
	return p, nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*Post, error) {
	if !input.HasChanges() {
		return nil, ErrNoChanges
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		input.Title = &title
	}
	if err := utils.Validate(input); err != nil {
		return nil, err
	}

	var slug *string
	if input.Title != nil {
		slug = utils.StrPtr(utils.Slugify(*input.Title, ""))
	}
	return s.repo.Update(ctx, id, input, slug)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("blog post deleted", zap.String("post_id", id))
	return nil
}
