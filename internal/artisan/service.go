package artisan

import (
	"context"
	"errors"
	"sort"
	"strings"

	"artisanlink/internal/logger"
	"artisanlink/internal/moderation"
	"artisanlink/internal/utils"

	"go.uber.org/zap"
)

const tableName = "artisans"

// Moderator queues owner edits for admin review.
type Moderator interface {
	Propose(ctx context.Context, input moderation.ProposeInput) (*moderation.Log, error)
}

type Service interface {
	List(ctx context.Context, query string) ([]*Artisan, error)
	Get(ctx context.Context, id string) (*Artisan, error)
	Create(ctx context.Context, input CreateInput) (*Artisan, error)
	// Update applies the patch directly for admins. An artisan editing its
	// own profile gets a pending proposal instead.
	Update(ctx context.Context, id string, input UpdateInput) (*UpdateResult, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo      Repository
	moderator Moderator
}

func NewService(repo Repository, moderator Moderator) Service {
	return &service{repo: repo, moderator: moderator}
}

func (s *service) List(ctx context.Context, query string) ([]*Artisan, error) {
	return s.repo.List(ctx, query)
}

func (s *service) Get(ctx context.Context, id string) (*Artisan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Artisan, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.Validate(input); err != nil {
		return nil, err
	}

	a, err := s.repo.Create(ctx, input, utils.Slugify(input.Name, ""))
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("artisan created",
		zap.String("layer", "service"),
		zap.String("artisan_id", a.ID),
	)
	return a, nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*UpdateResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateArtisan"),
		zap.String("artisan_id", id),
	)

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
	}
	if err := utils.Validate(input); err != nil {
		return nil, err
	}

	if utils.IsAdmin(ctx) {
		var slug *string
		if input.Name != nil {
			slug = utils.StrPtr(utils.Slugify(*input.Name, ""))
		}
		a, err := s.repo.Update(ctx, id, input, slug)
		if err != nil {
			return nil, err
		}
		log.Info("artisan updated by admin")
		return &UpdateResult{Artisan: a}, nil
	}

	// ---------- OWNER EDIT: MODERATED ----------
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrForbidden
	}
	if owned, ok := utils.GetArtisanIDFromContext(ctx); !ok || owned != id {
		log.Warn("edit of a foreign artisan profile refused", zap.Uint("user_id", userID))
		return nil, ErrForbidden
	}
	if input.IsVerified != nil {
		return nil, ErrForbidden
	}

	cols := input.columns()
	if len(cols) == 0 {
		return nil, ErrNoChanges
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(cols))
	newValues := make(map[string]any, len(cols))
	for k, v := range cols {
		keys = append(keys, k)
		newValues[k] = *v
	}
	sort.Strings(keys)

	l, err := s.moderator.Propose(ctx, moderation.ProposeInput{
		TableName:   tableName,
		RecordID:    id,
		OldValues:   current.values(keys),
		NewValues:   newValues,
		RequestedBy: userID,
	})
	if errors.Is(err, moderation.ErrNoChanges) {
		return nil, ErrNoChanges
	}
	if err != nil {
		log.Error("failed to queue artisan edit", zap.Error(err))
		return nil, err
	}

	log.Info("artisan edit queued for review", zap.String("log_id", l.ID))
	return &UpdateResult{Artisan: current, Pending: true, LogID: l.ID}, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("artisan deleted", zap.String("artisan_id", id))
	return nil
}
