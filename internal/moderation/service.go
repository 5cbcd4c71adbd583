package moderation

import (
	"context"
	"errors"

	"artisanlink/internal/logger"
	"artisanlink/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	// Propose records a pending edit. Only the fields that actually change
	// are kept in the proposal.
	Propose(ctx context.Context, input ProposeInput) (*Log, error)
	List(ctx context.Context, status *Status) ([]*Log, error)
	Get(ctx context.Context, id string) (*Log, error)
	Approve(ctx context.Context, id string, reviewer uint) (*Log, error)
	Reject(ctx context.Context, id string, reviewer uint) (*Log, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Propose(ctx context.Context, input ProposeInput) (*Log, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ProposeModification"),
		zap.String("table", input.TableName),
		zap.String("record_id", input.RecordID),
	)

	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	if _, ok := editableColumns[input.TableName]; !ok {
		return nil, ErrTableNotAllowed
	}
	for k := range input.NewValues {
		if !columnAllowed(input.TableName, k) {
			log.Warn("proposal touches a protected column", zap.String("column", k))
			return nil, ErrColumnNotAllowed
		}
	}

	changed := ChangedFields(input.OldValues, input.NewValues)
	if len(changed) == 0 {
		return nil, ErrNoChanges
	}

	trimmedOld := make(map[string]any, len(changed))
	trimmedNew := make(map[string]any, len(changed))
	for _, k := range changed {
		trimmedOld[k] = input.OldValues[k]
		trimmedNew[k] = input.NewValues[k]
	}
	input.OldValues, input.NewValues = trimmedOld, trimmedNew

	l, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	log.Info("modification proposed",
		zap.String("log_id", l.ID),
		zap.Strings("changed_fields", l.ChangedFields),
	)
	return l, nil
}

func (s *service) List(ctx context.Context, status *Status) ([]*Log, error) {
	if status != nil && !status.Valid() {
		status = nil
	}
	return s.repo.List(ctx, status)
}

func (s *service) Get(ctx context.Context, id string) (*Log, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) Approve(ctx context.Context, id string, reviewer uint) (*Log, error) {
	l, err := s.repo.Approve(ctx, id, reviewer)
	if err != nil {
		s.logFailure(ctx, "ApproveModification", id, err)
		return nil, err
	}
	logger.FromCtx(ctx).Info("modification approved",
		zap.String("log_id", id),
		zap.Uint("reviewer", reviewer),
	)
	return l, nil
}

func (s *service) Reject(ctx context.Context, id string, reviewer uint) (*Log, error) {
	l, err := s.repo.Reject(ctx, id, reviewer)
	if err != nil {
		s.logFailure(ctx, "RejectModification", id, err)
		return nil, err
	}
	logger.FromCtx(ctx).Info("modification rejected",
		zap.String("log_id", id),
		zap.Uint("reviewer", reviewer),
	)
	return l, nil
}

func (s *service) logFailure(ctx context.Context, method, id string, err error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", method),
		zap.String("log_id", id),
		zap.Error(err),
	)
	if errors.Is(err, ErrAlreadyResolved) || errors.Is(err, ErrLogNotFound) {
		log.Info("moderation request refused")
		return
	}
	log.Error("moderation request failed")
}
