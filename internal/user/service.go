package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"artisanlink/internal/logger"
	"artisanlink/internal/utils"

	"go.uber.org/zap"
)

type TokenIssuer interface {
	Generate(userID uint, email, role string, artisanID *string) (string, time.Time, error)
}

// AuthResult is what a successful sign-in or sign-up hands back.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID uint) (*Profile, error)
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (*Profile, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)
	if err := utils.Validate(input); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u, err := s.repo.Create(ctx, input.Email, hashed, RoleUser, input.ProfileFields)
	if err != nil {
		if !errors.Is(err, ErrEmailExists) {
			log.Error("failed to create user", zap.Error(err))
		}
		return nil, err
	}

	res, err := s.issue(u)
	if err != nil {
		log.Error("failed to generate jwt", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	log.Info("register completed", zap.Uint("user_id", u.ID))
	return res, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("login with unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to find user", zap.Error(err))
		return nil, err
	}

	if !CheckPasswordHash(password, u.Password) {
		log.Info("password mismatch", zap.Uint("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	return s.issue(u)
}

func (s *service) issue(u *User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Generate(u.ID, u.Email, string(u.Role), u.ArtisanID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, params UpdateProfileParams) (*Profile, error) {
	if !params.HasChanges() {
		return nil, ErrNoProfileChanges
	}
	if err := utils.Validate(params); err != nil {
		return nil, err
	}
	return s.repo.UpdateProfile(ctx, params)
}
