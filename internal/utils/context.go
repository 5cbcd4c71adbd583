package utils

import "context"

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	ArtisanIDKey contextKey = "artisan_id"
	UserEmailKey contextKey = "email"
	UserRoleKey  contextKey = "role"
)

const (
	RoleUser    = "USER"
	RoleArtisan = "ARTISAN"
	RoleAdmin   = "ADMIN"
)

const internalRequestKey contextKey = "internal_request"

func WithInternalRequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, internalRequestKey, true)
}

func IsInternalRequest(ctx context.Context) bool {
	v, _ := ctx.Value(internalRequestKey).(bool)
	return v
}
