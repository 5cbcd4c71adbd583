package utils

import "context"

// SetUserContext sets user info into context (called by middleware)
func SetUserContext(ctx context.Context, id uint, email string, role string, artisanID *string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id)
	ctx = context.WithValue(ctx, UserEmailKey, email)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	if artisanID != nil && *artisanID != "" {
		ctx = context.WithValue(ctx, ArtisanIDKey, *artisanID)
	}
	return ctx
}

func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok && id != 0
}

func GetUserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailKey).(string)
	return email
}

func GetUserRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

// GetArtisanIDFromContext returns the artisan profile owned by the caller, if any.
func GetArtisanIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ArtisanIDKey).(string)
	return id, ok && id != ""
}

func IsAdmin(ctx context.Context) bool {
	return GetUserRoleFromContext(ctx) == RoleAdmin
}
