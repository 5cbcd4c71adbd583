package middleware

import (
	"context"
	"net/http"

	"artisanlink/internal/auth"
	"artisanlink/internal/logger"
	"artisanlink/internal/utils"

	"go.uber.org/zap"
)

type contextKey string

const claimsKey contextKey = "jwt_claims"

// TokenParser verifies an access token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// ClaimsFrom returns the verified claims of the request, nil for anonymous callers.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

// Auth is optional authentication: requests without a token pass through
// anonymous, requests with a bad token are rejected.
func Auth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractAccessToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parser.Parse(token)
			if err != nil {
				logger.FromCtx(r.Context()).Info("rejected access token",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				utils.WriteJSONError(w, utils.MsgUnauthorized, http.StatusUnauthorized)
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Role, claims.ArtisanID)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			utils.WriteJSONError(w, utils.MsgUnauthorized, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole lets through authenticated callers holding one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
				utils.WriteJSONError(w, utils.MsgUnauthorized, http.StatusUnauthorized)
				return
			}

			role := utils.GetUserRoleFromContext(r.Context())
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.FromCtx(r.Context()).Warn("role not allowed",
				zap.String("role", role),
				zap.String("path", r.URL.Path),
			)
			utils.WriteJSONError(w, utils.MsgForbidden, http.StatusForbidden)
		})
	}
}
