package auth

import (
	"net/http"
	"strings"
	"time"
)

const AccessTokenCookie = "access_token"

// ExtractAccessToken reads the access token from the cookie first and falls
// back to the Authorization bearer header.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	return ""
}

// SetAccessTokenCookie stores the token as an http-only cookie. An empty
// token clears it.
func SetAccessTokenCookie(w http.ResponseWriter, token string, expiresAt time.Time, secure bool) {
	c := &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
	}
	if token == "" {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	}
	http.SetCookie(w, c)
}
