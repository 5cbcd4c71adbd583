package handler

import (
	"net/http"

	"artisanlink/internal/auth"
	"artisanlink/internal/cart"
	"artisanlink/internal/logger"
	"artisanlink/internal/middleware"
	"artisanlink/internal/session"
	"artisanlink/internal/user"
	"artisanlink/internal/wishlist"
)

// client is the server-side view of one browser for the duration of a
// request: its session plus the cart and wishlist stores observing it.
type client struct {
	session  *session.Manager
	cart     *cart.Store
	wishlist *wishlist.Store
}

func (c *client) Close() {
	c.cart.Close()
	c.wishlist.Close()
}

// sessionFromRequest rebuilds the session carried by the verified token.
func sessionFromRequest(r *http.Request) *session.Session {
	claims := middleware.ClaimsFrom(r.Context())
	if claims == nil {
		return nil
	}
	s := &session.Session{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      user.Role(claims.Role),
		ArtisanID: claims.ArtisanID,
		Token:     auth.ExtractAccessToken(r),
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s
}

func (h *Handler) newClient(r *http.Request) (*client, error) {
	local, err := h.Devices(logger.DeviceIDFrom(r.Context()))
	if err != nil {
		return nil, err
	}

	mgr := session.NewManager(h.Users, sessionFromRequest(r))
	return &client{
		session:  mgr,
		cart:     cart.NewStore(h.CartRepo, h.Products, local, mgr),
		wishlist: wishlist.NewStore(h.WishlistRepo, h.Products, local, mgr),
	}, nil
}
