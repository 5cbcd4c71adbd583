package handler

import (
	"errors"
	"net/http"
	"time"

	"artisanlink/internal/auth"
	"artisanlink/internal/logger"
	"artisanlink/internal/session"
	"artisanlink/internal/user"
	"artisanlink/internal/utils"

	"go.uber.org/zap"
)

type sessionResponse struct {
	UserID    uint      `json:"userId"`
	Email     string    `json:"email"`
	Role      user.Role `json:"role"`
	ArtisanID *string   `json:"artisanId,omitempty"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func toSessionResponse(s *session.Session, withToken bool) *sessionResponse {
	if s == nil {
		return nil
	}
	res := &sessionResponse{
		UserID:    s.UserID,
		Email:     s.Email,
		Role:      s.Role,
		ArtisanID: s.ArtisanID,
		ExpiresAt: s.ExpiresAt,
	}
	if withToken {
		res.Token = s.Token
	}
	return res
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signIn authenticates and lets the device's cart and wishlist react: the
// cart switches to the account, guest favorites are merged into it.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, utils.MsgInvalidInput, nil)
		return
	}
	h.startSession(w, r, http.StatusOK, utils.MsgSignedIn, func(m *session.Manager) (*session.Session, error) {
		return m.SignIn(r.Context(), req.Email, req.Password)
	})
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req user.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, utils.MsgInvalidInput, nil)
		return
	}
	h.startSession(w, r, http.StatusCreated, utils.MsgSignedUp, func(m *session.Manager) (*session.Session, error) {
		return m.SignUp(r.Context(), req)
	})
}

func (h *Handler) startSession(
	w http.ResponseWriter,
	r *http.Request,
	code int,
	message string,
	start func(m *session.Manager) (*session.Session, error),
) {
	c, err := h.newClient(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer c.Close()

	s, err := start(c.session)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.FromCtx(r.Context()).Info("session started",
		zap.String("layer", "handler"),
		zap.Uint("user_id", s.UserID),
		zap.Int("cart_count", c.cart.Count()),
		zap.Int("wishlist_count", c.wishlist.Count()),
	)

	auth.SetAccessTokenCookie(w, s.Token, s.ExpiresAt, h.SecureCookies)
	writeOK(w, code, message, toSessionResponse(s, true))
}

// signOut always clears the cookie; the device keeps its guest state.
func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	c, err := h.newClient(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer c.Close()

	if err := c.session.SignOut(r.Context()); err != nil && !errors.Is(err, session.ErrNotSignedIn) {
		writeError(w, r, err)
		return
	}

	auth.SetAccessTokenCookie(w, "", time.Time{}, h.SecureCookies)
	writeOK(w, http.StatusOK, utils.MsgSignedOut, nil)
}

// currentSession answers without data for anonymous callers.
func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) {
	s := sessionFromRequest(r)
	if s == nil {
		writeOK(w, http.StatusOK, "", nil)
		return
	}
	writeOK(w, http.StatusOK, "", toSessionResponse(s, false))
}
