// Package handler exposes the marketplace over HTTP with chi.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"artisanlink/internal/artisan"
	"artisanlink/internal/blog"
	"artisanlink/internal/cart"
	"artisanlink/internal/category"
	"artisanlink/internal/localstore"
	"artisanlink/internal/logger"
	"artisanlink/internal/middleware"
	"artisanlink/internal/moderation"
	"artisanlink/internal/product"
	"artisanlink/internal/user"
	"artisanlink/internal/utils"
	"artisanlink/internal/wishlist"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// DeviceStores opens the local store of one guest device.
type DeviceStores func(deviceID string) (localstore.Store, error)

type Deps struct {
	Users      user.Service
	Tokens     middleware.TokenParser
	Products   product.Service
	Categories category.Service
	Artisans   artisan.Service
	Blog       blog.Service
	Moderation moderation.Service

	CartRepo     cart.Repository
	WishlistRepo wishlist.Repository
	Devices      DeviceStores

	SearchDebounce time.Duration
	SearchTimeout  time.Duration

	CORSOrigins   []string
	Limiter       *middleware.RateLimiter
	SecureCookies bool
}

type Handler struct {
	Deps
}

func New(deps Deps) *Handler {
	return &Handler{Deps: deps}
}

// Router wires every route behind the shared middleware stack.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.CORS(h.CORSOrigins))
	r.Use(middleware.DeviceID)
	r.Use(middleware.Auth(h.Tokens))
	if h.Limiter != nil {
		r.Use(h.Limiter.Middleware)
	}

	r.Get("/health", h.health)
	r.Get("/ws/search", h.liveSearch)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.signUp)
			r.Post("/login", h.signIn)
			r.Post("/logout", h.signOut)
			r.Get("/session", h.currentSession)
		})

		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/categories", h.listCategories)
		r.Get("/categories/{id}/subcategories", h.listSubcategories)
		r.Get("/artisans", h.listArtisans)
		r.Get("/artisans/{id}", h.getArtisan)
		r.With(middleware.RequireAuth).Patch("/artisans/{id}", h.updateArtisan)
		r.Get("/blog", h.listPosts)
		r.Get("/blog/{slug}", h.getPost)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Post("/items", h.addCartItem)
			r.Patch("/items", h.updateCartItem)
			r.Delete("/items", h.removeCartItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.getWishlist)
			r.Post("/", h.addWishlist)
			r.Delete("/{productID}", h.removeWishlist)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/", h.getProfile)
			r.Patch("/", h.updateProfile)
		})

		r.Route("/admin", h.adminRoutes)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, "", map[string]string{"status": "ok"})
}

func writeOK(w http.ResponseWriter, code int, message string, data any) {
	utils.WriteJSON(w, code, utils.Response{Success: true, Message: message, Data: data})
}

// writeFailure answers with a user message and optional degraded data.
func writeFailure(w http.ResponseWriter, code int, message string, data any) {
	utils.WriteJSON(w, code, utils.Response{Success: false, Message: message, Data: data})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeError maps domain errors to a status and a user message. Technical
// detail stays in the logs.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := classify(err)
	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "handler"),
		zap.String("path", r.URL.Path),
		zap.Int("status", code),
	)
	if code >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	} else {
		log.Info("request rejected", zap.Error(err))
	}
	writeFailure(w, code, message, nil)
}

func classify(err error) (int, string) {
	switch {
	case utils.IsValidationError(err):
		return http.StatusBadRequest, utils.MsgInvalidInput

	case errors.Is(err, product.ErrProductNotFound):
		return http.StatusNotFound, utils.MsgProductMissing
	case errors.Is(err, artisan.ErrArtisanNotFound),
		errors.Is(err, category.ErrCategoryNotFound),
		errors.Is(err, category.ErrSubcategoryNotFound),
		errors.Is(err, blog.ErrPostNotFound),
		errors.Is(err, moderation.ErrLogNotFound),
		errors.Is(err, moderation.ErrRecordNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, user.ErrProfileNotFound):
		return http.StatusNotFound, utils.MsgNotFound

	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized, utils.MsgInvalidLogin
	case errors.Is(err, artisan.ErrForbidden):
		return http.StatusForbidden, utils.MsgForbidden

	case errors.Is(err, user.ErrEmailExists):
		return http.StatusConflict, utils.MsgEmailExists
	case errors.Is(err, moderation.ErrAlreadyResolved):
		return http.StatusConflict, utils.MsgAlreadyProcessed
	case errors.Is(err, wishlist.ErrAlreadyPresent):
		return http.StatusConflict, utils.MsgWishlistExists
	case errors.Is(err, product.ErrSlugExists),
		errors.Is(err, artisan.ErrSlugExists),
		errors.Is(err, category.ErrSlugExists),
		errors.Is(err, blog.ErrSlugExists),
		errors.Is(err, moderation.ErrSlugTaken),
		errors.Is(err, category.ErrCategoryInUse):
		return http.StatusConflict, utils.MsgSaveFailed

	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrNoChanges),
		errors.Is(err, artisan.ErrNoChanges),
		errors.Is(err, blog.ErrNoChanges),
		errors.Is(err, user.ErrNoProfileChanges),
		errors.Is(err, user.ErrPasswordTooLong),
		errors.Is(err, moderation.ErrNoChanges),
		errors.Is(err, moderation.ErrTableNotAllowed),
		errors.Is(err, moderation.ErrColumnNotAllowed):
		return http.StatusBadRequest, utils.MsgInvalidInput
	}
	return http.StatusInternalServerError, utils.MsgInternal
}
