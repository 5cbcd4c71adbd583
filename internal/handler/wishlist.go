package handler

import (
	"net/http"

	"artisanlink/internal/utils"
	"artisanlink/internal/wishlist"

	"github.com/go-chi/chi/v5"
)

type wishlistResponse struct {
	Items []wishlist.Entry `json:"items"`
	Count int              `json:"count"`
}

func toWishlistResponse(s *wishlist.Store) wishlistResponse {
	return wishlistResponse{Items: s.Items(), Count: s.Count()}
}

// loadWishlist answers itself and returns nil when the wishlist could not be read.
func (h *Handler) loadWishlist(w http.ResponseWriter, r *http.Request) *client {
	c, err := h.newClient(r)
	if err != nil {
		writeError(w, r, err)
		return nil
	}
	if err := c.wishlist.Load(r.Context()); err != nil {
		writeFailure(w, http.StatusServiceUnavailable, utils.MsgLoadWishlist, toWishlistResponse(c.wishlist))
		c.Close()
		return nil
	}
	return c
}

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) {
	c := h.loadWishlist(w, r)
	if c == nil {
		return
	}
	defer c.Close()

	writeOK(w, http.StatusOK, "", toWishlistResponse(c.wishlist))
}

type wishlistRequest struct {
	ProductID string `json:"productId"`
}

// addWishlist is idempotent: a product already saved answers 200 with
// alreadyPresent set.
func (h *Handler) addWishlist(w http.ResponseWriter, r *http.Request) {
	var req wishlistRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ProductID == "" {
		writeFailure(w, http.StatusBadRequest, utils.MsgInvalidInput, nil)
		return
	}

	c := h.loadWishlist(w, r)
	if c == nil {
		return
	}
	defer c.Close()

	res, err := c.wishlist.Add(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if res.AlreadyPresent {
		writeOK(w, http.StatusOK, utils.MsgWishlistExists, res)
		return
	}
	writeOK(w, http.StatusCreated, utils.MsgWishlistAdded, res)
}

func (h *Handler) removeWishlist(w http.ResponseWriter, r *http.Request) {
	c := h.loadWishlist(w, r)
	if c == nil {
		return
	}
	defer c.Close()

	if err := c.wishlist.Remove(r.Context(), chi.URLParam(r, "productID")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, utils.MsgWishlistRemoved, toWishlistResponse(c.wishlist))
}
