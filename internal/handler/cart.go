package handler

import (
	"net/http"

	"artisanlink/internal/cart"
	"artisanlink/internal/logger"
	"artisanlink/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type cartResponse struct {
	Items []cart.LineItem `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func toCartResponse(s *cart.Store) cartResponse {
	return cartResponse{Items: s.Items(), Total: s.Total(), Count: s.Count()}
}

type cartItemRequest struct {
	ProductID          string            `json:"productId"`
	Quantity           int               `json:"quantity"`
	SelectedVariations map[string]string `json:"selectedVariations"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.newClient(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer c.Close()

	if err := c.cart.Load(r.Context()); err != nil {
		writeFailure(w, http.StatusServiceUnavailable, utils.MsgLoadCart, toCartResponse(c.cart))
		return
	}
	writeOK(w, http.StatusOK, "", toCartResponse(c.cart))
}

// withCart loads the cart, runs op and answers with the resulting cart. A
// cart that could not be read is never written.
func (h *Handler) withCart(w http.ResponseWriter, r *http.Request, message string, op func(s *cart.Store, req cartItemRequest) error) {
	var req cartItemRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ProductID == "" {
		writeFailure(w, http.StatusBadRequest, utils.MsgInvalidInput, nil)
		return
	}

	c, err := h.newClient(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer c.Close()

	if err := c.cart.Load(r.Context()); err != nil {
		writeFailure(w, http.StatusServiceUnavailable, utils.MsgLoadCart, nil)
		return
	}

	if err := op(c.cart, req); err != nil {
		if code, _ := classify(err); code >= http.StatusInternalServerError {
			logger.FromCtx(r.Context()).Error("cart write failed",
				zap.String("layer", "handler"),
				zap.String("product_id", req.ProductID),
				zap.Error(err),
			)
			writeFailure(w, http.StatusInternalServerError, utils.MsgSaveFailed, toCartResponse(c.cart))
			return
		}
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, message, toCartResponse(c.cart))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, r, utils.MsgAddedToCart, func(s *cart.Store, req cartItemRequest) error {
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		return s.Add(r.Context(), req.ProductID, req.Quantity, req.SelectedVariations)
	})
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, r, utils.MsgCartUpdated, func(s *cart.Store, req cartItemRequest) error {
		return s.UpdateQuantity(r.Context(), req.ProductID, req.Quantity, req.SelectedVariations)
	})
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, r, utils.MsgCartUpdated, func(s *cart.Store, req cartItemRequest) error {
		return s.Remove(r.Context(), req.ProductID, req.SelectedVariations)
	})
}
