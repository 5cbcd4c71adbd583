package handler

import (
	"net/http"
	"strconv"

	"artisanlink/internal/artisan"
	"artisanlink/internal/category"
	"artisanlink/internal/logger"
	"artisanlink/internal/product"
	"artisanlink/internal/search"
	"artisanlink/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type productListResponse struct {
	*product.ListResult
	Filters search.Filters `json:"filters"`
	// Query is the canonical query string of the filters.
	Query string `json:"query"`
}

// listProducts reads the filters from the query string, the same encoding
// the live search writes into the URL.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	f := search.Decode(r.URL.Query())

	res, err := h.Products.Search(r.Context(), f)
	if err != nil {
		logger.FromCtx(r.Context()).Error("product search failed",
			zap.String("layer", "handler"),
			zap.String("query", f.Encode()),
			zap.Error(err),
		)
		writeFailure(w, http.StatusServiceUnavailable, utils.MsgLoadProducts,
			productListResponse{ListResult: emptyProducts(f), Filters: f, Query: f.Encode()})
		return
	}
	writeOK(w, http.StatusOK, "", productListResponse{ListResult: res, Filters: f, Query: f.Encode()})
}

func emptyProducts(f search.Filters) *product.ListResult {
	return &product.ListResult{
		Items:    []*product.Product{},
		Page:     f.Page,
		PageSize: product.DefaultPageSize,
	}
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !p.IsActive && !utils.IsAdmin(r.Context()) {
		writeError(w, r, product.ErrProductNotFound)
		return
	}
	writeOK(w, http.StatusOK, "", p)
}

type listResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// listParams reads filter, limit and page; malformed numbers are ignored.
func listParams(r *http.Request) category.ListParams {
	q := r.URL.Query()
	var params category.ListParams
	if v := q.Get("filter"); v != "" {
		params.Filter = &v
	}
	if n, err := strconv.ParseInt(q.Get("limit"), 10, 32); err == nil {
		v := int32(n)
		params.Limit = &v
	}
	if n, err := strconv.ParseInt(q.Get("page"), 10, 32); err == nil {
		v := int32(n)
		params.Page = &v
	}
	return params
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.Categories.GetCategories(r.Context(), listParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", listResponse[*category.Category]{Items: items, Total: total})
}

func (h *Handler) listSubcategories(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.Categories.GetSubcategories(r.Context(), chi.URLParam(r, "id"), listParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", listResponse[*category.Subcategory]{Items: items, Total: total})
}

func (h *Handler) listArtisans(w http.ResponseWriter, r *http.Request) {
	items, err := h.Artisans.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", items)
}

func (h *Handler) getArtisan(w http.ResponseWriter, r *http.Request) {
	a, err := h.Artisans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", a)
}

// updateArtisan serves both admins and owners; owner edits come back as
// pending proposals.
func (h *Handler) updateArtisan(w http.ResponseWriter, r *http.Request) {
	var input artisan.UpdateInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeFailure(w, http.StatusBadRequest, utils.MsgInvalidInput, nil)
		return
	}

	res, err := h.Artisans.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if res.Pending {
		writeOK(w, http.StatusAccepted, utils.MsgPendingApproval, res)
		return
	}
	writeOK(w, http.StatusOK, utils.MsgSaved, res)
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Blog.ListPublished(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", posts)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.Blog.GetPublished(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", p)
}
