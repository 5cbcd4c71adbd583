package handler

import (
	"context"
	"net/http"

	"artisanlink/internal/artisan"
	"artisanlink/internal/blog"
	"artisanlink/internal/category"
	"artisanlink/internal/middleware"
	"artisanlink/internal/moderation"
	"artisanlink/internal/product"
	"artisanlink/internal/search"
	"artisanlink/internal/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) adminRoutes(r chi.Router) {
	r.Use(middleware.RequireRole(utils.RoleAdmin))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.adminListProducts)
		r.Post("/", h.adminCreateProduct)
		r.Get("/{id}", h.getProduct)
		r.Patch("/{id}", h.adminUpdateProduct)
		r.Delete("/{id}", h.adminDeleteProduct)
	})

	r.Route("/artisans", func(r chi.Router) {
		r.Get("/", h.listArtisans)
		r.Post("/", h.adminCreateArtisan)
		r.Patch("/{id}", h.updateArtisan)
		r.Delete("/{id}", h.adminDeleteArtisan)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.Post("/", h.adminCreateCategory)
		r.Patch("/{id}", h.adminUpdateCategory)
		r.Delete("/{id}", h.adminDeleteCategory)
	})

	r.Route("/subcategories", func(r chi.Router) {
		r.Post("/", h.adminCreateSubcategory)
		r.Patch("/{id}", h.adminUpdateSubcategory)
		r.Delete("/{id}", h.adminDeleteSubcategory)
	})

	r.Route("/blog", func(r chi.Router) {
		r.Get("/", h.adminListPosts)
		r.Post("/", h.adminCreatePost)
		r.Get("/{id}", h.adminGetPost)
		r.Patch("/{id}", h.adminUpdatePost)
		r.Delete("/{id}", h.adminDeletePost)
	})

	r.Route("/moderation", func(r chi.Router) {
		r.Get("/", h.listModeration)
		r.Get("/{id}", h.getModeration)
		r.Post("/{id}/approve", h.approveModification)
		r.Post("/{id}/reject", h.rejectModification)
	})
}

// create decodes a body, runs fn and answers 201 with its result.
func create[In, Out any](w http.ResponseWriter, r *http.Request, fn func(In) (Out, error)) {
	var in In
	if err := decodeJSON(w, r, &in); err != nil {
		writeFailure(w, http.StatusBadRequest, utils.MsgInvalidInput, nil)
		return
	}
	out, err := fn(in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, utils.MsgSaved, out)
}

// update decodes a patch for the {id} route parameter.
func update[In, Out any](w http.ResponseWriter, r *http.Request, fn func(id string, in In) (Out, error)) {
	var in In
	if err := decodeJSON(w, r, &in); err != nil {
		writeFailure(w, http.StatusBadRequest, utils.MsgInvalidInput, nil)
		return
	}
	out, err := fn(chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, utils.MsgSaved, out)
}

func remove(w http.ResponseWriter, r *http.Request, fn func(id string) error) {
	if err := fn(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, utils.MsgDeleted, nil)
}

// ---------- PRODUCTS ----------

func (h *Handler) adminListProducts(w http.ResponseWriter, r *http.Request) {
	f := search.Decode(r.URL.Query())
	res, err := h.Products.AdminList(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", productListResponse{ListResult: res, Filters: f, Query: f.Encode()})
}

func (h *Handler) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	create(w, r, func(in product.CreateInput) (*product.Product, error) {
		return h.Products.Create(r.Context(), in)
	})
}

func (h *Handler) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	update(w, r, func(id string, in product.UpdateInput) (*product.Product, error) {
		return h.Products.Update(r.Context(), id, in)
	})
}

func (h *Handler) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	remove(w, r, func(id string) error { return h.Products.Delete(r.Context(), id) })
}

// ---------- ARTISANS ----------

func (h *Handler) adminCreateArtisan(w http.ResponseWriter, r *http.Request) {
	create(w, r, func(in artisan.CreateInput) (*artisan.Artisan, error) {
		return h.Artisans.Create(r.Context(), in)
	})
}

func (h *Handler) adminDeleteArtisan(w http.ResponseWriter, r *http.Request) {
	remove(w, r, func(id string) error { return h.Artisans.Delete(r.Context(), id) })
}

// ---------- CATEGORIES ----------

func (h *Handler) adminCreateCategory(w http.ResponseWriter, r *http.Request) {
	create(w, r, func(in category.CategoryInput) (*category.Category, error) {
		return h.Categories.AddCategory(r.Context(), in)
	})
}

func (h *Handler) adminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	update(w, r, func(id string, in category.CategoryInput) (*category.Category, error) {
		return h.Categories.UpdateCategory(r.Context(), id, in)
	})
}

func (h *Handler) adminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	remove(w, r, func(id string) error { return h.Categories.DeleteCategory(r.Context(), id) })
}

func (h *Handler) adminCreateSubcategory(w http.ResponseWriter, r *http.Request) {
	create(w, r, func(in category.SubcategoryInput) (*category.Subcategory, error) {
		return h.Categories.AddSubcategory(r.Context(), in)
	})
}

func (h *Handler) adminUpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	update(w, r, func(id string, in category.SubcategoryInput) (*category.Subcategory, error) {
		return h.Categories.UpdateSubcategory(r.Context(), id, in)
	})
}

func (h *Handler) adminDeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	remove(w, r, func(id string) error { return h.Categories.DeleteSubcategory(r.Context(), id) })
}

// ---------- BLOG ----------

func (h *Handler) adminListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Blog.AdminList(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", posts)
}

func (h *Handler) adminGetPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.Blog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", p)
}

func (h *Handler) adminCreatePost(w http.ResponseWriter, r *http.Request) {
	create(w, r, func(in blog.CreateInput) (*blog.Post, error) {
		return h.Blog.Create(r.Context(), in)
	})
}

func (h *Handler) adminUpdatePost(w http.ResponseWriter, r *http.Request) {
	update(w, r, func(id string, in blog.UpdateInput) (*blog.Post, error) {
		return h.Blog.Update(r.Context(), id, in)
	})
}

func (h *Handler) adminDeletePost(w http.ResponseWriter, r *http.Request) {
	remove(w, r, func(id string) error { return h.Blog.Delete(r.Context(), id) })
}

// ---------- MODERATION ----------

// listModeration filters by ?status=; an unknown status lists everything.
func (h *Handler) listModeration(w http.ResponseWriter, r *http.Request) {
	var status *moderation.Status
	if v := r.URL.Query().Get("status"); v != "" {
		s := moderation.Status(v)
		status = &s
	}

	logs, err := h.Moderation.List(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", logs)
}

func (h *Handler) getModeration(w http.ResponseWriter, r *http.Request) {
	l, err := h.Moderation.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", l)
}

func (h *Handler) approveModification(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Moderation.Approve, utils.MsgApproved)
}

func (h *Handler) rejectModification(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Moderation.Reject, utils.MsgRejected)
}

func (h *Handler) review(
	w http.ResponseWriter,
	r *http.Request,
	decide func(ctx context.Context, id string, reviewer uint) (*moderation.Log, error),
	message string,
) {
	reviewer, _ := utils.GetUserIDFromContext(r.Context())
	l, err := decide(r.Context(), chi.URLParam(r, "id"), reviewer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, message, l)
}
