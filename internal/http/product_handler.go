package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/fjod/pixelwick/internal/domain"
	"github.com/fjod/pixelwick/internal/repository"
	"github.com/go-chi/chi/v5"
)

type ProductReader interface {
	List(ctx context.Context) []domain.Product
	Get(ctx context.Context, id int64) (domain.Product, error)
}

type ProductHandler struct {
	products ProductReader
}

func NewProductHandler(products ProductReader) *ProductHandler {
	return &ProductHandler{products: products}
}

// GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.products.List(r.Context()))
}

// GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDPrefix(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, r, http.StatusNotFound, "Product not found")
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if errors.Is(err, repository.ErrProductNotFound) {
		respondError(w, r, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "Failed to load product")
		return
	}

	respondJSON(w, r, http.StatusOK, product)
}
