package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
)

type ProductService interface {
	ListProducts(ctx context.Context, category string, limit int) ([]domain.Product, error)
	Seed(ctx context.Context, force bool) (service.SeedResult, error)
}

type ProductHandler struct {
	products ProductService
	timeout  time.Duration
}

func NewProductHandler(products ProductService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		products: products,
		timeout:  timeout,
	}
}

type SeedRequestDTO struct {
	Force bool `json:"force"`
}

// GET /api/products?category=&limit=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit := service.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_input", "limit must be an integer")
			return
		}
		limit = n
	}

	products, err := h.products.ListProducts(ctx, r.URL.Query().Get("category"), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// POST /api/products/seed
func (h *ProductHandler) Seed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	// an empty body means force=false
	var req SeedRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := h.products.Seed(ctx, req.Force)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}
