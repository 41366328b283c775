package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/OsvaldoArellano/kasports/internal/cart"
	"github.com/OsvaldoArellano/kasports/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CartService is the slice of the cart manager this handler uses.
type CartService interface {
	ViewCart(ctx context.Context, customerID int64) (*cart.View, error)
	AddItem(ctx context.Context, customerID int64, ref domain.ProductRef, size string, quantity int) (*domain.LineItem, error)
	UpdateQuantity(ctx context.Context, customerID int64, lineID uuid.UUID, newQuantity int) (*domain.LineItem, error)
	RemoveItem(ctx context.Context, customerID int64, lineID uuid.UUID) error
}

type CartHandler struct {
	service CartService
}

func NewCartHandler(service CartService) *CartHandler {
	return &CartHandler{service: service}
}

type AddItemRequestDTO struct {
	Kind      string `json:"kind"`
	ProductID int64  `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerIDFromContext(r.Context())
	if customerID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	view, err := h.service.ViewCart(r.Context(), customerID)
	if err != nil {
		handleCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerIDFromContext(r.Context())
	if customerID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	kind := domain.ProductKind(req.Kind)
	if !kind.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_kind", "kind must be apparel, footwear or cap")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1 // storefront add button defaults to one unit
	}

	line, err := h.service.AddItem(r.Context(), customerID, domain.ProductRef{Kind: kind, ID: req.ProductID}, req.Size, req.Quantity)
	if err != nil {
		handleCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, line)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerIDFromContext(r.Context())
	if customerID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	lineID, err := uuid.Parse(chi.URLParam(r, "line_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_line_id", "line_id must be a UUID")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	line, err := h.service.UpdateQuantity(r.Context(), customerID, lineID, req.Quantity)
	if err != nil {
		handleCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, line)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerIDFromContext(r.Context())
	if customerID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	lineID, err := uuid.Parse(chi.URLParam(r, "line_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_line_id", "line_id must be a UUID")
		return
	}

	if err := h.service.RemoveItem(r.Context(), customerID, lineID); err != nil {
		handleCoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
