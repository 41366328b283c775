package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/OsvaldoArellano/kasports/internal/domain"
	"github.com/OsvaldoArellano/kasports/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrderService interface {
	Get(ctx context.Context, customerID int64, orderID uuid.UUID) (*orders.Detail, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error)
	Search(ctx context.Context, field, query string) ([]*domain.Order, error)
}

type DeliveryService interface {
	MarkShipped(ctx context.Context, orderID uuid.UUID) error
	ConfirmReceipt(ctx context.Context, customerID int64, orderID uuid.UUID) error
	ReportNotReceived(ctx context.Context, customerID int64, orderID uuid.UUID) error
	AttachEvidence(ctx context.Context, customerID int64, orderID uuid.UUID, imagePath string) error
	Cancel(ctx context.Context, customerID int64, orderID uuid.UUID) error
}

type OrdersHandler struct {
	orders     OrderService
	deliveries DeliveryService
}

func NewOrdersHandler(orderService OrderService, deliveryService DeliveryService) *OrdersHandler {
	return &OrdersHandler{orders: orderService, deliveries: deliveryService}
}

type AttachEvidenceRequestDTO struct {
	ImagePath string `json:"image_path"`
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerIDFromContext(r.Context())
	if customerID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	list, err := h.orders.ListByCustomer(r.Context(), customerID)
	if err != nil {
		handleCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	customerID, orderID, ok := h.identify(w, r)
	if !ok {
		return
	}

	detail, err := h.orders.Get(r.Context(), customerID, orderID)
	if err != nil {
		handleCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

func (h *OrdersHandler) ConfirmReceipt(w http.ResponseWriter, r *http.Request) {
	customerID, orderID, ok := h.identify(w, r)
	if !ok {
		return
	}

	if err := h.deliveries.ConfirmReceipt(r.Context(), customerID, orderID); err != nil {
		handleCoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) ReportNotReceived(w http.ResponseWriter, r *http.Request) {
	customerID, orderID, ok := h.identify(w, r)
	if !ok {
		return
	}

	if err := h.deliveries.ReportNotReceived(r.Context(), customerID, orderID); err != nil {
		handleCoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *OrdersHandler) AttachEvidence(w http.ResponseWriter, r *http.Request) {
	customerID, orderID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req AttachEvidenceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImagePath == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "image_path is required")
		return
	}

	if err := h.deliveries.AttachEvidence(r.Context(), customerID, orderID, req.ImagePath); err != nil {
		handleCoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	customerID, orderID, ok := h.identify(w, r)
	if !ok {
		return
	}

	if err := h.deliveries.Cancel(r.Context(), customerID, orderID); err != nil {
		handleCoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkShipped is the admin shipment action; RequireAdmin guards the route.
func (h *OrdersHandler) MarkShipped(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	if err := h.deliveries.MarkShipped(r.Context(), orderID); err != nil {
		handleCoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SearchOrders is the admin order search; field names outside the
// enumerated set are rejected.
func (h *OrdersHandler) SearchOrders(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	if field == "" {
		field = "customer"
	}
	query := r.URL.Query().Get("q")

	list, err := h.orders.Search(r.Context(), field, query)
	if err != nil {
		handleCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) identify(w http.ResponseWriter, r *http.Request) (int64, uuid.UUID, bool) {
	customerID := getCustomerIDFromContext(r.Context())
	if customerID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return 0, uuid.Nil, false
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return 0, uuid.Nil, false
	}
	return customerID, orderID, true
}
