package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

type CheckoutService interface {
	Checkout(ctx context.Context, customerID int64, paymentMethod, deliveryAddress string) (uuid.UUID, error)
}

type CheckoutHandler struct {
	service CheckoutService
}

func NewCheckoutHandler(service CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

type CheckoutRequestDTO struct {
	PaymentMethod   string `json:"payment_method"`
	DeliveryAddress string `json:"delivery_address,omitempty"`
}

type CheckoutResponseDTO struct {
	OrderID uuid.UUID `json:"order_id"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	customerID := getCustomerIDFromContext(r.Context())
	if customerID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PaymentMethod == "" {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "payment_method is required")
		return
	}

	orderID, err := h.service.Checkout(r.Context(), customerID, req.PaymentMethod, req.DeliveryAddress)
	if err != nil {
		handleCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{OrderID: orderID})
}
