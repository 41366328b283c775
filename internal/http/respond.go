package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/OsvaldoArellano/kasports/internal/cart"
	"github.com/OsvaldoArellano/kasports/internal/checkout"
	"github.com/OsvaldoArellano/kasports/internal/delivery"
	"github.com/OsvaldoArellano/kasports/internal/orders"
	"github.com/OsvaldoArellano/kasports/internal/repository"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleCoreError converts the core's typed errors into HTTP statuses.
// StockConflict gets its own code so the storefront can show a retry prompt.
func handleCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCustomerNotFound),
		errors.Is(err, repository.ErrCartNotFound),
		errors.Is(err, repository.ErrLineNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrDeliveryNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, cart.ErrForbidden),
		errors.Is(err, delivery.ErrForbidden),
		errors.Is(err, orders.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())

	case errors.Is(err, repository.ErrStockConflict):
		respondError(w, http.StatusConflict, "stock_conflict", "stock changed during checkout, please retry")

	case errors.Is(err, cart.ErrOutOfStock),
		errors.Is(err, cart.ErrInsufficientStock):
		respondError(w, http.StatusConflict, "insufficient_stock", err.Error())

	case errors.Is(err, cart.ErrSizeRequired),
		errors.Is(err, cart.ErrInvalidSize),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, repository.ErrUnknownSearchField):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())

	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
