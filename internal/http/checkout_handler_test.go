package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OsvaldoArellano/kasports/internal/checkout"
	"github.com/OsvaldoArellano/kasports/internal/repository"
)

type MockCheckoutService struct {
	OrderID uuid.UUID
	Err     error

	PaymentMethod   string
	DeliveryAddress string
}

func (m *MockCheckoutService) Checkout(_ context.Context, _ int64, paymentMethod, deliveryAddress string) (uuid.UUID, error) {
	m.PaymentMethod = paymentMethod
	m.DeliveryAddress = deliveryAddress
	return m.OrderID, m.Err
}

func checkoutRouter(service CheckoutService) http.Handler {
	h := NewCheckoutHandler(service)
	r := chi.NewRouter()
	r.Use(IdentityMiddleware)
	r.Post("/checkout", h.Checkout)
	return r
}

func TestCheckout(t *testing.T) {
	orderID := uuid.New()
	service := &MockCheckoutService{OrderID: orderID}
	router := checkoutRouter(service)

	body, _ := json.Marshal(CheckoutRequestDTO{PaymentMethod: "card", DeliveryAddress: "somewhere 12"})
	req := asCustomer(httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body)), "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CheckoutResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, orderID, resp.OrderID)
	assert.Equal(t, "card", service.PaymentMethod)
	assert.Equal(t, "somewhere 12", service.DeliveryAddress)
}

func TestCheckout_PaymentMethodRequired(t *testing.T) {
	router := checkoutRouter(&MockCheckoutService{})

	body, _ := json.Marshal(CheckoutRequestDTO{DeliveryAddress: "somewhere 12"})
	req := asCustomer(httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body)), "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_payment_method")
}

func TestCheckout_EmptyCartMapsToBadRequest(t *testing.T) {
	router := checkoutRouter(&MockCheckoutService{Err: checkout.ErrEmptyCart})

	body, _ := json.Marshal(CheckoutRequestDTO{PaymentMethod: "card"})
	req := asCustomer(httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body)), "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_StockConflictMapsTo409(t *testing.T) {
	router := checkoutRouter(&MockCheckoutService{Err: repository.ErrStockConflict})

	body, _ := json.Marshal(CheckoutRequestDTO{PaymentMethod: "card"})
	req := asCustomer(httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body)), "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "stock_conflict")
}

func TestCheckout_MissingIdentity(t *testing.T) {
	router := checkoutRouter(&MockCheckoutService{})

	body, _ := json.Marshal(CheckoutRequestDTO{PaymentMethod: "card"})
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
