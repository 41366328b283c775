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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OsvaldoArellano/kasports/internal/cart"
	"github.com/OsvaldoArellano/kasports/internal/domain"
	"github.com/OsvaldoArellano/kasports/internal/pricing"
)

type MockCartService struct {
	View      *cart.View
	ViewErr   error
	Line      *domain.LineItem
	AddErr    error
	UpdateErr error
	RemoveErr error

	AddedRef      domain.ProductRef
	AddedSize     string
	AddedQuantity int
	UpdatedLineID uuid.UUID
	UpdatedQty    int
	RemovedLineID uuid.UUID
}

func (m *MockCartService) ViewCart(_ context.Context, _ int64) (*cart.View, error) {
	return m.View, m.ViewErr
}

func (m *MockCartService) AddItem(_ context.Context, _ int64, ref domain.ProductRef, size string, quantity int) (*domain.LineItem, error) {
	m.AddedRef = ref
	m.AddedSize = size
	m.AddedQuantity = quantity
	return m.Line, m.AddErr
}

func (m *MockCartService) UpdateQuantity(_ context.Context, _ int64, lineID uuid.UUID, newQuantity int) (*domain.LineItem, error) {
	m.UpdatedLineID = lineID
	m.UpdatedQty = newQuantity
	return m.Line, m.UpdateErr
}

func (m *MockCartService) RemoveItem(_ context.Context, _ int64, lineID uuid.UUID) error {
	m.RemovedLineID = lineID
	return m.RemoveErr
}

func cartRouter(service CartService) http.Handler {
	h := NewCartHandler(service)
	r := chi.NewRouter()
	r.Use(IdentityMiddleware)
	r.Get("/cart", h.GetCart)
	r.Post("/cart/items", h.AddItem)
	r.Put("/cart/items/{line_id}", h.UpdateQuantity)
	r.Delete("/cart/items/{line_id}", h.RemoveItem)
	return r
}

func asCustomer(req *http.Request, id string) *http.Request {
	req.Header.Set("X-Customer-ID", id)
	return req
}

func TestGetCart(t *testing.T) {
	service := &MockCartService{View: &cart.View{
		Cart:   &domain.Cart{ID: uuid.New(), CustomerID: 7, Status: domain.CartStatusActive},
		Totals: pricing.Totals{Subtotal: decimal.NewFromInt(600), ShippingCost: decimal.NewFromInt(80)},
	}}
	router := cartRouter(service)

	req := asCustomer(httptest.NewRequest(http.MethodGet, "/cart", nil), "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Status":"Active"`)
}

func TestGetCart_MissingIdentity(t *testing.T) {
	router := cartRouter(&MockCartService{})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddItem(t *testing.T) {
	line := &domain.LineItem{ID: uuid.New(), Quantity: 2, Subtotal: decimal.NewFromInt(200)}
	service := &MockCartService{Line: line}
	router := cartRouter(service)

	body, _ := json.Marshal(AddItemRequestDTO{Kind: "footwear", ProductID: 3, Size: "26", Quantity: 2})
	req := asCustomer(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body)), "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.ProductRef{Kind: domain.KindFootwear, ID: 3}, service.AddedRef)
	assert.Equal(t, "26", service.AddedSize)
	assert.Equal(t, 2, service.AddedQuantity)
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	service := &MockCartService{Line: &domain.LineItem{ID: uuid.New()}}
	router := cartRouter(service)

	body, _ := json.Marshal(AddItemRequestDTO{Kind: "cap", ProductID: 1})
	req := asCustomer(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body)), "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, service.AddedQuantity)
}

func TestAddItem_RejectsUnknownKind(t *testing.T) {
	router := cartRouter(&MockCartService{})

	body, _ := json.Marshal(AddItemRequestDTO{Kind: "boat", ProductID: 1, Quantity: 1})
	req := asCustomer(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body)), "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_kind")
}

func TestAddItem_StockErrorsMapToConflict(t *testing.T) {
	service := &MockCartService{AddErr: cart.ErrInsufficientStock}
	router := cartRouter(service)

	body, _ := json.Marshal(AddItemRequestDTO{Kind: "cap", ProductID: 1, Quantity: 99})
	req := asCustomer(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body)), "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient_stock")
}

func TestUpdateQuantity(t *testing.T) {
	lineID := uuid.New()
	service := &MockCartService{Line: &domain.LineItem{ID: lineID, Quantity: 5}}
	router := cartRouter(service)

	body, _ := json.Marshal(UpdateQuantityRequestDTO{Quantity: 5})
	req := asCustomer(httptest.NewRequest(http.MethodPut, "/cart/items/"+lineID.String(), bytes.NewReader(body)), "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, lineID, service.UpdatedLineID)
	assert.Equal(t, 5, service.UpdatedQty)
}

func TestUpdateQuantity_BadLineID(t *testing.T) {
	router := cartRouter(&MockCartService{})

	body, _ := json.Marshal(UpdateQuantityRequestDTO{Quantity: 5})
	req := asCustomer(httptest.NewRequest(http.MethodPut, "/cart/items/not-a-uuid", bytes.NewReader(body)), "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateQuantity_ForeignLineForbidden(t *testing.T) {
	service := &MockCartService{UpdateErr: cart.ErrForbidden}
	router := cartRouter(service)

	body, _ := json.Marshal(UpdateQuantityRequestDTO{Quantity: 5})
	req := asCustomer(httptest.NewRequest(http.MethodPut, "/cart/items/"+uuid.NewString(), bytes.NewReader(body)), "8")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRemoveItem(t *testing.T) {
	lineID := uuid.New()
	service := &MockCartService{}
	router := cartRouter(service)

	req := asCustomer(httptest.NewRequest(http.MethodDelete, "/cart/items/"+lineID.String(), nil), "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, lineID, service.RemovedLineID)
}
