package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DAA412/tz-aiti-guru/internal/domain/order"
	"github.com/DAA412/tz-aiti-guru/internal/domain/product"
)

// --- Mock repositories (the handler is tested over a real Service) ---

type itemKey struct {
	orderID   int64
	productID int64
}

type mockOrderRepo struct {
	orders    map[int64]*order.Order
	items     map[itemKey]*order.OrderItem
	nextID    int64
	createErr error
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) GetItem(_ context.Context, orderID, productID int64) (*order.OrderItem, error) {
	item, ok := m.items[itemKey{orderID, productID}]
	if !ok {
		return nil, order.ErrItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *mockOrderRepo) CreateItem(_ context.Context, item *order.OrderItem) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	item.ID = m.nextID
	cp := *item
	m.items[itemKey{item.OrderID, item.ProductID}] = &cp
	return nil
}

func (m *mockOrderRepo) UpdateItem(_ context.Context, item *order.OrderItem) error {
	cp := *item
	m.items[itemKey{item.OrderID, item.ProductID}] = &cp
	return nil
}

type mockProductRepo struct {
	byID   map[int64]*product.Product
	decErr error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) { return nil, nil }

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) DecrementQuantity(_ context.Context, id int64, delta int) error {
	if m.decErr != nil {
		return m.decErr
	}
	p, ok := m.byID[id]
	if !ok {
		return product.ErrNotFound
	}
	p.Quantity -= delta
	return nil
}

// --- Helpers ---

type fixture struct {
	orders   *mockOrderRepo
	products *mockProductRepo
	router   http.Handler
}

func newFixture() *fixture {
	orders := &mockOrderRepo{
		orders: map[int64]*order.Order{
			1: {ID: 1, CustomerID: 1, Status: "NEW"},
		},
		items: make(map[itemKey]*order.OrderItem),
	}
	products := &mockProductRepo{
		byID: map[int64]*product.Product{
			7: {ID: 7, Name: "USB-C Cable 1m", Quantity: 10, Price: decimal.RequireFromString("5.00")},
		},
	}
	h := NewHandler(order.NewService(orders, products))
	return &fixture{orders: orders, products: products, router: h.Routes()}
}

func (f *fixture) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// --- Tests ---

func TestAddOrderItem_Success(t *testing.T) {
	f := newFixture()

	rec := f.post(t, "/orders/1/items", `{"product_id": 7, "quantity": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp successResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, int64(1), resp.OrderItem.OrderID)
	assert.Equal(t, int64(7), resp.OrderItem.ProductID)
	assert.Equal(t, 3, resp.OrderItem.Quantity)
	assert.InDelta(t, 5.00, resp.OrderItem.Price, 1e-9)

	// Stock adjustment ran after the successful reconciliation.
	assert.Equal(t, 7, f.products.byID[7].Quantity)
}

func TestAddOrderItem_MergeScenario(t *testing.T) {
	f := newFixture()

	rec := f.post(t, "/orders/1/items", `{"product_id": 7, "quantity": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.post(t, "/orders/1/items", `{"product_id": 7, "quantity": 4}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp successResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 7, resp.OrderItem.Quantity)
	assert.InDelta(t, 5.00, resp.OrderItem.Price, 1e-9)
	assert.Equal(t, 3, f.products.byID[7].Quantity)

	// Stock is now 3; asking for 5 must fail and leave everything untouched.
	rec = f.post(t, "/orders/1/items", `{"product_id": 7, "quantity": 5}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeInsufficientStock, decodeError(t, rec).ErrorCode)
	assert.Equal(t, 7, f.orders.items[itemKey{1, 7}].Quantity)
	assert.Equal(t, 3, f.products.byID[7].Quantity)
}

func TestAddOrderItem_OrderNotFound(t *testing.T) {
	f := newFixture()

	rec := f.post(t, "/orders/42/items", `{"product_id": 7, "quantity": 1}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, codeOrderNotFound, decodeError(t, rec).ErrorCode)
	assert.Equal(t, 10, f.products.byID[7].Quantity)
}

func TestAddOrderItem_ProductNotFound(t *testing.T) {
	f := newFixture()

	rec := f.post(t, "/orders/1/items", `{"product_id": 999, "quantity": 1}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, codeProductNotFound, decodeError(t, rec).ErrorCode)
	assert.Empty(t, f.orders.items)
}

func TestAddOrderItem_InsufficientStock(t *testing.T) {
	f := newFixture()

	rec := f.post(t, "/orders/1/items", `{"product_id": 7, "quantity": 11}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, codeInsufficientStock, resp.ErrorCode)
	assert.NotEmpty(t, resp.Detail)
	assert.Empty(t, f.orders.items)
	assert.Equal(t, 10, f.products.byID[7].Quantity)
}

func TestAddOrderItem_Validation(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/orders/1/items", `{"product_id": `},
		{"zero quantity", "/orders/1/items", `{"product_id": 7, "quantity": 0}`},
		{"negative quantity", "/orders/1/items", `{"product_id": 7, "quantity": -2}`},
		{"missing product", "/orders/1/items", `{"quantity": 1}`},
		{"non-numeric order id", "/orders/abc/items", `{"product_id": 7, "quantity": 1}`},
		{"body order id mismatch", "/orders/1/items", `{"order_id": 2, "product_id": 7, "quantity": 1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.post(t, tc.path, tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, codeInvalidRequest, decodeError(t, rec).ErrorCode)
		})
	}
	assert.Empty(t, f.orders.items)
	assert.Equal(t, 10, f.products.byID[7].Quantity)
}

func TestAddOrderItem_BodyOrderIDMatchingPathIsAccepted(t *testing.T) {
	f := newFixture()

	rec := f.post(t, "/orders/1/items", `{"order_id": 1, "product_id": 7, "quantity": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAddOrderItem_PersistenceFailure(t *testing.T) {
	f := newFixture()
	f.orders.createErr = errors.New("db down")

	rec := f.post(t, "/orders/1/items", `{"product_id": 7, "quantity": 1}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, codeInternalError, resp.ErrorCode)
	assert.NotContains(t, resp.Detail, "db down", "internal detail must not leak")
	assert.Equal(t, 10, f.products.byID[7].Quantity, "stock step must not run after a failed add")
}

func TestAddOrderItem_StockFailureStillSucceeds(t *testing.T) {
	f := newFixture()
	f.products.decErr = errors.New("db down")

	rec := f.post(t, "/orders/1/items", `{"product_id": 7, "quantity": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp successResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.OrderItem.Quantity)
	assert.Len(t, f.orders.items, 1, "the committed item survives the stock failure")
}

func TestHealthCheck(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "order-service", resp.Service)
}
