//go:build integration

package integration

import (
	"math"
	"net/http"
	"testing"
)

// The seed catalog provides order 1 and product 7 with quantity 10 and price
// 5.00. The tests in this file run in order and walk the product's stock
// down: 10 → 7 → 3.

func TestAddItem_CreatesItem(t *testing.T) {
	resp := doPost(t, "/orders/1/items", addItemRequest{ProductID: 7, Quantity: 3})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body successResponse
	decodeBody(t, resp, &body)
	if body.OrderItem.OrderID != 1 || body.OrderItem.ProductID != 7 {
		t.Errorf("unexpected item identity: %+v", body.OrderItem)
	}
	if body.OrderItem.Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", body.OrderItem.Quantity)
	}
	if math.Abs(body.OrderItem.Price-5.00) > 1e-9 {
		t.Errorf("expected price 5.00, got %v", body.OrderItem.Price)
	}
}

func TestAddItem_MergesIntoExistingItem(t *testing.T) {
	resp := doPost(t, "/orders/1/items", addItemRequest{ProductID: 7, Quantity: 4})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body successResponse
	decodeBody(t, resp, &body)
	if body.OrderItem.Quantity != 7 {
		t.Errorf("expected merged quantity 7, got %d", body.OrderItem.Quantity)
	}
	if math.Abs(body.OrderItem.Price-5.00) > 1e-9 {
		t.Errorf("expected price 5.00, got %v", body.OrderItem.Price)
	}
}

func TestAddItem_InsufficientStockAfterDecrements(t *testing.T) {
	// Stock is down to 3 after the previous adds; 5 must be rejected.
	resp := doPost(t, "/orders/1/items", addItemRequest{ProductID: 7, Quantity: 5})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body errorResponse
	decodeBody(t, resp, &body)
	if body.ErrorCode != "INSUFFICIENT_STOCK" {
		t.Errorf("expected INSUFFICIENT_STOCK, got %q", body.ErrorCode)
	}
}

func TestAddItem_OrderNotFound(t *testing.T) {
	resp := doPost(t, "/orders/9999/items", addItemRequest{ProductID: 7, Quantity: 1})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var body errorResponse
	decodeBody(t, resp, &body)
	if body.ErrorCode != "ORDER_NOT_FOUND" {
		t.Errorf("expected ORDER_NOT_FOUND, got %q", body.ErrorCode)
	}
}

func TestAddItem_ProductNotFound(t *testing.T) {
	resp := doPost(t, "/orders/1/items", addItemRequest{ProductID: 9999, Quantity: 1})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var body errorResponse
	decodeBody(t, resp, &body)
	if body.ErrorCode != "PRODUCT_NOT_FOUND" {
		t.Errorf("expected PRODUCT_NOT_FOUND, got %q", body.ErrorCode)
	}
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	resp := doPost(t, "/orders/1/items", addItemRequest{ProductID: 7, Quantity: 0})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAddItem_RequestIDEchoed(t *testing.T) {
	resp := doPost(t, "/orders/1/items", addItemRequest{ProductID: 9999, Quantity: 1})
	defer resp.Body.Close()

	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID response header")
	}
}
