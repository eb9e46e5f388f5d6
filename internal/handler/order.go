package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/DAA412/tz-aiti-guru/internal/domain/order"
)

// Error codes exposed to API clients.
const (
	codeOrderNotFound     = "ORDER_NOT_FOUND"
	codeProductNotFound   = "PRODUCT_NOT_FOUND"
	codeInsufficientStock = "INSUFFICIENT_STOCK"
	codeInvalidRequest    = "INVALID_REQUEST"
	codeInternalError     = "INTERNAL_ERROR"
)

// addItemRequest is the JSON body for POST /orders/{orderID}/items. OrderID
// is optional; when present it must match the path parameter.
type addItemRequest struct {
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type orderItemResponse struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type successResponse struct {
	Message   string            `json:"message"`
	OrderItem orderItemResponse `json:"order_item"`
}

// AddOrderItem adds a product line item to an existing order. On success it
// also runs the best-effort stock decrement; a decrement failure is logged by
// the service and does not change the response, since the line item is
// already committed.
func (h *Handler) AddOrderItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || orderID <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "order id must be a positive integer")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid request body")
		return
	}
	if req.OrderID != 0 && req.OrderID != orderID {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "order_id in body does not match URL")
		return
	}
	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "product_id must be a positive integer")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "quantity must be greater than 0")
		return
	}

	item, err := h.service.AddItem(r.Context(), order.AddItemRequest{
		OrderID:   orderID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.writeAddItemError(w, r, err)
		return
	}

	if !h.service.DecrementStock(r.Context(), req.ProductID, req.Quantity) {
		// Already logged by the service. The item is committed, so the
		// request still succeeds; stock is reconciled manually.
		zctx.From(r.Context()).Warn("Order item committed without stock decrement",
			zap.Int64("order_id", orderID),
			zap.Int64("product_id", req.ProductID),
		)
	}

	writeJSON(w, http.StatusOK, successResponse{
		Message: "item added to order",
		OrderItem: orderItemResponse{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.InexactFloat64(),
		},
	})
}

// writeAddItemError maps domain errors to transport outcomes. The taxonomy is
// closed: not-found and invalid-state errors carry their own message, while
// anything else is a 500 with a generic detail and a logged cause.
func (h *Handler) writeAddItemError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		orderNotFound *order.OrderNotFoundError
		prodNotFound  *order.ProductNotFoundError
		noStock       *order.InsufficientStockError
	)
	switch {
	case errors.As(err, &orderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, orderNotFound.Error())
	case errors.As(err, &prodNotFound):
		writeError(w, http.StatusNotFound, codeProductNotFound, prodNotFound.Error())
	case errors.As(err, &noStock):
		writeError(w, http.StatusBadRequest, codeInsufficientStock, noStock.Error())
	case errors.Is(err, order.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
	default:
		zctx.From(r.Context()).Error("Add order item failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal server error")
	}
}
