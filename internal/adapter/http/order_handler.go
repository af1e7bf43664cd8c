package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/895623789/fresh-store-backend/internal/entity"
	"github.com/895623789/fresh-store-backend/internal/usecase"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	create *usecase.CreateOrder
	status *usecase.UpdateStatus
	query  usecase.OrderRepo
}

func NewOrderHandler(create *usecase.CreateOrder, status *usecase.UpdateStatus, query usecase.OrderRepo) *OrderHandler {
	return &OrderHandler{create: create, status: status, query: query}
}

// createOrderReq is the closed field set for order creation; unknown fields
// are dropped by the binder rather than merged into the record.
type createOrderReq struct {
	CustomerID string  `json:"customer_id" binding:"required"`
	Items      string  `json:"items" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	Currency   string  `json:"currency"`
	Notes      string  `json:"notes"`
}

// CreateOrder handles the cash-on-delivery order path.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.New(apperr.Validation, "items, amount and customer_id are required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	out, err := h.create.Execute(ctx, usecase.CreateOrderInput{
		CustomerID:     req.CustomerID,
		ItemsJSON:      req.Items,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Notes:          req.Notes,
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusCreated, gin.H{
		"order_id":      out.OrderID,
		"booking_code":  out.BookingCode,
		"delivery_code": out.DeliveryCode,
		"status":        out.Status,
		"message":       "Order created successfully",
	})
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	rec, err := h.query.GetByID(ctx, c.Param("id"))
	if errors.Is(err, usecase.ErrNotFound) {
		fail(c, apperr.New(apperr.NotFound, "order not found"))
		return
	}
	if err != nil {
		fail(c, apperr.Wrap(apperr.Storage, "load order", err))
		return
	}
	ok(c, http.StatusOK, gin.H{"order": orderJSON(rec)})
}

// ListByCustomer returns a customer's order history, newest first.
func (h *OrderHandler) ListByCustomer(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	status := entity.Status(c.Query("status"))
	if status != "" && !entity.ValidStatus(status) {
		fail(c, apperr.Newf(apperr.Validation, "unknown status %q", status))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	orders, err := h.query.ListByCustomer(ctx, c.Param("customer_id"), status, limit)
	if err != nil {
		fail(c, apperr.Wrap(apperr.Storage, "list orders", err))
		return
	}

	out := make([]gin.H, 0, len(orders))
	for i := range orders {
		out = append(out, orderJSON(&orders[i]))
	}
	ok(c, http.StatusOK, gin.H{"orders": out, "count": len(out)})
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateStatus applies one lifecycle transition; an illegal move answers 409.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.New(apperr.Validation, "status is required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	order, err := h.status.Execute(ctx, usecase.UpdateStatusInput{
		OrderID: c.Param("id"),
		Target:  entity.Status(req.Status),
		Notes:   req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{
		"order_id": order.ID,
		"status":   order.Status,
		"message":  "Order status updated successfully",
	})
}

func orderJSON(o *entity.Order) gin.H {
	out := gin.H{
		"id":             o.ID,
		"customer_id":    o.CustomerID,
		"items":          o.ItemsJSON,
		"amount":         o.Amount,
		"currency":       o.Currency,
		"status":         o.Status,
		"payment_status": o.PaymentStatus,
		"payment_method": o.PaymentMethod,
		"booking_code":   o.BookingCode,
		"delivery_code":  o.DeliveryCode,
		"created_at":     o.CreatedAt,
		"updated_at":     o.UpdatedAt,
	}
	if o.GatewayOrderID != "" {
		out["gateway_order_id"] = o.GatewayOrderID
		out["gateway_payment_id"] = o.GatewayPaymentID
	}
	if o.VerifiedAt != nil {
		out["verified_at"] = o.VerifiedAt
	}
	if o.Notes != "" {
		out["notes"] = o.Notes
	}
	if o.CashSettled {
		out["cash_settled"] = true
	}
	return out
}
