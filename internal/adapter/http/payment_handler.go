package http

import (
	"context"
	"net/http"
	"time"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/895623789/fresh-store-backend/internal/usecase"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments  *usecase.Payments
	reconcile *usecase.ReconcilePayment
}

func NewPaymentHandler(payments *usecase.Payments, reconcile *usecase.ReconcilePayment) *PaymentHandler {
	return &PaymentHandler{payments: payments, reconcile: reconcile}
}

type createIntentReq struct {
	Amount   float64           `json:"amount" binding:"required"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

// CreateIntent asks the gateway to reserve the amount for an online payment.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req createIntentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.New(apperr.Validation, "valid amount is required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 8*time.Second)
	defer cancel()

	intent, err := h.payments.CreateIntent(ctx, usecase.CreateIntentInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{
		"gateway_order_id": intent.GatewayOrderID,
		"amount":           intent.Amount,
		"currency":         intent.Currency,
	})
}

type callbackReq struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
	OrderDetails     *struct {
		CustomerID string  `json:"customer_id"`
		Items      string  `json:"items"`
		Amount     float64 `json:"amount"`
		Currency   string  `json:"currency"`
		Notes      string  `json:"notes"`
	} `json:"order_details"`
}

// Callback reconciles a gateway payment callback. A bad signature answers
// 401 and mutates nothing; a replayed callback answers 200 with the order
// it already created.
func (h *PaymentHandler) Callback(c *gin.Context) {
	var req callbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.New(apperr.Validation, "gateway_order_id, gateway_payment_id and signature are required"))
		return
	}

	in := usecase.ReconcileInput{
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	}
	if req.OrderDetails != nil {
		in.OrderDetails = &usecase.CreateOrderInput{
			CustomerID: req.OrderDetails.CustomerID,
			ItemsJSON:  req.OrderDetails.Items,
			Amount:     req.OrderDetails.Amount,
			Currency:   req.OrderDetails.Currency,
			Notes:      req.OrderDetails.Notes,
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	out, err := h.reconcile.Execute(ctx, in)
	if err != nil {
		fail(c, err)
		return
	}

	resp := gin.H{
		"verified":   out.Verified,
		"payment_id": out.GatewayPaymentID,
		"message":    "Payment verified successfully",
	}
	if out.OrderID != "" {
		resp["order_id"] = out.OrderID
	}
	if out.BookingCode != "" {
		resp["booking_code"] = out.BookingCode
		resp["delivery_code"] = out.DeliveryCode
	}
	ok(c, http.StatusOK, resp)
}

// GetPayment returns the gateway's view of a payment.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 8*time.Second)
	defer cancel()

	snap, err := h.payments.FetchPayment(ctx, c.Param("payment_id"))
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"payment": gin.H{
		"id":         snap.ID,
		"amount":     snap.Amount,
		"currency":   snap.Currency,
		"status":     snap.Status,
		"method":     snap.Method,
		"created_at": snap.CreatedAt,
	}})
}

type refundReq struct {
	PaymentID string   `json:"payment_id" binding:"required"`
	Amount    *float64 `json:"amount"` // nil = full refund
	Reason    string   `json:"reason"`
}

func (h *PaymentHandler) Refund(c *gin.Context) {
	var req refundReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.New(apperr.Validation, "payment_id is required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 8*time.Second)
	defer cancel()

	res, err := h.payments.Refund(ctx, req.PaymentID, req.Amount, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{
		"refund_id": res.RefundID,
		"amount":    res.Amount,
		"status":    res.Status,
	})
}
