package entity

import (
	"strings"
	"time"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/google/uuid"
)

// NewOrderInput is the fixed field set a caller may supply when creating an
// order. Anything outside it is rejected at the HTTP binding layer rather
// than merged in.
type NewOrderInput struct {
	CustomerID string
	ItemsJSON  string
	Amount     float64
	Currency   string
	Notes      string
}

// OnlinePayment carries the gateway correlation fields for an order created
// from a verified payment callback.
type OnlinePayment struct {
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
}

// NewOrder builds a canonical order record: validates the mandatory purchase
// fields, generates the booking and delivery codes, and stamps the
// timestamps itself. Caller-supplied timestamps are never accepted.
//
// A nil payment builds the cash-on-delivery shape (pending/unpaid); a
// non-nil payment builds the reconciled online shape (pending/paid with
// verified_at set).
func NewOrder(in NewOrderInput, payment *OnlinePayment, now time.Time) (*Order, error) {
	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, apperr.New(apperr.Validation, "customer_id is required")
	}
	if strings.TrimSpace(in.ItemsJSON) == "" {
		return nil, apperr.New(apperr.Validation, "items are required")
	}
	if in.Amount <= 0 {
		return nil, apperr.New(apperr.Validation, "amount must be greater than zero")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "INR"
	}

	o := &Order{
		ID:            uuid.NewString(),
		CustomerID:    strings.TrimSpace(in.CustomerID),
		ItemsJSON:     in.ItemsJSON,
		Amount:        in.Amount,
		Currency:      currency,
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		PaymentMethod: MethodCOD,
		BookingCode:   NewBookingCode(now),
		DeliveryCode:  NewDeliveryCode(now),
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if payment != nil {
		if payment.GatewayOrderID == "" || payment.GatewayPaymentID == "" {
			return nil, apperr.New(apperr.Validation, "gateway correlation ids are required for online payments")
		}
		o.PaymentMethod = MethodOnline
		o.PaymentStatus = PaymentPaid
		o.GatewayOrderID = payment.GatewayOrderID
		o.GatewayPaymentID = payment.GatewayPaymentID
		o.GatewaySignature = payment.GatewaySignature
		verified := now
		o.VerifiedAt = &verified
	}

	return o, nil
}

// RegenerateCodes replaces both correlation codes. Used exactly once, when
// the store reports a code collision on insert; a second collision is
// surfaced to the caller as a hard failure.
func (o *Order) RegenerateCodes(now time.Time) {
	o.BookingCode = NewBookingCode(now)
	o.DeliveryCode = NewDeliveryCode(now)
}
