package usecase

import (
	"context"
	"strings"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/google/uuid"
)

type CreateIntentInput struct {
	Amount   float64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Payments is the thin coordinator over the gateway adapter: local
// validation first, then a single pass-through call. No retries here; retry
// policy belongs to the caller, because a blind retry can double-charge.
type Payments struct {
	gateway PaymentGateway
}

func NewPayments(gateway PaymentGateway) *Payments {
	return &Payments{gateway: gateway}
}

func (uc *Payments) CreateIntent(ctx context.Context, in CreateIntentInput) (*PaymentIntent, error) {
	if in.Amount <= 0 {
		return nil, apperr.New(apperr.Validation, "valid amount is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "INR"
	}
	receipt := in.Receipt
	if receipt == "" {
		receipt = "rcpt_" + uuid.NewString()
	}
	notes := map[string]string{"created_by": "fresh_store_backend"}
	for k, v := range in.Notes {
		notes[k] = v
	}
	return uc.gateway.CreateIntent(ctx, in.Amount, currency, receipt, notes)
}

func (uc *Payments) FetchPayment(ctx context.Context, gatewayPaymentID string) (*PaymentSnapshot, error) {
	if strings.TrimSpace(gatewayPaymentID) == "" {
		return nil, apperr.New(apperr.Validation, "payment_id is required")
	}
	return uc.gateway.FetchPayment(ctx, gatewayPaymentID)
}

// Refund requests a refund against a captured payment. A nil amount means a
// full refund.
func (uc *Payments) Refund(ctx context.Context, gatewayPaymentID string, amount *float64, reason string) (*RefundResult, error) {
	if strings.TrimSpace(gatewayPaymentID) == "" {
		return nil, apperr.New(apperr.Validation, "payment_id is required")
	}
	if amount != nil && *amount <= 0 {
		return nil, apperr.New(apperr.Validation, "refund amount must be greater than zero")
	}
	if reason == "" {
		reason = "requested_by_customer"
	}
	return uc.gateway.Refund(ctx, gatewayPaymentID, amount, reason)
}
