// Package gateway is the REST adapter for the external payment provider.
// It speaks the provider's wire shapes and maps every failure into the
// GATEWAY error kind; nothing above this package knows the provider's API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/895623789/fresh-store-backend/internal/usecase"
)

type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

type Client struct {
	http      *http.Client
	baseURL   string
	keyID     string
	keySecret string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
	}
}

type intentResp struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type paymentResp struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Method    string `json:"method"`
	CreatedAt int64  `json:"created_at"` // unix seconds
}

type refundResp struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type gatewayErrResp struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateIntent reserves the amount with the provider. The provider counts in
// minor units, so major units are converted (x100, rounded) before the call;
// a non-positive amount never reaches the wire.
func (c *Client) CreateIntent(ctx context.Context, amount float64, currency, receipt string, notes map[string]string) (*usecase.PaymentIntent, error) {
	if amount <= 0 {
		return nil, apperr.New(apperr.Validation, "amount must be greater than zero")
	}
	body := map[string]any{
		"amount":   MinorUnits(amount),
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	var out intentResp
	if err := c.do(ctx, http.MethodPost, "/v1/orders", body, &out); err != nil {
		return nil, err
	}
	return &usecase.PaymentIntent{
		GatewayOrderID: out.ID,
		Amount:         out.Amount,
		Currency:       out.Currency,
	}, nil
}

func (c *Client) FetchPayment(ctx context.Context, gatewayPaymentID string) (*usecase.PaymentSnapshot, error) {
	var out paymentResp
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+gatewayPaymentID, nil, &out); err != nil {
		return nil, err
	}
	return &usecase.PaymentSnapshot{
		ID:        out.ID,
		Amount:    out.Amount,
		Currency:  out.Currency,
		Status:    out.Status,
		Method:    out.Method,
		CreatedAt: time.Unix(out.CreatedAt, 0).UTC(),
	}, nil
}

// Refund refunds the payment. A nil amount omits the field, which the
// provider treats as a full refund.
func (c *Client) Refund(ctx context.Context, gatewayPaymentID string, amount *float64, reason string) (*usecase.RefundResult, error) {
	body := map[string]any{
		"notes": map[string]string{"reason": reason},
	}
	if amount != nil {
		body["amount"] = MinorUnits(*amount)
	}
	var out refundResp
	if err := c.do(ctx, http.MethodPost, "/v1/payments/"+gatewayPaymentID+"/refund", body, &out); err != nil {
		return nil, err
	}
	return &usecase.RefundResult{
		RefundID: out.ID,
		Amount:   out.Amount,
		Status:   out.Status,
	}, nil
}

// MinorUnits converts a major-unit amount to the provider's integer minor
// units (e.g. 19.99 -> 1999 paise).
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "encode gateway request", err)
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "build gateway request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failures (timeouts included) are retryable by the caller;
		// nothing was confirmed by the provider.
		return &apperr.Error{Kind: apperr.Gateway, Message: "payment gateway unreachable", Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var ge gatewayErrResp
		_ = json.NewDecoder(resp.Body).Decode(&ge)
		msg := ge.Error.Description
		if msg == "" {
			msg = fmt.Sprintf("gateway returned %d", resp.StatusCode)
		}
		return &apperr.Error{
			Kind:      apperr.Gateway,
			Message:   msg,
			Code:      ge.Error.Code,
			Retryable: resp.StatusCode >= 500,
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &apperr.Error{Kind: apperr.Gateway, Message: "malformed gateway response", Err: err}
		}
	}
	return nil
}
