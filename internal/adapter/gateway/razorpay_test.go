package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		major float64
		minor int64
	}{
		{19.99, 1999},
		{500, 50000},
		{0.01, 1},
		{149.5, 14950},
		{0.1 + 0.2, 30}, // float noise must round away, not truncate
	}
	for _, tc := range cases {
		assert.Equal(t, tc.minor, MinorUnits(tc.major), "%v major units", tc.major)
	}
}

func TestCreateIntent_SendsMinorUnits(t *testing.T) {
	var captured map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "order_Nf8FFH", "amount": 1999, "currency": "INR",
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, KeyID: "rzp_test_key", KeySecret: "secret"})

	intent, err := c.CreateIntent(context.Background(), 19.99, "INR", "rcpt_1", map[string]string{"created_by": "api"})
	require.NoError(t, err)
	assert.Equal(t, "order_Nf8FFH", intent.GatewayOrderID)
	assert.Equal(t, int64(1999), intent.Amount)

	assert.EqualValues(t, 1999, captured["amount"], "wire amount must be in minor units")
	assert.Equal(t, "INR", captured["currency"])
	assert.Equal(t, "rcpt_1", captured["receipt"])
	assert.NotEmpty(t, auth, "request must carry basic auth")
}

func TestCreateIntent_RejectsNonPositiveBeforeWire(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hit = true }))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	for _, amount := range []float64{0, -5} {
		_, err := c.CreateIntent(context.Background(), amount, "INR", "rcpt", nil)
		require.Error(t, err, "amount %v", amount)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	}
	assert.False(t, hit, "invalid amounts must never reach the provider")
}

func TestFetchPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payments/pay_Nf8GhL", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "pay_Nf8GhL", "amount": 50000, "currency": "INR",
			"status": "captured", "method": "upi", "created_at": 1748779200,
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	snap, err := c.FetchPayment(context.Background(), "pay_Nf8GhL")
	require.NoError(t, err)
	assert.Equal(t, "captured", snap.Status)
	assert.Equal(t, int64(50000), snap.Amount)
	assert.Equal(t, time.Unix(1748779200, 0).UTC(), snap.CreatedAt)
}

func TestRefund_NilAmountOmitsField(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payments/pay_1/refund", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "rfnd_1", "amount": 50000, "status": "processed"})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	res, err := c.Refund(context.Background(), "pay_1", nil, "requested_by_customer")
	require.NoError(t, err)
	assert.Equal(t, "rfnd_1", res.RefundID)

	_, present := captured["amount"]
	assert.False(t, present, "full refund must omit the amount field")
}

func TestRefund_PartialAmountInMinorUnits(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "rfnd_2", "amount": 2550, "status": "processed"})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	amount := 25.50
	_, err := c.Refund(context.Background(), "pay_1", &amount, "damaged item")
	require.NoError(t, err)
	assert.EqualValues(t, 2550, captured["amount"])
}

func TestErrorMapping(t *testing.T) {
	t.Run("client error is final", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "BAD_REQUEST_ERROR", "description": "amount exceeds maximum"},
			})
		}))
		defer srv.Close()

		c := NewClient(Config{BaseURL: srv.URL})
		_, err := c.FetchPayment(context.Background(), "pay_1")
		require.Error(t, err)
		assert.Equal(t, apperr.Gateway, apperr.KindOf(err))
		assert.False(t, apperr.Retryable(err))
		assert.Contains(t, err.Error(), "amount exceeds maximum")
	})

	t.Run("server error is retryable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewClient(Config{BaseURL: srv.URL})
		_, err := c.FetchPayment(context.Background(), "pay_1")
		require.Error(t, err)
		assert.Equal(t, apperr.Gateway, apperr.KindOf(err))
		assert.True(t, apperr.Retryable(err))
	})

	t.Run("unreachable provider is retryable", func(t *testing.T) {
		c := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
		_, err := c.FetchPayment(context.Background(), "pay_1")
		require.Error(t, err)
		assert.Equal(t, apperr.Gateway, apperr.KindOf(err))
		assert.True(t, apperr.Retryable(err))
	})
}
