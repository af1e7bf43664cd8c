package entity

import (
	"testing"
	"time"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_LegalMoves(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o := Order{ID: "o1", Status: StatusPending, UpdatedAt: now.Add(-time.Hour)}

	paid, err := o.Transition(StatusPaid, "", now)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
	assert.Equal(t, now, paid.UpdatedAt)
	// receiver untouched
	assert.Equal(t, StatusPending, o.Status)

	shipped, err := paid.Transition(StatusShipped, "handed to courier", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, shipped.Status)
	assert.Equal(t, "handed to courier", shipped.Notes)

	delivered, err := shipped.Transition(StatusDelivered, "", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, delivered.Status)
}

func TestTransition_IllegalMoves(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		from, to Status
	}{
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusPaid, StatusDelivered},
		{StatusPaid, StatusFailed},
		{StatusShipped, StatusCancelled},
		{StatusShipped, StatusPaid},
	}
	for _, tc := range cases {
		o := Order{Status: tc.from}
		_, err := o.Transition(tc.to, "", now)
		require.Error(t, err, "%s -> %s must be rejected", tc.from, tc.to)
		assert.Equal(t, apperr.IllegalTransition, apperr.KindOf(err))
		assert.Equal(t, tc.from, o.Status, "order must be left unchanged")
	}
}

func TestTransition_TerminalStates(t *testing.T) {
	now := time.Now().UTC()
	targets := []Status{StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled, StatusFailed}
	for _, terminal := range []Status{StatusCancelled, StatusDelivered, StatusFailed} {
		for _, target := range targets {
			o := Order{Status: terminal}
			_, err := o.Transition(target, "", now)
			require.Error(t, err, "%s is terminal, move to %s must fail", terminal, target)
		}
	}
}

func TestTransition_UnknownStatus(t *testing.T) {
	o := Order{Status: StatusPending}
	_, err := o.Transition(Status("archived"), "", time.Now().UTC())
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}
