package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/895623789/fresh-store-backend/internal/entity"
	"github.com/895623789/fresh-store-backend/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reconcileSecret = "callback-secret"

func newReconcileFixture() (*ReconcilePayment, *fakeRepo, *fakeEvents, *fakeNotify) {
	repo := newFakeRepo()
	events := &fakeEvents{}
	notify := &fakeNotify{}
	uc := NewReconcilePayment(reconcileSecret, repo, newFakeIdem(), events, notify)
	return uc, repo, events, notify
}

func signedInput(withDetails bool) ReconcileInput {
	in := ReconcileInput{
		GatewayOrderID:   "order_Nf8FFH",
		GatewayPaymentID: "pay_Nf8GhL",
		Signature:        security.SignPaymentHex("order_Nf8FFH", "pay_Nf8GhL", reconcileSecret),
	}
	if withDetails {
		in.OrderDetails = &CreateOrderInput{
			CustomerID: "cust-1",
			ItemsJSON:  `[{"sku":"mango-1kg","qty":1}]`,
			Amount:     500,
		}
	}
	return in
}

func TestReconcile_ForgedSignatureMutatesNothing(t *testing.T) {
	uc, repo, events, notify := newReconcileFixture()

	in := signedInput(true)
	in.Signature = security.SignPaymentHex("order_Nf8FFH", "pay_Nf8GhL", "wrong-secret")

	_, err := uc.Execute(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, apperr.VerificationFailed, apperr.KindOf(err))

	assert.Zero(t, repo.createCalls, "no write may happen on a forged callback")
	assert.Empty(t, repo.byID)
	assert.Empty(t, events.msgs)
	assert.Empty(t, notify.msgs)
}

func TestReconcile_CreatesPaidOrderOnce(t *testing.T) {
	uc, repo, events, notify := newReconcileFixture()

	out, err := uc.Execute(context.Background(), signedInput(true))
	require.NoError(t, err)
	assert.True(t, out.Verified)
	assert.False(t, out.Replayed)
	require.NotEmpty(t, out.OrderID)
	assert.NotEmpty(t, out.BookingCode)

	stored, err := repo.GetByID(context.Background(), out.OrderID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, entity.MethodOnline, stored.PaymentMethod)
	assert.Equal(t, entity.StatusPending, stored.Status)
	assert.Equal(t, "pay_Nf8GhL", stored.GatewayPaymentID)
	require.NotNil(t, stored.VerifiedAt)

	require.Len(t, events.msgs, 1)
	assert.Equal(t, EventOrderPaid, events.msgs[0].Type)
	require.Len(t, notify.msgs, 1)
	assert.Equal(t, "payment_receipt", notify.msgs[0].Kind)
}

func TestReconcile_ReplayIsIdempotent(t *testing.T) {
	uc, repo, _, _ := newReconcileFixture()

	first, err := uc.Execute(context.Background(), signedInput(true))
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), signedInput(true))
	require.NoError(t, err, "replay must still answer success")
	assert.True(t, second.Verified)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.OrderID, second.OrderID)

	assert.Len(t, repo.byID, 1, "replay must not create a duplicate order")
}

func TestReconcile_RacingDuplicateCreate(t *testing.T) {
	// A concurrent delivery won the insert between our existence check and
	// our Create; the unique key reports it and we return the winner.
	uc, repo, _, _ := newReconcileFixture()

	winner, err := entity.NewOrder(entity.NewOrderInput{
		CustomerID: "cust-1", ItemsJSON: "[1]", Amount: 500,
	}, &entity.OnlinePayment{
		GatewayOrderID: "order_Nf8FFH", GatewayPaymentID: "pay_Nf8GhL", GatewaySignature: "s",
	}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), winner))

	// the existence probe races past the winner, the unique key catches it
	repo.probeMiss = true

	out, err := uc.Execute(context.Background(), signedInput(true))
	require.NoError(t, err)
	assert.True(t, out.Replayed)
	assert.Equal(t, winner.ID, out.OrderID)
	assert.Len(t, repo.byID, 1)
}

func TestReconcile_NoDetailsVerifiesWithoutCreating(t *testing.T) {
	uc, repo, events, _ := newReconcileFixture()

	out, err := uc.Execute(context.Background(), signedInput(false))
	require.NoError(t, err)
	assert.True(t, out.Verified)
	assert.Empty(t, out.OrderID)
	assert.Zero(t, repo.createCalls)
	assert.Empty(t, events.msgs)
}

func TestReconcile_InvalidDetailsRejected(t *testing.T) {
	uc, repo, _, _ := newReconcileFixture()

	in := signedInput(true)
	in.OrderDetails.Amount = 0

	_, err := uc.Execute(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Empty(t, repo.byID)
}
