package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/895623789/fresh-store-backend/internal/entity"
	"github.com/895623789/fresh-store-backend/internal/logging"
	"github.com/895623789/fresh-store-backend/internal/security"
)

const reconcileScope = "recon"

type ReconcileInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
	// OrderDetails, when present, is the purchase the callback settles. A
	// callback without details only acknowledges verification.
	OrderDetails *CreateOrderInput
}

type ReconcileOutput struct {
	Verified         bool
	Replayed         bool
	OrderID          string
	BookingCode      string
	DeliveryCode     string
	GatewayPaymentID string
}

// ReconcilePayment orchestrates the online-payment callback: verify the
// signature, then create the paid order exactly once no matter how many
// times the gateway re-delivers the event.
type ReconcilePayment struct {
	secret string
	repo   OrderRepo
	idem   IdempotencyStore
	events EventPublisher
	notify NotificationQueue
}

func NewReconcilePayment(secret string, repo OrderRepo, idem IdempotencyStore, events EventPublisher, notify NotificationQueue) *ReconcilePayment {
	return &ReconcilePayment{secret: secret, repo: repo, idem: idem, events: events, notify: notify}
}

func (uc *ReconcilePayment) Execute(ctx context.Context, in ReconcileInput) (ReconcileOutput, error) {
	// An invalid signature must never mutate anything, so verification runs
	// before any lookup or write.
	if !security.VerifyPaymentSignature(in.GatewayOrderID, in.GatewayPaymentID, in.Signature, uc.secret) {
		return ReconcileOutput{}, apperr.New(apperr.VerificationFailed, "payment verification failed")
	}

	// Replay fast path. Redis is advisory only; the unique index on
	// gateway_payment_id below is the authority.
	if id, ok, _ := uc.idem.Recall(ctx, reconcileScope, in.GatewayPaymentID); ok {
		return uc.replayed(in, id), nil
	}
	if existing, err := uc.repo.GetByGatewayPaymentID(ctx, in.GatewayPaymentID); err == nil {
		_ = uc.idem.Remember(ctx, reconcileScope, in.GatewayPaymentID, existing.ID)
		return uc.replayed(in, existing.ID), nil
	} else if !errors.Is(err, ErrNotFound) {
		return ReconcileOutput{}, apperr.Wrap(apperr.Storage, "lookup reconciled payment", err)
	}

	// Verified but nothing to record: the client settles a previously
	// created order out of band, or will deliver details in a later call.
	if in.OrderDetails == nil {
		return ReconcileOutput{Verified: true, GatewayPaymentID: in.GatewayPaymentID}, nil
	}

	order, err := entity.NewOrder(entity.NewOrderInput{
		CustomerID: in.OrderDetails.CustomerID,
		ItemsJSON:  in.OrderDetails.ItemsJSON,
		Amount:     in.OrderDetails.Amount,
		Currency:   in.OrderDetails.Currency,
		Notes:      in.OrderDetails.Notes,
	}, &entity.OnlinePayment{
		GatewayOrderID:   in.GatewayOrderID,
		GatewayPaymentID: in.GatewayPaymentID,
		GatewaySignature: in.Signature,
	}, time.Now().UTC())
	if err != nil {
		return ReconcileOutput{}, err
	}

	switch err := uc.repo.Create(ctx, order); {
	case err == nil:
		// first delivery wins
	case errors.Is(err, ErrDuplicatePayment):
		// Lost the race against a concurrent delivery of the same callback;
		// the winner's order is the one that counts.
		existing, lerr := uc.repo.GetByGatewayPaymentID(ctx, in.GatewayPaymentID)
		if lerr != nil {
			return ReconcileOutput{}, apperr.Wrap(apperr.Storage, "lookup racing reconciliation", lerr)
		}
		_ = uc.idem.Remember(ctx, reconcileScope, in.GatewayPaymentID, existing.ID)
		return uc.replayed(in, existing.ID), nil
	case errors.Is(err, ErrDuplicateCode):
		order.RegenerateCodes(time.Now().UTC())
		if rerr := uc.repo.Create(ctx, order); rerr != nil {
			return ReconcileOutput{}, apperr.Wrap(apperr.Storage, "persist reconciled order", rerr)
		}
	default:
		return ReconcileOutput{}, apperr.Wrap(apperr.Storage, "persist reconciled order", err)
	}

	_ = uc.idem.Remember(ctx, reconcileScope, in.GatewayPaymentID, order.ID)
	uc.announce(ctx, order)

	return ReconcileOutput{
		Verified:         true,
		OrderID:          order.ID,
		BookingCode:      order.BookingCode,
		DeliveryCode:     order.DeliveryCode,
		GatewayPaymentID: in.GatewayPaymentID,
	}, nil
}

func (uc *ReconcilePayment) replayed(in ReconcileInput, orderID string) ReconcileOutput {
	return ReconcileOutput{
		Verified:         true,
		Replayed:         true,
		OrderID:          orderID,
		GatewayPaymentID: in.GatewayPaymentID,
	}
}

func (uc *ReconcilePayment) announce(ctx context.Context, order *entity.Order) {
	log := logging.FromCtx(ctx)
	if err := uc.events.PublishOrderEvent(ctx, OrderEventMsg{
		Type:          EventOrderPaid,
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Amount:        order.Amount,
		Currency:      order.Currency,
	}); err != nil {
		log.Warn("order event publish failed", "order_id", order.ID, "err", err)
	}
	if err := uc.notify.EnqueueNotification(ctx, NotificationMsg{
		Kind:         "payment_receipt",
		OrderID:      order.ID,
		CustomerID:   order.CustomerID,
		BookingCode:  order.BookingCode,
		DeliveryCode: order.DeliveryCode,
	}); err != nil {
		log.Warn("notification enqueue failed", "order_id", order.ID, "err", err)
	}
}
