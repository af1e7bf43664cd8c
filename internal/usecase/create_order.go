package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/895623789/fresh-store-backend/internal/entity"
	"github.com/895623789/fresh-store-backend/internal/logging"
)

type CreateOrderInput struct {
	CustomerID     string
	ItemsJSON      string
	Amount         float64
	Currency       string
	Notes          string
	IdempotencyKey string // optional, from X-Idempotency-Key
}

type CreateOrderOutput struct {
	OrderID      string
	BookingCode  string
	DeliveryCode string
	Status       entity.Status
}

// CreateOrder handles the cash-on-delivery path: build the canonical record
// (pending/unpaid/cod), persist it, then emit the created event and the
// confirmation job. Online orders are never created here; they materialize
// through payment reconciliation.
type CreateOrder struct {
	repo   OrderRepo
	idem   IdempotencyStore
	events EventPublisher
	notify NotificationQueue
}

func NewCreateOrder(repo OrderRepo, idem IdempotencyStore, events EventPublisher, notify NotificationQueue) *CreateOrder {
	return &CreateOrder{repo: repo, idem: idem, events: events, notify: notify}
}

func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (CreateOrderOutput, error) {
	// Fast path: a retried request with the same idempotency key returns the
	// order it already created.
	if in.IdempotencyKey != "" {
		if id, ok, _ := uc.idem.Recall(ctx, in.CustomerID, in.IdempotencyKey); ok {
			if existing, err := uc.repo.GetByID(ctx, id); err == nil {
				return outputFor(existing), nil
			}
		}
		ok, err := uc.idem.TryLock(ctx, in.CustomerID, in.IdempotencyKey)
		if err != nil {
			return CreateOrderOutput{}, apperr.Wrap(apperr.Storage, "idempotency store unavailable", err)
		}
		if !ok {
			return CreateOrderOutput{}, apperr.New(apperr.Conflict, "duplicate order request in flight")
		}
	}

	order, err := entity.NewOrder(entity.NewOrderInput{
		CustomerID: in.CustomerID,
		ItemsJSON:  in.ItemsJSON,
		Amount:     in.Amount,
		Currency:   in.Currency,
		Notes:      in.Notes,
	}, nil, time.Now().UTC())
	if err != nil {
		return CreateOrderOutput{}, err
	}

	if err := uc.create(ctx, order); err != nil {
		return CreateOrderOutput{}, err
	}

	if in.IdempotencyKey != "" {
		_ = uc.idem.Remember(ctx, in.CustomerID, in.IdempotencyKey, order.ID)
	}
	uc.announce(ctx, order)
	return outputFor(order), nil
}

// create persists the order, regenerating the correlation codes exactly once
// if the store reports a code collision. A second collision fails loudly.
func (uc *CreateOrder) create(ctx context.Context, order *entity.Order) error {
	err := uc.repo.Create(ctx, order)
	if errors.Is(err, ErrDuplicateCode) {
		order.RegenerateCodes(time.Now().UTC())
		err = uc.repo.Create(ctx, order)
	}
	if errors.Is(err, ErrDuplicateCode) {
		return apperr.Wrap(apperr.Storage, "correlation code collided twice", err)
	}
	if err != nil {
		return apperr.Wrap(apperr.Storage, "persist order", err)
	}
	return nil
}

func (uc *CreateOrder) announce(ctx context.Context, order *entity.Order) {
	log := logging.FromCtx(ctx)
	if err := uc.events.PublishOrderEvent(ctx, OrderEventMsg{
		Type:          EventOrderCreated,
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
		Kind:         "order_confirmation",
		OrderID:      order.ID,
		CustomerID:   order.CustomerID,
		BookingCode:  order.BookingCode,
		DeliveryCode: order.DeliveryCode,
	}); err != nil {
		log.Warn("notification enqueue failed", "order_id", order.ID, "err", err)
	}
}

func outputFor(o *entity.Order) CreateOrderOutput {
	return CreateOrderOutput{
		OrderID:      o.ID,
		BookingCode:  o.BookingCode,
		DeliveryCode: o.DeliveryCode,
		Status:       o.Status,
	}
}
