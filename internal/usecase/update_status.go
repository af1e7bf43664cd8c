package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/895623789/fresh-store-backend/internal/entity"
	"github.com/895623789/fresh-store-backend/internal/logging"
)

type UpdateStatusInput struct {
	OrderID string
	Target  entity.Status
	Notes   string
}

// UpdateStatus applies one lifecycle transition. Legality is decided by the
// pure entity transition; atomicity by the repo's compare-and-swap update,
// so two concurrent updates cannot silently clobber each other.
type UpdateStatus struct {
	repo   OrderRepo
	cache  OrderCache
	events EventPublisher
}

func NewUpdateStatus(repo OrderRepo, cache OrderCache, events EventPublisher) *UpdateStatus {
	return &UpdateStatus{repo: repo, cache: cache, events: events}
}

func (uc *UpdateStatus) Execute(ctx context.Context, in UpdateStatusInput) (*entity.Order, error) {
	order, err := uc.repo.GetByID(ctx, in.OrderID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Newf(apperr.NotFound, "order %s not found", in.OrderID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "load order", err)
	}

	next, err := order.Transition(in.Target, in.Notes, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	// Marking a cod order paid records the cash settlement alongside the
	// status, keeping the payment-truth invariant in one write.
	settleCash := in.Target == entity.StatusPaid && order.PaymentMethod == entity.MethodCOD

	ok, err := uc.repo.UpdateStatusIf(ctx, order.ID, order.Status, next.Status, in.Notes, settleCash)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "update order status", err)
	}
	if !ok {
		// Someone moved the order between our read and the write. The caller
		// re-reads and retries if it still wants the transition.
		return nil, apperr.Newf(apperr.Conflict, "order %s changed concurrently, retry", order.ID)
	}

	if settleCash {
		next.PaymentStatus = entity.PaymentPaid
		next.CashSettled = true
	}

	if err := uc.cache.SetStatus(ctx, next.ID, string(next.Status)); err != nil {
		logging.FromCtx(ctx).Warn("status cache update failed", "order_id", next.ID, "err", err)
	}
	if err := uc.events.PublishOrderEvent(ctx, OrderEventMsg{
		Type:          EventOrderStatusChanged,
		OrderID:       next.ID,
		CustomerID:    next.CustomerID,
		Status:        string(next.Status),
		PaymentStatus: string(next.PaymentStatus),
		Amount:        next.Amount,
		Currency:      next.Currency,
	}); err != nil {
		logging.FromCtx(ctx).Warn("order event publish failed", "order_id", next.ID, "err", err)
	}

	return &next, nil
}
