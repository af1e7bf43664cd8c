package kafka

import (
	"context"

	"github.com/895623789/fresh-store-backend/internal/apperr"
	"github.com/895623789/fresh-store-backend/internal/entity"
	"github.com/895623789/fresh-store-backend/internal/usecase"
)

// FulfillmentHandler applies shipment progress reported by the fulfillment
// service to the order lifecycle. The transition goes through the same
// guarded update as the HTTP path, so a stale or duplicate event cannot
// clobber a newer status.
type FulfillmentHandler struct {
	status *usecase.UpdateStatus
}

func NewFulfillmentHandler(status *usecase.UpdateStatus) *FulfillmentHandler {
	return &FulfillmentHandler{status: status}
}

func (h *FulfillmentHandler) Handle(ctx context.Context, ev usecase.FulfillmentEventMsg) error {
	var target entity.Status
	switch ev.Event {
	case "SHIPPED":
		target = entity.StatusShipped
	case "DELIVERED":
		target = entity.StatusDelivered
	default:
		// unknown event types are skipped, not retried
		return nil
	}

	_, err := h.status.Execute(ctx, usecase.UpdateStatusInput{
		OrderID: ev.OrderID,
		Target:  target,
		Notes:   ev.Notes,
	})
	switch apperr.KindOf(err) {
	case apperr.IllegalTransition, apperr.NotFound:
		// A duplicate or out-of-order event; retrying will never make it
		// legal, so swallow it and move on.
		return nil
	}
	return err
}
