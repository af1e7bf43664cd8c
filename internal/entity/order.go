package entity

import (
	"time"

	"github.com/895623789/fresh-store-backend/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type PaymentMethod string

const (
	MethodCOD    PaymentMethod = "cod"
	MethodOnline PaymentMethod = "online"
)

// Order is one customer purchase. The gateway correlation fields are set only
// for online payments and are immutable once written.
type Order struct {
	ID         string
	CustomerID string
	ItemsJSON  string
	Amount     float64 // major currency units
	Currency   string

	Status        Status
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
	CashSettled   bool // cash collected on delivery (cod only)

	BookingCode  string
	DeliveryCode string

	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string

	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	VerifiedAt *time.Time
}

// transitions maps each status to the set of statuses it may move to.
// cancelled, delivered and failed are terminal.
var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled, StatusFailed},
	StatusPaid:    {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered},
}

// ValidStatus reports whether s names a known lifecycle state.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of o moved to target. The receiver is never
// mutated; an illegal move returns the zero Order and an IllegalTransition
// error. Persisting the result is the caller's job.
func (o Order) Transition(target Status, notes string, now time.Time) (Order, error) {
	if !ValidStatus(target) {
		return Order{}, apperr.Newf(apperr.Validation, "unknown status %q", target)
	}
	if !CanTransition(o.Status, target) {
		return Order{}, apperr.Newf(apperr.IllegalTransition, "cannot move order from %s to %s", o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = now
	if notes != "" {
		o.Notes = notes
	}
	return o, nil
}
