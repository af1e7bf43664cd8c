package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/895623789/fresh-store-backend/internal/entity"
)

// Storage sentinels. Adapters translate driver errors into these; use cases
// translate them into the apperr taxonomy at their own boundary.
var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicatePayment: an order bearing this gateway_payment_id already
	// exists. This is how the store's create-if-absent write reports a replay.
	ErrDuplicatePayment = errors.New("duplicate gateway payment")
	// ErrDuplicateCode: the generated booking/delivery code collided.
	ErrDuplicateCode = errors.New("duplicate correlation code")
)

type OrderRepo interface {
	// Create inserts the order. The unique index on gateway_payment_id makes
	// this the atomic create-if-absent required for idempotent reconciliation.
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*entity.Order, error)
	// ListByCustomer returns the customer's orders, newest first. An empty
	// status means no status filter.
	ListByCustomer(ctx context.Context, customerID string, status entity.Status, limit int) ([]entity.Order, error)
	// UpdateStatusIf applies a compare-and-swap status update: the write
	// succeeds only if the stored status still equals from. Returns false
	// (and no error) when the precondition no longer holds.
	UpdateStatusIf(ctx context.Context, id string, from, to entity.Status, notes string, settleCash bool) (bool, error)
}

type OrderCache interface {
	SetStatus(ctx context.Context, orderID string, status string) error
	GetStatus(ctx context.Context, orderID string) (string, bool, error)
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// PaymentIntent is the gateway-side reservation this system holds a
// reference to. Amount is in the gateway's minor units.
type PaymentIntent struct {
	GatewayOrderID string
	Amount         int64
	Currency       string
}

type PaymentSnapshot struct {
	ID        string
	Amount    int64
	Currency  string
	Status    string
	Method    string
	CreatedAt time.Time
}

type RefundResult struct {
	RefundID string
	Amount   int64
	Status   string
}

// PaymentGateway wraps the external payment provider. Amounts cross this
// boundary in major units; adapters convert to the provider's minor units.
// A nil refund amount requests a full refund.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount float64, currency, receipt string, notes map[string]string) (*PaymentIntent, error)
	FetchPayment(ctx context.Context, gatewayPaymentID string) (*PaymentSnapshot, error)
	Refund(ctx context.Context, gatewayPaymentID string, amount *float64, reason string) (*RefundResult, error)
}

// EventPublisher emits order lifecycle events to the event stream.
// Publishing is best effort from the caller's point of view: a broker
// failure must never fail the request that triggered it.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, msg OrderEventMsg) error
}

// NotificationQueue enqueues customer-facing notification jobs for the
// notifier service to drain.
type NotificationQueue interface {
	EnqueueNotification(ctx context.Context, msg NotificationMsg) error
}

// AuthService is the external identity provider. The core never inspects
// credential internals; it forwards the opaque token and trusts the answer.
type AuthService interface {
	VerifyToken(ctx context.Context, token string) (*UserProfile, error)
	CustomToken(ctx context.Context, uid string, claims map[string]any) (string, error)
}

type UserProfile struct {
	UID         string
	Email       string
	DisplayName string
	Role        string
	IsActive    bool
}
