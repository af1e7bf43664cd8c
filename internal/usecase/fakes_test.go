package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/895623789/fresh-store-backend/internal/entity"
)

// In-memory fakes for the ports. The repo mimics the MySQL adapter's
// duplicate-key behavior so the idempotency paths can be exercised without
// a database.

type fakeRepo struct {
	mu        sync.Mutex
	byID      map[string]entity.Order
	byPayment map[string]string // gateway_payment_id -> order id
	byCode    map[string]bool

	failCreate  error // returned once by the next Create, then cleared
	probeMiss   bool  // next GetByGatewayPaymentID misses, then cleared
	casDeny     bool  // force UpdateStatusIf to report a lost race
	createCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:      map[string]entity.Order{},
		byPayment: map[string]string{},
		byCode:    map[string]bool{},
	}
}

func (r *fakeRepo) Create(_ context.Context, o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.failCreate != nil {
		err := r.failCreate
		r.failCreate = nil
		return err
	}
	if o.GatewayPaymentID != "" {
		if _, dup := r.byPayment[o.GatewayPaymentID]; dup {
			return fmt.Errorf("%w: key gateway_payment_id", ErrDuplicatePayment)
		}
	}
	if r.byCode[o.BookingCode] {
		return fmt.Errorf("%w: key booking_code", ErrDuplicateCode)
	}
	r.byID[o.ID] = *o
	if o.GatewayPaymentID != "" {
		r.byPayment[o.GatewayPaymentID] = o.ID
	}
	r.byCode[o.BookingCode] = true
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, found := r.byID[id]
	if !found {
		return nil, ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (r *fakeRepo) GetByGatewayPaymentID(_ context.Context, paymentID string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.probeMiss {
		r.probeMiss = false
		return nil, ErrNotFound
	}
	id, found := r.byPayment[paymentID]
	if !found {
		return nil, ErrNotFound
	}
	o := r.byID[id]
	cp := o
	return &cp, nil
}

func (r *fakeRepo) ListByCustomer(_ context.Context, customerID string, status entity.Status, limit int) ([]entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Order
	for _, o := range r.byID {
		if o.CustomerID != customerID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateStatusIf(_ context.Context, id string, from, to entity.Status, notes string, settleCash bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.casDeny {
		return false, nil
	}
	o, found := r.byID[id]
	if !found || o.Status != from {
		return false, nil
	}
	o.Status = to
	if notes != "" {
		o.Notes = notes
	}
	if settleCash {
		o.PaymentStatus = entity.PaymentPaid
		o.CashSettled = true
	}
	r.byID[id] = o
	return true, nil
}

type fakeIdem struct {
	mu    sync.Mutex
	locks map[string]bool
	vals  map[string]string
}

func newFakeIdem() *fakeIdem {
	return &fakeIdem{locks: map[string]bool{}, vals: map[string]string{}}
}

func (s *fakeIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := scope + ":" + key
	if s.locks[k] {
		return false, nil
	}
	s.locks[k] = true
	return true, nil
}

func (s *fakeIdem) Remember(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[scope+":"+key] = value
	return nil
}

func (s *fakeIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, found := s.vals[scope+":"+key]
	return v, found, nil
}

type fakeEvents struct {
	mu   sync.Mutex
	msgs []OrderEventMsg
}

func (p *fakeEvents) PublishOrderEvent(_ context.Context, msg OrderEventMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return nil
}

type fakeNotify struct {
	mu   sync.Mutex
	msgs []NotificationMsg
}

func (q *fakeNotify) EnqueueNotification(_ context.Context, msg NotificationMsg) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return nil
}

type fakeCache struct {
	mu   sync.Mutex
	vals map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{vals: map[string]string{}} }

func (c *fakeCache) SetStatus(_ context.Context, orderID, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals[orderID] = status
	return nil
}

func (c *fakeCache) GetStatus(_ context.Context, orderID string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, found := c.vals[orderID]
	return v, found, nil
}
