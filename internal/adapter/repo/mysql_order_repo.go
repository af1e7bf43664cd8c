package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/895623789/fresh-store-backend/internal/entity"
	"github.com/895623789/fresh-store-backend/internal/usecase"
	"github.com/go-sql-driver/mysql"
)

// MySQLOrderRepo is the document-store adapter. The orders table carries
// unique indexes on gateway_payment_id and booking_code; those indexes, not
// application reads, are what make reconciliation idempotent under
// concurrent callbacks.
type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)

const orderColumns = `id, customer_id, items_json, amount, currency,
status, payment_status, payment_method, cash_settled,
booking_code, delivery_code,
gateway_order_id, gateway_payment_id, gateway_signature,
notes, verified_at, created_at, updated_at`

const mysqlErrDuplicateEntry = 1062

func (r *MySQLOrderRepo) Create(ctx context.Context, o *entity.Order) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO orders (`+orderColumns+`)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID, o.CustomerID, o.ItemsJSON, o.Amount, o.Currency,
		string(o.Status), string(o.PaymentStatus), string(o.PaymentMethod), o.CashSettled,
		o.BookingCode, o.DeliveryCode,
		nullStr(o.GatewayOrderID), nullStr(o.GatewayPaymentID), nullStr(o.GatewaySignature),
		nullStr(o.Notes), nullTime(o.VerifiedAt), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return translateDuplicate(err)
	}
	return nil
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=?`, id)
	return scanOrder(row)
}

func (r *MySQLOrderRepo) GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE gateway_payment_id=?`, gatewayPaymentID)
	return scanOrder(row)
}

func (r *MySQLOrderRepo) ListByCustomer(ctx context.Context, customerID string, status entity.Status, limit int) ([]entity.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id=?`
	args := []any{customerID}
	if status != "" {
		q += ` AND status=?`
		args = append(args, string(status))
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// UpdateStatusIf is the compare-and-swap transition write: zero rows
// affected means the stored status no longer equals from (or the order is
// gone) and the caller must re-read before retrying.
func (r *MySQLOrderRepo) UpdateStatusIf(ctx context.Context, id string, from, to entity.Status, notes string, settleCash bool) (bool, error) {
	set := `status = ?, updated_at = NOW(3), notes = COALESCE(NULLIF(?, ''), notes)`
	if settleCash {
		set += `, payment_status = 'paid', cash_settled = 1`
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET `+set+` WHERE id = ? AND status = ?`,
		string(to), notes, id, string(from),
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanOrder(row rowScanner) (*entity.Order, error) {
	var (
		o                     entity.Order
		status, pstatus, pmet string
		gwOrder, gwPayment    sql.NullString
		gwSig, notes          sql.NullString
		verifiedAt            sql.NullTime
	)
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.ItemsJSON, &o.Amount, &o.Currency,
		&status, &pstatus, &pmet, &o.CashSettled,
		&o.BookingCode, &o.DeliveryCode,
		&gwOrder, &gwPayment, &gwSig,
		&notes, &verifiedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = entity.Status(status)
	o.PaymentStatus = entity.PaymentStatus(pstatus)
	o.PaymentMethod = entity.PaymentMethod(pmet)
	o.GatewayOrderID = gwOrder.String
	o.GatewayPaymentID = gwPayment.String
	o.GatewaySignature = gwSig.String
	o.Notes = notes.String
	if verifiedAt.Valid {
		t := verifiedAt.Time
		o.VerifiedAt = &t
	}
	return &o, nil
}

// translateDuplicate maps MySQL duplicate-key errors onto the storage
// sentinels, using the violated key name to tell a replayed payment apart
// from a correlation-code collision.
func translateDuplicate(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlErrDuplicateEntry {
		return err
	}
	switch {
	case strings.Contains(me.Message, "gateway_payment_id"):
		return fmt.Errorf("%w: %s", usecase.ErrDuplicatePayment, me.Message)
	case strings.Contains(me.Message, "booking_code"), strings.Contains(me.Message, "delivery_code"):
		return fmt.Errorf("%w: %s", usecase.ErrDuplicateCode, me.Message)
	}
	return err
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
