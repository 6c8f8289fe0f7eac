package paymentrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chupakobra6/vagvin/model"
)

var ErrNotFound = errors.New("payment not found")

type Repo interface {
	Insert(ctx context.Context, p *model.Payment) error
	FindByInvoiceID(ctx context.Context, invoiceID string) (*model.Payment, error)
	FindByInvoiceIDForUser(ctx context.Context, invoiceID string, userID int64) (*model.Payment, error)

	// CommitSuccess flips a pending payment to success and credits the user's
	// balance as one transaction. Returns false when the payment was not
	// pending anymore (duplicate or lost race), with nothing written.
	CommitSuccess(ctx context.Context, invoiceID string, userID int64, amount decimal.Decimal) (bool, error)

	// MarkFailed flips pending -> failed; false when not pending.
	MarkFailed(ctx context.Context, invoiceID string) (bool, error)

	StatsForUser(ctx context.Context, userID int64) (*model.PaymentStats, error)
	ListLedger(ctx context.Context, userID int64) ([]model.LedgerEntry, error)

	// SweepPending fails pending payments created before the cutoff.
	SweepPending(ctx context.Context, before time.Time) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, p *model.Payment) error {
	const q = `
INSERT INTO payments (user_id, provider, amount, total_amount, invoice_id, status)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, q,
		p.UserID, p.Provider, p.Amount, p.TotalAmount, p.InvoiceID, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repo) FindByInvoiceID(ctx context.Context, invoiceID string) (*model.Payment, error) {
	const q = `
SELECT id, user_id, provider, amount, total_amount, invoice_id, status, created_at, updated_at
FROM payments
WHERE invoice_id=$1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, invoiceID))
}

func (r *repo) FindByInvoiceIDForUser(ctx context.Context, invoiceID string, userID int64) (*model.Payment, error) {
	const q = `
SELECT id, user_id, provider, amount, total_amount, invoice_id, status, created_at, updated_at
FROM payments
WHERE invoice_id=$1 AND user_id=$2`
	return r.scanOne(r.db.QueryRowContext(ctx, q, invoiceID, userID))
}

func (r *repo) scanOne(row *sql.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.UserID, &p.Provider, &p.Amount, &p.TotalAmount,
		&p.InvoiceID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) CommitSuccess(ctx context.Context, invoiceID string, userID int64, amount decimal.Decimal) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// The status guard makes duplicate and racing callbacks no-ops: only the
	// delivery that observes 'pending' gets a row back.
	const qMark = `
UPDATE payments
SET status='success', updated_at=NOW()
WHERE invoice_id=$1 AND status='pending'
RETURNING id`
	var paymentID int64
	err = tx.QueryRowContext(ctx, qMark, invoiceID).Scan(&paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		_ = tx.Rollback()
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// Increment in place; never read-modify-write.
	const qCredit = `UPDATE users SET balance = balance + $2 WHERE id=$1 RETURNING balance`
	var newBal decimal.Decimal
	if err = tx.QueryRowContext(ctx, qCredit, userID, amount).Scan(&newBal); err != nil {
		return false, err
	}

	if err = insertLedger(ctx, tx, userID, &paymentID, model.LedgerTopup, amount, newBal); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) MarkFailed(ctx context.Context, invoiceID string) (bool, error) {
	const q = `
UPDATE payments
SET status='failed', updated_at=NOW()
WHERE invoice_id=$1 AND status='pending'`
	res, err := r.db.ExecContext(ctx, q, invoiceID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repo) StatsForUser(ctx context.Context, userID int64) (*model.PaymentStats, error) {
	const q = `
SELECT
	COUNT(*) FILTER (WHERE status='success'),
	COALESCE(SUM(amount) FILTER (WHERE status='success'), 0),
	COUNT(*) FILTER (WHERE status='pending')
FROM payments
WHERE user_id=$1`
	var s model.PaymentStats
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&s.SuccessfulCount, &s.SuccessfulTotal, &s.PendingCount); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) ListLedger(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	const q = `
SELECT id, user_id, ref_id, entry_type, amount, balance_after, created_at
FROM payment_ledger
WHERE user_id=$1
ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.RefID, &e.EntryType, &e.Amount, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repo) SweepPending(ctx context.Context, before time.Time) (int64, error) {
	const q = `
UPDATE payments
SET status='failed', updated_at=NOW()
WHERE status='pending' AND created_at < $1`
	res, err := r.db.ExecContext(ctx, q, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func insertLedger(ctx context.Context, tx *sql.Tx, userID int64, refID *int64, entryType model.LedgerType, amount, balanceAfter decimal.Decimal) error {
	const q = `
INSERT INTO payment_ledger (user_id, ref_id, entry_type, amount, balance_after)
VALUES ($1,$2,$3,$4,$5)`
	_, err := tx.ExecContext(ctx, q, userID, refID, entryType, amount, balanceAfter)
	return err
}
