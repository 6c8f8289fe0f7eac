package userrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/chupakobra6/vagvin/model"
)

var ErrNotFound = errors.New("user not found")

type Repo interface {
	ByID(ctx context.Context, id int64) (*model.User, error)

	// ApplyDelta adds a signed amount to the user's balance as a single
	// increment statement and returns the resulting balance.
	ApplyDelta(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `
SELECT id, username, email, balance, overdraft, created_at
FROM users
WHERE id=$1`
	var u model.User
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.Balance, &u.Overdraft, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) ApplyDelta(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	const q = `UPDATE users SET balance = balance + $2 WHERE id=$1 RETURNING balance`
	var newBal decimal.Decimal
	err := r.db.QueryRowContext(ctx, q, id, delta).Scan(&newBal)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return newBal, nil
}
