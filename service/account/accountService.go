package accountsvc

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/chupakobra6/vagvin/model"
	userrepo "github.com/chupakobra6/vagvin/repository/user"
)

type Service interface {
	Balance(ctx context.Context, userID int64) (*model.User, error)

	// CanAfford reports balance + overdraft >= amount. Advisory only: it is
	// not atomic with any later debit, callers doing check-then-debit must
	// wrap the pair in one transaction.
	CanAfford(ctx context.Context, userID int64, amount decimal.Decimal) (bool, error)

	ApplyDelta(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error)
}

type service struct {
	r userrepo.Repo
}

func New(r userrepo.Repo) Service { return &service{r: r} }

func (s *service) Balance(ctx context.Context, userID int64) (*model.User, error) {
	return s.r.ByID(ctx, userID)
}

func (s *service) CanAfford(ctx context.Context, userID int64, amount decimal.Decimal) (bool, error) {
	u, err := s.r.ByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.Available().GreaterThanOrEqual(amount), nil
}

func (s *service) ApplyDelta(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	return s.r.ApplyDelta(ctx, userID, delta)
}
