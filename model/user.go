package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the account view consumed by the payment flow. Accounts are created
// and authenticated elsewhere; this service only reads balance/overdraft and
// credits balance through the ledger.
type User struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Balance   decimal.Decimal `json:"balance"`
	Overdraft decimal.Decimal `json:"overdraft"`
	CreatedAt time.Time       `json:"created_at"`
}

// Available is what affordability checks compare against.
func (u *User) Available() decimal.Decimal {
	return u.Balance.Add(u.Overdraft)
}
