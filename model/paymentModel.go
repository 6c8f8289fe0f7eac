// model/payment.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

const (
	ProviderRobokassa = "robokassa"
	ProviderYookassa  = "yookassa"
	ProviderHeleket   = "heleket"
)

// Payment is a single top-up attempt. InvoiceID is unique and doubles as the
// idempotency key for gateway callbacks.
type Payment struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Provider    string          `json:"provider"`
	Amount      decimal.Decimal `json:"amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	InvoiceID   string          `json:"invoice_id"`
	Status      PaymentStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Payment) IsPending() bool    { return p.Status == PaymentPending }
func (p *Payment) IsSuccessful() bool { return p.Status == PaymentSuccess }
func (p *Payment) IsFailed() bool     { return p.Status == PaymentFailed }

// ApplyCommission sets TotalAmount = Amount * (1 + rate) rounded to 2dp.
// Idempotent: an already computed total is never overwritten.
func (p *Payment) ApplyCommission(rate decimal.Decimal) decimal.Decimal {
	if p.TotalAmount.IsZero() {
		p.TotalAmount = p.Amount.Mul(decimal.NewFromInt(1).Add(rate)).Round(2)
	}
	return p.TotalAmount
}

// CommissionAmount is the markup charged on top of the credited amount.
func (p *Payment) CommissionAmount() decimal.Decimal {
	return p.TotalAmount.Sub(p.Amount)
}

type LedgerType string

const (
	LedgerTopup  LedgerType = "TOPUP_CONFIRMED"
	LedgerAdjust LedgerType = "ADJUSTMENT"
)

type LedgerEntry struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	RefID        *int64          `json:"ref_id,omitempty"`
	EntryType    LedgerType      `json:"entry_type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

type PaymentStats struct {
	SuccessfulCount int64           `json:"successful_count"`
	SuccessfulTotal decimal.Decimal `json:"successful_total"`
	PendingCount    int64           `json:"pending_count"`
}

// InitiatePaymentReq represents a top-up request
// swagger:model InitiatePaymentReq
type InitiatePaymentReq struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}
