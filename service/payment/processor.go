package paymentsvc

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chupakobra6/vagvin/model"
	paymentrepo "github.com/chupakobra6/vagvin/repository/payment"
	"github.com/chupakobra6/vagvin/util/metrics"
)

var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrUnknownProvider = errors.New("unknown payment provider")
	ErrNotFound        = errors.New("payment not found")
)

// Store is the slice of the payment repository the processor uses.
type Store interface {
	Insert(ctx context.Context, p *model.Payment) error
	FindByInvoiceID(ctx context.Context, invoiceID string) (*model.Payment, error)
	FindByInvoiceIDForUser(ctx context.Context, invoiceID string, userID int64) (*model.Payment, error)
	CommitSuccess(ctx context.Context, invoiceID string, userID int64, amount decimal.Decimal) (bool, error)
	MarkFailed(ctx context.Context, invoiceID string) (bool, error)
	StatsForUser(ctx context.Context, userID int64) (*model.PaymentStats, error)
	ListLedger(ctx context.Context, userID int64) ([]model.LedgerEntry, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Initiated struct {
	Payment    *model.Payment
	PaymentURL string
}

// CallbackOutcome tells the transport layer how to answer the gateway.
// Rejected must map to a non-2xx response so the gateway retries; everything
// else is acknowledged to stop its retry loop.
type CallbackOutcome int

const (
	CallbackRejected  CallbackOutcome = iota // unknown invoice, wrong provider, bad signature
	CallbackCredited                         // pending -> success, balance credited now
	CallbackDuplicate                        // invoice already settled, no-op
	CallbackFailed                           // pending -> failed per the gateway
	CallbackIgnored                          // intermediate status, wait for the next delivery
)

// Processor owns the payment lifecycle: it creates pending payments, hands the
// client to a gateway, and on callback commits the status transition together
// with the balance credit.
type Processor struct {
	store     Store
	users     Users
	providers map[string]Provider
	notifier  Notifier
	log       *slog.Logger
}

func NewProcessor(store Store, users Users, notifier Notifier, log *slog.Logger, providers ...Provider) *Processor {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Processor{store: store, users: users, providers: m, notifier: notifier, log: log}
}

func newInvoiceID(provider string) string {
	u := uuid.New()
	return provider + "_" + hex.EncodeToString(u[:])
}

func (pr *Processor) Initiate(ctx context.Context, providerName string, userID int64, amount decimal.Decimal) (*Initiated, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	prov, ok := pr.providers[providerName]
	if !ok {
		return nil, ErrUnknownProvider
	}

	user, err := pr.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &model.Payment{
		UserID:    user.ID,
		Provider:  prov.Name(),
		Amount:    amount.Round(2),
		InvoiceID: newInvoiceID(prov.Name()),
		Status:    model.PaymentPending,
	}
	p.ApplyCommission(prov.CommissionRate())

	if err := pr.store.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	metrics.PaymentsInitiated.WithLabelValues(prov.Name()).Inc()

	// A checkout failure leaves the payment pending and orphaned. That is
	// safe: no funds moved, the client simply restarts with a fresh invoice.
	url, err := prov.BuildCheckout(ctx, p, user)
	if err != nil {
		pr.log.Error("build checkout failed",
			"provider", prov.Name(), "invoice_id", p.InvoiceID, "err", err)
		return nil, fmt.Errorf("build checkout: %w", err)
	}

	pr.log.Info("payment initiated",
		"provider", prov.Name(), "invoice_id", p.InvoiceID,
		"user_id", user.ID, "amount", p.Amount.String(), "total", p.TotalAmount.String())

	return &Initiated{Payment: p, PaymentURL: url}, nil
}

// HandleCallback processes one gateway notification. Duplicates, unknown
// invoices and bad signatures perform no writes; only the outcome tells them
// apart.
func (pr *Processor) HandleCallback(ctx context.Context, providerName string, params CallbackParams) (*model.Payment, CallbackOutcome, error) {
	prov, ok := pr.providers[providerName]
	if !ok {
		return nil, CallbackRejected, ErrUnknownProvider
	}

	invoiceID, err := prov.ExtractInvoiceID(params)
	if err != nil {
		metrics.PaymentCallbacks.WithLabelValues(providerName, metrics.ResultRejected).Inc()
		return nil, CallbackRejected, nil
	}

	p, err := pr.store.FindByInvoiceID(ctx, invoiceID)
	if errors.Is(err, paymentrepo.ErrNotFound) {
		metrics.PaymentCallbacks.WithLabelValues(providerName, metrics.ResultRejected).Inc()
		return nil, CallbackRejected, nil
	}
	if err != nil {
		return nil, CallbackRejected, err
	}

	if p.Provider != prov.Name() {
		metrics.PaymentCallbacks.WithLabelValues(providerName, metrics.ResultRejected).Inc()
		return nil, CallbackRejected, nil
	}
	if !p.IsPending() {
		// Replay of an already settled invoice. Safe no-op.
		metrics.PaymentCallbacks.WithLabelValues(providerName, metrics.ResultDuplicate).Inc()
		return p, CallbackDuplicate, nil
	}

	res, err := prov.VerifyCallback(params, p)
	if err != nil {
		metrics.PaymentCallbacks.WithLabelValues(providerName, metrics.ResultRejected).Inc()
		return p, CallbackRejected, nil
	}
	if !res.SignatureOK {
		// Payment stays pending so a later, correctly signed callback can
		// still land.
		pr.log.Warn("callback signature rejected",
			"provider", prov.Name(), "invoice_id", p.InvoiceID)
		metrics.PaymentCallbacks.WithLabelValues(providerName, metrics.ResultInvalidSignature).Inc()
		return p, CallbackRejected, nil
	}

	switch {
	case res.Success:
		committed, err := pr.store.CommitSuccess(ctx, p.InvoiceID, p.UserID, p.Amount)
		if err != nil {
			// Commit failed as a whole: status and balance both untouched,
			// the gateway will retry.
			return p, CallbackRejected, fmt.Errorf("commit payment %s: %w", p.InvoiceID, err)
		}
		if !committed {
			metrics.PaymentCallbacks.WithLabelValues(providerName, metrics.ResultDuplicate).Inc()
			return p, CallbackDuplicate, nil
		}
		p.Status = model.PaymentSuccess
		metrics.PaymentCallbacks.WithLabelValues(providerName, metrics.ResultAccepted).Inc()
		pr.log.Info("payment succeeded",
			"provider", prov.Name(), "invoice_id", p.InvoiceID,
			"user_id", p.UserID, "amount", p.Amount.String())
		if pr.notifier != nil {
			pr.notifier.PaymentSucceeded(ctx, p)
		}
		return p, CallbackCredited, nil

	case res.Failed:
		if _, err := pr.store.MarkFailed(ctx, p.InvoiceID); err != nil {
			return p, CallbackRejected, fmt.Errorf("mark payment %s failed: %w", p.InvoiceID, err)
		}
		p.Status = model.PaymentFailed
		metrics.PaymentCallbacks.WithLabelValues(providerName, metrics.ResultFailed).Inc()
		pr.log.Info("payment failed by gateway",
			"provider", prov.Name(), "invoice_id", p.InvoiceID)
		return p, CallbackFailed, nil

	default:
		// Intermediate status; wait for the next notification.
		return p, CallbackIgnored, nil
	}
}

// Status returns a payment scoped to its owner.
func (pr *Processor) Status(ctx context.Context, userID int64, invoiceID string) (*model.Payment, error) {
	p, err := pr.store.FindByInvoiceIDForUser(ctx, invoiceID, userID)
	if errors.Is(err, paymentrepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (pr *Processor) Stats(ctx context.Context, userID int64) (*model.PaymentStats, error) {
	return pr.store.StatsForUser(ctx, userID)
}

func (pr *Processor) Ledger(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	return pr.store.ListLedger(ctx, userID)
}
