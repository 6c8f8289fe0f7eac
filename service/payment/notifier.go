package paymentsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/chupakobra6/vagvin/model"
)

// Notifier is called by the processor after a success commit. Implementations
// must tolerate being invoked at most once per payment and must not block the
// callback response on slow consumers.
type Notifier interface {
	PaymentSucceeded(ctx context.Context, p *model.Payment)
}

// LogNotifier just records the event, mirroring what operators grep for.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) PaymentSucceeded(_ context.Context, p *model.Payment) {
	n.Log.Info("payment marked as successful",
		"payment_id", p.ID,
		"invoice_id", p.InvoiceID,
		"user_id", p.UserID,
		"provider", p.Provider,
		"amount", p.Amount.String(),
	)
}

// WebhookNotifier posts the settled payment to an internal URL. Delivery is
// best effort; failures are logged and never fail the commit.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
	Log    *slog.Logger
}

func (n WebhookNotifier) PaymentSucceeded(ctx context.Context, p *model.Payment) {
	payload, err := json.Marshal(map[string]any{
		"invoice_id": p.InvoiceID,
		"user_id":    p.UserID,
		"provider":   p.Provider,
		"amount":     p.Amount.String(),
		"status":     p.Status,
	})
	if err != nil {
		n.Log.Error("notify marshal failed", "invoice_id", p.InvoiceID, "err", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(payload))
	if err != nil {
		n.Log.Error("notify request failed", "invoice_id", p.InvoiceID, "err", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		n.Log.Error("notify delivery failed", "invoice_id", p.InvoiceID, "err", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.Log.Error("notify rejected", "invoice_id", p.InvoiceID, "status", resp.Status)
	}
}

// MultiNotifier fans out to several notifiers in order.
type MultiNotifier []Notifier

func (m MultiNotifier) PaymentSucceeded(ctx context.Context, p *model.Payment) {
	for _, n := range m {
		n.PaymentSucceeded(ctx, p)
	}
}
