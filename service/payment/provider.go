package paymentsvc

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chupakobra6/vagvin/model"
)

// CallbackParams carries a raw gateway callback. Robokassa and Heleket notify
// via query parameters, YooKassa posts a JSON body.
type CallbackParams struct {
	Query url.Values
	Body  []byte
}

type CallbackResult struct {
	SignatureOK bool
	// Success / Failed map the provider's own status vocabulary. Both false
	// means the status is one we neither credit nor fail on.
	Success bool
	Failed  bool
}

// Provider builds gateway checkout requests and interprets gateway callbacks.
// Implementations never touch payment status; that is the processor's job.
type Provider interface {
	Name() string
	CommissionRate() decimal.Decimal

	// BuildCheckout returns the URL the client is redirected to.
	BuildCheckout(ctx context.Context, p *model.Payment, u *model.User) (string, error)

	// ExtractInvoiceID pulls our invoice id out of the callback, before any
	// lookup. Each provider embeds it differently.
	ExtractInvoiceID(params CallbackParams) (string, error)

	// VerifyCallback checks authenticity against the loaded payment and maps
	// the provider status onto CallbackResult.
	VerifyCallback(params CallbackParams, p *model.Payment) (CallbackResult, error)
}

// md5Signature implements the colon-joined MD5 scheme shared by the legacy
// gateways: MD5(join(":", parts)) as lowercase hex.
func md5Signature(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}

// signatureEqual compares full hex digests, case-insensitively. Prefix
// matches must never pass.
func signatureEqual(expected, got string) bool {
	return len(got) == len(expected) && strings.EqualFold(expected, got)
}

func topupDescription(u *model.User) string {
	return fmt.Sprintf("Пополнение баланса пользователя %s", u.Username)
}
