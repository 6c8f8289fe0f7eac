package paymentsvc

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chupakobra6/vagvin/config"
	"github.com/chupakobra6/vagvin/model"
)

// Heleket is the cryptocurrency gateway. Requests are signed with
// MD5(base64(json body) + api key); callbacks that round-trip a body are
// verified the same way, otherwise the order-id prefix plus the pending-payment
// lookup is the trust boundary.
type Heleket struct {
	cfg    config.Heleket
	client *http.Client
}

func NewHeleket(cfg config.Heleket, client *http.Client) *Heleket {
	return &Heleket{cfg: cfg, client: client}
}

func (h *Heleket) Name() string { return model.ProviderHeleket }

func (h *Heleket) CommissionRate() decimal.Decimal {
	return decimal.NewFromFloat(0.06)
}

func (h *Heleket) sign(body []byte) string {
	b64 := base64.StdEncoding.EncodeToString(body)
	sum := md5.Sum([]byte(b64 + h.cfg.APIKey))
	return hex.EncodeToString(sum[:])
}

func (h *Heleket) BuildCheckout(ctx context.Context, p *model.Payment, u *model.User) (string, error) {
	body, err := json.Marshal(map[string]any{
		"amount":                   p.TotalAmount.StringFixed(2),
		"currency":                 "RUB",
		"order_id":                 p.InvoiceID,
		"url_return":               h.cfg.ReturnURL,
		"url_success":              h.cfg.SuccessURL,
		"url_callback":             h.cfg.CallbackURL,
		"lifetime":                 3600,
		"subtract":                 4,
		"accuracy_payment_percent": 1,
		"additional_data":          strconv.FormatInt(u.ID, 10),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("merchant", h.cfg.MerchantID)
	req.Header.Set("sign", h.sign(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("heleket create payment: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("heleket create payment failed: %s", resp.Status)
	}

	var out struct {
		Result struct {
			URL string `json:"url"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Result.URL == "" {
		return "", errors.New("heleket: empty payment url")
	}
	return out.Result.URL, nil
}

func (h *Heleket) ExtractInvoiceID(params CallbackParams) (string, error) {
	id := params.Query.Get("order_id")
	if !strings.HasPrefix(id, model.ProviderHeleket+"_") {
		return "", errors.New("heleket: callback without our order id")
	}
	return id, nil
}

func (h *Heleket) VerifyCallback(params CallbackParams, _ *model.Payment) (CallbackResult, error) {
	if sig := params.Query.Get("sign"); sig != "" && len(params.Body) > 0 {
		if !signatureEqual(h.sign(params.Body), sig) {
			return CallbackResult{}, nil
		}
	}

	res := CallbackResult{SignatureOK: true}
	switch params.Query.Get("status") {
	case "paid", "paid_over", "wrong_amount":
		res.Success = true
	case "fail", "cancel", "system_fail":
		res.Failed = true
	}
	return res, nil
}
