package paymentsvc

import (
	"bytes"
	"context"
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

const yookassaAPIURL = "https://api.yookassa.ru/v3/payments"

// Yookassa is the hosted-checkout gateway. Outbound requests authenticate via
// basic auth; callbacks carry no signature of their own, so trust rests on the
// metadata invoice id resolving to a pending yookassa payment plus the
// documented status vocabulary.
type Yookassa struct {
	cfg    config.Yookassa
	client *http.Client
	apiURL string
}

func NewYookassa(cfg config.Yookassa, client *http.Client) *Yookassa {
	return &Yookassa{cfg: cfg, client: client, apiURL: yookassaAPIURL}
}

func (y *Yookassa) Name() string { return model.ProviderYookassa }

func (y *Yookassa) CommissionRate() decimal.Decimal {
	return decimal.NewFromFloat(0.10)
}

func (y *Yookassa) BuildCheckout(ctx context.Context, p *model.Payment, u *model.User) (string, error) {
	payload := map[string]any{
		"amount": map[string]string{
			"value":    p.TotalAmount.StringFixed(2),
			"currency": "RUB",
		},
		"confirmation": map[string]string{
			"type":       "redirect",
			"return_url": y.cfg.ReturnURL,
		},
		"capture":     true,
		"description": topupDescription(u),
		"metadata": map[string]string{
			"user_id":         strconv.FormatInt(u.ID, 10),
			"idempotence_key": p.InvoiceID,
		},
		"receipt": map[string]any{
			"customer": map[string]string{"email": u.Email},
			"items": []map[string]any{{
				"description": "Пополнение баланса. ID: " + p.InvoiceID,
				"quantity":    1,
				"amount": map[string]string{
					"value":    p.TotalAmount.StringFixed(2),
					"currency": "RUB",
				},
				"vat_code":        "2",
				"payment_mode":    "full_prepayment",
				"payment_subject": "commodity",
			}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(y.cfg.ShopID, y.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	// The gateway dedupes create requests on this key, same as our callbacks.
	req.Header.Set("Idempotence-Key", p.InvoiceID)

	resp, err := y.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("yookassa create payment: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("yookassa create payment failed: %s", resp.Status)
	}

	var out struct {
		Confirmation struct {
			ConfirmationURL string `json:"confirmation_url"`
		} `json:"confirmation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Confirmation.ConfirmationURL == "" {
		return "", errors.New("yookassa: empty confirmation url")
	}
	return out.Confirmation.ConfirmationURL, nil
}

type yookassaEvent struct {
	Object struct {
		Status   string `json:"status"`
		Metadata struct {
			IdempotenceKey string `json:"idempotence_key"`
		} `json:"metadata"`
	} `json:"object"`
}

func (y *Yookassa) ExtractInvoiceID(params CallbackParams) (string, error) {
	var ev yookassaEvent
	if err := json.Unmarshal(params.Body, &ev); err != nil {
		return "", fmt.Errorf("yookassa: bad callback json: %w", err)
	}
	key := ev.Object.Metadata.IdempotenceKey
	if !strings.HasPrefix(key, model.ProviderYookassa+"_") {
		return "", errors.New("yookassa: callback without our invoice id")
	}
	return key, nil
}

func (y *Yookassa) VerifyCallback(params CallbackParams, _ *model.Payment) (CallbackResult, error) {
	var ev yookassaEvent
	if err := json.Unmarshal(params.Body, &ev); err != nil {
		return CallbackResult{}, fmt.Errorf("yookassa: bad callback json: %w", err)
	}

	res := CallbackResult{SignatureOK: true}
	switch ev.Object.Status {
	case "succeeded":
		res.Success = true
	case "canceled":
		res.Failed = true
	}
	return res, nil
}
