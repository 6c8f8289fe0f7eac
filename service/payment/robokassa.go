package paymentsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chupakobra6/vagvin/config"
	"github.com/chupakobra6/vagvin/model"
)

const robokassaCheckoutURL = "https://auth.robokassa.ru/Merchant/Index.aspx"

// Robokassa is the bank-card redirect gateway. The checkout URL is built and
// signed locally, no outbound call is needed. Password1 signs outbound
// requests, Password2 verifies inbound callbacks; the two are never
// interchangeable.
type Robokassa struct {
	cfg config.Robokassa
}

func NewRobokassa(cfg config.Robokassa) *Robokassa { return &Robokassa{cfg: cfg} }

func (r *Robokassa) Name() string { return model.ProviderRobokassa }

func (r *Robokassa) CommissionRate() decimal.Decimal {
	return decimal.NewFromFloat(0.10)
}

type robokassaReceipt struct {
	Sno   string                 `json:"sno"`
	Items []robokassaReceiptItem `json:"items"`
}

type robokassaReceiptItem struct {
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	Sum           float64 `json:"sum"`
	PaymentMethod string  `json:"payment_method"`
	PaymentObject string  `json:"payment_object"`
	Tax           string  `json:"tax"`
}

func (r *Robokassa) BuildCheckout(_ context.Context, p *model.Payment, u *model.User) (string, error) {
	invID := strconv.FormatInt(time.Now().Unix(), 10)
	outSum := p.TotalAmount.StringFixed(2)

	sum, _ := p.TotalAmount.Float64()
	receipt, err := json.Marshal(robokassaReceipt{
		Sno: "usn_income",
		Items: []robokassaReceiptItem{{
			Name:          topupDescription(u),
			Quantity:      1,
			Sum:           sum,
			PaymentMethod: "full_payment",
			PaymentObject: "commodity",
			Tax:           "vat0",
		}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal receipt: %w", err)
	}

	shpInvoice := "Shp_invoice_id=" + p.InvoiceID
	shpUser := "Shp_user_id=" + strconv.FormatInt(u.ID, 10)

	signature := md5Signature(
		r.cfg.Login,
		outSum,
		invID,
		string(receipt),
		r.cfg.Password1,
		shpInvoice,
		shpUser,
	)

	q := url.Values{}
	q.Set("MerchantLogin", r.cfg.Login)
	q.Set("OutSum", outSum)
	q.Set("InvId", invID)
	q.Set("Description", topupDescription(u))
	q.Set("SignatureValue", signature)
	q.Set("Receipt", string(receipt))
	q.Set("Shp_invoice_id", p.InvoiceID)
	q.Set("Shp_user_id", strconv.FormatInt(u.ID, 10))
	q.Set("Culture", "ru")
	q.Set("incCurr", "BankCard")

	return robokassaCheckoutURL + "?" + q.Encode(), nil
}

func (r *Robokassa) ExtractInvoiceID(params CallbackParams) (string, error) {
	id := params.Query.Get("Shp_invoice_id")
	if id == "" {
		return "", errors.New("robokassa: missing Shp_invoice_id")
	}
	return id, nil
}

func (r *Robokassa) VerifyCallback(params CallbackParams, p *model.Payment) (CallbackResult, error) {
	outSum := params.Query.Get("OutSum")
	invID := params.Query.Get("InvId")
	signature := params.Query.Get("SignatureValue")

	expected := md5Signature(
		outSum,
		invID,
		r.cfg.Password2,
		"Shp_invoice_id="+p.InvoiceID,
		"Shp_user_id="+strconv.FormatInt(p.UserID, 10),
	)

	if !signatureEqual(expected, signature) {
		return CallbackResult{}, nil
	}
	// Robokassa only notifies on completed payments.
	return CallbackResult{SignatureOK: true, Success: true}, nil
}
