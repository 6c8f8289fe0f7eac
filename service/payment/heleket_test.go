package paymentsvc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/chupakobra6/vagvin/config"
	"github.com/chupakobra6/vagvin/model"
)

func heleketPayment() *model.Payment {
	return &model.Payment{
		ID:          3,
		UserID:      7,
		Provider:    model.ProviderHeleket,
		Amount:      decimal.NewFromInt(100),
		TotalAmount: decimal.RequireFromString("106.00"),
		InvoiceID:   "heleket_abc",
		Status:      model.PaymentPending,
	}
}

func TestHeleket_Sign(t *testing.T) {
	h := NewHeleket(config.Heleket{APIKey: "apikey"}, nil)
	require.Equal(t, "f2c50023c7ebc7690059cc14ebdede7f", h.sign([]byte(`{"amount":"106.00"}`)))
}

func TestHeleket_BuildCheckout(t *testing.T) {
	var gotMerchant, gotSign string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMerchant = r.Header.Get("merchant")
		gotSign = r.Header.Get("sign")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"url":"https://pay.heleket.example/inv/1"}}`))
	}))
	defer srv.Close()

	h := NewHeleket(config.Heleket{
		APIURL:      srv.URL,
		MerchantID:  "m1",
		APIKey:      "apikey",
		CallbackURL: "https://vagvin.example/v1/payments/heleket/callback",
	}, srv.Client())

	link, err := h.BuildCheckout(context.Background(), heleketPayment(), &model.User{ID: 7})
	require.NoError(t, err)
	require.Equal(t, "https://pay.heleket.example/inv/1", link)

	require.Equal(t, "m1", gotMerchant)
	// The sign header must cover the exact body bytes sent.
	require.Equal(t, h.sign(gotBody), gotSign)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	require.Equal(t, "106.00", payload["amount"])
	require.Equal(t, "RUB", payload["currency"])
	require.Equal(t, "heleket_abc", payload["order_id"])
	require.Equal(t, "7", payload["additional_data"])
}

func TestHeleket_ExtractInvoiceID(t *testing.T) {
	h := NewHeleket(config.Heleket{}, nil)

	id, err := h.ExtractInvoiceID(CallbackParams{Query: url.Values{"order_id": {"heleket_abc"}}})
	require.NoError(t, err)
	require.Equal(t, "heleket_abc", id)

	_, err = h.ExtractInvoiceID(CallbackParams{Query: url.Values{"order_id": {"shop-55"}}})
	require.Error(t, err)

	_, err = h.ExtractInvoiceID(CallbackParams{Query: url.Values{}})
	require.Error(t, err)
}

func TestHeleket_VerifyCallback_StatusMapping(t *testing.T) {
	h := NewHeleket(config.Heleket{APIKey: "apikey"}, nil)
	p := heleketPayment()

	success := []string{"paid", "paid_over", "wrong_amount"}
	for _, st := range success {
		res, err := h.VerifyCallback(CallbackParams{Query: url.Values{"status": {st}}}, p)
		require.NoError(t, err, st)
		require.True(t, res.SignatureOK, st)
		require.True(t, res.Success, st)
	}

	failed := []string{"fail", "cancel", "system_fail"}
	for _, st := range failed {
		res, err := h.VerifyCallback(CallbackParams{Query: url.Values{"status": {st}}}, p)
		require.NoError(t, err, st)
		require.True(t, res.Failed, st)
	}

	// check, process and other intermediate statuses are ignored.
	res, err := h.VerifyCallback(CallbackParams{Query: url.Values{"status": {"process"}}}, p)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.False(t, res.Failed)
}

func TestHeleket_VerifyCallback_Signature(t *testing.T) {
	h := NewHeleket(config.Heleket{APIKey: "apikey"}, nil)
	p := heleketPayment()
	body := []byte(`{"amount":"106.00"}`)

	q := url.Values{"status": {"paid"}, "sign": {"f2c50023c7ebc7690059cc14ebdede7f"}}
	res, err := h.VerifyCallback(CallbackParams{Query: q, Body: body}, p)
	require.NoError(t, err)
	require.True(t, res.SignatureOK)
	require.True(t, res.Success)

	q.Set("sign", "00000000000000000000000000000000")
	res, err = h.VerifyCallback(CallbackParams{Query: q, Body: body}, p)
	require.NoError(t, err)
	require.False(t, res.SignatureOK)
	require.False(t, res.Success)
}
