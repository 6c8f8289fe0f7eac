package paymentsvc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/chupakobra6/vagvin/config"
	"github.com/chupakobra6/vagvin/model"
)

func yookassaPayment() *model.Payment {
	return &model.Payment{
		ID:          2,
		UserID:      7,
		Provider:    model.ProviderYookassa,
		Amount:      decimal.NewFromInt(100),
		TotalAmount: decimal.RequireFromString("110.00"),
		InvoiceID:   "yookassa_abc",
		Status:      model.PaymentPending,
	}
}

func TestYookassa_BuildCheckout(t *testing.T) {
	var gotReq *http.Request
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"confirmation":{"confirmation_url":"https://yookassa.example/pay/1"}}`))
	}))
	defer srv.Close()

	y := NewYookassa(config.Yookassa{
		ShopID:    "shop1",
		SecretKey: "sk",
		ReturnURL: "https://vagvin.example/return",
	}, srv.Client())
	y.apiURL = srv.URL

	p := yookassaPayment()
	u := &model.User{ID: 7, Email: "test@example.com"}

	link, err := y.BuildCheckout(context.Background(), p, u)
	require.NoError(t, err)
	require.Equal(t, "https://yookassa.example/pay/1", link)

	user, pass, ok := gotReq.BasicAuth()
	require.True(t, ok)
	require.Equal(t, "shop1", user)
	require.Equal(t, "sk", pass)
	require.Equal(t, "yookassa_abc", gotReq.Header.Get("Idempotence-Key"))

	amount := gotBody["amount"].(map[string]any)
	require.Equal(t, "110.00", amount["value"])
	require.Equal(t, "RUB", amount["currency"])
	meta := gotBody["metadata"].(map[string]any)
	require.Equal(t, "yookassa_abc", meta["idempotence_key"])
	require.Equal(t, "7", meta["user_id"])
}

func TestYookassa_BuildCheckout_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	y := NewYookassa(config.Yookassa{}, srv.Client())
	y.apiURL = srv.URL

	_, err := y.BuildCheckout(context.Background(), yookassaPayment(), &model.User{ID: 7})
	require.Error(t, err)
}

func TestYookassa_ExtractInvoiceID(t *testing.T) {
	y := NewYookassa(config.Yookassa{}, nil)

	body := []byte(`{"object":{"status":"succeeded","metadata":{"idempotence_key":"yookassa_abc"}}}`)
	id, err := y.ExtractInvoiceID(CallbackParams{Body: body})
	require.NoError(t, err)
	require.Equal(t, "yookassa_abc", id)

	// Foreign or absent keys are not ours to process.
	_, err = y.ExtractInvoiceID(CallbackParams{Body: []byte(`{"object":{"metadata":{"idempotence_key":"order-55"}}}`)})
	require.Error(t, err)

	_, err = y.ExtractInvoiceID(CallbackParams{Body: []byte(`not json`)})
	require.Error(t, err)
}

func TestYookassa_VerifyCallback(t *testing.T) {
	y := NewYookassa(config.Yookassa{}, nil)
	p := yookassaPayment()

	event := func(status string) []byte {
		return []byte(`{"object":{"status":"` + status + `","metadata":{"idempotence_key":"yookassa_abc"}}}`)
	}

	res, err := y.VerifyCallback(CallbackParams{Body: event("succeeded")}, p)
	require.NoError(t, err)
	require.True(t, res.SignatureOK)
	require.True(t, res.Success)
	require.False(t, res.Failed)

	res, err = y.VerifyCallback(CallbackParams{Body: event("canceled")}, p)
	require.NoError(t, err)
	require.True(t, res.Failed)
	require.False(t, res.Success)

	// Intermediate statuses leave the payment pending.
	res, err = y.VerifyCallback(CallbackParams{Body: event("waiting_for_capture")}, p)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.False(t, res.Failed)
}
