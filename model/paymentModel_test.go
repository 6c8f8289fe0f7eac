package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestApplyCommission(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		rate   string
		want   string
	}{
		{"card gateways take 10%", "100", "0.10", "110"},
		{"crypto gateway takes 6%", "100", "0.06", "106"},
		{"rounds to kopecks", "99.99", "0.10", "109.99"},
		{"small amount", "1", "0.06", "1.06"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Payment{Amount: decimal.RequireFromString(tc.amount)}
			total := p.ApplyCommission(decimal.RequireFromString(tc.rate))
			require.True(t, total.Equal(decimal.RequireFromString(tc.want)),
				"got %s", total)
			require.True(t, p.TotalAmount.Equal(total))
		})
	}
}

func TestApplyCommission_Idempotent(t *testing.T) {
	p := &Payment{Amount: decimal.NewFromInt(100)}
	first := p.ApplyCommission(decimal.RequireFromString("0.10"))

	// A second application, even with another rate, keeps the original total.
	second := p.ApplyCommission(decimal.RequireFromString("0.50"))
	require.True(t, second.Equal(first))
	require.True(t, p.TotalAmount.Equal(decimal.NewFromInt(110)))
}

func TestCommissionAmount(t *testing.T) {
	p := &Payment{Amount: decimal.NewFromInt(100)}
	p.ApplyCommission(decimal.RequireFromString("0.06"))
	require.True(t, p.CommissionAmount().Equal(decimal.NewFromInt(6)))
}

func TestPaymentStatusHelpers(t *testing.T) {
	p := &Payment{Status: PaymentPending}
	require.True(t, p.IsPending())
	require.False(t, p.IsSuccessful())
	require.False(t, p.IsFailed())

	p.Status = PaymentSuccess
	require.True(t, p.IsSuccessful())
	require.False(t, p.IsPending())

	p.Status = PaymentFailed
	require.True(t, p.IsFailed())
	require.False(t, p.IsSuccessful())
}

func TestUserAvailable(t *testing.T) {
	u := &User{
		Balance:   decimal.RequireFromString("-30"),
		Overdraft: decimal.RequireFromString("100"),
	}
	require.True(t, u.Available().Equal(decimal.NewFromInt(70)))
}
