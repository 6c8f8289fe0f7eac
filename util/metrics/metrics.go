package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Callback result labels.
const (
	ResultAccepted         = "accepted"
	ResultRejected         = "rejected"
	ResultDuplicate        = "duplicate"
	ResultInvalidSignature = "invalid_signature"
	ResultFailed           = "failed"
)

var (
	PaymentsInitiated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_initiated_total",
		Help: "Top-up payments created, by provider.",
	}, []string{"provider"})

	PaymentCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_callbacks_total",
		Help: "Gateway callback outcomes, by provider and result.",
	}, []string{"provider", "result"})

	PaymentsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_swept_total",
		Help: "Stale pending payments marked failed by the sweeper.",
	})
)
