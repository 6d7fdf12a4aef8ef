package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomePlaced    = "placed"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
	OutcomeStorage   = "storage_error"
)

// Metrics groups the counters the ordering flow updates.
type Metrics struct {
	OrdersSubmitted   *prometheus.CounterVec
	StatusAdvances    *prometheus.CounterVec
	MenuFetchFailures prometheus.Counter
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OrdersSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cafeteria_orders_submitted_total",
			Help: "Order submissions by mode and outcome.",
		}, []string{"mode", "outcome"}),
		StatusAdvances: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cafeteria_order_status_advances_total",
			Help: "Status advances by resulting status.",
		}, []string{"status"}),
		MenuFetchFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "cafeteria_menu_fetch_failures_total",
			Help: "Menu loads that failed.",
		}),
	}
}

// Discard returns counters registered nowhere, for tests.
func Discard() *Metrics {
	return New(prometheus.NewRegistry())
}
