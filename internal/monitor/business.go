package monitor

import (
	"context"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal/core/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeApproved = "approved"
	OutcomeRejected = "rejected"
)

// PayoutMetrics holds the payout lifecycle metrics.
type PayoutMetrics struct {
	SubmittedTotal      prometheus.Counter
	ResolvedTotal       *prometheus.CounterVec
	ApprovedAmountTotal prometheus.Counter
	PendingRequests     prometheus.Gauge
}

// Subscriber is the part of the event bus the metrics listen on.
type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

func NewPayoutMetrics(reg prometheus.Registerer) *PayoutMetrics {
	factory := promauto.With(reg)
	m := &PayoutMetrics{
		SubmittedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "koe_payout_submitted_total",
			Help: "The total number of submitted payout requests",
		}),
		ResolvedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "koe_payout_resolved_total",
			Help: "The total number of resolved payout requests",
		}, []string{"outcome"}),
		ApprovedAmountTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "koe_payout_approved_amount_total",
			Help: "The total payout amount approved",
		}),
		PendingRequests: factory.NewGauge(prometheus.GaugeOpts{
			Name: "koe_payout_pending_requests",
			Help: "Payout requests waiting for a decision",
		}),
	}

	// expose both outcomes from the start
	m.ResolvedTotal.WithLabelValues(OutcomeApproved)
	m.ResolvedTotal.WithLabelValues(OutcomeRejected)
	return m
}

// Subscribe wires the metrics to the payout lifecycle events.
func (m *PayoutMetrics) Subscribe(bus Subscriber) {
	bus.Subscribe(events.EventTypePayoutSubmitted, m.HandleEvent)
	bus.Subscribe(events.EventTypePayoutApproved, m.HandleEvent)
	bus.Subscribe(events.EventTypePayoutRejected, m.HandleEvent)
}

func (m *PayoutMetrics) HandleEvent(_ context.Context, event events.Event) error {
	ev, ok := event.(*events.PayoutEvent)
	if !ok {
		return nil
	}

	switch ev.EventType() {
	case events.EventTypePayoutSubmitted:
		m.SubmittedTotal.Inc()
		m.PendingRequests.Inc()
	case events.EventTypePayoutApproved:
		m.ResolvedTotal.WithLabelValues(OutcomeApproved).Inc()
		m.ApprovedAmountTotal.Add(ev.Amount.InexactFloat64())
		m.PendingRequests.Dec()
	case events.EventTypePayoutRejected:
		m.ResolvedTotal.WithLabelValues(OutcomeRejected).Inc()
		m.PendingRequests.Dec()
	}
	return nil
}
