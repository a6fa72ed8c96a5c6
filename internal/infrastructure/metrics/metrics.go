// Package metrics считает переходы сделок и решения банкира.
package metrics

import (
	"git.appkode.ru/pub/go/failure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"garthbid/internal/domain/value"
)

const namespace = "garthbid"

type Metrics struct {
	registry *prometheus.Registry

	dealTransitions *prometheus.CounterVec
	dealRejections  *prometheus.CounterVec
	bankerActions   *prometheus.CounterVec
	bankerRejects   *prometheus.CounterVec
}

// New регистрирует счётчики в новом реестре вместе с go и process
// коллекторами.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dealTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct
			Namespace: namespace,
			Name:      "dealflow_transitions_total",
			Help:      "Deal status changes by target status.",
		}, []string{"to"}),
		dealRejections: prometheus.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct
			Namespace: namespace,
			Name:      "dealflow_rejections_total",
			Help:      "Rejected deal operations by operation and error code.",
		}, []string{"op", "reason"}),
		bankerActions: prometheus.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct
			Namespace: namespace,
			Name:      "banker_actions_total",
			Help:      "Committed banker actions, undos and repricings.",
		}, []string{"action"}),
		bankerRejects: prometheus.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct
			Namespace: namespace,
			Name:      "banker_rejections_total",
			Help:      "Rejected banker mutations by operation and error code.",
		}, []string{"op", "reason"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct
		m.dealTransitions,
		m.dealRejections,
		m.bankerActions,
		m.bankerRejects,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) DealTransition(to value.DealStatus) {
	m.dealTransitions.WithLabelValues(to.String()).Inc()
}

func (m *Metrics) DealRejected(op string, code failure.ErrorCode) {
	m.dealRejections.WithLabelValues(op, reason(code)).Inc()
}

func (m *Metrics) BankerAction(action string) {
	m.bankerActions.WithLabelValues(action).Inc()
}

func (m *Metrics) BankerRejected(op string, code failure.ErrorCode) {
	m.bankerRejects.WithLabelValues(op, reason(code)).Inc()
}

func reason(code failure.ErrorCode) string {
	if code == "" {
		return "unknown"
	}
	return code.String()
}
