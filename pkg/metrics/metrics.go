package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados posibles de una transición o de una notificación.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// WorkflowMetrics contadores del flujo de reposición. Un receptor nil no registra nada.
type WorkflowMetrics struct {
	transitions   *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	notifications *prometheus.CounterVec
}

// NewWorkflowMetrics registra las métricas en el registerer dado.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replenishment_transitions_total",
		Help: "Transiciones de órdenes de reposición por operación y resultado.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "replenishment_transition_duration_seconds",
		Help:    "Duración de las transiciones en segundos.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replenishment_notifications_total",
		Help: "Notificaciones publicadas por canal y resultado.",
	}, []string{"channel", "outcome"})
	reg.MustRegister(transitions, duration, notifications)
	return &WorkflowMetrics{
		transitions:   transitions,
		duration:      duration,
		notifications: notifications,
	}
}

// ObserveTransition registra el resultado y la duración de una operación.
func (m *WorkflowMetrics) ObserveTransition(operation string, err error, elapsed time.Duration) {
	if m == nil || m.transitions == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	op := normalizeLabel(operation)
	m.transitions.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// IncNotification cuenta un intento de publicación.
func (m *WorkflowMetrics) IncNotification(channel string, err error) {
	if m == nil || m.notifications == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.notifications.WithLabelValues(normalizeLabel(channel), outcome).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
