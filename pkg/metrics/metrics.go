package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "maintenance"

// Исходы перехода заявки.
const (
	TransitionOK       = "ok"
	TransitionRejected = "rejected"
	TransitionFailed   = "failed"
)

// Исходы доставки письма.
const (
	DeliverySent    = "sent"
	DeliverySkipped = "skipped"
	DeliveryFailed  = "failed"
)

type Metrics struct {
	transitions  *prometheus.CounterVec
	deliveries   *prometheus.CounterVec
	sendDuration prometheus.Histogram
}

var (
	defaultOnce sync.Once
	defaultInst *Metrics
)

// Default - метрики в глобальном реестре, их отдаёт /metrics.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultInst = New(prometheus.DefaultRegisterer)
	})
	return defaultInst
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "transitions_total",
			Help:      "Request lifecycle operations, labeled by operation and result",
		}, []string{"operation", "result"}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "email_deliveries_total",
			Help:      "Notification email dispatches, labeled by result",
		}, []string{"result"}),
		sendDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "email_send_duration_seconds",
			Help:      "Duration of email transport calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveTransition(operation, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveDelivery(result string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(result).Inc()
}

// StartSend возвращает функцию, фиксирующую длительность отправки.
func (m *Metrics) StartSend() func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.sendDuration.Observe(time.Since(start).Seconds())
	}
}
