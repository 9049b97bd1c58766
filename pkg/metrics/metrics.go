package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Store metrics
	StoreActions *prometheus.CounterVec
	StoreLatency *prometheus.HistogramVec

	// Notification metrics
	NotificationsPublished *prometheus.CounterVec
	RelayMessages          *prometheus.CounterVec
	RelayLatency           prometheus.Histogram

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

// New builds the metrics without registering them.
func New(namespace string) *Metrics {
	return &Metrics{
		StoreActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_actions_total",
			Help:      "Total number of entity store actions by outcome",
		}, []string{"entity", "action", "status"}),
		StoreLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_action_duration_seconds",
			Help:      "Duration of entity store actions, network round trip included",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"entity", "action"}),
		NotificationsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_published_total",
			Help:      "Total number of notifications published to the broker",
		}, []string{"level", "status"}),
		RelayMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_messages_total",
			Help:      "Total number of notifications handled by the relay worker",
		}, []string{"status"}),
		RelayLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_processing_duration_seconds",
			Help:      "Time spent relaying one notification",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of console HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of console HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.StoreActions, m.StoreLatency,
		m.NotificationsPublished, m.RelayMessages, m.RelayLatency,
		m.HTTPRequests, m.HTTPLatency,
	}
}

// Register adds every collector to reg. Collectors that are already
// registered are skipped.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAction records one store action.
func (m *Metrics) ObserveAction(entity, action, status string, d time.Duration) {
	m.StoreActions.WithLabelValues(entity, action, status).Inc()
	m.StoreLatency.WithLabelValues(entity, action).Observe(d.Seconds())
}

func (m *Metrics) ObserveNotification(level, status string) {
	m.NotificationsPublished.WithLabelValues(level, status).Inc()
}

func (m *Metrics) ObserveRelay(status string, d time.Duration) {
	m.RelayMessages.WithLabelValues(status).Inc()
	m.RelayLatency.Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(d.Seconds())
}
