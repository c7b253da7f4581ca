package apiclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты обновления токенов для portal_client_refresh_total.
const (
	refreshSuccess = "success"
	refreshFailure = "failure"
	refreshSkipped = "skipped"
)

// Metrics — коллекторы клиента. Nil-значение допустимо: методы ничего не делают.
type Metrics struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	refresh        *prometheus.CounterVec
	reauthRequired prometheus.Counter
}

// NewMetrics регистрирует коллекторы в reg (nil — prometheus.DefaultRegisterer).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_client_requests_total",
		Help: "Outbound backend requests by method and status",
	}, []string{"method", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_client_request_duration_seconds",
		Help:    "Outbound backend request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	refresh := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_client_refresh_total",
		Help: "Credential refresh attempts by result",
	}, []string{"result"})

	reauthRequired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portal_client_reauth_required_total",
		Help: "Requests that ended with reauthentication required",
	})

	reg.MustRegister(requests, duration, refresh, reauthRequired)

	return &Metrics{
		requests:       requests,
		duration:       duration,
		refresh:        refresh,
		reauthRequired: reauthRequired,
	}
}

// observeRequest — status == 0 означает, что ответ не получен.
func (m *Metrics) observeRequest(method string, status int, dur time.Duration) {
	if m == nil {
		return
	}

	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}

	m.requests.WithLabelValues(method, label).Inc()
	m.duration.WithLabelValues(method).Observe(dur.Seconds())
}

func (m *Metrics) observeRefresh(result string) {
	if m == nil {
		return
	}

	m.refresh.WithLabelValues(result).Inc()
}

func (m *Metrics) observeReauth() {
	if m == nil {
		return
	}

	m.reauthRequired.Inc()
}
