package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors the API records into.
type Metrics struct {
	registry         *prometheus.Registry
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	rateLimited      *prometheus.CounterVec
	auditPublished   *prometheus.CounterVec
	tenantCacheLooks *prometheus.CounterVec
}

func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fittrack_http_requests_total",
			Help: "Processed HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fittrack_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fittrack_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}, []string{"route"}),
		auditPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fittrack_audit_events_total",
			Help: "Audit events handed to the event stream, by result.",
		}, []string{"result"}),
		tenantCacheLooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fittrack_tenant_cache_lookups_total",
			Help: "Tenant cache lookups, by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{
		m.requestsTotal,
		m.requestDuration,
		m.rateLimited,
		m.auditPublished,
		m.tenantCacheLooks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) RateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

func (m *Metrics) AuditPublished(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.auditPublished.WithLabelValues(result).Inc()
}

func (m *Metrics) TenantCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.tenantCacheLooks.WithLabelValues(result).Inc()
}
