// Package metrics exposes the prometheus collectors the service records.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	Registrations  prometheus.Counter
	Logins         *prometheus.CounterVec
	Submissions    prometheus.Counter
	CoursesCreated prometheus.Counter
	PreviewRenders *prometheus.CounterVec
	SessionEvents  *prometheus.CounterVec
}

// New registers every collector on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codelearn_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codelearn_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codelearn_registrations_total",
			Help: "Completed registrations.",
		}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codelearn_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		Submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codelearn_submissions_total",
			Help: "Exercise submissions.",
		}),
		CoursesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codelearn_courses_created_total",
			Help: "Courses authored.",
		}),
		PreviewRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codelearn_preview_renders_total",
			Help: "Composed preview documents by transport.",
		}, []string{"transport"}),
		SessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codelearn_session_events_total",
			Help: "Sessions opened and explicitly closed. Expired sessions are not counted as closed.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests, m.HTTPDuration, m.Registrations, m.Logins,
		m.Submissions, m.CoursesCreated, m.PreviewRenders, m.SessionEvents,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
