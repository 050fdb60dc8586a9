package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
)

// Save outcomes recorded in ivrflow_flow_saves_total.
const (
	saveOK         = "success"
	saveInvalid    = "invalid"
	saveValidation = "validation"
	saveError      = "error"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	saves    *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ivrflow_http_requests_total",
				Help: "HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ivrflow_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ivrflow_flow_saves_total",
				Help: "Flow save attempts by outcome.",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.saves)
	return m
}

func saveResult(err error) string {
	if errs.IsValidation(err) {
		return saveValidation
	}
	return saveError
}

// instrument records request counts and latency keyed by the matched route
// pattern, so /flows/{id} is one series regardless of id.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		s.metrics.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
