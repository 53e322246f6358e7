package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SurveyCollector bundles Prometheus metrics for the survey API surface and
// provides helpers to wire them into HTTP handlers.
type SurveyCollector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	SurveyPatches      prometheus.Gauge
	SurveyStars        prometheus.Gauge
	CurvatureSolutions prometheus.Counter
}

// NewSurveyCollector registers survey Prometheus metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSurveyCollector(reg prometheus.Registerer) (*SurveyCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "survey_http_requests_total",
		Help: "Total number of handled survey API requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "code"})
	requests, err := registerCounterVec(reg, requests, "survey_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "survey_http_request_duration_seconds",
		Help:    "Survey API request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route", "method"})
	durations, err = registerHistogramVec(reg, durations, "survey_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	patches, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "survey_patches",
		Help: "Current number of surface patches in the survey state.",
	}), "survey_patches")
	if err != nil {
		return nil, err
	}
	stars, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "survey_stars",
		Help: "Current number of stars known to the observation generator.",
	}), "survey_stars")
	if err != nil {
		return nil, err
	}

	curvature := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "survey_curvature_calculations_total",
		Help: "Total number of curvature inferences performed.",
	})
	curvature, err = registerCounter(reg, curvature, "survey_curvature_calculations_total")
	if err != nil {
		return nil, err
	}

	return &SurveyCollector{
		gatherer:           gatherer,
		HTTPRequests:       requests,
		HTTPDurations:      durations,
		SurveyPatches:      patches,
		SurveyStars:        stars,
		CurvatureSolutions: curvature,
	}, nil
}

// Middleware records request counts and durations for every routed request.
// The route label uses the mux route template so per-ID paths do not explode
// the label space.
func (c *SurveyCollector) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(sw, r)

			if c == nil {
				return
			}

			route := routeTemplate(r)
			if c.HTTPRequests != nil {
				c.HTTPRequests.WithLabelValues(route, r.Method, fmt.Sprintf("%d", sw.code)).Inc()
			}
			if c.HTTPDurations != nil {
				c.HTTPDurations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
			}
		})
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SurveyCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetSurveyCounts satisfies the SurveyMetricsRecorder interface so the
// survey state can drive gauge values directly from its mutators.
func (c *SurveyCollector) SetSurveyCounts(patches, stars int) {
	if c == nil {
		return
	}
	if c.SurveyPatches != nil {
		c.SurveyPatches.Set(float64(patches))
	}
	if c.SurveyStars != nil {
		c.SurveyStars.Set(float64(stars))
	}
}

// RecordCurvature counts one curvature inference.
func (c *SurveyCollector) RecordCurvature() {
	if c == nil || c.CurvatureSolutions == nil {
		return
	}
	c.CurvatureSolutions.Inc()
}

// routeTemplate returns the mux route template for the request, or the raw
// path when the request did not match a named route.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil && tmpl != "" {
			return tmpl
		}
	}
	if r.URL != nil {
		return r.URL.Path
	}
	return "unknown"
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
