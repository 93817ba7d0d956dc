// Package metrics exposes prometheus counters for authentication outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recipebox/internal/apperror"
	"recipebox/internal/auth"
)

const namespace = "recipebox"

// Auth records login results and token rejections.
type Auth struct {
	registry   *prometheus.Registry
	logins     *prometheus.CounterVec
	rejections *prometheus.CounterVec
}

func NewAuth() *Auth {
	m := &Auth{
		registry: prometheus.NewRegistry(),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "token_rejections_total",
			Help:      "Missing or invalid access tokens by authentication mode.",
		}, []string{"reason", "mode"}),
	}
	m.registry.MustRegister(
		m.logins,
		m.rejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// LoginAttempt classifies the outcome of a login by its error.
func (m *Auth) LoginAttempt(err error) {
	result := "success"
	switch {
	case err == nil:
	case apperror.KindOf(err) == apperror.KindInvalidCredentials:
		result = "invalid_credentials"
	default:
		result = "error"
	}
	m.logins.WithLabelValues(result).Inc()
}

// TokenRejected implements auth.RejectionObserver.
func (m *Auth) TokenRejected(mode auth.Mode, err error) {
	m.rejections.WithLabelValues(apperror.KindOf(err).String(), mode.String()).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Auth) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ auth.RejectionObserver = (*Auth)(nil)
