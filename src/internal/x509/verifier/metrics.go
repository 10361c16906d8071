// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verifier

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Protocol labels for revocation fetch metrics.
const (
	protocolCRL  = "crl"
	protocolOCSP = "ocsp"
)

// Metrics holds the Prometheus collectors updated by verifiers.
type Metrics struct {
	// validations counts verdicts
	// Labels: source (CRL, OCSP, CHAIN, APP), validity (UNKNOWN, VALID, INVALID, REVOKED)
	validations *prometheus.CounterVec

	// cacheLookups counts CRL cache lookups
	// Labels: result (hit, miss)
	cacheLookups *prometheus.CounterVec

	// fetches counts revocation downloads
	// Labels: protocol (crl, ocsp), result (success, error)
	fetches *prometheus.CounterVec

	// fetchDuration tracks how long revocation downloads take
	// Buckets: 0.01s, 0.05s, 0.1s, 0.5s, 1s, 5s, 10s
	fetchDuration *prometheus.HistogramVec
}

// NewMetrics creates the verifier collectors and registers them with reg.
// A nil reg leaves them unregistered, which suits tests and library use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "x509_validations_total",
				Help: "Total number of certificate validations grouped by source and validity",
			},
			[]string{"source", "validity"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "x509_crl_cache_lookups_total",
				Help: "Total number of CRL cache lookups grouped by result",
			},
			[]string{"result"},
		),
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "x509_revocation_fetches_total",
				Help: "Total number of CRL and OCSP downloads grouped by protocol and result",
			},
			[]string{"protocol", "result"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "x509_revocation_fetch_duration_seconds",
				Help:    "Duration of CRL and OCSP downloads in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"protocol"},
		),
	}
}

// recordValidation records the verdict carried by status.
func (m *Metrics) recordValidation(status ValidationStatus) {
	m.validations.WithLabelValues(status.Source.String(), status.Validity.String()).Inc()
}

// recordCacheLookup records a CRL cache hit or miss.
func (m *Metrics) recordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// recordFetch records one revocation download started at start.
func (m *Metrics) recordFetch(protocol string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(protocol, result).Inc()
	m.fetchDuration.WithLabelValues(protocol).Observe(time.Since(start).Seconds())
}

// Validations returns the verdict counter, for tests and reporting.
func (m *Metrics) Validations() *prometheus.CounterVec { return m.validations }

// CacheLookups returns the CRL cache lookup counter.
func (m *Metrics) CacheLookups() *prometheus.CounterVec { return m.cacheLookups }

// Fetches returns the revocation download counter.
func (m *Metrics) Fetches() *prometheus.CounterVec { return m.fetches }
