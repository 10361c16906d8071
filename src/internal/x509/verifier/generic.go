// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verifier

import (
	"context"
	"crypto/x509"
	"time"

	"github.com/H0llyW00dzZ/x509-cert-validator/src/logger"
)

// GenericVerifier checks only the certificate's own validity window.
type GenericVerifier struct {
	log     logger.Logger
	metrics *Metrics
}

// NewGenericVerifier creates a generic verifier. A nil env uses defaults.
func NewGenericVerifier(env *Env) *GenericVerifier {
	e := env.withDefaults()
	return &GenericVerifier{log: e.Log, metrics: e.Metrics}
}

// Validate reports Valid when NotBefore <= at <= NotAfter.
//
// An expired or not yet valid certificate is reported as Unknown rather
// than Invalid. Issuers are not consulted and may be empty.
func (v *GenericVerifier) Validate(_ context.Context, cert *x509.Certificate, _ []*x509.Certificate, at time.Time) ValidationStatus {
	status := newStatus(cert, nil, at, SourceApp)

	switch {
	case cert == nil:
		v.log.Warnf("Generic validation called without a certificate")
	case at.Before(cert.NotBefore):
		v.log.Warnf("Certificate %s is not valid before %s", subjectOf(cert), cert.NotBefore.UTC().Format(time.RFC3339))
	case at.After(cert.NotAfter):
		v.log.Warnf("Certificate %s expired at %s", subjectOf(cert), cert.NotAfter.UTC().Format(time.RFC3339))
	default:
		status.Validity = Valid
	}

	v.metrics.recordValidation(status)
	return status
}

// Destroy is a no-op.
func (v *GenericVerifier) Destroy() {}
