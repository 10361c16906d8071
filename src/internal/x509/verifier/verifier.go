// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verifier

import (
	"context"
	"crypto/x509"
	"errors"
	"time"

	"github.com/H0llyW00dzZ/x509-cert-validator/src/logger"
	"github.com/H0llyW00dzZ/x509-cert-validator/src/version"
)

var (
	// ErrNoIssuer indicates an empty issuer chain was passed to a verifier
	// that needs the immediate issuer. Verifiers panic with it; [Checker]
	// returns it.
	ErrNoIssuer = errors.New("verifier: issuer chain is empty")

	// ErrSelfSignedLeaf indicates a self-signed end-entity certificate was
	// rejected by policy.
	ErrSelfSignedLeaf = errors.New("verifier: self-signed leaf certificate not allowed")

	// ErrNotEndEntity indicates the first certificate of a built path is a CA.
	ErrNotEndEntity = errors.New("verifier: leaf certificate is a CA")
)

// Verifier decides whether cert is valid at the reference instant, given its
// issuer chain (issuers[0] is the immediate issuer).
//
// Implementations never return errors: failures surface through the
// Validity of the returned status.
type Verifier interface {
	// Validate evaluates cert. It panics with ErrNoIssuer when the
	// implementation needs an issuer and issuers is empty.
	Validate(ctx context.Context, cert *x509.Certificate, issuers []*x509.Certificate, at time.Time) ValidationStatus

	// Destroy releases resources held by the verifier. Safe to call more
	// than once.
	Destroy()
}

var (
	_ Verifier = (*GenericVerifier)(nil)
	_ Verifier = (*PathVerifier)(nil)
	_ Verifier = (*OCSPVerifier)(nil)
	_ Verifier = (*CRLVerifier)(nil)
)

// Env carries the collaborators shared by verifiers. A nil Env, or nil
// fields, select defaults: an HTTP configuration for the current version,
// a discarding logger and unregistered metrics.
type Env struct {
	HTTP    *HTTPConfig
	Log     logger.Logger
	Metrics *Metrics
}

// withDefaults returns a copy of e with every field populated.
func (e *Env) withDefaults() Env {
	var out Env
	if e != nil {
		out = *e
	}
	if out.HTTP == nil {
		out.HTTP = NewHTTPConfig(version.Version)
	}
	if out.Log == nil {
		out.Log = logger.Discard()
	}
	if out.Metrics == nil {
		out.Metrics = NewMetrics(nil)
	}
	return out
}

// immediateIssuer returns issuers[0] or panics with ErrNoIssuer.
func immediateIssuer(issuers []*x509.Certificate) *x509.Certificate {
	if len(issuers) == 0 || issuers[0] == nil {
		panic(ErrNoIssuer)
	}
	return issuers[0]
}

// subjectOf renders a certificate subject for log lines.
func subjectOf(cert *x509.Certificate) string {
	if cert == nil {
		return "<nil>"
	}
	if cert.Subject.CommonName != "" {
		return cert.Subject.CommonName
	}
	return cert.Subject.String()
}
