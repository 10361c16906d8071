// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verifier

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/H0llyW00dzZ/x509-cert-validator/src/logger"
)

// ErrNoTrustAnchor indicates none of the candidates is self-signed.
var ErrNoTrustAnchor = errors.New("verifier: no trust anchor among issuers")

// PathVerifier builds and validates a certification path from the leaf to a
// self-signed issuer supplied by the caller. Revocation is not consulted.
type PathVerifier struct {
	verifySelfSigned bool
	log              logger.Logger
	metrics          *Metrics
	now              func() time.Time
}

// NewPathVerifier creates a path verifier.
//
// Parameters:
//   - verifySelfSigned: Accept a self-signed leaf instead of rejecting it
//   - env: Shared collaborators, nil uses defaults
//
// Returns:
//   - *PathVerifier: New verifier
func NewPathVerifier(verifySelfSigned bool, env *Env) *PathVerifier {
	e := env.withDefaults()
	return &PathVerifier{
		verifySelfSigned: verifySelfSigned,
		log:              e.Log,
		metrics:          e.Metrics,
		now:              time.Now,
	}
}

// IsSelfSigned reports whether cert's signature verifies under its own
// public key. Any verification error means "not self-signed".
//
// Unlike cert.CheckSignatureFrom(cert) it does not require the CA flag, so
// self-signed end-entity certificates are recognized too.
func IsSelfSigned(cert *x509.Certificate) bool {
	if cert == nil {
		return false
	}
	return cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil
}

// partition splits candidates into trust anchors (self-signed) and
// intermediates.
func partition(candidates []*x509.Certificate) (anchors, intermediates []*x509.Certificate) {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if IsSelfSigned(c) {
			anchors = append(anchors, c)
		} else {
			intermediates = append(intermediates, c)
		}
	}
	return anchors, intermediates
}

func poolOf(certs []*x509.Certificate) *x509.CertPool {
	pool := x509.NewCertPool()
	for _, c := range certs {
		pool.AddCert(c)
	}
	return pool
}

// Validate builds a path for cert over issuers evaluated at at.
//
// The result is Valid when a path to a self-signed issuer is built and
// re-validated and the leaf is an end-entity certificate, Invalid otherwise.
//
// Validate panics with ErrNoIssuer when issuers is empty.
func (v *PathVerifier) Validate(ctx context.Context, cert *x509.Certificate, issuers []*x509.Certificate, at time.Time) (status ValidationStatus) {
	issuer := immediateIssuer(issuers)
	status = newStatus(cert, issuer, at, SourceChain)

	defer func() {
		if r := recover(); r != nil {
			v.log.Errorf("Path validation of %s aborted: %v", subjectOf(cert), r)
			status = newStatus(cert, issuer, at, SourceChain)
			status.Validity = Invalid
		}
		v.metrics.recordValidation(status)
	}()

	path, err := v.verify(cert, issuers, at)
	if err != nil {
		v.log.Warnf("Path validation failed for %s: %v", subjectOf(cert), err)
		status.Validity = Invalid
		return status
	}

	v.log.Debugf("Validated path of length %d for %s", len(path), subjectOf(cert))
	status.Validity = Valid
	return status
}

// VerifyCertificate builds and validates a path for cert over candidates at
// the current instant.
//
// Returns:
//   - []*x509.Certificate: Validated path, leaf first, trust anchor last
//   - error: Error if no acceptable path exists
func (v *PathVerifier) VerifyCertificate(cert *x509.Certificate, candidates []*x509.Certificate) ([]*x509.Certificate, error) {
	return v.verify(cert, candidates, v.now())
}

func (v *PathVerifier) verify(cert *x509.Certificate, candidates []*x509.Certificate, at time.Time) ([]*x509.Certificate, error) {
	if cert == nil {
		return nil, errors.New("verifier: nil certificate")
	}

	if !v.verifySelfSigned && IsSelfSigned(cert) {
		return nil, ErrSelfSignedLeaf
	}

	anchors, intermediates := partition(candidates)
	if len(anchors) == 0 {
		return nil, ErrNoTrustAnchor
	}

	chains, err := cert.Verify(x509.VerifyOptions{
		Roots:         poolOf(anchors),
		Intermediates: poolOf(intermediates),
		CurrentTime:   at,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	if err != nil {
		// Return the original error to preserve diagnostics such as
		// expiration or unknown authority.
		return nil, err
	}
	if len(chains) == 0 {
		return nil, errors.New("verifier: path builder returned no path")
	}

	path := chains[0]
	if err := revalidate(path, anchors, at); err != nil {
		return nil, err
	}

	if leaf := path[0]; leaf.BasicConstraintsValid && leaf.IsCA {
		return nil, ErrNotEndEntity
	}

	return path, nil
}

// revalidate checks a built path independently of the builder: every link
// is signed by its successor, every certificate is within its validity
// window at at, and the path ends at one of anchors.
func revalidate(path, anchors []*x509.Certificate, at time.Time) error {
	if len(path) == 0 {
		return errors.New("verifier: empty path")
	}

	for i, c := range path {
		if at.Before(c.NotBefore) || at.After(c.NotAfter) {
			return fmt.Errorf("certificate %d (%s) is outside its validity window", i, subjectOf(c))
		}
		if i+1 < len(path) {
			if err := c.CheckSignatureFrom(path[i+1]); err != nil {
				return fmt.Errorf("certificate %d (%s) is not signed by %s: %w", i, subjectOf(c), subjectOf(path[i+1]), err)
			}
		}
	}

	last := path[len(path)-1]
	for _, a := range anchors {
		if a.Equal(last) {
			return nil
		}
	}

	return fmt.Errorf("path ends at %s which is not a trust anchor", subjectOf(last))
}

// Destroy is a no-op; the path verifier holds no cached state.
func (v *PathVerifier) Destroy() {}
