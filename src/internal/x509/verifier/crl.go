// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verifier

import (
	"bytes"
	"context"
	"crypto/x509"
	"fmt"
	"net/http"
	"time"

	x509certs "github.com/H0llyW00dzZ/x509-cert-validator/src/internal/x509/certs"
	x509ext "github.com/H0llyW00dzZ/x509-cert-validator/src/internal/x509/extension"
	"github.com/H0llyW00dzZ/x509-cert-validator/src/logger"
)

// DefaultMaxCRLSize bounds a CRL download when no size is configured.
const DefaultMaxCRLSize int64 = 5 * 1024 * 1024

// CRLVerifier checks a certificate against the CRL named by its CRL
// Distribution Points extension.
//
// Downloaded CRLs are kept in a [CRLCache] owned by the verifier.
type CRLVerifier struct {
	maxCRLSize int64
	cache      *CRLCache
	http       *HTTPConfig
	log        logger.Logger
	metrics    *Metrics
	decoder    *x509certs.Certificate
}

// NewCRLVerifier creates a CRL verifier.
//
// Parameters:
//   - maxCRLSize: Largest accepted CRL body in bytes, <= 0 uses DefaultMaxCRLSize
//   - cacheCfg: CRL cache capacity and TTL, nil uses DefaultCRLCacheConfig
//   - env: Shared collaborators, nil uses defaults
//
// Returns:
//   - *CRLVerifier: New verifier
//   - error: Error if the cache configuration is invalid
func NewCRLVerifier(maxCRLSize int64, cacheCfg *CRLCacheConfig, env *Env) (*CRLVerifier, error) {
	e := env.withDefaults()
	if maxCRLSize <= 0 {
		maxCRLSize = DefaultMaxCRLSize
	}

	v := &CRLVerifier{
		maxCRLSize: maxCRLSize,
		http:       e.HTTP,
		log:        e.Log,
		metrics:    e.Metrics,
		decoder:    x509certs.New(),
	}

	cache, err := NewCRLCache(cacheCfg, v.download, e.Metrics)
	if err != nil {
		return nil, err
	}
	v.cache = cache

	return v, nil
}

// download fetches and decodes the CRL at uri. It is the cache loader.
func (v *CRLVerifier) download(ctx context.Context, uri string) (crl *x509.RevocationList, err error) {
	start := time.Now()
	defer func() { v.metrics.recordFetch(protocolCRL, start, err) }()

	data, err := v.http.fetch(ctx, fetchRequest{
		method: http.MethodGet,
		uri:    uri,
		limit:  v.maxCRLSize,
	})
	if err != nil {
		return nil, err
	}

	return v.decoder.DecodeRevocationList(data)
}

// Validate checks cert against the CRL of its immediate issuer.
//
// The result is Unknown when no CRL location is found or the CRL cannot be
// obtained, Invalid when the CRL fails a policy check, Revoked when cert is
// listed with a revocation time at or before at, and Valid otherwise.
//
// Validate panics with ErrNoIssuer when issuers is empty.
func (v *CRLVerifier) Validate(ctx context.Context, cert *x509.Certificate, issuers []*x509.Certificate, at time.Time) (status ValidationStatus) {
	issuer := immediateIssuer(issuers)
	status = newStatus(cert, issuer, at, SourceCRL)

	defer func() {
		if r := recover(); r != nil {
			v.log.Errorf("CRL validation of %s aborted: %v", subjectOf(cert), r)
			status = newStatus(cert, issuer, at, SourceCRL)
		}
		v.metrics.recordValidation(status)
	}()

	uri, err := x509ext.CRLDistributionPoint(cert)
	if err != nil {
		v.log.Warnf("No CRL distribution point for %s: %v", subjectOf(cert), err)
		return status
	}

	crl, err := v.cache.Get(ctx, uri)
	if err != nil {
		v.log.Errorf("Failed to obtain CRL %s for %s: %v", uri, subjectOf(cert), err)
		return status
	}

	if err := v.checkCRL(crl, issuer, at); err != nil {
		v.log.Warnf("CRL %s rejected for %s: %v", uri, subjectOf(cert), err)
		status.Validity = Invalid
		return status
	}

	entry := findRevoked(crl, cert)
	switch {
	case entry == nil:
		status.Validity = Valid
	case entry.RevocationTime.After(at):
		// Revocation not yet effective at the reference instant.
		status.Validity = Valid
		status.RevocationObjectIssuingTime = crl.ThisUpdate
	default:
		status.Validity = Revoked
		status.RevocationDate = entry.RevocationTime
		status.RevocationObjectIssuingTime = crl.ThisUpdate
	}

	v.log.Debugf("CRL %s verdict for %s: %s", uri, subjectOf(cert), status.Validity)
	return status
}

// checkCRL applies the CRL policy checks in order: issuer name, signature,
// freshness and the issuer's cRLSign key usage.
func (v *CRLVerifier) checkCRL(crl *x509.RevocationList, issuer *x509.Certificate, at time.Time) error {
	if !sameName(crl, issuer) {
		return fmt.Errorf("CRL issuer %q does not match %q", crl.Issuer.String(), issuer.Subject.String())
	}

	// CheckSignature rather than RevocationList.CheckSignatureFrom: the key
	// usage check below is a separate step.
	if err := issuer.CheckSignature(crl.SignatureAlgorithm, crl.RawTBSRevocationList, crl.Signature); err != nil {
		return fmt.Errorf("CRL signature does not verify: %w", err)
	}

	if !crl.NextUpdate.IsZero() && at.After(crl.NextUpdate) {
		return fmt.Errorf("CRL is stale, next update was %s", crl.NextUpdate.UTC().Format(time.RFC3339))
	}

	if issuer.KeyUsage&x509.KeyUsageCRLSign == 0 {
		return fmt.Errorf("issuer %q lacks the cRLSign key usage", issuer.Subject.String())
	}

	return nil
}

// sameName compares the CRL issuer with the certificate subject, first as
// DER and then as rendered distinguished names.
func sameName(crl *x509.RevocationList, issuer *x509.Certificate) bool {
	if bytes.Equal(crl.RawIssuer, issuer.RawSubject) {
		return true
	}
	return crl.Issuer.String() == issuer.Subject.String()
}

// findRevoked returns the revoked entry for cert's serial number, if any.
func findRevoked(crl *x509.RevocationList, cert *x509.Certificate) *x509.RevocationListEntry {
	for i := range crl.RevokedCertificateEntries {
		entry := &crl.RevokedCertificateEntries[i]
		if entry.SerialNumber != nil && entry.SerialNumber.Cmp(cert.SerialNumber) == 0 {
			return entry
		}
	}
	return nil
}

// Destroy evicts every cached CRL. Safe to call more than once.
func (v *CRLVerifier) Destroy() { v.cache.Purge() }
