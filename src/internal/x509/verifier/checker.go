// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verifier

import (
	"context"
	"crypto/x509"
	"time"

	"github.com/H0llyW00dzZ/x509-cert-validator/src/config"
	"github.com/H0llyW00dzZ/x509-cert-validator/src/version"
)

// Verifier names, in execution order.
const (
	NameGeneric = "generic"
	NamePath    = "path"
	NameOCSP    = "ocsp"
	NameCRL     = "crl"
)

type namedVerifier struct {
	name          string
	verifier      Verifier
	requireIssuer bool
}

// Report is the outcome of [Checker.Check].
type Report struct {
	Certificate    *x509.Certificate
	ValidationDate time.Time
	// Names lists the verifiers that ran, parallel to Statuses.
	Names    []string
	Statuses []ValidationStatus
	// Valid is true when every verifier that ran returned Valid.
	Valid bool
}

// Checker runs the enabled verifiers in the fixed order generic, path,
// ocsp, crl and accepts a certificate only when all of them return Valid.
type Checker struct {
	verifiers     []namedVerifier
	stopOnFailure bool
	env           Env
}

// NewChecker builds the verifiers enabled in cfg.
//
// When env.HTTP is nil the HTTP configuration is derived from cfg.
//
// Parameters:
//   - cfg: Configuration, nil uses config.Default()
//   - env: Shared collaborators, nil uses defaults
//
// Returns:
//   - *Checker: New checker
//   - error: Error if a verifier cannot be built
func NewChecker(cfg *config.Config, env *Env) (*Checker, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	var e Env
	if env != nil {
		e = *env
	}
	if e.HTTP == nil {
		e.HTTP = httpConfigFrom(cfg)
	}
	e = e.withDefaults()

	c := &Checker{stopOnFailure: cfg.StopOnFailure, env: e}

	if cfg.Validators.Generic {
		c.verifiers = append(c.verifiers, namedVerifier{name: NameGeneric, verifier: NewGenericVerifier(&e)})
	}
	if cfg.Validators.Path {
		c.verifiers = append(c.verifiers, namedVerifier{
			name:          NamePath,
			verifier:      NewPathVerifier(cfg.Path.VerifySelfSignedCertificate, &e),
			requireIssuer: true,
		})
	}
	if cfg.Validators.OCSP {
		ocspVerifier := NewOCSPVerifier(&e)
		ocspVerifier.MaxResponseSize = cfg.OCSP.MaxResponseSize
		c.verifiers = append(c.verifiers, namedVerifier{name: NameOCSP, verifier: ocspVerifier, requireIssuer: true})
	}
	if cfg.Validators.CRL {
		crlVerifier, err := NewCRLVerifier(cfg.CRL.MaxResponseSize, &CRLCacheConfig{
			MaxSize: cfg.CRL.CacheSize,
			TTL:     cfg.CRLCacheTTL(),
		}, &e)
		if err != nil {
			return nil, err
		}
		c.verifiers = append(c.verifiers, namedVerifier{name: NameCRL, verifier: crlVerifier, requireIssuer: true})
	}

	for _, v := range c.verifiers {
		e.Log.Debugf("Validation method '%s' enabled", v.name)
	}

	return c, nil
}

func httpConfigFrom(cfg *config.Config) *HTTPConfig {
	h := NewHTTPConfig(version.Version)
	h.Timeout = cfg.HTTPTimeout()
	h.DialTimeout = cfg.HTTPDialTimeout()
	h.ResponseHeaderTimeout = cfg.HTTPResponseHeaderTimeout()
	h.UserAgent = cfg.HTTP.UserAgent
	return h
}

// Enabled returns the names of the enabled verifiers in execution order.
func (c *Checker) Enabled() []string {
	names := make([]string, len(c.verifiers))
	for i, v := range c.verifiers {
		names[i] = v.name
	}
	return names
}

// Check validates cert against issuers at the reference instant.
//
// It returns ErrNoIssuer instead of running anything when an enabled
// verifier needs the immediate issuer and issuers is empty.
func (c *Checker) Check(ctx context.Context, cert *x509.Certificate, issuers []*x509.Certificate, at time.Time) (*Report, error) {
	if len(issuers) == 0 || issuers[0] == nil {
		for _, v := range c.verifiers {
			if v.requireIssuer {
				return nil, ErrNoIssuer
			}
		}
	}

	report := &Report{
		Certificate:    cert,
		ValidationDate: at,
		Valid:          true,
	}

	for _, v := range c.verifiers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		status := v.verifier.Validate(ctx, cert, issuers, at)
		c.env.Log.Debugf("Validation method '%s' result for %s: %s", v.name, subjectOf(cert), status.Validity)

		report.Names = append(report.Names, v.name)
		report.Statuses = append(report.Statuses, status)

		if !status.IsValid() {
			report.Valid = false
			if c.stopOnFailure {
				break
			}
		}
	}

	if report.Valid {
		c.env.Log.Printf("Certificate %s is valid", subjectOf(cert))
	} else {
		c.env.Log.Warnf("Certificate %s is invalid", subjectOf(cert))
	}

	return report, nil
}

// Destroy destroys every verifier. Safe to call more than once.
func (c *Checker) Destroy() {
	for _, v := range c.verifiers {
		v.verifier.Destroy()
	}
}
