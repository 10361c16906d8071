// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verifier

import (
	"context"
	"crypto/x509"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-cert-validator/src/config"
)

func TestNewChecker_EnabledOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		want   []string
	}{
		{name: "defaults", want: []string{NameGeneric, NamePath}},
		{
			name: "all",
			mutate: func(c *config.Config) {
				c.Validators.OCSP = true
				c.Validators.CRL = true
			},
			want: []string{NameGeneric, NamePath, NameOCSP, NameCRL},
		},
		{
			name: "revocation only",
			mutate: func(c *config.Config) {
				c.Validators.Generic = false
				c.Validators.Path = false
				c.Validators.CRL = true
				c.Validators.OCSP = true
			},
			want: []string{NameOCSP, NameCRL},
		},
		{
			name: "none",
			mutate: func(c *config.Config) {
				c.Validators.Generic = false
				c.Validators.Path = false
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			c, err := NewChecker(cfg, nil)
			require.NoError(t, err)
			defer c.Destroy()

			assert.Equal(t, tt.want, c.Enabled())
		})
	}
}

func TestNewChecker_HTTPFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Timeout = 3
	cfg.HTTP.DialTimeout = 1
	cfg.HTTP.UserAgent = "checker-agent"

	c, err := NewChecker(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, c.env.HTTP.Timeout)
	assert.Equal(t, time.Second, c.env.HTTP.DialTimeout)
	assert.Equal(t, "checker-agent", c.env.HTTP.GetUserAgent())
	assert.Equal(t, 3*time.Second, c.env.HTTP.Client().Timeout)
}

func TestNewChecker_InvalidCRLCache(t *testing.T) {
	cfg := config.Default()
	cfg.Validators.CRL = true
	cfg.CRL.CacheSize = -1

	_, err := NewChecker(cfg, nil)
	assert.Error(t, err)
}

func TestChecker_Check(t *testing.T) {
	root := newRootCA(t, "Test Root")
	intermediate := root.newIntermediateCA(t, "Test Intermediate")

	srv := newCRLServer(t, nil)
	good := leafWithCRL(t, intermediate, srv.URL+"/intermediate.crl")
	bad := leafWithCRL(t, intermediate, srv.URL+"/intermediate.crl")
	srv.setBody(intermediate.signCRL(t, testNow.Add(-time.Hour), testNow.Add(time.Hour), revoked(bad, testNow.Add(-time.Hour))), http.StatusOK)

	chain := []*x509.Certificate{intermediate.cert, root.cert}

	tests := []struct {
		name          string
		cert          *x509.Certificate
		at            time.Time
		stopOnFailure bool
		wantValid     bool
		wantNames     []string
		wantValidity  []Validity
	}{
		{
			name:         "valid certificate",
			cert:         good,
			at:           testNow,
			wantValid:    true,
			wantNames:    []string{NameGeneric, NamePath, NameCRL},
			wantValidity: []Validity{Valid, Valid, Valid},
		},
		{
			name:         "revoked certificate",
			cert:         bad,
			at:           testNow,
			wantNames:    []string{NameGeneric, NamePath, NameCRL},
			wantValidity: []Validity{Valid, Valid, Revoked},
		},
		{
			name:          "expired stops at generic",
			cert:          good,
			at:            good.NotAfter.Add(time.Hour),
			stopOnFailure: true,
			wantNames:     []string{NameGeneric},
			wantValidity:  []Validity{Unknown},
		},
		{
			name:         "expired runs every verifier",
			cert:         good,
			at:           good.NotAfter.Add(time.Hour),
			wantNames:    []string{NameGeneric, NamePath, NameCRL},
			wantValidity: []Validity{Unknown, Invalid, Invalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Validators.CRL = true
			cfg.StopOnFailure = tt.stopOnFailure

			c, err := NewChecker(cfg, &Env{Metrics: NewMetrics(prometheus.NewRegistry())})
			require.NoError(t, err)
			defer c.Destroy()

			report, err := c.Check(context.Background(), tt.cert, chain, tt.at)
			require.NoError(t, err)

			assert.Equal(t, tt.wantValid, report.Valid)
			assert.Equal(t, tt.wantNames, report.Names)
			require.Len(t, report.Statuses, len(tt.wantValidity))
			for i, want := range tt.wantValidity {
				assert.Equal(t, want, report.Statuses[i].Validity, "verifier %s", report.Names[i])
			}
			assert.Equal(t, tt.cert, report.Certificate)
			assert.True(t, tt.at.Equal(report.ValidationDate))
		})
	}
}

func TestChecker_NoIssuer(t *testing.T) {
	root := newRootCA(t, "Test Root")
	leaf := root.issueLeaf(t, nil)

	c, err := NewChecker(nil, nil)
	require.NoError(t, err)

	report, err := c.Check(context.Background(), leaf, nil, testNow)
	assert.ErrorIs(t, err, ErrNoIssuer)
	assert.Nil(t, report)

	// The generic verifier alone needs no issuer.
	cfg := config.Default()
	cfg.Validators.Path = false
	c, err = NewChecker(cfg, nil)
	require.NoError(t, err)

	report, err = c.Check(context.Background(), leaf, nil, testNow)
	require.NoError(t, err)
	assert.True(t, report.Valid)
}

func TestChecker_NothingEnabledAccepts(t *testing.T) {
	cfg := config.Default()
	cfg.Validators.Generic = false
	cfg.Validators.Path = false

	c, err := NewChecker(cfg, nil)
	require.NoError(t, err)

	report, err := c.Check(context.Background(), selfSignedLeaf(t), nil, testNow)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Statuses)
}

func TestChecker_CancelledContext(t *testing.T) {
	root := newRootCA(t, "Test Root")
	c, err := NewChecker(nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Check(ctx, root.issueLeaf(t, nil), []*x509.Certificate{root.cert}, testNow)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChecker_DestroyIsIdempotent(t *testing.T) {
	cfg := config.Default()
	cfg.Validators.OCSP = true
	cfg.Validators.CRL = true

	c, err := NewChecker(cfg, nil)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		c.Destroy()
		c.Destroy()
	})
}
