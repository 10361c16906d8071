// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/x509-cert-validator/src/internal/helper/gc"
)

var (
	// ErrUnsupportedScheme indicates a revocation URI whose scheme is not
	// http or https. No request is made for such URIs.
	ErrUnsupportedScheme = errors.New("verifier: unsupported URI scheme")

	// ErrUnexpectedStatus indicates a non-200 HTTP response.
	ErrUnexpectedStatus = errors.New("verifier: unexpected HTTP status")

	// ErrEmptyResponse indicates a revocation endpoint answered with no body.
	ErrEmptyResponse = errors.New("verifier: empty response body")
)

// HTTPConfig holds HTTP client configuration for revocation fetches.
type HTTPConfig struct {
	Timeout               time.Duration // Overall request timeout
	DialTimeout           time.Duration // Connection establishment timeout, 0 uses Timeout
	ResponseHeaderTimeout time.Duration // Time to wait for response headers, 0 uses Timeout
	Version               string        // Application version for User-Agent
	UserAgent             string        // Custom User-Agent string, if empty will be constructed from Version

	// HTTPClient, when set, is used as is instead of a client built from
	// the timeouts above.
	HTTPClient *http.Client

	mu     sync.Mutex
	client *http.Client
}

// NewHTTPConfig creates a new HTTP configuration with default values.
//
// It initializes the configuration with a default timeout of 10 seconds
// and the provided application version.
func NewHTTPConfig(version string) *HTTPConfig {
	return &HTTPConfig{
		Timeout: 10 * time.Second,
		Version: version,
	}
}

// GetUserAgent returns the User-Agent string, constructing it if not set.
func (c *HTTPConfig) GetUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return fmt.Sprintf("X.509-Certificate-Validator/%s (+https://github.com/H0llyW00dzZ/x509-cert-validator)", c.Version)
}

// Client returns the HTTP client used for revocation fetches.
//
// Thread Safety: Safe for concurrent use.
func (c *HTTPConfig) Client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		c.client = c.newClient()
	}

	if c.client.Timeout != c.Timeout {
		c.client.Timeout = c.Timeout
	}

	return c.client
}

func (c *HTTPConfig) newClient() *http.Client {
	dialTimeout := c.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = c.Timeout
	}
	headerTimeout := c.ResponseHeaderTimeout
	if headerTimeout <= 0 {
		headerTimeout = c.Timeout
	}

	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: headerTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}

// fetchRequest describes one revocation exchange.
type fetchRequest struct {
	method      string
	uri         string
	body        []byte
	contentType string
	accept      string
	limit       int64 // Maximum body size, <= 0 means unbounded
}

// checkScheme rejects anything but http and https.
func checkScheme(rawURI string) (*url.URL, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return nil, fmt.Errorf("invalid URI %q: %w", rawURI, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	return u, nil
}

// fetch performs the exchange described by fr and returns the response body.
//
// HTTP-layer caches are bypassed with no-cache request headers. The body is
// read through a pooled buffer and bounded by fr.limit.
func (c *HTTPConfig) fetch(ctx context.Context, fr fetchRequest) ([]byte, error) {
	u, err := checkScheme(fr.uri)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if fr.body != nil {
		body = bytes.NewReader(fr.body)
	}

	req, err := http.NewRequestWithContext(ctx, fr.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.GetUserAgent())
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if fr.contentType != "" {
		req.Header.Set("Content-Type", fr.contentType)
	}
	if fr.accept != "" {
		req.Header.Set("Accept", fr.accept)
	}

	resp, err := c.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, u.Redacted())
	}

	data, err := gc.ReadLimited(resp.Body, fr.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", u.Redacted(), err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyResponse
	}

	return data, nil
}
