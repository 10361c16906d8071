// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()

	assert.True(t, c.Validators.Generic)
	assert.True(t, c.Validators.Path)
	assert.False(t, c.Validators.OCSP)
	assert.False(t, c.Validators.CRL)
	assert.True(t, c.StopOnFailure)
	assert.False(t, c.Path.VerifySelfSignedCertificate)
	assert.Equal(t, int64(5*1024*1024), c.CRL.MaxResponseSize)
	assert.Equal(t, 10, c.CRL.CacheSize)
	assert.Equal(t, 60*time.Minute, c.CRLCacheTTL())
	assert.Equal(t, 10*time.Second, c.HTTPTimeout())
	assert.Equal(t, time.Duration(0), c.HTTPDialTimeout())
	assert.Equal(t, "text", c.Log.Format)
	assert.Equal(t, "info", c.Log.Level)
	assert.NoError(t, c.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	t.Setenv(EnvLogLevel, "")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad_Formats(t *testing.T) {
	t.Setenv(EnvLogLevel, "")

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "YAML",
			file: "config.yaml",
			content: `
validators:
  ocsp: true
  crl: true
stopOnFailure: false
path:
  verifySelfSignedCertificate: true
crl:
  maxResponseSize: 1024
  cacheSize: 3
  cacheTTLMinutes: 5
http:
  timeoutSeconds: 2
  dialTimeoutSeconds: 1
  userAgent: test-agent
log:
  format: json
  level: debug
`,
		},
		{
			name: "YML extension upper case",
			file: "CONFIG.YML",
			content: `
validators:
  ocsp: true
  crl: true
stopOnFailure: false
path:
  verifySelfSignedCertificate: true
crl:
  maxResponseSize: 1024
  cacheSize: 3
  cacheTTLMinutes: 5
http:
  timeoutSeconds: 2
  dialTimeoutSeconds: 1
  userAgent: test-agent
log:
  format: json
  level: debug
`,
		},
		{
			name: "JSON",
			file: "config.json",
			content: `{
  "validators": {"ocsp": true, "crl": true},
  "stopOnFailure": false,
  "path": {"verifySelfSignedCertificate": true},
  "crl": {"maxResponseSize": 1024, "cacheSize": 3, "cacheTTLMinutes": 5},
  "http": {"timeoutSeconds": 2, "dialTimeoutSeconds": 1, "userAgent": "test-agent"},
  "log": {"format": "json", "level": "debug"}
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(writeConfig(t, tt.file, tt.content))
			require.NoError(t, err)

			// Absent fields keep their defaults.
			assert.True(t, c.Validators.Generic)
			assert.True(t, c.Validators.Path)
			assert.Equal(t, DefaultMaxOCSPResponseSize, c.OCSP.MaxResponseSize)

			assert.True(t, c.Validators.OCSP)
			assert.True(t, c.Validators.CRL)
			assert.False(t, c.StopOnFailure)
			assert.True(t, c.Path.VerifySelfSignedCertificate)
			assert.Equal(t, int64(1024), c.CRL.MaxResponseSize)
			assert.Equal(t, 3, c.CRL.CacheSize)
			assert.Equal(t, 5*time.Minute, c.CRLCacheTTL())
			assert.Equal(t, 2*time.Second, c.HTTPTimeout())
			assert.Equal(t, time.Second, c.HTTPDialTimeout())
			assert.Equal(t, "test-agent", c.HTTP.UserAgent)
			assert.Equal(t, "json", c.Log.Format)
			assert.Equal(t, "debug", c.Log.Level)
		})
	}
}

func TestLoad_NormalizesInvalidValues(t *testing.T) {
	t.Setenv(EnvLogLevel, "")

	path := writeConfig(t, "config.yaml", `
crl:
  maxResponseSize: -1
  cacheSize: 0
  cacheTTLMinutes: -5
ocsp:
  maxResponseSize: 0
http:
  timeoutSeconds: -1
  dialTimeoutSeconds: -3
log:
  format: ""
  level: ""
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxCRLSize, c.CRL.MaxResponseSize)
	assert.Equal(t, DefaultCRLCacheSize, c.CRL.CacheSize)
	assert.Equal(t, DefaultCRLCacheTTLMinutes, c.CRL.CacheTTLMinutes)
	assert.Equal(t, DefaultMaxOCSPResponseSize, c.OCSP.MaxResponseSize)
	assert.Equal(t, DefaultHTTPTimeoutSeconds, c.HTTP.Timeout)
	assert.Equal(t, 0, c.HTTP.DialTimeout)
	assert.Equal(t, DefaultLogFormat, c.Log.Format)
	assert.Equal(t, DefaultLogLevel, c.Log.Level)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	path := writeConfig(t, "config.json", `{"validators": {"crl": true}}`)
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvLogLevel, "warn")

	c, err := Load("")
	require.NoError(t, err)
	assert.True(t, c.Validators.CRL)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(EnvLogLevel, "")

	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{name: "missing file", path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.json") }},
		{name: "bad JSON", path: func(t *testing.T) string { return writeConfig(t, "c.json", "{not json") }},
		{name: "bad YAML", path: func(t *testing.T) string { return writeConfig(t, "c.yaml", "validators: [unclosed") }},
		{name: "unknown log format", path: func(t *testing.T) string { return writeConfig(t, "c.json", `{"log": {"format": "xml"}}`) }},
		{name: "unknown log level", path: func(t *testing.T) string { return writeConfig(t, "c.json", `{"log": {"level": "loud"}}`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(tt.path(t))
			assert.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestDetectConfigFormat(t *testing.T) {
	tests := []struct {
		path string
		want configFormat
	}{
		{"config.json", configFormatJSON},
		{"config.yaml", configFormatYAML},
		{"config.YML", configFormatYAML},
		{"config", configFormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, detectConfigFormat(tt.path))
		})
	}
}
