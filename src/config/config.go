// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/x509-cert-validator/src/logger"
)

// Environment variables read by [Load].
const (
	EnvConfigFile = "X509_VALIDATOR_CONFIG_FILE"
	EnvLogLevel   = "X509_VALIDATOR_LOG_LEVEL"
)

// Defaults applied by [Default] and restored by [Load] for invalid values.
const (
	DefaultMaxCRLSize          int64 = 5 * 1024 * 1024
	DefaultMaxOCSPResponseSize int64 = 1024 * 1024
	DefaultCRLCacheSize              = 10
	DefaultCRLCacheTTLMinutes        = 60
	DefaultHTTPTimeoutSeconds        = 10
	DefaultLogFormat                 = "text"
	DefaultLogLevel                  = "info"
)

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config represents the validator configuration.
type Config struct {
	// Validators: Which verifiers run, always in the order generic, path, ocsp, crl
	Validators struct {
		Generic bool `json:"generic" yaml:"generic"`
		Path    bool `json:"path" yaml:"path"`
		OCSP    bool `json:"ocsp" yaml:"ocsp"`
		CRL     bool `json:"crl" yaml:"crl"`
	} `json:"validators" yaml:"validators"`

	// StopOnFailure: Stop at the first verifier that does not return VALID
	StopOnFailure bool `json:"stopOnFailure" yaml:"stopOnFailure"`

	// Path: Path verifier policy
	Path struct {
		// VerifySelfSignedCertificate: Accept self-signed leaf certificates
		VerifySelfSignedCertificate bool `json:"verifySelfSignedCertificate" yaml:"verifySelfSignedCertificate"`
	} `json:"path" yaml:"path"`

	// CRL: CRL download and cache settings
	CRL struct {
		// MaxResponseSize: Largest accepted CRL in bytes
		MaxResponseSize int64 `json:"maxResponseSize" yaml:"maxResponseSize"`
		// CacheSize: Number of CRLs kept in memory
		CacheSize int `json:"cacheSize" yaml:"cacheSize"`
		// CacheTTLMinutes: Lifetime of a cached CRL after download
		CacheTTLMinutes int `json:"cacheTTLMinutes" yaml:"cacheTTLMinutes"`
	} `json:"crl" yaml:"crl"`

	// OCSP: OCSP exchange settings
	OCSP struct {
		// MaxResponseSize: Largest accepted OCSP response in bytes
		MaxResponseSize int64 `json:"maxResponseSize" yaml:"maxResponseSize"`
	} `json:"ocsp" yaml:"ocsp"`

	// HTTP: Transport settings shared by CRL and OCSP
	HTTP struct {
		// Timeout: Overall request timeout in seconds
		Timeout int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
		// DialTimeout: Connection timeout in seconds, 0 uses Timeout
		DialTimeout int `json:"dialTimeoutSeconds,omitempty" yaml:"dialTimeoutSeconds,omitempty"`
		// ResponseHeaderTimeout: Wait for response headers in seconds, 0 uses Timeout
		ResponseHeaderTimeout int `json:"responseHeaderTimeoutSeconds,omitempty" yaml:"responseHeaderTimeoutSeconds,omitempty"`
		// UserAgent: Custom User-Agent, empty builds one from the version
		UserAgent string `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	} `json:"http" yaml:"http"`

	// Log: Logger settings
	Log struct {
		// Format: "text" or "json"
		Format string `json:"format" yaml:"format"`
		// Level: "debug", "info", "warn" or "error"
		Level string `json:"level" yaml:"level"`
	} `json:"log" yaml:"log"`
}

// Default returns the built-in configuration: generic and path verifiers
// enabled, OCSP and CRL disabled.
func Default() *Config {
	c := &Config{}
	c.Validators.Generic = true
	c.Validators.Path = true
	c.StopOnFailure = true
	c.CRL.MaxResponseSize = DefaultMaxCRLSize
	c.CRL.CacheSize = DefaultCRLCacheSize
	c.CRL.CacheTTLMinutes = DefaultCRLCacheTTLMinutes
	c.OCSP.MaxResponseSize = DefaultMaxOCSPResponseSize
	c.HTTP.Timeout = DefaultHTTPTimeoutSeconds
	c.Log.Format = DefaultLogFormat
	c.Log.Level = DefaultLogLevel
	return c
}

// detectConfigFormat determines the configuration file format based on file extension.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// Load loads the configuration from a JSON or YAML file or applies defaults.
//
// Parameters:
//   - configPath: Path to the configuration file (optional, can be empty)
//     Supported formats: .json, .yaml, .yml
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Error if the file cannot be read or parsed, or holds invalid log settings
//
// Fields absent from the file keep their defaults. Non-positive sizes and
// timeouts are reset to their defaults.
func Load(configPath string) (*Config, error) {
	config := Default()

	// Check environment variable for config file path if not provided
	if configPath == "" {
		configPath = os.Getenv(EnvConfigFile)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := unmarshalConfig(data, config, detectConfigFormat(configPath)); err != nil {
			return nil, err
		}

		config.normalize()
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		config.Log.Level = level
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize resets non-positive sizes and timeouts to their defaults.
func (c *Config) normalize() {
	if c.CRL.MaxResponseSize <= 0 {
		c.CRL.MaxResponseSize = DefaultMaxCRLSize
	}
	if c.CRL.CacheSize <= 0 {
		c.CRL.CacheSize = DefaultCRLCacheSize
	}
	if c.CRL.CacheTTLMinutes <= 0 {
		c.CRL.CacheTTLMinutes = DefaultCRLCacheTTLMinutes
	}
	if c.OCSP.MaxResponseSize <= 0 {
		c.OCSP.MaxResponseSize = DefaultMaxOCSPResponseSize
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = DefaultHTTPTimeoutSeconds
	}
	if c.HTTP.DialTimeout < 0 {
		c.HTTP.DialTimeout = 0
	}
	if c.HTTP.ResponseHeaderTimeout < 0 {
		c.HTTP.ResponseHeaderTimeout = 0
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate reports settings that cannot be corrected by defaults.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.Log.Format)
	}
	if _, ok := logger.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("config: unsupported log level %q", c.Log.Level)
	}
	return nil
}

// CRLCacheTTL returns the CRL cache TTL as a duration.
func (c *Config) CRLCacheTTL() time.Duration {
	return time.Duration(c.CRL.CacheTTLMinutes) * time.Minute
}

// HTTPTimeout returns the overall HTTP timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.Timeout) * time.Second
}

// HTTPDialTimeout returns the connection timeout as a duration.
func (c *Config) HTTPDialTimeout() time.Duration {
	return time.Duration(c.HTTP.DialTimeout) * time.Second
}

// HTTPResponseHeaderTimeout returns the response header timeout as a duration.
func (c *Config) HTTPResponseHeaderTimeout() time.Duration {
	return time.Duration(c.HTTP.ResponseHeaderTimeout) * time.Second
}
