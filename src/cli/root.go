// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/H0llyW00dzZ/x509-cert-validator/src/config"
	x509certs "github.com/H0llyW00dzZ/x509-cert-validator/src/internal/x509/certs"
	x509remote "github.com/H0llyW00dzZ/x509-cert-validator/src/internal/x509/remote"
	"github.com/H0llyW00dzZ/x509-cert-validator/src/internal/x509/verifier"
	"github.com/H0llyW00dzZ/x509-cert-validator/src/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	// ErrCertificateNotValid is returned when at least one enabled verifier
	// did not report the certificate as valid.
	ErrCertificateNotValid = errors.New("cli: certificate is not valid")

	// ErrNoCertificates is returned when an input file holds no certificate.
	ErrNoCertificates = errors.New("cli: no certificate found in input")

	// ErrInvalidTime is returned when --at is not an RFC 3339 timestamp.
	ErrInvalidTime = errors.New("cli: invalid reference time")
)

// validateOptions holds the flags of the validate command.
type validateOptions struct {
	file       string
	chain      string
	host       string
	at         string
	configPath string

	generic       bool
	path          bool
	ocsp          bool
	crl           bool
	selfSigned    bool
	stopOnFailure bool

	jsonOutput bool
	stats      bool
	verbose    bool
}

// Execute runs the root command with the process arguments.
//
// Parameters:
//   - ctx: Context for cancellation, passed to every verifier
//   - version: Version string reported by --version
//
// Returns:
//   - error: Error if the command fails or the certificate is not valid
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "x509-cert-validator",
		Short:         "X.509 certificate trust validator",
		Long:          "Validate X.509 end-entity certificates against their issuer chain, OCSP responders, and CRL distribution points.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newValidateCommand())
	return rootCmd
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a certificate with the enabled verifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "certificate file (PEM, DER, or PKCS#7); extra certificates are used as issuers")
	flags.StringVarP(&opts.chain, "chain", "c", "", "issuer bundle, immediate issuer first")
	flags.StringVar(&opts.host, "host", "", "take the certificate and issuers from a TLS handshake with HOST[:PORT]")
	flags.StringVar(&opts.at, "at", "", "reference time in RFC 3339 (default: now)")
	flags.StringVar(&opts.configPath, "config", "", "configuration file (.json, .yaml, .yml)")

	flags.BoolVar(&opts.generic, "generic", false, "enable the validity window verifier")
	flags.BoolVar(&opts.path, "path", false, "enable the certification path verifier")
	flags.BoolVar(&opts.ocsp, "ocsp", false, "enable the OCSP verifier")
	flags.BoolVar(&opts.crl, "crl", false, "enable the CRL verifier")
	flags.BoolVar(&opts.selfSigned, "allow-self-signed", false, "accept a self-signed certificate as its own trust anchor")
	flags.BoolVar(&opts.stopOnFailure, "stop-on-failure", true, "stop at the first verifier that does not report valid")

	flags.BoolVarP(&opts.jsonOutput, "json", "j", false, "print the report as JSON")
	flags.BoolVar(&opts.stats, "stats", false, "print verifier metrics after the report")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.MarkFlagsOneRequired("file", "host")
	cmd.MarkFlagsMutuallyExclusive("file", "host")
	cmd.MarkFlagsMutuallyExclusive("chain", "host")

	return cmd
}

// applyFlags overrides cfg with the flags set explicitly on the command line.
func (o *validateOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("generic") {
		cfg.Validators.Generic = o.generic
	}
	if flags.Changed("path") {
		cfg.Validators.Path = o.path
	}
	if flags.Changed("ocsp") {
		cfg.Validators.OCSP = o.ocsp
	}
	if flags.Changed("crl") {
		cfg.Validators.CRL = o.crl
	}
	if flags.Changed("allow-self-signed") {
		cfg.Path.VerifySelfSignedCertificate = o.selfSigned
	}
	if flags.Changed("stop-on-failure") {
		cfg.StopOnFailure = o.stopOnFailure
	}
	if o.verbose {
		cfg.Log.Level = logger.LevelDebug.String()
	}
}

// referenceTime parses --at, defaulting to the current time.
func (o *validateOptions) referenceTime() (time.Time, error) {
	if o.at == "" {
		return time.Now(), nil
	}
	at, err := time.Parse(time.RFC3339, o.at)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidTime, err)
	}
	return at, nil
}

// loadInputs returns the certificate to validate and its issuers, immediate
// issuer first.
func (o *validateOptions) loadInputs(ctx context.Context, cfg *config.Config) (*x509.Certificate, []*x509.Certificate, error) {
	if o.host != "" {
		return x509remote.Fetch(ctx, o.host, cfg.HTTPTimeout())
	}

	decoder := x509certs.New()

	certs, err := readCertificates(decoder, o.file)
	if err != nil {
		return nil, nil, err
	}

	issuers := certs[1:]
	if o.chain != "" {
		chain, err := readCertificates(decoder, o.chain)
		if err != nil {
			return nil, nil, err
		}
		issuers = append(issuers, chain...)
	}

	return certs[0], issuers, nil
}

func readCertificates(decoder *x509certs.Certificate, path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	certs, err := decoder.DecodeMultiple(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCertificates, path)
	}
	return certs, nil
}

// runValidate loads the configuration and inputs, runs the checker, and
// renders the report to the command output.
func runValidate(cmd *cobra.Command, opts *validateOptions) error {
	ctx := cmd.Context()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.applyFlags(cmd, cfg)

	log, err := logger.New(cfg.Log.Format, cfg.Log.Level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	at, err := opts.referenceTime()
	if err != nil {
		return err
	}

	cert, issuers, err := opts.loadInputs(ctx, cfg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	checker, err := verifier.NewChecker(cfg, &verifier.Env{
		Log:     log,
		Metrics: verifier.NewMetrics(registry),
	})
	if err != nil {
		return err
	}
	defer checker.Destroy()

	report, err := checker.Check(ctx, cert, issuers, at)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		err = writeJSON(out, report)
	} else {
		err = writeTable(out, report)
	}
	if err != nil {
		return err
	}

	if opts.stats {
		families, err := registry.Gather()
		if err != nil {
			return fmt.Errorf("error gathering metrics: %w", err)
		}
		// Keep stdout parseable in JSON mode.
		statsOut := out
		if opts.jsonOutput {
			statsOut = cmd.ErrOrStderr()
		}
		if err := writeStats(statsOut, families); err != nil {
			return err
		}
	}

	if !report.Valid {
		return ErrCertificateNotValid
	}
	return nil
}
