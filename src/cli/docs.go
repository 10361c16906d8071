// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the X.509 certificate validator.
// It implements a Cobra-based CLI whose validate command loads a certificate and its
// issuers from files or a live TLS endpoint, runs the verifiers enabled in the
// configuration, and renders the report as a markdown table or JSON.
// Verifier metrics can be printed after the report, and the command fails when the
// certificate is not valid so that scripts can rely on the exit status.
package cli
