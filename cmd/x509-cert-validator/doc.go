// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// x509-cert-validator is a command-line tool for deciding whether an X.509
// end-entity certificate is currently trusted, using its issuer chain, OCSP
// responders, and CRL distribution points.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/x509-cert-validator/cmd/x509-cert-validator@latest
//
// # Usage
//
//	x509-cert-validator validate (-f CERT [-c CHAIN] | --host HOST[:PORT]) [FLAGS]
//
// # Flags
//
//	-f, --file              Certificate file (PEM, DER, or PKCS#7); extra certificates are issuers
//	-c, --chain             Issuer bundle, immediate issuer first
//	    --host              Take the certificate and issuers from a TLS handshake
//	    --at                Reference time in RFC 3339 (default: now)
//	    --config            Configuration file (.json, .yaml, .yml)
//	    --generic           Enable the validity window verifier
//	    --path              Enable the certification path verifier
//	    --ocsp              Enable the OCSP verifier
//	    --crl               Enable the CRL verifier
//	    --allow-self-signed Accept a self-signed certificate as its own trust anchor
//	    --stop-on-failure   Stop at the first verifier that does not report valid (default: true)
//	-j, --json              Print the report as JSON
//	    --stats             Print verifier metrics after the report
//	-v, --verbose           Log at debug level
//
// Verifier flags override the configuration file only when given.
//
// # Exit status
//
// 0 when the certificate is valid, 2 when it is not, 1 on any other error,
// and 130 when interrupted.
//
// # Examples
//
// Validate a leaf against its issuer bundle with revocation checks:
//
//	x509-cert-validator validate -f leaf.pem -c chain.pem --ocsp --crl
//
// Validate the certificate served by a host as JSON:
//
//	x509-cert-validator validate --host example.com --crl --json
//
// Validate at a past instant using a configuration file:
//
//	X509_VALIDATOR_CONFIG_FILE=config.yaml x509-cert-validator validate -f leaf.pem --at 2025-01-01T00:00:00Z
package main
