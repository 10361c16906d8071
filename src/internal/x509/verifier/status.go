// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verifier

import (
	"crypto/x509"
	"fmt"
	"time"
)

// SourceType identifies which verifier produced a [ValidationStatus].
type SourceType int

const (
	// SourceCRL marks results of the CRL verifier.
	SourceCRL SourceType = iota
	// SourceOCSP marks results of the OCSP verifier.
	SourceOCSP
	// SourceChain marks results of the path verifier.
	SourceChain
	// SourceApp marks results of the generic validity-window verifier.
	SourceApp
)

var sourceNames = [...]string{
	SourceCRL:   "CRL",
	SourceOCSP:  "OCSP",
	SourceChain: "CHAIN",
	SourceApp:   "APP",
}

// String returns the tag name of the source.
func (s SourceType) String() string {
	if s < 0 || int(s) >= len(sourceNames) {
		return fmt.Sprintf("SourceType(%d)", int(s))
	}
	return sourceNames[s]
}

// MarshalText implements [encoding.TextMarshaler].
func (s SourceType) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Validity is the verdict of a verifier.
//
// Unknown is the zero value; a verifier moves it at most once to one of
// the other values.
type Validity int

const (
	// Unknown means the verifier could not decide.
	Unknown Validity = iota
	// Valid means the verifier accepted the certificate.
	Valid
	// Invalid means a policy check failed.
	Invalid
	// Revoked means the issuer reported the certificate as revoked.
	Revoked
)

var validityNames = [...]string{
	Unknown: "UNKNOWN",
	Valid:   "VALID",
	Invalid: "INVALID",
	Revoked: "REVOKED",
}

// String returns the tag name of the validity.
func (v Validity) String() string {
	if v < 0 || int(v) >= len(validityNames) {
		return fmt.Sprintf("Validity(%d)", int(v))
	}
	return validityNames[v]
}

// MarshalText implements [encoding.TextMarshaler].
func (v Validity) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// ValidationStatus is the result of a single Validate call.
//
// RevocationDate and RevocationObjectIssuingTime are zero unless the source
// reported a revocation entry.
type ValidationStatus struct {
	Certificate    *x509.Certificate // Subject certificate
	Issuer         *x509.Certificate // Issuer used for the decision, nil for SourceApp
	ValidationDate time.Time         // Reference instant
	Source         SourceType
	Validity       Validity

	RevocationDate              time.Time // When the certificate was revoked
	RevocationObjectIssuingTime time.Time // thisUpdate of the CRL or OCSP response
}

func newStatus(cert, issuer *x509.Certificate, at time.Time, source SourceType) ValidationStatus {
	return ValidationStatus{
		Certificate:    cert,
		Issuer:         issuer,
		ValidationDate: at,
		Source:         source,
		Validity:       Unknown,
	}
}

// IsValid reports whether the verdict is [Valid].
func (s ValidationStatus) IsValid() bool { return s.Validity == Valid }
