// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"crypto/x509"
	"encoding/asn1"
	"errors"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	// OIDCRLDistributionPoints identifies the CRL Distribution Points extension.
	OIDCRLDistributionPoints = asn1.ObjectIdentifier{2, 5, 29, 31}

	// OIDAuthorityInfoAccess identifies the Authority Information Access extension.
	OIDAuthorityInfoAccess = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 1}

	// OIDAccessMethodOCSP is the AIA access method of an OCSP responder.
	OIDAccessMethodOCSP = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1}
)

var (
	// ErrExtensionNotFound indicates the certificate does not carry the extension.
	ErrExtensionNotFound = errors.New("x509ext: extension not found")

	// ErrMalformedExtension indicates the extension value is not valid DER
	// for its declared structure.
	ErrMalformedExtension = errors.New("x509ext: malformed extension value")

	// ErrNoURI indicates the extension decoded but holds no URI general name.
	ErrNoURI = errors.New("x509ext: no URI in extension")

	// ErrUnsupportedExtension indicates the object identifier is not one
	// this package can decode.
	ErrUnsupportedExtension = errors.New("x509ext: unsupported extension")
)

var (
	tagDistributionPoint = cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()
	tagFullName          = cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()
	tagURI               = cryptobyte_asn1.Tag(6).ContextSpecific()
)

// ExtractURI decodes a raw extension value identified by oid and returns
// the first URI it points to.
func ExtractURI(value []byte, oid asn1.ObjectIdentifier) (string, error) {
	switch {
	case oid.Equal(OIDCRLDistributionPoints):
		return crlDistributionPointURI(value)
	case oid.Equal(OIDAuthorityInfoAccess):
		return ocspResponderURI(value)
	default:
		return "", ErrUnsupportedExtension
	}
}

// FromCertificate locates the extension identified by oid in cert and
// returns its first URI.
func FromCertificate(cert *x509.Certificate, oid asn1.ObjectIdentifier) (string, error) {
	if cert == nil {
		return "", ErrExtensionNotFound
	}

	for _, ext := range cert.Extensions {
		if ext.Id.Equal(oid) {
			return ExtractURI(ext.Value, oid)
		}
	}

	return "", ErrExtensionNotFound
}

// CRLDistributionPoint returns the first CRL download URI of cert.
func CRLDistributionPoint(cert *x509.Certificate) (string, error) {
	return FromCertificate(cert, OIDCRLDistributionPoints)
}

// OCSPResponder returns the first OCSP responder URI of cert.
func OCSPResponder(cert *x509.Certificate) (string, error) {
	return FromCertificate(cert, OIDAuthorityInfoAccess)
}

// crlDistributionPointURI walks
//
//	CRLDistributionPoints ::= SEQUENCE OF DistributionPoint
//	DistributionPoint ::= SEQUENCE {
//	    distributionPoint [0] EXPLICIT DistributionPointName OPTIONAL,
//	    reasons           [1] IMPLICIT ReasonFlags OPTIONAL,
//	    cRLIssuer         [2] IMPLICIT GeneralNames OPTIONAL }
//	DistributionPointName ::= CHOICE {
//	    fullName                [0] IMPLICIT GeneralNames,
//	    nameRelativeToCRLIssuer [1] IMPLICIT RelativeDistinguishedName }
func crlDistributionPointURI(value []byte) (string, error) {
	input := cryptobyte.String(value)

	var points cryptobyte.String
	if !input.ReadASN1(&points, cryptobyte_asn1.SEQUENCE) || !input.Empty() {
		return "", ErrMalformedExtension
	}

	for !points.Empty() {
		var point cryptobyte.String
		if !points.ReadASN1(&point, cryptobyte_asn1.SEQUENCE) {
			return "", ErrMalformedExtension
		}

		var name cryptobyte.String
		var hasName bool
		if !point.ReadOptionalASN1(&name, &hasName, tagDistributionPoint) {
			return "", ErrMalformedExtension
		}
		if !hasName {
			continue
		}

		var fullName cryptobyte.String
		var hasFullName bool
		if !name.ReadOptionalASN1(&fullName, &hasFullName, tagFullName) {
			return "", ErrMalformedExtension
		}
		if !hasFullName {
			// nameRelativeToCRLIssuer carries no URI.
			continue
		}

		uri, found, err := firstURI(fullName)
		if err != nil {
			return "", err
		}
		if found {
			return uri, nil
		}
	}

	return "", ErrNoURI
}

// ocspResponderURI walks
//
//	AuthorityInfoAccessSyntax ::= SEQUENCE OF AccessDescription
//	AccessDescription ::= SEQUENCE {
//	    accessMethod   OBJECT IDENTIFIER,
//	    accessLocation GeneralName }
func ocspResponderURI(value []byte) (string, error) {
	input := cryptobyte.String(value)

	var descriptions cryptobyte.String
	if !input.ReadASN1(&descriptions, cryptobyte_asn1.SEQUENCE) || !input.Empty() {
		return "", ErrMalformedExtension
	}

	for !descriptions.Empty() {
		var description cryptobyte.String
		if !descriptions.ReadASN1(&description, cryptobyte_asn1.SEQUENCE) {
			return "", ErrMalformedExtension
		}

		var method asn1.ObjectIdentifier
		if !description.ReadASN1ObjectIdentifier(&method) {
			return "", ErrMalformedExtension
		}
		if !method.Equal(OIDAccessMethodOCSP) {
			continue
		}

		uri, found, err := firstURI(description)
		if err != nil {
			return "", err
		}
		if found {
			return uri, nil
		}
	}

	return "", ErrNoURI
}

// firstURI scans a run of GeneralName values and returns the first
// non-empty uniformResourceIdentifier.
func firstURI(names cryptobyte.String) (string, bool, error) {
	for !names.Empty() {
		var name cryptobyte.String
		var tag cryptobyte_asn1.Tag
		if !names.ReadAnyASN1(&name, &tag) {
			return "", false, ErrMalformedExtension
		}
		if tag == tagURI && len(name) > 0 {
			return string(name), true, nil
		}
	}

	return "", false, nil
}
