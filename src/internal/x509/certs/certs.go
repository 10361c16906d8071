// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/x509"
	"encoding/pem"
	"errors"

	"github.com/cloudflare/cfssl/crypto/pkcs7"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("x509certs: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block type is not the expected type.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = errors.New("x509certs: failed to parse PKCS7 data")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")

	// ErrParseCRL indicates a failure to parse a certificate revocation list.
	ErrParseCRL = errors.New("x509certs: failed to parse CRL")
)

// Certificate provides methods to decode and encode [X.509] certificates and
// revocation lists. It maintains the PEM block types it accepts.
//
// [X.509]: https://en.wikipedia.org/wiki/X.509
type Certificate struct {
	certBlockType  string
	pkcs7BlockType string
	crlBlockType   string
}

// New creates a new Certificate with default settings.
func New() *Certificate {
	return &Certificate{
		certBlockType:  "CERTIFICATE",
		pkcs7BlockType: "PKCS7",
		crlBlockType:   "X509 CRL",
	}
}

// IsPEM checks if the data is in PEM format.
func (c *Certificate) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

// parsePKCS7 extracts every certificate carried by a PKCS #7 SignedData
// structure using Cloudflare's library.
func parsePKCS7(der []byte) ([]*x509.Certificate, error) {
	p, err := pkcs7.ParsePKCS7(der)
	if err != nil {
		return nil, ErrParsePKCS7
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}
	return p.Content.SignedData.Certificates, nil
}

// DecodeMultiple decodes one or more certificates from data.
//
// PEM input may mix CERTIFICATE and PKCS7 blocks. DER input is tried as a
// concatenation of certificates first and as a PKCS #7 bundle second.
func (c *Certificate) DecodeMultiple(data []byte) ([]*x509.Certificate, error) {
	if !c.IsPEM(data) {
		certs, err := x509.ParseCertificates(data)
		if err == nil && len(certs) > 0 {
			return certs, nil
		}
		if certs, perr := parsePKCS7(data); perr == nil {
			return certs, nil
		}
		return nil, ErrParseCertificate
	}

	var certs []*x509.Certificate
	for len(data) > 0 {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}

		switch block.Type {
		case c.certBlockType:
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, ErrParseCertificate
			}
			certs = append(certs, cert)
		case c.pkcs7BlockType:
			bundle, err := parsePKCS7(block.Bytes)
			if err != nil {
				return nil, err
			}
			certs = append(certs, bundle...)
		default:
			return nil, ErrInvalidBlockType
		}

		data = rest
	}

	return certs, nil
}

// Decode decodes a single certificate from data. When data holds a bundle
// the first certificate is returned.
func (c *Certificate) Decode(data []byte) (*x509.Certificate, error) {
	if c.IsPEM(data) {
		certs, err := c.DecodeMultiple(data)
		if err != nil {
			return nil, err
		}
		if len(certs) == 0 {
			return nil, ErrInvalidPEMBlock
		}
		return certs[0], nil
	}

	cert, err := x509.ParseCertificate(data)
	if err == nil {
		return cert, nil
	}

	certs, err := parsePKCS7(data)
	if err != nil {
		if errors.Is(err, ErrParsePKCS7) {
			return nil, ErrParseCertificate
		}
		return nil, err
	}

	return certs[0], nil
}

// DecodeRevocationList decodes a CRL encoded as DER or as a PEM
// "X509 CRL" block.
func (c *Certificate) DecodeRevocationList(data []byte) (*x509.RevocationList, error) {
	if block, _ := pem.Decode(data); block != nil {
		if block.Type != c.crlBlockType {
			return nil, ErrInvalidBlockType
		}
		data = block.Bytes
	}

	crl, err := x509.ParseRevocationList(data)
	if err != nil {
		return nil, errors.Join(ErrParseCRL, err)
	}

	return crl, nil
}

// EncodePEM encodes a certificate to PEM format.
func (c *Certificate) EncodePEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  c.certBlockType,
		Bytes: cert.Raw,
	})
}

// EncodeMultiplePEM encodes multiple certificates to PEM format.
func (c *Certificate) EncodeMultiplePEM(certs []*x509.Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, c.EncodePEM(cert)...)
	}

	return data
}
