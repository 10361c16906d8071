// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verifier

import (
	"bytes"
	"context"
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"golang.org/x/crypto/ocsp"

	x509ext "github.com/H0llyW00dzZ/x509-cert-validator/src/internal/x509/extension"
	"github.com/H0llyW00dzZ/x509-cert-validator/src/logger"
)

// DefaultMaxOCSPResponseSize bounds an OCSP response body when no size is
// configured.
const DefaultMaxOCSPResponseSize int64 = 1024 * 1024

var (
	oidSHA1              = asn1.ObjectIdentifier{1, 3, 14, 3, 2, 26}
	oidOCSPBasicResponse = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 1}
)

var (
	// ErrOCSPNoMatch indicates the response holds no entry for the
	// requested certificate identifier.
	ErrOCSPNoMatch = errors.New("verifier: no OCSP response for certificate")

	// ErrOCSPMalformed indicates the response is not a decodable OCSP response.
	ErrOCSPMalformed = errors.New("verifier: malformed OCSP response")
)

// OCSP response structures (RFC 6960) needed to read the top-level status
// and locate the entry matching a CertID.
type responseASN1 struct {
	Status   asn1.Enumerated
	Response responseBytes `asn1:"explicit,tag:0,optional"`
}

type responseBytes struct {
	ResponseType asn1.ObjectIdentifier
	Response     []byte
}

type basicResponse struct {
	TBSResponseData    responseData
	SignatureAlgorithm pkix.AlgorithmIdentifier
	Signature          asn1.BitString
	Certificates       []asn1.RawValue `asn1:"explicit,tag:0,optional"`
}

type responseData struct {
	Raw            asn1.RawContent
	Version        int `asn1:"optional,default:0,explicit,tag:0"`
	RawResponderID asn1.RawValue
	ProducedAt     time.Time `asn1:"generalized"`
	Responses      []singleResponse
}

type singleResponse struct {
	CertID           certID
	Good             asn1.Flag        `asn1:"tag:0,optional"`
	Revoked          revokedInfo      `asn1:"tag:1,optional"`
	Unknown          asn1.Flag        `asn1:"tag:2,optional"`
	ThisUpdate       time.Time        `asn1:"generalized"`
	NextUpdate       time.Time        `asn1:"generalized,explicit,tag:0,optional"`
	SingleExtensions []pkix.Extension `asn1:"explicit,tag:1,optional"`
}

type revokedInfo struct {
	RevocationTime time.Time       `asn1:"generalized"`
	Reason         asn1.Enumerated `asn1:"explicit,tag:0,optional"`
}

type certID struct {
	HashAlgorithm pkix.AlgorithmIdentifier
	NameHash      []byte
	IssuerKeyHash []byte
	SerialNumber  *big.Int
}

// matches reports whether id identifies the same certificate as req.
// The hash algorithm is fixed to SHA-1.
func (id certID) matches(req *ocsp.Request) bool {
	return id.HashAlgorithm.Algorithm.Equal(oidSHA1) &&
		bytes.Equal(id.NameHash, req.IssuerNameHash) &&
		bytes.Equal(id.IssuerKeyHash, req.IssuerKeyHash) &&
		id.SerialNumber != nil && id.SerialNumber.Cmp(req.SerialNumber) == 0
}

// OCSPVerifier checks a certificate with the OCSP responder named by its
// Authority Information Access extension.
type OCSPVerifier struct {
	// MaxResponseSize bounds the response body in bytes, <= 0 uses
	// DefaultMaxOCSPResponseSize.
	MaxResponseSize int64

	http    *HTTPConfig
	log     logger.Logger
	metrics *Metrics
}

// NewOCSPVerifier creates an OCSP verifier. A nil env uses defaults.
func NewOCSPVerifier(env *Env) *OCSPVerifier {
	e := env.withDefaults()
	return &OCSPVerifier{
		MaxResponseSize: DefaultMaxOCSPResponseSize,
		http:            e.HTTP,
		log:             e.Log,
		metrics:         e.Metrics,
	}
}

// Validate asks the OCSP responder of cert about its status.
//
// The result is Invalid when the responder reports an unsuccessful response
// status, Valid for a good entry or a revocation after at, Revoked for a
// revocation at or before at, and Unknown for every other outcome including
// transport and parsing failures.
//
// Validate panics with ErrNoIssuer when issuers is empty.
func (v *OCSPVerifier) Validate(ctx context.Context, cert *x509.Certificate, issuers []*x509.Certificate, at time.Time) (status ValidationStatus) {
	issuer := immediateIssuer(issuers)
	status = newStatus(cert, issuer, at, SourceOCSP)

	defer func() {
		if r := recover(); r != nil {
			v.log.Errorf("OCSP validation of %s aborted: %v", subjectOf(cert), r)
			status = newStatus(cert, issuer, at, SourceOCSP)
		}
		v.metrics.recordValidation(status)
	}()

	uri, err := x509ext.OCSPResponder(cert)
	if err != nil {
		v.log.Warnf("No OCSP responder for %s: %v", subjectOf(cert), err)
		return status
	}

	reqDER, err := ocsp.CreateRequest(cert, issuer, &ocsp.RequestOptions{Hash: crypto.SHA1})
	if err != nil {
		v.log.Errorf("Failed to build OCSP request for %s: %v", subjectOf(cert), err)
		return status
	}
	req, err := ocsp.ParseRequest(reqDER)
	if err != nil {
		v.log.Errorf("Failed to read back OCSP request for %s: %v", subjectOf(cert), err)
		return status
	}

	body, err := v.exchange(ctx, uri, reqDER)
	if err != nil {
		v.log.Errorf("OCSP request to %s for %s failed: %v", uri, subjectOf(cert), err)
		return status
	}

	respStatus, entry, err := scanResponse(body, req)
	switch {
	case errors.Is(err, ErrOCSPNoMatch):
		v.log.Warnf("OCSP response from %s has no entry for %s", uri, subjectOf(cert))
		return status
	case err != nil:
		v.log.Errorf("Failed to parse OCSP response from %s: %v", uri, err)
		return status
	case respStatus != ocsp.Success:
		v.log.Warnf("OCSP responder %s answered %s for %s", uri, respStatus, subjectOf(cert))
		status.Validity = Invalid
		return status
	}

	// Signature and responder authorization.
	if _, err := ocsp.ParseResponseForCert(body, cert, issuer); err != nil {
		v.log.Errorf("OCSP response from %s does not verify: %v", uri, err)
		return status
	}

	switch {
	case bool(entry.Good):
		status.Validity = Valid
	case bool(entry.Unknown):
		// Responder does not know the certificate.
	case !entry.Revoked.RevocationTime.IsZero() && entry.Revoked.RevocationTime.After(at):
		// Revocation not yet effective at the reference instant.
		status.Validity = Valid
		status.RevocationObjectIssuingTime = entry.ThisUpdate
	case !entry.Revoked.RevocationTime.IsZero():
		status.Validity = Revoked
		status.RevocationDate = entry.Revoked.RevocationTime
		status.RevocationObjectIssuingTime = entry.ThisUpdate
	}

	v.log.Debugf("OCSP %s verdict for %s: %s", uri, subjectOf(cert), status.Validity)
	return status
}

// exchange posts reqDER to the responder and returns the response body.
func (v *OCSPVerifier) exchange(ctx context.Context, uri string, reqDER []byte) (body []byte, err error) {
	start := time.Now()
	defer func() { v.metrics.recordFetch(protocolOCSP, start, err) }()

	limit := v.MaxResponseSize
	if limit <= 0 {
		limit = DefaultMaxOCSPResponseSize
	}

	return v.http.fetch(ctx, fetchRequest{
		method:      http.MethodPost,
		uri:         uri,
		body:        reqDER,
		contentType: "application/ocsp-request",
		accept:      "application/ocsp-response",
		limit:       limit,
	})
}

// scanResponse reads the top-level status of an OCSP response and, when it
// is successful, returns the single response whose CertID matches req.
func scanResponse(der []byte, req *ocsp.Request) (ocsp.ResponseStatus, *singleResponse, error) {
	var resp responseASN1
	rest, err := asn1.Unmarshal(der, &resp)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrOCSPMalformed, err)
	}
	if len(rest) > 0 {
		return 0, nil, fmt.Errorf("%w: trailing data", ErrOCSPMalformed)
	}

	status := ocsp.ResponseStatus(resp.Status)
	if status != ocsp.Success {
		return status, nil, nil
	}

	if !resp.Response.ResponseType.Equal(oidOCSPBasicResponse) {
		return status, nil, fmt.Errorf("%w: unsupported response type %s", ErrOCSPMalformed, resp.Response.ResponseType)
	}

	var basic basicResponse
	rest, err = asn1.Unmarshal(resp.Response.Response, &basic)
	if err != nil {
		return status, nil, fmt.Errorf("%w: %v", ErrOCSPMalformed, err)
	}
	if len(rest) > 0 {
		return status, nil, fmt.Errorf("%w: trailing data in basic response", ErrOCSPMalformed)
	}

	for i := range basic.TBSResponseData.Responses {
		entry := &basic.TBSResponseData.Responses[i]
		if entry.CertID.matches(req) {
			return status, entry, nil
		}
	}

	return status, nil, ErrOCSPNoMatch
}

// Destroy is a no-op; the OCSP verifier holds no cached state.
func (v *OCSPVerifier) Destroy() {}
