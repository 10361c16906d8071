// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package verifier

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testNow is the reference instant used across tests, truncated to the
// second precision of X.509 time encodings.
var testNow = time.Now().UTC().Truncate(time.Second)

var serialCounter atomic.Int64

func nextSerial() *big.Int { return big.NewInt(1000 + serialCounter.Add(1)) }

// testCA is an in-memory certificate authority.
type testCA struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
}

func newKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func createCert(t *testing.T, tmpl, parent *x509.Certificate, pub any, signer *ecdsa.PrivateKey) *x509.Certificate {
	t.Helper()

	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, pub, signer)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func caTemplate(name string, usage x509.KeyUsage) *x509.Certificate {
	return &x509.Certificate{
		SerialNumber:          nextSerial(),
		Subject:               pkix.Name{CommonName: name, Organization: []string{"Verifier Tests"}},
		NotBefore:             testNow.Add(-24 * time.Hour),
		NotAfter:              testNow.Add(365 * 24 * time.Hour),
		KeyUsage:              usage,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
}

// newRootCA creates a self-signed CA allowed to sign certificates and CRLs.
func newRootCA(t *testing.T, name string) *testCA {
	t.Helper()

	key := newKey(t)
	tmpl := caTemplate(name, x509.KeyUsageCertSign|x509.KeyUsageCRLSign)
	return &testCA{cert: createCert(t, tmpl, tmpl, &key.PublicKey, key), key: key}
}

// newIntermediateCA creates a CA issued by ca.
func (ca *testCA) newIntermediateCA(t *testing.T, name string) *testCA {
	t.Helper()

	key := newKey(t)
	tmpl := caTemplate(name, x509.KeyUsageCertSign|x509.KeyUsageCRLSign)
	return &testCA{cert: createCert(t, tmpl, ca.cert, &key.PublicKey, ca.key), key: key}
}

// withoutCRLSign returns a copy of the CA certificate, same name and key,
// whose key usage lacks cRLSign.
func (ca *testCA) withoutCRLSign(t *testing.T) *x509.Certificate {
	t.Helper()

	tmpl := caTemplate(ca.cert.Subject.CommonName, x509.KeyUsageCertSign)
	tmpl.Subject = ca.cert.Subject
	tmpl.RawSubject = ca.cert.RawSubject
	return createCert(t, tmpl, tmpl, &ca.key.PublicKey, ca.key)
}

// issueLeaf creates an end-entity certificate; mutate adjusts the template.
func (ca *testCA) issueLeaf(t *testing.T, mutate func(*x509.Certificate)) *x509.Certificate {
	t.Helper()

	key := newKey(t)
	tmpl := &x509.Certificate{
		SerialNumber: nextSerial(),
		Subject:      pkix.Name{CommonName: "leaf.example.test"},
		DNSNames:     []string{"leaf.example.test"},
		NotBefore:    testNow.Add(-time.Hour),
		NotAfter:     testNow.Add(30 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	if mutate != nil {
		mutate(tmpl)
	}
	return createCert(t, tmpl, ca.cert, &key.PublicKey, ca.key)
}

// signCRL issues a DER CRL from ca.
func (ca *testCA) signCRL(t *testing.T, thisUpdate, nextUpdate time.Time, entries ...x509.RevocationListEntry) []byte {
	t.Helper()

	der, err := x509.CreateRevocationList(rand.Reader, &x509.RevocationList{
		Number:                    nextSerial(),
		ThisUpdate:                thisUpdate,
		NextUpdate:                nextUpdate,
		RevokedCertificateEntries: entries,
	}, ca.cert, ca.key)
	require.NoError(t, err)
	return der
}

// selfSignedLeaf creates a self-signed end-entity certificate.
func selfSignedLeaf(t *testing.T) *x509.Certificate {
	t.Helper()

	key := newKey(t)
	tmpl := &x509.Certificate{
		SerialNumber: nextSerial(),
		Subject:      pkix.Name{CommonName: "self-signed.example.test"},
		NotBefore:    testNow.Add(-time.Hour),
		NotAfter:     testNow.Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	return createCert(t, tmpl, tmpl, &key.PublicKey, key)
}

func revoked(cert *x509.Certificate, at time.Time) x509.RevocationListEntry {
	return x509.RevocationListEntry{SerialNumber: cert.SerialNumber, RevocationTime: at}
}
