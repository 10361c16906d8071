// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509remote

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"time"
)

// DefaultPort is used when the address carries no port.
const DefaultPort = "443"

// ErrNoPeerCertificates indicates the server presented no certificates.
var ErrNoPeerCertificates = errors.New("x509remote: no certificates received from server")

// Fetch connects to address ("host" or "host:port") and returns the leaf
// certificate and the issuers presented after it, in the order the server
// sent them.
//
// Parameters:
//   - ctx: Context for cancellation and deadlines
//   - address: Host name with optional port, DefaultPort when omitted
//   - timeout: Dial and handshake timeout, 0 relies on ctx alone
//
// Returns:
//   - *x509.Certificate: Leaf certificate
//   - []*x509.Certificate: Issuers presented by the server, possibly empty
//   - error: Error if the connection or handshake fails
func Fetch(ctx context.Context, address string, timeout time.Duration) (*x509.Certificate, []*x509.Certificate, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		host, port = address, DefaultPort
	}
	if host == "" {
		return nil, nil, fmt.Errorf("x509remote: missing host in %q", address)
	}
	target := net.JoinHostPort(host, port)

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config: &tls.Config{
			ServerName: host,
			// We just want the cert chain, not to verify
			InsecureSkipVerify: true,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	defer conn.Close()

	peerCerts := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(peerCerts) == 0 {
		return nil, nil, ErrNoPeerCertificates
	}

	return peerCerts[0], peerCerts[1:], nil
}
