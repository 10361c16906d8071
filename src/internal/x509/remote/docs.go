// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509remote retrieves the certificates a TLS server presents
// during the handshake, so they can be validated offline.
//
// The handshake does not verify the server; trust decisions are left to the
// verifier package.
package x509remote
