// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509ext reads revocation locations out of [X.509] certificate
// extensions.
//
// Two extensions are understood:
//   - CRL Distribution Points (2.5.29.31), yielding a CRL download URI.
//   - Authority Information Access (1.3.6.1.5.5.7.1.1), yielding the OCSP
//     responder URI.
//
// Only the first uniformResourceIdentifier general name is returned. Values
// that cannot be decoded are reported as errors and never panic, so callers
// can treat any error as "no location found".
//
// Example:
//
//	uri, err := x509ext.CRLDistributionPoint(cert)
//	if err != nil {
//		// no CRL location
//	}
//
// [X.509]: https://grokipedia.com/page/X.509
package x509ext
