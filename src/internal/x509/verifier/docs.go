// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package verifier decides whether an [X.509] end-entity certificate is
// valid at a reference instant, given its issuer chain.
//
// Four interchangeable strategies implement [Verifier]:
//   - [GenericVerifier] checks the certificate's own validity window.
//   - [PathVerifier] builds and re-validates a path to a self-signed issuer.
//   - [OCSPVerifier] asks the [OCSP] responder named in the certificate.
//   - [CRLVerifier] consults the [CRL] named in the certificate, through a
//     bounded, expiring cache that loads each URI at most once at a time.
//
// Verifiers never return errors. Failures to determine the status yield
// [Unknown]; policy failures yield [Invalid] or [Revoked]. Callers decide
// how to treat Unknown.
//
// [Checker] runs the strategies enabled in a [config.Config] in the order
// generic, path, ocsp, crl and accepts a certificate only when each of them
// returns [Valid].
//
// [X.509]: https://grokipedia.com/page/X.509
// [OCSP]: https://grokipedia.com/page/Online_Certificate_Status_Protocol
// [CRL]: https://grokipedia.com/page/Certificate_revocation_list
package verifier
