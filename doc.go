// Package tls10client implements the client side of a TLS 1.0 (RFC 2246)
// handshake: RSA key exchange, session resumption, and the CBC/HMAC record
// layer, with no server role and no support for protocol versions beyond
// 1.0.
//
// # Quick Start
//
//	import (
//		"net"
//
//		"github.com/pzverkov/tls10-client/pkg/handshake"
//	)
//
//	conn, _ := net.Dial("tcp", "example.com:443")
//	hs, err := handshake.Dial(conn, handshake.NewContext(), nil)
//	if err != nil {
//		// handshake failed
//	}
//	_ = hs.NegotiatedCipher()
//
// # Package Structure
//
//   - pkg/handshake: client-side handshake state machine and context
//   - pkg/record: TLS 1.0 CBC/HMAC record layer
//   - pkg/wire: handshake message encoding and decoding
//   - pkg/prf: TLS 1.0 PRF and master-secret/key-block derivation
//   - pkg/cert: certificate chain verification
//   - pkg/crypto: RNG health checks, pairwise consistency tests, buffer pooling
//   - pkg/metrics: structured logging, metrics collection, and tracing
//   - internal/constants: protocol constants and cipher suite tables
//   - internal/errors: handshake and protocol error types
//
// # Security Properties
//
//   - Session resumption via an abbreviated handshake against a cached
//     master secret, never by caching plaintext application data
//   - Every inbound certificate chain is verified against the configured
//     roots (or rejected outright unless AllowSelfSigned is set)
//   - Client certificate private keys are pairwise-consistency-tested
//     before being trusted for CertificateVerify signing
//
// # Testing
//
//	go test ./...                                  # All tests
//	go test -fuzz=FuzzDecodeServerHello ./test/fuzz # Fuzz tests
//
// # References
//
//   - RFC 2246: The TLS Protocol Version 1.0
//
// For more information, see: https://github.com/pzverkov/tls10-client
package tls10client
