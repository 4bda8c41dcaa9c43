// Package fuzz provides fuzz tests for the parsers that handle untrusted
// bytes off the wire.
//
// Run fuzz tests with:
//
//	go test -fuzz=FuzzDecodeServerHello -fuzztime=30s ./test/fuzz/
//	go test -fuzz=FuzzDecodeCertificate -fuzztime=30s ./test/fuzz/
//	go test -fuzz=FuzzStripHandshakeHeader -fuzztime=30s ./test/fuzz/
//
// Run all fuzz tests sequentially:
//
//	go test -fuzz=Fuzz -fuzztime=10s ./test/fuzz/
package fuzz

import (
	"testing"

	"github.com/pzverkov/tls10-client/internal/constants"
	"github.com/pzverkov/tls10-client/pkg/wire"
)

// FuzzDecodeServerHello fuzzes the ServerHello body parser. This runs on
// bytes a server sent before any certificate has been verified, so it must
// never panic regardless of input.
func FuzzDecodeServerHello(f *testing.F) {
	ch := wire.ClientHello{
		CipherSuites: []constants.CipherSuite{constants.CipherSuiteRSAWithAES128CBCSHA},
		Compressions: []byte{0},
	}
	valid, err := wire.EncodeClientHello(ch)
	if err == nil {
		if _, body, err := wire.StripHandshakeHeader(valid); err == nil {
			f.Add(body)
		}
	}

	f.Add([]byte{})
	f.Add(make([]byte, constants.RandomSize))
	f.Add(make([]byte, constants.RandomSize+4))

	f.Fuzz(func(t *testing.T, body []byte) {
		sh, err := wire.DecodeServerHello(body)
		if err != nil {
			return
		}
		if len(sh.SessionID) > constants.SessionIDSize {
			t.Errorf("decoded session id exceeds max size: %d", len(sh.SessionID))
		}
	})
}

// FuzzDecodeCertificate fuzzes the certificate chain parser, which accepts
// a 24-bit length-prefixed list of 24-bit length-prefixed DER blobs
// straight from the server, ahead of any signature check.
func FuzzDecodeCertificate(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0, 0, 0})
	f.Add(wire.EncodeCertificate(nil)[constants.HandshakeHeaderSize:])
	f.Add(wire.EncodeCertificate([][]byte{{1, 2, 3}})[constants.HandshakeHeaderSize:])

	f.Fuzz(func(t *testing.T, body []byte) {
		chain, err := wire.DecodeCertificate(body)
		if err != nil {
			return
		}
		for _, der := range chain {
			if der == nil {
				t.Error("decoded certificate entry is nil with no error")
			}
		}
	})
}

// FuzzStripHandshakeHeader fuzzes the 4-byte handshake header parser that
// every inbound handshake message passes through before dispatch.
func FuzzStripHandshakeHeader(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{byte(constants.HandshakeServerHello), 0, 0, 0})
	f.Add(wire.EncodeCertificate(nil))

	f.Fuzz(func(t *testing.T, msg []byte) {
		typ, body, err := wire.StripHandshakeHeader(msg)
		if err != nil {
			return
		}
		if len(msg) != constants.HandshakeHeaderSize+len(body) {
			t.Errorf("body length mismatch for type %v", typ)
		}
	})
}
