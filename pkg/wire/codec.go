// Package wire encodes and decodes TLS 1.0 handshake message bodies. It
// performs no I/O; callers hand it a buffer and get back a parsed struct,
// or a struct and get back bytes ready for the record layer.
package wire

import (
	"golang.org/x/crypto/cryptobyte"

	"github.com/pzverkov/tls10-client/internal/constants"
	qerrors "github.com/pzverkov/tls10-client/internal/errors"
)

// ClientHello is the body of a HS_CLIENT_HELLO message.
type ClientHello struct {
	Random        [constants.RandomSize]byte
	SessionID     []byte // empty means "no resumption offered"
	CipherSuites  []constants.CipherSuite
	Compressions  []byte
}

// EncodeClientHello serializes body fields per spec.md §4.2, returning the
// full handshake message (4-byte header included) ready for the transcript
// and the record layer.
func EncodeClientHello(ch ClientHello) ([]byte, error) {
	if len(ch.SessionID) > constants.SessionIDSize {
		return nil, qerrors.NewProtocolError("ClientHello", qerrors.ErrDecodeError)
	}

	var body cryptobyte.Builder
	body.AddUint8(constants.ProtocolMajor)
	body.AddUint8(constants.ProtocolMinor)
	body.AddBytes(ch.Random[:])
	body.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(ch.SessionID)
	})
	body.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, cs := range ch.CipherSuites {
			b.AddUint16(uint16(cs))
		}
	})
	body.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(ch.Compressions)
	})

	bodyBytes, err := body.Bytes()
	if err != nil {
		return nil, qerrors.NewProtocolError("ClientHello", err)
	}
	return wrapHandshake(constants.HandshakeClientHello, bodyBytes), nil
}

// ServerHello is the parsed body of a HS_SERVER_HELLO message.
type ServerHello struct {
	Major, Minor     byte
	Random           [constants.RandomSize]byte
	SessionID        []byte
	CipherSuite      constants.CipherSuite
	CompressionMethod byte
}

// DecodeServerHello parses a ServerHello message body (no handshake header).
// Bounds violations return ErrDecodeError, matching the source's "paranoia
// check".
func DecodeServerHello(body []byte) (ServerHello, error) {
	var sh ServerHello
	s := cryptobyte.String(body)

	if !s.ReadUint8(&sh.Major) || !s.ReadUint8(&sh.Minor) {
		return ServerHello{}, decodeErr("ServerHello")
	}
	var random []byte
	if !s.ReadBytes(&random, constants.RandomSize) {
		return ServerHello{}, decodeErr("ServerHello")
	}
	copy(sh.Random[:], random)
	var sessionID cryptobyte.String
	if !s.ReadUint8LengthPrefixed(&sessionID) {
		return ServerHello{}, decodeErr("ServerHello")
	}
	if len(sessionID) > constants.SessionIDSize {
		return ServerHello{}, decodeErr("ServerHello")
	}
	sh.SessionID = append([]byte(nil), sessionID...)

	var cipher uint16
	if !s.ReadUint16(&cipher) {
		return ServerHello{}, decodeErr("ServerHello")
	}
	sh.CipherSuite = constants.CipherSuite(cipher)

	if !s.ReadUint8(&sh.CompressionMethod) {
		return ServerHello{}, decodeErr("ServerHello")
	}
	return sh, nil
}

// ClientKeyExchange is the body of a HS_CLIENT_KEY_XCHG message carrying an
// RSA-encrypted premaster secret.
type ClientKeyExchange struct {
	EncryptedPremaster []byte
}

// EncodeClientKeyExchange serializes the RSA-encrypted premaster per
// spec.md §4.7 (16-bit length-prefixed ciphertext inside the handshake body).
func EncodeClientKeyExchange(ciphertext []byte) []byte {
	var body cryptobyte.Builder
	body.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(ciphertext)
	})
	bodyBytes, _ := body.Bytes()
	return wrapHandshake(constants.HandshakeClientKeyExchange, bodyBytes)
}

// EncodeCertificateVerify serializes an RSA signature per spec.md §4.8.
func EncodeCertificateVerify(signature []byte) []byte {
	var body cryptobyte.Builder
	body.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(signature)
	})
	bodyBytes, _ := body.Bytes()
	return wrapHandshake(constants.HandshakeCertificateVerify, bodyBytes)
}

// DecodeCertificateRequest only needs to recognize the message; the body's
// CA list is intentionally not parsed (spec.md §4.3: "no processing of the
// body's CA list").
func DecodeCertificateRequest(body []byte) error {
	// Validate it is at least well-formed cryptobyte-wise so a truncated
	// message still surfaces as a decode error rather than being silently
	// accepted.
	s := cryptobyte.String(body)
	var certTypes cryptobyte.String
	if !s.ReadUint8LengthPrefixed(&certTypes) {
		return decodeErr("CertificateRequest")
	}
	var caNames cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&caNames) {
		return decodeErr("CertificateRequest")
	}
	return nil
}

// DecodeCertificate extracts the raw DER certificate chain (each entry
// length-prefixed by 24 bits, outer list length-prefixed by 24 bits) for
// handoff to the certificate verifier.
func DecodeCertificate(body []byte) ([][]byte, error) {
	s := cryptobyte.String(body)
	var chain cryptobyte.String
	if !s.ReadUint24LengthPrefixed(&chain) {
		return nil, decodeErr("Certificate")
	}
	var certs [][]byte
	for !chain.Empty() {
		var cert cryptobyte.String
		if !chain.ReadUint24LengthPrefixed(&cert) {
			return nil, decodeErr("Certificate")
		}
		certs = append(certs, append([]byte(nil), cert...))
	}
	return certs, nil
}

// EncodeCertificate serializes a (possibly empty) DER chain as a
// Certificate handshake message, for the client's response to
// CertificateRequest (spec.md §4.8).
func EncodeCertificate(chain [][]byte) []byte {
	var body cryptobyte.Builder
	body.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, der := range chain {
			b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
				b.AddBytes(der)
			})
		}
	})
	bodyBytes, _ := body.Bytes()
	return wrapHandshake(constants.HandshakeCertificate, bodyBytes)
}

// Wrap reconstructs the 4-byte handshake header for an already-parsed
// message body, so callers that only received the stripped body from the
// record layer can still feed the full message into the transcript.
func Wrap(t constants.HandshakeType, body []byte) []byte {
	return wrapHandshake(t, body)
}

// wrapHandshake prepends the 4-byte handshake header (type + 24-bit length)
// that the transcript and record layer both expect.
func wrapHandshake(t constants.HandshakeType, body []byte) []byte {
	out := make([]byte, constants.HandshakeHeaderSize+len(body))
	out[0] = byte(t)
	out[1] = byte(len(body) >> 16)
	out[2] = byte(len(body) >> 8)
	out[3] = byte(len(body))
	copy(out[constants.HandshakeHeaderSize:], body)
	return out
}

// StripHandshakeHeader validates and removes the 4-byte handshake header,
// returning the declared type and the body.
func StripHandshakeHeader(msg []byte) (constants.HandshakeType, []byte, error) {
	if len(msg) < constants.HandshakeHeaderSize {
		return 0, nil, decodeErr("handshake header")
	}
	length := int(msg[1])<<16 | int(msg[2])<<8 | int(msg[3])
	if length != len(msg)-constants.HandshakeHeaderSize {
		return 0, nil, decodeErr("handshake header")
	}
	return constants.HandshakeType(msg[0]), msg[constants.HandshakeHeaderSize:], nil
}

func decodeErr(what string) error {
	return qerrors.NewProtocolError(what, qerrors.ErrDecodeError)
}
