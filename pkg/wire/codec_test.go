package wire_test

import (
	"bytes"
	"testing"

	"github.com/pzverkov/tls10-client/internal/constants"
	"github.com/pzverkov/tls10-client/pkg/wire"
)

func TestEncodeDecodeClientHelloRoundTrip(t *testing.T) {
	var random [32]byte
	for i := range random {
		random[i] = byte(i)
	}

	original := wire.ClientHello{
		Random:       random,
		SessionID:    nil,
		CipherSuites: constants.DefaultCipherPreference,
		Compressions: []byte{0},
	}

	encoded, err := wire.EncodeClientHello(original)
	if err != nil {
		t.Fatalf("EncodeClientHello failed: %v", err)
	}

	ht, body, err := wire.StripHandshakeHeader(encoded)
	if err != nil {
		t.Fatalf("StripHandshakeHeader failed: %v", err)
	}
	if ht != constants.HandshakeClientHello {
		t.Errorf("wrong handshake type: got %v, want ClientHello", ht)
	}

	if body[0] != constants.ProtocolMajor || body[1] != constants.ProtocolMinor {
		t.Errorf("wrong version bytes: got {%d,%d}, want {3,1}", body[0], body[1])
	}
	if !bytes.Equal(body[2:34], random[:]) {
		t.Error("random field did not round-trip")
	}
}

func TestEncodeClientHelloWithSessionID(t *testing.T) {
	sessionID := bytes.Repeat([]byte{0xAB}, constants.SessionIDSize)
	ch := wire.ClientHello{
		SessionID:    sessionID,
		CipherSuites: constants.DefaultCipherPreference,
		Compressions: []byte{0},
	}
	encoded, err := wire.EncodeClientHello(ch)
	if err != nil {
		t.Fatalf("EncodeClientHello failed: %v", err)
	}
	_, body, err := wire.StripHandshakeHeader(encoded)
	if err != nil {
		t.Fatalf("StripHandshakeHeader failed: %v", err)
	}
	sessionIDLenOffset := 2 + constants.RandomSize
	if int(body[sessionIDLenOffset]) != constants.SessionIDSize {
		t.Errorf("session id length byte = %d, want %d", body[sessionIDLenOffset], constants.SessionIDSize)
	}
}

func TestEncodeClientHelloRejectsOversizedSessionID(t *testing.T) {
	ch := wire.ClientHello{
		SessionID:    bytes.Repeat([]byte{1}, constants.SessionIDSize+1),
		CipherSuites: constants.DefaultCipherPreference,
		Compressions: []byte{0},
	}
	if _, err := wire.EncodeClientHello(ch); err == nil {
		t.Error("expected error for oversized session id")
	}
}

func TestDecodeServerHello(t *testing.T) {
	var random [32]byte
	for i := range random {
		random[i] = byte(0xFF - i)
	}
	sessionID := []byte{1, 2, 3, 4}

	body := []byte{constants.ProtocolMajor, constants.ProtocolMinor}
	body = append(body, random[:]...)
	body = append(body, byte(len(sessionID)))
	body = append(body, sessionID...)
	body = append(body, byte(constants.CipherSuiteRSAWithAES128CBCSHA>>8), byte(constants.CipherSuiteRSAWithAES128CBCSHA))
	body = append(body, 0) // null compression

	sh, err := wire.DecodeServerHello(body)
	if err != nil {
		t.Fatalf("DecodeServerHello failed: %v", err)
	}
	if sh.Major != constants.ProtocolMajor || sh.Minor != constants.ProtocolMinor {
		t.Errorf("version mismatch: got {%d,%d}", sh.Major, sh.Minor)
	}
	if !bytes.Equal(sh.Random[:], random[:]) {
		t.Error("server random did not round-trip")
	}
	if !bytes.Equal(sh.SessionID, sessionID) {
		t.Errorf("session id mismatch: got %x, want %x", sh.SessionID, sessionID)
	}
	if sh.CipherSuite != constants.CipherSuiteRSAWithAES128CBCSHA {
		t.Errorf("cipher suite mismatch: got %v", sh.CipherSuite)
	}
}

func TestDecodeServerHelloRejectsOversizedSessionID(t *testing.T) {
	body := []byte{constants.ProtocolMajor, constants.ProtocolMinor}
	body = append(body, make([]byte, 32)...)
	body = append(body, 250) // declares 250 bytes of session id, overruns message
	body = append(body, bytes.Repeat([]byte{0}, 10)...)

	if _, err := wire.DecodeServerHello(body); err == nil {
		t.Error("expected decode error for oversized session id length")
	}
}

func TestEncodeDecodeClientKeyExchange(t *testing.T) {
	ciphertext := bytes.Repeat([]byte{0x42}, 128)
	msg := wire.EncodeClientKeyExchange(ciphertext)

	ht, body, err := wire.StripHandshakeHeader(msg)
	if err != nil {
		t.Fatalf("StripHandshakeHeader failed: %v", err)
	}
	if ht != constants.HandshakeClientKeyExchange {
		t.Errorf("wrong handshake type: got %v", ht)
	}
	gotLen := int(body[0])<<8 | int(body[1])
	if gotLen != len(ciphertext) {
		t.Errorf("encrypted premaster length = %d, want %d", gotLen, len(ciphertext))
	}
	if !bytes.Equal(body[2:], ciphertext) {
		t.Error("ciphertext did not round-trip")
	}
}

func TestDecodeCertificateChain(t *testing.T) {
	cert1 := bytes.Repeat([]byte{0x01}, 10)
	cert2 := bytes.Repeat([]byte{0x02}, 20)

	var body bytes.Buffer
	var chain bytes.Buffer
	for _, c := range [][]byte{cert1, cert2} {
		chain.WriteByte(0)
		chain.WriteByte(byte(len(c) >> 8))
		chain.WriteByte(byte(len(c)))
		chain.Write(c)
	}
	body.WriteByte(0)
	body.WriteByte(byte(chain.Len() >> 8))
	body.WriteByte(byte(chain.Len()))
	body.Write(chain.Bytes())

	certs, err := wire.DecodeCertificate(body.Bytes())
	if err != nil {
		t.Fatalf("DecodeCertificate failed: %v", err)
	}
	if len(certs) != 2 {
		t.Fatalf("got %d certs, want 2", len(certs))
	}
	if !bytes.Equal(certs[0], cert1) || !bytes.Equal(certs[1], cert2) {
		t.Error("certificate bytes did not round-trip")
	}
}
