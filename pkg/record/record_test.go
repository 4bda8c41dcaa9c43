package record

import (
	"bytes"
	"net"
	"testing"

	"github.com/pzverkov/tls10-client/internal/constants"
)

func TestPlaintextHandshakeRoundTrip(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	client := NewLayer(clientConn)
	server := NewLayer(serverConn)

	msg := []byte{byte(constants.HandshakeClientHello), 0, 0, 4, 0xDE, 0xAD, 0xBE, 0xEF}

	errCh := make(chan error, 1)
	go func() { errCh <- client.SendHandshake(msg) }()

	ht, body, err := server.ReadHandshake()
	if err != nil {
		t.Fatalf("ReadHandshake failed: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("SendHandshake failed: %v", err)
	}
	if ht != constants.HandshakeClientHello {
		t.Errorf("wrong handshake type: got %v", ht)
	}
	if !bytes.Equal(body, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Errorf("body mismatch: got %x", body)
	}
}

func TestEncryptedHandshakeRoundTrip(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	client := NewLayer(clientConn)
	server := NewLayer(serverConn, WithServerRole())

	var ms [constants.MasterSecretSize]byte
	var cr, sr [constants.RandomSize]byte
	for i := range ms {
		ms[i] = byte(i)
	}
	suite := constants.CipherSuiteRSAWithAES128CBCSHA

	if err := client.InstallKeys(ms, cr, sr, suite); err != nil {
		t.Fatalf("client InstallKeys failed: %v", err)
	}
	if err := server.InstallKeys(ms, cr, sr, suite); err != nil {
		t.Fatalf("server InstallKeys failed: %v", err)
	}

	// Client activates its write side; server must activate its read
	// side by observing the ChangeCipherSpec record.
	errCh := make(chan error, 1)
	go func() { errCh <- client.SendChangeCipherSpec() }()
	if err := serverConsumeOneRecord(t, server); err != nil {
		t.Fatalf("server failed to observe ChangeCipherSpec: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("client SendChangeCipherSpec failed: %v", err)
	}

	var verifyData [constants.VerifyDataSize]byte
	for i := range verifyData {
		verifyData[i] = byte(0x90 + i)
	}

	go func() { errCh <- client.SendFinished(verifyData) }()
	got, _, err := server.ProcessFinished()
	if err != nil {
		t.Fatalf("server ProcessFinished failed: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("client SendFinished failed: %v", err)
	}
	if got != verifyData {
		t.Errorf("verify_data mismatch: got %x, want %x", got, verifyData)
	}
}

func serverConsumeOneRecord(t *testing.T, l *Layer) error {
	t.Helper()
	return l.readOneRecord()
}

func TestMultiRecordHandshakeMessageReassembly(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	client := NewLayer(clientConn)
	server := NewLayer(serverConn)

	body := bytes.Repeat([]byte{0x07}, 200)
	msg := make([]byte, 4+len(body))
	msg[3] = byte(len(body))
	copy(msg[4:], body)

	errCh := make(chan error, 1)
	go func() {
		// Split the message across two writeRecord calls to emulate TLS
		// record fragmentation.
		half := len(msg) / 2
		if err := client.writeRecord(constants.ContentHandshake, msg[:half]); err != nil {
			errCh <- err
			return
		}
		errCh <- client.writeRecord(constants.ContentHandshake, msg[half:])
	}()

	ht, got, err := server.ReadHandshake()
	if err != nil {
		t.Fatalf("ReadHandshake failed: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if ht != constants.HandshakeType(0) {
		t.Errorf("wrong handshake type: got %v", ht)
	}
	if !bytes.Equal(got, body) {
		t.Error("reassembled handshake message mismatch")
	}
}

func TestReadHandshakeReportsConnectionLostOnClose(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	server := NewLayer(serverConn)

	clientConn.Close()
	serverConn.Close()

	if _, _, err := server.ReadHandshake(); err == nil {
		t.Error("expected an error after transport closed")
	}
}
