// Package record implements the TLS 1.0 record layer: framing, MACing,
// encrypting, and decrypting the records that carry handshake messages,
// alerts, and ChangeCipherSpec. It is the external collaborator spec.md §1
// and §6 describe by contract only (send_packet, basic_read, send_alert,
// send_change_cipher_spec, send_finished, process_finished) — this package
// is the concrete implementation the handshake driver is built against.
package record

import (
	"bufio"
	"context"
	"io"
	"sync"

	"github.com/pzverkov/tls10-client/internal/constants"
	qerrors "github.com/pzverkov/tls10-client/internal/errors"
	"github.com/pzverkov/tls10-client/pkg/crypto"
	"github.com/pzverkov/tls10-client/pkg/prf"
)

// Observer receives encrypt/decrypt notifications from the record layer.
// *metrics.ConnectionObserver satisfies this narrowed view; record stays
// independent of the metrics package and accepts anything with this shape.
type Observer interface {
	OnEncrypt(ctx context.Context, plaintextLen int) (context.Context, func(error))
	OnDecrypt(ctx context.Context, ciphertextLen int) (context.Context, func(error))
}

type noopObserver struct{}

func (noopObserver) OnEncrypt(ctx context.Context, _ int) (context.Context, func(error)) {
	return ctx, func(error) {}
}

func (noopObserver) OnDecrypt(ctx context.Context, _ int) (context.Context, func(error)) {
	return ctx, func(error) {}
}

// LayerOption configures a Layer at construction time.
type LayerOption func(*Layer)

// WithObserver attaches an Observer that is notified around every
// ciphered write and read once a cipher has been installed.
func WithObserver(o Observer) LayerOption {
	return func(l *Layer) {
		l.observer = o
	}
}

// WithServerRole makes InstallKeys stage the server-write keys for sending
// and the client-write keys for receiving, so the Layer can act as the peer
// of a client Layer.
func WithServerRole() LayerOption {
	return func(l *Layer) {
		l.serverRole = true
	}
}

// Layer implements the record-layer contract over an already-connected
// transport. One Layer serves exactly one Connection; it is not safe for
// concurrent use by multiple goroutines (matching spec.md §5: handshake
// messages are sent and processed strictly in protocol order within one
// connection).
type Layer struct {
	conn io.ReadWriter
	r    *bufio.Reader

	writeSeq uint64
	readSeq  uint64

	writeCipher *cipherState
	readCipher  *cipherState

	pendingWrite *cipherState
	pendingRead  *cipherState

	// handshakeBuf accumulates decrypted handshake-content bytes spanning
	// possibly several records, so ReadHandshake can hand back one whole
	// message at a time regardless of TLS record fragmentation.
	handshakeBuf []byte

	observer   Observer
	serverRole bool

	mu sync.Mutex
}

// NewLayer wraps a transport in a fresh, unkeyed record layer.
func NewLayer(conn io.ReadWriter, opts ...LayerOption) *Layer {
	l := &Layer{conn: conn, r: bufio.NewReader(conn), observer: noopObserver{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SendHandshake frames body (already including its 4-byte handshake
// header) as one or more HandshakeProtocol records and writes it, MACing
// and encrypting under the active write cipher if one has been installed.
func (l *Layer) SendHandshake(body []byte) error {
	return l.writeRecord(constants.ContentHandshake, body)
}

// SendAlert emits a single two-byte alert record for the given level and
// description.
func (l *Layer) SendAlert(level constants.AlertLevel, desc constants.AlertDescription) error {
	return l.writeRecord(constants.ContentAlert, []byte{byte(level), byte(desc)})
}

// SendChangeCipherSpec writes the one-byte ChangeCipherSpec record and
// then activates this connection's pending write cipher — every record
// sent after this call is protected under the newly derived keys.
func (l *Layer) SendChangeCipherSpec() error {
	if err := l.writeRecord(constants.ContentChangeCipherSpec, []byte{1}); err != nil {
		return err
	}
	if l.pendingWrite == nil {
		return qerrors.NewCryptoError("record.SendChangeCipherSpec", qerrors.ErrHandshakeFailed)
	}
	l.writeCipher = l.pendingWrite
	l.writeSeq = 0
	return nil
}

// SendFinished writes a Finished handshake message carrying verifyData,
// under the already-activated write cipher.
func (l *Layer) SendFinished(verifyData [constants.VerifyDataSize]byte) error {
	body := make([]byte, constants.HandshakeHeaderSize+constants.VerifyDataSize)
	body[0] = byte(constants.HandshakeFinished)
	body[1] = 0
	body[2] = 0
	body[3] = constants.VerifyDataSize
	copy(body[constants.HandshakeHeaderSize:], verifyData[:])
	return l.SendHandshake(body)
}

// ReadHandshake blocks until a full handshake message is available,
// transparently consuming and activating any ChangeCipherSpec record from
// the peer along the way. It returns the handshake type and the message
// body (header stripped); a transport error that indicates the peer
// closed the connection is reported as ErrConnectionLost.
func (l *Layer) ReadHandshake() (constants.HandshakeType, []byte, error) {
	for {
		if msg, ok := l.takeBufferedMessage(); ok {
			return constants.HandshakeType(msg[0]), msg[constants.HandshakeHeaderSize:], nil
		}
		if err := l.readOneRecord(); err != nil {
			return 0, nil, err
		}
	}
}

// ProcessFinished blocks for the peer's Finished message (preceded, in
// practice, by its ChangeCipherSpec) and returns the raw 12-byte
// verify_data for the caller to compare against the expected PRF output;
// the comparison itself belongs to the handshake driver, which owns the
// transcript and master secret.
func (l *Layer) ProcessFinished() ([constants.VerifyDataSize]byte, []byte, error) {
	var vd [constants.VerifyDataSize]byte
	ht, body, err := l.ReadHandshake()
	if err != nil {
		return vd, nil, err
	}
	if ht != constants.HandshakeFinished || len(body) != constants.VerifyDataSize {
		return vd, nil, qerrors.NewProtocolError("Finished", qerrors.ErrDecodeError)
	}
	copy(vd[:], body)
	fullMsg := make([]byte, constants.HandshakeHeaderSize+len(body))
	fullMsg[3] = byte(len(body))
	fullMsg[0] = byte(constants.HandshakeFinished)
	copy(fullMsg[constants.HandshakeHeaderSize:], body)
	return vd, fullMsg, nil
}

// InstallKeys derives the key block from the master secret and the two
// handshake randoms and stages the client-write/server-write cipher
// states as pending — spec.md §4.9's "installs it into the record layer's
// pending cipher state". Activation happens per-direction on the
// respective ChangeCipherSpec.
func (l *Layer) InstallKeys(masterSecret [constants.MasterSecretSize]byte, clientRandom, serverRandom [constants.RandomSize]byte, suite constants.CipherSuite) error {
	km, ok := constants.KeyMaterialFor(suite)
	if !ok {
		return qerrors.NewCryptoError("record.InstallKeys", qerrors.ErrHandshakeFailed)
	}

	total := 2*km.MACKeySize + 2*km.CipherKeySize + 2*km.IVSize
	block := prf.KeyBlock(masterSecret, clientRandom, serverRandom, total)

	off := 0
	take := func(n int) []byte {
		b := block[off : off+n]
		off += n
		return b
	}

	clientMAC := take(km.MACKeySize)
	serverMAC := take(km.MACKeySize)
	clientKey := take(km.CipherKeySize)
	serverKey := take(km.CipherKeySize)
	clientIV := take(km.IVSize)
	serverIV := take(km.IVSize)

	if l.serverRole {
		clientMAC, serverMAC = serverMAC, clientMAC
		clientKey, serverKey = serverKey, clientKey
		clientIV, serverIV = serverIV, clientIV
	}

	pendingWrite, err := newCipherState(suite, clientMAC, clientKey, clientIV, true)
	if err != nil {
		return err
	}
	pendingRead, err := newCipherState(suite, serverMAC, serverKey, serverIV, false)
	if err != nil {
		return err
	}

	l.pendingWrite = pendingWrite
	l.pendingRead = pendingRead
	return nil
}

// writeRecord frames one logical message as a single TLS record (no
// fragmentation for the small handshake messages this driver emits),
// MACing and encrypting if a write cipher is active. Once a write cipher
// is active, the observer is notified around the encrypt step.
func (l *Layer) writeRecord(ct constants.ContentType, fragment []byte) error {
	if l.writeCipher == nil {
		return l.writeRecordLocked(ct, fragment)
	}
	_, done := l.observer.OnEncrypt(context.Background(), len(fragment))
	err := l.writeRecordLocked(ct, fragment)
	done(err)
	return err
}

func (l *Layer) writeRecordLocked(ct constants.ContentType, fragment []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	payload := fragment
	if l.writeCipher != nil {
		mac := l.writeCipher.mac(l.writeSeq, ct, fragment)
		plain := append(append([]byte(nil), fragment...), mac...)
		if l.writeCipher.isBlockCipher() {
			plain = padBlock(plain, l.writeCipher.blockSz)
			ciphertext := crypto.GetBuffer(len(plain))
			l.writeCipher.encrypt.CryptBlocks(ciphertext, plain)
			payload = ciphertext
			defer crypto.PutBuffer(ciphertext)
		} else {
			ciphertext := crypto.GetBuffer(len(plain))
			l.writeCipher.stream.XORKeyStream(ciphertext, plain)
			payload = ciphertext
			defer crypto.PutBuffer(ciphertext)
		}
		l.writeSeq++
	}

	header := []byte{
		byte(ct),
		constants.ProtocolMajor, constants.ProtocolMinor,
		byte(len(payload) >> 8), byte(len(payload)),
	}
	if _, err := l.conn.Write(header); err != nil {
		return qerrors.NewCryptoError("record.writeRecord", err)
	}
	if _, err := l.conn.Write(payload); err != nil {
		return qerrors.NewCryptoError("record.writeRecord", err)
	}
	return nil
}

// readOneRecord reads exactly one TLS record, decrypts/verifies it if a
// read cipher is active, and either activates the pending read cipher
// (ChangeCipherSpec) or appends handshake-content bytes to handshakeBuf.
func (l *Layer) readOneRecord() error {
	header := make([]byte, constants.RecordHeaderSize)
	if _, err := io.ReadFull(l.r, header); err != nil {
		return connErr(err)
	}
	ct := constants.ContentType(header[0])
	length := int(header[3])<<8 | int(header[4])
	if length > constants.MaxRecordSize+2048 {
		return qerrors.NewProtocolError("record header", qerrors.ErrDecodeError)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(l.r, payload); err != nil {
		return connErr(err)
	}

	fragment := payload
	if l.readCipher != nil {
		var err error
		fragment, err = l.decryptFragment(ct, payload)
		if err != nil {
			return err
		}
	}

	switch ct {
	case constants.ContentChangeCipherSpec:
		if l.pendingRead == nil {
			return qerrors.NewCryptoError("record.readOneRecord", qerrors.ErrHandshakeFailed)
		}
		l.readCipher = l.pendingRead
		l.readSeq = 0
		return nil
	case constants.ContentHandshake:
		l.handshakeBuf = append(l.handshakeBuf, fragment...)
		return nil
	case constants.ContentAlert:
		return qerrors.NewCryptoError("record.readOneRecord", qerrors.ErrHandshakeFailed)
	default:
		return qerrors.NewProtocolError("record header", qerrors.ErrUnexpectedMessage)
	}
}

// decryptFragment decrypts and MAC-verifies one ciphered record payload,
// notifying the observer around the decrypt step.
func (l *Layer) decryptFragment(ct constants.ContentType, payload []byte) ([]byte, error) {
	_, done := l.observer.OnDecrypt(context.Background(), len(payload))
	out, err := l.decryptFragmentLocked(ct, payload)
	done(err)
	return out, err
}

func (l *Layer) decryptFragmentLocked(ct constants.ContentType, payload []byte) ([]byte, error) {
	plain := crypto.GetBuffer(len(payload))
	defer crypto.PutBuffer(plain)
	if l.readCipher.isBlockCipher() {
		if len(payload)%l.readCipher.blockSz != 0 || len(payload) == 0 {
			return nil, qerrors.NewCryptoError("record.decryptFragment", qerrors.ErrVerifyFailed)
		}
		l.readCipher.decrypt.CryptBlocks(plain, payload)
		unpadded, err := unpadBlock(plain, l.readCipher.blockSz)
		if err != nil {
			return nil, err
		}
		plain = unpadded
	} else {
		l.readCipher.stream.XORKeyStream(plain, payload)
	}

	if len(plain) < constants.SHA1Size {
		return nil, qerrors.NewCryptoError("record.decryptFragment", qerrors.ErrVerifyFailed)
	}
	fragment := plain[:len(plain)-constants.SHA1Size]
	gotMAC := plain[len(plain)-constants.SHA1Size:]
	wantMAC := l.readCipher.mac(l.readSeq, ct, fragment)
	if !crypto.ConstantTimeCompare(gotMAC, wantMAC) {
		return nil, qerrors.NewCryptoError("record.decryptFragment", qerrors.ErrVerifyFailed)
	}
	l.readSeq++
	out := append([]byte(nil), fragment...)
	return out, nil
}

// takeBufferedMessage extracts one complete handshake message from
// handshakeBuf, if enough bytes have accumulated.
func (l *Layer) takeBufferedMessage() ([]byte, bool) {
	if len(l.handshakeBuf) < constants.HandshakeHeaderSize {
		return nil, false
	}
	length := int(l.handshakeBuf[1])<<16 | int(l.handshakeBuf[2])<<8 | int(l.handshakeBuf[3])
	total := constants.HandshakeHeaderSize + length
	if len(l.handshakeBuf) < total {
		return nil, false
	}
	msg := l.handshakeBuf[:total]
	l.handshakeBuf = l.handshakeBuf[total:]
	return msg, true
}

func padBlock(data []byte, blockSize int) []byte {
	padLen := blockSize - (len(data)+1)%blockSize
	if padLen == blockSize {
		padLen = 0
	}
	pad := make([]byte, padLen+1)
	for i := range pad {
		pad[i] = byte(padLen)
	}
	return append(data, pad...)
}

func unpadBlock(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, qerrors.NewCryptoError("record.unpadBlock", qerrors.ErrVerifyFailed)
	}
	padLen := int(data[len(data)-1])
	if padLen+1 > len(data) {
		return nil, qerrors.NewCryptoError("record.unpadBlock", qerrors.ErrVerifyFailed)
	}
	for _, b := range data[len(data)-padLen-1:] {
		if int(b) != padLen {
			return nil, qerrors.NewCryptoError("record.unpadBlock", qerrors.ErrVerifyFailed)
		}
	}
	return data[:len(data)-padLen-1], nil
}

func connErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF || err == io.ErrClosedPipe {
		return qerrors.ErrConnectionLost
	}
	return qerrors.NewCryptoError("record.read", qerrors.ErrRecordLayer)
}
