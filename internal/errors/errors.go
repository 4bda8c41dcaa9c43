// Package errors defines the error kinds the TLS 1.0 client handshake
// driver produces or propagates.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for handshake protocol violations (spec.md §4.10, §7).
var (
	// ErrInvalidVersion indicates the server's advertised protocol version
	// in ServerHello was not {3,1}.
	ErrInvalidVersion = errors.New("handshake: invalid protocol version")

	// ErrDecodeError indicates a bounds check failed while decoding a
	// handshake message (the "paranoia check" from the source).
	ErrDecodeError = errors.New("handshake: decode error")

	// ErrUnexpectedMessage indicates a handshake message arrived while the
	// connection was not expecting that type.
	ErrUnexpectedMessage = errors.New("handshake: unexpected message")

	// ErrInvalidCipherSuite indicates ServerHello echoed a cipher suite that
	// was not a member of the offered preference list.
	ErrInvalidCipherSuite = errors.New("handshake: invalid cipher suite")

	// ErrInvalidCompression indicates ServerHello selected a non-null
	// compression method; this client offers only null compression.
	ErrInvalidCompression = errors.New("handshake: invalid compression method")

	// ErrInvalidKey indicates an RSA operation (sign or encrypt) returned
	// no output, generally because no usable key was configured.
	ErrInvalidKey = errors.New("handshake: invalid key")

	// ErrConnectionLost indicates the transport closed or errored before
	// the handshake completed; no alert is sent for this case.
	ErrConnectionLost = errors.New("handshake: connection lost")

	// ErrHandshakeFailed is the catch-all for a completed-but-failed
	// handshake whose more specific cause has already been logged.
	ErrHandshakeFailed = errors.New("handshake: failed")
)

// Sentinel errors for certificate and cryptographic verification.
var (
	// ErrBadCertificate indicates the peer certificate failed chain
	// verification or did not carry an RSA public key.
	ErrBadCertificate = errors.New("cert: bad certificate")

	// ErrNoPeerCertificate indicates an operation needed the peer's RSA
	// public key before one was installed on the connection.
	ErrNoPeerCertificate = errors.New("cert: no peer certificate")

	// ErrVerifyFailed indicates a Finished or CertificateVerify signature
	// failed to validate against the expected transcript digest.
	ErrVerifyFailed = errors.New("crypto: verification failed")
)

// Sentinel errors for the record layer and session cache.
var (
	// ErrRecordLayer is wrapped around any non-ConnectionLost negative
	// return from the record layer, per the failure table in spec.md §4.10.
	ErrRecordLayer = errors.New("record: I/O error")

	// ErrSessionNotFound indicates a session id was not present in the cache.
	ErrSessionNotFound = errors.New("session: not found")

	// ErrSessionCacheDisabled indicates resumption was attempted against a
	// context with max_sessions == 0.
	ErrSessionCacheDisabled = errors.New("session: cache disabled")
)

// HandshakeError wraps a handshake-phase failure with the dispatch state
// active when it occurred, mirroring the phase-tagged errors the driver
// must report to the caller and to the alert path.
type HandshakeError struct {
	State string // the next_state label active when the error occurred
	Err   error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("handshake[%s]: %v", e.State, e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// NewHandshakeError creates a new HandshakeError.
func NewHandshakeError(state string, err error) *HandshakeError {
	return &HandshakeError{State: state, Err: err}
}

// CryptoError wraps a cryptographic primitive failure with the operation
// name that produced it.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// NewCryptoError creates a new CryptoError.
func NewCryptoError(op string, err error) *CryptoError {
	return &CryptoError{Op: op, Err: err}
}

// ProtocolError wraps a wire-decode failure with the message type that
// failed to parse.
type ProtocolError struct {
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol %s: %v", e.Message, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NewProtocolError creates a new ProtocolError.
func NewProtocolError(message string, err error) *ProtocolError {
	return &ProtocolError{Message: message, Err: err}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
