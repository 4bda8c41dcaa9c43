// Package handshake implements the client-side TLS 1.0 handshake state
// machine: the driver that, given a transport connection, emits and
// consumes handshake messages until the connection reaches application-
// data mode or fails.
package handshake

import (
	"github.com/pzverkov/tls10-client/internal/constants"
	"github.com/pzverkov/tls10-client/pkg/cert"
	"github.com/pzverkov/tls10-client/pkg/metrics"
	"github.com/pzverkov/tls10-client/pkg/record"
)

// State is the connection's expected-next-message variable, modeled as a
// tagged variant rather than mixing state and handshake-type constants
// (spec.md §9's design note).
type State int

const (
	StateAwaitingServerHello State = iota
	StateAwaitingCertificate
	StateAwaitingCertReqOrDone
	StateAwaitingFinished
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingServerHello:
		return "AwaitingServerHello"
	case StateAwaitingCertificate:
		return "AwaitingCertificate"
	case StateAwaitingCertReqOrDone:
		return "AwaitingCertReqOrDone"
	case StateAwaitingFinished:
		return "AwaitingFinished"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Status is the connection's overall handshake outcome.
type Status int

const (
	StatusInProgress Status = iota
	StatusOk
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "InProgress"
	case StatusOk:
		return "Ok"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Connection aggregates the per-connection state described in spec.md §3.
// It exclusively owns its randoms, transcript, session id, and negotiated
// cipher; the Context it is bound to shares the session cache and RSA
// context across every connection it creates.
type Connection struct {
	ctx      *Context
	layer    *record.Layer
	observer *metrics.ConnectionObserver

	isClient bool

	clientRandom [constants.RandomSize]byte
	serverRandom [constants.RandomSize]byte

	sessionID          []byte
	sessionIDRequested bool
	certRequested      bool

	negotiatedCipher constants.CipherSuite
	transcript       *Transcript

	peerCertCtx *cert.Context

	masterSecret [constants.MasterSecretSize]byte

	nextState State
	status    Status
	err       error

	sessionEntry *sessionEntry
}

// Status reports the connection's current handshake outcome. Per spec.md
// §6, a Connection is usable for application I/O only once this returns
// StatusOk.
func (c *Connection) Status() Status {
	return c.status
}

// Err returns the terminal error, if any, that set Status() to
// StatusError.
func (c *Connection) Err() error {
	return c.err
}

// NegotiatedCipher returns the cipher suite the server selected. Only
// meaningful once Status() is StatusOk.
func (c *Connection) NegotiatedCipher() constants.CipherSuite {
	return c.negotiatedCipher
}

// SessionID returns the session id associated with this connection —
// either the one the caller supplied for resumption or the fresh one the
// server assigned during a full handshake.
func (c *Connection) SessionID() []byte {
	return append([]byte(nil), c.sessionID...)
}

// PeerCertificate returns the verified server certificate context, or nil
// before Certificate has been processed.
func (c *Connection) PeerCertificate() *cert.Context {
	return c.peerCertCtx
}
