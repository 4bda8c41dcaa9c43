package handshake

import (
	"context"
	"encoding/binary"
	"io"
	"time"

	"github.com/pzverkov/tls10-client/internal/constants"
	qerrors "github.com/pzverkov/tls10-client/internal/errors"
	"github.com/pzverkov/tls10-client/pkg/crypto"
	"github.com/pzverkov/tls10-client/pkg/metrics"
	"github.com/pzverkov/tls10-client/pkg/prf"
	"github.com/pzverkov/tls10-client/pkg/record"
	"github.com/pzverkov/tls10-client/pkg/wire"
)

// Dial drives a full client-side TLS 1.0 handshake over conn. If
// resumeSessionID is non-empty, it is offered in ClientHello for
// resumption (spec.md §4.6); whether the server actually resumes is
// decided entirely by its ServerHello response, not by the caller's
// intent.
func Dial(conn io.ReadWriter, ctx *Context, resumeSessionID []byte) (*Connection, error) {
	obs := metrics.NewConnectionObserver(metrics.ConnectionObserverConfig{
		Logger:    ctx.logger,
		Tracer:    ctx.tracer,
		SessionID: resumeSessionID,
	})
	c := &Connection{
		ctx:        ctx,
		isClient:   true,
		layer:      record.NewLayer(conn, record.WithObserver(obs)),
		transcript: NewTranscript(),
		nextState:  StateAwaitingServerHello,
		status:     StatusInProgress,
		observer:   obs,
	}
	if ctx.configErr != nil {
		c.status = StatusError
		c.err = qerrors.NewHandshakeError("configuration", ctx.configErr)
		return c, c.err
	}
	if err := c.runTraced(resumeSessionID); err != nil {
		return c, err
	}
	return c, nil
}

// runTraced wraps run in the observer's handshake span, so every attempt —
// successful or not — ends the span and logs at Info or Error.
func (c *Connection) runTraced(resumeSessionID []byte) error {
	_, endSpan := c.observer.OnHandshakeStart(context.Background())
	err := c.run(resumeSessionID)
	endSpan(err)
	return err
}

// Renegotiate restarts the handshake on an already-open Connection after
// the server issues a HelloRequest (spec.md §4.1, §4.3). The transcript is
// reset and a fresh ClientHello is sent, offering the connection's current
// session id for resumption.
func (c *Connection) Renegotiate() error {
	c.ctx.logger.Info("renegotiating on HelloRequest")
	c.transcript.Reset()
	c.nextState = StateAwaitingServerHello
	c.status = StatusInProgress
	return c.runTraced(c.sessionID)
}

// run executes one ClientHello..Finished cycle, starting from a clean
// transcript.
func (c *Connection) run(resumeSessionID []byte) error {
	clientRandom, err := newHandshakeRandom()
	if err != nil {
		return c.fail(constants.AlertInternalError, qerrors.NewHandshakeError("ClientHello", err))
	}
	c.clientRandom = clientRandom
	c.sessionIDRequested = len(resumeSessionID) > 0
	c.sessionID = append([]byte(nil), resumeSessionID...)

	ch := wire.ClientHello{
		Random:       c.clientRandom,
		SessionID:    resumeSessionID,
		CipherSuites: c.ctx.cipherPreference,
		Compressions: []byte{0},
	}
	msg, err := wire.EncodeClientHello(ch)
	if err != nil {
		return c.fail(constants.AlertInternalError, qerrors.NewHandshakeError("ClientHello", err))
	}
	if err := c.layer.SendHandshake(msg); err != nil {
		return c.failFromLayer("ClientHello", err)
	}
	c.transcript.Append(msg)

	if err := c.awaitServerHello(); err != nil {
		return err
	}

	if c.nextState == StateAwaitingFinished {
		return c.finishResumed()
	}
	return c.finishFull()
}

// awaitServerHello reads and processes ServerHello, setting serverRandom,
// sessionID, negotiatedCipher, and the next expected state per spec.md
// §4.4: "next_state = Finished if session_id_requested else Certificate".
func (c *Connection) awaitServerHello() error {
	ht, body, err := c.layer.ReadHandshake()
	if err != nil {
		return c.failFromLayer("ServerHello", err)
	}
	if ht != constants.HandshakeServerHello {
		return c.fail(constants.AlertUnexpectedMessage,
			qerrors.NewHandshakeError("ServerHello", qerrors.ErrUnexpectedMessage))
	}
	c.transcript.Append(wire.Wrap(ht, body))

	sh, err := wire.DecodeServerHello(body)
	if err != nil {
		return c.fail(constants.AlertDecodeError, qerrors.NewHandshakeError("ServerHello", err))
	}
	if sh.Major != constants.ProtocolMajor || sh.Minor != constants.ProtocolMinor {
		return c.fail(constants.AlertProtocolVersion,
			qerrors.NewHandshakeError("ServerHello", qerrors.ErrInvalidVersion))
	}

	if !cipherOffered(sh.CipherSuite, c.ctx.cipherPreference) {
		return c.fail(constants.AlertHandshakeFailure,
			qerrors.NewHandshakeError("ServerHello", qerrors.ErrInvalidCipherSuite))
	}
	if sh.CompressionMethod != 0 {
		return c.fail(constants.AlertDecompressionFailure,
			qerrors.NewHandshakeError("ServerHello", qerrors.ErrInvalidCompression))
	}

	c.serverRandom = sh.Random
	c.negotiatedCipher = sh.CipherSuite

	resumed := c.sessionIDRequested && len(sh.SessionID) > 0 && string(sh.SessionID) == string(c.sessionID)
	if !resumed {
		c.sessionID = append([]byte(nil), sh.SessionID...)
	}

	c.ctx.logger.Debug("server hello processed", metrics.Fields{
		"cipher":  c.negotiatedCipher.String(),
		"resumed": resumed,
	})

	if resumed {
		entry, ok := c.ctx.sessionCache.Lookup(c.sessionID)
		if !ok {
			// Server claims resumption of a session we no longer hold;
			// this cannot happen if the server honored our offer, so
			// treat it as a protocol failure rather than silently
			// falling back to a full handshake.
			return c.fail(constants.AlertHandshakeFailure,
				qerrors.NewHandshakeError("ServerHello", qerrors.ErrSessionNotFound))
		}
		c.sessionEntry = entry
		c.masterSecret = entry.masterSecret
		c.nextState = StateAwaitingFinished
	} else {
		c.nextState = StateAwaitingCertificate
	}
	return nil
}

// finishResumed completes an abbreviated handshake: the server sends its
// ChangeCipherSpec/Finished first, then the client replies in kind
// (RFC 2246 §7.3).
func (c *Connection) finishResumed() error {
	if err := c.layer.InstallKeys(c.masterSecret, c.clientRandom, c.serverRandom, c.negotiatedCipher); err != nil {
		return c.failFromLayer("Finished", err)
	}

	if err := c.verifyPeerFinished(prf.LabelServerFinished); err != nil {
		return err
	}
	if err := c.sendOwnFinished(prf.LabelClientFinished); err != nil {
		return err
	}

	c.nextState = StateDone
	c.status = StatusOk
	return nil
}

// finishFull completes a full handshake: Certificate, optional
// CertificateRequest, ServerHelloDone, then the client's
// [Certificate], ClientKeyExchange, [CertificateVerify],
// ChangeCipherSpec, Finished, followed by the server's own
// ChangeCipherSpec/Finished (spec.md §4.1, §4.5, §4.7-§4.9).
func (c *Connection) finishFull() error {
	if err := c.awaitCertificate(); err != nil {
		return err
	}
	if err := c.awaitCertRequestOrDone(); err != nil {
		return err
	}

	premaster, err := newPremasterSecret()
	if err != nil {
		return c.fail(constants.AlertInternalError, qerrors.NewHandshakeError("ClientKeyExchange", err))
	}
	c.masterSecret = prf.MasterSecret(premaster[:], c.clientRandom, c.serverRandom)

	if err := c.layer.InstallKeys(c.masterSecret, c.clientRandom, c.serverRandom, c.negotiatedCipher); err != nil {
		return c.failFromLayer("ClientKeyExchange", err)
	}

	if c.certRequested {
		certMsg := wire.EncodeCertificate(c.ctx.clientCertChain)
		if err := c.layer.SendHandshake(certMsg); err != nil {
			return c.failFromLayer("Certificate", err)
		}
		c.transcript.Append(certMsg)
	}

	if c.peerCertCtx == nil {
		return c.fail(constants.AlertHandshakeFailure,
			qerrors.NewHandshakeError("ClientKeyExchange", qerrors.ErrNoPeerCertificate))
	}
	ciphertext, err := c.ctx.encryptPremaster(c.peerCertCtx.PublicKey, premaster)
	if err != nil {
		return c.fail(constants.AlertInternalError, qerrors.NewHandshakeError("ClientKeyExchange", err))
	}
	ckeMsg := wire.EncodeClientKeyExchange(ciphertext)
	zeroizePremaster(&premaster)
	if err := c.layer.SendHandshake(ckeMsg); err != nil {
		return c.failFromLayer("ClientKeyExchange", err)
	}
	c.transcript.Append(ckeMsg)

	if c.certRequested {
		if c.ctx.clientKey == nil {
			return c.fail(constants.AlertInternalError,
				qerrors.NewHandshakeError("CertificateVerify", qerrors.ErrInvalidKey))
		}
		digest := certificateVerifyDigest(c.transcript.Bytes())
		sig, err := c.ctx.signCertificateVerify(digest)
		if err != nil {
			return c.fail(constants.AlertInternalError, qerrors.NewHandshakeError("CertificateVerify", err))
		}
		cvMsg := wire.EncodeCertificateVerify(sig)
		if err := c.layer.SendHandshake(cvMsg); err != nil {
			return c.failFromLayer("CertificateVerify", err)
		}
		c.transcript.Append(cvMsg)
	}

	if err := c.sendOwnFinished(prf.LabelClientFinished); err != nil {
		return err
	}
	if err := c.verifyPeerFinished(prf.LabelServerFinished); err != nil {
		return err
	}

	c.sessionEntry = c.ctx.sessionCache.Update(c.sessionID, c.masterSecret, c.negotiatedCipher)
	c.nextState = StateDone
	c.status = StatusOk
	return nil
}

// awaitCertificate reads the mandatory server Certificate message and
// verifies the chain (spec.md §4.1's Certificate state).
func (c *Connection) awaitCertificate() error {
	ht, body, err := c.layer.ReadHandshake()
	if err != nil {
		return c.failFromLayer("Certificate", err)
	}
	if ht != constants.HandshakeCertificate {
		return c.fail(constants.AlertUnexpectedMessage,
			qerrors.NewHandshakeError("Certificate", qerrors.ErrUnexpectedMessage))
	}
	c.transcript.Append(wire.Wrap(ht, body))

	chain, err := wire.DecodeCertificate(body)
	if err != nil {
		return c.fail(constants.AlertDecodeError, qerrors.NewHandshakeError("Certificate", err))
	}

	if c.ctx.verifier == nil {
		return c.fail(constants.AlertHandshakeFailure,
			qerrors.NewHandshakeError("Certificate", qerrors.ErrBadCertificate))
	}
	peerCtx, err := c.ctx.verifier.Verify(chain)
	if err != nil {
		return c.fail(constants.AlertBadCertificate, qerrors.NewHandshakeError("Certificate", err))
	}
	c.peerCertCtx = peerCtx
	c.ctx.logger.Debug("peer certificate verified", metrics.Fields{"subject": peerCtx.Leaf.Subject.String()})
	return nil
}

// awaitCertRequestOrDone reads either an optional CertificateRequest
// followed by ServerHelloDone, or ServerHelloDone directly
// (spec.md §4.1's AwaitingCertReqOrDone state).
func (c *Connection) awaitCertRequestOrDone() error {
	ht, body, err := c.layer.ReadHandshake()
	if err != nil {
		return c.failFromLayer("ServerHelloDone", err)
	}

	if ht == constants.HandshakeCertificateRequest {
		c.transcript.Append(wire.Wrap(ht, body))
		if err := wire.DecodeCertificateRequest(body); err != nil {
			return c.fail(constants.AlertDecodeError, qerrors.NewHandshakeError("CertificateRequest", err))
		}
		c.certRequested = true
		c.ctx.logger.Debug("certificate requested by server")

		ht, body, err = c.layer.ReadHandshake()
		if err != nil {
			return c.failFromLayer("ServerHelloDone", err)
		}
	}

	if ht != constants.HandshakeServerHelloDone {
		return c.fail(constants.AlertUnexpectedMessage,
			qerrors.NewHandshakeError("ServerHelloDone", qerrors.ErrUnexpectedMessage))
	}
	if len(body) != 0 {
		return c.fail(constants.AlertDecodeError,
			qerrors.NewHandshakeError("ServerHelloDone", qerrors.ErrDecodeError))
	}
	c.transcript.Append(wire.Wrap(ht, body))
	return nil
}

// sendOwnFinished computes this side's verify_data over the transcript
// accumulated so far, sends ChangeCipherSpec followed by Finished, and
// appends the Finished message to the transcript.
func (c *Connection) sendOwnFinished(label string) error {
	vd := prf.FinishedVerifyData(c.masterSecret, label, c.transcript.Bytes())
	if err := c.layer.SendChangeCipherSpec(); err != nil {
		return c.failFromLayer("Finished", err)
	}
	if err := c.layer.SendFinished(vd); err != nil {
		return c.failFromLayer("Finished", err)
	}
	c.transcript.Append(wire.Wrap(constants.HandshakeFinished, vd[:]))
	return nil
}

// verifyPeerFinished reads the peer's ChangeCipherSpec/Finished pair,
// checks its verify_data against the transcript accumulated so far, and
// appends the Finished message to the transcript on success.
func (c *Connection) verifyPeerFinished(label string) error {
	gotVD, fullMsg, err := c.layer.ProcessFinished()
	if err != nil {
		return c.failFromLayer("Finished", err)
	}
	want := prf.FinishedVerifyData(c.masterSecret, label, c.transcript.Bytes())
	if gotVD != want {
		return c.fail(constants.AlertDecryptionFailed,
			qerrors.NewHandshakeError("Finished", qerrors.ErrVerifyFailed))
	}
	c.transcript.Append(fullMsg)
	return nil
}

// fail marks the connection failed and, unless the underlying cause was a
// lost connection, sends a fatal alert describing why (spec.md §4.10). If
// the alert itself cannot be sent, any cached session for this connection
// is evicted. The observer is notified as an auth failure for a verify_data
// or CertificateVerify mismatch, and as a protocol error otherwise.
func (c *Connection) fail(desc constants.AlertDescription, err error) error {
	c.status = StatusError
	c.err = err

	switch {
	case qerrors.Is(err, qerrors.ErrVerifyFailed):
		c.observer.OnAuthFailure()
	case !qerrors.Is(err, qerrors.ErrConnectionLost):
		c.observer.OnProtocolError(err)
	}

	if qerrors.Is(err, qerrors.ErrConnectionLost) {
		return err
	}
	c.ctx.logger.Debug("sending fatal alert", metrics.Fields{"description": desc, "cause": err.Error()})
	if sendErr := c.layer.SendAlert(constants.AlertLevelFatal, desc); sendErr != nil {
		if c.sessionEntry != nil {
			c.ctx.sessionCache.Kill(c.sessionEntry)
		}
	}
	return err
}

// failFromLayer classifies an error returned by the record layer per the
// failure table in spec.md §4.10 and routes it through fail.
func (c *Connection) failFromLayer(state string, err error) error {
	wrapped := qerrors.NewHandshakeError(state, err)
	if qerrors.Is(err, qerrors.ErrConnectionLost) {
		return c.fail(constants.AlertCloseNotify, wrapped)
	}
	return c.fail(constants.AlertInternalError, wrapped)
}

// cipherOffered reports whether suite appears in offered, the preference
// list this client sent in ClientHello.
func cipherOffered(suite constants.CipherSuite, offered []constants.CipherSuite) bool {
	for _, s := range offered {
		if s == suite {
			return true
		}
	}
	return false
}

// newHandshakeRandom builds a 32-byte handshake random: 4 bytes of Unix
// time followed by 28 bytes of cryptographic randomness (spec.md §4.2).
func newHandshakeRandom() ([constants.RandomSize]byte, error) {
	var r [constants.RandomSize]byte
	binary.BigEndian.PutUint32(r[:4], uint32(time.Now().Unix()))
	if err := crypto.SecureRandom(r[4:]); err != nil {
		return r, err
	}
	return r, nil
}
