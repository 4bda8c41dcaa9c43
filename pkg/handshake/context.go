package handshake

import (
	"crypto/rsa"
	"sync"

	"github.com/pzverkov/tls10-client/internal/constants"
	"github.com/pzverkov/tls10-client/pkg/cert"
	"github.com/pzverkov/tls10-client/pkg/crypto"
	"github.com/pzverkov/tls10-client/pkg/metrics"
)

// Context is the shared, process-wide (or per-application) state every
// Connection it creates draws from: the session cache and the client's own
// RSA context (spec.md §3). All mutation of the RSA bignum context — here,
// every call into crypto/rsa's Encrypt/Sign/Decrypt paths — is serialized
// by mu, held only across the RSA call itself, never across I/O
// (spec.md §5, §8).
type Context struct {
	mu sync.Mutex

	sessionCache *SessionCache
	maxSessions  int

	clientKey       *rsa.PrivateKey // optional; required only if the server sends CertificateRequest
	clientCertChain [][]byte        // DER chain to present if CertificateRequest arrives
	configErr       error           // set if an option failed validation (e.g. a bad client key)

	cipherPreference []constants.CipherSuite
	verifier         *cert.Verifier

	logger *metrics.Logger
	tracer metrics.Tracer
}

// ContextOption configures a Context, matching the functional-options
// idiom used throughout this module's ambient stack.
type ContextOption func(*Context)

// WithMaxSessions sets the session cache capacity. Zero disables
// resumption (spec.md §4.1: "ctx.max_sessions > 0").
func WithMaxSessions(n int) ContextOption {
	return func(c *Context) {
		c.maxSessions = n
		c.sessionCache = NewSessionCache(n)
	}
}

// WithClientCertificate installs a client RSA key and DER chain, used only
// to answer a CertificateRequest (spec.md §4.8). Omitting this option and
// receiving CertificateRequest is treated as a fatal configuration error,
// per the §9 design note flagging the source's latent nil-key defect.
//
// Before the key is trusted for CertificateVerify signing, it is run
// through an RSA pairwise consistency test; a key that fails the test
// leaves the Context unable to complete a mutually-authenticated
// handshake and Dial reports it as a configuration error.
func WithClientCertificate(key *rsa.PrivateKey, chain [][]byte) ContextOption {
	return func(c *Context) {
		if err := crypto.CheckClientKeyWithCST(key); err != nil {
			c.configErr = err
			return
		}
		c.clientKey = key
		c.clientCertChain = chain
	}
}

// WithCipherPreference overrides the default fixed cipher suite
// preference list offered in ClientHello.
func WithCipherPreference(suites []constants.CipherSuite) ContextOption {
	return func(c *Context) {
		c.cipherPreference = suites
	}
}

// WithCertVerifier installs the certificate verifier used to process
// Certificate messages. Without one, Certificate processing fails closed.
func WithCertVerifier(v *cert.Verifier) ContextOption {
	return func(c *Context) {
		c.verifier = v
	}
}

// WithLogger installs a structured logger for handshake lifecycle events.
func WithLogger(l *metrics.Logger) ContextOption {
	return func(c *Context) {
		c.logger = l
	}
}

// WithTracer installs a tracer for handshake spans.
func WithTracer(t metrics.Tracer) ContextOption {
	return func(c *Context) {
		c.tracer = t
	}
}

// NewContext builds a Context with sane defaults: resumption disabled,
// the fixed default cipher preference list, a no-op tracer, and a silent
// logger — each overridable via options.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		sessionCache:     NewSessionCache(0),
		cipherPreference: constants.CipherPreferenceFor(crypto.FIPSMode()),
		logger:           metrics.NewLogger(metrics.WithLevel(metrics.LevelSilent)),
		tracer:           metrics.NoOpTracer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// lockRSA acquires the context-scoped mutex. Callers must defer unlockRSA
// immediately and perform nothing but the RSA bignum call while held
// (spec.md §5, §9's scoped-guard design note).
func (c *Context) lockRSA() {
	c.mu.Lock()
}

func (c *Context) unlockRSA() {
	c.mu.Unlock()
}
