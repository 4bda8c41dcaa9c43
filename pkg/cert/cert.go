// Package cert implements the narrow certificate-verification contract the
// handshake driver depends on: turning a DER chain into a verified RSA
// public key (peer_cert_ctx in spec.md §3).
//
// Full X.509 policy (CRLs, OCSP, name constraints) is out of scope per
// spec.md §1 — this wraps crypto/x509's chain verification only.
package cert

import (
	"crypto/rsa"
	"crypto/x509"

	qerrors "github.com/pzverkov/tls10-client/internal/errors"
)

// Context is the verified peer certificate handle referenced by
// Connection.peer_cert_ctx.
type Context struct {
	Leaf      *x509.Certificate
	PublicKey *rsa.PublicKey
}

// Verifier processes an incoming Certificate message's DER chain and
// produces a peer certificate context. It is the external collaborator
// spec.md §1 scopes out ("process_certificate").
type Verifier struct {
	// Roots is the trusted CA pool. With a nil pool the leaf is not
	// chain-verified: Verify accepts it only when AllowSelfSigned is set
	// (axTLS's permissive behaviour for unconfigured clients, here
	// opt-in) and otherwise fails with ErrBadCertificate.
	Roots           *x509.CertPool
	AllowSelfSigned bool
	ServerName      string
}

// Verify parses the leaf (and any intermediates) from the DER chain in
// handshake order, verifies it against Roots when configured, and returns
// the RSA public key the handshake driver needs for ClientKeyExchange.
func (v *Verifier) Verify(chain [][]byte) (*Context, error) {
	if len(chain) == 0 {
		return nil, qerrors.NewCryptoError("cert.Verify", qerrors.ErrBadCertificate)
	}

	leaf, err := x509.ParseCertificate(chain[0])
	if err != nil {
		return nil, qerrors.NewCryptoError("cert.Verify", err)
	}

	pub, ok := leaf.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, qerrors.NewCryptoError("cert.Verify", qerrors.ErrBadCertificate)
	}

	if v.Roots != nil {
		intermediates := x509.NewCertPool()
		for _, der := range chain[1:] {
			ic, err := x509.ParseCertificate(der)
			if err != nil {
				return nil, qerrors.NewCryptoError("cert.Verify", err)
			}
			intermediates.AddCert(ic)
		}
		opts := x509.VerifyOptions{
			Roots:         v.Roots,
			Intermediates: intermediates,
			DNSName:       v.ServerName,
		}
		if _, err := leaf.Verify(opts); err != nil {
			return nil, qerrors.NewCryptoError("cert.Verify", err)
		}
	} else if !v.AllowSelfSigned {
		return nil, qerrors.NewCryptoError("cert.Verify", qerrors.ErrBadCertificate)
	}

	return &Context{Leaf: leaf, PublicKey: pub}, nil
}
