package handshake

import (
	"crypto/rand"
	"crypto/rsa"

	"github.com/pzverkov/tls10-client/internal/constants"
	qerrors "github.com/pzverkov/tls10-client/internal/errors"
	"github.com/pzverkov/tls10-client/pkg/crypto"
	"github.com/pzverkov/tls10-client/pkg/prf"
)

// encryptPremaster RSA-encrypts the 48-byte premaster secret under the
// server's public key (spec.md §4.7). The mutex is held only across this
// call, never across the socket I/O that precedes or follows it
// (spec.md §5, §9).
func (c *Context) encryptPremaster(pub *rsa.PublicKey, premaster [constants.PremasterSecretSize]byte) ([]byte, error) {
	c.lockRSA()
	defer c.unlockRSA()

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, pub, premaster[:])
	if err != nil {
		return nil, qerrors.NewCryptoError("rsa.encrypt", err)
	}
	if len(ciphertext) == 0 {
		return nil, qerrors.NewCryptoError("rsa.encrypt", qerrors.ErrInvalidKey)
	}
	return ciphertext, nil
}

// signCertificateVerify signs the MD5||SHA1 transcript digest with the
// client's private key (spec.md §4.8). As with encryptPremaster, the
// mutex covers only the RSA call.
func (c *Context) signCertificateVerify(digest [constants.FinishedDigestSize]byte) ([]byte, error) {
	if c.clientKey == nil {
		return nil, qerrors.NewCryptoError("rsa.sign", qerrors.ErrInvalidKey)
	}

	c.lockRSA()
	defer c.unlockRSA()

	sig, err := rsa.SignPKCS1v15(rand.Reader, c.clientKey, 0, digest[:])
	if err != nil {
		return nil, qerrors.NewCryptoError("rsa.sign", err)
	}
	if len(sig) == 0 {
		return nil, qerrors.NewCryptoError("rsa.sign", qerrors.ErrInvalidKey)
	}
	return sig, nil
}

// newPremasterSecret builds a fresh 48-byte premaster secret: protocol
// version in the first two bytes, 46 random bytes after (spec.md §4.7).
func newPremasterSecret() ([constants.PremasterSecretSize]byte, error) {
	var pm [constants.PremasterSecretSize]byte
	pm[0] = constants.ProtocolMajor
	pm[1] = constants.ProtocolMinor
	if err := crypto.SecureRandom(pm[2:]); err != nil {
		return pm, err
	}
	return pm, nil
}

// zeroizePremaster overwrites a consumed premaster secret; it is needed
// only as long as it takes to derive the master secret and encrypt it for
// the wire (spec.md §4.7, §4.9).
func zeroizePremaster(pm *[constants.PremasterSecretSize]byte) {
	crypto.Zeroize(pm[:])
}

// certificateVerifyDigest computes the MD5||SHA1 transcript digest signed
// by CertificateVerify (spec.md §4.8, §8).
func certificateVerifyDigest(transcript []byte) [constants.FinishedDigestSize]byte {
	return prf.HandshakeDigest(transcript)
}
