// cipherstate.go implements the TLS 1.0 CBC/HMAC bulk-cipher state that
// backs one traffic direction (client-write or server-write) once the key
// block has been derived.
//
// TLS 1.0 (unlike 1.1+) chains the CBC IV across records within a
// direction — the last ciphertext block of one record seeds the next.
// Go's cipher.BlockMode already carries that chained state internally, so
// a single BlockMode created at ChangeCipherSpec time is reused for every
// record sent on that direction thereafter.
package record

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/hmac"
	"crypto/rc4"
	"crypto/sha1"

	"github.com/pzverkov/tls10-client/internal/constants"
	qerrors "github.com/pzverkov/tls10-client/internal/errors"
)

// cipherState is the per-direction bulk cipher plus its HMAC-SHA1 MAC key,
// mirroring the client-write/server-write halves of the key block
// (spec.md §4.9).
type cipherState struct {
	suite   constants.CipherSuite
	macKey  []byte
	seq     uint64
	encrypt cipher.BlockMode
	decrypt cipher.BlockMode
	stream  cipher.Stream // RC4 suites only
	blockSz int
}

func newCipherState(suite constants.CipherSuite, macKey, cipherKey, iv []byte, forEncrypt bool) (*cipherState, error) {
	cs := &cipherState{suite: suite, macKey: macKey}

	switch suite {
	case constants.CipherSuiteRSAWithAES128CBCSHA, constants.CipherSuiteRSAWithAES256CBCSHA:
		block, err := aes.NewCipher(cipherKey)
		if err != nil {
			return nil, qerrors.NewCryptoError("record.newCipherState", err)
		}
		cs.blockSz = block.BlockSize()
		if forEncrypt {
			cs.encrypt = cipher.NewCBCEncrypter(block, iv)
		} else {
			cs.decrypt = cipher.NewCBCDecrypter(block, iv)
		}

	case constants.CipherSuiteRSAWith3DESEDECBCSHA:
		block, err := des.NewTripleDESCipher(cipherKey)
		if err != nil {
			return nil, qerrors.NewCryptoError("record.newCipherState", err)
		}
		cs.blockSz = block.BlockSize()
		if forEncrypt {
			cs.encrypt = cipher.NewCBCEncrypter(block, iv)
		} else {
			cs.decrypt = cipher.NewCBCDecrypter(block, iv)
		}

	case constants.CipherSuiteRSAWithRC4128SHA:
		stream, err := rc4.NewCipher(cipherKey)
		if err != nil {
			return nil, qerrors.NewCryptoError("record.newCipherState", err)
		}
		cs.stream = stream

	default:
		return nil, qerrors.NewCryptoError("record.newCipherState", qerrors.ErrHandshakeFailed)
	}

	return cs, nil
}

// mac computes the HMAC-SHA1 over the TLS 1.0 MAC input: the 8-byte
// sequence number, the content type, the 2-byte version, the 2-byte
// length, and the plaintext fragment (RFC 2246 §6.2.3.1).
func (cs *cipherState) mac(seq uint64, contentType constants.ContentType, fragment []byte) []byte {
	h := hmac.New(sha1.New, cs.macKey)

	var seqBytes [8]byte
	for i := 0; i < 8; i++ {
		seqBytes[7-i] = byte(seq >> (8 * i))
	}
	h.Write(seqBytes[:])
	h.Write([]byte{byte(contentType)})
	h.Write([]byte{constants.ProtocolMajor, constants.ProtocolMinor})
	h.Write([]byte{byte(len(fragment) >> 8), byte(len(fragment))})
	h.Write(fragment)
	return h.Sum(nil)
}

// isBlockCipher reports whether this cipher state requires CBC padding.
func (cs *cipherState) isBlockCipher() bool {
	return cs.stream == nil
}
