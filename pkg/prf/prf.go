// Package prf implements the TLS 1.0 pseudo-random function and the
// handshake digests derived from it (RFC 2246 §5, §6.3).
package prf

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"hash"

	"github.com/pzverkov/tls10-client/internal/constants"
)

// pHash implements P_hash(secret, seed) as defined in RFC 2246 §5: repeated
// HMAC expansion, each round's A(i) feeding the next.
func pHash(newHash func() hash.Hash, secret, seed []byte, out []byte) {
	h := hmac.New(newHash, secret)
	h.Write(seed)
	a := h.Sum(nil)

	for len(out) > 0 {
		h := hmac.New(newHash, secret)
		h.Write(a)
		h.Write(seed)
		chunk := h.Sum(nil)

		n := copy(out, chunk)
		out = out[n:]

		h = hmac.New(newHash, secret)
		h.Write(a)
		a = h.Sum(nil)
	}
}

// PRF computes TLS 1.0's PRF(secret, label, seed, length) = P_MD5(S1, label
// + seed) XOR P_SHA-1(S2, label + seed), where S1 and S2 are the two halves
// of secret (the longer half when the length is odd, per RFC 2246 §5).
func PRF(secret []byte, label string, seed []byte, length int) []byte {
	labelSeed := make([]byte, 0, len(label)+len(seed))
	labelSeed = append(labelSeed, label...)
	labelSeed = append(labelSeed, seed...)

	half := (len(secret) + 1) / 2
	s1 := secret[:half]
	s2 := secret[len(secret)-half:]

	md5Out := make([]byte, length)
	sha1Out := make([]byte, length)
	pHash(md5.New, s1, labelSeed, md5Out)
	pHash(sha1.New, s2, labelSeed, sha1Out)

	out := make([]byte, length)
	for i := range out {
		out[i] = md5Out[i] ^ sha1Out[i]
	}
	return out
}

// MasterSecret derives the 48-byte master secret from the premaster secret
// and the two handshake randoms, per spec.md §4.9.
func MasterSecret(premaster []byte, clientRandom, serverRandom [constants.RandomSize]byte) [constants.MasterSecretSize]byte {
	seed := make([]byte, 0, 2*constants.RandomSize)
	seed = append(seed, clientRandom[:]...)
	seed = append(seed, serverRandom[:]...)

	out := PRF(premaster, "master secret", seed, constants.MasterSecretSize)
	var ms [constants.MasterSecretSize]byte
	copy(ms[:], out)
	return ms
}

// KeyBlock derives the key block of the requested total length from the
// master secret and the two randoms, in the canonical TLS 1.0 order: the
// seed is server_random ∥ client_random here, per RFC 2246 §6.3 (the seed
// order is swapped relative to master-secret derivation).
func KeyBlock(masterSecret [constants.MasterSecretSize]byte, clientRandom, serverRandom [constants.RandomSize]byte, length int) []byte {
	seed := make([]byte, 0, 2*constants.RandomSize)
	seed = append(seed, serverRandom[:]...)
	seed = append(seed, clientRandom[:]...)
	return PRF(masterSecret[:], "key expansion", seed, length)
}

// FinishedVerifyData computes the 12-byte verify_data for a Finished
// message, per RFC 2246 §7.4.9: PRF(master_secret, label, MD5(transcript)
// ∥ SHA1(transcript), 12). label is "client finished" or "server finished".
func FinishedVerifyData(masterSecret [constants.MasterSecretSize]byte, label string, transcript []byte) [constants.VerifyDataSize]byte {
	seed := HandshakeDigest(transcript)
	out := PRF(masterSecret[:], label, seed[:], constants.VerifyDataSize)
	var vd [constants.VerifyDataSize]byte
	copy(vd[:], out)
	return vd
}

// HandshakeDigest computes the 36-byte MD5‖SHA1 concatenation used for both
// the Finished PRF seed and the CertificateVerify signature input
// (spec.md §4.8, §4.9; RFC 2246 §7.4.8, §7.4.9).
func HandshakeDigest(transcript []byte) [constants.FinishedDigestSize]byte {
	var digest [constants.FinishedDigestSize]byte

	md5Sum := md5.Sum(transcript)
	sha1Sum := sha1.Sum(transcript)
	copy(digest[:constants.MD5Size], md5Sum[:])
	copy(digest[constants.MD5Size:], sha1Sum[:])
	return digest
}

const (
	// LabelClientFinished and LabelServerFinished are the Finished PRF
	// labels (RFC 2246 §7.4.9).
	LabelClientFinished = "client finished"
	LabelServerFinished = "server finished"
)
