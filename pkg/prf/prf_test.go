package prf_test

import (
	"bytes"
	"testing"

	"github.com/pzverkov/tls10-client/internal/constants"
	"github.com/pzverkov/tls10-client/pkg/prf"
)

func TestPRFIsDeterministic(t *testing.T) {
	secret := bytes.Repeat([]byte{0x11}, 48)
	seed := bytes.Repeat([]byte{0x22}, 64)

	a := prf.PRF(secret, "master secret", seed, 48)
	b := prf.PRF(secret, "master secret", seed, 48)
	if !bytes.Equal(a, b) {
		t.Error("PRF is not deterministic for identical inputs")
	}
}

func TestPRFVariesWithLabel(t *testing.T) {
	secret := bytes.Repeat([]byte{0x33}, 48)
	seed := bytes.Repeat([]byte{0x44}, 64)

	a := prf.PRF(secret, "master secret", seed, 48)
	b := prf.PRF(secret, "key expansion", seed, 48)
	if bytes.Equal(a, b) {
		t.Error("PRF output should differ when the label changes")
	}
}

func TestPRFProducesRequestedLength(t *testing.T) {
	secret := bytes.Repeat([]byte{0x55}, 48)
	seed := bytes.Repeat([]byte{0x66}, 64)

	for _, length := range []int{12, 48, 104, 256} {
		out := prf.PRF(secret, "key expansion", seed, length)
		if len(out) != length {
			t.Errorf("PRF(length=%d) produced %d bytes", length, len(out))
		}
	}
}

func TestMasterSecretLength(t *testing.T) {
	premaster := make([]byte, constants.PremasterSecretSize)
	premaster[0] = constants.ProtocolMajor
	premaster[1] = constants.ProtocolMinor

	var cr, sr [constants.RandomSize]byte
	ms := prf.MasterSecret(premaster, cr, sr)
	if len(ms) != constants.MasterSecretSize {
		t.Errorf("master secret length = %d, want %d", len(ms), constants.MasterSecretSize)
	}
}

func TestMasterSecretVariesWithRandoms(t *testing.T) {
	premaster := make([]byte, constants.PremasterSecretSize)

	var cr1, sr1, cr2 [constants.RandomSize]byte
	cr2[0] = 0xFF

	ms1 := prf.MasterSecret(premaster, cr1, sr1)
	ms2 := prf.MasterSecret(premaster, cr2, sr1)
	if bytes.Equal(ms1[:], ms2[:]) {
		t.Error("master secret should change when client_random changes")
	}
}

func TestHandshakeDigestSize(t *testing.T) {
	d := prf.HandshakeDigest([]byte("some transcript bytes"))
	if len(d) != constants.FinishedDigestSize {
		t.Errorf("digest length = %d, want %d", len(d), constants.FinishedDigestSize)
	}
	if len(d) != constants.MD5Size+constants.SHA1Size {
		t.Error("digest must be exactly MD5 || SHA1")
	}
}

func TestFinishedVerifyDataDiffersByLabel(t *testing.T) {
	var ms [constants.MasterSecretSize]byte
	for i := range ms {
		ms[i] = byte(i)
	}
	transcript := []byte("client hello .. server hello .. done")

	client := prf.FinishedVerifyData(ms, prf.LabelClientFinished, transcript)
	server := prf.FinishedVerifyData(ms, prf.LabelServerFinished, transcript)
	if client == server {
		t.Error("client and server verify_data must differ")
	}
	if len(client) != constants.VerifyDataSize {
		t.Errorf("verify_data length = %d, want %d", len(client), constants.VerifyDataSize)
	}
}

func TestFinishedVerifyDataDiffersByTranscript(t *testing.T) {
	var ms [constants.MasterSecretSize]byte
	a := prf.FinishedVerifyData(ms, prf.LabelClientFinished, []byte("transcript A"))
	b := prf.FinishedVerifyData(ms, prf.LabelClientFinished, []byte("transcript B"))
	if a == b {
		t.Error("verify_data must depend on the transcript contents")
	}
}
