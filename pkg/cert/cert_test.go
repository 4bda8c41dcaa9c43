package cert_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/pzverkov/tls10-client/pkg/cert"
)

func generateSelfSigned(t *testing.T) (der []byte, key *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test.example"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
	}
	der, err = x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate failed: %v", err)
	}
	return der, key
}

func TestVerifyRejectsSelfSignedByDefault(t *testing.T) {
	der, _ := generateSelfSigned(t)
	v := &cert.Verifier{}
	if _, err := v.Verify([][]byte{der}); err == nil {
		t.Error("expected error verifying a self-signed leaf with no roots and AllowSelfSigned unset")
	}
}

func TestVerifyAllowsSelfSignedWhenOptedIn(t *testing.T) {
	der, _ := generateSelfSigned(t)
	v := &cert.Verifier{AllowSelfSigned: true}

	ctx, err := v.Verify([][]byte{der})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ctx.PublicKey == nil {
		t.Error("expected a populated RSA public key")
	}
}

func TestVerifyAgainstTrustedRoots(t *testing.T) {
	der, _ := generateSelfSigned(t)
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate failed: %v", err)
	}
	roots := x509.NewCertPool()
	roots.AddCert(leaf)

	v := &cert.Verifier{Roots: roots}
	ctx, err := v.Verify([][]byte{der})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ctx.Leaf.Subject.CommonName != "test.example" {
		t.Errorf("unexpected leaf subject: %v", ctx.Leaf.Subject)
	}
}

func TestVerifyRejectsEmptyChain(t *testing.T) {
	v := &cert.Verifier{AllowSelfSigned: true}
	if _, err := v.Verify(nil); err == nil {
		t.Error("expected error for empty certificate chain")
	}
}

func TestVerifyRejectsUntrustedChain(t *testing.T) {
	der, _ := generateSelfSigned(t)
	otherDER, _ := generateSelfSigned(t)
	otherLeaf, err := x509.ParseCertificate(otherDER)
	if err != nil {
		t.Fatalf("ParseCertificate failed: %v", err)
	}
	roots := x509.NewCertPool()
	roots.AddCert(otherLeaf)

	v := &cert.Verifier{Roots: roots}
	if _, err := v.Verify([][]byte{der}); err == nil {
		t.Error("expected error verifying a leaf against unrelated roots")
	}
}
