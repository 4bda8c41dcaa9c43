package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
)

func TestPairwiseConsistencyTestRSA(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	result := PairwiseConsistencyTestRSA(priv)
	if !result.Passed {
		t.Fatalf("pairwise test failed: %v", result.Error)
	}
}

func TestPairwiseConsistencyTestRSANilKey(t *testing.T) {
	result := PairwiseConsistencyTestRSA(nil)
	if result.Passed {
		t.Fatal("expected failure for nil key")
	}
}

func TestCheckClientKeyWithCST(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	InitCST(CSTConfig{EnablePairwiseTest: true, EnableRNGHealthCheck: true, RNGHealthCheckInterval: 1000})

	if err := CheckClientKeyWithCST(priv); err != nil {
		t.Fatalf("CheckClientKeyWithCST: %v", err)
	}
}

func TestRNGHealthCheck(t *testing.T) {
	result := RNGHealthCheck()
	if !result.Passed {
		t.Fatalf("RNGHealthCheck failed: %v", result.Error)
	}
}

func TestContinuousRNGTestDetectsRepeat(t *testing.T) {
	sample := []byte{1, 2, 3, 4}
	first := ContinuousRNGTest(sample)
	if !first.Passed {
		t.Fatalf("first call should pass: %v", first.Error)
	}

	second := ContinuousRNGTest(sample)
	if second.Passed {
		t.Fatal("expected failure on repeated RNG output")
	}
}
