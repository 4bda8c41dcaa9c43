package version

import (
	"strings"
	"testing"
)

func TestVersionStrings(t *testing.T) {
	v := String()
	if !strings.HasPrefix(v, "v") {
		t.Errorf("version string should start with v, got %s", v)
	}

	full := Full()
	if !strings.Contains(full, "tls10-client") {
		t.Errorf("full version should contain project name, got %s", full)
	}
	if !strings.Contains(full, v) {
		t.Errorf("full version should contain version string, got %s", full)
	}
}

func TestProtocolVersion(t *testing.T) {
	if ProtocolMajor != 3 || ProtocolMinor != 1 {
		t.Errorf("expected TLS 1.0 wire version {3,1}, got {%d,%d}", ProtocolMajor, ProtocolMinor)
	}
	if Protocol() != "TLS 1.0" {
		t.Errorf("Protocol() = %q, want %q", Protocol(), "TLS 1.0")
	}
}
