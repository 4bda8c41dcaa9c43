// Package version reports this module's release version and the TLS
// protocol version it speaks on the wire.
package version

import "fmt"

// Semantic version components of this module.
const (
	// Major is the major version (breaking changes).
	Major = 0
	// Minor is the minor version (new features).
	Minor = 1
	// Patch is the patch version (bug fixes).
	Patch = 0
	// Label is the optional pre-release label.
	Label = ""
)

// String returns the full module version string.
func String() string {
	v := fmt.Sprintf("v%d.%d.%d", Major, Minor, Patch)
	if Label != "" {
		v += "-" + Label
	}
	return v
}

// Full returns a descriptive version string.
func Full() string {
	return fmt.Sprintf("tls10-client %s", String())
}

// ProtocolMajor and ProtocolMinor are the wire version bytes this client
// negotiates: {3, 1}, TLS 1.0 (RFC 2246).
const (
	ProtocolMajor = 3
	ProtocolMinor = 1
)

// Protocol returns the human-readable protocol version string.
func Protocol() string {
	return "TLS 1.0"
}
