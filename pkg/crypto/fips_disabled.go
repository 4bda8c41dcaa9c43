//go:build !fips
// +build !fips

// This file is compiled when the "fips" build tag is NOT specified.
// In standard mode, all supported cipher suites are offered.
package crypto

// FIPSMode reports whether the binary was built in FIPS mode.
// When false, the full default cipher preference is offered, including
// RC4 and 3DES suites kept for legacy interop.
func FIPSMode() bool { return false }
