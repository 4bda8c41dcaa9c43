//go:build fips
// +build fips

// This file is compiled when the "fips" build tag is specified.
// In FIPS mode, only FIPS 140-3 approved cipher suites are offered.
package crypto

// FIPSMode reports whether the binary was built in FIPS mode.
// When true, only AES-CBC cipher suites are offered (see
// constants.FIPSCipherPreference); RC4 and 3DES are excluded.
func FIPSMode() bool { return true }
