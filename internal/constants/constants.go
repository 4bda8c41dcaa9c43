// Package constants defines protocol sizes and cipher suite identifiers for
// the TLS 1.0 client handshake.
package constants

// Protocol version and identification
const (
	// ProtocolMajor is the major version byte on the wire ({3,1} = TLS 1.0).
	ProtocolMajor byte = 0x03

	// ProtocolMinor is the minor version byte on the wire.
	ProtocolMinor byte = 0x01

	// ProtocolName is used for domain separation in logging/tracing.
	ProtocolName = "TLS-1.0-client"
)

// Random and secret sizes (RFC 2246 §7.4)
const (
	// RandomSize is the size of client_random and server_random.
	RandomSize = 32

	// SessionIDSize is the maximum size of a session id.
	SessionIDSize = 32

	// PremasterSecretSize is the size of the RSA-encrypted premaster secret.
	PremasterSecretSize = 48

	// MasterSecretSize is the size of the derived master secret.
	MasterSecretSize = 48

	// VerifyDataSize is the size of the Finished message's verify_data.
	VerifyDataSize = 12

	// MD5Size and SHA1Size are the digest sizes concatenated for
	// CertificateVerify and the legacy TLS 1.0 handshake hash.
	MD5Size  = 16
	SHA1Size = 20

	// FinishedDigestSize is MD5Size + SHA1Size.
	FinishedDigestSize = MD5Size + SHA1Size
)

// Handshake header layout (RFC 2246 §7.4)
const (
	// HandshakeHeaderSize is the 1-byte type + 3-byte length prefix every
	// handshake message carries in the transcript.
	HandshakeHeaderSize = 4

	// RecordHeaderSize is TLS's 5-byte record layer header (type, version, length).
	RecordHeaderSize = 5
)

// HandshakeType identifies a handshake message body (RFC 2246 §7.4).
type HandshakeType byte

const (
	HandshakeHelloRequest       HandshakeType = 0
	HandshakeClientHello        HandshakeType = 1
	HandshakeServerHello        HandshakeType = 2
	HandshakeCertificate        HandshakeType = 11
	HandshakeServerKeyExchange  HandshakeType = 12
	HandshakeCertificateRequest HandshakeType = 13
	HandshakeServerHelloDone    HandshakeType = 14
	HandshakeCertificateVerify  HandshakeType = 15
	HandshakeClientKeyExchange  HandshakeType = 16
	HandshakeFinished           HandshakeType = 20
)

func (h HandshakeType) String() string {
	switch h {
	case HandshakeHelloRequest:
		return "HelloRequest"
	case HandshakeClientHello:
		return "ClientHello"
	case HandshakeServerHello:
		return "ServerHello"
	case HandshakeCertificate:
		return "Certificate"
	case HandshakeServerKeyExchange:
		return "ServerKeyExchange"
	case HandshakeCertificateRequest:
		return "CertificateRequest"
	case HandshakeServerHelloDone:
		return "ServerHelloDone"
	case HandshakeCertificateVerify:
		return "CertificateVerify"
	case HandshakeClientKeyExchange:
		return "ClientKeyExchange"
	case HandshakeFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// ContentType identifies the TLS record layer content type.
type ContentType byte

const (
	ContentChangeCipherSpec ContentType = 20
	ContentAlert            ContentType = 21
	ContentHandshake        ContentType = 22
	ContentApplicationData  ContentType = 23
)

// CipherSuite is the two-byte cipher suite identifier exchanged in
// ClientHello/ServerHello.
type CipherSuite uint16

// Fixed client preference list, ordered by decreasing desirability, matching
// the source's ssl_prot_prefs table: AES-CBC suites first, then 3DES, with
// RC4 last for legacy interop.
const (
	CipherSuiteRSAWithAES128CBCSHA  CipherSuite = 0x002F
	CipherSuiteRSAWithAES256CBCSHA  CipherSuite = 0x0035
	CipherSuiteRSAWith3DESEDECBCSHA CipherSuite = 0x000A
	CipherSuiteRSAWithRC4128SHA     CipherSuite = 0x0005
)

// DefaultCipherPreference is the fixed preference list offered in ClientHello.
// NUM_PROTOCOLS in the source corresponds to len(DefaultCipherPreference).
var DefaultCipherPreference = []CipherSuite{
	CipherSuiteRSAWithAES128CBCSHA,
	CipherSuiteRSAWithAES256CBCSHA,
	CipherSuiteRSAWith3DESEDECBCSHA,
	CipherSuiteRSAWithRC4128SHA,
}

// FIPSCipherPreference restricts the offer to AES-CBC suites only, dropping
// 3DES and RC4, both disallowed by FIPS 140-3.
var FIPSCipherPreference = []CipherSuite{
	CipherSuiteRSAWithAES128CBCSHA,
	CipherSuiteRSAWithAES256CBCSHA,
}

// CipherPreferenceFor returns FIPSCipherPreference when fipsMode is true,
// DefaultCipherPreference otherwise.
func CipherPreferenceFor(fipsMode bool) []CipherSuite {
	if fipsMode {
		return FIPSCipherPreference
	}
	return DefaultCipherPreference
}

func (cs CipherSuite) String() string {
	switch cs {
	case CipherSuiteRSAWithAES128CBCSHA:
		return "TLS_RSA_WITH_AES_128_CBC_SHA"
	case CipherSuiteRSAWithAES256CBCSHA:
		return "TLS_RSA_WITH_AES_256_CBC_SHA"
	case CipherSuiteRSAWith3DESEDECBCSHA:
		return "TLS_RSA_WITH_3DES_EDE_CBC_SHA"
	case CipherSuiteRSAWithRC4128SHA:
		return "TLS_RSA_WITH_RC4_128_SHA"
	default:
		return "Unknown"
	}
}

// KeyMaterial describes the per-cipher lengths the key schedule must carve
// out of the key block: MAC key, bulk cipher key, and (for block ciphers)
// a fixed IV. TLS 1.0 CBC suites derive IVs from the key block; stream
// ciphers such as RC4 have zero-length IVs.
type KeyMaterial struct {
	MACKeySize    int
	CipherKeySize int
	IVSize        int
}

// KeyMaterialFor returns the per-direction key lengths for a negotiated
// cipher suite, in the canonical TLS 1.0 key-block order: MAC key, cipher
// key, IV.
func KeyMaterialFor(cs CipherSuite) (KeyMaterial, bool) {
	switch cs {
	case CipherSuiteRSAWithAES128CBCSHA:
		return KeyMaterial{MACKeySize: SHA1Size, CipherKeySize: 16, IVSize: 16}, true
	case CipherSuiteRSAWithAES256CBCSHA:
		return KeyMaterial{MACKeySize: SHA1Size, CipherKeySize: 32, IVSize: 16}, true
	case CipherSuiteRSAWith3DESEDECBCSHA:
		return KeyMaterial{MACKeySize: SHA1Size, CipherKeySize: 24, IVSize: 8}, true
	case CipherSuiteRSAWithRC4128SHA:
		return KeyMaterial{MACKeySize: SHA1Size, CipherKeySize: 16, IVSize: 0}, true
	default:
		return KeyMaterial{}, false
	}
}

// Message size limits mirrored from the source's paranoia checks.
const (
	// MaxHandshakeMessageSize is a 64 KiB cap for a single handshake
	// message body, well below the 2^24-1 ceiling of TLS's 24-bit length
	// field.
	MaxHandshakeMessageSize = 1 << 16

	// MaxRecordSize is TLS's maximum plaintext record size.
	MaxRecordSize = 1 << 14
)

// AlertLevel is the TLS alert record's severity byte.
type AlertLevel byte

const (
	AlertLevelWarning AlertLevel = 1
	AlertLevelFatal   AlertLevel = 2
)

// AlertDescription is the TLS alert record's description byte.
type AlertDescription byte

const (
	AlertCloseNotify          AlertDescription = 0
	AlertUnexpectedMessage    AlertDescription = 10
	AlertBadRecordMAC         AlertDescription = 20
	AlertDecompressionFailure AlertDescription = 30
	AlertDecryptionFailed     AlertDescription = 21
	AlertHandshakeFailure     AlertDescription = 40
	AlertBadCertificate       AlertDescription = 42
	AlertDecodeError          AlertDescription = 50
	AlertDecryptError         AlertDescription = 51
	AlertProtocolVersion      AlertDescription = 70
	AlertInternalError        AlertDescription = 80
)
