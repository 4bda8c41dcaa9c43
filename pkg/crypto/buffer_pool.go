package crypto

import "sync"

// Buffer size classes for record-layer plaintext/ciphertext scratch space.
// TLS 1.0 caps plaintext records at 2^14 bytes (constants.MaxRecordSize);
// the vast majority of handshake and small application-data records fit
// well under the small class.
const (
	smallBufferSize  = 1024
	mediumBufferSize = 1 << 14
)

// BufferPool hands out reusable, zeroed byte slices sized for the record
// layer's per-record scratch buffers, avoiding an allocation on every
// encrypt/decrypt call in high-throughput use.
type BufferPool struct {
	small  sync.Pool
	medium sync.Pool
}

// NewBufferPool creates an empty buffer pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		small: sync.Pool{
			New: func() any {
				buf := make([]byte, smallBufferSize)
				return &buf
			},
		},
		medium: sync.Pool{
			New: func() any {
				buf := make([]byte, mediumBufferSize)
				return &buf
			},
		},
	}
}

// globalBufferPool is the default pool used by the package-level helpers.
var globalBufferPool = NewBufferPool()

// Get returns a buffer of at least size bytes. Sizes larger than the pool's
// largest class are allocated directly and never returned to the pool.
func (p *BufferPool) Get(size int) []byte {
	if size <= 0 {
		return nil
	}
	var bufPtr *[]byte
	switch {
	case size <= smallBufferSize:
		bufPtr = p.small.Get().(*[]byte)
	case size <= mediumBufferSize:
		bufPtr = p.medium.Get().(*[]byte)
	default:
		return make([]byte, size)
	}
	return (*bufPtr)[:size]
}

// Put returns buf to the pool, zeroing it first since record-layer buffers
// routinely carry key material or plaintext.
func (p *BufferPool) Put(buf []byte) {
	if buf == nil {
		return
	}
	bufCap := cap(buf)
	if bufCap == 0 {
		return
	}
	buf = buf[:bufCap]
	Zeroize(buf)
	switch bufCap {
	case smallBufferSize:
		p.small.Put(&buf)
	case mediumBufferSize:
		p.medium.Put(&buf)
	}
}

// GetBuffer returns a buffer of at least size bytes from the global pool.
func GetBuffer(size int) []byte { return globalBufferPool.Get(size) }

// PutBuffer returns buf to the global pool.
func PutBuffer(buf []byte) { globalBufferPool.Put(buf) }
