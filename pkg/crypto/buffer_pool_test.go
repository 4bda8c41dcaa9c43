package crypto

import "testing"

func TestBufferPoolGetSizing(t *testing.T) {
	p := NewBufferPool()

	small := p.Get(64)
	if len(small) != 64 {
		t.Fatalf("Get(64) len = %d, want 64", len(small))
	}

	medium := p.Get(9000)
	if len(medium) != 9000 {
		t.Fatalf("Get(9000) len = %d, want 9000", len(medium))
	}

	oversized := p.Get(mediumBufferSize + 1)
	if len(oversized) != mediumBufferSize+1 {
		t.Fatalf("Get(oversized) len = %d, want %d", len(oversized), mediumBufferSize+1)
	}
}

func TestBufferPoolPutZeroesBeforeReuse(t *testing.T) {
	p := NewBufferPool()

	buf := p.Get(32)
	for i := range buf {
		buf[i] = 0xAB
	}
	p.Put(buf)

	reused := p.Get(32)
	for i, b := range reused {
		if b != 0 {
			t.Fatalf("reused buffer not zeroed at index %d: %x", i, b)
		}
	}
}

func TestGetBufferPutBufferGlobalHelpers(t *testing.T) {
	buf := GetBuffer(128)
	if len(buf) != 128 {
		t.Fatalf("GetBuffer(128) len = %d, want 128", len(buf))
	}
	PutBuffer(buf)
}
