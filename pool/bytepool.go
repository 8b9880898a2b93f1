// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync"

// DefaultBufferSize suits handshake blocks and echo-loop reads alike.
const DefaultBufferSize = 4096

// BytePool recycles fixed-size read buffers across connection goroutines.
type BytePool struct {
	size int
	pool sync.Pool
}

// NewBytePool creates a pool handing out buffers of the given size.
func NewBytePool(size int) *BytePool {
	if size <= 0 {
		size = DefaultBufferSize
	}
	b := &BytePool{size: size}
	b.pool.New = func() any {
		return make([]byte, size)
	}
	return b
}

// GetBuffer returns a buffer from the pool.
func (b *BytePool) GetBuffer() []byte {
	return b.pool.Get().([]byte)
}

// PutBuffer returns a buffer to the pool. Buffers of a different size
// are dropped rather than recycled.
func (b *BytePool) PutBuffer(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	b.pool.Put(buf[:b.size])
}

// Size reports the fixed buffer size of this pool.
func (b *BytePool) Size() int {
	return b.size
}
