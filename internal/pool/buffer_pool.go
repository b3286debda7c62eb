package pool

import (
	"sync"
)

// Pooled buffers that grew past this multiple of their nominal size are
// dropped on Put instead of being recycled, so one oversized input cannot
// pin memory for the rest of the process lifetime.
const discardFactor = 4

// BufferPool recycles byte slices, used for file copy buffers in the CLI.
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a pool handing out buffers with the given capacity.
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, 0, size)
				return &buffer
			},
		},
		size: size,
	}
}

// Get retrieves a buffer from the pool or creates a new one.
func (bp *BufferPool) Get() *[]byte {
	return bp.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool with its length reset.
func (bp *BufferPool) Put(buffer *[]byte) {
	if cap(*buffer) > discardFactor*bp.size {
		return
	}
	*buffer = (*buffer)[:0]
	bp.pool.Put(buffer)
}

// RuneBufferPool recycles rune slices for the string-to-rune conversions on
// the alignment hot path, where both texts are decoded on every call.
type RuneBufferPool struct {
	pool sync.Pool
	size int
}

// NewRuneBufferPool creates a pool of rune slices with the given capacity.
func NewRuneBufferPool(size int) *RuneBufferPool {
	return &RuneBufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]rune, 0, size)
				return &buffer
			},
		},
		size: size,
	}
}

// Get retrieves a rune buffer from the pool.
func (rbp *RuneBufferPool) Get() *[]rune {
	return rbp.pool.Get().(*[]rune)
}

// Put returns a rune buffer to the pool with its length reset.
func (rbp *RuneBufferPool) Put(buffer *[]rune) {
	if cap(*buffer) > discardFactor*rbp.size {
		return
	}
	*buffer = (*buffer)[:0]
	rbp.pool.Put(buffer)
}
