// Package pool provides shared object pools for hot paths: the PTY
// read loop and the frame renderer.
package pool

import (
	"strings"
	"sync"
)

// ptyReadBufferSize is the size of pooled PTY read buffers.
const ptyReadBufferSize = 32 * 1024

var stringBuilderPool = sync.Pool{
	New: func() any {
		return &strings.Builder{}
	},
}

// GetStringBuilder returns a reset string builder from the pool.
func GetStringBuilder() *strings.Builder {
	return stringBuilderPool.Get().(*strings.Builder)
}

// PutStringBuilder resets the builder and returns it to the pool.
func PutStringBuilder(sb *strings.Builder) {
	// Oversized builders are dropped so the pool does not pin large
	// allocations.
	if sb.Cap() > 1<<20 {
		return
	}
	sb.Reset()
	stringBuilderPool.Put(sb)
}

var byteSlicePool = sync.Pool{
	New: func() any {
		buf := make([]byte, ptyReadBufferSize)
		return &buf
	},
}

// GetByteSlice returns a 32 KiB buffer from the pool.
func GetByteSlice() *[]byte {
	return byteSlicePool.Get().(*[]byte)
}

// PutByteSlice returns a buffer to the pool.
func PutByteSlice(buf *[]byte) {
	if buf == nil || len(*buf) != ptyReadBufferSize {
		return
	}
	byteSlicePool.Put(buf)
}
