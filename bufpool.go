package transcode

import (
	"bytes"
	"sync"
)

// bufPoolMaxCap rejects oversized buffers so a single huge call does not pin memory.
const bufPoolMaxCap = 4 * DefaultChunkSize

// We need a buffer to encode and decode windows into. Its length is grown on
// demand to the window size of the call.
var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, DefaultChunkSize)
		return &b
	},
}

// getBuf returns a pooled buffer of length n.
func getBuf(n int) *[]byte {
	bp := bufPool.Get().(*[]byte)
	if cap(*bp) < n {
		*bp = make([]byte, n)
	}
	*bp = (*bp)[:n]
	return bp
}

func putBuf(bp *[]byte) {
	if bp == nil || cap(*bp) > bufPoolMaxCap {
		return // reject oversized
	}
	*bp = (*bp)[:0]
	bufPool.Put(bp)
}

// bytesBufPool reuses staging buffers for streamed text decoding.
var bytesBufPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}
