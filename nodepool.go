package mst

import "sync"


//============================================= Buffer Pool


// bufferPool recycles the transient []byte buffers commit allocates
// while serializing dirty nodes, so the GC doesn't have to handle
// constant allocate/discard churn on every commit. Adapted from the
// teacher's NodePool.go: the teacher pools whole MariINode/MariLNode
// structs discarded on a failed optimistic CAS, a scenario this
// module's single-writer mutex never produces, so the pool here is
// repurposed for what this design actually allocates repeatedly.
type bufferPool struct {
	maxSize int64
	pool    *sync.Pool
}

// newBufferPool constructs a buffer pool sized per Options.NodePoolSize.
func newBufferPool(maxSize int64) *bufferPool {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &bufferPool{
		maxSize: maxSize,
		pool: &sync.Pool{
			New: func() any { return make([]byte, 0, 128) },
		},
	}
}

// get returns a zero-length buffer ready for reuse.
func (p *bufferPool) get() []byte {
	buf := p.pool.Get().([]byte)
	return buf[:0]
}

// put returns buf to the pool for reuse, discarding it instead if it
// has grown unreasonably large (mirrors the teacher's reset-on-return
// discipline in NodePool.go's resetINode/resetLNode).
func (p *bufferPool) put(buf []byte) {
	if int64(cap(buf)) > p.maxSize*1024 {
		return
	}
	p.pool.Put(buf) //nolint:staticcheck // buffer is reset to len 0 on get
}
