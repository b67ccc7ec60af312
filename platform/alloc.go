package platform

import "sync"

// Allocator serves the driver's buffer requests.
type Allocator interface {
	// Alloc returns a buffer of len size, or nil when it cannot.
	Alloc(size int) []byte
	// Free releases a buffer returned by Alloc.
	Free(b []byte)
}

// HeapAllocator allocates from the Go heap.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(size int) []byte {
	if size < 0 {
		return nil
	}
	return make([]byte, size)
}

func (HeapAllocator) Free([]byte) {}

// Pool defaults, sized for the driver's firmware chunk buffers.
const (
	DefaultPoolBlocks    = 3
	DefaultPoolBlockSize = 8192
)

// PoolAllocator hands out fixed size blocks from a preallocated pool.
//
// Blocks are taken first fit. There is no coalescing and a request larger
// than a block fails, so the pool only suits callers with small, known
// allocation sizes.
type PoolAllocator struct {
	mu        sync.Mutex
	blockSize int
	blocks    [][]byte
	allocated []bool
}

// NewPoolAllocator returns a pool of n blocks of size bytes.
func NewPoolAllocator(n, size int) *PoolAllocator {
	backing := make([]byte, n*size)
	pool := &PoolAllocator{
		blockSize: size,
		blocks:    make([][]byte, n),
		allocated: make([]bool, n),
	}
	for i := range pool.blocks {
		pool.blocks[i] = backing[i*size : (i+1)*size : (i+1)*size]
	}
	return pool
}

func (a *PoolAllocator) Alloc(size int) []byte {
	if size < 0 || size > a.blockSize {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, used := range a.allocated {
		if !used {
			a.allocated[i] = true
			return a.blocks[i][:size]
		}
	}
	return nil
}

func (a *PoolAllocator) Free(b []byte) {
	if cap(b) == 0 || a.blockSize == 0 {
		return
	}
	p := &b[:1][0]
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, blk := range a.blocks {
		if &blk[0] == p {
			a.allocated[i] = false
		}
	}
}
