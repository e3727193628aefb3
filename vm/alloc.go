package vm

import (
	"github.com/chazu/calc42/scalar"
)

// Allocator hands out matrix buffers. Every buffer obtained from Alloc is
// returned through Free exactly once.
type Allocator interface {
	Alloc(n int) ([]scalar.Scalar, ErrorKind)
	Free(buf []scalar.Scalar)
}

// Heap is the default Allocator. It optionally enforces a limit, counted
// in scalar words, and keeps track of outstanding buffers.
type Heap struct {
	limit       int
	used        int
	outstanding int
	peak        int
}

// MaxWords bounds every Heap, limited or not. Shapes larger than this are
// rejected before their size is computed.
const MaxWords = 1 << 26

// NewHeap creates a Heap. A limit of 0 means unlimited.
func NewHeap(limit int) *Heap {
	return &Heap{limit: limit}
}

func (h *Heap) Alloc(n int) ([]scalar.Scalar, ErrorKind) {
	if n <= 0 {
		return nil, ErrDimensionError
	}
	if n > MaxWords-h.used || (h.limit > 0 && h.used+n > h.limit) {
		return nil, ErrInsufficientMemory
	}
	h.used += n
	h.outstanding++
	if h.used > h.peak {
		h.peak = h.used
	}
	return make([]scalar.Scalar, n), ErrNone
}

func (h *Heap) Free(buf []scalar.Scalar) {
	if h.outstanding == 0 {
		panic("vm: free without matching alloc")
	}
	h.used -= len(buf)
	h.outstanding--
}

// Outstanding returns the number of buffers not yet freed.
func (h *Heap) Outstanding() int { return h.outstanding }

// Used returns the number of words currently allocated.
func (h *Heap) Used() int { return h.used }

// Peak returns the high-water mark of Used.
func (h *Heap) Peak() int { return h.peak }
