package bxdf

// arenaChunkSize is the number of values of one type held by a chunk.
const arenaChunkSize = 64

// Arena is a scoped allocator for the short-lived objects built during a
// single shading evaluation (lobes, distributions, Fresnel terms, the BSDF
// itself). Values are carved out of per-type chunks that are never moved, so
// pointers stay valid until Reset, which releases everything at once and
// reuses the storage for the next evaluation.
//
// An Arena is not safe for concurrent use; each render worker owns one.
type Arena struct {
	slabs map[any]resetter
	count int
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{slabs: make(map[any]resetter)}
}

// New copies v into storage owned by a and returns a pointer to it. A nil
// arena falls back to the garbage-collected heap.
func New[T any](a *Arena, v T) *T {
	if a == nil {
		return &v
	}
	if a.slabs == nil {
		a.slabs = make(map[any]resetter)
	}

	// A typed nil pointer is a comparable per-type key
	key := any((*T)(nil))
	s, ok := a.slabs[key].(*slab[T])
	if !ok {
		s = &slab[T]{}
		a.slabs[key] = s
	}

	p := s.alloc()
	*p = v
	a.count++
	return p
}

// Len returns the number of live allocations
func (a *Arena) Len() int {
	return a.count
}

// Reset releases every allocation. Pointers handed out before the call must
// not be used afterwards.
func (a *Arena) Reset() {
	for _, s := range a.slabs {
		s.reset()
	}
	a.count = 0
}

type resetter interface {
	reset()
}

type slab[T any] struct {
	chunks [][]T
	chunk  int // index of the chunk being filled
	used   int // values used in that chunk
}

func (s *slab[T]) alloc() *T {
	if s.chunk < len(s.chunks) && s.used == len(s.chunks[s.chunk]) {
		s.chunk++
		s.used = 0
	}
	if s.chunk == len(s.chunks) {
		s.chunks = append(s.chunks, make([]T, arenaChunkSize))
	}
	p := &s.chunks[s.chunk][s.used]
	s.used++
	return p
}

func (s *slab[T]) reset() {
	var zero T
	for i := 0; i <= s.chunk && i < len(s.chunks); i++ {
		n := arenaChunkSize
		if i == s.chunk {
			n = s.used
		}
		// Drop references so reused storage does not pin garbage
		for j := 0; j < n; j++ {
			s.chunks[i][j] = zero
		}
	}
	s.chunk = 0
	s.used = 0
}
