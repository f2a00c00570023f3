// Package arena implements the bump allocator backing every object with
// compiler-run lifetime: tokens, AST nodes, and symbol tables. Objects are
// never freed individually; the whole arena is dropped at the end of a
// pipeline run.
package arena

import "reflect"

const slabLen = 256

// slab is a fixed-capacity, append-only backing store for one node type.
// Because pages are never resized or moved once allocated, pointers handed
// out by Alloc stay valid for the arena's entire lifetime.
type slab[T any] struct {
	pages [][]T
	used  int
}

func (s *slab[T]) alloc() *T {
	if len(s.pages) == 0 || s.used == len(s.pages[len(s.pages)-1]) {
		s.pages = append(s.pages, make([]T, slabLen))
		s.used = 0
	}
	page := s.pages[len(s.pages)-1]
	p := &page[s.used]
	s.used++
	return p
}

// reset zeroes every page, keeps only the first one and rewinds the cursor
// to its start; later pages are dropped and allocated afresh once the first
// page fills up again.
func (s *slab[T]) reset() {
	for i := range s.pages {
		var zero T
		for j := range s.pages[i] {
			s.pages[i][j] = zero
		}
	}
	s.used = 0
	if len(s.pages) > 1 {
		s.pages = s.pages[:1]
	}
}

type resettable interface {
	reset()
}

// Arena hands out aligned, never-moving allocations for a single
// compiler run and releases everything at once on Destroy.
type Arena struct {
	slabs map[reflect.Type]resettable
	count int
}

// New creates an empty arena. reserveHint is advisory only; it exists so
// call sites documenting an expected object count still read naturally.
func New(reserveHint int) *Arena {
	return &Arena{slabs: make(map[reflect.Type]resettable)}
}

// Alloc returns a pointer to a newly zeroed T, backed by the arena. It never
// returns an error: a Go slice allocation only fails by panicking on true
// OOM, which is not a condition this compiler can recover from regardless
// of phase.
func Alloc[T any](a *Arena) *T {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	raw, ok := a.slabs[rt]
	var s *slab[T]
	if !ok {
		s = &slab[T]{}
		a.slabs[rt] = s
	} else {
		s = raw.(*slab[T])
	}
	a.count++
	return s.alloc()
}

// Count returns the number of objects allocated so far.
func (a *Arena) Count() int { return a.count }

// Reset rewinds every slab's cursor to its start, keeping each slab's first
// page (zeroed) for reuse and dropping the rest, so a follow-up run can reuse
// part of the committed memory. Any
// pointer obtained before Reset must be treated as invalid afterward.
func (a *Arena) Reset() {
	for _, s := range a.slabs {
		s.reset()
	}
	a.count = 0
}

// Destroy drops every reference held by the arena, making all of its
// allocations eligible for garbage collection. Any pointer obtained from
// Alloc before Destroy must not be dereferenced afterward; the arena itself
// is reusable and starts empty.
func (a *Arena) Destroy() {
	a.slabs = make(map[reflect.Type]resettable)
	a.count = 0
}
