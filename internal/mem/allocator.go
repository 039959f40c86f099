// internal/mem/allocator.go

package mem

import (
	"fmt"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
)

var (
	ErrInsufficientMemory = errors.New("insufficient memory")
	ErrInvalidSize        = errors.New("invalid allocation size")
	ErrUnknownRegion      = errors.New("region is not allocated")
)

// Region is a contiguous extent of the pool. A Region returned by Allocate is
// also the handle that must be passed back to Release.
type Region struct {
	Start int
	Size  int
}

// End returns the first offset past the region.
func (r Region) End() int { return r.Start + r.Size }

func (r Region) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End())
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithCoalescing makes Release merge the returned region with adjacent free
// regions. The free list is then kept in offset order.
func WithCoalescing() Option {
	return func(a *Allocator) { a.coalesce = true }
}

// Allocator is a first-fit allocator over a fixed pool.
type Allocator struct {
	total    int
	coalesce bool
	free     *doublylinkedlist.List // Region values, scanned in list order
	used     *redblacktree.Tree     // start offset -> size of every handed out region
}

// New creates an allocator whose pool is a single free region of the given size.
func New(total int, opts ...Option) (*Allocator, error) {
	if total <= 0 {
		return nil, errors.Errorf("memory pool size must be positive, got %d", total)
	}
	a := &Allocator{
		total: total,
		free:  doublylinkedlist.New(Region{Start: 0, Size: total}),
		used:  redblacktree.NewWithIntComparator(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Allocate carves size units off the low end of the first free region that is
// large enough.
func (a *Allocator) Allocate(size int) (Region, error) {
	if size <= 0 {
		return Region{}, errors.Wrapf(ErrInvalidSize, "requested %d", size)
	}

	it := a.free.Iterator()
	for it.Next() {
		r := it.Value().(Region)
		if r.Size < size {
			continue
		}

		out := Region{Start: r.Start, Size: size}
		r.Start += size
		r.Size -= size
		if r.Size == 0 {
			a.free.Remove(it.Index())
		} else {
			a.free.Set(it.Index(), r)
		}
		a.used.Put(out.Start, out.Size)
		return out, nil
	}

	return Region{}, errors.Wrapf(ErrInsufficientMemory,
		"requested %d, largest free region %d", size, a.LargestFree())
}

// Release returns a previously allocated region to the pool.
func (a *Allocator) Release(r Region) error {
	size, found := a.used.Get(r.Start)
	if !found || size.(int) != r.Size {
		return errors.Wrapf(ErrUnknownRegion, "release %s", r)
	}
	a.used.Remove(r.Start)

	if !a.coalesce {
		a.free.Add(r)
		return nil
	}
	a.insertMerged(r)
	return nil
}

// insertMerged places r at its offset position and folds it into the
// neighbours it touches.
func (a *Allocator) insertMerged(r Region) {
	idx := 0
	it := a.free.Iterator()
	for it.Next() {
		if it.Value().(Region).Start > r.Start {
			break
		}
		idx++
	}

	if idx > 0 {
		v, _ := a.free.Get(idx - 1)
		if prev := v.(Region); prev.End() == r.Start {
			r.Start = prev.Start
			r.Size += prev.Size
			a.free.Remove(idx - 1)
			idx--
		}
	}
	if v, ok := a.free.Get(idx); ok {
		if next := v.(Region); r.End() == next.Start {
			r.Size += next.Size
			a.free.Remove(idx)
		}
	}
	a.free.Insert(idx, r)
}

// Total is the fixed pool size.
func (a *Allocator) Total() int { return a.total }

// Coalescing reports whether released regions are merged with their neighbours.
func (a *Allocator) Coalescing() bool { return a.coalesce }

// Free is the sum of all free region sizes.
func (a *Allocator) Free() int {
	sum := 0
	for _, v := range a.free.Values() {
		sum += v.(Region).Size
	}
	return sum
}

// Used is the sum of all allocated region sizes.
func (a *Allocator) Used() int {
	sum := 0
	for _, v := range a.used.Values() {
		sum += v.(int)
	}
	return sum
}

// LargestFree is the biggest request that Allocate can currently satisfy.
func (a *Allocator) LargestFree() int {
	largest := 0
	for _, v := range a.free.Values() {
		if r := v.(Region); r.Size > largest {
			largest = r.Size
		}
	}
	return largest
}

// FreeRegions returns the free list in scan order.
func (a *Allocator) FreeRegions() []Region {
	out := make([]Region, 0, a.free.Size())
	for _, v := range a.free.Values() {
		out = append(out, v.(Region))
	}
	return out
}

// Allocated returns the allocated regions ordered by start offset.
func (a *Allocator) Allocated() []Region {
	out := make([]Region, 0, a.used.Size())
	it := a.used.Iterator()
	for it.Next() {
		out = append(out, Region{Start: it.Key().(int), Size: it.Value().(int)})
	}
	return out
}
