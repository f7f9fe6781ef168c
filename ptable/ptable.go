// Package ptable implements the uniform predictor-table abstraction (spec
// §4.4, C5): a fixed power-of-two-size array with a pluggable index
// strategy, and for tagged tables, a pluggable tag strategy.
//
// Index and tag strategies are plain function values rather than an open
// Go type parameter. Per the design notes in spec §9, this keeps a table's
// runtime cost and storage identical across strategies while still letting
// callers swap in "IndexByPC", "IndexByPCAndPath", or a test-only strategy
// without specializing the table type itself.
package ptable

import "github.com/pkg/errors"

// Inputs bundles everything an index/tag strategy may consult. PathHistory
// is optional path-history bits an implementation may choose to expose
// (spec §4.7.1). The default strategies ignore it, and the lookups made by
// the component package set only PC, so PathHistory is always zero there.
type Inputs struct {
	PC          uint64
	PathHistory uint64
}

// IndexStrategy computes a table index from Inputs. The returned value need
// not already be masked to the table's size — GetIndex applies the mask.
type IndexStrategy func(Inputs) uint64

// TagStrategy computes a tag from Inputs, for tagged tables only.
type TagStrategy func(Inputs) uint64

// Table is a fixed-size array of entries of type E, indexed by a
// configurable strategy. Size must be a power of two (spec §4.4 / §3).
type Table[E any] struct {
	entries []E
	mask    uint64
	index   IndexStrategy
	tag     TagStrategy // nil for untagged (base) tables
}

// New builds a Table of the given size (must be a power of two) around the
// given index strategy. Construction errors (non-power-of-two size) are
// configuration errors per spec §7 and are reported, not panicked, so
// callers building a predictor from user-supplied config can surface a
// clean message.
func New[E any](size int, index IndexStrategy) (*Table[E], error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, errors.Errorf("ptable: size %d is not a power of two", size)
	}
	if index == nil {
		return nil, errors.New("ptable: index strategy is required")
	}
	return &Table[E]{
		entries: make([]E, size),
		mask:    uint64(size - 1),
		index:   index,
	}, nil
}

// WithTagStrategy attaches a tag strategy, turning an untagged table into
// one capable of GetTag lookups (used by tagged components, C7).
func (t *Table[E]) WithTagStrategy(tag TagStrategy) *Table[E] {
	t.tag = tag
	return t
}

// Size returns the table's entry count.
func (t *Table[E]) Size() int {
	return len(t.entries)
}

// GetIndex computes the index for in, masked to [0, Size()) — callers never
// need to (and must not) re-mask the result themselves (spec §4.4
// post-condition).
func (t *Table[E]) GetIndex(in Inputs) uint64 {
	return t.index(in) & t.mask
}

// GetTag computes the tag for in. Panics if no tag strategy was attached —
// calling GetTag on a base (untagged) table is a programmer error.
func (t *Table[E]) GetTag(in Inputs) uint64 {
	if t.tag == nil {
		panic("ptable: GetTag called on a table with no tag strategy")
	}
	return t.tag(in)
}

// GetEntry returns a read-only copy of the entry at idx.
func (t *Table[E]) GetEntry(idx uint64) E {
	return t.entries[idx]
}

// GetEntryMut returns a pointer to the entry at idx for in-place mutation.
func (t *Table[E]) GetEntryMut(idx uint64) *E {
	return &t.entries[idx]
}

// ForEach calls fn with a mutable pointer to every entry in index order.
// Used for component-wide maintenance (e.g. resetting usefulness bits).
func (t *Table[E]) ForEach(fn func(idx uint64, e *E)) {
	for i := range t.entries {
		fn(uint64(i), &t.entries[i])
	}
}
