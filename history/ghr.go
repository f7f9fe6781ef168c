// Package history implements the global history register (GHR) and its
// folded-history companion (CSR), the two primitives every tagged TAGE
// component hangs its indexing off of.
package history

import "github.com/suprax-research/tagesim/outcome"

// GHR is an ordered sequence of bits of fixed length N. Bit 0 is always the
// newest outcome; bit N-1 is the oldest (spec §3, §4.2).
type GHR struct {
	bits []bool
}

// New returns a GHR of the given length, all bits zero (not-taken).
func New(length int) *GHR {
	if length <= 0 {
		panic("history: GHR length must be positive")
	}
	return &GHR{bits: make([]bool, length)}
}

// Len returns N, the register's fixed length.
func (g *GHR) Len() int {
	return len(g.bits)
}

// Bit returns the outcome stored at position pos (0 = newest).
func (g *GHR) Bit(pos int) outcome.Outcome {
	return outcome.Outcome(g.bits[pos])
}

// SetBit writes a single bit. Used by the driver to install the resolved
// outcome at bit 0 immediately after a ShiftBy(1) (spec §4.2, §5).
func (g *GHR) SetBit(pos int, o outcome.Outcome) {
	g.bits[pos] = bool(o)
}

// ShiftBy drops the k oldest bits and inserts k zero bits at position 0;
// every surviving bit moves k places toward the tail. The caller is
// responsible for writing the true resolved outcome into bit 0 afterward
// (spec §4.2: "after shift, bit 0 is written with the resolved outcome").
func (g *GHR) ShiftBy(k int) {
	n := len(g.bits)
	if k <= 0 {
		return
	}
	if k >= n {
		for i := range g.bits {
			g.bits[i] = false
		}
		return
	}
	copy(g.bits[k:], g.bits[:n-k])
	for i := 0; i < k; i++ {
		g.bits[i] = false
	}
}

// Read returns a read-only copy of the inclusive bit range [lo, hi].
func (g *GHR) Read(lo, hi int) []bool {
	out := make([]bool, hi-lo+1)
	copy(out, g.bits[lo:hi+1])
	return out
}

// Fold XOR-folds the inclusive range [lo, hi] into m output bits by
// splitting the range into consecutive m-bit chunks (the last chunk may be
// short) and XORing them together. This is the scratch (O(H)) computation;
// FoldedHistory maintains the same invariant incrementally.
func (g *GHR) Fold(lo, hi, m int) uint64 {
	var out uint64
	bitIdx := 0
	for i := lo; i <= hi; i++ {
		if g.bits[i] {
			out ^= 1 << uint(bitIdx%m)
		}
		bitIdx++
	}
	return out
}
