package component

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/suprax-research/tagesim/counter"
	"github.com/suprax-research/tagesim/history"
	"github.com/suprax-research/tagesim/outcome"
	"github.com/suprax-research/tagesim/ptable"
)

// hashPrime is the golden-ratio multiplier (2^64 / φ) used to decorrelate
// the index and tag hashes. Grounded in the retrieval pack's own TAGE
// prototype, which mixes PC bits with the same constant for the same
// reason (avoiding correlated aliasing between tables).
const hashPrime = 0x9E3779B97F4A7C15

// defaultIndexHash is f(PC) in spec §4.6's index strategy.
func defaultIndexHash(pc uint64) uint64 {
	h := pc * hashPrime
	return h ^ (h >> 31)
}

// defaultTagHash is g(PC) in spec §4.6's tag strategy.
func defaultTagHash(pc uint64) uint64 {
	h := (pc >> 5) * hashPrime
	return h ^ (h >> 29)
}

// AllocatorHistoryDepth bounds the diagnostic "set of PCs that allocated
// this slot" per entry (spec §3). Unbounded tracking would leak memory over
// a long-running simulation that reuses heavily aliased slots; an
// LRU-capped set keeps only the most recent allocators.
const AllocatorHistoryDepth = 8

// Entry is one tagged-component table entry (spec §3, "TAGE entry").
type Entry struct {
	Counter counter.Counter
	Tag     uint64
	Valid   bool // false means "tag = None": never matches (P3).
	Useful  uint8

	CreatedAt uint64 // predictor update-clock value at allocation
	Updates   uint64 // number of times this entry's counter has been updated

	allocators *lru.Cache[uint64, struct{}] // diagnostic only
}

func newEntry() Entry {
	c, _ := lru.New[uint64, struct{}](AllocatorHistoryDepth)
	return Entry{allocators: c}
}

// Allocators returns the (bounded, diagnostic-only) set of PCs that have
// allocated this slot, oldest first.
func (e *Entry) Allocators() []uint64 {
	if e.allocators == nil {
		return nil
	}
	return e.allocators.Keys()
}

func (e *Entry) recordAllocator(pc uint64) {
	if e.allocators == nil {
		e.allocators, _ = lru.New[uint64, struct{}](AllocatorHistoryDepth)
	}
	e.allocators.Add(pc, struct{}{})
}

// update applies the counter update only. Per spec §9's Open Questions, the
// predictor-level usefulness nudge (§4.7.2 Case B) is treated as canonical;
// this method deliberately does NOT touch Useful, to avoid double-counting
// against that predictor-level rule.
func (e *Entry) update(o outcome.Outcome) {
	e.Counter.Update(o)
	e.Updates++
}

// incrementUseful saturates at maxUseful = 2^U - 1.
func (e *Entry) incrementUseful(maxUseful uint8) {
	if e.Useful < maxUseful {
		e.Useful++
	}
}

func (e *Entry) decrementUseful() {
	if e.Useful > 0 {
		e.Useful--
	}
}

// invalidate resets the counter, clears the tag, and zeroes usefulness
// (spec §4.6, "invalidate()").
func (e *Entry) invalidate() {
	e.Counter.Reset()
	e.Tag = 0
	e.Valid = false
	e.Useful = 0
}

// TaggedConfig configures one tagged component (spec §3, "TAGE component").
type TaggedConfig struct {
	Size       int
	Lo, Hi     int // inclusive GHR window this component's CSR covers
	TagBits    int
	UsefulBits int
	CounterCfg counter.Config

	// Index/Tag let a caller override the default geometric-history
	// strategy (spec §9, "Function-pointer strategies"). The CSR-mixing
	// closures built in NewTagged are used only when these are nil; a
	// custom strategy is used as given, receives only ptable.Inputs (not
	// the component's CSR output), and its tag is not masked to TagBits.
	Index ptable.IndexStrategy
	Tag   ptable.TagStrategy
}

// Tagged is a tag-matched counter table indexed by folded PC XOR folded
// GHR, tagged by a second folded hash (spec §4.6, C7).
type Tagged struct {
	cfg     TaggedConfig
	table   *ptable.Table[Entry]
	csr     *history.FoldedHistory
	tagMask uint64
	maxUsfl uint8
}

// NewTagged builds a tagged component. ghrLen validates that the configured
// CSR window lies inside the GHR (spec §7, configuration error).
func NewTagged(cfg TaggedConfig, ghrLen int) (*Tagged, error) {
	if cfg.Lo < 0 || cfg.Hi < cfg.Lo {
		return nil, errors.Errorf("component: tagged window [%d..%d] is invalid", cfg.Lo, cfg.Hi)
	}
	if cfg.Hi+1 >= ghrLen {
		return nil, errors.Errorf("component: tagged window [%d..%d] leaves no room for a retiring bit in a GHR of length %d", cfg.Lo, cfg.Hi, ghrLen)
	}
	if cfg.TagBits <= 0 || cfg.TagBits > 63 {
		return nil, errors.Errorf("component: tag bits %d out of range", cfg.TagBits)
	}
	if cfg.UsefulBits <= 0 || cfg.UsefulBits > 8 {
		return nil, errors.Errorf("component: useful bits %d out of range", cfg.UsefulBits)
	}
	if cfg.CounterCfg.TakenLimit == 0 || cfg.CounterCfg.NotTakenLimit == 0 {
		return nil, errors.Errorf("component: tagged counter limits must be >= 1 (got taken=%d, not-taken=%d)", cfg.CounterCfg.TakenLimit, cfg.CounterCfg.NotTakenLimit)
	}

	csr := history.NewFoldedHistory(cfg.TagBits+1, cfg.Lo, cfg.Hi)
	tagMask := uint64(1)<<uint(cfg.TagBits) - 1

	index := cfg.Index
	if index == nil {
		index = func(in ptable.Inputs) uint64 {
			return defaultIndexHash(in.PC) ^ csr.Output()
		}
	}
	tag := cfg.Tag
	if tag == nil {
		tag = func(in ptable.Inputs) uint64 {
			out := csr.Output()
			return (defaultTagHash(in.PC) ^ out ^ (out << 1)) & tagMask
		}
	}

	tbl, err := ptable.New[Entry](cfg.Size, index)
	if err != nil {
		return nil, errors.Wrap(err, "component: tagged table")
	}
	tbl.WithTagStrategy(tag)
	tbl.ForEach(func(_ uint64, e *Entry) { *e = newEntry() })

	return &Tagged{
		cfg:     cfg,
		table:   tbl,
		csr:     csr,
		tagMask: tagMask,
		maxUsfl: uint8(1)<<uint(cfg.UsefulBits) - 1,
	}, nil
}

// HistoryLen returns hi - lo, this component's history window length.
func (c *Tagged) HistoryLen() int {
	return c.cfg.Hi - c.cfg.Lo
}

// Window returns the component's CSR window [lo, hi].
func (c *Tagged) Window() (lo, hi int) {
	return c.cfg.Lo, c.cfg.Hi
}

// Lookup computes (index, tag) for pc and reports whether the entry at that
// index matches (spec §4.6, "Matching"). An empty entry (Valid = false)
// never matches (invariant P3).
func (c *Tagged) Lookup(pc uint64) (idx uint64, tag uint64, entry *Entry, hit bool) {
	in := ptable.Inputs{PC: pc}
	idx = c.table.GetIndex(in)
	tag = c.table.GetTag(in)
	entry = c.table.GetEntryMut(idx)
	hit = entry.Valid && entry.Tag == tag
	return idx, tag, entry, hit
}

// EntryAt returns a read-only copy of the entry at idx.
func (c *Tagged) EntryAt(idx uint64) Entry {
	return c.table.GetEntry(idx)
}

// UpdateCounter applies a counter update (and bumps Updates) to the entry
// at idx, without touching Useful (see Entry.update).
func (c *Tagged) UpdateCounter(idx uint64, o outcome.Outcome) {
	c.table.GetEntryMut(idx).update(o)
}

// IncrementUseful / DecrementUseful mutate the usefulness counter at idx,
// saturating at [0, 2^U - 1] (spec §4.6).
func (c *Tagged) IncrementUseful(idx uint64) {
	c.table.GetEntryMut(idx).incrementUseful(c.maxUsfl)
}

func (c *Tagged) DecrementUseful(idx uint64) {
	c.table.GetEntryMut(idx).decrementUseful()
}

// Allocate reinitializes the entry at idx: invalidate, then set tag, zero
// usefulness, counter direction = o, strength = 0 (spec §4.7.3, "On
// success"). allocatorPC is recorded into the entry's diagnostic set.
func (c *Tagged) Allocate(idx, tag uint64, o outcome.Outcome, clock uint64, allocatorPC uint64) {
	e := c.table.GetEntryMut(idx)
	e.invalidate()
	e.Tag = tag
	e.Valid = true
	e.Counter.SetDirection(o)
	e.Counter.SetStrength(0)
	e.CreatedAt = clock
	e.recordAllocator(allocatorPC)
}

// ResetUsefulBits zeroes every entry's usefulness counter; counters and
// tags are untouched (spec §4.6, "reset_useful_bits()").
func (c *Tagged) ResetUsefulBits() {
	c.table.ForEach(func(_ uint64, e *Entry) { e.Useful = 0 })
}

// UpdateHistory advances this component's CSR by one GHR shift (spec
// §4.7.4). Must be called exactly once per single-bit GHR shift.
func (c *Tagged) UpdateHistory(ghr *history.GHR) {
	c.csr.Update(ghr)
}

// Reconstruct rebuilds the CSR from scratch, for use whenever the GHR has
// been shifted by more than one bit. NewTagged does not call it: a new
// component starts with an all-zero CSR, which matches an all-zero GHR.
func (c *Tagged) Reconstruct(ghr *history.GHR) {
	c.csr.Reconstruct(ghr)
}

// Size returns the component's entry count.
func (c *Tagged) Size() int {
	return c.table.Size()
}

// StorageBits reports the component's total bit footprint: per-entry cost
// (tag + counter + useful + valid bit) times entry count, plus the CSR.
func (c *Tagged) StorageBits() int {
	perEntry := c.cfg.TagBits + c.cfg.CounterCfg.StorageBits() + c.cfg.UsefulBits + 1
	return perEntry*c.table.Size() + c.csr.Width()
}
