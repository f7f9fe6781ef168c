// Package component implements the base (C6) and tagged (C7) predictor
// components that a TAGE predictor (C8) orchestrates.
package component

import (
	"github.com/pkg/errors"
	"github.com/suprax-research/tagesim/counter"
	"github.com/suprax-research/tagesim/outcome"
	"github.com/suprax-research/tagesim/ptable"
)

// BaseConfig configures the untagged, direct-mapped base predictor.
type BaseConfig struct {
	Size       int
	CounterCfg counter.Config
	// Index hashes a PC to a table index; defaults to the identity hash
	// (the table abstraction masks it to size regardless) when nil.
	Index ptable.IndexStrategy
}

// Base is a direct-mapped table of saturating counters indexed by PC only
// (spec §4.5, C6). It is always the predictor's fallback: every PC has an
// entry here, so Base.Predict never "misses".
type Base struct {
	table *ptable.Table[counter.Counter]
	cfg   BaseConfig
}

// NewBase builds a Base component. A zero Index strategy defaults to
// identity-on-PC; the table abstraction's mandatory masking keeps this safe
// regardless of table size.
func NewBase(cfg BaseConfig) (*Base, error) {
	if cfg.CounterCfg.TakenLimit == 0 || cfg.CounterCfg.NotTakenLimit == 0 {
		return nil, errors.Errorf("component: base counter limits must be >= 1 (got taken=%d, not-taken=%d)", cfg.CounterCfg.TakenLimit, cfg.CounterCfg.NotTakenLimit)
	}
	idx := cfg.Index
	if idx == nil {
		idx = func(in ptable.Inputs) uint64 { return in.PC }
	}
	tbl, err := ptable.New[counter.Counter](cfg.Size, idx)
	if err != nil {
		return nil, errors.Wrap(err, "component: base table")
	}
	b := &Base{table: tbl, cfg: cfg}
	tbl.ForEach(func(_ uint64, c *counter.Counter) {
		*c = counter.New(cfg.CounterCfg)
	})
	return b, nil
}

// Index returns the table index a PC maps to.
func (b *Base) Index(pc uint64) uint64 {
	return b.table.GetIndex(ptable.Inputs{PC: pc})
}

// Predict returns the counter's direction at pc's index. Pure (spec P4).
func (b *Base) Predict(pc uint64) outcome.Outcome {
	idx := b.Index(pc)
	c := b.table.GetEntry(idx)
	return c.Predict()
}

// Update applies the resolved outcome to pc's counter.
func (b *Base) Update(pc uint64, o outcome.Outcome) {
	idx := b.Index(pc)
	c := b.table.GetEntryMut(idx)
	c.Update(o)
}

// CounterAt returns a read-only copy of the counter at idx, for
// observability (statistics, tests).
func (b *Base) CounterAt(idx uint64) counter.Counter {
	return b.table.GetEntry(idx)
}

// Size returns the component's entry count.
func (b *Base) Size() int {
	return b.table.Size()
}

// StorageBits reports the component's total bit footprint.
func (b *Base) StorageBits() int {
	return b.table.Size() * b.cfg.CounterCfg.StorageBits()
}
