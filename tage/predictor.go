// Package tage implements the TAGE (TAgged GEometric history length)
// conditional-branch predictor (spec §4.7, C8): the orchestrator that owns
// one base component and an ordered list of tagged components, and that
// drives prediction, allocation, update, and periodic usefulness reset.
package tage

import (
	"github.com/suprax-research/tagesim/component"
	"github.com/suprax-research/tagesim/history"
	"github.com/suprax-research/tagesim/internal/randsrc"
	"github.com/suprax-research/tagesim/outcome"
	"go.uber.org/zap"
)

// resetCtrMax is the 8-bit reset-counter ceiling (spec §3, §4.7.2).
const resetCtrMax uint8 = 255

// Predictor owns exactly one base component and an ordered list of tagged
// components, sorted longest-history-first (spec §3, "TAGE predictor").
type Predictor struct {
	base   *component.Base
	tagged []*component.Tagged

	rand randsrc.Source
	log  *zap.SugaredLogger

	resetCtr uint8
	clock    uint64

	// Observable statistics (spec §6). Index 0 is the base component;
	// index i+1 is tagged[i].
	hits, misses []uint64
	allocHit     []uint64 // successful allocations landing in tagged[i]
	allocSucc    uint64
	allocFail    uint64
	usefulResets uint64
}

// TaggedHistoryLengths reports the predictor's chosen longest-first
// ordering (spec §6, "must report its chosen ordering"; P6, stable for the
// predictor's lifetime).
func (p *Predictor) TaggedHistoryLengths() []int {
	out := make([]int, len(p.tagged))
	for i, t := range p.tagged {
		out[i] = t.HistoryLen()
	}
	return out
}

// providerInfo is an internal scratch record for whichever component is
// currently the best (or second-best) candidate during the Predict walk.
type providerInfo struct {
	provider Provider
	outcome  outcome.Outcome
	index    uint64
	tag      uint64
}

// Predict is a pure read of predictor state (spec P4: no mutation).
//
// It walks the tagged components longest-history-first. The first
// component with a tag match becomes the provider. The walk continues past
// the provider (it does not stop there, despite spec §4.7.1 step 3's
// "Stop the walk at the first match" — see DESIGN.md for why this is read
// as "stop updating the provider", not "stop scanning") far enough to find
// a second match, which becomes the alternate; if none is found, the base
// component is the alternate. This matches scenario S6: when two tagged
// components both match, the longer-history one provides and the
// shorter-history one is reported as alt_provider, not the base.
func (p *Predictor) Predict(pc uint64) Prediction {
	baseOut := p.base.Predict(pc)
	baseInfo := providerInfo{provider: BaseProvider(), outcome: baseOut, index: p.base.Index(pc)}

	var (
		providerSet bool
		provider    providerInfo
		altSet      bool
		alt         providerInfo
	)

	for i, t := range p.tagged {
		idx, tag, entry, hit := t.Lookup(pc)
		if !hit {
			continue
		}
		info := providerInfo{provider: TaggedProvider(i), outcome: entry.Counter.Predict(), index: idx, tag: tag}
		if !providerSet {
			provider = info
			providerSet = true
			continue
		}
		alt = info
		altSet = true
		break
	}

	if !providerSet {
		// Spec step 4: no tagged component matches, base is both provider
		// and alternate.
		return Prediction{
			provider: baseInfo.provider, outcome: baseInfo.outcome,
			providerIndex: baseInfo.index,
			altProvider:   baseInfo.provider, altOutcome: baseInfo.outcome, altIndex: baseInfo.index,
		}
	}
	if !altSet {
		alt = baseInfo
	}

	return Prediction{
		provider: provider.provider, outcome: provider.outcome,
		providerIndex: provider.index, providerTag: provider.tag,
		altProvider: alt.provider, altOutcome: alt.outcome,
		altIndex: alt.index, altTag: alt.tag,
	}
}

// Update mutates predictor state according to spec §4.7.2: updates the
// providing entry, attempts allocation on a misprediction, and advances
// the reset clock.
func (p *Predictor) Update(pc uint64, pred Prediction, resolved outcome.Outcome) {
	correct := pred.Outcome() == resolved

	statIdx := providerStatIndex(pred.provider)
	if correct {
		p.hits[statIdx]++
	} else {
		p.misses[statIdx]++
	}

	if !correct {
		// Case A: mispredicted.
		if pred.provider.IsBase() {
			p.base.Update(pc, resolved)
		} else {
			p.tagged[pred.provider.TaggedIndex()].UpdateCounter(pred.providerIndex, resolved)
		}

		if p.allocate(pc, pred, resolved) {
			p.bumpResetCtr(+1)
		} else {
			p.bumpResetCtr(-1)
		}
	} else {
		// Case B: correct.
		if pred.provider.IsBase() {
			p.base.Update(pc, resolved)
		} else {
			ti := pred.provider.TaggedIndex()
			p.tagged[ti].UpdateCounter(pred.providerIndex, resolved)
			if pred.altOutcome != resolved {
				p.tagged[ti].IncrementUseful(pred.providerIndex)
			}
		}
	}

	p.clock++
	if p.resetCtr == resetCtrMax {
		p.resetCtr = 0
		for _, t := range p.tagged {
			t.ResetUsefulBits()
		}
		p.usefulResets++
		p.log.Debugw("tage: periodic useful-bit reset", "clock", p.clock)
	}
}

func providerStatIndex(pr Provider) int {
	if pr.IsBase() {
		return 0
	}
	return pr.TaggedIndex() + 1
}

func (p *Predictor) bumpResetCtr(delta int) {
	if delta > 0 {
		if p.resetCtr < resetCtrMax {
			p.resetCtr++
		}
		return
	}
	if p.resetCtr > 0 {
		p.resetCtr--
	}
}

// allocate implements spec §4.7.3. Returns whether a new entry was
// installed.
func (p *Predictor) allocate(pc uint64, pred Prediction, resolved outcome.Outcome) bool {
	if !pred.provider.IsBase() && pred.provider.TaggedIndex() == 0 {
		// Provider is already the longest-history component: no component
		// has a longer history to allocate into.
		p.allocFail++
		return false
	}

	var candidates []int
	if pred.provider.IsBase() {
		for i := range p.tagged {
			candidates = append(candidates, i)
		}
	} else {
		for i := 0; i < pred.provider.TaggedIndex(); i++ {
			candidates = append(candidates, i)
		}
	}

	type eligible struct {
		componentIdx int
		tblIdx       uint64
		tag          uint64
	}
	var elig []eligible
	for _, j := range candidates {
		idx, tag, entry, _ := p.tagged[j].Lookup(pc)
		if entry.Useful == 0 {
			elig = append(elig, eligible{componentIdx: j, tblIdx: idx, tag: tag})
		}
	}

	if len(elig) == 0 {
		p.allocFail++
		return false
	}

	chosen := elig[0]
	if len(elig) > 1 {
		weights := make([]uint64, len(elig))
		for i, e := range elig {
			weights[i] = uint64(1) << uint(e.componentIdx)
		}
		pick := randsrc.WeightedChoice(p.rand, weights)
		if pick < 0 {
			pick = 0
		}
		chosen = elig[pick]
	}

	p.tagged[chosen.componentIdx].Allocate(chosen.tblIdx, chosen.tag, resolved, p.clock, pc)
	p.allocSucc++
	p.allocHit[chosen.componentIdx]++
	return true
}

// UpdateHistory fans out a single-bit GHR shift to every tagged
// component's CSR (spec §4.7.4). The driver must call this exactly once
// per dynamic branch (conditional or not), after shifting ghr by one and
// writing the resolved outcome into bit 0.
func (p *Predictor) UpdateHistory(ghr *history.GHR) {
	for _, t := range p.tagged {
		t.UpdateHistory(ghr)
	}
}

// StorageBits reports the predictor's approximate total storage footprint
// in bits: the base component plus every tagged component (spec §6).
func (p *Predictor) StorageBits() int {
	total := p.base.StorageBits()
	for _, t := range p.tagged {
		total += t.StorageBits()
	}
	return total
}
