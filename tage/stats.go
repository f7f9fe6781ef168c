package tage

// Stats is a read-only snapshot of predictor-owned aggregate statistics
// (spec §3, §6 "Observable statistics"). There is no global/singleton
// state: every Predictor owns its own Stats.
type Stats struct {
	UpdateClock uint64
	ResetCtr    uint8

	AllocSuccess uint64
	AllocFailure uint64
	UsefulResets uint64

	// Hits/Misses are indexed by provider: index 0 is the base component,
	// index i+1 is the i-th tagged component (longest-history-first).
	Hits   []uint64
	Misses []uint64

	// AllocationsByComponent[i] counts successful allocations landing in
	// tagged component i.
	AllocationsByComponent []uint64

	StorageBits int
}

// Stats returns a snapshot of the predictor's current statistics.
func (p *Predictor) Stats() Stats {
	hits := make([]uint64, len(p.hits))
	copy(hits, p.hits)
	misses := make([]uint64, len(p.misses))
	copy(misses, p.misses)
	allocs := make([]uint64, len(p.allocHit))
	copy(allocs, p.allocHit)

	return Stats{
		UpdateClock:            p.clock,
		ResetCtr:               p.resetCtr,
		AllocSuccess:           p.allocSucc,
		AllocFailure:           p.allocFail,
		UsefulResets:           p.usefulResets,
		Hits:                   hits,
		Misses:                 misses,
		AllocationsByComponent: allocs,
		StorageBits:            p.StorageBits(),
	}
}
