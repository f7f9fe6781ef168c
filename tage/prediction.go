package tage

import "github.com/suprax-research/tagesim/outcome"

// Prediction is the immutable value Predict returns and the matching
// Update consumes (spec §3, "Prediction record"). It is opaque to callers
// beyond its Outcome: Update uses the provider fields to locate and mutate
// the providing entry without recomputing hashes, and the alternate's
// outcome to decide the usefulness increment; the alternate's entry itself
// is never mutated.
type Prediction struct {
	provider      Provider
	outcome       outcome.Outcome
	providerIndex uint64
	providerTag   uint64

	altProvider Provider
	altOutcome  outcome.Outcome
	altIndex    uint64
	altTag      uint64
}

// Outcome returns the predicted direction.
func (p Prediction) Outcome() outcome.Outcome {
	return p.outcome
}

// Provider returns which component supplied this prediction. Exposed for
// diagnostics/tests; not required for the predict/update round trip.
func (p Prediction) Provider() Provider {
	return p.provider
}
