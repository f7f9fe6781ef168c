// Package driver implements the collaborator sequence a branch-trace
// consumer must follow to use a tage.Predictor correctly (spec §6,
// "Collaborator interface (for trace drivers)"): predict, resolve, update
// the predictor, then update history — in that order, exactly once per
// dynamic branch. It owns no trace file format and no CLI; those are
// explicitly out of scope (see SPEC_FULL.md Non-goals).
package driver

import (
	"github.com/suprax-research/tagesim/history"
	"github.com/suprax-research/tagesim/outcome"
	"github.com/suprax-research/tagesim/tage"
)

// Branch is one dynamic conditional-branch event: the instruction address
// and its resolved (actual) direction. A driver normally gets a stream of
// these from a trace; this package only consumes them one at a time, it
// never reads trace files itself.
type Branch struct {
	PC      uint64
	Outcome outcome.Outcome
}

// Session wires a Predictor to a GHR and replays a branch stream against
// both in the required order, so callers don't have to remember the
// predict/update/shift/write sequence themselves.
type Session struct {
	pred *tage.Predictor
	ghr  *history.GHR
}

// NewSession builds a Session over an existing Predictor and GHR. The GHR
// length must match the length the Predictor was built with; this is the
// caller's responsibility since tage.Predictor does not expose its own
// GHR (each tagged component stores only its own folded projection).
func NewSession(pred *tage.Predictor, ghr *history.GHR) *Session {
	return &Session{pred: pred, ghr: ghr}
}

// Step runs one branch through the full predict/update/history cycle and
// reports whether the predictor's prediction was correct.
func (s *Session) Step(b Branch) (predicted outcome.Outcome, correct bool) {
	pred := s.pred.Predict(b.PC)
	s.pred.Update(b.PC, pred, b.Outcome)

	s.ghr.ShiftBy(1)
	s.ghr.SetBit(0, b.Outcome)
	s.pred.UpdateHistory(s.ghr)

	return pred.Outcome(), pred.Outcome() == b.Outcome
}

// Run replays an entire branch stream and returns the number of correct
// predictions.
func (s *Session) Run(branches []Branch) int {
	correct := 0
	for _, b := range branches {
		_, hit := s.Step(b)
		if hit {
			correct++
		}
	}
	return correct
}
