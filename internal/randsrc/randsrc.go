// Package randsrc provides the single source of nondeterminism TAGE needs:
// the weighted draw used to break ties during allocation (spec §4.7.3 step
// 6, §5 "Counters' RNG ... must be seeded or made reproducible for
// deterministic tests", §9 "Provide it as a configuration field").
package randsrc

import "golang.org/x/exp/rand"

// Source produces a bounded pseudo-random integer in [0, n). Callers
// supply their own implementation (e.g. in tests, a fixed sequence) so the
// allocation policy is reproducible.
type Source interface {
	Intn(n int) int
}

// Seeded wraps golang.org/x/exp/rand behind a fixed seed, giving
// reproducible runs without a dependency on wall-clock time.
type Seeded struct {
	rng *rand.Rand
}

// NewSeeded builds a Source seeded deterministically from seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

func (s *Seeded) Intn(n int) int {
	return s.rng.Intn(n)
}

// WeightedChoice draws an index into weights with probability proportional
// to weights[i]. Returns -1 if every weight is zero (no eligible
// candidate). This is the "stable weighted choice" spec §4.7.3 step 6
// requires: a single draw over the prefix-summed weight space, so results
// are reproducible given the same Source sequence.
func WeightedChoice(src Source, weights []uint64) int {
	var total uint64
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return -1
	}
	draw := uint64(src.Intn(int(total)))
	var cum uint64
	for i, w := range weights {
		cum += w
		if draw < cum {
			return i
		}
	}
	return len(weights) - 1
}
