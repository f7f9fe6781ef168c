package component

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/suprax-research/tagesim/counter"
	"github.com/suprax-research/tagesim/outcome"
)

func TestBasePredictUpdate(t *testing.T) {
	b, err := NewBase(BaseConfig{
		Size:       16,
		CounterCfg: counter.Config{TakenLimit: 4, NotTakenLimit: 4, Default: outcome.NotTaken},
	})
	require.NoError(t, err)

	require.Equal(t, outcome.NotTaken, b.Predict(5))
	for i := 0; i < 5; i++ {
		b.Update(5, outcome.Taken)
	}
	require.Equal(t, outcome.Taken, b.Predict(5))
}

func TestBaseIndexIsMaskedToSize(t *testing.T) {
	b, err := NewBase(BaseConfig{
		Size:       8,
		CounterCfg: counter.Config{TakenLimit: 2, NotTakenLimit: 2, Default: outcome.NotTaken},
	})
	require.NoError(t, err)
	require.Less(t, b.Index(0xFFFF), uint64(8))
}

func TestBaseRejectsBadSize(t *testing.T) {
	_, err := NewBase(BaseConfig{Size: 3, CounterCfg: counter.Config{TakenLimit: 2, NotTakenLimit: 2}})
	require.Error(t, err)
}

func TestBaseStorageBits(t *testing.T) {
	b, err := NewBase(BaseConfig{
		Size:       16,
		CounterCfg: counter.Config{TakenLimit: 4, NotTakenLimit: 4, Default: outcome.NotTaken},
	})
	require.NoError(t, err)
	require.Equal(t, 16*5, b.StorageBits()) // 16 entries x (2+2+1) bits
}

// TestScenario_PeriodFourPattern: a base-only predictor (single counter,
// since every PC in this test maps to the same address) cannot exactly
// track a period-4 NNNT pattern, but should still clear a 0.74 steady-state
// hit rate over 1024 repetitions.
func TestScenario_PeriodFourPattern(t *testing.T) {
	b, err := NewBase(BaseConfig{
		Size:       1,
		CounterCfg: counter.Config{TakenLimit: 4, NotTakenLimit: 4, Default: outcome.NotTaken},
	})
	require.NoError(t, err)

	pattern := []outcome.Outcome{outcome.NotTaken, outcome.NotTaken, outcome.NotTaken, outcome.Taken}
	const pc = 0
	hits := 0
	total := 0
	for rep := 0; rep < 1024; rep++ {
		for _, o := range pattern {
			if b.Predict(pc) == o {
				hits++
			}
			b.Update(pc, o)
			total++
		}
	}

	require.GreaterOrEqual(t, float64(hits)/float64(total), 0.74)
}
