// Package counter implements the saturating two-direction confidence
// counter that backs every predictor table entry (base or tagged).
//
// Unlike a classic symmetric 2-bit bimodal counter, strength is bounded
// independently per direction: a counter predicting taken can saturate at a
// different limit than one predicting not-taken. This lets a tagged
// component and the base component share the same type while using
// different counter widths (spec §3, §4.1).
package counter

import "github.com/suprax-research/tagesim/outcome"

// Config fixes the two saturation limits and the counter's reset direction.
// Limit is exclusive — strength ranges over [0, Limit).
type Config struct {
	TakenLimit    uint8
	NotTakenLimit uint8
	Default       outcome.Outcome
}

// limit returns the strength ceiling for the given direction.
func (c Config) limit(dir outcome.Outcome) uint8 {
	if dir == outcome.Taken {
		return c.TakenLimit - 1
	}
	return c.NotTakenLimit - 1
}

// Counter is a (direction, strength) pair. The zero value is not usable on
// its own — construct with New, which applies a Config's default direction.
type Counter struct {
	cfg      Config
	direction outcome.Outcome
	strength  uint8
}

// New builds a counter at its configured default direction, strength 0.
func New(cfg Config) Counter {
	return Counter{cfg: cfg, direction: cfg.Default, strength: 0}
}

// Predict returns the counter's current direction. Pure; never mutates.
func (c *Counter) Predict() outcome.Outcome {
	return c.direction
}

// Strength returns the current confidence strength, always <= the limit for
// the current direction (invariant P1).
func (c *Counter) Strength() uint8 {
	return c.strength
}

// Strengthen increments strength toward the current direction's limit,
// clamping at that limit.
func (c *Counter) Strengthen() {
	if max := c.cfg.limit(c.direction); c.strength < max {
		c.strength++
	}
}

// Weaken decrements strength; if strength is already zero, it flips the
// direction instead and leaves strength at zero. This asymmetric rule is
// what lets a one-state (Limit=1 both sides) counter behave as a classic
// one-bit predictor: a single Weaken flips it.
func (c *Counter) Weaken() {
	if c.strength > 0 {
		c.strength--
		return
	}
	c.direction = c.direction.Negate()
	c.strength = 0
}

// Update strengthens if the counter already predicted o, otherwise weakens.
func (c *Counter) Update(o outcome.Outcome) {
	if c.Predict() == o {
		c.Strengthen()
	} else {
		c.Weaken()
	}
}

// SetDirection forces the direction without touching strength. Strength is
// re-clamped to the new direction's limit if it no longer fits.
func (c *Counter) SetDirection(o outcome.Outcome) {
	c.direction = o
	if max := c.cfg.limit(c.direction); c.strength > max {
		c.strength = max
	}
}

// SetStrength writes strength, clamped to the current direction's limit.
func (c *Counter) SetStrength(v uint8) {
	if max := c.cfg.limit(c.direction); v > max {
		v = max
	}
	c.strength = v
}

// Reset restores the counter to its configured default direction and zero
// strength (round-trip property R1).
func (c *Counter) Reset() {
	c.direction = c.cfg.Default
	c.strength = 0
}

// StorageBits returns ⌈log₂ L_T⌉ + ⌈log₂ L_N⌉ + 1 bits: the strength range
// needed for each direction's limit, plus one direction bit (spec §4.1).
func (c Config) StorageBits() int {
	return ceilLog2(c.TakenLimit) + ceilLog2(c.NotTakenLimit) + 1
}

func ceilLog2(n uint8) int {
	if n <= 1 {
		return 0
	}
	bits := 0
	v := int(n) - 1
	for v > 0 {
		bits++
		v >>= 1
	}
	return bits
}
