package tage

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/suprax-research/tagesim/component"
	"github.com/suprax-research/tagesim/internal/randsrc"
	"go.uber.org/zap"
)

// Config is a predictor-configuration value (spec §6, "Construction"): one
// base configuration and an ordered list of tagged-component
// configurations. The list need not already be sorted by history length —
// Build sorts it (longest-history-first) and reports the chosen ordering.
type Config struct {
	GHRLength int
	Base      component.BaseConfig
	Tagged    []component.TaggedConfig

	// RandSource drives allocation tie-breaking (spec §4.7.3 step 6). If
	// nil, Build supplies a seeded, reproducible default and logs that it
	// did so — a silently time-seeded default would break the
	// reproducible-test requirement in spec §5.
	RandSource randsrc.Source

	// Logger receives construction and periodic-reset diagnostics. A nil
	// Logger defaults to a no-op logger so library use never produces
	// unwanted output.
	Logger *zap.SugaredLogger
}

func (c Config) validate() error {
	if c.GHRLength <= 0 {
		return errors.New("tage: config: GHRLength must be positive")
	}
	if len(c.Tagged) == 0 {
		return errors.New("tage: config: at least one tagged component is required")
	}
	return nil
}

// Build validates cfg and constructs a Predictor. All errors returned here
// are configuration errors (spec §7): they are surfaced at construction,
// never at runtime.
func Build(cfg Config) (*Predictor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	rng := cfg.RandSource
	if rng == nil {
		logger.Warn("tage: no RandSource configured, defaulting to a fixed seed (reproducible but not user-chosen)")
		rng = randsrc.NewSeeded(1)
	}

	base, err := component.NewBase(cfg.Base)
	if err != nil {
		return nil, errors.Wrap(err, "tage: base component")
	}

	type built struct {
		c *component.Tagged
	}
	all := make([]built, len(cfg.Tagged))
	for i, tc := range cfg.Tagged {
		tg, err := component.NewTagged(tc, cfg.GHRLength)
		if err != nil {
			return nil, errors.Wrapf(err, "tage: tagged component %d", i)
		}
		all[i] = built{c: tg}
	}

	// Reorder longest-history-first (spec §6: "it may reorder the tagged
	// components into longest-history-first order and must report its
	// chosen ordering"). Stable so equal-length components keep their
	// input relative order (spec P6: the ordering, once chosen, is then
	// stable for the predictor's lifetime).
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].c.HistoryLen() > all[j].c.HistoryLen()
	})

	tagged := make([]*component.Tagged, len(all))
	historyLens := make([]int, len(all))
	for i, b := range all {
		tagged[i] = b.c
		historyLens[i] = b.c.HistoryLen()
	}
	logger.Infow("tage: predictor constructed", "numTagged", len(tagged), "historyLengths", historyLens)

	p := &Predictor{
		base:     base,
		tagged:   tagged,
		rand:     rng,
		log:      logger,
		hits:     make([]uint64, len(tagged)+1),
		misses:   make([]uint64, len(tagged)+1),
		allocHit: make([]uint64, len(tagged)),
	}
	return p, nil
}
