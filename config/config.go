// Package config loads predictor configuration from YAML (spec §6,
// "Construction may be supplied programmatically or loaded from a
// configuration source"). It is a thin convenience layer: it owns no
// trace/wire format and does nothing Build itself couldn't do with a
// programmatically constructed tage.Config.
package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/suprax-research/tagesim/component"
	"github.com/suprax-research/tagesim/counter"
	"github.com/suprax-research/tagesim/internal/randsrc"
	"github.com/suprax-research/tagesim/outcome"
	"github.com/suprax-research/tagesim/tage"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Counter mirrors counter.Config in a YAML-friendly shape.
type Counter struct {
	TakenLimit    uint8  `yaml:"taken_limit"`
	NotTakenLimit uint8  `yaml:"not_taken_limit"`
	Default       string `yaml:"default"` // "taken" or "not_taken"
}

func (c Counter) toCounterConfig() (counter.Config, error) {
	var def outcome.Outcome
	switch c.Default {
	case "", "not_taken":
		def = outcome.NotTaken
	case "taken":
		def = outcome.Taken
	default:
		return counter.Config{}, errors.Errorf("config: counter default %q must be \"taken\" or \"not_taken\"", c.Default)
	}
	return counter.Config{
		TakenLimit:    c.TakenLimit,
		NotTakenLimit: c.NotTakenLimit,
		Default:       def,
	}, nil
}

// Base mirrors component.BaseConfig.
type Base struct {
	Size    int     `yaml:"size"`
	Counter Counter `yaml:"counter"`
}

// Tagged mirrors component.TaggedConfig.
type Tagged struct {
	Size       int     `yaml:"size"`
	Lo         int     `yaml:"lo"`
	Hi         int     `yaml:"hi"`
	TagBits    int     `yaml:"tag_bits"`
	UsefulBits int     `yaml:"useful_bits"`
	Counter    Counter `yaml:"counter"`
}

// Predictor is the on-disk shape of a tage.Config (spec §6,
// "Construction"). Fields it omits (RandSource, Logger) are runtime
// collaborators, not serializable configuration (spec §5: "no hidden
// global state", but a RNG source and logger are supplied by the caller,
// not read from a file).
type Predictor struct {
	GHRLength int      `yaml:"ghr_length"`
	Base      Base     `yaml:"base"`
	Tagged    []Tagged `yaml:"tagged"`
}

// Build converts the loaded YAML shape into a tage.Config and constructs
// a predictor. rand and logger are the same runtime collaborators
// tage.Build accepts directly (nil defaults apply exactly as they do
// there) — they are runtime collaborators, not config-file content.
func (p Predictor) Build(rand randsrc.Source, logger *zap.SugaredLogger) (*tage.Predictor, error) {
	baseCounterCfg, err := p.Base.Counter.toCounterConfig()
	if err != nil {
		return nil, errors.Wrap(err, "config: base")
	}

	cfg := tage.Config{
		GHRLength:  p.GHRLength,
		RandSource: rand,
		Logger:     logger,
		Base: component.BaseConfig{
			Size:       p.Base.Size,
			CounterCfg: baseCounterCfg,
		},
	}

	for i, tc := range p.Tagged {
		counterCfg, err := tc.Counter.toCounterConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "config: tagged[%d]", i)
		}
		cfg.Tagged = append(cfg.Tagged, component.TaggedConfig{
			Size:       tc.Size,
			Lo:         tc.Lo,
			Hi:         tc.Hi,
			TagBits:    tc.TagBits,
			UsefulBits: tc.UsefulBits,
			CounterCfg: counterCfg,
		})
	}

	return tage.Build(cfg)
}

// Load reads and parses a YAML predictor configuration from fs. Using an
// afero.Fs (rather than os.ReadFile directly) lets tests supply an
// in-memory filesystem instead of touching disk, the same pattern the
// retrieval pack uses for config/genesis-file loading.
func Load(fs afero.Fs, path string) (Predictor, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return Predictor{}, errors.Wrapf(err, "config: reading %s", path)
	}

	var p Predictor
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Predictor{}, errors.Wrapf(err, "config: parsing %s", path)
	}
	return p, nil
}
