package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/suprax-research/tagesim/internal/randsrc"
)

const sampleYAML = `
ghr_length: 64
base:
  size: 16
  counter:
    taken_limit: 4
    not_taken_limit: 4
    default: not_taken
tagged:
  - size: 32
    lo: 0
    hi: 7
    tag_bits: 10
    useful_bits: 2
    counter:
      taken_limit: 8
      not_taken_limit: 8
      default: not_taken
  - size: 32
    lo: 0
    hi: 31
    tag_bits: 10
    useful_bits: 2
    counter:
      taken_limit: 8
      not_taken_limit: 8
      default: not_taken
`

func TestLoadFromInMemoryFilesystem(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/predictor.yaml", []byte(sampleYAML), 0o644))

	p, err := Load(fs, "/predictor.yaml")
	require.NoError(t, err)
	require.Equal(t, 64, p.GHRLength)
	require.Equal(t, 16, p.Base.Size)
	require.Len(t, p.Tagged, 2)
	require.Equal(t, 31, p.Tagged[1].Hi)
}

func TestLoadMissingFileFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Load(fs, "/does-not-exist.yaml")
	require.Error(t, err)
}

func TestBuildConstructsAWorkingPredictor(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/predictor.yaml", []byte(sampleYAML), 0o644))

	p, err := Load(fs, "/predictor.yaml")
	require.NoError(t, err)

	pred, err := p.Build(randsrc.NewSeeded(1), nil)
	require.NoError(t, err)
	require.Equal(t, []int{31, 7}, pred.TaggedHistoryLengths())
}

func TestBuildRejectsBadCounterDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	raw := `
ghr_length: 8
base:
  size: 4
  counter:
    taken_limit: 2
    not_taken_limit: 2
    default: sideways
tagged:
  - size: 4
    lo: 0
    hi: 3
    tag_bits: 4
    useful_bits: 1
    counter:
      taken_limit: 2
      not_taken_limit: 2
      default: not_taken
`
	require.NoError(t, afero.WriteFile(fs, "/bad.yaml", []byte(raw), 0o644))
	p, err := Load(fs, "/bad.yaml")
	require.NoError(t, err)

	_, err = p.Build(randsrc.NewSeeded(1), nil)
	require.Error(t, err)
}
