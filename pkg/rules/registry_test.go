// pkg/rules/registry_test.go
package rules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_WeightsSumToOne(t *testing.T) {
	rs := Default()

	w := rs.CombineWeights
	assert.InDelta(t, 1.0, w.Similarity+w.Quality+w.Fit+w.HistoricalFit, 0.0001)

	f := rs.FitWeights
	assert.InDelta(t, 1.0, f.Sector+f.Stage+f.CheckSize+f.Pattern+f.TrackRecord, 0.0001)
}

func TestDefault_CapsMatchTotal(t *testing.T) {
	caps := Default().QualityCaps
	sum := caps.Team + caps.Traction + caps.Market + caps.Product +
		caps.Vision + caps.Ecosystem + caps.Grit + caps.Validation
	assert.Equal(t, caps.CapTotal, sum)
}

func TestDefault_PassesItsOwnSchema(t *testing.T) {
	data, err := json.Marshal(Default())
	require.NoError(t, err)
	assert.NoError(t, Validate(data))
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	rs, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Thresholds.MinMatchScore, rs.Thresholds.MinMatchScore)
}

func TestLoad_ValidOverride(t *testing.T) {
	override := Default()
	override.Thresholds.SimilarityAdmission = 0.4
	data, err := json.Marshal(override)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ruleset.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	rs, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.4, rs.Thresholds.SimilarityAdmission)
}

func TestLoad_RejectsInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ruleset.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": ""}`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_RejectsOutOfRangeWeights(t *testing.T) {
	override := Default()
	override.CombineWeights.Similarity = 1.5
	data, err := json.Marshal(override)
	require.NoError(t, err)

	assert.Error(t, Validate(data))
}
