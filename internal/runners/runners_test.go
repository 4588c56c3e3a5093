package runners

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"ecoscope/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vector(pairs map[string]float64) *models.FeatureVector {
	names := make([]string, 0, len(pairs))
	values := make([]float64, 0, len(pairs))
	for name, value := range pairs {
		names = append(names, name)
		values = append(values, value)
	}
	return models.NewFeatureVector(names, values, 1.0)
}

// A two-level tree splitting on temperature_current at 10, then the left
// branch on humidity_current at 50.
func testTree() Tree {
	return Tree{Nodes: []TreeNode{
		{Feature: "temperature_current", Threshold: 10, Left: 1, Right: 2, Value: 0.5},
		{Feature: "humidity_current", Threshold: 50, Left: 3, Right: 4, Value: 0.3},
		{Left: -1, Right: -1, Value: 0.9},
		{Left: -1, Right: -1, Value: 0.1},
		{Left: -1, Right: -1, Value: 0.4},
	}}
}

func TestTreeWalk(t *testing.T) {
	tree := testTree()

	tests := []struct {
		name string
		fv   *models.FeatureVector
		want float64
	}{
		{"right branch", vector(map[string]float64{"temperature_current": 15}), 0.9},
		{"left then left", vector(map[string]float64{"temperature_current": 5, "humidity_current": 40}), 0.1},
		{"left then right", vector(map[string]float64{"temperature_current": 5, "humidity_current": 60}), 0.4},
		{"threshold goes left", vector(map[string]float64{"temperature_current": 10, "humidity_current": 60}), 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tree.Walk(tt.fv))
		})
	}
}

func TestTreeEnsemblePredict(t *testing.T) {
	model := &TreeEnsemble{
		ID:         "climate-test",
		BaseScore:  0.2,
		Confidence: 0.9,
		Trees:      []Tree{testTree(), testTree()},
	}
	fv := vector(map[string]float64{"temperature_current": 15})

	assert.InDelta(t, 0.2+0.9+0.9, model.Predict(fv), 1e-12)

	runner := NewClimateRunner(model)
	raw, confidence, err := runner.Score(fv)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, raw, 1e-12)
	assert.Equal(t, 0.9, confidence)
	assert.Equal(t, models.DimensionClimate, runner.Dimension())
	assert.Equal(t, "climate-test", runner.ModelID())
}

func TestClimateRunnerWithoutModel(t *testing.T) {
	runner := NewClimateRunner(nil)
	_, _, err := runner.Score(vector(nil))
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestSequenceModelPredict(t *testing.T) {
	model := &SequenceModel{
		ID:         "geo-test",
		Bias:       0.1,
		Confidence: 0.8,
		Inputs: []SequenceInput{
			{
				Variable: "temperature",
				Weights:  []float64{0.1, 0.1, 0.1, 0.1, 0.2},
				Baseline: []float64{1, 1, 1, 1, 1},
			},
		},
	}
	fv := vector(map[string]float64{
		"temperature_lag_12m": 1,
		"temperature_lag_6m":  2,
		"temperature_lag_3m":  3,
		"temperature_lag_1m":  4,
		"temperature_current": 5,
	})

	// 0.1 + 0.1*1 + 0.1*2 + 0.1*3 + 0.1*4 + 0.2*5
	assert.InDelta(t, 2.1, model.Predict(fv), 1e-12)

	runner := NewGeographicRunner(model)
	raw, confidence, err := runner.Score(fv)
	require.NoError(t, err)
	assert.InDelta(t, 2.1, raw, 1e-12)
	assert.Equal(t, 0.8, confidence)
}

func TestLoadSequenceModelRejectsBadArity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geo.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"model_id": "geo-bad",
		"inputs": [{"variable": "temperature", "weights": [0.1]}]
	}`), 0o644))

	_, err := LoadSequenceModel(path)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestLoadTreeEnsembleRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "climate.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model_id": "empty", "trees": []}`), 0o644))

	_, err := LoadTreeEnsemble(path)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestEconomicRunnerScore(t *testing.T) {
	region := &models.RegionProfile{
		Name: "testville",
		Economic: map[string]models.EconomicIndicator{
			"life_expectancy": {Value: 82, Mean: 80, Stdev: 2},   // z = 1
			"population":      {Value: 9, Mean: 10, Stdev: 0.5},  // z = -2
			"infrastructure":  {Value: 0.8, Mean: 0.8, Stdev: 1}, // z = 0
		},
	}
	runner := NewEconomicRunner(region)

	raw, confidence, err := runner.Score(nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.40*1+0.35*(-2)+0.25*0, raw, 1e-12)
	assert.Equal(t, 1.0, confidence)

	contributions := runner.Contributions()
	assert.InDelta(t, 0.40, contributions["life_expectancy"], 1e-12)
	assert.InDelta(t, -0.70, contributions["population"], 1e-12)
}

func TestEconomicRunnerScoreIsBitIdentical(t *testing.T) {
	region := &models.RegionProfile{
		Name: "testville",
		Economic: map[string]models.EconomicIndicator{
			"life_expectancy": {Value: 81.3, Mean: 81.6, Stdev: 1.1},
			"population":      {Value: 8.98, Mean: 8.80, Stdev: 0.40},
			"infrastructure":  {Value: 0.86, Mean: 0.84, Stdev: 0.05},
		},
	}
	runner := NewEconomicRunner(region)

	first, _, err := runner.Score(nil)
	require.NoError(t, err)
	want := math.Float64bits(first)

	for i := 0; i < 5000; i++ {
		raw, _, err := runner.Score(nil)
		require.NoError(t, err)
		require.Equal(t, want, math.Float64bits(raw), "run %d", i)
	}
}

func TestEconomicRunnerZeroStdevClamped(t *testing.T) {
	region := &models.RegionProfile{
		Name: "testville",
		Economic: map[string]models.EconomicIndicator{
			"life_expectancy": {Value: 80, Mean: 80, Stdev: 0},
		},
	}
	raw, _, err := NewEconomicRunner(region).Score(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, raw)
}

func TestEconomicRunnerWithoutIndicators(t *testing.T) {
	_, _, err := NewEconomicRunner(&models.RegionProfile{Name: "bare"}).Score(nil)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}
