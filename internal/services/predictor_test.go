package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ecoscope/internal/envdata"
	"ecoscope/internal/explain"
	"ecoscope/internal/features"
	"ecoscope/internal/models"
	"ecoscope/internal/narrative"
	"ecoscope/internal/registry"
	"ecoscope/internal/runners"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	snapshot *envdata.Snapshot
}

func (s *staticSource) Fetch(ctx context.Context, lat, lon float64, date time.Time) (*envdata.Snapshot, error) {
	return s.snapshot, nil
}

func (s *staticSource) Ping(ctx context.Context) error { return nil }

func fullSnapshot(base float64) *envdata.Snapshot {
	snapshot := &envdata.Snapshot{Variables: make(map[string]envdata.Series)}
	for _, v := range features.Variables {
		current := base
		history := make(map[string]*float64)
		for _, lag := range features.Lags {
			value := base - float64(lag)
			history[jsonKey(lag)] = &value
		}
		snapshot.Variables[v] = envdata.Series{Current: &current, History: history}
	}
	return snapshot
}

func jsonKey(lag int) string {
	switch lag {
	case 1:
		return "1"
	case 3:
		return "3"
	case 6:
		return "6"
	default:
		return "12"
	}
}

func writeModelArtifacts(t *testing.T, dir, region string) {
	t.Helper()

	ensemble := runners.TreeEnsemble{
		ID:         region + "-climate-v1",
		BaseScore:  0.3,
		Confidence: 0.9,
		Trees: []runners.Tree{{Nodes: []runners.TreeNode{
			{Feature: "temperature_current", Threshold: 10, Left: 1, Right: 2, Value: 0.2},
			{Left: -1, Right: -1, Value: 0.1},
			{Left: -1, Right: -1, Value: 0.4},
		}}},
	}
	data, err := json.Marshal(ensemble)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, region+"_climate.json"), data, 0o644))

	sequence := runners.SequenceModel{
		ID:         region + "-geo-v1",
		Bias:       0.1,
		Confidence: 0.8,
		Inputs: []runners.SequenceInput{{
			Variable: "vegetation_index",
			Weights:  []float64{0.01, 0.01, 0.01, 0.01, 0.02},
		}},
	}
	data, err = json.Marshal(sequence)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, region+"_geographic.json"), data, 0o644))
}

func newTestPredictor(t *testing.T, modelDir string) *Predictor {
	t.Helper()
	reg := registry.New(registry.DefaultProfiles(modelDir)...)
	engineer := features.NewEngineer(&staticSource{snapshot: fullSnapshot(20)}, time.Second)
	return NewPredictor(reg, engineer)
}

func TestPredictFullPipeline(t *testing.T) {
	dir := t.TempDir()
	for _, region := range []string{"london", "manchester", "birmingham"} {
		writeModelArtifacts(t, dir, region)
	}
	predictor := newTestPredictor(t, dir)

	query := models.Query{Latitude: 51.5, Longitude: -0.12, Month: 6}
	result, err := predictor.Predict(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, "london", result.Region.Name)
	assert.Len(t, result.Runners, 3)
	assert.Equal(t, 1.0, result.Vector.Completeness())

	outcome := result.Outcome
	assert.False(t, outcome.Degraded)
	require.NotNil(t, outcome.ClimateScore)
	require.NotNil(t, outcome.GeographicScore)
	require.NotNil(t, outcome.EconomicScore)

	// temperature_current = 20 > 10, so the tree yields 0.3 + 0.4.
	assert.InDelta(t, 0.7, *outcome.ClimateScore, 1e-12)

	var sum float64
	for _, c := range outcome.ComponentContributions {
		sum += c
	}
	assert.InDelta(t, outcome.FinalScore, sum, 1e-12)
	assert.NotEmpty(t, outcome.RiskLevel)
	assert.NotEmpty(t, outcome.TrendDirection)
}

func TestPredictDegradesWhenArtifactsMissing(t *testing.T) {
	// Empty model dir: climate and geographic cannot load, the economic
	// heuristic still scores.
	predictor := newTestPredictor(t, t.TempDir())

	query := models.Query{Latitude: 53.48, Longitude: -2.24, Month: 2}
	result, err := predictor.Predict(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, "manchester", result.Region.Name)
	outcome := result.Outcome
	assert.True(t, outcome.Degraded)
	assert.Nil(t, outcome.ClimateScore)
	assert.Nil(t, outcome.GeographicScore)
	require.NotNil(t, outcome.EconomicScore)
}

func TestPredictRejectsInvalidQuery(t *testing.T) {
	predictor := newTestPredictor(t, t.TempDir())

	_, err := predictor.Predict(context.Background(), models.Query{Latitude: 91, Month: 1})
	assert.ErrorIs(t, err, models.ErrInvalidQuery)
}

func TestExplainPipelineProducesArtifacts(t *testing.T) {
	dir := t.TempDir()
	for _, region := range []string{"london", "manchester", "birmingham"} {
		writeModelArtifacts(t, dir, region)
	}
	predictor := newTestPredictor(t, dir)

	pipeline := NewExplainPipeline(predictor, explain.NewEngine(0.01), narrative.NewGenerator(nil, time.Second))

	shapData, story, err := pipeline.Analyze(context.Background(), models.Query{Latitude: 51.5, Longitude: -0.12, Month: 6})
	require.NoError(t, err)

	var report models.AttributionReport
	require.NoError(t, json.Unmarshal([]byte(shapData), &report))
	assert.False(t, report.Unavailable)
	assert.NotEmpty(t, report.Dimensions)

	var decoded models.NarrativeStory
	require.NoError(t, json.Unmarshal([]byte(story), &decoded))
	assert.NotEmpty(t, decoded.Introduction)
	assert.True(t, decoded.Fallback)
}
