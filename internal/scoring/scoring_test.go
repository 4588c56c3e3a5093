package scoring

import (
	"math"
	"testing"

	"ecoscope/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, w := range Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestStandardize(t *testing.T) {
	b := models.Baseline{Mean: 0.70, Stdev: 0.10}
	n := Standardize(models.DimensionClimate, 0.994, b)

	assert.InDelta(t, 2.94, n.StandardizedValue, 1e-9)
	assert.Equal(t, 0.70, n.BaselineMean)
	assert.Equal(t, 0.10, n.BaselineStdev)

	// Idempotent: same inputs, same output.
	assert.Equal(t, n, Standardize(models.DimensionClimate, 0.994, b))
}

func TestStandardizeZeroStdevClamped(t *testing.T) {
	n := Standardize(models.DimensionClimate, 1.0, models.Baseline{Mean: 0.5, Stdev: 0})
	assert.Equal(t, StdevFloor, n.BaselineStdev)
	assert.False(t, math.IsInf(n.StandardizedValue, 0))
}

func TestRiskLevelThresholdsAreInclusive(t *testing.T) {
	b := models.Baseline{Quantiles: map[int]float64{25: 0.27, 50: 0.38, 75: 0.49}}

	tests := []struct {
		score float64
		want  string
	}{
		{0.10, models.RiskLow},
		{0.3799, models.RiskLow},
		{0.38, models.RiskMedium},
		{0.45, models.RiskMedium},
		{0.49, models.RiskHigh},
		{0.80, models.RiskHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevel(tt.score, b), "score %v", tt.score)
	}
}

func prediction(dim string, raw, confidence float64) *models.SubModelPrediction {
	return &models.SubModelPrediction{Dimension: dim, RawValue: raw, Confidence: confidence, ModelIdentifier: dim + "-test"}
}

func fullBaselines() map[string]models.Baseline {
	return map[string]models.Baseline{
		models.DimensionClimate:    {Mean: 0.70, Stdev: 0.10, Quantiles: map[int]float64{25: 0.63, 50: 0.70, 75: 0.77}},
		models.DimensionGeographic: {Mean: 0.55, Stdev: 0.12, Quantiles: map[int]float64{25: 0.47, 50: 0.55, 75: 0.63}},
		models.DimensionEconomic:   {Mean: 0.00, Stdev: 0.35, Quantiles: map[int]float64{25: -0.24, 50: 0.00, 75: 0.24}},
		models.DimensionComposite:  {Mean: 0.38, Stdev: 0.16, Quantiles: map[int]float64{25: 0.27, 50: 0.38, 75: 0.49}},
	}
}

func TestCombineWeightedSum(t *testing.T) {
	preds := map[string]*models.SubModelPrediction{
		models.DimensionClimate:    prediction(models.DimensionClimate, 0.994, 0.9),
		models.DimensionGeographic: prediction(models.DimensionGeographic, 0.694, 0.8),
		models.DimensionEconomic:   prediction(models.DimensionEconomic, -0.144, 1.0),
	}

	outcome := Combine(preds, fullBaselines(), 1.0)

	// 0.3*0.994 + 0.3*0.694 + 0.4*(-0.144)
	assert.InDelta(t, 0.4488, outcome.FinalScore, 1e-9)
	assert.False(t, outcome.Degraded)

	require.NotNil(t, outcome.ClimateScore)
	assert.Equal(t, 0.994, *outcome.ClimateScore)
	require.NotNil(t, outcome.GeographicScore)
	require.NotNil(t, outcome.EconomicScore)

	// Contributions sum exactly to the final score.
	var sum float64
	for _, c := range outcome.ComponentContributions {
		sum += c
	}
	assert.InDelta(t, outcome.FinalScore, sum, 1e-12)

	// Confidence is the weighted sub-model confidence at full completeness.
	assert.InDelta(t, 0.3*0.9+0.3*0.8+0.4*1.0, outcome.ConfidenceScore, 1e-9)

	// 0.4488 sits between the composite median (0.38) and q75 (0.49).
	assert.Equal(t, models.RiskMedium, outcome.RiskLevel)
	assert.Equal(t, models.TrendWorsening, outcome.TrendDirection)

	// Standardized views are exposed per dimension.
	assert.InDelta(t, 2.94, outcome.Normalized[models.DimensionClimate].StandardizedValue, 1e-9)
}

func TestCombineIsBitIdentical(t *testing.T) {
	baselines := fullBaselines()
	build := func() map[string]*models.SubModelPrediction {
		return map[string]*models.SubModelPrediction{
			models.DimensionClimate:    prediction(models.DimensionClimate, 0.994, 0.9),
			models.DimensionGeographic: prediction(models.DimensionGeographic, 0.694, 0.8),
			models.DimensionEconomic:   prediction(models.DimensionEconomic, -0.144, 1.0),
		}
	}

	first := Combine(build(), baselines, 1.0)
	wantFinal := math.Float64bits(first.FinalScore)
	wantConfidence := math.Float64bits(first.ConfidenceScore)

	// Float addition is order-sensitive, so the summation order must be
	// fixed: same inputs, same bits, every time.
	for i := 0; i < 5000; i++ {
		outcome := Combine(build(), baselines, 1.0)
		require.Equal(t, wantFinal, math.Float64bits(outcome.FinalScore), "run %d", i)
		require.Equal(t, wantConfidence, math.Float64bits(outcome.ConfidenceScore), "run %d", i)
	}
}

func TestCombineDegradedRenormalizesWeights(t *testing.T) {
	preds := map[string]*models.SubModelPrediction{
		models.DimensionGeographic: prediction(models.DimensionGeographic, 0.5, 0.8),
		models.DimensionEconomic:   prediction(models.DimensionEconomic, 0.5, 1.0),
	}

	outcome := Combine(preds, fullBaselines(), 1.0)

	assert.True(t, outcome.Degraded)
	assert.Nil(t, outcome.ClimateScore)

	// Remaining weights re-normalize to sum 1, so a uniform raw score of
	// 0.5 yields exactly 0.5.
	assert.InDelta(t, 0.5, outcome.FinalScore, 1e-12)

	var weightSum float64
	for dim, c := range outcome.ComponentContributions {
		weightSum += c / preds[dim].RawValue
	}
	assert.InDelta(t, 1.0, weightSum, 1e-6)
}

func TestCombineCompletenessDiscountsConfidence(t *testing.T) {
	preds := map[string]*models.SubModelPrediction{
		models.DimensionClimate:    prediction(models.DimensionClimate, 0.5, 1.0),
		models.DimensionGeographic: prediction(models.DimensionGeographic, 0.5, 1.0),
		models.DimensionEconomic:   prediction(models.DimensionEconomic, 0.5, 1.0),
	}

	outcome := Combine(preds, fullBaselines(), 0.6)
	assert.InDelta(t, 0.6, outcome.ConfidenceScore, 1e-9)
	assert.Equal(t, 0.6, outcome.DataCompleteness)
}

func TestCombineTrendBand(t *testing.T) {
	baselines := fullBaselines()

	tests := []struct {
		raw  float64
		want string
	}{
		{0.2, models.TrendWorsening},
		{0.05, models.TrendStable},
		{0.0, models.TrendStable},
		{-0.05, models.TrendStable},
		{-0.2, models.TrendImproving},
	}
	for _, tt := range tests {
		preds := map[string]*models.SubModelPrediction{
			models.DimensionClimate:    prediction(models.DimensionClimate, tt.raw, 1.0),
			models.DimensionGeographic: prediction(models.DimensionGeographic, tt.raw, 1.0),
			models.DimensionEconomic:   prediction(models.DimensionEconomic, tt.raw, 1.0),
		}
		outcome := Combine(preds, baselines, 1.0)
		assert.Equal(t, tt.want, outcome.TrendDirection, "raw %v", tt.raw)
	}
}

func TestCombineNoPredictions(t *testing.T) {
	outcome := Combine(nil, fullBaselines(), 0)

	assert.True(t, outcome.Degraded)
	assert.Equal(t, 0.0, outcome.FinalScore)
	assert.Equal(t, 0.0, outcome.ConfidenceScore)
	assert.Equal(t, models.RiskLow, outcome.RiskLevel)
	assert.Equal(t, models.TrendStable, outcome.TrendDirection)
}
