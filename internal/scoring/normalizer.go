package scoring

import (
	"math"

	"ecoscope/internal/models"
)

// StdevFloor clamps the standardization denominator away from zero.
const StdevFloor = 1e-6

// Standardize maps a raw sub-model score onto the common scale using the
// region's historical baseline. Pure function of its inputs, so repeated
// normalization of the same score is idempotent.
func Standardize(dimension string, raw float64, b models.Baseline) models.NormalizedScore {
	stdev := math.Max(b.Stdev, StdevFloor)
	return models.NormalizedScore{
		Dimension:         dimension,
		StandardizedValue: (raw - b.Mean) / stdev,
		BaselineMean:      b.Mean,
		BaselineStdev:     stdev,
	}
}

// RiskLevel derives the risk band from the baseline's quantiles rather than
// hardcoded cuts, so refreshed baselines shift the thresholds with them.
// At or above the 75th percentile is high, at or above the median is medium.
func RiskLevel(score float64, b models.Baseline) string {
	if q75, ok := b.Quantiles[75]; ok && score >= q75 {
		return models.RiskHigh
	}
	if q50, ok := b.Quantiles[50]; ok && score >= q50 {
		return models.RiskMedium
	}
	return models.RiskLow
}
