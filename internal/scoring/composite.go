package scoring

import (
	"ecoscope/internal/models"
)

// Weights are the fixed dimension weights. They sum to 1.0; when a
// dimension is unavailable the remaining weights are re-normalized so the
// composite invariants still hold.
var Weights = map[string]float64{
	models.DimensionClimate:    0.30,
	models.DimensionEconomic:   0.40,
	models.DimensionGeographic: 0.30,
}

// dimensionOrder fixes the summation order over the weight map. Float
// addition is not associative, so ranging over the map directly would let
// identical inputs produce different last-ulp results between calls.
var dimensionOrder = []string{
	models.DimensionClimate,
	models.DimensionEconomic,
	models.DimensionGeographic,
}

// NeutralBand bounds the "stable" trend region around zero.
const NeutralBand = 0.05

// Combine folds the available sub-model predictions into the composite
// outcome. Missing dimensions (nil or absent entries) flag the result as
// degraded; baselines supply both the standardized views and the dynamic
// risk thresholds.
func Combine(preds map[string]*models.SubModelPrediction, baselines map[string]models.Baseline, completeness float64) *models.CompositeOutcome {
	outcome := &models.CompositeOutcome{
		ComponentContributions: make(map[string]float64),
		Normalized:             make(map[string]models.NormalizedScore),
		DataCompleteness:       completeness,
	}

	var weightSum float64
	for _, dim := range dimensionOrder {
		if p, ok := preds[dim]; ok && p != nil {
			weightSum += Weights[dim]
		} else {
			outcome.Degraded = true
		}
	}
	if weightSum == 0 {
		outcome.RiskLevel = models.RiskLow
		outcome.TrendDirection = models.TrendStable
		return outcome
	}

	var confidence float64
	for _, dim := range dimensionOrder {
		p, ok := preds[dim]
		if !ok || p == nil {
			continue
		}
		w := Weights[dim] / weightSum
		contribution := w * p.RawValue
		outcome.ComponentContributions[dim] = contribution
		outcome.FinalScore += contribution
		confidence += w * p.Confidence

		if b, ok := baselines[dim]; ok {
			outcome.Normalized[dim] = Standardize(dim, p.RawValue, b)
		}

		score := p.RawValue
		switch dim {
		case models.DimensionClimate:
			outcome.ClimateScore = &score
		case models.DimensionGeographic:
			outcome.GeographicScore = &score
		case models.DimensionEconomic:
			outcome.EconomicScore = &score
		}
	}

	// Sub-model confidences are discounted by how much of the feature
	// vector was actually observed.
	outcome.ConfidenceScore = confidence * completeness

	outcome.RiskLevel = RiskLevel(outcome.FinalScore, baselines[models.DimensionComposite])
	switch {
	case outcome.FinalScore > NeutralBand:
		outcome.TrendDirection = models.TrendWorsening
	case outcome.FinalScore < -NeutralBand:
		outcome.TrendDirection = models.TrendImproving
	default:
		outcome.TrendDirection = models.TrendStable
	}

	return outcome
}
