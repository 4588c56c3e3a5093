package runners

import (
	"fmt"
	"math"

	"ecoscope/internal/models"
)

// Economic indicator weights. Fixed, must sum to 1.0.
var economicWeights = map[string]float64{
	"life_expectancy": 0.40,
	"population":      0.35,
	"infrastructure":  0.25,
}

// economicOrder fixes the summation order so repeated scoring of the same
// region is bit-identical.
var economicOrder = []string{"life_expectancy", "population", "infrastructure"}

// stdevFloor guards the standardization denominator.
const stdevFloor = 1e-6

// EconomicRunner is the closed-form socioeconomic heuristic: each
// indicator's standardized deviation from the regional baseline, weighted
// and summed. Deterministic, no learned parameters.
type EconomicRunner struct {
	region *models.RegionProfile
}

func NewEconomicRunner(region *models.RegionProfile) *EconomicRunner {
	return &EconomicRunner{region: region}
}

func (r *EconomicRunner) Dimension() string { return models.DimensionEconomic }

func (r *EconomicRunner) ModelID() string { return "economic-heuristic-v1" }

func (r *EconomicRunner) Score(_ *models.FeatureVector) (float64, float64, error) {
	if r.region == nil || len(r.region.Economic) == 0 {
		return 0, 0, fmt.Errorf("%w: no economic indicators for region", ErrModelUnavailable)
	}

	var score float64
	for _, name := range economicOrder {
		indicator, ok := r.region.Economic[name]
		if !ok {
			continue
		}
		stdev := math.Max(indicator.Stdev, stdevFloor)
		score += economicWeights[name] * (indicator.Value - indicator.Mean) / stdev
	}

	// Closed-form output carries full confidence; the composite confidence
	// is discounted by data completeness elsewhere.
	return score, 1.0, nil
}

// Contributions returns the per-indicator weighted deviations. The economic
// score is already transparent, so this is its "explanation".
func (r *EconomicRunner) Contributions() map[string]float64 {
	out := make(map[string]float64, len(economicOrder))
	if r.region == nil {
		return out
	}
	for _, name := range economicOrder {
		indicator, ok := r.region.Economic[name]
		if !ok {
			continue
		}
		stdev := math.Max(indicator.Stdev, stdevFloor)
		out[name] = economicWeights[name] * (indicator.Value - indicator.Mean) / stdev
	}
	return out
}
