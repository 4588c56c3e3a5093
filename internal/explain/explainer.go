package explain

import (
	"errors"
	"fmt"

	"ecoscope/internal/models"
	"ecoscope/internal/runners"
)

// ErrExplainerUnavailable marks a model for which no attribution can be
// computed. Callers degrade to a scores-only response.
var ErrExplainerUnavailable = errors.New("explainer unavailable")

// Explainer computes an additive attribution for one model's prediction:
// BaseValue + sum(leaves) reconstructs the raw prediction.
type Explainer interface {
	Explain(fv *models.FeatureVector) (*models.AttributionSet, error)
}

// errNotExplainable marks runners that are transparent by construction
// (the economic heuristic) rather than failed explainer setups.
var errNotExplainable = errors.New("model needs no post-hoc explanation")

// ForRunner selects the model-appropriate explainer: the tree-path
// explainer for ensembles, the linear explainer for sequence models. The
// economic heuristic is already a transparent sum and has no explainer.
func ForRunner(r runners.Runner) (Explainer, error) {
	switch m := r.(type) {
	case *runners.ClimateRunner:
		if m.Model() == nil {
			return nil, fmt.Errorf("%w: climate model not loaded", ErrExplainerUnavailable)
		}
		return &TreeExplainer{model: m.Model()}, nil
	case *runners.GeographicRunner:
		if m.Model() == nil {
			return nil, fmt.Errorf("%w: geographic model not loaded", ErrExplainerUnavailable)
		}
		return &LinearExplainer{model: m.Model()}, nil
	default:
		return nil, errNotExplainable
	}
}

// Engine aggregates per-model attributions into the hierarchical report.
type Engine struct {
	// minMagnitude filters noise out of the risk/protective factor lists.
	minMagnitude float64
}

func NewEngine(minMagnitude float64) *Engine {
	if minMagnitude <= 0 {
		minMagnitude = 0.01
	}
	return &Engine{minMagnitude: minMagnitude}
}

// Explain attributes the prediction of every explainable runner and builds
// the dimension -> variable -> lag-feature report. When no runner can be
// explained the report carries an explicit unavailable marker instead of
// failing the prediction.
func (e *Engine) Explain(rs []runners.Runner, fv *models.FeatureVector) *models.AttributionReport {
	var sets []*models.AttributionSet
	var lastReason string

	for _, r := range rs {
		explainer, err := ForRunner(r)
		if err != nil {
			if !errors.Is(err, errNotExplainable) {
				lastReason = err.Error()
			}
			continue
		}
		set, err := explainer.Explain(fv)
		if err != nil {
			lastReason = err.Error()
			continue
		}
		sets = append(sets, set)
	}

	if len(sets) == 0 {
		reason := lastReason
		if reason == "" {
			reason = "no explainable models available"
		}
		return &models.AttributionReport{Unavailable: true, Reason: reason}
	}

	return buildReport(sets, e.minMagnitude)
}
