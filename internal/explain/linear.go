package explain

import (
	"fmt"

	"ecoscope/internal/models"
	"ecoscope/internal/runners"
)

// LinearExplainer attributes a sequence-model prediction exactly: each input
// step contributes weight * (value - baseline), and the base value is the
// model evaluated at its training baseline.
type LinearExplainer struct {
	model *runners.SequenceModel
}

func (e *LinearExplainer) Explain(fv *models.FeatureVector) (*models.AttributionSet, error) {
	if e.model == nil {
		return nil, fmt.Errorf("%w: linear explainer has no model", ErrExplainerUnavailable)
	}

	base := e.model.Bias
	set := &models.AttributionSet{
		Dimension:  models.DimensionGeographic,
		ModelID:    e.model.ID,
		Prediction: e.model.Predict(fv),
	}

	for _, in := range e.model.Inputs {
		for step, agg := range runners.SequenceSteps {
			name := in.Variable + "_" + agg
			v, ok := fv.Get(name)
			if !ok {
				return nil, fmt.Errorf("%w: sequence model %s references unknown feature %q",
					ErrExplainerUnavailable, e.model.ID, name)
			}
			baseline := e.model.BaselineAt(in, step)
			base += in.Weights[step] * baseline
			set.Leaves = append(set.Leaves, models.LeafAttribution{
				Feature:  name,
				Variable: in.Variable,
				Lag:      agg,
				Value:    in.Weights[step] * (v - baseline),
			})
		}
	}

	set.BaseValue = base
	sortLeaves(set.Leaves)
	return set, nil
}
