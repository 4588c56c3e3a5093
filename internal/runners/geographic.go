package runners

import (
	"encoding/json"
	"fmt"
	"os"

	"ecoscope/internal/models"
)

// SequenceInput is one variable's contribution to the sequence model: a
// weight per time step over the ordered lag view.
type SequenceInput struct {
	Variable string    `json:"variable"`
	Weights  []float64 `json:"weights"` // oldest lag first, current last
	Baseline []float64 `json:"baseline"`
}

// SequenceModel is the geographic model artifact: a linear model over
// ordered lag sequences of a subset of variables. The sequence view is
// oldest-to-newest so the artifact matches the training layout.
type SequenceModel struct {
	ID         string          `json:"model_id"`
	Bias       float64         `json:"bias"`
	Confidence float64         `json:"confidence"`
	Inputs     []SequenceInput `json:"inputs"`
}

// SequenceSteps are the lag views, oldest first, matching the artifact's
// per-step weight layout.
var SequenceSteps = []string{"lag_12m", "lag_6m", "lag_3m", "lag_1m", "current"}

// LoadSequenceModel reads and validates a model artifact.
func LoadSequenceModel(path string) (*SequenceModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read geographic artifact: %v", ErrModelUnavailable, err)
	}
	var m SequenceModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode geographic artifact %s: %v", ErrModelUnavailable, path, err)
	}
	if len(m.Inputs) == 0 {
		return nil, fmt.Errorf("%w: geographic artifact %s has no inputs", ErrModelUnavailable, path)
	}
	for _, in := range m.Inputs {
		if len(in.Weights) != len(SequenceSteps) {
			return nil, fmt.Errorf("%w: geographic artifact %s: %s has %d weights, want %d",
				ErrModelUnavailable, path, in.Variable, len(in.Weights), len(SequenceSteps))
		}
		if len(in.Baseline) != 0 && len(in.Baseline) != len(SequenceSteps) {
			return nil, fmt.Errorf("%w: geographic artifact %s: %s baseline length mismatch",
				ErrModelUnavailable, path, in.Variable)
		}
	}
	return &m, nil
}

// Predict evaluates the linear model over the sequence views.
func (m *SequenceModel) Predict(fv *models.FeatureVector) float64 {
	score := m.Bias
	for _, in := range m.Inputs {
		for step, agg := range SequenceSteps {
			v, _ := fv.Get(in.Variable + "_" + agg)
			score += in.Weights[step] * v
		}
	}
	return score
}

// BaselineAt returns the training baseline value for one input step, zero
// when the artifact omits baselines.
func (m *SequenceModel) BaselineAt(in SequenceInput, step int) float64 {
	if len(in.Baseline) == 0 {
		return 0
	}
	return in.Baseline[step]
}

// GeographicRunner scores the geographic dimension with the sequence model.
type GeographicRunner struct {
	model *SequenceModel
}

func NewGeographicRunner(model *SequenceModel) *GeographicRunner {
	return &GeographicRunner{model: model}
}

func (r *GeographicRunner) Dimension() string { return models.DimensionGeographic }

func (r *GeographicRunner) ModelID() string {
	if r.model == nil {
		return ""
	}
	return r.model.ID
}

// Model exposes the artifact for explainer selection.
func (r *GeographicRunner) Model() *SequenceModel { return r.model }

func (r *GeographicRunner) Score(fv *models.FeatureVector) (float64, float64, error) {
	if r.model == nil {
		return 0, 0, fmt.Errorf("%w: geographic model not loaded", ErrModelUnavailable)
	}
	return r.model.Predict(fv), r.model.Confidence, nil
}
