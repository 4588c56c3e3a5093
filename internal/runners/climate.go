package runners

import (
	"encoding/json"
	"fmt"
	"os"

	"ecoscope/internal/models"
)

// TreeNode is one node of a regression tree. Value is the expected
// prediction at the node; leaves have no feature and child indexes of -1.
type TreeNode struct {
	Feature   string  `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

func (n TreeNode) Leaf() bool { return n.Left < 0 && n.Right < 0 }

// Tree is a single regression tree, nodes indexed from the root at 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Walk evaluates the tree, returning the leaf value.
func (t *Tree) Walk(fv *models.FeatureVector) float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.Leaf() {
			return node.Value
		}
		v, _ := fv.Get(node.Feature)
		if v <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

// TreeEnsemble is the climate model artifact: a boosted sum of regression
// trees over the full feature vector.
type TreeEnsemble struct {
	ID         string  `json:"model_id"`
	BaseScore  float64 `json:"base_score"`
	Confidence float64 `json:"confidence"` // cross-validated figure stored with the artifact
	Trees      []Tree  `json:"trees"`
}

// LoadTreeEnsemble reads and validates a model artifact.
func LoadTreeEnsemble(path string) (*TreeEnsemble, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read climate artifact: %v", ErrModelUnavailable, err)
	}
	var m TreeEnsemble
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode climate artifact %s: %v", ErrModelUnavailable, path, err)
	}
	if len(m.Trees) == 0 {
		return nil, fmt.Errorf("%w: climate artifact %s has no trees", ErrModelUnavailable, path)
	}
	return &m, nil
}

// Predict sums the base score and every tree's leaf value.
func (m *TreeEnsemble) Predict(fv *models.FeatureVector) float64 {
	score := m.BaseScore
	for i := range m.Trees {
		score += m.Trees[i].Walk(fv)
	}
	return score
}

// ClimateRunner scores the climate dimension with a lazily loaded ensemble.
type ClimateRunner struct {
	model *TreeEnsemble
}

func NewClimateRunner(model *TreeEnsemble) *ClimateRunner {
	return &ClimateRunner{model: model}
}

func (r *ClimateRunner) Dimension() string { return models.DimensionClimate }

func (r *ClimateRunner) ModelID() string {
	if r.model == nil {
		return ""
	}
	return r.model.ID
}

// Model exposes the artifact for explainer selection.
func (r *ClimateRunner) Model() *TreeEnsemble { return r.model }

func (r *ClimateRunner) Score(fv *models.FeatureVector) (float64, float64, error) {
	if r.model == nil {
		return 0, 0, fmt.Errorf("%w: climate model not loaded", ErrModelUnavailable)
	}
	return r.model.Predict(fv), r.model.Confidence, nil
}
