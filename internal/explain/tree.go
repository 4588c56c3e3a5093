package explain

import (
	"fmt"

	"ecoscope/internal/features"
	"ecoscope/internal/models"
	"ecoscope/internal/runners"
)

// TreeExplainer attributes an ensemble prediction along the decision paths:
// each split transfers the change in expected value to the split feature, so
// the per-tree root value plus the path contributions equals the leaf value
// exactly, and the invariant holds for the whole ensemble.
type TreeExplainer struct {
	model *runners.TreeEnsemble
}

func (e *TreeExplainer) Explain(fv *models.FeatureVector) (*models.AttributionSet, error) {
	if e.model == nil {
		return nil, fmt.Errorf("%w: tree explainer has no model", ErrExplainerUnavailable)
	}

	contributions := make(map[string]float64)
	base := e.model.BaseScore

	for ti := range e.model.Trees {
		tree := &e.model.Trees[ti]
		if len(tree.Nodes) == 0 {
			return nil, fmt.Errorf("%w: empty tree in ensemble %s", ErrExplainerUnavailable, e.model.ID)
		}
		base += tree.Nodes[0].Value

		i := 0
		for {
			node := tree.Nodes[i]
			if node.Leaf() {
				break
			}
			v, ok := fv.Get(node.Feature)
			if !ok {
				return nil, fmt.Errorf("%w: ensemble %s references unknown feature %q",
					ErrExplainerUnavailable, e.model.ID, node.Feature)
			}
			next := node.Right
			if v <= node.Threshold {
				next = node.Left
			}
			contributions[node.Feature] += tree.Nodes[next].Value - node.Value
			i = next
		}
	}

	set := &models.AttributionSet{
		Dimension:  models.DimensionClimate,
		ModelID:    e.model.ID,
		BaseValue:  base,
		Prediction: e.model.Predict(fv),
	}
	for feature, value := range contributions {
		variable, lag := features.Split(feature)
		set.Leaves = append(set.Leaves, models.LeafAttribution{
			Feature:  feature,
			Variable: variable,
			Lag:      lag,
			Value:    value,
		})
	}
	sortLeaves(set.Leaves)
	return set, nil
}
