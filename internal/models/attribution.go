package models

// LeafAttribution is one feature's signed importance for one model.
type LeafAttribution struct {
	Feature  string  `json:"feature"`
	Variable string  `json:"variable"`
	Lag      string  `json:"lag"`
	Value    float64 `json:"value"`
}

// AttributionSet is the additive attribution for one dimension's model:
// BaseValue + sum(Leaves) reconstructs Prediction within tolerance.
type AttributionSet struct {
	Dimension  string            `json:"dimension"`
	ModelID    string            `json:"model_id"`
	BaseValue  float64           `json:"base_value"`
	Prediction float64           `json:"prediction"`
	Leaves     []LeafAttribution `json:"leaves"`
}

// Sum returns the total of the leaf attributions.
func (s *AttributionSet) Sum() float64 {
	var total float64
	for _, l := range s.Leaves {
		total += l.Value
	}
	return total
}

// AttributionNode is one node in the dimension -> variable -> lag-feature
// hierarchy. A node's value is the signed sum of its children.
type AttributionNode struct {
	Name     string             `json:"name"`
	Value    float64            `json:"value"`
	Children []*AttributionNode `json:"children,omitempty"`
}

// FactorEntry names a ranked driver of the score.
type FactorEntry struct {
	Feature  string  `json:"feature"`
	Variable string  `json:"variable"`
	Value    float64 `json:"value"`
}

// AttributionReport aggregates the per-model attributions for a request.
type AttributionReport struct {
	Dimensions []*AttributionNode `json:"dimensions"`
	Sets       []*AttributionSet  `json:"sets"`

	PrimaryDriver     string        `json:"primary_driver"`
	RiskFactors       []FactorEntry `json:"risk_factors"`
	ProtectiveFactors []FactorEntry `json:"protective_factors"`

	// Unavailable reports degraded explainability: Reason is set and the
	// attribution content is empty.
	Unavailable bool   `json:"unavailable,omitempty"`
	Reason      string `json:"reason,omitempty"`
}
