package explain

import (
	"math"
	"sort"

	"ecoscope/internal/models"
)

// sortLeaves orders attributions by absolute magnitude, largest first, with
// name as the deterministic tie-break.
func sortLeaves(leaves []models.LeafAttribution) {
	sort.Slice(leaves, func(i, j int) bool {
		ai, aj := math.Abs(leaves[i].Value), math.Abs(leaves[j].Value)
		if ai != aj {
			return ai > aj
		}
		return leaves[i].Feature < leaves[j].Feature
	})
}

// buildReport aggregates leaf attributions into the dimension -> variable ->
// lag-feature hierarchy. Every level is a direct signed sum of its children,
// so additivity holds transitively from the leaves up.
func buildReport(sets []*models.AttributionSet, minMagnitude float64) *models.AttributionReport {
	report := &models.AttributionReport{Sets: sets}

	var allLeaves []models.LeafAttribution
	for _, set := range sets {
		dimNode := &models.AttributionNode{Name: set.Dimension}
		variableNodes := make(map[string]*models.AttributionNode)
		var variableOrder []string

		for _, leaf := range set.Leaves {
			vn, ok := variableNodes[leaf.Variable]
			if !ok {
				vn = &models.AttributionNode{Name: leaf.Variable}
				variableNodes[leaf.Variable] = vn
				variableOrder = append(variableOrder, leaf.Variable)
			}
			vn.Children = append(vn.Children, &models.AttributionNode{
				Name:  leaf.Feature,
				Value: leaf.Value,
			})
			vn.Value += leaf.Value
		}

		sort.Slice(variableOrder, func(i, j int) bool {
			vi, vj := variableNodes[variableOrder[i]], variableNodes[variableOrder[j]]
			ai, aj := math.Abs(vi.Value), math.Abs(vj.Value)
			if ai != aj {
				return ai > aj
			}
			return vi.Name < vj.Name
		})
		for _, name := range variableOrder {
			vn := variableNodes[name]
			dimNode.Children = append(dimNode.Children, vn)
			dimNode.Value += vn.Value
		}

		report.Dimensions = append(report.Dimensions, dimNode)
		allLeaves = append(allLeaves, set.Leaves...)
	}

	sortLeaves(allLeaves)
	if len(allLeaves) > 0 {
		report.PrimaryDriver = allLeaves[0].Feature
	}

	// Positive attributions push the score toward higher risk; negative
	// ones are protective. Small magnitudes are noise, not factors.
	for _, leaf := range allLeaves {
		if math.Abs(leaf.Value) < minMagnitude {
			continue
		}
		entry := models.FactorEntry{Feature: leaf.Feature, Variable: leaf.Variable, Value: leaf.Value}
		if leaf.Value > 0 {
			report.RiskFactors = append(report.RiskFactors, entry)
		} else {
			report.ProtectiveFactors = append(report.ProtectiveFactors, entry)
		}
	}

	return report
}
