package narrative

import (
	"fmt"
	"strings"

	"ecoscope/internal/models"
)

// FallbackStory fills the section schema deterministically from the numeric
// scores and the primary driver alone. It always produces a non-empty,
// well-formed story, so the caller never branches on the generation path.
func FallbackStory(outcome models.CompositeOutcome, primaryDriver, region string) *models.NarrativeStory {
	regionName := titleCase(region)

	intro := fmt.Sprintf(
		"The environmental change score for %s is %.3f with %s risk. This combines climate, geographic and economic assessments against the region's historical baseline.",
		regionName, outcome.FinalScore, outcome.RiskLevel)

	var drivers string
	if primaryDriver != "" {
		drivers = fmt.Sprintf(
			"The strongest influence on this score is %s. Each dimension contributes in proportion to its fixed weight%s.",
			strings.ReplaceAll(primaryDriver, "_", " "), degradedNote(outcome))
	} else {
		drivers = fmt.Sprintf(
			"A detailed feature breakdown is not available for this assessment. Each dimension contributes in proportion to its fixed weight%s.",
			degradedNote(outcome))
	}

	risk := fmt.Sprintf(
		"The score sits in the %s band of the historical distribution for %s, and the trend is %s. Confidence in this assessment is %.0f%%.",
		outcome.RiskLevel, regionName, outcome.TrendDirection, outcome.ConfidenceScore*100)

	var conclusion string
	switch outcome.TrendDirection {
	case models.TrendWorsening:
		conclusion = fmt.Sprintf("Conditions in %s are projected to deteriorate relative to the baseline period.", regionName)
	case models.TrendImproving:
		conclusion = fmt.Sprintf("Conditions in %s are projected to improve relative to the baseline period.", regionName)
	default:
		conclusion = fmt.Sprintf("Conditions in %s are projected to remain close to the baseline period.", regionName)
	}

	return &models.NarrativeStory{
		Introduction:   intro,
		KeyDrivers:     drivers,
		RiskAssessment: risk,
		Conclusion:     conclusion,
		Fallback:       true,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func degradedNote(outcome models.CompositeOutcome) string {
	if outcome.Degraded {
		return ", re-normalized over the dimensions that were available"
	}
	return ""
}
