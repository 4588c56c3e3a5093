package models

// Baseline holds historical statistics for one score dimension, used both for
// standardization and for the dynamic risk thresholds.
type Baseline struct {
	Mean      float64         `json:"mean"`
	Stdev     float64         `json:"stdev"`
	Quantiles map[int]float64 `json:"quantiles"` // percentile -> value (25, 50, 75)
}

// EconomicIndicator pairs a current reading with its regional baseline.
type EconomicIndicator struct {
	Value float64 `json:"value"`
	Mean  float64 `json:"mean"`
	Stdev float64 `json:"stdev"`
}

// RegionProfile is one of the small closed set of supported reference
// locations. Profiles are registered once at startup and shared read-only
// across requests; model handles are loaded lazily by the registry.
type RegionProfile struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Artifact paths for the learned sub-models.
	ClimateArtifact    string `json:"climate_artifact"`
	GeographicArtifact string `json:"geographic_artifact"`

	// Baselines keyed by dimension ("climate", "geographic", "economic",
	// "composite").
	Baselines map[string]Baseline `json:"baselines"`

	// MonthlyMeans holds per-variable historical means indexed by month
	// (1-12), used to impute missing upstream fields.
	MonthlyMeans map[string][13]float64 `json:"monthly_means"`

	// Economic holds the socioeconomic indicators consumed by the
	// closed-form economic heuristic.
	Economic map[string]EconomicIndicator `json:"economic"`
}

// MonthlyMean returns the imputation value for a variable in a month, if the
// profile carries one.
func (rp *RegionProfile) MonthlyMean(variable string, month int) (float64, bool) {
	means, ok := rp.MonthlyMeans[variable]
	if !ok || month < 1 || month > 12 {
		return 0, false
	}
	return means[month], true
}
