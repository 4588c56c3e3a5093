package registry

import (
	"path/filepath"

	"ecoscope/internal/models"
)

// DefaultProfiles returns the supported reference locations. Baseline
// statistics come from the historical scoring runs bundled with the model
// artifacts; monthly means back the feature engineer's imputation.
func DefaultProfiles(modelDir string) []*models.RegionProfile {
	return []*models.RegionProfile{
		{
			Name:               "london",
			Latitude:           51.5074,
			Longitude:          -0.1278,
			ClimateArtifact:    filepath.Join(modelDir, "london_climate.json"),
			GeographicArtifact: filepath.Join(modelDir, "london_geographic.json"),
			Baselines: map[string]models.Baseline{
				models.DimensionClimate:    {Mean: 0.70, Stdev: 0.10, Quantiles: map[int]float64{25: 0.63, 50: 0.70, 75: 0.77}},
				models.DimensionGeographic: {Mean: 0.55, Stdev: 0.12, Quantiles: map[int]float64{25: 0.47, 50: 0.55, 75: 0.63}},
				models.DimensionEconomic:   {Mean: 0.00, Stdev: 0.35, Quantiles: map[int]float64{25: -0.24, 50: 0.00, 75: 0.24}},
				models.DimensionComposite:  {Mean: 0.38, Stdev: 0.16, Quantiles: map[int]float64{25: 0.27, 50: 0.38, 75: 0.49}},
			},
			MonthlyMeans: londonMonthlyMeans,
			Economic: map[string]models.EconomicIndicator{
				"life_expectancy": {Value: 81.3, Mean: 81.6, Stdev: 1.1},
				"population":      {Value: 8.98, Mean: 8.80, Stdev: 0.40},
				"infrastructure":  {Value: 0.86, Mean: 0.84, Stdev: 0.05},
			},
		},
		{
			Name:               "manchester",
			Latitude:           53.4808,
			Longitude:          -2.2426,
			ClimateArtifact:    filepath.Join(modelDir, "manchester_climate.json"),
			GeographicArtifact: filepath.Join(modelDir, "manchester_geographic.json"),
			Baselines: map[string]models.Baseline{
				models.DimensionClimate:    {Mean: 0.64, Stdev: 0.11, Quantiles: map[int]float64{25: 0.56, 50: 0.64, 75: 0.72}},
				models.DimensionGeographic: {Mean: 0.51, Stdev: 0.13, Quantiles: map[int]float64{25: 0.42, 50: 0.51, 75: 0.60}},
				models.DimensionEconomic:   {Mean: 0.00, Stdev: 0.32, Quantiles: map[int]float64{25: -0.22, 50: 0.00, 75: 0.22}},
				models.DimensionComposite:  {Mean: 0.34, Stdev: 0.15, Quantiles: map[int]float64{25: 0.24, 50: 0.34, 75: 0.44}},
			},
			MonthlyMeans: manchesterMonthlyMeans,
			Economic: map[string]models.EconomicIndicator{
				"life_expectancy": {Value: 78.9, Mean: 79.5, Stdev: 1.2},
				"population":      {Value: 2.81, Mean: 2.75, Stdev: 0.18},
				"infrastructure":  {Value: 0.78, Mean: 0.77, Stdev: 0.06},
			},
		},
		{
			Name:               "birmingham",
			Latitude:           52.4862,
			Longitude:          -1.8904,
			ClimateArtifact:    filepath.Join(modelDir, "birmingham_climate.json"),
			GeographicArtifact: filepath.Join(modelDir, "birmingham_geographic.json"),
			Baselines: map[string]models.Baseline{
				models.DimensionClimate:    {Mean: 0.66, Stdev: 0.10, Quantiles: map[int]float64{25: 0.59, 50: 0.66, 75: 0.73}},
				models.DimensionGeographic: {Mean: 0.53, Stdev: 0.12, Quantiles: map[int]float64{25: 0.45, 50: 0.53, 75: 0.61}},
				models.DimensionEconomic:   {Mean: 0.00, Stdev: 0.33, Quantiles: map[int]float64{25: -0.23, 50: 0.00, 75: 0.23}},
				models.DimensionComposite:  {Mean: 0.36, Stdev: 0.15, Quantiles: map[int]float64{25: 0.26, 50: 0.36, 75: 0.46}},
			},
			MonthlyMeans: birminghamMonthlyMeans,
			Economic: map[string]models.EconomicIndicator{
				"life_expectancy": {Value: 79.1, Mean: 79.8, Stdev: 1.1},
				"population":      {Value: 1.14, Mean: 1.12, Stdev: 0.09},
				"infrastructure":  {Value: 0.75, Mean: 0.74, Stdev: 0.06},
			},
		},
	}
}

// Historical monthly means per variable (index 1-12). Values are in each
// variable's native unit and exist to impute missing upstream fields.
var londonMonthlyMeans = map[string][13]float64{
	"temperature":      {0, 5.2, 5.3, 7.6, 9.9, 13.3, 16.4, 18.7, 18.5, 15.7, 12.0, 8.0, 5.5},
	"precipitation":    {0, 55.2, 40.9, 41.6, 43.7, 49.4, 45.1, 44.5, 49.5, 49.1, 68.5, 59.0, 55.2},
	"humidity":         {0, 86, 81, 76, 71, 70, 70, 69, 72, 77, 83, 86, 87},
	"wind_speed":       {0, 4.6, 4.5, 4.4, 4.0, 3.9, 3.7, 3.7, 3.6, 3.8, 4.0, 4.2, 4.4},
	"air_quality":      {0, 42, 40, 44, 46, 41, 38, 37, 36, 39, 41, 45, 44},
	"vegetation_index": {0, 0.38, 0.39, 0.44, 0.52, 0.61, 0.66, 0.65, 0.62, 0.56, 0.48, 0.41, 0.38},
	"soil_moisture":    {0, 0.42, 0.41, 0.38, 0.33, 0.28, 0.24, 0.21, 0.22, 0.27, 0.34, 0.40, 0.42},
	"solar_radiation":  {0, 63, 106, 178, 261, 326, 345, 334, 287, 206, 127, 74, 51},
	"pressure":         {0, 1016, 1015, 1014, 1013, 1015, 1016, 1016, 1015, 1016, 1014, 1014, 1015},
	"surface_runoff":   {0, 28, 22, 19, 15, 12, 9, 8, 9, 12, 21, 26, 29},
	"cloud_cover":      {0, 71, 66, 62, 58, 55, 52, 51, 52, 56, 64, 70, 72},
}

var manchesterMonthlyMeans = map[string][13]float64{
	"temperature":      {0, 4.3, 4.4, 6.3, 8.5, 11.7, 14.5, 16.3, 16.1, 13.7, 10.4, 6.9, 4.6},
	"precipitation":    {0, 72.3, 52.1, 49.7, 51.2, 56.0, 66.6, 63.8, 77.0, 71.5, 92.3, 81.5, 80.5},
	"humidity":         {0, 87, 83, 79, 75, 74, 75, 75, 78, 81, 85, 88, 88},
	"wind_speed":       {0, 5.1, 5.0, 4.9, 4.4, 4.2, 4.0, 4.0, 3.9, 4.2, 4.5, 4.7, 4.9},
	"air_quality":      {0, 38, 36, 39, 41, 37, 34, 33, 32, 35, 37, 40, 39},
	"vegetation_index": {0, 0.41, 0.42, 0.47, 0.55, 0.63, 0.68, 0.67, 0.64, 0.58, 0.50, 0.44, 0.41},
	"soil_moisture":    {0, 0.46, 0.45, 0.42, 0.37, 0.32, 0.29, 0.27, 0.28, 0.33, 0.39, 0.44, 0.46},
	"solar_radiation":  {0, 52, 92, 158, 236, 296, 308, 296, 254, 181, 109, 62, 42},
	"pressure":         {0, 1014, 1014, 1013, 1012, 1014, 1015, 1014, 1014, 1015, 1013, 1012, 1013},
	"surface_runoff":   {0, 38, 30, 26, 21, 17, 15, 14, 17, 21, 31, 36, 40},
	"cloud_cover":      {0, 74, 70, 66, 62, 60, 58, 57, 58, 61, 68, 73, 75},
}

var birminghamMonthlyMeans = map[string][13]float64{
	"temperature":      {0, 4.1, 4.2, 6.2, 8.5, 11.8, 14.7, 16.7, 16.5, 13.9, 10.4, 6.7, 4.3},
	"precipitation":    {0, 62.2, 46.6, 45.1, 47.3, 53.3, 57.0, 55.9, 62.8, 58.9, 76.6, 68.2, 66.5},
	"humidity":         {0, 87, 82, 78, 73, 72, 72, 71, 74, 79, 84, 87, 88},
	"wind_speed":       {0, 4.8, 4.7, 4.6, 4.2, 4.0, 3.8, 3.8, 3.7, 3.9, 4.2, 4.4, 4.6},
	"air_quality":      {0, 40, 38, 41, 43, 39, 36, 35, 34, 37, 39, 42, 41},
	"vegetation_index": {0, 0.40, 0.41, 0.46, 0.54, 0.62, 0.67, 0.66, 0.63, 0.57, 0.49, 0.43, 0.40},
	"soil_moisture":    {0, 0.44, 0.43, 0.40, 0.35, 0.30, 0.27, 0.24, 0.25, 0.30, 0.37, 0.42, 0.44},
	"solar_radiation":  {0, 56, 98, 166, 246, 308, 322, 310, 266, 190, 116, 66, 45},
	"pressure":         {0, 1015, 1014, 1013, 1012, 1014, 1015, 1015, 1014, 1015, 1013, 1013, 1014},
	"surface_runoff":   {0, 33, 26, 22, 18, 14, 12, 11, 13, 17, 26, 31, 34},
	"cloud_cover":      {0, 73, 68, 64, 60, 58, 55, 54, 55, 59, 66, 72, 74},
}
