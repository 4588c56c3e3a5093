package features

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ecoscope/internal/envdata"
	"ecoscope/internal/models"
)

// ErrDataUnavailable is returned only when none of the base variables can be
// resolved from upstream data or regional baselines. Partial availability
// degrades confidence instead.
var ErrDataUnavailable = errors.New("environmental data unavailable")

// Variables are the 11 base environmental variables, in canonical order.
var Variables = []string{
	"temperature",
	"precipitation",
	"humidity",
	"wind_speed",
	"air_quality",
	"vegetation_index",
	"soil_moisture",
	"solar_radiation",
	"pressure",
	"surface_runoff",
	"cloud_cover",
}

// Lags are the historical offsets (months) sampled per variable.
var Lags = []int{1, 3, 6, 12}

// Aggregations are the temporal views per variable, in canonical order:
// current value, four historical lags, and the 12-month rate of change.
var Aggregations = []string{"current", "lag_1m", "lag_3m", "lag_6m", "lag_12m", "change_12m"}

// Names returns the fixed feature ordering every runner was trained against:
// len(Variables) * len(Aggregations) entries, variable-major.
func Names() []string {
	names := make([]string, 0, len(Variables)*len(Aggregations))
	for _, v := range Variables {
		for _, agg := range Aggregations {
			names = append(names, v+"_"+agg)
		}
	}
	return names
}

// Split decomposes a feature name into its variable and aggregation parts.
func Split(name string) (variable, aggregation string) {
	for _, v := range Variables {
		prefix := v + "_"
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			return v, name[len(prefix):]
		}
	}
	return name, ""
}

// Engineer turns a query into the fixed-length named feature vector.
type Engineer struct {
	source  envdata.Source
	timeout time.Duration
	now     func() time.Time
}

func NewEngineer(source envdata.Source, timeout time.Duration) *Engineer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Engineer{
		source:  source,
		timeout: timeout,
		now:     time.Now,
	}
}

// SetClock overrides the wall clock, for deterministic tests.
func (e *Engineer) SetClock(now func() time.Time) { e.now = now }

// TargetDate maps a query onto the date requested from the data source.
func (e *Engineer) TargetDate(q models.Query) time.Time {
	base := e.now().UTC()
	return time.Date(base.Year()+q.FutureYearOffset, time.Month(q.Month), 15, 0, 0, 0, 0, time.UTC)
}

// Build produces the feature vector for a query. Missing upstream fields are
// imputed from the region's historical monthly means; the vector carries the
// observed/expected completeness ratio for downstream confidence weighting.
// A data source failure is absorbed as a fully imputed vector; only a query
// for which zero variables resolve returns ErrDataUnavailable.
func (e *Engineer) Build(ctx context.Context, q models.Query, region *models.RegionProfile) (*models.FeatureVector, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	snapshot, err := e.source.Fetch(fetchCtx, q.Latitude, q.Longitude, e.TargetDate(q))
	if err != nil {
		log.Printf("environment fetch failed, imputing from %s baselines: %v", region.Name, err)
		snapshot = &envdata.Snapshot{}
	}

	names := Names()
	values := make([]float64, 0, len(names))
	observed := 0
	resolvedVariables := 0

	for _, variable := range Variables {
		varResolved := false

		current, resolved := e.resolve(snapshot, region, variable, q.Month, 0, &observed)
		varResolved = varResolved || resolved
		values = append(values, current)

		lagValues := make([]float64, 0, len(Lags))
		for _, lag := range Lags {
			v, resolved := e.resolve(snapshot, region, variable, lagMonth(q.Month, lag), lag, &observed)
			varResolved = varResolved || resolved
			lagValues = append(lagValues, v)
			values = append(values, v)
		}

		// Rate of change over the longest lag window.
		values = append(values, current-lagValues[len(lagValues)-1])

		if varResolved {
			resolvedVariables++
		}
	}

	if resolvedVariables == 0 {
		return nil, fmt.Errorf("%w: no variables resolved for region %s", ErrDataUnavailable, region.Name)
	}

	// Expected observed fields are the current + lag readings; the derived
	// change features are always computable.
	expected := len(Variables) * (1 + len(Lags))
	completeness := float64(observed) / float64(expected)

	return models.NewFeatureVector(names, values, completeness), nil
}

// resolve returns a variable's value at a lag (0 = current) and whether it
// could be resolved at all. Upstream values count toward the completeness
// numerator; otherwise the region's historical mean for the month fills in.
func (e *Engineer) resolve(snapshot *envdata.Snapshot, region *models.RegionProfile, variable string, month, lag int, observed *int) (float64, bool) {
	var v float64
	var ok bool
	if lag == 0 {
		v, ok = snapshot.Current(variable)
	} else {
		v, ok = snapshot.Lag(variable, lag)
	}
	if ok {
		*observed++
		return v, true
	}
	if mean, ok := region.MonthlyMean(variable, month); ok {
		return mean, true
	}
	return 0, false
}

// lagMonth steps a 1-12 month index back by the given number of months.
func lagMonth(month, lag int) int {
	m := (month - 1 - lag) % 12
	if m < 0 {
		m += 12
	}
	return m + 1
}
