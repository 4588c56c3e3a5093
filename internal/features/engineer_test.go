package features

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecoscope/internal/envdata"
	"ecoscope/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	snapshot *envdata.Snapshot
	err      error
	fetches  int
}

func (f *fakeSource) Fetch(ctx context.Context, lat, lon float64, date time.Time) (*envdata.Snapshot, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

func (f *fakeSource) Ping(ctx context.Context) error { return f.err }

func ptr(v float64) *float64 { return &v }

// fullSnapshot fills every variable with current = base and all lags = base - lag.
func fullSnapshot(base float64) *envdata.Snapshot {
	snapshot := &envdata.Snapshot{Variables: make(map[string]envdata.Series)}
	for _, v := range Variables {
		history := make(map[string]*float64)
		history["1"] = ptr(base - 1)
		history["3"] = ptr(base - 3)
		history["6"] = ptr(base - 6)
		history["12"] = ptr(base - 12)
		snapshot.Variables[v] = envdata.Series{Current: ptr(base), History: history}
	}
	return snapshot
}

func testRegion() *models.RegionProfile {
	means := make(map[string][13]float64)
	for _, v := range Variables {
		var m [13]float64
		for month := 1; month <= 12; month++ {
			m[month] = 10.0
		}
		means[v] = m
	}
	return &models.RegionProfile{Name: "testville", MonthlyMeans: means}
}

func TestNamesOrderingIsFixed(t *testing.T) {
	names := Names()
	require.Len(t, names, len(Variables)*len(Aggregations))
	assert.Equal(t, "temperature_current", names[0])
	assert.Equal(t, "temperature_lag_1m", names[1])
	assert.Equal(t, "temperature_change_12m", names[5])
	assert.Equal(t, "cloud_cover_change_12m", names[len(names)-1])
}

func TestSplit(t *testing.T) {
	variable, agg := Split("vegetation_index_lag_3m")
	assert.Equal(t, "vegetation_index", variable)
	assert.Equal(t, "lag_3m", agg)

	variable, agg = Split("unknown_feature")
	assert.Equal(t, "unknown_feature", variable)
	assert.Equal(t, "", agg)
}

func TestBuildIsDeterministic(t *testing.T) {
	source := &fakeSource{snapshot: fullSnapshot(20)}
	engineer := NewEngineer(source, time.Second)
	query := models.Query{Latitude: 51.5, Longitude: -0.12, Month: 6}

	first, err := engineer.Build(context.Background(), query, testRegion())
	require.NoError(t, err)
	second, err := engineer.Build(context.Background(), query, testRegion())
	require.NoError(t, err)

	assert.Equal(t, first.Values(), second.Values())
	assert.Equal(t, first.Names(), second.Names())
	assert.Equal(t, 1.0, first.Completeness())
}

func TestBuildComputesChangeFeature(t *testing.T) {
	source := &fakeSource{snapshot: fullSnapshot(20)}
	engineer := NewEngineer(source, time.Second)
	query := models.Query{Month: 3}

	fv, err := engineer.Build(context.Background(), query, testRegion())
	require.NoError(t, err)

	current, _ := fv.Get("humidity_current")
	lag12, _ := fv.Get("humidity_lag_12m")
	change, _ := fv.Get("humidity_change_12m")
	assert.InDelta(t, current-lag12, change, 1e-12)
	assert.InDelta(t, 12.0, change, 1e-12)
}

func TestBuildImputesMissingFields(t *testing.T) {
	snapshot := fullSnapshot(20)
	// Drop one variable entirely and one lag of another.
	delete(snapshot.Variables, "pressure")
	series := snapshot.Variables["humidity"]
	delete(series.History, "6")
	snapshot.Variables["humidity"] = series

	source := &fakeSource{snapshot: snapshot}
	engineer := NewEngineer(source, time.Second)

	fv, err := engineer.Build(context.Background(), models.Query{Month: 6}, testRegion())
	require.NoError(t, err)

	// Imputed from the monthly mean table.
	v, ok := fv.Get("pressure_current")
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)
	v, _ = fv.Get("humidity_lag_6m")
	assert.Equal(t, 10.0, v)

	// 6 of 55 expected observations were imputed.
	expected := float64(11*5-6) / float64(11*5)
	assert.InDelta(t, expected, fv.Completeness(), 1e-12)
}

func TestBuildAbsorbsFetchFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	engineer := NewEngineer(source, time.Second)

	fv, err := engineer.Build(context.Background(), models.Query{Month: 1}, testRegion())
	require.NoError(t, err)

	// Everything imputed; nothing observed.
	assert.Equal(t, 0.0, fv.Completeness())
	v, ok := fv.Get("temperature_current")
	assert.True(t, ok)
	assert.Equal(t, 10.0, v)
	// change_12m collapses to zero when both ends share the monthly mean
	v, _ = fv.Get("temperature_change_12m")
	assert.Equal(t, 0.0, v)
}

func TestBuildDataUnavailable(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	engineer := NewEngineer(source, time.Second)
	region := &models.RegionProfile{Name: "bare"} // no monthly means either

	_, err := engineer.Build(context.Background(), models.Query{Month: 1}, region)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestTargetDate(t *testing.T) {
	engineer := NewEngineer(&fakeSource{}, time.Second)
	engineer.SetClock(func() time.Time {
		return time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	})

	date := engineer.TargetDate(models.Query{Month: 2, FutureYearOffset: 3})
	assert.Equal(t, time.Date(2029, time.February, 15, 0, 0, 0, 0, time.UTC), date)
}

func TestLagMonthWrapsYearBoundary(t *testing.T) {
	assert.Equal(t, 12, lagMonth(1, 1))
	assert.Equal(t, 10, lagMonth(1, 3))
	assert.Equal(t, 7, lagMonth(1, 6))
	assert.Equal(t, 1, lagMonth(1, 12))
	assert.Equal(t, 2, lagMonth(3, 1))
}
