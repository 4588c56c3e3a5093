package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		wantErr bool
	}{
		{
			name:  "valid query",
			query: Query{Latitude: 51.5, Longitude: -0.12, Month: 6, FutureYearOffset: 1},
		},
		{
			name:  "boundary latitude is inclusive",
			query: Query{Latitude: 90, Longitude: 0, Month: 1},
		},
		{
			name:  "boundary longitude is inclusive",
			query: Query{Latitude: 0, Longitude: 180, Month: 12},
		},
		{
			name:  "negative boundary coordinates",
			query: Query{Latitude: -90, Longitude: -180, Month: 1},
		},
		{
			name:    "latitude out of range",
			query:   Query{Latitude: 90.001, Longitude: 0, Month: 1},
			wantErr: true,
		},
		{
			name:    "longitude out of range",
			query:   Query{Latitude: 0, Longitude: -180.5, Month: 1},
			wantErr: true,
		},
		{
			name:    "month zero",
			query:   Query{Latitude: 0, Longitude: 0, Month: 0},
			wantErr: true,
		},
		{
			name:    "month thirteen",
			query:   Query{Latitude: 0, Longitude: 0, Month: 13},
			wantErr: true,
		},
		{
			name:    "negative year offset",
			query:   Query{Latitude: 0, Longitude: 0, Month: 5, FutureYearOffset: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuery)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFeatureVectorLookup(t *testing.T) {
	fv := NewFeatureVector([]string{"a", "b", "c"}, []float64{1, 2, 3}, 0.5)

	assert.Equal(t, 3, fv.Len())
	assert.Equal(t, 0.5, fv.Completeness())

	v, ok := fv.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	_, ok = fv.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, -1, fv.Index("missing"))
	assert.Equal(t, 2.0, fv.At(1))
}
