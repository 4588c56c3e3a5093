package models

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery is returned for out-of-range coordinates or months before
// any computation starts.
var ErrInvalidQuery = errors.New("invalid query")

// Query is a single change-score request. Boundary values (lat 90, lon 180,
// month 12) are inclusive and valid.
type Query struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Month            int     `json:"month"`
	FutureYearOffset int     `json:"future_year_offset"`
}

func (q Query) Validate() error {
	if q.Latitude < -90 || q.Latitude > 90 {
		return fmt.Errorf("%w: latitude %.4f out of range [-90, 90]", ErrInvalidQuery, q.Latitude)
	}
	if q.Longitude < -180 || q.Longitude > 180 {
		return fmt.Errorf("%w: longitude %.4f out of range [-180, 180]", ErrInvalidQuery, q.Longitude)
	}
	if q.Month < 1 || q.Month > 12 {
		return fmt.Errorf("%w: month %d out of range [1, 12]", ErrInvalidQuery, q.Month)
	}
	if q.FutureYearOffset < 0 {
		return fmt.Errorf("%w: future_year_offset %d must be >= 0", ErrInvalidQuery, q.FutureYearOffset)
	}
	return nil
}
