package runners

import (
	"errors"

	"ecoscope/internal/models"
)

// ErrModelUnavailable marks a dimension whose model artifact could not be
// loaded. The composite calculator re-normalizes weights over the remaining
// dimensions instead of failing the prediction.
var ErrModelUnavailable = errors.New("model unavailable")

// Runner is the single scoring contract shared by the tree ensemble, the
// sequence model and the closed-form heuristic.
type Runner interface {
	Dimension() string
	ModelID() string
	Score(fv *models.FeatureVector) (raw float64, confidence float64, err error)
}
