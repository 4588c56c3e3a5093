package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ecoscope/internal/features"
	"ecoscope/internal/models"
	"ecoscope/internal/registry"
	"ecoscope/internal/runners"
	"ecoscope/internal/scoring"
)

// PredictionContext carries the intermediate products of a scoring pass so
// downstream steps (explanation, narrative) can reuse them without refetching.
type PredictionContext struct {
	Query   models.Query
	Region  *models.RegionProfile
	Vector  *models.FeatureVector
	Runners []runners.Runner
	Outcome *models.CompositeOutcome
}

// Predictor orchestrates the scoring pipeline: query validation, region
// resolution, feature engineering, sub-model scoring and composition.
type Predictor struct {
	registry *registry.Registry
	engineer *features.Engineer
}

func NewPredictor(reg *registry.Registry, eng *features.Engineer) *Predictor {
	return &Predictor{registry: reg, engineer: eng}
}

// Predict runs the full pipeline for a query. Sub-model failures degrade the
// outcome rather than failing the request; only an invalid query, an unknown
// region or a fully unavailable feature vector return an error.
func (p *Predictor) Predict(ctx context.Context, query models.Query) (*PredictionContext, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	region, err := p.registry.Resolve(query.Latitude, query.Longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve region: %w", err)
	}

	vector, err := p.engineer.Build(ctx, query, region)
	if err != nil {
		if errors.Is(err, features.ErrDataUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to build features: %w", err)
	}

	active := p.buildRunners(region)

	predictions := make(map[string]*models.SubModelPrediction, len(active))
	for _, r := range active {
		raw, confidence, err := r.Score(vector)
		if err != nil {
			log.Printf("WARNING: %s runner %s failed, degrading: %v", r.Dimension(), r.ModelID(), err)
			continue
		}
		predictions[r.Dimension()] = &models.SubModelPrediction{
			Dimension:       r.Dimension(),
			RawValue:        raw,
			Confidence:      confidence,
			ModelIdentifier: r.ModelID(),
		}
	}

	outcome := scoring.Combine(predictions, region.Baselines, vector.Completeness())

	return &PredictionContext{
		Query:   query,
		Region:  region,
		Vector:  vector,
		Runners: active,
		Outcome: outcome,
	}, nil
}

// buildRunners assembles the per-request runner set. Model load failures are
// logged and the runner skipped; the registry retries the load on the next
// request.
func (p *Predictor) buildRunners(region *models.RegionProfile) []runners.Runner {
	out := make([]runners.Runner, 0, 3)

	if model, err := p.registry.ClimateModel(region); err != nil {
		log.Printf("WARNING: climate model for %s unavailable: %v", region.Name, err)
	} else {
		out = append(out, runners.NewClimateRunner(model))
	}

	if model, err := p.registry.GeographicModel(region); err != nil {
		log.Printf("WARNING: geographic model for %s unavailable: %v", region.Name, err)
	} else {
		out = append(out, runners.NewGeographicRunner(model))
	}

	out = append(out, runners.NewEconomicRunner(region))
	return out
}
