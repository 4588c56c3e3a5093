package services

import (
	"context"
	"encoding/json"
	"fmt"

	"ecoscope/internal/explain"
	"ecoscope/internal/models"
	"ecoscope/internal/narrative"
)

// AnalysisPipeline produces the stored analysis artifacts for a query: the
// hierarchical attribution report and the narrative story, both as JSON.
type AnalysisPipeline interface {
	Analyze(ctx context.Context, query models.Query) (shapData string, story string, err error)
}

// ExplainPipeline is the production pipeline: score, attribute, narrate.
type ExplainPipeline struct {
	predictor *Predictor
	engine    *explain.Engine
	generator *narrative.Generator
}

func NewExplainPipeline(predictor *Predictor, engine *explain.Engine, generator *narrative.Generator) *ExplainPipeline {
	return &ExplainPipeline{predictor: predictor, engine: engine, generator: generator}
}

func (p *ExplainPipeline) Analyze(ctx context.Context, query models.Query) (string, string, error) {
	pc, err := p.predictor.Predict(ctx, query)
	if err != nil {
		return "", "", fmt.Errorf("prediction failed: %w", err)
	}

	report := p.engine.Explain(pc.Runners, pc.Vector)
	story := p.generator.Generate(ctx, *pc.Outcome, report, pc.Region.Name)

	shapJSON, err := json.Marshal(report)
	if err != nil {
		return "", "", fmt.Errorf("failed to serialize attribution report: %w", err)
	}
	storyJSON, err := json.Marshal(story)
	if err != nil {
		return "", "", fmt.Errorf("failed to serialize story: %w", err)
	}

	return string(shapJSON), string(storyJSON), nil
}
