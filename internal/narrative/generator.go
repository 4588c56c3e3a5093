package narrative

import (
	"context"
	"errors"
	"log"
	"time"

	"ecoscope/internal/models"
)

// ErrGenerationFailed marks a failed external generation; the generator
// absorbs it by switching to the template path.
var ErrGenerationFailed = errors.New("narrative generation failed")

// StoryClient is the external language-generation collaborator boundary.
type StoryClient interface {
	GenerateStory(ctx context.Context, outcome models.CompositeOutcome, report *models.AttributionReport, region string) (*models.NarrativeStory, TokenUsage, error)
}

// Generator produces a story for every assessment: the external client when
// it succeeds within the timeout, the deterministic template otherwise.
type Generator struct {
	client  StoryClient
	timeout time.Duration
}

// NewGenerator wraps the client; a nil client means template-only operation.
func NewGenerator(client StoryClient, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{client: client, timeout: timeout}
}

// Generate never fails: both paths fill the same section schema.
func (g *Generator) Generate(ctx context.Context, outcome models.CompositeOutcome, report *models.AttributionReport, region string) *models.NarrativeStory {
	primaryDriver := ""
	if report != nil && !report.Unavailable {
		primaryDriver = report.PrimaryDriver
	}

	if g.client == nil || report == nil || report.Unavailable {
		return FallbackStory(outcome, primaryDriver, region)
	}

	genCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	story, usage, err := g.client.GenerateStory(genCtx, outcome, report, region)
	if err != nil {
		log.Printf("story generation failed for %s, using template: %v", region, err)
		return FallbackStory(outcome, primaryDriver, region)
	}

	log.Printf("story generated for %s (%d tokens)", region, usage.TotalTokens)
	return story
}
