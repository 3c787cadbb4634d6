package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/fingenius/internal/ai"
	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/logger"
)

// insightCount is the number of insights a report carries.
const insightCount = 3

// InsightGenerator asks a text model for insights about a summary.
// A generator without a model always skips.
type InsightGenerator struct {
	gen ai.TextGenerator
}

// NewInsightGenerator creates a generator. gen may be nil.
func NewInsightGenerator(gen ai.TextGenerator) *InsightGenerator {
	return &InsightGenerator{gen: gen}
}

// Generate never fails: every model or parse error yields a skipped outcome.
func (g *InsightGenerator) Generate(ctx context.Context, summary *domain.Summary) (outcome domain.InsightOutcome) {
	if summary == nil {
		return domain.InsightOutcome{Status: domain.InsightsNotRequested, Items: []string{}}
	}
	if g == nil || g.gen == nil {
		return domain.SkippedInsights("insight generation disabled")
	}

	log := logger.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Insight generation panicked")
			outcome = domain.SkippedInsights(fmt.Sprintf("insight generation panicked: %v", r))
		}
	}()

	raw, err := g.gen.Generate(ctx, ai.Request{
		Prompt: insightPrompt(summary),
		JSON:   true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Insight generation failed")
		return domain.SkippedInsights("text generation failed: " + err.Error())
	}

	items, err := parseInsights(raw)
	if err != nil {
		log.Warn().Err(err).Str("raw_response", raw).Msg("Discarding unusable insight response")
		return domain.SkippedInsights(err.Error())
	}

	return domain.InsightOutcome{Status: domain.InsightsGenerated, Items: items}
}

// parseInsights accepts only a JSON array of exactly three non-empty strings.
func parseInsights(raw string) ([]string, error) {
	var items []string
	if err := json.Unmarshal([]byte(ai.CleanJSON(raw)), &items); err != nil {
		return nil, fmt.Errorf("response is not a JSON array of strings: %w", err)
	}
	if len(items) != insightCount {
		return nil, fmt.Errorf("expected %d insights, got %d", insightCount, len(items))
	}
	for i, item := range items {
		items[i] = strings.TrimSpace(item)
		if items[i] == "" {
			return nil, fmt.Errorf("insight %d is empty", i+1)
		}
	}
	return items, nil
}
