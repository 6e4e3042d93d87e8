package trending

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trendforge/backend/internal/providers"
	"go.uber.org/zap"
)

const backfillPromptTemplate = `For each of these trending topics, write a 2-sentence simple description that a general audience can understand. Avoid jargon.

Topics: %s

Return ONLY a JSON array where each object has:
- title: the exact topic name as given
- description: your 2-sentence explanation
Return ONLY the JSON array, no extra text.`

// CompletionClient is the text-completion capability the backfiller consumes.
type CompletionClient interface {
	Configured() bool
	Complete(ctx context.Context, request providers.CompletionRequest) (providers.CompletionResult, error)
}

// Backfiller fills missing topic descriptions with a single batched
// completion call. Every failure is swallowed: callers rely on the fallback
// description pass, never on this one.
type Backfiller struct {
	completions CompletionClient
	logger      *zap.Logger
}

// NewBackfiller constructs the backfiller.
func NewBackfiller(completions CompletionClient, logger *zap.Logger) *Backfiller {
	if logger == nil {
		logger = noOpLogger
	}
	return &Backfiller{completions: completions, logger: logger}
}

type describedTopic struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FillDescriptions batches all topics lacking a description into one prompt
// and matches response entries back by case-insensitive exact title. Only
// topics still missing a description are eligible for matching.
func (b *Backfiller) FillDescriptions(ctx context.Context, topics []Topic) {
	if b.completions == nil || !b.completions.Configured() {
		return
	}

	titles := make([]string, 0, len(topics))
	for _, topic := range topics {
		if topic.Description == "" {
			titles = append(titles, topic.Title)
		}
	}
	if len(titles) == 0 {
		return
	}

	result, err := b.completions.Complete(ctx, providers.CompletionRequest{
		User:        fmt.Sprintf(backfillPromptTemplate, strings.Join(titles, ", ")),
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		b.logger.Warn("description backfill failed", zap.Error(err))
		return
	}

	raw := stripCodeFence(result.Text)
	var described []describedTopic
	if err := json.Unmarshal([]byte(raw), &described); err != nil {
		b.logger.Warn("description backfill returned unparsable content", zap.Error(err))
		return
	}

	for _, entry := range described {
		for i := range topics {
			if topics[i].Description != "" {
				continue
			}
			if strings.EqualFold(topics[i].Title, entry.Title) {
				topics[i].Description = entry.Description
				break
			}
		}
	}
}

func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}
