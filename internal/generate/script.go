package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/trendforge/backend/internal/providers"
	"go.uber.org/zap"
)

// wordsPerMinute is the assumed speaking rate used for the duration estimate.
const wordsPerMinute = 140

const scriptSystemMessage = `You are an expert YouTube and short-form video scriptwriter. You write engaging, conversational scripts that hook viewers immediately and keep them watching till the end.`

const scriptUserTemplate = `Write a complete video script for the following trending topic.

Topic: %s
Context: %s

Structure the script EXACTLY like this:

🎬 HOOK (0–15 seconds)
[Attention-grabbing opening line. Make it shocking, curious or bold.]

📖 INTRO (15–30 seconds)
[Briefly tell viewers what this video is about and why it matters to them.]

🔍 SECTION 1 — [Give it a relevant title]
[Explain the first key point clearly. Use simple language.]

🔍 SECTION 2 — [Give it a relevant title]
[Explain the second key point. Add interesting facts or context.]

🔍 SECTION 3 — [Give it a relevant title]
[Explain the third key point. Include any controversy or drama if relevant.]

💡 KEY TAKEAWAY
[Summarize what the viewer should remember in 1–2 sentences.]

📢 OUTRO & CTA (last 20 seconds)
[Wrap up warmly. Ask viewers to like, comment their opinion, and subscribe. Suggest what video to watch next.]

Keep the tone: conversational, engaging, easy to understand. Avoid jargon. Write as if speaking directly to a viewer.`

// ScriptResult is the outcome of one script generation.
type ScriptResult struct {
	Script          string    `json:"script"`
	WordCount       int       `json:"wordCount"`
	SpeakingMinutes int       `json:"speakingMinutes"`
	Sections        []Section `json:"sections"`
}

// ScriptService generates video scripts with a single completion call.
type ScriptService struct {
	completions CompletionClient
	logger      *zap.Logger
}

// NewScriptService constructs the script generator.
func NewScriptService(completions CompletionClient, logger *zap.Logger) *ScriptService {
	if logger == nil {
		logger = noOpLogger
	}
	return &ScriptService{completions: completions, logger: logger}
}

// Generate produces a structured script for the topic.
func (s *ScriptService) Generate(ctx context.Context, topicTitle, topicDescription string) (ScriptResult, error) {
	if strings.TrimSpace(topicTitle) == "" {
		return ScriptResult{}, fmt.Errorf("%w: topic title is required", ErrInvalidInput)
	}
	if s.completions == nil || !s.completions.Configured() {
		return ScriptResult{}, fmt.Errorf("%w: completion provider", providers.ErrNotConfigured)
	}

	result, err := s.completions.Complete(ctx, providers.CompletionRequest{
		System:      scriptSystemMessage,
		User:        fmt.Sprintf(scriptUserTemplate, topicTitle, topicContext(topicDescription)),
		Temperature: 0.8,
		MaxTokens:   2048,
	})
	if err != nil {
		s.logger.Error("script generation failed", zap.Error(err), zap.String("topic", topicTitle))
		return ScriptResult{}, err
	}

	script := strings.TrimSpace(result.Text)
	if script == "" {
		return ScriptResult{}, fmt.Errorf("%w: empty script", providers.ErrUpstream)
	}

	wordCount := len(strings.Fields(script))
	return ScriptResult{
		Script:          script,
		WordCount:       wordCount,
		SpeakingMinutes: speakingMinutes(wordCount),
		Sections:        ParseSections(script),
	}, nil
}

// speakingMinutes estimates duration as ceil(wordCount / wordsPerMinute).
func speakingMinutes(wordCount int) int {
	return (wordCount + wordsPerMinute - 1) / wordsPerMinute
}
