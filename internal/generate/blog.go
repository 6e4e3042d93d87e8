package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/trendforge/backend/internal/generations"
	"github.com/trendforge/backend/internal/providers"
	"github.com/trendforge/backend/internal/topics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const blogSystemMessage = `You are an expert blog writer and content creator. You write detailed, engaging, SEO-friendly blog posts that are easy to read, well structured, and informative. You always write in a warm, conversational yet professional tone.`

const blogUserTemplate = `Write a complete, detailed blog post about the following trending topic.

Topic: %s
Context: %s

Return your response as a valid JSON object with these exact fields:
{
  "title": "An engaging, SEO-friendly blog post title",
  "metaDescription": "A 150-160 character meta description for SEO",
  "readTime": "e.g. 5 min read",
  "body": "The full blog post in markdown format"
}

Blog post structure must follow this format:

# {Title}

## Introduction
[2-3 engaging paragraphs that hook the reader and explain why this topic matters right now]

## Background / What You Need to Know
[2-3 paragraphs giving context and background]

## [Main Section 1 — give a relevant title]
[3-4 paragraphs with key details, facts, analysis]

## [Main Section 2 — give a relevant title]
[3-4 paragraphs with deeper insights, implications]

## [Main Section 3 — give a relevant title]
[2-3 paragraphs with current developments or controversy]

## Key Takeaways
[Bullet list of 4-5 most important points from the article]

## Conclusion
[2 paragraphs wrapping up with a forward-looking perspective]

Requirements:
- Minimum 800 words
- Use subheadings generously
- Include relevant statistics or facts where appropriate
- Conversational but professional tone
- No jargon, easy to understand
- Return ONLY the JSON object, no extra text, no markdown code fences around it`

const blogImagePromptTemplate = `Create a professional, eye-catching featured blog post header image for an article about:
Topic: %s
Context: %s

Style requirements:
- Editorial/magazine style header image
- Professional and clean composition
- Warm tones: oranges, reds, yellows, golden hues
- Photorealistic or high quality illustrated style
- Wide landscape format (banner style)
- Visually represents the topic clearly
- NO text, NO words, NO letters in the image
- High quality, publication ready`

// BlogContent is the structured object the completion provider is asked to return.
type BlogContent struct {
	Title           string `json:"title"`
	MetaDescription string `json:"metaDescription"`
	ReadTime        string `json:"readTime"`
	Body            string `json:"body"`
}

// BlogResult is the persisted blog bundle plus the new generation's identifier.
type BlogResult struct {
	GenerationID    string `json:"generationId"`
	Title           string `json:"title"`
	MetaDescription string `json:"metaDescription"`
	ReadTime        string `json:"readTime"`
	Body            string `json:"body"`
	HTMLBody        string `json:"htmlBody"`
	ImageData       string `json:"imageData"`
	ImageMime       string `json:"imageMime"`
}

// BlogService orchestrates the parallel text and image calls, converts the
// markdown body, and persists the result. The image is stored inline in the
// generation row rather than via the hosting provider.
type BlogService struct {
	completions CompletionClient
	images      ImageClient
	topics      *topics.Service
	generations *generations.Service
	logger      *zap.Logger
}

// BlogServiceConfig describes the dependencies of the blog generator.
type BlogServiceConfig struct {
	Completions CompletionClient
	Images      ImageClient
	Topics      *topics.Service
	Generations *generations.Service
	Logger      *zap.Logger
}

// NewBlogService constructs the blog generator.
func NewBlogService(cfg BlogServiceConfig) (*BlogService, error) {
	if cfg.Topics == nil {
		return nil, errors.New("generate: topic service is required")
	}
	if cfg.Generations == nil {
		return nil, errors.New("generate: generation service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &BlogService{
		completions: cfg.Completions,
		images:      cfg.Images,
		topics:      cfg.Topics,
		generations: cfg.Generations,
		logger:      logger,
	}, nil
}

// Generate runs the text and image calls concurrently, awaits both, converts
// the markdown body to HTML, upserts the topic, and stores one BLOG
// generation row for the user.
func (s *BlogService) Generate(ctx context.Context, userID, topicTitle, topicDescription string) (BlogResult, error) {
	if strings.TrimSpace(topicTitle) == "" {
		return BlogResult{}, fmt.Errorf("%w: topic title is required", ErrInvalidInput)
	}
	if s.completions == nil || !s.completions.Configured() {
		return BlogResult{}, fmt.Errorf("%w: completion provider", providers.ErrNotConfigured)
	}

	var content BlogContent
	var image providers.InlineImage

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		content, err = s.generateText(groupCtx, topicTitle, topicDescription)
		return err
	})
	group.Go(func() error {
		image = s.featuredImage(groupCtx, topicTitle, topicDescription)
		return nil
	})
	if err := group.Wait(); err != nil {
		return BlogResult{}, err
	}

	htmlBody := MarkdownToHTML(content.Body)

	topic, err := s.topics.FindOrCreate(ctx, topicTitle, topicDescription)
	if err != nil {
		return BlogResult{}, err
	}

	bundle := map[string]string{
		"title":           content.Title,
		"metaDescription": content.MetaDescription,
		"readTime":        content.ReadTime,
		"body":            content.Body,
		"htmlBody":        htmlBody,
		"imageData":       image.Data,
		"imageMime":       image.MimeType,
	}
	contentJSON, err := json.Marshal(bundle)
	if err != nil {
		return BlogResult{}, err
	}

	generation, err := s.generations.Create(ctx, generations.CreateInput{
		Type:    generations.TypeBlog,
		Content: string(contentJSON),
		TopicID: topic.ID,
		UserID:  userID,
	})
	if err != nil {
		return BlogResult{}, err
	}

	return BlogResult{
		GenerationID:    generation.ID,
		Title:           content.Title,
		MetaDescription: content.MetaDescription,
		ReadTime:        content.ReadTime,
		Body:            content.Body,
		HTMLBody:        htmlBody,
		ImageData:       image.Data,
		ImageMime:       image.MimeType,
	}, nil
}

// generateText runs the completion call and parses the structured blog object.
// A truncated completion is unusable and fails the request.
func (s *BlogService) generateText(ctx context.Context, topicTitle, topicDescription string) (BlogContent, error) {
	result, err := s.completions.Complete(ctx, providers.CompletionRequest{
		System:      blogSystemMessage,
		User:        fmt.Sprintf(blogUserTemplate, topicTitle, topicContext(topicDescription)),
		Temperature: 0.7,
		MaxTokens:   8192,
		JSONObject:  true,
	})
	if err != nil {
		s.logger.Error("blog text generation failed", zap.Error(err), zap.String("topic", topicTitle))
		return BlogContent{}, err
	}

	if result.FinishReason == providers.FinishReasonLength {
		s.logger.Warn("blog completion truncated", zap.String("topic", topicTitle))
		return BlogContent{}, fmt.Errorf("%w: blog generation was cut short, please try again", providers.ErrUpstream)
	}

	raw := strings.TrimSpace(result.Text)
	if raw == "" {
		return BlogContent{}, fmt.Errorf("%w: empty blog content", providers.ErrUpstream)
	}

	var content BlogContent
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &content); err != nil {
		s.logger.Warn("blog content parse failed", zap.Error(err), zap.String("topic", topicTitle))
		return BlogContent{}, fmt.Errorf("%w: failed to parse blog content, please try again", providers.ErrUpstream)
	}
	return content, nil
}

// featuredImage applies the image-path policy: a missing credential or any
// provider failure degrades to empty image fields instead of failing the request.
func (s *BlogService) featuredImage(ctx context.Context, topicTitle, topicDescription string) providers.InlineImage {
	if s.images == nil || !s.images.Configured() {
		return providers.InlineImage{}
	}
	prompt := fmt.Sprintf(blogImagePromptTemplate, topicTitle, topicContext(topicDescription))
	image, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		s.logger.Warn("blog featured image degraded", zap.Error(err), zap.String("topic", topicTitle))
		return providers.InlineImage{}
	}
	return image
}

// extractJSONObject strips markdown code fences and cuts the substring
// between the first '{' and the last '}' to tolerate providers that wrap
// JSON in prose.
func extractJSONObject(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end != -1 && end > start {
		raw = raw[start : end+1]
	}
	return raw
}
