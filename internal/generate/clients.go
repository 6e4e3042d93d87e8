package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/trendforge/backend/internal/providers"
	"go.uber.org/zap"
)

var (
	// ErrInvalidInput indicates a required generator input is missing.
	ErrInvalidInput = errors.New("generate: invalid input")
	// ErrHostingUpload distinguishes an image hosting failure from a generation failure.
	ErrHostingUpload = fmt.Errorf("%w: hosting upload", providers.ErrUpstream)

	noOpLogger = zap.NewNop()
)

// CompletionClient is the text-completion capability the generators consume.
type CompletionClient interface {
	Configured() bool
	Complete(ctx context.Context, request providers.CompletionRequest) (providers.CompletionResult, error)
}

// ImageClient is the image-generation capability the generators consume.
type ImageClient interface {
	Configured() bool
	GenerateImage(ctx context.Context, prompt string) (providers.InlineImage, error)
}

// ImageHost is the durable image hosting capability the image generator consumes.
type ImageHost interface {
	Configured() bool
	Upload(ctx context.Context, base64Data, mimeType string) (string, error)
}

// topicContext fills the prompt context slot, defaulting when no description is known.
func topicContext(description string) string {
	if description == "" {
		return "A currently trending topic."
	}
	return description
}
