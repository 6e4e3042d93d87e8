package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/trendforge/backend/internal/providers"
	"go.uber.org/zap"
)

const thumbnailPromptTemplate = `Create a bold, eye-catching YouTube thumbnail image for a video about:
Topic: %s
Context: %s
Style: High contrast, vibrant, news/media thumbnail style, photorealistic, landscape composition, warm energetic tones (oranges reds yellows), NO text overlays in the image.`

// ImageResult is the outcome of one thumbnail generation: the hosted URL,
// never the raw image bytes.
type ImageResult struct {
	ImageURL  string `json:"imageUrl"`
	ImageMime string `json:"imageMime"`
}

// ImageService generates a thumbnail image and uploads it to the hosting provider.
type ImageService struct {
	images ImageClient
	host   ImageHost
	logger *zap.Logger
}

// NewImageService constructs the image generator.
func NewImageService(images ImageClient, host ImageHost, logger *zap.Logger) *ImageService {
	if logger == nil {
		logger = noOpLogger
	}
	return &ImageService{images: images, host: host, logger: logger}
}

// Generate produces a thumbnail for the topic and returns its hosted secure URL.
func (s *ImageService) Generate(ctx context.Context, topicTitle, topicDescription string) (ImageResult, error) {
	if strings.TrimSpace(topicTitle) == "" {
		return ImageResult{}, fmt.Errorf("%w: topic title is required", ErrInvalidInput)
	}
	if s.images == nil || !s.images.Configured() {
		return ImageResult{}, fmt.Errorf("%w: image provider", providers.ErrNotConfigured)
	}
	if s.host == nil || !s.host.Configured() {
		return ImageResult{}, fmt.Errorf("%w: image hosting provider", providers.ErrNotConfigured)
	}

	prompt := fmt.Sprintf(thumbnailPromptTemplate, topicTitle, topicContext(topicDescription))
	image, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		s.logger.Error("image generation failed", zap.Error(err), zap.String("topic", topicTitle))
		return ImageResult{}, err
	}

	secureURL, err := s.host.Upload(ctx, image.Data, image.MimeType)
	if err != nil {
		s.logger.Error("image hosting upload failed", zap.Error(err), zap.String("topic", topicTitle))
		return ImageResult{}, fmt.Errorf("%w: %v", ErrHostingUpload, err)
	}

	return ImageResult{ImageURL: secureURL, ImageMime: image.MimeType}, nil
}
