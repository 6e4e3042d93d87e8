package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryConfig configures the image hosting uploader.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// CloudinaryHost uploads base64 images to Cloudinary and returns durable secure URLs.
type CloudinaryHost struct {
	client *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryHost constructs the uploader. Missing credentials yield an
// unconfigured host whose uploads fail with ErrNotConfigured.
func NewCloudinaryHost(cfg CloudinaryConfig) (*CloudinaryHost, error) {
	if strings.TrimSpace(cfg.CloudName) == "" ||
		strings.TrimSpace(cfg.APIKey) == "" ||
		strings.TrimSpace(cfg.APISecret) == "" {
		return &CloudinaryHost{folder: cfg.Folder}, nil
	}

	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryHost{client: client, folder: cfg.Folder}, nil
}

// Configured reports whether credentials were supplied.
func (h *CloudinaryHost) Configured() bool {
	return h != nil && h.client != nil
}

// Upload stores the base64 image under the configured folder and returns its secure URL.
func (h *CloudinaryHost) Upload(ctx context.Context, base64Data, mimeType string) (string, error) {
	if !h.Configured() {
		return "", fmt.Errorf("%w: cloudinary credentials missing", ErrNotConfigured)
	}

	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64Data)
	result, err := h.client.Upload.Upload(ctx, dataURI, uploader.UploadParams{
		Folder:       h.folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("%w: cloudinary upload: %v", ErrUpstream, err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("%w: cloudinary returned no secure url", ErrUpstream)
	}
	return result.SecureURL, nil
}
