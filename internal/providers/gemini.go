package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultImageMime     = "image/png"
)

// InlineImage is one generated image as base64 bytes plus its declared mime type.
type InlineImage struct {
	Data     string
	MimeType string
}

// GeminiConfig configures the Gemini image-generation client.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiClient calls the Gemini generateContent endpoint requesting combined
// text+image output and extracts the first inline image part.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient constructs the client. A missing API key yields an
// unconfigured client whose calls fail with ErrNotConfigured.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GeminiClient{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      cfg.Model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Configured reports whether an API key was supplied.
func (c *GeminiClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

type geminiGenerateRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GenerateImage requests an image for the prompt and returns the first inline
// image part. A response without an inline image part is an upstream failure.
func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string) (InlineImage, error) {
	if !c.Configured() {
		return InlineImage{}, fmt.Errorf("%w: gemini api key missing", ErrNotConfigured)
	}

	payload := geminiGenerateRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return InlineImage{}, err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return InlineImage{}, err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return InlineImage{}, fmt.Errorf("%w: gemini request: %v", ErrUpstream, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return InlineImage{}, fmt.Errorf("%w: gemini response read: %v", ErrUpstream, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return InlineImage{}, fmt.Errorf("%w: gemini status %s: %s",
			ErrUpstream, response.Status, strings.TrimSpace(string(responseBody)))
	}

	var parsed geminiGenerateResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return InlineImage{}, fmt.Errorf("%w: gemini response parse: %v", ErrUpstream, err)
	}

	if len(parsed.Candidates) > 0 {
		for _, part := range parsed.Candidates[0].Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = defaultImageMime
			}
			return InlineImage{Data: part.InlineData.Data, MimeType: mime}, nil
		}
	}

	return InlineImage{}, fmt.Errorf("%w: gemini did not return an image", ErrUpstream)
}
