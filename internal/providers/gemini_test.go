package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiGenerateImage(t *testing.T) {
	var gotPath string
	var gotBody geminiGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {
					"parts": [
						{"text": "Here is your image."},
						{"inlineData": {"mimeType": "image/jpeg", "data": "aGVsbG8="}}
					]
				}
			}]
		}`))
	}))
	defer server.Close()

	client := NewGeminiClient(GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash-image",
		BaseURL: server.URL,
	})

	image, err := client.GenerateImage(context.Background(), "a landscape")
	if err != nil {
		t.Fatalf("generate image: %v", err)
	}
	if image.Data != "aGVsbG8=" || image.MimeType != "image/jpeg" {
		t.Fatalf("unexpected image: %+v", image)
	}
	if gotPath != "/v1beta/models/gemini-2.5-flash-image:generateContent" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "a landscape" {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
	modalities := gotBody.GenerationConfig.ResponseModalities
	if len(modalities) != 2 || modalities[0] != "TEXT" || modalities[1] != "IMAGE" {
		t.Fatalf("unexpected response modalities: %v", modalities)
	}
}

func TestGeminiGenerateImageDefaultsMimeType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"inlineData": {"data": "aGVsbG8="}}]}
			}]
		}`))
	}))
	defer server.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "test-key", Model: "m", BaseURL: server.URL})
	image, err := client.GenerateImage(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("generate image: %v", err)
	}
	if image.MimeType != "image/png" {
		t.Fatalf("expected default mime type, got %q", image.MimeType)
	}
}

func TestGeminiGenerateImageNoImagePart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"text": "I cannot draw that."}]}
			}]
		}`))
	}))
	defer server.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "test-key", Model: "m", BaseURL: server.URL})
	_, err := client.GenerateImage(context.Background(), "prompt")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGeminiGenerateImageUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "test-key", Model: "m", BaseURL: server.URL})
	_, err := client.GenerateImage(context.Background(), "prompt")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected upstream detail in error: %v", err)
	}
}

func TestGeminiUnconfigured(t *testing.T) {
	client := NewGeminiClient(GeminiConfig{})
	if client.Configured() {
		t.Fatalf("expected unconfigured client")
	}
	_, err := client.GenerateImage(context.Background(), "prompt")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
