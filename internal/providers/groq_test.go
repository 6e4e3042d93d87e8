package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGroqComplete(t *testing.T) {
	var gotRequest map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{
				"message": {"role": "assistant", "content": "  Generated text.  "},
				"finish_reason": "stop"
			}]
		}`))
	}))
	defer server.Close()

	client := NewGroqClient(GroqConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "llama-3.3-70b-versatile",
	})
	if !client.Configured() {
		t.Fatalf("expected configured client")
	}

	result, err := client.Complete(context.Background(), CompletionRequest{
		System:      "You write tests.",
		User:        "Write one.",
		Temperature: 0.7,
		MaxTokens:   256,
		JSONObject:  true,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.Text != "Generated text." {
		t.Fatalf("expected trimmed text, got %q", result.Text)
	}
	if result.FinishReason != "stop" {
		t.Fatalf("unexpected finish reason: %q", result.FinishReason)
	}

	if gotRequest["model"] != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected model: %v", gotRequest["model"])
	}
	format, _ := gotRequest["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", gotRequest["response_format"])
	}
	messages, _ := gotRequest["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %v", gotRequest["messages"])
	}
}

func TestGroqCompleteLengthFinishReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{
				"message": {"role": "assistant", "content": "Truncated"},
				"finish_reason": "length"
			}]
		}`))
	}))
	defer server.Close()

	client := NewGroqClient(GroqConfig{APIKey: "test-key", BaseURL: server.URL, Model: "m"})
	result, err := client.Complete(context.Background(), CompletionRequest{User: "hi"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.FinishReason != FinishReasonLength {
		t.Fatalf("expected length finish reason, got %q", result.FinishReason)
	}
}

func TestGroqCompleteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGroqClient(GroqConfig{APIKey: "test-key", BaseURL: server.URL, Model: "m"})
	_, err := client.Complete(context.Background(), CompletionRequest{User: "hi"})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGroqCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := NewGroqClient(GroqConfig{APIKey: "test-key", BaseURL: server.URL, Model: "m"})
	_, err := client.Complete(context.Background(), CompletionRequest{User: "hi"})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGroqUnconfigured(t *testing.T) {
	client := NewGroqClient(GroqConfig{APIKey: "   "})
	if client.Configured() {
		t.Fatalf("expected unconfigured client")
	}
	_, err := client.Complete(context.Background(), CompletionRequest{User: "hi"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
