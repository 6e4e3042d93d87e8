package providers

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// CompletionRequest is one system+user chat completion exchange.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
	JSONObject  bool
}

// CompletionResult carries the generated text and the provider's finish reason.
type CompletionResult struct {
	Text         string
	FinishReason string
}

// FinishReasonLength is reported when the completion was cut off by the token budget.
const FinishReasonLength = "length"

// GroqConfig configures the Groq chat-completion client. Groq exposes an
// OpenAI-compatible API, so the client rides on the OpenAI SDK with a
// custom base URL.
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// GroqClient calls the Groq chat-completion endpoint.
type GroqClient struct {
	client *openai.Client
	model  string
}

// NewGroqClient constructs the client. A missing API key yields an
// unconfigured client whose calls fail with ErrNotConfigured.
func NewGroqClient(cfg GroqConfig) *GroqClient {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &GroqClient{}
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &GroqClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

// Configured reports whether an API key was supplied.
func (c *GroqClient) Configured() bool {
	return c != nil && c.client != nil
}

// Complete performs one chat completion and returns the text with its finish reason.
func (c *GroqClient) Complete(ctx context.Context, request CompletionRequest) (CompletionResult, error) {
	if !c.Configured() {
		return CompletionResult{}, fmt.Errorf("%w: groq api key missing", ErrNotConfigured)
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if request.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: request.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: request.User,
	})

	chatRequest := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: request.Temperature,
		MaxTokens:   request.MaxTokens,
	}
	if request.JSONObject {
		chatRequest.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	response, err := c.client.CreateChatCompletion(ctx, chatRequest)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("%w: groq chat completion: %v", ErrUpstream, err)
	}
	if len(response.Choices) == 0 {
		return CompletionResult{}, fmt.Errorf("%w: groq returned no choices", ErrUpstream)
	}

	choice := response.Choices[0]
	return CompletionResult{
		Text:         strings.TrimSpace(choice.Message.Content),
		FinishReason: string(choice.FinishReason),
	}, nil
}
