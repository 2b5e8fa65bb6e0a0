package completion

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider formats transcriptions via OpenAI's chat completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	apiKey string
}

// NewOpenAIProvider returns a provider targeting OpenAI directly.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{client: openai.NewClient(apiKey), model: model, apiKey: apiKey}
}

func (p *OpenAIProvider) Name() string       { return "openai" }
func (p *OpenAIProvider) IsConfigured() bool { return p.apiKey != "" }

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (Response, error) {
	return chatComplete(ctx, p.client, p.Name(), p.model, req)
}

// GeminiProvider formats transcriptions via Gemini's OpenAI-compatible
// chat completions endpoint.
type GeminiProvider struct {
	client *openai.Client
	model  string
	apiKey string
}

// NewGeminiProvider returns a provider targeting Gemini's OpenAI-compatible
// base URL.
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	return &GeminiProvider{client: openai.NewClientWithConfig(cfg), model: model, apiKey: apiKey}
}

func (p *GeminiProvider) Name() string       { return "gemini" }
func (p *GeminiProvider) IsConfigured() bool { return p.apiKey != "" }

func (p *GeminiProvider) Complete(ctx context.Context, req Request) (Response, error) {
	return chatComplete(ctx, p.client, p.Name(), p.model, req)
}

// chatComplete issues one chat-completion call shared by every
// go-openai-backed provider: build the four-part system prompt, wrap the
// user text, and run at temperature 0.3 / max_tokens ~1000.
func chatComplete(ctx context.Context, client *openai.Client, name, model string, req Request) (Response, error) {
	if req.Text == "" {
		return Response{}, nil
	}

	systemPrompt := BuildSystemPrompt(req)
	userPrompt := BuildUserPrompt(req.Text)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
		MaxTokens:   maxTokens,
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, chatReq)
	duration := time.Since(start)
	if err != nil {
		log.Printf("%s-completion: API call failed after %v: %v", name, duration, err)
		return Response{}, fmt.Errorf("%s chat completion: %w", name, err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("%s chat completion: no response choices", name)
	}

	text := resp.Choices[0].Message.Content
	log.Printf("%s-completion: processed in %v: %q -> %q", name, duration, req.Text, text)

	return Response{
		Text:  text,
		Model: resp.Model,
		Usage: &TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
