package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openRouterAPIBase = "https://openrouter.ai/api/v1"

// defaultOpenRouterModels mirrors the original priority list: a fast
// primary model with a cheaper fallback.
var defaultOpenRouterModels = []string{
	"meta-llama/llama-4-maverick:nitro",
	"openai/gpt-oss-120b:nitro",
}

// OpenRouterProvider formats transcriptions via OpenRouter's OpenAI-
// compatible endpoint, passing a priority list of models in one request
// and letting OpenRouter fall through the list server-side on failure.
type OpenRouterProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	models     []string
}

// NewOpenRouterProvider returns a provider using the default model
// priority list.
func NewOpenRouterProvider(apiKey string) *OpenRouterProvider {
	return &OpenRouterProvider{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    openRouterAPIBase,
		apiKey:     apiKey,
		models:     append([]string(nil), defaultOpenRouterModels...),
	}
}

// WithModels overrides the fan-out priority list.
func (p *OpenRouterProvider) WithModels(models []string) *OpenRouterProvider {
	p.models = models
	return p
}

func (p *OpenRouterProvider) Name() string       { return "openrouter" }
func (p *OpenRouterProvider) IsConfigured() bool { return p.apiKey != "" }

type openRouterChatRequest struct {
	Models      []string                `json:"models"`
	Messages    []openRouterChatMessage `json:"messages"`
	MaxTokens   int                     `json:"max_tokens,omitempty"`
	Temperature float32                 `json:"temperature"`
	Provider    *openRouterProviderCfg  `json:"provider,omitempty"`
}

type openRouterChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterProviderCfg struct {
	AllowFallbacks bool               `json:"allow_fallbacks"`
	Sort           *openRouterSortCfg `json:"sort,omitempty"`
}

type openRouterSortCfg struct {
	By        string `json:"by"`
	Partition string `json:"partition"`
}

type openRouterChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Model string `json:"model"`
}

func (p *OpenRouterProvider) Complete(ctx context.Context, req Request) (Response, error) {
	if req.Text == "" {
		return Response{}, nil
	}
	if p.apiKey == "" {
		return Response{}, fmt.Errorf("completion: openrouter API key not set")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	body := openRouterChatRequest{
		Models: p.models,
		Messages: []openRouterChatMessage{
			{Role: "system", Content: BuildSystemPrompt(req)},
			{Role: "user", Content: BuildUserPrompt(req.Text)},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
		Provider: &openRouterProviderCfg{
			AllowFallbacks: true,
			Sort:           &openRouterSortCfg{By: "throughput", Partition: "none"},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("completion: marshal openrouter request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("completion: build openrouter request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("completion: openrouter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return Response{}, fmt.Errorf("completion: openrouter API error (%s): %s", resp.Status, errBody)
	}

	var chatResp openRouterChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return Response{}, fmt.Errorf("completion: decode openrouter response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return Response{}, fmt.Errorf("completion: openrouter returned no choices")
	}

	out := Response{
		Text:  chatResp.Choices[0].Message.Content,
		Model: chatResp.Model,
	}
	if chatResp.Usage != nil {
		out.Usage = &TokenUsage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:      chatResp.Usage.TotalTokens,
		}
	}
	return out, nil
}
