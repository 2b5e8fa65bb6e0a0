package transcription

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// CloudRawProvider uploads WAV audio to any OpenAI-compatible transcription
// endpoint (OpenAI, Groq, Mistral, ...) and returns transcription only —
// no server-side formatting.
type CloudRawProvider struct {
	client   *openai.Client
	name     string
	model    string
	apiKey   string
	keywords []string
}

// NewCloudRawProvider builds a raw whisper-style provider. baseURL empty
// means the official OpenAI endpoint; set it to target a compatible
// service like Groq ("https://api.groq.com/openai/v1").
func NewCloudRawProvider(name, baseURL, apiKey, model string, keywords []string) *CloudRawProvider {
	var client *openai.Client
	if baseURL != "" {
		cfg := openai.DefaultConfig(apiKey)
		cfg.BaseURL = baseURL
		client = openai.NewClientWithConfig(cfg)
	} else {
		client = openai.NewClient(apiKey)
	}
	return &CloudRawProvider{client: client, name: name, model: model, apiKey: apiKey, keywords: keywords}
}

func (p *CloudRawProvider) Name() string       { return p.name }
func (p *CloudRawProvider) IsConfigured() bool { return p.apiKey != "" }

func (p *CloudRawProvider) Transcribe(ctx context.Context, req Request) (Response, error) {
	if len(req.PCM) == 0 {
		return Response{}, nil
	}

	sampleRate := req.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	wavData, err := convertToWAV(req.PCM, sampleRate)
	if err != nil {
		return Response{}, fmt.Errorf("transcription: convert to WAV: %w", err)
	}

	areq := openai.AudioRequest{
		Model:    p.model,
		Reader:   bytes.NewReader(wavData),
		FilePath: "audio.wav",
		Language: req.LanguageHint,
	}
	if req.PromptHint != "" {
		areq.Prompt = req.PromptHint
	} else if len(p.keywords) > 0 {
		areq.Prompt = strings.Join(p.keywords, ", ")
	}

	start := time.Now()
	resp, err := p.client.CreateTranscription(ctx, areq)
	duration := time.Since(start)
	if err != nil {
		return Response{}, fmt.Errorf("transcription: %s transcription: %w", p.name, err)
	}

	return Response{
		Text:       resp.Text,
		Language:   req.LanguageHint,
		DurationMs: duration.Milliseconds(),
	}, nil
}
