package transcription

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CloudAutoProvider posts a single request carrying base64 WAV audio and
// completion parameters to a combined transcription+completion worker
// endpoint, receiving both the raw transcription and the formatted text
// in one round trip. Wake-phrase handling happens server-side, so Engine
// can skip a separate completion call when CompletedText is populated.
type CloudAutoProvider struct {
	endpoint   string
	httpClient *http.Client
}

// NewCloudAutoProvider returns a provider that posts to endpoint.
func NewCloudAutoProvider(endpoint string) *CloudAutoProvider {
	return &CloudAutoProvider{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *CloudAutoProvider) Name() string       { return "cloud-auto" }
func (p *CloudAutoProvider) IsConfigured() bool { return p.endpoint != "" }

type cloudAutoRequest struct {
	WhisperInput cloudAutoWhisperInput `json:"whisper_input"`
	Completion   cloudAutoCompletion   `json:"completion"`
}

type cloudAutoWhisperInput struct {
	Audio         cloudAutoAudio `json:"audio"`
	WhisperParams struct {
		AudioLanguage string `json:"audio_language"`
	} `json:"whisper_params"`
}

type cloudAutoAudio struct {
	AudioB64 string `json:"audio_b64"`
}

type cloudAutoCompletion struct {
	Mode               string   `json:"mode"`
	AppContext         string   `json:"app_context,omitempty"`
	ShortcutsTriggered []string `json:"shortcuts_triggered"`
	VoiceInstruction   string   `json:"voice_instruction,omitempty"`
}

type cloudAutoResponse struct {
	Transcription string `json:"transcription"`
	Text          string `json:"text"`
	Language      string `json:"language,omitempty"`
}

// Transcribe sends req's audio plus completion params alongside it.
// req.Completion must be non-nil: the worker requires completion
// parameters for every request to know how to format the transcription.
func (p *CloudAutoProvider) Transcribe(ctx context.Context, req Request) (Response, error) {
	if len(req.PCM) == 0 {
		return Response{}, nil
	}
	if req.Completion == nil {
		return Response{}, fmt.Errorf("transcription: cloud-auto requires completion params")
	}
	completion := *req.Completion

	sampleRate := req.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	wavData, err := convertToWAV(req.PCM, sampleRate)
	if err != nil {
		return Response{}, fmt.Errorf("transcription: convert to WAV: %w", err)
	}

	language := req.LanguageHint
	if language == "" {
		language = "auto"
	}

	body := cloudAutoRequest{
		WhisperInput: cloudAutoWhisperInput{
			Audio: cloudAutoAudio{AudioB64: base64.StdEncoding.EncodeToString(wavData)},
		},
		Completion: cloudAutoCompletion{
			Mode:               completion.Mode,
			AppContext:         completion.AppContext,
			ShortcutsTriggered: completion.ShortcutsTriggered,
			VoiceInstruction:   completion.VoiceInstruction,
		},
	}
	body.WhisperInput.WhisperParams.AudioLanguage = language

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("transcription: marshal worker request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("transcription: build worker request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("transcription: cloud-auto request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return Response{}, fmt.Errorf("transcription: cloud-auto worker error %s: %s", resp.Status, errBody)
	}

	var workerResp cloudAutoResponse
	if err := json.NewDecoder(resp.Body).Decode(&workerResp); err != nil {
		return Response{}, fmt.Errorf("transcription: decode worker response: %w", err)
	}

	samples := len(req.PCM) / 2
	durationMs := int64(samples) * 1000 / int64(sampleRate)

	return Response{
		Text:          workerResp.Transcription,
		Language:      workerResp.Language,
		DurationMs:    durationMs,
		CompletedText: workerResp.Text,
	}, nil
}
