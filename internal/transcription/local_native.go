package transcription

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// NativeLocalProvider runs whisper.cpp in-process via CGO bindings. The
// model is loaded once and a fresh Context is created per request, since
// whisper.cpp contexts are not safe for concurrent inference.
type NativeLocalProvider struct {
	mu    sync.Mutex
	model whisperlib.Model
	tier  Tier

	loading bool
}

// NewNativeLocalProvider loads tier's GGML model file from path. Returns an
// error if the CGO bindings fail to initialize (e.g. no prebuilt
// libwhisper for this platform) — callers should fall back to
// NewCLILocalProvider in that case.
func NewNativeLocalProvider(path string, tier Tier) (*NativeLocalProvider, error) {
	model, err := whisperlib.New(path)
	if err != nil {
		return nil, fmt.Errorf("transcription: load whisper model %q: %w", path, err)
	}
	return &NativeLocalProvider{model: model, tier: tier}, nil
}

// Close releases the loaded model.
func (p *NativeLocalProvider) Close() error {
	if p.model == nil {
		return nil
	}
	return p.model.Close()
}

func (p *NativeLocalProvider) Name() string { return "whisper-cpp-native" }

// IsConfigured reports whether a model is loaded and ready.
func (p *NativeLocalProvider) IsConfigured() bool { return p.model != nil }

// ModelLoading reports whether SwapModel is currently loading a new
// model file, so a host UI can show progress.
func (p *NativeLocalProvider) ModelLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// SwapModel replaces the loaded model with tier's, used when the user
// changes speed/quality tiers at runtime.
func (p *NativeLocalProvider) SwapModel(path string, tier Tier) error {
	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
	}()

	model, err := whisperlib.New(path)
	if err != nil {
		return fmt.Errorf("transcription: load whisper model %q: %w", path, err)
	}

	p.mu.Lock()
	old := p.model
	p.model = model
	p.tier = tier
	p.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// Transcribe decodes 16-bit PCM, normalizes to float32, and runs a single
// whisper.cpp encoder+decoder pass, concatenating segment text with
// spaces.
func (p *NativeLocalProvider) Transcribe(ctx context.Context, req Request) (Response, error) {
	p.mu.Lock()
	model := p.model
	p.mu.Unlock()
	if model == nil {
		return Response{}, errors.New("transcription: no model loaded")
	}

	start := time.Now()
	samples := pcmToFloat32(req.PCM)

	wctx, err := model.NewContext()
	if err != nil {
		return Response{}, fmt.Errorf("transcription: create whisper context: %w", err)
	}

	lang := req.LanguageHint
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return Response{}, fmt.Errorf("transcription: set language %q: %w", lang, err)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return Response{}, fmt.Errorf("transcription: process audio: %w", err)
	}

	var parts []string
	var segments []Segment
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Response{}, fmt.Errorf("transcription: read segment: %w", err)
		}
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		segments = append(segments, Segment{Text: text})
	}

	return Response{
		Text:       strings.Join(parts, " "),
		Language:   lang,
		DurationMs: time.Since(start).Milliseconds(),
		Segments:   segments,
	}, nil
}

// pcmToFloat32 converts 16-bit signed little-endian PCM audio to float32
// samples normalised to [-1.0, 1.0].
func pcmToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	samples := make([]float32, n)
	for i := range n {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		samples[i] = float32(sample) / 32768.0
	}
	return samples
}
