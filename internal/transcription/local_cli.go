package transcription

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// CLILocalProvider shells out to the `whisper-cli` binary from
// whisper.cpp. It implements the same Provider interface as
// NativeLocalProvider and is selected as a fallback when the native CGO
// bindings fail to initialize (e.g. no prebuilt libwhisper for this
// platform/arch).
type CLILocalProvider struct {
	modelPath string
	threads   int
}

// NewCLILocalProvider returns a provider that invokes whisper-cli against
// the GGML file at modelPath. threads of 0 lets whisper-cli pick its own
// default.
func NewCLILocalProvider(modelPath string, threads int) *CLILocalProvider {
	return &CLILocalProvider{modelPath: modelPath, threads: threads}
}

func (p *CLILocalProvider) Name() string { return "whisper-cpp-cli" }

// IsConfigured reports whether both the model file and the whisper-cli
// binary are present.
func (p *CLILocalProvider) IsConfigured() bool {
	if _, err := os.Stat(p.modelPath); err != nil {
		return false
	}
	_, err := exec.LookPath("whisper-cli")
	return err == nil
}

func (p *CLILocalProvider) Transcribe(ctx context.Context, req Request) (Response, error) {
	if len(req.PCM) == 0 {
		return Response{}, nil
	}

	if _, err := os.Stat(p.modelPath); os.IsNotExist(err) {
		return Response{}, fmt.Errorf("transcription: model file not found: %s", p.modelPath)
	}

	whisperPath, err := exec.LookPath("whisper-cli")
	if err != nil {
		return Response{}, fmt.Errorf("transcription: whisper-cli not found: install whisper.cpp first")
	}

	wavData, err := pcmToWAV(req.PCM, req.SampleRate)
	if err != nil {
		return Response{}, fmt.Errorf("transcription: convert to WAV: %w", err)
	}

	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("flowwispr-%d.wav", time.Now().UnixNano()))
	if err := os.WriteFile(tmpFile, wavData, 0600); err != nil {
		return Response{}, fmt.Errorf("transcription: write temp file: %w", err)
	}
	defer os.Remove(tmpFile)

	lang := req.LanguageHint
	if lang == "" {
		lang = "auto"
	}

	args := []string{
		"-m", p.modelPath,
		"-l", lang,
		"-nt",
		"-np",
		"-f", tmpFile,
	}
	if p.threads > 0 {
		args = append(args, "-t", fmt.Sprintf("%d", p.threads))
	}

	cmd := exec.CommandContext(ctx, whisperPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		return Response{}, fmt.Errorf("transcription: whisper-cli failed: %w (stderr: %s)", err, stderr.String())
	}

	text := strings.TrimSpace(stdout.String())
	return Response{
		Text:       text,
		Language:   lang,
		DurationMs: duration.Milliseconds(),
	}, nil
}

// pcmToWAV wraps raw 16-bit little-endian PCM in a minimal WAV container.
// sampleRate defaults to 16000 if unset, matching what the local model
// pipeline expects.
func pcmToWAV(rawAudio []byte, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return convertToWAV(rawAudio, sampleRate)
}
