package transcription

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Tier names the five local-model speed/quality tiers, ordered fastest first.
type Tier string

const (
	TierTurbo    Tier = "turbo"
	TierFast     Tier = "fast"
	TierBalanced Tier = "balanced"
	TierQuality  Tier = "quality"
	TierBest     Tier = "best"
)

// DefaultTier is used when a caller hasn't picked one.
const DefaultTier = TierQuality

// ModelInfo describes one catalogue entry: a speed tier mapped to a
// concrete ggerganov/whisper.cpp GGML release.
type ModelInfo struct {
	Tier         Tier   `yaml:"tier"`
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Filename     string `yaml:"filename"`
	Size         string `yaml:"size"`
	SizeBytes    int64  `yaml:"size_bytes"`
	Multilingual bool   `yaml:"multilingual"`
	Default      bool   `yaml:"default"`
}

//go:embed models.yaml
var catalogueYAML []byte

type catalogueFile struct {
	Tiers []ModelInfo `yaml:"tiers"`
}

var (
	catalogue  []ModelInfo
	byTier     map[Tier]ModelInfo
	baseURL    = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"
)

func init() {
	var parsed catalogueFile
	if err := yaml.Unmarshal(catalogueYAML, &parsed); err != nil {
		panic(fmt.Sprintf("transcription: embedded models.yaml is invalid: %v", err))
	}
	catalogue = parsed.Tiers
	byTier = make(map[Tier]ModelInfo, len(catalogue))
	for _, m := range catalogue {
		byTier[m.Tier] = m
	}
}

// ListTiers returns the full catalogue in speed order.
func ListTiers() []ModelInfo {
	out := make([]ModelInfo, len(catalogue))
	copy(out, catalogue)
	return out
}

// GetTier returns the catalogue entry for tier, or false if unknown.
func GetTier(tier Tier) (ModelInfo, bool) {
	m, ok := byTier[tier]
	return m, ok
}

// modelsDir returns the per-user directory models are downloaded into.
// It does not create the directory; Download does.
func modelsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "share", "flowwispr", "models", "whisper")
	return dir, nil
}

// ModelPath returns the local filesystem path a tier's model would be
// stored at, whether or not it has been downloaded yet.
func ModelPath(tier Tier) (string, error) {
	m, ok := GetTier(tier)
	if !ok {
		return "", fmt.Errorf("transcription: unknown model tier %q", tier)
	}
	dir, err := modelsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, m.Filename), nil
}

// IsDownloaded reports whether tier's model file is already present locally.
func IsDownloaded(tier Tier) bool {
	path, err := ModelPath(tier)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// DownloadProgress is invoked periodically during Download with bytes
// transferred and the expected total (best-effort; may be the catalogue's
// declared size when the server omits Content-Length).
type DownloadProgress func(downloaded, total int64)

// Download fetches tier's GGML file from the huggingface release into the
// local model cache, atomically renaming into place on success.
func Download(ctx context.Context, tier Tier, onProgress DownloadProgress) error {
	m, ok := GetTier(tier)
	if !ok {
		return fmt.Errorf("transcription: unknown model tier %q", tier)
	}

	dir, err := modelsDir()
	if err != nil {
		return fmt.Errorf("transcription: models directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("transcription: create models directory: %w", err)
	}

	destPath := filepath.Join(dir, m.Filename)
	tempPath := destPath + ".downloading"

	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("transcription: create temp file: %w", err)
	}
	defer func() {
		out.Close()
		os.Remove(tempPath)
	}()

	url := baseURL + "/" + m.Filename
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("transcription: build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("transcription: download %s: %w", tier, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("transcription: download %s failed: %s", tier, resp.Status)
	}

	total := resp.ContentLength
	if total < 0 {
		total = m.SizeBytes
	}

	var downloaded int64
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("transcription: write model data: %w", writeErr)
			}
			downloaded += int64(n)
			if onProgress != nil {
				onProgress(downloaded, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("transcription: read download stream: %w", readErr)
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("transcription: close temp file: %w", err)
	}
	if err := os.Rename(tempPath, destPath); err != nil {
		return fmt.Errorf("transcription: finalize download: %w", err)
	}
	return nil
}
