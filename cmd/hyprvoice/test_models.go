package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leonardotrapani/flowwispr/internal/completion"
	"github.com/leonardotrapani/flowwispr/internal/config"
	"github.com/leonardotrapani/flowwispr/internal/modes"
	"github.com/leonardotrapani/flowwispr/internal/recording"
	"github.com/leonardotrapani/flowwispr/internal/transcription"
	"github.com/spf13/cobra"
)

const (
	testSampleRate    = 16000
	testChannels      = 1
	testBitsPerSample = 16
	defaultSampleURL  = "https://raw.githubusercontent.com/mozilla/DeepSpeech/master/data/smoke_test/LDC93S1.wav"
	defaultSampleName = "testaudio.wav"
)

var defaultTestKeywords = []string{"Flowwispr", "transcription", "dictation"}

type testModelsOptions struct {
	audioPath     string
	recordFor     time.Duration
	timeout       time.Duration
	outputPath    string
	downloadLocal bool
	language      string
	keywords      []string
	noKeywords    bool
	noLanguage    bool
}

type modelTestResult struct {
	Kind        string `json:"kind"`
	Target      string `json:"target"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	DurationMS  int64  `json:"duration_ms"`
	Output      string `json:"output,omitempty"`
	OutputChars int    `json:"output_chars,omitempty"`
	Error       string `json:"error,omitempty"`
}

type testReport struct {
	StartedAt  time.Time         `json:"started_at"`
	AudioSrc   string            `json:"audio_src"`
	Results    []modelTestResult `json:"results"`
	PassCount  int               `json:"pass_count"`
	FailCount  int               `json:"fail_count"`
	SkipCount  int               `json:"skip_count"`
	TotalCount int               `json:"total_count"`
}

func testModelsCmd() *cobra.Command {
	var opts testModelsOptions

	cmd := &cobra.Command{
		Use:   "test-models",
		Short: "Run E2E tests against every configured transcription and completion backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTestModels(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.audioPath, "audio", "", "WAV file to use (defaults to downloaded sample)")
	cmd.Flags().DurationVar(&opts.recordFor, "record-seconds", 0, "Record mic audio (e.g. 5s)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 45*time.Second, "Per-backend timeout")
	cmd.Flags().StringVar(&opts.outputPath, "output", "", "Write JSON report to file")
	cmd.Flags().BoolVar(&opts.downloadLocal, "download-local", false, "Download local whisper tiers that aren't cached yet")
	cmd.Flags().StringVar(&opts.language, "language", "en", "Language code to test")
	cmd.Flags().StringSliceVar(&opts.keywords, "keywords", defaultTestKeywords, "Keywords to test")
	cmd.Flags().BoolVar(&opts.noKeywords, "no-keywords", false, "Skip keyword hinting")
	cmd.Flags().BoolVar(&opts.noLanguage, "no-language", false, "Skip language hint (use auto-detect)")

	return cmd
}

func runTestModels(ctx context.Context, opts testModelsOptions) error {
	if opts.audioPath != "" && opts.recordFor > 0 {
		return fmt.Errorf("use either --audio or --record-seconds, not both")
	}
	if opts.timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	startedAt := time.Now().UTC()

	audio, audioSrc, err := loadTestAudio(ctx, opts)
	if err != nil {
		return err
	}

	cfg, err := loadConfigForTests()
	if err != nil {
		return err
	}

	var results []modelTestResult
	for _, tier := range transcription.ListTiers() {
		results = append(results, runLocalTranscriptionTest(ctx, tier.Tier, audio, opts))
	}
	for _, kind := range []string{"openai", "groq"} {
		results = append(results, runCloudTranscriptionTest(ctx, cfg, kind, audio, opts))
	}
	if cfg.Transcription.CloudAutoEndpoint != "" {
		results = append(results, runCloudAutoTranscriptionTest(ctx, cfg, audio, opts))
	}
	for _, kind := range []string{"openai", "gemini", "openrouter"} {
		results = append(results, runCompletionTest(ctx, cfg, kind, opts))
	}

	report := summarizeReport(startedAt, audioSrc, results)
	printReport(report)

	if opts.outputPath != "" {
		if err := writeReport(opts.outputPath, report); err != nil {
			return err
		}
	}

	if report.FailCount > 0 {
		return fmt.Errorf("%d failed, %d skipped", report.FailCount, report.SkipCount)
	}

	return nil
}

func loadConfigForTests() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return config.DefaultConfig(), nil
		}
		return nil, err
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]config.ProviderConfig)
	}
	return cfg, nil
}

func runLocalTranscriptionTest(ctx context.Context, tier transcription.Tier, audio []byte, opts testModelsOptions) modelTestResult {
	result := modelTestResult{Kind: "local", Target: string(tier), Type: "transcription", Status: "fail"}

	if !transcription.IsDownloaded(tier) {
		if !opts.downloadLocal {
			result.Status = "skip"
			result.Error = "model not downloaded, rerun with --download-local"
			return result
		}
		dlCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		var lastPercent int64
		if err := transcription.Download(dlCtx, tier, func(downloaded, total int64) {
			if total <= 0 {
				return
			}
			if percent := downloaded * 100 / total; percent >= lastPercent+10 {
				fmt.Printf("downloading %s... %d%%\n", tier, percent)
				lastPercent = percent
			}
		}); err != nil {
			result.Error = err.Error()
			return result
		}
	}

	provider, err := transcription.NewLocalProvider(tier, 0)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	return runTranscriptionRequest(ctx, result, provider, audio, opts)
}

func runCloudTranscriptionTest(ctx context.Context, cfg *config.Config, kind string, audio []byte, opts testModelsOptions) modelTestResult {
	result := modelTestResult{Kind: kind, Target: kind, Type: "transcription", Status: "fail"}

	apiKey := resolveTestAPIKey(cfg, kind)
	if apiKey == "" {
		result.Status = "skip"
		result.Error = "missing api key"
		return result
	}

	keywords := opts.keywords
	if opts.noKeywords {
		keywords = nil
	}
	provider := transcription.NewCloudRawProvider(kind, "", apiKey, "", keywords)
	return runTranscriptionRequest(ctx, result, provider, audio, opts)
}

func runCloudAutoTranscriptionTest(ctx context.Context, cfg *config.Config, audio []byte, opts testModelsOptions) modelTestResult {
	result := modelTestResult{Kind: "cloud-auto", Target: cfg.Transcription.CloudAutoEndpoint, Type: "transcription", Status: "fail"}
	provider := transcription.NewCloudAutoProvider(cfg.Transcription.CloudAutoEndpoint)
	return runTranscriptionRequest(ctx, result, provider, audio, opts)
}

func runTranscriptionRequest(ctx context.Context, result modelTestResult, provider transcription.Provider, audio []byte, opts testModelsOptions) modelTestResult {
	if !provider.IsConfigured() {
		result.Status = "skip"
		result.Error = "provider not configured"
		return result
	}

	language := opts.language
	if opts.noLanguage {
		language = ""
	}
	keywords := opts.keywords
	if opts.noKeywords {
		keywords = nil
	}

	testCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	start := time.Now()
	resp, err := provider.Transcribe(testCtx, transcription.Request{
		PCM:          audio,
		SampleRate:   testSampleRate,
		LanguageHint: language,
		PromptHint:   strings.Join(keywords, ", "),
	})
	result.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Status = "pass"
	result.Output = strings.TrimSpace(resp.Text)
	result.OutputChars = len(result.Output)
	return result
}

func runCompletionTest(ctx context.Context, cfg *config.Config, kind string, opts testModelsOptions) modelTestResult {
	result := modelTestResult{Kind: kind, Target: kind, Type: "completion", Status: "fail"}

	apiKey := resolveTestAPIKey(cfg, kind)
	if apiKey == "" {
		result.Status = "skip"
		result.Error = "missing api key"
		return result
	}

	provider, err := completion.New(kind, apiKey, "")
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if !provider.IsConfigured() {
		result.Status = "skip"
		result.Error = "provider not configured"
		return result
	}

	input := "uh i i i want to test flowwispr you know this is just a cleanup check"
	testCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	start := time.Now()
	resp, err := provider.Complete(testCtx, completion.Request{Text: input, Mode: modes.Casual.PromptModifier()})
	result.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Status = "pass"
	result.Output = strings.TrimSpace(resp.Text)
	result.OutputChars = len(result.Output)
	return result
}

func loadTestAudio(ctx context.Context, opts testModelsOptions) ([]byte, string, error) {
	if opts.audioPath != "" {
		wav, err := readWAVFile(opts.audioPath)
		if err != nil {
			return nil, "", err
		}
		return wav.data, opts.audioPath, nil
	}

	if opts.recordFor > 0 {
		audio, err := recordTestAudio(ctx, opts.recordFor)
		if err != nil {
			return nil, "", err
		}
		return audio, fmt.Sprintf("recording:%s", opts.recordFor), nil
	}

	path, err := ensureDefaultSample(ctx)
	if err != nil {
		return nil, "", err
	}
	wav, err := readWAVFile(path)
	if err != nil {
		return nil, "", err
	}
	return wav.data, path, nil
}

type wavData struct {
	data          []byte
	sampleRate    int
	channels      int
	bitsPerSample int
}

func readWAVFile(path string) (*wavData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseWAV(data)
}

func parseWAV(data []byte) (*wavData, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("invalid wav: too short")
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("invalid wav: missing riff/wave header")
	}

	offset := 12
	var fmtFound bool
	var dataFound bool
	var info wavData

	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		offset += 8
		if offset+chunkSize > len(data) {
			return nil, fmt.Errorf("invalid wav: chunk overflows file")
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("invalid wav: fmt chunk too short")
			}
			audioFormat := binary.LittleEndian.Uint16(data[offset : offset+2])
			if audioFormat != 1 {
				return nil, fmt.Errorf("unsupported wav format: %d", audioFormat)
			}
			info.channels = int(binary.LittleEndian.Uint16(data[offset+2 : offset+4]))
			info.sampleRate = int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
			info.bitsPerSample = int(binary.LittleEndian.Uint16(data[offset+14 : offset+16]))
			fmtFound = true
		case "data":
			info.data = data[offset : offset+chunkSize]
			dataFound = true
		}

		offset += chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if !fmtFound || !dataFound {
		return nil, fmt.Errorf("invalid wav: missing fmt or data chunk")
	}
	if info.bitsPerSample != testBitsPerSample {
		return nil, fmt.Errorf("unsupported wav bits per sample: %d", info.bitsPerSample)
	}
	if info.sampleRate <= 0 {
		return nil, fmt.Errorf("invalid wav sample rate: %d", info.sampleRate)
	}
	if info.channels <= 0 {
		return nil, fmt.Errorf("invalid wav: channels=%d", info.channels)
	}
	if len(info.data)%2 != 0 {
		return nil, fmt.Errorf("invalid wav: pcm data not aligned")
	}

	monoData, err := downmixToMono(info.data, info.channels)
	if err != nil {
		return nil, err
	}
	resampled := resamplePCM16(monoData, info.sampleRate, testSampleRate)
	if len(resampled) == 0 {
		return nil, fmt.Errorf("invalid wav: empty audio data")
	}
	info.data = resampled
	info.sampleRate = testSampleRate
	info.channels = testChannels
	info.bitsPerSample = testBitsPerSample
	return &info, nil
}

func downmixToMono(data []byte, channels int) ([]byte, error) {
	if channels == 1 {
		return data, nil
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	frameSize := 2 * channels
	if len(data)%frameSize != 0 {
		return nil, fmt.Errorf("invalid pcm data length")
	}

	frames := len(data) / frameSize
	out := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		var sum int32
		for c := 0; c < channels; c++ {
			idx := (i*channels + c) * 2
			sample := int16(binary.LittleEndian.Uint16(data[idx : idx+2]))
			sum += int32(sample)
		}
		mono := int16(sum / int32(channels))
		out[i*2] = byte(mono)
		out[i*2+1] = byte(mono >> 8)
	}

	return out, nil
}

func resamplePCM16(data []byte, inRate, outRate int) []byte {
	if inRate <= 0 || outRate <= 0 {
		return data
	}
	if inRate == outRate {
		return data
	}
	if len(data) < 2 {
		return data
	}

	numInSamples := len(data) / 2
	numOutSamples := int(math.Round(float64(numInSamples) * float64(outRate) / float64(inRate)))
	if numOutSamples <= 0 {
		return nil
	}

	out := make([]byte, numOutSamples*2)
	for i := 0; i < numOutSamples; i++ {
		srcPos := float64(i) * float64(inRate) / float64(outRate)
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		sample1 := sampleAtPCM16(data, srcIdx)
		sample2 := sampleAtPCM16(data, srcIdx+1)
		outSample := int16(float64(sample1)*(1-frac) + float64(sample2)*frac)

		out[i*2] = byte(outSample)
		out[i*2+1] = byte(outSample >> 8)
	}

	return out
}

func sampleAtPCM16(data []byte, idx int) int16 {
	if idx <= 0 {
		return int16(binary.LittleEndian.Uint16(data[0:2]))
	}
	pos := idx * 2
	if pos+1 >= len(data) {
		last := len(data) - 2
		if last < 0 {
			return 0
		}
		return int16(binary.LittleEndian.Uint16(data[last : last+2]))
	}
	return int16(binary.LittleEndian.Uint16(data[pos : pos+2]))
}

func recordTestAudio(ctx context.Context, duration time.Duration) ([]byte, error) {
	recorder := recording.NewRecorder(recording.Config{
		SampleRate:        testSampleRate,
		Channels:          testChannels,
		Format:            "s16",
		BufferSize:        8192,
		Device:            "",
		ChannelBufferSize: 30,
		Timeout:           duration + 2*time.Second,
	})

	frameCh, errCh, err := recorder.Start(ctx)
	if err != nil {
		return nil, err
	}

	var audio []byte
	stopCh := make(chan struct{})
	go func() {
		for frame := range frameCh {
			audio = append(audio, frame.Data...)
		}
		close(stopCh)
	}()

	select {
	case <-time.After(duration):
		recorder.Stop()
	case <-ctx.Done():
		recorder.Stop()
	}

	<-stopCh
	if err := readErrorChannel(errCh); err != nil {
		return nil, err
	}

	return audio, nil
}

func readErrorChannel(errCh <-chan error) error {
	var firstErr error
	if errCh == nil {
		return nil
	}

	idleTimer := time.NewTimer(150 * time.Millisecond)
	defer idleTimer.Stop()

	for {
		select {
		case err, ok := <-errCh:
			if !ok {
				return firstErr
			}
			if err != nil && firstErr == nil {
				firstErr = err
			}
			if !idleTimer.Stop() {
				<-idleTimer.C
			}
			idleTimer.Reset(150 * time.Millisecond)
		case <-idleTimer.C:
			return firstErr
		}
	}
}

func ensureDefaultSample(ctx context.Context) (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(cacheDir, "hyprvoice", defaultSampleName)
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	fmt.Printf("test-models: downloading sample audio...\n")
	if err := downloadSample(ctx, defaultSampleURL, path); err != nil {
		return "", fmt.Errorf("download sample: %w (use --audio or --record-seconds to skip download)", err)
	}
	return path, nil
}

func downloadSample(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	tmpPath := path + ".downloading"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer func() {
		out.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func resolveTestAPIKey(cfg *config.Config, providerName string) string {
	if cfg != nil && cfg.Providers != nil {
		if pc, ok := cfg.Providers[providerName]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}
	if envVar := envVarForTestProvider(providerName); envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}

func envVarForTestProvider(providerName string) string {
	switch providerName {
	case "openai":
		return "OPENAI_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	default:
		return ""
	}
}

func summarizeReport(startedAt time.Time, audioSrc string, results []modelTestResult) testReport {
	report := testReport{
		StartedAt: startedAt,
		AudioSrc:  audioSrc,
		Results:   results,
	}
	for _, r := range results {
		report.TotalCount++
		switch r.Status {
		case "pass":
			report.PassCount++
		case "fail":
			report.FailCount++
		case "skip":
			report.SkipCount++
		}
	}
	return report
}

func printReport(report testReport) {
	fmt.Printf("test-models: total=%d pass=%d fail=%d skip=%d\n", report.TotalCount, report.PassCount, report.FailCount, report.SkipCount)
	fmt.Printf("audio: %s\n", report.AudioSrc)
	for _, r := range report.Results {
		line := fmt.Sprintf("%s %s/%s %s", r.Status, r.Type, r.Kind, r.Target)
		if r.DurationMS > 0 {
			line += fmt.Sprintf(" %dms", r.DurationMS)
		}
		if r.Error != "" {
			line += fmt.Sprintf(" error=%s", truncateString(r.Error, 160))
		}
		if r.Output != "" {
			line += fmt.Sprintf(" output=%q", truncateString(r.Output, 120))
		}
		fmt.Println(line)
	}
}

func writeReport(path string, report testReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
