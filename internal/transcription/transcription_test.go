package transcription

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractWakePhrase(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantOK   bool
		wantInst string
	}{
		{"exact phrase no remainder", "hey flow", true, ""},
		{"comma separated", "Hey Flow, reply to the last email", true, "reply to the last email"},
		{"no leading comma", "hey flow reply to this", true, "reply to this"},
		{"case insensitive", "HEY FLOW do something", true, "do something"},
		{"not a wake phrase", "hello world", false, ""},
		{"too short", "hey", false, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inst, ok := ExtractWakePhrase(tc.text)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if inst != tc.wantInst {
				t.Fatalf("instruction = %q, want %q", inst, tc.wantInst)
			}
		})
	}
}

func TestListTiersOrderAndDefault(t *testing.T) {
	tiers := ListTiers()
	if len(tiers) != 5 {
		t.Fatalf("got %d tiers, want 5", len(tiers))
	}
	wantOrder := []Tier{TierTurbo, TierFast, TierBalanced, TierQuality, TierBest}
	for i, tier := range wantOrder {
		if tiers[i].Tier != tier {
			t.Fatalf("tier[%d] = %q, want %q", i, tiers[i].Tier, tier)
		}
	}

	quality, ok := GetTier(TierQuality)
	if !ok || !quality.Default {
		t.Fatalf("expected quality tier to be marked default, got %+v ok=%v", quality, ok)
	}
	if quality.ID != "medium.en" {
		t.Fatalf("quality tier id = %q, want medium.en", quality.ID)
	}

	turbo, _ := GetTier(TierTurbo)
	if turbo.ID != "tiny.en-q5_1" {
		t.Fatalf("turbo tier id = %q, want tiny.en-q5_1", turbo.ID)
	}
}

func TestConvertToWAVHeader(t *testing.T) {
	pcm := make([]byte, 3200)
	wav, err := convertToWAV(pcm, 16000)
	if err != nil {
		t.Fatalf("convertToWAV: %v", err)
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE header: %q", wav[:12])
	}
	if string(wav[12:16]) != "fmt " || string(wav[36:40]) != "data" {
		t.Fatalf("missing fmt/data chunks")
	}
	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(pcm))
	}
	sampleRate := binary.LittleEndian.Uint32(wav[24:28])
	if sampleRate != 16000 {
		t.Fatalf("sample rate = %d, want 16000", sampleRate)
	}
}

func TestPCMToFloat32(t *testing.T) {
	pcm := make([]byte, 4)
	binary.LittleEndian.PutUint16(pcm[0:2], uint16(int16(16384)))
	binary.LittleEndian.PutUint16(pcm[2:4], uint16(int16(-16384)))

	samples := pcmToFloat32(pcm)
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if d := samples[0] - 0.5; d > 0.001 || d < -0.001 {
		t.Fatalf("samples[0] = %v, want ~0.5", samples[0])
	}
	if d := samples[1] - (-0.5); d > 0.001 || d < -0.001 {
		t.Fatalf("samples[1] = %v, want ~-0.5", samples[1])
	}
}

func TestCloudRawProviderTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hello world"}`))
	}))
	defer server.Close()

	p := NewCloudRawProvider("test-cloud", server.URL, "test-key", "whisper-1", nil)
	if !p.IsConfigured() {
		t.Fatalf("expected configured provider")
	}

	resp, err := p.Transcribe(context.Background(), Request{PCM: make([]byte, 3200), SampleRate: 16000})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Text != "hello world" {
		t.Fatalf("text = %q, want %q", resp.Text, "hello world")
	}
}

func TestCloudAutoProviderTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		completion, ok := body["completion"].(map[string]any)
		if !ok || completion["mode"] != "formal" {
			t.Fatalf("completion params not forwarded: %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transcription":"raw text","text":"Formatted text.","language":"en"}`))
	}))
	defer server.Close()

	p := NewCloudAutoProvider(server.URL)
	resp, err := p.Transcribe(context.Background(), Request{
		PCM:        make([]byte, 3200),
		SampleRate: 16000,
		Completion: &CompletionParams{Mode: "formal"},
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Text != "raw text" || resp.CompletedText != "Formatted text." {
		t.Fatalf("got %+v", resp)
	}
}

func TestCloudAutoProviderRequiresCompletion(t *testing.T) {
	p := NewCloudAutoProvider("http://example.invalid")
	_, err := p.Transcribe(context.Background(), Request{PCM: make([]byte, 10)})
	if err == nil {
		t.Fatalf("expected error when completion params are missing")
	}
}
