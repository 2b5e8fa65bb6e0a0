package audio

import (
	"math"
	"testing"
)

func TestSamplesToPCM(t *testing.T) {
	samples := []float32{0.0, 0.5, -0.5, 1.0, -1.0}
	pcm := samplesToPCM(samples)

	if len(pcm) != 10 {
		t.Fatalf("expected 10 bytes, got %d", len(pcm))
	}

	readI16 := func(i int) int16 {
		return int16(uint16(pcm[i]) | uint16(pcm[i+1])<<8)
	}

	if got := readI16(0); got != 0 {
		t.Errorf("silence: got %d, want 0", got)
	}
	if got := readI16(2); abs(int(got)-16383) > 1 {
		t.Errorf("0.5: got %d, want ~16383", got)
	}
	if got := readI16(4); abs(int(got)+16383) > 1 {
		t.Errorf("-0.5: got %d, want ~-16383", got)
	}
	if got := readI16(6); got != 32767 {
		t.Errorf("1.0: got %d, want 32767", got)
	}
}

func TestSamplesToPCMClamps(t *testing.T) {
	pcm := samplesToPCM([]float32{2.0, -2.0})
	if int16(uint16(pcm[0])|uint16(pcm[1])<<8) != 32767 {
		t.Errorf("expected clamp to max i16")
	}
}

func TestBytesToMonoFloat32Mono(t *testing.T) {
	data := float32LEBytes(0.25, -0.25)
	samples := bytesToMonoFloat32(data, 1)
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0] != 0.25 || samples[1] != -0.25 {
		t.Errorf("got %v", samples)
	}
}

func TestBytesToMonoFloat32Downmix(t *testing.T) {
	// one stereo frame: left=1.0, right=0.0 -> average 0.5
	data := float32LEBytes(1.0, 0.0)
	samples := bytesToMonoFloat32(data, 2)
	if len(samples) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(samples))
	}
	if samples[0] != 0.5 {
		t.Errorf("got %v, want 0.5", samples[0])
	}
}

func TestNewDefaultsConfig(t *testing.T) {
	c := New(Config{})
	if c.config.SampleRate != 16000 || c.config.Channels != 1 {
		t.Errorf("expected defaulted config, got %+v", c.config)
	}
}

func TestPauseResumeOnlyFromValidStates(t *testing.T) {
	c := New(DefaultConfig())

	c.Pause() // no-op from idle
	if c.State() != StateIdle {
		t.Errorf("expected idle, got %v", c.State())
	}

	c.state.Store(int32(StateRecording))
	c.Pause()
	if c.State() != StatePaused {
		t.Errorf("expected paused, got %v", c.State())
	}

	c.Resume()
	if c.State() != StateRecording {
		t.Errorf("expected recording, got %v", c.State())
	}
}

func TestCurrentLevelEmptyBuffer(t *testing.T) {
	c := New(DefaultConfig())
	if c.CurrentLevel() != 0 {
		t.Errorf("expected 0 level on empty buffer")
	}
}

func TestCurrentLevelLoudSignal(t *testing.T) {
	c := New(DefaultConfig())
	samples := make([]float32, 800)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 1.0
		} else {
			samples[i] = -1.0
		}
	}
	c.buffer = samples
	level := c.CurrentLevel()
	if level != 1.0 {
		t.Errorf("expected clamped level 1.0, got %v", level)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func float32LEBytes(values ...float32) []byte {
	out := make([]byte, 0, len(values)*4)
	for _, v := range values {
		bits := math.Float32bits(v)
		out = append(out, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	return out
}
