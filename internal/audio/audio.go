// Package audio owns the capture device lifecycle: it drives the
// idle/recording/paused state machine, buffers converted samples, meters
// input level, and exports PCM for transcription.
package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leonardotrapani/flowwispr/internal/recording"
)

// State is the capture state machine's current position.
type State int32

const (
	StateIdle State = iota
	StateRecording
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Config describes the requested capture format. The transport
// (pw-record) is asked for this sample rate/channel count; the returned
// stream's actual rate/channels come back whatever the device negotiated,
// which Capture does not renegotiate — callers that need a specific rate
// should configure the device accordingly.
type Config struct {
	SampleRate int
	Channels   int
	Device     string
}

// DefaultConfig mirrors the distilled spec's preferred format: 16kHz mono.
func DefaultConfig() Config {
	return Config{SampleRate: 16000, Channels: 1}
}

// Capture owns one input device's capture lifecycle. Zero value is not
// usable; construct with New.
type Capture struct {
	config Config

	state atomic.Int32

	mu     sync.Mutex // guards buffer
	buffer []float32

	recorder *recording.Recorder
	drainWG  sync.WaitGroup
}

// New returns an idle Capture for the given format.
func New(config Config) *Capture {
	if config.SampleRate <= 0 {
		config.SampleRate = 16000
	}
	if config.Channels <= 0 {
		config.Channels = 1
	}
	return &Capture{config: config}
}

// State returns the current capture state.
func (c *Capture) State() State {
	return State(c.state.Load())
}

// SampleRate returns the configured capture sample rate.
func (c *Capture) SampleRate() int {
	return c.config.SampleRate
}

// Start transitions idle -> recording: clears the buffer and starts the
// pw-record transport. A no-op if already recording.
func (c *Capture) Start(ctx context.Context) error {
	if c.State() == StateRecording {
		return nil
	}

	rc := recording.Config{
		SampleRate:        c.config.SampleRate,
		Channels:          c.config.Channels,
		Format:            "f32",
		BufferSize:        4096,
		Device:            c.config.Device,
		ChannelBufferSize: 32,
		Timeout:           5 * time.Second,
	}
	recorder := recording.NewRecorder(rc)

	frameCh, errCh, err := recorder.Start(ctx)
	if err != nil {
		return fmt.Errorf("audio: start capture: %w", err)
	}

	c.mu.Lock()
	c.buffer = c.buffer[:0]
	c.mu.Unlock()

	c.recorder = recorder
	c.state.Store(int32(StateRecording))

	c.drainWG.Add(1)
	go c.drainLoop(frameCh, errCh)

	return nil
}

// drainLoop plays the role of the device driver's callback thread: it
// owns appending converted samples to the shared buffer under a
// short-held lock. Frames arriving while paused are dropped, matching the
// callback's "return early if not recording" behaviour.
func (c *Capture) drainLoop(frameCh <-chan recording.AudioFrame, errCh <-chan error) {
	defer c.drainWG.Done()

	for frame := range frameCh {
		if State(c.state.Load()) != StateRecording {
			continue
		}
		samples := bytesToMonoFloat32(frame.Data, c.config.Channels)
		if len(samples) == 0 {
			continue
		}
		c.mu.Lock()
		c.buffer = append(c.buffer, samples...)
		c.mu.Unlock()
	}

	for err := range errCh {
		log.Printf("audio: capture error: %v", err)
	}
}

// Stop transitions to idle, stops the transport, and returns the
// buffered audio as 16-bit PCM.
func (c *Capture) Stop() []byte {
	c.stopStream()
	return c.drainPCM()
}

// StopStream transitions to idle and stops the transport without
// touching the buffer; a later TakeBufferedAudio can still drain it.
func (c *Capture) StopStream() {
	c.stopStream()
}

func (c *Capture) stopStream() {
	c.state.Store(int32(StateIdle))
	if c.recorder != nil {
		c.recorder.Stop()
	}
	c.drainWG.Wait()
}

// TakeBufferedAudio drains the buffer into PCM without touching the
// stream's state.
func (c *Capture) TakeBufferedAudio() []byte {
	return c.drainPCM()
}

func (c *Capture) drainPCM() []byte {
	c.mu.Lock()
	samples := c.buffer
	c.buffer = nil
	c.mu.Unlock()
	return samplesToPCM(samples)
}

// Pause keeps the transport running but suspends buffering.
func (c *Capture) Pause() {
	if State(c.state.Load()) == StateRecording {
		c.state.Store(int32(StatePaused))
	}
}

// Resume resumes buffering after Pause.
func (c *Capture) Resume() {
	if State(c.state.Load()) == StatePaused {
		c.state.Store(int32(StateRecording))
	}
}

// Close stops the transport and frees the device, equivalent to the
// "drop" transition.
func (c *Capture) Close() {
	c.stopStream()
}

// BufferDurationMs reports how much audio is currently buffered.
func (c *Capture) BufferDurationMs() int64 {
	c.mu.Lock()
	n := len(c.buffer)
	c.mu.Unlock()
	rate := int64(c.config.SampleRate)
	if rate == 0 {
		return 0
	}
	return int64(n) * 1000 / rate
}

// CurrentLevel returns the RMS amplitude of the most recent 50ms window,
// amplified for visual metering and clamped to [0,1].
func (c *Capture) CurrentLevel() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.buffer) == 0 {
		return 0
	}

	samplesPer50ms := c.config.SampleRate / 20
	if samplesPer50ms < 1 {
		samplesPer50ms = 1
	}
	start := len(c.buffer) - samplesPer50ms
	if start < 0 {
		start = 0
	}
	recent := c.buffer[start:]

	var sumSquares float32
	for _, s := range recent {
		sumSquares += s * s
	}
	rms := float32(math.Sqrt(float64(sumSquares / float32(len(recent)))))

	level := rms * 3.0
	if level > 1.0 {
		level = 1.0
	}
	return level
}

// bytesToMonoFloat32 interprets raw little-endian float32 PCM and
// downmixes to mono by averaging each frame's channels.
func bytesToMonoFloat32(data []byte, channels int) []float32 {
	const bytesPerSample = 4
	frameBytes := bytesPerSample * channels
	if frameBytes <= 0 || len(data) < frameBytes {
		return nil
	}

	frameCount := len(data) / frameBytes
	out := make([]float32, 0, frameCount)

	for i := 0; i < frameCount; i++ {
		offset := i * frameBytes
		if channels == 1 {
			out = append(out, math.Float32frombits(binary.LittleEndian.Uint32(data[offset:offset+4])))
			continue
		}
		var sum float32
		for ch := 0; ch < channels; ch++ {
			o := offset + ch*bytesPerSample
			sum += math.Float32frombits(binary.LittleEndian.Uint32(data[o : o+4]))
		}
		out = append(out, sum/float32(channels))
	}
	return out
}

// samplesToPCM clamps to [-1,1] and converts to little-endian 16-bit
// signed PCM.
func samplesToPCM(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		v := int16(s * 32767.0)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
