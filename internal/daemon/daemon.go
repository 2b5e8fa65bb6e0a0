// Package daemon runs the long-lived process a host talks to over the
// control socket: it owns one engine.Engine and drives recording/
// transcription from hotkey toggles while dispatching the rest of the
// capability table as individual bus requests.
package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/leonardotrapani/flowwispr/internal/apps"
	"github.com/leonardotrapani/flowwispr/internal/bus"
	"github.com/leonardotrapani/flowwispr/internal/contacts"
	"github.com/leonardotrapani/flowwispr/internal/engine"
	"github.com/leonardotrapani/flowwispr/internal/modes"
	"github.com/leonardotrapani/flowwispr/internal/notify"
	"github.com/leonardotrapani/flowwispr/internal/store"
	"github.com/leonardotrapani/flowwispr/internal/transcription"
)

// Status is the daemon's own recording state machine. Unlike the
// teacher's pipeline.Status, it has no Injecting state: text delivery to
// the focused window is the host's job once Transcribe returns text, not
// the daemon's.
type Status string

const (
	Idle         Status = "idle"
	Recording    Status = "recording"
	Transcribing Status = "transcribing"
)

// Daemon owns one Engine and serializes hotkey toggles against it while
// letting every other capability-table op run concurrently.
type Daemon struct {
	mu     sync.RWMutex
	status Status

	notifier notify.Notifier
	engine   *engine.Engine

	ctx    context.Context
	cancel context.CancelFunc

	recordCancel context.CancelFunc
}

func New(eng *engine.Engine, n notify.Notifier) *Daemon {
	if n == nil {
		n = notify.Desktop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		notifier: n,
		engine:   eng,
		ctx:      ctx,
		cancel:   cancel,
		status:   Idle,
	}
}

func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

func (d *Daemon) setStatus(s Status) {
	d.mu.Lock()
	old := d.status
	d.status = s
	d.mu.Unlock()
	if old != s {
		log.Printf("Status changed: %s -> %s", old, s)
	}
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()
	defer d.engine.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully", sig)
		d.cancel()
	}()

	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	log.Printf("Daemon started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("Shutdown requested")
				return nil
			}
			log.Printf("Accept error: %v", err)
			return fmt.Errorf("accept failed: %w", err)
		}

		go d.handle(c)
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("client read error: %v", err)
		bus.WriteResponse(c, bus.Err(err))
		return
	}

	var req bus.Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		bus.WriteResponse(c, bus.Err(fmt.Errorf("decode request: %w", err)))
		return
	}

	resp := d.dispatch(req)
	if err := bus.WriteResponse(c, resp); err != nil {
		log.Printf("client write error: %v", err)
	}
}

// dispatch realizes the capability table (§6.1) as a flat op switch. Each
// case decodes its own argument shape from req.Args and calls straight
// through to the Engine.
func (d *Daemon) dispatch(req bus.Request) bus.Response {
	args := req.Args
	switch req.Op {

	case "toggle":
		status := d.toggle()
		return bus.OK(map[string]string{"status": string(status)})
	case "status":
		return bus.OK(map[string]string{"status": string(d.Status())})
	case "version":
		return bus.OK(map[string]string{"proto": bus.ProtoVer})
	case "quit":
		d.cancel()
		return bus.OK(nil)

	case "start_recording":
		var a struct{ ContactName string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		if err := d.engine.StartRecording(d.ctx, a.ContactName); err != nil {
			return bus.Err(err)
		}
		d.setStatus(Recording)
		d.notifier.RecordingChanged(true)
		return bus.OK(nil)

	case "stop_recording":
		durationMs, err := d.engine.StopRecording()
		d.setStatus(Idle)
		d.notifier.RecordingChanged(false)
		if err != nil {
			return bus.Err(err)
		}
		return bus.OK(map[string]int64{"duration_ms": durationMs})

	case "is_recording":
		return bus.OK(map[string]bool{"recording": d.engine.IsRecording()})

	case "audio_level":
		return bus.OK(map[string]float32{"level": d.engine.AudioLevel()})

	case "transcribe":
		d.setStatus(Transcribing)
		text, err := d.engine.Transcribe(d.ctx)
		d.setStatus(Idle)
		if err != nil {
			return bus.Err(err)
		}
		return bus.OK(map[string]string{"text": text})

	case "retry_last_transcription":
		text, err := d.engine.RetryLastTranscription(d.ctx)
		if err != nil {
			return bus.Err(err)
		}
		return bus.OK(map[string]string{"text": text})

	case "add_shortcut":
		var a struct{ Trigger, Replacement string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		if err := d.engine.AddShortcut(a.Trigger, a.Replacement); err != nil {
			return bus.Err(err)
		}
		return bus.OK(nil)

	case "remove_shortcut":
		var a struct{ Trigger string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		if err := d.engine.RemoveShortcut(a.Trigger); err != nil {
			return bus.Err(err)
		}
		return bus.OK(nil)

	case "get_shortcuts_json":
		return rawJSONResult(d.engine.GetShortcutsJSON())

	case "learn_from_edit":
		var a struct{ Original, Edited string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		corrections, err := d.engine.LearnFromEdit(d.ctx, a.Original, a.Edited)
		if err != nil {
			return bus.Err(err)
		}
		return bus.OK(corrections)

	case "get_corrections_json":
		return rawJSONResult(d.engine.GetCorrectionsJSON())

	case "delete_correction":
		var a struct{ ID string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		found, err := d.engine.DeleteCorrection(a.ID)
		if err != nil {
			return bus.Err(err)
		}
		return bus.OK(map[string]bool{"found": found})

	case "delete_all_corrections":
		n, err := d.engine.DeleteAllCorrections()
		if err != nil {
			return bus.Err(err)
		}
		return bus.OK(map[string]int64{"deleted": n})

	case "set_active_app":
		var a struct{ Name, BundleID, WindowTitle string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		mode := d.engine.SetActiveApp(a.Name, a.BundleID, a.WindowTitle)
		return bus.OK(map[string]string{"mode": string(mode)})

	case "get_current_app":
		return bus.OK(map[string]string{"name": d.engine.GetCurrentApp()})

	case "get_app_category":
		return bus.OK(map[string]apps.Category{"category": d.engine.GetAppCategory()})

	case "set_app_mode":
		var a struct {
			AppName string
			Mode    modes.WritingMode
		}
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		if err := d.engine.SetAppMode(a.AppName, a.Mode); err != nil {
			return bus.Err(err)
		}
		return bus.OK(nil)

	case "get_app_mode":
		var a struct{ AppName string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		return bus.OK(map[string]modes.WritingMode{"mode": d.engine.GetAppMode(a.AppName)})

	case "learn_style":
		var a struct{ AppName, EditedText string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		d.engine.LearnStyle(a.AppName, a.EditedText)
		return bus.OK(nil)

	case "get_style_suggestion":
		var a struct{ AppName string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		return bus.OK(d.engine.GetStyleSuggestion(a.AppName))

	case "classify_contact":
		var a struct{ Name, Organization string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		return bus.OK(d.engine.ClassifyContact(a.Name, a.Organization))

	case "classify_contacts_batch":
		var a struct{ Inputs []contacts.Input }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		return bus.OK(d.engine.ClassifyContactsBatch(a.Inputs))

	case "get_frequent_contacts":
		var a struct{ Limit int }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		return bus.OK(d.engine.GetFrequentContacts(a.Limit))

	case "record_contact_interaction":
		var a struct{ Name string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		d.engine.RecordContactInteraction(a.Name)
		return bus.OK(nil)

	case "get_writing_mode_for_category":
		var a struct{ Category contacts.Category }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		return bus.OK(map[string]modes.WritingMode{"mode": d.engine.GetWritingModeForCategory(a.Category)})

	case "get_stats_json":
		return rawJSONResult(d.engine.GetStatsJSON())

	case "get_recent_transcriptions_json":
		var a struct{ Limit int }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		return rawJSONResult(d.engine.GetRecentTranscriptionsJSON(a.Limit))

	case "align_and_extract_corrections":
		var a struct{ Original, Edited string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		text, err := d.engine.AlignAndExtractCorrections(a.Original, a.Edited)
		if err != nil {
			return bus.Err(err)
		}
		return bus.OK(map[string]string{"text": text})

	case "save_edit_analytics":
		var a struct {
			EventType  store.EventType
			Properties json.RawMessage
		}
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		if err := d.engine.SaveEditAnalytics(a.EventType, a.Properties); err != nil {
			return bus.Err(err)
		}
		return bus.OK(nil)

	case "save_learned_words_session":
		var a struct{ Words []store.LearnedWord }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		id, err := d.engine.SaveLearnedWordsSession(a.Words)
		if err != nil {
			return bus.Err(err)
		}
		return bus.OK(map[string]string{"session_id": id})

	case "undo_learned_words":
		var a struct{ SessionID string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		if err := d.engine.UndoLearnedWords(a.SessionID); err != nil {
			return bus.Err(err)
		}
		return bus.OK(nil)

	case "get_undoable_learned_words":
		var a struct{ Limit int }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		return rawJSONResult(d.engine.GetUndoableLearnedWords(a.Limit))

	case "set_transcription_mode":
		var a struct {
			Kind string
			Tier transcription.Tier
		}
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		if err := d.engine.SetTranscriptionMode(d.ctx, a.Kind, a.Tier); err != nil {
			return bus.Err(err)
		}
		return bus.OK(nil)

	case "get_transcription_mode":
		kind, tier := d.engine.GetTranscriptionMode()
		return bus.OK(map[string]string{"kind": kind, "tier": string(tier)})

	case "is_model_loading":
		return bus.OK(map[string]bool{"loading": d.engine.IsModelLoading()})

	case "get_whisper_models_json":
		return rawJSONResult(d.engine.GetWhisperModelsJSON())

	case "set_completion_provider":
		var a struct{ Kind, APIKey, Model string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		if err := d.engine.SetCompletionProvider(a.Kind, a.APIKey, a.Model); err != nil {
			return bus.Err(err)
		}
		return bus.OK(nil)

	case "switch_completion_provider":
		var a struct{ Kind string }
		if err := unmarshalArgs(args, &a); err != nil {
			return bus.Err(err)
		}
		if err := d.engine.SwitchCompletionProvider(a.Kind); err != nil {
			return bus.Err(err)
		}
		return bus.OK(nil)

	case "get_completion_provider":
		return bus.OK(map[string]string{"provider": d.engine.GetCompletionProvider()})

	case "get_api_key":
		return bus.OK(map[string]string{"api_key": d.engine.GetAPIKey()})

	case "get_last_error":
		return bus.OK(map[string]string{"error": d.engine.GetLastError()})

	default:
		log.Printf("unknown op: %s", req.Op)
		return bus.Err(fmt.Errorf("unknown op %q", req.Op))
	}
}

func unmarshalArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}

// rawJSONResult wraps an Engine method that already returns a JSON
// string so bus.OK doesn't double-encode it.
func rawJSONResult(jsonStr string, err error) bus.Response {
	if err != nil {
		return bus.Err(err)
	}
	return bus.Response{OK: true, Result: json.RawMessage(jsonStr)}
}

// toggle drives the hotkey state machine: Idle starts recording,
// Recording stops it and starts transcription in a background goroutine,
// returning Transcribing; the status goes back to Idle when it finishes.
func (d *Daemon) toggle() Status {
	d.mu.Lock()
	status := d.status
	d.mu.Unlock()

	switch status {
	case Idle:
		ctx, cancel := context.WithCancel(d.ctx)
		d.mu.Lock()
		d.recordCancel = cancel
		d.mu.Unlock()
		if err := d.engine.StartRecording(ctx, ""); err != nil {
			log.Printf("start recording: %v", err)
			cancel()
			return d.Status()
		}
		d.setStatus(Recording)
		d.notifier.RecordingChanged(true)

	case Recording:
		d.mu.Lock()
		if d.recordCancel != nil {
			d.recordCancel()
			d.recordCancel = nil
		}
		d.mu.Unlock()
		if _, err := d.engine.StopRecording(); err != nil {
			log.Printf("stop recording: %v", err)
		}
		d.notifier.RecordingChanged(false)
		d.setStatus(Transcribing)

		go func() {
			if _, err := d.engine.Transcribe(d.ctx); err != nil {
				d.notifier.Error(err.Error())
			}
			d.setStatus(Idle)
		}()

	case Transcribing:
		// already in flight, nothing to toggle
	}

	return d.Status()
}
