package daemon

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"

	"github.com/leonardotrapani/flowwispr/internal/bus"
	"github.com/leonardotrapani/flowwispr/internal/engine"
	"github.com/leonardotrapani/flowwispr/internal/notify"
)

type mockNotifier struct {
	recordingChanges []bool
	errors           []string
}

func (m *mockNotifier) RecordingChanged(on bool) { m.recordingChanges = append(m.recordingChanges, on) }
func (m *mockNotifier) Error(msg string)          { m.errors = append(m.errors, msg) }

func newTestDaemon(t *testing.T) (*Daemon, *mockNotifier) {
	t.Helper()
	eng, err := engine.New(engine.Config{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(func() { eng.Close() })

	n := &mockNotifier{}
	return New(eng, n), n
}

func TestNewDaemonStartsIdle(t *testing.T) {
	d, _ := newTestDaemon(t)
	if d.Status() != Idle {
		t.Errorf("new daemon should start Idle, got %s", d.Status())
	}
}

func TestNilNotifierFallsBackToDesktop(t *testing.T) {
	eng, err := engine.New(engine.Config{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	defer eng.Close()

	d := New(eng, nil)
	if _, ok := d.notifier.(notify.Desktop); !ok {
		t.Errorf("nil notifier should fall back to notify.Desktop, got %T", d.notifier)
	}
}

func TestDispatchVersionStatusQuit(t *testing.T) {
	d, _ := newTestDaemon(t)

	resp := d.dispatch(bus.Request{Op: "version"})
	if !resp.OK {
		t.Fatalf("version: %s", resp.Error)
	}
	var v struct{ Proto string }
	if err := json.Unmarshal(resp.Result, &v); err != nil || v.Proto != bus.ProtoVer {
		t.Errorf("expected proto %q, got %+v (err=%v)", bus.ProtoVer, v, err)
	}

	resp = d.dispatch(bus.Request{Op: "status"})
	if !resp.OK {
		t.Fatalf("status: %s", resp.Error)
	}
	var s struct{ Status string }
	if err := json.Unmarshal(resp.Result, &s); err != nil || s.Status != string(Idle) {
		t.Errorf("expected status %q, got %+v (err=%v)", Idle, s, err)
	}

	if d.ctx.Err() != nil {
		t.Fatal("daemon context should not be cancelled before quit")
	}
	resp = d.dispatch(bus.Request{Op: "quit"})
	if !resp.OK {
		t.Fatalf("quit: %s", resp.Error)
	}
	if d.ctx.Err() == nil {
		t.Error("quit should cancel the daemon context")
	}
}

func TestDispatchUnknownOp(t *testing.T) {
	d, _ := newTestDaemon(t)
	resp := d.dispatch(bus.Request{Op: "nonsense"})
	if resp.OK {
		t.Fatal("unknown op should not be OK")
	}
	if resp.Error == "" {
		t.Error("unknown op should carry an error message")
	}
}

func TestDispatchShortcutLifecycle(t *testing.T) {
	d, _ := newTestDaemon(t)

	addArgs, _ := json.Marshal(map[string]string{"Trigger": "brb", "Replacement": "be right back"})
	resp := d.dispatch(bus.Request{Op: "add_shortcut", Args: addArgs})
	if !resp.OK {
		t.Fatalf("add_shortcut: %s", resp.Error)
	}

	resp = d.dispatch(bus.Request{Op: "get_shortcuts_json"})
	if !resp.OK {
		t.Fatalf("get_shortcuts_json: %s", resp.Error)
	}
	if !containsString(string(resp.Result), "brb") {
		t.Errorf("expected shortcuts JSON to mention trigger, got %s", resp.Result)
	}

	removeArgs, _ := json.Marshal(map[string]string{"Trigger": "brb"})
	resp = d.dispatch(bus.Request{Op: "remove_shortcut", Args: removeArgs})
	if !resp.OK {
		t.Fatalf("remove_shortcut: %s", resp.Error)
	}
}

func TestDispatchBadArgsDecodesAsError(t *testing.T) {
	d, _ := newTestDaemon(t)
	resp := d.dispatch(bus.Request{Op: "add_shortcut", Args: json.RawMessage(`{"Trigger": 5}`)})
	if resp.OK {
		t.Fatal("malformed args should fail to decode")
	}
}

func TestToggleFromIdleFailsWithoutAudioDevice(t *testing.T) {
	d, n := newTestDaemon(t)

	status := d.toggle()
	if status != Idle {
		t.Errorf("without an audio device, toggle should fall back to Idle, got %s", status)
	}
	if len(n.recordingChanges) != 0 {
		t.Errorf("a failed start_recording should not notify, got %v", n.recordingChanges)
	}
}

// TestHandleRoundTrip exercises the newline-delimited JSON framing used by
// handle(), independent of net.Listener/bus.Dial.
func TestHandleRoundTrip(t *testing.T) {
	d, _ := newTestDaemon(t)

	client, server := net.Pipe()
	defer client.Close()

	done := make(chan struct{})
	go func() {
		d.handle(server)
		close(done)
	}()

	if err := bus.WriteRequest(client, "version", nil); err != nil {
		t.Fatalf("write request: %v", err)
	}

	line, err := bufio.NewReader(client).ReadString('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var resp bus.Response
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK {
		t.Fatalf("expected OK response, got error %q", resp.Error)
	}

	<-done
}

func containsString(s, substr string) bool {
	if len(substr) == 0 {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
