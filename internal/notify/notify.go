package notify

import (
	"fmt"
	"log"
	"os/exec"
)

type Notifier interface {
	RecordingChanged(on bool)
	Error(msg string)
}

type Desktop struct{}

func (Desktop) RecordingChanged(on bool) {
	state := "Stopped"
	if on {
		state = "Started"
	}
	cmd := exec.Command("notify-send", "-a", "Hyprvoice",
		fmt.Sprintf("Hyprvoice: %s Recording", state))
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}

func (Desktop) Error(msg string) {
	cmd := exec.Command("notify-send", "-a", "Hyprvoice", "-u", "critical", msg)
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send error notification: %v", err)
	}
}

// Log is a Notifier that writes to the daemon's log instead of the
// desktop, for headless or notification-daemon-less sessions.
type Log struct{}

func (Log) RecordingChanged(on bool) {
	state := "Stopped"
	if on {
		state = "Started"
	}
	log.Printf("Hyprvoice: Recording %s", state)
}

func (Log) Error(msg string) {
	log.Printf("Hyprvoice Error: %s", msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) RecordingChanged(on bool) {}
func (Nop) Error(msg string)         {}
