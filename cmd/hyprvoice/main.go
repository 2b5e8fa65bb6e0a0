package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leonardotrapani/flowwispr/internal/bus"
	"github.com/leonardotrapani/flowwispr/internal/config"
	"github.com/leonardotrapani/flowwispr/internal/daemon"
	"github.com/leonardotrapani/flowwispr/internal/deps"
	"github.com/leonardotrapani/flowwispr/internal/engine"
	"github.com/leonardotrapani/flowwispr/internal/notify"
	"github.com/leonardotrapani/flowwispr/internal/transcription"
	"github.com/leonardotrapani/flowwispr/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	_ = rootCmd.Execute()
}

var rootCmd = &cobra.Command{
	Use:   "flowwispr",
	Short: "Voice dictation engine for Wayland/Hyprland",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		toggleCmd(),
		statusCmd(),
		versionCmd(),
		stopCmd(),
		configureCmd(),
		testModelsCmd(),
		doctorCmd(),
	)
}

// dataPath returns the SQLite store location under the user's data dir.
func dataPath() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	appDir := filepath.Join(dir, ".local", "share", "hyprvoice")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(appDir, "flowwispr.db"), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			dbPath, err := dataPath()
			if err != nil {
				return fmt.Errorf("failed to resolve data directory: %w", err)
			}

			eng, err := engine.New(mgr.GetConfig().ToEngineConfig(dbPath))
			if err != nil {
				return fmt.Errorf("failed to start engine: %w", err)
			}

			var n notify.Notifier = notify.Desktop{}
			switch mgr.GetConfig().Notifications.Type {
			case "log":
				n = notify.Log{}
			case "none":
				n = notify.Nop{}
			}

			d := daemon.New(eng, n)
			return d.Run()
		},
	}
}

func sendAndPrint(op string, args any) error {
	resp, err := bus.Call(op, args)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("%s", resp.Error)
	}
	if len(resp.Result) > 0 {
		var pretty map[string]any
		if json.Unmarshal(resp.Result, &pretty) == nil {
			out, _ := json.MarshalIndent(pretty, "", "  ")
			fmt.Println(string(out))
			return nil
		}
		fmt.Println(string(resp.Result))
	}
	return nil
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Toggle recording on/off",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendAndPrint("toggle", nil)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get current recording status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendAndPrint("status", nil)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Get protocol version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendAndPrint("version", nil)
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendAndPrint("quit", nil)
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveConfig()
		},
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check local transcription dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			whisperCli := deps.CheckWhisperCli()
			if whisperCli.Installed {
				fmt.Printf("whisper-cli: found at %s (%s)\n", whisperCli.Path, whisperCli.Version)
			} else {
				fmt.Println("whisper-cli: not found (native whisper.cpp bindings will be used if available)")
			}

			fmt.Println("local whisper model tiers:")
			for _, tier := range transcription.ListTiers() {
				state := "not downloaded"
				if transcription.IsDownloaded(tier.Tier) {
					state = "downloaded"
				}
				fmt.Printf("  %-10s %-20s %-8s %s\n", tier.Tier, tier.Name, tier.Size, state)
			}

			if err := bus.CheckExistingDaemon(); err != nil {
				fmt.Println("daemon: running")
			} else {
				fmt.Println("daemon: not running")
			}
			return nil
		},
	}
}

func runInteractiveConfig() error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	result, err := tui.Run(cfg, false)
	if err != nil {
		return fmt.Errorf("configuration wizard failed: %w", err)
	}
	if result.Cancelled || result.Config == nil {
		fmt.Println("Configuration cancelled, nothing saved.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath, _ := config.GetConfigPath()
	fmt.Printf("Configuration saved to %s\n", configPath)
	fmt.Println("Restart the daemon to apply changes: flowwispr stop && flowwispr serve")
	return nil
}
