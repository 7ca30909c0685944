package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/clawdeck/internal/chatlog"
	"github.com/user/clawdeck/internal/config"
	"github.com/user/clawdeck/internal/openclaw"
	"github.com/user/clawdeck/internal/sshlink"
	"github.com/user/clawdeck/internal/state"
	"github.com/user/clawdeck/internal/transport"
	"github.com/user/clawdeck/internal/types"
	"github.com/user/clawdeck/internal/watcher"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "clawdeck",
	Short: "Chat client for openclaw agents, local or over SSH",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file or exits: the CLI is useless without it.
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// noAgent stands in when the openclaw binary is missing; only local sends
// notice.
type noAgent struct {
	err error
}

func (a noAgent) Invoke(context.Context, string, string) (string, error) {
	return "", a.err
}

// buildTransport wires the facade from config. The SSH link starts
// disconnected; remote commands connect on demand.
func buildTransport(cfg *config.Config) (*transport.Facade, *sshlink.Link, *watcher.Registry) {
	logs := chatlog.NewStore(cfg.LogDir)
	watches := watcher.NewRegistry(logs)
	link := sshlink.NewLink(cfg.SSH)

	var agent types.AgentRunner
	if a, err := openclaw.NewAgent(); err == nil {
		agent = a
	} else {
		agent = noAgent{err: err}
	}

	f := transport.New(logs, watches, link, agent)
	f.SetRemoteMode(cfg.RemoteMode)
	return f, link, watches
}

func buildStores(cfg *config.Config) (*state.ThreadStore, *state.ProjectStore, *state.NoteStore, *state.KanbanStore) {
	return state.NewThreadStore(filepath.Join(cfg.DataDir, "threads.json")),
		state.NewProjectStore(filepath.Join(cfg.DataDir, "projects.json")),
		state.NewNoteStore(filepath.Join(cfg.DataDir, "notes.json")),
		state.NewKanbanStore(filepath.Join(cfg.DataDir, "kanban.json"))
}
