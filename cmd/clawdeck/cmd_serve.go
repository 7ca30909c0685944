package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/clawdeck/internal/notify"
	"github.com/user/clawdeck/internal/openclaw"
	"github.com/user/clawdeck/internal/proactive"
	"github.com/user/clawdeck/internal/types"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the clawdeck daemon",
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "clawdeck.pid")
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	threads, _, notes, _ := buildStores(cfg)
	tr, link, watches := buildTransport(cfg)
	defer watches.StopAll()

	if tr.RemoteMode() {
		if err := link.Connect(); err != nil {
			slog.Warn("remote mode on but SSH connect failed; will retry on demand", "error", err)
		}
		defer link.Disconnect()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Notifier
	var notifier proactive.Notifier
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("create telegram notifier: %w", err)
		}
		notifier = tg
		slog.Info("telegram notifier started")
	} else {
		slog.Warn("telegram notifier disabled (no token)")
	}

	// Titler: the local agent binary, when present.
	var titler proactive.Titler
	if agent, err := openclaw.NewAgent(); err == nil {
		titler = agent
	} else {
		slog.Warn("openclaw binary not found; title refresh disabled", "error", err)
	}

	// Watch every known thread's session, forwarding fresh messages to the
	// notifier so replies land even when no chat window is open.
	list, err := threads.List(ctx, "")
	if err != nil {
		return fmt.Errorf("list threads: %w", err)
	}
	for _, th := range list {
		key := types.SessionKey{AgentID: th.AgentID, SessionID: th.SessionID}
		name := th.Name
		if err := tr.Watch(key, func(msg openclaw.ChatMessage) {
			if msg.Role != openclaw.RoleAssistant || notifier == nil {
				return
			}
			if err := notifier.Notify(fmt.Sprintf("[%s] %s", name, msg.Content)); err != nil {
				slog.Error("notify failed", "thread", name, "error", err)
			}
		}); err != nil {
			slog.Error("watch failed", "session", key.String(), "error", err)
		}
	}

	// Proactive scheduler
	service := proactive.NewService(notes, threads, tr, titler, notifier)
	sched := proactive.NewScheduler(service, time.Duration(cfg.Proactive.IntervalMinutes)*time.Minute)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	slog.Info("clawdeck started",
		"data_dir", cfg.DataDir,
		"log_dir", cfg.LogDir,
		"log_level", cfg.LogLevel,
		"remote_mode", tr.RemoteMode(),
		"watched_threads", len(list),
		"pid_file", pidPath,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan
		if sig == syscall.SIGHUP {
			slog.Info("received SIGHUP, restarting")
			execPath, err := os.Executable()
			if err != nil {
				slog.Error("failed to get executable path", "error", err)
				continue
			}
			os.Remove(pidPath)
			if err := syscall.Exec(execPath, os.Args, os.Environ()); err != nil {
				slog.Error("failed to re-exec", "error", err)
				if _, writeErr := writePIDFile(cfg.DataDir); writeErr != nil {
					slog.Error("failed to re-write PID file", "error", writeErr)
				}
				continue
			}
		}
		slog.Info("shutting down", "signal", sig)
		return nil
	}
}
