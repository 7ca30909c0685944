// Package sshlink owns the one SSH connection used for remote-mode chat.
// The underlying client is not safe for concurrent use, so every operation
// serialises on the link's mutex; callers block until the link is free.
package sshlink

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/user/clawdeck/internal/types"
)

// Config describes how to reach the remote host. Replacing it on a live
// link takes effect on the next Connect, not on the open connection.
type Config struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	User    string `json:"user"`
	KeyPath string `json:"key_path"`
}

// DefaultConfig returns a Config with the usual port and key location.
func DefaultConfig() Config {
	return Config{
		Port:    22,
		KeyPath: "~/.ssh/id_ed25519",
	}
}

// Status is the link's connection state.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// ErrNotConnected is returned when an operation needs an open connection.
// Callers decide whether to Connect and retry; the link never reconnects
// on its own.
var ErrNotConnected = errors.New("ssh link not connected")

// ExitError reports a remote command that ran but exited non-zero. Stderr
// carries the remote error text verbatim for diagnostics.
type ExitError struct {
	Command string
	Status  int
	Stderr  string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("remote command failed (exit %d): %s", e.Status, strings.TrimSpace(e.Stderr))
}

// conn abstracts the dialed SSH client so the state machine is testable
// without a network. run returns stdout, stderr, and the remote exit status;
// err is reserved for transport-level failures.
type conn interface {
	run(cmd string) (stdout, stderr string, status int, err error)
	stream(cmd string) (lines *bufio.Scanner, stop func(), err error)
	close() error
}

// Link is the shared remote connection. One instance exists per process.
type Link struct {
	mu          sync.Mutex
	cfg         Config
	status      Status
	lastErr     string
	conn        conn
	dial        func(Config) (conn, error)
	execTimeout time.Duration
}

// NewLink creates a disconnected Link with the given config.
func NewLink(cfg Config) *Link {
	return &Link{
		cfg:         cfg,
		status:      StatusDisconnected,
		dial:        dialSSH,
		execTimeout: 60 * time.Second,
	}
}

// Config returns the current connection config.
func (l *Link) Config() Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg
}

// SetConfig replaces the connection config. An already-open connection is
// unaffected until the next Connect.
func (l *Link) SetConfig(cfg Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg = cfg
}

// Status returns the link state and, in the error state, the failure text.
func (l *Link) Status() (Status, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status, l.lastErr
}

// Connect dials the remote host. Calling Connect while already connected
// closes the stale connection first: connection objects are single-use.
func (l *Link) Connect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connectLocked()
}

func (l *Link) connectLocked() error {
	if l.conn != nil {
		if err := l.conn.close(); err != nil {
			slog.Debug("close stale ssh connection", "error", err)
		}
		l.conn = nil
	}

	l.status = StatusConnecting
	c, err := l.dial(l.cfg)
	if err != nil {
		l.status = StatusError
		l.lastErr = err.Error()
		return fmt.Errorf("ssh connect failed: %w", err)
	}

	l.conn = c
	l.status = StatusConnected
	l.lastErr = ""
	return nil
}

// Disconnect closes the connection if one is open and always leaves the
// link in the disconnected state. It never fails from the caller's side.
func (l *Link) Disconnect() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil {
		if err := l.conn.close(); err != nil {
			slog.Debug("close ssh connection", "error", err)
		}
		l.conn = nil
	}
	l.status = StatusDisconnected
	l.lastErr = ""
}

// Exec runs a command through the remote shell and returns trimmed stdout.
// A non-zero exit comes back as *ExitError; an unconnected link comes back
// as ErrNotConnected.
func (l *Link) Exec(cmd string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.execLocked(cmd)
}

func (l *Link) execLocked(cmd string) (string, error) {
	if l.conn == nil {
		return "", ErrNotConnected
	}

	type result struct {
		stdout, stderr string
		status         int
		err            error
	}
	ch := make(chan result, 1)
	go func() {
		stdout, stderr, status, err := l.conn.run(cmd)
		ch <- result{stdout, stderr, status, err}
	}()

	// The timeout keeps a hung remote command from holding the link mutex
	// forever. The abandoned exec channel dies with the next reconnect.
	select {
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("ssh exec failed: %w", r.err)
		}
		if r.status != 0 {
			return "", &ExitError{Command: cmd, Status: r.status, Stderr: r.stderr}
		}
		return strings.TrimSpace(r.stdout), nil
	case <-time.After(l.execTimeout):
		return "", fmt.Errorf("remote command timed out after %s", l.execTimeout)
	}
}

// TestConnection connects and runs a reachability probe, returning its
// output. Failures from either step surface to the caller.
func (l *Link) TestConnection() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.connectLocked(); err != nil {
		return "", err
	}
	return l.execLocked("echo connected && hostname")
}

// ReadSessionFile returns the full content of the remote session log, or
// empty text when the remote file does not exist yet. A fresh remote
// session degrades to an empty history, same as local mode.
func (l *Link) ReadSessionFile(key types.SessionKey) (string, error) {
	cmd := fmt.Sprintf(`cat "%s" 2>/dev/null || true`, remoteLogPath(key))
	return l.Exec(cmd)
}

// SendMessage invokes the remote agent binary with the message text. The
// agent writes its own reply into the remote session log; delivery back to
// us is the remote tail's problem, not this call's.
func (l *Link) SendMessage(key types.SessionKey, message string) error {
	cmd := fmt.Sprintf("openclaw agent --agent %s --session-id %s --message %s",
		quoteSingle(key.AgentID), quoteSingle(key.SessionID), quoteSingle(message))
	_, err := l.Exec(cmd)
	return err
}

// StreamSessionFile follows the remote session log with tail -f, feeding
// each non-empty raw line to onLine from a background goroutine. The
// returned stop function ends the stream.
func (l *Link) StreamSessionFile(key types.SessionKey, onLine func(string)) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return nil, ErrNotConnected
	}

	cmd := fmt.Sprintf(`tail -f "%s"`, remoteLogPath(key))
	scanner, stop, err := l.conn.stream(cmd)
	if err != nil {
		return nil, fmt.Errorf("start remote tail: %w", err)
	}

	go func() {
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				onLine(line)
			}
		}
	}()
	return stop, nil
}

// remoteLogPath builds the session log path relative to the remote user's
// home. $HOME is expanded by the remote shell; the surrounding double
// quotes in the commands above keep the rest of the path literal.
func remoteLogPath(key types.SessionKey) string {
	return fmt.Sprintf("$HOME/.openclaw/agents/%s/sessions/%s.jsonl", key.AgentID, key.SessionID)
}

// quoteSingle wraps s in single quotes for a POSIX shell, escaping embedded
// single quotes so the value survives as one intact argument.
func quoteSingle(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ExpandPath resolves a leading ~/ against the local home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
