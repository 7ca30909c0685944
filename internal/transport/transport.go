// Package transport is the single entry point for exchanging messages with
// the agent. It dispatches every call on the remote-mode flag: local mode
// works the session log on disk, remote mode goes through the SSH link.
package transport

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/user/clawdeck/internal/chatlog"
	"github.com/user/clawdeck/internal/openclaw"
	"github.com/user/clawdeck/internal/sshlink"
	"github.com/user/clawdeck/internal/types"
	"github.com/user/clawdeck/internal/watcher"
)

// Facade exposes load/send/watch/unwatch over both delivery modes. The
// remote-mode flag is a single atomic cell read at the top of every
// operation, never cached across calls.
type Facade struct {
	logs    *chatlog.Store
	watches *watcher.Registry
	link    *sshlink.Link
	agent   types.AgentRunner

	remote atomic.Bool
}

// New wires a Facade from its collaborators.
func New(logs *chatlog.Store, watches *watcher.Registry, link *sshlink.Link, agent types.AgentRunner) *Facade {
	return &Facade{
		logs:    logs,
		watches: watches,
		link:    link,
		agent:   agent,
	}
}

// RemoteMode reports whether operations currently go over the SSH link.
func (f *Facade) RemoteMode() bool {
	return f.remote.Load()
}

// SetRemoteMode toggles remote delivery. Takes effect on the next call.
func (f *Facade) SetRemoteMode(enabled bool) {
	f.remote.Store(enabled)
}

// LoadHistory returns the session's full message history in file order. An
// absent log, local or remote, is an empty history.
func (f *Facade) LoadHistory(ctx context.Context, key types.SessionKey) ([]openclaw.ChatMessage, error) {
	if f.remote.Load() {
		content, err := f.link.ReadSessionFile(key)
		if err != nil {
			return nil, err
		}
		var messages []openclaw.ChatMessage
		for _, line := range strings.Split(content, "\n") {
			if msg, ok := openclaw.ParseLine(line); ok {
				messages = append(messages, msg)
			}
		}
		return messages, nil
	}
	return f.logs.ReadAll(key)
}

// Send delivers the user's message to the agent.
//
// Local mode appends the user message to the log, invokes the agent binary,
// appends the assistant reply, and returns it. Remote mode is fire and
// forget: the remote agent writes its own reply into the remote log, which
// a remote tail or a later LoadHistory surfaces.
func (f *Facade) Send(ctx context.Context, key types.SessionKey, text string) (*openclaw.ChatMessage, error) {
	if f.remote.Load() {
		if err := f.link.SendMessage(key, text); err != nil {
			return nil, err
		}
		return nil, nil
	}

	userMsg := openclaw.ChatMessage{Role: openclaw.RoleUser, Content: text}
	if err := f.logs.Append(key, userMsg); err != nil {
		return nil, fmt.Errorf("write user message: %w", err)
	}

	reply, err := f.agent.Invoke(ctx, key.AgentID, text)
	if err != nil {
		return nil, err
	}

	assistantMsg := openclaw.ChatMessage{Role: openclaw.RoleAssistant, Content: reply}
	if err := f.logs.Append(key, assistantMsg); err != nil {
		return nil, fmt.Errorf("write assistant message: %w", err)
	}
	return &assistantMsg, nil
}

// Watch subscribes onMessage to the session's log. In remote mode there is
// no local file to watch, so Watch is a no-op; callers stream or poll over
// the link instead.
func (f *Facade) Watch(key types.SessionKey, onMessage watcher.OnMessage) error {
	if f.remote.Load() {
		return nil
	}
	return f.watches.Start(key, onMessage)
}

// Unwatch stops the session's watch if one is active.
func (f *Facade) Unwatch(sessionID string) {
	f.watches.Stop(sessionID)
}
