package transport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/user/clawdeck/internal/openclaw"
	"github.com/user/clawdeck/internal/types"
)

// defaultThreadName is the placeholder threads carry until a real title is
// generated from their first message.
const defaultThreadName = "New thread"

// Titler generates a short thread title from the opening message.
type Titler interface {
	GenerateTitle(ctx context.Context, message string) (string, error)
}

// ThreadSender sends through the Facade on behalf of a thread, keeping the
// thread record in step with the conversation: every send bumps the
// thread's last-message time, and a thread still carrying the placeholder
// name gets a title generated from its first message.
type ThreadSender struct {
	threads types.ThreadStore
	facade  *Facade
	titler  Titler
}

// NewThreadSender wires a ThreadSender. titler may be nil, in which case
// placeholder names wait for the nightly refresh.
func NewThreadSender(threads types.ThreadStore, facade *Facade, titler Titler) *ThreadSender {
	return &ThreadSender{
		threads: threads,
		facade:  facade,
		titler:  titler,
	}
}

// Send resolves the thread's session, touches the thread, and delivers the
// message through the facade. On a local reply the placeholder name is
// replaced with a generated title; title and touch failures are logged, not
// fatal, since the message itself went through.
func (s *ThreadSender) Send(ctx context.Context, threadID types.ThreadID, text string) (*openclaw.ChatMessage, error) {
	th, err := s.threads.Get(ctx, threadID)
	if err != nil {
		return nil, err
	}
	key := types.SessionKey{AgentID: th.AgentID, SessionID: th.SessionID}

	if err := s.threads.Touch(ctx, threadID); err != nil {
		slog.Warn("touch thread failed", "thread_id", string(threadID), "error", err)
	}

	reply, err := s.facade.Send(ctx, key, text)
	if err != nil {
		return nil, fmt.Errorf("send to thread %s: %w", threadID, err)
	}

	// Remote sends return no reply; the title waits for the local path or
	// the nightly refresh.
	if reply != nil && th.Name == defaultThreadName && s.titler != nil {
		title, err := s.titler.GenerateTitle(ctx, text)
		if err != nil {
			slog.Warn("generate thread title failed", "thread_id", string(threadID), "error", err)
		} else if err := s.threads.Rename(ctx, threadID, title); err != nil {
			slog.Warn("rename thread failed", "thread_id", string(threadID), "error", err)
		}
	}
	return reply, nil
}
