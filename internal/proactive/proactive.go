// Package proactive runs the background passes: periodic follow-ups on
// flagged notes and the nightly refresh of stale thread titles. Each pass
// failure is logged and skipped; the scheduler keeps running.
package proactive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/user/clawdeck/internal/openclaw"
	"github.com/user/clawdeck/internal/transport"
	"github.com/user/clawdeck/internal/types"
)

// maxConcurrentFollowUps bounds how many agent conversations a single
// follow-up pass opens at once.
const maxConcurrentFollowUps = 2

// Titler generates a short thread title from the opening message.
type Titler interface {
	GenerateTitle(ctx context.Context, message string) (string, error)
}

// Notifier receives a line of text about each completed follow-up.
// A nil Notifier disables notifications.
type Notifier interface {
	Notify(text string) error
}

// Service executes the proactive passes against the stores and transport.
type Service struct {
	notes     types.NoteStore
	threads   types.ThreadStore
	transport *transport.Facade
	titler    Titler
	notifier  Notifier
	sem       *semaphore.Weighted
}

// NewService wires a Service. titler and notifier may be nil; a nil titler
// skips title refresh, a nil notifier skips notifications.
func NewService(notes types.NoteStore, threads types.ThreadStore, tr *transport.Facade, titler Titler, notifier Notifier) *Service {
	return &Service{
		notes:     notes,
		threads:   threads,
		transport: tr,
		titler:    titler,
		notifier:  notifier,
		sem:       semaphore.NewWeighted(maxConcurrentFollowUps),
	}
}

// FollowUp opens a fresh session for every pending proactive note, sends
// the follow-up prompt through the transport, and marks the note handled.
// One note's failure does not stop the rest of the pass.
func (s *Service) FollowUp(ctx context.Context) error {
	notes, err := s.notes.ListProactive(ctx)
	if err != nil {
		return fmt.Errorf("list proactive notes: %w", err)
	}

	// The semaphore bounds concurrency across all passes; the WaitGroup is
	// per pass, so an overlapping pass only waits on its own notes.
	var wg sync.WaitGroup
	for _, note := range notes {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func(note *types.Note) {
			defer wg.Done()
			defer s.sem.Release(1)
			s.followUpNote(ctx, note)
		}(note)
	}
	wg.Wait()
	return nil
}

func (s *Service) followUpNote(ctx context.Context, note *types.Note) {
	key := types.SessionKey{AgentID: "main", SessionID: types.NewSessionID()}
	prompt := fmt.Sprintf(
		"I jotted this down earlier: '%s'. Do you have thoughts, or can you help me take a first step on it?",
		note.Content)

	if _, err := s.transport.Send(ctx, key, prompt); err != nil {
		slog.Error("proactive follow-up failed", "note_id", string(note.ID), "error", err)
		return
	}
	if err := s.notes.MarkFollowedUp(ctx, note.ID); err != nil {
		slog.Error("mark note followed up", "note_id", string(note.ID), "error", err)
	}
	slog.Info("proactive follow-up sent", "note_id", string(note.ID), "session_id", key.SessionID)

	if s.notifier != nil {
		line := fmt.Sprintf("Followed up on: %s", note.Content)
		if err := s.notifier.Notify(line); err != nil {
			slog.Warn("follow-up notification failed", "error", err)
		}
	}
}

// RefreshTitles renames threads still called "New thread" using a title
// generated from their first message. Threads with empty sessions wait for
// the next pass.
func (s *Service) RefreshTitles(ctx context.Context) error {
	if s.titler == nil {
		return nil
	}
	threads, err := s.threads.List(ctx, "")
	if err != nil {
		return fmt.Errorf("list threads: %w", err)
	}

	for _, th := range threads {
		if th.Name != "New thread" {
			continue
		}
		key := types.SessionKey{AgentID: th.AgentID, SessionID: th.SessionID}
		messages, err := s.transport.LoadHistory(ctx, key)
		if err != nil {
			slog.Error("load history for title refresh", "thread_id", string(th.ID), "error", err)
			continue
		}
		if len(messages) == 0 {
			continue
		}
		title, err := s.titler.GenerateTitle(ctx, firstUserMessage(messages))
		if err != nil {
			slog.Error("generate title", "thread_id", string(th.ID), "error", err)
			continue
		}
		if err := s.threads.Rename(ctx, th.ID, title); err != nil {
			slog.Error("rename thread", "thread_id", string(th.ID), "error", err)
			continue
		}
		slog.Info("thread title refreshed", "thread_id", string(th.ID), "title", title)
	}
	return nil
}

func firstUserMessage(messages []openclaw.ChatMessage) string {
	for _, msg := range messages {
		if msg.Role == openclaw.RoleUser {
			return msg.Content
		}
	}
	return messages[0].Content
}

// Interval is the default spacing between follow-up passes.
const Interval = 4 * time.Hour
