package transport

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/clawdeck/internal/state"
	"github.com/user/clawdeck/internal/types"
)

type fakeTitler struct {
	title string
	err   error
	calls int
}

func (f *fakeTitler) GenerateTitle(_ context.Context, message string) (string, error) {
	f.calls++
	return f.title, f.err
}

func newThreadSender(t *testing.T, agent *fakeAgent, titler Titler) (*ThreadSender, *state.ThreadStore) {
	t.Helper()
	facade, _ := newLocalFacade(t, agent)
	threads := state.NewThreadStore(filepath.Join(t.TempDir(), "threads.json"))
	return NewThreadSender(threads, facade, titler), threads
}

func createThread(t *testing.T, threads *state.ThreadStore, name string) *types.Thread {
	t.Helper()
	now := time.Now()
	th := &types.Thread{
		ID:        types.NewThreadID(),
		Name:      name,
		AgentID:   "main",
		SessionID: types.NewSessionID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := threads.Create(context.Background(), th); err != nil {
		t.Fatal(err)
	}
	return th
}

func TestThreadSendTouchesThread(t *testing.T) {
	ctx := context.Background()
	sender, threads := newThreadSender(t, &fakeAgent{reply: "ok"}, nil)
	th := createThread(t, threads, "Backups")

	reply, err := sender.Send(ctx, th.ID, "hi")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply == nil || reply.Content != "ok" {
		t.Fatalf("reply = %+v", reply)
	}

	got, err := threads.Get(ctx, th.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.LastMessageAt == nil {
		t.Error("LastMessageAt not set by send")
	}
	if got.Name != "Backups" {
		t.Errorf("named thread was retitled to %q", got.Name)
	}
}

func TestThreadSendAutoTitlesPlaceholder(t *testing.T) {
	ctx := context.Background()
	titler := &fakeTitler{title: "Backup strategy"}
	sender, threads := newThreadSender(t, &fakeAgent{reply: "ok"}, titler)
	th := createThread(t, threads, "New thread")

	if _, err := sender.Send(ctx, th.ID, "how do I back up my vault?"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	got, err := threads.Get(ctx, th.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Backup strategy" {
		t.Errorf("thread name = %q, want generated title", got.Name)
	}

	// A titled thread is not retitled on the next send.
	if _, err := sender.Send(ctx, th.ID, "and restores?"); err != nil {
		t.Fatalf("second Send: %v", err)
	}
	if titler.calls != 1 {
		t.Errorf("titler called %d times, want once", titler.calls)
	}
}

func TestThreadSendTitleFailureNonFatal(t *testing.T) {
	ctx := context.Background()
	titler := &fakeTitler{err: errors.New("no binary")}
	sender, threads := newThreadSender(t, &fakeAgent{reply: "ok"}, titler)
	th := createThread(t, threads, "New thread")

	reply, err := sender.Send(ctx, th.ID, "hi")
	if err != nil {
		t.Fatalf("Send failed on title error: %v", err)
	}
	if reply == nil {
		t.Fatal("no reply despite successful send")
	}

	// Placeholder stays; the nightly refresh will retry.
	got, err := threads.Get(ctx, th.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "New thread" {
		t.Errorf("thread name = %q, want placeholder kept", got.Name)
	}
}

func TestThreadSendNilTitlerKeepsPlaceholder(t *testing.T) {
	ctx := context.Background()
	sender, threads := newThreadSender(t, &fakeAgent{reply: "ok"}, nil)
	th := createThread(t, threads, "New thread")

	if _, err := sender.Send(ctx, th.ID, "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := threads.Get(ctx, th.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "New thread" {
		t.Errorf("thread name = %q, want placeholder kept", got.Name)
	}
}

func TestThreadSendUnknownThread(t *testing.T) {
	sender, _ := newThreadSender(t, &fakeAgent{reply: "ok"}, nil)
	if _, err := sender.Send(context.Background(), types.NewThreadID(), "hi"); err == nil {
		t.Fatal("expected error for unknown thread")
	}
}
