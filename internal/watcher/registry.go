// Package watcher delivers newly appended session log messages to a
// subscriber without polling. Each active session gets one fsnotify watch on
// the log's parent directory and one goroutine that owns the read offset.
package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/user/clawdeck/internal/chatlog"
	"github.com/user/clawdeck/internal/openclaw"
	"github.com/user/clawdeck/internal/types"
)

// OnMessage receives each newly delivered message, in append order.
// Delivery is synchronous: a slow subscriber stalls its own session's tail
// and nobody else's.
type OnMessage func(msg openclaw.ChatMessage)

// watch bundles one session's notification subscription and delivery task.
type watch struct {
	fw   *fsnotify.Watcher
	stop chan struct{}
	done chan struct{}
}

// Registry holds at most one active watch per session. The registry lock
// covers only membership; all file I/O happens in per-session goroutines.
type Registry struct {
	logs *chatlog.Store

	mu      sync.Mutex
	watches map[string]*watch // keyed by session ID
}

// NewRegistry creates a Registry reading logs from the given store.
func NewRegistry(logs *chatlog.Store) *Registry {
	return &Registry{
		logs:    logs,
		watches: make(map[string]*watch),
	}
}

// Start begins watching the session's log. The current file content is
// replayed to onMessage first, then every appended message is delivered as
// the file grows. Starting an already-watched session is a no-op: one watch
// per session, so no line is ever parsed and emitted twice by racing tails.
func (r *Registry) Start(key types.SessionKey, onMessage OnMessage) error {
	r.mu.Lock()
	_, exists := r.watches[key.SessionID]
	r.mu.Unlock()
	if exists {
		return nil
	}

	// Set up outside the lock: the registry lock guards membership only,
	// not file-system calls. The log may not exist yet; the parent
	// directory must, because the watch is registered on the directory,
	// not the file. Watching the directory also survives the file being
	// created after us.
	if err := r.logs.EnsureDir(key); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(r.logs.Path(key))
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &watch{
		fw:   fw,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	// Re-check under the lock: a racing Start may have won while we were
	// setting up. The loser releases its watcher and defers to the winner.
	r.mu.Lock()
	if _, exists := r.watches[key.SessionID]; exists {
		r.mu.Unlock()
		fw.Close()
		return nil
	}
	r.watches[key.SessionID] = w
	r.mu.Unlock()

	go r.run(key, w, onMessage)
	return nil
}

// run is the per-session delivery task and the sole owner of the session's
// read offset. The initial replay happens here, before the event loop, so
// history is fully delivered before any live update for the same watch.
func (r *Registry) run(key types.SessionKey, w *watch, onMessage OnMessage) {
	defer close(w.done)
	defer w.fw.Close()

	// Events that land while the replay reads are buffered by fsnotify and
	// handled below; the offset re-check makes the overlap harmless.
	msgs, offset, err := r.logs.ReadFrom(key, 0)
	if err != nil {
		slog.Error("session replay failed", "session_id", key.SessionID, "error", err)
	}
	for _, msg := range msgs {
		onMessage(msg)
	}

	for {
		select {
		case <-w.stop:
			return
		case _, ok := <-w.fw.Events:
			if !ok {
				return
			}
			// Any change in the directory wakes us, including sibling
			// files. Re-reading from the last offset turns a spurious
			// wake into a zero-message no-op.
			msgs, newOffset, err := r.logs.ReadFrom(key, offset)
			if err != nil {
				slog.Error("session tail read failed", "session_id", key.SessionID, "error", err)
				continue
			}
			for _, msg := range msgs {
				onMessage(msg)
			}
			offset = newOffset
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "session_id", key.SessionID, "error", err)
		}
	}
}

// Stop removes the session's watch, cancels its delivery task, and releases
// the file-system subscription. Stopping an unwatched session is a no-op.
func (r *Registry) Stop(sessionID string) {
	r.mu.Lock()
	w, ok := r.watches[sessionID]
	if ok {
		delete(r.watches, sessionID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	close(w.stop)
	<-w.done
}

// StopAll stops every active watch. Used on shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.watches))
	for id := range r.watches {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Stop(id)
	}
}

// Active reports whether the session currently has a watch.
func (r *Registry) Active(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.watches[sessionID]
	return ok
}
