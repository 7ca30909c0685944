// internal/types/models.go
package types

import (
	"fmt"
	"time"
)

// SessionKey identifies one conversation log: one agent, one session.
// It maps to exactly one JSONL file, locally or on the remote host.
type SessionKey struct {
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id"`
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%s/%s", k.AgentID, k.SessionID)
}

type Thread struct {
	ID            ThreadID   `json:"id"`
	ProjectID     ProjectID  `json:"project_id,omitempty"`
	Name          string     `json:"name"`
	AgentID       string     `json:"agent_id"`
	SessionID     string     `json:"session_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

type Project struct {
	ID          ProjectID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	AgentID     string    `json:"agent_id"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Note is a captured thought (a "brain dump"). Notes flagged Proactive are
// picked up by the follow-up scheduler and turned into agent conversations.
type Note struct {
	ID           NoteID     `json:"id"`
	Content      string     `json:"content"`
	ProjectID    ProjectID  `json:"project_id,omitempty"`
	Status       string     `json:"status"`
	Proactive    bool       `json:"proactive"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	FollowedUpAt *time.Time `json:"followed_up_at,omitempty"`
}

// KanbanItem is one card on the board. Items created by hand carry
// SourceType "manual"; items promoted from a note carry "note" and point
// back at it through SourceID.
type KanbanItem struct {
	ID          KanbanItemID `json:"id"`
	ProjectID   ProjectID    `json:"project_id,omitempty"`
	SourceType  string       `json:"source_type"`
	SourceID    string       `json:"source_id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Column      string       `json:"column"`
	Position    int          `json:"position"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// UpsertResult reports what an upsert-by-source call did with a record.
type UpsertResult int

const (
	UpsertCreated UpsertResult = iota
	UpsertUpdated
	UpsertSkipped
)

func (r UpsertResult) String() string {
	switch r {
	case UpsertCreated:
		return "created"
	case UpsertUpdated:
		return "updated"
	case UpsertSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}
