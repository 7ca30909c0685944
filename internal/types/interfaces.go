// internal/types/interfaces.go
package types

import (
	"context"
)

type ThreadStore interface {
	Create(ctx context.Context, thread *Thread) error
	Get(ctx context.Context, id ThreadID) (*Thread, error)
	List(ctx context.Context, projectID ProjectID) ([]*Thread, error)
	Rename(ctx context.Context, id ThreadID, name string) error
	Touch(ctx context.Context, id ThreadID) error
	Delete(ctx context.Context, id ThreadID) error
}

type ProjectStore interface {
	Create(ctx context.Context, project *Project) error
	List(ctx context.Context) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id ProjectID) error
	UpsertBySource(ctx context.Context, project *Project) (UpsertResult, error)
}

type NoteStore interface {
	Create(ctx context.Context, note *Note) error
	List(ctx context.Context) ([]*Note, error)
	ListProactive(ctx context.Context) ([]*Note, error)
	SetStatus(ctx context.Context, id NoteID, status string) error
	SetProactive(ctx context.Context, id NoteID, proactive bool) error
	MarkFollowedUp(ctx context.Context, id NoteID) error
	Delete(ctx context.Context, id NoteID) error
}

type KanbanStore interface {
	Create(ctx context.Context, item *KanbanItem) error
	List(ctx context.Context, projectID ProjectID) ([]*KanbanItem, error)
	Update(ctx context.Context, item *KanbanItem) error
	Move(ctx context.Context, id KanbanItemID, column string, position int) error
	SetStatus(ctx context.Context, id KanbanItemID, status string) error
	Delete(ctx context.Context, id KanbanItemID) error
}

// AgentRunner invokes the local agent binary with a prompt for the given
// agent and returns the assistant's reply text.
type AgentRunner interface {
	Invoke(ctx context.Context, agentID, message string) (string, error)
}
