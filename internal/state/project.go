// internal/state/project.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/user/clawdeck/internal/types"
)

// ProjectStore is a JSON-file-backed store of projects.
type ProjectStore struct {
	path string
	mu   sync.RWMutex
}

// NewProjectStore creates a ProjectStore at the given file path.
func NewProjectStore(path string) *ProjectStore {
	return &ProjectStore{path: path}
}

func (s *ProjectStore) load() ([]*types.Project, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read projects: %w", err)
	}
	var projects []*types.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("unmarshal projects: %w", err)
	}
	return projects, nil
}

// Create persists a new project.
func (s *ProjectStore) Create(_ context.Context, project *types.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.load()
	if err != nil {
		return err
	}
	projects = append(projects, project)
	return writeJSONAtomic(s.path, projects)
}

// List returns all projects.
func (s *ProjectStore) List(_ context.Context) ([]*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

// Update persists changes to an existing project.
func (s *ProjectStore) Update(_ context.Context, project *types.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.load()
	if err != nil {
		return err
	}
	for i, p := range projects {
		if p.ID == project.ID {
			project.UpdatedAt = time.Now()
			projects[i] = project
			return writeJSONAtomic(s.path, projects)
		}
	}
	return fmt.Errorf("project not found: %s", project.ID)
}

// Delete removes the project.
func (s *ProjectStore) Delete(_ context.Context, id types.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.load()
	if err != nil {
		return err
	}
	out := projects[:0]
	for _, p := range projects {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return writeJSONAtomic(s.path, out)
}

// UpsertBySource creates or refreshes a project imported from an external
// source (the vault sync). The source path is the dedup key. A project whose
// name and description already match is skipped, not rewritten.
func (s *ProjectStore) UpsertBySource(_ context.Context, project *types.Project) (types.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.load()
	if err != nil {
		return types.UpsertSkipped, err
	}

	for _, p := range projects {
		if p.Source != "" && p.Source == project.Source {
			if p.Name == project.Name && p.Description == project.Description {
				return types.UpsertSkipped, nil
			}
			p.Name = project.Name
			p.Description = project.Description
			p.Color = project.Color
			p.UpdatedAt = time.Now()
			if err := writeJSONAtomic(s.path, projects); err != nil {
				return types.UpsertSkipped, err
			}
			return types.UpsertUpdated, nil
		}
	}

	now := time.Now()
	project.ID = types.NewProjectID()
	project.CreatedAt = now
	project.UpdatedAt = now
	projects = append(projects, project)
	if err := writeJSONAtomic(s.path, projects); err != nil {
		return types.UpsertSkipped, err
	}
	return types.UpsertCreated, nil
}
