// Package storage persists parsed resumes and their ranked matches.
package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/spigell/jobfit/internal/matching"
	"github.com/spigell/jobfit/internal/resume"
)

// ErrNotFound is returned when a resume or its matches are not stored.
var ErrNotFound = errors.New("not found")

// Store keeps resumes and match results keyed by resume ID.
type Store interface {
	SaveResume(ctx context.Context, r *resume.Resume) error
	GetResume(ctx context.Context, id string) (*resume.Resume, error)
	SaveMatches(ctx context.Context, resumeID string, matches []matching.JobMatch) error
	GetMatches(ctx context.Context, resumeID string) ([]matching.JobMatch, error)
}

// Memory is a process-local Store.
type Memory struct {
	mu      sync.RWMutex
	resumes map[string]resume.Resume
	matches map[string][]matching.JobMatch
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		resumes: make(map[string]resume.Resume),
		matches: make(map[string][]matching.JobMatch),
	}
}

func (m *Memory) SaveResume(ctx context.Context, r *resume.Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}
	if r.ID == "" {
		return errors.New("resume id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumes[r.ID] = *r

	return nil
}

func (m *Memory) GetResume(ctx context.Context, id string) (*resume.Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.resumes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) SaveMatches(ctx context.Context, resumeID string, matches []matching.JobMatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[resumeID] = append([]matching.JobMatch(nil), matches...)

	return nil
}

func (m *Memory) GetMatches(ctx context.Context, resumeID string) ([]matching.JobMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches, ok := m.matches[resumeID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]matching.JobMatch(nil), matches...), nil
}
