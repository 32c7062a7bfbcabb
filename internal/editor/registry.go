package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/research-doc-backend/internal/logging"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/domain"
)

type sessionKey struct {
	owner   string
	project string
}

// Registry holds one Store per (owner, project) being edited.
type Registry struct {
	storage Storage
	opts    Options

	mu       sync.Mutex
	sessions map[sessionKey]*Store
}

func NewRegistry(storage Storage, opts Options) *Registry {
	return &Registry{
		storage:  storage,
		opts:     opts.withDefaults(),
		sessions: make(map[sessionKey]*Store),
	}
}

// Open returns the live session for the project, loading it on first use.
func (r *Registry) Open(ctx context.Context, ownerID, projectID string) (*Store, error) {
	key := sessionKey{ownerID, projectID}

	r.mu.Lock()
	if s, ok := r.sessions[key]; ok {
		// marks the session busy before an idle sweep can remove it
		s.markUsed()
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	loaded, err := Load(ctx, r.storage, ownerID, projectID, r.opts)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok {
		// lost a concurrent load; nothing was scheduled on ours yet
		loaded.discard()
		return s, nil
	}
	r.sessions[key] = loaded
	return loaded, nil
}

func (r *Registry) lookup(ownerID, projectID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionKey{ownerID, projectID}]
	return s, ok
}

// Renamed replaces the project metadata of an open session.
func (r *Registry) Renamed(ownerID, projectID string, p domain.Project) {
	if s, ok := r.lookup(ownerID, projectID); ok {
		s.SetProject(p)
	}
}

// Drop discards the session without writing. Used when the project is gone.
func (r *Registry) Drop(ownerID, projectID string) {
	r.mu.Lock()
	s, ok := r.sessions[sessionKey{ownerID, projectID}]
	delete(r.sessions, sessionKey{ownerID, projectID})
	r.mu.Unlock()
	if ok {
		s.discard()
	}
}

// EvictIdle flushes and removes sessions unused for longer than ttl.
// A session whose flush fails stays registered so its edits are retried.
func (r *Registry) EvictIdle(ctx context.Context, ttl time.Duration) int {
	cutoff := r.opts.Now().Add(-ttl)
	log := logging.Op(ctx, "evict_sessions")

	r.mu.Lock()
	idle := make(map[sessionKey]*Store)
	for k, s := range r.sessions {
		if s.LastUsed().Before(cutoff) && !s.Saving() {
			idle[k] = s
		}
	}
	r.mu.Unlock()

	evicted := 0
	for k, s := range idle {
		if err := s.Flush(ctx); err != nil {
			log.Warn("flush before eviction failed", zap.String("project_id", k.project), zap.Error(err))
			continue
		}

		r.mu.Lock()
		// only evict if it is still the same, still idle session
		cur, ok := r.sessions[k]
		gone := ok && cur == s && s.LastUsed().Before(cutoff)
		if gone {
			delete(r.sessions, k)
		}
		r.mu.Unlock()
		if !gone {
			continue
		}

		// a caller still holding the store gets ErrSessionClosed on edit
		if err := s.Close(ctx); err != nil {
			log.Warn("close evicted session failed", zap.String("project_id", k.project), zap.Error(err))
		}
		evicted++
	}

	if evicted > 0 {
		r.mu.Lock()
		open := len(r.sessions)
		r.mu.Unlock()
		log.Info("evicted idle editing sessions", zap.Int("count", evicted), zap.Int("open", open))
	}
	return evicted
}

// FlushAll writes every pending edit of every session.
func (r *Registry) FlushAll(ctx context.Context) error {
	r.mu.Lock()
	all := make([]*Store, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.Unlock()

	var errs []error
	for _, s := range all {
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
