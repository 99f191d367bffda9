package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"techmart-assistant/internal/domain"
)

// MemorySessionRepository guarda sesiones en memoria. Util para desarrollo, CLI y tests.
type MemorySessionRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		items: make(map[string]domain.Session),
	}
}

func (r *MemorySessionRepository) Get(_ context.Context, sessionID, userID string) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.items[sessionID]
	if !ok || session.UserID != userID {
		return domain.Session{}, ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (r *MemorySessionRepository) Put(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[session.ID]; ok && existing.UserID != session.UserID {
		return fmt.Errorf("session %s owned by another user", session.ID)
	}
	r.items[session.ID] = session.Clone()
	return nil
}

func (r *MemorySessionRepository) ListByUser(_ context.Context, userID string) ([]domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Session
	for _, s := range r.items {
		if s.UserID == userID {
			out = append(out, s.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}
