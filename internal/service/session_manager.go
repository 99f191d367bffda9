package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"techmart-assistant/internal/domain"
	"techmart-assistant/internal/repository"
)

const sessionPreviewLength = 100

// SessionManager resuelve, extiende y resume conversaciones sobre un SessionRepository.
type SessionManager struct {
	store repository.SessionRepository
	now   func() time.Time
	newID func() string
}

func NewSessionManager(store repository.SessionRepository) *SessionManager {
	return &SessionManager{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Resolve devuelve la sesion (sessionID, userID) si existe; si no, una sesion nueva con id fresco.
// La sesion nueva no se persiste hasta el primer AppendExchange.
func (m *SessionManager) Resolve(ctx context.Context, userID, sessionID string) (domain.Session, error) {
	if sessionID != "" {
		session, err := m.store.Get(ctx, sessionID, userID)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, repository.ErrSessionNotFound) {
			return domain.Session{}, fmt.Errorf("%w: get session: %w", ErrStoreUnavailable, err)
		}
	}
	now := m.now()
	return domain.Session{
		ID:        m.newID(),
		UserID:    userID,
		Messages:  []domain.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AppendExchange agrega el mensaje del usuario y luego la respuesta, y persiste la sesion completa.
// Es todo o nada: *session solo cambia si el store acepto la escritura.
// Devuelve la respuesta tal como quedo guardada (su timestamp puede ajustarse para mantener el orden).
func (m *SessionManager) AppendExchange(ctx context.Context, session *domain.Session, utterance string, reply domain.Message) (domain.Message, error) {
	ts := m.now()
	if ts.Before(session.UpdatedAt) {
		ts = session.UpdatedAt
	}
	userMsg := domain.Message{
		ID:        m.newID(),
		Role:      domain.RoleUser,
		Content:   utterance,
		Timestamp: ts,
	}
	if reply.Timestamp.Before(ts) {
		reply.Timestamp = ts
	}

	next := session.Clone()
	next.Messages = append(next.Messages, userMsg, reply)
	next.UpdatedAt = reply.Timestamp

	if err := m.store.Put(ctx, next); err != nil {
		return reply, fmt.Errorf("%w: put session: %w", ErrStoreUnavailable, err)
	}
	*session = next
	return reply, nil
}

// ListSessions resume las sesiones del usuario, mas recientes primero.
func (m *SessionManager) ListSessions(ctx context.Context, userID string) ([]domain.SessionSummary, error) {
	sessions, err := m.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %w", ErrStoreUnavailable, err)
	}
	summaries := make([]domain.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		if s.UserID != userID {
			continue
		}
		summaries = append(summaries, domain.SessionSummary{
			ID:          s.ID,
			CreatedAt:   s.CreatedAt,
			UpdatedAt:   s.UpdatedAt,
			LastMessage: lastMessagePreview(s.Messages),
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// GetSession exige que coincidan id y dueño.
func (m *SessionManager) GetSession(ctx context.Context, userID, sessionID string) (domain.Session, error) {
	session, err := m.store.Get(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return domain.Session{}, ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("%w: get session: %w", ErrStoreUnavailable, err)
	}
	if session.UserID != userID {
		return domain.Session{}, ErrNotFound
	}
	return session, nil
}

func lastMessagePreview(messages []domain.Message) string {
	if len(messages) == 0 {
		return ""
	}
	content := []rune(messages[len(messages)-1].Content)
	if len(content) > sessionPreviewLength {
		content = content[:sessionPreviewLength]
	}
	return string(content)
}
