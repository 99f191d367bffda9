package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"techmart-assistant/internal/domain"
)

// ErrSessionNotFound indica que no existe una sesion con ese id para ese usuario.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository define la persistencia de conversaciones.
// Put es un upsert del registro completo y debe ser atomico respecto de otros Put sobre el mismo id.
type SessionRepository interface {
	Get(ctx context.Context, sessionID, userID string) (domain.Session, error)
	Put(ctx context.Context, session domain.Session) error
	ListByUser(ctx context.Context, userID string) ([]domain.Session, error)
}

type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

func (r *PgSessionRepository) Get(ctx context.Context, sessionID, userID string) (domain.Session, error) {
	const query = `
		SELECT id, user_id, messages, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1 AND user_id = $2
	`
	session, err := scanSession(r.pool.QueryRow(ctx, query, sessionID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, ErrSessionNotFound
	}
	return session, err
}

// Put inserta o reemplaza la sesion. El WHERE evita que un id ajeno sobrescriba la sesion de otro usuario.
func (r *PgSessionRepository) Put(ctx context.Context, session domain.Session) error {
	const query = `
		INSERT INTO chat_sessions (id, user_id, messages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET messages = EXCLUDED.messages, updated_at = EXCLUDED.updated_at
		WHERE chat_sessions.user_id = EXCLUDED.user_id
	`
	messages, err := json.Marshal(nonNilMessages(session.Messages))
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		messages,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s owned by another user", session.ID)
	}
	return nil
}

func (r *PgSessionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	const query = `
		SELECT id, user_id, messages, created_at, updated_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (domain.Session, error) {
	var (
		session  domain.Session
		messages []byte
	)
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&messages,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return domain.Session{}, err
	}
	if err := json.Unmarshal(messages, &session.Messages); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal messages: %w", err)
	}
	return session, nil
}

func nonNilMessages(messages []domain.Message) []domain.Message {
	if messages == nil {
		return []domain.Message{}
	}
	return messages
}
