package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"techmart-assistant/internal/domain"
)

// Layout de ancho fijo para que ORDER BY updated_at ordene cronologicamente.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteSessionRepository persiste sesiones en un archivo local (despliegues de un solo nodo).
type SQLiteSessionRepository struct {
	db *sql.DB
}

func NewSQLiteSessionRepository(path string) (*SQLiteSessionRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	repo := &SQLiteSessionRepository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repo, nil
}

func (r *SQLiteSessionRepository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			messages TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_sessions_user ON chat_sessions(user_id, updated_at)`,
	}
	for _, m := range migrations {
		if _, err := r.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

func (r *SQLiteSessionRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteSessionRepository) Get(ctx context.Context, sessionID, userID string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, messages, created_at, updated_at FROM chat_sessions WHERE id = ? AND user_id = ?`,
		sessionID, userID)
	session, err := scanSQLiteSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, ErrSessionNotFound
	}
	return session, err
}

func (r *SQLiteSessionRepository) Put(ctx context.Context, session domain.Session) error {
	messages, err := json.Marshal(nonNilMessages(session.Messages))
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, user_id, messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET messages = excluded.messages, updated_at = excluded.updated_at
		WHERE chat_sessions.user_id = excluded.user_id`,
		session.ID, session.UserID, string(messages),
		session.CreatedAt.UTC().Format(sqliteTimeLayout),
		session.UpdatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s owned by another user", session.ID)
	}
	return nil
}

func (r *SQLiteSessionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, messages, created_at, updated_at FROM chat_sessions WHERE user_id = ? ORDER BY updated_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSQLiteSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteSession(row sqlScanner) (domain.Session, error) {
	var (
		session              domain.Session
		messages             string
		createdAt, updatedAt string
	)
	if err := row.Scan(&session.ID, &session.UserID, &messages, &createdAt, &updatedAt); err != nil {
		return domain.Session{}, err
	}
	if err := json.Unmarshal([]byte(messages), &session.Messages); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal messages: %w", err)
	}
	var err error
	if session.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return domain.Session{}, fmt.Errorf("parse created_at: %w", err)
	}
	if session.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt); err != nil {
		return domain.Session{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return session, nil
}
