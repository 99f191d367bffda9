package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"techmart-assistant/internal/domain"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ChatService orquesta un turno de conversacion: resuelve la sesion, clasifica el mensaje,
// compone la respuesta y persiste el intercambio bajo el lock de la sesion.
type ChatService struct {
	logger   *zap.Logger
	catalog  CatalogSource
	router   *IntentRouter
	composer *ResponseComposer
	sessions *SessionManager
	locker   SessionLocker
}

func NewChatService(
	logger *zap.Logger,
	catalog CatalogSource,
	router *IntentRouter,
	composer *ResponseComposer,
	sessions *SessionManager,
	locker SessionLocker,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = NewMemorySessionLocker()
	}
	return &ChatService{
		logger:   logger,
		catalog:  catalog,
		router:   router,
		composer: composer,
		sessions: sessions,
		locker:   locker,
	}
}

// HandleMessage procesa un mensaje del usuario y devuelve la respuesta y el id de sesion.
// Si falla la persistencia, la respuesta se devuelve igual junto con un error ErrStoreUnavailable.
func (s *ChatService) HandleMessage(ctx context.Context, userID, sessionID, utterance string) (domain.Message, string, error) {
	userID = strings.TrimSpace(userID)
	sessionID = strings.TrimSpace(sessionID)
	if userID == "" || strings.TrimSpace(utterance) == "" {
		return domain.Message{}, "", ErrInvalidInput
	}

	if sessionID != "" {
		unlock, err := s.locker.Lock(ctx, sessionID)
		if err != nil {
			return domain.Message{}, "", fmt.Errorf("%w: lock session: %w", ErrStoreUnavailable, err)
		}
		defer unlock()
	}

	session, err := s.sessions.Resolve(ctx, userID, sessionID)
	if err != nil {
		return domain.Message{}, "", err
	}

	reply, rule := s.router.Route(s.catalog.Current(), utterance)
	msg := s.composer.Compose(reply)

	saved, err := s.sessions.AppendExchange(ctx, &session, utterance, msg)
	if err != nil {
		s.logger.Error("persist chat exchange failed",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("session_id", session.ID),
		)
		return saved, session.ID, err
	}

	s.logger.Info("chat message handled",
		zap.String("user_id", userID),
		zap.String("session_id", session.ID),
		zap.String("rule", rule),
		zap.Int("products", len(saved.Products)),
	)
	return saved, session.ID, nil
}

func (s *ChatService) ListSessions(ctx context.Context, userID string) ([]domain.SessionSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.sessions.ListSessions(ctx, userID)
}

func (s *ChatService) GetSession(ctx context.Context, userID, sessionID string) (domain.Session, error) {
	userID = strings.TrimSpace(userID)
	sessionID = strings.TrimSpace(sessionID)
	if userID == "" || sessionID == "" {
		return domain.Session{}, ErrNotFound
	}
	return s.sessions.GetSession(ctx, userID, sessionID)
}

// Catalog expone el snapshot vigente para los endpoints de productos.
func (s *ChatService) Catalog() *CatalogIndex {
	return s.catalog.Current()
}
