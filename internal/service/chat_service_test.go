package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"techmart-assistant/internal/domain"
	"techmart-assistant/internal/repository"
)

func newTestChatService(store repository.SessionRepository, catalog *CatalogIndex) *ChatService {
	return NewChatService(
		zap.NewNop(),
		StaticCatalog(catalog),
		NewIntentRouter(seededRandom()),
		NewResponseComposer(),
		NewSessionManager(store),
		NewMemorySessionLocker(),
	)
}

func TestChatServiceHandleMessage_Laptop(t *testing.T) {
	ctx := context.Background()
	svc := newTestChatService(repository.NewMemorySessionRepository(), sampleIndex())

	msg, sessionID, err := svc.HandleMessage(ctx, "u1", "", "laptop")
	if err != nil {
		t.Fatalf("handle message: %v", err)
	}
	if sessionID == "" {
		t.Fatalf("expected new session id")
	}
	if msg.Role != domain.RoleAssistant || msg.Content != textLaptop {
		t.Fatalf("unexpected reply %+v", msg)
	}
	if len(msg.Products) == 0 || len(msg.Products) > 3 {
		t.Fatalf("expected 1..3 products, got %d", len(msg.Products))
	}
	for _, p := range msg.Products {
		if p.Category != "laptops" {
			t.Fatalf("expected laptops only, got %s", p.Category)
		}
	}

	session, err := svc.GetSession(ctx, "u1", sessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(session.Messages) != 2 || session.Messages[0].Content != "laptop" || session.Messages[1].ID != msg.ID {
		t.Fatalf("unexpected stored session %+v", session)
	}
}

func TestChatServiceHandleMessage_Gibberish(t *testing.T) {
	svc := newTestChatService(repository.NewMemorySessionRepository(), sampleIndex())

	msg, _, err := svc.HandleMessage(context.Background(), "u1", "", "gibberish")
	if err != nil {
		t.Fatalf("handle message: %v", err)
	}
	if msg.Content != textTerminal {
		t.Fatalf("expected terminal text, got %q", msg.Content)
	}
	if len(msg.Products) != 3 {
		t.Fatalf("expected 3 sampled products, got %d", len(msg.Products))
	}
}

func TestChatServiceHandleMessage_ContinuesSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestChatService(repository.NewMemorySessionRepository(), sampleIndex())

	_, sessionID, err := svc.HandleMessage(ctx, "u1", "", "hello")
	if err != nil {
		t.Fatalf("first message: %v", err)
	}
	_, again, err := svc.HandleMessage(ctx, "u1", sessionID, "headphone")
	if err != nil {
		t.Fatalf("second message: %v", err)
	}
	if again != sessionID {
		t.Fatalf("expected same session, got %s", again)
	}

	_, foreign, err := svc.HandleMessage(ctx, "u2", sessionID, "hello")
	if err != nil {
		t.Fatalf("foreign message: %v", err)
	}
	if foreign == sessionID {
		t.Fatalf("another user must not write into the session")
	}
	session, _ := svc.GetSession(ctx, "u1", sessionID)
	if len(session.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(session.Messages))
	}
}

func TestChatServiceHandleMessage_InvalidInput(t *testing.T) {
	svc := newTestChatService(repository.NewMemorySessionRepository(), sampleIndex())

	if _, _, err := svc.HandleMessage(context.Background(), "", "", "hello"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing user, got %v", err)
	}
	if _, _, err := svc.HandleMessage(context.Background(), "u1", "", "  \n"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank message, got %v", err)
	}
}

func TestChatServiceHandleMessage_StoreFailure(t *testing.T) {
	store := newFlakyStore()
	store.putErr = errors.New("disk full")
	svc := newTestChatService(store, sampleIndex())

	msg, sessionID, err := svc.HandleMessage(context.Background(), "u1", "", "hello")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if msg.Content != textGreeting || sessionID == "" {
		t.Fatalf("expected reply despite store failure, got %+v %q", msg, sessionID)
	}
}

func TestChatServiceHandleMessage_EmptyCatalog(t *testing.T) {
	svc := newTestChatService(repository.NewMemorySessionRepository(), NewCatalogIndex(nil))

	msg, _, err := svc.HandleMessage(context.Background(), "u1", "", "show me a laptop")
	if err != nil {
		t.Fatalf("handle message: %v", err)
	}
	if msg.Content == "" || len(msg.Products) != 0 {
		t.Fatalf("expected text without products, got %+v", msg)
	}
}

func TestChatServiceHandleMessage_ConcurrentSameSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestChatService(repository.NewMemorySessionRepository(), sampleIndex())
	_, sessionID, err := svc.HandleMessage(ctx, "u1", "", "hello")
	if err != nil {
		t.Fatalf("first message: %v", err)
	}

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := svc.HandleMessage(ctx, "u1", sessionID, "laptop"); err != nil {
				t.Errorf("handle message: %v", err)
			}
		}()
	}
	wg.Wait()

	session, err := svc.GetSession(ctx, "u1", sessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(session.Messages) != 2+2*workers {
		t.Fatalf("lost updates: expected %d messages, got %d", 2+2*workers, len(session.Messages))
	}
}

func TestChatServiceListAndGetValidation(t *testing.T) {
	svc := newTestChatService(repository.NewMemorySessionRepository(), sampleIndex())

	if _, err := svc.ListSessions(context.Background(), " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.GetSession(context.Background(), "u1", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
