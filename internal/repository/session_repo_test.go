package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"techmart-assistant/internal/domain"
)

func sampleSession(id, userID string, updated time.Time) domain.Session {
	created := updated.Add(-time.Minute)
	return domain.Session{
		ID:     id,
		UserID: userID,
		Messages: []domain.Message{
			{ID: id + "-m1", Role: domain.RoleUser, Content: "laptop", Timestamp: updated},
			{
				ID:        id + "-m2",
				Role:      domain.RoleAssistant,
				Content:   "Here are some great laptop options:",
				Timestamp: updated,
				Products: []domain.Product{
					{ID: "1", Name: "MacBook Pro", Category: "laptops", Price: 2499.5, Stock: 3, Rating: 4.8, Features: []string{"M3"}},
				},
			},
		},
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

// exerciseSessionRepository corre el mismo contrato contra cualquier backend.
func exerciseSessionRepository(t *testing.T, repo SessionRepository) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 10, 0, 0, 123456789, time.UTC)

	if _, err := repo.Get(ctx, "missing", "u1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	s1 := sampleSession("s1", "u1", base)
	if err := repo.Put(ctx, s1); err != nil {
		t.Fatalf("put s1: %v", err)
	}
	got, err := repo.Get(ctx, "s1", "u1")
	if err != nil {
		t.Fatalf("get s1: %v", err)
	}
	if got.ID != "s1" || got.UserID != "u1" || len(got.Messages) != 2 {
		t.Fatalf("unexpected session %+v", got)
	}
	if !got.UpdatedAt.Equal(s1.UpdatedAt) || !got.CreatedAt.Equal(s1.CreatedAt) {
		t.Fatalf("timestamps not preserved: %v %v", got.CreatedAt, got.UpdatedAt)
	}
	p := got.Messages[1].Products
	if len(p) != 1 || p[0].Name != "MacBook Pro" || p[0].Price != 2499.5 || len(p[0].Features) != 1 {
		t.Fatalf("product snapshot not preserved: %+v", p)
	}

	if _, err := repo.Get(ctx, "s1", "u2"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for other user, got %v", err)
	}
	if err := repo.Put(ctx, sampleSession("s1", "u2", base)); err == nil {
		t.Fatalf("expected put of a foreign session id to fail")
	}

	s1.Messages = append(s1.Messages, domain.Message{ID: "s1-m3", Role: domain.RoleUser, Content: "more", Timestamp: base.Add(time.Hour)})
	s1.UpdatedAt = base.Add(time.Hour)
	if err := repo.Put(ctx, s1); err != nil {
		t.Fatalf("update s1: %v", err)
	}
	if err := repo.Put(ctx, sampleSession("s2", "u1", base.Add(30*time.Minute))); err != nil {
		t.Fatalf("put s2: %v", err)
	}
	if err := repo.Put(ctx, sampleSession("s3", "u2", base.Add(2*time.Hour))); err != nil {
		t.Fatalf("put s3: %v", err)
	}

	list, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "s1" || list[1].ID != "s2" {
		t.Fatalf("expected [s1 s2] by updatedAt desc, got %+v", list)
	}
	if len(list[0].Messages) != 3 {
		t.Fatalf("expected updated messages, got %d", len(list[0].Messages))
	}

	empty, err := repo.ListByUser(ctx, "nobody")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %v %v", empty, err)
	}
}

func TestMemorySessionRepository(t *testing.T) {
	exerciseSessionRepository(t, NewMemorySessionRepository())
}

func TestMemorySessionRepository_IsolatesCallers(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository()
	s := sampleSession("s1", "u1", time.Now().UTC())
	if err := repo.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Messages[0].Content = "mutated"

	got, _ := repo.Get(ctx, "s1", "u1")
	if got.Messages[0].Content == "mutated" {
		t.Fatalf("stored session must not alias the caller's slice")
	}
	got.Messages[1].Products[0].Name = "mutated"
	got.Messages[1].Products[0].Features[0] = "mutated"
	again, _ := repo.Get(ctx, "s1", "u1")
	if again.Messages[1].Products[0].Name == "mutated" {
		t.Fatalf("returned session must not alias stored products")
	}
	if again.Messages[1].Products[0].Features[0] != "M3" {
		t.Fatalf("returned session must not alias stored features, got %q", again.Messages[1].Products[0].Features[0])
	}

	s.Messages[1].Products[0].Features[0] = "caller-side"
	again, _ = repo.Get(ctx, "s1", "u1")
	if again.Messages[1].Products[0].Features[0] != "M3" {
		t.Fatalf("stored session must not alias the caller's features")
	}
}

func TestSQLiteSessionRepository(t *testing.T) {
	repo, err := NewSQLiteSessionRepository(filepath.Join(t.TempDir(), "nested", "sessions.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer repo.Close()
	exerciseSessionRepository(t, repo)
}

// fakeRedisSessionClient reproduce en memoria la semantica del script de Put, HMGET y ZREVRANGE.
type fakeRedisSessionClient struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
	zsets  map[string]map[string]float64
	err    error
}

func newFakeRedisSessionClient() *fakeRedisSessionClient {
	return &fakeRedisSessionClient{
		hashes: make(map[string]map[string]string),
		zsets:  make(map[string]map[string]float64),
	}
}

func (f *fakeRedisSessionClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	if script != redisSessionPutScript {
		cmd.SetErr(errors.New("unexpected script"))
		return cmd
	}
	owner := args[0].(string)
	h, ok := f.hashes[keys[0]]
	if ok && h["user_id"] != owner {
		cmd.SetVal(int64(0))
		return cmd
	}
	f.hashes[keys[0]] = map[string]string{"user_id": owner, "data": args[1].(string)}
	z, ok := f.zsets[keys[1]]
	if !ok {
		z = make(map[string]float64)
		f.zsets[keys[1]] = z
	}
	z[args[3].(string)] = float64(args[2].(int64))
	cmd.SetVal(int64(1))
	return cmd
}

func (f *fakeRedisSessionClient) HMGet(ctx context.Context, key string, fields ...string) *redis.SliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewSliceCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	vals := make([]interface{}, len(fields))
	if h, ok := f.hashes[key]; ok {
		for i, field := range fields {
			if v, ok := h[field]; ok {
				vals[i] = v
			}
		}
	}
	cmd.SetVal(vals)
	return cmd
}

func (f *fakeRedisSessionClient) ZRevRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStringSliceCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	members := make([]string, 0, len(f.zsets[key]))
	for m := range f.zsets[key] {
		members = append(members, m)
	}
	z := f.zsets[key]
	sort.Slice(members, func(i, j int) bool { return z[members[i]] > z[members[j]] })
	cmd.SetVal(members)
	return cmd
}

func TestRedisSessionRepository(t *testing.T) {
	client := newFakeRedisSessionClient()
	repo := &RedisSessionRepository{client: client, prefix: "chat:", timeout: time.Second}
	exerciseSessionRepository(t, repo)

	if _, ok := client.hashes["chat:session:s1"]; !ok {
		t.Fatalf("expected session hash key, got %v", keysOf(client.hashes))
	}
	if _, ok := client.zsets["chat:user:u1:sessions"]; !ok {
		t.Fatalf("expected per-user sorted set")
	}
}

func TestRedisSessionRepository_Errors(t *testing.T) {
	client := newFakeRedisSessionClient()
	client.err = errors.New("redis down")
	repo := &RedisSessionRepository{client: client, prefix: "chat:", timeout: time.Second}
	ctx := context.Background()

	if _, err := repo.Get(ctx, "s1", "u1"); err == nil || errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if err := repo.Put(ctx, sampleSession("s1", "u1", time.Now())); err == nil {
		t.Fatalf("expected put error")
	}
	if _, err := repo.ListByUser(ctx, "u1"); err == nil {
		t.Fatalf("expected list error")
	}
}

func keysOf(m map[string]map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestSQLiteTimeLayoutSortsLexically(t *testing.T) {
	a := time.Date(2025, 1, 1, 0, 0, 0, 5, time.UTC).Format(sqliteTimeLayout)
	b := time.Date(2025, 1, 1, 0, 0, 0, 40, time.UTC).Format(sqliteTimeLayout)
	if !(a < b) {
		t.Fatalf("expected %s < %s", a, b)
	}
}
