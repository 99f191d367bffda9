package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionLockTimeout = errors.New("session lock timeout")

// SessionLocker serializa el read-modify-write de una misma sesion.
// unlock debe llamarse exactamente una vez.
type SessionLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type memoryLockEntry struct {
	sem  chan struct{}
	refs int
}

type memorySessionLocker struct {
	mu    sync.Mutex
	locks map[string]*memoryLockEntry
}

// NewMemorySessionLocker crea un lock por clave dentro del proceso.
// Las entradas se liberan cuando nadie las espera.
func NewMemorySessionLocker() SessionLocker {
	return &memorySessionLocker{
		locks: make(map[string]*memoryLockEntry),
	}
}

func (l *memorySessionLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &memoryLockEntry{sem: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-entry.sem
				l.release(key, entry)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, entry)
		return nil, ctx.Err()
	}
}

func (l *memorySessionLocker) release(key string, entry *memoryLockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
}

const redisUnlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

type redisLockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisSessionLocker struct {
	client redisLockClient
	ttl    time.Duration
	retry  time.Duration
	prefix string
}

// NewRedisSessionLocker coordina varias replicas de la API sobre el mismo store.
// El lock expira solo tras ttl si el dueño muere sin liberarlo.
func NewRedisSessionLocker(client *redis.Client, ttl time.Duration) SessionLocker {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &redisSessionLocker{
		client: client,
		ttl:    ttl,
		retry:  25 * time.Millisecond,
		prefix: "chat:lock:",
	}
}

func (l *redisSessionLocker) Lock(ctx context.Context, key string) (func(), error) {
	key = l.prefix + strings.TrimSpace(key)
	token := uuid.NewString()
	deadline := time.Now().Add(l.ttl)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() {
					unlockCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
					defer cancel()
					_ = l.client.Eval(unlockCtx, redisUnlockScript, []string{key}, token).Err()
				})
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrSessionLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
