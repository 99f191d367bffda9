package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"techmart-assistant/internal/domain"
)

// El upsert y el indice por usuario se aplican en un solo script para que Put sea atomico.
const redisSessionPutScript = `
local owner = redis.call("HGET", KEYS[1], "user_id")
if owner and owner ~= ARGV[1] then
  return 0
end
redis.call("HSET", KEYS[1], "user_id", ARGV[1], "data", ARGV[2])
redis.call("ZADD", KEYS[2], ARGV[3], ARGV[4])
return 1
`

type redisSessionClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	HMGet(ctx context.Context, key string, fields ...string) *redis.SliceCmd
	ZRevRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// RedisSessionRepository guarda cada sesion como hash (user_id, data) y un sorted set por usuario.
type RedisSessionRepository struct {
	client  redisSessionClient
	prefix  string
	timeout time.Duration
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{
		client:  client,
		prefix:  "chat:",
		timeout: 2 * time.Second,
	}
}

func (r *RedisSessionRepository) sessionKey(id string) string {
	return r.prefix + "session:" + id
}

func (r *RedisSessionRepository) userKey(userID string) string {
	return r.prefix + "user:" + userID + ":sessions"
}

func (r *RedisSessionRepository) Get(ctx context.Context, sessionID, userID string) (domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.load(ctx, sessionID, userID)
}

func (r *RedisSessionRepository) Put(ctx context.Context, session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ok, err := r.client.Eval(ctx, redisSessionPutScript,
		[]string{r.sessionKey(session.ID), r.userKey(session.UserID)},
		session.UserID, string(data), session.UpdatedAt.UnixNano(), session.ID,
	).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return fmt.Errorf("session %s owned by another user", session.ID)
	}
	return nil
}

func (r *RedisSessionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ids, err := r.client.ZRevRange(ctx, r.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	sessions := make([]domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := r.load(ctx, id, userID)
		if errors.Is(err, ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (r *RedisSessionRepository) load(ctx context.Context, sessionID, userID string) (domain.Session, error) {
	vals, err := r.client.HMGet(ctx, r.sessionKey(sessionID), "user_id", "data").Result()
	if err != nil {
		return domain.Session{}, err
	}
	if len(vals) != 2 {
		return domain.Session{}, ErrSessionNotFound
	}
	owner, _ := vals[0].(string)
	data, _ := vals[1].(string)
	if owner == "" || owner != userID || data == "" {
		return domain.Session{}, ErrSessionNotFound
	}
	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, nil
}
