package service

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MessageRateLimiter limita cuantos mensajes de chat puede enviar un usuario por ventana.
// Un request rechazado no consume cupo.
type MessageRateLimiter interface {
	Allow(ctx context.Context, userID string) bool
}

type memoryRateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	now       func() time.Time
	hits      map[string][]time.Time
	lastSweep time.Time
}

// NewMemoryRateLimiter crea un rate limiter de ventana deslizante en memoria.
func NewMemoryRateLimiter(window time.Duration, max int) MessageRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryRateLimiter{
		window: window,
		max:    max,
		now:    func() time.Time { return time.Now().UTC() },
		hits:   make(map[string][]time.Time),
	}
}

func (l *memoryRateLimiter) Allow(ctx context.Context, userID string) bool {
	userID = strings.TrimSpace(userID)
	if userID == "" || ctx.Err() != nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) >= l.window {
		for id := range l.hits {
			l.prune(id, now)
		}
		l.lastSweep = now
	}
	kept := l.prune(userID, now)
	if len(kept) >= l.max {
		return false
	}
	l.hits[userID] = append(kept, now)
	return true
}

// prune descarta los hits fuera de la ventana y borra la clave si no queda ninguno.
func (l *memoryRateLimiter) prune(userID string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	entries := l.hits[userID]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.hits, userID)
		return nil
	}
	l.hits[userID] = kept
	return kept
}
