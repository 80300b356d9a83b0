package issuer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether a client may register another key.
type Limiter interface {
	Allow(ctx context.Context, clientKey string) (bool, error)
}

type noLimit struct{}

func (noLimit) Allow(context.Context, string) (bool, error) { return true, nil }

type clientLimiter struct {
	limiter    *rate.Limiter
	lastActive time.Time
}

// MemoryLimiter keeps a token bucket per client refilled at limit per window.
type MemoryLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	every    rate.Limit
	burst    int
	maxIdle  time.Duration
	lastScan time.Time
	now      func() time.Time
}

// NewMemoryLimiter allows limit requests per window per client, all of them
// usable in a burst.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &MemoryLimiter{
		clients: make(map[string]*clientLimiter),
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
		maxIdle: 2 * window,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, clientKey string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictIdle(now)

	cl, ok := l.clients[clientKey]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.every, l.burst)}
		l.clients[clientKey] = cl
	}
	cl.lastActive = now
	return cl.limiter.AllowN(now, 1), nil
}

// evictIdle drops clients not seen for maxIdle. Runs at most once per maxIdle.
func (l *MemoryLimiter) evictIdle(now time.Time) {
	if now.Sub(l.lastScan) < l.maxIdle {
		return
	}
	l.lastScan = now
	for key, cl := range l.clients {
		if now.Sub(cl.lastActive) > l.maxIdle {
			delete(l.clients, key)
		}
	}
}
