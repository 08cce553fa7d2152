package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// dedupGuard remembers which exact occurrences were already sent during this
// process lifetime. It is a best-effort, non-durable optimization; the
// durable guard against double-completion is the store's completed_at filter.
type dedupGuard struct {
	mu   sync.Mutex
	sent map[string]time.Time
	ttl  time.Duration
}

func newDedupGuard(ttl time.Duration) *dedupGuard {
	return &dedupGuard{
		sent: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// occurrenceKey identifies one firing of one reminder record.
func occurrenceKey(id uuid.UUID, triggerTime time.Time) string {
	return fmt.Sprintf("%s_%s", id, triggerTime.UTC().Format(time.RFC3339))
}

func (g *dedupGuard) contains(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.sent[key]
	return ok
}

func (g *dedupGuard) add(key string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent[key] = now
}

// prune drops entries older than the guard's ttl to bound memory.
func (g *dedupGuard) prune(now time.Time) {
	cutoff := now.Add(-g.ttl)
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, at := range g.sent {
		if at.Before(cutoff) {
			delete(g.sent, key)
		}
	}
}

func (g *dedupGuard) len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}
