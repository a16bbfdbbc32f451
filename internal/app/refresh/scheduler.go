// Package refresh owns the dashboard's periodic data pulls: one ticker per
// registered query key, at most one in-flight request per key, latest
// snapshot cached, updates fanned out to subscribers. It replaces the kind of
// render-triggered refetch timer a UI framework would own.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/solarsentinel/sentinel-api/internal/observability"
)

// FetchFunc produces the fresh payload for one query key.
type FetchFunc func(ctx context.Context) (any, error)

// Snapshot is the latest successful result for a query key.
type Snapshot struct {
	Key       string    `json:"key"`
	Data      any       `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}

const snapshotCacheSize = 64

type Scheduler struct {
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time

	group singleflight.Group
	cache *lru.Cache[string, Snapshot]

	mu      sync.Mutex
	queries map[string]FetchFunc
	subs    map[chan Snapshot]struct{}
	cancel  context.CancelFunc
	started bool
	closed  bool

	wg sync.WaitGroup
}

func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	// size is fixed; lru.New only errors on a non-positive size
	cache, _ := lru.New[string, Snapshot](snapshotCacheSize)
	return &Scheduler{
		interval: interval,
		log:      observability.ForComponent("refresh"),
		now:      time.Now,
		cache:    cache,
		queries:  make(map[string]FetchFunc),
		subs:     make(map[chan Snapshot]struct{}),
	}
}

// Register adds a query key. Must be called before Start.
func (s *Scheduler) Register(key string, fn FetchFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries[key] = fn
}

// Start launches one refresh loop per registered key. Each loop fetches
// immediately, then on every interval tick, until ctx is cancelled or Close
// is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	keys := make([]string, 0, len(s.queries))
	for key := range s.queries {
		keys = append(keys, key)
	}
	s.mu.Unlock()

	for _, key := range keys {
		s.wg.Add(1)
		go s.loop(ctx, key)
	}
}

func (s *Scheduler) loop(ctx context.Context, key string) {
	defer s.wg.Done()

	if _, err := s.Refresh(ctx, key); err != nil {
		s.log.Warn("initial refresh failed", "key", key, "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx, key); err != nil {
				s.log.Warn("refresh failed", "key", key, "error", err)
			}
		}
	}
}

// Refresh fetches one key now. Concurrent calls for the same key share a
// single upstream request. A result landing after Close is discarded without
// touching the cache or subscribers.
func (s *Scheduler) Refresh(ctx context.Context, key string) (Snapshot, error) {
	s.mu.Lock()
	fn, ok := s.queries[key]
	s.mu.Unlock()
	if !ok {
		return Snapshot{}, fmt.Errorf("unknown query key %q", key)
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		data, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return Snapshot{Key: key, Data: data, FetchedAt: s.now()}, nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	snap := v.(Snapshot)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, context.Canceled
	}
	s.cache.Add(key, snap)
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// slow subscribers drop updates, they never block a refresh
		}
	}
	s.mu.Unlock()

	return snap, nil
}

// Latest returns the most recent snapshot for a key, if any refresh has
// completed yet.
func (s *Scheduler) Latest(key string) (Snapshot, bool) {
	return s.cache.Get(key)
}

// Subscribe registers a snapshot listener. The returned cancel func must be
// called to release it.
func (s *Scheduler) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close stops all loops and detaches subscribers. Safe to call once.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancel
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
