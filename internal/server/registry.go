package server

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/luminary/internal/journey"
)

// DefaultTrackerIdle is how long an unused tracker stays cached.
const DefaultTrackerIdle = 30 * time.Minute

// registry caches one tracker per journey so overlapping requests for the
// same learner and subject share state. Trackers idle for longer than idle
// are dropped while Run is active; the store keeps what matters.
type registry struct {
	store journey.Store
	log   *zap.Logger
	idle  time.Duration
	now   func() time.Time
	loads singleflight.Group

	mu       sync.Mutex
	trackers map[journey.Key]*cachedTracker
	// forgets counts forget calls, so a load that raced one is not cached.
	forgets uint64
}

type cachedTracker struct {
	tracker  *journey.Tracker
	lastUsed time.Time
}

func newRegistry(store journey.Store, idle time.Duration, log *zap.Logger) *registry {
	if idle <= 0 {
		idle = DefaultTrackerIdle
	}
	return &registry{
		store:    store,
		log:      log,
		idle:     idle,
		now:      time.Now,
		trackers: make(map[journey.Key]*cachedTracker),
	}
}

// get returns the tracker for key, restoring it from the store on first use.
// Store I/O happens outside the registry lock.
func (r *registry) get(ctx context.Context, key journey.Key) *journey.Tracker {
	if t := r.cached(key); t != nil {
		return t
	}

	v, _, _ := r.loads.Do(key.String(), func() (any, error) {
		if t := r.cached(key); t != nil {
			return t, nil
		}
		r.mu.Lock()
		forgets := r.forgets
		r.mu.Unlock()

		// The load must outlive the request that happened to trigger it.
		t := journey.NewTracker(context.WithoutCancel(ctx), r.store, key, journey.WithLogger(r.log))

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.forgets == forgets {
			r.trackers[key] = &cachedTracker{tracker: t, lastUsed: r.now()}
		}
		return t, nil
	})
	return v.(*journey.Tracker)
}

func (r *registry) cached(key journey.Key) *journey.Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.trackers[key]; ok {
		c.lastUsed = r.now()
		return c.tracker
	}
	return nil
}

// forget drops the cached tracker so the next get reloads from the store.
func (r *registry) forget(key journey.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.trackers, key)
	r.forgets++
}

// Run evicts idle trackers every half idle period until ctx ends.
func (r *registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				r.log.Debug("evicted idle journeys", zap.Int("count", n))
			}
		}
	}
}

func (r *registry) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	evicted := 0
	for key, c := range r.trackers {
		if now.Sub(c.lastUsed) > r.idle {
			delete(r.trackers, key)
			evicted++
		}
	}
	return evicted
}

func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trackers)
}
