package enquiryform

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultIdleTTL is how long an untouched flow is kept.
const DefaultIdleTTL = 30 * time.Minute

type entry struct {
	flow     *Flow
	lastSeen time.Time
}

// Registry holds one Flow per visitor and drops flows idle for longer than
// the TTL.
type Registry struct {
	newFlow func() *Flow
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	flows map[string]*entry

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRegistry creates a Registry and starts its cleanup loop. Call Stop to
// end it.
func NewRegistry(submitter Submitter, ttl time.Duration, opts ...Option) *Registry {
	r := newRegistry(submitter, ttl, opts...)
	go r.cleanupLoop(cleanupInterval(r.ttl))
	return r
}

func newRegistry(submitter Submitter, ttl time.Duration, opts ...Option) *Registry {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &Registry{
		newFlow: func() *Flow { return NewFlow(submitter, opts...) },
		ttl:     ttl,
		now:     time.Now,
		flows:   make(map[string]*entry),
		stop:    make(chan struct{}),
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if iv := ttl / 2; iv < 5*time.Minute {
		return iv
	}
	return 5 * time.Minute
}

// Get returns the visitor's flow, creating it on first use.
func (r *Registry) Get(visitorID string) *Flow {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.flows[visitorID]
	if !ok {
		e = &entry{flow: r.newFlow()}
		r.flows[visitorID] = e
	}
	e.lastSeen = r.now()
	return e.flow
}

func (r *Registry) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.evictIdle()
		}
	}
}

// evictIdle closes and removes flows not seen within the TTL.
func (r *Registry) evictIdle() int {
	cutoff := r.now().Add(-r.ttl)
	var idle []*Flow

	r.mu.Lock()
	for id, e := range r.flows {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, e.flow)
			delete(r.flows, id)
		}
	}
	r.mu.Unlock()

	for _, f := range idle {
		f.Close()
	}
	if len(idle) > 0 {
		slog.Debug("idle enquiry forms evicted", "count", len(idle))
	}
	return len(idle)
}

// Stop ends the cleanup loop and closes every flow.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
		r.mu.Lock()
		flows := r.flows
		r.flows = make(map[string]*entry)
		r.mu.Unlock()
		for _, e := range flows {
			e.flow.Close()
		}
	})
}
