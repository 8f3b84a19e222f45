package auth

import "sync"

// SessionEventKind distinguishes sign-in from sign-out notifications.
type SessionEventKind int

const (
	SignedIn SessionEventKind = iota
	SignedOut
)

// SessionEvent is published whenever the signed-in state changes.
type SessionEvent struct {
	Kind      SessionEventKind
	Principal Principal
}

// SessionEvents is an observable session state. Subscribers are called
// synchronously, outside the internal lock, in no particular order.
type SessionEvents struct {
	mu   sync.Mutex
	next int
	subs map[int]func(SessionEvent)
}

// NewSessionEvents creates a SessionEvents with no subscribers.
func NewSessionEvents() *SessionEvents {
	return &SessionEvents{subs: make(map[int]func(SessionEvent))}
}

// Subscribe registers fn and returns a function that removes it.
func (e *SessionEvents) Subscribe(fn func(SessionEvent)) (unsubscribe func()) {
	e.mu.Lock()
	id := e.next
	e.next++
	e.subs[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

// Publish notifies every current subscriber.
func (e *SessionEvents) Publish(ev SessionEvent) {
	e.mu.Lock()
	fns := make([]func(SessionEvent), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
