package usecase

import "sync"

// ProximitySignal is an edge-triggered notification that the scroll sentinel
// is near the viewport. Subscribe returns a function that releases the subscription.
type ProximitySignal interface {
	Subscribe(fn func()) (unsubscribe func())
}

// Sentinel is a ProximitySignal fired explicitly by the presentation layer.
type Sentinel struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

// NewSentinel creates a Sentinel with no subscribers.
func NewSentinel() *Sentinel {
	return &Sentinel{subs: make(map[int]func())}
}

// Subscribe registers fn to run on every Fire.
func (s *Sentinel) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Fire notifies every current subscriber.
func (s *Sentinel) Fire() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Subscribers returns the number of live subscriptions.
func (s *Sentinel) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
