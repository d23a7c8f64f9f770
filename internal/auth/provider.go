package auth

import (
	"sync"
	"time"
)

// EventKind distinguishes auth-state changes.
type EventKind int

const (
	EventSignedIn EventKind = iota
	EventSignedOut
)

func (k EventKind) String() string {
	if k == EventSignedOut {
		return "signed_out"
	}
	return "signed_in"
}

// Event is published on every auth-state change.
type Event struct {
	Kind EventKind
	User User
}

// Provider is the process-wide auth-state hub. Subscribers are called
// synchronously, in subscription order, outside the provider's lock.
type Provider struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
	order  []int
	active map[string]time.Time // last seen
	now    func() time.Time
}

// NewProvider creates an empty hub.
func NewProvider() *Provider {
	return &Provider{
		subs:   make(map[int]func(Event)),
		active: make(map[string]time.Time),
		now:    time.Now,
	}
}

// WithClock replaces the clock used to stamp sightings.
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
	return p
}

// Subscribe registers fn and returns a function removing it.
func (p *Provider) Subscribe(fn func(Event)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.order = append(p.order, id)
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs, id)
			for i, v := range p.order {
				if v == id {
					p.order = append(p.order[:i], p.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers ev to every subscriber.
func (p *Provider) Publish(ev Event) {
	p.mu.Lock()
	fns := make([]func(Event), 0, len(p.order))
	for _, id := range p.order {
		fns = append(fns, p.subs[id])
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Observe marks u as signed in, publishing EventSignedIn the first time.
func (p *Provider) Observe(u User) {
	p.mu.Lock()
	_, seen := p.active[u.ID]
	p.active[u.ID] = p.now()
	p.mu.Unlock()

	if !seen {
		p.Publish(Event{Kind: EventSignedIn, User: u})
	}
}

// SignOut forgets u and publishes EventSignedOut.
func (p *Provider) SignOut(u User) {
	p.mu.Lock()
	delete(p.active, u.ID)
	p.mu.Unlock()

	p.Publish(Event{Kind: EventSignedOut, User: u})
}

// Expire forgets users not seen since before and returns how many went.
// No event is published; a later Observe signs them in again.
func (p *Provider) Expire(before time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for id, seen := range p.active {
		if seen.Before(before) {
			delete(p.active, id)
			n++
		}
	}
	return n
}

// Len returns the number of users currently tracked.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// Active reports whether the user has been seen since their last sign-out.
func (p *Provider) Active(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.active[userID]
	return ok
}
