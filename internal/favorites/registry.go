package favorites

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/scholardesk/internal/auth"
	"github.com/MrSnakeDoc/scholardesk/internal/logger"
)

// DefaultIdleTTL is how long an unused controller is kept.
const DefaultIdleTTL = 30 * time.Minute

type entry struct {
	controller *Controller
	lastUsed   time.Time
	dropped    bool // signed out while writes were in flight
}

// Registry hands out one Controller per user, so every view of a user
// shares the same favorite set. Idle controllers are evicted.
type Registry struct {
	store        Store
	logger       logger.Logger
	idleTTL      time.Duration
	writeTimeout time.Duration
	now          func() time.Time

	mu          sync.Mutex
	controllers map[string]*entry
	auth        *auth.Provider // set by Attach

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry(store Store, log logger.Logger, idleTTL, writeTimeout time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{
		store:        store,
		logger:       log,
		idleTTL:      idleTTL,
		writeTimeout: writeTimeout,
		now:          time.Now,
		controllers:  make(map[string]*entry),
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// For returns the controller of userID, creating it on first use.
func (r *Registry) For(userID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.controllers[userID]
	if !ok {
		e = &entry{controller: NewController(userID, r.store, r.logger, r.writeTimeout)}
		r.controllers[userID] = e
		r.logger.Debug("favorites controller created", logger.String("user_id", userID))
	}
	e.dropped = false
	e.lastUsed = r.now()
	return e.controller
}

// Drop forgets userID's controller and reports whether it is gone.
//
// A controller with writes in flight is only marked: it keeps ordering the
// user's writes and Wait still covers it. The next Sweep evicts it once
// idle, and For revives it if the user comes back first.
func (r *Registry) Drop(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.controllers[userID]
	if !ok {
		return true
	}
	if e.controller.Busy() {
		e.dropped = true
		return false
	}
	delete(r.controllers, userID)
	return true
}

// Len returns the number of live controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Sweep evicts controllers with nothing in flight that are either idle for
// longer than the TTL or dropped on sign-out, and returns how many went.
// Users of an attached provider unseen for the TTL are expired too.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	evicted := 0
	for id, e := range r.controllers {
		if e.controller.Busy() || (!e.dropped && now.Sub(e.lastUsed) <= r.idleTTL) {
			continue
		}
		delete(r.controllers, id)
		evicted++
	}
	p := r.auth
	r.mu.Unlock()

	if evicted > 0 {
		r.logger.Debug("evicted idle favorites controllers", logger.Int("count", evicted))
	}
	if p != nil {
		if n := p.Expire(now.Add(-r.idleTTL)); n > 0 {
			r.logger.Debug("expired idle sessions", logger.Int("count", n))
		}
	}
	return evicted
}

// Attach drops a user's controller when they sign out, and lets Sweep
// expire p's idle users.
func (r *Registry) Attach(p *auth.Provider) (unsubscribe func()) {
	r.mu.Lock()
	r.auth = p
	r.mu.Unlock()

	unsub := p.Subscribe(func(ev auth.Event) {
		if ev.Kind == auth.EventSignedOut {
			gone := r.Drop(ev.User.ID)
			r.logger.Info("favorites controller dropped on sign-out",
				logger.String("user_id", ev.User.ID),
				logger.Bool("deferred", !gone))
		}
	})
	return func() {
		unsub()
		r.mu.Lock()
		if r.auth == p {
			r.auth = nil
		}
		r.mu.Unlock()
	}
}

// Start runs the periodic sweep until Stop or ctx is done.
func (r *Registry) Start(ctx context.Context) {
	ticker := time.NewTicker(r.idleTTL / 2)
	go func() {
		defer close(r.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep()
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the sweep loop and waits for it to exit. It must only be
// called after Start.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.done
}

// Wait blocks until every live controller has settled its writes.
func (r *Registry) Wait() {
	r.mu.Lock()
	controllers := make([]*Controller, 0, len(r.controllers))
	for _, e := range r.controllers {
		controllers = append(controllers, e.controller)
	}
	r.mu.Unlock()

	for _, c := range controllers {
		c.Wait()
	}
}
