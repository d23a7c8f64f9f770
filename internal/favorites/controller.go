package favorites

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/scholardesk/internal/logger"
)

// DefaultWriteTimeout bounds one reconciliation write.
const DefaultWriteTimeout = 5 * time.Second

// Store is the persistence the controller reconciles against.
type Store interface {
	LoadFavoriteIDs(ctx context.Context, userID string) ([]string, error)
	SetFavorite(ctx context.Context, userID, scholarshipID string, favorited bool) error
}

// LoadState tells "no favorites" apart from "could not check".
type LoadState int

const (
	LoadStateLoaded LoadState = iota
	LoadStateEmpty
	LoadStateFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadStateLoaded:
		return "loaded"
	case LoadStateEmpty:
		return "empty"
	default:
		return "failed"
	}
}

func (s LoadState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LoadResult is the outcome of Load. IDs is sorted and nil when State is
// LoadStateFailed.
type LoadResult struct {
	State LoadState
	IDs   []string
	Err   error
}

// Result is delivered once a toggle's reconciliation is settled.
type Result struct {
	ScholarshipID string
	// Favorited is the in-memory membership once this reconciliation settled.
	Favorited bool
	// Superseded is true when a newer toggle made this write unnecessary.
	Superseded bool
	// Err is a *WriteFailedError when the write failed.
	Err error
}

// Outcome is returned by Toggle: the optimistic state, visible immediately,
// and a channel receiving exactly one Result.
type Outcome struct {
	ScholarshipID string
	Favorited     bool
	Done          <-chan Result
}

// Notice is a transient write-failure message for the user.
type Notice struct {
	ScholarshipID string    `json:"scholarshipId"`
	Favorited     bool      `json:"favorited"`
	Message       string    `json:"message"`
	At            time.Time `json:"at"`
}

// keyState serializes reconciliations of one scholarship.
type keyState struct {
	gen       uint64        // bumped on every toggle
	tail      chan struct{} // closed when the latest queued reconciliation finishes
	pending   int           // queued or running reconciliations
	settledAt uint64        // Controller.settled when the last write finished
}

// Controller owns one user's in-memory favorite set.
//
// Toggles apply immediately and are reconciled in the background. For a
// given scholarship, reconciliations run one at a time in toggle order; a
// queued reconciliation overtaken by a newer toggle is skipped, and a failed
// write only rolls back when no newer toggle exists.
type Controller struct {
	userID       string
	store        Store
	logger       logger.Logger
	writeTimeout time.Duration
	now          func() time.Time

	mu        sync.Mutex
	ids       map[string]struct{} // optimistic membership
	confirmed map[string]bool     // last membership confirmed by the store
	keys      map[string]*keyState
	notices   []Notice
	state     LoadState
	loaded    bool
	settled   uint64 // completed store writes
	wg        sync.WaitGroup
}

// NewController creates a controller for userID. Nothing is loaded yet.
func NewController(userID string, store Store, log logger.Logger, writeTimeout time.Duration) *Controller {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Controller{
		userID:       userID,
		store:        store,
		logger:       log.With(logger.String("user_id", userID)),
		writeTimeout: writeTimeout,
		now:          time.Now,
		ids:          make(map[string]struct{}),
		confirmed:    make(map[string]bool),
		keys:         make(map[string]*keyState),
		state:        LoadStateEmpty,
	}
}

// UserID returns the user this controller belongs to.
func (c *Controller) UserID() string { return c.userID }

// Load queries the store and replaces the in-memory set.
//
// A failed query keeps whatever was held before and reports LoadStateFailed.
// Scholarships with a reconciliation in flight, or one that finished after
// the query was issued, keep their in-memory state.
func (c *Controller) Load(ctx context.Context) LoadResult {
	c.mu.Lock()
	since := c.settled
	c.mu.Unlock()

	ids, err := c.store.LoadFavoriteIDs(ctx, c.userID)
	if err != nil {
		c.logger.Warn("failed to load favorites", logger.Error(err))
		c.mu.Lock()
		c.state = LoadStateFailed
		c.mu.Unlock()
		return LoadResult{State: LoadStateFailed, Err: fmt.Errorf("%w: %w", ErrQueryFailed, err)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		fresh[id] = struct{}{}
	}

	// The snapshot may predate writes that settled while it was taken
	keep := func(id string) bool {
		ks := c.keys[id]
		return ks != nil && (ks.pending > 0 || ks.settledAt > since)
	}

	for id := range c.confirmed {
		if !keep(id) {
			delete(c.confirmed, id)
		}
	}
	for id := range fresh {
		if !keep(id) {
			c.confirmed[id] = true
		}
	}

	next := make(map[string]struct{}, len(fresh))
	for id := range fresh {
		next[id] = struct{}{}
	}
	for id := range c.keys {
		if !keep(id) {
			continue
		}
		if _, on := c.ids[id]; on {
			next[id] = struct{}{}
		} else {
			delete(next, id)
		}
	}
	c.ids = next
	c.loaded = true

	c.state = LoadStateLoaded
	if len(c.ids) == 0 {
		c.state = LoadStateEmpty
	}
	return LoadResult{State: c.state, IDs: c.sortedIDsLocked()}
}

// Loaded reports whether a Load has ever succeeded.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// State returns the state of the last Load, recomputed for the current set.
func (c *Controller) State() LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == LoadStateFailed {
		return c.state
	}
	if len(c.ids) == 0 {
		return LoadStateEmpty
	}
	return LoadStateLoaded
}

// IsFavorite reports the optimistic membership of scholarshipID.
func (c *Controller) IsFavorite(scholarshipID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[scholarshipID]
	return ok
}

// IDs returns the optimistic set, sorted.
func (c *Controller) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortedIDsLocked()
}

// Notices drains the pending write-failure notices.
func (c *Controller) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// Busy reports whether any reconciliation is queued or running.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ks := range c.keys {
		if ks.pending > 0 {
			return true
		}
	}
	return false
}

// Wait blocks until every reconciliation started so far has settled.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Toggle flips scholarshipID for userID. An empty userID is rejected with
// ErrUnauthenticated before anything is touched.
func (c *Controller) Toggle(ctx context.Context, userID, scholarshipID string) (Outcome, error) {
	if err := c.checkUser(userID); err != nil {
		return Outcome{}, err
	}

	c.mu.Lock()
	_, on := c.ids[scholarshipID]
	out := c.applyLocked(ctx, scholarshipID, !on)
	c.mu.Unlock()
	return out, nil
}

// Set forces scholarshipID to favorited, going through the same
// optimistic path as Toggle.
func (c *Controller) Set(ctx context.Context, userID, scholarshipID string, favorited bool) (Outcome, error) {
	if err := c.checkUser(userID); err != nil {
		return Outcome{}, err
	}

	c.mu.Lock()
	out := c.applyLocked(ctx, scholarshipID, favorited)
	c.mu.Unlock()
	return out, nil
}

func (c *Controller) checkUser(userID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if userID != c.userID {
		return fmt.Errorf("%w: controller belongs to another user", ErrUnauthenticated)
	}
	return nil
}

// applyLocked updates the optimistic set and queues the reconciliation
// behind any earlier one for the same scholarship. c.mu must be held.
func (c *Controller) applyLocked(ctx context.Context, scholarshipID string, favorited bool) Outcome {
	if favorited {
		c.ids[scholarshipID] = struct{}{}
	} else {
		delete(c.ids, scholarshipID)
	}
	ks := c.keys[scholarshipID]
	if ks == nil {
		ks = &keyState{}
		c.keys[scholarshipID] = ks
	}
	ks.gen++
	ks.pending++
	gen := ks.gen
	prev := ks.tail
	mine := make(chan struct{})
	ks.tail = mine

	done := make(chan Result, 1)
	// The write must outlive the request that triggered it
	writeCtx := context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(mine)
		if prev != nil {
			<-prev
		}
		done <- c.reconcile(writeCtx, scholarshipID, favorited, gen)
	}()

	return Outcome{ScholarshipID: scholarshipID, Favorited: favorited, Done: done}
}

func (c *Controller) reconcile(ctx context.Context, scholarshipID string, favorited bool, gen uint64) Result {
	c.mu.Lock()
	ks := c.keys[scholarshipID]
	if ks.gen != gen {
		ks.pending--
		_, on := c.ids[scholarshipID]
		c.mu.Unlock()
		c.logger.Debug("favorite write superseded",
			logger.String("scholarship_id", scholarshipID))
		return Result{ScholarshipID: scholarshipID, Favorited: on, Superseded: true}
	}
	c.mu.Unlock()

	writeCtx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	err := c.store.SetFavorite(writeCtx, c.userID, scholarshipID, favorited)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	ks.pending--
	c.settled++
	ks.settledAt = c.settled

	if err == nil {
		c.confirmed[scholarshipID] = favorited
		_, on := c.ids[scholarshipID]
		return Result{ScholarshipID: scholarshipID, Favorited: on}
	}

	werr := &WriteFailedError{ScholarshipID: scholarshipID, Favorited: favorited, Err: err}
	if ks.gen == gen {
		// No newer toggle: restore what the store last confirmed
		if c.confirmed[scholarshipID] {
			c.ids[scholarshipID] = struct{}{}
		} else {
			delete(c.ids, scholarshipID)
		}
	}
	c.notices = append(c.notices, Notice{
		ScholarshipID: scholarshipID,
		Favorited:     favorited,
		Message:       noticeMessage(favorited),
		At:            c.now(),
	})
	c.logger.Warn("favorite write failed",
		logger.String("scholarship_id", scholarshipID),
		logger.Bool("favorited", favorited),
		logger.Bool("rolled_back", ks.gen == gen),
		logger.Error(err))

	_, on := c.ids[scholarshipID]
	return Result{ScholarshipID: scholarshipID, Favorited: on, Err: werr}
}

func noticeMessage(favorited bool) string {
	if favorited {
		return "Could not save this favorite. Please try again."
	}
	return "Could not remove this favorite. Please try again."
}

func (c *Controller) sortedIDsLocked() []string {
	out := make([]string, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
