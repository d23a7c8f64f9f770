package favorites

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/scholardesk/internal/auth"
	"github.com/MrSnakeDoc/scholardesk/internal/logger"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRegistry(store Store) (*Registry, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(store, logger.NewNop(), time.Minute, time.Second)
	r.now = clock.Now
	return r, clock
}

func TestRegistry_SharesControllerPerUser(t *testing.T) {
	r, _ := newTestRegistry(newFakeStore())

	a := r.For("u1")
	b := r.For("u1")
	other := r.For("u2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
	assert.Equal(t, "u2", other.UserID())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_ToggleVisibleAcrossViews(t *testing.T) {
	r, _ := newTestRegistry(newFakeStore())

	out, err := r.For("u1").Toggle(context.Background(), "u1", "42")
	require.NoError(t, err)
	require.NoError(t, (<-out.Done).Err)

	assert.True(t, r.For("u1").IsFavorite("42"))
}

func TestRegistry_Sweep(t *testing.T) {
	store := newFakeStore()
	store.hold = make(chan struct{})
	r, clock := newTestRegistry(store)

	r.For("idle")
	busy := r.For("busy")
	out, err := busy.Toggle(context.Background(), "busy", "42")
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	r.For("recent")
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, r.Sweep(), "only the idle controller without pending writes goes")
	assert.Equal(t, 2, r.Len())

	store.hold <- struct{}{}
	<-out.Done
	busy.Wait()

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 2, r.Sweep())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_DropOnSignOut(t *testing.T) {
	r, _ := newTestRegistry(newFakeStore())
	p := auth.NewProvider()
	unsubscribe := r.Attach(p)
	defer unsubscribe()

	r.For("u1")
	r.For("u2")

	p.SignOut(auth.User{ID: "u1"})
	assert.Equal(t, 1, r.Len())

	p.Observe(auth.User{ID: "u2"})
	assert.Equal(t, 1, r.Len(), "sign-in does not drop")
}

func TestRegistry_SignOutKeepsWriteOrder(t *testing.T) {
	store := newFakeStore()
	store.hold = make(chan struct{})
	store.started = make(chan string)
	r, _ := newTestRegistry(store)
	p := auth.NewProvider()
	defer r.Attach(p)()

	old := r.For("u1")
	first, err := old.Toggle(context.Background(), "u1", "42")
	require.NoError(t, err)
	<-store.started

	p.SignOut(auth.User{ID: "u1"})
	assert.Equal(t, 1, r.Len(), "kept while a write is in flight")

	again := r.For("u1")
	assert.Same(t, old, again)
	second, err := again.Set(context.Background(), "u1", "42", false)
	require.NoError(t, err)

	store.hold <- struct{}{}
	<-store.started
	store.hold <- struct{}{}
	await(t, first)
	require.NoError(t, await(t, second).Err)
	r.Wait()

	assert.Equal(t, []write{{"42", true}, {"42", false}}, store.Writes())
	assert.False(t, store.Favorited("42"))
	assert.False(t, again.IsFavorite("42"))
}

func TestRegistry_DeferredDropIsSwept(t *testing.T) {
	store := newFakeStore()
	store.hold = make(chan struct{})
	r, _ := newTestRegistry(store)

	out, err := r.For("u1").Toggle(context.Background(), "u1", "42")
	require.NoError(t, err)
	assert.False(t, r.Drop("u1"))
	assert.Equal(t, 0, r.Sweep())

	store.hold <- struct{}{}
	require.NoError(t, await(t, out).Err)
	r.Wait()

	assert.Equal(t, 1, r.Sweep(), "dropped controllers go without waiting for the TTL")
	assert.Equal(t, 0, r.Len())
	assert.True(t, r.Drop("u1"))
}

func TestRegistry_SweepExpiresIdleSessions(t *testing.T) {
	r, clock := newTestRegistry(newFakeStore())
	p := auth.NewProvider().WithClock(clock.Now)
	defer r.Attach(p)()

	p.Observe(auth.User{ID: "u1"})
	clock.Advance(45 * time.Second)
	p.Observe(auth.User{ID: "u2"})
	clock.Advance(30 * time.Second)

	r.Sweep()
	assert.False(t, p.Active("u1"))
	assert.True(t, p.Active("u2"))
	assert.Equal(t, 1, p.Len())
}

func TestRegistry_StartStop(t *testing.T) {
	r, _ := newTestRegistry(newFakeStore())
	r.Start(context.Background())
	r.Stop()
	r.Stop()
}

func TestRegistry_StopsWithContext(t *testing.T) {
	r, _ := newTestRegistry(newFakeStore())
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()
	<-r.done
}

func TestRegistry_Wait(t *testing.T) {
	store := newFakeStore()
	r, _ := newTestRegistry(store)

	for _, id := range []string{"1", "2", "3"} {
		_, err := r.For("u1").Toggle(context.Background(), "u1", id)
		require.NoError(t, err)
	}
	r.Wait()

	assert.Len(t, store.Writes(), 3)
}
