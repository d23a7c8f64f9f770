package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/scholardesk/internal/auth"
	"github.com/MrSnakeDoc/scholardesk/internal/domain"
	"github.com/MrSnakeDoc/scholardesk/internal/favorites"
	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scholardesk/internal/index"
	"github.com/MrSnakeDoc/scholardesk/internal/logger"
	"github.com/MrSnakeDoc/scholardesk/internal/relay"
	redisstore "github.com/MrSnakeDoc/scholardesk/internal/store/redis"
)

var testNow = time.Date(2026, time.October, 18, 15, 4, 5, 0, time.UTC)

var identity = auth.HeaderNames{
	UserID: "X-Auth-Request-User",
	Name:   "X-Auth-Request-Preferred-Username",
	Email:  "X-Auth-Request-Email",
	Avatar: "X-Auth-Request-Avatar",
}

type testEnv struct {
	handler  http.Handler
	mr       *miniredis.Miniredis
	store    *redisstore.Store
	index    *index.MemoryIndex
	registry *favorites.Registry
	auth     *auth.Provider
}

func testCatalog() []*domain.Scholarship {
	return []*domain.Scholarship{
		{ID: "42", Name: "Early Bird Award", Deadline: "Early December normally the 1st", Award: "$1,000", Based: "merit"},
		{ID: "7", Name: "Split Deadline Grant", Deadline: "November 15/ December 2", Based: "need"},
		{ID: "9", Name: "Rolling Fund", Deadline: "Rolling", Description: "Open to everyone"},
	}
}

func newTestEnv(t *testing.T, tweak ...func(*deps.Deps)) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	store := redisstore.NewStore(client).WithClock(func() time.Time { return testNow })
	idx := index.NewMemoryIndex()
	idx.Replace(testCatalog(), "test")

	log := logger.NewNop()
	provider := auth.NewProvider()
	registry := favorites.NewRegistry(store, log, time.Minute, 2*time.Second)
	t.Cleanup(registry.Attach(provider))
	t.Cleanup(registry.Wait)

	d := deps.Deps{
		Logger:          log,
		StartTime:       testNow,
		TimeNow:         func() time.Time { return testNow },
		RateLimitBurst:  1000,
		RateLimitPerMin: 1000,
		RequestTimeout:  5 * time.Second,
		Store:           store,
		MemoryIndex:     idx,
		Favorites:       registry,
		Auth:            provider,
		Identity:        identity,
		Relay:           relay.NewClient("", 0, log),
		ReloadTrigger:   make(chan struct{}, 1),
	}
	for _, fn := range tweak {
		fn(&d)
	}

	return &testEnv{
		handler:  NewRouter(d),
		mr:       mr,
		store:    store,
		index:    idx,
		registry: registry,
		auth:     provider,
	}
}

// do sends a request as userID ("" for anonymous).
func (e *testEnv) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != "" {
		req.Header.Set(identity.UserID, userID)
		req.Header.Set(identity.Name, "Ada")
		req.Header.Set(identity.Email, "ada@example.com")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Redirect string `json:"redirect"`
}

type favoriteBody struct {
	ScholarshipID string `json:"scholarshipId"`
	Favorited     bool   `json:"favorited"`
	Pending       bool   `json:"pending"`
	Code          string `json:"code"`
}

type favoritesBody struct {
	State        string   `json:"state"`
	Stale        bool     `json:"stale"`
	IDs          []string `json:"ids"`
	Scholarships []struct {
		ID        string `json:"id"`
		Favorited *bool  `json:"favorited"`
	} `json:"scholarships"`
	Notices []favorites.Notice `json:"notices"`
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])
}

func TestOpsEndpointsRestrictedByCIDR(t *testing.T) {
	env := newTestEnv(t, func(d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
	})

	// httptest requests come from 192.0.2.1
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/readyz", "", "").Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/reload", "", "").Code)
}

func TestReadyzAndReload(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/readyz", "", "").Code)
	assert.Equal(t, http.StatusAccepted, env.do(t, http.MethodPost, "/reload", "", "").Code)
	// the trigger channel holds one pending request
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodPost, "/reload", "", "").Code)
}

func TestListScholarships(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/scholarships?q=rolling", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Count        int `json:"count"`
		Scholarships []struct {
			ID            string  `json:"id"`
			DeadlineLabel string  `json:"deadlineLabel"`
			DeadlineKind  string  `json:"deadlineKind"`
			Favorited     *bool   `json:"favorited"`
			DeadlineDate  *string `json:"deadlineDate"`
		} `json:"scholarships"`
	}](t, rec)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "9", body.Scholarships[0].ID)
	assert.Equal(t, "open_ended", body.Scholarships[0].DeadlineKind)
	assert.Nil(t, body.Scholarships[0].DeadlineDate)
	assert.Nil(t, body.Scholarships[0].Favorited, "anonymous callers get no favorite flag")
}

func TestGetScholarshipNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/scholarships/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errorBody](t, rec).Code)
}

func TestCatalogUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.index.Replace(nil, "test")
	env.index.SetError(errors.New("source down"))

	for _, path := range []string{"/api/scholarships", "/api/calendar", "/api/scholarships/upcoming"} {
		rec := env.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Equal(t, "catalog_unavailable", decode[errorBody](t, rec).Code, path)
	}
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/readyz", "", "").Code)
}

func TestCalendarPlacesDeadlines(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/calendar?year=2026&month=12", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Weeks [][]struct {
			Date         string `json:"date"`
			InMonth      bool   `json:"inMonth"`
			Scholarships []struct {
				ID string `json:"id"`
			} `json:"scholarships"`
		} `json:"weeks"`
	}](t, rec)

	byDate := map[string][]string{}
	for _, week := range body.Weeks {
		for _, c := range week {
			for _, s := range c.Scholarships {
				byDate[c.Date] = append(byDate[c.Date], s.ID)
			}
		}
	}
	assert.Equal(t, []string{"42"}, byDate["2026-12-01"])
	assert.NotContains(t, byDate["2026-12-02"], "7")

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/calendar?month=13", "", "").Code)
}

func TestUpcoming(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/scholarships/upcoming", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Upcoming []struct {
			Scholarship struct {
				ID string `json:"id"`
			} `json:"scholarship"`
			Kind string `json:"kind"`
		} `json:"upcoming"`
	}](t, rec)

	got := make([]string, 0, len(body.Upcoming))
	for _, e := range body.Upcoming {
		got = append(got, e.Scholarship.ID)
	}
	assert.Equal(t, []string{"7", "42", "9"}, got)
}

func TestFavoritesRequireSignIn(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/favorites/42/toggle", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "unauthenticated", body.Code)
	assert.Equal(t, "/sign-up", body.Redirect)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/favorites", "", "").Code)
	assert.Equal(t, 0, env.registry.Len())
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/favorites/42/toggle?wait=true", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[favoriteBody](t, rec).Favorited)

	marker, err := env.store.GetMarker(context.Background(), "u1", "42")
	require.NoError(t, err)
	assert.True(t, marker.Active())

	rec = env.do(t, http.MethodGet, "/api/favorites", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[favoritesBody](t, rec)
	assert.Equal(t, "loaded", list.State)
	assert.Equal(t, []string{"42"}, list.IDs)
	require.Len(t, list.Scholarships, 1)
	assert.Equal(t, "42", list.Scholarships[0].ID)

	rec = env.do(t, http.MethodDelete, "/api/favorites/42?wait=true", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[favoriteBody](t, rec).Favorited)

	marker, err = env.store.GetMarker(context.Background(), "u1", "42")
	require.NoError(t, err)
	assert.True(t, marker.Deleted, "unfavoriting keeps a tombstone")

	rec = env.do(t, http.MethodGet, "/api/favorites", "u1", "")
	assert.Equal(t, "empty", decode[favoritesBody](t, rec).State)
}

func TestToggleIsOptimistic(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/favorites/7", "u1", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decode[favoriteBody](t, rec)
	assert.True(t, body.Pending)
	assert.True(t, body.Favorited)

	// visible to the next request before the write lands
	rec = env.do(t, http.MethodGet, "/api/scholarships/7", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[struct {
		Favorited *bool `json:"favorited"`
	}](t, rec)
	require.NotNil(t, view.Favorited)
	assert.True(t, *view.Favorited)
}

func TestToggleUnknownScholarship(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/favorites/999/toggle", "u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleWriteFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/favorites", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "empty", decode[favoritesBody](t, rec).State)

	env.mr.Close()

	rec = env.do(t, http.MethodPost, "/api/favorites/42/toggle?wait=true", "u1", "")
	require.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())
	body := decode[favoriteBody](t, rec)
	assert.False(t, body.Favorited, "rolled back to the confirmed state")
	assert.Equal(t, "favorite_write_failed", body.Code)

	rec = env.do(t, http.MethodGet, "/api/favorites", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[favoritesBody](t, rec)
	assert.Equal(t, "failed", list.State, "a failed query is not reported as no favorites")
	assert.True(t, list.Stale)
	assert.Empty(t, list.IDs)
	require.Len(t, list.Notices, 1)
	assert.Equal(t, "42", list.Notices[0].ScholarshipID)
}

func TestToggleRefusedWhenFavoritesUnknown(t *testing.T) {
	env := newTestEnv(t)
	env.mr.Close()

	rec := env.do(t, http.MethodPost, "/api/favorites/42/toggle?wait=true", "u1", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
	assert.Equal(t, "favorites_unknown", decode[errorBody](t, rec).Code)

	c := env.registry.For("u1")
	assert.False(t, c.IsFavorite("42"))
	assert.False(t, c.Busy(), "nothing was queued")
}

func TestMeAndSignOut(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/me", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["authenticated"])

	rec = env.do(t, http.MethodGet, "/api/me", "u1", "")
	me := decode[struct {
		Authenticated bool      `json:"authenticated"`
		User          auth.User `json:"user"`
	}](t, rec)
	assert.True(t, me.Authenticated)
	assert.Equal(t, auth.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}, me.User)

	env.do(t, http.MethodGet, "/api/favorites", "u1", "")
	require.Equal(t, 1, env.registry.Len())

	rec = env.do(t, http.MethodPost, "/api/auth/signout", "u1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, env.registry.Len(), "sign-out releases the favorites controller")
	assert.False(t, env.auth.Active("u1"))
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/profile", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Profile   domain.Profile `json:"profile"`
		Favorites struct {
			State string `json:"state"`
		} `json:"favorites"`
	}](t, rec)
	assert.Equal(t, "Ada", body.Profile.Name)
	assert.Equal(t, "Harvard", body.Profile.DreamSchool)
	assert.Equal(t, "No bio yet", body.Profile.Bio)
	assert.Equal(t, "empty", body.Favorites.State)

	rec = env.do(t, http.MethodPut, "/api/profile", "u1", `{"bio":"Likes maths","grade":"11"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := env.store.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Likes maths", stored.Bio)
	assert.Equal(t, "11", stored.Grade)
	assert.Equal(t, "Ada", stored.Name)
	assert.True(t, stored.UpdatedAt.Equal(testNow))

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/profile", "u1", `{"name":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/profile", "u1", `{"unknown":1}`).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/profile", "", "").Code)
}

func TestCreateSuggestion(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/suggestions", "", `{"name":"Ada","email":"ada@example.com","message":"Add the Fulbright"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[map[string]string](t, rec)["id"]
	assert.NotEmpty(t, id)

	stored, err := env.store.ListSuggestions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, id, stored[0].ID)
	assert.Equal(t, "Add the Fulbright", stored[0].Message)

	rec = env.do(t, http.MethodPost, "/api/suggestions", "", `{"name":"Ada","email":"not-an-email","message":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIRateLimit(t *testing.T) {
	env := newTestEnv(t, func(d *deps.Deps) {
		d.RateLimitBurst = 2
		d.RateLimitPerMin = 1
	})

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/me", "", "").Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/me", "", "").Code)
	rec := env.do(t, http.MethodGet, "/api/me", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// signed-in users have their own bucket
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/me", "u1", "").Code)
}
