package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
	"github.com/MrSnakeDoc/scholardesk/internal/favorites"
	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scholardesk/internal/logger"
)

type favoritesResponse struct {
	State        favorites.LoadState `json:"state"`
	Stale        bool                `json:"stale"`
	IDs          []string            `json:"ids"`
	Scholarships []scholarshipView   `json:"scholarships"`
	Missing      []string            `json:"missing,omitempty"`
	Notices      []favorites.Notice  `json:"notices,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// ListFavorites reloads the user's favorites and serves them joined with
// the catalog. A failed query is reported as state "failed" with whatever
// the controller still holds marked stale, never as an empty list.
func ListFavorites(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := requireUser(w, r)
		if !ok {
			return
		}
		c := d.Favorites.For(u.ID)

		var (
			catalog []*domain.Scholarship
			res     favorites.LoadResult
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			catalog, err = d.MemoryIndex.Catalog()
			return err
		})
		g.Go(func() error {
			res = c.Load(ctx)
			return nil
		})
		if err := g.Wait(); err != nil {
			writeCatalogError(w, err)
			return
		}

		resp := favoritesResponse{State: res.State, Notices: c.Notices()}
		if res.State == favorites.LoadStateFailed {
			resp.Stale = true
			resp.Error = res.Err.Error()
		}
		resp.IDs = c.IDs()

		byID := make(map[string]bool, len(resp.IDs))
		for _, id := range resp.IDs {
			byID[id] = true
		}
		list := make([]*domain.Scholarship, 0, len(resp.IDs))
		for _, s := range catalog {
			if byID[s.ID] {
				list = append(list, s)
				delete(byID, s.ID)
			}
		}
		for _, id := range resp.IDs {
			if byID[id] {
				resp.Missing = append(resp.Missing, id)
			}
		}
		resp.Scholarships = newViews(list, d.Now(), func(string) bool { return true })

		writeJSON(w, http.StatusOK, resp)
	}
}

type favoriteResponse struct {
	ScholarshipID string `json:"scholarshipId"`
	Favorited     bool   `json:"favorited"`
	Pending       bool   `json:"pending"`
	Superseded    bool   `json:"superseded,omitempty"`
	Error         string `json:"error,omitempty"`
	Code          string `json:"code,omitempty"`
}

type mutation func(c *favorites.Controller, ctx context.Context, userID, scholarshipID string) (favorites.Outcome, error)

// ToggleFavorite flips the favorite optimistically. It needs the current
// membership, so it answers 503 when the favorites could not be loaded.
func ToggleFavorite(d deps.Deps) http.HandlerFunc {
	return mutateFavorite(d, true, func(c *favorites.Controller, ctx context.Context, userID, id string) (favorites.Outcome, error) {
		return c.Toggle(ctx, userID, id)
	})
}

// AddFavorite marks the scholarship as a favorite.
func AddFavorite(d deps.Deps) http.HandlerFunc {
	return mutateFavorite(d, false, func(c *favorites.Controller, ctx context.Context, userID, id string) (favorites.Outcome, error) {
		return c.Set(ctx, userID, id, true)
	})
}

// RemoveFavorite unmarks the scholarship.
func RemoveFavorite(d deps.Deps) http.HandlerFunc {
	return mutateFavorite(d, false, func(c *favorites.Controller, ctx context.Context, userID, id string) (favorites.Outcome, error) {
		return c.Set(ctx, userID, id, false)
	})
}

// mutateFavorite answers 202 with the optimistic state as soon as it is
// applied. With ?wait=true it waits for the store and answers 200, or 502
// carrying the rolled-back state.
func mutateFavorite(d deps.Deps, needsState bool, op mutation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := requireUser(w, r)
		if !ok {
			return
		}
		if _, err := d.MemoryIndex.Catalog(); err != nil {
			writeCatalogError(w, err)
			return
		}
		id := chi.URLParam(r, "id")
		if _, ok := d.MemoryIndex.Get(id); !ok {
			writeError(w, http.StatusNotFound, CodeNotFound, "unknown scholarship "+id)
			return
		}

		ctx := r.Context()
		c := d.Favorites.For(u.ID)
		if !c.Loaded() {
			res := c.Load(ctx)
			if needsState && res.State == favorites.LoadStateFailed {
				d.Logger.Warn("toggle refused, favorites unknown",
					logger.String("user_id", u.ID),
					logger.String("scholarship_id", id),
					logger.Error(res.Err))
				writeError(w, http.StatusServiceUnavailable, CodeFavoritesUnknown, res.Err.Error())
				return
			}
		}

		out, err := op(c, ctx, u.ID, id)
		if err != nil {
			if errors.Is(err, favorites.ErrUnauthenticated) {
				writeUnauthenticated(w)
				return
			}
			writeError(w, http.StatusInternalServerError, CodeStoreFailed, err.Error())
			return
		}

		pending := favoriteResponse{ScholarshipID: id, Favorited: out.Favorited, Pending: true}
		if !queryBool(r, "wait") {
			writeJSON(w, http.StatusAccepted, pending)
			return
		}

		select {
		case res := <-out.Done:
			resp := favoriteResponse{ScholarshipID: id, Favorited: res.Favorited, Superseded: res.Superseded}
			if res.Err != nil {
				d.Logger.Warn("favorite write failed",
					logger.String("user_id", u.ID),
					logger.String("scholarship_id", id),
					logger.Error(res.Err))
				resp.Error = res.Err.Error()
				resp.Code = CodeWriteFailed
				writeJSON(w, http.StatusBadGateway, resp)
				return
			}
			writeJSON(w, http.StatusOK, resp)
		case <-ctx.Done():
			// The write carries on without us
			writeJSON(w, http.StatusAccepted, pending)
		}
	}
}
