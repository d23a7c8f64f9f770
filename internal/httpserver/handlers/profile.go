package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/scholardesk/internal/auth"
	"github.com/MrSnakeDoc/scholardesk/internal/domain"
	"github.com/MrSnakeDoc/scholardesk/internal/favorites"
	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scholardesk/internal/logger"
	redisstore "github.com/MrSnakeDoc/scholardesk/internal/store/redis"
)

const (
	maxProfileField = 120
	maxProfileBio   = 2000
)

type profileFavorites struct {
	State favorites.LoadState `json:"state"`
	IDs   []string            `json:"ids"`
}

type profileResponse struct {
	Profile   *domain.Profile  `json:"profile"`
	Favorites profileFavorites `json:"favorites"`
}

// ensureProfile returns the stored profile, creating the default one on
// first access.
func ensureProfile(ctx context.Context, d deps.Deps, u *auth.User) (*domain.Profile, error) {
	p := domain.DefaultProfile(u.ID, u.Name, u.Email, d.Now().UTC())
	created, err := d.Store.CreateProfile(ctx, p)
	if err != nil {
		return nil, err
	}
	if created {
		d.Logger.Info("profile created", logger.String("user_id", u.ID))
		return p, nil
	}
	return d.Store.GetProfile(ctx, u.ID)
}

// GetProfile serves the user's profile along with their favorites.
func GetProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := requireUser(w, r)
		if !ok {
			return
		}

		var (
			profile *domain.Profile
			res     favorites.LoadResult
		)
		c := d.Favorites.For(u.ID)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			profile, err = ensureProfile(ctx, d, u)
			return err
		})
		g.Go(func() error {
			res = c.Load(ctx)
			return nil
		})
		if err := g.Wait(); err != nil {
			writeStoreError(w, d, u, err)
			return
		}

		writeJSON(w, http.StatusOK, profileResponse{
			Profile:   profile,
			Favorites: profileFavorites{State: res.State, IDs: c.IDs()},
		})
	}
}

// UpdateProfile applies the editable fields present in the body.
func UpdateProfile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := requireUser(w, r)
		if !ok {
			return
		}

		var upd domain.ProfileUpdate
		if err := decodeJSON(w, r, &upd); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid profile: "+err.Error())
			return
		}
		if err := validateProfileUpdate(upd); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
			return
		}

		ctx := r.Context()
		p, err := ensureProfile(ctx, d, u)
		if err != nil {
			writeStoreError(w, d, u, err)
			return
		}
		p.Apply(upd, d.Now().UTC())
		if err := d.Store.SaveProfile(ctx, p); err != nil {
			writeStoreError(w, d, u, err)
			return
		}

		writeJSON(w, http.StatusOK, p)
	}
}

func validateProfileUpdate(u domain.ProfileUpdate) error {
	fields := []struct {
		name string
		v    *string
		max  int
	}{
		{"name", u.Name, maxProfileField},
		{"age", u.Age, maxProfileField},
		{"grade", u.Grade, maxProfileField},
		{"state", u.State, maxProfileField},
		{"country", u.Country, maxProfileField},
		{"dreamSchool", u.DreamSchool, maxProfileField},
		{"bio", u.Bio, maxProfileBio},
	}
	for _, f := range fields {
		if f.v != nil && utf8.RuneCountInString(*f.v) > f.max {
			return fmt.Errorf("%s is longer than %d characters", f.name, f.max)
		}
	}
	if u.Name != nil && *u.Name == "" {
		return errors.New("name must not be empty")
	}
	return nil
}

func writeStoreError(w http.ResponseWriter, d deps.Deps, u *auth.User, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	d.Logger.Warn("profile store failed", logger.String("user_id", u.ID), logger.Error(err))
	msg := "profile store failed"
	if errors.Is(err, redisstore.ErrNotFound) {
		msg = "profile vanished while loading"
	}
	writeError(w, http.StatusBadGateway, CodeStoreFailed, msg)
}
