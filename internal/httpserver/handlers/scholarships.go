package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scholardesk/internal/auth"
	"github.com/MrSnakeDoc/scholardesk/internal/calendar"
	"github.com/MrSnakeDoc/scholardesk/internal/domain"
	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
)

// scholarshipView is a record with its display labels resolved.
type scholarshipView struct {
	*domain.Scholarship
	DeadlineLabel string     `json:"deadlineLabel"`
	DeadlineKind  string     `json:"deadlineKind"`
	DeadlineDate  *time.Time `json:"deadlineDate,omitempty"`
	AwardLabel    string     `json:"awardLabel"`
	HasWebsite    bool       `json:"hasWebsite"`
	Favorited     *bool      `json:"favorited,omitempty"`
}

// favoriteLookup answers membership for the current user, nil when anonymous.
type favoriteLookup func(id string) bool

func newView(s *domain.Scholarship, now time.Time, fav favoriteLookup) scholarshipView {
	dl := domain.ParseDeadline(s.Deadline, now)
	v := scholarshipView{
		Scholarship:   s,
		DeadlineLabel: dl.Label(),
		DeadlineKind:  dl.Kind.String(),
		AwardLabel:    s.AwardLabel(),
		HasWebsite:    s.HasWebsiteURL(),
	}
	if dl.IsExact() {
		date := dl.Date
		v.DeadlineDate = &date
	}
	if fav != nil {
		on := fav(s.ID)
		v.Favorited = &on
	}
	return v
}

func newViews(list []*domain.Scholarship, now time.Time, fav favoriteLookup) []scholarshipView {
	views := make([]scholarshipView, 0, len(list))
	for _, s := range list {
		views = append(views, newView(s, now, fav))
	}
	return views
}

// lookupFor returns the favorites of the signed-in user, loading them on
// first use. Anonymous requests get nil.
func lookupFor(d deps.Deps, r *http.Request) favoriteLookup {
	u, ok := auth.UserFromContext(r.Context())
	if !ok || d.Favorites == nil {
		return nil
	}
	c := d.Favorites.For(u.ID)
	if !c.Loaded() {
		c.Load(r.Context())
	}
	return c.IsFavorite
}

type scholarshipListResponse struct {
	Count        int               `json:"count"`
	Query        string            `json:"query,omitempty"`
	Based        string            `json:"based,omitempty"`
	Scholarships []scholarshipView `json:"scholarships"`
}

// ListScholarships serves the catalog filtered by q and based.
func ListScholarships(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog, err := d.MemoryIndex.Catalog()
		if err != nil {
			writeCatalogError(w, err)
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		based := strings.TrimSpace(r.URL.Query().Get("based"))
		list := domain.FilterScholarships(catalog, query, based)

		writeJSON(w, http.StatusOK, scholarshipListResponse{
			Count:        len(list),
			Query:        query,
			Based:        based,
			Scholarships: newViews(list, d.Now(), lookupFor(d, r)),
		})
	}
}

// GetScholarship serves one record.
func GetScholarship(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := d.MemoryIndex.Catalog(); err != nil {
			writeCatalogError(w, err)
			return
		}

		id := chi.URLParam(r, "id")
		s, ok := d.MemoryIndex.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, CodeNotFound, "unknown scholarship "+id)
			return
		}
		writeJSON(w, http.StatusOK, newView(s, d.Now(), lookupFor(d, r)))
	}
}

type suggestion struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// SuggestScholarships serves search-box suggestions.
func SuggestScholarships(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog, err := d.MemoryIndex.Catalog()
		if err != nil {
			writeCatalogError(w, err)
			return
		}

		limit, err := queryInt(r, "limit", domain.DefaultSuggestLimit)
		if err != nil || limit < 1 || limit > 50 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be between 1 and 50")
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		out := make([]suggestion, 0, limit)
		for _, c := range domain.RankCandidates(query, catalog) {
			if len(out) == limit {
				break
			}
			out = append(out, suggestion{ID: c.Scholarship.ID, Name: c.Scholarship.Name, Score: c.Score})
		}

		writeJSON(w, http.StatusOK, map[string]any{"query": query, "suggestions": out})
	}
}

// UpcomingScholarships serves the home page deadline list.
func UpcomingScholarships(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog, err := d.MemoryIndex.Catalog()
		if err != nil {
			writeCatalogError(w, err)
			return
		}

		limit, err := queryInt(r, "limit", calendar.DefaultUpcomingLimit)
		if err != nil || limit < 1 || limit > 100 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be between 1 and 100")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"upcoming": calendar.Upcoming(catalog, d.Now(), limit),
		})
	}
}
