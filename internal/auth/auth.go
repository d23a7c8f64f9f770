package auth

import (
	"context"
	"net/http"
	"strings"
)

// User is the identity asserted by the upstream auth proxy.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// HeaderNames lists the trusted request headers carrying the identity.
type HeaderNames struct {
	UserID string
	Name   string
	Email  string
	Avatar string
}

type ctxKey struct{}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the signed-in user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*User)
	return u, ok && u != nil
}

// FromRequest extracts the identity from the trusted headers.
// A request without a user ID header is anonymous.
func FromRequest(r *http.Request, h HeaderNames) (*User, bool) {
	id := strings.TrimSpace(r.Header.Get(h.UserID))
	if id == "" {
		return nil, false
	}
	return &User{
		ID:        id,
		Name:      strings.TrimSpace(r.Header.Get(h.Name)),
		Email:     strings.TrimSpace(r.Header.Get(h.Email)),
		AvatarURL: strings.TrimSpace(r.Header.Get(h.Avatar)),
	}, true
}

// Middleware puts the request's user into the context and reports it to the
// provider so the first sighting publishes a sign-in event.
// Anonymous requests pass through untouched.
func Middleware(h HeaderNames, p *Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := FromRequest(r, h)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			if p != nil {
				p.Observe(*u)
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
