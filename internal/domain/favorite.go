package domain

import (
	"strings"
	"time"
)

// FavoriteMarker is the persisted link between a user and a scholarship.
//
// At most one marker exists per (UserID, ScholarshipID). Markers are never
// removed: unfavoriting flips Deleted to true, favoriting again flips it back.
type FavoriteMarker struct {
	UserID        string    `json:"userId"`
	ScholarshipID string    `json:"scholarshipId"`
	AddedAt       time.Time `json:"addedAt"`
	Deleted       bool      `json:"deleted"`
}

// Active reports whether the marker counts as a favorite.
func (m *FavoriteMarker) Active() bool {
	return m != nil && !m.Deleted
}

// Profile is the per-user profile document.
type Profile struct {
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Age         string    `json:"age"`
	Grade       string    `json:"grade"`
	State       string    `json:"state"`
	Country     string    `json:"country"`
	DreamSchool string    `json:"dreamSchool"`
	Bio         string    `json:"bio"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	Name        *string `json:"name,omitempty"`
	Age         *string `json:"age,omitempty"`
	Grade       *string `json:"grade,omitempty"`
	State       *string `json:"state,omitempty"`
	Country     *string `json:"country,omitempty"`
	DreamSchool *string `json:"dreamSchool,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

// DefaultProfile builds the profile created on first access.
// The name falls back from display name to the email local part to "Name".
func DefaultProfile(userID, displayName, email string, now time.Time) *Profile {
	return &Profile{
		UserID:      userID,
		Name:        defaultProfileName(displayName, email),
		Email:       email,
		Age:         "18",
		Grade:       "12",
		State:       "GA",
		Country:     "USA",
		DreamSchool: "Harvard",
		Bio:         "No bio yet",
		CreatedAt:   now,
	}
}

// Apply merges an update into the profile and stamps UpdatedAt.
func (p *Profile) Apply(u ProfileUpdate, now time.Time) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Name, u.Name)
	set(&p.Age, u.Age)
	set(&p.Grade, u.Grade)
	set(&p.State, u.State)
	set(&p.Country, u.Country)
	set(&p.DreamSchool, u.DreamSchool)
	set(&p.Bio, u.Bio)
	p.UpdatedAt = now
}

func defaultProfileName(displayName, email string) string {
	if displayName != "" {
		return displayName
	}
	if local, _, _ := strings.Cut(email, "@"); local != "" {
		return local
	}
	return "Name"
}

// Suggestion is a contact-form submission.
type Suggestion struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
