package domain

import (
	"errors"
	"strings"
)

// ErrCatalogUnavailable is reported when the scholarship catalog could not
// be fetched or parsed and no previous copy is available.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Based category values recognised by the filter.
const (
	BasedAll   = "all"
	BasedNeed  = "need"
	BasedMerit = "merit"
	BasedBoth  = "both"
)

// Scholarship is one catalog record.
//
// Records are read-only: the catalog is replaced wholesale on reload and
// nothing in the service mutates a record after it has been mapped.
type Scholarship struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the catalog identifier in string form.
	// It is the foreign key used by favorite markers.
	ID string `json:"id"`

	// Name is the display title.
	Name string `json:"name"`

	// ─────────────────────────────
	// Free-text attributes
	// ─────────────────────────────

	// Deadline is the human-entered deadline, e.g. "Early December normally the 1st".
	Deadline string `json:"deadline,omitempty"`

	// Award describes the amount: a value, a range, "full tuition" or nothing.
	Award string `json:"award,omitempty"`

	// Based is the category tag (need / merit / both / unspecified).
	Based string `json:"based,omitempty"`

	Description  string `json:"description,omitempty"`
	Eligibility  string `json:"eligibility,omitempty"`
	Requirements string `json:"requirements,omitempty"`
	Website      string `json:"website,omitempty"`
}

// DeadlineLabel returns the deadline as displayed, "Open" when absent.
func (s *Scholarship) DeadlineLabel() string {
	if strings.TrimSpace(s.Deadline) == "" {
		return "Open"
	}
	return s.Deadline
}

// AwardLabel returns the award as displayed, "Varies" when absent.
func (s *Scholarship) AwardLabel() string {
	if strings.TrimSpace(s.Award) == "" {
		return "Varies"
	}
	return s.Award
}

// HasWebsiteURL reports whether Website is an absolute http(s) link.
func (s *Scholarship) HasWebsiteURL() bool {
	return strings.HasPrefix(s.Website, "http://") || strings.HasPrefix(s.Website, "https://")
}

// MatchesBased reports whether the record passes the based filter.
// Unknown filter values behave like "all".
func (s *Scholarship) MatchesBased(filter string) bool {
	based := strings.ToLower(s.Based)
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case BasedNeed:
		return strings.Contains(based, BasedNeed)
	case BasedMerit:
		return strings.Contains(based, BasedMerit)
	case BasedBoth:
		return strings.Contains(based, BasedBoth)
	default:
		return true
	}
}
