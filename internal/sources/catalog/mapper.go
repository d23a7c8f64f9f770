package catalog

import (
	"errors"
	"strings"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
)

// Mapper converts catalog records to domain scholarships
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map converts a catalog file into scholarships, preserving catalog order.
// Records without id or name are skipped; for a repeated id the first record wins.
func (m *Mapper) Map(file File) ([]*domain.Scholarship, error) {
	scholarships := make([]*domain.Scholarship, 0, len(file))
	seen := make(map[string]bool, len(file))

	for _, rec := range file {
		id := strings.TrimSpace(string(rec.ID))
		name := strings.TrimSpace(rec.Name)
		if id == "" || name == "" {
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		scholarships = append(scholarships, &domain.Scholarship{
			ID:           id,
			Name:         name,
			Deadline:     strings.TrimSpace(rec.Deadline),
			Award:        strings.TrimSpace(rec.Award),
			Based:        strings.TrimSpace(rec.Based),
			Description:  strings.TrimSpace(rec.Description),
			Eligibility:  strings.TrimSpace(rec.Eligibility),
			Requirements: strings.TrimSpace(rec.Requirements),
			Website:      strings.TrimSpace(rec.Website),
		})
	}

	if len(scholarships) == 0 {
		return nil, errors.New("no valid scholarships found in catalog")
	}

	return scholarships, nil
}
