package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/scholardesk/internal/domain"
)

// MemoryIndex holds the current scholarship catalog.
// The catalog is replaced wholesale on each reload; readers get snapshots.
type MemoryIndex struct {
	mu         sync.RWMutex
	ordered    []*domain.Scholarship          // catalog order
	byID       map[string]*domain.Scholarship // ID -> Scholarship
	lastReload time.Time                      // Timestamp of last successful reload
	lastError  error                          // Error of the last failed reload, nil after success
	source     string                         // Where the current catalog came from (source, snapshot)
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		byID: make(map[string]*domain.Scholarship),
	}
}

// Replace swaps in a new catalog and clears the last error.
func (idx *MemoryIndex) Replace(scholarships []*domain.Scholarship, source string) {
	ordered := make([]*domain.Scholarship, 0, len(scholarships))
	byID := make(map[string]*domain.Scholarship, len(scholarships))
	for _, s := range scholarships {
		if _, dup := byID[s.ID]; dup {
			continue
		}
		byID[s.ID] = s
		ordered = append(ordered, s)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.ordered = ordered
	idx.byID = byID
	idx.lastReload = time.Now()
	idx.lastError = nil
	idx.source = source
}

// SetError records a failed reload. The current catalog, if any, is kept.
func (idx *MemoryIndex) SetError(err error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.lastError = err
}

// Get retrieves a scholarship by ID
func (idx *MemoryIndex) Get(id string) (*domain.Scholarship, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	s, ok := idx.byID[id]
	return s, ok
}

// All returns the catalog in order. The slice is a copy; records are shared.
func (idx *MemoryIndex) All() []*domain.Scholarship {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*domain.Scholarship, len(idx.ordered))
	copy(out, idx.ordered)
	return out
}

// Catalog returns the catalog, or an error wrapping ErrCatalogUnavailable
// when nothing has ever been loaded.
func (idx *MemoryIndex) Catalog() ([]*domain.Scholarship, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.ordered) == 0 {
		if idx.lastError != nil {
			return nil, idx.lastError
		}
		return nil, domain.ErrCatalogUnavailable
	}
	out := make([]*domain.Scholarship, len(idx.ordered))
	copy(out, idx.ordered)
	return out, nil
}

// Count returns the number of scholarships in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.ordered)
}

// GetLastReload returns the timestamp of the last successful reload
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

// LastError returns the error of the most recent failed reload, if any.
func (idx *MemoryIndex) LastError() error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastError
}

// Source returns where the current catalog came from.
func (idx *MemoryIndex) Source() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.source
}
