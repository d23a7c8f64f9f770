package favorites

import (
	"context"
	"sync"
)

type write struct {
	ScholarshipID string
	Favorited     bool
}

// fakeStore records writes. When hold is set every write waits for a token,
// and when started is set every write announces itself first. loadTaken and
// loadHold do the same for LoadFavoriteIDs, after the snapshot is taken.
type fakeStore struct {
	mu       sync.Mutex
	state    map[string]bool
	writes   []write
	calls    int
	loadErr  error
	failures map[int]error // by write call index
	hold     chan struct{}
	started  chan string

	loadTaken chan struct{}
	loadHold  chan struct{}
}

func newFakeStore(ids ...string) *fakeStore {
	s := &fakeStore{state: make(map[string]bool), failures: make(map[int]error)}
	for _, id := range ids {
		s.state[id] = true
	}
	return s
}

func (s *fakeStore) LoadFavoriteIDs(_ context.Context, _ string) ([]string, error) {
	s.mu.Lock()
	if s.loadErr != nil {
		s.mu.Unlock()
		return nil, s.loadErr
	}
	ids := make([]string, 0, len(s.state))
	for id, on := range s.state {
		if on {
			ids = append(ids, id)
		}
	}
	taken, hold := s.loadTaken, s.loadHold
	s.mu.Unlock()

	if taken != nil {
		taken <- struct{}{}
	}
	if hold != nil {
		<-hold
	}
	return ids, nil
}

func (s *fakeStore) SetFavorite(ctx context.Context, _ string, scholarshipID string, favorited bool) error {
	s.mu.Lock()
	n := s.calls
	s.calls++
	hold, started := s.hold, s.started
	s.mu.Unlock()

	if started != nil {
		started <- scholarshipID
	}
	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, write{scholarshipID, favorited})
	if err := s.failures[n]; err != nil {
		return err
	}
	s.state[scholarshipID] = favorited
	return nil
}

func (s *fakeStore) Writes() []write {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]write(nil), s.writes...)
}

func (s *fakeStore) Favorited(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[id]
}
