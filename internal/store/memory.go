package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/metoffice-weather/internal/weather"
)

var (
	// ErrNotFound is returned when no snapshot is available for a given location.
	ErrNotFound = errors.New("no weather data for location")
)

// MemoryStore is a concurrency-safe in-memory store of the latest forecast snapshot per location.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key
	data map[string]weather.Snapshot

	// snapshots older than maxAge are treated as missing (0 = unlimited)
	maxAge time.Duration
	now    func() time.Time
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]weather.Snapshot),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// SaveSnapshot replaces the snapshot for a location and drops expired ones.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[loc.Key()] = snapshot

	if s.maxAge > 0 {
		for k, snap := range s.data {
			if s.expired(snap) {
				delete(s.data, k)
			}
		}
	}
}

// GetLatest returns the most recent snapshot for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[loc.Key()]
	if !ok || s.expired(snap) {
		return weather.Snapshot{}, ErrNotFound
	}
	return snap, nil
}

func (s *MemoryStore) expired(snap weather.Snapshot) bool {
	if s.maxAge <= 0 {
		return false
	}
	cutoff := s.now().Add(-s.maxAge).UnixMilli()
	return snap.FetchedAt < cutoff
}

var _ weather.SnapshotStore = (*MemoryStore)(nil)
