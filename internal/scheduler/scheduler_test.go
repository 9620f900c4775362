package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/metoffice-weather/internal/weather"
)

type recordingRefresher struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (r *recordingRefresher) FetchAndStore(_ context.Context, loc weather.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[loc.Key()]++
	return r.err
}

func (r *recordingRefresher) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[key]
}

func TestScheduler_RefreshesEveryLocation(t *testing.T) {
	ref := &recordingRefresher{calls: map[string]int{}, err: errors.New("upstream down")}
	locs := []weather.Location{{Name: "London"}, {Name: "Exeter"}}

	s := New(locs, 50*time.Millisecond, ref, zap.NewNop())
	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool {
		return ref.count("London") >= 2 && ref.count("Exeter") >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_NoLocations(t *testing.T) {
	ref := &recordingRefresher{calls: map[string]int{}}

	s := New(nil, 50*time.Millisecond, ref, zap.NewNop())
	require.NoError(t, s.Start())
	defer s.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, ref.calls)
}
