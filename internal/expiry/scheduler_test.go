package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-lock-engine/internal/lock"
	"github.com/iliyamo/seat-lock-engine/internal/model"
	"github.com/iliyamo/seat-lock-engine/internal/registry"
)

func TestSchedulerReleasesLapsedHolds(t *testing.T) {
	m := lock.NewManager(registry.New(3), nil, 30*time.Millisecond)
	require.NoError(t, m.Hold(1, 10))

	s := NewScheduler(m, 10*time.Millisecond)
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return m.Snapshot()[0].Status == model.StatusAvailable
	}, time.Second, 5*time.Millisecond, "the sweeper must revert a lapsed hold")
}

func TestSchedulerLeavesLiveHoldsAlone(t *testing.T) {
	m := lock.NewManager(registry.New(1), nil, time.Hour)
	require.NoError(t, m.Hold(1, 10))

	s := NewScheduler(m, 5*time.Millisecond)
	s.Start()
	time.Sleep(40 * time.Millisecond)
	s.Stop()

	view := m.Snapshot()[0]
	assert.Equal(t, model.StatusHeld, view.Status)
	assert.Equal(t, uint64(10), view.UserID)
}

func TestStartStopIdempotent(t *testing.T) {
	m := lock.NewManager(registry.New(1), nil, time.Minute)
	s := NewScheduler(m, 10*time.Millisecond)

	s.Start()
	s.Start() // second start is a no-op
	s.Stop()
	s.Stop() // second stop is a no-op
}
