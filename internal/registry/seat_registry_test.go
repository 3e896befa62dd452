package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-lock-engine/internal/model"
)

func TestNewRegistryStartsAllAvailable(t *testing.T) {
	r := New(5)
	assert.Equal(t, 5, r.Len())

	snap := r.Snapshot()
	require.Len(t, snap, 5)
	for i, seat := range snap {
		assert.Equal(t, uint64(i+1), seat.ID, "snapshot must be in ascending ID order")
		assert.Equal(t, model.StatusAvailable, seat.Status)
		assert.Zero(t, seat.Holder)
		assert.Zero(t, seat.Version)
	}
}

func TestGetUnknownSeat(t *testing.T) {
	r := New(3)
	_, ok := r.Get(99)
	assert.False(t, ok)
}

func TestCompareAndTransitionSuccess(t *testing.T) {
	r := New(1)
	at := time.Now()

	seat, ok := r.CompareAndTransition(1, at,
		Expect{Status: model.StatusAvailable},
		Change{Status: model.StatusHeld, Holder: 10, HoldTTL: 2 * time.Minute}, nil)
	require.True(t, ok)
	assert.Equal(t, model.StatusHeld, seat.Status)
	assert.Equal(t, uint64(10), seat.Holder)
	assert.Equal(t, uint64(1), seat.Version)
	assert.Equal(t, at.Add(2*time.Minute), seat.HoldExpiresAt)

	// Held -> Sold clears the expiry and bumps the version again.
	seat, ok = r.CompareAndTransition(1, at,
		Expect{Status: model.StatusHeld, Holder: 10, MatchHolder: true},
		Change{Status: model.StatusSold, Holder: 10}, nil)
	require.True(t, ok)
	assert.Equal(t, model.StatusSold, seat.Status)
	assert.Equal(t, uint64(2), seat.Version)
	assert.True(t, seat.HoldExpiresAt.IsZero())
}

func TestCompareAndTransitionMismatchHasNoEffect(t *testing.T) {
	r := New(1)
	at := time.Now()

	_, ok := r.CompareAndTransition(1, at,
		Expect{Status: model.StatusHeld},
		Change{Status: model.StatusSold, Holder: 10}, nil)
	assert.False(t, ok)

	seat, found := r.Get(1)
	require.True(t, found)
	assert.Equal(t, model.StatusAvailable, seat.Status)
	assert.Zero(t, seat.Version, "a failed swap must not bump the version")
}

func TestCompareAndTransitionUnknownSeat(t *testing.T) {
	r := New(1)
	_, ok := r.CompareAndTransition(42, time.Now(),
		Expect{Status: model.StatusAvailable},
		Change{Status: model.StatusHeld, Holder: 1, HoldTTL: time.Minute}, nil)
	assert.False(t, ok)
}

func TestHolderExpectation(t *testing.T) {
	r := New(1)
	at := time.Now()
	_, ok := r.CompareAndTransition(1, at,
		Expect{Status: model.StatusAvailable},
		Change{Status: model.StatusHeld, Holder: 10, HoldTTL: time.Minute}, nil)
	require.True(t, ok)

	_, ok = r.CompareAndTransition(1, at,
		Expect{Status: model.StatusHeld, Holder: 20, MatchHolder: true},
		Change{Status: model.StatusSold, Holder: 20}, nil)
	assert.False(t, ok, "wrong holder must not pass the expectation")

	seat, _ := r.Get(1)
	assert.Equal(t, uint64(10), seat.Holder)
	assert.Equal(t, uint64(1), seat.Version)
}

func TestExpiryExpectations(t *testing.T) {
	r := New(1)
	start := time.Now()
	_, ok := r.CompareAndTransition(1, start,
		Expect{Status: model.StatusAvailable},
		Change{Status: model.StatusHeld, Holder: 5, HoldTTL: time.Second}, nil)
	require.True(t, ok)

	// While the hold is live, ExpiredAt must not match and LiveAt must.
	_, ok = r.CompareAndTransition(1, start,
		Expect{Status: model.StatusHeld, ExpiredAt: start},
		Change{Status: model.StatusAvailable}, nil)
	assert.False(t, ok)

	later := start.Add(2 * time.Second)
	_, ok = r.CompareAndTransition(1, later,
		Expect{Status: model.StatusHeld, LiveAt: later},
		Change{Status: model.StatusSold, Holder: 5}, nil)
	assert.False(t, ok, "a lapsed hold must not satisfy LiveAt")

	seat, ok := r.CompareAndTransition(1, later,
		Expect{Status: model.StatusHeld, ExpiredAt: later},
		Change{Status: model.StatusAvailable}, nil)
	require.True(t, ok)
	assert.Equal(t, model.StatusAvailable, seat.Status)
}

func TestEmitRunsUnderLockOnSuccessOnly(t *testing.T) {
	r := New(1)
	var emitted []model.Seat
	emit := func(s model.Seat) { emitted = append(emitted, s) }

	_, ok := r.CompareAndTransition(1, time.Now(),
		Expect{Status: model.StatusHeld}, Change{Status: model.StatusSold}, emit)
	require.False(t, ok)
	assert.Empty(t, emitted, "a failed swap must not emit")

	seat, ok := r.CompareAndTransition(1, time.Now(),
		Expect{Status: model.StatusAvailable},
		Change{Status: model.StatusHeld, Holder: 7, HoldTTL: time.Minute}, emit)
	require.True(t, ok)
	require.Len(t, emitted, 1)
	assert.Equal(t, seat, emitted[0], "emit must see the post-transition record")
}

func TestConcurrentTransitionSingleWinner(t *testing.T) {
	r := New(1)
	at := time.Now()

	const contenders = 50
	var wg sync.WaitGroup
	wins := make(chan uint64, contenders)
	for i := 1; i <= contenders; i++ {
		wg.Add(1)
		go func(user uint64) {
			defer wg.Done()
			if _, ok := r.CompareAndTransition(1, at,
				Expect{Status: model.StatusAvailable},
				Change{Status: model.StatusHeld, Holder: user, HoldTTL: time.Minute}, nil); ok {
				wins <- user
			}
		}(uint64(i))
	}
	wg.Wait()
	close(wins)

	var winners []uint64
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1, "exactly one contender may win the swap")

	seat, _ := r.Get(1)
	assert.Equal(t, winners[0], seat.Holder)
	assert.Equal(t, uint64(1), seat.Version)
}
