package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mouscache/internal/common/logging"
	"mouscache/internal/testutil"
)

type countingPurger struct {
	calls atomic.Int32
}

func (p *countingPurger) PurgeExpired() int {
	p.calls.Add(1)
	return 0
}

func TestNewReaper(t *testing.T) {
	_, err := NewReaper(nil, "", logging.NewNopLogger())
	assert.Error(t, err)

	_, err = NewReaper(NewMemory(), "not a schedule", logging.NewNopLogger())
	assert.Error(t, err)

	r, err := NewReaper(NewMemory(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultReapSchedule, r.schedule)
}

func TestReaper_Reap(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	m := NewMemory(WithClock(clock.Now))

	require.NoError(t, m.InsertWith(ctx, "a", testutil.NewUser("a"), time.Second))
	require.NoError(t, m.Insert(ctx, "b", testutil.NewUser("b")))

	r, err := NewReaper(m, "@every 1h", logging.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, 0, r.Reap())
	clock.Advance(time.Second)
	assert.Equal(t, 1, r.Reap())
	assert.Equal(t, 1, m.Len())
}

func TestReaper_StartStop(t *testing.T) {
	purger := &countingPurger{}
	r, err := NewReaper(purger, "@every 1s", logging.NewNopLogger())
	require.NoError(t, err)

	r.Start()
	r.Start()

	assert.Eventually(t, func() bool {
		return purger.calls.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)

	r.Stop()
	r.Stop()

	after := purger.calls.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, after, purger.calls.Load())
}
