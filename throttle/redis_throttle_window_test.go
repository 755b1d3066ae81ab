package throttle_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library_circulation/throttle"
)

func newMarker(t *testing.T, window time.Duration) (*throttle.Marker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return throttle.NewMarker(rdb, window), mr
}

func Test_Acquire_FiresOncePerWindow(t *testing.T) {
	m, mr := newMarker(t, time.Minute)
	ctx := context.Background()

	first, err := m.Acquire(ctx, "fines")
	require.NoError(t, err)
	second, err := m.Acquire(ctx, "fines")
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	assert.Equal(t, time.Minute, mr.TTL("library:throttle:fines"))

	mr.FastForward(time.Minute)
	third, err := m.Acquire(ctx, "fines")
	require.NoError(t, err)
	assert.True(t, third)
}

func Test_Acquire_NamesAreIndependent(t *testing.T) {
	m, _ := newMarker(t, time.Minute)
	ctx := context.Background()

	a, err := m.Acquire(ctx, "a")
	require.NoError(t, err)
	b, err := m.Acquire(ctx, "b")
	require.NoError(t, err)

	assert.True(t, a)
	assert.True(t, b)
}

func Test_Reset_ReopensWindow(t *testing.T) {
	m, mr := newMarker(t, time.Minute)
	ctx := context.Background()
	_, err := m.Acquire(ctx, "fines")
	require.NoError(t, err)

	require.NoError(t, m.Reset(ctx, "fines"))

	assert.False(t, mr.Exists("library:throttle:fines"))
	ok, err := m.Acquire(ctx, "fines")
	require.NoError(t, err)
	assert.True(t, ok)
}

func Test_Acquire_ServerErrorSurfaces(t *testing.T) {
	m, mr := newMarker(t, time.Minute)
	mr.SetError("ERR throttle down")

	ok, err := m.Acquire(context.Background(), "fines")

	assert.Error(t, err)
	assert.False(t, ok)
}
