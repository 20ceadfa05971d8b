package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreshness(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	s := New()
	s.WithNow(func() time.Time { return now })

	key := CollectionKey(Products)
	s.Set(key, "v1")

	v, ok := s.Fresh(key, 5*time.Minute)
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	// Age past the stale time: Get still serves, Fresh does not.
	now = now.Add(5 * time.Minute)
	_, ok = s.Fresh(key, 5*time.Minute)
	assert.False(t, ok)
	v, ok = s.Get(key)
	require.True(t, ok)
	assert.Equal(t, "v1", v)
}

func TestInvalidateKeepsValue(t *testing.T) {
	s := New()
	key := CollectionKey(Orders)
	s.Set(key, "v1")

	s.Invalidate(key)

	_, ok := s.Fresh(key, time.Hour)
	assert.False(t, ok)
	v, ok := s.Get(key)
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	// A rewrite clears the stale mark.
	s.Set(key, "v2")
	v, ok = s.Fresh(key, time.Hour)
	require.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestSnapshotRestore(t *testing.T) {
	s := New()
	present := EntityKey(Products, "p1")
	absent := EntityKey(Products, "p2")
	s.Set(present, "original")

	snap := s.Snapshot(present, absent)

	s.Set(present, "optimistic")
	s.Set(absent, "conjured")

	snap.Restore()

	v, ok := s.Get(present)
	require.True(t, ok)
	assert.Equal(t, "original", v)

	// A key absent at capture time is absent again after restore.
	_, ok = s.Get(absent)
	assert.False(t, ok)
}

func TestSnapshotRestorePreservesFreshness(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	s := New()
	s.WithNow(func() time.Time { return now })

	key := CollectionKey(Users)
	s.Set(key, "v1")
	snap := s.Snapshot(key)

	now = now.Add(time.Minute)
	s.Set(key, "optimistic")
	snap.Restore()

	// The restored entry carries its original fetch time, not the
	// restore time.
	_, ok := s.Fresh(key, time.Minute)
	assert.False(t, ok)
}

func TestCancelInflight(t *testing.T) {
	s := New()
	key := CollectionKey(Products)

	ctx, cancel := context.WithCancel(context.Background())
	s.TrackInflight(key, cancel)

	s.CancelInflight(key)
	assert.Error(t, ctx.Err())

	// Cancelling again is a no-op.
	s.CancelInflight(key)
}

func TestClearInflightRemovesOnlyOwnToken(t *testing.T) {
	s := New()
	key := CollectionKey(Products)

	ctx1, cancel1 := context.WithCancel(context.Background())
	token1 := s.TrackInflight(key, cancel1)

	// A concurrent fetch on the same key gets its own registration; one
	// fetch's clear must not unregister the other.
	ctx2, cancel2 := context.WithCancel(context.Background())
	s.TrackInflight(key, cancel2)
	assert.True(t, s.ClearInflight(key, token1))
	assert.False(t, s.ClearInflight(key, token1))

	s.CancelInflight(key)
	assert.NoError(t, ctx1.Err())
	assert.Error(t, ctx2.Err())
}

func TestCancelInflightAllRegistrations(t *testing.T) {
	s := New()
	key := CollectionKey(Products)

	ctx1, cancel1 := context.WithCancel(context.Background())
	token1 := s.TrackInflight(key, cancel1)
	ctx2, cancel2 := context.WithCancel(context.Background())
	token2 := s.TrackInflight(key, cancel2)

	s.CancelInflight(key)
	assert.Error(t, ctx1.Err())
	assert.Error(t, ctx2.Err())
	assert.False(t, s.ClearInflight(key, token1))
	assert.False(t, s.ClearInflight(key, token2))
}

func TestSetIfInflight(t *testing.T) {
	s := New()
	key := CollectionKey(Products)

	_, cancel1 := context.WithCancel(context.Background())
	token1 := s.TrackInflight(key, cancel1)
	assert.True(t, s.SetIfInflight(key, token1, "fetched"))
	s.ClearInflight(key, token1)

	// Once a mutation cancelled the registration, the write is refused
	// and the previous value survives.
	_, cancel2 := context.WithCancel(context.Background())
	token2 := s.TrackInflight(key, cancel2)
	s.CancelInflight(key)
	assert.False(t, s.SetIfInflight(key, token2, "stale"))

	v, ok := s.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "fetched", v)
}
