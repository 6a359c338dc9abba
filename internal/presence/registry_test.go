package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailview/community-service/internal/infrastructure/memory"
)

func newTestRegistry(t *testing.T) (*Registry, *time.Time) {
	t.Helper()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := memory.NewCache()
	cache.SetClock(func() time.Time { return now })
	reg := NewRegistry(cache, WithClock(func() time.Time { return now }))
	return reg, &now
}

func TestRegistry_TouchMergesAttributes(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Touch(ctx, "v1", Update{Name: "Guest"}))
	require.NoError(t, reg.Touch(ctx, "v1", Update{Name: "Guest2"}))

	active, err := reg.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "v1", active[0].ID)
	assert.Equal(t, "Guest2", active[0].Name)
}

func TestRegistry_TouchWithoutNameKeepsExisting(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Touch(ctx, "v1", Update{Name: "Curious Sparrow-2F"}))
	require.NoError(t, reg.Touch(ctx, "v1", Update{}))

	active, err := reg.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Curious Sparrow-2F", active[0].Name)
}

func TestRegistry_TouchDefaultsToGuest(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Touch(ctx, "v1", Update{}))

	active, err := reg.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Guest", active[0].Name)
}

func TestRegistry_ActivePurgesStaleEntries(t *testing.T) {
	reg, now := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Touch(ctx, "old", Update{Name: "Old"}))

	*now = now.Add(30 * time.Second)
	require.NoError(t, reg.Touch(ctx, "fresh", Update{Name: "Fresh"}))

	// 16 more seconds: "old" is now 46s stale, "fresh" 16s.
	*now = now.Add(16 * time.Second)

	active, err := reg.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "fresh", active[0].ID)

	// Purge is idempotent: a second read without touches never grows the set.
	again, err := reg.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestRegistry_ActiveSortsMostRecentFirst(t *testing.T) {
	reg, now := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Touch(ctx, "a", Update{Name: "A"}))
	*now = now.Add(time.Second)
	require.NoError(t, reg.Touch(ctx, "b", Update{Name: "B"}))
	*now = now.Add(time.Second)
	require.NoError(t, reg.Touch(ctx, "c", Update{Name: "C"}))

	active, err := reg.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{active[0].ID, active[1].ID, active[2].ID})
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Touch(ctx, "v1", Update{Name: "Guest"}))
	require.NoError(t, reg.Remove(ctx, "v1"))
	require.NoError(t, reg.Remove(ctx, "v1"))
	require.NoError(t, reg.Remove(ctx, "never-existed"))

	active, err := reg.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestRegistry_TouchAfterLapseRecreatesEntry(t *testing.T) {
	reg, now := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Touch(ctx, "v1", Update{Name: "Guest"}))

	*now = now.Add(2 * time.Minute)

	active, err := reg.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	// A late heartbeat is treated exactly like a fresh touch.
	require.NoError(t, reg.Touch(ctx, "v1", Update{Name: "Guest"}))

	active, err = reg.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "v1", active[0].ID)
}

func TestRegistry_ConcurrentTouchesLoseNothing(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		id := string(rune('a' + i))
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 20; j++ {
				_ = reg.Touch(ctx, id, Update{Name: id})
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	active, err := reg.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 8)
}
