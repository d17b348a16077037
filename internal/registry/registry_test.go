package registry

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xusaitong/gomoku-backend/internal/entity"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	t.Run("Creates a fresh room for an unknown ID", func(t *testing.T) {
		// Given: an empty registry
		reg := New()

		// When: GetOrCreate is called with an unknown room ID
		room, created := reg.GetOrCreate("r1", "conn-a")

		// Then: a waiting room exists with the creator as sole player
		require.True(t, created)
		require.Equal(t, []string{"conn-a"}, room.Players)
		require.Equal(t, entity.StatusWaiting, room.Status)
		require.Equal(t, 1, reg.Len())
	})

	t.Run("Returns the existing room for a known ID", func(t *testing.T) {
		// Given: a registry holding room r1
		reg := New()
		first, _ := reg.GetOrCreate("r1", "conn-a")

		// When: another connection asks for the same room
		second, created := reg.GetOrCreate("r1", "conn-b")

		// Then: the same room comes back and nothing new is created
		require.False(t, created)
		require.Same(t, first, second)
		require.Equal(t, []string{"conn-a"}, second.Players)
	})

	t.Run("Join race on a fresh ID creates exactly one room", func(t *testing.T) {
		// Given: an empty registry and many racing joiners
		reg := New()

		var wg sync.WaitGroup
		var createdCount atomic.Int32

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, created := reg.GetOrCreate("r1", fmt.Sprintf("conn-%d", i))
				if created {
					createdCount.Add(1)
				}
			}(i)
		}
		wg.Wait()

		// Then: exactly one goroutine created the room
		require.Equal(t, int32(1), createdCount.Load())
		require.Equal(t, 1, reg.Len())
	})
}

func TestRegistry_Delete(t *testing.T) {
	// Given: a registry holding room r1
	reg := New()
	reg.GetOrCreate("r1", "conn-a")

	// When: the room is deleted
	reg.Delete("r1")

	// Then: lookups miss and the registry is empty
	_, ok := reg.Get("r1")
	require.False(t, ok)
	require.Zero(t, reg.Len())
}

func TestRegistry_DeleteIfEmpty(t *testing.T) {
	t.Run("Deletes a room whose player slots emptied", func(t *testing.T) {
		// Given: a room whose last player was removed
		reg := New()
		room, _ := reg.GetOrCreate("r1", "conn-a")
		room.Lock()
		room.RemoveMember("conn-a")
		room.Unlock()

		// When: teardown runs
		deleted := reg.DeleteIfEmpty("r1")

		// Then: the room is gone
		require.True(t, deleted)
		_, ok := reg.Get("r1")
		require.False(t, ok)
	})

	t.Run("Keeps a room that a join repopulated before teardown", func(t *testing.T) {
		// Given: a room emptied by a departure
		reg := New()
		room, _ := reg.GetOrCreate("r1", "conn-a")
		room.Lock()
		room.RemoveMember("conn-a")
		room.Unlock()

		// When: a joiner slips in before the teardown check
		room.Lock()
		room.AddPlayer("conn-b")
		room.Unlock()
		deleted := reg.DeleteIfEmpty("r1")

		// Then: the room survives and stays registered for the joiner
		require.False(t, deleted)
		kept, ok := reg.Get("r1")
		require.True(t, ok)
		require.Same(t, room, kept)
	})

	t.Run("Unknown room is a no-op", func(t *testing.T) {
		reg := New()

		require.False(t, reg.DeleteIfEmpty("nowhere"))
	})
}

func TestRegistry_ForEach(t *testing.T) {
	// Given: a registry holding two rooms
	reg := New()
	reg.GetOrCreate("r1", "conn-a")
	reg.GetOrCreate("r2", "conn-b")

	// When: iterating over all rooms
	seen := make(map[string]bool)
	reg.ForEach(func(room *entity.Room) {
		seen[room.ID] = true
	})

	// Then: every room is visited once
	assert.Equal(t, map[string]bool{"r1": true, "r2": true}, seen)
}
