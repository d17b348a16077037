package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xusaitong/gomoku-backend/internal/entity"
	"github.com/xusaitong/gomoku-backend/testing/suite"
)

func TestRoomRepository_Save(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage)

	// Given: a room state with one player
	state := &entity.State{
		RoomID:        "r1",
		Players:       []string{"conn-a"},
		CurrentPlayer: "conn-a",
		Status:        entity.StatusWaiting,
	}

	// When: Save is called
	err := roomRepo.Save(ctx, state)

	// Then: no error should be returned, and the state is stored
	require.NoError(t, err)
}

func TestRoomRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// Given: a saved room state with a stone on the board
		state := &entity.State{
			RoomID:        "r1",
			Players:       []string{"conn-a", "conn-b"},
			CurrentPlayer: "conn-b",
			Status:        entity.StatusOngoing,
		}
		state.Board[5][5] = entity.CellBlack

		err := roomRepo.Save(ctx, state)
		require.NoError(t, err)

		// When: GetByID is called with the existing ID
		retrieved, err := roomRepo.GetByID(ctx, state.RoomID)

		// Then: the retrieved state should match the saved state
		require.NoError(t, err)
		require.Equal(t, state.RoomID, retrieved.RoomID)
		require.Equal(t, state.Players, retrieved.Players)
		require.Equal(t, state.CurrentPlayer, retrieved.CurrentPlayer)
		require.Equal(t, entity.CellBlack, retrieved.Board[5][5])
		require.Equal(t, entity.CellEmpty, retrieved.Board[0][0])
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// When: GetByID is called with a non-existent ID
		retrieved, err := roomRepo.GetByID(ctx, "no-such-room")

		// Then: an ErrRoomNotFound error should be returned
		require.Error(t, err)
		assert.Equal(t, ErrRoomNotFound, err)
		assert.Empty(t, retrieved.RoomID)
	})
}

func TestRoomRepository_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage)

	// Given: a saved room state
	state := &entity.State{
		RoomID: "r1",
		Status: entity.StatusWaiting,
	}

	err := roomRepo.Save(ctx, state)
	require.NoError(t, err)

	// When: DeleteByID is called with the existing ID
	err = roomRepo.DeleteByID(ctx, state.RoomID)

	// Then: no error should be returned and the state is gone
	require.NoError(t, err)

	_, err = roomRepo.GetByID(ctx, state.RoomID)
	require.Error(t, err)
	assert.Equal(t, ErrRoomNotFound, err)
}
