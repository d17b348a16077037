package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/xusaitong/gomoku-backend/internal/entity"
)

var ErrRoomNotFound = errors.New("room snapshot not found")

// RoomRepository keeps write-through snapshots of room state. The
// in-memory registry stays authoritative; these records exist for
// inspection and recovery, never for request handling.
type RoomRepository interface {
	Save(ctx context.Context, state *entity.State) error
	GetByID(ctx context.Context, id string) (*entity.State, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func (that *dbRoom) Save(ctx context.Context, state *entity.State) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("could not marshal room state: %w", err)
	}

	roomKey := "room:" + state.RoomID
	err = that.client.Set(ctx, roomKey, stateJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set room state: %w", err)
	}

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.State, error) {
	roomKey := "room:" + id

	response, err := that.client.Get(ctx, roomKey).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.State{}, ErrRoomNotFound
	}

	if err != nil {
		return &entity.State{}, fmt.Errorf("failed to get room state by ID: %w", err)
	}

	var state entity.State
	if err = json.Unmarshal([]byte(response), &state); err != nil {
		return &entity.State{}, fmt.Errorf("failed to unmarshal room state: %w", err)
	}

	return &state, nil
}

func (that *dbRoom) DeleteByID(ctx context.Context, id string) error {
	roomKey := "room:" + id

	err := that.client.Del(ctx, roomKey).Err()
	if err != nil {
		return fmt.Errorf("failed to delete room state by ID: %w", err)
	}

	return nil
}
