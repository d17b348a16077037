package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/xusaitong/gomoku-backend/internal/apperror"
	"github.com/xusaitong/gomoku-backend/internal/entity"
	"github.com/xusaitong/gomoku-backend/internal/registry"
)

type roomRepo interface {
	Save(ctx context.Context, state *entity.State) error
	DeleteByID(ctx context.Context, id string) error
}

// RoomManager applies connection events to rooms and computes what the
// transport should send out. Every event takes the target room's lock, so
// two events on the same room never interleave their read-modify-write.
type RoomManager struct {
	logger   *slog.Logger
	registry *registry.Registry
	roomRepo roomRepo

	// reverse index connection -> room IDs, so a disconnect does not
	// have to scan the whole registry.
	indexMu sync.Mutex
	index   map[string]map[string]struct{}
}

func NewRoomManager(logger *slog.Logger, reg *registry.Registry, roomRepo roomRepo) *RoomManager {
	return &RoomManager{
		logger:   logger,
		registry: reg,
		roomRepo: roomRepo,

		index: make(map[string]map[string]struct{}),
	}
}

// JoinResult describes the outcome of a join: the role handed to the
// joining connection and the room state to reply with. Started is set
// when this join completed the pairing.
type JoinResult struct {
	Role    string
	Started bool
	State   entity.State
}

// MoveResult carries the room state after an accepted move.
type MoveResult struct {
	State    entity.State
	LastMove entity.Move
}

// Departure describes one room a disconnected identity was removed from.
type Departure struct {
	RoomID     string
	PlayerID   string
	WasPlayer  bool
	RoomClosed bool
	State      entity.State
}

// JoinRoom assigns a role to the connection: first player if the room is
// new, second player if exactly one slot is taken by someone else, and
// spectator otherwise. Joining never fails.
func (that *RoomManager) JoinRoom(ctx context.Context, roomID, connID string) JoinResult {
	log := that.logger.With("method", "JoinRoom")

	room, created := that.registry.GetOrCreate(roomID, connID)

	room.Lock()
	var result JoinResult
	switch {
	case created:
		result.Role = entity.RolePlayer1
	case room.Status == entity.StatusWaiting && !room.HasPlayer(connID):
		room.AddPlayer(connID)
		result.Role = entity.RolePlayer2
		result.Started = true
	default:
		// A re-joining player keeps its slot but is answered as a
		// spectator; an identity is never in both member lists.
		if !room.HasPlayer(connID) {
			room.AddSpectator(connID)
		}
		result.Role = entity.RoleSpectator
	}
	result.State = room.Snapshot()
	room.Unlock()

	that.trackMembership(connID, roomID)
	that.saveSnapshot(ctx, &result.State)

	log.Info("connection joined room", "roomID", roomID, "connID", connID, "role", result.Role)

	return result
}

// MakeMove places a stone for the connection. A rejected move returns a
// sentinel error and leaves the room untouched.
func (that *RoomManager) MakeMove(ctx context.Context, roomID, connID string, row, col int) (*MoveResult, error) {
	room, ok := that.registry.Get(roomID)
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	room.Lock()
	move, err := room.PlaceStone(connID, row, col)
	if err != nil {
		room.Unlock()
		return nil, err
	}
	state := room.Snapshot()
	room.Unlock()

	that.saveSnapshot(ctx, &state)

	return &MoveResult{State: state, LastMove: move}, nil
}

// RestartGame resets the board. Only a player slot holder may restart;
// the first player always moves first afterwards.
func (that *RoomManager) RestartGame(ctx context.Context, roomID, connID string) (*entity.State, error) {
	room, ok := that.registry.Get(roomID)
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	room.Lock()
	if err := room.Restart(connID); err != nil {
		room.Unlock()
		return nil, err
	}
	state := room.Snapshot()
	room.Unlock()

	that.saveSnapshot(ctx, &state)

	return &state, nil
}

// Disconnect removes the connection from every room it participates in.
// A room whose player slots become empty is deleted; spectator-only
// departures are silent.
func (that *RoomManager) Disconnect(ctx context.Context, connID string) []Departure {
	log := that.logger.With("method", "Disconnect")

	var departures []Departure

	for _, roomID := range that.dropMembership(connID) {
		room, ok := that.registry.Get(roomID)
		if !ok {
			continue
		}

		room.Lock()
		wasPlayer := room.RemoveMember(connID)
		state := room.Snapshot()
		room.Unlock()

		// Teardown is decided under the registry lock, so a join that
		// slipped in after the removal keeps the room alive.
		closed := that.registry.DeleteIfEmpty(roomID)
		if closed {
			that.deleteSnapshot(ctx, roomID)
			log.Info("room closed", "roomID", roomID)
		} else {
			that.saveSnapshot(ctx, &state)
		}

		departures = append(departures, Departure{
			RoomID:     roomID,
			PlayerID:   connID,
			WasPlayer:  wasPlayer,
			RoomClosed: closed,
			State:      state,
		})
	}

	return departures
}

// Rooms lists a state snapshot of every live room.
func (that *RoomManager) Rooms() []entity.State {
	states := make([]entity.State, 0, that.registry.Len())

	that.registry.ForEach(func(room *entity.Room) {
		room.Lock()
		states = append(states, room.Snapshot())
		room.Unlock()
	})

	return states
}

func (that *RoomManager) trackMembership(connID, roomID string) {
	that.indexMu.Lock()
	defer that.indexMu.Unlock()

	rooms, ok := that.index[connID]
	if !ok {
		rooms = make(map[string]struct{})
		that.index[connID] = rooms
	}

	rooms[roomID] = struct{}{}
}

func (that *RoomManager) dropMembership(connID string) []string {
	that.indexMu.Lock()
	defer that.indexMu.Unlock()

	roomIDs := make([]string, 0, len(that.index[connID]))
	for roomID := range that.index[connID] {
		roomIDs = append(roomIDs, roomID)
	}

	delete(that.index, connID)

	return roomIDs
}

// saveSnapshot persists room state best-effort; a storage failure never
// changes the outcome of the event that produced the state.
func (that *RoomManager) saveSnapshot(ctx context.Context, state *entity.State) {
	if err := that.roomRepo.Save(ctx, state); err != nil {
		that.logger.Error("failed to save room snapshot", "roomID", state.RoomID, "error", err)
	}
}

func (that *RoomManager) deleteSnapshot(ctx context.Context, roomID string) {
	if err := that.roomRepo.DeleteByID(ctx, roomID); err != nil {
		that.logger.Error("failed to delete room snapshot", "roomID", roomID, "error", err)
	}
}
