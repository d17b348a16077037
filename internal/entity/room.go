package entity

import (
	"sync"

	"github.com/xusaitong/gomoku-backend/internal/apperror"
)

const (
	StatusWaiting = "waiting"
	StatusOngoing = "ongoing"

	RolePlayer1   = "player1"
	RolePlayer2   = "player2"
	RoleSpectator = "spectator"
)

// Room is a single game session. Slot 0 plays black, slot 1 plays white;
// the order is fixed at assignment. All mutations must run under the
// room's own lock so concurrent events on the same room never interleave.
type Room struct {
	sync.Mutex

	ID            string
	Players       []string
	CurrentPlayer string
	Board         Board
	Spectators    []string
	Status        string
}

// State is an immutable value copy of a room, safe to marshal and
// broadcast after the room lock is released.
type State struct {
	RoomID        string   `json:"room_id"`
	Players       []string `json:"players"`
	Spectators    []string `json:"spectators,omitempty"`
	CurrentPlayer string   `json:"current_player"`
	Status        string   `json:"status"`
	Board         Board    `json:"board"`
}

// Members returns every identity that should receive room broadcasts.
func (that State) Members() []string {
	members := make([]string, 0, len(that.Players)+len(that.Spectators))
	members = append(members, that.Players...)
	members = append(members, that.Spectators...)

	return members
}

// NewRoom creates a room with the creator as its sole player and first mover.
func NewRoom(id, creatorID string) *Room {
	return &Room{
		ID:            id,
		Players:       []string{creatorID},
		CurrentPlayer: creatorID,
		Status:        StatusWaiting,
	}
}

// AddPlayer fills the second slot and marks the game ongoing. A promoted
// spectator leaves the spectator list; an identity is never in both.
func (that *Room) AddPlayer(id string) {
	for i, spectator := range that.Spectators {
		if spectator == id {
			that.Spectators = append(that.Spectators[:i], that.Spectators[i+1:]...)
			break
		}
	}

	that.Players = append(that.Players, id)

	if len(that.Players) == 2 {
		that.Status = StatusOngoing
	}
}

// AddSpectator registers a read-only member. Re-joining is a no-op.
func (that *Room) AddSpectator(id string) {
	for _, spectator := range that.Spectators {
		if spectator == id {
			return
		}
	}

	that.Spectators = append(that.Spectators, id)
}

func (that *Room) HasPlayer(id string) bool {
	return that.playerIndex(id) >= 0
}

// PlaceStone validates and applies a move. Preconditions are checked in
// order: the game is running, it is the mover's turn, the mover holds a
// player slot, the coordinates are on the board, and the cell is free.
// Any failure leaves the room untouched.
func (that *Room) PlaceStone(playerID string, row, col int) (Move, error) {
	if that.Status != StatusOngoing {
		return Move{}, apperror.ErrGameNotStarted
	}

	if that.CurrentPlayer != playerID {
		return Move{}, apperror.ErrNotYourTurn
	}

	index := that.playerIndex(playerID)
	if index < 0 {
		return Move{}, apperror.ErrNotInRoom
	}

	if row < 0 || row >= BoardSize || col < 0 || col >= BoardSize {
		return Move{}, apperror.ErrInvalidCoordinate
	}

	if that.Board[row][col] != CellEmpty {
		return Move{}, apperror.ErrCellOccupied
	}

	color := CellBlack
	if index == 1 {
		color = CellWhite
	}

	that.Board[row][col] = color
	that.CurrentPlayer = that.Players[1-index]

	return Move{Row: row, Col: col, Player: color}, nil
}

// Restart clears the board and hands the turn back to the first player,
// regardless of who triggered it or who moved last. Spectators may not restart.
func (that *Room) Restart(playerID string) error {
	if !that.HasPlayer(playerID) {
		return apperror.ErrNotAPlayer
	}

	that.Board = Board{}
	that.CurrentPlayer = that.Players[0]

	return nil
}

// RemoveMember drops an identity from the room and reports whether it
// held a player slot. Losing a player reopens the room for pairing; the
// turn passes to the remaining player if the departing one held it.
func (that *Room) RemoveMember(id string) bool {
	for i, player := range that.Players {
		if player != id {
			continue
		}

		that.Players = append(that.Players[:i], that.Players[i+1:]...)
		that.Status = StatusWaiting

		if len(that.Players) == 0 {
			that.CurrentPlayer = ""
		} else if that.CurrentPlayer == id {
			that.CurrentPlayer = that.Players[0]
		}

		return true
	}

	for i, spectator := range that.Spectators {
		if spectator == id {
			that.Spectators = append(that.Spectators[:i], that.Spectators[i+1:]...)
			break
		}
	}

	return false
}

// Snapshot copies the room state for use outside the room lock.
func (that *Room) Snapshot() State {
	return State{
		RoomID:        that.ID,
		Players:       append([]string(nil), that.Players...),
		Spectators:    append([]string(nil), that.Spectators...),
		CurrentPlayer: that.CurrentPlayer,
		Status:        that.Status,
		Board:         that.Board,
	}
}

func (that *Room) playerIndex(id string) int {
	for i, player := range that.Players {
		if player == id {
			return i
		}
	}

	return -1
}
