package apperror

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrGameNotStarted    = errors.New("game is not started")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrNotInRoom         = errors.New("player is not in the room")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrInvalidCoordinate = errors.New("coordinate is out of board range")
	ErrNotAPlayer        = errors.New("only players can restart the game")
)
