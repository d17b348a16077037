package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/xusaitong/gomoku-backend/internal/entity"
)

// Inbound actions.
const (
	actionJoin    = "join"
	actionMove    = "move"
	actionRestart = "restart"
)

// Outbound actions.
const (
	actionGameState   = "gameState"
	actionGameStart   = "gameStart"
	actionUpdateBoard = "updateBoard"
	actionGameRestart = "gameRestart"
	actionPlayerLeft  = "playerLeft"
)

// Message is the wire envelope: an action name plus an action-specific payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type joinPayload struct {
	RoomID string `json:"room_id"`
}

type movePayload struct {
	RoomID string `json:"room_id"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

type restartPayload struct {
	RoomID string `json:"room_id"`
}

type gameStatePayload struct {
	Role          string       `json:"role"`
	Board         entity.Board `json:"board"`
	CurrentPlayer string       `json:"current_player"`
	RoomID        string       `json:"room_id"`
}

type gameStartPayload struct {
	Players []string `json:"players"`
}

type updateBoardPayload struct {
	Board         entity.Board `json:"board"`
	CurrentPlayer string       `json:"current_player"`
	LastMove      entity.Move  `json:"last_move"`
}

type gameRestartPayload struct {
	Board         entity.Board `json:"board"`
	CurrentPlayer string       `json:"current_player"`
}

type playerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// client wraps a connection with a write lock; broadcasts may reach the
// same connection from several reader goroutines at once.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (that *client) send(action string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if err = that.conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
