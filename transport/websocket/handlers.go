package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xusaitong/gomoku-backend/internal/apperror"
)

func (that *Server) handleJoin(ctx context.Context, connID string, msg *Message) error {
	log := that.logger.With("method", "handleJoin", "connID", connID)

	var payloadReq joinPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	result := that.rooms.JoinRoom(ctx, payloadReq.RoomID, connID)

	payloadResp := gameStatePayload{
		Role:          result.Role,
		Board:         result.State.Board,
		CurrentPlayer: result.State.CurrentPlayer,
		RoomID:        result.State.RoomID,
	}

	if err := that.sendToConnection(connID, actionGameState, payloadResp); err != nil {
		return fmt.Errorf("failed to send game state: %w", err)
	}

	// The join that fills the second slot starts the game for everyone,
	// the first player included.
	if result.Started {
		that.broadcast(result.State.Members(), actionGameStart, gameStartPayload{
			Players: result.State.Players,
		})
	}

	log.Info("join handled", "roomID", result.State.RoomID, "role", result.Role)

	return nil
}

func (that *Server) handleMove(ctx context.Context, connID string, msg *Message) error {
	var payloadReq movePayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	result, err := that.rooms.MakeMove(ctx, payloadReq.RoomID, connID, payloadReq.Row, payloadReq.Col)
	if isRejection(err) {
		return that.sendErrorResponse(connID, msg.Action, err.Error())
	}

	if err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	that.broadcast(result.State.Members(), actionUpdateBoard, updateBoardPayload{
		Board:         result.State.Board,
		CurrentPlayer: result.State.CurrentPlayer,
		LastMove:      result.LastMove,
	})

	return nil
}

func (that *Server) handleRestart(ctx context.Context, connID string, msg *Message) error {
	var payloadReq restartPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	state, err := that.rooms.RestartGame(ctx, payloadReq.RoomID, connID)
	if isRejection(err) {
		return that.sendErrorResponse(connID, msg.Action, err.Error())
	}

	if err != nil {
		return fmt.Errorf("failed to restart game: %w", err)
	}

	that.broadcast(state.Members(), actionGameRestart, gameRestartPayload{
		Board:         state.Board,
		CurrentPlayer: state.CurrentPlayer,
	})

	return nil
}

// handleDisconnect runs exactly once per connection, after its read loop exits.
func (that *Server) handleDisconnect(ctx context.Context, connID string) {
	log := that.logger.With("method", "handleDisconnect", "connID", connID)

	that.connectionsMutex.Lock()
	delete(that.connections, connID)
	that.connectionsMutex.Unlock()

	for _, departure := range that.rooms.Disconnect(ctx, connID) {
		if !departure.WasPlayer {
			continue
		}

		that.broadcast(departure.State.Members(), actionPlayerLeft, playerLeftPayload{
			PlayerID: departure.PlayerID,
		})
	}

	log.Info("connection cleaned up")
}

// broadcast sends a message to every listed room member that is still connected.
func (that *Server) broadcast(members []string, action string, payload any) {
	log := that.logger.With("method", "broadcast", "action", action)

	for _, memberID := range members {
		that.connectionsMutex.RLock()
		conn, ok := that.connections[memberID]
		that.connectionsMutex.RUnlock()

		if !ok {
			log.Warn("connection not found for member", "memberID", memberID)
			continue
		}

		if err := conn.send(action, payload); err != nil {
			log.Error("failed to send room update", "memberID", memberID, "error", err)
		}
	}
}

func (that *Server) sendToConnection(connID, action string, payload any) error {
	that.connectionsMutex.RLock()
	conn, ok := that.connections[connID]
	that.connectionsMutex.RUnlock()

	if !ok {
		return fmt.Errorf("connection %s not found", connID)
	}

	return conn.send(action, payload)
}

// sendErrorResponse answers a rejected event to its initiator only; the
// room sees nothing.
func (that *Server) sendErrorResponse(connID, action string, errorMsg string) error {
	if err := that.sendToConnection(connID, action, errorPayload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

// isRejection reports whether the error is an illegal game action rather
// than an internal failure.
func isRejection(err error) bool {
	return errors.Is(err, apperror.ErrRoomNotFound) ||
		errors.Is(err, apperror.ErrGameNotStarted) ||
		errors.Is(err, apperror.ErrNotYourTurn) ||
		errors.Is(err, apperror.ErrNotInRoom) ||
		errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrInvalidCoordinate) ||
		errors.Is(err, apperror.ErrNotAPlayer)
}
