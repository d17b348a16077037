package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/xusaitong/gomoku-backend/internal/entity"
	"github.com/xusaitong/gomoku-backend/internal/usecase"
)

type roomManager interface {
	JoinRoom(ctx context.Context, roomID, connID string) usecase.JoinResult
	MakeMove(ctx context.Context, roomID, connID string, row, col int) (*usecase.MoveResult, error)
	RestartGame(ctx context.Context, roomID, connID string) (*entity.State, error)
	Disconnect(ctx context.Context, connID string) []usecase.Departure
}

type Server struct {
	logger *slog.Logger
	rooms  roomManager

	upgrader websocket.Upgrader

	connectionsMutex sync.RWMutex
	connections      map[string]*client

	handlers map[string]func(ctx context.Context, connID string, message *Message) error
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	server := &Server{
		logger: logger,
		rooms:  rooms,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},

		connections: make(map[string]*client),
		handlers:    make(map[string]func(context.Context, string, *Message) error),
	}

	server.handlers[actionJoin] = server.handleJoin
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionRestart] = server.handleRestart

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.handleConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		if err := srv.Close(); err != nil {
			that.logger.Error("failed to close websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// handleConnection upgrades the request, assigns the connection its
// identity for life, and runs the read loop until the peer goes away.
func (that *Server) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleConnection")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	connID := uuid.NewString()

	that.connectionsMutex.Lock()
	that.connections[connID] = &client{conn: conn}
	that.connectionsMutex.Unlock()

	log.Info("WebSocket connection established", "connID", connID)

	that.readMessages(ctx, connID, conn)

	that.handleDisconnect(ctx, connID)

	if err = conn.Close(); err != nil {
		log.Error("failed to close connection", "connID", connID, "error", err)
	}
}

// readMessages - processes messages from the client until the connection drops.
func (that *Server) readMessages(ctx context.Context, connID string, conn *websocket.Conn) {
	log := that.logger.With("method", "readMessages", "connID", connID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, connID, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
