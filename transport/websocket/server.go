package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/linegames-backend/internal/entity"
	"github.com/rocketscienceinc/linegames-backend/internal/usecase"
)

const (
	playerCookieName = "player_id"
	shutdownTimeout  = 5 * time.Second
)

type handler func(ctx context.Context, c *client, msg *Message) error

type Server struct {
	logger   *slog.Logger
	hub      *Hub
	game     usecase.GameUseCase
	validate *validator.Validate
	upgrader websocket.Upgrader

	handlers map[string]handler
}

func New(logger *slog.Logger, hub *Hub, game usecase.GameUseCase) *Server {
	server := &Server{
		logger:   logger,
		hub:      hub,
		game:     game,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the game is served to browsers on other origins
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers: make(map[string]handler),
	}

	server.handlers[actionJoin] = server.handleJoin
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionHint] = server.handleHint
	server.handlers[actionRestart] = server.handleRestart

	return server
}

func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	playerID, header := that.playerID(r)

	conn, err := that.upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(playerID, conn)
	if previous := that.hub.register(c); previous != nil {
		previous.close()
	}

	go c.writePump()

	log = log.With("player_id", playerID)
	log.Info("WebSocket connection established")

	that.reply(c, actionConnect, Payload{Player: &entity.Player{ID: playerID}})
	that.readLoop(ctx, c)

	c.close()
	if that.hub.unregister(c) {
		if err = that.game.Disconnect(context.WithoutCancel(ctx), playerID); err != nil {
			log.Error("failed to disconnect player", "error", err)
		}
	}

	log.Info("WebSocket connection closed")
}

// playerID reads the player cookie, issuing a new id when there is none.
func (that *Server) playerID(r *http.Request) (string, http.Header) {
	if cookie, err := r.Cookie(playerCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	id := uuid.NewString()
	cookie := &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		Path:     "/",
		HttpOnly: true,
	}

	header := http.Header{}
	header.Add("Set-Cookie", cookie.String())

	that.logger.Info("player cookie not found, new one created", "player_id", id)

	return id, header
}

func (that *Server) readLoop(ctx context.Context, c *client) {
	log := that.logger.With("method", "readLoop", "player_id", c.playerID)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			that.replyError(c, "", codeInvalidPayload, "message is not valid JSON")
			continue
		}

		h, ok := that.handlers[message.Action]
		if !ok {
			that.replyError(c, message.Action, codeUnknownAction, fmt.Sprintf("unknown action %q", message.Action))
			continue
		}

		if err = h(ctx, c, &message); err != nil {
			log.Debug("request rejected", "action", message.Action, "error", err)
			that.replyError(c, message.Action, errorCode(err), err.Error())
		}
	}
}

// decode unmarshals and validates a payload. Its errors are reported as invalid payloads.
func (that *Server) decode(c *client, msg *Message, dst any) bool {
	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		that.replyError(c, msg.Action, codeInvalidPayload, "failed to unmarshal payload")
		return false
	}

	if err := that.validate.Struct(dst); err != nil {
		that.replyError(c, msg.Action, codeInvalidPayload, err.Error())
		return false
	}

	return true
}

func (that *Server) reply(c *client, action string, payload Payload) {
	data, err := json.Marshal(payload)
	if err != nil {
		that.logger.Error("failed to marshal payload", "error", err)
		return
	}

	message, err := json.Marshal(Message{Action: action, Payload: data})
	if err != nil {
		that.logger.Error("failed to marshal message", "error", err)
		return
	}

	if !c.trySend(message) {
		that.logger.Warn("dropping reply for slow client", "player_id", c.playerID, "action", action)
	}
}

func (that *Server) replyError(c *client, action, code, text string) {
	that.reply(c, actionError, Payload{Action: action, Code: code, Error: text})
}
