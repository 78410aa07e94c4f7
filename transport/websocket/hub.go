package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/rocketscienceinc/linegames-backend/internal/entity"
)

const sendBufferSize = 64

// Hub keeps one live connection per player and routes events to them. It implements the
// use case Notifier.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]*client),
	}
}

// register makes c the player's connection and returns the one it replaced, if any.
func (that *Hub) register(c *client) *client {
	that.mu.Lock()
	defer that.mu.Unlock()

	previous := that.clients[c.playerID]
	that.clients[c.playerID] = c

	return previous
}

// unregister reports whether c was still the player's current connection.
func (that *Hub) unregister(c *client) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.clients[c.playerID] != c {
		return false
	}

	delete(that.clients, c.playerID)
	return true
}

func (that *Hub) connected(playerID string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, ok := that.clients[playerID]
	return ok
}

func (that *Hub) Notify(_ context.Context, event entity.Event) {
	log := that.logger.With("method", "Notify", "event", event.Type, "session_id", event.SessionID)

	if !slices.ContainsFunc(event.Recipients, that.connected) {
		log.Debug("no recipient is connected", "recipients", event.Recipients)
		return
	}

	message, err := eventMessage(event)
	if err != nil {
		log.Error("failed to marshal event", "error", err)
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Error("failed to marshal message", "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, playerID := range event.Recipients {
		c, ok := that.clients[playerID]
		if !ok {
			log.Debug("recipient is not connected", "player_id", playerID)
			continue
		}

		if !c.trySend(data) {
			log.Warn("dropping event for slow client", "player_id", playerID)
		}
	}
}
