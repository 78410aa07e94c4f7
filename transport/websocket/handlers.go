package websocket

import (
	"context"

	"github.com/rocketscienceinc/linegames-backend/internal/entity"
	"github.com/rocketscienceinc/linegames-backend/internal/usecase"
)

// Successful joins, moves and restarts are answered by the events the use case broadcasts;
// handlers only return errors.

func (that *Server) handleJoin(ctx context.Context, c *client, msg *Message) error {
	var payload JoinPayload
	if !that.decode(c, msg, &payload) {
		return nil
	}

	_, err := that.game.CreateOrJoin(ctx, usecase.JoinRequest{
		PlayerID:  c.playerID,
		Name:      payload.Name,
		Variant:   payload.Variant,
		SessionID: payload.SessionID,
	})

	return err
}

func (that *Server) handleMove(ctx context.Context, c *client, msg *Message) error {
	var payload MovePayload
	if !that.decode(c, msg, &payload) {
		return nil
	}

	_, err := that.game.Move(ctx, payload.SessionID, c.playerID, entity.Move{From: payload.From, To: *payload.To})

	return err
}

func (that *Server) handleHint(ctx context.Context, c *client, msg *Message) error {
	var payload SessionPayload
	if !that.decode(c, msg, &payload) {
		return nil
	}

	_, err := that.game.RequestHint(ctx, payload.SessionID, c.playerID)

	return err
}

func (that *Server) handleRestart(ctx context.Context, c *client, msg *Message) error {
	var payload SessionPayload
	if !that.decode(c, msg, &payload) {
		return nil
	}

	_, err := that.game.Restart(ctx, payload.SessionID, c.playerID)

	return err
}
