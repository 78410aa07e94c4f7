package usecase

import (
	"context"

	"github.com/rocketscienceinc/linegames-backend/internal/entity"
)

// GameUseCase is the inbound surface used by the transports. The player id is always supplied
// by the transport and is trusted as-is.
type GameUseCase interface {
	CreateOrJoin(ctx context.Context, req JoinRequest) (*JoinResult, error)
	Move(ctx context.Context, sessionID, playerID string, move entity.Move) (*entity.Game, error)
	RequestHint(ctx context.Context, sessionID, playerID string) (entity.Move, error)
	Restart(ctx context.Context, sessionID, playerID string) (*entity.Game, error)
	Disconnect(ctx context.Context, playerID string) error

	GetSession(ctx context.Context, sessionID string) (*entity.Game, error)
}

type JoinRequest struct {
	PlayerID  string
	Name      string
	Variant   entity.Variant
	SessionID string
}

// JoinResult carries either the joined game or, for matchmaking without a partner yet, Queued.
type JoinResult struct {
	Game   *entity.Game
	Queued bool
}

// Notifier delivers outbound events to the event's recipients.
type Notifier interface {
	Notify(ctx context.Context, event entity.Event)
}
