// Package session runs one goroutine per game session. The goroutine owns the *entity.Game and
// executes every read or mutation submitted through Do, one at a time.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/linegames-backend/internal/entity"
)

var ErrSessionClosed = errors.New("session is closed")

type request struct {
	fn   func(game *entity.Game) error
	done chan error
}

type Actor struct {
	id     string
	game   *entity.Game
	inbox  chan request
	quit   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// Start launches the loop owning game. The caller must not touch game afterwards.
func Start(logger *slog.Logger, game *entity.Game) *Actor {
	actor := &Actor{
		id:     game.ID,
		game:   game,
		inbox:  make(chan request),
		quit:   make(chan struct{}),
		logger: logger.With("session_id", game.ID),
	}

	go actor.loop()

	return actor
}

func (that *Actor) ID() string {
	return that.id
}

func (that *Actor) loop() {
	that.logger.Debug("session started")

	for {
		select {
		case req := <-that.inbox:
			req.done <- req.fn(that.game)
		case <-that.quit:
			that.logger.Debug("session stopped")
			return
		}
	}
}

// Do runs fn on the session goroutine and waits for its result. A mutation that fails must
// leave the game untouched.
func (that *Actor) Do(ctx context.Context, fn func(game *entity.Game) error) error {
	select {
	case <-that.quit:
		return ErrSessionClosed
	default:
	}

	req := request{fn: fn, done: make(chan error, 1)}

	select {
	case that.inbox <- req:
	case <-that.quit:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// once accepted the request always completes, so the caller never observes a half-applied move
	return <-req.done
}

// Snapshot returns a deep copy of the current game.
func (that *Actor) Snapshot(ctx context.Context) (*entity.Game, error) {
	var snapshot *entity.Game

	err := that.Do(ctx, func(game *entity.Game) error {
		snapshot = game.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// Stop terminates the loop. It is safe to call more than once.
func (that *Actor) Stop() {
	that.once.Do(func() {
		close(that.quit)
	})
}
