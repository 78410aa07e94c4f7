// Package gameplay is the per-session turn state machine. It validates and applies one
// request at a time against an *entity.Game; callers serialise access per session.
package gameplay

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
	"github.com/rocketscienceinc/linegames-backend/internal/entity"
)

type Machine struct {
	rules map[entity.Variant]Rules
	now   func() time.Time
}

func NewMachine(rules ...Rules) *Machine {
	machine := &Machine{
		rules: make(map[entity.Variant]Rules, len(rules)),
		now:   time.Now,
	}

	for _, r := range rules {
		machine.rules[r.Variant()] = r
	}

	return machine
}

func (that *Machine) Rules(variant entity.Variant) (Rules, error) {
	r, ok := that.rules[variant]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownVariant, variant)
	}

	return r, nil
}

// NewGame creates a game in the waiting state with no players.
func (that *Machine) NewGame(id string, variant entity.Variant) (*entity.Game, error) {
	r, err := that.Rules(variant)
	if err != nil {
		return nil, err
	}

	game := r.NewGame(id)
	game.CreatedAt = that.now()
	game.UpdatedAt = game.CreatedAt

	return game, nil
}

// Join adds a player and activates the game once it has its full player count.
// The player's mark is assigned by join order: X first, O second.
func (that *Machine) Join(game *entity.Game, player *entity.Player) error {
	r, err := that.Rules(game.Variant)
	if err != nil {
		return err
	}

	if _, ok := game.PlayerByID(player.ID); ok {
		return fmt.Errorf("%w: game %s", apperror.ErrAlreadyInGame, game.ID)
	}

	if !game.IsWaiting() || len(game.Players) >= r.Capacity() {
		return fmt.Errorf("%w: game %s", apperror.ErrGameNotJoinable, game.ID)
	}

	if game.Variant.IsRowGame() {
		player.Mark = entity.TokenX
		if len(game.Players) > 0 {
			player.Mark = entity.ToggleMark(game.Players[0].Mark)
		}
	}

	game.Players = append(game.Players, player)
	if len(game.Players) == r.Capacity() {
		game.Status = entity.StatusActive
	}
	game.UpdatedAt = that.now()

	return nil
}

// ApplyMove validates in order: active status, membership, turn, then the variant's position
// rules. A rejected move leaves the game untouched.
func (that *Machine) ApplyMove(game *entity.Game, playerID string, move entity.Move) (Outcome, error) {
	r, err := that.Rules(game.Variant)
	if err != nil {
		return Outcome{}, err
	}

	if err = game.ConfirmActiveState(); err != nil {
		return Outcome{}, err
	}

	player, ok := game.PlayerByID(playerID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: player %s, game %s", apperror.ErrNotInGame, playerID, game.ID)
	}

	if game.Variant.IsRowGame() && game.Turn != player.Mark {
		return Outcome{}, apperror.ErrNotYourTurn
	}

	if err = r.Validate(game, player, move); err != nil {
		return Outcome{}, fmt.Errorf("invalid move: %w", err)
	}

	outcome := r.Apply(game, player, move)
	game.UpdatedAt = that.now()

	return outcome, nil
}

// Restart is only valid for a finished game and returns it to the active state with a fresh
// board.
func (that *Machine) Restart(game *entity.Game) error {
	r, err := that.Rules(game.Variant)
	if err != nil {
		return err
	}

	if !game.IsFinished() {
		return fmt.Errorf("%w: status %s", apperror.ErrRestartOnUnfinishedGame, game.Status)
	}

	r.Reset(game)
	game.Status = entity.StatusActive
	game.UpdatedAt = that.now()

	return nil
}
