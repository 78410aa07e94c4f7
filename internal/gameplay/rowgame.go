package gameplay

import (
	"fmt"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
	"github.com/rocketscienceinc/linegames-backend/internal/entity"
	"github.com/rocketscienceinc/linegames-backend/internal/linedetector"
)

type RowGameOptions struct {
	Size      int
	MinLength int
	// ExactLength makes only runs of exactly MinLength win.
	ExactLength bool
}

func DefaultRowGameOptions() RowGameOptions {
	return RowGameOptions{Size: 15, MinLength: linedetector.DefaultMinLength}
}

// RowGame is a two-player N-in-a-row game where X moves first.
type RowGame struct {
	variant entity.Variant
	opts    RowGameOptions
}

func NewRowGame(variant entity.Variant, opts RowGameOptions) *RowGame {
	return &RowGame{variant: variant, opts: opts}
}

func (that *RowGame) Variant() entity.Variant {
	return that.variant
}

func (that *RowGame) Capacity() int {
	return 2
}

func (that *RowGame) NewGame(id string) *entity.Game {
	game := &entity.Game{
		ID:      id,
		Variant: that.variant,
		Status:  entity.StatusWaiting,
	}
	that.Reset(game)

	return game
}

func (that *RowGame) Reset(game *entity.Game) {
	game.Board = entity.NewBoard(that.opts.Size)
	game.Turn = entity.TokenX
	game.Winner = entity.Empty
	game.WinnerID = ""
	game.WinningCells = nil
}

func (that *RowGame) Validate(game *entity.Game, _ *entity.Player, move entity.Move) error {
	if !game.Board.InBounds(move.To) {
		return fmt.Errorf("%w: %s", apperror.ErrInvalidPosition, move.To)
	}

	if !game.Board.IsEmpty(move.To) {
		return fmt.Errorf("%w: %s", apperror.ErrCellOccupied, move.To)
	}

	return nil
}

// Apply places the stone and checks only the lines through it.
func (that *RowGame) Apply(game *entity.Game, player *entity.Player, move entity.Move) Outcome {
	game.Board.Set(move.To, player.Mark)

	if run, ok := linedetector.RunThrough(game.Board, move.To, that.opts.MinLength, that.opts.ExactLength); ok {
		game.Status = entity.StatusFinished
		game.Winner = player.Mark
		game.WinnerID = player.ID
		game.WinningCells = run.Cells
		game.Turn = entity.Empty

		return Outcome{Runs: []linedetector.Run{run}, Finished: true}
	}

	if game.Board.IsFull() {
		game.Status = entity.StatusFinished
		game.Turn = entity.Empty

		return Outcome{Finished: true}
	}

	game.Turn = entity.ToggleMark(player.Mark)

	return Outcome{}
}
