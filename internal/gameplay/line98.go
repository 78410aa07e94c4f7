package gameplay

import (
	"fmt"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
	"github.com/rocketscienceinc/linegames-backend/internal/entity"
	"github.com/rocketscienceinc/linegames-backend/internal/linedetector"
	"github.com/rocketscienceinc/linegames-backend/internal/pathfinder"
)

type Line98Options struct {
	Size         int
	Colors       int
	InitialBalls int
	SpawnCount   int
	MinLength    int
}

func DefaultLine98Options() Line98Options {
	return Line98Options{
		Size:         9,
		Colors:       7,
		InitialBalls: 3,
		SpawnCount:   3,
		MinLength:    linedetector.DefaultMinLength,
	}
}

// Line98 is the single-player elimination puzzle.
type Line98 struct {
	opts   Line98Options
	random Random
}

func NewLine98(opts Line98Options, random Random) *Line98 {
	if random == nil {
		random = globalRandom{}
	}

	return &Line98{opts: opts, random: random}
}

func (that *Line98) Variant() entity.Variant {
	return entity.VariantLine98
}

func (that *Line98) Capacity() int {
	return 1
}

func (that *Line98) NewGame(id string) *entity.Game {
	game := &entity.Game{
		ID:      id,
		Variant: entity.VariantLine98,
		Status:  entity.StatusWaiting,
	}
	that.Reset(game)
	game.Status = entity.StatusWaiting

	return game
}

func (that *Line98) Reset(game *entity.Game) {
	game.Board = entity.NewBoard(that.opts.Size)
	game.Score = 0
	game.Winner = entity.Empty
	game.WinnerID = ""
	game.WinningCells = nil

	initial := make([]entity.Token, that.opts.InitialBalls)
	for i := range initial {
		initial[i] = that.randomColor()
	}

	game.Spawned = that.spawn(game.Board, initial)
	game.Pending = that.nextColors()
}

func (that *Line98) Validate(game *entity.Game, _ *entity.Player, move entity.Move) error {
	board := game.Board

	if move.From == nil {
		return fmt.Errorf("%w: source cell is required", apperror.ErrInvalidPosition)
	}

	from, to := *move.From, move.To
	if !board.InBounds(from) || !board.InBounds(to) {
		return fmt.Errorf("%w: %s -> %s", apperror.ErrInvalidPosition, from, to)
	}

	if board.IsEmpty(from) {
		return fmt.Errorf("%w: %s", apperror.ErrSourceCellEmpty, from)
	}

	if !board.IsEmpty(to) {
		return fmt.Errorf("%w: %s", apperror.ErrCellOccupied, to)
	}

	if !pathfinder.Exists(board, from, to) {
		return fmt.Errorf("%w: %s -> %s", apperror.ErrNoPathAvailable, from, to)
	}

	return nil
}

// Apply moves the ball and resolves the turn: a qualifying run is removed and scored,
// otherwise the pending balls are spawned and checked once more. The game is over when the
// pending balls no longer fit or the board is full after spawning.
func (that *Line98) Apply(game *entity.Game, _ *entity.Player, move entity.Move) Outcome {
	board := game.Board
	from, to := *move.From, move.To

	board.Set(to, board.Get(from))
	board.Clear(from)

	// settle the balls spawned last turn
	game.Spawned = nil

	var outcome Outcome

	result := linedetector.FindRuns(board, that.opts.MinLength)
	if result.Found() {
		removed := linedetector.Remove(board, result)
		outcome.Runs = result.Runs
		outcome.Removed = result.Cells
		outcome.ScoreDelta = removed
		game.Score += removed

		return outcome
	}

	if len(board.EmptyCells()) < len(game.Pending) {
		that.finish(game, &outcome)
		return outcome
	}

	spawned := that.spawn(board, game.Pending)
	game.Spawned = spawned
	outcome.Spawned = spawned

	afterSpawn := linedetector.FindRuns(board, that.opts.MinLength)
	if afterSpawn.Found() {
		removed := linedetector.Remove(board, afterSpawn)
		outcome.Runs = afterSpawn.Runs
		outcome.Removed = afterSpawn.Cells
		outcome.ScoreDelta = removed
		game.Score += removed
	}

	game.Pending = that.nextColors()

	if board.IsFull() {
		that.finish(game, &outcome)
	}

	return outcome
}

func (that *Line98) finish(game *entity.Game, outcome *Outcome) {
	game.Status = entity.StatusFinished
	game.Pending = nil
	outcome.Finished = true
}

// spawn places colors on random empty cells and returns where they landed.
func (that *Line98) spawn(board *entity.Board, colors []entity.Token) []entity.Coord {
	spawned := make([]entity.Coord, 0, len(colors))
	for _, color := range colors {
		empty := board.EmptyCells()
		if len(empty) == 0 {
			break
		}

		at := empty[that.random.IntN(len(empty))]
		board.Set(at, color)
		spawned = append(spawned, at)
	}

	return spawned
}

func (that *Line98) nextColors() []entity.Token {
	colors := make([]entity.Token, that.opts.SpawnCount)
	for i := range colors {
		colors[i] = that.randomColor()
	}

	return colors
}

func (that *Line98) randomColor() entity.Token {
	return entity.Token(that.random.IntN(that.opts.Colors) + 1)
}
