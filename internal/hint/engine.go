// Package hint suggests a move for a line98 board.
//
// The engine is greedy: it prefers any move that completes a run right away and otherwise
// picks the destination with the most occupied neighbours. This is a heuristic with no
// guarantee of being the best move, and the preview of pending balls is not consulted.
package hint

import (
	"fmt"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
	"github.com/rocketscienceinc/linegames-backend/internal/entity"
	"github.com/rocketscienceinc/linegames-backend/internal/linedetector"
	"github.com/rocketscienceinc/linegames-backend/internal/pathfinder"
)

type Engine struct {
	minLength int
}

func NewEngine(minLength int) *Engine {
	if minLength <= 0 {
		minLength = linedetector.DefaultMinLength
	}

	return &Engine{minLength: minLength}
}

// Suggest returns a legal move. The board is read but never modified, so callers should pass
// a snapshot rather than a board that is being mutated concurrently.
func (that *Engine) Suggest(board *entity.Board) (entity.Move, error) {
	var (
		best      entity.Move
		bestScore = -1
	)

	for _, ball := range board.OccupiedCells() {
		destinations := pathfinder.Reachable(board, ball)
		if len(destinations) == 0 {
			continue
		}

		token := board.Get(ball)
		simulated := board.Clone()
		simulated.Clear(ball)

		for _, to := range destinations {
			if linedetector.WouldQualify(simulated, to, token, that.minLength) {
				return newMove(ball, to), nil
			}

			if score := occupiedNeighbours(simulated, to); score > bestScore {
				best, bestScore = newMove(ball, to), score
			}
		}
	}

	if bestScore < 0 {
		return entity.Move{}, fmt.Errorf("%w: no ball can reach an empty cell", apperror.ErrNoMovesAvailable)
	}

	return best, nil
}

func occupiedNeighbours(board *entity.Board, at entity.Coord) int {
	count := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}

			n := entity.Coord{Row: at.Row + dr, Col: at.Col + dc}
			if board.InBounds(n) && !board.IsEmpty(n) {
				count++
			}
		}
	}

	return count
}

func newMove(from, to entity.Coord) entity.Move {
	return entity.Move{From: &from, To: to}
}
