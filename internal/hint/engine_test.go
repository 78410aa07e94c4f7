package hint

import (
	"testing"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
	"github.com/rocketscienceinc/linegames-backend/internal/entity"
	"github.com/rocketscienceinc/linegames-backend/internal/pathfinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(row, col int) entity.Coord {
	return entity.Coord{Row: row, Col: col}
}

func assertLegal(t *testing.T, board *entity.Board, move entity.Move) {
	t.Helper()

	require.NotNil(t, move.From)
	assert.False(t, board.IsEmpty(*move.From))
	assert.True(t, board.IsEmpty(move.To))
	assert.True(t, pathfinder.Exists(board, *move.From, move.To))
}

func TestEngine_Suggest(t *testing.T) {
	engine := NewEngine(5)

	t.Run("Prefers a move that completes a run", func(t *testing.T) {
		// Given: four balls of color 2 and a fifth one that can reach the gap
		board := entity.NewBoard(9)
		for col := 0; col < 4; col++ {
			board.Set(at(3, col), 2)
		}
		board.Set(at(8, 8), 2)
		board.Set(at(0, 0), 6)
		before := board.Clone()

		// When: asking for a hint
		move, err := engine.Suggest(board)

		// Then: the suggested move lands on (3,4) and the board is untouched
		require.NoError(t, err)
		assertLegal(t, board, move)
		assert.Equal(t, at(3, 4), move.To)
		assert.Equal(t, entity.Token(2), board.Get(*move.From))
		assert.Equal(t, before, board)
	})

	t.Run("Falls back to a legal move", func(t *testing.T) {
		board := entity.NewBoard(9)
		board.Set(at(4, 4), 1)
		board.Set(at(0, 8), 3)

		move, err := engine.Suggest(board)

		require.NoError(t, err)
		assertLegal(t, board, move)
	})

	t.Run("No movable ball", func(t *testing.T) {
		// Given: a full board
		board := entity.NewBoard(9)
		for row := 0; row < 9; row++ {
			for col := 0; col < 9; col++ {
				board.Set(at(row, col), entity.Token((row+col)%7+1))
			}
		}

		_, err := engine.Suggest(board)

		assert.ErrorIs(t, err, apperror.ErrNoMovesAvailable)
	})

	t.Run("Empty board", func(t *testing.T) {
		_, err := engine.Suggest(entity.NewBoard(9))

		assert.ErrorIs(t, err, apperror.ErrNoMovesAvailable)
	})
}
