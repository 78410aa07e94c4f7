package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
	"github.com/rocketscienceinc/linegames-backend/internal/entity"
	"github.com/rocketscienceinc/linegames-backend/testing/suite"
)

func newLine98Game(id string) *entity.Game {
	board := entity.NewBoard(9)
	board.Set(entity.Coord{Row: 0, Col: 0}, 3)
	board.Set(entity.Coord{Row: 4, Col: 5}, 7)

	return &entity.Game{
		ID:      id,
		Variant: entity.VariantLine98,
		Board:   board,
		Status:  entity.StatusActive,
		Players: []*entity.Player{{ID: "solo"}},
		Score:   15,
		Pending: []entity.Token{1, 2, 3},
		Spawned: []entity.Coord{{Row: 4, Col: 5}},
	}
}

func TestGameRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage, 0)

	// Given: an active puzzle
	game := newLine98Game("123")

	// When: CreateOrUpdate is called
	err := gameRepo.CreateOrUpdate(ctx, game)

	// Then: no error should be returned, and game is stored
	require.NoError(t, err)
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		// Given: a stored puzzle
		game := newLine98Game("123")

		err := gameRepo.CreateOrUpdate(ctx, game)
		require.NoError(t, err)

		// When: GetByID is called with existing ID
		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)

		// Then: the board and the line98 state survive the round trip
		require.NoError(t, err)
		assert.Equal(t, game.ID, retrievedGame.ID)
		assert.Equal(t, game.Status, retrievedGame.Status)
		assert.Equal(t, game.Board, retrievedGame.Board)
		assert.Equal(t, game.Pending, retrievedGame.Pending)
		assert.Equal(t, game.Spawned, retrievedGame.Spawned)
		assert.Equal(t, 15, retrievedGame.Score)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		// When: GetByID is called with non-existent ID
		retrievedGame, err := gameRepo.GetByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, retrievedGame)
	})

	t.Run("GetByID_Expired", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, time.Second)

		err := gameRepo.CreateOrUpdate(ctx, newLine98Game("short"))
		require.NoError(t, err)

		ttl, err := st.Storage.TTL(ctx, gameKeyPrefix+"short").Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)
	})
}

func TestGameRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		// Given: a finished row game
		game := &entity.Game{
			ID:      "123",
			Variant: entity.VariantCaro,
			Board:   entity.NewBoard(15),
			Status:  entity.StatusFinished,
		}

		err := gameRepo.CreateOrUpdate(ctx, game)
		require.NoError(t, err)

		// When: DeleteByID is called with existing ID
		err = gameRepo.DeleteByID(ctx, game.ID)

		// Then: no error should be returned
		require.NoError(t, err)

		_, err = gameRepo.GetByID(ctx, game.ID)
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		// When: DeleteByID is called with non-existent ID
		err := gameRepo.DeleteByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}
