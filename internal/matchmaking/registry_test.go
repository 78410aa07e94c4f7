package matchmaking

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
	"github.com/rocketscienceinc/linegames-backend/internal/entity"
	"github.com/rocketscienceinc/linegames-backend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair(t *testing.T, registry *Registry, variant entity.Variant, playerID string) (*entity.Player, error) {
	t.Helper()

	var opponent *entity.Player
	err := registry.Atomically(func(tx *Tx) error {
		var err error
		opponent, err = tx.Pair(variant, &entity.Player{ID: playerID})
		return err
	})

	return opponent, err
}

func TestRegistry_PairIsFIFO(t *testing.T) {
	registry := NewRegistry()

	// Given: P1 asks first and is queued
	opponent, err := pair(t, registry, entity.VariantCaro, "p1")
	require.NoError(t, err)
	assert.Nil(t, opponent)

	// When: P2 asks
	opponent, err = pair(t, registry, entity.VariantCaro, "p2")

	// Then: P2 is paired with P1 and the queue is empty
	require.NoError(t, err)
	require.NotNil(t, opponent)
	assert.Equal(t, "p1", opponent.ID)
	assert.Zero(t, registry.QueueLen(entity.VariantCaro))

	// When: P3 asks afterwards, P3 is queued
	opponent, err = pair(t, registry, entity.VariantCaro, "p3")
	require.NoError(t, err)
	assert.Nil(t, opponent)
	assert.Equal(t, 1, registry.QueueLen(entity.VariantCaro))
}

func TestRegistry_QueuesArePerVariant(t *testing.T) {
	registry := NewRegistry()

	_, err := pair(t, registry, entity.VariantCaro, "p1")
	require.NoError(t, err)

	opponent, err := pair(t, registry, entity.VariantGomoku, "p2")

	require.NoError(t, err)
	assert.Nil(t, opponent)
	assert.Equal(t, 1, registry.QueueLen(entity.VariantCaro))
	assert.Equal(t, 1, registry.QueueLen(entity.VariantGomoku))
}

func TestRegistry_PairRejections(t *testing.T) {
	registry := NewRegistry()

	t.Run("Already waiting", func(t *testing.T) {
		_, err := pair(t, registry, entity.VariantCaro, "p1")
		require.NoError(t, err)

		_, err = pair(t, registry, entity.VariantGomoku, "p1")

		assert.ErrorIs(t, err, apperror.ErrAlreadyWaiting)
	})

	t.Run("Already in a game", func(t *testing.T) {
		require.NoError(t, registry.Atomically(func(tx *Tx) error {
			tx.Bind("p9", "s1")
			return nil
		}))

		_, err := pair(t, registry, entity.VariantCaro, "p9")

		assert.ErrorIs(t, err, apperror.ErrAlreadyInGame)
	})

	t.Run("Puzzle has no queue", func(t *testing.T) {
		_, err := pair(t, registry, entity.VariantLine98, "p5")

		assert.ErrorIs(t, err, apperror.ErrUnknownVariant)
	})
}

func TestRegistry_Dequeue(t *testing.T) {
	registry := NewRegistry()
	_, err := pair(t, registry, entity.VariantCaro, "p1")
	require.NoError(t, err)

	var removed, again bool
	require.NoError(t, registry.Atomically(func(tx *Tx) error {
		removed = tx.Dequeue("p1")
		again = tx.Dequeue("p1")
		return nil
	}))

	assert.True(t, removed)
	assert.False(t, again)
	assert.Zero(t, registry.QueueLen(entity.VariantCaro))
}

func TestRegistry_Sessions(t *testing.T) {
	registry := NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	actor := session.Start(logger, &entity.Game{ID: "s1", Variant: entity.VariantLine98})

	require.NoError(t, registry.Atomically(func(tx *Tx) error {
		tx.AddSession(actor)
		tx.Bind("p1", "s1")
		tx.BindPuzzle("p1", "s1")
		return nil
	}))

	got, ok := registry.Session("s1")
	require.True(t, ok)
	assert.Same(t, actor, got)

	id, ok := registry.SessionOf("p1")
	require.True(t, ok)
	assert.Equal(t, "s1", id)

	// removing the session drops the puzzle owner index and stops the actor
	require.NoError(t, registry.Atomically(func(tx *Tx) error {
		tx.RemoveSession("s1")
		_, owned := tx.PuzzleOf("p1")
		assert.False(t, owned)
		return nil
	}))

	_, ok = registry.Session("s1")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentPairing(t *testing.T) {
	// Given: 50 players joining at once
	registry := NewRegistry()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		matched int
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			opponent, err := pair(t, registry, entity.VariantCaro, string(rune('A'+i)))
			assert.NoError(t, err)
			if opponent != nil {
				mu.Lock()
				matched++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	// Then: everyone is paired exactly once
	assert.Equal(t, 25, matched)
	assert.Zero(t, registry.QueueLen(entity.VariantCaro))
}
