package gameplay

import (
	"math/rand/v2"

	"github.com/rocketscienceinc/linegames-backend/internal/entity"
	"github.com/rocketscienceinc/linegames-backend/internal/linedetector"
)

// Random is the source used for spawning balls. *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n) //nolint: gosec // game randomness, not security
}

// Outcome describes what a successful move changed.
type Outcome struct {
	Runs       []linedetector.Run `json:"runs,omitempty"`
	Removed    []entity.Coord     `json:"removed,omitempty"`
	Spawned    []entity.Coord     `json:"spawned,omitempty"`
	ScoreDelta int                `json:"score_delta,omitempty"`
	Finished   bool               `json:"finished"`
}

// Rules is what a variant plugs into the Machine.
type Rules interface {
	Variant() entity.Variant
	// Capacity is the number of players the game needs to become active.
	Capacity() int
	NewGame(id string) *entity.Game
	// Validate checks position constraints. Status and turn are checked by the Machine.
	Validate(game *entity.Game, player *entity.Player, move entity.Move) error
	Apply(game *entity.Game, player *entity.Player, move entity.Move) Outcome
	Reset(game *entity.Game)
}
