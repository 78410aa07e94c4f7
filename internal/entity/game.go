package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

type Variant string

const (
	VariantLine98 Variant = "line98"
	VariantCaro   Variant = "caro"
	VariantGomoku Variant = "gomoku"
)

func (that Variant) IsPuzzle() bool {
	return that == VariantLine98
}

func (that Variant) IsRowGame() bool {
	return that == VariantCaro || that == VariantGomoku
}

func (that Variant) Valid() bool {
	return that.IsPuzzle() || that.IsRowGame()
}

type Game struct {
	ID      string    `json:"id"`
	Variant Variant   `json:"variant"`
	Board   *Board    `json:"board"`
	Status  Status    `json:"status"`
	Players []*Player `json:"players,omitempty"`

	// row games
	Turn         Token   `json:"turn,omitempty"`
	Winner       Token   `json:"winner,omitempty"`
	WinnerID     string  `json:"winner_id,omitempty"`
	WinningCells []Coord `json:"winning_cells,omitempty"`

	// line98
	Score   int     `json:"score"`
	Pending []Token `json:"pending,omitempty"`
	Spawned []Coord `json:"spawned,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsActive() bool {
	return that.Status == StatusActive
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

// IsDraw reports a finished row game without a winner.
func (that *Game) IsDraw() bool {
	return that.IsFinished() && that.Variant.IsRowGame() && that.Winner == Empty
}

func (that *Game) ConfirmActiveState() error {
	switch that.Status {
	case StatusActive:
		return nil
	case StatusWaiting, StatusFinished:
		return fmt.Errorf("%w: status %s", apperror.ErrGameNotActive, that.Status)
	default:
		return fmt.Errorf("%w: unknown status %q", apperror.ErrGameNotActive, that.Status)
	}
}

func (that *Game) PlayerByID(id string) (*Player, bool) {
	for _, player := range that.Players {
		if player.ID == id {
			return player, true
		}
	}

	return nil, false
}

func (that *Game) PlayerByMark(mark Token) (*Player, bool) {
	for _, player := range that.Players {
		if player.Mark == mark {
			return player, true
		}
	}

	return nil, false
}

func (that *Game) PlayerIDs() []string {
	ids := make([]string, 0, len(that.Players))
	for _, player := range that.Players {
		ids = append(ids, player.ID)
	}

	return ids
}

// Clone returns a deep copy safe to hand out while the owner keeps mutating the original.
func (that *Game) Clone() *Game {
	clone := *that
	if that.Board != nil {
		clone.Board = that.Board.Clone()
	}

	clone.Players = make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		p := *player
		clone.Players = append(clone.Players, &p)
	}

	clone.WinningCells = append([]Coord(nil), that.WinningCells...)
	clone.Pending = append([]Token(nil), that.Pending...)
	clone.Spawned = append([]Coord(nil), that.Spawned...)

	return &clone
}

func ToggleMark(mark Token) Token {
	if mark == TokenX {
		return TokenO
	}
	return TokenX
}
