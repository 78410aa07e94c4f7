package entity

import "time"

// Result is the summary of a finished game kept in the results history.
type Result struct {
	GameID     string    `json:"game_id"`
	Variant    Variant   `json:"variant"`
	PlayerID   string    `json:"player_id"`
	OpponentID string    `json:"opponent_id,omitempty"`
	Outcome    string    `json:"outcome"`
	Score      int       `json:"score"`
	FinishedAt time.Time `json:"finished_at"`
}

const (
	OutcomeWin      = "win"
	OutcomeLoss     = "loss"
	OutcomeDraw     = "draw"
	OutcomeGameOver = "game_over"
)
