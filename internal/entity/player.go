package entity

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Mark Token  `json:"mark,omitempty"`

	GameID       string `json:"game_id,omitempty"`
	PuzzleGameID string `json:"puzzle_game_id,omitempty"`
}
