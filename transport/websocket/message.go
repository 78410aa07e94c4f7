package websocket

import (
	"encoding/json"
	"errors"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
	"github.com/rocketscienceinc/linegames-backend/internal/entity"
)

const (
	actionConnect = "connect"
	actionJoin    = "game:join"
	actionMove    = "game:move"
	actionHint    = "game:hint"
	actionRestart = "game:restart"
	actionError   = "error"
)

// Message is the envelope for both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	Variant   entity.Variant `json:"variant" validate:"required,oneof=line98 caro gomoku"`
	SessionID string         `json:"session_id" validate:"omitempty,max=64"`
	Name      string         `json:"name" validate:"omitempty,max=32"`
}

type MovePayload struct {
	SessionID string        `json:"session_id" validate:"required"`
	From      *entity.Coord `json:"from"`
	To        *entity.Coord `json:"to" validate:"required"`
}

type SessionPayload struct {
	SessionID string `json:"session_id" validate:"required"`
}

type Payload struct {
	Player    *entity.Player `json:"player,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Game      *entity.Game   `json:"game,omitempty"`
	Hint      *entity.Move   `json:"hint,omitempty"`
	Action    string         `json:"action,omitempty"`
	Error     string         `json:"error,omitempty"`
	Code      string         `json:"code,omitempty"`
}

const (
	codeInvalidPayload = "invalid_payload"
	codeUnknownAction  = "unknown_action"
	codeInternal       = "internal"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{apperror.ErrGameNotFound, "game_not_found"},
	{apperror.ErrGameNotActive, "game_not_active"},
	{apperror.ErrGameNotJoinable, "game_not_joinable"},
	{apperror.ErrAlreadyInGame, "already_in_game"},
	{apperror.ErrAlreadyWaiting, "already_waiting"},
	{apperror.ErrNotInGame, "not_in_game"},
	{apperror.ErrNotYourTurn, "not_your_turn"},
	{apperror.ErrInvalidPosition, "invalid_position"},
	{apperror.ErrCellOccupied, "cell_occupied"},
	{apperror.ErrSourceCellEmpty, "source_cell_empty"},
	{apperror.ErrNoPathAvailable, "no_path_available"},
	{apperror.ErrNoMovesAvailable, "no_moves_available"},
	{apperror.ErrHintUnavailable, "hint_unavailable"},
	{apperror.ErrRestartOnUnfinishedGame, "restart_on_unfinished_game"},
	{apperror.ErrUnknownVariant, "unknown_variant"},
}

// errorCode maps a use case error to the code clients switch on.
func errorCode(err error) string {
	for _, candidate := range errorCodes {
		if errors.Is(err, candidate.err) {
			return candidate.code
		}
	}

	return codeInternal
}

func eventMessage(event entity.Event) (Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Message{}, err
	}

	return Message{Action: string(event.Type), Payload: payload}, nil
}
