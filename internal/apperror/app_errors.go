package apperror

import "errors"

// Every error below invalidates only the requested operation; session state is left untouched.
var (
	ErrGameNotFound            = errors.New("game not found")
	ErrGameNotActive           = errors.New("game is not active")
	ErrGameNotJoinable         = errors.New("game is full or not joinable")
	ErrAlreadyInGame           = errors.New("player is already in a game")
	ErrAlreadyWaiting          = errors.New("player is already in the waiting room")
	ErrNotInGame               = errors.New("player is not part of this game")
	ErrNotYourTurn             = errors.New("it's not your turn")
	ErrInvalidPosition         = errors.New("position is out of bounds")
	ErrCellOccupied            = errors.New("cell is already occupied")
	ErrSourceCellEmpty         = errors.New("no ball at the starting position")
	ErrNoPathAvailable         = errors.New("no path available for this move")
	ErrNoMovesAvailable        = errors.New("no moves available")
	ErrHintUnavailable         = errors.New("hints are only available for line98")
	ErrRestartOnUnfinishedGame = errors.New("cannot restart a game that is not finished")
	ErrUnknownVariant          = errors.New("unknown game variant")
	ErrPlayerNotFound          = errors.New("player not found")
)

// ErrGameFull is the matchmaking name for ErrGameNotJoinable.
var ErrGameFull = ErrGameNotJoinable
