package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
	"github.com/rocketscienceinc/linegames-backend/internal/entity"
	"github.com/rocketscienceinc/linegames-backend/internal/gameplay"
	"github.com/rocketscienceinc/linegames-backend/internal/hint"
	"github.com/rocketscienceinc/linegames-backend/internal/matchmaking"
	"github.com/rocketscienceinc/linegames-backend/internal/session"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.Result) error
}

type GameManager struct {
	logger *slog.Logger

	machine  *gameplay.Machine
	hints    *hint.Engine
	registry *matchmaking.Registry
	notifier Notifier

	playerRepo playerRepo
	gameRepo   gameRepo
	resultRepo resultRepo

	newID func() string
}

func NewGameManager(
	logger *slog.Logger,
	machine *gameplay.Machine,
	hints *hint.Engine,
	registry *matchmaking.Registry,
	notifier Notifier,
	playerRepo playerRepo,
	gameRepo gameRepo,
	resultRepo resultRepo,
) *GameManager {
	return &GameManager{
		logger: logger,

		machine:  machine,
		hints:    hints,
		registry: registry,
		notifier: notifier,

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		resultRepo: resultRepo,

		newID: uuid.NewString,
	}
}

// CreateOrJoin puts the player into a session. A line98 request resumes the player's own
// puzzle when there is one. A row-game request joins the given session, creating it when it
// does not exist yet, or goes through FIFO matchmaking when no session id is given.
//
// A player bound to a finished row game walks away from it, closing it for the opponent. A
// puzzle binding is given up by joining a row game; the puzzle itself stays resumable.
func (that *GameManager) CreateOrJoin(ctx context.Context, req JoinRequest) (*JoinResult, error) {
	log := that.logger.With("method", "CreateOrJoin", "player_id", req.PlayerID, "variant", req.Variant)

	if !req.Variant.Valid() {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownVariant, req.Variant)
	}

	player, err := that.getOrCreatePlayer(ctx, req.PlayerID, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	var (
		result *JoinResult
		left   *entity.Game
	)
	switch {
	case req.Variant.IsPuzzle():
		result, left, err = that.joinPuzzle(ctx, player, req.SessionID)
	case req.SessionID != "":
		result, left, err = that.joinSession(ctx, player, req.Variant, req.SessionID)
	default:
		result, left, err = that.matchmake(ctx, player, req.Variant)
	}

	if left != nil {
		log.Info("player left a finished game", "session_id", left.ID)
		that.closeSession(ctx, left, player.ID)
	}

	if err != nil {
		return nil, err
	}

	if result.Queued {
		log.Info("player queued")
		that.notify(ctx, entity.Event{
			Type:       entity.EventQueued,
			PlayerID:   player.ID,
			Recipients: []string{player.ID},
		})

		return result, nil
	}

	game := result.Game
	for _, p := range game.Players {
		that.savePlayerSession(ctx, p.ID, game)
	}

	log.Info("player joined", "session_id", game.ID, "status", game.Status)

	return result, nil
}

// releasable returns the session the player is bound to when a new join may replace the
// binding, or ErrAlreadyInGame when the player is still needed there.
func (that *GameManager) releasable(ctx context.Context, tx *matchmaking.Tx, playerID string) (*entity.Game, error) {
	id, ok := tx.SessionOf(playerID)
	if !ok {
		return nil, nil
	}

	actor, err := that.lookup(ctx, tx, id)
	if errors.Is(err, apperror.ErrGameNotFound) {
		tx.Unbind(playerID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	current, err := actor.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if current.Variant.IsRowGame() && !current.IsFinished() {
		return nil, fmt.Errorf("%w: game %s", apperror.ErrAlreadyInGame, id)
	}

	return current, nil
}

// release drops the binding to current. A puzzle only loses the binding. A row game is removed
// from the registry and from storage together with its other bindings, and is returned so the
// caller can tell the remaining players.
func (that *GameManager) release(ctx context.Context, tx *matchmaking.Tx, playerID string, current *entity.Game) *entity.Game {
	if current == nil {
		return nil
	}

	tx.Unbind(playerID)
	if current.Variant.IsPuzzle() {
		return nil
	}

	for _, other := range current.PlayerIDs() {
		if id, ok := tx.SessionOf(other); ok && id == current.ID {
			tx.Unbind(other)
		}
	}
	tx.RemoveSession(current.ID)
	that.deleteGame(ctx, current)

	return current
}

func (that *GameManager) joinPuzzle(ctx context.Context, player *entity.Player, sessionID string) (*JoinResult, *entity.Game, error) {
	var (
		snapshot *entity.Game
		left     *entity.Game
	)

	err := that.registry.Atomically(func(tx *matchmaking.Tx) error {
		ownedID, owned := tx.PuzzleOf(player.ID)
		if !owned && player.PuzzleGameID != "" {
			ownedID = player.PuzzleGameID
			if _, err := that.lookup(ctx, tx, ownedID); err == nil {
				owned = true
			}
		}

		if sessionID != "" && sessionID != ownedID {
			return fmt.Errorf("%w: puzzle %s belongs to another player", apperror.ErrGameNotJoinable, sessionID)
		}

		current, err := that.releasable(ctx, tx, player.ID)
		if err != nil {
			return err
		}

		if owned {
			actor, err := that.lookup(ctx, tx, ownedID)
			if err != nil {
				return err
			}

			err = actor.Do(ctx, func(game *entity.Game) error {
				snapshot = game.Clone()
				that.notifyJoined(ctx, snapshot, player.ID)
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to resume game: %w", err)
			}

			left = that.release(ctx, tx, player.ID, current)
			tx.Bind(player.ID, ownedID)
			tx.BindPuzzle(player.ID, ownedID)

			return nil
		}

		game, err := that.machine.NewGame(that.newID(), entity.VariantLine98)
		if err != nil {
			return fmt.Errorf("failed to create game: %w", err)
		}

		if err = that.machine.Join(game, &entity.Player{ID: player.ID, Name: player.Name}); err != nil {
			return fmt.Errorf("failed to join game: %w", err)
		}

		left = that.release(ctx, tx, player.ID, current)
		snapshot = that.startSession(ctx, tx, game, player.ID)
		tx.Bind(player.ID, game.ID)
		tx.BindPuzzle(player.ID, game.ID)

		return nil
	})
	if err != nil {
		return nil, left, err
	}

	return &JoinResult{Game: snapshot}, left, nil
}

func (that *GameManager) joinSession(ctx context.Context, player *entity.Player, variant entity.Variant, sessionID string) (*JoinResult, *entity.Game, error) {
	var (
		snapshot *entity.Game
		left     *entity.Game
	)

	err := that.registry.Atomically(func(tx *matchmaking.Tx) error {
		if tx.IsQueued(player.ID) {
			return apperror.ErrAlreadyWaiting
		}

		current, err := that.releasable(ctx, tx, player.ID)
		if err != nil {
			return err
		}

		if current != nil && current.ID == sessionID {
			return fmt.Errorf("%w: game %s", apperror.ErrAlreadyInGame, sessionID)
		}

		actor, err := that.lookup(ctx, tx, sessionID)
		if errors.Is(err, apperror.ErrGameNotFound) {
			game, err := that.machine.NewGame(sessionID, variant)
			if err != nil {
				return fmt.Errorf("failed to create game: %w", err)
			}

			if err = that.machine.Join(game, &entity.Player{ID: player.ID, Name: player.Name}); err != nil {
				return fmt.Errorf("failed to join game: %w", err)
			}

			left = that.release(ctx, tx, player.ID, current)
			snapshot = that.startSession(ctx, tx, game, player.ID)
			tx.Bind(player.ID, sessionID)

			return nil
		}
		if err != nil {
			return err
		}

		err = actor.Do(ctx, func(game *entity.Game) error {
			if game.Variant != variant {
				return fmt.Errorf("%w: game %s is %s", apperror.ErrGameNotJoinable, game.ID, game.Variant)
			}

			if err := that.machine.Join(game, &entity.Player{ID: player.ID, Name: player.Name}); err != nil {
				return err
			}

			snapshot = game.Clone()
			that.saveGame(ctx, snapshot)
			that.notifyJoined(ctx, snapshot, player.ID)

			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to join game: %w", err)
		}

		left = that.release(ctx, tx, player.ID, current)
		tx.Bind(player.ID, sessionID)

		return nil
	})
	if err != nil {
		return nil, left, err
	}

	return &JoinResult{Game: snapshot}, left, nil
}

func (that *GameManager) matchmake(ctx context.Context, player *entity.Player, variant entity.Variant) (*JoinResult, *entity.Game, error) {
	var (
		snapshot *entity.Game
		left     *entity.Game
	)

	err := that.registry.Atomically(func(tx *matchmaking.Tx) error {
		if !variant.IsRowGame() {
			return fmt.Errorf("%w: %s has no matchmaking", apperror.ErrUnknownVariant, variant)
		}

		if tx.IsQueued(player.ID) {
			return apperror.ErrAlreadyWaiting
		}

		current, err := that.releasable(ctx, tx, player.ID)
		if err != nil {
			return err
		}
		left = that.release(ctx, tx, player.ID, current)

		opponent, err := tx.Pair(variant, &entity.Player{ID: player.ID, Name: player.Name})
		if err != nil {
			return err
		}

		if opponent == nil {
			return nil
		}

		game, err := that.machine.NewGame(that.newID(), variant)
		if err != nil {
			return fmt.Errorf("failed to create game: %w", err)
		}

		for _, p := range []*entity.Player{opponent, {ID: player.ID, Name: player.Name}} {
			if err = that.machine.Join(game, p); err != nil {
				return fmt.Errorf("failed to join game: %w", err)
			}
			tx.Bind(p.ID, game.ID)
		}

		snapshot = that.startSession(ctx, tx, game, player.ID)

		return nil
	})
	if err != nil {
		return nil, left, err
	}

	if snapshot == nil {
		return &JoinResult{Queued: true}, left, nil
	}

	return &JoinResult{Game: snapshot}, left, nil
}

// startSession persists and announces a game nobody else can reach yet, then hands it to its
// actor. It must run inside a registry transaction.
func (that *GameManager) startSession(ctx context.Context, tx *matchmaking.Tx, game *entity.Game, playerID string) *entity.Game {
	snapshot := game.Clone()

	that.saveGame(ctx, snapshot)
	that.notifyJoined(ctx, snapshot, playerID)
	tx.AddSession(session.Start(that.logger, game))

	return snapshot
}

// Move applies a move inside the session actor. The new state is saved and broadcast from the
// actor too, so storage and clients see transitions in the order they were applied.
func (that *GameManager) Move(ctx context.Context, sessionID, playerID string, move entity.Move) (*entity.Game, error) {
	log := that.logger.With("method", "Move", "session_id", sessionID, "player_id", playerID)

	actor, err := that.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var (
		snapshot *entity.Game
		outcome  gameplay.Outcome
	)

	err = actor.Do(ctx, func(game *entity.Game) error {
		var err error
		if outcome, err = that.machine.ApplyMove(game, playerID, move); err != nil {
			return err
		}

		snapshot = game.Clone()
		that.saveGame(ctx, snapshot)
		that.notifyState(ctx, snapshot, playerID)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	log.Debug("move applied", "removed", len(outcome.Removed), "spawned", len(outcome.Spawned), "score_delta", outcome.ScoreDelta)

	if outcome.Finished {
		log.Info("game finished", "winner_id", snapshot.WinnerID, "score", snapshot.Score)
		that.saveResults(ctx, snapshot)
	}

	return snapshot, nil
}

// RequestHint computes a suggestion on a snapshot, outside the session goroutine.
func (that *GameManager) RequestHint(ctx context.Context, sessionID, playerID string) (entity.Move, error) {
	actor, err := that.session(ctx, sessionID)
	if err != nil {
		return entity.Move{}, err
	}

	var board *entity.Board
	err = actor.Do(ctx, func(game *entity.Game) error {
		if !game.Variant.IsPuzzle() {
			return fmt.Errorf("%w: game %s is %s", apperror.ErrHintUnavailable, game.ID, game.Variant)
		}

		if _, ok := game.PlayerByID(playerID); !ok {
			return apperror.ErrNotInGame
		}

		if err := game.ConfirmActiveState(); err != nil {
			return err
		}

		board = game.Board.Clone()
		return nil
	})
	if err != nil {
		return entity.Move{}, fmt.Errorf("failed to request hint: %w", err)
	}

	move, err := that.hints.Suggest(board)
	if err != nil {
		return entity.Move{}, fmt.Errorf("failed to suggest move: %w", err)
	}

	that.notify(ctx, entity.Event{
		Type:       entity.EventHintComputed,
		SessionID:  sessionID,
		PlayerID:   playerID,
		Recipients: []string{playerID},
		Hint:       &move,
	})

	return move, nil
}

func (that *GameManager) Restart(ctx context.Context, sessionID, playerID string) (*entity.Game, error) {
	log := that.logger.With("method", "Restart", "session_id", sessionID, "player_id", playerID)

	actor, err := that.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var snapshot *entity.Game
	err = actor.Do(ctx, func(game *entity.Game) error {
		if _, ok := game.PlayerByID(playerID); !ok {
			return apperror.ErrNotInGame
		}

		if err := that.machine.Restart(game); err != nil {
			return err
		}

		snapshot = game.Clone()
		that.saveGame(ctx, snapshot)
		that.notifyState(ctx, snapshot, playerID)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restart game: %w", err)
	}

	log.Info("game restarted")

	return snapshot, nil
}

// Disconnect drops the player from the waiting queues and from its session. A row game cannot
// continue with one player, so it is torn down and the opponent is told. A puzzle keeps running
// and is resumed by the next line98 request of its owner.
func (that *GameManager) Disconnect(ctx context.Context, playerID string) error {
	log := that.logger.With("method", "Disconnect", "player_id", playerID)

	var (
		closed    *entity.Game
		unqueued  bool
		sessionID string
	)

	err := that.registry.Atomically(func(tx *matchmaking.Tx) error {
		unqueued = tx.Dequeue(playerID)

		id, ok := tx.SessionOf(playerID)
		if !ok {
			return nil
		}
		sessionID = id
		tx.Unbind(playerID)

		actor, ok := tx.Session(id)
		if !ok {
			return nil
		}

		snapshot, err := actor.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		closed = that.release(ctx, tx, playerID, snapshot)

		return nil
	})
	if err != nil {
		return err
	}

	log.Info("player disconnected", "unqueued", unqueued, "session_id", sessionID)

	if closed != nil {
		that.closeSession(ctx, closed, playerID)
	}

	return nil
}

// closeSession clears the players of a removed row game and tells everyone but the leaver.
func (that *GameManager) closeSession(ctx context.Context, game *entity.Game, leaverID string) {
	log := that.logger.With("method", "closeSession", "session_id", game.ID)

	var others []string
	for _, id := range game.PlayerIDs() {
		if id != leaverID {
			others = append(others, id)
		}

		player, err := that.getOrCreatePlayer(ctx, id, "")
		if err != nil {
			log.Error("failed to get player", "player_id", id, "error", err)
			continue
		}

		if player.GameID != game.ID {
			continue
		}

		player.GameID = ""
		player.Mark = entity.Empty

		if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to update player", "player_id", id, "error", err)
		}
	}

	that.notify(ctx, entity.Event{
		Type:       entity.EventPlayerLeft,
		SessionID:  game.ID,
		PlayerID:   leaverID,
		Recipients: others,
	})

	log.Info("session closed", "leaver_id", leaverID)
}

func (that *GameManager) GetSession(ctx context.Context, sessionID string) (*entity.Game, error) {
	actor, err := that.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	game, err := actor.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return game, nil
}

func (that *GameManager) session(ctx context.Context, id string) (*session.Actor, error) {
	var actor *session.Actor

	err := that.registry.Atomically(func(tx *matchmaking.Tx) error {
		var err error
		actor, err = that.lookup(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return actor, nil
}

// lookup returns the running actor, restarting it from storage after a process restart.
func (that *GameManager) lookup(ctx context.Context, tx *matchmaking.Tx, id string) (*session.Actor, error) {
	if actor, ok := tx.Session(id); ok {
		return actor, nil
	}

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrGameNotFound) {
			return nil, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
		}

		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	if _, err = that.machine.Rules(game.Variant); err != nil {
		return nil, err
	}

	that.logger.Info("session restored from storage", "session_id", id, "variant", game.Variant)

	for _, p := range game.Players {
		if _, bound := tx.SessionOf(p.ID); !bound {
			tx.Bind(p.ID, id)
		}
		if game.Variant.IsPuzzle() {
			tx.BindPuzzle(p.ID, id)
		}
	}

	actor := session.Start(that.logger, game)
	tx.AddSession(actor)

	return actor, nil
}

func (that *GameManager) getOrCreatePlayer(ctx context.Context, id, name string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if errors.Is(err, apperror.ErrPlayerNotFound) {
		player = &entity.Player{ID: id}
		err = nil
	}
	if err != nil {
		return nil, err
	}

	if name != "" {
		player.Name = name
	}

	return player, nil
}

func (that *GameManager) savePlayerSession(ctx context.Context, playerID string, game *entity.Game) {
	log := that.logger.With("method", "savePlayerSession", "player_id", playerID)

	player, err := that.getOrCreatePlayer(ctx, playerID, "")
	if err != nil {
		log.Error("failed to get player", "error", err)
		return
	}

	if p, ok := game.PlayerByID(playerID); ok && p.Name != "" {
		player.Name = p.Name
	}

	player.GameID = game.ID
	if game.Variant.IsPuzzle() {
		player.PuzzleGameID = game.ID
	}

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		log.Error("failed to update player", "error", err)
	}
}

func (that *GameManager) saveGame(ctx context.Context, game *entity.Game) {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		that.logger.Error("failed to save game", "session_id", game.ID, "error", err)
	}
}

func (that *GameManager) deleteGame(ctx context.Context, game *entity.Game) {
	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil && !errors.Is(err, apperror.ErrGameNotFound) {
		that.logger.Error("failed to delete game", "session_id", game.ID, "error", err)
	}
}

func (that *GameManager) saveResults(ctx context.Context, game *entity.Game) {
	for _, result := range resultsOf(game) {
		if err := that.resultRepo.Save(ctx, result); err != nil {
			that.logger.Error("failed to save result", "session_id", game.ID, "player_id", result.PlayerID, "error", err)
		}
	}
}

func (that *GameManager) notifyJoined(ctx context.Context, game *entity.Game, playerID string) {
	that.notify(ctx, entity.Event{
		Type:       entity.EventSessionJoined,
		SessionID:  game.ID,
		PlayerID:   playerID,
		Recipients: game.PlayerIDs(),
		Game:       game,
	})
}

func (that *GameManager) notifyState(ctx context.Context, game *entity.Game, playerID string) {
	that.notify(ctx, entity.Event{
		Type:       entity.EventStateChanged,
		SessionID:  game.ID,
		PlayerID:   playerID,
		Recipients: game.PlayerIDs(),
		Game:       game,
	})
}

func (that *GameManager) notify(ctx context.Context, event entity.Event) {
	if that.notifier == nil || len(event.Recipients) == 0 {
		return
	}

	that.notifier.Notify(ctx, event)
}

func resultsOf(game *entity.Game) []*entity.Result {
	results := make([]*entity.Result, 0, len(game.Players))

	for _, player := range game.Players {
		result := &entity.Result{
			GameID:     game.ID,
			Variant:    game.Variant,
			PlayerID:   player.ID,
			Score:      game.Score,
			FinishedAt: game.UpdatedAt,
		}

		switch {
		case game.Variant.IsPuzzle():
			result.Outcome = entity.OutcomeGameOver
		case game.IsDraw():
			result.Outcome = entity.OutcomeDraw
		case game.WinnerID == player.ID:
			result.Outcome = entity.OutcomeWin
		default:
			result.Outcome = entity.OutcomeLoss
		}

		if opponent, ok := game.PlayerByMark(entity.ToggleMark(player.Mark)); ok && game.Variant.IsRowGame() {
			result.OpponentID = opponent.ID
		}

		results = append(results, result)
	}

	return results
}
