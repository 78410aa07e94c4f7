// Package matchmaking holds the process-wide session registry: running session actors, the
// player to session map, the puzzle owner index and one FIFO waiting queue per row variant.
//
// Every access goes through a single mutex. A caller holding the registry lock may call into a
// session actor, never the other way around.
package matchmaking

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
	"github.com/rocketscienceinc/linegames-backend/internal/entity"
	"github.com/rocketscienceinc/linegames-backend/internal/session"
)

type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session.Actor
	players  map[string]string
	puzzles  map[string]string
	queues   map[entity.Variant][]*entity.Player
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*session.Actor),
		players:  make(map[string]string),
		puzzles:  make(map[string]string),
		queues:   make(map[entity.Variant][]*entity.Player),
	}
}

// Tx exposes the registry state while the lock is held. It must not escape the callback.
type Tx struct {
	r *Registry
}

// Atomically runs fn with the registry lock held.
func (that *Registry) Atomically(fn func(tx *Tx) error) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return fn(&Tx{r: that})
}

func (that *Registry) Session(id string) (*session.Actor, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	actor, ok := that.sessions[id]
	return actor, ok
}

func (that *Registry) SessionOf(playerID string) (string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	id, ok := that.players[playerID]
	return id, ok
}

func (that *Registry) QueueLen(variant entity.Variant) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.queues[variant])
}

// Close stops every running session.
func (that *Registry) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, actor := range that.sessions {
		actor.Stop()
		delete(that.sessions, id)
	}
}

func (that *Tx) Session(id string) (*session.Actor, bool) {
	actor, ok := that.r.sessions[id]
	return actor, ok
}

func (that *Tx) AddSession(actor *session.Actor) {
	that.r.sessions[actor.ID()] = actor
}

// RemoveSession stops the actor and forgets every puzzle owner pointing at it.
func (that *Tx) RemoveSession(id string) {
	actor, ok := that.r.sessions[id]
	if !ok {
		return
	}

	actor.Stop()
	delete(that.r.sessions, id)

	for playerID, puzzleID := range that.r.puzzles {
		if puzzleID == id {
			delete(that.r.puzzles, playerID)
		}
	}
}

func (that *Tx) SessionOf(playerID string) (string, bool) {
	id, ok := that.r.players[playerID]
	return id, ok
}

func (that *Tx) Bind(playerID, sessionID string) {
	that.r.players[playerID] = sessionID
}

func (that *Tx) Unbind(playerID string) {
	delete(that.r.players, playerID)
}

func (that *Tx) PuzzleOf(playerID string) (string, bool) {
	id, ok := that.r.puzzles[playerID]
	return id, ok
}

func (that *Tx) BindPuzzle(playerID, sessionID string) {
	that.r.puzzles[playerID] = sessionID
}

func (that *Tx) IsQueued(playerID string) bool {
	for _, queue := range that.r.queues {
		if slices.ContainsFunc(queue, func(p *entity.Player) bool { return p.ID == playerID }) {
			return true
		}
	}

	return false
}

// Dequeue removes the player from whichever queue holds it.
func (that *Tx) Dequeue(playerID string) bool {
	for variant, queue := range that.r.queues {
		i := slices.IndexFunc(queue, func(p *entity.Player) bool { return p.ID == playerID })
		if i < 0 {
			continue
		}

		that.r.queues[variant] = slices.Delete(queue, i, i+1)
		return true
	}

	return false
}

// Pair matches the player with the longest-waiting player of the same variant. When nobody is
// waiting the player is queued and Pair returns nil.
func (that *Tx) Pair(variant entity.Variant, player *entity.Player) (*entity.Player, error) {
	if !variant.IsRowGame() {
		return nil, fmt.Errorf("%w: %s has no matchmaking", apperror.ErrUnknownVariant, variant)
	}

	if id, ok := that.r.players[player.ID]; ok {
		return nil, fmt.Errorf("%w: game %s", apperror.ErrAlreadyInGame, id)
	}

	if that.IsQueued(player.ID) {
		return nil, apperror.ErrAlreadyWaiting
	}

	queue := that.r.queues[variant]
	if len(queue) == 0 {
		that.r.queues[variant] = append(queue, player)
		return nil, nil
	}

	opponent := queue[0]
	that.r.queues[variant] = queue[1:]

	return opponent, nil
}
