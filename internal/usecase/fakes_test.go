package usecase

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
	"github.com/rocketscienceinc/linegames-backend/internal/entity"
	"github.com/rocketscienceinc/linegames-backend/internal/gameplay"
	"github.com/rocketscienceinc/linegames-backend/internal/hint"
	"github.com/rocketscienceinc/linegames-backend/internal/matchmaking"
)

type memoryGames struct {
	mu    sync.Mutex
	games map[string]*entity.Game
}

func newMemoryGames() *memoryGames {
	return &memoryGames{games: make(map[string]*entity.Game)}
}

func (that *memoryGames) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = game.Clone()
	return nil
}

func (that *memoryGames) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (that *memoryGames) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.games, id)
	return nil
}

// gatedGames holds the first save after arm until release is closed.
type gatedGames struct {
	*memoryGames

	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedGames() *gatedGames {
	return &gatedGames{
		memoryGames: newMemoryGames(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (that *gatedGames) arm() {
	that.armed.Store(true)
}

func (that *gatedGames) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	if that.armed.CompareAndSwap(true, false) {
		close(that.entered)
		<-that.release
	}

	return that.memoryGames.CreateOrUpdate(ctx, game)
}

type memoryPlayers struct {
	mu      sync.Mutex
	players map[string]entity.Player
}

func newMemoryPlayers() *memoryPlayers {
	return &memoryPlayers{players: make(map[string]entity.Player)}
}

func (that *memoryPlayers) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.players[player.ID] = *player
	return nil
}

func (that *memoryPlayers) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[id]
	if !ok {
		return &entity.Player{}, apperror.ErrPlayerNotFound
	}
	return &player, nil
}

type memoryResults struct {
	mu      sync.Mutex
	results []*entity.Result
}

func (that *memoryResults) Save(_ context.Context, result *entity.Result) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.results = append(that.results, result)
	return nil
}

func (that *memoryResults) all() []*entity.Result {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]*entity.Result(nil), that.results...)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []entity.Event
}

func (that *recordingNotifier) Notify(_ context.Context, event entity.Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, event)
}

// received lists the event types delivered to playerID, in order.
func (that *recordingNotifier) received(playerID string) []entity.EventType {
	that.mu.Lock()
	defer that.mu.Unlock()

	var types []entity.EventType
	for _, event := range that.events {
		for _, recipient := range event.Recipients {
			if recipient == playerID {
				types = append(types, event.Type)
			}
		}
	}
	return types
}

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

type fixture struct {
	manager  *GameManager
	registry *matchmaking.Registry
	games    *memoryGames
	players  *memoryPlayers
	results  *memoryResults
	notifier *recordingNotifier
}

// lockedRandom lets every puzzle actor of one fixture share a seeded source.
type lockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (that *lockedRandom) IntN(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.r.IntN(n)
}

func newMachine() *gameplay.Machine {
	return gameplay.NewMachine(
		gameplay.NewLine98(gameplay.DefaultLine98Options(), &lockedRandom{r: rand.New(rand.NewPCG(1, 2))}),
		gameplay.NewRowGame(entity.VariantCaro, gameplay.DefaultRowGameOptions()),
		gameplay.NewRowGame(entity.VariantGomoku, gameplay.DefaultRowGameOptions()),
	)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, games gameRepo) *fixture {
	t.Helper()

	f := &fixture{
		registry: matchmaking.NewRegistry(),
		games:    newMemoryGames(),
		players:  newMemoryPlayers(),
		results:  &memoryResults{},
		notifier: &recordingNotifier{},
	}
	if games == nil {
		games = f.games
	}

	f.manager = NewGameManager(discardLogger(), newMachine(), hint.NewEngine(5), f.registry, f.notifier, f.players, games, f.results)
	t.Cleanup(f.registry.Close)

	return f
}
