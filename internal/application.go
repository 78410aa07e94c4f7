package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/linegames-backend/internal/config"
	"github.com/rocketscienceinc/linegames-backend/internal/entity"
	"github.com/rocketscienceinc/linegames-backend/internal/gameplay"
	"github.com/rocketscienceinc/linegames-backend/internal/hint"
	"github.com/rocketscienceinc/linegames-backend/internal/matchmaking"
	"github.com/rocketscienceinc/linegames-backend/internal/repository"
	"github.com/rocketscienceinc/linegames-backend/internal/repository/storage"
	"github.com/rocketscienceinc/linegames-backend/internal/usecase"
	"github.com/rocketscienceinc/linegames-backend/transport/rest"
	"github.com/rocketscienceinc/linegames-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open results storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close results storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init results storage: %w", err)
	}

	playerRepo := repository.NewPlayerRepository(redisStorage)
	gameRepo := repository.NewGameRepository(redisStorage, conf.Redis.SessionTTL)
	resultRepo := repository.NewResultRepository(sqliteStorage.Connection)

	registry := matchmaking.NewRegistry()
	defer registry.Close()

	hub := websocket.NewHub(logger)
	gameUseCase := usecase.NewGameManager(
		logger,
		newMachine(conf),
		hint.NewEngine(conf.Line98.MinLength),
		registry,
		hub,
		playerRepo,
		gameRepo,
		resultRepo,
	)
	resultsUseCase := usecase.NewResultsUseCase(resultRepo)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpServer := rest.New(logger, gameUseCase, resultsUseCase)
		if httpErr := httpServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, hub, gameUseCase)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func newMachine(conf *config.Config) *gameplay.Machine {
	line98 := gameplay.NewLine98(gameplay.Line98Options{
		Size:         conf.Line98.BoardSize,
		Colors:       conf.Line98.Colors,
		InitialBalls: conf.Line98.InitialBalls,
		SpawnCount:   conf.Line98.SpawnCount,
		MinLength:    conf.Line98.MinLength,
	}, nil)

	caro := gameplay.NewRowGame(entity.VariantCaro, gameplay.RowGameOptions{
		Size:      conf.Caro.BoardSize,
		MinLength: conf.Caro.MinLength,
	})

	gomoku := gameplay.NewRowGame(entity.VariantGomoku, gameplay.RowGameOptions{
		Size:        conf.Gomoku.BoardSize,
		MinLength:   conf.Gomoku.MinLength,
		ExactLength: conf.Gomoku.ExactFive,
	})

	return gameplay.NewMachine(line98, caro, gomoku)
}
