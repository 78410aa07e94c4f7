package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/linegames-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type sessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*entity.Game, error)
}

type resultsReader interface {
	History(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type Server struct {
	logger   *slog.Logger
	sessions sessionReader
	results  resultsReader
}

func New(logger *slog.Logger, sessions sessionReader, results resultsReader) *Server {
	return &Server{
		logger:   logger,
		sessions: sessions,
		results:  results,
	}
}

func (that *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/ping", that.handlePing).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions/{id}", that.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/results", that.handleGetResults).Methods(http.MethodGet)

	return router
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, status int, message string) {
	that.writeJSON(w, status, map[string]string{"error": message})
}
