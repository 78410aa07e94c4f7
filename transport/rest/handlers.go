package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
)

func (that *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	game, err := that.sessions.GetSession(r.Context(), id)
	if errors.Is(err, apperror.ErrGameNotFound) {
		that.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		that.logger.Error("failed to get session", "session_id", id, "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["id"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			that.writeError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = parsed
	}

	results, err := that.results.History(r.Context(), playerID, limit)
	if err != nil {
		that.logger.Error("failed to get results", "player_id", playerID, "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to get results")
		return
	}

	that.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
