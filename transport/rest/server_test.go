package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/linegames-backend/internal/apperror"
	"github.com/rocketscienceinc/linegames-backend/internal/entity"
)

type mockSessions struct {
	mock.Mock
}

func (that *mockSessions) GetSession(ctx context.Context, sessionID string) (*entity.Game, error) {
	args := that.Called(ctx, sessionID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

type mockResults struct {
	mock.Mock
}

func (that *mockResults) History(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	args := that.Called(ctx, playerID, limit)
	results, _ := args.Get(0).([]*entity.Result)
	return results, args.Error(1)
}

func newServer(sessions *mockSessions, results *mockResults) http.Handler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), sessions, results).Router()
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestServer_Ping(t *testing.T) {
	rec := get(t, newServer(&mockSessions{}, &mockResults{}), "/ping")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestServer_GetSession(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		// Given: an active caro session
		sessions := &mockSessions{}
		game := &entity.Game{ID: "s1", Variant: entity.VariantCaro, Status: entity.StatusActive, Board: entity.NewBoard(15), Turn: entity.TokenO}
		sessions.On("GetSession", mock.Anything, "s1").Return(game, nil).Once()

		// When: requesting it
		rec := get(t, newServer(sessions, &mockResults{}), "/api/sessions/s1")

		// Then: the game is returned as JSON
		require.Equal(t, http.StatusOK, rec.Code)
		var body entity.Game
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "s1", body.ID)
		assert.Equal(t, entity.TokenO, body.Turn)
		sessions.AssertExpectations(t)
	})

	t.Run("Not found", func(t *testing.T) {
		sessions := &mockSessions{}
		sessions.On("GetSession", mock.Anything, "nope").Return(nil, apperror.ErrGameNotFound).Once()

		rec := get(t, newServer(sessions, &mockResults{}), "/api/sessions/nope")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Storage failure", func(t *testing.T) {
		sessions := &mockSessions{}
		sessions.On("GetSession", mock.Anything, "s1").Return(nil, errors.New("redis down")).Once()

		rec := get(t, newServer(sessions, &mockResults{}), "/api/sessions/s1")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestServer_GetResults(t *testing.T) {
	t.Run("Lists the history", func(t *testing.T) {
		results := &mockResults{}
		history := []*entity.Result{{GameID: "g1", Variant: entity.VariantLine98, PlayerID: "p1", Outcome: entity.OutcomeGameOver, Score: 30}}
		results.On("History", mock.Anything, "p1", 5).Return(history, nil).Once()

		rec := get(t, newServer(&mockSessions{}, results), "/api/players/p1/results?limit=5")

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Results []*entity.Result `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Results, 1)
		assert.Equal(t, 30, body.Results[0].Score)
		results.AssertExpectations(t)
	})

	t.Run("Bad limit", func(t *testing.T) {
		rec := get(t, newServer(&mockSessions{}, &mockResults{}), "/api/players/p1/results?limit=abc")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newServer(&mockSessions{}, &mockResults{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/players/p1/results", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
