package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		// Given: a config file that only sets the log level
		path := writeConfig(t, "log-level: debug\n")

		// When: loading it
		conf, err := Load(path)

		// Then: everything else falls back to defaults
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "9091", conf.SocketPort)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 24*time.Hour, conf.Redis.SessionTTL)
		assert.Equal(t, Line98{BoardSize: 9, Colors: 7, InitialBalls: 3, SpawnCount: 3, MinLength: 5}, conf.Line98)
		assert.Equal(t, 15, conf.Caro.BoardSize)
		assert.Equal(t, 15, conf.Gomoku.BoardSize)
		assert.False(t, conf.Gomoku.ExactFive)
	})

	t.Run("File values", func(t *testing.T) {
		path := writeConfig(t, `
http-port: "8080"
redis:
  host: redis
  port: "6380"
line98:
  colors: 5
gomoku:
  board-size: 19
  exact-five: true
`)

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, "redis:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, 5, conf.Line98.Colors)
		assert.Equal(t, 19, conf.Gomoku.BoardSize)
		assert.True(t, conf.Gomoku.ExactFive)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "7070")
		path := writeConfig(t, "http-port: \"8080\"\n")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "7070", conf.HTTPPort)
	})

	t.Run("Invalid board size", func(t *testing.T) {
		path := writeConfig(t, "caro:\n  board-size: 3\n")

		_, err := Load(path)

		assert.ErrorContains(t, err, "caro.board-size")
	})

	t.Run("Invalid rules", func(t *testing.T) {
		testCases := []struct {
			name    string
			content string
			want    string
		}{
			{name: "Single stone wins", content: "caro:\n  min-length: 1\n", want: "caro.min-length"},
			{name: "Run longer than the board", content: "gomoku:\n  min-length: 16\n", want: "gomoku.min-length"},
			{name: "Negative spawn count", content: "line98:\n  spawn-count: -1\n", want: "line98.spawn-count"},
			{name: "Negative initial balls", content: "line98:\n  initial-balls: -3\n", want: "line98.initial-balls"},
			{name: "Initial balls overflow the board", content: "line98:\n  initial-balls: 82\n", want: "line98.initial-balls"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := Load(writeConfig(t, tc.content))

				assert.ErrorContains(t, err, tc.want)
			})
		}
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		assert.Error(t, err)
	})

	t.Run("MustLoad panics", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
		})
	})
}
