package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis             Redis  `yaml:"redis"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"results.db"`
	Line98            Line98 `yaml:"line98"`
	Caro              Row    `yaml:"caro"`
	Gomoku            Gomoku `yaml:"gomoku"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port       string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"REDIS_SESSION_TTL" env-default:"24h"`
}

type Line98 struct {
	BoardSize    int `yaml:"board-size" env-default:"9"`
	Colors       int `yaml:"colors" env-default:"7"`
	InitialBalls int `yaml:"initial-balls" env-default:"3"`
	SpawnCount   int `yaml:"spawn-count" env-default:"3"`
	MinLength    int `yaml:"min-length" env-default:"5"`
}

type Row struct {
	BoardSize int `yaml:"board-size" env-default:"15"`
	MinLength int `yaml:"min-length" env-default:"5"`
}

// Gomoku only differs from caro by the optional exact-five rule.
type Gomoku struct {
	BoardSize int  `yaml:"board-size" env-default:"15"`
	MinLength int  `yaml:"min-length" env-default:"5"`
	ExactFive bool `yaml:"exact-five" env:"GOMOKU_EXACT_FIVE" env-default:"false"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads the yaml file and applies environment overrides on top of it.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	if that.Line98.Colors < 1 {
		return fmt.Errorf("line98.colors must be positive, got %d", that.Line98.Colors)
	}

	if that.Line98.InitialBalls < 1 {
		return fmt.Errorf("line98.initial-balls must be positive, got %d", that.Line98.InitialBalls)
	}

	if that.Line98.SpawnCount < 1 {
		return fmt.Errorf("line98.spawn-count must be positive, got %d", that.Line98.SpawnCount)
	}

	boards := []struct {
		name      string
		size      int
		minLength int
	}{
		{name: "line98", size: that.Line98.BoardSize, minLength: that.Line98.MinLength},
		{name: "caro", size: that.Caro.BoardSize, minLength: that.Caro.MinLength},
		{name: "gomoku", size: that.Gomoku.BoardSize, minLength: that.Gomoku.MinLength},
	}

	for _, board := range boards {
		if board.size < 5 {
			return fmt.Errorf("%s.board-size must be at least 5, got %d", board.name, board.size)
		}

		if board.minLength < 2 || board.minLength > board.size {
			return fmt.Errorf("%s.min-length must be between 2 and %d, got %d", board.name, board.size, board.minLength)
		}
	}

	if that.Line98.InitialBalls > that.Line98.BoardSize*that.Line98.BoardSize {
		return fmt.Errorf("line98.initial-balls must fit on the board, got %d", that.Line98.InitialBalls)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
