// Package config loads process settings from the environment and the
// optional tuning file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/MJE43/arcade-engine-go/internal/games"
	"github.com/MJE43/arcade-engine-go/internal/history"
	"github.com/MJE43/arcade-engine-go/internal/ledger"
)

// MemoryDBPath selects the in-memory store instead of a SQLite file.
const MemoryDBPath = ":memory:"

// Config holds process settings.
type Config struct {
	HTTPAddr        string        `env:"ARCADE_HTTP_ADDR" envDefault:":8080"`
	DBPath          string        `env:"ARCADE_DB_PATH" envDefault:"arcade.db"`
	TuningFile      string        `env:"ARCADE_TUNING_FILE"`
	RNGSeed         string        `env:"ARCADE_RNG_SEED"`
	ShutdownTimeout time.Duration `env:"ARCADE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"ARCADE_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads dotenvPath when present and parses the environment.
func Load(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
			}
			log.Printf("[CONFIG] %s not found, using environment only", dotenvPath)
		}
	}
	return ParseEnv()
}

// ParseEnv parses the environment into a Config.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// InMemoryStore reports whether DBPath asks for the non-durable store.
func (c Config) InMemoryStore() bool {
	return c.DBPath == MemoryDBPath
}

// Tuning is the layout of the tuning file. Omitted keys keep their defaults.
type Tuning struct {
	Ledger  ledger.Limits `yaml:"ledger"`
	Games   games.Tuning  `yaml:"games"`
	History HistoryTuning `yaml:"history"`
}

type HistoryTuning struct {
	Limit int `yaml:"limit"`
}

// DefaultTuning returns the stock constants.
func DefaultTuning() Tuning {
	return Tuning{
		Ledger:  ledger.DefaultLimits(),
		Games:   games.DefaultTuning(),
		History: HistoryTuning{Limit: history.DefaultLimit},
	}
}

// LoadTuning overlays the file at path on DefaultTuning. An empty path
// returns the defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parse tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Validate rejects tunings the engines cannot run with.
func (t Tuning) Validate() error {
	switch {
	case t.Ledger.MinBet <= 0:
		return errors.New("tuning: ledger.min_bet must be positive")
	case t.Ledger.InitialBalance < 0:
		return errors.New("tuning: ledger.initial_balance must not be negative")
	case t.Games.Cups.Options < 2:
		return errors.New("tuning: games.cups.options must be at least 2")
	case t.Games.Cups.MaxRounds < 1:
		return errors.New("tuning: games.cups.max_rounds must be at least 1")
	case t.Games.Reaction.MaxDelay < t.Games.Reaction.MinDelay:
		return errors.New("tuning: games.reaction.max_delay is below min_delay")
	case t.Games.Memory.Alphabet < 2:
		return errors.New("tuning: games.memory.alphabet must be at least 2")
	case t.Games.Crash.Edge <= 0 || t.Games.Crash.Edge > 1:
		return errors.New("tuning: games.crash.edge must be in (0, 1]")
	case t.Games.Crash.TickInterval <= 0:
		return errors.New("tuning: games.crash.tick_interval must be positive")
	case t.History.Limit <= 0:
		return errors.New("tuning: history.limit must be positive")
	}
	return nil
}
