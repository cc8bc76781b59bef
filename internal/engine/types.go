package engine

import (
	"fmt"
	"time"
)

// GameType identifies one of the arcade's game modes.
type GameType string

const (
	GameCups     GameType = "cups"
	GameReaction GameType = "reaction"
	GameMemory   GameType = "memory"
	GameCrash    GameType = "crash"
)

// GameTypes lists every mode in menu order.
var GameTypes = []GameType{GameCups, GameReaction, GameMemory, GameCrash}

// ParseGameType validates a mode name received from outside the process.
func ParseGameType(s string) (GameType, error) {
	for _, g := range GameTypes {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGame, s)
}

// Result describes the outcome of the most recently resolved session.
// Amount is the stake lost on a loss and the credited payout on a win.
type Result struct {
	SessionID  string    `json:"session_id"`
	IsVisible  bool      `json:"is_visible"`
	IsWin      bool      `json:"is_win"`
	Amount     int64     `json:"amount"`
	Bet        int64     `json:"bet"`
	Multiplier float64   `json:"multiplier"`
	GameType   GameType  `json:"game_type"`
	Message    string    `json:"message"`
	Round      int       `json:"round,omitempty"`
	At         time.Time `json:"at"`
}
