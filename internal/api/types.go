package api

import (
	"github.com/MJE43/arcade-engine-go/internal/arcade"
	"github.com/MJE43/arcade-engine-go/internal/games"
	"github.com/MJE43/arcade-engine-go/internal/history"
)

// EngineError is the body of every error response.
type EngineError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

func (e EngineError) Error() string {
	return e.Message
}

const (
	ErrTypeValidation   = "validation_error"
	ErrTypeInvalidInput = "invalid_input"

	ErrTypeGameNotFound        = "game_not_found"
	ErrTypeInsufficientBalance = "insufficient_balance"
	ErrTypeInvalidTransition   = "invalid_transition"
	ErrTypeSessionOpen         = "session_open"
	ErrTypeAutoplay            = "autoplay_conflict"

	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory groups error types for logging.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryGame       ErrorCategory = "game"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeValidation, ErrTypeInvalidInput:
		return CategoryValidation
	case ErrTypeGameNotFound, ErrTypeInsufficientBalance, ErrTypeInvalidTransition,
		ErrTypeSessionOpen, ErrTypeAutoplay:
		return CategoryGame
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

type GamesResponse struct {
	Games         []games.Spec `json:"games"`
	EngineVersion string       `json:"engine_version"`
}

type StateResponse struct {
	arcade.State
	EngineVersion string `json:"engine_version"`
}

type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
	Count   int             `json:"count"`
}

type BetRequest struct {
	Amount int64 `json:"amount"`
}

type BetResponse struct {
	Bet int64 `json:"bet"`
}

type GameRequest struct {
	Game string `json:"game"`
}

type SelectRequest struct {
	Index *int `json:"index"`
}

type InputRequest struct {
	Symbol *int `json:"symbol"`
}

type AutoCashOutRequest struct {
	Target float64 `json:"target"`
}

type AutoplayRequest struct {
	Script string `json:"script"`
}
