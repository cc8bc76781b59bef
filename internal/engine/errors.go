package engine

import "errors"

var (
	// ErrInsufficientBalance is returned when a bet exceeds the spendable balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidTransition is returned for a command the current phase does not accept.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrSessionOpen is returned when starting a session while one is still open.
	ErrSessionOpen = errors.New("session already open")
	// ErrMalformedState marks persisted data that could not be decoded.
	ErrMalformedState = errors.New("malformed persisted state")
	ErrUnknownGame    = errors.New("unknown game")
	ErrInvalidChoice  = errors.New("invalid choice")
	ErrInvalidBet     = errors.New("invalid bet")
)
