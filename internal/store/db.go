package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a document has never been written.
var ErrNotFound = errors.New("not found")

// Namespace prefixes every document key the arcade writes.
const Namespace = "gamezone"

// DB represents the durable storage port.
type DB interface {
	Close() error
	Migrate() error
	Ping(ctx context.Context) error
	PutDocument(ctx context.Context, key string, value []byte) error
	GetDocument(ctx context.Context, key string) ([]byte, error)
	AppendHistory(ctx context.Context, entry HistoryEntry, keep int) error
	ListHistory(ctx context.Context, limit int) ([]HistoryEntry, error)
	ClearHistory(ctx context.Context) error
}

// HistoryEntry is one resolved session. Entries are immutable once written.
type HistoryEntry struct {
	ID         string    `json:"id"`
	GameType   string    `json:"game_type"`
	Bet        int64     `json:"bet"`
	Won        bool      `json:"won"`
	Amount     int64     `json:"amount"`
	Multiplier float64   `json:"multiplier"`
	Timestamp  time.Time `json:"timestamp"`
}
