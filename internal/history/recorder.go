// Package history keeps the bounded log of resolved sessions and persists
// the ledger snapshot after every mutation.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MJE43/arcade-engine-go/internal/engine"
	"github.com/MJE43/arcade-engine-go/internal/events"
	"github.com/MJE43/arcade-engine-go/internal/ledger"
	"github.com/MJE43/arcade-engine-go/internal/store"
)

// Entry is one resolved session.
type Entry = store.HistoryEntry

const (
	DefaultLimit = 50
	ledgerKey    = "ledger"
	writeTimeout = 2 * time.Second
)

// Recorder mirrors history in memory, newest first, and writes through to
// the store. Store failures are logged and never reach the caller.
type Recorder struct {
	db     store.DB
	limit  int
	logger *log.Logger

	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates a recorder keeping at most limit entries.
func NewRecorder(db store.DB, limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Recorder{
		db:     db,
		limit:  limit,
		logger: log.New(os.Stdout, "[HISTORY] ", log.LstdFlags),
	}
}

// Load reads the persisted ledger and history. Missing or malformed data
// falls back to defaults.
func (r *Recorder) Load(ctx context.Context, defaults ledger.Snapshot) ledger.Snapshot {
	snap, err := r.loadLedger(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		r.logger.Printf("ledger_missing using defaults")
		snap = defaults
	case err != nil:
		r.logger.Printf("ledger_load_failed using defaults error=%v", err)
		snap = defaults
	}

	entries, err := r.db.ListHistory(ctx, r.limit)
	if err != nil {
		r.logger.Printf("history_load_failed error=%v", err)
		entries = nil
	}
	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	return snap
}

func (r *Recorder) loadLedger(ctx context.Context) (ledger.Snapshot, error) {
	raw, err := r.db.GetDocument(ctx, ledgerKey)
	if err != nil {
		return ledger.Snapshot{}, err
	}
	var snap ledger.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("%w: %v", engine.ErrMalformedState, err)
	}
	return snap, nil
}

// SaveLedger implements ledger.Persister.
func (r *Recorder) SaveLedger(s ledger.Snapshot) {
	raw, err := json.Marshal(s)
	if err != nil {
		r.logger.Printf("ledger_encode_failed error=%v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.db.PutDocument(ctx, ledgerKey, raw); err != nil {
		r.logger.Printf("ledger_save_failed error=%v", err)
	}
}

// Append prepends e and evicts the oldest entries beyond the limit.
func (r *Recorder) Append(e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	r.mu.Lock()
	r.entries = append([]Entry{e}, r.entries...)
	if len(r.entries) > r.limit {
		r.entries = r.entries[:r.limit]
	}
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.db.AppendHistory(ctx, e, r.limit); err != nil {
		r.logger.Printf("history_append_failed id=%s error=%v", e.ID, err)
	}
}

// RecordResult appends the history entry for a resolved session.
func (r *Recorder) RecordResult(res engine.Result) {
	r.Append(Entry{
		ID:         res.SessionID,
		GameType:   string(res.GameType),
		Bet:        res.Bet,
		Won:        res.IsWin,
		Amount:     res.Amount,
		Multiplier: res.Multiplier,
		Timestamp:  res.At,
	})
}

// Attach records every Result published on bus.
func (r *Recorder) Attach(bus *events.Bus) (cancel func()) {
	return bus.Subscribe(func(ev events.Event) {
		if ev.Kind == events.KindResult && ev.Result != nil {
			r.RecordResult(*ev.Result)
		}
	})
}

// Entries returns a copy of the log, newest first.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Clear empties the log.
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.db.ClearHistory(ctx); err != nil {
		r.logger.Printf("history_clear_failed error=%v", err)
	}
}
