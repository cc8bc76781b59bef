// Package ledger holds the player's cross-session account: balance, bet
// sizing, experience and cumulative statistics.
package ledger

import (
	"fmt"
	"sync"

	"github.com/MJE43/arcade-engine-go/internal/engine"
)

const (
	DefaultInitialBalance int64 = 10000
	DefaultBet            int64 = 100
	DefaultMinBet         int64 = 10
	XPPerLevel            int64 = 1000
)

// Snapshot is the persisted form of the ledger.
type Snapshot struct {
	Balance      int64 `json:"balance"`
	CurrentBet   int64 `json:"current_bet"`
	XP           int64 `json:"xp"`
	Level        int   `json:"level"`
	Streak       int   `json:"streak"`
	TotalWagered int64 `json:"total_wagered"`
	TotalWon     int64 `json:"total_won"`
	GamesPlayed  int   `json:"games_played"`
	BiggestWin   int64 `json:"biggest_win"`
}

// Stats adds values derived from a snapshot for display.
type Stats struct {
	Snapshot
	XPIntoLevel int64   `json:"xp_into_level"`
	NetProfit   int64   `json:"net_profit"`
	AverageBet  float64 `json:"average_bet"`
}

// Persister receives the full ledger after every mutation. Calls arrive in
// mutation order and must not call back into the ledger.
type Persister interface {
	SaveLedger(Snapshot)
}

// LevelFor derives the level from accumulated experience.
func LevelFor(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/XPPerLevel) + 1
}

// Limits configures the endowment and minimum stake.
type Limits struct {
	InitialBalance int64 `yaml:"initial_balance"`
	DefaultBet     int64 `yaml:"default_bet"`
	MinBet         int64 `yaml:"min_bet"`
}

// DefaultLimits returns the stock endowment of 10,000 and a minimum bet of 10.
func DefaultLimits() Limits {
	return Limits{
		InitialBalance: DefaultInitialBalance,
		DefaultBet:     DefaultBet,
		MinBet:         DefaultMinBet,
	}
}

// Ledger is safe for concurrent use.
type Ledger struct {
	mu        sync.Mutex
	s         Snapshot
	limits    Limits
	persister Persister
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPersister attaches the durable store port.
func WithPersister(p Persister) Option {
	return func(l *Ledger) { l.persister = p }
}

// WithLimits overrides the endowment and minimum bet.
func WithLimits(lim Limits) Option {
	return func(l *Ledger) {
		if lim.InitialBalance > 0 {
			l.limits.InitialBalance = lim.InitialBalance
		}
		if lim.MinBet > 0 {
			l.limits.MinBet = lim.MinBet
		}
		if lim.DefaultBet > 0 {
			l.limits.DefaultBet = lim.DefaultBet
		}
	}
}

// New creates a ledger at its default state.
func New(opts ...Option) *Ledger {
	l := &Ledger{limits: DefaultLimits()}
	for _, opt := range opts {
		opt(l)
	}
	l.s = l.defaults()
	return l
}

// Defaults returns the snapshot a fresh ledger starts from.
func (l *Ledger) Defaults() Snapshot {
	return l.defaults()
}

func (l *Ledger) defaults() Snapshot {
	return Snapshot{
		Balance:    l.limits.InitialBalance,
		CurrentBet: l.limits.DefaultBet,
		Level:      1,
	}
}

// Limits returns the configured endowment and minimum bet.
func (l *Ledger) Limits() Limits { return l.limits }

// Snapshot returns a copy of the current state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s
}

// Stats returns the snapshot with derived display values.
func (l *Ledger) Stats() Stats {
	s := l.Snapshot()
	st := Stats{
		Snapshot:    s,
		XPIntoLevel: s.XP % XPPerLevel,
		NetProfit:   s.TotalWon - s.TotalWagered,
	}
	if s.GamesPlayed > 0 {
		st.AverageBet = float64(s.TotalWagered) / float64(s.GamesPlayed)
	}
	return st
}

func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Balance
}

func (l *Ledger) CurrentBet() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.CurrentBet
}

// Restore replaces the state with a loaded snapshot. Out-of-range fields
// are repaired rather than rejected, and the bet is clamped like SetBet.
// Restore does not persist.
func (l *Ledger) Restore(s Snapshot) {
	if s.Balance < 0 {
		s.Balance = 0
	}
	if s.XP < 0 {
		s.XP = 0
	}
	if s.Streak < 0 {
		s.Streak = 0
	}
	s.Level = LevelFor(s.XP)
	if s.CurrentBet <= 0 {
		s.CurrentBet = l.limits.DefaultBet
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s = s
	l.s.CurrentBet = l.clamp(s.CurrentBet)
}

// SetBet clamps amount to [MinBet, balance] and returns the stored bet.
// The floor wins when the balance is below the minimum.
func (l *Ledger) SetBet(amount int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.CurrentBet = l.clamp(amount)
	l.persistLocked()
	return l.s.CurrentBet
}

func (l *Ledger) clamp(amount int64) int64 {
	if amount > l.s.Balance {
		amount = l.s.Balance
	}
	if amount < l.limits.MinBet {
		amount = l.limits.MinBet
	}
	return amount
}

// PlaceBet debits the current bet and returns the amount staked.
func (l *Ledger) PlaceBet() (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bet := l.s.CurrentBet
	if err := l.debitLocked(bet); err != nil {
		return 0, err
	}
	return bet, nil
}

// Debit removes amount from the balance as the stake of a new session.
func (l *Ledger) Debit(amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debitLocked(amount)
}

func (l *Ledger) debitLocked(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", engine.ErrInvalidBet, amount)
	}
	if amount > l.s.Balance {
		return fmt.Errorf("%w: bet %d, balance %d", engine.ErrInsufficientBalance, amount, l.s.Balance)
	}
	l.s.Balance -= amount
	l.s.TotalWagered += amount
	l.s.GamesPlayed++
	l.persistLocked()
	return nil
}

// Credit pays out a win and extends the win streak.
func (l *Ledger) Credit(amount int64) {
	if amount < 0 {
		amount = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.Balance += amount
	l.s.TotalWon += amount
	if amount > l.s.BiggestWin {
		l.s.BiggestWin = amount
	}
	l.s.Streak++
	l.persistLocked()
}

// RecordLoss breaks the win streak.
func (l *Ledger) RecordLoss() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.Streak = 0
	l.persistLocked()
}

// AddXP grants experience and returns the level before and after. The
// caller reports a level-up when to > from.
func (l *Ledger) AddXP(amount int64) (from, to int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	from = l.s.Level
	if amount <= 0 {
		return from, from
	}
	l.s.XP += amount
	l.s.Level = LevelFor(l.s.XP)
	l.persistLocked()
	return from, l.s.Level
}

// Refill restores the balance to the initial endowment and re-clamps the
// bet. Experience and statistics are kept.
func (l *Ledger) Refill() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.Balance = l.limits.InitialBalance
	l.s.CurrentBet = l.clamp(l.s.CurrentBet)
	l.persistLocked()
}

// Reset returns the whole ledger to its defaults.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s = l.defaults()
	l.persistLocked()
}

func (l *Ledger) persistLocked() {
	if l.persister != nil {
		l.persister.SaveLedger(l.s)
	}
}
