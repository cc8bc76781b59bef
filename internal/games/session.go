package games

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MJE43/arcade-engine-go/internal/engine"
	"github.com/MJE43/arcade-engine-go/internal/events"
)

// session is the money side of one play: opened by a single debit and
// closed by exactly one settle call.
type session struct {
	id   string
	bet  int64
	open bool
}

// base carries the settle contract shared by all engines. Every field is
// guarded by mu. Events queued while mu is held are published by
// unlockAndFlush so subscribers never run under an engine lock.
type base struct {
	game   engine.GameType
	deps   Deps
	lossXP int64

	mu     sync.Mutex
	sess   session
	gen    uint64
	timers []engine.Handle
	outbox []events.Event
}

func (b *base) init(game engine.GameType, deps Deps, lossXP int64) {
	b.game = game
	b.deps = deps.withDefaults()
	b.lossXP = lossXP
}

// openLocked debits the current bet and starts a new session generation.
func (b *base) openLocked() error {
	if b.sess.open {
		return fmt.Errorf("%s: %w", b.game, engine.ErrSessionOpen)
	}
	bet, err := b.deps.Ledger.PlaceBet()
	if err != nil {
		b.queueLocked(events.Event{Kind: events.KindNotice, Game: b.game, Notice: err.Error()})
		return fmt.Errorf("%s: %w", b.game, err)
	}
	b.cancelTimersLocked()
	b.sess = session{id: uuid.NewString(), bet: bet, open: true}
	return nil
}

// winLocked closes the session and pays floor(bet * multiplier).
func (b *base) winLocked(multiplier float64, xp int64, round int, msg string) bool {
	if !b.sess.open {
		return false
	}
	b.sess.open = false
	payout := engine.Payout(b.sess.bet, multiplier)
	b.deps.Ledger.Credit(payout)
	b.addXPLocked(xp)
	b.resolvedLocked(engine.Result{
		IsWin:      true,
		Amount:     payout,
		Multiplier: multiplier,
		Round:      round,
		Message:    msg,
	})
	return true
}

// loseLocked closes the session; the stake debited at open stays forfeit.
func (b *base) loseLocked(multiplier float64, round int, msg string) bool {
	if !b.sess.open {
		return false
	}
	b.sess.open = false
	b.deps.Ledger.RecordLoss()
	b.addXPLocked(b.lossXP)
	b.resolvedLocked(engine.Result{
		Amount:     b.sess.bet,
		Multiplier: multiplier,
		Round:      round,
		Message:    msg,
	})
	return true
}

func (b *base) resolvedLocked(res engine.Result) {
	res.SessionID = b.sess.id
	res.IsVisible = true
	res.Bet = b.sess.bet
	res.GameType = b.game
	res.At = b.deps.Clock.Now()
	b.deps.Logger.Printf("session_resolved game=%s session=%s won=%t bet=%d amount=%d multiplier=%.2f message=%q",
		b.game, res.SessionID, res.IsWin, res.Bet, res.Amount, res.Multiplier, res.Message)
	b.queueLocked(events.Event{Kind: events.KindResult, Game: b.game, Result: &res})
}

// addXPLocked grants experience and queues a level-up event when the level
// rises.
func (b *base) addXPLocked(xp int64) {
	from, to := b.deps.Ledger.AddXP(xp)
	if to > from {
		b.queueLocked(events.Event{
			Kind:    events.KindLevelUp,
			Game:    b.game,
			LevelUp: &events.LevelUp{From: from, To: to},
		})
	}
}

func (b *base) phaseLocked(phase string) {
	b.queueLocked(events.Event{Kind: events.KindPhase, Game: b.game, Phase: phase})
}

func (b *base) advanceLocked(round int, multiplier float64) {
	b.queueLocked(events.Event{
		Kind:    events.KindAdvance,
		Game:    b.game,
		Advance: &events.Advance{Round: round, Multiplier: multiplier},
	})
}

func (b *base) queueLocked(ev events.Event) {
	if ev.At.IsZero() {
		ev.At = b.deps.Clock.Now()
	}
	b.outbox = append(b.outbox, ev)
}

func (b *base) unlockAndFlush() {
	out := b.outbox
	b.outbox = nil
	b.mu.Unlock()
	for _, ev := range out {
		b.deps.Events.Publish(ev)
	}
}

// afterLocked schedules fn to run under mu after d. The callback is dropped
// if any timer cancellation happened in between, so a task can never act
// on a later session than the one that scheduled it.
func (b *base) afterLocked(d time.Duration, fn func()) {
	gen := b.gen
	var h engine.Handle
	h = b.deps.Scheduler.AfterFunc(d, func() {
		b.mu.Lock()
		if b.gen == gen {
			b.dropTimerLocked(h)
			fn()
		}
		b.unlockAndFlush()
	})
	b.timers = append(b.timers, h)
}

func (b *base) dropTimerLocked(h engine.Handle) {
	for i, t := range b.timers {
		if t == h {
			b.timers = append(b.timers[:i], b.timers[i+1:]...)
			return
		}
	}
}

// cancelTimersLocked stops every pending task and invalidates any that are
// already running toward the lock.
func (b *base) cancelTimersLocked() {
	engine.StopAll(b.timers...)
	b.timers = b.timers[:0]
	b.gen++
}

// abandonLocked forfeits an open session. Returns false if none was open.
func (b *base) abandonLocked(multiplier float64, round int) bool {
	b.cancelTimersLocked()
	return b.loseLocked(multiplier, round, "abandoned")
}

func (b *base) sessionState(s *State) {
	s.Game = b.game
	s.SessionID = b.sess.id
	s.Open = b.sess.open
	s.Bet = b.sess.bet
}
