package games

import (
	"fmt"
	"time"

	"github.com/MJE43/arcade-engine-go/internal/engine"
)

const (
	ReactionWaiting = "waiting"
	ReactionReady   = "ready"
	ReactionGo      = "go"
	ReactionResult  = "result"
)

// Reaction pays for how quickly the player signals after a randomly
// delayed go cue. Signalling before the cue forfeits the bet.
type Reaction struct {
	base
	t ReactionTuning

	phase      string
	goAt       time.Time
	reaction   time.Duration
	multiplier float64
}

func NewReaction(deps Deps, t ReactionTuning, lossXP int64) *Reaction {
	if t.MaxDelay <= t.MinDelay {
		t.MaxDelay = t.MinDelay + time.Millisecond
	}
	r := &Reaction{t: t, phase: ReactionWaiting}
	r.init(engine.GameReaction, deps, lossXP)
	return r
}

func (r *Reaction) Type() engine.GameType { return engine.GameReaction }

func (r *Reaction) Spec() Spec {
	return Spec{
		ID:          engine.GameReaction,
		Name:        "Reaction",
		Description: "Wait for the signal, then hit as fast as you can. Too early loses.",
	}
}

func (r *Reaction) Start() error {
	r.mu.Lock()
	defer r.unlockAndFlush()
	if err := r.openLocked(); err != nil {
		return err
	}
	r.phase = ReactionReady
	r.reaction = 0
	r.multiplier = 0
	r.goAt = time.Time{}
	r.phaseLocked(r.phase)

	delay := time.Duration(engine.Between(r.deps.Source, float64(r.t.MinDelay), float64(r.t.MaxDelay)))
	r.afterLocked(delay, r.goLocked)
	return nil
}

func (r *Reaction) goLocked() {
	if r.phase != ReactionReady {
		return
	}
	r.phase = ReactionGo
	r.goAt = r.deps.Clock.Now()
	r.phaseLocked(r.phase)
	if r.t.Timeout > 0 {
		r.afterLocked(r.t.Timeout, r.timeoutLocked)
	}
}

func (r *Reaction) timeoutLocked() {
	if r.phase != ReactionGo {
		return
	}
	r.reaction = r.t.Timeout
	r.phase = ReactionResult
	r.loseLocked(0, 0, "too slow")
}

// Hit is the player's signal. In ready it is a false start; in go the
// elapsed time since the cue, truncated to whole milliseconds, sets the
// multiplier.
func (r *Reaction) Hit() error {
	r.mu.Lock()
	defer r.unlockAndFlush()
	if !r.sess.open {
		return fmt.Errorf("reaction hit in phase %s: %w", r.phase, engine.ErrInvalidTransition)
	}
	switch r.phase {
	case ReactionReady:
		r.cancelTimersLocked()
		r.phase = ReactionResult
		r.multiplier = 0
		r.loseLocked(0, 0, "too early")
	case ReactionGo:
		r.cancelTimersLocked()
		r.reaction = r.deps.Clock.Since(r.goAt).Truncate(time.Millisecond)
		r.multiplier = ReactionMultiplier(r.reaction, r.t.Tiers)
		r.phase = ReactionResult
		msg := fmt.Sprintf("%dms", r.reaction.Milliseconds())
		if r.multiplier > 0 {
			xp := r.t.WinBaseXP + int64(float64(r.t.WinMultXP)*r.multiplier)
			r.winLocked(r.multiplier, xp, 0, msg)
		} else {
			r.loseLocked(0, 0, msg+" too slow")
		}
	default:
		return fmt.Errorf("reaction hit in phase %s: %w", r.phase, engine.ErrInvalidTransition)
	}
	return nil
}

// CashOut is not part of this mode.
func (r *Reaction) CashOut() error {
	return fmt.Errorf("reaction has no cash-out: %w", engine.ErrInvalidTransition)
}

func (r *Reaction) Abandon() {
	r.mu.Lock()
	defer r.unlockAndFlush()
	if r.abandonLocked(0, 0) {
		r.phaseLocked(ReactionWaiting)
	}
	r.phase = ReactionWaiting
}

func (r *Reaction) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := State{
		Phase:      r.phase,
		Multiplier: r.multiplier,
		ReactionMs: r.reaction.Milliseconds(),
	}
	r.sessionState(&s)
	return s
}
