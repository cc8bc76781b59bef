package games

import (
	"fmt"
	"math"
	"time"

	"github.com/MJE43/arcade-engine-go/internal/engine"
)

const (
	CrashBetting = "betting"
	CrashRunning = "running"
	CrashCrashed = "crashed"
)

// Crash runs a rising multiplier until a pre-drawn crash point. The player
// may cash out once while it runs; the round keeps climbing to its crash
// point afterwards without touching the balance again.
type Crash struct {
	base
	t CrashTuning

	phase       string
	crashPoint  float64
	startedAt   time.Time
	multiplier  float64
	cashedOut   bool
	cashOutMult float64
	autoCashOut float64
}

func NewCrash(deps Deps, t CrashTuning, lossXP int64) *Crash {
	if t.Edge <= 0 || t.Edge >= 1 {
		t.Edge = 0.99
	}
	if t.TickInterval <= 0 {
		t.TickInterval = 16 * time.Millisecond
	}
	c := &Crash{t: t, phase: CrashBetting, multiplier: 1}
	c.init(engine.GameCrash, deps, lossXP)
	return c
}

func (c *Crash) Type() engine.GameType { return engine.GameCrash }

func (c *Crash) Spec() Spec {
	return Spec{
		ID:          engine.GameCrash,
		Name:        "Crash",
		Description: "Cash out before the multiplier crashes.",
		CashOut:     true,
	}
}

// SetAutoCashOut arms an automatic cash-out at target for the current and
// following rounds. Zero disarms it.
func (c *Crash) SetAutoCashOut(target float64) error {
	if target != 0 && target < 1.01 {
		return fmt.Errorf("auto cash-out %.2f below 1.01: %w", target, engine.ErrInvalidChoice)
	}
	c.mu.Lock()
	c.autoCashOut = engine.Round2(target)
	c.mu.Unlock()
	return nil
}

// Start opens a new round. A round that was already cashed out may still
// be climbing; it is cut short.
func (c *Crash) Start() error {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if err := c.openLocked(); err != nil {
		return err
	}
	c.crashPoint = CrashPoint(c.deps.Source.Float64(), c.t.Edge)
	c.startedAt = c.deps.Clock.Now()
	c.multiplier = 1
	c.cashedOut = false
	c.cashOutMult = 0
	c.phase = CrashRunning
	c.phaseLocked(c.phase)
	c.afterLocked(c.t.TickInterval, c.tickLocked)
	return nil
}

func (c *Crash) elapsedLocked() float64 {
	return c.deps.Clock.Since(c.startedAt).Seconds()
}

// tickLocked is the single authority for crash detection on the timer
// path. Elapsed time comes from the clock, never from counting ticks.
func (c *Crash) tickLocked() {
	if c.phase != CrashRunning {
		return
	}
	m := CrashMultiplier(c.elapsedLocked())

	if !c.cashedOut && c.autoCashOut > 0 && c.autoCashOut < c.crashPoint && m >= c.autoCashOut {
		c.cashOutAtLocked(c.autoCashOut, "auto cash-out")
	}
	if m >= c.crashPoint {
		c.crashLocked()
		return
	}
	c.multiplier = m
	c.afterLocked(c.t.TickInterval, c.tickLocked)
}

func (c *Crash) crashLocked() {
	c.multiplier = c.crashPoint
	c.phase = CrashCrashed
	c.cancelTimersLocked()
	if !c.cashedOut {
		c.loseLocked(c.crashPoint, 0, fmt.Sprintf("crashed at %.2fx", c.crashPoint))
	}
	c.phaseLocked(c.phase)
}

func (c *Crash) cashOutAtLocked(m float64, msg string) {
	c.cashedOut = true
	c.cashOutMult = m
	xp := c.t.CashOutBaseXP + c.t.CashOutMultXP*int64(math.Floor(m))
	c.winLocked(m, xp, 0, msg)
}

// CashOut freezes the multiplier at the instant of the call. If that
// instant is already at or past the crash point the crash wins: the loss
// is settled here and the call fails.
func (c *Crash) CashOut() error {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.phase != CrashRunning || c.cashedOut || !c.sess.open {
		return fmt.Errorf("crash cash-out in phase %s: %w", c.phase, engine.ErrInvalidTransition)
	}
	m := CrashMultiplier(c.elapsedLocked())
	if m >= c.crashPoint {
		c.crashLocked()
		return fmt.Errorf("crashed at %.2fx: %w", c.crashPoint, engine.ErrInvalidTransition)
	}
	c.multiplier = m
	c.cashOutAtLocked(m, "cashed out")
	return nil
}

func (c *Crash) Abandon() {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.abandonLocked(c.multiplier, 0) {
		c.phaseLocked(CrashBetting)
	}
	c.phase = CrashBetting
}

func (c *Crash) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{
		Phase:             c.phase,
		Multiplier:        c.multiplier,
		CanCashOut:        c.sess.open && c.phase == CrashRunning && !c.cashedOut,
		CashedOut:         c.cashedOut,
		CashOutMultiplier: c.cashOutMult,
		AutoCashOut:       c.autoCashOut,
	}
	if c.phase == CrashCrashed {
		s.CrashPoint = c.crashPoint
	}
	c.sessionState(&s)
	return s
}
