package games

import (
	"fmt"

	"github.com/MJE43/arcade-engine-go/internal/engine"
)

const (
	CupsIdle      = "idle"
	CupsChoosing  = "choosing"
	CupsRevealing = "revealing"
	CupsWon       = "won"
	CupsLost      = "lost"
)

// Cups is the elimination pick: each round one of the options hides the
// lethal cup, and surviving a pick raises the multiplier.
type Cups struct {
	base
	t CupsTuning

	phase      string
	round      int
	multiplier float64
	lethal     int
	picked     int
	canCashOut bool
}

func NewCups(deps Deps, t CupsTuning, lossXP int64) *Cups {
	if t.Options < 2 {
		t.Options = 3
	}
	if t.MaxRounds < 1 {
		t.MaxRounds = 10
	}
	c := &Cups{
		t:          t,
		phase:      CupsIdle,
		multiplier: 1,
		picked:     -1,
	}
	c.init(engine.GameCups, deps, lossXP)
	return c
}

func (c *Cups) Type() engine.GameType { return engine.GameCups }

func (c *Cups) Spec() Spec {
	return Spec{
		ID:          engine.GameCups,
		Name:        "Cups",
		Description: fmt.Sprintf("Pick one of %d cups; avoid the lethal one to climb the multiplier.", c.t.Options),
		CashOut:     true,
	}
}

// Multiplier returns the payout multiplier for a round number.
func (c *Cups) Multiplier(round int) float64 {
	return CupsMultiplier(c.t.Options, round, c.t.HouseEdge)
}

func (c *Cups) Start() error {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if err := c.openLocked(); err != nil {
		return err
	}
	c.round = 1
	c.multiplier = c.Multiplier(1)
	c.canCashOut = false
	c.picked = -1
	c.lethal = engine.Intn(c.deps.Source, c.t.Options)
	c.phase = CupsChoosing
	c.phaseLocked(c.phase)
	return nil
}

// Pick chooses an option for the current round. The outcome is fixed at
// the call; it is applied once the reveal delay elapses.
func (c *Cups) Pick(index int) error {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if !c.sess.open || c.phase != CupsChoosing {
		return fmt.Errorf("cups pick in phase %s: %w", c.phase, engine.ErrInvalidTransition)
	}
	if index < 0 || index >= c.t.Options {
		return fmt.Errorf("cups pick %d of %d: %w", index, c.t.Options, engine.ErrInvalidChoice)
	}
	c.picked = index
	c.phase = CupsRevealing
	c.phaseLocked(c.phase)

	if index == c.lethal {
		c.afterLocked(c.t.RevealLoss, c.eliminatedLocked)
	} else {
		c.afterLocked(c.t.RevealSurvive, c.survivedLocked)
	}
	return nil
}

func (c *Cups) eliminatedLocked() {
	c.phase = CupsLost
	c.canCashOut = false
	c.loseLocked(c.multiplier, c.round, "eliminated")
}

func (c *Cups) survivedLocked() {
	survived := c.round
	c.addXPLocked(c.t.SurviveXP * int64(survived))

	next := survived + 1
	if next > c.t.MaxRounds {
		c.multiplier = c.Multiplier(c.t.MaxRounds)
		c.phase = CupsWon
		c.canCashOut = false
		c.winLocked(c.multiplier, c.cashOutXP(), survived, "cleared every round")
		return
	}

	c.round = next
	c.multiplier = c.Multiplier(next)
	c.lethal = engine.Intn(c.deps.Source, c.t.Options)
	c.picked = -1
	c.canCashOut = true
	c.phase = CupsChoosing
	c.advanceLocked(c.round, c.multiplier)
	c.phaseLocked(c.phase)
}

func (c *Cups) cashOutXP() int64 {
	return c.t.CashOutBaseXP + c.t.CashOutRoundXP*int64(c.round)
}

// CashOut needs at least one survived round and no reveal in flight.
func (c *Cups) CashOut() error {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if !c.sess.open || !c.canCashOut || c.phase != CupsChoosing {
		return fmt.Errorf("cups cash-out in phase %s: %w", c.phase, engine.ErrInvalidTransition)
	}
	c.phase = CupsWon
	c.canCashOut = false
	c.cancelTimersLocked()
	c.winLocked(c.multiplier, c.cashOutXP(), c.round, "cashed out")
	return nil
}

func (c *Cups) Abandon() {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.abandonLocked(c.multiplier, c.round) {
		c.phaseLocked(CupsIdle)
	}
	c.phase = CupsIdle
	c.canCashOut = false
	c.picked = -1
}

func (c *Cups) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{
		Phase:      c.phase,
		Round:      c.round,
		Multiplier: c.multiplier,
		CanCashOut: c.sess.open && c.canCashOut && c.phase == CupsChoosing,
		Options:    c.t.Options,
	}
	if c.picked >= 0 {
		p := c.picked
		s.Picked = &p
	}
	c.sessionState(&s)
	return s
}
