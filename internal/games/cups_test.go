package games

import (
	"errors"
	"testing"
	"time"

	"github.com/MJE43/arcade-engine-go/internal/engine"
	"github.com/MJE43/arcade-engine-go/internal/events"
	"github.com/MJE43/arcade-engine-go/internal/ledger"
)

func newTestCups(h *harness) *Cups {
	return NewCups(h.deps(), DefaultTuning().Cups, 10)
}

func TestCupsSurviveThenCashOut(t *testing.T) {
	// lethal cup is index 2 in both rounds
	h := newHarness(t, 0.9, 0.9)
	c := newTestCups(h)

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	st := c.State()
	if h.balance() != 9900 || st.Round != 1 || st.Multiplier != 1.46 {
		t.Fatalf("after start: balance=%d state=%+v", h.balance(), st)
	}
	if st.CanCashOut {
		t.Error("cash-out enabled before any round survived")
	}
	if err := c.CashOut(); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Errorf("early cash-out: expected ErrInvalidTransition, got %v", err)
	}

	if err := c.Pick(0); err != nil {
		t.Fatalf("Pick failed: %v", err)
	}
	if err := c.CashOut(); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Errorf("cash-out mid-reveal: expected ErrInvalidTransition, got %v", err)
	}
	if err := c.Pick(1); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Errorf("pick mid-reveal: expected ErrInvalidTransition, got %v", err)
	}

	h.advance(800 * time.Millisecond)
	st = c.State()
	if st.Round != 2 || st.Multiplier != 2.18 || !st.CanCashOut || st.Phase != CupsChoosing {
		t.Fatalf("after survival: %+v", st)
	}
	if h.countKind(events.KindAdvance) != 1 {
		t.Errorf("expected one advance event, got %d", h.countKind(events.KindAdvance))
	}

	if err := c.CashOut(); err != nil {
		t.Fatalf("CashOut failed: %v", err)
	}
	res := h.onlyResult()
	if !res.IsWin || res.Amount != 218 || res.Multiplier != 2.18 || res.GameType != engine.GameCups {
		t.Errorf("unexpected result: %+v", res)
	}
	snap := h.ledger.Snapshot()
	if snap.Balance != 10118 || snap.Streak != 1 {
		t.Errorf("after cash-out: %+v", snap)
	}
	// survival 50*1, cash-out 100+20*2
	if snap.XP != 190 {
		t.Errorf("xp = %d, want 190", snap.XP)
	}

	if err := c.CashOut(); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Errorf("second cash-out: expected ErrInvalidTransition, got %v", err)
	}
	if len(h.results) != 1 {
		t.Errorf("second cash-out emitted a result")
	}
}

func TestCupsLethalPick(t *testing.T) {
	h := newHarness(t, 0.1)
	c := newTestCups(h)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if err := c.Pick(0); err != nil {
		t.Fatal(err)
	}

	h.advance(499 * time.Millisecond)
	if len(h.results) != 0 {
		t.Fatal("resolved before the reveal delay")
	}
	h.advance(time.Millisecond)

	res := h.onlyResult()
	if res.IsWin || res.Amount != 100 || res.Multiplier != 1.46 {
		t.Errorf("unexpected result: %+v", res)
	}
	if h.balance() != 9900 || h.ledger.Snapshot().Streak != 0 {
		t.Errorf("after loss: %+v", h.ledger.Snapshot())
	}
	if c.State().Phase != CupsLost {
		t.Errorf("phase = %s", c.State().Phase)
	}
	if err := c.Pick(1); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Errorf("pick after loss: %v", err)
	}
}

func TestCupsInvalidIndex(t *testing.T) {
	h := newHarness(t, 0.1)
	c := newTestCups(h)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	for _, idx := range []int{-1, 3} {
		if err := c.Pick(idx); !errors.Is(err, engine.ErrInvalidChoice) {
			t.Errorf("Pick(%d): expected ErrInvalidChoice, got %v", idx, err)
		}
	}
	if c.State().Phase != CupsChoosing {
		t.Errorf("invalid pick changed phase to %s", c.State().Phase)
	}
}

func TestCupsSafetyCap(t *testing.T) {
	h := newHarness(t, 0.9)
	c := newTestCups(h)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	for round := 1; round <= 10; round++ {
		if err := c.Pick(0); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		h.advance(800 * time.Millisecond)
	}

	res := h.onlyResult()
	want := c.Multiplier(10)
	if !res.IsWin || res.Multiplier != want {
		t.Fatalf("expected auto win at %v, got %+v", want, res)
	}
	if h.balance() != 9900+engine.Payout(100, want) {
		t.Errorf("balance = %d", h.balance())
	}
	if err := c.Pick(0); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Errorf("pick after cap: %v", err)
	}
}

func TestCupsAbandonDuringReveal(t *testing.T) {
	h := newHarness(t, 0.1, 0.9)
	c := newTestCups(h)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if err := c.Pick(0); err != nil {
		t.Fatal(err)
	}
	c.Abandon()
	if h.sched.Pending() != 0 {
		t.Errorf("abandon left %d timers", h.sched.Pending())
	}

	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	h.advance(time.Second)

	res := h.onlyResult()
	if res.Message != "abandoned" {
		t.Errorf("unexpected result: %+v", res)
	}
	st := c.State()
	if !st.Open || st.Phase != CupsChoosing || st.Round != 1 {
		t.Errorf("stale reveal touched the new session: %+v", st)
	}
	if h.balance() != 9800 {
		t.Errorf("balance = %d, want 9800", h.balance())
	}
}

func TestLevelUpPublishedOutsideEngineLock(t *testing.T) {
	h := newHarness(t, 0.9, 0.9)
	h.ledger.Restore(ledger.Snapshot{Balance: 10000, CurrentBet: 100, XP: 990})
	c := newTestCups(h)

	var ups []events.LevelUp
	var stateAtLevelUp State
	h.bus.Subscribe(func(ev events.Event) {
		if ev.Kind == events.KindLevelUp {
			ups = append(ups, *ev.LevelUp)
			stateAtLevelUp = c.State()
		}
	})

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := c.Pick(0); err != nil {
		t.Fatalf("Pick failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.advance(800 * time.Millisecond)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("level-up subscriber deadlocked on the engine lock")
	}

	if len(ups) != 1 || ups[0] != (events.LevelUp{From: 1, To: 2}) {
		t.Fatalf("level-ups = %+v, want one 1->2", ups)
	}
	if stateAtLevelUp.Round != 2 {
		t.Errorf("state seen by subscriber: %+v", stateAtLevelUp)
	}
	for _, ev := range h.events {
		if ev.Kind == events.KindLevelUp && ev.Game != engine.GameCups {
			t.Errorf("level-up game = %q", ev.Game)
		}
	}
}
