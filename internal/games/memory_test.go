package games

import (
	"errors"
	"testing"
	"time"

	"github.com/MJE43/arcade-engine-go/internal/engine"
)

// Playback of n symbols at step, plus the input delay.
func playback(n int, step time.Duration) time.Duration {
	return time.Duration(n)*step + 600*time.Millisecond
}

func newTestMemory(h *harness) *Memory {
	return NewMemory(h.deps(), DefaultTuning().Memory, 10)
}

func TestMemoryShowsBeforeInput(t *testing.T) {
	// sequence 0, 1, 2
	h := newHarness(t, 0.1, 0.3, 0.6)
	m := newTestMemory(h)
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	st := m.State()
	if st.Phase != MemoryShowing || st.Multiplier != 1 || st.Round != 1 {
		t.Fatalf("after start: %+v", st)
	}
	if len(st.Sequence) != 3 || st.Sequence[0] != 0 || st.Sequence[1] != 1 || st.Sequence[2] != 2 {
		t.Fatalf("sequence = %v", st.Sequence)
	}
	if err := m.Input(0); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Errorf("input while showing: %v", err)
	}

	h.advance(800 * time.Millisecond)
	if got := m.State().ShowIndex; got != 1 {
		t.Errorf("show index after one step = %d", got)
	}
	h.advance(playback(3, 800*time.Millisecond) - 800*time.Millisecond - time.Millisecond)
	if m.State().Phase != MemoryShowing {
		t.Fatalf("input opened early")
	}
	h.advance(time.Millisecond)
	if m.State().Phase != MemoryInput {
		t.Fatalf("phase = %s, want input", m.State().Phase)
	}
	if m.State().Sequence != nil {
		t.Error("sequence exposed during input")
	}
}

func TestMemoryWrongSymbolEndsAtOnce(t *testing.T) {
	h := newHarness(t, 0.1, 0.3, 0.6)
	m := newTestMemory(h)
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	h.advance(playback(3, 800*time.Millisecond))

	if err := m.Input(0); err != nil {
		t.Fatal(err)
	}
	if err := m.Input(3); err != nil {
		t.Fatal(err)
	}
	if err := m.Input(2); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Errorf("input after loss: %v", err)
	}
	res := h.onlyResult()
	if res.IsWin || res.Amount != 100 {
		t.Errorf("unexpected result: %+v", res)
	}
	if h.balance() != 9900 {
		t.Errorf("balance = %d", h.balance())
	}
}

func TestMemoryLevelUpAndCashOut(t *testing.T) {
	h := newHarness(t, 0.1, 0.3, 0.6, 0.8)
	m := newTestMemory(h)
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	h.advance(playback(3, 800*time.Millisecond))
	if err := m.CashOut(); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Errorf("cash-out at level 1: %v", err)
	}
	for _, sym := range []int{0, 1, 2} {
		if err := m.Input(sym); err != nil {
			t.Fatal(err)
		}
	}

	st := m.State()
	if st.Round != 2 || st.Multiplier != 3.38 || st.Phase != MemoryShowing || len(st.Sequence) != 4 || st.Sequence[3] != 3 {
		t.Fatalf("after level: %+v", st)
	}
	if err := m.CashOut(); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Errorf("cash-out while showing: %v", err)
	}

	h.advance(playback(4, 700*time.Millisecond))
	if err := m.CashOut(); err != nil {
		t.Fatalf("CashOut failed: %v", err)
	}
	res := h.onlyResult()
	if !res.IsWin || res.Amount != 338 || res.Round != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if h.balance() != 10238 {
		t.Errorf("balance = %d", h.balance())
	}
}

func TestMemoryPerfectRun(t *testing.T) {
	h := newHarness(t, 0.1)
	m := newTestMemory(h)
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	for level := 1; level <= 5; level++ {
		h.advance(10 * time.Second)
		n := 2 + level
		for i := 0; i < n; i++ {
			if err := m.Input(0); err != nil {
				t.Fatalf("level %d input %d: %v", level, i, err)
			}
		}
	}
	res := h.onlyResult()
	if !res.IsWin || res.Message != "perfect memory" || res.Multiplier != 17.09 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if h.balance() != 9900+1709 {
		t.Errorf("balance = %d", h.balance())
	}
	if h.sched.Pending() != 0 {
		t.Errorf("%d timers left after win", h.sched.Pending())
	}
}
