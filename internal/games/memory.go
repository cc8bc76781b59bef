package games

import (
	"fmt"
	"time"

	"github.com/MJE43/arcade-engine-go/internal/engine"
)

const (
	MemoryIdle    = "idle"
	MemoryShowing = "showing"
	MemoryInput   = "input"
	MemoryWon     = "won"
	MemoryLost    = "lost"
)

// Memory plays back a growing symbol sequence and pays for reproducing it.
// Input is only accepted once the whole sequence has been shown.
type Memory struct {
	base
	t MemoryTuning

	phase      string
	level      int
	multiplier float64
	sequence   []int
	showIndex  int
	pos        int
}

func NewMemory(deps Deps, t MemoryTuning, lossXP int64) *Memory {
	if t.Alphabet < 2 {
		t.Alphabet = 4
	}
	if t.InitialLength < 1 {
		t.InitialLength = 3
	}
	if t.MaxLevel < 2 {
		t.MaxLevel = 6
	}
	m := &Memory{t: t, phase: MemoryIdle, multiplier: 1, showIndex: -1}
	m.init(engine.GameMemory, deps, lossXP)
	return m
}

func (m *Memory) Type() engine.GameType { return engine.GameMemory }

func (m *Memory) Spec() Spec {
	return Spec{
		ID:          engine.GameMemory,
		Name:        "Memory",
		Description: "Repeat the sequence. Each completed level grows it by one symbol.",
		CashOut:     true,
	}
}

func (m *Memory) Start() error {
	m.mu.Lock()
	defer m.unlockAndFlush()
	if err := m.openLocked(); err != nil {
		return err
	}
	m.level = 1
	m.multiplier = MemoryMultiplier(1, m.t.Base, m.t.Growth)
	m.sequence = m.sequence[:0]
	for i := 0; i < m.t.InitialLength; i++ {
		m.sequence = append(m.sequence, engine.Intn(m.deps.Source, m.t.Alphabet))
	}
	m.showLocked(m.t.FirstStep)
	return nil
}

// showLocked starts playback: each symbol is lit for step, then input
// opens after the input delay.
func (m *Memory) showLocked(step time.Duration) {
	m.phase = MemoryShowing
	m.pos = 0
	m.showIndex = 0
	m.phaseLocked(m.phase)
	m.afterLocked(step, func() { m.stepLocked(step) })
}

func (m *Memory) stepLocked(step time.Duration) {
	if m.phase != MemoryShowing {
		return
	}
	m.showIndex++
	if m.showIndex < len(m.sequence) {
		m.afterLocked(step, func() { m.stepLocked(step) })
		return
	}
	m.showIndex = -1
	m.afterLocked(m.t.InputDelay, func() {
		if m.phase != MemoryShowing {
			return
		}
		m.phase = MemoryInput
		m.phaseLocked(m.phase)
	})
}

// Input checks symbol against the next expected element. A mismatch ends
// the session at once.
func (m *Memory) Input(symbol int) error {
	m.mu.Lock()
	defer m.unlockAndFlush()
	if !m.sess.open || m.phase != MemoryInput {
		return fmt.Errorf("memory input in phase %s: %w", m.phase, engine.ErrInvalidTransition)
	}
	if symbol < 0 || symbol >= m.t.Alphabet {
		return fmt.Errorf("memory symbol %d of %d: %w", symbol, m.t.Alphabet, engine.ErrInvalidChoice)
	}

	if symbol != m.sequence[m.pos] {
		m.phase = MemoryLost
		m.loseLocked(m.multiplier, m.level, fmt.Sprintf("wrong symbol at position %d", m.pos+1))
		return nil
	}
	m.pos++
	if m.pos < len(m.sequence) {
		return nil
	}

	completed := m.level
	m.addXPLocked(m.t.LevelXP * int64(completed))
	m.level++
	m.multiplier = MemoryMultiplier(m.level, m.t.Base, m.t.Growth)
	if m.level >= m.t.MaxLevel {
		m.phase = MemoryWon
		m.winLocked(m.multiplier, m.cashOutXP(), m.level, "perfect memory")
		return nil
	}
	m.sequence = append(m.sequence, engine.Intn(m.deps.Source, m.t.Alphabet))
	m.advanceLocked(m.level, m.multiplier)
	m.showLocked(m.t.Step)
	return nil
}

func (m *Memory) cashOutXP() int64 {
	return m.t.CashOutBaseXP + m.t.CashOutLevelXP*int64(m.level)
}

// CashOut is allowed from level 2 while waiting for input.
func (m *Memory) CashOut() error {
	m.mu.Lock()
	defer m.unlockAndFlush()
	if !m.sess.open || m.phase != MemoryInput || m.level < 2 {
		return fmt.Errorf("memory cash-out at level %d in phase %s: %w", m.level, m.phase, engine.ErrInvalidTransition)
	}
	m.phase = MemoryWon
	m.cancelTimersLocked()
	m.winLocked(m.multiplier, m.cashOutXP(), m.level, "cashed out")
	return nil
}

func (m *Memory) Abandon() {
	m.mu.Lock()
	defer m.unlockAndFlush()
	if m.abandonLocked(m.multiplier, m.level) {
		m.phaseLocked(MemoryIdle)
	}
	m.phase = MemoryIdle
	m.showIndex = -1
}

func (m *Memory) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := State{
		Phase:      m.phase,
		Round:      m.level,
		Multiplier: m.multiplier,
		CanCashOut: m.sess.open && m.phase == MemoryInput && m.level >= 2,
		InputPos:   m.pos,
	}
	if m.phase == MemoryShowing {
		s.Sequence = append([]int(nil), m.sequence...)
		s.ShowIndex = m.showIndex
	}
	m.sessionState(&s)
	return s
}
