// Package arcade is the command surface the presentation layer talks to. It
// tracks the active mode, the visible result and the play-again timer, and
// routes every command to the engine of the active mode.
package arcade

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/MJE43/arcade-engine-go/internal/engine"
	"github.com/MJE43/arcade-engine-go/internal/events"
	"github.com/MJE43/arcade-engine-go/internal/games"
	"github.com/MJE43/arcade-engine-go/internal/history"
	"github.com/MJE43/arcade-engine-go/internal/ledger"
)

const DefaultPlayAgainDelay = 300 * time.Millisecond

// Options wires an Arcade. Ledger, Registry and Bus are required.
type Options struct {
	Ledger         *ledger.Ledger
	Registry       *games.Registry
	Bus            *events.Bus
	History        *history.Recorder
	Scheduler      engine.Scheduler
	PlayAgainDelay time.Duration
	Logger         *log.Logger
}

// Arcade never holds its own lock while calling into an engine; engine
// events re-enter through the bus subscription.
type Arcade struct {
	ledger   *ledger.Ledger
	registry *games.Registry
	bus      *events.Bus
	history  *history.Recorder
	sched    engine.Scheduler
	delay    time.Duration
	logger   *log.Logger
	unsub    func()

	mu         sync.Mutex
	active     engine.GameType
	result     *engine.Result
	pending    engine.Handle
	pendingGen uint64
}

// State is the full snapshot served to clients.
type State struct {
	ActiveGame       engine.GameType `json:"active_game"`
	Ledger           ledger.Stats    `json:"ledger"`
	Game             games.State     `json:"game"`
	Result           *engine.Result  `json:"result,omitempty"`
	PlayAgainPending bool            `json:"play_again_pending"`
}

func New(o Options) *Arcade {
	if o.Scheduler == nil {
		o.Scheduler = engine.NewClockScheduler(nil)
	}
	if o.PlayAgainDelay <= 0 {
		o.PlayAgainDelay = DefaultPlayAgainDelay
	}
	if o.Logger == nil {
		o.Logger = log.New(os.Stdout, "[ARCADE] ", log.LstdFlags)
	}
	a := &Arcade{
		ledger:   o.Ledger,
		registry: o.Registry,
		bus:      o.Bus,
		history:  o.History,
		sched:    o.Scheduler,
		delay:    o.PlayAgainDelay,
		logger:   o.Logger,
		active:   engine.GameCups,
	}
	a.unsub = o.Bus.Subscribe(a.onEvent)
	return a
}

func (a *Arcade) onEvent(ev events.Event) {
	if ev.Kind != events.KindResult || ev.Result == nil {
		return
	}
	res := *ev.Result
	res.IsVisible = true
	a.mu.Lock()
	a.result = &res
	a.mu.Unlock()
}

// Close abandons any open session and detaches from the bus.
func (a *Arcade) Close() {
	a.mu.Lock()
	a.cancelPendingLocked()
	a.mu.Unlock()
	for _, e := range a.registry.All() {
		e.Abandon()
	}
	a.unsub()
}

func (a *Arcade) Games() []games.Spec { return a.registry.ListGames() }

func (a *Arcade) ActiveGame() engine.GameType {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *Arcade) activeEngine() games.Engine {
	e, _ := a.registry.Get(a.ActiveGame())
	return e
}

// SetActiveGame switches mode. An open session in the previous mode is
// abandoned first.
func (a *Arcade) SetActiveGame(g engine.GameType) error {
	next, err := a.registry.Get(g)
	if err != nil {
		return err
	}
	a.mu.Lock()
	prev := a.active
	a.cancelPendingLocked()
	a.mu.Unlock()

	if prev != g {
		if e, err := a.registry.Get(prev); err == nil {
			e.Abandon()
		}
	}

	a.mu.Lock()
	a.active = next.Type()
	if prev != g {
		a.result = nil
	}
	a.mu.Unlock()
	a.logger.Printf("active_game from=%s to=%s", prev, g)
	return nil
}

// SetBet clamps and stores the bet, returning the stored value.
func (a *Arcade) SetBet(amount int64) int64 {
	return a.ledger.SetBet(amount)
}

// Start opens a session in the active mode. A pending play-again is
// cancelled and the visible result is closed.
func (a *Arcade) Start() error {
	a.mu.Lock()
	a.cancelPendingLocked()
	a.result = nil
	g := a.active
	a.mu.Unlock()
	return a.startGame(g)
}

func (a *Arcade) startGame(g engine.GameType) error {
	e, err := a.registry.Get(g)
	if err != nil {
		return err
	}
	if err := e.Start(); err != nil {
		a.logger.Printf("start_rejected game=%s error=%v", g, err)
		return err
	}
	return nil
}

// Select picks an option in the Cups mode.
func (a *Arcade) Select(index int) error {
	p, ok := a.activeEngine().(games.Picker)
	if !ok {
		return fmt.Errorf("select in %s: %w", a.ActiveGame(), engine.ErrInvalidTransition)
	}
	return p.Pick(index)
}

// Hit signals the Reaction mode.
func (a *Arcade) Hit() error {
	h, ok := a.activeEngine().(games.Hitter)
	if !ok {
		return fmt.Errorf("hit in %s: %w", a.ActiveGame(), engine.ErrInvalidTransition)
	}
	return h.Hit()
}

// Input enters a symbol in the Memory mode.
func (a *Arcade) Input(symbol int) error {
	in, ok := a.activeEngine().(games.Inputter)
	if !ok {
		return fmt.Errorf("input in %s: %w", a.ActiveGame(), engine.ErrInvalidTransition)
	}
	return in.Input(symbol)
}

func (a *Arcade) CashOut() error {
	return a.activeEngine().CashOut()
}

// Abandon forfeits the open session of the active mode, if any.
func (a *Arcade) Abandon() {
	a.mu.Lock()
	a.cancelPendingLocked()
	a.mu.Unlock()
	a.activeEngine().Abandon()
}

// SetAutoCashOut arms the Crash mode's automatic cash-out.
func (a *Arcade) SetAutoCashOut(target float64) error {
	return a.registry.Crash().SetAutoCashOut(target)
}

// CloseResult hides the visible result.
func (a *Arcade) CloseResult() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closeResultLocked()
}

func (a *Arcade) closeResultLocked() {
	if a.result != nil {
		a.result.IsVisible = false
	}
}

// PlayAgain closes the result and starts the active mode again after the
// play-again delay. Start failures are reported through the bus by the
// engine and logged here.
func (a *Arcade) PlayAgain() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closeResultLocked()
	a.cancelPendingLocked()
	gen := a.pendingGen
	g := a.active
	a.pending = a.sched.AfterFunc(a.delay, func() {
		a.mu.Lock()
		if gen != a.pendingGen || g != a.active {
			a.mu.Unlock()
			return
		}
		a.pending = nil
		a.result = nil
		a.mu.Unlock()
		if err := a.startGame(g); err != nil {
			a.logger.Printf("play_again_failed game=%s error=%v", g, err)
		}
	})
}

func (a *Arcade) cancelPendingLocked() {
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
	a.pendingGen++
}

// Refill restores the balance to the initial endowment.
func (a *Arcade) Refill() {
	a.ledger.Refill()
	a.logger.Printf("balance_refilled balance=%d", a.ledger.Balance())
}

// Reset abandons the active session, returns the ledger to its defaults
// and clears the history.
func (a *Arcade) Reset() {
	a.Abandon()
	a.ledger.Reset()
	if a.history != nil {
		a.history.Clear()
	}
	a.mu.Lock()
	a.result = nil
	a.mu.Unlock()
	a.logger.Printf("ledger_reset")
}

// Result returns the most recent result, or nil.
func (a *Arcade) Result() *engine.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return nil
	}
	r := *a.result
	return &r
}

// History returns the resolved sessions, newest first.
func (a *Arcade) History() []history.Entry {
	if a.history == nil {
		return nil
	}
	return a.history.Entries()
}

func (a *Arcade) State() State {
	e := a.activeEngine()
	a.mu.Lock()
	st := State{
		ActiveGame:       a.active,
		PlayAgainPending: a.pending != nil,
	}
	if a.result != nil {
		r := *a.result
		st.Result = &r
	}
	a.mu.Unlock()
	st.Ledger = a.ledger.Stats()
	st.Game = e.State()
	return st
}

// PlayCrash plays one Crash session at bet with an automatic cash-out at
// target and blocks until it resolves. Cancelling ctx abandons the session.
func (a *Arcade) PlayCrash(ctx context.Context, bet int64, target float64) (engine.Result, error) {
	if err := a.SetActiveGame(engine.GameCrash); err != nil {
		return engine.Result{}, err
	}
	if err := a.SetAutoCashOut(target); err != nil {
		return engine.Result{}, err
	}
	a.SetBet(bet)

	done := make(chan engine.Result, 1)
	var once sync.Once
	unsub := a.bus.Subscribe(func(ev events.Event) {
		if ev.Kind == events.KindResult && ev.Result != nil && ev.Result.GameType == engine.GameCrash {
			once.Do(func() { done <- *ev.Result })
		}
	})
	defer unsub()

	if err := a.Start(); err != nil {
		return engine.Result{}, err
	}
	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		a.registry.Crash().Abandon()
		return engine.Result{}, ctx.Err()
	}
}
