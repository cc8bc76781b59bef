// Package games implements the arcade's round engines. Each engine owns one
// play session at a time and settles it against the shared ledger.
package games

import (
	"fmt"
	"log"
	"os"

	"github.com/benbjohnson/clock"

	"github.com/MJE43/arcade-engine-go/internal/engine"
	"github.com/MJE43/arcade-engine-go/internal/events"
	"github.com/MJE43/arcade-engine-go/internal/ledger"
)

// Engine is the command surface every game mode shares.
type Engine interface {
	Type() engine.GameType
	Spec() Spec
	// Start debits the current bet and opens a session.
	Start() error
	// CashOut settles the open session as a win at the current multiplier.
	CashOut() error
	// Abandon cancels pending timers and forfeits an open session.
	Abandon()
	State() State
}

// Picker is implemented by engines that take an option index.
type Picker interface {
	Pick(index int) error
}

// Hitter is implemented by engines that take a bare signal.
type Hitter interface {
	Hit() error
}

// Inputter is implemented by engines that take a symbol.
type Inputter interface {
	Input(symbol int) error
}

// Spec describes a game for listings.
type Spec struct {
	ID          engine.GameType `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CashOut     bool            `json:"cash_out"`
}

// State is a read-only view of an engine. Mode-specific fields are zero
// for the other modes.
type State struct {
	Game       engine.GameType `json:"game"`
	Phase      string          `json:"phase"`
	SessionID  string          `json:"session_id,omitempty"`
	Open       bool            `json:"open"`
	Bet        int64           `json:"bet,omitempty"`
	Round      int             `json:"round,omitempty"`
	Multiplier float64         `json:"multiplier"`
	CanCashOut bool            `json:"can_cash_out"`

	Options int  `json:"options,omitempty"`
	Picked  *int `json:"picked,omitempty"`

	ReactionMs int64 `json:"reaction_ms,omitempty"`

	Sequence  []int `json:"sequence,omitempty"`
	ShowIndex int   `json:"show_index,omitempty"`
	InputPos  int   `json:"input_pos,omitempty"`

	CrashPoint        float64 `json:"crash_point,omitempty"`
	CashedOut         bool    `json:"cashed_out,omitempty"`
	CashOutMultiplier float64 `json:"cash_out_multiplier,omitempty"`
	AutoCashOut       float64 `json:"auto_cash_out,omitempty"`
}

// Deps are the collaborators every engine needs. Zero fields fall back to
// process defaults.
type Deps struct {
	Ledger    *ledger.Ledger
	Events    events.Publisher
	Source    engine.Source
	Scheduler engine.Scheduler
	Clock     clock.Clock
	Logger    *log.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Ledger == nil {
		d.Ledger = ledger.New()
	}
	if d.Events == nil {
		d.Events = events.Discard
	}
	if d.Source == nil {
		d.Source = engine.NewSource()
	}
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	if d.Scheduler == nil {
		d.Scheduler = engine.NewClockScheduler(d.Clock)
	}
	if d.Logger == nil {
		d.Logger = log.New(os.Stdout, "[GAMES] ", log.LstdFlags)
	}
	return d
}

// Registry holds one engine per mode.
type Registry struct {
	cups     *Cups
	reaction *Reaction
	memory   *Memory
	crash    *Crash
}

// NewRegistry builds all four engines over the same collaborators.
func NewRegistry(deps Deps, t Tuning) *Registry {
	deps = deps.withDefaults()
	return &Registry{
		cups:     NewCups(deps, t.Cups, t.LossXP),
		reaction: NewReaction(deps, t.Reaction, t.LossXP),
		memory:   NewMemory(deps, t.Memory, t.LossXP),
		crash:    NewCrash(deps, t.Crash, t.LossXP),
	}
}

// Get returns the engine for a mode.
func (r *Registry) Get(g engine.GameType) (Engine, error) {
	switch g {
	case engine.GameCups:
		return r.cups, nil
	case engine.GameReaction:
		return r.reaction, nil
	case engine.GameMemory:
		return r.memory, nil
	case engine.GameCrash:
		return r.crash, nil
	}
	return nil, fmt.Errorf("%w: %q", engine.ErrUnknownGame, g)
}

// All returns the engines in menu order.
func (r *Registry) All() []Engine {
	return []Engine{r.cups, r.reaction, r.memory, r.crash}
}

// ListGames returns the spec of every registered game.
func (r *Registry) ListGames() []Spec {
	all := r.All()
	specs := make([]Spec, 0, len(all))
	for _, e := range all {
		specs = append(specs, e.Spec())
	}
	return specs
}

func (r *Registry) Cups() *Cups         { return r.cups }
func (r *Registry) Reaction() *Reaction { return r.reaction }
func (r *Registry) Memory() *Memory     { return r.memory }
func (r *Registry) Crash() *Crash       { return r.crash }
