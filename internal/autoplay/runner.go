// Package autoplay runs user strategy scripts against the Crash mode. A
// script defines dobet(), which runs after every settled round and may
// change nextbet and target or call stop().
package autoplay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/MJE43/arcade-engine-go/internal/engine"
	"github.com/MJE43/arcade-engine-go/internal/events"
	"github.com/MJE43/arcade-engine-go/internal/ledger"
)

// State is the runner lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
	StateError   State = "error"
)

// ErrRunning is returned by Start while a script is running.
var ErrRunning = errors.New("autoplay is already running")

// ErrNotRunning is returned by Stop when nothing is running.
var ErrNotRunning = errors.New("autoplay is not running")

// Player plays one Crash round with an automatic cash-out and blocks until
// it settles.
type Player interface {
	PlayCrash(ctx context.Context, bet int64, target float64) (engine.Result, error)
}

// Account exposes the ledger values scripts can read.
type Account interface {
	Snapshot() ledger.Snapshot
}

// Snapshot is a serializable view of the runner.
type Snapshot struct {
	State  State        `json:"state"`
	Error  string       `json:"error,omitempty"`
	Reason string       `json:"reason,omitempty"`
	Stats  *Statistics  `json:"stats,omitempty"`
	Chart  []ChartPoint `json:"chart,omitempty"`
	Logs   []LogEntry   `json:"logs,omitempty"`
}

type Runner struct {
	player  Player
	account Account
	events  events.Publisher
	logger  *log.Logger

	mu     sync.RWMutex
	state  State
	err    error
	reason string
	cancel context.CancelFunc
	done   chan struct{}

	vm    *VM
	vars  *Variables
	stats *Statistics
	chart *ChartBuffer
}

func NewRunner(player Player, account Account, pub events.Publisher) *Runner {
	if pub == nil {
		pub = events.Discard
	}
	return &Runner{
		player:  player,
		account: account,
		events:  pub,
		logger:  log.New(os.Stdout, "[AUTOPLAY] ", log.LstdFlags),
		state:   StateIdle,
	}
}

// Start executes script once and begins the bet loop in the background.
func (r *Runner) Start(script string) error {
	r.mu.Lock()
	if r.state == StateRunning {
		r.mu.Unlock()
		return ErrRunning
	}

	snap := r.account.Snapshot()
	r.stats = NewStatistics(snap.Balance)
	r.chart = NewChartBuffer(500)
	r.vars = NewVariables(r.stats, snap.CurrentBet)
	r.vars.Level = snap.Level
	r.vars.XP = snap.XP
	r.vm = NewVM()
	r.err = nil
	r.reason = ""
	r.state = StateRunning
	vm, vars := r.vm, r.vars
	r.mu.Unlock()

	vm.SetVariables(vars)
	if err := vm.Execute(script); err != nil {
		r.setError(err)
		return err
	}

	r.mu.Lock()
	vm.SyncVariables(vars)
	vars.Running = true
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()
	vm.SetVariables(vars)

	r.logger.Printf("autoplay_started bet=%d target=%.2f", vars.NextBet, vars.Target)
	go r.loop(ctx, done)
	return nil
}

// Stop cancels the run and waits for the loop to exit. A round in flight
// is abandoned.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if r.state != StateRunning || r.cancel == nil {
		r.mu.Unlock()
		return ErrNotRunning
	}
	r.cancel()
	done := r.done
	r.mu.Unlock()

	<-done
	return nil
}

// Wait blocks until the current run ends or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	r.mu.RLock()
	done := r.done
	r.mu.RUnlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := Snapshot{State: r.state, Reason: r.reason}
	if r.err != nil {
		snap.Error = r.err.Error()
	}
	if r.stats != nil {
		st := *r.stats
		snap.Stats = &st
	}
	if r.chart != nil {
		snap.Chart = append([]ChartPoint(nil), r.chart.Points...)
	}
	if r.vm != nil {
		snap.Logs = r.vm.Logs()
	}
	return snap
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		if p := recover(); p != nil {
			r.setError(fmt.Errorf("script panic: %v", p))
		}
	}()

	for {
		if ctx.Err() != nil {
			r.finish("stopped")
			return
		}

		r.mu.RLock()
		bet, target, running := r.vars.NextBet, r.vars.Target, r.vars.Running
		r.mu.RUnlock()

		if r.vm.StopRequested() || !running {
			r.finish("stop() called")
			return
		}
		if bet <= 0 {
			r.setError(fmt.Errorf("nextbet must be > 0, got %d", bet))
			return
		}
		if bal := r.account.Snapshot().Balance; bet > bal {
			r.finish(fmt.Sprintf("insufficient balance: bet %d, balance %d", bet, bal))
			return
		}

		res, err := r.player.PlayCrash(ctx, bet, target)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			r.finish("stopped")
			return
		case errors.Is(err, engine.ErrInsufficientBalance):
			r.finish(err.Error())
			return
		default:
			r.setError(fmt.Errorf("round failed: %w", err))
			return
		}

		r.settle(res)

		if err := r.vm.CallDobet(); err != nil {
			r.setError(err)
			return
		}
		r.mu.Lock()
		r.vm.SyncVariables(r.vars)
		r.mu.Unlock()

		if d := r.vm.TakeSleep(); d > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(d):
			}
		}
	}
}

func (r *Runner) settle(res engine.Result) {
	var payout int64
	if res.IsWin {
		payout = res.Amount
	}
	acct := r.account.Snapshot()

	r.mu.Lock()
	r.stats.RecordBet(BetResult{
		Amount:     res.Bet,
		Payout:     payout,
		Multiplier: res.Multiplier,
		Win:        res.IsWin,
	})
	r.stats.Balance = acct.Balance
	r.vars.Win = res.IsWin
	r.vars.PreviousBet = res.Bet
	r.vars.Multiplier = res.Multiplier
	r.vars.Balance = acct.Balance
	r.vars.Level = acct.Level
	r.vars.XP = acct.XP
	r.chart.Push(ChartPoint{BetNumber: r.stats.Bets, Profit: r.stats.Profit, Win: res.IsWin})
	vars := r.vars
	r.mu.Unlock()

	r.vm.SetVariables(vars)
}

func (r *Runner) finish(reason string) {
	r.mu.Lock()
	if r.state == StateRunning {
		r.state = StateStopped
	}
	r.reason = reason
	r.vars.Running = false
	bets := r.stats.Bets
	r.mu.Unlock()
	r.logger.Printf("autoplay_stopped bets=%d reason=%q", bets, reason)
	r.events.Publish(events.Event{Kind: events.KindNotice, Game: engine.GameCrash, Notice: "autoplay stopped: " + reason})
}

func (r *Runner) setError(err error) {
	r.mu.Lock()
	r.state = StateError
	r.err = err
	if r.vars != nil {
		r.vars.Running = false
	}
	r.mu.Unlock()
	r.logger.Printf("autoplay_failed error=%v", err)
	r.events.Publish(events.Event{Kind: events.KindNotice, Game: engine.GameCrash, Notice: "autoplay failed: " + err.Error()})
}
