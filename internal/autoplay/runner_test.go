package autoplay

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MJE43/arcade-engine-go/internal/engine"
	"github.com/MJE43/arcade-engine-go/internal/ledger"
)

// testPlayer wins every third round at the requested target.
type testPlayer struct {
	mu      sync.Mutex
	balance int64
	calls   int
	bets    []int64
}

func (p *testPlayer) PlayCrash(ctx context.Context, bet int64, target float64) (engine.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return engine.Result{}, err
	}
	if bet > p.balance {
		return engine.Result{}, engine.ErrInsufficientBalance
	}
	p.calls++
	p.bets = append(p.bets, bet)
	p.balance -= bet
	res := engine.Result{Bet: bet, GameType: engine.GameCrash, Amount: bet, Multiplier: 1.5}
	if p.calls%3 == 0 {
		res.IsWin = true
		res.Multiplier = target
		res.Amount = engine.Payout(bet, target)
		p.balance += res.Amount
	}
	return res, nil
}

func (p *testPlayer) Snapshot() ledger.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ledger.Snapshot{Balance: p.balance, CurrentBet: 10, Level: 1}
}

func newTestRunner(balance int64) (*Runner, *testPlayer) {
	p := &testPlayer{balance: balance}
	return NewRunner(p, p, nil), p
}

func waitStopped(t *testing.T, r *Runner) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Wait(ctx); err != nil {
		r.Stop()
		t.Fatal("runner did not stop within timeout")
	}
	return r.Snapshot()
}

func TestRunnerStartStop(t *testing.T) {
	r, _ := newTestRunner(1_000_000)

	script := `
		basebet = 10
		nextbet = basebet
		target = 2

		dobet = function() {
			sleep(5)
		}
	`
	if err := r.Start(script); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if r.Snapshot().State != StateRunning {
		t.Errorf("expected running, got %s", r.Snapshot().State)
	}
	if err := r.Start(script); err != ErrRunning {
		t.Errorf("second Start: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	snap := r.Snapshot()
	if snap.State != StateStopped {
		t.Errorf("expected stopped, got %s", snap.State)
	}
	if snap.Stats == nil || snap.Stats.Bets == 0 {
		t.Error("expected some bets to have been placed")
	}
	if err := r.Stop(); err != ErrNotRunning {
		t.Errorf("Stop when stopped: %v", err)
	}
}

func TestRunnerMartingale(t *testing.T) {
	r, p := newTestRunner(1_000_000)

	script := `
		basebet = 10
		nextbet = basebet
		target = 2

		dobet = function() {
			if (bets >= 30) {
				stop()
				return
			}
			if (win) {
				nextbet = basebet
			} else {
				nextbet = previousbet * 2
			}
		}
	`
	if err := r.Start(script); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	snap := waitStopped(t, r)

	if snap.State != StateStopped {
		t.Fatalf("expected stopped, got %s (%s)", snap.State, snap.Error)
	}
	if snap.Stats.Bets != 30 || snap.Stats.Wins != 10 || snap.Stats.Losses != 20 {
		t.Errorf("unexpected stats: %+v", snap.Stats)
	}
	// loss, loss, win repeats: 10, 20, 40, 10, ...
	want := []int64{10, 20, 40, 10, 20, 40}
	for i, b := range want {
		if p.bets[i] != b {
			t.Fatalf("bet %d = %d, want %d (bets %v)", i, p.bets[i], b, p.bets[:6])
		}
	}
	// each cycle stakes 70 and returns 80
	if snap.Stats.Profit != 100 {
		t.Errorf("profit = %d, want 100", snap.Stats.Profit)
	}
	if snap.Stats.Balance != 1_000_100 {
		t.Errorf("balance = %d", snap.Stats.Balance)
	}
	if len(snap.Chart) != 30 {
		t.Errorf("chart points = %d", len(snap.Chart))
	}
}

func TestRunnerStopsOnInsufficientBalance(t *testing.T) {
	r, _ := newTestRunner(100)

	script := `
		nextbet = 60
		dobet = function() {}
	`
	if err := r.Start(script); err != nil {
		t.Fatal(err)
	}
	snap := waitStopped(t, r)
	if snap.State != StateStopped || !strings.Contains(snap.Reason, "insufficient balance") {
		t.Errorf("unexpected snapshot: state=%s reason=%q error=%q", snap.State, snap.Reason, snap.Error)
	}
	if snap.Stats.Bets != 1 {
		t.Errorf("bets = %d, want 1", snap.Stats.Bets)
	}
}

func TestRunnerNoDobet(t *testing.T) {
	r, _ := newTestRunner(1000)
	if err := r.Start("var x = 1;"); err == nil {
		t.Fatal("expected error for missing dobet()")
	}
	if r.Snapshot().State != StateError {
		t.Errorf("expected error state, got %s", r.Snapshot().State)
	}
}

func TestRunnerInvalidNextBet(t *testing.T) {
	r, _ := newTestRunner(1000)
	if err := r.Start("nextbet = 0; dobet = function() {}"); err != nil {
		t.Fatal(err)
	}
	snap := waitStopped(t, r)
	if snap.State != StateError || !strings.Contains(snap.Error, "nextbet") {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestRunnerRunawayScript(t *testing.T) {
	r, _ := newTestRunner(1000)
	if err := r.Start("nextbet = 10; dobet = function() { while (true) {} }"); err != nil {
		t.Fatal(err)
	}
	snap := waitStopped(t, r)
	if snap.State != StateError || !strings.Contains(snap.Error, "timed out") {
		t.Errorf("unexpected snapshot: state=%s error=%q", snap.State, snap.Error)
	}
}

func TestRunnerLogs(t *testing.T) {
	r, _ := newTestRunner(1000)
	script := `
		nextbet = 10
		log("hello from script")
		dobet = function() {
			console.log("bet", bets)
			stop()
		}
	`
	if err := r.Start(script); err != nil {
		t.Fatal(err)
	}
	snap := waitStopped(t, r)

	var msgs []string
	for _, l := range snap.Logs {
		msgs = append(msgs, l.Message)
	}
	if len(msgs) != 2 || msgs[0] != "hello from script" || msgs[1] != "bet 1" {
		t.Errorf("logs = %q", msgs)
	}
}

func TestRunnerSandbox(t *testing.T) {
	r, _ := newTestRunner(1000)
	err := r.Start(`nextbet = 10; require("fs"); dobet = function() {}`)
	if err == nil {
		t.Fatal("expected require to be unavailable")
	}
}

func TestChartBufferDecimates(t *testing.T) {
	cb := NewChartBuffer(10)
	for i := 0; i < 25; i++ {
		cb.Push(ChartPoint{BetNumber: i, Profit: int64(i), Win: i%2 == 0})
	}
	if len(cb.Points) >= 20 {
		t.Errorf("expected decimation below 20 points, got %d", len(cb.Points))
	}
	if cb.Points[0].BetNumber != 0 {
		t.Errorf("first point should be preserved, got %d", cb.Points[0].BetNumber)
	}
	if cb.Points[len(cb.Points)-1].BetNumber != 24 {
		t.Errorf("last point should be preserved, got %d", cb.Points[len(cb.Points)-1].BetNumber)
	}
}
