package ledger

import (
	"errors"
	"testing"

	"github.com/MJE43/arcade-engine-go/internal/engine"
)

type recordingPersister struct {
	saves []Snapshot
}

func (p *recordingPersister) SaveLedger(s Snapshot) { p.saves = append(p.saves, s) }

func TestNewLedgerDefaults(t *testing.T) {
	l := New()
	s := l.Snapshot()
	if s.Balance != 10000 || s.CurrentBet != 100 || s.Level != 1 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}

func TestSetBetClamps(t *testing.T) {
	l := New()
	tests := []struct {
		in   int64
		want int64
	}{
		{250, 250},
		{5, 10},
		{-20, 10},
		{50000, 10000},
	}
	for _, tt := range tests {
		if got := l.SetBet(tt.in); got != tt.want {
			t.Errorf("SetBet(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}

	l.Restore(Snapshot{Balance: 4, CurrentBet: 10})
	if got := l.SetBet(100); got != 10 {
		t.Errorf("below-minimum balance: SetBet = %d, want floor 10", got)
	}
	if _, err := l.PlaceBet(); !errors.Is(err, engine.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestPlaceBetDebitsOnce(t *testing.T) {
	p := &recordingPersister{}
	l := New(WithPersister(p))

	bet, err := l.PlaceBet()
	if err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}
	s := l.Snapshot()
	if bet != 100 || s.Balance != 9900 || s.TotalWagered != 100 || s.GamesPlayed != 1 {
		t.Errorf("after debit: bet=%d %+v", bet, s)
	}
	if len(p.saves) != 1 || p.saves[0].Balance != 9900 {
		t.Errorf("expected one persisted snapshot, got %+v", p.saves)
	}
}

func TestDebitInsufficientLeavesStateUntouched(t *testing.T) {
	p := &recordingPersister{}
	l := New(WithPersister(p))
	before := l.Snapshot()

	if err := l.Debit(10001); !errors.Is(err, engine.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if l.Snapshot() != before {
		t.Errorf("state mutated on failed debit")
	}
	if len(p.saves) != 0 {
		t.Errorf("failed debit persisted %d snapshots", len(p.saves))
	}
}

func TestCreditAndLossStreak(t *testing.T) {
	l := New()
	l.Credit(218)
	l.Credit(50)
	s := l.Snapshot()
	if s.Streak != 2 || s.TotalWon != 268 || s.BiggestWin != 218 || s.Balance != 10268 {
		t.Errorf("after credits: %+v", s)
	}
	l.RecordLoss()
	if l.Snapshot().Streak != 0 {
		t.Errorf("streak not reset")
	}
}

func TestStatsDerivedValues(t *testing.T) {
	l := New()
	if st := l.Stats(); st.AverageBet != 0 || st.NetProfit != 0 {
		t.Fatalf("fresh stats: %+v", st)
	}
	if err := l.Debit(100); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if err := l.Debit(300); err != nil {
		t.Fatalf("debit: %v", err)
	}
	l.Credit(218)

	st := l.Stats()
	if st.NetProfit != -182 {
		t.Errorf("net profit = %d, want -182", st.NetProfit)
	}
	if st.AverageBet != 200 {
		t.Errorf("average bet = %v, want 200", st.AverageBet)
	}
}

func TestAddXPLevelUp(t *testing.T) {
	l := New()
	tests := []struct {
		xp       int64
		from, to int
	}{
		{950, 1, 1},
		{100, 1, 2},
		{0, 2, 2},
		{2000, 2, 4},
	}
	for _, tt := range tests {
		from, to := l.AddXP(tt.xp)
		if from != tt.from || to != tt.to {
			t.Fatalf("AddXP(%d) = %d->%d, want %d->%d", tt.xp, from, to, tt.from, tt.to)
		}
	}
	if l.Snapshot().Level != 4 {
		t.Errorf("level = %d, want 4", l.Snapshot().Level)
	}
	if st := l.Stats(); st.XPIntoLevel != 50 {
		t.Errorf("xp into level = %d, want 50", st.XPIntoLevel)
	}
}

func TestRefillIsIdempotent(t *testing.T) {
	l := New()
	l.SetBet(500)
	if err := l.Debit(9800); err != nil {
		t.Fatal(err)
	}
	l.Refill()
	l.Refill()
	s := l.Snapshot()
	if s.Balance != 10000 || s.CurrentBet != 500 {
		t.Errorf("after refill: %+v", s)
	}
	if s.TotalWagered != 9800 {
		t.Errorf("refill touched statistics: %+v", s)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	l := New()
	l.AddXP(3000)
	l.Credit(10)
	l.Reset()
	if l.Snapshot() != l.Defaults() {
		t.Errorf("reset did not restore defaults: %+v", l.Snapshot())
	}
}

func TestRestoreRepairsFields(t *testing.T) {
	tests := []struct {
		name    string
		in      Snapshot
		balance int64
		level   int
		bet     int64
	}{
		{"negative balance", Snapshot{Balance: -5, XP: 2500, Level: 99}, 0, 3, 10},
		{"missing bet", Snapshot{Balance: 5000}, 5000, 1, 100},
		{"bet above balance", Snapshot{Balance: 300, CurrentBet: 800}, 300, 1, 300},
		{"bet below minimum", Snapshot{Balance: 300, CurrentBet: 3}, 300, 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			l.Restore(tt.in)
			s := l.Snapshot()
			if s.Balance != tt.balance || s.Level != tt.level || s.CurrentBet != tt.bet {
				t.Errorf("restore = %+v, want balance %d level %d bet %d", s, tt.balance, tt.level, tt.bet)
			}
		})
	}
}
