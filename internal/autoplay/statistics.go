package autoplay

// Statistics tracks one autoplay run.
type Statistics struct {
	Bets     int   `json:"bets"`
	Wins     int   `json:"wins"`
	Losses   int   `json:"losses"`
	Wagered  int64 `json:"wagered"`
	Profit   int64 `json:"profit"`
	Balance  int64 `json:"balance"`
	StartBal int64 `json:"start_balance"`

	WinStreak  int `json:"win_streak"`
	LoseStreak int `json:"lose_streak"`
	// Positive for a win streak, negative for a losing one.
	CurrentStreak int `json:"current_streak"`

	HighestBet    int64 `json:"highest_bet"`
	HighestProfit int64 `json:"highest_profit"`
	LowestProfit  int64 `json:"lowest_profit"`
}

// ChartPoint is one point of the profit chart.
type ChartPoint struct {
	BetNumber int   `json:"x"`
	Profit    int64 `json:"y"`
	Win       bool  `json:"win"`
}

// ChartBuffer keeps a bounded profit chart.
type ChartBuffer struct {
	Points []ChartPoint `json:"points"`
	Max    int          `json:"-"`
}

func NewChartBuffer(max int) *ChartBuffer {
	if max <= 0 {
		max = 50
	}
	return &ChartBuffer{Points: make([]ChartPoint, 0, max), Max: max}
}

// Push appends p. At twice Max points every other point is dropped, keeping
// the first and the last.
func (cb *ChartBuffer) Push(p ChartPoint) {
	cb.Points = append(cb.Points, p)
	if len(cb.Points) < cb.Max*2 {
		return
	}
	kept := make([]ChartPoint, 0, cb.Max+1)
	kept = append(kept, cb.Points[0])
	for i := 2; i < len(cb.Points)-1; i += 2 {
		kept = append(kept, cb.Points[i])
	}
	kept = append(kept, cb.Points[len(cb.Points)-1])
	cb.Points = kept
}

func NewStatistics(startBalance int64) *Statistics {
	return &Statistics{Balance: startBalance, StartBal: startBalance}
}

// BetResult is the settled outcome of one round.
type BetResult struct {
	Amount     int64   `json:"amount"`
	Payout     int64   `json:"payout"`
	Multiplier float64 `json:"multiplier"`
	Win        bool    `json:"win"`
}

func (s *Statistics) RecordBet(r BetResult) {
	s.Bets++
	profit := r.Payout - r.Amount
	s.Profit += profit
	s.Wagered += r.Amount
	s.Balance += profit

	if r.Win {
		s.Wins++
		s.WinStreak++
		s.LoseStreak = 0
		s.CurrentStreak = s.WinStreak
	} else {
		s.Losses++
		s.LoseStreak++
		s.WinStreak = 0
		s.CurrentStreak = -s.LoseStreak
	}

	if r.Amount > s.HighestBet {
		s.HighestBet = r.Amount
	}
	if s.Profit > s.HighestProfit {
		s.HighestProfit = s.Profit
	}
	if s.Profit < s.LowestProfit {
		s.LowestProfit = s.Profit
	}
}
