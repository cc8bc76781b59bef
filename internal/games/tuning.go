package games

import "time"

// Tuning collects every per-mode constant that can be overridden from the
// tuning file.
type Tuning struct {
	Cups     CupsTuning     `yaml:"cups"`
	Reaction ReactionTuning `yaml:"reaction"`
	Memory   MemoryTuning   `yaml:"memory"`
	Crash    CrashTuning    `yaml:"crash"`
	// LossXP is granted for taking part in a session that is lost.
	LossXP int64 `yaml:"loss_xp"`
}

type CupsTuning struct {
	Options        int           `yaml:"options"`
	MaxRounds      int           `yaml:"max_rounds"`
	HouseEdge      float64       `yaml:"house_edge"`
	RevealLoss     time.Duration `yaml:"reveal_loss"`
	RevealSurvive  time.Duration `yaml:"reveal_survive"`
	SurviveXP      int64         `yaml:"survive_xp"`
	CashOutBaseXP  int64         `yaml:"cash_out_base_xp"`
	CashOutRoundXP int64         `yaml:"cash_out_round_xp"`
}

// ReactionTier pays Multiplier for reactions strictly faster than Below.
type ReactionTier struct {
	Below      time.Duration `yaml:"below"`
	Multiplier float64       `yaml:"multiplier"`
}

type ReactionTuning struct {
	MinDelay  time.Duration  `yaml:"min_delay"`
	MaxDelay  time.Duration  `yaml:"max_delay"`
	Timeout   time.Duration  `yaml:"timeout"`
	Tiers     []ReactionTier `yaml:"tiers"`
	WinBaseXP int64          `yaml:"win_base_xp"`
	WinMultXP int64          `yaml:"win_mult_xp"`
}

type MemoryTuning struct {
	Alphabet       int           `yaml:"alphabet"`
	InitialLength  int           `yaml:"initial_length"`
	MaxLevel       int           `yaml:"max_level"`
	Base           float64       `yaml:"base"`
	Growth         float64       `yaml:"growth"`
	FirstStep      time.Duration `yaml:"first_step"`
	Step           time.Duration `yaml:"step"`
	InputDelay     time.Duration `yaml:"input_delay"`
	LevelXP        int64         `yaml:"level_xp"`
	CashOutBaseXP  int64         `yaml:"cash_out_base_xp"`
	CashOutLevelXP int64         `yaml:"cash_out_level_xp"`
}

type CrashTuning struct {
	Edge          float64       `yaml:"edge"`
	TickInterval  time.Duration `yaml:"tick_interval"`
	CashOutBaseXP int64         `yaml:"cash_out_base_xp"`
	CashOutMultXP int64         `yaml:"cash_out_mult_xp"`
}

// DefaultTuning returns the stock arcade constants.
func DefaultTuning() Tuning {
	return Tuning{
		Cups: CupsTuning{
			Options:        3,
			MaxRounds:      10,
			HouseEdge:      0.97,
			RevealLoss:     500 * time.Millisecond,
			RevealSurvive:  800 * time.Millisecond,
			SurviveXP:      50,
			CashOutBaseXP:  100,
			CashOutRoundXP: 20,
		},
		Reaction: ReactionTuning{
			MinDelay: 1500 * time.Millisecond,
			MaxDelay: 4500 * time.Millisecond,
			Timeout:  2 * time.Second,
			Tiers: []ReactionTier{
				{Below: 150 * time.Millisecond, Multiplier: 5.0},
				{Below: 200 * time.Millisecond, Multiplier: 3.0},
				{Below: 250 * time.Millisecond, Multiplier: 2.0},
				{Below: 350 * time.Millisecond, Multiplier: 1.5},
				{Below: 500 * time.Millisecond, Multiplier: 1.2},
			},
			WinBaseXP: 100,
			WinMultXP: 50,
		},
		Memory: MemoryTuning{
			Alphabet:       4,
			InitialLength:  3,
			MaxLevel:       6,
			Base:           1.5,
			Growth:         1.5,
			FirstStep:      800 * time.Millisecond,
			Step:           700 * time.Millisecond,
			InputDelay:     600 * time.Millisecond,
			LevelXP:        50,
			CashOutBaseXP:  100,
			CashOutLevelXP: 20,
		},
		Crash: CrashTuning{
			Edge:          0.99,
			TickInterval:  16 * time.Millisecond,
			CashOutBaseXP: 100,
			CashOutMultXP: 20,
		},
		LossXP: 10,
	}
}
