package autoplay

import "github.com/dop251/goja"

// Variables is the state shared with the script. Only nextbet, basebet,
// target and running are read back after dobet().
type Variables struct {
	Balance     int64   `json:"balance"`
	NextBet     int64   `json:"nextbet"`
	BaseBet     int64   `json:"basebet"`
	PreviousBet int64   `json:"previousbet"`
	Win         bool    `json:"win"`
	Running     bool    `json:"running"`
	Target      float64 `json:"target"`
	Multiplier  float64 `json:"multiplier"`
	Level       int     `json:"level"`
	XP          int64   `json:"xp"`

	Stats *Statistics `json:"-"`
}

const defaultTarget = 2.0

func NewVariables(stats *Statistics, bet int64) *Variables {
	return &Variables{
		Stats:   stats,
		Balance: stats.Balance,
		NextBet: bet,
		BaseBet: bet,
		Target:  defaultTarget,
	}
}

func injectVariables(vm *goja.Runtime, vars *Variables) {
	vm.Set("balance", vars.Balance)
	vm.Set("nextbet", vars.NextBet)
	vm.Set("basebet", vars.BaseBet)
	vm.Set("previousbet", vars.PreviousBet)
	vm.Set("win", vars.Win)
	vm.Set("running", vars.Running)
	vm.Set("target", vars.Target)
	vm.Set("lastmultiplier", vars.Multiplier)
	vm.Set("level", vars.Level)
	vm.Set("xp", vars.XP)

	vm.Set("bets", vars.Stats.Bets)
	vm.Set("wins", vars.Stats.Wins)
	vm.Set("losses", vars.Stats.Losses)
	vm.Set("profit", vars.Stats.Profit)
	vm.Set("wagered", vars.Stats.Wagered)
	vm.Set("winstreak", vars.Stats.WinStreak)
	vm.Set("losestreak", vars.Stats.LoseStreak)
	vm.Set("currentstreak", vars.Stats.CurrentStreak)
}

func syncFromVM(vm *goja.Runtime, vars *Variables) {
	vars.NextBet = toInt64(vm.Get("nextbet"))
	vars.BaseBet = toInt64(vm.Get("basebet"))
	vars.Target = toFloat64(vm.Get("target"))
	vars.Running = toBool(vm.Get("running"))
}

func undefined(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

func toFloat64(v goja.Value) float64 {
	if undefined(v) {
		return 0
	}
	return v.ToFloat()
}

// toInt64 truncates fractional bets; the ledger works in whole units.
func toInt64(v goja.Value) int64 {
	if undefined(v) {
		return 0
	}
	return v.ToInteger()
}

func toBool(v goja.Value) bool {
	if undefined(v) {
		return false
	}
	return v.ToBoolean()
}
