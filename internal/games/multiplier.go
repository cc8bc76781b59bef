package games

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MJE43/arcade-engine-go/internal/engine"
)

// CupsMultiplier is the edge-adjusted fair payout for surviving round
// eliminations at 1-in-options risk: (options/(options-1))^round * edge.
func CupsMultiplier(options, round int, edge float64) float64 {
	if options < 2 || round < 1 {
		return 1
	}
	n := decimal.NewFromInt(int64(options))
	odds := n.Div(n.Sub(decimal.NewFromInt(1)))
	return odds.Pow(decimal.NewFromInt(int64(round))).
		Mul(decimal.NewFromFloat(edge)).
		Round(2).
		InexactFloat64()
}

// ReactionMultiplier maps a reaction time onto the first tier it beats.
// Tiers are checked in order with a strict less-than.
func ReactionMultiplier(elapsed time.Duration, tiers []ReactionTier) float64 {
	for _, tier := range tiers {
		if elapsed < tier.Below {
			return tier.Multiplier
		}
	}
	return 0
}

// MemoryMultiplier is base*growth^level once at least one level has been
// completed, and 1 before that.
func MemoryMultiplier(level int, base, growth float64) float64 {
	if level <= 1 {
		return 1
	}
	return decimal.NewFromFloat(base).
		Mul(decimal.NewFromFloat(growth).Pow(decimal.NewFromInt(int64(level)))).
		Round(2).
		InexactFloat64()
}

// CrashPoint turns a uniform draw into a heavy-tailed bust multiplier.
func CrashPoint(u, edge float64) float64 {
	if u < 0 {
		u = 0
	}
	if u >= 1 {
		u = math.Nextafter(1, 0)
	}
	return math.Max(1, engine.Round2(edge/(1-edge*u)))
}

// CrashMultiplier is the running multiplier t seconds into a round.
func CrashMultiplier(t float64) float64 {
	if t <= 0 {
		return 1
	}
	return engine.Round2(1 + 0.5*t + 0.1*math.Pow(t, 1.5))
}
