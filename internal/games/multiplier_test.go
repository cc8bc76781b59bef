package games

import (
	"testing"
	"time"
)

func TestCupsMultiplier(t *testing.T) {
	if got := CupsMultiplier(3, 1, 0.97); got != 1.46 {
		t.Errorf("round 1 = %v, want 1.46", got)
	}
	if got := CupsMultiplier(3, 2, 0.97); got != 2.18 {
		t.Errorf("round 2 = %v, want 2.18", got)
	}
	prev := 0.0
	for round := 1; round <= 10; round++ {
		m := CupsMultiplier(3, round, 0.97)
		if m <= prev {
			t.Errorf("multiplier not strictly increasing at round %d: %v <= %v", round, m, prev)
		}
		prev = m
	}
}

func TestReactionMultiplierBoundaries(t *testing.T) {
	tiers := DefaultTuning().Reaction.Tiers
	tests := []struct {
		ms   int
		want float64
	}{
		{0, 5.0},
		{149, 5.0},
		{150, 3.0},
		{199, 3.0},
		{200, 2.0},
		{249, 2.0},
		{250, 1.5},
		{349, 1.5},
		{350, 1.2},
		{499, 1.2},
		{500, 0},
		{1200, 0},
	}
	for _, tt := range tests {
		got := ReactionMultiplier(time.Duration(tt.ms)*time.Millisecond, tiers)
		if got != tt.want {
			t.Errorf("%dms: got %v, want %v", tt.ms, got, tt.want)
		}
	}
}

func TestMemoryMultiplier(t *testing.T) {
	tests := []struct {
		level int
		want  float64
	}{
		{1, 1},
		{2, 3.38},
		{3, 5.06},
		{6, 17.09},
	}
	for _, tt := range tests {
		if got := MemoryMultiplier(tt.level, 1.5, 1.5); got != tt.want {
			t.Errorf("level %d: got %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestCrashPoint(t *testing.T) {
	tests := []struct {
		u    float64
		want float64
	}{
		{0, 1},
		{0.005, 1},
		{0.5, 1.96},
		{0.67 / 0.99, 3.00},
	}
	for _, tt := range tests {
		if got := CrashPoint(tt.u, 0.99); got != tt.want {
			t.Errorf("CrashPoint(%v) = %v, want %v", tt.u, got, tt.want)
		}
	}
	if got := CrashPoint(0.999999, 0.99); got < 90 {
		t.Errorf("tail draw produced %v, expected a large crash point", got)
	}
}

func TestCrashMultiplier(t *testing.T) {
	tests := []struct {
		t    float64
		want float64
	}{
		{0, 1},
		{1, 1.6},
		{2.3, 2.50},
		{4, 3.8},
	}
	for _, tt := range tests {
		if got := CrashMultiplier(tt.t); got != tt.want {
			t.Errorf("CrashMultiplier(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}
