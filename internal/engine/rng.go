package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

// Source produces uniform floats in [0, 1). Implementations must be safe
// for concurrent use since timer callbacks draw from the same source as
// player commands.
type Source interface {
	Float64() float64
}

// Intn maps a draw from src onto [0, n).
func Intn(src Source, n int) int {
	if n <= 1 {
		return 0
	}
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Between maps a draw from src onto [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

type runtimeSource struct{}

func (runtimeSource) Float64() float64 { return rand.Float64() }

// NewSource returns the process-wide pseudo-random source. It makes no
// fairness or unpredictability claim beyond uniformity.
func NewSource() Source { return runtimeSource{} }

// SeededSource is a replayable stream of floats derived from a server and
// client seed with HMAC-SHA256. Every 32-byte block yields 8 floats.
type SeededSource struct {
	mu  sync.Mutex
	gen *byteGenerator
}

// NewSeededSource starts a deterministic stream at the given nonce.
func NewSeededSource(serverSeed, clientSeed string, nonce uint64) *SeededSource {
	return &SeededSource{gen: newByteGenerator(serverSeed, clientSeed, nonce)}
}

func (s *SeededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.nextFloat()
}

type byteGenerator struct {
	serverSeed string
	clientSeed string
	nonce      uint64
	round      uint64
	pos        int
	buf        [32]byte
}

func newByteGenerator(serverSeed, clientSeed string, nonce uint64) *byteGenerator {
	g := &byteGenerator{serverSeed: serverSeed, clientSeed: clientSeed, nonce: nonce}
	g.fill()
	return g
}

func (g *byteGenerator) next() byte {
	if g.pos >= len(g.buf) {
		g.round++
		g.pos = 0
		g.fill()
	}
	b := g.buf[g.pos]
	g.pos++
	return b
}

// nextFloat consumes exactly 4 bytes, most significant first.
func (g *byteGenerator) nextFloat() float64 {
	var f float64
	for i := 0; i < 4; i++ {
		f += float64(g.next()) / math.Pow(256, float64(i+1))
	}
	return f
}

func (g *byteGenerator) fill() {
	h := hmac.New(sha256.New, []byte(g.serverSeed))
	fmt.Fprintf(h, "%s:%d:%d", g.clientSeed, g.nonce, g.round)
	copy(g.buf[:], h.Sum(nil))
}

// ReplaySource returns a fixed sequence of floats, cycling when exhausted.
type ReplaySource struct {
	mu   sync.Mutex
	vals []float64
	i    int
}

// NewReplaySource builds a source that yields vals in order.
func NewReplaySource(vals ...float64) *ReplaySource {
	if len(vals) == 0 {
		vals = []float64{0}
	}
	return &ReplaySource{vals: vals}
}

func (r *ReplaySource) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

// Push appends values to the end of the replay queue.
func (r *ReplaySource) Push(vals ...float64) {
	r.mu.Lock()
	r.vals = append(r.vals, vals...)
	r.mu.Unlock()
}
