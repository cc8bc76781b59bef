package games

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/MJE43/arcade-engine-go/internal/engine"
	"github.com/MJE43/arcade-engine-go/internal/engine/enginetest"
	"github.com/MJE43/arcade-engine-go/internal/events"
	"github.com/MJE43/arcade-engine-go/internal/ledger"
)

// harness wires engines to a manual clock, a replayed random stream and a
// recording bus. Timer callbacks run on the test goroutine.
type harness struct {
	t       *testing.T
	sched   *enginetest.ManualScheduler
	ledger  *ledger.Ledger
	bus     *events.Bus
	src     *engine.ReplaySource
	results []engine.Result
	events  []events.Event
}

func newHarness(t *testing.T, floats ...float64) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		sched:  enginetest.NewManualScheduler(),
		ledger: ledger.New(),
		bus:    events.NewBus(),
		src:    engine.NewReplaySource(floats...),
	}
	h.bus.Subscribe(func(ev events.Event) {
		h.events = append(h.events, ev)
		if ev.Kind == events.KindResult {
			h.results = append(h.results, *ev.Result)
		}
	})
	return h
}

func (h *harness) deps() Deps {
	return Deps{
		Ledger:    h.ledger,
		Events:    h.bus,
		Source:    h.src,
		Scheduler: h.sched,
		Clock:     h.sched.Clock(),
		Logger:    log.New(io.Discard, "", 0),
	}
}

func (h *harness) advance(d time.Duration) { h.sched.Advance(d) }

func (h *harness) balance() int64 { return h.ledger.Balance() }

func (h *harness) onlyResult() engine.Result {
	h.t.Helper()
	if len(h.results) != 1 {
		h.t.Fatalf("expected exactly 1 result, got %d: %+v", len(h.results), h.results)
	}
	return h.results[0]
}

func (h *harness) countKind(k events.Kind) int {
	n := 0
	for _, ev := range h.events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}
