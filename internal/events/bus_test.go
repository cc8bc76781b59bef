package events

import (
	"testing"

	"github.com/MJE43/arcade-engine-go/internal/engine"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(func(ev Event) { got = append(got, "first:"+string(ev.Kind)) })
	cancel := bus.Subscribe(func(ev Event) { got = append(got, "second:"+string(ev.Kind)) })

	bus.Publish(Event{Kind: KindResult, Result: &engine.Result{IsWin: true}})
	cancel()
	cancel()
	bus.Publish(Event{Kind: KindNotice, Notice: "hi"})

	want := []string{"first:result", "second:result", "first:notice"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSubscribeChanDropsWhenFull(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.SubscribeChan(1)

	bus.Publish(Event{Kind: KindPhase, Phase: "ready"})
	bus.Publish(Event{Kind: KindPhase, Phase: "go"})

	ev := <-ch
	if ev.Phase != "ready" {
		t.Errorf("got phase %q, want ready", ev.Phase)
	}
	if ev.At.IsZero() {
		t.Error("timestamp not stamped")
	}

	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel not closed after cancel")
	}
	bus.Publish(Event{Kind: KindNotice})
}
