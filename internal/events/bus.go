// Package events fans engine notifications out to in-process subscribers.
package events

import (
	"sync"
	"time"

	"github.com/MJE43/arcade-engine-go/internal/engine"
)

type Kind string

const (
	KindResult  Kind = "result"
	KindLevelUp Kind = "level_up"
	KindAdvance Kind = "advance"
	KindPhase   Kind = "phase"
	KindNotice  Kind = "notice"
)

// Event is the envelope delivered to subscribers. Exactly one payload
// field is set, matching Kind.
type Event struct {
	Kind    Kind            `json:"kind"`
	Game    engine.GameType `json:"game,omitempty"`
	Result  *engine.Result  `json:"result,omitempty"`
	LevelUp *LevelUp        `json:"level_up,omitempty"`
	Advance *Advance        `json:"advance,omitempty"`
	Phase   string          `json:"phase,omitempty"`
	Notice  string          `json:"notice,omitempty"`
	At      time.Time       `json:"at"`
}

type LevelUp struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Advance reports a survived round or completed level.
type Advance struct {
	Round      int     `json:"round"`
	Multiplier float64 `json:"multiplier"`
}

// Publisher is the narrow port engines emit through.
type Publisher interface {
	Publish(Event)
}

// Bus delivers each event synchronously to every subscriber in
// subscription order. Handlers must not block.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
	order  []int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	b.mu.RLock()
	handlers := make([]func(Event), 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = fn
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// SubscribeChan delivers events on a buffered channel. Events that do not
// fit are dropped so a slow reader never stalls an engine. The channel is
// closed by cancel.
func (b *Bus) SubscribeChan(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	var mu sync.Mutex
	closed := false
	unsub := b.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- ev:
		default:
		}
	})
	return ch, func() {
		unsub()
		mu.Lock()
		if !closed {
			closed = true
			close(ch)
		}
		mu.Unlock()
	}
}

// Discard drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}
