package world

import (
	"sync"

	"github.com/aposine/nightwatch/sense"
	"go.uber.org/zap"
)

type noiseSub struct {
	fn   func(sense.NoiseEvent)
	dead bool
}

// NoiseBus is the in-process broadcast channel for NoiseEvents. Delivery is
// synchronous and fan-out; subscribers may unsubscribe while a publish is
// iterating (dead entries are skipped and swept afterwards).
type NoiseBus struct {
	mu     sync.Mutex
	subs   []*noiseSub
	logger *zap.Logger
}

// NewNoiseBus creates an empty bus.
func NewNoiseBus(logger *zap.Logger) *NoiseBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoiseBus{logger: logger}
}

// Subscribe registers a handler and returns its cancel function. Cancel is
// idempotent and safe to call from inside a handler.
func (nb *NoiseBus) Subscribe(fn func(sense.NoiseEvent)) (cancel func()) {
	s := &noiseSub{fn: fn}
	nb.mu.Lock()
	nb.subs = append(nb.subs, s)
	nb.mu.Unlock()
	return func() {
		nb.mu.Lock()
		s.dead = true
		nb.mu.Unlock()
	}
}

// Publish delivers ev to every live subscriber. Events are ephemeral:
// nothing is retained after delivery.
func (nb *NoiseBus) Publish(ev sense.NoiseEvent) {
	nb.mu.Lock()
	snapshot := make([]*noiseSub, len(nb.subs))
	copy(snapshot, nb.subs)
	nb.mu.Unlock()

	for _, s := range snapshot {
		if s.dead {
			continue
		}
		s.fn(ev)
	}

	nb.sweep()
}

// Len returns the number of live subscribers.
func (nb *NoiseBus) Len() int {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	n := 0
	for _, s := range nb.subs {
		if !s.dead {
			n++
		}
	}
	return n
}

func (nb *NoiseBus) sweep() {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	live := nb.subs[:0]
	for _, s := range nb.subs {
		if !s.dead {
			live = append(live, s)
		}
	}
	nb.subs = live
}
