package sense

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// PerceptionRunner is one registered perception task, usually an agent's
// vision pass. The BatchScheduler is the only caller of RunPerception; a
// runner must not schedule itself elsewhere.
type PerceptionRunner interface {
	// Eligible reports whether the runner's own sampling interval has
	// elapsed at now.
	Eligible(now time.Time) bool
	// RunPerception performs one vision evaluation.
	RunPerception(now time.Time)
}

type batchEntry struct {
	runner PerceptionRunner
	dead   bool // tombstone; compacted outside iteration
}

// BatchScheduler bounds perception cost by running at most batchSize
// eligible runners per scheduling tick, round-robin across the registry.
type BatchScheduler struct {
	mu        sync.Mutex
	entries   []*batchEntry
	index     map[PerceptionRunner]*batchEntry
	cursor    int
	batchSize int
	iterating bool
	logger    *zap.Logger
}

// NewBatchScheduler creates a scheduler that runs up to batchSize
// perception passes per tick.
func NewBatchScheduler(batchSize int, logger *zap.Logger) *BatchScheduler {
	if batchSize <= 0 {
		batchSize = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchScheduler{
		index:     make(map[PerceptionRunner]*batchEntry),
		batchSize: batchSize,
		logger:    logger,
	}
}

// Register adds a runner. Registering an already-registered runner is a
// no-op; registering one tombstoned during the current tick revives it.
func (b *BatchScheduler) Register(r PerceptionRunner) {
	if r == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.index[r]; ok {
		e.dead = false
		return
	}
	e := &batchEntry{runner: r}
	b.entries = append(b.entries, e)
	b.index[r] = e
}

// Unregister removes a runner. Safe to call from inside a perception pass:
// the entry is tombstoned and compacted after iteration finishes.
func (b *BatchScheduler) Unregister(r PerceptionRunner) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.index[r]
	if !ok {
		return
	}
	e.dead = true
	delete(b.index, r)
	if !b.iterating {
		b.compact()
	}
}

// Len returns the number of live registered runners.
func (b *BatchScheduler) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.index)
}

// Tick advances the round-robin cursor and runs up to batchSize eligible
// runners. It scans at most one full pass over the registry, so a tick's
// cost is bounded even when nothing is eligible.
func (b *BatchScheduler) Tick(now time.Time) int {
	b.mu.Lock()
	if len(b.entries) == 0 {
		b.mu.Unlock()
		return 0
	}
	b.iterating = true
	total := len(b.entries)
	b.mu.Unlock()

	ran := 0
	for scanned := 0; scanned < total && ran < b.batchSize; scanned++ {
		b.mu.Lock()
		if len(b.entries) == 0 {
			b.mu.Unlock()
			break
		}
		if b.cursor >= len(b.entries) {
			b.cursor = 0
		}
		e := b.entries[b.cursor]
		b.cursor++
		b.mu.Unlock()

		if e.dead || !e.runner.Eligible(now) {
			continue
		}
		b.runOne(e.runner, now)
		ran++
	}

	b.mu.Lock()
	b.iterating = false
	b.compact()
	b.mu.Unlock()
	return ran
}

// runOne isolates runner panics so one broken agent cannot stop the
// scheduling loop.
func (b *BatchScheduler) runOne(r PerceptionRunner, now time.Time) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("perception runner panicked", zap.Any("recover", rec))
		}
	}()
	r.RunPerception(now)
}

// compact drops tombstoned entries, keeping the cursor on the same live
// entry it pointed at. Caller holds b.mu.
func (b *BatchScheduler) compact() {
	live := b.entries[:0]
	cursor := 0
	for i, e := range b.entries {
		if e.dead {
			continue
		}
		if i < b.cursor {
			cursor++
		}
		live = append(live, e)
	}
	b.entries = live
	b.cursor = cursor
}
