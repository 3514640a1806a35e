package scheduler

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskFn is the function signature for scheduled tasks.
type TaskFn func()

type tickerTask struct {
	interval time.Duration
	nextAt   time.Time
	fn       TaskFn
}

type delayTask struct {
	at time.Time
	fn TaskFn
}

// Scheduler manages named periodic and delayed tasks on a logical clock.
// Nothing runs on its own: each task carries a next-eligible timestamp and
// fires only when Advance moves the clock past it. That keeps cadence
// inspectable and tests free of wall-clock sleeps.
type Scheduler struct {
	mu      sync.Mutex
	tickers map[string]*tickerTask
	delays  map[string]*delayTask
	now     time.Time
	logger  *zap.Logger
}

// New creates a Scheduler whose clock starts at start.
func New(start time.Time, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		tickers: make(map[string]*tickerTask),
		delays:  make(map[string]*delayTask),
		now:     start,
		logger:  logger,
	}
}

// AddTicker registers a task to run on a fixed interval, first firing one
// interval from now. A task with the same name is replaced.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	if interval <= 0 || fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickers[name] = &tickerTask{
		interval: interval,
		nextAt:   s.now.Add(interval),
		fn:       fn,
	}
	s.logger.Debug("ticker registered",
		zap.String("name", name),
		zap.Duration("interval", interval))
}

// AddDelay runs fn once after the given delay. A pending delay with the
// same name is replaced.
func (s *Scheduler) AddDelay(name string, delay time.Duration, fn TaskFn) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[name] = &delayTask{at: s.now.Add(delay), fn: fn}
}

// Remove drops a ticker or pending delay by name.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tickers, name)
	delete(s.delays, name)
}

// Advance moves the clock to now and runs every task that became eligible,
// tickers possibly several times to catch up. Task panics are contained per
// task.
func (s *Scheduler) Advance(now time.Time) {
	s.mu.Lock()
	if now.Before(s.now) {
		s.mu.Unlock()
		return
	}
	s.now = now

	type due struct {
		name string
		fn   TaskFn
	}
	var run []due

	for name, t := range s.tickers {
		for !t.nextAt.After(now) {
			run = append(run, due{name, t.fn})
			t.nextAt = t.nextAt.Add(t.interval)
		}
	}
	for name, d := range s.delays {
		if !d.at.After(now) {
			run = append(run, due{name, d.fn})
			delete(s.delays, name)
		}
	}
	s.mu.Unlock()

	// Stable order so replays are deterministic.
	sort.SliceStable(run, func(i, j int) bool { return run[i].name < run[j].name })
	for _, r := range run {
		s.runOne(r.name, r.fn)
	}
}

// Now returns the scheduler's clock.
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// ListTickers returns the names of all registered ticker tasks.
func (s *Scheduler) ListTickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tickers))
	for name := range s.tickers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) runOne(name string, fn TaskFn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked",
				zap.String("task", name),
				zap.Any("recover", r))
		}
	}()
	fn()
}
