package spring

import (
	"sync"
	"time"
)

// TickerScheduler runs callbacks from a time.Ticker goroutine.
type TickerScheduler struct{}

// Every starts a ticker goroutine. Stop does not wait for an in-flight
// callback, so it is safe to call from inside one.
func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}

// LockedScheduler runs every callback of Inner while holding Lock, so ticks
// are serialized with whatever else the owner does under that lock.
type LockedScheduler struct {
	Inner Scheduler
	Lock  sync.Locker
}

// Every implements Scheduler.
func (s LockedScheduler) Every(interval time.Duration, fn func()) func() {
	return s.Inner.Every(interval, func() {
		s.Lock.Lock()
		defer s.Lock.Unlock()
		fn()
	})
}

// ManualScheduler hands out callbacks that only run when Tick is called.
// It lets tests drive the spring deterministically.
type ManualScheduler struct {
	mu      sync.Mutex
	next    int
	active  map[int]func()
	started int
	stopped int
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{active: make(map[int]func())}
}

// Every registers fn; it runs once per Tick until stopped.
func (m *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.active[id] = fn
	m.started++
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.active, id)
			m.stopped++
			m.mu.Unlock()
		})
	}
}

// Tick runs every active callback once and returns how many ran.
func (m *ManualScheduler) Tick() int {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.active))
	for _, fn := range m.active {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Active returns the number of callbacks that have not been stopped.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Counts returns how many callbacks were registered and stopped in total.
func (m *ManualScheduler) Counts() (started, stopped int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started, m.stopped
}
