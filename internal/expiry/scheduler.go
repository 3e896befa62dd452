// Package expiry contains the background worker that reverts lapsed holds.
package expiry

import (
	"log"
	"sync"
	"time"

	"github.com/iliyamo/seat-lock-engine/internal/lock"
)

// Scheduler periodically invokes the lock manager's expire sweep.  It runs
// on its own goroutine, entirely off the request path, and calls the same
// manager entry point an external caller would.  Sweeping a seat that a
// racing confirm already transitioned is a silent no-op, so the scheduler
// never needs to handle contention errors.
type Scheduler struct {
	manager  *lock.Manager
	interval time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// NewScheduler builds a scheduler sweeping at the given fixed interval.
func NewScheduler(manager *lock.Manager, interval time.Duration) *Scheduler {
	return &Scheduler{manager: manager, interval: interval, stopCh: make(chan struct{})}
}

// Start launches the sweep loop.  Starting an already-running scheduler is
// a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.wg.Add(1)
	go s.run()
}

// Stop terminates the loop and waits for the in-flight sweep to finish.
// Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Sweep once immediately so holds left over from before a restart of
	// the loop do not wait a full interval.
	s.sweep()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Scheduler) sweep() {
	swept := s.manager.ExpireSweep(time.Now())
	if len(swept) > 0 {
		log.Printf("expiry-sweeper: released %d lapsed hold(s): %v", len(swept), swept)
	}
}
