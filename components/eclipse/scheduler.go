package eclipse

import (
	"sort"
	"sync"
	"time"
)

// DefaultReplyDelay is how long the scripted assistant "thinks".
const DefaultReplyDelay = 1000 * time.Millisecond

// TimerScheduler runs tasks on runtime timers.
type TimerScheduler struct{}

// AfterFunc schedules fn once after delay.
func (TimerScheduler) AfterFunc(delay time.Duration, fn func()) {
	time.AfterFunc(delay, fn)
}

// ManualScheduler queues tasks until Advance moves its clock past them.
// Tasks due at the same instant run in scheduling order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []manualTask
}

type manualTask struct {
	due time.Duration
	seq int
	fn  func()
}

// NewManualScheduler builds a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc queues fn to run once the clock reaches now+delay.
func (s *ManualScheduler) AfterFunc(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.tasks = append(s.tasks, manualTask{due: s.now + delay, seq: s.seq, fn: fn})
}

// Advance moves the clock forward and runs every task that became due.
// Tasks run outside the scheduler lock so they may schedule more work.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now += d
	now := s.now
	s.mu.Unlock()

	ran := 0
	for {
		task, ok := s.popDue(now)
		if !ok {
			return ran
		}
		task.fn()
		ran++
	}
}

// Pending returns the number of queued tasks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *ManualScheduler) popDue(now time.Duration) (manualTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return manualTask{}, false
	}
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due == s.tasks[j].due {
			return s.tasks[i].seq < s.tasks[j].seq
		}
		return s.tasks[i].due < s.tasks[j].due
	})
	if s.tasks[0].due > now {
		return manualTask{}, false
	}
	task := s.tasks[0]
	s.tasks = s.tasks[1:]
	return task, true
}
