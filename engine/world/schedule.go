package world

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Frequency selects when a system runs.
type Frequency int

const (
	// Init systems run once before the first frame.
	Init Frequency = iota
	// Tick systems run every frame before rendering.
	Tick
)

func (f Frequency) String() string {
	switch f {
	case Init:
		return "init"
	case Tick:
		return "tick"
	default:
		return fmt.Sprintf("frequency(%d)", int(f))
	}
}

// System updates the world. deltaTime is the frame time in seconds; it is zero for Init systems.
type System func(w *World, deltaTime float32) error

type namedSystem struct {
	name string
	run  System
}

// schedule is the implementation of the Schedule interface.
type schedule struct {
	mu        sync.Mutex
	systems   map[Frequency][]namedSystem
	pool      worker.DynamicWorkerPool
	workers   int
	queueSize int
	taskID    int
}

// Schedule runs registered systems in parallel on a worker pool. All systems of one frequency run
// concurrently and the call returns once every one of them finished.
type Schedule interface {
	// Add registers a system.
	//
	// Parameters:
	//   - freq: Init or Tick
	//   - name: a name used in error messages
	//   - sys: the system
	Add(freq Frequency, name string, sys System)

	// Len returns the number of systems registered for freq.
	//
	// Parameters:
	//   - freq: Init or Tick
	//
	// Returns:
	//   - int: the system count
	Len(freq Frequency) int

	// Run executes every system of freq against w and waits for them. A panicking system is
	// recovered and reported as an error.
	//
	// Parameters:
	//   - freq: Init or Tick
	//   - w: the world passed to each system
	//   - deltaTime: the frame time in seconds
	//
	// Returns:
	//   - error: the joined errors of all failing systems, or nil
	Run(freq Frequency, w *World, deltaTime float32) error
}

var _ Schedule = &schedule{}

// ScheduleBuilderOption is a functional option used to configure a Schedule during construction.
type ScheduleBuilderOption func(*schedule)

// WithWorkers sets the maximum number of pool workers. Defaults to GOMAXPROCS.
//
// Parameters:
//   - n: the worker count, at least 1
//
// Returns:
//   - ScheduleBuilderOption: a function that sets the worker count
func WithWorkers(n int) ScheduleBuilderOption {
	return func(s *schedule) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithQueueSize sets the pool's task queue capacity. Defaults to 256.
//
// Parameters:
//   - n: the queue capacity
//
// Returns:
//   - ScheduleBuilderOption: a function that sets the queue size
func WithQueueSize(n int) ScheduleBuilderOption {
	return func(s *schedule) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// NewSchedule creates an empty Schedule.
//
// Parameters:
//   - opts: a variadic list of ScheduleBuilderOption functions
//
// Returns:
//   - Schedule: the schedule
func NewSchedule(opts ...ScheduleBuilderOption) Schedule {
	s := &schedule{
		systems:   make(map[Frequency][]namedSystem),
		workers:   runtime.GOMAXPROCS(0),
		queueSize: 256,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pool = worker.NewDynamicWorkerPool(s.workers, s.queueSize, time.Second)
	return s
}

func (s *schedule) Add(freq Frequency, name string, sys System) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systems[freq] = append(s.systems[freq], namedSystem{name: name, run: sys})
}

func (s *schedule) Len(freq Frequency) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.systems[freq])
}

func (s *schedule) Run(freq Frequency, w *World, deltaTime float32) error {
	s.mu.Lock()
	systems := append([]namedSystem(nil), s.systems[freq]...)
	s.mu.Unlock()
	if len(systems) == 0 {
		return nil
	}

	// pool.Wait blocks until workers idle out, so each run gets its own barrier.
	var (
		wg     sync.WaitGroup
		errMu  sync.Mutex
		errs   []error
		report = func(err error) {
			errMu.Lock()
			errs = append(errs, err)
			errMu.Unlock()
		}
	)
	for _, sys := range systems {
		wg.Add(1)
		s.mu.Lock()
		id := s.taskID
		s.taskID++
		s.mu.Unlock()
		s.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						report(fmt.Errorf("%s system %q panicked: %v", freq, sys.name, r))
					}
				}()
				if err := sys.run(w, deltaTime); err != nil {
					report(fmt.Errorf("%s system %q: %w", freq, sys.name, err))
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}
