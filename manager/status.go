package manager

import (
	"sync"
	"sync/atomic"
	"time"
)

type TaskState int32

const (
	Pending TaskState = iota
	Running
	Done
	Failed
)

func (s TaskState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// TaskStatus is updated by the worker owning the job and read by anyone
type TaskStatus struct {
	EventsTotal     atomic.Int64
	EventsProcessed atomic.Int64

	state atomic.Int32

	Lock      sync.Mutex
	ErrObject error
	Started   time.Time
	Finished  time.Time
}

func (s *TaskStatus) State() TaskState {
	return TaskState(s.state.Load())
}

func (s *TaskStatus) start() {
	s.Lock.Lock()
	s.Started = time.Now()
	s.Lock.Unlock()
	s.state.Store(int32(Running))
}

func (s *TaskStatus) finish(err error) {
	s.Lock.Lock()
	s.Finished = time.Now()
	s.ErrObject = err
	s.Lock.Unlock()

	if err != nil {
		s.state.Store(int32(Failed))
	} else {
		s.state.Store(int32(Done))
	}
}

func (s *TaskStatus) Err() error {
	s.Lock.Lock()
	defer s.Lock.Unlock()
	return s.ErrObject
}

func (s *TaskStatus) Elapsed() time.Duration {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	if s.Started.IsZero() {
		return 0
	}
	if s.Finished.IsZero() {
		return time.Since(s.Started)
	}
	return s.Finished.Sub(s.Started)
}
