package vm

import (
	"errors"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("calc42.vm")

// ---------------------------------------------------------------------------
// Resumable tasks
// ---------------------------------------------------------------------------

// Step is the outcome of one quantum of work.
type Step struct {
	done bool
	err  ErrorKind
}

// Continue asks the scheduler to re-enter the task later.
var Continue = Step{}

// Done reports that the task has finished with the given code. The task
// has already invoked its completion and released what it owns.
func Done(err ErrorKind) Step { return Step{done: true, err: err} }

// Finished returns whether the step ends the task and with which code.
func (s Step) Finished() (bool, ErrorKind) { return s.done, s.err }

// Task is a long-running computation split into bounded quanta. Resume
// performs one quantum. When interrupted is true the task must release
// everything it owns, deliver ErrInterrupted to its completion and return
// Done.
type Task interface {
	Resume(interrupted bool) Step
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(interrupted bool) Step

func (f TaskFunc) Resume(interrupted bool) Step { return f(interrupted) }

// ErrTaskActive is returned by Start when the slot is occupied.
var ErrTaskActive = errors.New("vm: a task is already active")

// ---------------------------------------------------------------------------
// Scheduler
// ---------------------------------------------------------------------------

// Scheduler holds at most one active Task. It is not safe for concurrent
// use; the host serialises access to the machine that owns it.
type Scheduler struct {
	task   Task
	name   string
	id     uuid.UUID
	quanta int
}

// NewScheduler returns an idle scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Start installs t. Handlers that start a task return ErrSuspended.
func (s *Scheduler) Start(name string, t Task) error {
	if s.task != nil {
		return ErrTaskActive
	}
	s.task = t
	s.name = name
	s.id = uuid.New()
	s.quanta = 0
	log.Debugf("task %s (%s) started", s.id, name)
	return nil
}

// Active reports whether a task is installed.
func (s *Scheduler) Active() bool { return s.task != nil }

// ID returns the identifier of the current or last task.
func (s *Scheduler) ID() uuid.UUID { return s.id }

// Name returns the name of the current or last task.
func (s *Scheduler) Name() string { return s.name }

// Quanta returns how many times the current or last task was resumed.
func (s *Scheduler) Quanta() int { return s.quanta }

// Resume runs one quantum of the active task. When the task finishes the
// slot is cleared before the final code is returned.
func (s *Scheduler) Resume(interrupted bool) (bool, ErrorKind) {
	if s.task == nil {
		return true, ErrNone
	}
	s.quanta++
	done, err := s.task.Resume(interrupted).Finished()
	if !done {
		return false, ErrNone
	}
	s.task = nil
	log.Debugf("task %s (%s) finished after %d quanta: %s", s.id, s.name, s.quanta, err)
	return true, err
}

// Run drives the active task to completion. interrupted is polled between
// quanta and may be nil.
func (s *Scheduler) Run(interrupted func() bool) ErrorKind {
	for {
		stop := interrupted != nil && interrupted()
		done, err := s.Resume(stop)
		if done {
			return err
		}
	}
}
