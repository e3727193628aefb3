// Package host owns a calculator machine on a dedicated goroutine. Every
// access goes through the worker, which also drives suspended commands
// quantum by quantum and turns cancellation into an interruption.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/tliron/commonlog"

	"github.com/chazu/calc42/core"
	"github.com/chazu/calc42/pkg/bytecode"
	"github.com/chazu/calc42/vm/wire"
)

var log = commonlog.GetLogger("calc42.host")

// ErrStopped is returned for requests made after Stop.
var ErrStopped = errors.New("worker stopped")

// request represents a unit of work to be executed on the machine goroutine.
type request struct {
	ctx  context.Context
	fn   func(m *core.Machine, poll func() bool) error
	done chan error
}

// Worker serializes all machine access through a single goroutine.
type Worker struct {
	machine   *core.Machine
	requests  chan request
	quit      chan struct{}
	stopped   chan struct{}
	interrupt atomic.Bool
}

// NewWorker creates a Worker and starts the processing goroutine.
func NewWorker(m *core.Machine) *Worker {
	w := &Worker{
		machine:  m,
		requests: make(chan request, 64),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	log.Info("machine worker started")
	go w.loop()
	return w
}

// loop processes requests sequentially on a dedicated goroutine.
func (w *Worker) loop() {
	defer close(w.stopped)
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req)
		case <-w.quit:
			log.Info("machine worker stopped")
			return
		}
	}
}

// execute runs a request on the machine, recovering from panics. A task
// the request leaves active is interrupted so the next request finds an
// idle machine.
func (w *Worker) execute(req request) (err error) {
	poll := func() bool {
		return w.interrupt.Swap(false) || req.ctx.Err() != nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic on machine goroutine: %v", r)
		}
		if w.machine.Sched.Active() {
			if code := w.machine.Sched.Run(func() bool { return true }); err == nil {
				err = code.Err()
			}
		}
	}()
	// An interrupt raised while nothing was running is stale.
	w.interrupt.Store(false)
	return req.fn(w.machine, poll)
}

func (w *Worker) call(ctx context.Context, fn func(*core.Machine, func() bool) error) error {
	req := request{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case w.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.quit:
		return ErrStopped
	}
	select {
	case err := <-req.done:
		return err
	case <-w.stopped:
		return ErrStopped
	}
}

// Do submits a function for execution on the machine goroutine and
// blocks until it completes. A command the function leaves suspended is
// interrupted, and Do then returns ErrInterrupted unless fn failed.
func (w *Worker) Do(ctx context.Context, fn func(*core.Machine) error) error {
	return w.call(ctx, func(m *core.Machine, _ func() bool) error {
		return fn(m)
	})
}

// Submit executes one instruction, driving it to the end. Cancelling ctx
// or calling Interrupt stops a suspended command with ErrInterrupted.
func (w *Worker) Submit(ctx context.Context, in bytecode.Instr) error {
	return w.call(ctx, func(m *core.Machine, poll func() bool) error {
		return m.ExecuteWait(in, poll).Err()
	})
}

// SubmitLine parses and executes one line of program text.
func (w *Worker) SubmitLine(ctx context.Context, line string) error {
	in, err := bytecode.Parse(line)
	if err != nil {
		return err
	}
	return w.Submit(ctx, in)
}

// Run executes a program from the start.
func (w *Worker) Run(ctx context.Context, p *bytecode.Program) error {
	return w.call(ctx, func(m *core.Machine, poll func() bool) error {
		return m.Run(p, poll)
	})
}

// Interrupt stops the command or program currently running. It has no
// effect on requests submitted afterwards.
func (w *Worker) Interrupt() {
	w.interrupt.Store(true)
}

// Snapshot returns the machine state encoded as canonical CBOR.
func (w *Worker) Snapshot(ctx context.Context) ([]byte, error) {
	var data []byte
	err := w.Do(ctx, func(m *core.Machine) error {
		s, err := m.Snapshot()
		if err != nil {
			return fmt.Errorf("cannot snapshot machine: %w", err)
		}
		data, err = wire.MarshalSnapshot(s)
		return err
	})
	return data, err
}

// Restore replaces the machine state with an encoded snapshot.
func (w *Worker) Restore(ctx context.Context, data []byte) error {
	s, err := wire.UnmarshalSnapshot(data)
	if err != nil {
		return err
	}
	return w.Do(ctx, func(m *core.Machine) error {
		if err := m.Restore(s); err != nil {
			return fmt.Errorf("cannot restore machine: %w", err)
		}
		return nil
	})
}

// Stack returns the rendered stack lines, top level first.
func (w *Worker) Stack(ctx context.Context) ([]string, error) {
	var lines []string
	err := w.Do(ctx, func(m *core.Machine) error {
		lines = m.StackLines()
		return nil
	})
	return lines, err
}

// Stop shuts down the worker goroutine and waits for it to exit.
func (w *Worker) Stop() {
	close(w.quit)
	<-w.stopped
}
