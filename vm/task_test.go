package vm

import (
	"errors"
	"testing"

	"github.com/chazu/calc42/scalar"
)

// countdown finishes after n quanta.
type countdown struct {
	n           int
	interrupted bool
}

func (c *countdown) Resume(interrupted bool) Step {
	if interrupted {
		c.interrupted = true
		return Done(ErrInterrupted)
	}
	c.n--
	if c.n > 0 {
		return Continue
	}
	return Done(ErrNone)
}

func TestSchedulerSingleSlot(t *testing.T) {
	s := NewScheduler()
	if err := s.Start("first", &countdown{n: 3}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start("second", &countdown{n: 1}); !errors.Is(err, ErrTaskActive) {
		t.Fatalf("second Start = %v, want ErrTaskActive", err)
	}
	if s.Name() != "first" {
		t.Errorf("Name = %q, want first", s.Name())
	}
}

func TestSchedulerRun(t *testing.T) {
	s := NewScheduler()
	_ = s.Start("count", &countdown{n: 3})
	if err := s.Run(nil); err != ErrNone {
		t.Fatalf("Run = %v", err)
	}
	if s.Active() {
		t.Error("slot not cleared after completion")
	}
	if s.Quanta() != 3 {
		t.Errorf("Quanta = %d, want 3", s.Quanta())
	}
}

func TestSchedulerInterrupt(t *testing.T) {
	s := NewScheduler()
	c := &countdown{n: 100}
	_ = s.Start("count", c)
	polls := 0
	err := s.Run(func() bool {
		polls++
		return polls > 2
	})
	if err != ErrInterrupted {
		t.Fatalf("Run = %v, want %v", err, ErrInterrupted)
	}
	if !c.interrupted {
		t.Error("task did not observe the interrupt")
	}
	if s.Active() {
		t.Error("slot not cleared after interrupt")
	}
}

func TestSchedulerIdleResume(t *testing.T) {
	s := NewScheduler()
	done, err := s.Resume(false)
	if !done || err != ErrNone {
		t.Errorf("idle Resume = (%v, %v)", done, err)
	}
}

func TestPolicy(t *testing.T) {
	inf := scalar.Scalar(1) / scalar.Scalar(zero())
	tests := []struct {
		name    string
		pol     Policy
		accErr  ErrorKind
		rangeOK bool
	}{
		{"strict", Policy{OverflowIsError: true}, ErrOutOfRange, false},
		{"clamp matrices", Policy{}, ErrNone, false},
		{"ignore", Policy{OverflowIsError: true, IgnoreRange: true}, ErrNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := tt.pol.Accumulate(inf)
			if err != tt.accErr {
				t.Errorf("Accumulate err = %v, want %v", err, tt.accErr)
			}
			if err == ErrNone && x != scalar.PosHuge {
				t.Errorf("Accumulate = %v, want PosHuge", x)
			}
			_, err = tt.pol.Range(-inf)
			if (err == ErrNone) != tt.rangeOK {
				t.Errorf("Range err = %v", err)
			}
		})
	}
	if !(Policy{}).Lenient().IgnoreRange {
		t.Error("Lenient without overflow-as-error should ignore range")
	}
	if (Policy{OverflowIsError: true}).Lenient().IgnoreRange {
		t.Error("Lenient with overflow-as-error should not ignore range")
	}
	p := Policy{}
	q := p.Singular()
	if p.ReportSingular || !q.ReportSingular {
		t.Error("Singular must not modify the receiver")
	}
}

func zero() float64 { return 0 }
