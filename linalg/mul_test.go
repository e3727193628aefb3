package linalg

import (
	"testing"

	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

var strict = vm.Policy{ReportSingular: true, OverflowIsError: true}

func TestMulRowByColumn(t *testing.T) {
	e, h := newTestEngine()
	a := realMatrix(t, h, 1, 3, 1, 2, 3)
	b := realMatrix(t, h, 3, 1, 4, 5, 6)
	got := mustWait(t, e, func(done Completion) vm.ErrorKind { return e.Mul(a, b, strict, done) })
	m, ok := got.(*vm.RealMatrix)
	if !ok || m.Rows != 1 || m.Cols != 1 {
		t.Fatalf("result = %T %v", got, got)
	}
	if m.Data[0] != 32 {
		t.Errorf("[1,2,3]·[4,5,6] = %v, want 32", m.Data[0])
	}
	got.Release()
	a.Release()
	b.Release()
	if h.Outstanding() != 0 {
		t.Errorf("outstanding buffers = %d", h.Outstanding())
	}
}

func TestMulSuspends(t *testing.T) {
	e, h := newTestEngine()
	a := realMatrix(t, h, 2, 2, 1, 2, 3, 4)
	b := realMatrix(t, h, 2, 2, 5, 6, 7, 8)
	var rec recorder
	if rc := e.Mul(a, b, strict, rec.done); rc != vm.ErrSuspended {
		t.Fatalf("Mul returned %v, want %v", rc, vm.ErrSuspended)
	}
	if rec.calls != 0 {
		t.Fatal("completion fired before the task ran")
	}
	if err := e.Sched.Run(nil); err != vm.ErrNone {
		t.Fatalf("Run: %v", err)
	}
	if e.Sched.Quanta() < 2 {
		t.Errorf("finished in %d quanta, expected several", e.Sched.Quanta())
	}
	want := realMatrix(t, h, 2, 2, 19, 22, 43, 50)
	assertSameData(t, rec.result, want, 0)
}

func TestMulMixed(t *testing.T) {
	e, h := newTestEngine()
	tests := []struct {
		name        string
		left, right vm.Value
		want        vm.Value
	}{
		{
			name:  "real x complex",
			left:  realMatrix(t, h, 1, 2, 1, 2),
			right: complexMatrix(t, h, 2, 1, 0, 1, 1, 0),
			want:  complexMatrix(t, h, 1, 1, 2, 1),
		},
		{
			name:  "complex x real",
			left:  complexMatrix(t, h, 1, 2, 1, 1, 0, 2),
			right: realMatrix(t, h, 2, 1, 3, 4),
			want:  complexMatrix(t, h, 1, 1, 3, 11),
		},
		{
			name:  "complex x complex",
			left:  complexMatrix(t, h, 1, 1, 1, 2),
			right: complexMatrix(t, h, 1, 1, 3, 4),
			want:  complexMatrix(t, h, 1, 1, -5, 10),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustWait(t, e, func(done Completion) vm.ErrorKind { return e.Mul(tt.left, tt.right, strict, done) })
			assertSameData(t, got, tt.want, 1e-15)
		})
	}
}

func TestMulRejections(t *testing.T) {
	e, h := newTestEngine()
	withText := realMatrix(t, h, 2, 2, 1, 2, 3, 4)
	withText.SetString(0, 0, "X")
	tests := []struct {
		name        string
		left, right vm.Value
		want        vm.ErrorKind
	}{
		{"inner dimension", realMatrix(t, h, 2, 3, 1, 2, 3, 4, 5, 6), realMatrix(t, h, 2, 2, 1, 2, 3, 4), vm.ErrDimensionError},
		{"strings left", withText, realMatrix(t, h, 2, 1, 1, 2), vm.ErrAlphaDataInvalid},
		{"strings right", realMatrix(t, h, 1, 2, 1, 2), withText, vm.ErrAlphaDataInvalid},
		{"scalar", vm.NewReal(2), realMatrix(t, h, 1, 1, 1), vm.ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := h.Outstanding()
			var rec recorder
			rc := e.Mul(tt.left, tt.right, strict, rec.done)
			if rc != tt.want || rec.err != tt.want || rec.result != nil {
				t.Errorf("Mul = %v (completion %v, %v), want %v", rc, rec.err, rec.result, tt.want)
			}
			if e.Sched.Active() {
				t.Error("a rejected multiply installed a task")
			}
			if h.Outstanding() != before {
				t.Errorf("rejected multiply leaked %d buffers", h.Outstanding()-before)
			}
		})
	}
}

func TestMulOverflowSaturates(t *testing.T) {
	e, h := newTestEngine()
	a := realMatrix(t, h, 2, 2, 1e308, 1e308, -1e308, -1e308)
	b := realMatrix(t, h, 2, 1, 10, 10)
	lenient := vm.Policy{OverflowIsError: false}
	got := mustWait(t, e, func(done Completion) vm.ErrorKind { return e.Mul(a, b, lenient, done) })
	m := got.(*vm.RealMatrix)
	if m.Data[0] != scalar.PosHuge || m.Data[1] != scalar.NegHuge {
		t.Errorf("saturated product = %v, want [PosHuge, NegHuge]", m.Data)
	}
	got.Release()

	before := h.Outstanding()
	if _, err := e.Wait(func(done Completion) vm.ErrorKind { return e.Mul(a, b, strict, done) }); err != vm.ErrOutOfRange {
		t.Errorf("strict overflow = %v, want %v", err, vm.ErrOutOfRange)
	}
	if h.Outstanding() != before {
		t.Errorf("overflow failure leaked %d buffers", h.Outstanding()-before)
	}
	ignore := vm.Policy{OverflowIsError: true, IgnoreRange: true}
	got = mustWait(t, e, func(done Completion) vm.ErrorKind { return e.Mul(a, b, ignore, done) })
	if got.(*vm.RealMatrix).Data[0] != scalar.PosHuge {
		t.Error("IgnoreRange should clamp")
	}
	got.Release()
}

func TestMulInterruptReleasesEverything(t *testing.T) {
	e, h := newTestEngine()
	const n = 10
	vals := make([]float64, n*n)
	for i := range vals {
		vals[i] = float64(i + 1)
	}
	a := realMatrix(t, h, n, n, vals...)
	b := realMatrix(t, h, n, n, vals...)
	var rec recorder
	if rc := e.Mul(a, b, strict, rec.done); rc != vm.ErrSuspended {
		t.Fatalf("Mul returned %v", rc)
	}
	resumes := 0
	err := e.Sched.Run(func() bool {
		resumes++
		return resumes == 5
	})
	if err != vm.ErrInterrupted {
		t.Fatalf("Run = %v, want %v", err, vm.ErrInterrupted)
	}
	if rec.calls != 1 || rec.err != vm.ErrInterrupted || rec.result != nil {
		t.Errorf("completion got (%d calls, %v, %v)", rec.calls, rec.err, rec.result)
	}
	a.Release()
	b.Release()
	if h.Outstanding() != 0 {
		t.Errorf("outstanding buffers after interrupt = %d", h.Outstanding())
	}
}

func TestMulBusyScheduler(t *testing.T) {
	e, h := newTestEngine()
	_ = e.Sched.Start("other", vm.TaskFunc(func(bool) vm.Step { return vm.Done(vm.ErrNone) }))
	a := realMatrix(t, h, 1, 1, 2)
	var rec recorder
	if rc := e.Mul(a, a, strict, rec.done); rc != vm.ErrBusy {
		t.Errorf("Mul on busy scheduler = %v, want %v", rc, vm.ErrBusy)
	}
	a.Release()
	if h.Outstanding() != 0 {
		t.Errorf("busy rejection leaked %d buffers", h.Outstanding())
	}
}

func TestMulClampsFinishedCells(t *testing.T) {
	e, h := newTestEngine()
	a := realMatrix(t, h, 1, 3, 1e308, 1e308, -1e308)
	b := realMatrix(t, h, 3, 1, 1, 1, 1)
	lenient := vm.Policy{}
	got := mustWait(t, e, func(done Completion) vm.ErrorKind { return e.Mul(a, b, lenient, done) })
	// The running sum overflows on the second term and is not clamped
	// until the cell is complete.
	if x := got.(*vm.RealMatrix).Data[0]; x != scalar.PosHuge {
		t.Errorf("product = %v, want PosHuge", x)
	}
	got.Release()
}
