package vm

// Stack levels in classic mode.
const (
	LevelX = 0
	LevelY = 1
	LevelZ = 2
	LevelT = 3

	ClassicDepth = 4
)

// Stack is the operand stack. Level 0 is X, the top. In classic mode the
// stack always holds exactly four values: a push discards T and a pop
// duplicates T. In big-stack mode it grows and shrinks freely.
type Stack struct {
	items []Value // items[len-1] is X
	big   bool
}

// NewStack returns an initialised stack. A classic stack starts with four
// zeros, a big stack starts empty.
func NewStack(big bool) *Stack {
	s := &Stack{big: big}
	s.reset()
	return s
}

func (s *Stack) reset() {
	if s.big {
		s.items = s.items[:0]
		return
	}
	s.items = []Value{NewReal(0), NewReal(0), NewReal(0), NewReal(0)}
}

// Big reports whether the stack is in big-stack mode.
func (s *Stack) Big() bool { return s.big }

// Depth returns the number of values on the stack.
func (s *Stack) Depth() int { return len(s.items) }

// Peek returns the value at the given level without removing it. It
// returns nil when the level does not exist.
func (s *Stack) Peek(level int) Value {
	n := len(s.items) - 1 - level
	if level < 0 || n < 0 {
		return nil
	}
	return s.items[n]
}

// Push lifts the stack and places v in X. In classic mode the old T is
// released.
func (s *Stack) Push(v Value) {
	if !s.big {
		s.items[0].Release()
		copy(s.items, s.items[1:])
		s.items[len(s.items)-1] = v
		return
	}
	s.items = append(s.items, v)
}

// Pop removes X and returns it, transferring ownership to the caller. In
// classic mode T is duplicated into Z's old slot; this is the only way Pop
// can fail, and it leaves the stack untouched when it does.
func (s *Stack) Pop() (Value, ErrorKind) {
	if len(s.items) == 0 {
		return nil, ErrTooFewArguments
	}
	if !s.big {
		t, err := s.items[0].Dup()
		if err != ErrNone {
			return nil, err
		}
		x := s.items[len(s.items)-1]
		copy(s.items[1:], s.items[:len(s.items)-1])
		s.items[0] = t
		return x, ErrNone
	}
	x := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return x, ErrNone
}

// Replace stores v at the given level and returns the previous value,
// whose ownership passes to the caller.
func (s *Stack) Replace(level int, v Value) Value {
	n := len(s.items) - 1 - level
	old := s.items[n]
	s.items[n] = v
	return old
}

// Swap exchanges X and Y.
func (s *Stack) Swap() ErrorKind {
	n := len(s.items)
	if n < 2 {
		return ErrTooFewArguments
	}
	s.items[n-1], s.items[n-2] = s.items[n-2], s.items[n-1]
	return ErrNone
}

// RollDown rotates the stack so that X moves to the bottom.
func (s *Stack) RollDown() {
	n := len(s.items)
	if n < 2 {
		return
	}
	x := s.items[n-1]
	copy(s.items[1:], s.items[:n-1])
	s.items[0] = x
}

// Clear releases every value and reinitialises the stack.
func (s *Stack) Clear() {
	for _, v := range s.items {
		v.Release()
	}
	s.reset()
}

// SetBig switches between classic and big-stack mode. Switching to classic
// keeps the top four levels, padding with zeros.
func (s *Stack) SetBig(big bool) {
	if s.big == big {
		return
	}
	s.big = big
	if big {
		return
	}
	for len(s.items) > ClassicDepth {
		s.items[0].Release()
		s.items = s.items[1:]
	}
	for len(s.items) < ClassicDepth {
		s.items = append([]Value{NewReal(0)}, s.items...)
	}
}

// Values returns the stack contents from the bottom up. The slice is a
// copy; the values are shared.
func (s *Stack) Values() []Value {
	out := make([]Value, len(s.items))
	copy(out, s.items)
	return out
}

// Truncate drops the lowest levels until at most depth values remain.
func (s *Stack) Truncate(depth int) {
	for len(s.items) > depth {
		s.items[0].Release()
		s.items = s.items[1:]
	}
}

