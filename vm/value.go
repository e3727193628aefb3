package vm

import (
	"github.com/chazu/calc42/scalar"
)

// Type is the variant tag of a Value.
type Type uint8

const (
	TypeReal          Type = 1
	TypeComplex       Type = 2
	TypeRealMatrix    Type = 3
	TypeComplexMatrix Type = 4
	TypeString        Type = 5
)

// Type masks used by command descriptors. MaskAll accepts every type,
// including types added later; MaskFunc leaves checking to the handler.
const (
	MaskNone uint8 = 0x00
	MaskAll  uint8 = 0xff
	MaskFunc uint8 = 0xff
)

// Mask returns the type-mask bit of t.
func (t Type) Mask() uint8 {
	return 1 << (t - 1)
}

func (t Type) String() string {
	switch t {
	case TypeReal:
		return "real"
	case TypeComplex:
		return "complex"
	case TypeRealMatrix:
		return "real matrix"
	case TypeComplexMatrix:
		return "complex matrix"
	case TypeString:
		return "string"
	}
	return "unknown"
}

// Value is the closed union of calculator values. Matrices own a buffer
// obtained from an Allocator and must be released exactly once.
type Value interface {
	Type() Type
	// Dup returns an independent copy. Matrix copies allocate.
	Dup() (Value, ErrorKind)
	// Release returns any owned buffer to its allocator.
	Release()
	isValue()
}

// ---------------------------------------------------------------------------
// Scalars
// ---------------------------------------------------------------------------

type Real struct {
	X scalar.Scalar
}

func NewReal(x scalar.Scalar) *Real { return &Real{X: x} }

func (*Real) Type() Type                { return TypeReal }
func (r *Real) Dup() (Value, ErrorKind) { return &Real{X: r.X}, ErrNone }
func (*Real) Release()                  {}
func (*Real) isValue()                  {}

type Complex struct {
	Re, Im scalar.Scalar
}

func NewComplex(re, im scalar.Scalar) *Complex { return &Complex{Re: re, Im: im} }

func (*Complex) Type() Type                { return TypeComplex }
func (c *Complex) Dup() (Value, ErrorKind) { return &Complex{Re: c.Re, Im: c.Im}, ErrNone }
func (*Complex) Release()                  {}
func (*Complex) isValue()                  {}

// String is alpha data on the stack.
type String struct {
	Text string
}

func NewString(s string) *String { return &String{Text: s} }

func (*String) Type() Type                { return TypeString }
func (s *String) Dup() (Value, ErrorKind) { return &String{Text: s.Text}, ErrNone }
func (*String) Release()                  {}
func (*String) isValue()                  {}

// ---------------------------------------------------------------------------
// Matrices
// ---------------------------------------------------------------------------

// RealMatrix is a row-major matrix of reals. An element may hold alpha
// text instead of a number; Strings maps the element index to its text and
// the numeric slot is then meaningless.
type RealMatrix struct {
	Rows, Cols int
	Data       []scalar.Scalar
	Strings    map[int]string

	alloc Allocator
}

// NewRealMatrix allocates a zero-filled rows×cols real matrix.
func NewRealMatrix(a Allocator, rows, cols int) (*RealMatrix, ErrorKind) {
	if rows < 1 || cols < 1 {
		return nil, ErrDimensionError
	}
	if rows > MaxWords/cols {
		return nil, ErrInsufficientMemory
	}
	buf, err := a.Alloc(rows * cols)
	if err != ErrNone {
		return nil, err
	}
	return &RealMatrix{Rows: rows, Cols: cols, Data: buf, alloc: a}, ErrNone
}

func (*RealMatrix) Type() Type { return TypeRealMatrix }
func (*RealMatrix) isValue()   {}

// At returns element (i, j).
func (m *RealMatrix) At(i, j int) scalar.Scalar { return m.Data[i*m.Cols+j] }

// Set stores element (i, j), clearing any text held there.
func (m *RealMatrix) Set(i, j int, x scalar.Scalar) {
	n := i*m.Cols + j
	m.Data[n] = x
	delete(m.Strings, n)
}

// SetString stores alpha text at element (i, j).
func (m *RealMatrix) SetString(i, j int, s string) {
	if m.Strings == nil {
		m.Strings = make(map[int]string)
	}
	n := i*m.Cols + j
	m.Data[n] = 0
	m.Strings[n] = s
}

// ContainsStrings reports whether any element holds alpha text.
func (m *RealMatrix) ContainsStrings() bool { return len(m.Strings) > 0 }

// Square reports whether the matrix has as many rows as columns.
func (m *RealMatrix) Square() bool { return m.Rows == m.Cols }

func (m *RealMatrix) Dup() (Value, ErrorKind) {
	d, err := NewRealMatrix(m.alloc, m.Rows, m.Cols)
	if err != ErrNone {
		return nil, err
	}
	copy(d.Data, m.Data)
	if len(m.Strings) > 0 {
		d.Strings = make(map[int]string, len(m.Strings))
		for k, v := range m.Strings {
			d.Strings[k] = v
		}
	}
	return d, ErrNone
}

func (m *RealMatrix) Release() {
	if m.Data == nil {
		panic("vm: real matrix released twice")
	}
	m.alloc.Free(m.Data)
	m.Data = nil
	m.Strings = nil
}

// ComplexMatrix is a row-major matrix of complex numbers stored as
// interleaved (re, im) pairs.
type ComplexMatrix struct {
	Rows, Cols int
	Data       []scalar.Scalar

	alloc Allocator
}

// NewComplexMatrix allocates a zero-filled rows×cols complex matrix.
func NewComplexMatrix(a Allocator, rows, cols int) (*ComplexMatrix, ErrorKind) {
	if rows < 1 || cols < 1 {
		return nil, ErrDimensionError
	}
	if rows > MaxWords/2/cols {
		return nil, ErrInsufficientMemory
	}
	buf, err := a.Alloc(2 * rows * cols)
	if err != ErrNone {
		return nil, err
	}
	return &ComplexMatrix{Rows: rows, Cols: cols, Data: buf, alloc: a}, ErrNone
}

func (*ComplexMatrix) Type() Type { return TypeComplexMatrix }
func (*ComplexMatrix) isValue()   {}

// At returns element (i, j).
func (m *ComplexMatrix) At(i, j int) (scalar.Scalar, scalar.Scalar) {
	n := 2 * (i*m.Cols + j)
	return m.Data[n], m.Data[n+1]
}

// Set stores element (i, j).
func (m *ComplexMatrix) Set(i, j int, re, im scalar.Scalar) {
	n := 2 * (i*m.Cols + j)
	m.Data[n] = re
	m.Data[n+1] = im
}

func (m *ComplexMatrix) Square() bool { return m.Rows == m.Cols }

func (m *ComplexMatrix) Dup() (Value, ErrorKind) {
	d, err := NewComplexMatrix(m.alloc, m.Rows, m.Cols)
	if err != ErrNone {
		return nil, err
	}
	copy(d.Data, m.Data)
	return d, ErrNone
}

func (m *ComplexMatrix) Release() {
	if m.Data == nil {
		panic("vm: complex matrix released twice")
	}
	m.alloc.Free(m.Data)
	m.Data = nil
}

// Allocator returns the allocator that owns the matrix buffer.
func (m *RealMatrix) Allocator() Allocator    { return m.alloc }
func (m *ComplexMatrix) Allocator() Allocator { return m.alloc }

// Dims returns the shape of a matrix value, ok=false for scalars.
func Dims(v Value) (rows, cols int, ok bool) {
	switch m := v.(type) {
	case *RealMatrix:
		return m.Rows, m.Cols, true
	case *ComplexMatrix:
		return m.Rows, m.Cols, true
	}
	return 0, 0, false
}

// IsMatrix reports whether v is a real or complex matrix.
func IsMatrix(v Value) bool {
	_, _, ok := Dims(v)
	return ok
}
