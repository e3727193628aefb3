// Package wire serializes calculator values and machine state snapshots
// to canonical CBOR.
package wire

import (
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Item is the wire form of a single Value. Data holds the matrix elements
// row by row; complex values and complex matrices interleave (re, im).
type Item struct {
	Type    vm.Type         `cbor:"1,keyasint"`
	Rows    int             `cbor:"2,keyasint,omitempty"`
	Cols    int             `cbor:"3,keyasint,omitempty"`
	Data    []scalar.Scalar `cbor:"4,keyasint,omitempty"`
	Text    string          `cbor:"5,keyasint,omitempty"`
	Strings map[int]string  `cbor:"6,keyasint,omitempty"`
}

// Snapshot is the wire form of a machine's user-visible state.
type Snapshot struct {
	BigStack bool            `cbor:"1,keyasint,omitempty"`
	Stack    []Item          `cbor:"2,keyasint"` // bottom up
	LastX    *Item           `cbor:"3,keyasint,omitempty"`
	Regs     []Item          `cbor:"4,keyasint,omitempty"`
	Vars     map[string]Item `cbor:"5,keyasint,omitempty"`
}

// FromValue converts v to its wire form. Matrix data is copied.
func FromValue(v vm.Value) (Item, error) {
	switch v := v.(type) {
	case *vm.Real:
		return Item{Type: vm.TypeReal, Data: []scalar.Scalar{v.X}}, nil
	case *vm.Complex:
		return Item{Type: vm.TypeComplex, Data: []scalar.Scalar{v.Re, v.Im}}, nil
	case *vm.String:
		return Item{Type: vm.TypeString, Text: v.Text}, nil
	case *vm.RealMatrix:
		it := Item{Type: vm.TypeRealMatrix, Rows: v.Rows, Cols: v.Cols, Data: append([]scalar.Scalar(nil), v.Data...)}
		if v.ContainsStrings() {
			it.Strings = make(map[int]string, len(v.Strings))
			for k, s := range v.Strings {
				it.Strings[k] = s
			}
		}
		return it, nil
	case *vm.ComplexMatrix:
		return Item{Type: vm.TypeComplexMatrix, Rows: v.Rows, Cols: v.Cols, Data: append([]scalar.Scalar(nil), v.Data...)}, nil
	case nil:
		return Item{}, fmt.Errorf("wire: nil value")
	}
	return Item{}, fmt.Errorf("wire: unsupported value %T", v)
}

// Value rebuilds the value described by it. Matrix buffers come from a.
func (it Item) Value(a vm.Allocator) (vm.Value, error) {
	switch it.Type {
	case vm.TypeReal:
		if len(it.Data) != 1 {
			return nil, fmt.Errorf("wire: real with %d components", len(it.Data))
		}
		return vm.NewReal(it.Data[0]), nil
	case vm.TypeComplex:
		if len(it.Data) != 2 {
			return nil, fmt.Errorf("wire: complex with %d components", len(it.Data))
		}
		return vm.NewComplex(it.Data[0], it.Data[1]), nil
	case vm.TypeString:
		return vm.NewString(it.Text), nil
	case vm.TypeRealMatrix:
		if !shaped(len(it.Data), it.Rows, it.Cols) {
			return nil, fmt.Errorf("wire: malformed %d×%d matrix with %d elements", it.Rows, it.Cols, len(it.Data))
		}
		m, code := vm.NewRealMatrix(a, it.Rows, it.Cols)
		if code != vm.ErrNone {
			return nil, fmt.Errorf("wire: %w", code)
		}
		copy(m.Data, it.Data)
		for k, s := range it.Strings {
			if k < 0 || k >= len(m.Data) {
				m.Release()
				return nil, fmt.Errorf("wire: string element %d outside the matrix", k)
			}
			m.SetString(k/m.Cols, k%m.Cols, s)
		}
		return m, nil
	case vm.TypeComplexMatrix:
		if len(it.Data)%2 != 0 || !shaped(len(it.Data)/2, it.Rows, it.Cols) {
			return nil, fmt.Errorf("wire: malformed %d×%d complex matrix with %d components", it.Rows, it.Cols, len(it.Data))
		}
		m, code := vm.NewComplexMatrix(a, it.Rows, it.Cols)
		if code != vm.ErrNone {
			return nil, fmt.Errorf("wire: %w", code)
		}
		copy(m.Data, it.Data)
		return m, nil
	}
	return nil, fmt.Errorf("wire: unknown value type %d", it.Type)
}

// MarshalValue serializes v to CBOR bytes.
func MarshalValue(v vm.Value) ([]byte, error) {
	it, err := FromValue(v)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(it)
}

// UnmarshalValue deserializes a value from CBOR bytes.
func UnmarshalValue(data []byte, a vm.Allocator) (vm.Value, error) {
	var it Item
	if err := cbor.Unmarshal(data, &it); err != nil {
		return nil, fmt.Errorf("wire: unmarshal value: %w", err)
	}
	return it.Value(a)
}

// MarshalSnapshot serializes a Snapshot to CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("wire: unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// Items converts a list of values.
func Items(vals []vm.Value) ([]Item, error) {
	out := make([]Item, len(vals))
	for i, v := range vals {
		it, err := FromValue(v)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = it
	}
	return out, nil
}

// Values rebuilds a list of items. On failure every value already built
// is released.
func Values(items []Item, a vm.Allocator) ([]vm.Value, error) {
	out := make([]vm.Value, 0, len(items))
	for i, it := range items {
		v, err := it.Value(a)
		if err != nil {
			for _, done := range out {
				done.Release()
			}
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// VarNames returns the snapshot's variable names in order.
func (s *Snapshot) VarNames() []string {
	names := make([]string, 0, len(s.Vars))
	for k := range s.Vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// shaped reports whether n elements fill a rows×cols matrix exactly,
// without forming rows·cols.
func shaped(n, rows, cols int) bool {
	return rows >= 1 && cols >= 1 && n%cols == 0 && n/cols == rows
}
