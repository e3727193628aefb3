package wire

import (
	"bytes"
	"testing"

	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

func TestValueCBORRoundTrip(t *testing.T) {
	h := vm.NewHeap(0)
	rm, _ := vm.NewRealMatrix(h, 2, 2)
	copy(rm.Data, []scalar.Scalar{1, 2, 3, 4})
	rm.SetString(1, 0, "ABC")
	cm, _ := vm.NewComplexMatrix(h, 1, 2)
	copy(cm.Data, []scalar.Scalar{1, -1, 0.5, 2})

	tests := []struct {
		name string
		v    vm.Value
	}{
		{"real", vm.NewReal(-1.25e-300)},
		{"complex", vm.NewComplex(3, -4)},
		{"string", vm.NewString("HELLO")},
		{"empty string", vm.NewString("")},
		{"real matrix", rm},
		{"complex matrix", cm},
	}
	for _, tt := range tests {
		data, err := MarshalValue(tt.v)
		if err != nil {
			t.Fatalf("%s: MarshalValue: %v", tt.name, err)
		}
		got, err := UnmarshalValue(data, h)
		if err != nil {
			t.Fatalf("%s: UnmarshalValue: %v", tt.name, err)
		}
		again, err := MarshalValue(got)
		if err != nil {
			t.Fatalf("%s: MarshalValue again: %v", tt.name, err)
		}
		if !bytes.Equal(data, again) {
			t.Errorf("%s: round trip changed the encoding", tt.name)
		}
		if got.Type() != tt.v.Type() {
			t.Errorf("%s: type = %v, want %v", tt.name, got.Type(), tt.v.Type())
		}
	}
}

func TestMatrixStringsSurvive(t *testing.T) {
	h := vm.NewHeap(0)
	rm, _ := vm.NewRealMatrix(h, 2, 3)
	rm.SetString(1, 2, "X")
	data, err := MarshalValue(rm)
	if err != nil {
		t.Fatal(err)
	}
	v, err := UnmarshalValue(data, h)
	if err != nil {
		t.Fatal(err)
	}
	got := v.(*vm.RealMatrix)
	if got.Rows != 2 || got.Cols != 3 || got.Strings[5] != "X" {
		t.Errorf("decoded %+v", got)
	}
	if h.Outstanding() != 2 {
		t.Errorf("outstanding buffers = %d, want 2", h.Outstanding())
	}
}

func TestCanonicalEncoding(t *testing.T) {
	a := &Snapshot{Vars: map[string]Item{
		"B": {Type: vm.TypeString, Text: "b"},
		"A": {Type: vm.TypeString, Text: "a"},
	}}
	b := &Snapshot{Vars: map[string]Item{
		"A": {Type: vm.TypeString, Text: "a"},
		"B": {Type: vm.TypeString, Text: "b"},
	}}
	da, err := MarshalSnapshot(a)
	if err != nil {
		t.Fatal(err)
	}
	db, err := MarshalSnapshot(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(da, db) {
		t.Error("equal snapshots encode differently")
	}
	got, err := UnmarshalSnapshot(da)
	if err != nil {
		t.Fatal(err)
	}
	names := got.VarNames()
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("VarNames = %v", names)
	}
}

func TestMalformedItems(t *testing.T) {
	tests := []struct {
		name string
		it   Item
	}{
		{"unknown type", Item{Type: 9}},
		{"short real", Item{Type: vm.TypeReal}},
		{"short complex", Item{Type: vm.TypeComplex, Data: []scalar.Scalar{1}}},
		{"matrix size", Item{Type: vm.TypeRealMatrix, Rows: 2, Cols: 2, Data: []scalar.Scalar{1, 2, 3}}},
		{"zero rows", Item{Type: vm.TypeRealMatrix, Cols: 1}},
		{"string index", Item{Type: vm.TypeRealMatrix, Rows: 1, Cols: 1, Data: []scalar.Scalar{0}, Strings: map[int]string{3: "A"}}},
		{"complex matrix size", Item{Type: vm.TypeComplexMatrix, Rows: 1, Cols: 1, Data: []scalar.Scalar{1}}},
		{"wrapping rows", Item{Type: vm.TypeRealMatrix, Rows: 1<<62 + 1, Cols: 4, Data: make([]scalar.Scalar, 4)}},
		{"wrapping complex rows", Item{Type: vm.TypeComplexMatrix, Rows: 1<<61 + 1, Cols: 4, Data: make([]scalar.Scalar, 8)}},
		{"odd complex components", Item{Type: vm.TypeComplexMatrix, Rows: 1, Cols: 1, Data: make([]scalar.Scalar, 3)}},
	}
	for _, tt := range tests {
		h := vm.NewHeap(0)
		if v, err := tt.it.Value(h); err == nil {
			t.Errorf("%s: decoded %v", tt.name, v)
		}
		if h.Outstanding() != 0 {
			t.Errorf("%s: leaked %d buffers", tt.name, h.Outstanding())
		}
	}
	if _, err := UnmarshalValue([]byte{0xff}, vm.NewHeap(0)); err == nil {
		t.Error("garbage decoded")
	}
}

func TestDecodeRespectsMemoryLimit(t *testing.T) {
	it := Item{Type: vm.TypeRealMatrix, Rows: 3, Cols: 3, Data: make([]scalar.Scalar, 9)}
	if _, err := it.Value(vm.NewHeap(4)); err == nil {
		t.Error("matrix larger than the heap decoded")
	}
}

func TestValuesReleasesOnFailure(t *testing.T) {
	h := vm.NewHeap(0)
	items := []Item{
		{Type: vm.TypeRealMatrix, Rows: 1, Cols: 1, Data: []scalar.Scalar{1}},
		{Type: 42},
	}
	if _, err := Values(items, h); err == nil {
		t.Fatal("Values accepted a bad item")
	}
	if h.Outstanding() != 0 {
		t.Errorf("outstanding = %d, want 0", h.Outstanding())
	}
}
