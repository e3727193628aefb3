package bytecode

import (
	"strings"
	"testing"
)

func TestAllOpcodesHaveMetadata(t *testing.T) {
	for _, op := range AllOpcodes() {
		info := GetOpcodeInfo(op)
		if info.Name == "" || strings.HasPrefix(info.Name, "UNKNOWN") {
			t.Errorf("Opcode %d has no metadata", op)
		}
		if info.Code2 == 0 {
			t.Errorf("%s has no code", info.Name)
		}
	}
}

func TestOpcodeCodesAreUnique(t *testing.T) {
	seen := map[[2]byte]Opcode{}
	for _, op := range AllOpcodes() {
		info := GetOpcodeInfo(op)
		key := [2]byte{info.Code1, info.Code2}
		if prev, ok := seen[key]; ok {
			t.Errorf("%s and %s share code %02X %02X", prev, op, key[0], key[1])
		}
		seen[key] = op
		if got, ok := Decode(key[0], key[1]); !ok || got != op {
			t.Errorf("Decode(%02X, %02X) = %v, want %s", key[0], key[1], got, op)
		}
	}
}

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{OpAdd, "+"},
		{OpDiv, "÷"},
		{OpRdn, "R↓"},
		{OpSto, "STO"},
		{OpRclAdd, "RCL+"},
		{OpDet, "DET"},
		{OpInvrt, "INVRT"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Opcode(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestUnknownOpcodeString(t *testing.T) {
	op := Opcode(0xEE)
	if got := op.String(); !strings.HasPrefix(got, "UNKNOWN") {
		t.Errorf("Unknown opcode should return UNKNOWN, got %q", got)
	}
	if op.Valid() {
		t.Error("0xEE reported valid")
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want Opcode
	}{
		{"+", OpAdd},
		{"/", OpDiv},
		{"÷", OpDiv},
		{"rdn", OpRdn},
		{"x<>y", OpSwap},
		{"STO/", OpStoDiv},
		{"rcl*", OpRclMul},
		{"chs", OpChs},
		{"1/x", OpInv},
	}
	for _, tt := range tests {
		got, ok := Lookup(tt.name)
		if !ok || got != tt.want {
			t.Errorf("Lookup(%q) = %v, %v; want %s", tt.name, got, ok, tt.want)
		}
	}
	if _, ok := Lookup("NUMBER"); ok {
		t.Error("literal pseudo-command found by name")
	}
	if _, ok := Lookup("SIN"); ok {
		t.Error("SIN should not be in the table")
	}
}

func TestTakesArg(t *testing.T) {
	for _, op := range []Opcode{OpSto, OpStoAdd, OpRcl, OpRclDiv} {
		if !op.TakesArg() {
			t.Errorf("%s should take an argument", op)
		}
	}
	for _, op := range []Opcode{OpAdd, OpDet, OpEnter} {
		if op.TakesArg() {
			t.Errorf("%s should not take an argument", op)
		}
	}
}
