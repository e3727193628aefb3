package bytecode

import (
	"bytes"
	"strings"
	"testing"
)

func TestReadListing(t *testing.T) {
	src := `; sum of squares
3
X^2     ; nine
4 ;four
X^2
+
"A;B"   ; quoted semicolon
STO IND "P"

END
this is never read
`
	p, err := ReadListing(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadListing: %v", err)
	}
	ins, err := p.Instructions()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"3", "X^2", "4", "X^2", "+", `"A;B"`, `STO IND "P"`}
	if len(ins) != len(want) {
		t.Fatalf("got %d instructions %v, want %d", len(ins), ins, len(want))
	}
	for i, in := range ins {
		if in.String() != want[i] {
			t.Errorf("instruction %d = %q, want %q", i, in, want[i])
		}
	}
}

func TestReadListingError(t *testing.T) {
	_, err := ReadListing(strings.NewReader("1\n2\nFROB\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("err = %v, want a line 3 error", err)
	}
}

func TestWriteListing(t *testing.T) {
	p := NewProgram().MustEmit(Number("1.5"), Number("2"), Instr{Op: OpMul}, Text("OK"))
	var buf bytes.Buffer
	if err := p.WriteListing(&buf); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "1.5\n2\n×\n\"OK\"\nEND\n"; got != want {
		t.Errorf("listing = %q, want %q", got, want)
	}
	q, err := ReadListing(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(p.Code, q.Code) {
		t.Errorf("code % x, want % x", q.Code, p.Code)
	}
}
