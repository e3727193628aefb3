package bytecode

import (
	"strings"
	"testing"
)

func TestDisassemble(t *testing.T) {
	p := NewProgram().MustEmit(Number("2"), Number("3"), Instr{Op: OpAdd})
	out := p.DisassembleWithName("SUM")

	for _, want := range []string{
		"; === SUM ===",
		"; 4 bytes",
		"0000  01 2",
		"0002  02 3",
		"0003  03 +",
		"; 40",
		"04 END",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
}

func TestDisassembleReportsBadCode(t *testing.T) {
	p := &Program{Code: []byte{0x40, 0x44}}
	out := p.Disassemble()
	if !strings.Contains(out, "01 +") {
		t.Errorf("listing missing first line:\n%s", out)
	}
	if !strings.Contains(out, "unknown code 0x44") {
		t.Errorf("listing missing decode error:\n%s", out)
	}
}
