package bytecode

import (
	"errors"
	"fmt"
	"strings"
)

// Disassemble returns a listing of the program with one numbered line per
// instruction, the way the calculator shows program memory.
func (p *Program) Disassemble() string {
	return p.DisassembleWithName("")
}

// DisassembleWithName returns the listing under a name header.
func (p *Program) DisassembleWithName(name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; %d bytes\n", len(p.Code)))

	line := 1
	pc := 0
	for {
		in, next, err := p.At(pc)
		if errors.Is(err, ErrEnd) {
			break
		}
		if err != nil {
			sb.WriteString(fmt.Sprintf("%04X  ; %v\n", pc, err))
			break
		}
		start := pc
		for p.Code[start] == byteNull {
			start++
		}
		sb.WriteString(fmt.Sprintf("%04X  %02d %-20s ; %s\n", start, line, in, hexBytes(p.Code[start:next])))
		line++
		pc = next
	}
	sb.WriteString(fmt.Sprintf("%02d END\n", line))
	return sb.String()
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02X", c)
	}
	return strings.Join(parts, " ")
}
