package bytecode

import (
	"errors"
	"fmt"
	"strings"
)

// Byte-level framing of the program memory.
const (
	byteNull     byte = 0x00 // separates consecutive number literals
	byteDigit0   byte = 0x10 // digits 0-9 are 0x10-0x19
	byteDot      byte = 0x1a
	byteExponent byte = 0x1b
	byteMinus    byte = 0x1c
	byteText     byte = 0xf0 // Fn: text of n bytes follows
	maxText           = 15
)

// ErrEnd is returned by Program.At past the last instruction.
var ErrEnd = errors.New("end of program")

// Instr is one decoded instruction.
type Instr struct {
	Op  Opcode
	Arg Arg
}

// Number returns a number literal instruction.
func Number(text string) Instr {
	return Instr{Op: OpNumber, Arg: Arg{Kind: ArgKindNumber, Text: text}}
}

// Text returns a string literal instruction.
func Text(s string) Instr {
	return Instr{Op: OpString, Arg: Arg{Kind: ArgKindText, Text: s}}
}

func (in Instr) String() string {
	switch {
	case in.Op.IsLiteral():
		return in.Arg.String()
	case in.Arg.Kind == ArgKindNone:
		return in.Op.String()
	}
	return in.Op.String() + " " + in.Arg.String()
}

// Program is a sequence of encoded instructions.
type Program struct {
	Code []byte

	lastNumber bool
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{Code: make([]byte, 0, 64)}
}

// Emit encodes in and appends it. It returns the offset of the
// instruction.
func (p *Program) Emit(in Instr) (int, error) {
	offset := len(p.Code)
	enc, err := encode(in)
	if err != nil {
		return offset, fmt.Errorf("cannot encode %v: %w", in, err)
	}
	if in.Op == OpNumber && p.lastNumber {
		p.Code = append(p.Code, byteNull)
		offset++
	}
	p.Code = append(p.Code, enc...)
	p.lastNumber = in.Op == OpNumber
	return offset, nil
}

// MustEmit is Emit for instructions known to be encodable.
func (p *Program) MustEmit(ins ...Instr) *Program {
	for _, in := range ins {
		if _, err := p.Emit(in); err != nil {
			panic(err)
		}
	}
	return p
}

func encode(in Instr) ([]byte, error) {
	switch in.Op {
	case OpNumber:
		return encodeNumber(in.Arg.Text)
	case OpString:
		s := in.Arg.Text
		if len(s) > maxText {
			return nil, fmt.Errorf("text longer than %d bytes", maxText)
		}
		if len(s) > 0 && s[0]&0x80 != 0 {
			return nil, errors.New("text may not start with a byte above 0x7F")
		}
		return append([]byte{byteText | byte(len(s))}, s...), nil
	}
	if !in.Op.Valid() {
		return nil, fmt.Errorf("invalid opcode %d", in.Op)
	}
	info := GetOpcodeInfo(in.Op)
	code := []byte{info.Code2}
	if info.Code1 != 0 {
		code = []byte{info.Code1, info.Code2}
	}
	if info.Arg == ArgNone {
		if in.Arg.Kind != ArgKindNone {
			return nil, errors.New("command takes no argument")
		}
		return code, nil
	}

	a := in.Arg
	switch a.Kind {
	case ArgKindNone:
		return nil, errors.New("missing argument")
	case ArgKindStr, ArgKindIndStr:
		if len(a.Text) == 0 || len(a.Text) > maxText-1 {
			return nil, fmt.Errorf("bad variable name %q", a.Text)
		}
		sc := info.SCode
		if a.Kind == ArgKindIndStr {
			sc += 0x08
		}
		return append([]byte{byteText | byte(1+len(a.Text)), sc}, a.Text...), nil
	case ArgKindNum:
		if info.Short != 0 && a.Num < 16 {
			return []byte{info.Short + byte(a.Num)}, nil
		}
	}
	b, err := encodeArgByte(a)
	if err != nil {
		return nil, err
	}
	return append(code, b), nil
}

func encodeNumber(text string) ([]byte, error) {
	if text == "" {
		return nil, errors.New("empty number")
	}
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= '0' && c <= '9':
			out = append(out, byteDigit0+c-'0')
		case c == '.':
			out = append(out, byteDot)
		case c == 'E' || c == 'e':
			out = append(out, byteExponent)
		case c == '-':
			out = append(out, byteMinus)
		default:
			return nil, fmt.Errorf("bad character %q in number", c)
		}
	}
	return out, nil
}

// At decodes the instruction at offset pc, skipping null separators. It
// returns the instruction and the offset of the next one, or ErrEnd.
func (p *Program) At(pc int) (Instr, int, error) {
	code := p.Code
	for pc < len(code) && code[pc] == byteNull {
		pc++
	}
	if pc >= len(code) {
		return Instr{}, pc, ErrEnd
	}
	in, n, err := decode(code[pc:])
	if err != nil {
		return Instr{}, pc, fmt.Errorf("at offset %04X: %w", pc, err)
	}
	return in, pc + n, nil
}

// Instructions decodes the whole program.
func (p *Program) Instructions() ([]Instr, error) {
	var out []Instr
	pc := 0
	for {
		in, next, err := p.At(pc)
		if errors.Is(err, ErrEnd) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, in)
		pc = next
	}
}

func decode(code []byte) (Instr, int, error) {
	b := code[0]
	switch {
	case b >= byteDigit0 && b <= byteMinus:
		return decodeNumber(code)

	case b >= 0x20 && b <= 0x3f:
		op, ok := byShort[b>>4]
		if !ok {
			return Instr{}, 0, fmt.Errorf("unknown code 0x%02X", b)
		}
		return Instr{Op: op, Arg: Arg{Kind: ArgKindNum, Num: int(b & 0x0f)}}, 1, nil

	case b >= byteText:
		n := int(b & 0x0f)
		if len(code) < 1+n {
			return Instr{}, 0, fmt.Errorf("text of %d bytes truncated", n)
		}
		payload := code[1 : 1+n]
		if n == 0 || payload[0]&0x80 == 0 {
			return Text(string(payload)), 1 + n, nil
		}
		if n == 2 {
			if op, ok := Decode(b, payload[0]); ok && op.TakesArg() {
				a, err := decodeArgByte(payload[1])
				if err != nil {
					return Instr{}, 0, err
				}
				return Instr{Op: op, Arg: a}, 3, nil
			}
		}
		sc := payload[0]
		kind := ArgKindStr
		op, ok := bySCode[sc]
		if !ok {
			op, ok = bySCode[sc-0x08]
			kind = ArgKindIndStr
		}
		if !ok || n < 2 {
			return Instr{}, 0, fmt.Errorf("unknown extension 0x%02X 0x%02X", b, sc)
		}
		return Instr{Op: op, Arg: Arg{Kind: kind, Text: string(payload[1:])}}, 1 + n, nil

	case b >= 0xa0 && b <= 0xa7:
		if len(code) < 2 {
			return Instr{}, 0, fmt.Errorf("XROM code 0x%02X truncated", b)
		}
		op, ok := Decode(b, code[1])
		if !ok {
			return Instr{}, 0, fmt.Errorf("unknown code 0x%02X 0x%02X", b, code[1])
		}
		return Instr{Op: op}, 2, nil
	}

	op, ok := Decode(0, b)
	if !ok {
		return Instr{}, 0, fmt.Errorf("unknown code 0x%02X", b)
	}
	if !op.TakesArg() {
		return Instr{Op: op}, 1, nil
	}
	if len(code) < 2 {
		return Instr{}, 0, fmt.Errorf("%s argument truncated", op)
	}
	a, err := decodeArgByte(code[1])
	if err != nil {
		return Instr{}, 0, err
	}
	return Instr{Op: op, Arg: a}, 2, nil
}

func decodeNumber(code []byte) (Instr, int, error) {
	var sb strings.Builder
	n := 0
	for n < len(code) && code[n] >= byteDigit0 && code[n] <= byteMinus {
		switch c := code[n]; c {
		case byteDot:
			sb.WriteByte('.')
		case byteExponent:
			sb.WriteByte('E')
		case byteMinus:
			sb.WriteByte('-')
		default:
			sb.WriteByte('0' + c - byteDigit0)
		}
		n++
	}
	return Number(sb.String()), n, nil
}

// Parse reads one instruction in its written form: a command name with an
// optional argument ("STO 01", "RCL+ ST X", "STO IND \"A\""), a number
// ("-1.5E3") or a quoted string ("\"HELLO\"").
func Parse(line string) (Instr, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Instr{}, errors.New("empty instruction")
	}
	if line[0] == '"' {
		in := Instr{Op: OpString, Arg: Arg{Kind: ArgKindText}}
		if len(line) < 2 || line[len(line)-1] != '"' {
			return Instr{}, fmt.Errorf("unterminated string %s", line)
		}
		in.Arg.Text = line[1 : len(line)-1]
		return in, nil
	}
	if isNumberStart(line) {
		// "1/X" starts like a number.
		if _, err := encodeNumber(line); err == nil {
			return Number(line), nil
		}
	}
	name, rest, _ := strings.Cut(line, " ")
	op, ok := Lookup(name)
	if !ok {
		return Instr{}, fmt.Errorf("unknown command %q", name)
	}
	in := Instr{Op: op}
	rest = strings.TrimSpace(rest)
	switch {
	case op.TakesArg() && rest == "":
		return Instr{}, fmt.Errorf("%s needs an argument", op)
	case !op.TakesArg() && rest != "":
		return Instr{}, fmt.Errorf("%s takes no argument", op)
	case rest != "":
		a, err := ParseArg(rest)
		if err != nil {
			return Instr{}, fmt.Errorf("%s: %w", op, err)
		}
		in.Arg = a
	}
	return in, nil
}

func isNumberStart(s string) bool {
	c := s[0]
	if c >= '0' && c <= '9' || c == '.' {
		return true
	}
	if (c == '-' || c == 'E' || c == 'e') && len(s) > 1 {
		d := s[1]
		return d >= '0' && d <= '9' || d == '.' || d == 'E' || d == 'e' || d == '-'
	}
	return false
}
