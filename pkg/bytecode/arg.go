package bytecode

import (
	"fmt"
	"strconv"
	"strings"
)

// ArgKind tells which field of an Arg is meaningful.
type ArgKind uint8

const (
	ArgKindNone   ArgKind = iota
	ArgKindNum            // register number in Num
	ArgKindStk            // stack register letter in Stk
	ArgKindStr            // variable name in Text
	ArgKindIndNum         // indirect through register Num
	ArgKindIndStk         // indirect through stack register Stk
	ArgKindIndStr         // indirect through variable Text
	ArgKindNumber         // number literal text in Text
	ArgKindText           // string literal in Text
)

// stackRegs lists the stack register letters in encoding order: the
// argument byte of ST T is 0x70, ST L is 0x74.
const stackRegs = "TZYXL"

// Arg is the operand descriptor of one instruction.
type Arg struct {
	Kind ArgKind
	Num  int
	Stk  byte
	Text string
}

// Indirect reports whether the argument names the location of the real
// argument.
func (a Arg) Indirect() bool {
	return a.Kind == ArgKindIndNum || a.Kind == ArgKindIndStk || a.Kind == ArgKindIndStr
}

// Direct returns the argument with indirection removed.
func (a Arg) Direct() Arg {
	switch a.Kind {
	case ArgKindIndNum:
		a.Kind = ArgKindNum
	case ArgKindIndStk:
		a.Kind = ArgKindStk
	case ArgKindIndStr:
		a.Kind = ArgKindStr
	}
	return a
}

func (a Arg) String() string {
	switch a.Kind {
	case ArgKindNum:
		return fmt.Sprintf("%02d", a.Num)
	case ArgKindStk:
		return "ST " + string(a.Stk)
	case ArgKindStr:
		return strconv.Quote(a.Text)
	case ArgKindIndNum, ArgKindIndStk, ArgKindIndStr:
		return "IND " + a.Direct().String()
	case ArgKindNumber:
		return a.Text
	case ArgKindText:
		return strconv.Quote(a.Text)
	}
	return ""
}

// encodeArgByte returns the argument byte of a numeric or stack argument.
func encodeArgByte(a Arg) (byte, error) {
	var b byte
	switch a.Direct().Kind {
	case ArgKindNum:
		if a.Num < 0 || a.Num > 99 {
			return 0, fmt.Errorf("register %d out of range", a.Num)
		}
		b = byte(a.Num)
	case ArgKindStk:
		i := strings.IndexByte(stackRegs, a.Stk)
		if i < 0 {
			return 0, fmt.Errorf("unknown stack register %q", a.Stk)
		}
		b = 0x70 + byte(i)
	default:
		return 0, fmt.Errorf("argument %v has no byte form", a)
	}
	if a.Indirect() {
		b |= 0x80
	}
	return b, nil
}

// decodeArgByte is the inverse of encodeArgByte.
func decodeArgByte(b byte) (Arg, error) {
	ind := b&0x80 != 0
	v := b & 0x7f
	var a Arg
	switch {
	case v < 100:
		a = Arg{Kind: ArgKindNum, Num: int(v)}
	case v >= 0x70 && v <= 0x74:
		a = Arg{Kind: ArgKindStk, Stk: stackRegs[v-0x70]}
	default:
		return Arg{}, fmt.Errorf("invalid argument byte 0x%02X", b)
	}
	if ind {
		a.Kind += ArgKindIndNum - ArgKindNum
	}
	return a, nil
}

// ParseArg parses the written form of an argument: "07", "ST X",
// "IND 12", "IND ST Y", "\"NAME\"" or "IND \"NAME\"".
func ParseArg(s string) (Arg, error) {
	s = strings.TrimSpace(s)
	ind := false
	if len(s) > 4 && strings.EqualFold(s[:4], "IND ") {
		ind = true
		s = strings.TrimSpace(s[4:])
	}
	var a Arg
	switch {
	case strings.HasPrefix(s, `"`):
		name, err := strconv.Unquote(s)
		if err != nil {
			return Arg{}, fmt.Errorf("bad variable name %s: %w", s, err)
		}
		if name == "" || len(name) > 7 {
			return Arg{}, fmt.Errorf("variable name %q must have 1 to 7 characters", name)
		}
		a = Arg{Kind: ArgKindStr, Text: name}
	case len(s) > 3 && strings.EqualFold(s[:3], "ST "):
		reg := strings.ToUpper(strings.TrimSpace(s[3:]))
		if len(reg) != 1 || !strings.Contains(stackRegs, reg) {
			return Arg{}, fmt.Errorf("unknown stack register %q", reg)
		}
		a = Arg{Kind: ArgKindStk, Stk: reg[0]}
	default:
		n, err := strconv.Atoi(s)
		if err != nil {
			return Arg{}, fmt.Errorf("bad register %q: %w", s, err)
		}
		if n < 0 || n > 99 {
			return Arg{}, fmt.Errorf("register %d out of range", n)
		}
		a = Arg{Kind: ArgKindNum, Num: n}
	}
	if ind {
		a.Kind += ArgKindIndNum - ArgKindNum
	}
	return a, nil
}
