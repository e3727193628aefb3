package bytecode

import (
	"fmt"
	"strings"
)

// Opcode is the dense index of a calculator command.
type Opcode uint16

const (
	// ========================================================================
	// Stack
	// ========================================================================

	OpClx Opcode = iota
	OpEnter
	OpSwap
	OpRdn
	OpChs

	// ========================================================================
	// Arithmetic
	// ========================================================================

	OpDiv
	OpMul
	OpSub
	OpAdd
	OpLastX
	OpSqrt
	OpSquare
	OpInv
	OpComplex

	// ========================================================================
	// Storage
	// ========================================================================

	OpSto
	OpStoDiv
	OpStoMul
	OpStoSub
	OpStoAdd
	OpRcl
	OpRclDiv
	OpRclMul
	OpRclSub
	OpRclAdd
	OpClst

	// ========================================================================
	// Matrix
	// ========================================================================

	OpNewMat
	OpCross
	OpDet
	OpDot
	OpFnrm
	OpInvrt
	OpRnrm
	OpRsum
	OpTrans
	OpUvec

	// ========================================================================
	// Literals (pseudo-commands, no code bytes of their own)
	// ========================================================================

	OpNumber
	OpString

	opCount
)

// ArgType says what kind of argument a command takes when programmed.
type ArgType uint8

const (
	ArgNone ArgType = iota // no argument
	ArgVar                 // register number, stack register, variable name, or indirect
)

// OpcodeInfo describes how a command is named and encoded.
type OpcodeInfo struct {
	Name  string   // display name
	Alias []string // alternative spellings accepted by Parse
	SCode byte     // second byte of the named-variable form "Fn SCode name", 0 if none
	Code1 byte     // 0 for one-byte commands, XROM or F2 prefix otherwise
	Code2 byte
	Short byte    // first of sixteen one-byte forms for registers 00-15, 0 if none
	Arg   ArgType // argument accepted
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = [opCount]OpcodeInfo{
	// Stack
	OpClx:   {Name: "CLX", Code2: 0x77},
	OpEnter: {Name: "ENTER", Code2: 0x83},
	OpSwap:  {Name: "X<>Y", Alias: []string{"SWAP"}, Code2: 0x71},
	OpRdn:   {Name: "R↓", Alias: []string{"RDN"}, Code2: 0x75},
	OpChs:   {Name: "+/-", Alias: []string{"CHS"}, Code2: 0x54},

	// Arithmetic
	OpDiv:     {Name: "÷", Alias: []string{"/"}, Code2: 0x43},
	OpMul:     {Name: "×", Alias: []string{"*"}, Code2: 0x42},
	OpSub:     {Name: "-", Alias: []string{"−"}, Code2: 0x41},
	OpAdd:     {Name: "+", Code2: 0x40},
	OpLastX:   {Name: "LASTX", Code2: 0x76},
	OpSqrt:    {Name: "SQRT", Code2: 0x52},
	OpSquare:  {Name: "X^2", Code2: 0x51},
	OpInv:     {Name: "1/X", Code2: 0x60},
	OpComplex: {Name: "COMPLEX", Code1: 0xa0, Code2: 0x72},

	// Storage
	OpSto:    {Name: "STO", SCode: 0x81, Code2: 0x91, Short: 0x30, Arg: ArgVar},
	OpStoDiv: {Name: "STO÷", Alias: []string{"STO/"}, SCode: 0x85, Code2: 0x95, Arg: ArgVar},
	OpStoMul: {Name: "STO×", Alias: []string{"STO*"}, SCode: 0x84, Code2: 0x94, Arg: ArgVar},
	OpStoSub: {Name: "STO-", Alias: []string{"STO−"}, SCode: 0x83, Code2: 0x93, Arg: ArgVar},
	OpStoAdd: {Name: "STO+", SCode: 0x82, Code2: 0x92, Arg: ArgVar},
	OpRcl:    {Name: "RCL", SCode: 0x91, Code2: 0x90, Short: 0x20, Arg: ArgVar},
	OpRclDiv: {Name: "RCL÷", Alias: []string{"RCL/"}, SCode: 0x95, Code1: 0xf2, Code2: 0xd4, Arg: ArgVar},
	OpRclMul: {Name: "RCL×", Alias: []string{"RCL*"}, SCode: 0x94, Code1: 0xf2, Code2: 0xd3, Arg: ArgVar},
	OpRclSub: {Name: "RCL-", Alias: []string{"RCL−"}, SCode: 0x93, Code1: 0xf2, Code2: 0xd2, Arg: ArgVar},
	OpRclAdd: {Name: "RCL+", SCode: 0x92, Code1: 0xf2, Code2: 0xd1, Arg: ArgVar},
	OpClst:   {Name: "CLST", Code2: 0x73},

	// Matrix
	OpNewMat: {Name: "NEWMAT", Code1: 0xa6, Code2: 0xda},
	OpCross:  {Name: "CROSS", Code1: 0xa6, Code2: 0xca},
	OpDet:    {Name: "DET", Code1: 0xa6, Code2: 0xcc},
	OpDot:    {Name: "DOT", Code1: 0xa6, Code2: 0xcb},
	OpFnrm:   {Name: "FNRM", Code1: 0xa6, Code2: 0xcf},
	OpInvrt:  {Name: "INVRT", Code1: 0xa6, Code2: 0xce},
	OpRnrm:   {Name: "RNRM", Code1: 0xa6, Code2: 0xed},
	OpRsum:   {Name: "RSUM", Code1: 0xa6, Code2: 0xd0},
	OpTrans:  {Name: "TRANS", Code1: 0xa6, Code2: 0xc9},
	OpUvec:   {Name: "UVEC", Code1: 0xa6, Code2: 0xcd},

	// Literals
	OpNumber: {Name: "NUMBER"},
	OpString: {Name: "STRING"},
}

// Reverse indexes, built once from opcodeInfoTable.
var (
	byName  = map[string]Opcode{}
	byCode  = map[[2]byte]Opcode{}
	bySCode = map[byte]Opcode{}
	byShort = map[byte]Opcode{}
)

func init() {
	for op := Opcode(0); op < opCount; op++ {
		info := &opcodeInfoTable[op]
		if op == OpNumber || op == OpString {
			continue
		}
		byName[info.Name] = op
		for _, a := range info.Alias {
			byName[a] = op
		}
		byCode[[2]byte{info.Code1, info.Code2}] = op
		if info.SCode != 0 {
			bySCode[info.SCode] = op
		}
		if info.Short != 0 {
			byShort[info.Short>>4] = op
		}
	}
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if op >= opCount {
		return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(%d)", uint16(op))}
	}
	return opcodeInfoTable[op]
}

// String returns the display name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Valid reports whether op names a command.
func (op Opcode) Valid() bool { return op < opCount }

// TakesArg reports whether the command is followed by an argument.
func (op Opcode) TakesArg() bool { return GetOpcodeInfo(op).Arg != ArgNone }

// IsLiteral reports whether op is a number or string literal.
func (op Opcode) IsLiteral() bool { return op == OpNumber || op == OpString }

// Lookup finds a command by display name or alias, ignoring case for
// ASCII names.
func Lookup(name string) (Opcode, bool) {
	if op, ok := byName[name]; ok {
		return op, true
	}
	op, ok := byName[strings.ToUpper(name)]
	return op, ok
}

// Decode finds the command encoded by a code pair. One-byte commands have
// code1 == 0.
func Decode(code1, code2 byte) (Opcode, bool) {
	op, ok := byCode[[2]byte{code1, code2}]
	return op, ok
}

// AllOpcodes returns every command opcode in table order, literals
// excluded.
func AllOpcodes() []Opcode {
	ops := make([]Opcode, 0, opCount)
	for op := Opcode(0); op < opCount; op++ {
		if !op.IsLiteral() {
			ops = append(ops, op)
		}
	}
	return ops
}

// NumOpcodes is the number of opcodes, literals included. Tables indexed
// by Opcode use it as their length.
const NumOpcodes = int(opCount)

// OpcodeCount returns NumOpcodes.
func OpcodeCount() int {
	return NumOpcodes
}
