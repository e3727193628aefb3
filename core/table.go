package core

import (
	"github.com/chazu/calc42/pkg/bytecode"
	"github.com/chazu/calc42/vm"
)

// Flags qualify how a command may be used.
type Flags uint8

const (
	FlagPrgmOnly Flags = 1 << iota // only in a running program
	FlagImmed                      // executes while entering a program
	FlagHidden                     // not shown in catalogs
	FlagNoPrgm                     // cannot be stored in a program
	FlagNoShow                     // no display update afterwards
	FlagSpecial                    // handled outside the dispatcher
	FlagIllegal                    // reserved code
)

// ArgVariable is the arity of commands whose handler decides how many
// operands it needs.
const ArgVariable = -1

// Handler executes one command against the machine. It returns ErrNone,
// ErrSuspended after installing a task, or the failure.
type Handler func(m *Machine, arg *bytecode.Arg) vm.ErrorKind

// Descriptor is the static contract of one command.
type Descriptor struct {
	Op       bytecode.Opcode
	Flags    Flags
	ArgCount int8
	Types    uint8
	Handler  Handler
}

// Name returns the display name of the command.
func (d *Descriptor) Name() string { return d.Op.String() }

const (
	maskNumeric = 0x8f // real, complex, both matrices, and future types
	maskMatrix  = 0x0c
	maskReal    = 0x01
)

var table [bytecode.NumOpcodes]Descriptor

func def(op bytecode.Opcode, argc int8, types uint8, h Handler) {
	table[op] = Descriptor{Op: op, ArgCount: argc, Types: types, Handler: h}
}

func init() {
	// Stack
	def(bytecode.OpClx, 1, vm.MaskAll, cmdClx)
	def(bytecode.OpEnter, 1, vm.MaskAll, cmdEnter)
	def(bytecode.OpSwap, 2, vm.MaskAll, cmdSwap)
	def(bytecode.OpRdn, 0, vm.MaskNone, cmdRdn)
	def(bytecode.OpChs, 1, maskNumeric, cmdChs)
	def(bytecode.OpLastX, 0, vm.MaskNone, cmdLastX)
	def(bytecode.OpClst, 0, vm.MaskNone, cmdClst)

	// Arithmetic
	def(bytecode.OpDiv, 2, maskNumeric, cmdDiv)
	def(bytecode.OpMul, 2, maskNumeric, cmdMul)
	def(bytecode.OpSub, 2, maskNumeric, cmdSub)
	def(bytecode.OpAdd, 2, maskNumeric, cmdAdd)
	def(bytecode.OpSqrt, 1, maskNumeric, cmdSqrt)
	def(bytecode.OpSquare, 1, maskNumeric, cmdSquare)
	def(bytecode.OpInv, 1, maskNumeric, cmdInv)
	def(bytecode.OpComplex, ArgVariable, vm.MaskNone, cmdComplex)

	// Storage
	def(bytecode.OpSto, 1, vm.MaskAll, cmdSto)
	def(bytecode.OpStoDiv, 1, maskNumeric, storeArith(divide))
	def(bytecode.OpStoMul, 1, maskNumeric, storeArith(multiply))
	def(bytecode.OpStoSub, 1, maskNumeric, storeArith(subtract))
	def(bytecode.OpStoAdd, 1, maskNumeric, storeArith(add))
	def(bytecode.OpRcl, 0, vm.MaskNone, cmdRcl)
	def(bytecode.OpRclDiv, 1, maskNumeric, recallArith(divide))
	def(bytecode.OpRclMul, 1, maskNumeric, recallArith(multiply))
	def(bytecode.OpRclSub, 1, maskNumeric, recallArith(subtract))
	def(bytecode.OpRclAdd, 1, maskNumeric, recallArith(add))

	// Matrix
	def(bytecode.OpNewMat, 2, maskReal, cmdNewMat)
	def(bytecode.OpCross, 2, vm.MaskFunc, cmdCross)
	def(bytecode.OpDet, 1, maskMatrix, cmdDet)
	def(bytecode.OpDot, 2, vm.MaskFunc, cmdDot)
	def(bytecode.OpFnrm, 1, maskMatrix, cmdFnrm)
	def(bytecode.OpInvrt, 1, maskMatrix, cmdInvrt)
	def(bytecode.OpRnrm, 1, maskMatrix, cmdRnrm)
	def(bytecode.OpRsum, 1, maskMatrix, cmdRsum)
	def(bytecode.OpTrans, 1, maskMatrix, cmdTrans)
	def(bytecode.OpUvec, 1, 0x06, cmdUvec)

	// Literals are executed by Machine.Execute, not dispatched.
	table[bytecode.OpNumber] = Descriptor{Op: bytecode.OpNumber, Flags: FlagSpecial}
	table[bytecode.OpString] = Descriptor{Op: bytecode.OpString, Flags: FlagSpecial}
}

// Lookup returns the descriptor of op, or nil when op is out of range.
func Lookup(op bytecode.Opcode) *Descriptor {
	if !op.Valid() {
		return nil
	}
	return &table[op]
}
