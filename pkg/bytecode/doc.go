// Package bytecode defines the command opcodes of the calculator and the
// byte encoding of its program memory.
//
// # Opcodes
//
// Every command has a dense Opcode used to index the command table in
// package core, plus the one or two code bytes it occupies in a program.
// Lookup and Decode map display names and code pairs back to opcodes.
//
// # Program encoding
//
// The stream follows the layout of the HP-42S:
//
//   - 0x40-0x8F: one-byte commands
//   - 0x90-0x9F nn: commands with an argument byte (STO 91 nn, RCL 90 nn)
//   - 0x20-0x3F: RCL 00-15 and STO 00-15 in a single byte
//   - 0xA0-0xA7 nn: two-byte commands (DET is A6 CC)
//   - 0x10-0x1C: digits, decimal point, exponent and minus of a number
//     literal; adjacent numbers are separated by 0x00
//   - 0xFn: text of n bytes, or, when the first byte has bit 7 set, a
//     command taking a variable name ("Fn 81 NAME" is STO "NAME") or an
//     extended command with an argument byte (RCL+ is F2 D1 nn)
//
// An argument byte below 100 is a register number, 0x70-0x74 are the stack
// registers T, Z, Y, X and L, and bit 7 marks the argument as indirect.
// For named arguments indirection adds 8 to the second byte.
//
// Program.Emit encodes, Program.At decodes one instruction, and Parse reads
// the written form used by listings:
//
//	p := bytecode.NewProgram()
//	p.MustEmit(bytecode.Number("2"), bytecode.Number("3"))
//	in, _ := bytecode.Parse("STO+ IND ST X")
//	p.Emit(in)
//	fmt.Print(p.Disassemble())
package bytecode
