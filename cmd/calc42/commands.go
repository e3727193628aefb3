package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chazu/calc42/core"
	"github.com/chazu/calc42/pkg/bytecode"
)

// listCommands prints the command table: name, operand count, accepted
// types and encoding.
func listCommands(w io.Writer) {
	fmt.Fprintf(w, "%-8s %4s  %-22s %s\n", "NAME", "ARGS", "TYPES", "CODE")
	for _, op := range bytecode.AllOpcodes() {
		d := core.Lookup(op)
		if d == nil || op.IsLiteral() {
			continue
		}
		info := bytecode.GetOpcodeInfo(op)
		code := fmt.Sprintf("%02X", info.Code2)
		if info.Code1 != 0 {
			code = fmt.Sprintf("%02X %02X", info.Code1, info.Code2)
		}
		args := fmt.Sprintf("%d", d.ArgCount)
		if d.ArgCount == core.ArgVariable {
			args = "var"
		}
		fmt.Fprintf(w, "%-8s %4s  %-22s %s\n", op, args, typeNames(d.Types), code)
	}
}

func typeNames(mask uint8) string {
	switch mask {
	case 0xff:
		return "any"
	case 0:
		return "-"
	}
	var names []string
	for _, n := range []struct {
		bit  uint8
		name string
	}{{0x01, "real"}, {0x02, "cpx"}, {0x04, "rmat"}, {0x08, "cmat"}, {0x10, "str"}} {
		if mask&n.bit != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}
