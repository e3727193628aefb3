package core

import (
	"fmt"
	"strings"

	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

// Format renders a value the way the display shows it in X.
func Format(v vm.Value) string {
	switch v := v.(type) {
	case nil:
		return ""
	case *vm.Real:
		return scalar.Format(v.X)
	case *vm.Complex:
		return scalar.FormatComplex(v.Re, v.Im)
	case *vm.String:
		return `"` + v.Text + `"`
	case *vm.RealMatrix:
		return fmt.Sprintf("[ %d×%d Matrix ]", v.Rows, v.Cols)
	case *vm.ComplexMatrix:
		return fmt.Sprintf("[ %d×%d Cpx Matrix ]", v.Rows, v.Cols)
	}
	return "?"
}

// FormatMatrix lists every element of a matrix row by row, for the
// matrix editor view.
func FormatMatrix(v vm.Value) string {
	var sb strings.Builder
	switch m := v.(type) {
	case *vm.RealMatrix:
		for i := 0; i < m.Rows; i++ {
			for j := 0; j < m.Cols; j++ {
				if j > 0 {
					sb.WriteString("  ")
				}
				if s, ok := m.Strings[i*m.Cols+j]; ok {
					sb.WriteString(`"` + s + `"`)
					continue
				}
				sb.WriteString(scalar.Format(m.At(i, j)))
			}
			sb.WriteByte('\n')
		}
	case *vm.ComplexMatrix:
		for i := 0; i < m.Rows; i++ {
			for j := 0; j < m.Cols; j++ {
				if j > 0 {
					sb.WriteString("  ")
				}
				sb.WriteString(scalar.FormatComplex(m.At(i, j)))
			}
			sb.WriteByte('\n')
		}
	default:
		return Format(v) + "\n"
	}
	return sb.String()
}

// StackLines renders the stack from the top level down, labelled the way
// the four-level display does ("T:", "Z:", "Y:", "X:"). Levels beyond T
// are numbered.
func (m *Machine) StackLines() []string {
	vals := m.Stack.Values()
	lines := make([]string, 0, len(vals))
	for i := range vals {
		level := len(vals) - 1 - i
		label := fmt.Sprintf("%d", level+1)
		if level < len("XYZT") {
			label = string("XYZT"[level])
		}
		lines = append(lines, label+": "+Format(vals[i]))
	}
	return lines
}
