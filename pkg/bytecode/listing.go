package bytecode

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadListing builds a program from text with one instruction per line.
// A ';' outside a quoted string starts a comment, blank lines are skipped
// and an END line stops the listing.
func ReadListing(r io.Reader) (*Program, error) {
	p := NewProgram()
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(stripComment(sc.Text()))
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "END") {
			break
		}
		in, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if _, err := p.Emit(in); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("cannot read listing: %w", err)
	}
	return p, nil
}

// WriteListing writes p in the form ReadListing accepts.
func (p *Program) WriteListing(w io.Writer) error {
	ins, err := p.Instructions()
	if err != nil {
		return err
	}
	for _, in := range ins {
		if _, err := fmt.Fprintln(w, in); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w, "END")
	return err
}

func stripComment(line string) string {
	quoted := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				return line[:i]
			}
		}
	}
	return line
}
