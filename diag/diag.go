// Package diag collects the lexical and syntactic diagnostics of one analysis run.
//
// A Handler is shared by the scanner and the parser of a run. Neither of them stops on a lexical or
// syntactic problem; they record a Diagnostic and go on, and the caller reads the Summary at the end.
package diag

import (
	"fmt"
	"strings"
)

type Stage int

const (
	StageLexical Stage = iota
	StageSyntactic
)

func (s Stage) String() string {
	switch s {
	case StageLexical:
		return "lexical"
	case StageSyntactic:
		return "syntactic"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Position is a 1-based location in the source. The zero value means the position is unknown.
type Position struct {
	Row int
	Col int
}

func (p Position) String() string {
	return fmt.Sprintf("%v:%v", p.Row, p.Col)
}

type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Message  string
	Position Position

	// Lexeme is the offending text. It is empty at the end of input.
	Lexeme string

	// Expected lists the terminals the parser could have accepted instead. Only syntactic
	// diagnostics have it.
	Expected []string
}

func (d Diagnostic) String() string {
	if d.Severity == SeverityWarning {
		return fmt.Sprintf("%v warning: %v at %v", d.Stage, d.Message, d.Position)
	}
	return fmt.Sprintf("%v: %v at %v", d.Stage, d.Message, d.Position)
}

func (d Diagnostic) clone() Diagnostic {
	c := d
	if d.Expected != nil {
		c.Expected = make([]string, len(d.Expected))
		copy(c.Expected, d.Expected)
	}
	return c
}

// FormatExpected renders an expected-terminal list for a message, such as `';', id or '('`.
func FormatExpected(terms []string) string {
	switch len(terms) {
	case 0:
		return ""
	case 1:
		return terms[0]
	}
	return fmt.Sprintf("%v or %v", strings.Join(terms[:len(terms)-1], ", "), terms[len(terms)-1])
}
