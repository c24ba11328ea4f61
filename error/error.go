package error

import (
	"fmt"
	"strings"
)

// SpecErrors is a list of errors found in a grammar definition.
type SpecErrors []*SpecError

func (e SpecErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%v", e[0])
	for _, err := range e[1:] {
		fmt.Fprintf(&b, "\n%v", err)
	}

	return b.String()
}

type SpecError struct {
	Cause       error
	Detail      string
	GrammarName string

	// Production is a readable form of the production the error relates to, such as `expr → expr op expr`.
	Production string
}

func (e *SpecError) Error() string {
	var b strings.Builder
	if e.GrammarName != "" {
		fmt.Fprintf(&b, "%v: ", e.GrammarName)
	}
	fmt.Fprintf(&b, "error: %v", e.Cause)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %v", e.Detail)
	}
	if e.Production != "" {
		fmt.Fprintf(&b, "\n    %v", e.Production)
	}

	return b.String()
}

func (e *SpecError) Unwrap() error {
	return e.Cause
}
