package diag

import (
	"bytes"
	"fmt"
	"io"
)

type Summary struct {
	RunID       string
	Lexical     int
	Syntactic   int
	Warnings    int
	Total       int
	First       *Position
	Last        *Position
	Diagnostics []Diagnostic
}

func newSummary(runID string, diags []Diagnostic) *Summary {
	s := &Summary{
		RunID:       runID,
		Total:       len(diags),
		Diagnostics: diags,
	}
	for _, d := range diags {
		switch d.Stage {
		case StageLexical:
			s.Lexical++
		case StageSyntactic:
			s.Syntactic++
		}
		if d.Severity == SeverityWarning {
			s.Warnings++
		}
	}
	if len(diags) > 0 {
		first := diags[0].Position
		last := diags[len(diags)-1].Position
		s.First = &first
		s.Last = &last
	}
	return s
}

func (s *Summary) HasErrors() bool {
	return s.Total > 0
}

// WriteTo writes the report: a header with the counts per stage, then one line per diagnostic.
func (s *Summary) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "errors: %v (lexical: %v, syntactic: %v)\n", s.Total, s.Lexical, s.Syntactic)
	for _, d := range s.Diagnostics {
		fmt.Fprintf(&b, "%v\n", d)
	}
	n, err := w.Write(b.Bytes())
	return int64(n), err
}

func (s *Summary) String() string {
	var b bytes.Buffer
	s.WriteTo(&b)
	return b.String()
}
