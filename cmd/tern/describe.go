package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/tern-lang/tern/grammar"
	"github.com/tern-lang/tern/lang/basic"
	spec "github.com/tern-lang/tern/spec/grammar"
)

var describeFlags = struct {
	class *string
	json  *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "describe",
		Short:   "Print the states and conflicts of the basic grammar",
		Example: `  tern describe --class slr`,
		Args:    cobra.NoArgs,
		RunE:    runDescribe,
	}
	describeFlags.class = cmd.Flags().String("class", string(grammar.ClassLALR), "grammar class: lalr or slr")
	describeFlags.json = cmd.Flags().Bool("json", false, "print the report as JSON")
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	gram, err := basic.Builder().Build()
	if err != nil {
		return err
	}

	_, report, err := grammar.Compile(gram, grammar.SpecifyClass(grammar.Class(*describeFlags.class)), grammar.EnableReporting())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if *describeFlags.json {
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}

	return writeReport(w, report)
}

const reportTemplate = `# Class

{{ .Class }}

# Conflicts

{{ printConflictSummary . }}

# Terminals

{{ range slice .Terminals 1 -}}
{{ printTerminal . }}
{{ end }}
# Productions

{{ range slice .Productions 1 -}}
{{ printProduction . }}
{{ end }}
# States
{{ range .States }}
## State {{ .Number }}{{ if .ErrorTrapper }} (error trapper){{ end }}{{ if .Recover }} (recover){{ end }}

{{ range .Kernel -}}
{{ printItem . }}
{{ end }}
{{ range .Shift -}}
{{ printShift . }}
{{ end -}}
{{ with .Sync -}}
{{ printSync . }}
{{ end -}}
{{ range .Reduce -}}
{{ printReduce . }}
{{ end -}}
{{ range .GoTo -}}
{{ printGoTo . }}
{{ end }}
{{ range .Conflicts -}}
{{ printConflict . }}
{{ end -}}
{{ end }}`

func writeReport(w io.Writer, report *spec.Report) error {
	termName := func(sym int) string {
		if report.Terminals[sym].Alias != "" {
			return report.Terminals[sym].Alias
		}
		return report.Terminals[sym].Name
	}

	nonTermName := func(sym int) string {
		return report.NonTerminals[sym].Name
	}

	symbolName := func(e int) string {
		if e > 0 {
			return termName(e)
		}
		return nonTermName(e * -1)
	}

	precAndAssoc := func(prec int, assoc string) string {
		p := " -"
		if prec != 0 {
			p = fmt.Sprintf("%2v", prec)
		}
		if assoc == "" {
			assoc = "-"
		}
		return p + " " + assoc
	}

	resolvedBy := func(method int) string {
		switch method {
		case grammar.ResolvedByPrec.Int():
			return grammar.ResolvedByPrec.String()
		case grammar.ResolvedByAssoc.Int():
			return grammar.ResolvedByAssoc.String()
		case grammar.ResolvedByShift.Int():
			return grammar.ResolvedByShift.String()
		case grammar.ResolvedByProdOrder.Int():
			return grammar.ResolvedByProdOrder.String()
		}
		return "unknown"
	}

	fns := template.FuncMap{
		"printConflictSummary": func(report *spec.Report) string {
			count := report.ConflictCount()
			if count == 1 {
				return "1 conflict was detected."
			} else if count > 1 {
				return fmt.Sprintf("%v conflicts were detected.", count)
			}
			return "No conflict was detected."
		},
		"printTerminal": func(term *spec.Terminal) string {
			if term == nil {
				return ""
			}
			var b strings.Builder
			fmt.Fprintf(&b, "%4v %v %v", term.Number, precAndAssoc(term.Precedence, term.Associativity), term.Name)
			if term.Alias != "" && term.Alias != term.Name {
				fmt.Fprintf(&b, " (%v)", term.Alias)
			}
			if term.Skip {
				fmt.Fprintf(&b, " [skip]")
			}
			if term.Sync {
				fmt.Fprintf(&b, " [sync]")
			}
			return b.String()
		},
		"printProduction": func(prod *spec.Production) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
			if len(prod.RHS) > 0 {
				for _, e := range prod.RHS {
					fmt.Fprintf(&b, " %v", symbolName(e))
				}
			} else {
				fmt.Fprintf(&b, " ε")
			}
			if prod.Recover {
				fmt.Fprintf(&b, " [recover]")
			}

			return fmt.Sprintf("%4v %v %v", prod.Number, precAndAssoc(prod.Precedence, prod.Associativity), b.String())
		},
		"printItem": func(item *spec.Item) string {
			prod := report.Productions[item.Production]

			var b strings.Builder
			fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
			for i, e := range prod.RHS {
				if i == item.Dot {
					fmt.Fprintf(&b, " ・")
				}
				fmt.Fprintf(&b, " %v", symbolName(e))
			}
			if item.Dot >= len(prod.RHS) {
				fmt.Fprintf(&b, " ・")
			}

			return fmt.Sprintf("%4v %v", prod.Number, b.String())
		},
		"printShift": func(tran *spec.Transition) string {
			return fmt.Sprintf("shift  %4v on %v", tran.State, termName(tran.Symbol))
		},
		"printReduce": func(reduce *spec.Reduce) string {
			names := make([]string, len(reduce.LookAhead))
			for i, a := range reduce.LookAhead {
				names[i] = termName(a)
			}
			return fmt.Sprintf("reduce %4v on %v", reduce.Production, strings.Join(names, ", "))
		},
		"printGoTo": func(tran *spec.Transition) string {
			return fmt.Sprintf("goto   %4v on %v", tran.State, nonTermName(tran.Symbol))
		},
		"printSync": func(syms []int) string {
			names := make([]string, len(syms))
			for i, sym := range syms {
				names[i] = termName(sym)
			}
			return fmt.Sprintf("sync        on %v", strings.Join(names, ", "))
		},
		"printConflict": func(c *spec.Conflict) string {
			adopted := fmt.Sprintf("reduce %v", c.Adopted)
			if c.Adopted < 0 {
				adopted = fmt.Sprintf("shift %v", -c.Adopted)
			}
			var sides string
			if c.Kind == spec.ConflictShiftReduce {
				sides = fmt.Sprintf("shift %v, reduce %v", c.ShiftState, c.Productions[0])
			} else {
				sides = fmt.Sprintf("%v, %v", c.Productions[0], c.Productions[1])
			}
			return fmt.Sprintf("%v conflict (%v) on %v: %v adopted by %v", c.Kind, sides, termName(c.Symbol), adopted, resolvedBy(c.ResolvedBy))
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, report)
}
