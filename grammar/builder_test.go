package grammar

import (
	"errors"
	"testing"

	verr "github.com/tern-lang/tern/error"
)

func TestBuilder_Build(t *testing.T) {
	tests := []struct {
		caption string
		builder func() *Builder
		causes  []error
	}{
		{
			caption: "a grammar needs a name",
			builder: func() *Builder {
				b := newExprBuilder()
				b.name = ""
				return b
			},
			causes: []error{semErrNoGrammarName},
		},
		{
			caption: "a grammar name must be snake case",
			builder: func() *Builder {
				b := newExprBuilder()
				b.name = "Expr"
				return b
			},
			causes: []error{semErrInvalidName},
		},
		{
			caption: "a terminal kind must be snake case",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Literal("Plus", "plus")
				return b
			},
			causes: []error{semErrInvalidName},
		},
		{
			caption: "a terminal kind cannot start with a digit",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Pattern("2x", "xx")
				return b
			},
			causes: []error{semErrInvalidName},
		},
		{
			caption: "a grammar needs at least one production",
			builder: func() *Builder {
				b := NewBuilder("test")
				b.Literal("a", "a")
				return b
			},
			causes: []error{semErrNoProduction},
		},
		{
			caption: "a terminal cannot be defined twice",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Literal("add", "plus")
				return b
			},
			causes: []error{semErrDuplicateTerminal},
		},
		{
			caption: "error is reserved",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Literal("error", "err")
				return b
			},
			causes: []error{semErrErrSymIsReserved},
		},
		{
			caption: "a non-terminal cannot have the same name as a terminal",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Production("id", "add")
				return b
			},
			causes: []error{semErrDuplicateName},
		},
		{
			caption: "undefined symbols are reported per production",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Production("factor", "foo")
				b.Production("factor", "bar")
				return b
			},
			causes: []error{semErrUndefinedSym, semErrUndefinedSym},
		},
		{
			caption: "a production cannot be defined twice",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Production("factor", "id")
				return b
			},
			causes: []error{semErrDuplicateProduction},
		},
		{
			caption: "a skip terminal cannot appear in productions",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Skip("ws", " +")
				b.Production("factor", "ws")
				return b
			},
			causes: []error{semErrTermCannotBeSkipped},
		},
		{
			caption: "unused terminals and productions are errors",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Literal("semi", ";")
				b.Production("stray", "id")
				return b
			},
			causes: []error{semErrUnusedProduction, semErrUnusedTerminal},
		},
		{
			caption: "an AST position must be within the RHS",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Production("factor", "l_paren", "add", "r_paren").AST(4)
				return b
			},
			causes: []error{semErrInvalidASTPosition},
		},
		{
			caption: "only non-terminals can be expanded",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Production("factor", "l_paren", "mul", "r_paren").AST(-2)
				return b
			},
			causes: []error{semErrExpansionOfTerminal},
		},
		{
			caption: "a terminal can belong to only one precedence level",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Left("add")
				b.Right("add")
				return b
			},
			causes: []error{semErrDuplicateAssoc},
		},
		{
			caption: "associativity applies to terminals only",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Left("term")
				return b
			},
			causes: []error{semErrInvalidAssoc},
		},
		{
			caption: "a precedence terminal must have precedence",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Production("factor", "add", "factor").Prec("mul")
				return b
			},
			causes: []error{semErrUndefinedPrec},
		},
		{
			caption: "a synchronizing symbol must be a terminal",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Sync("term", "add")
				return b
			},
			causes: []error{semErrInvalidSync},
		},
		{
			caption: "the start symbol must have productions",
			builder: func() *Builder {
				b := newExprBuilder()
				b.Start("program")
				return b
			},
			causes: []error{semErrNoStartSymbol},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := tt.builder().Build()
			if err == nil {
				t.Fatal("an error was expected")
			}
			var specErrs verr.SpecErrors
			if !errors.As(err, &specErrs) {
				t.Fatalf("unexpected error type: %T", err)
			}
			if len(specErrs) != len(tt.causes) {
				t.Fatalf("unexpected error count; want: %v, got: %v\n%v", len(tt.causes), len(specErrs), err)
			}
			for i, cause := range tt.causes {
				if !errors.Is(specErrs[i], cause) {
					t.Errorf("unexpected cause; want: %v, got: %v", cause, specErrs[i].Cause)
				}
			}
		})
	}
}

func TestBuilder_BuildReportsProductions(t *testing.T) {
	b := newExprBuilder()
	b.Production("factor", "l_paren", "foo", "r_paren")
	_, err := b.Build()
	var specErrs verr.SpecErrors
	if !errors.As(err, &specErrs) || len(specErrs) != 1 {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "test: error: undefined symbol: foo\n    factor → l_paren foo r_paren"
	if specErrs[0].Error() != want {
		t.Fatalf("unexpected message; want: %q, got: %q", want, specErrs[0].Error())
	}
}

func TestBuilder_PrecedenceOfProductions(t *testing.T) {
	b := newAmbiguousExprBuilder()
	b.Production("expr", "sub", "expr").Prec("neg")
	b.Literal("sub", "-")
	b.Literal("neg", "~")
	b.Production("expr", "neg")
	b.Left("add", "sub")
	b.Left("mul")
	b.Right("neg")
	gram := buildTestGrammar(t, b)

	tests := []struct {
		prod  string
		prec  int
		assoc assocType
	}{
		{prod: "expr → expr add expr", prec: 1, assoc: assocTypeLeft},
		{prod: "expr → expr mul expr", prec: 2, assoc: assocTypeLeft},
		{prod: "expr → sub expr", prec: 3, assoc: assocTypeRight},
		{prod: "expr → id", prec: precNil, assoc: assocTypeNil},
	}
	for _, tt := range tests {
		p := productionOf(t, gram, tt.prod)
		if prec := gram.precAndAssoc.productionPrecedence(p.num); prec != tt.prec {
			t.Errorf("unexpected precedence; production: %v, want: %v, got: %v", tt.prod, tt.prec, prec)
		}
		if assoc := gram.precAndAssoc.productionAssociativity(p.num); assoc != tt.assoc {
			t.Errorf("unexpected associativity; production: %v, want: %v, got: %v", tt.prod, tt.assoc, assoc)
		}
	}
}
