package basic

import (
	"context"
	"strings"
	"testing"

	"github.com/tern-lang/tern/diag"
	"github.com/tern-lang/tern/driver"
	"github.com/tern-lang/tern/driver/parser"
	"github.com/tern-lang/tern/tester"
)

func TestGrammar(t *testing.T) {
	g1, err := Grammar()
	if err != nil {
		t.Fatal(err)
	}
	g2, err := Grammar()
	if err != nil {
		t.Fatal(err)
	}
	if g1 != g2 {
		t.Fatalf("the grammar must be compiled only once")
	}
	if g1.Name != Name {
		t.Fatalf("unexpected grammar name; want: %v, got: %v", Name, g1.Name)
	}
}

func run(t *testing.T, src string, opts ...driver.Option) (*driver.Result, *diag.Handler) {
	t.Helper()

	g, err := Grammar()
	if err != nil {
		t.Fatal(err)
	}
	h := diag.NewHandler(diag.ContinueOnError(true))
	opts = append(opts, driver.WithEvaluators(Evaluators()))
	res, err := driver.Run(context.Background(), g, strings.NewReader(src), h, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return res, h
}

func TestRun(t *testing.T) {
	tests := []struct {
		caption   string
		src       string
		status    parser.Status
		lexical   int
		syntactic int
	}{
		{
			caption: "a valid program",
			src: `
// Sum the numbers below ten.
sum = 0;
i = 0;
while (i < 10) {
    /* a block comment
       spanning lines */
    sum = sum + i;
    i = i + 1;
}
if (sum >= 45 && !false) {
    print("ok");
} else {
    print(-sum * 2.5 % 3);
}
`,
			status: parser.StatusAccepted,
		},
		{
			caption: "a keyword prefix is part of an identifier",
			src:     `iffy = whiled + print_count;`,
			status:  parser.StatusAccepted,
		},
		{
			caption:   "a statement with a syntax error is skipped up to its semicolon",
			src:       "x = 1 + ;\nprint(x);",
			status:    parser.StatusAcceptedWithErrors,
			syntactic: 1,
		},
		{
			caption:   "errors in several statements are all reported",
			src:       "x = ;\ny = (1;\nprint(y);\nz = 2 2;",
			status:    parser.StatusAcceptedWithErrors,
			syntactic: 3,
		},
		{
			caption:   "a statement with a syntax error inside a block is skipped",
			src:       "while (true) { x = * 2; y = 1; }",
			status:    parser.StatusAcceptedWithErrors,
			syntactic: 1,
		},
		{
			caption:   "a statement missing its semicolon at the end of a block is dropped",
			src:       "while (1) { print(2) }",
			status:    parser.StatusAcceptedWithErrors,
			syntactic: 1,
		},
		{
			caption:   "an incomplete expression at the end of a block is dropped",
			src:       "if (x) { y = 1 + }",
			status:    parser.StatusAcceptedWithErrors,
			syntactic: 1,
		},
		{
			caption:   "a block left open at the end of input is dropped",
			src:       "x = 1; while (x) { y = ;",
			status:    parser.StatusAcceptedWithErrors,
			syntactic: 1,
		},
		{
			caption:   "a block left open is abandoned when no statement precedes it",
			src:       "while (1) { x = 1;",
			status:    parser.StatusAbandoned,
			syntactic: 1,
		},
		{
			caption: "an illegal character between statements is a lexical error only",
			src:     "x = 1; @ y = 2;",
			status:  parser.StatusAcceptedWithErrors,
			lexical: 1,
		},
		{
			caption: "malformed literals are lexical warnings",
			src:     `x = 99999999999999999999; s = "a\q";`,
			status:  parser.StatusAcceptedWithErrors,
			lexical: 2,
		},
		{
			caption:   "an empty program has no statement",
			src:       ``,
			status:    parser.StatusAbandoned,
			syntactic: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			res, _ := run(t, tt.src)
			if res.Status != tt.status {
				t.Fatalf("unexpected status; want: %v, got: %v\n%v", tt.status, res.Status, res.Summary)
			}
			if res.Summary.Lexical != tt.lexical || res.Summary.Syntactic != tt.syntactic {
				t.Fatalf("unexpected diagnostics; want: %v lexical and %v syntactic, got:\n%v", tt.lexical, tt.syntactic, res.Summary)
			}
		})
	}
}

func TestRun_LexicalErrorsWithoutContinueOnError(t *testing.T) {
	g, err := Grammar()
	if err != nil {
		t.Fatal(err)
	}
	h := diag.NewHandler(diag.ContinueOnError(false))
	res, err := driver.Run(context.Background(), g, strings.NewReader("x = 1 @;\ny = 2;"), h)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != parser.StatusAcceptedWithErrors {
		t.Fatalf("unexpected status; want: %v, got: %v\n%v", parser.StatusAcceptedWithErrors, res.Status, res.Summary)
	}
	if res.Summary.Lexical != 1 || res.Summary.Syntactic != 0 {
		t.Fatalf("unexpected diagnostics; want: 1 lexical and 0 syntactic, got:\n%v", res.Summary)
	}
}

func TestRun_AST(t *testing.T) {
	res, _ := run(t, `x = 1; while (x) { }`, driver.WithTree(driver.TreeAST))
	if res.Status != parser.StatusAccepted {
		t.Fatalf("unexpected status: %v", res.Status)
	}

	var b strings.Builder
	parser.PrintTree(&b, res.Tree)
	expected := `program
└─ stmts
   ├─ stmt
   │  ├─ id "x"
   │  └─ expr
   │     └─ int "1"
   └─ stmt
      ├─ expr
      │  └─ id "x"
      └─ block
`
	if b.String() != expected {
		t.Fatalf("unexpected tree;\nwant:\n%v\ngot:\n%v", expected, b.String())
	}
}

func TestEvaluators(t *testing.T) {
	res, h := run(t, `x = 42; y = 1.5; s = "a\tb"; t = true;`)
	if h.Count() != 0 {
		t.Fatalf("unexpected diagnostics:\n%v", h.Summary())
	}

	values := map[string]interface{}{}
	for _, tok := range res.Tokens {
		if tok.Value != nil {
			values[tok.KindName] = tok.Value
		}
	}
	if values["int"] != int64(42) {
		t.Fatalf("unexpected int value: %#v", values["int"])
	}
	if values["float"] != 1.5 {
		t.Fatalf("unexpected float value: %#v", values["float"])
	}
	if values["string"] != "a\tb" {
		t.Fatalf("unexpected string value: %#v", values["string"])
	}
	if values["true"] != true {
		t.Fatalf("unexpected bool value: %#v", values["true"])
	}
}

func TestTestdata(t *testing.T) {
	g, err := Grammar()
	if err != nil {
		t.Fatal(err)
	}
	cs := tester.ListTestCases("testdata")
	if len(cs) == 0 {
		t.Fatalf("no test case was found")
	}
	tr := &tester.Tester{
		Grammar:    g,
		Evaluators: Evaluators(),
		Cases:      cs,
	}
	for _, r := range tr.Run(context.Background()) {
		if r.Error != nil {
			t.Error(r)
		}
	}
}
