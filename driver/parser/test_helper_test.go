package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tern-lang/tern/diag"
	"github.com/tern-lang/tern/driver/lexer"
	"github.com/tern-lang/tern/grammar"
	spec "github.com/tern-lang/tern/spec/grammar"
)

func compileTestGrammar(t *testing.T, b *grammar.Builder) *spec.CompiledGrammar {
	t.Helper()

	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	cg, _, err := grammar.Compile(gram)
	if err != nil {
		t.Fatal(err)
	}
	return cg
}

func newTestParser(t *testing.T, cg *spec.CompiledGrammar, src string, h *diag.Handler, opts ...ParserOption) *Parser {
	t.Helper()

	s, err := lexer.NewScanner(cg, strings.NewReader(src), h)
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewParser(NewTokenStream(s), NewGrammar(cg), h, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func withWhiteSpaces(b *grammar.Builder) *grammar.Builder {
	b.Skip("ws", "[\\u{0009}\\u{000A}\\u{0020}]+")
	return b
}

func termNode(kind string, text string) *Node {
	return &Node{
		Type:     NodeTypeTerminal,
		KindName: kind,
		Text:     text,
	}
}

func errorNode() *Node {
	return &Node{
		Type:     NodeTypeError,
		KindName: "error",
	}
}

func nonTermNode(kind string, children ...*Node) *Node {
	return &Node{
		Type:     NodeTypeNonTerminal,
		KindName: kind,
		Children: children,
	}
}

func testTree(t *testing.T, node, expected *Node) {
	t.Helper()

	if node.Type != expected.Type || node.KindName != expected.KindName || node.Text != expected.Text {
		t.Fatalf("unexpected node; want: %+v, got: %+v", expected, node)
	}
	if len(node.Children) != len(expected.Children) {
		t.Fatalf("unexpected children; want: %v, got: %v", len(expected.Children), len(node.Children))
	}
	for i, c := range node.Children {
		testTree(t, c, expected.Children[i])
	}
}

type testSemAct struct {
	gram   *spec.CompiledGrammar
	actLog []string
}

func (a *testSemAct) Shift(tok VToken, recovered bool) {
	t := a.gram.Syntactic.Terminals[tok.TerminalID()]
	if recovered {
		a.actLog = append(a.actLog, fmt.Sprintf("shift/%v/recovered", t))
	} else {
		a.actLog = append(a.actLog, fmt.Sprintf("shift/%v", t))
	}
}

func (a *testSemAct) Reduce(prodNum int, recovered bool) {
	lhsSym := a.gram.Syntactic.LHSSymbols[prodNum]
	lhsText := a.gram.Syntactic.NonTerminals[lhsSym]
	if recovered {
		a.actLog = append(a.actLog, fmt.Sprintf("reduce/%v/recovered", lhsText))
	} else {
		a.actLog = append(a.actLog, fmt.Sprintf("reduce/%v", lhsText))
	}
}

func (a *testSemAct) Accept() {
	a.actLog = append(a.actLog, "accept")
}

func (a *testSemAct) TrapAndShiftError(cause VToken, popped int) {
	a.actLog = append(a.actLog, fmt.Sprintf("trap/%v/shift/error", popped))
}

func (a *testSemAct) Synchronize(tok VToken, popped int) {
	a.actLog = append(a.actLog, fmt.Sprintf("sync/%v/%v", a.gram.Syntactic.Terminals[tok.TerminalID()], popped))
}

func (a *testSemAct) MissError(cause VToken) {
	a.actLog = append(a.actLog, "miss")
}

func testActionLog(t *testing.T, actual, expected []string) {
	t.Helper()

	if len(actual) != len(expected) {
		t.Fatalf("unexpected action log; want: %+v, got: %+v", expected, actual)
	}
	for i, e := range expected {
		if actual[i] != e {
			t.Fatalf("unexpected action log; want: %+v, got: %+v", expected, actual)
		}
	}
}
