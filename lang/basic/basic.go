// Package basic defines a small imperative language used to exercise the front end: assignments,
// print statements, if/while blocks and arithmetic, logical and comparison expressions.
package basic

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/tern-lang/tern/driver/lexer"
	"github.com/tern-lang/tern/grammar"
	spec "github.com/tern-lang/tern/spec/grammar"
)

const Name = "basic"

// Builder returns the definition of the language. Every call returns a new builder.
func Builder() *grammar.Builder {
	b := grammar.NewBuilder(Name)

	b.Production("program", "stmts")

	b.Production("stmts", "stmts", "stmt").AST(-1, 2)
	b.Production("stmts", "stmt")

	b.Production("stmt", "id", "assign", "expr", "semicolon").AST(1, 3)
	b.Production("stmt", "print", "l_paren", "expr", "r_paren", "semicolon").AST(3)
	b.Production("stmt", "if", "l_paren", "expr", "r_paren", "block").AST(3, 5)
	b.Production("stmt", "if", "l_paren", "expr", "r_paren", "block", "else", "block").AST(3, 5, 7)
	b.Production("stmt", "while", "l_paren", "expr", "r_paren", "block").AST(3, 5)
	b.Production("stmt", "error", "semicolon").Recover()

	b.Production("block", "l_brace", "stmts", "r_brace").AST(-2)
	b.Production("block", "l_brace", "r_brace").AST()

	for _, op := range []string{"or", "and", "eq", "ne", "lt", "le", "gt", "ge", "add", "sub", "mul", "div", "mod"} {
		b.Production("expr", "expr", op, "expr")
	}
	b.Production("expr", "not", "expr")
	b.Production("expr", "sub", "expr").Prec("not")
	b.Production("expr", "l_paren", "expr", "r_paren").AST(2)
	b.Production("expr", "id")
	b.Production("expr", "int")
	b.Production("expr", "float")
	b.Production("expr", "string")
	b.Production("expr", "true")
	b.Production("expr", "false")

	b.Left("or")
	b.Left("and")
	b.Left("eq", "ne")
	b.Left("lt", "le", "gt", "ge")
	b.Left("add", "sub")
	b.Left("mul", "div", "mod")
	b.Right("not")

	b.Sync("semicolon", "r_brace", "print", "if", "while")

	// Keywords come before `id` so that they win a match of the same length.
	b.Literal("print", "print")
	b.Literal("if", "if")
	b.Literal("else", "else")
	b.Literal("while", "while")
	b.Literal("true", "true")
	b.Literal("false", "false")

	b.Literal("or", "||")
	b.Literal("and", "&&")
	b.Literal("eq", "==")
	b.Literal("ne", "!=")
	b.Literal("le", "<=")
	b.Literal("ge", ">=")
	b.Literal("lt", "<")
	b.Literal("gt", ">")
	b.Literal("assign", "=")
	b.Literal("not", "!")
	b.Literal("add", "+")
	b.Literal("sub", "-")
	b.Literal("mul", "*")
	b.Literal("div", "/")
	b.Literal("mod", "%")
	b.Literal("l_paren", "(")
	b.Literal("r_paren", ")")
	b.Literal("l_brace", "{")
	b.Literal("r_brace", "}")
	b.Literal("semicolon", ";")

	b.Pattern("float", `\f{digits}\.\f{digits}`)
	b.Pattern("int", `\f{digits}`)
	b.Pattern("string", `"([^"\\\u{000A}]|\\.)*"`)
	b.Pattern("id", `[A-Za-z_][0-9A-Za-z_]*`)
	b.Fragment("digits", `[0-9]+`)

	b.Skip("ws", `[\u{0009}\u{000A}\u{000D}\u{0020}]+`)
	b.Skip("line_comment", `//[^\u{000A}]*`)
	b.Skip("block_comment", `/\*([^*]|\*+[^*/])*\*+/`)

	return b
}

var (
	compileOnce sync.Once
	compiled    *spec.CompiledGrammar
	compileErr  error
)

// Grammar returns the compiled grammar. It is compiled on the first call only.
func Grammar() (*spec.CompiledGrammar, error) {
	compileOnce.Do(func() {
		gram, err := Builder().Build()
		if err != nil {
			compileErr = err
			return
		}
		compiled, _, compileErr = grammar.Compile(gram, grammar.CompressTables())
	})
	return compiled, compileErr
}

// Evaluators returns the functions computing the values of literals.
func Evaluators() map[string]lexer.ValueFunc {
	return map[string]lexer.ValueFunc{
		"int":    evalInt,
		"float":  evalFloat,
		"string": evalString,
		"true":   evalBool,
		"false":  evalBool,
	}
}

func evalInt(lexeme string) (interface{}, error) {
	return strconv.ParseInt(lexeme, 10, 64)
}

func evalFloat(lexeme string) (interface{}, error) {
	return strconv.ParseFloat(lexeme, 64)
}

func evalString(lexeme string) (interface{}, error) {
	s, err := strconv.Unquote(lexeme)
	if err != nil {
		return nil, fmt.Errorf("invalid string literal %v: %w", lexeme, err)
	}
	return s, nil
}

func evalBool(lexeme string) (interface{}, error) {
	return strconv.ParseBool(lexeme)
}
