// Package symbol encodes grammar symbols and keeps the table mapping them to their names.
package symbol

import (
	"fmt"
	"sort"
)

// Num is a number of a symbol. Terminals and non-terminals are numbered independently, and the numbers
// are used as column indexes of the action and goto tables.
type Num uint16

func (n Num) Int() int {
	return int(n)
}

// Symbol packs a kind bit, a reserved bit, and a number into 16 bits.
//
//	1 bit: kind (0: non-terminal, 1: terminal)
//	1 bit: reserved (the augmented start symbol or the EOF symbol)
//	14 bits: number
type Symbol uint16

const (
	maskTerminal = uint16(0x8000)
	maskReserved = uint16(0x4000)
	maskNum      = uint16(0x3fff)

	// NumMax is the largest number a symbol can have.
	NumMax = Num(maskNum)

	Nil   = Symbol(0)
	Start = Symbol(maskReserved | 0x0001)
	EOF   = Symbol(maskTerminal | maskReserved | 0x0001)

	// Error is a reserved terminal. Productions containing it trap syntax errors.
	Error = Symbol(maskTerminal | 0x0002)

	NameEOF   = "<eof>"
	NameError = "error"

	// Number 0 means nil, and number 1 is used by the start symbol and the EOF symbol.
	nonTerminalNumMin = Num(2)
	terminalNumMin    = Num(3)
)

func newSymbol(terminal bool, num Num) (Symbol, error) {
	if num > NumMax {
		return Nil, fmt.Errorf("a symbol number exceeds the limit; limit: %v, passed: %v", NumMax, num)
	}
	if terminal {
		return Symbol(maskTerminal | uint16(num)), nil
	}
	return Symbol(uint16(num)), nil
}

func (s Symbol) String() string {
	switch {
	case s.IsNil():
		return "nil"
	case s == Start:
		return "s1"
	case s == EOF:
		return "e1"
	case s.IsTerminal():
		return fmt.Sprintf("t%v", s.Num())
	default:
		return fmt.Sprintf("n%v", s.Num())
	}
}

func (s Symbol) Num() Num {
	return Num(uint16(s) & maskNum)
}

func (s Symbol) IsNil() bool {
	return s.Num() == 0
}

func (s Symbol) IsStart() bool {
	return s == Start
}

func (s Symbol) IsEOF() bool {
	return s == EOF
}

func (s Symbol) IsTerminal() bool {
	return !s.IsNil() && uint16(s)&maskTerminal != 0
}

func (s Symbol) IsNonTerminal() bool {
	return !s.IsNil() && uint16(s)&maskTerminal == 0
}

// Table assigns symbols to names. Numbers are allocated in registration order, which fixes the column
// order of the parsing tables.
type Table struct {
	text2Sym     map[string]Symbol
	sym2Text     map[Symbol]string
	termTexts    []string
	nonTermTexts []string
	termNum      Num
	nonTermNum   Num
}

func NewTable() *Table {
	return &Table{
		text2Sym: map[string]Symbol{
			NameEOF:   EOF,
			NameError: Error,
		},
		sym2Text: map[Symbol]string{
			EOF:   NameEOF,
			Error: NameError,
		},
		termTexts: []string{
			"",        // Nil
			NameEOF,   // EOF
			NameError, // Error
		},
		nonTermTexts: []string{
			"", // Nil
			"", // Start
		},
		termNum:    terminalNumMin,
		nonTermNum: nonTerminalNumMin,
	}
}

// RegisterStart registers the augmented start symbol under the name `text`.
func (t *Table) RegisterStart(text string) (Symbol, error) {
	if sym, ok := t.text2Sym[text]; ok && sym != Start {
		return Nil, fmt.Errorf("symbol '%v' is already registered as %v", text, sym)
	}
	t.text2Sym[text] = Start
	t.sym2Text[Start] = text
	t.nonTermTexts[Start.Num()] = text
	return Start, nil
}

func (t *Table) RegisterNonTerminal(text string) (Symbol, error) {
	if sym, ok := t.text2Sym[text]; ok {
		if !sym.IsNonTerminal() {
			return Nil, fmt.Errorf("symbol '%v' is already registered as a terminal", text)
		}
		return sym, nil
	}
	sym, err := newSymbol(false, t.nonTermNum)
	if err != nil {
		return Nil, err
	}
	t.nonTermNum++
	t.text2Sym[text] = sym
	t.sym2Text[sym] = text
	t.nonTermTexts = append(t.nonTermTexts, text)
	return sym, nil
}

func (t *Table) RegisterTerminal(text string) (Symbol, error) {
	if sym, ok := t.text2Sym[text]; ok {
		if !sym.IsTerminal() {
			return Nil, fmt.Errorf("symbol '%v' is already registered as a non-terminal", text)
		}
		return sym, nil
	}
	sym, err := newSymbol(true, t.termNum)
	if err != nil {
		return Nil, err
	}
	t.termNum++
	t.text2Sym[text] = sym
	t.sym2Text[sym] = text
	t.termTexts = append(t.termTexts, text)
	return sym, nil
}

func (t *Table) ToSymbol(text string) (Symbol, bool) {
	sym, ok := t.text2Sym[text]
	return sym, ok
}

func (t *Table) ToText(sym Symbol) (string, bool) {
	text, ok := t.sym2Text[sym]
	return text, ok
}

// TerminalCount includes the nil, EOF and error columns.
func (t *Table) TerminalCount() int {
	return len(t.termTexts)
}

func (t *Table) NonTerminalCount() int {
	return len(t.nonTermTexts)
}

// TerminalTexts returns names indexed by terminal number.
func (t *Table) TerminalTexts() []string {
	return t.termTexts
}

// NonTerminalTexts returns names indexed by non-terminal number.
func (t *Table) NonTerminalTexts() []string {
	return t.nonTermTexts
}

func (t *Table) TerminalSymbols() []Symbol {
	return t.symbols(Symbol.IsTerminal)
}

func (t *Table) NonTerminalSymbols() []Symbol {
	return t.symbols(Symbol.IsNonTerminal)
}

func (t *Table) symbols(pred func(Symbol) bool) []Symbol {
	syms := []Symbol{}
	for sym := range t.sym2Text {
		if !pred(sym) {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Num() < syms[j].Num()
	})
	return syms
}
