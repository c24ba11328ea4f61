// Package grammar defines the portable form of a compiled grammar: the lexical specification compiled by
// maleeni and the LR parsing tables the driver consults.
package grammar

import mlspec "github.com/nihei9/maleeni/spec"

type CompiledGrammar struct {
	Name      string         `json:"name"`
	Lexical   *LexicalSpec   `json:"lexical"`
	Syntactic *SyntacticSpec `json:"syntactic"`
	ASTAction *ASTAction     `json:"ast_action"`
}

type LexicalSpec struct {
	Maleeni *mlspec.CompiledLexSpec `json:"maleeni"`

	// KindToTerminal maps a lexical kind ID to a terminal number.
	KindToTerminal []int `json:"kind_to_terminal"`

	// TerminalToKind maps a terminal number to a lexical kind ID.
	TerminalToKind []int `json:"terminal_to_kind"`

	// Skip[kindID] is 1 when the scanner discards tokens of the kind (white spaces, comments).
	Skip []int `json:"skip"`

	// KindAliases holds a readable spelling of a terminal, such as `;` for `semicolon`, indexed by
	// terminal number. An empty string means the terminal has no alias.
	KindAliases []string `json:"kind_aliases"`
}

type SyntacticSpec struct {
	Class                   string   `json:"class"`
	Action                  []int    `json:"action"`
	GoTo                    []int    `json:"goto"`
	StateCount              int      `json:"state_count"`
	InitialState            int      `json:"initial_state"`
	StartProduction         int      `json:"start_production"`
	LHSSymbols              []int    `json:"lhs_symbols"`
	AlternativeSymbolCounts []int    `json:"alternative_symbol_counts"`
	Terminals               []string `json:"terminals"`
	TerminalCount           int      `json:"terminal_count"`
	NonTerminals            []string `json:"non_terminals"`
	NonTerminalCount        int      `json:"non_terminal_count"`
	EOFSymbol               int      `json:"eof_symbol"`
	ErrorSymbol             int      `json:"error_symbol"`
	ErrorTrapperStates      []int    `json:"error_trapper_states"`
	RecoverProductions      []int    `json:"recover_productions"`

	// SyncTerminals[terminal] is 1 when the terminal belongs to the synchronizing set used by
	// panic-mode recovery.
	SyncTerminals []int `json:"sync_terminals"`

	// CompressedAction and CompressedGoTo replace Action and GoTo when the grammar was compiled with
	// table compression.
	CompressedAction *CompressedTable `json:"compressed_action,omitempty"`
	CompressedGoTo   *CompressedTable `json:"compressed_goto,omitempty"`
}

// CompressedTable is a table whose identical rows are merged and whose distinct rows are overlaid by
// row displacement. Bounds[i] names the distinct row owning Entries[i]; a cell owned by another row
// holds EmptyValue.
type CompressedTable struct {
	RowCount        int   `json:"row_count"`
	ColCount        int   `json:"col_count"`
	EmptyValue      int   `json:"empty_value"`
	RowNums         []int `json:"row_nums"`
	Entries         []int `json:"entries"`
	Bounds          []int `json:"bounds"`
	RowDisplacement []int `json:"row_displacement"`
}

func (t *CompressedTable) Lookup(row, col int) int {
	if row < 0 || row >= t.RowCount || col < 0 || col >= t.ColCount {
		return t.EmptyValue
	}
	r := t.RowNums[row]
	d := t.RowDisplacement[r]
	if t.Bounds[d+col] != r {
		return t.EmptyValue
	}
	return t.Entries[d+col]
}

type ASTAction struct {
	Entries [][]int `json:"entries"`
}
