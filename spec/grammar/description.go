package grammar

// Report describes a compiled grammar for debugging it: the symbols, the productions, and every state of the
// automaton together with the conflicts found in it. Terminals, NonTerminals and Productions are indexed by
// their numbers, so the entries at index 0 are nil.
type Report struct {
	Name         string         `json:"name"`
	Class        string         `json:"class"`
	Terminals    []*Terminal    `json:"terminals"`
	NonTerminals []*NonTerminal `json:"non_terminals"`
	Productions  []*Production  `json:"productions"`
	States       []*State       `json:"states"`
}

func (r *Report) ConflictCount() int {
	n := 0
	for _, s := range r.States {
		n += len(s.Conflicts)
	}
	return n
}

type Terminal struct {
	Number        int    `json:"number"`
	Name          string `json:"name"`
	Alias         string `json:"alias,omitempty"`
	Pattern       string `json:"pattern,omitempty"`
	Skip          bool   `json:"skip,omitempty"`
	Sync          bool   `json:"sync,omitempty"`
	Precedence    int    `json:"prec,omitempty"`
	Associativity string `json:"assoc,omitempty"`
}

type NonTerminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// Production spells its RHS with terminal numbers as they are and non-terminal numbers negated.
type Production struct {
	Number        int    `json:"number"`
	LHS           int    `json:"lhs"`
	RHS           []int  `json:"rhs"`
	Recover       bool   `json:"recover,omitempty"`
	Precedence    int    `json:"prec,omitempty"`
	Associativity string `json:"assoc,omitempty"`
}

type Item struct {
	Production int `json:"production"`
	Dot        int `json:"dot"`
}

type Transition struct {
	Symbol int `json:"symbol"`
	State  int `json:"state"`
}

type Reduce struct {
	Production int   `json:"production"`
	LookAhead  []int `json:"look_ahead"`
}

type ConflictKind string

const (
	ConflictShiftReduce  = ConflictKind("shift/reduce")
	ConflictReduceReduce = ConflictKind("reduce/reduce")
)

// Conflict is an action table entry two actions competed for. Adopted is the action left in the table,
// encoded the same way as the table: a negative state number for a shift and a production number for a
// reduce.
type Conflict struct {
	Kind   ConflictKind `json:"kind"`
	Symbol int          `json:"symbol"`

	// ShiftState is the target of the shift side of a shift/reduce conflict.
	ShiftState int `json:"shift_state,omitempty"`

	// Productions has one production for a shift/reduce conflict and two for a reduce/reduce conflict.
	Productions []int `json:"productions"`

	Adopted    int `json:"adopted"`
	ResolvedBy int `json:"resolved_by"`
}

type State struct {
	Number int           `json:"number"`
	Kernel []*Item       `json:"kernel"`
	Shift  []*Transition `json:"shift"`
	Reduce []*Reduce     `json:"reduce"`
	GoTo   []*Transition `json:"goto"`

	// ErrorTrapper is true when the state can shift the error symbol.
	ErrorTrapper bool `json:"error_trapper,omitempty"`

	// Recover is true when the state reduces a production that ends the error state.
	Recover bool `json:"recover,omitempty"`

	// Sync lists the synchronizing terminals the state shifts.
	Sync []int `json:"sync,omitempty"`

	Conflicts []*Conflict `json:"conflicts"`
}
