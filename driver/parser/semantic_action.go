package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// SemanticActionSet receives the steps the parser takes.
type SemanticActionSet interface {
	// Shift runs when the parser shifts `tok`. `recovered` is true when the shift ended the error state.
	Shift(tok VToken, recovered bool)

	// Reduce runs when the parser reduces by production `prodNum`. `recovered` is true when the
	// production is a recover production that ended the error state.
	Reduce(prodNum int, recovered bool)

	// Accept runs when the parser accepts the input.
	Accept()

	// TrapAndShiftError runs when the parser pops `popped` states to reach an error-trapper state and
	// shifts the error symbol there. `cause` is the token that caused the syntax error.
	TrapAndShiftError(cause VToken, popped int)

	// Synchronize runs when panic-mode recovery pops `popped` states and resumes at synchronizing
	// token `tok`. Tokens discarded before `tok` are not passed to the action set.
	Synchronize(tok VToken, popped int)

	// MissError runs when the parser gives up on the input. `cause` is the last token it read.
	MissError(cause VToken)
}

var _ SemanticActionSet = &SyntaxTreeActionSet{}

// SyntaxTreeNode is a node of a tree SyntaxTreeActionSet builds.
type SyntaxTreeNode interface {
	// ChildCount returns the number of children an AST action expanding the node splices in.
	ChildCount() int

	// ExpandChildren returns the children an AST action expanding the node splices in.
	ExpandChildren() []SyntaxTreeNode
}

var _ SyntaxTreeNode = &Node{}

// SyntaxTreeBuilder makes the nodes of a syntax tree.
type SyntaxTreeBuilder interface {
	Shift(kindName string, text string, row, col int) SyntaxTreeNode
	ShiftError(kindName string) SyntaxTreeNode
	Reduce(kindName string, children []SyntaxTreeNode) SyntaxTreeNode
	Accept(f SyntaxTreeNode)
}

var _ SyntaxTreeBuilder = &DefaultSyntaxTreeBuilder{}

// DefaultSyntaxTreeBuilder builds a tree of *Node.
type DefaultSyntaxTreeBuilder struct {
	tree *Node
}

func NewDefaultSyntaxTreeBuilder() *DefaultSyntaxTreeBuilder {
	return &DefaultSyntaxTreeBuilder{}
}

func (b *DefaultSyntaxTreeBuilder) Shift(kindName string, text string, row, col int) SyntaxTreeNode {
	return &Node{
		Type:     NodeTypeTerminal,
		KindName: kindName,
		Text:     text,
		Row:      row,
		Col:      col,
	}
}

func (b *DefaultSyntaxTreeBuilder) ShiftError(kindName string) SyntaxTreeNode {
	return &Node{
		Type:     NodeTypeError,
		KindName: kindName,
	}
}

func (b *DefaultSyntaxTreeBuilder) Reduce(kindName string, children []SyntaxTreeNode) SyntaxTreeNode {
	cNodes := make([]*Node, len(children))
	for i, c := range children {
		cNodes[i] = c.(*Node)
	}
	return &Node{
		Type:     NodeTypeNonTerminal,
		KindName: kindName,
		Children: cNodes,
	}
}

func (b *DefaultSyntaxTreeBuilder) Accept(f SyntaxTreeNode) {
	b.tree = f.(*Node)
}

// Tree returns the tree of the accepted input. It is nil when the parser did not accept the input.
func (b *DefaultSyntaxTreeBuilder) Tree() *Node {
	return b.tree
}

// SyntaxTreeActionSet builds an AST or a CST while the parser runs.
type SyntaxTreeActionSet struct {
	gram             Grammar
	builder          SyntaxTreeBuilder
	semStack         *semanticStack
	disableASTAction bool
}

// NewASTActionSet returns an action set building an AST. The AST actions of the productions decide
// which children a node keeps.
func NewASTActionSet(gram Grammar, builder SyntaxTreeBuilder) *SyntaxTreeActionSet {
	return &SyntaxTreeActionSet{
		gram:     gram,
		builder:  builder,
		semStack: newSemanticStack(),
	}
}

// NewCSTActionSet returns an action set building a CST. AST actions are ignored.
func NewCSTActionSet(gram Grammar, builder SyntaxTreeBuilder) *SyntaxTreeActionSet {
	return &SyntaxTreeActionSet{
		gram:             gram,
		builder:          builder,
		semStack:         newSemanticStack(),
		disableASTAction: true,
	}
}

func (a *SyntaxTreeActionSet) Shift(tok VToken, recovered bool) {
	term := a.gram.EOF()
	if !tok.EOF() {
		term = tok.TerminalID()
	}
	row, col := tok.Position()
	a.semStack.push(a.builder.Shift(a.gram.Terminal(term), string(tok.Lexeme()), row, col))
}

func (a *SyntaxTreeActionSet) Reduce(prodNum int, recovered bool) {
	lhs := a.gram.LHS(prodNum)

	// An empty alternative pops nothing and gets an empty handle.
	handle := a.semStack.pop(a.gram.AlternativeSymbolCount(prodNum))

	var children []SyntaxTreeNode
	if astAct := a.astAction(prodNum); astAct != nil {
		children = applyASTAction(astAct, handle)
	} else {
		children = make([]SyntaxTreeNode, len(handle))
		copy(children, handle)
	}

	a.semStack.push(a.builder.Reduce(a.gram.NonTerminal(lhs), children))
}

func (a *SyntaxTreeActionSet) astAction(prodNum int) []int {
	if a.disableASTAction {
		return nil
	}
	return a.gram.ASTAction(prodNum)
}

// applyASTAction picks children out of `handle`. A positive entry n keeps the n-th symbol, and a
// negative entry -n splices in the children of the n-th symbol.
func applyASTAction(act []int, handle []SyntaxTreeNode) []SyntaxTreeNode {
	l := 0
	for _, e := range act {
		if e > 0 {
			l++
		} else {
			l += handle[e*-1-1].ChildCount()
		}
	}

	children := make([]SyntaxTreeNode, 0, l)
	for _, e := range act {
		if e > 0 {
			children = append(children, handle[e-1])
		} else {
			children = append(children, handle[e*-1-1].ExpandChildren()...)
		}
	}
	return children
}

func (a *SyntaxTreeActionSet) Accept() {
	top := a.semStack.pop(1)
	a.builder.Accept(top[0])
}

func (a *SyntaxTreeActionSet) TrapAndShiftError(cause VToken, popped int) {
	a.semStack.pop(popped)
	a.semStack.push(a.builder.ShiftError(a.gram.Terminal(a.gram.Error())))
}

func (a *SyntaxTreeActionSet) Synchronize(tok VToken, popped int) {
	a.semStack.pop(popped)
}

func (a *SyntaxTreeActionSet) MissError(cause VToken) {
}

type semanticStack struct {
	frames []SyntaxTreeNode
}

func newSemanticStack() *semanticStack {
	return &semanticStack{
		frames: make([]SyntaxTreeNode, 0, 100),
	}
}

func (s *semanticStack) push(f SyntaxTreeNode) {
	s.frames = append(s.frames, f)
}

func (s *semanticStack) pop(n int) []SyntaxTreeNode {
	fs := s.frames[len(s.frames)-n:]
	s.frames = s.frames[:len(s.frames)-n]

	return fs
}

type NodeType int

const (
	NodeTypeError       = NodeType(0)
	NodeTypeTerminal    = NodeType(1)
	NodeTypeNonTerminal = NodeType(2)
)

type Node struct {
	Type     NodeType
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node
}

func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.Type {
	case NodeTypeError:
		return json.Marshal(struct {
			Type     NodeType `json:"type"`
			KindName string   `json:"kind_name"`
		}{
			Type:     n.Type,
			KindName: n.KindName,
		})
	case NodeTypeTerminal:
		return json.Marshal(struct {
			Type     NodeType `json:"type"`
			KindName string   `json:"kind_name"`
			Text     string   `json:"text"`
			Row      int      `json:"row"`
			Col      int      `json:"col"`
		}{
			Type:     n.Type,
			KindName: n.KindName,
			Text:     n.Text,
			Row:      n.Row,
			Col:      n.Col,
		})
	case NodeTypeNonTerminal:
		return json.Marshal(struct {
			Type     NodeType `json:"type"`
			KindName string   `json:"kind_name"`
			Children []*Node  `json:"children"`
		}{
			Type:     n.Type,
			KindName: n.KindName,
			Children: n.Children,
		})
	default:
		return nil, fmt.Errorf("invalid node type: %v", n.Type)
	}
}

func (n *Node) ChildCount() int {
	return len(n.Children)
}

func (n *Node) ExpandChildren() []SyntaxTreeNode {
	fs := make([]SyntaxTreeNode, len(n.Children))
	for i, c := range n.Children {
		fs[i] = c
	}
	return fs
}

// PrintTree writes the tree rooted at `node` with ruled lines.
func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	switch node.Type {
	case NodeTypeError:
		fmt.Fprintf(w, "%v!%v\n", ruledLine, node.KindName)
	case NodeTypeTerminal:
		fmt.Fprintf(w, "%v%v %v\n", ruledLine, node.KindName, strconv.Quote(node.Text))
	case NodeTypeNonTerminal:
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)

		num := len(node.Children)
		for i, child := range node.Children {
			line := "└─ "
			prefix := "   "
			if i < num-1 {
				line = "├─ "
				prefix = "│  "
			}

			printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
		}
	}
}
