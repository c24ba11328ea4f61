package tester

import (
	"fmt"

	"github.com/tern-lang/tern/driver/parser"
)

type TreeDiff struct {
	ExpectedPath string
	ActualPath   string
	Message      string
}

func newTreeDiff(expected, actual *Tree, message string) *TreeDiff {
	return &TreeDiff{
		ExpectedPath: expected.path(),
		ActualPath:   actual.path(),
		Message:      message,
	}
}

// Tree is the expected shape of a syntax tree. Kind `_` matches any kind, and an empty Text matches any
// text.
type Tree struct {
	Kind     string  `yaml:"kind"`
	Text     string  `yaml:"text"`
	Children []*Tree `yaml:"children"`

	parent *Tree
	offset int
}

func NewTree(kind string, children ...*Tree) *Tree {
	return &Tree{
		Kind:     kind,
		Children: children,
	}
}

func NewTerminalTree(kind string, text string) *Tree {
	return &Tree{
		Kind: kind,
		Text: text,
	}
}

// Fill links every node to its parent so that a diff can tell where it happened.
func (t *Tree) Fill() *Tree {
	for i, c := range t.Children {
		c.parent = t
		c.offset = i
		c.Fill()
	}
	return t
}

func (t *Tree) path() string {
	if t.parent == nil {
		return t.Kind
	}
	return fmt.Sprintf("%v.[%v]%v", t.parent.path(), t.offset, t.Kind)
}

func DiffTree(expected, actual *Tree) []*TreeDiff {
	if expected == nil && actual == nil {
		return nil
	}
	if expected.Kind != "_" && actual.Kind != expected.Kind {
		msg := fmt.Sprintf("unexpected kind: expected '%v' but got '%v'", expected.Kind, actual.Kind)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if expected.Text != "" && expected.Text != actual.Text {
		msg := fmt.Sprintf("unexpected text: expected '%v' but got '%v'", expected.Text, actual.Text)
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	if len(actual.Children) != len(expected.Children) {
		msg := fmt.Sprintf("unexpected node count: expected %v but got %v", len(expected.Children), len(actual.Children))
		return []*TreeDiff{
			newTreeDiff(expected, actual, msg),
		}
	}
	var diffs []*TreeDiff
	for i, exp := range expected.Children {
		if ds := DiffTree(exp, actual.Children[i]); len(ds) > 0 {
			diffs = append(diffs, ds...)
		}
	}
	return diffs
}

func genTree(n *parser.Node) *Tree {
	var children []*Tree
	if len(n.Children) > 0 {
		children = make([]*Tree, len(n.Children))
		for i, c := range n.Children {
			children[i] = genTree(c)
		}
	}
	return &Tree{
		Kind:     n.KindName,
		Text:     n.Text,
		Children: children,
	}
}
