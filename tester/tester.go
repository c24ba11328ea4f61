// Package tester runs analysis test cases written in YAML against a compiled grammar.
//
// A test case names a source and what the analysis of it must produce:
//
//	description: an assignment
//	source: |
//	  x = 1;
//	status: accepted
//	diagnostics: []
//	tree:
//	  kind: program
//	  children:
//	    - kind: _
//
// Fields left out are not checked.
package tester

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tern-lang/tern/diag"
	"github.com/tern-lang/tern/driver"
	"github.com/tern-lang/tern/driver/lexer"
	gspec "github.com/tern-lang/tern/spec/grammar"
	"gopkg.in/yaml.v3"
)

var errOutputMismatch = errors.New("output mismatch")

type TestCase struct {
	Description string `yaml:"description"`
	Source      string `yaml:"source"`

	// ContinueOnError defaults to true.
	ContinueOnError *bool `yaml:"continue_on_error"`

	Status      string   `yaml:"status"`
	Diagnostics []string `yaml:"diagnostics"`
	Tree        *Tree    `yaml:"tree"`
}

func ParseTestCase(r io.Reader) (*TestCase, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	c := &TestCase{}
	err = yaml.Unmarshal(src, c)
	if err != nil {
		return nil, err
	}
	if c.Tree != nil {
		c.Tree.Fill()
	}
	return c, nil
}

type TestResult struct {
	TestCasePath string
	Error        error
	Diffs        []*TreeDiff
}

func (r *TestResult) String() string {
	if r.Error != nil {
		const indent1 = "    "
		const indent2 = indent1 + indent1

		msgLines := strings.Split(r.Error.Error(), "\n")
		msg := fmt.Sprintf("Failed %v:\n%v%v", r.TestCasePath, indent1, strings.Join(msgLines, "\n"+indent1))
		if len(r.Diffs) == 0 {
			return msg
		}
		var diffLines []string
		for _, diff := range r.Diffs {
			diffLines = append(diffLines, diff.Message)
			diffLines = append(diffLines, fmt.Sprintf("%vexpected path: %v", indent1, diff.ExpectedPath))
			diffLines = append(diffLines, fmt.Sprintf("%vactual path:   %v", indent1, diff.ActualPath))
		}
		return fmt.Sprintf("%v\n%v%v", msg, indent2, strings.Join(diffLines, "\n"+indent2))
	}
	return fmt.Sprintf("Passed %v", r.TestCasePath)
}

type TestCaseWithMetadata struct {
	TestCase *TestCase
	FilePath string
	Error    error
}

// ListTestCases reads a test case file or every .yaml and .yml file under a directory.
func ListTestCases(testPath string) []*TestCaseWithMetadata {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		c, err := parseTestCase(testPath)
		return []*TestCaseWithMetadata{
			{
				TestCase: c,
				FilePath: testPath,
				Error:    err,
			},
		}
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		if !e.IsDir() && !isTestCaseFile(e.Name()) {
			continue
		}
		cs := ListTestCases(filepath.Join(testPath, e.Name()))
		cases = append(cases, cs...)
	}
	return cases
}

func isTestCaseFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func parseTestCase(testCasePath string) (*TestCase, error) {
	f, err := os.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTestCase(f)
}

type Tester struct {
	Grammar    *gspec.CompiledGrammar
	Evaluators map[string]lexer.ValueFunc
	Cases      []*TestCaseWithMetadata
}

func (t *Tester) Run(ctx context.Context) []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, t.runTest(ctx, c))
	}
	return rs
}

func (t *Tester) runTest(ctx context.Context, c *TestCaseWithMetadata) *TestResult {
	failed := func(err error) *TestResult {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}

	if c.Error != nil {
		return failed(c.Error)
	}
	tc := c.TestCase

	continueOnError := true
	if tc.ContinueOnError != nil {
		continueOnError = *tc.ContinueOnError
	}
	h := diag.NewHandler(diag.ContinueOnError(continueOnError))

	res, err := driver.Run(ctx, t.Grammar, bytes.NewReader([]byte(tc.Source)), h,
		driver.WithEvaluators(t.Evaluators),
		driver.WithTree(driver.TreeAST))
	if err != nil {
		return failed(err)
	}

	if tc.Status != "" && res.Status.String() != tc.Status {
		return failed(fmt.Errorf("unexpected status: expected '%v' but got '%v'\n%v", tc.Status, res.Status, res.Summary))
	}

	if tc.Diagnostics != nil {
		var actual []string
		for _, d := range res.Summary.Diagnostics {
			actual = append(actual, d.String())
		}
		if len(actual) != len(tc.Diagnostics) {
			return failed(fmt.Errorf("unexpected diagnostic count: expected %v but got %v\n%v", len(tc.Diagnostics), len(actual), res.Summary))
		}
		for i, d := range tc.Diagnostics {
			if actual[i] != d {
				return failed(fmt.Errorf("unexpected diagnostic: expected '%v' but got '%v'", d, actual[i]))
			}
		}
	}

	if tc.Tree == nil {
		return &TestResult{
			TestCasePath: c.FilePath,
		}
	}
	if res.Tree == nil {
		return failed(fmt.Errorf("syntax tree was not generated: %v", res.Status))
	}

	// When a tree exists, it is compared regardless of whether or not errors occurred.
	diffs := DiffTree(tc.Tree, genTree(res.Tree).Fill())
	if len(diffs) > 0 {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        errOutputMismatch,
			Diffs:        diffs,
		}
	}
	return &TestResult{
		TestCasePath: c.FilePath,
	}
}
