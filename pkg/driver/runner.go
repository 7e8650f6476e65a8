package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bfi/interpreter-go/pkg/interpreter"
	"bfi/interpreter-go/pkg/optimizer"
	"bfi/interpreter-go/pkg/parser"
	"bfi/interpreter-go/pkg/runtime"
)

// FailureKind classifies how a run ended.
type FailureKind string

const (
	FailureNone    FailureKind = ""
	FailureSyntax  FailureKind = "syntax"
	FailureAddress FailureKind = "address"
	FailureInput   FailureKind = "input"
	FailureOther   FailureKind = "other"
)

func (k FailureKind) String() string {
	if k == FailureNone {
		return "none"
	}
	return string(k)
}

// ParseFailureKind accepts the kinds a suite may expect.
func ParseFailureKind(value string) (FailureKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(FailureSyntax):
		return FailureSyntax, nil
	case string(FailureAddress):
		return FailureAddress, nil
	case string(FailureInput):
		return FailureInput, nil
	default:
		return FailureNone, fmt.Errorf("unknown error kind '%s' (expected syntax, address, or input)", value)
	}
}

// ClassifyError maps a compile or execution error to its FailureKind.
func ClassifyError(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return FailureSyntax
	}
	var fault *interpreter.AddressFault
	if errors.As(err, &fault) {
		return FailureAddress
	}
	var portErr *interpreter.PortError
	if errors.As(err, &portErr) && portErr.Op == "input" {
		return FailureInput
	}
	if errors.Is(err, runtime.ErrInputExhausted) {
		return FailureInput
	}
	return FailureOther
}

// SourceResolver locates the checkout of a declared suite source.
type SourceResolver interface {
	SourceDir(name string) (string, error)
}

// Outcome is the result of one case at one optimization level.
type Outcome struct {
	Level   optimizer.Level
	Output  []byte
	Failure FailureKind
	Err     error
}

// CaseResult collects a case's outcomes. Err is set when the case could not
// be run at all; Problems lists parity and expectation mismatches.
type CaseResult struct {
	Case     *Case
	Outcomes []Outcome
	Problems []string
	Err      error
}

func (r *CaseResult) Passed() bool {
	return r.Err == nil && len(r.Problems) == 0
}

// Runner executes suite cases at every configured level and checks that the
// levels agree with each other and with the expectation. With Parallelism
// above one, RunSuite spreads cases over that many goroutines.
type Runner struct {
	Levels      []optimizer.Level
	Sources     SourceResolver
	Parallelism int
}

func NewRunner(sources SourceResolver) *Runner {
	return &Runner{
		Levels:  []optimizer.Level{optimizer.LevelNone, optimizer.LevelFull},
		Sources: sources,
	}
}

// RunSuite runs every case and returns the results in case order.
func (r *Runner) RunSuite(ctx context.Context, suite *Suite) []*CaseResult {
	return r.RunCases(ctx, suite, suite.Cases)
}

// RunCases runs the given cases of suite, returning results in the same order.
func (r *Runner) RunCases(ctx context.Context, suite *Suite, cases []*Case) []*CaseResult {
	tasks := make([]caseTask, len(cases))
	for i, c := range cases {
		c := c
		tasks[i] = func(ctx context.Context) *CaseResult {
			return r.RunCase(ctx, suite, c)
		}
	}
	var exec caseExecutor = serialExecutor{}
	if r.Parallelism > 1 {
		exec = newPoolExecutor(r.Parallelism)
	}
	results := exec.Run(ctx, tasks)
	for i, result := range results {
		if result.Case == nil {
			result.Case = cases[i]
		}
	}
	return results
}

func (r *Runner) RunCase(ctx context.Context, suite *Suite, c *Case) *CaseResult {
	result := &CaseResult{Case: c}
	source, err := r.caseSource(suite, c)
	if err != nil {
		result.Err = err
		return result
	}
	for _, level := range r.Levels {
		result.Outcomes = append(result.Outcomes, runOnce(ctx, source, level, c))
	}
	if len(result.Outcomes) == 0 {
		result.Err = fmt.Errorf("no optimization levels configured")
		return result
	}

	first := result.Outcomes[0]
	for _, other := range result.Outcomes[1:] {
		if other.Failure != first.Failure {
			result.Problems = append(result.Problems, fmt.Sprintf("parity: level %s ended with %s error, level %s with %s error",
				first.Level, first.Failure, other.Level, other.Failure))
		}
		if !bytes.Equal(other.Output, first.Output) {
			result.Problems = append(result.Problems, fmt.Sprintf("parity: level %s wrote %q, level %s wrote %q",
				first.Level, first.Output, other.Level, other.Output))
		}
	}

	expect := c.Expect
	switch {
	case expect.Error != FailureNone && first.Failure != expect.Error:
		result.Problems = append(result.Problems, fmt.Sprintf("expected %s error, got %s", expect.Error, describeOutcome(first)))
	case expect.Error == FailureNone && first.Failure != FailureNone:
		result.Problems = append(result.Problems, fmt.Sprintf("unexpected error: %v", first.Err))
	}
	if expect.HasOutput && !bytes.Equal(first.Output, expect.Output) {
		result.Problems = append(result.Problems, fmt.Sprintf("output = %q, want %q", first.Output, expect.Output))
	}
	return result
}

func describeOutcome(o Outcome) string {
	if o.Failure == FailureNone {
		return "a clean run"
	}
	return fmt.Sprintf("%s error (%v)", o.Failure, o.Err)
}

func runOnce(ctx context.Context, source string, level optimizer.Level, c *Case) Outcome {
	outcome := Outcome{Level: level}
	prog, err := Compile(source, level)
	if err != nil {
		outcome.Failure = ClassifyError(err)
		outcome.Err = err
		return outcome
	}
	var out bytes.Buffer
	in := runtime.NewReaderPort(strings.NewReader(c.Input), c.EOF)
	err = interpreter.New().ExecuteContext(ctx, prog.IR, in, runtime.NewWriterPort(&out))
	outcome.Output = out.Bytes()
	outcome.Failure = ClassifyError(err)
	outcome.Err = err
	return outcome
}

func (r *Runner) caseSource(suite *Suite, c *Case) (string, error) {
	if c.Inline() {
		return c.Source, nil
	}
	name, rel := SplitFileRef(c.File)
	base := suite.Dir()
	if name != "" {
		if r.Sources == nil {
			return "", fmt.Errorf("source %q is not installed (run bfi deps install)", name)
		}
		dir, err := r.Sources.SourceDir(name)
		if err != nil {
			return "", err
		}
		base = dir
	}
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, filepath.FromSlash(rel))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", c.File, err)
	}
	return string(data), nil
}
