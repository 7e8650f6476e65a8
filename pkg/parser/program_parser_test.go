package parser

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"bfi/interpreter-go/pkg/ast"
)

func mustParse(t testing.TB, source string) *ast.Program {
	t.Helper()
	prog, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", source, err)
	}
	return prog
}

func assertTreesEqual(t testing.TB, want, got *ast.Program) {
	t.Helper()
	ast.ClearSpans(want)
	ast.ClearSpans(got)
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("tree mismatch\nexpected: %s (%#v)\n   actual: %s (%#v)", want, want.Body, got, got.Body)
	}
}

func TestFilterKeepsOnlyCommands(t *testing.T) {
	if got, want := Filter("a+b-c[d]e<f>g.h,i\n"), "+-[]<>.,"; got != want {
		t.Fatalf("Filter = %q, want %q", got, want)
	}
}

func TestParseFoldsRuns(t *testing.T) {
	cases := []struct {
		source string
		want   *ast.Program
	}{
		{"", ast.Prog()},
		{">>><", ast.Prog(ast.Sh(2))},
		{"+-+++", ast.Prog(ast.Ar(3))},
		{"<<+>", ast.Prog(ast.Sh(-2), ast.Ar(1), ast.Sh(1))},
		{"><", ast.Prog(ast.Sh(0))},
		{".,", ast.Prog(ast.Out(), ast.In())},
		{"++++[>++++<-]>.", ast.Prog(
			ast.Ar(4),
			ast.Lp(ast.Sh(1), ast.Ar(4), ast.Sh(-1), ast.Ar(-1)),
			ast.Sh(1),
			ast.Out(),
		)},
		{"[[-]>]", ast.Prog(ast.Lp(ast.Lp(ast.Ar(-1)), ast.Sh(1)))},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.source, func(t *testing.T) {
			assertTreesEqual(t, tc.want, mustParse(t, tc.source))
		})
	}
}

func TestParseIgnoresComments(t *testing.T) {
	got := mustParse(t, "add four: ++ ++ \n loop [ > ++++ < - ] print it > .")
	want := mustParse(t, "++++[>++++<-]>.")
	assertTreesEqual(t, want, got)
}

// unitParse builds the unfolded tree: one node per character, with runs left
// as separate unit nodes.
func unitParse(source string) []ast.Node {
	var stack [][]ast.Node
	current := []ast.Node{}
	for _, ch := range Filter(source) {
		switch ch {
		case '>':
			current = append(current, ast.Sh(1))
		case '<':
			current = append(current, ast.Sh(-1))
		case '+':
			current = append(current, ast.Ar(1))
		case '-':
			current = append(current, ast.Ar(-1))
		case '.':
			current = append(current, ast.Out())
		case ',':
			current = append(current, ast.In())
		case '[':
			stack = append(stack, current)
			current = []ast.Node{}
		case ']':
			loop := ast.Lp(current...)
			current = append(stack[len(stack)-1], loop)
			stack = stack[:len(stack)-1]
		}
	}
	return current
}

// sumRuns merges adjacent unit shifts and unit ariths.
func sumRuns(nodes []ast.Node) []ast.Node {
	out := []ast.Node{}
	for _, node := range nodes {
		last := len(out) - 1
		switch n := node.(type) {
		case *ast.Shift:
			if last >= 0 {
				if prev, ok := out[last].(*ast.Shift); ok {
					out[last] = ast.Sh(prev.Delta + n.Delta)
					continue
				}
			}
			out = append(out, ast.Sh(n.Delta))
		case *ast.Arith:
			if last >= 0 {
				if prev, ok := out[last].(*ast.Arith); ok {
					out[last] = ast.Ar(prev.Amount + n.Amount)
					continue
				}
			}
			out = append(out, ast.Ar(n.Amount))
		case *ast.Loop:
			out = append(out, ast.Lp(sumRuns(n.Body)...))
		default:
			out = append(out, node)
		}
	}
	return out
}

func TestParseFoldingMatchesSummedUnitNodes(t *testing.T) {
	sources := []string{
		"+++---+",
		"><<>><<<",
		"+>-<+>-<",
		"++[->+<]>>--[<<+>>-]<<.",
		"-[--->+<]>-.[---->+++++<]>-.+.++++++++++.+[---->+<]>+++.",
		",[.,]",
		"[[[+>-<]]]",
	}
	for _, source := range sources {
		source := source
		t.Run(source, func(t *testing.T) {
			want := ast.Prog(sumRuns(unitParse(source))...)
			assertTreesEqual(t, want, mustParse(t, source))
		})
	}
}

func TestParseRejectsUnbalancedBrackets(t *testing.T) {
	cases := []struct {
		source string
		kind   ErrorKind
		line   int
		column int
	}{
		{"[", UnmatchedOpen, 1, 1},
		{"+]", UnmatchedClose, 1, 2},
		{"++[>[-]", UnmatchedOpen, 1, 3},
		{"comment\n  [[]", UnmatchedOpen, 2, 3},
		{"[]]", UnmatchedClose, 1, 3},
		{"][", UnmatchedClose, 1, 1},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(fmt.Sprintf("%q", tc.source), func(t *testing.T) {
			prog, err := Parse(tc.source)
			if err == nil {
				t.Fatalf("expected syntax error, got tree %s", prog)
			}
			if prog != nil {
				t.Fatalf("expected no tree alongside error, got %s", prog)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error %T is not *ParseError", err)
			}
			if parseErr.Kind != tc.kind {
				t.Fatalf("Kind = %v, want %v", parseErr.Kind, tc.kind)
			}
			if parseErr.Location.Line != tc.line || parseErr.Location.Column != tc.column {
				t.Fatalf("Location = %s, want %d:%d", parseErr.Location, tc.line, tc.column)
			}
			if got, want := IsIncomplete(err), tc.kind == UnmatchedOpen; got != want {
				t.Fatalf("IsIncomplete = %v, want %v", got, want)
			}
		})
	}
}

func TestParseRecordsSpans(t *testing.T) {
	prog := mustParse(t, "x ++\n[-]")
	if len(prog.Body) != 2 {
		t.Fatalf("body = %s", prog)
	}
	arith := prog.Body[0]
	if got, want := arith.Span(), (ast.Span{
		Start: ast.Position{Offset: 2, Line: 1, Column: 3},
		End:   ast.Position{Offset: 4, Line: 1, Column: 5},
	}); got != want {
		t.Fatalf("arith span = %+v, want %+v", got, want)
	}
	loop := prog.Body[1]
	if got, want := loop.Span(), (ast.Span{
		Start: ast.Position{Offset: 5, Line: 2, Column: 1},
		End:   ast.Position{Offset: 8, Line: 2, Column: 4},
	}); got != want {
		t.Fatalf("loop span = %+v, want %+v", got, want)
	}
	if got := prog.Span().End; got.Line != 2 || got.Column != 4 {
		t.Fatalf("program end = %+v, want 2:4", got)
	}
}

func TestDescribeParseError(t *testing.T) {
	_, err := Parse("+\n+]")
	if got, want := DescribeParseError("prog.b", err), "prog.b:2:2: unmatched ']'"; got != want {
		t.Fatalf("DescribeParseError = %q, want %q", got, want)
	}
	if got, want := DescribeParseError("", err), "<input>:2:2: unmatched ']'"; got != want {
		t.Fatalf("DescribeParseError = %q, want %q", got, want)
	}
	if got := DescribeParseError("x", errors.New("boom")); got != "x: boom" {
		t.Fatalf("DescribeParseError plain = %q", got)
	}
	if IsIncomplete(errors.New("boom")) {
		t.Fatalf("IsIncomplete should be false for foreign errors")
	}
}
