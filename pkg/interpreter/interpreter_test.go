package interpreter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bfi/interpreter-go/pkg/ir"
	"bfi/interpreter-go/pkg/optimizer"
	"bfi/interpreter-go/pkg/parser"
	"bfi/interpreter-go/pkg/runtime"
)

func compile(t testing.TB, source string, level optimizer.Level) *ir.Program {
	t.Helper()
	tree, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	prog, err := optimizer.OptimizeLevel(ir.Lower(tree), level)
	if err != nil {
		t.Fatalf("OptimizeLevel(%q): %v", source, err)
	}
	return prog
}

func runProgram(t testing.TB, prog *ir.Program, input string, policy runtime.EOFPolicy) ([]byte, *Interpreter, error) {
	t.Helper()
	var out bytes.Buffer
	interp := New()
	err := interp.Execute(prog, runtime.NewReaderPort(strings.NewReader(input), policy), runtime.NewWriterPort(&out))
	return out.Bytes(), interp, err
}

func mustRun(t testing.TB, source, input string, level optimizer.Level) []byte {
	t.Helper()
	out, _, err := runProgram(t, compile(t, source, level), input, runtime.EOFZero)
	if err != nil {
		t.Fatalf("run %q (%s): %v", source, level, err)
	}
	return out
}

var levels = []optimizer.Level{optimizer.LevelNone, optimizer.LevelFull}

func TestExecuteScenarios(t *testing.T) {
	cases := []struct {
		name   string
		source string
		input  string
		want   []byte
	}{
		{"multiply", "++++[>++++<-]>.", "", []byte{16}},
		{"pass-through", ",.", "A", []byte{65}},
		{"wraparound", "+++++[>++++++++<-]>+++++++.---.", "", []byte{47, 44}},
		{"underflow", "-.", "", []byte{255}},
		{"overflow", strings.Repeat("+", 256) + ".", "", []byte{0}},
		{"clear", "+++[-].", "", []byte{0}},
		{"empty", "", "", nil},
	}
	for _, tc := range cases {
		for _, level := range levels {
			tc, level := tc, level
			t.Run(tc.name+"/"+string(level), func(t *testing.T) {
				got := mustRun(t, tc.source, tc.input, level)
				if !bytes.Equal(got, tc.want) {
					t.Fatalf("output = %v, want %v", got, tc.want)
				}
			})
		}
	}
}

func TestUnbalancedSourceNeverExecutes(t *testing.T) {
	tree, err := parser.Parse("[")
	if err == nil {
		t.Fatalf("expected syntax error, got %s", tree)
	}
	var parseErr *parser.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %T, want *parser.ParseError", err)
	}
}

func TestAddMultReadsSourceBeforeWritingDestination(t *testing.T) {
	prog := &ir.Program{Body: []ir.Instruction{
		ir.AddConst{Offset: 0, Amount: 2},
		ir.AddMult{Offset: 0, Source: 0, Factor: 3},
		ir.Output{Offset: 0},
		ir.AddConst{Offset: 1, Amount: 100},
		ir.AddMult{Offset: 1, Source: 1, Factor: 2},
		ir.Output{Offset: 1},
	}}
	out, _, err := runProgram(t, prog, "", runtime.EOFZero)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// 2 + 2*3 = 8; 100 + 100*2 = 300 mod 256 = 44.
	if want := []byte{8, 44}; !bytes.Equal(out, want) {
		t.Fatalf("output = %v, want %v", out, want)
	}
}

func TestAddMultWithZeroSourceLeavesDestinationUntouched(t *testing.T) {
	prog := &ir.Program{Body: []ir.Instruction{
		ir.AddMult{Offset: -1, Source: 0, Factor: 1},
		ir.AddMult{Offset: 5, Source: 0, Factor: 3},
		ir.Zero{Offset: 0},
		ir.AddConst{Offset: 0, Amount: 1},
		ir.Output{Offset: 0},
	}}
	out, interp, err := runProgram(t, prog, "", runtime.EOFZero)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !bytes.Equal(out, []byte{1}) {
		t.Fatalf("output = %v, want [1]", out)
	}
	if got := interp.Tape().Len(); got != 1 {
		t.Fatalf("tape length = %d, want 1", got)
	}
}

func TestTapeGrowsToHighestTouchedAddress(t *testing.T) {
	cases := []struct {
		source string
		length int
	}{
		{"", 1},
		{"+", 1},
		{">>>>>+", 6},
		{">>>>+<<<<", 5},
		{"++[>>>+<<<-]", 4},
		{">>>>>>>>>>[-]<<<<<.", 11},
	}
	for _, tc := range cases {
		for _, level := range levels {
			_, interp, err := runProgram(t, compile(t, tc.source, level), "", runtime.EOFZero)
			if err != nil {
				t.Fatalf("%q (%s): %v", tc.source, level, err)
			}
			if got := interp.Tape().Len(); got != tc.length {
				t.Fatalf("%q (%s): tape length = %d, want %d", tc.source, level, got, tc.length)
			}
		}
	}
}

func TestAddressFaultAbortsRun(t *testing.T) {
	for _, level := range levels {
		out, interp, err := runProgram(t, compile(t, "+.>+<<+.", level), "", runtime.EOFZero)
		var fault *AddressFault
		if !errors.As(err, &fault) {
			t.Fatalf("%s: error = %v, want *AddressFault", level, err)
		}
		if fault.Resolved != -1 {
			t.Fatalf("%s: Resolved = %d, want -1", level, fault.Resolved)
		}
		// Output written before the fault is still flushed.
		if !bytes.Equal(out, []byte{1}) {
			t.Fatalf("%s: output = %v, want [1]", level, out)
		}
		if got := interp.Tape().Bytes(); !bytes.Equal(got, []byte{1, 1}) {
			t.Fatalf("%s: tape = %v, want [1 1]", level, got)
		}
	}
}

func TestAddressFaultOnShiftLeftOfOrigin(t *testing.T) {
	_, _, err := runProgram(t, compile(t, "<", optimizer.LevelNone), "", runtime.EOFZero)
	var fault *AddressFault
	if !errors.As(err, &fault) {
		t.Fatalf("error = %v, want *AddressFault", err)
	}
	if fault.Op != ir.KindShift || fault.Pointer != 0 || fault.Offset != -1 {
		t.Fatalf("fault = %+v", fault)
	}
}

func TestInputExhaustionPropagatesAsPortError(t *testing.T) {
	_, _, err := runProgram(t, compile(t, ",.,.", optimizer.LevelFull), "x", runtime.EOFError)
	var port *PortError
	if !errors.As(err, &port) {
		t.Fatalf("error = %v, want *PortError", err)
	}
	if port.Op != "input" || !errors.Is(err, runtime.ErrInputExhausted) {
		t.Fatalf("port error = %+v", port)
	}
}

// observingReader records how much output had reached sink when the
// program first asked for input.
type observingReader struct {
	sink    *bytes.Buffer
	visible int
	reads   int
	data    []byte
}

func (r *observingReader) Read(p []byte) (int, error) {
	if r.reads == 0 {
		r.visible = r.sink.Len()
	}
	r.reads++
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestOutputIsFlushedBeforeInputIsRead(t *testing.T) {
	for _, level := range levels {
		var sink bytes.Buffer
		reader := &observingReader{sink: &sink, data: []byte("z")}
		prog := compile(t, "++++++++[>++++++++<-]>+.,.", level)
		err := Execute(prog, runtime.NewReaderPort(reader, runtime.EOFZero), runtime.NewWriterPort(&sink))
		if err != nil {
			t.Fatalf("%s: Execute: %v", level, err)
		}
		if reader.visible != 1 {
			t.Fatalf("%s: %d bytes visible at first read, want 1", level, reader.visible)
		}
		if got := sink.String(); got != "Az" {
			t.Fatalf("%s: output = %q, want %q", level, got, "Az")
		}
	}
}

func TestEOFPoliciesReachTheTape(t *testing.T) {
	prog := compile(t, "+,.", optimizer.LevelFull)
	for policy, want := range map[runtime.EOFPolicy]byte{runtime.EOFZero: 0, runtime.EOFMax: 255} {
		out, _, err := runProgram(t, prog, "", policy)
		if err != nil {
			t.Fatalf("%s: %v", policy, err)
		}
		if !bytes.Equal(out, []byte{want}) {
			t.Fatalf("%s: output = %v, want [%d]", policy, out, want)
		}
	}
}

type brokenWriter struct{}

func (brokenWriter) WriteByte(byte) error { return errors.New("pipe closed") }

func TestOutputFailureAbortsRun(t *testing.T) {
	prog := compile(t, "+.+.", optimizer.LevelFull)
	err := Execute(prog, runtime.NewReaderPort(nil, runtime.EOFZero), brokenWriter{})
	var port *PortError
	if !errors.As(err, &port) || port.Op != "output" {
		t.Fatalf("error = %v, want output *PortError", err)
	}
}

func TestMissingPortsAreReported(t *testing.T) {
	if err := Execute(compile(t, ",", optimizer.LevelNone), nil, nil); err == nil {
		t.Fatalf("expected error for missing input port")
	}
	if err := Execute(compile(t, ".", optimizer.LevelNone), nil, nil); err == nil {
		t.Fatalf("expected error for missing output port")
	}
	if err := Execute(nil, nil, nil); err == nil {
		t.Fatalf("expected error for nil program")
	}
}

func TestExecuteContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := New().ExecuteContext(ctx, compile(t, "+[]", optimizer.LevelFull), nil, runtime.NewWriterPort(&out))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestEachRunStartsWithFreshTape(t *testing.T) {
	interp := New()
	prog := compile(t, ">+++.", optimizer.LevelFull)
	for i := 0; i < 2; i++ {
		var out bytes.Buffer
		if err := interp.Execute(prog, nil, &out); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if !bytes.Equal(out.Bytes(), []byte{3}) {
			t.Fatalf("run %d output = %v, want [3]", i, out.Bytes())
		}
	}
	if interp.Pointer() != 1 {
		t.Fatalf("Pointer = %d, want 1", interp.Pointer())
	}
}

func TestSamplePrograms(t *testing.T) {
	root := filepath.Join("..", "..", "testdata", "programs")
	cases := []struct {
		file  string
		input string
		want  string
	}{
		{"hello.b", "", "Hello World!\n"},
		{"echo.b", "echo me", "echo me"},
		{"multiply.b", "", "\x10"},
		{"wrap.b", "", "/,\xff"},
		{"nested.b", "", "AAA"},
		{"reverse.b", "abc", "cba"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.file, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join(root, tc.file))
			if err != nil {
				t.Fatalf("read %s: %v", tc.file, err)
			}
			for _, level := range levels {
				got := mustRun(t, string(data), tc.input, level)
				if string(got) != tc.want {
					t.Fatalf("%s output = %q, want %q", level, got, tc.want)
				}
			}
		})
	}
}

// randomProgram builds a terminating program: straight-line arithmetic and
// movement that never goes left of cell 0, clear loops, and multiply loops
// whose targets lie to the right of their counter.
func randomProgram(rng *rand.Rand) string {
	var b strings.Builder
	pos := 0
	for i := 0; i < 40; i++ {
		switch rng.Intn(8) {
		case 0, 1:
			b.WriteString(strings.Repeat("+", 1+rng.Intn(9)))
		case 2:
			b.WriteString(strings.Repeat("-", 1+rng.Intn(9)))
		case 3:
			n := 1 + rng.Intn(3)
			b.WriteString(strings.Repeat(">", n))
			pos += n
		case 4:
			n := rng.Intn(pos + 1)
			b.WriteString(strings.Repeat("<", n))
			pos -= n
		case 5:
			b.WriteByte('.')
		case 6:
			b.WriteString("[-]")
		case 7:
			b.WriteString(randomMultiplyLoop(rng))
		}
	}
	b.WriteByte('.')
	return b.String()
}

func randomMultiplyLoop(rng *rand.Rand) string {
	var b strings.Builder
	b.WriteByte('[')
	decremented := false
	for j := 0; j < 1+rng.Intn(3); j++ {
		if !decremented && rng.Intn(2) == 0 {
			b.WriteByte('-')
			decremented = true
		}
		dist := 1 + rng.Intn(3)
		b.WriteString(strings.Repeat(">", dist))
		if rng.Intn(2) == 0 {
			b.WriteString(strings.Repeat("+", 1+rng.Intn(4)))
		} else {
			b.WriteString(strings.Repeat("-", 1+rng.Intn(4)))
		}
		b.WriteString(strings.Repeat("<", dist))
	}
	if !decremented {
		b.WriteByte('-')
	}
	b.WriteByte(']')
	return b.String()
}

func TestOptimizedAndUnoptimizedOutputsAgree(t *testing.T) {
	// Multiply loops targeting cells left of the counter: skipped when the
	// counter is zero, faulting at both levels when it is not.
	for _, source := range []string{
		"[<+>-]+.",
		">[<<+>>-]+.",
		"++>[<<<+>>>-]<.",
		"+.[<+>-]",
		">+.<[<<++>>-]>[<+<-->>-]<.",
	} {
		var results [2]string
		for idx, level := range levels {
			out, _, err := runProgram(t, compile(t, source, level), "", runtime.EOFZero)
			var fault *AddressFault
			results[idx] = fmt.Sprintf("out=%v fault=%v", out, errors.As(err, &fault))
			if err != nil && fault == nil {
				t.Fatalf("%q (%s): unexpected error %v", source, level, err)
			}
		}
		if results[0] != results[1] {
			t.Fatalf("%q diverged\nplain:     %s\noptimized: %s", source, results[0], results[1])
		}
	}
	if got := mustRun(t, "[<+>-]+.", "", optimizer.LevelFull); !bytes.Equal(got, []byte{1}) {
		t.Fatalf("[<+>-]+. output = %v, want [1]", got)
	}

	rng := rand.New(rand.NewSource(20261017))
	for n := 0; n < 200; n++ {
		source := randomProgram(rng)
		plain := mustRun(t, source, "", optimizer.LevelNone)
		optimized := mustRun(t, source, "", optimizer.LevelFull)
		if !bytes.Equal(plain, optimized) {
			t.Fatalf("program %d diverged\nsource: %s\nplain:     %v\noptimized: %v", n, source, plain, optimized)
		}
	}
}
