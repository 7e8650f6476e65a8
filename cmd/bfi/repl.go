package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"

	"bfi/interpreter-go/pkg/driver"
	"bfi/interpreter-go/pkg/interpreter"
	"bfi/interpreter-go/pkg/parser"
	"bfi/interpreter-go/pkg/runtime"
)

const (
	promptMain = "bfi> "
	promptCont = "...> "
)

func runRepl(args []string, cfg cliConfig) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "bfi repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if cfg.HistoryPath != "" {
		if f, err := os.Open(cfg.HistoryPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(cfg.HistoryPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Fprintf(os.Stdout, "%s (opt=%s, eof=%s). Type :help for commands.\n", cliToolVersion, cfg.Level, cfg.EOF)
	session := newReplSession(cfg)
	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(os.Stdout)
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if strings.HasPrefix(trimmed, ":") {
			if session.command(trimmed, os.Stdout) {
				return 0
			}
			continue
		}
		session.eval(code, os.Stdout, os.Stderr)
	}
}

// readByParseProbe reads lines until they form a complete program, so a loop
// left open continues on the next line.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, perr := parser.Parse(src); perr != nil && parser.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}

// replSession holds the settings that persist between entries. Every entry
// runs on a fresh tape.
type replSession struct {
	cfg    cliConfig
	input  string
	showIR bool
}

func newReplSession(cfg cliConfig) *replSession {
	return &replSession{cfg: cfg}
}

// command handles a ":" line and reports whether the session should end.
func (s *replSession) command(line string, w io.Writer) bool {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch strings.ToLower(name) {
	case ":quit", ":q", ":exit":
		return true
	case ":ir":
		s.showIR = !s.showIR
		state := "off"
		if s.showIR {
			state = "on"
		}
		fmt.Fprintf(w, "ir display %s\n", state)
	case ":input":
		s.input = arg
		fmt.Fprintf(w, "input set (%d bytes)\n", len(s.input))
	case ":help":
		fmt.Fprintln(w, ":quit          leave the repl")
		fmt.Fprintln(w, ":ir            toggle printing the instruction tree before each run")
		fmt.Fprintln(w, ":input TEXT    bytes fed to ',' on every run")
	default:
		fmt.Fprintln(w, "unknown command. Type :quit to exit.")
	}
	return false
}

// eval compiles and runs code, writing its output to w and diagnostics to
// errw. It reports whether the run succeeded.
func (s *replSession) eval(code string, w, errw io.Writer) bool {
	program, err := driver.NewLoader(s.cfg.Level).LoadSource("<repl>", code)
	if err != nil {
		fmt.Fprintln(errw, driver.DescribeLoadError(err))
		return false
	}
	if s.showIR {
		fmt.Fprint(w, program.IR.String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var out bytes.Buffer
	interp := interpreter.New()
	in := runtime.NewReaderPort(strings.NewReader(s.input), s.cfg.EOF)
	runErr := interp.ExecuteContext(ctx, program.IR, in, runtime.NewWriterPort(&out))
	if out.Len() > 0 {
		w.Write(out.Bytes())
		if out.Bytes()[out.Len()-1] != '\n' {
			fmt.Fprintln(w)
		}
	}
	if runErr != nil {
		fmt.Fprintln(errw, interpreter.DescribeRuntimeDiagnostic(interp.BuildRuntimeDiagnostic(runErr)))
		return false
	}
	return true
}
