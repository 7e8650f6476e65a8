package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bfi/interpreter-go/pkg/optimizer"
)

// StdinPath names standard input wherever a source path is accepted.
const StdinPath = "-"

// Loader reads source files and compiles them at a fixed optimization level.
type Loader struct {
	level optimizer.Level
	stdin io.Reader
}

func NewLoader(level optimizer.Level) *Loader {
	if level == "" {
		level = optimizer.LevelFull
	}
	return &Loader{level: level, stdin: os.Stdin}
}

// WithStdin replaces the reader used for StdinPath.
func (l *Loader) WithStdin(r io.Reader) *Loader {
	l.stdin = r
	return l
}

func (l *Loader) Level() optimizer.Level {
	return l.level
}

// Load reads and compiles the file at path. Failures are *LoadError values
// carrying the path.
func (l *Loader) Load(path string) (*Program, error) {
	if path == "" {
		return nil, &LoadError{Err: fmt.Errorf("empty source path")}
	}
	var (
		data []byte
		err  error
		name = path
	)
	if path == StdinPath {
		name = "<stdin>"
		if l.stdin == nil {
			return nil, &LoadError{Path: name, Err: fmt.Errorf("no standard input")}
		}
		data, err = io.ReadAll(l.stdin)
	} else {
		if abs, absErr := filepath.Abs(path); absErr == nil {
			path = abs
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	return l.LoadSource(name, string(data))
}

// LoadSource compiles source as if it had been read from name.
func (l *Loader) LoadSource(name, source string) (*Program, error) {
	prog, err := Compile(source, l.level)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	prog.Path = name
	return prog, nil
}
