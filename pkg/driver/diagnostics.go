package driver

import (
	"errors"
	"fmt"
	"strings"

	"bfi/interpreter-go/pkg/parser"
)

// LoadError reports a source file that could not be read or compiled.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("loader: %v", e.Err)
	}
	return fmt.Sprintf("loader: %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// DescribeLoadError formats err for CLI output. Syntax errors are rendered
// as path:line:column diagnostics.
func DescribeLoadError(err error) string {
	if err == nil {
		return ""
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		return err.Error()
	}
	var parseErr *parser.ParseError
	if errors.As(loadErr.Err, &parseErr) {
		return parser.DescribeParseError(loadErr.Path, parseErr)
	}
	message := strings.TrimSpace(loadErr.Err.Error())
	if loadErr.Path == "" {
		return message
	}
	return fmt.Sprintf("%s: %s", loadErr.Path, message)
}
