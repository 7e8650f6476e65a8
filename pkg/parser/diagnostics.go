package parser

import (
	"errors"
	"fmt"
)

// SourceLocation captures a position in the unfiltered source text.
type SourceLocation struct {
	Offset int
	Line   int
	Column int
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

type ErrorKind int

const (
	// UnmatchedOpen is a '[' with no closing bracket before end of input.
	UnmatchedOpen ErrorKind = iota
	// UnmatchedClose is a ']' with no open loop.
	UnmatchedClose
)

func (k ErrorKind) String() string {
	switch k {
	case UnmatchedOpen:
		return "unmatched '['"
	case UnmatchedClose:
		return "unmatched ']'"
	default:
		return "syntax error"
	}
}

// ParseError is the syntax error raised for unbalanced brackets.
type ParseError struct {
	Kind     ErrorKind
	Message  string
	Location SourceLocation
}

func (e *ParseError) Error() string {
	return e.Message
}

func newParseError(kind ErrorKind, loc SourceLocation) *ParseError {
	return &ParseError{
		Kind:     kind,
		Message:  fmt.Sprintf("parser: syntax error: %s at %s", kind, loc),
		Location: loc,
	}
}

// IsIncomplete reports whether err only says that a loop was left open,
// meaning more input could still complete the program.
func IsIncomplete(err error) bool {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return false
	}
	return parseErr.Kind == UnmatchedOpen
}

// DescribeParseError renders err as "path:line:column: message". Errors other
// than *ParseError are rendered with their message only.
func DescribeParseError(path string, err error) string {
	if err == nil {
		return ""
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		if path == "" {
			return err.Error()
		}
		return fmt.Sprintf("%s: %v", path, err)
	}
	if path == "" {
		path = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", path, parseErr.Location.Line, parseErr.Location.Column, parseErr.Kind)
}
