package parser

import (
	"strings"

	"bfi/interpreter-go/pkg/ast"
)

// Commands lists the eight meaningful source characters. Everything else is
// a comment.
const Commands = "[]<>+-.,"

type token struct {
	ch  byte
	loc SourceLocation
}

func isCommand(ch byte) bool {
	return strings.IndexByte(Commands, ch) >= 0
}

// Filter strips every character that is not a command.
func Filter(source string) string {
	var b strings.Builder
	b.Grow(len(source))
	for i := 0; i < len(source); i++ {
		if isCommand(source[i]) {
			b.WriteByte(source[i])
		}
	}
	return b.String()
}

// scan filters source into command tokens, remembering where each one sat in
// the original text.
func scan(source string) []token {
	tokens := make([]token, 0, len(source))
	line, col := 1, 1
	for i := 0; i < len(source); i++ {
		ch := source[i]
		if isCommand(ch) {
			tokens = append(tokens, token{ch: ch, loc: SourceLocation{Offset: i, Line: line, Column: col}})
		}
		if ch == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return tokens
}

// ProgramParser is a recursive-descent parser over filtered command tokens.
type ProgramParser struct {
	tokens []token
	pos    int
	end    SourceLocation
}

// Parse parses source into a syntax tree. Unbalanced brackets produce a
// *ParseError and no tree.
func Parse(source string) (*ast.Program, error) {
	return NewProgramParser(source).ParseProgram()
}

func NewProgramParser(source string) *ProgramParser {
	return &ProgramParser{
		tokens: scan(source),
		end:    endLocation(source),
	}
}

// ParseProgram consumes every token. It may be called once per parser.
func (p *ProgramParser) ParseProgram() (*ast.Program, error) {
	body, err := p.parseCommands()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		// parseCommands only stops early on ']'.
		return nil, newParseError(UnmatchedClose, tok.loc)
	}
	prog := ast.NewProgram(body)
	ast.SetSpan(prog, ast.Span{Start: position(SourceLocation{Offset: 0, Line: 1, Column: 1}), End: position(p.end)})
	return prog, nil
}

func (p *ProgramParser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

// parseCommands reads commands until end of input or a ']' it does not consume.
func (p *ProgramParser) parseCommands() ([]ast.Node, error) {
	body := []ast.Node{}
	for {
		tok, ok := p.peek()
		if !ok || tok.ch == ']' {
			return body, nil
		}
		node, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		body = append(body, node)
	}
}

func (p *ProgramParser) parseCommand() (ast.Node, error) {
	tok, _ := p.peek()
	switch tok.ch {
	case '[':
		return p.parseLoop()
	case '>', '<':
		return p.parseShift(), nil
	case '+', '-':
		return p.parseArith(), nil
	case '.':
		p.pos++
		node := ast.NewOutput()
		p.annotate(node, tok, tok)
		return node, nil
	case ',':
		p.pos++
		node := ast.NewInput()
		p.annotate(node, tok, tok)
		return node, nil
	default:
		return nil, newParseError(UnmatchedClose, tok.loc)
	}
}

func (p *ProgramParser) parseLoop() (ast.Node, error) {
	open := p.tokens[p.pos]
	p.pos++
	body, err := p.parseCommands()
	if err != nil {
		return nil, err
	}
	closing, ok := p.peek()
	if !ok {
		return nil, newParseError(UnmatchedOpen, open.loc)
	}
	p.pos++
	node := ast.NewLoop(body)
	p.annotate(node, open, closing)
	return node, nil
}

func (p *ProgramParser) parseShift() ast.Node {
	first := p.tokens[p.pos]
	delta, last := p.foldRun('>', '<')
	node := ast.NewShift(delta)
	p.annotate(node, first, last)
	return node
}

func (p *ProgramParser) parseArith() ast.Node {
	first := p.tokens[p.pos]
	amount, last := p.foldRun('+', '-')
	node := ast.NewArith(amount)
	p.annotate(node, first, last)
	return node
}

// foldRun sums a maximal run of up/down characters: each up counts +1 and
// each down -1. The result equals parsing every character on its own and
// adding the unit nodes together.
func (p *ProgramParser) foldRun(up, down byte) (int, token) {
	total := 0
	var last token
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		switch tok.ch {
		case up:
			total++
		case down:
			total--
		default:
			return total, last
		}
		last = tok
		p.pos++
	}
	return total, last
}

func (p *ProgramParser) annotate(node ast.Node, first, last token) {
	end := last.loc
	end.Offset++
	end.Column++
	ast.SetSpan(node, ast.Span{Start: position(first.loc), End: position(end)})
}

func position(loc SourceLocation) ast.Position {
	return ast.Position{Offset: loc.Offset, Line: loc.Line, Column: loc.Column}
}

func endLocation(source string) SourceLocation {
	line := 1 + strings.Count(source, "\n")
	col := len(source) - strings.LastIndexByte(source, '\n')
	return SourceLocation{Offset: len(source), Line: line, Column: col}
}
