package runtime

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// InputPort supplies one byte per Input instruction.
type InputPort interface {
	ReadByte() (byte, error)
}

// OutputPort receives one byte per Output instruction.
type OutputPort interface {
	WriteByte(c byte) error
}

// ErrInputExhausted is returned by a ReaderPort using EOFError once its
// reader is drained.
var ErrInputExhausted = errors.New("input exhausted")

// EOFPolicy decides what a ReaderPort yields after its reader is drained.
type EOFPolicy string

const (
	// EOFZero yields 0.
	EOFZero EOFPolicy = "zero"
	// EOFMax yields 255, the byte image of -1.
	EOFMax EOFPolicy = "max"
	// EOFError fails the read with ErrInputExhausted.
	EOFError EOFPolicy = "error"
)

func ParseEOFPolicy(value string) (EOFPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return EOFZero, fmt.Errorf("eof policy expects a value")
	case string(EOFZero), "0":
		return EOFZero, nil
	case string(EOFMax), "255", "-1":
		return EOFMax, nil
	case string(EOFError):
		return EOFError, nil
	default:
		return EOFZero, fmt.Errorf("unknown eof policy '%s' (expected zero, max or error)", value)
	}
}

// ReaderPort adapts an io.Reader to InputPort.
type ReaderPort struct {
	r      *bufio.Reader
	policy EOFPolicy
}

func NewReaderPort(r io.Reader, policy EOFPolicy) *ReaderPort {
	if r == nil {
		r = strings.NewReader("")
	}
	if policy == "" {
		policy = EOFZero
	}
	return &ReaderPort{r: bufio.NewReader(r), policy: policy}
}

func (p *ReaderPort) ReadByte() (byte, error) {
	b, err := p.r.ReadByte()
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, io.EOF) {
		return 0, err
	}
	switch p.policy {
	case EOFMax:
		return 0xFF, nil
	case EOFError:
		return 0, fmt.Errorf("%w: %w", ErrInputExhausted, io.EOF)
	default:
		return 0, nil
	}
}

// WriterPort adapts an io.Writer to OutputPort. Bytes are buffered until Flush.
type WriterPort struct {
	w *bufio.Writer
}

func NewWriterPort(w io.Writer) *WriterPort {
	if w == nil {
		w = io.Discard
	}
	return &WriterPort{w: bufio.NewWriter(w)}
}

func (p *WriterPort) WriteByte(c byte) error {
	return p.w.WriteByte(c)
}

func (p *WriterPort) Flush() error {
	return p.w.Flush()
}

// Flush flushes out when it buffers, and is a no-op otherwise.
func Flush(out OutputPort) error {
	if flusher, ok := out.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}
