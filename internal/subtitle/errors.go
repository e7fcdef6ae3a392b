package subtitle

import (
	"errors"
	"fmt"
	"strings"
)

// error categories, matched with errors.Is
var (
	ErrParse      = errors.New("parse error")
	ErrFormat     = errors.New("format error")
	ErrConversion = errors.New("conversion error")
	ErrIO         = errors.New("i/o error")
)

// ParseError reports a malformed .srt block or timecode.
type ParseError struct {
	File  string
	Block int // 1-based block position, 0 when not tied to a block
	Line  int // 1-based source line, 0 when unknown
	Msg   string
}

func (e *ParseError) Error() string {
	return "parse: " + locate(e.File, e.Block, "block", e.Line) + e.Msg
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// FormatError reports a track that breaks the ordering or cue invariants.
type FormatError struct {
	File string
	Cue  int // 1-based cue position
	Msg  string
}

func (e *FormatError) Error() string {
	return "format: " + locate(e.File, e.Cue, "cue", 0) + e.Msg
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// ConversionError reports a foreign-format cue that cannot be mapped to a Cue.
type ConversionError struct {
	File   string
	Format string
	Cue    int // 1-based position in the source document
	Line   int
	Msg    string
	Err    error
}

func (e *ConversionError) Error() string {
	var sb strings.Builder
	sb.WriteString("convert")
	if e.Format != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Format)
	}
	sb.WriteString(": ")
	sb.WriteString(locate(e.File, e.Cue, "cue", e.Line))
	sb.WriteString(e.Msg)
	if e.Err != nil {
		if e.Msg != "" {
			sb.WriteString(": ")
		}
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// IOError wraps a file open, read or write failure.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// WithFile stamps path onto taxonomy errors that carry no file yet.
// Other errors are returned unchanged.
func WithFile(err error, path string) error {
	var pe *ParseError
	var fe *FormatError
	var ce *ConversionError
	switch {
	case errors.As(err, &pe):
		if pe.File == "" {
			pe.File = path
		}
	case errors.As(err, &fe):
		if fe.File == "" {
			fe.File = path
		}
	case errors.As(err, &ce):
		if ce.File == "" {
			ce.File = path
		}
	}
	return err
}

func locate(file string, pos int, unit string, line int) string {
	var parts []string
	if file != "" {
		parts = append(parts, file)
	}
	if pos > 0 {
		parts = append(parts, fmt.Sprintf("%s %d", unit, pos))
	}
	if line > 0 {
		parts = append(parts, fmt.Sprintf("line %d", line))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ", ") + ": "
}
