package posfile

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Sentinel stands in for commas inside brace lists while the record is split.
const Sentinel = '␟'

var (
	sentinelBytes = []byte(string(Sentinel))

	ErrIllegalSentinel = errors.New("input contains reserved separator character U+241F")
	ErrFieldCount      = errors.New("wrong field count")
)

// Escape replaces every comma inside a {...} region with Sentinel so the stream
// can be split as ordinary CSV. Braces inside quoted text are data and do not
// open a region. A brace region never spans lines.
func Escape(data []byte) ([]byte, error) {
	if i := bytes.Index(data, sentinelBytes); i >= 0 {
		line := bytes.Count(data[:i], []byte{'\n'}) + 1
		return nil, fmt.Errorf("line %d: %w", line, ErrIllegalSentinel)
	}

	out := make([]byte, 0, len(data)+len(data)/8)
	var inQuote, inBrace bool
	fieldStart := true
	for i := 0; i < len(data); i++ {
		b := data[i]
		if inQuote {
			out = append(out, b)
			if b == '"' {
				if i+1 < len(data) && data[i+1] == '"' {
					out = append(out, '"')
					i++
					continue
				}
				inQuote = false
			}
			continue
		}
		switch b {
		case '"':
			if fieldStart && !inBrace {
				inQuote = true
			}
			fieldStart = false
		case ' ', '\t', '\r':
		case '{':
			inBrace = true
			fieldStart = false
		case '}':
			inBrace = false
			fieldStart = false
		case ',':
			if inBrace {
				out = append(out, sentinelBytes...)
				continue
			}
			fieldStart = true
		case '\n':
			inBrace = false
			fieldStart = true
		default:
			fieldStart = false
		}
		out = append(out, b)
	}
	return out, nil
}

// unescape restores commas hidden by Escape.
func unescape(field string) string {
	return strings.ReplaceAll(field, string(Sentinel), ",")
}

// FieldCountError reports a record that does not split into RecordFields fields.
type FieldCountError struct {
	Line int
	Got  int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("line %d: record has %d fields, want %d", e.Line, e.Got, RecordFields)
}

func (e *FieldCountError) Unwrap() error { return ErrFieldCount }
