// Package textfile implements the small text maintenance tools: line ending
// reports and conversion, leading whitespace reports and conversion, and TODO
// comment scanning.
package textfile

import (
	"bytes"
	"fmt"
	"strings"
)

// LineEnding is a line terminator style.
type LineEnding int

const (
	// Auto picks the most common ending already in the file.
	Auto LineEnding = iota
	CR
	LF
	CRLF
)

// ParseLineEnding parses "auto", "cr", "lf" or "crlf" (case-insensitive).
func ParseLineEnding(s string) (LineEnding, error) {
	switch strings.ToLower(s) {
	case "auto":
		return Auto, nil
	case "cr":
		return CR, nil
	case "lf":
		return LF, nil
	case "crlf":
		return CRLF, nil
	default:
		return Auto, fmt.Errorf("invalid line ending %q (expected auto, cr, lf or crlf)", s)
	}
}

func (e LineEnding) String() string {
	switch e {
	case Auto:
		return "auto"
	case CR:
		return "cr"
	case LF:
		return "lf"
	case CRLF:
		return "crlf"
	default:
		return fmt.Sprintf("LineEnding(%d)", int(e))
	}
}

func (e LineEnding) bytes() []byte {
	switch e {
	case CR:
		return []byte{'\r'}
	case CRLF:
		return []byte{'\r', '\n'}
	default:
		return []byte{'\n'}
	}
}

// LineEndingStats counts the line endings of a file. Lines is always one more
// than the number of endings.
type LineEndingStats struct {
	Lines int
	CR    int
	LF    int
	CRLF  int
}

// Mixed reports whether more than one ending style occurs.
func (s LineEndingStats) Mixed() bool {
	styles := 0
	for _, n := range []int{s.CR, s.LF, s.CRLF} {
		if n > 0 {
			styles++
		}
	}
	return styles > 1
}

// Count returns the number of endings of the given style.
func (s LineEndingStats) Count(e LineEnding) int {
	switch e {
	case CR:
		return s.CR
	case LF:
		return s.LF
	case CRLF:
		return s.CRLF
	default:
		return 0
	}
}

// Predominant returns the most common ending. Ties prefer LF, then CRLF.
func (s LineEndingStats) Predominant() LineEnding {
	best, n := LF, s.LF
	if s.CRLF > n {
		best, n = CRLF, s.CRLF
	}
	if s.CR > n {
		best = CR
	}
	return best
}

func (s LineEndingStats) String() string {
	out := fmt.Sprintf("lines=%d, cr=%d, lf=%d, crlf=%d", s.Lines, s.CR, s.LF, s.CRLF)
	if s.Mixed() {
		out += ", mixed"
	}
	return out
}

// ScanLineEndings counts the line endings in data.
func ScanLineEndings(data []byte) LineEndingStats {
	s := LineEndingStats{Lines: 1}
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				s.CRLF++
				i++
			} else {
				s.CR++
			}
			s.Lines++
		case '\n':
			s.LF++
			s.Lines++
		}
	}
	return s
}

// ConvertLineEndings rewrites every line ending in data to e and returns the
// result with the number of endings written. Auto resolves to the predominant
// ending. If data already uses only e it is returned unchanged.
func ConvertLineEndings(data []byte, e LineEnding) ([]byte, int) {
	stats := ScanLineEndings(data)
	if e == Auto {
		e = stats.Predominant()
	}
	if stats.Count(e)+1 == stats.Lines {
		return data, stats.Count(e)
	}

	nl := e.bytes()
	var buf bytes.Buffer
	buf.Grow(len(data) + stats.Lines)

	n := 0
	for i := 0; i < len(data); i++ {
		switch c := data[i]; c {
		case '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			buf.Write(nl)
			n++
		case '\n':
			buf.Write(nl)
			n++
		default:
			buf.WriteByte(c)
		}
	}

	return buf.Bytes(), n
}
