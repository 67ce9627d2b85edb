package textfile

import (
	"bytes"
	"fmt"
	"strings"
)

// DefaultTabSize is the number of columns a tab advances.
const DefaultTabSize = 4

// IndentMode is the whitespace style for line starts.
type IndentMode int

const (
	Tabs IndentMode = iota
	Spaces
)

// ParseIndentMode parses "tabs"/"t" or "spaces"/"s".
func ParseIndentMode(s string) (IndentMode, error) {
	switch strings.ToLower(s) {
	case "tabs", "t":
		return Tabs, nil
	case "spaces", "s":
		return Spaces, nil
	default:
		return Tabs, fmt.Errorf("invalid indentation mode %q (expected tabs or spaces)", s)
	}
}

func (m IndentMode) String() string {
	if m == Spaces {
		return "spaces"
	}
	return "tabs"
}

// IndentStats counts how lines of a file are indented.
type IndentStats struct {
	Lines  int
	Tabs   int
	Spaces int
	Mixed  int
}

// Inconsistent reports whether the file has more than one indentation style
// or lines that mix tabs and spaces.
func (s IndentStats) Inconsistent() bool {
	return s.Mixed > 0 || (s.Tabs > 0 && s.Spaces > 0)
}

func (s IndentStats) String() string {
	out := fmt.Sprintf("lines=%d, tabs=%d, spaces=%d, mixed=%d", s.Lines, s.Tabs, s.Spaces, s.Mixed)
	if s.Inconsistent() {
		out += ", inconsistent"
	}
	return out
}

// ScanIndentation classifies the leading whitespace of every line.
func ScanIndentation(data []byte) IndentStats {
	var s IndentStats
	for _, line := range splitLines(data) {
		s.Lines++
		lead := leading(line)
		hasTab := bytes.IndexByte(lead, '\t') >= 0
		hasSpace := bytes.IndexByte(lead, ' ') >= 0
		switch {
		case hasTab && hasSpace:
			s.Mixed++
		case hasTab:
			s.Tabs++
		case hasSpace:
			s.Spaces++
		}
	}
	return s
}

// FixIndentation rewrites the leading whitespace of every line to mode and
// returns the result with the number of lines changed. Converting to tabs
// keeps the columns that do not fill a whole tab as spaces.
func FixIndentation(data []byte, mode IndentMode, tabSize int) ([]byte, int) {
	if tabSize <= 0 {
		tabSize = DefaultTabSize
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	changed := 0

	for _, line := range splitLines(data) {
		lead := leading(line)
		cols := columns(lead, tabSize)

		var fixed []byte
		if mode == Tabs {
			fixed = append(bytes.Repeat([]byte{'\t'}, cols/tabSize), bytes.Repeat([]byte{' '}, cols%tabSize)...)
		} else {
			fixed = bytes.Repeat([]byte{' '}, cols)
		}

		if !bytes.Equal(fixed, lead) {
			changed++
		}
		buf.Write(fixed)
		buf.Write(line[len(lead):])
	}

	return buf.Bytes(), changed
}

// splitLines splits data after each '\n' or lone '\r', keeping terminators.
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			lines = append(lines, data[start:i+1])
			start = i + 1
		case '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				continue
			}
			lines = append(lines, data[start:i+1])
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

func leading(line []byte) []byte {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i]
}

// columns returns the display width of leading whitespace.
func columns(lead []byte, tabSize int) int {
	col := 0
	for _, c := range lead {
		if c == '\t' {
			col += tabSize - col%tabSize
		} else {
			col++
		}
	}
	return col
}
