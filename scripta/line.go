package scripta

import "strings"

// Line is the output of the line classifier (C1): it attaches indentation,
// byte position and a 1-indexed line number to a raw source line. Leading
// tabs are not expanded — only ASCII spaces count as indentation, matching
// the teacher's ReadLine (indentation = len(raw)-len(trimmed)).
type Line struct {
	Indent     int
	Prefix     string // the leading whitespace run itself
	Content    string // the full original line, including leading whitespace
	LineNumber int
	Position   int // byte offset of this line's first character in the source
}

// Trimmed returns the line's content with leading spaces stripped.
func (l Line) Trimmed() string {
	return l.Content[len(l.Prefix):]
}

// IsBlank reports whether the line is empty or contains only spaces.
func (l Line) IsBlank() bool {
	return len(strings.TrimLeft(l.Content, " ")) == 0
}

// classifyLines splits source into Line records. Lines are split on "\n";
// a trailing "\r" (CRLF input) is stripped from Content, matching
// convertNewlines' normalization in the teacher's rite_utils.go, but without
// mutating the caller's string.
func classifyLines(source string) []Line {
	var lines []Line

	pos := 0
	num := 0
	for {
		nl := strings.IndexByte(source[pos:], '\n')
		var raw string
		if nl == -1 {
			raw = source[pos:]
		} else {
			raw = source[pos : pos+nl]
		}
		raw = strings.TrimSuffix(raw, "\r")

		num++
		indent := 0
		for indent < len(raw) && raw[indent] == ' ' {
			indent++
		}

		lines = append(lines, Line{
			Indent:     indent,
			Prefix:     raw[:indent],
			Content:    raw,
			LineNumber: num,
			Position:   pos,
		})

		if nl == -1 {
			break
		}
		pos += nl + 1
		if pos >= len(source) {
			// A trailing newline with nothing after it does not start
			// a further (phantom) line.
			break
		}
	}

	return lines
}
