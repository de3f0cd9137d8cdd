package parser

import "strings"

// lineReader presents the document as an indexable, peekable sequence of
// physical lines. The cursor is local to one parse, so independent
// documents can be parsed concurrently.
type lineReader struct {
	lines []string
	pos   int
}

func newLineReader(text string) *lineReader {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	return &lineReader{lines: strings.Split(normalized, "\n")}
}

// eof reports whether the reader is exhausted.
func (r *lineReader) eof() bool {
	return r.pos >= len(r.lines)
}

// line returns the 1-based number of the current line, for diagnostics.
// At end of input it points one past the last line.
func (r *lineReader) line() int {
	return r.pos + 1
}

// peek returns the current line without consuming it.
func (r *lineReader) peek() (string, bool) {
	if r.eof() {
		return "", false
	}
	return r.lines[r.pos], true
}

// peekNext looks one line past the current one. This single line of
// lookahead is all the grammar ever needs (module description vs entity
// header disambiguation).
func (r *lineReader) peekNext() (string, bool) {
	if r.pos+1 >= len(r.lines) {
		return "", false
	}
	return r.lines[r.pos+1], true
}

// advance consumes and returns the current line.
func (r *lineReader) advance() (string, bool) {
	if r.eof() {
		return "", false
	}
	line := r.lines[r.pos]
	r.pos++
	return line, true
}

// skipBlankAndComments advances over blank lines and full-line comments
// until a substantive line or end of input is reached. Skipped comments are
// appended to collected, if non-nil.
func (r *lineReader) skipBlankAndComments(collected *[]string) {
	for !r.eof() {
		trimmed := strings.TrimSpace(r.lines[r.pos])
		if trimmed == "" {
			r.pos++
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			if collected != nil {
				*collected = append(*collected, strings.TrimSpace(strings.TrimPrefix(trimmed, "#")))
			}
			r.pos++
			continue
		}
		return
	}
}
