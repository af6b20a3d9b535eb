package textview

import "unicode"

// isWordRune classifies a rune for word motions: letters and digits are word
// characters, everything else (punctuation, whitespace, newlines) separates
// words.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordScanner walks the buffer rune by rune around a position. It caches the
// runes of the current line and refetches only when the row changes, so a
// multi-line scan decodes each line once. A scanner is created per scan call
// and never survives an edit.
type wordScanner struct {
	buf interface {
		Line(n int) string
		LineCount() int
	}
	row int
	idx int // rune index within the cached line; len(runes) is the line end

	cachedRow int
	runes     []rune
	offs      []int // byte offset of runes[i] within the line
	lineLen   int   // byte length of the cached line
}

func (v *TextView) newWordScanner(row, col int) *wordScanner {
	s := &wordScanner{buf: v.buf, row: row, cachedRow: -1}
	s.fetch()
	s.idx = len(s.runes)
	for i, off := range s.offs {
		if off >= col {
			s.idx = i
			break
		}
	}
	return s
}

func (s *wordScanner) fetch() {
	if s.cachedRow == s.row {
		return
	}
	line := s.buf.Line(s.row + 1)
	s.runes = s.runes[:0]
	s.offs = s.offs[:0]
	for off, r := range line {
		s.runes = append(s.runes, r)
		s.offs = append(s.offs, off)
	}
	s.lineLen = len(line)
	s.cachedRow = s.row
}

func (s *wordScanner) lastRow() int { return s.buf.LineCount() - 1 }

// pos returns the scanner's (row, byte column) position.
func (s *wordScanner) pos() (int, int) {
	if s.idx < len(s.runes) {
		return s.row, s.offs[s.idx]
	}
	return s.row, s.lineLen
}

// char returns the rune at the current position: the line's rune, '\n' at a
// line end, or 0 past the final line's end.
func (s *wordScanner) char() rune {
	if s.idx < len(s.runes) {
		return s.runes[s.idx]
	}
	if s.row < s.lastRow() {
		return '\n'
	}
	return 0
}

// atEnd reports whether the scanner sits past the last character.
func (s *wordScanner) atEnd() bool {
	return s.row >= s.lastRow() && s.idx >= len(s.runes)
}

// advance steps one character forward and returns the character at the new
// position. It reports false when already at the buffer end.
func (s *wordScanner) advance() (rune, bool) {
	if s.idx < len(s.runes) {
		s.idx++
	} else {
		if s.row >= s.lastRow() {
			return 0, false
		}
		s.row++
		s.fetch()
		s.idx = 0
	}
	return s.char(), true
}

// retreat steps one character backward and returns the character at the new
// position. It reports false when already at the buffer start.
func (s *wordScanner) retreat() (rune, bool) {
	if s.idx > 0 {
		s.idx--
	} else {
		if s.row == 0 {
			return 0, false
		}
		s.row--
		s.fetch()
		s.idx = len(s.runes)
	}
	return s.char(), true
}

// wordForward finds the position after the next word run: starting on a
// separator it skips the separator run and then the following word run;
// starting on a word character it skips only the current word run. ok is
// false when no motion was possible.
func (v *TextView) wordForward(row, col int) (int, int, bool) {
	s := v.newWordScanner(row, col)
	if s.atEnd() {
		return 0, 0, false
	}
	if !isWordRune(s.char()) {
		for !s.atEnd() && !isWordRune(s.char()) {
			s.advance()
		}
	}
	for !s.atEnd() && isWordRune(s.char()) {
		s.advance()
	}
	nr, nc := s.pos()
	if nr == row && nc == col {
		return 0, 0, false
	}
	return nr, nc, true
}

// wordBackward finds the start of the previous word run, mirroring
// wordForward with retreat. Because retreat overshoots by one character to
// test it, the answer is the position before the failing step.
func (v *TextView) wordBackward(row, col int) (int, int, bool) {
	s := v.newWordScanner(row, col)
	ch, ok := s.retreat()
	if !ok {
		return 0, 0, false
	}
	for ok && !isWordRune(ch) {
		ch, ok = s.retreat()
	}
	if !ok {
		// Only separators between the start position and the buffer start.
		if row == 0 && col == 0 {
			return 0, 0, false
		}
		return 0, 0, true
	}
	ansRow, ansCol := s.pos()
	for {
		ch, ok = s.retreat()
		if !ok || !isWordRune(ch) {
			break
		}
		ansRow, ansCol = s.pos()
	}
	return ansRow, ansCol, true
}
