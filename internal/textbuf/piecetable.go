// Package textbuf implements a piece-table text buffer: the document is a
// sequence of pieces referencing either the original (load-time) bytes or an
// append-only add buffer, so mid-document inserts and deletes never copy the
// whole content. Lines and columns are 1-based, absolute offsets are 0-based
// byte positions in [0, Len()].
package textbuf

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

type source int

const (
	srcOriginal source = iota
	srcAdd
)

type piece struct {
	src    source
	off    int // offset into the source buffer
	length int
	// newlines holds the offsets of '\n' bytes relative to off.
	newlines []int
}

// PieceTable is a mutable byte buffer with efficient mid-document edits and
// offset <-> (line, column) translation. Not safe for concurrent use; callers
// own a single-writer discipline.
type PieceTable struct {
	original []byte
	add      []byte
	pieces   []piece
	length   int
	newlines int
}

// New builds a buffer from raw bytes, normalizing CRLF and lone CR line
// endings to a single '\n'. Normalization happens once, here.
func New(raw []byte) *PieceTable {
	norm := normalizeEOL(raw)
	pt := &PieceTable{original: norm}
	if len(norm) > 0 {
		p := makePiece(srcOriginal, 0, len(norm), norm)
		pt.pieces = []piece{p}
		pt.length = p.length
		pt.newlines = len(p.newlines)
	}
	return pt
}

// NewFromString builds a buffer from a string, with the same EOL
// normalization as New.
func NewFromString(s string) *PieceTable {
	return New([]byte(s))
}

func normalizeEOL(raw []byte) []byte {
	if !bytes.ContainsRune(raw, '\r') {
		out := make([]byte, len(raw))
		copy(out, raw)
		return out
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\r' {
			out = append(out, '\n')
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			continue
		}
		out = append(out, raw[i])
	}
	return out
}

func makePiece(src source, off, length int, buf []byte) piece {
	p := piece{src: src, off: off, length: length}
	for i := 0; i < length; i++ {
		if buf[off+i] == '\n' {
			p.newlines = append(p.newlines, i)
		}
	}
	return p
}

func (pt *PieceTable) buf(src source) []byte {
	if src == srcAdd {
		return pt.add
	}
	return pt.original
}

// Len returns the total byte length of the buffer.
func (pt *PieceTable) Len() int { return pt.length }

// LineCount returns the number of lines. An empty buffer has one line.
func (pt *PieceTable) LineCount() int { return pt.newlines + 1 }

// Text returns the full buffer content.
func (pt *PieceTable) Text() string {
	var b bytes.Buffer
	b.Grow(pt.length)
	for _, p := range pt.pieces {
		b.Write(pt.buf(p.src)[p.off : p.off+p.length])
	}
	return b.String()
}

// ByteAt returns the byte at offset. ok is false when offset is out of
// range (in particular at offset == Len()).
func (pt *PieceTable) ByteAt(offset int) (byte, bool) {
	if offset < 0 || offset >= pt.length {
		return 0, false
	}
	pos := 0
	for _, p := range pt.pieces {
		if offset < pos+p.length {
			return pt.buf(p.src)[p.off+offset-pos], true
		}
		pos += p.length
	}
	return 0, false
}

// TextRange returns the bytes in [start, end) decoded as a string. The range
// is clamped to the buffer bounds.
func (pt *PieceTable) TextRange(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > pt.length {
		end = pt.length
	}
	if start >= end {
		return ""
	}
	var b bytes.Buffer
	b.Grow(end - start)
	pos := 0
	for _, p := range pt.pieces {
		pe := pos + p.length
		if pe > start && pos < end {
			from := max(start, pos) - pos
			to := min(end, pe) - pos
			b.Write(pt.buf(p.src)[p.off+from : p.off+to])
		}
		pos = pe
		if pos >= end {
			break
		}
	}
	return b.String()
}

// RuneRange is TextRange with a validity check: ok is false when the range
// does not decode as UTF-8, so callers needing text must handle the binary
// case explicitly.
func (pt *PieceTable) RuneRange(start, end int) (string, bool) {
	s := pt.TextRange(start, end)
	if !utf8.ValidString(s) {
		return "", false
	}
	return s, true
}

// lineStart returns the absolute offset of the first byte of the 1-based
// line, or -1 when the line does not exist.
func (pt *PieceTable) lineStart(line int) int {
	if line < 1 || line > pt.LineCount() {
		return -1
	}
	if line == 1 {
		return 0
	}
	need := line - 1 // count of newlines to skip
	seen := 0
	pos := 0
	for _, p := range pt.pieces {
		if seen+len(p.newlines) >= need {
			return pos + p.newlines[need-seen-1] + 1
		}
		seen += len(p.newlines)
		pos += p.length
	}
	return -1
}

// Line returns the content of the 1-based line without its trailing newline.
// Out-of-range lines yield the empty string.
func (pt *PieceTable) Line(line int) string {
	start := pt.lineStart(line)
	if start < 0 {
		return ""
	}
	end := pt.length
	if line < pt.LineCount() {
		end = pt.lineStart(line+1) - 1
	}
	return pt.TextRange(start, end)
}

// LineLen returns the byte length of the 1-based line, excluding its
// trailing newline.
func (pt *PieceTable) LineLen(line int) int {
	start := pt.lineStart(line)
	if start < 0 {
		return 0
	}
	end := pt.length
	if line < pt.LineCount() {
		end = pt.lineStart(line+1) - 1
	}
	return end - start
}

// OffsetAt converts a 1-based (line, column) pair to an absolute offset.
// It returns an error for out-of-bounds positions; callers clamp first.
func (pt *PieceTable) OffsetAt(line, col int) (int, error) {
	start := pt.lineStart(line)
	if start < 0 {
		return 0, fmt.Errorf("textbuf: line %d out of range (1..%d)", line, pt.LineCount())
	}
	if col < 1 || col > pt.LineLen(line)+1 {
		return 0, fmt.Errorf("textbuf: column %d out of range on line %d", col, line)
	}
	return start + col - 1, nil
}

// PositionAt converts an absolute offset to a 1-based (line, column) pair.
// Offsets are valid in [0, Len()]; Len() maps to the position just past the
// final byte.
func (pt *PieceTable) PositionAt(offset int) (line, col int, err error) {
	if offset < 0 || offset > pt.length {
		return 0, 0, fmt.Errorf("textbuf: offset %d out of range (0..%d)", offset, pt.length)
	}
	line = 1
	lineStart := 0
	pos := 0
	for _, p := range pt.pieces {
		if offset <= pos {
			break
		}
		for _, nl := range p.newlines {
			abs := pos + nl
			if abs >= offset {
				break
			}
			line++
			lineStart = abs + 1
		}
		pos += p.length
	}
	return line, offset - lineStart + 1, nil
}

// Insert splices text into the buffer at offset. Offsets past the end are
// clamped; empty text is a no-op.
func (pt *PieceTable) Insert(offset int, text []byte) {
	if len(text) == 0 {
		return
	}
	if offset < 0 {
		offset = 0
	}
	if offset > pt.length {
		offset = pt.length
	}

	addOff := len(pt.add)
	pt.add = append(pt.add, text...)
	np := makePiece(srcAdd, addOff, len(text), pt.add)

	idx, rel := pt.locate(offset)
	switch {
	case idx == len(pt.pieces):
		// Append at the very end. Extend the last piece when it already
		// ends at the tail of the add buffer.
		if n := len(pt.pieces); n > 0 {
			last := &pt.pieces[n-1]
			if last.src == srcAdd && last.off+last.length == addOff {
				for _, nl := range np.newlines {
					last.newlines = append(last.newlines, last.length+nl)
				}
				last.length += np.length
				break
			}
		}
		pt.pieces = append(pt.pieces, np)
	case rel == 0:
		pt.pieces = insertPieces(pt.pieces, idx, np)
	default:
		left, right := pt.splitPiece(pt.pieces[idx], rel)
		pt.pieces[idx] = left
		pt.pieces = insertPieces(pt.pieces, idx+1, np, right)
	}
	pt.length += np.length
	pt.newlines += len(np.newlines)
}

// Delete removes n bytes starting at offset. The range is clamped to the
// buffer bounds; a degenerate range is a no-op.
func (pt *PieceTable) Delete(offset, n int) {
	if offset < 0 {
		n += offset
		offset = 0
	}
	if offset >= pt.length || n <= 0 {
		return
	}
	if offset+n > pt.length {
		n = pt.length - offset
	}
	end := offset + n

	var out []piece
	pos := 0
	removedNL := 0
	for _, p := range pt.pieces {
		pe := pos + p.length
		if pe <= offset || pos >= end {
			out = append(out, p)
			pos = pe
			continue
		}
		if pos < offset {
			left, _ := pt.splitPiece(p, offset-pos)
			out = append(out, left)
		}
		if pe > end {
			_, right := pt.splitPiece(p, end-pos)
			out = append(out, right)
		}
		// Count newlines that fall inside the deleted span.
		for _, nl := range p.newlines {
			abs := pos + nl
			if abs >= offset && abs < end {
				removedNL++
			}
		}
		pos = pe
	}
	pt.pieces = out
	pt.length -= n
	pt.newlines -= removedNL
}

// locate finds the piece containing offset, returning its index and the
// relative offset within it. offset == Len() yields (len(pieces), 0).
func (pt *PieceTable) locate(offset int) (int, int) {
	pos := 0
	for i, p := range pt.pieces {
		if offset < pos+p.length {
			return i, offset - pos
		}
		pos += p.length
	}
	return len(pt.pieces), 0
}

func (pt *PieceTable) splitPiece(p piece, at int) (piece, piece) {
	left := piece{src: p.src, off: p.off, length: at}
	right := piece{src: p.src, off: p.off + at, length: p.length - at}
	for _, nl := range p.newlines {
		if nl < at {
			left.newlines = append(left.newlines, nl)
		} else {
			right.newlines = append(right.newlines, nl-at)
		}
	}
	return left, right
}

func insertPieces(ps []piece, at int, ins ...piece) []piece {
	out := make([]piece, 0, len(ps)+len(ins))
	out = append(out, ps[:at]...)
	out = append(out, ins...)
	out = append(out, ps[at:]...)
	return out
}
