package textview

import "unicode/utf8"

// SetMark records the cursor as one end of the selection region; the other
// end stays the live cursor.
func (v *TextView) SetMark() {
	v.breakChains()
	v.markRow, v.markCol = v.row, v.col
	v.selecting = true
	v.invalidateFull()
}

// Selecting reports whether a selection region is active.
func (v *TextView) Selecting() bool { return v.selecting }

// CancelSelection abandons the region without touching the buffer. The mark
// coordinates go stale, which is harmless: selecting gates all reads.
func (v *TextView) CancelSelection() {
	v.breakChains()
	if !v.selecting {
		return
	}
	v.selecting = false
	v.invalidateFull()
}

// regionBounds is the single normalization point for the selection: it
// returns the mark and cursor as (min, max) absolute offsets, regardless of
// the direction of travel.
func (v *TextView) regionBounds() (start, end int, ok bool) {
	if !v.selecting {
		return 0, 0, false
	}
	a, err := v.offsetAt(v.markRow, v.markCol)
	if err != nil {
		return 0, 0, false
	}
	b, err := v.offsetAt(v.row, v.col)
	if err != nil {
		return 0, 0, false
	}
	if a > b {
		a, b = b, a
	}
	return a, b, true
}

// pointInSelection reports whether (row, col) falls inside the active
// region, both ends inclusive. Used per rendered cell to pick the highlight
// attribute.
func (v *TextView) pointInSelection(row, col int) bool {
	start, end, ok := v.regionBounds()
	if !ok {
		return false
	}
	off, err := v.offsetAt(row, col)
	if err != nil {
		return false
	}
	return off >= start && off <= end
}

// RegionText returns the selected text in [start, end).
func (v *TextView) RegionText() string {
	start, end, ok := v.regionBounds()
	if !ok {
		return ""
	}
	return v.buf.TextRange(start, end)
}

// clearRegion deletes [start, end) and moves the cursor to start. This is
// the only selection operation that mutates the buffer; it goes through the
// same offset-based delete path as character deletion.
func (v *TextView) clearRegion() {
	start, end, ok := v.regionBounds()
	if !ok || start == end {
		return
	}
	v.deleteRange(start, end)
}

// Copy writes the region to the clipboard and drops the selection. The
// buffer is untouched, so copy works on read-only views.
func (v *TextView) Copy() {
	v.breakChains()
	if !v.selecting {
		return
	}
	v.clip.Set(v.RegionText())
	v.selecting = false
	v.invalidateFull()
}

// Cut writes the region to the clipboard, deletes it and drops the
// selection.
func (v *TextView) Cut() {
	v.breakChains()
	if !v.selecting {
		return
	}
	if v.readOnly {
		return
	}
	v.clip.Set(v.RegionText())
	v.clearRegion()
	v.selecting = false
	v.invalidateFull()
}

// abandonSelection drops an active region after an edit.
func (v *TextView) abandonSelection() {
	if v.selecting {
		v.selecting = false
		v.invalidateFull()
	}
}

// InsertText inserts text at the cursor and recomputes the cursor from the
// resulting offset, never by walking characters: the text may contain
// newlines and multi-byte runes. Empty text is not a valid insert.
func (v *TextView) InsertText(text string) {
	v.breakChains()
	if v.readOnly || text == "" {
		return
	}
	off, err := v.offsetAt(v.row, v.col)
	if err != nil {
		return
	}
	start := Position{Row: v.row, Col: v.col}
	v.buf.Insert(off, []byte(text))
	pos, err := v.positionAt(off + len(text))
	if err != nil {
		return
	}
	v.row, v.col = pos.Row, pos.Col
	v.dirty = true
	v.abandonSelection()
	if containsNewline(text) {
		v.invalidateToEnd(start.Row)
	} else {
		v.invalidateLine(start.Row)
	}
	v.notify(Change{Start: start, End: pos, Text: text})
	v.adjust()
}

// DeleteChar deletes the rune under the cursor. No-op at the end of the
// buffer.
func (v *TextView) DeleteChar() {
	v.breakChains()
	if v.readOnly {
		return
	}
	off, err := v.offsetAt(v.row, v.col)
	if err != nil || off >= v.buf.Len() {
		return
	}
	v.deleteRange(off, off+v.runeLenAt(off))
}

// DeleteBackward deletes the rune before the cursor. No-op at the start of
// the buffer.
func (v *TextView) DeleteBackward() {
	v.breakChains()
	if v.readOnly {
		return
	}
	off, err := v.offsetAt(v.row, v.col)
	if err != nil || off == 0 {
		return
	}
	tail := v.buf.TextRange(max(0, off-utf8.UTFMax), off)
	_, size := utf8.DecodeLastRuneInString(tail)
	if size == 0 {
		size = 1
	}
	v.deleteRange(off-size, off)
}

// runeLenAt returns the byte length of the rune starting at offset.
func (v *TextView) runeLenAt(off int) int {
	s := v.buf.TextRange(off, min(off+utf8.UTFMax, v.buf.Len()))
	_, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return 1
	}
	return size
}

// deleteRange is the shared delete path: it removes [start, end), moves the
// cursor to start, marks the view dirty and reports the change.
func (v *TextView) deleteRange(start, end int) {
	if start >= end {
		return
	}
	startPos, err := v.positionAt(start)
	if err != nil {
		return
	}
	endPos, err := v.positionAt(end)
	if err != nil {
		return
	}
	removed := v.buf.TextRange(start, end)
	v.buf.Delete(start, end-start)
	v.row, v.col = startPos.Row, startPos.Col
	v.dirty = true
	v.abandonSelection()
	if containsNewline(removed) {
		v.invalidateToEnd(startPos.Row)
	} else {
		v.invalidateLine(startPos.Row)
	}
	v.notify(Change{Start: startPos, End: endPos, Text: ""})
	v.adjust()
}

// KillToEndOfLine implements the Emacs kill: a newline under the cursor is
// deleted on its own and contributes "\n"; otherwise the rest of the line is
// deleted up to, but not including, its newline (through the end of the
// buffer on the final line). Consecutive kills accumulate in the clipboard;
// any other operation in between makes the next kill replace it.
func (v *TextView) KillToEndOfLine() {
	v.colTrack = -1
	if v.readOnly {
		return
	}
	off, err := v.offsetAt(v.row, v.col)
	if err != nil {
		return
	}
	var start, end int
	if b, ok := v.buf.ByteAt(off); ok && b == '\n' {
		start, end = off, off+1
	} else {
		lineEnd, err := v.offsetAt(v.row, v.lineLen(v.row))
		if err != nil || off >= lineEnd {
			return
		}
		start, end = off, lineEnd
	}
	killed := v.buf.TextRange(start, end)
	if v.lastWasKill {
		v.clip.Append(killed)
	} else {
		v.clip.Set(killed)
	}
	v.deleteRange(start, end)
	v.lastWasKill = true
}

// Yank inserts the clipboard content at the cursor through the standard
// insert path. It never modifies the clipboard.
func (v *TextView) Yank() {
	v.breakChains()
	if v.readOnly {
		return
	}
	if text := v.clip.Text(); text != "" {
		v.InsertText(text)
	}
}
