// Package textview implements the multi-line editing view: a cursor and
// viewport over a piece-table buffer, Emacs-style mark/kill editing, word
// motions, and minimal redraw invalidation. All operations run synchronously
// on the event loop; the view assumes single-writer access.
package textview

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/teakui/teak/internal/clipboard"
	"github.com/teakui/teak/internal/textbuf"
	"github.com/teakui/teak/internal/view"
)

// Position is a zero-based (row, column) pair. Columns are byte offsets
// within the row, always aligned to a rune boundary.
type Position struct {
	Row int
	Col int
}

// Change describes one successful buffer mutation. For inserts Start is the
// insertion point and End the position just past the inserted text; for
// deletes Start/End span the removed range (pre-delete coordinates) and Text
// is empty.
type Change struct {
	Start Position
	End   Position
	Text  string
}

// TextView is the editing view. It owns the cursor, scroll origin, selection
// mark and kill chaining state; the clipboard is injected and shared.
type TextView struct {
	buf  *textbuf.PieceTable
	clip *clipboard.Clipboard

	frame view.Frame

	row, col    int
	topRow      int
	leftCol     int
	colTrack    int // sticky column for vertical motion, -1 when unset
	markRow     int
	markCol     int
	selecting   bool
	lastWasKill bool
	readOnly    bool
	dirty       bool
	invalid     view.Region
	onChange    func(Change)
}

func New(clip *clipboard.Clipboard) *TextView {
	return &TextView{
		buf:      textbuf.New(nil),
		clip:     clip,
		colTrack: -1,
	}
}

// SetFrame resizes the visible viewport and re-establishes the cursor
// visibility invariant.
func (v *TextView) SetFrame(width, height int) {
	v.frame = view.Frame{Width: width, Height: height}
	v.adjust()
	v.invalidateFull()
}

func (v *TextView) Frame() view.Frame { return v.frame }

// SetOnChange installs the change notification callback invoked after every
// successful insert or delete.
func (v *TextView) SetOnChange(fn func(Change)) { v.onChange = fn }

func (v *TextView) notify(c Change) {
	if v.onChange != nil {
		v.onChange(c)
	}
}

// Cursor returns the current cursor position.
func (v *TextView) Cursor() Position { return Position{Row: v.row, Col: v.col} }

// TopRow returns the first visible buffer row.
func (v *TextView) TopRow() int { return v.topRow }

// LeftCol returns the first visible byte column.
func (v *TextView) LeftCol() int { return v.leftCol }

// LineCount returns the buffer's line count.
func (v *TextView) LineCount() int { return v.buf.LineCount() }

// Line returns the content of a zero-based buffer row, without its newline.
func (v *TextView) Line(row int) string { return v.line(row) }

func (v *TextView) Text() string       { return v.buf.Text() }
func (v *TextView) Dirty() bool        { return v.dirty }
func (v *TextView) ReadOnly() bool     { return v.readOnly }
func (v *TextView) SetReadOnly(b bool) { v.readOnly = b }

// MarkSaved clears the dirty flag. The view never clears it itself; the
// caller does so after persisting.
func (v *TextView) MarkSaved() { v.dirty = false }

// SetText replaces the whole buffer content and resets cursor, viewport,
// selection and dirty state.
func (v *TextView) SetText(s string) {
	v.buf = textbuf.NewFromString(s)
	v.resetState()
	v.invalidateFull()
}

// LoadFile replaces the buffer with the file's bytes (EOL-normalized by the
// buffer builder). I/O errors propagate to the caller; the view is left
// unchanged on failure.
func (v *TextView) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	v.buf = textbuf.New(data)
	v.resetState()
	v.invalidateFull()
	return nil
}

// SaveFile writes the buffer to path and clears the dirty flag on success.
func (v *TextView) SaveFile(path string) error {
	if err := os.WriteFile(path, []byte(v.buf.Text()), 0o644); err != nil {
		return err
	}
	v.dirty = false
	return nil
}

func (v *TextView) resetState() {
	v.row, v.col = 0, 0
	v.topRow, v.leftCol = 0, 0
	v.colTrack = -1
	v.selecting = false
	v.lastWasKill = false
	v.dirty = false
}

// offsetAt and positionAt are the coordinate translator: zero-based wrappers
// over the buffer's 1-based lookups, exact inverses for any valid pair. They
// never clamp; callers clamp before calling.

func (v *TextView) offsetAt(row, col int) (int, error) {
	return v.buf.OffsetAt(row+1, col+1)
}

func (v *TextView) positionAt(offset int) (Position, error) {
	line, col, err := v.buf.PositionAt(offset)
	if err != nil {
		return Position{}, err
	}
	return Position{Row: line - 1, Col: col - 1}, nil
}

func (v *TextView) lastRow() int        { return v.buf.LineCount() - 1 }
func (v *TextView) lineLen(row int) int { return v.buf.LineLen(row + 1) }
func (v *TextView) line(row int) string { return v.buf.Line(row + 1) }

// alignCol clamps col to the row's length and snaps it back onto a rune
// boundary.
func (v *TextView) alignCol(row, col int) int {
	line := v.line(row)
	if col > len(line) {
		col = len(line)
	}
	for col > 0 && col < len(line) && !utf8.RuneStart(line[col]) {
		col--
	}
	return col
}

// breakChains resets the per-key sequence state: the sticky column used by
// vertical motions and the kill accumulation flag.
func (v *TextView) breakChains() {
	v.colTrack = -1
	v.lastWasKill = false
}

// adjust restores the viewport invariant after any cursor move, widening
// topRow/leftCol minimally so the cursor becomes the first or last visible
// cell. It never recenters; small shifts keep redraw regions small.
func (v *TextView) adjust() {
	changed := false
	if v.col < v.leftCol {
		v.leftCol = v.col
		changed = true
	}
	if w := v.frame.Width; w > 0 && v.col >= v.leftCol+w {
		v.leftCol = v.col - w + 1
		changed = true
	}
	if v.row < v.topRow {
		v.topRow = v.row
		changed = true
	}
	if h := v.frame.Height; h > 0 && v.row >= v.topRow+h {
		v.topRow = v.row - h + 1
		changed = true
	}
	if changed {
		v.invalidateFull()
	}
}

// ForwardChar moves one rune right, wrapping to the next line's start at a
// line end. No-op at the end of the buffer.
func (v *TextView) ForwardChar() {
	v.breakChains()
	if v.col < v.lineLen(v.row) {
		line := v.line(v.row)
		_, size := utf8.DecodeRuneInString(line[v.col:])
		v.col += size
	} else if v.row < v.lastRow() {
		v.row++
		v.col = 0
	} else {
		return
	}
	v.adjust()
}

// BackwardChar moves one rune left, wrapping to the previous line's end at a
// line start. No-op at the start of the buffer.
func (v *TextView) BackwardChar() {
	v.breakChains()
	if v.col > 0 {
		line := v.line(v.row)
		_, size := utf8.DecodeLastRuneInString(line[:v.col])
		v.col -= size
	} else if v.row > 0 {
		v.row--
		v.col = v.lineLen(v.row)
	} else {
		return
	}
	v.adjust()
}

// NextLine moves the cursor down one line, using the sticky column to pick
// the target column on the new line.
func (v *TextView) NextLine() {
	v.lastWasKill = false
	if v.row >= v.lastRow() {
		return
	}
	if v.colTrack < 0 {
		v.colTrack = v.col
	}
	v.row++
	v.col = v.alignCol(v.row, v.colTrack)
	v.adjust()
}

// PrevLine moves the cursor up one line, using the sticky column.
func (v *TextView) PrevLine() {
	v.lastWasKill = false
	if v.row == 0 {
		return
	}
	if v.colTrack < 0 {
		v.colTrack = v.col
	}
	v.row--
	v.col = v.alignCol(v.row, v.colTrack)
	v.adjust()
}

// PageDown moves down by viewport height minus one, shifting topRow by the
// same delta only when the cursor would leave the viewport.
func (v *TextView) PageDown() {
	v.lastWasKill = false
	step := v.frame.Height - 1
	if step < 1 {
		step = 1
	}
	if v.row >= v.lastRow() {
		return
	}
	if v.colTrack < 0 {
		v.colTrack = v.col
	}
	v.row = min(v.row+step, v.lastRow())
	if h := v.frame.Height; h > 0 && v.row >= v.topRow+h {
		v.topRow = min(v.topRow+step, v.lastRow())
		v.invalidateFull()
	}
	v.col = v.alignCol(v.row, v.colTrack)
	v.adjust()
}

// PageUp is the upward counterpart of PageDown.
func (v *TextView) PageUp() {
	v.lastWasKill = false
	step := v.frame.Height - 1
	if step < 1 {
		step = 1
	}
	if v.row == 0 {
		return
	}
	if v.colTrack < 0 {
		v.colTrack = v.col
	}
	v.row = max(v.row-step, 0)
	if v.row < v.topRow {
		v.topRow = max(v.topRow-step, 0)
		v.invalidateFull()
	}
	v.col = v.alignCol(v.row, v.colTrack)
	v.adjust()
}

// MoveLineStart places the cursor at column zero.
func (v *TextView) MoveLineStart() {
	v.breakChains()
	v.col = 0
	v.adjust()
}

// MoveLineEnd places the cursor past the last character of the line.
func (v *TextView) MoveLineEnd() {
	v.breakChains()
	v.col = v.lineLen(v.row)
	v.adjust()
}

// ScrollTo sets the first visible row without moving the cursor. Used for
// programmatic jumps; the row is clamped to the buffer.
func (v *TextView) ScrollTo(row int) {
	if row < 0 {
		row = 0
	}
	if last := v.lastRow(); row > last {
		row = last
	}
	if row == v.topRow {
		return
	}
	v.topRow = row
	v.invalidateFull()
}

// WordForward moves to the end of the next word run.
func (v *TextView) WordForward() {
	v.breakChains()
	if row, col, ok := v.wordForward(v.row, v.col); ok {
		v.row, v.col = row, col
		v.adjust()
	}
}

// WordBackward moves to the start of the previous word run.
func (v *TextView) WordBackward() {
	v.breakChains()
	if row, col, ok := v.wordBackward(v.row, v.col); ok {
		v.row, v.col = row, col
		v.adjust()
	}
}

// BreakKillChain ends any kill accumulation. The application calls this for
// key events it consumes without dispatching into the view, so those events
// still count against the chain.
func (v *TextView) BreakKillChain() { v.lastWasKill = false }

// HandleKey dispatches one key event into the editing core. It returns true
// when the event was consumed. Read-only violations are absorbed silently:
// the key still counts as handled.
//
// The kill chain resets once per event, here, before dispatch; only the kill
// key itself sees the previous chain state. Unbound keys therefore also end
// the chain.
func (v *TextView) HandleKey(ev *tcell.EventKey) bool {
	wasKill := v.lastWasKill
	v.lastWasKill = false

	if ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModAlt != 0 {
		switch ev.Rune() {
		case 'f':
			v.WordForward()
		case 'b':
			v.WordBackward()
		case 'w':
			v.Copy()
		case 'v':
			v.PageUp()
		case '<':
			v.moveBufferStart()
		case '>':
			v.moveBufferEnd()
		default:
			return false
		}
		return true
	}

	switch ev.Key() {
	case tcell.KeyRight, tcell.KeyCtrlF:
		v.ForwardChar()
	case tcell.KeyLeft, tcell.KeyCtrlB:
		v.BackwardChar()
	case tcell.KeyDown, tcell.KeyCtrlN:
		v.NextLine()
	case tcell.KeyUp, tcell.KeyCtrlP:
		v.PrevLine()
	case tcell.KeyPgDn, tcell.KeyCtrlV:
		v.PageDown()
	case tcell.KeyPgUp:
		v.PageUp()
	case tcell.KeyHome, tcell.KeyCtrlA:
		v.MoveLineStart()
	case tcell.KeyEnd, tcell.KeyCtrlE:
		v.MoveLineEnd()
	case tcell.KeyCtrlSpace:
		v.SetMark()
	case tcell.KeyCtrlG:
		v.CancelSelection()
	case tcell.KeyCtrlW:
		v.Cut()
	case tcell.KeyCtrlK:
		v.lastWasKill = wasKill
		v.KillToEndOfLine()
	case tcell.KeyCtrlY:
		v.Yank()
	case tcell.KeyCtrlD, tcell.KeyDelete:
		v.DeleteChar()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		v.DeleteBackward()
	case tcell.KeyEnter:
		v.InsertText("\n")
	case tcell.KeyTab:
		v.InsertText("\t")
	case tcell.KeyRune:
		v.InsertText(string(ev.Rune()))
	default:
		return false
	}
	return true
}

// SetCursor places the cursor at a buffer position, clamping both
// coordinates. Used to restore a saved editing position.
func (v *TextView) SetCursor(row, col int) {
	v.breakChains()
	if row < 0 {
		row = 0
	}
	if last := v.lastRow(); row > last {
		row = last
	}
	v.row = row
	v.col = v.alignCol(row, max(col, 0))
	v.adjust()
}

func (v *TextView) moveBufferStart() {
	v.breakChains()
	v.row, v.col = 0, 0
	v.adjust()
}

func (v *TextView) moveBufferEnd() {
	v.breakChains()
	v.row = v.lastRow()
	v.col = v.lineLen(v.row)
	v.adjust()
}

// containsNewline reports whether an edit changed the line structure, which
// widens the invalidated region from a single line to everything below it.
func containsNewline(s string) bool { return strings.ContainsRune(s, '\n') }
