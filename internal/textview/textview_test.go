package textview

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/teakui/teak/internal/clipboard"
	"github.com/teakui/teak/internal/view"
)

func newTestView(text string) *TextView {
	v := New(clipboard.New())
	v.SetText(text)
	v.SetFrame(80, 24)
	v.ConsumeInvalid()
	return v
}

func wantCursor(t *testing.T, v *TextView, row, col int) {
	t.Helper()
	if v.row != row || v.col != col {
		t.Fatalf("cursor = (%d, %d), want (%d, %d)", v.row, v.col, row, col)
	}
}

func TestForwardBackwardWrap(t *testing.T) {
	v := newTestView("ab\ncd")
	v.ForwardChar()
	v.ForwardChar()
	wantCursor(t, v, 0, 2)
	v.ForwardChar() // wrap to next line
	wantCursor(t, v, 1, 0)
	v.BackwardChar() // wrap back to previous line end
	wantCursor(t, v, 0, 2)
}

func TestClampingIdempotence(t *testing.T) {
	v := newTestView("ab\ncd")

	v.BackwardChar()
	v.PrevLine()
	v.PageUp()
	wantCursor(t, v, 0, 0)
	if v.topRow != 0 || v.leftCol != 0 {
		t.Fatalf("viewport = (%d, %d), want (0, 0)", v.topRow, v.leftCol)
	}

	v.moveBufferEnd()
	wantCursor(t, v, 1, 2)
	v.ForwardChar()
	v.NextLine()
	v.PageDown()
	wantCursor(t, v, 1, 2)
	if v.topRow != 0 || v.leftCol != 0 {
		t.Fatalf("viewport = (%d, %d), want (0, 0)", v.topRow, v.leftCol)
	}
}

func TestColumnTrackStickiness(t *testing.T) {
	v := newTestView("aaaaaaaaaa\nbbb\ncccccccccc")
	v.SetCursor(0, 8)

	v.NextLine()
	wantCursor(t, v, 1, 3) // short line clamps
	v.NextLine()
	wantCursor(t, v, 2, 8) // sticky column restored
	v.PrevLine()
	wantCursor(t, v, 1, 3)
	v.PrevLine()
	wantCursor(t, v, 0, 8)
}

func TestColumnTrackClearedByHorizontalMove(t *testing.T) {
	v := newTestView("aaaaaaaaaa\nbbb\ncccccccccc")
	v.SetCursor(0, 8)
	v.NextLine()
	wantCursor(t, v, 1, 3)
	v.BackwardChar() // breaks the vertical sequence
	v.NextLine()
	wantCursor(t, v, 2, 2) // tracks the new column, not 8
}

func TestMoveLineStartEnd(t *testing.T) {
	v := newTestView("hello world")
	v.MoveLineEnd()
	wantCursor(t, v, 0, 11)
	v.MoveLineStart()
	wantCursor(t, v, 0, 0)
}

func TestLineEndScrollsLeftColumn(t *testing.T) {
	v := New(clipboard.New())
	v.SetText("0123456789012345678901234567890123456789")
	v.SetFrame(10, 5)
	v.MoveLineEnd()
	wantCursor(t, v, 0, 40)
	if want := 40 - 10 + 1; v.leftCol != want {
		t.Fatalf("leftCol = %d, want %d", v.leftCol, want)
	}
	v.MoveLineStart()
	if v.leftCol != 0 {
		t.Fatalf("leftCol = %d, want 0", v.leftCol)
	}
}

func TestAdjustMinimalVerticalScroll(t *testing.T) {
	v := New(clipboard.New())
	v.SetText("0\n1\n2\n3\n4\n5\n6\n7\n8\n9")
	v.SetFrame(10, 5)
	for i := 0; i < 7; i++ {
		v.NextLine()
	}
	wantCursor(t, v, 7, 0)
	// Cursor becomes the last visible row, not the centered one.
	if v.topRow != 3 {
		t.Fatalf("topRow = %d, want 3", v.topRow)
	}
}

func TestPageDownShiftsTopRow(t *testing.T) {
	v := New(clipboard.New())
	v.SetText("0\n1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n13\n14")
	v.SetFrame(10, 5)

	v.PageDown()
	wantCursor(t, v, 4, 0)
	if v.topRow != 0 {
		t.Fatalf("topRow = %d, want 0 (cursor still visible)", v.topRow)
	}
	v.PageDown()
	wantCursor(t, v, 8, 0)
	if v.topRow != 4 {
		t.Fatalf("topRow = %d, want 4 (shifted by step)", v.topRow)
	}
	v.PageUp()
	wantCursor(t, v, 4, 0)
	if v.topRow != 4 {
		t.Fatalf("topRow = %d, want 4", v.topRow)
	}
}

func TestScrollToLeavesCursor(t *testing.T) {
	v := New(clipboard.New())
	v.SetText("0\n1\n2\n3\n4\n5\n6\n7\n8\n9")
	v.SetFrame(10, 3)
	v.ScrollTo(5)
	if v.topRow != 5 {
		t.Fatalf("topRow = %d, want 5", v.topRow)
	}
	wantCursor(t, v, 0, 0)
	v.ScrollTo(100)
	if v.topRow != 9 {
		t.Fatalf("topRow = %d, want 9 (clamped)", v.topRow)
	}
	v.ScrollTo(-3)
	if v.topRow != 0 {
		t.Fatalf("topRow = %d, want 0 (clamped)", v.topRow)
	}
}

func TestInsertPositionConsistency(t *testing.T) {
	v := newTestView("hello world")
	v.SetCursor(0, 5)
	offBefore, err := v.offsetAt(0, 5)
	if err != nil {
		t.Fatalf("offsetAt: %v", err)
	}
	v.InsertText("ab\n")
	wantCursor(t, v, 1, 0)
	pos, err := v.positionAt(offBefore + 3)
	if err != nil {
		t.Fatalf("positionAt: %v", err)
	}
	if pos != (Position{Row: 1, Col: 0}) {
		t.Fatalf("positionAt = %+v, want {1 0}", pos)
	}
	if got := v.Text(); got != "helloab\n world" {
		t.Fatalf("Text = %q", got)
	}
	if !v.Dirty() {
		t.Fatalf("Dirty = false after insert")
	}
}

func TestDeleteBackwardAcrossNewline(t *testing.T) {
	v := newTestView("ab\ncd")
	v.SetCursor(1, 0)
	v.DeleteBackward()
	wantCursor(t, v, 0, 2)
	if got := v.Text(); got != "abcd" {
		t.Fatalf("Text = %q", got)
	}
	// At the very start both deletes are no-ops.
	v.SetCursor(0, 0)
	v.DeleteBackward()
	if got := v.Text(); got != "abcd" {
		t.Fatalf("Text = %q after boundary delete", got)
	}
	v.moveBufferEnd()
	v.DeleteChar()
	if got := v.Text(); got != "abcd" {
		t.Fatalf("Text = %q after end delete", got)
	}
}

func TestSelectionNormalization(t *testing.T) {
	v := newTestView("0123456789012345678901234567890123456789012345678901234567890")
	v.SetCursor(0, 50)
	v.SetMark()
	v.SetCursor(0, 20)
	start, end, ok := v.regionBounds()
	if !ok {
		t.Fatalf("regionBounds ok = false")
	}
	if start != 20 || end != 50 {
		t.Fatalf("bounds = (%d, %d), want (20, 50)", start, end)
	}
}

func TestPointInSelection(t *testing.T) {
	v := newTestView("abcdef")
	v.SetCursor(0, 1)
	v.SetMark()
	v.SetCursor(0, 4)
	if !v.pointInSelection(0, 1) || !v.pointInSelection(0, 4) {
		t.Fatalf("selection should include both ends")
	}
	if v.pointInSelection(0, 0) || v.pointInSelection(0, 5) {
		t.Fatalf("selection should exclude outside columns")
	}
}

func TestCopyLeavesBuffer(t *testing.T) {
	v := newTestView("hello world")
	v.SetCursor(0, 0)
	v.SetMark()
	v.SetCursor(0, 5)
	v.Copy()
	if got := v.clip.Text(); got != "hello" {
		t.Fatalf("clipboard = %q", got)
	}
	if v.selecting {
		t.Fatalf("selecting = true after copy")
	}
	if got := v.Text(); got != "hello world" {
		t.Fatalf("Text = %q", got)
	}
	if v.Dirty() {
		t.Fatalf("Dirty = true after copy")
	}
}

func TestEndToEndCut(t *testing.T) {
	v := newTestView("line one\nline two\nline three")
	v.WordForward()
	wantCursor(t, v, 0, 4)
	v.SetMark()
	v.NextLine()
	v.NextLine()
	v.MoveLineEnd()
	v.Cut()
	if got := v.clip.Text(); got != " one\nline two\nline three" {
		t.Fatalf("clipboard = %q", got)
	}
	if got := v.Text(); got != "line" {
		t.Fatalf("Text = %q", got)
	}
	wantCursor(t, v, 0, 4)
	if v.selecting {
		t.Fatalf("selecting = true after cut")
	}
}

func TestKillAccumulation(t *testing.T) {
	v := newTestView("abc\ndef")
	v.KillToEndOfLine()
	if got := v.clip.Text(); got != "abc" {
		t.Fatalf("clipboard = %q", got)
	}
	v.KillToEndOfLine() // cursor now sits on the newline
	if got := v.clip.Text(); got != "abc\n" {
		t.Fatalf("clipboard = %q", got)
	}
	v.KillToEndOfLine()
	if got := v.clip.Text(); got != "abc\ndef" {
		t.Fatalf("clipboard = %q", got)
	}
	if got := v.Text(); got != "" {
		t.Fatalf("Text = %q", got)
	}
}

func TestKillChainResetsPerKeyEvent(t *testing.T) {
	v := newTestView("abc\ndef")
	v.HandleKey(tcell.NewEventKey(tcell.KeyCtrlK, 0, tcell.ModNone))
	v.HandleKey(tcell.NewEventKey(tcell.KeyCtrlK, 0, tcell.ModNone))
	if got := v.clip.Text(); got != "abc\n" {
		t.Fatalf("clipboard = %q, want accumulation", got)
	}
	// An unbound key is still an event and ends the chain.
	if v.HandleKey(tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone)) {
		t.Fatalf("unbound key consumed")
	}
	v.HandleKey(tcell.NewEventKey(tcell.KeyCtrlK, 0, tcell.ModNone))
	if got := v.clip.Text(); got != "def" {
		t.Fatalf("clipboard = %q, want replacement", got)
	}
}

func TestBreakKillChain(t *testing.T) {
	v := newTestView("abc\ndef")
	v.KillToEndOfLine()
	v.BreakKillChain()
	v.KillToEndOfLine()
	if got := v.clip.Text(); got != "\n" {
		t.Fatalf("clipboard = %q, want replacement", got)
	}
}

func TestKillChainBrokenByMove(t *testing.T) {
	v := newTestView("abc\ndef")
	v.KillToEndOfLine()
	v.ForwardChar() // any non-kill operation breaks the chain
	v.BackwardChar()
	v.KillToEndOfLine()
	if got := v.clip.Text(); got != "\n" {
		t.Fatalf("clipboard = %q, want replacement not accumulation", got)
	}
}

func TestKillOnLastLineWithoutNewline(t *testing.T) {
	v := newTestView("ab\ncd")
	v.SetCursor(1, 1)
	v.KillToEndOfLine()
	if got := v.clip.Text(); got != "d" {
		t.Fatalf("clipboard = %q", got)
	}
	if got := v.Text(); got != "ab\nc" {
		t.Fatalf("Text = %q", got)
	}
	// Nothing left to kill at the buffer end.
	v.KillToEndOfLine()
	if got := v.Text(); got != "ab\nc" {
		t.Fatalf("Text = %q after boundary kill", got)
	}
}

func TestYankRoundTrip(t *testing.T) {
	v := newTestView("one two")
	v.SetCursor(0, 3)
	v.KillToEndOfLine()
	if got := v.Text(); got != "one" {
		t.Fatalf("Text = %q", got)
	}
	v.Yank()
	if got := v.Text(); got != "one two" {
		t.Fatalf("Text = %q after yank", got)
	}
	wantCursor(t, v, 0, 7)
	// Yank leaves the clipboard intact.
	v.Yank()
	if got := v.Text(); got != "one two two" {
		t.Fatalf("Text = %q after second yank", got)
	}
}

func TestReadOnlyGuard(t *testing.T) {
	v := newTestView("hello world")
	v.SetReadOnly(true)

	v.InsertText("x")
	v.DeleteChar()
	v.DeleteBackward()
	v.KillToEndOfLine()
	v.Yank()
	if got := v.Text(); got != "hello world" {
		t.Fatalf("Text = %q, want unchanged", got)
	}
	if v.Dirty() {
		t.Fatalf("Dirty = true on read-only view")
	}

	// Navigation and copy still work.
	v.ForwardChar()
	wantCursor(t, v, 0, 1)
	v.SetMark()
	v.MoveLineEnd()
	v.Copy()
	if got := v.clip.Text(); got != "ello world" {
		t.Fatalf("clipboard = %q", got)
	}
	v.SetMark()
	v.MoveLineStart()
	v.Cut()
	if got := v.Text(); got != "hello world" {
		t.Fatalf("Text = %q after read-only cut", got)
	}
}

func TestChangeNotification(t *testing.T) {
	v := newTestView("hello")
	var changes []Change
	v.SetOnChange(func(c Change) { changes = append(changes, c) })

	v.SetCursor(0, 5)
	v.InsertText(" world")
	v.SetCursor(0, 0)
	v.DeleteChar()

	if len(changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(changes))
	}
	ins := changes[0]
	if ins.Start != (Position{0, 5}) || ins.End != (Position{0, 11}) || ins.Text != " world" {
		t.Fatalf("insert change = %+v", ins)
	}
	del := changes[1]
	if del.Start != (Position{0, 0}) || del.End != (Position{0, 1}) || del.Text != "" {
		t.Fatalf("delete change = %+v", del)
	}
}

func TestInvalidationRegions(t *testing.T) {
	v := New(clipboard.New())
	v.SetText("aa\nbb\ncc\ndd")
	v.SetFrame(10, 4)
	v.ConsumeInvalid()

	// Pure cursor motion inside the viewport invalidates nothing.
	v.ForwardChar()
	if r := v.ConsumeInvalid(); r.Kind != view.RegionNone {
		t.Fatalf("region after motion = %v", r.Kind)
	}

	// In-line edit invalidates a single view row.
	v.InsertText("x")
	r := v.ConsumeInvalid()
	if r.Kind != view.RegionLine || r.Row != 0 {
		t.Fatalf("region after insert = %+v", r)
	}

	// Structural edit invalidates to the end of the view.
	v.InsertText("\n")
	r = v.ConsumeInvalid()
	if r.Kind != view.RegionToEnd || r.Row != 0 {
		t.Fatalf("region after newline = %+v", r)
	}

	// Scrolling invalidates everything.
	v.ScrollTo(2)
	if r := v.ConsumeInvalid(); r.Kind != view.RegionFull {
		t.Fatalf("region after scroll = %v", r.Kind)
	}
}

func TestLoadAndSaveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("alpha\r\nbeta"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	v := newTestView("stale")
	v.SetCursor(0, 3)
	if err := v.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := v.Text(); got != "alpha\nbeta" {
		t.Fatalf("Text = %q (EOL not normalized?)", got)
	}
	wantCursor(t, v, 0, 0)
	if v.Dirty() {
		t.Fatalf("Dirty = true after load")
	}

	v.InsertText("x")
	if !v.Dirty() {
		t.Fatalf("Dirty = false after edit")
	}
	out := filepath.Join(dir, "out.txt")
	if err := v.SaveFile(out); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	if v.Dirty() {
		t.Fatalf("Dirty = true after save")
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "xalpha\nbeta" {
		t.Fatalf("saved = %q", data)
	}

	if err := v.LoadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatalf("LoadFile on missing file: expected error")
	}
}

func TestEditAbandonsSelection(t *testing.T) {
	v := newTestView("hello")
	v.SetMark()
	v.MoveLineEnd()
	if !v.selecting {
		t.Fatalf("selecting = false after mark")
	}
	v.InsertText("!")
	if v.selecting {
		t.Fatalf("selecting = true after edit")
	}
}

func TestMoveToClampsClick(t *testing.T) {
	v := New(clipboard.New())
	v.SetText("short\nlonger line")
	v.SetFrame(40, 10)
	v.MoveTo(30, 0) // past the line end
	wantCursor(t, v, 0, 5)
	v.MoveTo(2, 7) // past the last row
	wantCursor(t, v, 1, 2)
}
