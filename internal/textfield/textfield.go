// Package textfield implements a single-line input field with the same
// Emacs-style mark and kill-ring model as the multi-line view. Content is a
// rune slice; the field scrolls horizontally by tracking the first visible
// rune.
package textfield

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/teakui/teak/internal/clipboard"
	"github.com/teakui/teak/internal/view"
)

type TextField struct {
	text  []rune
	clip  *clipboard.Clipboard
	width int

	cursor      int
	first       int // first visible rune index
	mark        int
	selecting   bool
	lastWasKill bool
}

func New(clip *clipboard.Clipboard) *TextField {
	return &TextField{clip: clip}
}

// SetWidth sets the visible width in cells and keeps the cursor visible.
func (f *TextField) SetWidth(w int) {
	f.width = w
	f.adjust()
}

func (f *TextField) Text() string { return string(f.text) }

// SetText replaces the content and moves the cursor to the end.
func (f *TextField) SetText(s string) {
	f.text = []rune(s)
	f.cursor = len(f.text)
	f.selecting = false
	f.lastWasKill = false
	f.adjust()
}

// Cursor returns the cursor's rune index.
func (f *TextField) Cursor() int { return f.cursor }

func (f *TextField) adjust() {
	if f.cursor < f.first {
		f.first = f.cursor
	}
	if f.width > 0 && f.cursor >= f.first+f.width {
		f.first = f.cursor - f.width + 1
	}
	if f.first < 0 {
		f.first = 0
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (f *TextField) breakChains() { f.lastWasKill = false }

// ForwardChar moves one rune right; no-op at the end.
func (f *TextField) ForwardChar() {
	f.breakChains()
	if f.cursor < len(f.text) {
		f.cursor++
		f.adjust()
	}
}

// BackwardChar moves one rune left; no-op at the start.
func (f *TextField) BackwardChar() {
	f.breakChains()
	if f.cursor > 0 {
		f.cursor--
		f.adjust()
	}
}

func (f *TextField) MoveStart() {
	f.breakChains()
	f.cursor = 0
	f.adjust()
}

func (f *TextField) MoveEnd() {
	f.breakChains()
	f.cursor = len(f.text)
	f.adjust()
}

// WordForward skips a separator run, then the following word run.
func (f *TextField) WordForward() {
	f.breakChains()
	i := f.cursor
	for i < len(f.text) && !isWordRune(f.text[i]) {
		i++
	}
	for i < len(f.text) && isWordRune(f.text[i]) {
		i++
	}
	f.cursor = i
	f.adjust()
}

// WordBackward is the symmetric backward motion, landing on the word start.
func (f *TextField) WordBackward() {
	f.breakChains()
	i := f.cursor
	for i > 0 && !isWordRune(f.text[i-1]) {
		i--
	}
	for i > 0 && isWordRune(f.text[i-1]) {
		i--
	}
	f.cursor = i
	f.adjust()
}

// Insert splices a rune at the cursor.
func (f *TextField) Insert(r rune) {
	f.breakChains()
	f.selecting = false
	f.text = append(f.text[:f.cursor], append([]rune{r}, f.text[f.cursor:]...)...)
	f.cursor++
	f.adjust()
}

// DeleteChar removes the rune under the cursor; no-op at the end.
func (f *TextField) DeleteChar() {
	f.breakChains()
	if f.cursor >= len(f.text) {
		return
	}
	f.selecting = false
	f.text = append(f.text[:f.cursor], f.text[f.cursor+1:]...)
}

// DeleteBackward removes the rune before the cursor; no-op at the start.
func (f *TextField) DeleteBackward() {
	f.breakChains()
	if f.cursor == 0 {
		return
	}
	f.selecting = false
	f.text = append(f.text[:f.cursor-1], f.text[f.cursor:]...)
	f.cursor--
	f.adjust()
}

// KillToEnd deletes from the cursor to the end of the field. Consecutive
// kills accumulate in the clipboard.
func (f *TextField) KillToEnd() {
	if f.cursor >= len(f.text) {
		return
	}
	killed := string(f.text[f.cursor:])
	if f.lastWasKill {
		f.clip.Append(killed)
	} else {
		f.clip.Set(killed)
	}
	f.text = f.text[:f.cursor]
	f.selecting = false
	f.lastWasKill = true
}

// Yank inserts the clipboard at the cursor. Newlines have no meaning in a
// single-line field and are inserted as-is by upstream filtering; here we
// keep only the first line.
func (f *TextField) Yank() {
	f.breakChains()
	text := []rune(f.clip.Text())
	for i, r := range text {
		if r == '\n' {
			text = text[:i]
			break
		}
	}
	if len(text) == 0 {
		return
	}
	f.selecting = false
	f.text = append(f.text[:f.cursor], append(text, f.text[f.cursor:]...)...)
	f.cursor += len(text)
	f.adjust()
}

// SetMark records the cursor as one end of the region.
func (f *TextField) SetMark() {
	f.breakChains()
	f.mark = f.cursor
	f.selecting = true
}

func (f *TextField) regionBounds() (int, int, bool) {
	if !f.selecting {
		return 0, 0, false
	}
	a, b := f.mark, f.cursor
	if a > b {
		a, b = b, a
	}
	return a, b, true
}

// Copy writes the marked region to the clipboard and drops the selection.
func (f *TextField) Copy() {
	f.breakChains()
	start, end, ok := f.regionBounds()
	if !ok {
		return
	}
	f.clip.Set(string(f.text[start:end]))
	f.selecting = false
}

// Cut writes the marked region to the clipboard and deletes it.
func (f *TextField) Cut() {
	f.breakChains()
	start, end, ok := f.regionBounds()
	if !ok {
		return
	}
	f.clip.Set(string(f.text[start:end]))
	f.text = append(f.text[:start], f.text[end:]...)
	f.cursor = start
	f.selecting = false
	f.adjust()
}

// HandleKey dispatches one key event; it reports whether the event was
// consumed.
func (f *TextField) HandleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModAlt != 0 {
		switch ev.Rune() {
		case 'f':
			f.WordForward()
		case 'b':
			f.WordBackward()
		case 'w':
			f.Copy()
		default:
			return false
		}
		return true
	}
	switch ev.Key() {
	case tcell.KeyRight, tcell.KeyCtrlF:
		f.ForwardChar()
	case tcell.KeyLeft, tcell.KeyCtrlB:
		f.BackwardChar()
	case tcell.KeyHome, tcell.KeyCtrlA:
		f.MoveStart()
	case tcell.KeyEnd, tcell.KeyCtrlE:
		f.MoveEnd()
	case tcell.KeyCtrlSpace:
		f.SetMark()
	case tcell.KeyCtrlW:
		f.Cut()
	case tcell.KeyCtrlK:
		f.KillToEnd()
	case tcell.KeyCtrlY:
		f.Yank()
	case tcell.KeyCtrlD, tcell.KeyDelete:
		f.DeleteChar()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		f.DeleteBackward()
	case tcell.KeyRune:
		f.Insert(ev.Rune())
	default:
		return false
	}
	return true
}

// Draw paints the field's single row through the painter.
func (f *TextField) Draw(p view.Painter) {
	selStart, selEnd, selActive := f.regionBounds()
	p.Goto(0, 0)
	attr := view.AttrNormal
	p.SetAttr(attr)
	cells := 0
	for i := f.first; i < len(f.text); i++ {
		if f.width > 0 && cells >= f.width {
			break
		}
		want := view.AttrNormal
		if selActive && i >= selStart && i <= selEnd {
			want = view.AttrSelection
		}
		if want != attr {
			attr = want
			p.SetAttr(attr)
		}
		p.AddRune(f.text[i])
		w := runewidth.RuneWidth(f.text[i])
		if w < 1 {
			w = 1
		}
		cells += w
	}
	if f.width > 0 && cells < f.width {
		p.SetAttr(view.AttrNormal)
		p.ClearRegion(cells, 0, f.width-1, 0)
	}
}

// CursorScreenPos returns the cursor's cell within the field.
func (f *TextField) CursorScreenPos() int {
	x := 0
	for i := f.first; i < f.cursor && i < len(f.text); i++ {
		w := runewidth.RuneWidth(f.text[i])
		if w < 1 {
			w = 1
		}
		x += w
	}
	return x
}
