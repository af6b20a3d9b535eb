// Package app wires the pieces into a runnable editor: terminal lifecycle,
// config and logging, the text view with its injected clipboard, and the
// tree-sitter highlighter attached to the view's change notifications.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/teakui/teak/internal/clipboard"
	"github.com/teakui/teak/internal/config"
	"github.com/teakui/teak/internal/gitinfo"
	"github.com/teakui/teak/internal/highlight"
	"github.com/teakui/teak/internal/logger"
	"github.com/teakui/teak/internal/session"
	"github.com/teakui/teak/internal/textfield"
	"github.com/teakui/teak/internal/textview"
	"github.com/teakui/teak/internal/view"
)

// App is the top-level runtime for teak.
type App struct {
	args []string

	screen tcell.Screen
	clip   *clipboard.Clipboard
	ed     *textview.TextView
	hl     *highlight.Engine
	sess   *session.Manager
	path   string
	branch string
	status string

	// Active status-row prompt, nil when the text view owns the keyboard.
	prompt      *textfield.TextField
	promptLabel string
	promptDone  func(string)

	styleMain      tcell.Style
	styleStatus    tcell.Style
	styleSelection tcell.Style
	kindStyles     map[string]tcell.Style
}

func New(args []string) *App {
	return &App{args: args}
}

func (a *App) Run() error {
	runtime.LockOSThread()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Debug); err != nil {
		return err
	}
	defer logger.Close()

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnableMouse()
	defer s.Fini()
	a.screen = s
	a.applyTheme(cfg.Theme)

	a.clip = clipboard.New()
	a.ed = textview.New(a.clip)
	a.ed.SetReadOnly(cfg.Editor.ReadOnly)

	if sm, err := session.NewManager(); err != nil {
		logger.Warn("session unavailable", "err", err)
	} else {
		a.sess = sm
	}

	if len(a.args) > 0 {
		a.path = a.args[0]
		if err := a.ed.LoadFile(a.path); err != nil {
			if !os.IsNotExist(err) {
				return err
			}
			// New file: start from an empty buffer, save creates it.
			logger.Info("opening new file", "path", a.path)
		}
		a.branch = gitinfo.Branch(a.path)
		a.restorePosition()
		if filepath.Ext(a.path) == ".go" {
			eng, err := highlight.NewGo()
			if err != nil {
				logger.Warn("highlighter unavailable", "err", err)
			} else {
				a.hl = eng
				defer a.hl.Close()
				a.hl.Parse(a.ed.Text())
				a.ed.SetOnChange(func(textview.Change) {
					a.hl.Parse(a.ed.Text())
				})
			}
		}
	}

	if a.branch == "" {
		if cwd, err := os.Getwd(); err == nil {
			a.branch = gitinfo.Branch(cwd)
		}
	}

	w, h := s.Size()
	a.layout(w, h)
	a.render(view.Region{Kind: view.RegionFull})

	for {
		ev := s.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case a.prompt != nil:
				a.handlePromptKey(ev)
			case ev.Key() == tcell.KeyCtrlQ:
				a.savePosition()
				return nil
			case ev.Key() == tcell.KeyCtrlS:
				a.ed.BreakKillChain()
				a.save()
			case ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModAlt != 0 && ev.Rune() == 'g':
				a.ed.BreakKillChain()
				a.openGotoLine()
			default:
				a.status = ""
				if !a.ed.HandleKey(ev) {
					continue
				}
			}
		case *tcell.EventMouse:
			a.handleMouse(ev)
		case *tcell.EventResize:
			s.Sync()
			w, h := s.Size()
			a.layout(w, h)
		}
		a.render(a.ed.ConsumeInvalid())
	}
}

// layout gives the whole screen minus the status row to the text view.
func (a *App) layout(w, h int) {
	vh := h - 1
	if vh < 0 {
		vh = 0
	}
	a.ed.SetFrame(w, vh)
	if a.prompt != nil {
		a.prompt.SetWidth(promptWidth(w, a.promptLabel))
	}
}

func promptWidth(screenWidth int, label string) int {
	w := screenWidth - runewidth.StringWidth(label)
	if w < 1 {
		w = 1
	}
	return w
}

// openPrompt replaces the status row with a single-line input until the user
// commits with Enter or cancels with Escape or Ctrl+G. The field shares the
// editor's kill ring.
func (a *App) openPrompt(label, initial string, done func(string)) {
	f := textfield.New(a.clip)
	f.SetText(initial)
	w, _ := a.screen.Size()
	f.SetWidth(promptWidth(w, label))
	a.prompt = f
	a.promptLabel = label
	a.promptDone = done
}

func (a *App) closePrompt() {
	a.prompt = nil
	a.promptLabel = ""
	a.promptDone = nil
}

func (a *App) handlePromptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		done, text := a.promptDone, a.prompt.Text()
		a.closePrompt()
		done(text)
	case tcell.KeyEsc, tcell.KeyCtrlG:
		a.closePrompt()
		a.status = ""
	default:
		a.prompt.HandleKey(ev)
	}
}

func (a *App) openGotoLine() {
	a.openPrompt("Goto line: ", "", func(text string) {
		line, err := parseLineNumber(text)
		if err != nil {
			a.status = err.Error()
			return
		}
		a.ed.SetCursor(line-1, 0)
	})
}

// parseLineNumber parses a 1-based line number from prompt input.
func parseLineNumber(text string) (int, error) {
	text = strings.TrimSpace(text)
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("not a line number: %q", text)
	}
	return n, nil
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		a.ed.ScrollTo(a.ed.TopRow() - 3)
	case ev.Buttons()&tcell.WheelDown != 0:
		a.ed.ScrollTo(a.ed.TopRow() + 3)
	case ev.Buttons()&tcell.Button1 != 0:
		if y < a.ed.Frame().Height {
			a.ed.MoveTo(x, y)
		}
	}
}

// restorePosition moves the cursor and viewport back to where this file was
// last closed.
func (a *App) restorePosition() {
	if a.sess == nil || a.path == "" {
		return
	}
	abs, err := filepath.Abs(a.path)
	if err != nil {
		return
	}
	state, ok := a.sess.FileState(abs)
	if !ok {
		return
	}
	a.ed.SetCursor(state.CursorRow, state.CursorCol)
	a.ed.ScrollTo(state.TopRow)
}

func (a *App) savePosition() {
	if a.sess == nil || a.path == "" {
		return
	}
	abs, err := filepath.Abs(a.path)
	if err != nil {
		return
	}
	pos := a.ed.Cursor()
	a.sess.SetFileState(abs, session.FileState{
		CursorRow: pos.Row,
		CursorCol: pos.Col,
		TopRow:    a.ed.TopRow(),
	})
	if err := a.sess.Save(); err != nil {
		logger.Warn("session save failed", "err", err)
	}
}

func (a *App) save() {
	if a.path == "" {
		a.openPrompt("Save as: ", "", func(text string) {
			path := strings.TrimSpace(text)
			if path == "" {
				a.status = "save canceled"
				return
			}
			a.path = path
			a.save()
			if a.branch == "" {
				a.branch = gitinfo.Branch(a.path)
			}
		})
		return
	}
	if err := a.ed.SaveFile(a.path); err != nil {
		logger.Error("save failed", "path", a.path, "err", err)
		a.status = err.Error()
		return
	}
	a.status = "saved " + a.path
}

func (a *App) applyTheme(t config.Theme) {
	fg := tcell.GetColor(t.Foreground)
	bg := tcell.GetColor(t.Background)
	a.styleMain = tcell.StyleDefault.Foreground(fg).Background(bg)
	a.styleStatus = tcell.StyleDefault.
		Foreground(tcell.GetColor(t.StatuslineForeground)).
		Background(tcell.GetColor(t.StatuslineBackground))
	a.styleSelection = tcell.StyleDefault.
		Foreground(tcell.GetColor(t.SelectionForeground)).
		Background(tcell.GetColor(t.SelectionBackground))
	a.kindStyles = map[string]tcell.Style{
		"keyword":  a.styleMain.Foreground(tcell.GetColor(t.SyntaxKeyword)),
		"string":   a.styleMain.Foreground(tcell.GetColor(t.SyntaxString)),
		"comment":  a.styleMain.Foreground(tcell.GetColor(t.SyntaxComment)),
		"type":     a.styleMain.Foreground(tcell.GetColor(t.SyntaxType)),
		"function": a.styleMain.Foreground(tcell.GetColor(t.SyntaxFunction)),
		"number":   a.styleMain.Foreground(tcell.GetColor(t.SyntaxNumber)),
	}
}

func (a *App) render(region view.Region) {
	if region.Kind != view.RegionNone {
		p := view.NewScreenPainter(a.screen, 0, 0, a.styleMain, a.styleSelection)
		a.ed.Draw(p, region)
		if a.hl != nil && !a.ed.Selecting() {
			a.overlayHighlights(region)
		}
	}
	if a.prompt != nil {
		a.renderPrompt()
	} else {
		a.renderStatusline()
		if x, y, ok := a.ed.CursorScreenPos(); ok {
			a.screen.ShowCursor(x, y)
		} else {
			a.screen.HideCursor()
		}
	}
	a.screen.Show()
}

// overlayHighlights repaints the syntax-colored runes of the rows the view
// just drew. Tree-sitter columns are byte columns, the same unit the view
// scrolls by.
func (a *App) overlayHighlights(region view.Region) {
	frame := a.ed.Frame()
	from, to := 0, frame.Height-1
	switch region.Kind {
	case view.RegionLine:
		from, to = region.Row, region.Row
	case view.RegionToEnd:
		from = region.Row
	}
	if from < 0 {
		from = 0
	}
	top := a.ed.TopRow()
	last := a.ed.LineCount() - 1
	if top+to > last {
		to = last - top
	}
	spans := a.hl.Highlights(top+from, top+to)
	if spans == nil {
		return
	}
	for y := from; y <= to; y++ {
		row := top + y
		lineSpans := spans[row]
		if len(lineSpans) == 0 {
			continue
		}
		line := a.ed.Line(row)
		left := a.ed.LeftCol()
		cells := 0
		for byteCol, r := range line {
			if byteCol < left {
				continue
			}
			if cells >= frame.Width {
				break
			}
			if style, ok := a.spanStyle(lineSpans, byteCol); ok {
				a.screen.SetContent(cells, y, r, nil, style)
			}
			w := runewidth.RuneWidth(r)
			if w < 1 {
				w = 1
			}
			cells += w
		}
	}
}

func (a *App) spanStyle(spans []highlight.Span, col int) (tcell.Style, bool) {
	for _, sp := range spans {
		if col >= sp.StartCol && col < sp.EndCol {
			if style, ok := a.kindStyles[sp.Kind]; ok {
				return style, true
			}
		}
	}
	return tcell.Style{}, false
}

// renderPrompt paints the label and input field over the status row and
// parks the terminal cursor inside the field.
func (a *App) renderPrompt() {
	w, h := a.screen.Size()
	if h < 1 {
		return
	}
	y := h - 1
	col := 0
	for _, r := range a.promptLabel {
		if col >= w {
			break
		}
		a.screen.SetContent(col, y, r, nil, a.styleStatus)
		col += runewidth.RuneWidth(r)
	}
	p := view.NewScreenPainter(a.screen, col, y, a.styleStatus, a.styleSelection)
	a.prompt.Draw(p)
	a.screen.ShowCursor(col+a.prompt.CursorScreenPos(), y)
}

func (a *App) renderStatusline() {
	w, h := a.screen.Size()
	if h < 1 {
		return
	}
	y := h - 1
	name := a.path
	if name == "" {
		name = "[no name]"
	}
	marker := ""
	if a.ed.Dirty() {
		marker = " *"
	}
	if a.ed.ReadOnly() {
		marker += " [RO]"
	}
	pos := a.ed.Cursor()
	left := fmt.Sprintf(" %s%s", name, marker)
	right := fmt.Sprintf("%d:%d ", pos.Row+1, pos.Col+1)
	if a.branch != "" {
		right = fmt.Sprintf("git:%s  %s", a.branch, right)
	}
	if a.status != "" {
		left += "  " + a.status
	}
	line := left
	for len(line) < w-len(right) {
		line += " "
	}
	line += right
	col := 0
	for _, r := range line {
		if col >= w {
			break
		}
		a.screen.SetContent(col, y, r, nil, a.styleStatus)
		col += runewidth.RuneWidth(r)
	}
}
