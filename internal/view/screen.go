package view

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// ScreenPainter adapts a tcell screen to the Painter interface. It paints
// relative to a fixed origin so a view never needs to know where it sits on
// the terminal.
type ScreenPainter struct {
	screen    tcell.Screen
	originX   int
	originY   int
	normal    tcell.Style
	selection tcell.Style

	col, row int
	style    tcell.Style
}

func NewScreenPainter(s tcell.Screen, originX, originY int, normal, selection tcell.Style) *ScreenPainter {
	return &ScreenPainter{
		screen:    s,
		originX:   originX,
		originY:   originY,
		normal:    normal,
		selection: selection,
		style:     normal,
	}
}

func (p *ScreenPainter) Goto(col, row int) {
	p.col = col
	p.row = row
}

func (p *ScreenPainter) AddRune(r rune) {
	p.screen.SetContent(p.originX+p.col, p.originY+p.row, r, nil, p.style)
	w := runewidth.RuneWidth(r)
	if w < 1 {
		w = 1
	}
	p.col += w
}

func (p *ScreenPainter) AddString(s string) {
	for _, r := range s {
		p.AddRune(r)
	}
}

func (p *ScreenPainter) SetAttr(a Attr) {
	if a == AttrSelection {
		p.style = p.selection
		return
	}
	p.style = p.normal
}

func (p *ScreenPainter) ClearRegion(left, top, right, bottom int) {
	for y := top; y <= bottom; y++ {
		for x := left; x <= right; x++ {
			p.screen.SetContent(p.originX+x, p.originY+y, ' ', nil, p.normal)
		}
	}
}
