package textview

import (
	"github.com/mattn/go-runewidth"

	"github.com/teakui/teak/internal/view"
)

// Invalidation tracking. After each operation the view holds the minimal
// region needing repaint: one line for in-line edits, line-to-end for edits
// that change line structure, full for scroll changes. Rows in the region
// are view-relative.

func (v *TextView) invalidateLine(bufRow int) {
	v.invalid = v.invalid.Merge(view.Region{Kind: view.RegionLine, Row: bufRow - v.topRow})
}

func (v *TextView) invalidateToEnd(bufRow int) {
	v.invalid = v.invalid.Merge(view.Region{Kind: view.RegionToEnd, Row: bufRow - v.topRow})
}

func (v *TextView) invalidateFull() {
	v.invalid = v.invalid.Merge(view.Region{Kind: view.RegionFull})
}

// ConsumeInvalid returns the pending invalid region and resets it. The event
// loop calls this once per processed event to decide what to repaint.
func (v *TextView) ConsumeInvalid() view.Region {
	r := v.invalid
	v.invalid = view.Region{}
	return r
}

// Draw paints the region's rows through the painter. RegionNone paints
// nothing; callers pass ConsumeInvalid's result, or a full region for the
// first paint.
func (v *TextView) Draw(p view.Painter, region view.Region) {
	from, to := 0, v.frame.Height-1
	switch region.Kind {
	case view.RegionNone:
		return
	case view.RegionLine:
		from, to = region.Row, region.Row
	case view.RegionToEnd:
		from = region.Row
	}
	if from < 0 {
		from = 0
	}
	if to >= v.frame.Height {
		to = v.frame.Height - 1
	}

	selStart, selEnd, selActive := v.regionBounds()
	for y := from; y <= to; y++ {
		row := v.topRow + y
		if row > v.lastRow() {
			p.SetAttr(view.AttrNormal)
			p.ClearRegion(0, y, v.frame.Width-1, y)
			continue
		}
		v.drawLine(p, y, row, selStart, selEnd, selActive)
	}
}

func (v *TextView) drawLine(p view.Painter, y, row, selStart, selEnd int, selActive bool) {
	line := v.line(row)
	rowStart, err := v.offsetAt(row, 0)
	if err != nil {
		return
	}
	p.Goto(0, y)
	cells := 0
	attr := view.AttrNormal
	p.SetAttr(attr)
	for byteCol, r := range line {
		if byteCol < v.leftCol {
			continue
		}
		if cells >= v.frame.Width {
			break
		}
		want := view.AttrNormal
		if selActive {
			off := rowStart + byteCol
			if off >= selStart && off <= selEnd {
				want = view.AttrSelection
			}
		}
		if want != attr {
			attr = want
			p.SetAttr(attr)
		}
		p.AddRune(r)
		w := runewidth.RuneWidth(r)
		if w < 1 {
			w = 1
		}
		cells += w
	}
	if cells < v.frame.Width {
		p.SetAttr(view.AttrNormal)
		p.ClearRegion(cells, y, v.frame.Width-1, y)
	}
}

// MoveTo places the cursor at the view cell (x, y), clamping to the buffer.
// Used for mouse clicks.
func (v *TextView) MoveTo(x, y int) {
	v.breakChains()
	row := v.topRow + y
	if row < 0 {
		row = 0
	}
	if last := v.lastRow(); row > last {
		row = last
	}
	line := v.line(row)
	col := len(line)
	cells := 0
	for byteCol, r := range line {
		if byteCol < v.leftCol {
			continue
		}
		w := runewidth.RuneWidth(r)
		if w < 1 {
			w = 1
		}
		if x < cells+w {
			col = byteCol
			break
		}
		cells += w
	}
	v.row, v.col = row, col
	v.adjust()
}

// CursorScreenPos translates the cursor into view-relative cell coordinates,
// accounting for wide runes. visible is false when the cursor sits outside
// the viewport.
func (v *TextView) CursorScreenPos() (x, y int, visible bool) {
	y = v.row - v.topRow
	if y < 0 || (v.frame.Height > 0 && y >= v.frame.Height) {
		return 0, 0, false
	}
	line := v.line(v.row)
	x = 0
	for byteCol, r := range line {
		if byteCol >= v.col {
			break
		}
		if byteCol < v.leftCol {
			continue
		}
		w := runewidth.RuneWidth(r)
		if w < 1 {
			w = 1
		}
		x += w
	}
	if v.frame.Width > 0 && x >= v.frame.Width {
		return 0, 0, false
	}
	return x, y, true
}
