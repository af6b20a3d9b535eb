// Package view defines the narrow contracts between editing views and the
// terminal: a Painter for cell output and the invalidation regions views
// report after edits. Views never talk to a concrete screen type; the
// application owns the driver.
package view

// Attr selects the paint attribute for subsequent cells.
type Attr int

const (
	AttrNormal Attr = iota
	AttrSelection
)

// Painter is the rendering surface handed to a view's Draw. Coordinates are
// view-relative cells, (0, 0) at the top left of the view's frame.
type Painter interface {
	Goto(col, row int)
	AddRune(r rune)
	AddString(s string)
	SetAttr(a Attr)
	ClearRegion(left, top, right, bottom int)
}

// Frame is the visible size of a view in character cells.
type Frame struct {
	Width  int
	Height int
}

// RegionKind classifies how much of a view an edit invalidated.
type RegionKind int

const (
	RegionNone  RegionKind = iota
	RegionLine  // a single view row
	RegionToEnd // a view row and everything below it
	RegionFull
)

// Region is the minimal rectangle needing repaint. Row is view-relative and
// meaningful for RegionLine and RegionToEnd only.
type Region struct {
	Kind RegionKind
	Row  int
}

// Merge widens r just enough to also cover other. Two distinct single-line
// regions collapse to a to-end region starting at the upper row; there is no
// multi-line kind between those.
func (r Region) Merge(other Region) Region {
	switch {
	case other.Kind == RegionNone:
		return r
	case r.Kind == RegionNone:
		return other
	case r.Kind == RegionFull || other.Kind == RegionFull:
		return Region{Kind: RegionFull}
	case r.Kind == RegionLine && other.Kind == RegionLine && r.Row == other.Row:
		return r
	default:
		row := r.Row
		if other.Row < row {
			row = other.Row
		}
		return Region{Kind: RegionToEnd, Row: row}
	}
}
