// Package clipboard holds the kill-ring text shared between editing views.
// A single instance is created by the application and injected into each
// view, so tests can isolate clipboard state per case.
package clipboard

// Clipboard is a single mutable text slot. Consecutive kills append to it,
// anything else replaces it; that policy lives with the views, which track
// whether the previous operation was itself a kill.
type Clipboard struct {
	text string
}

func New() *Clipboard { return &Clipboard{} }

// Set replaces the clipboard content unconditionally.
func (c *Clipboard) Set(text string) { c.text = text }

// Append concatenates text to the existing content.
func (c *Clipboard) Append(text string) { c.text += text }

// Text returns the current content.
func (c *Clipboard) Text() string { return c.text }
