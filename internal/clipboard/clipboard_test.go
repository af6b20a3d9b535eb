package clipboard

import "testing"

func TestSetAppendText(t *testing.T) {
	c := New()
	if got := c.Text(); got != "" {
		t.Fatalf("Text = %q, want empty", got)
	}
	c.Set("abc")
	c.Append("\n")
	c.Append("def")
	if got := c.Text(); got != "abc\ndef" {
		t.Fatalf("Text = %q", got)
	}
	c.Set("xyz")
	if got := c.Text(); got != "xyz" {
		t.Fatalf("Text = %q after replace", got)
	}
}
