// Package highlight answers per-line syntax highlight spans for Go source
// using tree-sitter. The application attaches it to the text view's change
// notification: every successful edit triggers a re-parse, and the renderer
// asks for spans covering the visible rows only.
package highlight

import (
	"context"
	"math"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// Span is one highlighted column range on a line. Kind matches the query
// capture names (keyword, string, comment, type, function, number).
type Span struct {
	StartCol int
	EndCol   int
	Kind     string
}

// Engine holds one parsed document. It is owned by the event loop and
// assumes the same single-writer discipline as the views.
type Engine struct {
	parser *sitter.Parser
	query  *sitter.Query
	tree   *sitter.Tree
	source []byte
}

// NewGo builds an engine for Go source.
func NewGo() (*Engine, error) {
	lang := golang.GetLanguage()
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	query, err := sitter.NewQuery([]byte(goHighlightQuery), lang)
	if err != nil {
		return nil, err
	}
	return &Engine{parser: parser, query: query}, nil
}

// Parse replaces the engine's document. Edits re-parse the full text; the
// documents this serves are interactive-editor sized.
func (e *Engine) Parse(text string) {
	src := []byte(text)
	tree, err := e.parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return
	}
	if e.tree != nil {
		e.tree.Close()
	}
	e.tree = tree
	e.source = src
}

// Highlights returns the spans per buffer row in [startLine, endLine],
// zero-based. It returns nil when nothing has been parsed yet.
func (e *Engine) Highlights(startLine, endLine int) map[int][]Span {
	if e.tree == nil || startLine < 0 || endLine < startLine {
		return nil
	}
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.SetPointRange(
		sitter.Point{Row: uint32(startLine), Column: 0},
		sitter.Point{Row: uint32(endLine + 1), Column: 0},
	)
	cursor.Exec(e.query, e.tree.RootNode())

	out := make(map[int][]Span)
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, e.source)
		if match == nil {
			continue
		}
		for _, capture := range match.Captures {
			kind := e.query.CaptureNameForId(capture.Index)
			start := capture.Node.StartPoint()
			end := capture.Node.EndPoint()
			if int(end.Row) < startLine || int(start.Row) > endLine {
				continue
			}
			for row := int(start.Row); row <= int(end.Row); row++ {
				if row < startLine || row > endLine {
					continue
				}
				span := Span{StartCol: 0, EndCol: math.MaxInt32, Kind: kind}
				if row == int(start.Row) {
					span.StartCol = int(start.Column)
				}
				if row == int(end.Row) {
					span.EndCol = int(end.Column)
				}
				if span.StartCol >= span.EndCol {
					continue
				}
				out[row] = append(out[row], span)
			}
		}
	}
	return out
}

// Close releases the parse tree.
func (e *Engine) Close() {
	if e.tree != nil {
		e.tree.Close()
		e.tree = nil
	}
}

const goHighlightQuery = `
((comment) @comment)
((interpreted_string_literal) @string)
((raw_string_literal) @string)
((rune_literal) @string)
((escape_sequence) @string)
((int_literal) @number)
((float_literal) @number)
((imaginary_literal) @number)
[
  "break" "case" "chan" "const" "continue" "default" "defer" "else"
  "fallthrough" "for" "func" "go" "goto" "if" "import" "interface"
  "map" "package" "range" "return" "select" "struct" "switch"
  "type" "var"
] @keyword
((type_spec name: (type_identifier) @type))
((type_identifier) @type)
((package_identifier) @type)
((function_declaration name: (identifier) @function))
((method_declaration name: (field_identifier) @function))
((call_expression function: (identifier) @function))
((call_expression function: (selector_expression field: (field_identifier) @function)))
`
