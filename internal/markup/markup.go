// Package markup finds math-mode spans in markup documents.
package markup

import (
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Span is a math-mode span in a document. Start and End are byte offsets of
// the math source, excluding the enclosing dollar signs.
type Span struct {
	Start, End int
}

// Text returns the math source of the span.
func (s Span) Text(doc string) string {
	return doc[s.Start:s.End]
}

// Spans finds the math-mode spans of a document. Math is written between
// dollar signs; a dollar sign preceded by a backslash is literal, both in
// prose and in math. A dollar sign which opens a span that is never closed is
// an *UnterminatedError; the spans before it are still returned.
func Spans(doc string) ([]Span, error) {
	return scan(doc, nil)
}

// MarkdownSpans finds math-mode spans like Spans, but treats doc as Markdown.
// Dollar signs inside code spans and code blocks are ignored unless they lie
// within a math span opened outside the code.
func MarkdownSpans(doc string) ([]Span, error) {
	return scan(doc, CodeRanges(doc))
}

// CodeRanges returns the byte ranges of the contents of code spans, fenced
// code blocks, and indented code blocks in a Markdown document, in document
// order.
func CodeRanges(doc string) []Span {
	src := []byte(doc)
	root := goldmark.DefaultParser().Parse(text.NewReader(src))
	var r []Span
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.CodeSpan:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					r = append(r, Span{Start: t.Segment.Start, End: t.Segment.Stop})
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				r = append(r, Span{Start: seg.Start, End: seg.Stop})
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	sort.Slice(r, func(i, j int) bool { return r[i].Start < r[j].Start })
	return r
}

// scan finds dollar-delimited spans, jumping over the skip ranges while no
// span is open. skip must be sorted by Start.
func scan(doc string, skip []Span) ([]Span, error) {
	var spans []Span
	open := -1
	for i := 0; i < len(doc); i++ {
		for len(skip) > 0 && skip[0].End <= i {
			skip = skip[1:]
		}
		if open < 0 && len(skip) > 0 && skip[0].Start <= i {
			i = skip[0].End - 1
			continue
		}
		switch doc[i] {
		case '\\':
			// Skip the escaped byte. Escapes of multi-byte runes never
			// produce a dollar sign, so skipping one byte is enough.
			i++
		case '$':
			if open < 0 {
				open = i
				continue
			}
			spans = append(spans, Span{Start: open + 1, End: i})
			open = -1
		}
	}
	if open >= 0 {
		return spans, &UnterminatedError{Offset: open}
	}
	return spans, nil
}

// Position converts a byte offset to a 1-based line and column, with the
// column counted in bytes. It also returns the text of the line without its
// line ending.
func Position(doc string, offset int) (line, col int, text string) {
	if offset > len(doc) {
		offset = len(doc)
	}
	start := strings.LastIndexByte(doc[:offset], '\n') + 1
	end := strings.IndexByte(doc[start:], '\n')
	if end < 0 {
		end = len(doc)
	} else {
		end += start
	}
	line = strings.Count(doc[:start], "\n") + 1
	return line, offset - start + 1, strings.TrimSuffix(doc[start:end], "\r")
}

// UnterminatedError is an error indicating a dollar sign that opens a math
// span without a closing one.
type UnterminatedError struct {
	// Offset is the byte offset of the opening dollar sign.
	Offset int
}

func (err *UnterminatedError) Error() string {
	return "offset " + strconv.Itoa(err.Offset) + ": unterminated math span"
}
