package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpans(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want []string
	}{
		{"empty", "", nil},
		{"prose", "no math here", nil},
		{"one", "let $x^2$ be", []string{"x^2"}},
		{"two", "$a$ and $b/c$", []string{"a", "b/c"}},
		{"escaped", `costs \$5, or $x$`, []string{"x"}},
		{"escapedinside", `$a \$ b$`, []string{`a \$ b`}},
		{"multiline", "$a &= b\n &= c$", []string{"a &= b\n &= c"}},
		{"emptyspan", "$$", []string{""}},
		{"unicode", "für $π r^2$", []string{"π r^2"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spans, err := Spans(c.doc)
			require.NoError(t, err)
			var got []string
			for _, s := range spans {
				got = append(got, s.Text(c.doc))
			}
			assert.Equal(t, c.want, got)
		})
	}
}

func TestSpansUnterminated(t *testing.T) {
	doc := "$a$ then $b"
	spans, err := Spans(doc)
	var u *UnterminatedError
	require.ErrorAs(t, err, &u)
	assert.Equal(t, 9, u.Offset)
	require.Len(t, spans, 1)
	assert.Equal(t, "a", spans[0].Text(doc))
}

func TestPosition(t *testing.T) {
	doc := "first\nsecond $x$\r\nthird"
	line, col, text := Position(doc, 14)
	assert.Equal(t, 2, line)
	assert.Equal(t, 9, col)
	assert.Equal(t, "second $x$", text)

	line, col, text = Position(doc, 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
	assert.Equal(t, "first", text)

	line, _, text = Position(doc, len(doc))
	assert.Equal(t, 3, line)
	assert.Equal(t, "third", text)
}

func TestMarkdownSpans(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want []string
	}{
		{"plain", "let $x^2$ be", []string{"x^2"}},
		{"codespan", "Use `$x$` for math: $y$.", []string{"y"}},
		{"fenced", "$a$\n\n```\ncost: $5\n```\n\n$b$\n", []string{"a", "b"}},
		{"indented", "para\n\n    echo $HOME\n\n$c$\n", []string{"c"}},
		{"backtickinmath", "$a `b` c$ and `$`", []string{"a `b` c"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spans, err := MarkdownSpans(c.doc)
			require.NoError(t, err)
			var got []string
			for _, s := range spans {
				got = append(got, s.Text(c.doc))
			}
			assert.Equal(t, c.want, got)
		})
	}

	// The same fenced document is unbalanced without Markdown.
	_, err := Spans("$a$\n\n```\ncost: $5\n```\n\n$b$\n")
	assert.Error(t, err)
}

func TestCodeRanges(t *testing.T) {
	doc := "Use `$x$` here.\n\n```go\n$z\n```\n"
	r := CodeRanges(doc)
	require.Len(t, r, 2)
	assert.Equal(t, "$x$", r[0].Text(doc))
	assert.Contains(t, r[1].Text(doc), "$z")
	assert.Empty(t, CodeRanges("no code"))
}
