package mathmode

import "strconv"

// Span is a half-open range of byte offsets into the source of a math-mode
// span.
type Span struct {
	Start, End int
}

// Contains reports whether s fully contains t.
func (s Span) Contains(t Span) bool {
	return s.Start <= t.Start && t.End <= s.End
}

// Join returns the smallest span containing both s and t.
func (s Span) Join(t Span) Span {
	if t.Start < s.Start {
		s.Start = t.Start
	}
	if t.End > s.End {
		s.End = t.End
	}
	return s
}

// Len is the number of bytes in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	return strconv.Itoa(s.Start) + ".." + strconv.Itoa(s.End)
}

// SyntaxKind is the kind of a syntax node as produced by a lexer.
type SyntaxKind int8

const (
	SyntaxNone SyntaxKind = iota

	// SyntaxText is a single letter or any glyph without a special meaning.
	SyntaxText
	// SyntaxIdent is an identifier of two or more characters.
	SyntaxIdent
	// SyntaxNum is a number.
	SyntaxNum
	// SyntaxStr is a quoted string. Its text excludes the quotes.
	SyntaxStr
	// SyntaxEscape is a glyph escaped with a backslash. Its text excludes the
	// backslash.
	SyntaxEscape
	// SyntaxShorthand is a multi-character shorthand for a glyph, e.g. ->.
	SyntaxShorthand
	SyntaxUnderscore
	SyntaxHat
	SyntaxSlash
	// SyntaxPrimes is a run of one or more prime marks.
	SyntaxPrimes
	SyntaxBang
	SyntaxAlign
	SyntaxDot
	SyntaxComma
	// SyntaxRoot is one of √, ∛, ∜.
	SyntaxRoot
	SyntaxSpace
	// SyntaxMath is an invisible group with children.
	SyntaxMath
)

var syntaxNames = [...]string{
	SyntaxNone:       "None",
	SyntaxText:       "Text",
	SyntaxIdent:      "Ident",
	SyntaxNum:        "Num",
	SyntaxStr:        "Str",
	SyntaxEscape:     "Escape",
	SyntaxShorthand:  "Shorthand",
	SyntaxUnderscore: "Underscore",
	SyntaxHat:        "Hat",
	SyntaxSlash:      "Slash",
	SyntaxPrimes:     "Primes",
	SyntaxBang:       "Bang",
	SyntaxAlign:      "Align",
	SyntaxDot:        "Dot",
	SyntaxComma:      "Comma",
	SyntaxRoot:       "Root",
	SyntaxSpace:      "Space",
	SyntaxMath:       "Math",
}

func (k SyntaxKind) String() string {
	if k < 0 || int(k) >= len(syntaxNames) {
		return "SyntaxKind(" + strconv.Itoa(int(k)) + ")"
	}
	return syntaxNames[k]
}

// SyntaxNode is a read-only constituent of a math-mode span. Lexers other than
// Scan may implement it to feed Classify and Parse directly.
type SyntaxNode interface {
	// Kind returns the syntactic kind of the node.
	Kind() SyntaxKind
	// Text returns the literal text of the node. Groups have no text.
	Text() string
	// Pos returns the span of the node in its source.
	Pos() Span
	// Children returns the children of a group node.
	Children() []SyntaxNode
}

type syntaxNode struct {
	kind SyntaxKind
	text string
	span Span
	kids []SyntaxNode
}

func (n *syntaxNode) Kind() SyntaxKind       { return n.kind }
func (n *syntaxNode) Text() string           { return n.text }
func (n *syntaxNode) Pos() Span              { return n.span }
func (n *syntaxNode) Children() []SyntaxNode { return n.kids }

func (n *syntaxNode) String() string {
	return n.kind.String() + ":" + strconv.Quote(n.text) + "@" + n.span.String()
}

// Leaf creates a syntax node without children.
func Leaf(kind SyntaxKind, text string, span Span) SyntaxNode {
	return &syntaxNode{kind: kind, text: text, span: span}
}

// MathNode creates an invisible group node. Its span covers its children.
func MathNode(kids ...SyntaxNode) SyntaxNode {
	n := &syntaxNode{kind: SyntaxMath, kids: kids}
	for i, k := range kids {
		if i == 0 {
			n.span = k.Pos()
			continue
		}
		n.span = n.span.Join(k.Pos())
	}
	return n
}
