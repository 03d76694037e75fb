package mathmode

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Class is the role of a constituent in math-mode grammar.
type Class int8

const (
	ClassNone Class = iota
	// ClassAtom is an identifier, number, string, or plain glyph.
	ClassAtom
	// ClassOpen is an opening delimiter.
	ClassOpen
	// ClassClose is a closing delimiter.
	ClassClose
	// ClassFence is a delimiter that opens or closes depending on context,
	// like |.
	ClassFence
	// ClassAttach is _ or ^.
	ClassAttach
	// ClassFrac is /.
	ClassFrac
	// ClassPrime is a run of primes. Count holds its length.
	ClassPrime
	// ClassFactorial is !.
	ClassFactorial
	// ClassAlign is an alignment point, &.
	ClassAlign
	// ClassSpace is whitespace. Wide is set for whitespace with line breaks.
	ClassSpace
	// ClassGroup is an invisible group. Children holds its constituents.
	ClassGroup
	// ClassRoot is a root prefix operator.
	ClassRoot
	// ClassDot joins field accesses.
	ClassDot
	// ClassComma separates call arguments.
	ClassComma
)

var classNames = [...]string{
	ClassNone:      "None",
	ClassAtom:      "Atom",
	ClassOpen:      "Open",
	ClassClose:     "Close",
	ClassFence:     "Fence",
	ClassAttach:    "Attach",
	ClassFrac:      "Frac",
	ClassPrime:     "Prime",
	ClassFactorial: "Factorial",
	ClassAlign:     "Align",
	ClassSpace:     "Space",
	ClassGroup:     "Group",
	ClassRoot:      "Root",
	ClassDot:       "Dot",
	ClassComma:     "Comma",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "Class(" + strconv.Itoa(int(c)) + ")"
	}
	return classNames[c]
}

// AtomKind distinguishes atoms that resolve in a scope from literal ones.
type AtomKind int8

const (
	// AtomText is a literal glyph or single letter.
	AtomText AtomKind = iota
	// AtomIdent is an identifier looked up in the math scope.
	AtomIdent
	// AtomNum is a number.
	AtomNum
	// AtomStr is a quoted string, displayed as-is.
	AtomStr
)

func (k AtomKind) String() string {
	switch k {
	case AtomText:
		return "text"
	case AtomIdent:
		return "ident"
	case AtomNum:
		return "num"
	case AtomStr:
		return "str"
	default:
		return "AtomKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Constituent is a classified syntax node.
type Constituent struct {
	Class Class
	// Text is the canonical text of the node. Shorthands are replaced by the
	// glyphs they stand for.
	Text string
	// Atom is the kind of atom for ClassAtom.
	Atom AtomKind
	// Count is the number of primes for ClassPrime.
	Count int
	// Wide marks wide whitespace for ClassSpace.
	Wide bool
	// Children holds the classified children of ClassGroup.
	Children []Constituent
	// Span is the span of the syntax node.
	Span Span
	// Node is the classified syntax node.
	Node SyntaxNode
}

func (c Constituent) String() string {
	return c.Class.String() + ":" + strconv.Quote(c.Text) + "@" + c.Span.String()
}

// glyphs maps shorthands and alternate delimiter spellings to the canonical
// glyph they stand for.
var glyphs = map[string]string{
	"->":  "→",
	"=>":  "⇒",
	"<-":  "←",
	"<=":  "≤",
	">=":  "≥",
	"!=":  "≠",
	":=":  "≔",
	"...": "…",
	"[|":  "⟦",
	"|]":  "⟧",
	"||":  "‖",
	"∣":   "|",
	"｜":   "|",
	"〈":   "⟨",
	"〉":   "⟩",
}

// OpenDelims and CloseDelims contain the canonical delimiters which group
// expressions. The delimiter at rune index k in OpenDelims is matched with the
// delimiter at rune index k in CloseDelims. Fences contains delimiters that
// match themselves.
const (
	OpenDelims  = "([{⟨⌈⌊⟦"
	CloseDelims = ")]}⟩⌉⌋⟧"
	Fences      = "|‖"
)

// closer returns the canonical closing delimiter for a canonical opening one.
func closer(open string) string {
	if strings.Contains(Fences, open) {
		return open
	}
	k := 0
	for _, r := range OpenDelims {
		if string(r) == open {
			break
		}
		k++
	}
	for _, r := range CloseDelims {
		if k == 0 {
			return string(r)
		}
		k--
	}
	return ""
}

// Canonical returns the canonical glyph for a shorthand or delimiter spelling.
// Other text is returned unchanged.
func Canonical(text string) string {
	if g, ok := glyphs[text]; ok {
		return g
	}
	return text
}

// Classify tags each syntax node with its role in math-mode grammar. Nodes
// that are not recognized classify as text atoms. Invisible groups of any
// depth are classified without recursion; the parser enforces the nesting
// limit.
func Classify(nodes []SyntaxNode) []Constituent {
	type pending struct {
		dst []Constituent
		src []SyntaxNode
	}
	cs := make([]Constituent, len(nodes))
	work := []pending{{dst: cs, src: nodes}}
	for len(work) > 0 {
		w := work[len(work)-1]
		work = work[:len(work)-1]
		for i, n := range w.src {
			w.dst[i] = classify(n)
			if w.dst[i].Class == ClassGroup {
				kids := n.Children()
				w.dst[i].Children = make([]Constituent, len(kids))
				work = append(work, pending{dst: w.dst[i].Children, src: kids})
			}
		}
	}
	return cs
}

func classify(n SyntaxNode) Constituent {
	c := Constituent{Class: ClassAtom, Text: n.Text(), Span: n.Pos(), Node: n}
	switch n.Kind() {
	case SyntaxIdent:
		c.Atom = AtomIdent
	case SyntaxNum:
		c.Atom = AtomNum
	case SyntaxStr:
		c.Atom = AtomStr
	case SyntaxText, SyntaxShorthand:
		c.Text = Canonical(c.Text)
		c.Class = delimclass(c.Text)
	case SyntaxUnderscore, SyntaxHat:
		c.Class = ClassAttach
	case SyntaxSlash:
		c.Class = ClassFrac
	case SyntaxPrimes:
		c.Class = ClassPrime
		c.Count = utf8.RuneCountInString(c.Text)
	case SyntaxBang:
		c.Class = ClassFactorial
	case SyntaxAlign:
		c.Class = ClassAlign
	case SyntaxDot:
		c.Class = ClassDot
	case SyntaxComma:
		c.Class = ClassComma
	case SyntaxRoot:
		c.Class = ClassRoot
	case SyntaxSpace:
		c.Class = ClassSpace
		c.Wide = strings.ContainsAny(c.Text, "\n\r\u2028\u2029")
	case SyntaxMath:
		c.Class = ClassGroup
	}
	return c
}

func delimclass(text string) Class {
	if utf8.RuneCountInString(text) != 1 {
		return ClassAtom
	}
	switch {
	case strings.Contains(Fences, text):
		return ClassFence
	case strings.Contains(OpenDelims, text):
		return ClassOpen
	case strings.Contains(CloseDelims, text):
		return ClassClose
	default:
		return ClassAtom
	}
}
