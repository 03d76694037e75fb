package mathmode

import (
	"strconv"
	"strings"
)

// Expr is a node in the expression tree of a math-mode span. The concrete
// types are *Atom, *Group, *Attach, *Frac, *Root, *Factorial,
// *FieldAccess, *Call, *AlignPoint, *Space, and *Sequence. Every child of a
// node has a span contained in the span of its parent.
type Expr interface {
	// Pos returns the source span of the expression.
	Pos() Span
	// String formats the expression as an s-expression.
	String() string

	fmt(b *strings.Builder)
}

// Atom is an identifier, number, string, or plain glyph.
type Atom struct {
	Text string
	Kind AtomKind
	Span Span
}

// Delimiter is an opening or closing glyph of a group.
type Delimiter struct {
	// Glyph is the canonical delimiter glyph.
	Glyph string
	Span  Span
}

// Group is a delimited subexpression.
type Group struct {
	Body        Expr
	Open, Close Delimiter
	Span        Span
}

// Attach is a base with subscript, superscript, and primes. When Sup is nil
// and Primes is positive, the primes occupy the superscript slot.
type Attach struct {
	Base       Expr
	Sup        Expr
	Sub        Expr
	Primes     int
	// PrimesSpan covers the prime marks, if any.
	PrimesSpan Span
	Span       Span
}

// Frac is a fraction.
type Frac struct {
	Num, Denom Expr
	Span       Span
}

// Root is a radical with an optional index.
type Root struct {
	Radicand Expr
	Index    Expr
	Span     Span
}

// Factorial is an operand followed by !.
type Factorial struct {
	Operand Expr
	Span    Span
}

// Identifier is a name with its span.
type Identifier struct {
	Name string
	Span Span
}

// FieldAccess projects a field from the value of an expression.
type FieldAccess struct {
	Target Expr
	Field  Identifier
	Span   Span
}

// Call is a function call with a parenthesized argument list.
type Call struct {
	Callee Expr
	Args   []Expr
	Span   Span
}

// AlignPoint marks an alignment point for multi-line equations.
type AlignPoint struct {
	Span Span
}

// SpaceKind is the width of explicit whitespace.
type SpaceKind int8

const (
	SpaceTight SpaceKind = iota
	SpaceWide
)

func (k SpaceKind) String() string {
	if k == SpaceWide {
		return "wide"
	}
	return "tight"
}

// Space is significant whitespace between juxtaposed expressions.
type Space struct {
	Kind SpaceKind
	Span Span
}

// Sequence is a juxtaposition of expressions.
type Sequence struct {
	Items []Expr
	Span  Span
}

func (n *Atom) Pos() Span        { return n.Span }
func (n *Group) Pos() Span       { return n.Span }
func (n *Attach) Pos() Span      { return n.Span }
func (n *Frac) Pos() Span        { return n.Span }
func (n *Root) Pos() Span        { return n.Span }
func (n *Factorial) Pos() Span   { return n.Span }
func (n *FieldAccess) Pos() Span { return n.Span }
func (n *Call) Pos() Span        { return n.Span }
func (n *AlignPoint) Pos() Span  { return n.Span }
func (n *Space) Pos() Span       { return n.Span }
func (n *Sequence) Pos() Span    { return n.Span }

func exprString(n Expr) string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

func (n *Atom) String() string        { return exprString(n) }
func (n *Group) String() string       { return exprString(n) }
func (n *Attach) String() string      { return exprString(n) }
func (n *Frac) String() string        { return exprString(n) }
func (n *Root) String() string        { return exprString(n) }
func (n *Factorial) String() string   { return exprString(n) }
func (n *FieldAccess) String() string { return exprString(n) }
func (n *Call) String() string        { return exprString(n) }
func (n *AlignPoint) String() string  { return exprString(n) }
func (n *Space) String() string       { return exprString(n) }
func (n *Sequence) String() string    { return exprString(n) }

func (n *Atom) fmt(b *strings.Builder) {
	switch n.Kind {
	case AtomStr:
		b.WriteString(strconv.Quote(n.Text))
	default:
		b.WriteString(n.Text)
	}
}

func (n *Group) fmt(b *strings.Builder) {
	b.WriteString("(group ")
	b.WriteString(n.Open.Glyph)
	b.WriteByte(' ')
	n.Body.fmt(b)
	b.WriteByte(' ')
	b.WriteString(n.Close.Glyph)
	b.WriteByte(')')
}

func (n *Attach) fmt(b *strings.Builder) {
	b.WriteString("(attach ")
	n.Base.fmt(b)
	if n.Sub != nil {
		b.WriteString(" _")
		n.Sub.fmt(b)
	}
	if n.Sup != nil {
		b.WriteString(" ^")
		n.Sup.fmt(b)
	}
	if n.Primes > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Repeat("'", n.Primes))
	}
	b.WriteByte(')')
}

func (n *Frac) fmt(b *strings.Builder) {
	b.WriteString("(frac ")
	n.Num.fmt(b)
	b.WriteByte(' ')
	n.Denom.fmt(b)
	b.WriteByte(')')
}

func (n *Root) fmt(b *strings.Builder) {
	b.WriteString("(root ")
	if n.Index != nil {
		b.WriteByte('[')
		n.Index.fmt(b)
		b.WriteString("] ")
	}
	n.Radicand.fmt(b)
	b.WriteByte(')')
}

func (n *Factorial) fmt(b *strings.Builder) {
	b.WriteString("(fact ")
	n.Operand.fmt(b)
	b.WriteByte(')')
}

func (n *FieldAccess) fmt(b *strings.Builder) {
	b.WriteString("(field ")
	n.Target.fmt(b)
	b.WriteByte(' ')
	b.WriteString(n.Field.Name)
	b.WriteByte(')')
}

func (n *Call) fmt(b *strings.Builder) {
	b.WriteString("(call ")
	n.Callee.fmt(b)
	for _, a := range n.Args {
		b.WriteByte(' ')
		a.fmt(b)
	}
	b.WriteByte(')')
}

func (n *AlignPoint) fmt(b *strings.Builder) {
	b.WriteString("(align)")
}

func (n *Space) fmt(b *strings.Builder) {
	b.WriteString("(space ")
	b.WriteString(n.Kind.String())
	b.WriteByte(')')
}

func (n *Sequence) fmt(b *strings.Builder) {
	b.WriteString("(seq")
	for _, it := range n.Items {
		b.WriteByte(' ')
		it.fmt(b)
	}
	b.WriteByte(')')
}

// Walk calls f for n and each of its descendants in depth-first order, passing
// the parent of each node, or nil for n. Walk stops early if f returns false.
func Walk(n Expr, f func(n, parent Expr) bool) {
	walk(n, nil, f)
}

func walk(n, parent Expr, f func(n, parent Expr) bool) bool {
	if !f(n, parent) {
		return false
	}
	for _, c := range children(n) {
		if !walk(c, n, f) {
			return false
		}
	}
	return true
}

// children returns the direct children of n.
func children(n Expr) []Expr {
	switch n := n.(type) {
	case *Atom, *AlignPoint, *Space:
		return nil
	case *Group:
		return []Expr{n.Body}
	case *Attach:
		r := []Expr{n.Base}
		if n.Sub != nil {
			r = append(r, n.Sub)
		}
		if n.Sup != nil {
			r = append(r, n.Sup)
		}
		return r
	case *Frac:
		return []Expr{n.Num, n.Denom}
	case *Root:
		if n.Index != nil {
			return []Expr{n.Index, n.Radicand}
		}
		return []Expr{n.Radicand}
	case *Factorial:
		return []Expr{n.Operand}
	case *FieldAccess:
		return []Expr{n.Target}
	case *Call:
		return append([]Expr{n.Callee}, n.Args...)
	case *Sequence:
		return n.Items
	default:
		panic("mathmode: invalid expression node " + n.String())
	}
}
