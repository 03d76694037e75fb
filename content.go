package mathmode

import (
	"strconv"
	"strings"
)

// Content is an element of the content tree produced from a math-mode span,
// ready for layout. The concrete types are *Text, *FracElem, *AttachElem,
// *RootElem, *LrElem, *PrimesElem, *AlignPointElem, and *SequenceElem. Every
// element retains the span of the source that produced it. Content is never
// modified after it is built.
type Content interface {
	// Pos returns the source span of the element.
	Pos() Span
	// String formats the element as an s-expression.
	String() string

	fmt(b *strings.Builder)
}

// Text is a run of text.
type Text struct {
	Text string
	Span Span
}

// FracElem is a fraction.
type FracElem struct {
	Num, Denom Content
	Span       Span
}

// AttachElem is a base with attachments above and below. Top is a *PrimesElem
// when the superscript slot holds only primes. Primes is the number of primes
// written on the base, whether or not they occupy Top.
type AttachElem struct {
	Base   Content
	Top    Content
	Bottom Content
	Primes int
	Span   Span
}

// RootElem is a radical. Index is nil for a square root.
type RootElem struct {
	Index    Content
	Radicand Content
	Span     Span
}

// LrElem is a body between delimiters that are sized to fit it at layout.
type LrElem struct {
	Open, Close string
	Body        Content
	Span        Span
}

// PrimesElem is a run of primes.
type PrimesElem struct {
	Count int
	Span  Span
}

// AlignPointElem marks an alignment point.
type AlignPointElem struct {
	Span Span
}

// SequenceElem is juxtaposed content.
type SequenceElem struct {
	Items []Content
	Span  Span
}

func (c *Text) Pos() Span           { return c.Span }
func (c *FracElem) Pos() Span       { return c.Span }
func (c *AttachElem) Pos() Span     { return c.Span }
func (c *RootElem) Pos() Span       { return c.Span }
func (c *LrElem) Pos() Span         { return c.Span }
func (c *PrimesElem) Pos() Span     { return c.Span }
func (c *AlignPointElem) Pos() Span { return c.Span }
func (c *SequenceElem) Pos() Span   { return c.Span }

func contentString(c Content) string {
	var b strings.Builder
	c.fmt(&b)
	return b.String()
}

func (c *Text) String() string           { return contentString(c) }
func (c *FracElem) String() string       { return contentString(c) }
func (c *AttachElem) String() string     { return contentString(c) }
func (c *RootElem) String() string       { return contentString(c) }
func (c *LrElem) String() string         { return contentString(c) }
func (c *PrimesElem) String() string     { return contentString(c) }
func (c *AlignPointElem) String() string { return contentString(c) }
func (c *SequenceElem) String() string   { return contentString(c) }

func (c *Text) fmt(b *strings.Builder) {
	b.WriteString(strconv.Quote(c.Text))
}

func (c *FracElem) fmt(b *strings.Builder) {
	b.WriteString("(frac ")
	c.Num.fmt(b)
	b.WriteByte(' ')
	c.Denom.fmt(b)
	b.WriteByte(')')
}

func (c *AttachElem) fmt(b *strings.Builder) {
	b.WriteString("(attach ")
	c.Base.fmt(b)
	if c.Bottom != nil {
		b.WriteString(" b:")
		c.Bottom.fmt(b)
	}
	if c.Top != nil {
		b.WriteString(" t:")
		c.Top.fmt(b)
	}
	if _, ok := c.Top.(*PrimesElem); !ok && c.Primes > 0 {
		b.WriteString(" primes:")
		b.WriteString(strconv.Itoa(c.Primes))
	}
	b.WriteByte(')')
}

func (c *RootElem) fmt(b *strings.Builder) {
	b.WriteString("(root ")
	if c.Index != nil {
		b.WriteByte('[')
		c.Index.fmt(b)
		b.WriteString("] ")
	}
	c.Radicand.fmt(b)
	b.WriteByte(')')
}

func (c *LrElem) fmt(b *strings.Builder) {
	b.WriteString("(lr ")
	b.WriteString(c.Open)
	b.WriteByte(' ')
	c.Body.fmt(b)
	b.WriteByte(' ')
	b.WriteString(c.Close)
	b.WriteByte(')')
}

func (c *PrimesElem) fmt(b *strings.Builder) {
	b.WriteString("(primes ")
	b.WriteString(strconv.Itoa(c.Count))
	b.WriteByte(')')
}

func (c *AlignPointElem) fmt(b *strings.Builder) {
	b.WriteString("(align)")
}

func (c *SequenceElem) fmt(b *strings.Builder) {
	b.WriteString("(seq")
	for _, it := range c.Items {
		b.WriteByte(' ')
		it.fmt(b)
	}
	b.WriteByte(')')
}

// PlainText returns the text of content made only of text runs, possibly
// nested in sequences. ok is false if c contains any other element.
func PlainText(c Content) (s string, ok bool) {
	var b strings.Builder
	if !plaintext(&b, c) {
		return "", false
	}
	return b.String(), true
}

func plaintext(b *strings.Builder, c Content) bool {
	switch c := c.(type) {
	case *Text:
		b.WriteString(c.Text)
		return true
	case *SequenceElem:
		for _, it := range c.Items {
			if !plaintext(b, it) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Respan returns a copy of c in which every element has the given span. It is
// used for prebuilt content, which has no source of its own.
func Respan(c Content, span Span) Content {
	switch c := c.(type) {
	case nil:
		return nil
	case *Text:
		return &Text{Text: c.Text, Span: span}
	case *FracElem:
		return &FracElem{Num: Respan(c.Num, span), Denom: Respan(c.Denom, span), Span: span}
	case *AttachElem:
		return &AttachElem{
			Base:   Respan(c.Base, span),
			Top:    Respan(c.Top, span),
			Bottom: Respan(c.Bottom, span),
			Primes: c.Primes,
			Span:   span,
		}
	case *RootElem:
		return &RootElem{Index: Respan(c.Index, span), Radicand: Respan(c.Radicand, span), Span: span}
	case *LrElem:
		return &LrElem{Open: c.Open, Close: c.Close, Body: Respan(c.Body, span), Span: span}
	case *PrimesElem:
		return &PrimesElem{Count: c.Count, Span: span}
	case *AlignPointElem:
		return &AlignPointElem{Span: span}
	case *SequenceElem:
		items := make([]Content, len(c.Items))
		for i, it := range c.Items {
			items[i] = Respan(it, span)
		}
		return &SequenceElem{Items: items, Span: span}
	default:
		panic("mathmode: invalid content element " + c.String())
	}
}

// ContentEqual reports whether two content trees are structurally identical,
// including spans.
func ContentEqual(a, b Content) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Pos() != b.Pos() {
		return false
	}
	switch a := a.(type) {
	case *Text:
		b, ok := b.(*Text)
		return ok && a.Text == b.Text
	case *FracElem:
		b, ok := b.(*FracElem)
		return ok && ContentEqual(a.Num, b.Num) && ContentEqual(a.Denom, b.Denom)
	case *AttachElem:
		b, ok := b.(*AttachElem)
		return ok && a.Primes == b.Primes && ContentEqual(a.Base, b.Base) && ContentEqual(a.Top, b.Top) && ContentEqual(a.Bottom, b.Bottom)
	case *RootElem:
		b, ok := b.(*RootElem)
		return ok && ContentEqual(a.Index, b.Index) && ContentEqual(a.Radicand, b.Radicand)
	case *LrElem:
		b, ok := b.(*LrElem)
		return ok && a.Open == b.Open && a.Close == b.Close && ContentEqual(a.Body, b.Body)
	case *PrimesElem:
		b, ok := b.(*PrimesElem)
		return ok && a.Count == b.Count
	case *AlignPointElem:
		_, ok := b.(*AlignPointElem)
		return ok
	case *SequenceElem:
		b, ok := b.(*SequenceElem)
		if !ok || len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !ContentEqual(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
