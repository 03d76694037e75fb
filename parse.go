package mathmode

import (
	"unicode"
	"unicode/utf8"
)

// Seq   = { Term | space }
// Term  = Unary { '/' Unary }
// Unary = Prim { '.' name | Args | '!' | Script }
// Prim  = atom | Open Seq Close | fence Seq fence | Root | '&' | group
// Root  = '√' [ '[' Seq ']' ] Unary | '∛' Unary | '∜' Unary
// Args  = '(' [ Seq { ',' Seq } ] ')'
// Script = "'"... | '_' Unary | '^' Unary
//
// Binding powers from loosest to tightest are juxtaposition, fraction,
// attachment, factorial, root, and then atoms and groups.

// Parse classifies and parses the syntax nodes of one math-mode span.
func Parse(nodes []SyntaxNode, opts ...ParseOption) (Expr, error) {
	return ParseConstituents(Classify(nodes), opts...)
}

// ParseString is a shortcut to scan and parse a math-mode span.
func ParseString(src string, opts ...ParseOption) (Expr, error) {
	nodes, err := ScanString(src)
	if err != nil {
		return nil, err
	}
	return Parse(nodes, opts...)
}

// ParseConstituents parses classified constituents into an expression tree.
// The options are applied in order. A span with more than one top-level
// expression parses as a *Sequence.
func ParseConstituents(cs []Constituent, opts ...ParseOption) (Expr, error) {
	p := parser{
		toks:     cs,
		parsectx: parsectx{maxdepth: DefaultMaxDepth},
	}
	for _, opt := range opts {
		p.parsectx = opt.parseOption(p.parsectx)
	}
	if p.scope == nil {
		p.scope = DefaultScope()
	}
	return p.parseall(Span{})
}

type parser struct {
	toks []Constituent
	pos  int
	// depth is the current nesting depth.
	depth int
	// stops is a stack of predicates for tokens that end the current
	// sequence in addition to closing delimiters.
	stops []func(Constituent) bool
	parsectx
}

// operator is the binding power of an operator.
type operator struct {
	// prec is the operator precedence. Higher is tighter binding.
	prec int8
	// right indicates right-associativity.
	right bool
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

var (
	// exprprec is the precedence required to parse an entire item of a
	// sequence.
	exprprec = operator{-128, true}
	// fracprec is the precedence of /.
	fracprec = operator{1, false}
	// attachprec is the precedence of attachments. It is left-associative so
	// that a script operand never takes scripts of its own.
	attachprec = operator{2, false}
	// factprec is the precedence of !.
	factprec = operator{3, false}
	// rootprec is the precedence of a radicand.
	rootprec = operator{4, false}
)

// parseall parses the whole token list. empty is the span of the result if
// there are no expressions.
func (p *parser) parseall(empty Span) (Expr, error) {
	if len(p.toks) > 0 {
		empty = Span{Start: p.toks[0].Span.Start, End: p.toks[0].Span.Start}
	}
	items, err := p.parseseq(nil)
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		// parseseq only stops early at a closing delimiter.
		return nil, &UnbalancedDelimiterError{Span: tok.Span, Close: tok.Text}
	}
	return seqof(items, empty), nil
}

func (p *parser) peek() (Constituent, bool) {
	return p.at(p.pos)
}

func (p *parser) at(i int) (Constituent, bool) {
	if i < len(p.toks) {
		return p.toks[i], true
	}
	return Constituent{}, false
}

// skipspace returns the index of the first token at or after the current one
// that is not whitespace. It does not consume anything.
func (p *parser) skipspace() int {
	i := p.pos
	for i < len(p.toks) && p.toks[i].Class == ClassSpace {
		i++
	}
	return i
}

// stopped reports whether tok ends the innermost sequence.
func (p *parser) stopped(tok Constituent) bool {
	if tok.Class == ClassClose {
		return true
	}
	if len(p.stops) == 0 {
		return false
	}
	f := p.stops[len(p.stops)-1]
	return f != nil && f(tok)
}

// canstart reports whether tok can begin an operand.
func (p *parser) canstart(tok Constituent) bool {
	switch tok.Class {
	case ClassClose, ClassFrac, ClassAttach, ClassPrime:
		return false
	}
	return !p.stopped(tok)
}

// operand checks that an operand follows the operator op, which is already
// consumed, and moves past whitespace up to it.
func (p *parser) operand(op Constituent) error {
	i := p.skipspace()
	tok, ok := p.at(i)
	if !ok || !p.canstart(tok) {
		return &DanglingOperatorError{Span: op.Span, Operator: op.Text}
	}
	p.pos = i
	return nil
}

// nest checks that wrapping the current node k more times stays within the
// depth limit.
func (p *parser) nest(k int, span Span) error {
	if p.depth+k > p.maxdepth {
		return &NestingError{Span: span, Limit: p.maxdepth}
	}
	return nil
}

// seqof creates the expression for a list of juxtaposed items.
func seqof(items []Expr, empty Span) Expr {
	switch len(items) {
	case 0:
		return &Sequence{Span: empty}
	case 1:
		return items[0]
	default:
		return &Sequence{Items: items, Span: items[0].Pos().Join(items[len(items)-1].Pos())}
	}
}

// transparent removes parentheses that exist only to scope an operand.
func transparent(n Expr) Expr {
	if g, ok := n.(*Group); ok && g.Open.Glyph == "(" && g.Close.Glyph == ")" {
		return g.Body
	}
	return n
}

// parseseq parses juxtaposed items up to the end of input, a closing
// delimiter, or a token for which stop returns true. Whitespace at either end
// of the sequence is dropped and runs of whitespace collapse into one Space.
func (p *parser) parseseq(stop func(Constituent) bool) ([]Expr, error) {
	p.stops = append(p.stops, stop)
	defer func() { p.stops = p.stops[:len(p.stops)-1] }()
	var items []Expr
	var space *Space
	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]
		if tok.Class == ClassSpace {
			p.pos++
			if space == nil {
				space = &Space{Span: tok.Span}
			} else {
				space.Span = space.Span.Join(tok.Span)
			}
			if tok.Wide {
				space.Kind = SpaceWide
			}
			continue
		}
		if p.stopped(tok) {
			break
		}
		n, err := p.parseterm(exprprec)
		if err != nil {
			return nil, err
		}
		if space != nil && len(items) > 0 {
			items = append(items, space)
		}
		space = nil
		items = append(items, n)
	}
	return items, nil
}

// parseterm parses an item with any fractions at a higher binding power than
// until. The current token must be able to start an operand.
func (p *parser) parseterm(until operator) (Expr, error) {
	n, err := p.parseunary(until)
	if err != nil {
		return nil, err
	}
	wraps := 0
	for {
		i := p.skipspace()
		tok, ok := p.at(i)
		if !ok || tok.Class != ClassFrac || !fracprec.moreBinding(until) {
			return n, nil
		}
		wraps++
		if err := p.nest(wraps, tok.Span); err != nil {
			return nil, err
		}
		p.pos = i + 1
		if err := p.operand(tok); err != nil {
			return nil, err
		}
		rhs, err := p.parseterm(fracprec)
		if err != nil {
			return nil, err
		}
		n = &Frac{Num: transparent(n), Denom: transparent(rhs), Span: n.Pos().Join(rhs.Pos())}
	}
}

// parseunary parses a primary expression with the postfix operators that bind
// more tightly than until.
func (p *parser) parseunary(until operator) (Expr, error) {
	tok, ok := p.peek()
	if !ok {
		panic("mathmode: parseunary at end of input")
	}
	if err := p.nest(1, tok.Span); err != nil {
		return nil, err
	}
	p.depth++
	defer func() { p.depth-- }()
	var n Expr
	switch tok.Class {
	case ClassAtom:
		p.pos++
		n = &Atom{Text: tok.Text, Kind: tok.Atom, Span: tok.Span}
	case ClassOpen, ClassFence:
		g, err := p.parsegroup(tok)
		if err != nil {
			return nil, err
		}
		n = g
	case ClassGroup:
		p.pos++
		g, err := p.parseinvisible(tok)
		if err != nil {
			return nil, err
		}
		n = g
	case ClassRoot:
		r, err := p.parseroot(tok)
		if err != nil {
			return nil, err
		}
		n = r
	case ClassAlign:
		p.pos++
		return &AlignPoint{Span: tok.Span}, nil
	case ClassFactorial, ClassDot, ClassComma:
		// Without an operand, these are plain glyphs.
		p.pos++
		n = &Atom{Text: tok.Text, Kind: AtomText, Span: tok.Span}
	case ClassFrac, ClassAttach, ClassPrime:
		return nil, &DanglingOperatorError{Span: tok.Span, Operator: tok.Text}
	case ClassClose:
		return nil, &UnbalancedDelimiterError{Span: tok.Span, Close: tok.Text}
	default:
		panic("mathmode: unexpected constituent " + tok.String())
	}
	return p.postfix(n, until)
}

// postfix parses field accesses, calls, factorials, and attachments following
// n. Factorials and attachments are only parsed if they bind more tightly than
// until.
func (p *parser) postfix(n Expr, until operator) (Expr, error) {
	for wraps := 1; ; wraps++ {
		tok, ok := p.peek()
		if !ok {
			return n, nil
		}
		switch {
		case tok.Class == ClassDot && fieldable(n):
			field, ok := p.at(p.pos + 1)
			if !ok || !isname(field) {
				return n, nil
			}
			if err := p.nest(wraps, tok.Span); err != nil {
				return nil, err
			}
			p.pos += 2
			n = &FieldAccess{
				Target: n,
				Field:  Identifier{Name: field.Text, Span: field.Span},
				Span:   n.Pos().Join(field.Span),
			}
		case tok.Class == ClassOpen && tok.Text == "(" && p.callable(n):
			if err := p.nest(wraps, tok.Span); err != nil {
				return nil, err
			}
			c, err := p.parsecall(n, tok)
			if err != nil {
				return nil, err
			}
			n = c
		case tok.Class == ClassFactorial && factprec.moreBinding(until):
			if err := p.nest(wraps, tok.Span); err != nil {
				return nil, err
			}
			p.pos++
			n = &Factorial{Operand: n, Span: n.Pos().Join(tok.Span)}
		case attachprec.moreBinding(until) && p.attachnext():
			if err := p.nest(wraps, tok.Span); err != nil {
				return nil, err
			}
			a, err := p.parseattach(n)
			if err != nil {
				return nil, err
			}
			n = a
		default:
			return n, nil
		}
	}
}

// fieldable reports whether fields can be accessed on n.
func fieldable(n Expr) bool {
	switch n := n.(type) {
	case *Atom:
		return n.Kind == AtomIdent
	case *FieldAccess, *Group:
		return true
	default:
		return false
	}
}

// isname reports whether tok can name a field.
func isname(tok Constituent) bool {
	if tok.Class != ClassAtom {
		return false
	}
	if tok.Atom == AtomIdent {
		return true
	}
	r, sz := utf8.DecodeRuneInString(tok.Text)
	return tok.Atom == AtomText && sz == len(tok.Text) && unicode.IsLetter(r)
}

// callable reports whether n followed by parentheses is a call. Only names of
// more than one character which are not symbols are called; anything else is
// juxtaposed with the parenthesized group.
func (p *parser) callable(n Expr) bool {
	switch n := n.(type) {
	case *Atom:
		return n.Kind == AtomIdent && utf8.RuneCountInString(n.Text) > 1 && !p.symbol(n.Text)
	case *FieldAccess:
		root := n.Target
		for {
			f, ok := root.(*FieldAccess)
			if !ok {
				break
			}
			root = f.Target
		}
		if a, ok := root.(*Atom); ok {
			return !p.symbol(a.Text)
		}
		return false
	default:
		return false
	}
}

// symbol reports whether name is bound to a symbol in the parse scope.
func (p *parser) symbol(name string) bool {
	v, ok := p.scope.Lookup(name)
	if !ok {
		return false
	}
	_, ok = v.(Symbol)
	return ok
}

// attachnext reports whether an attachment follows: either primes
// immediately, or _ or ^ after optional whitespace.
func (p *parser) attachnext() bool {
	if tok, ok := p.peek(); ok && tok.Class == ClassPrime {
		return true
	}
	tok, ok := p.at(p.skipspace())
	return ok && tok.Class == ClassAttach
}

// parseattach parses all consecutive attachments on base into one node.
func (p *parser) parseattach(base Expr) (Expr, error) {
	a := &Attach{Base: base, Span: base.Pos()}
	var sup, sub Span
	for {
		if tok, ok := p.peek(); ok && tok.Class == ClassPrime {
			p.pos++
			if a.Primes == 0 {
				a.PrimesSpan = tok.Span
			} else {
				a.PrimesSpan = a.PrimesSpan.Join(tok.Span)
			}
			a.Primes += tok.Count
			a.Span = a.Span.Join(tok.Span)
			continue
		}
		i := p.skipspace()
		tok, ok := p.at(i)
		if !ok || tok.Class != ClassAttach {
			return a, nil
		}
		p.pos = i + 1
		if err := p.operand(tok); err != nil {
			return nil, err
		}
		arg, err := p.parseunary(attachprec)
		if err != nil {
			return nil, err
		}
		span := tok.Span.Join(arg.Pos())
		switch tok.Text {
		case "^":
			if a.Sup != nil {
				return nil, &AmbiguousAttachmentError{Span: span, Operator: "^", First: sup}
			}
			a.Sup, sup = transparent(arg), span
		case "_":
			if a.Sub != nil {
				return nil, &AmbiguousAttachmentError{Span: span, Operator: "_", First: sub}
			}
			a.Sub, sub = transparent(arg), span
		default:
			panic("mathmode: unknown attachment " + tok.Text)
		}
		a.Span = a.Span.Join(span)
	}
}

// parsegroup parses a delimited group starting at the opening delimiter open.
func (p *parser) parsegroup(open Constituent) (*Group, error) {
	p.pos++
	want := closer(open.Text)
	var stop func(Constituent) bool
	if open.Class == ClassFence {
		stop = func(tok Constituent) bool {
			return tok.Class == ClassFence && tok.Text == want
		}
	}
	items, err := p.parseseq(stop)
	if err != nil {
		return nil, err
	}
	end, ok := p.peek()
	if !ok {
		return nil, &UnbalancedDelimiterError{Span: open.Span, Open: open.Text}
	}
	if end.Text != want {
		if open.Class == ClassFence && end.Class == ClassClose {
			// The closer belongs to an enclosing group; the fence is what
			// lacks a match.
			return nil, &UnbalancedDelimiterError{Span: open.Span, Open: open.Text, Close: end.Text}
		}
		return nil, &UnbalancedDelimiterError{Span: end.Span, Open: open.Text, Close: end.Text}
	}
	p.pos++
	return &Group{
		Body:  seqof(items, Span{Start: open.Span.End, End: open.Span.End}),
		Open:  Delimiter{Glyph: open.Text, Span: open.Span},
		Close: Delimiter{Glyph: end.Text, Span: end.Span},
		Span:  open.Span.Join(end.Span),
	}, nil
}

// parseinvisible parses the children of an invisible group.
func (p *parser) parseinvisible(tok Constituent) (Expr, error) {
	sub := parser{toks: tok.Children, depth: p.depth, parsectx: p.parsectx}
	return sub.parseall(Span{Start: tok.Span.Start, End: tok.Span.Start})
}

// parseroot parses a root. An index is written in brackets immediately after
// √; ∛ and ∜ imply their indices.
func (p *parser) parseroot(tok Constituent) (Expr, error) {
	p.pos++
	var index Expr
	switch tok.Text {
	case "∛":
		index = &Atom{Text: "3", Kind: AtomNum, Span: tok.Span}
	case "∜":
		index = &Atom{Text: "4", Kind: AtomNum, Span: tok.Span}
	default:
		next, ok := p.peek()
		if !ok || next.Class != ClassOpen || next.Text != "[" {
			break
		}
		g, err := p.parsegroup(next)
		if err != nil {
			return nil, err
		}
		if s, ok := g.Body.(*Sequence); !ok || len(s.Items) > 0 {
			index = g.Body
		}
		tok.Span = tok.Span.Join(g.Span)
	}
	if err := p.operand(tok); err != nil {
		return nil, err
	}
	rad, err := p.parseunary(rootprec)
	if err != nil {
		return nil, err
	}
	return &Root{Radicand: transparent(rad), Index: index, Span: tok.Span.Join(rad.Pos())}, nil
}

// parsecall parses the argument list of a call to callee. Arguments are
// separated by commas; a trailing comma is allowed.
func (p *parser) parsecall(callee Expr, open Constituent) (Expr, error) {
	p.pos++
	comma := func(tok Constituent) bool { return tok.Class == ClassComma }
	var args []Expr
	start := open.Span.End
	for {
		items, err := p.parseseq(comma)
		if err != nil {
			return nil, err
		}
		end, ok := p.peek()
		if !ok {
			return nil, &UnbalancedDelimiterError{Span: open.Span, Open: open.Text}
		}
		p.pos++
		if end.Class == ClassComma {
			args = append(args, seqof(items, Span{Start: start, End: start}))
			start = end.Span.End
			continue
		}
		if end.Text != ")" {
			return nil, &UnbalancedDelimiterError{Span: end.Span, Open: open.Text, Close: end.Text}
		}
		if len(items) > 0 {
			args = append(args, seqof(items, Span{Start: start, End: start}))
		}
		return &Call{Callee: callee, Args: args, Span: callee.Pos().Join(end.Span)}, nil
	}
}
