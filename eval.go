package mathmode

import (
	"io"
	"math/big"
	"strconv"
	"strings"
)

// DefaultBuildDepth is the default limit on nesting while building content.
const DefaultBuildDepth = 1024

// DisplayFunc converts a value into content. span is the source of the
// expression that produced the value.
type DisplayFunc func(ctx *Context, v Value, span Span) (Content, error)

// Context is a context for building content from expressions. It is not safe
// to use a Context concurrently, but Clone produces independent contexts that
// share the same immutable scope.
type Context struct {
	scope    *Scope
	display  DisplayFunc
	maxdepth int
	depth    int
	prec     uint
	digits   int
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	displayopt struct {
		f DisplayFunc
	}
	builddepthopt int
	precopt       uint
	digitsopt     int
)

func (displayopt) ctxOption()    {}
func (builddepthopt) ctxOption() {}
func (precopt) ctxOption()       {}
func (digitsopt) ctxOption()     {}

// Display sets the display coercion used to turn values into content. The
// default is Show.
func Display(f DisplayFunc) ContextOption {
	return displayopt{f}
}

// BuildDepth limits the nesting depth while building content. Panics if n is
// not positive.
func BuildDepth(n int) ContextOption {
	if n <= 0 {
		panic("mathmode: invalid build depth " + strconv.Itoa(n))
	}
	return builddepthopt(n)
}

// Prec sets the precision in bits of numeric calculations.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// Digits sets the number of significant digits with which numbers are
// displayed.
func Digits(n int) ContextOption {
	return digitsopt(n)
}

// NewContext creates a new build context over a scope. If scope is nil, the
// default scope is used. If no precision is given, the default is 64 bits, and
// numbers display with 10 significant digits.
func NewContext(scope *Scope, opts ...ContextOption) *Context {
	if scope == nil {
		scope = DefaultScope()
	}
	ctx := Context{
		scope:    scope,
		display:  Show,
		maxdepth: DefaultBuildDepth,
		prec:     64,
		digits:   10,
	}
	return ctx.Clone(opts...)
}

// Clone creates a copy of a context and applies options to it.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := *ctx
	n.depth = 0
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case displayopt:
			n.display = opt.f
		case builddepthopt:
			n.maxdepth = int(opt)
		case precopt:
			n.prec = uint(opt)
		case digitsopt:
			n.digits = int(opt)
		default:
			panic("mathmode: unknown option type")
		}
	}
	return &n
}

// Scope returns the scope in which the context resolves identifiers.
func (ctx *Context) Scope() *Scope {
	return ctx.scope
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Build builds the content for an expression. The result is a pure function
// of the expression, the scope, and the context options: building the same
// tree twice yields identical content. If any part of the expression fails to
// build, the result is nil and the error implements SpanError.
func Build(e Expr, ctx *Context) (Content, error) {
	ctx.depth = 0
	return ctx.build(e)
}

// nest enters one level of nesting.
func (ctx *Context) nest(span Span) error {
	if ctx.depth >= ctx.maxdepth {
		return &NestingError{Span: span, Limit: ctx.maxdepth}
	}
	ctx.depth++
	return nil
}

func (ctx *Context) build(e Expr) (Content, error) {
	if err := ctx.nest(e.Pos()); err != nil {
		return nil, err
	}
	defer func() { ctx.depth-- }()
	switch e := e.(type) {
	case *Atom:
		if e.Kind == AtomIdent {
			return ctx.show(e)
		}
		return &Text{Text: e.Text, Span: e.Span}, nil
	case *Group:
		body, err := ctx.build(e.Body)
		if err != nil {
			return nil, err
		}
		return &LrElem{Open: e.Open.Glyph, Close: e.Close.Glyph, Body: body, Span: e.Span}, nil
	case *Attach:
		return ctx.buildattach(e)
	case *Frac:
		num, err := ctx.build(e.Num)
		if err != nil {
			return nil, err
		}
		denom, err := ctx.build(e.Denom)
		if err != nil {
			return nil, err
		}
		return &FracElem{Num: num, Denom: denom, Span: e.Span}, nil
	case *Root:
		var index Content
		if e.Index != nil {
			var err error
			index, err = ctx.build(e.Index)
			if err != nil {
				return nil, err
			}
		}
		rad, err := ctx.build(e.Radicand)
		if err != nil {
			return nil, err
		}
		return &RootElem{Index: index, Radicand: rad, Span: e.Span}, nil
	case *Factorial:
		operand, err := ctx.build(e.Operand)
		if err != nil {
			return nil, err
		}
		bang := &Text{Text: "!", Span: Span{Start: e.Span.End - 1, End: e.Span.End}}
		return &SequenceElem{Items: []Content{operand, bang}, Span: e.Span}, nil
	case *FieldAccess, *Call:
		return ctx.show(e)
	case *AlignPoint:
		return &AlignPointElem{Span: e.Span}, nil
	case *Space:
		if e.Kind == SpaceWide {
			return &Text{Text: "\u2003", Span: e.Span}, nil
		}
		return &Text{Text: " ", Span: e.Span}, nil
	case *Sequence:
		items := make([]Content, 0, len(e.Items))
		for _, it := range e.Items {
			c, err := ctx.build(it)
			if err != nil {
				return nil, err
			}
			items = append(items, c)
		}
		return &SequenceElem{Items: items, Span: e.Span}, nil
	default:
		panic("mathmode: invalid expression node " + e.String())
	}
}

func (ctx *Context) buildattach(e *Attach) (Content, error) {
	base, err := ctx.build(e.Base)
	if err != nil {
		return nil, err
	}
	r := &AttachElem{Base: base, Primes: e.Primes, Span: e.Span}
	if e.Sub != nil {
		r.Bottom, err = ctx.build(e.Sub)
		if err != nil {
			return nil, err
		}
	}
	switch {
	case e.Sup != nil:
		r.Top, err = ctx.build(e.Sup)
		if err != nil {
			return nil, err
		}
	case e.Primes > 0:
		r.Top = &PrimesElem{Count: e.Primes, Span: e.PrimesSpan}
	}
	return r, nil
}

// show resolves an expression to a value and display-coerces it.
func (ctx *Context) show(e Expr) (Content, error) {
	v, err := ctx.value(e)
	if err != nil {
		return nil, err
	}
	return ctx.display(ctx, v, e.Pos())
}

// value evaluates an identifier, field access, or call to a value. Any other
// expression evaluates to its content.
func (ctx *Context) value(e Expr) (Value, error) {
	switch e := e.(type) {
	case *Atom:
		if e.Kind == AtomIdent {
			return ctx.scope.Resolve(e.Text, e.Span)
		}
	case *FieldAccess:
		if err := ctx.nest(e.Span); err != nil {
			return nil, err
		}
		defer func() { ctx.depth-- }()
		v, err := ctx.value(e.Target)
		if err != nil {
			return nil, err
		}
		return Project(v, e.Field)
	case *Call:
		if err := ctx.nest(e.Span); err != nil {
			return nil, err
		}
		defer func() { ctx.depth-- }()
		return ctx.call(e)
	}
	c, err := ctx.build(e)
	if err != nil {
		return nil, err
	}
	return ContentValue{Content: c}, nil
}

func (ctx *Context) call(e *Call) (Value, error) {
	v, err := ctx.value(e.Callee)
	if err != nil {
		return nil, err
	}
	f, ok := v.(Func)
	if !ok {
		return nil, &NotCallableError{Kind: v.Kind(), Span: e.Callee.Pos()}
	}
	args := Args{
		Callee: e.Callee.Pos(),
		Span:   e.Span,
		Values: make([]Value, len(e.Args)),
		Spans:  make([]Span, len(e.Args)),
	}
	for i, a := range e.Args {
		args.Values[i], err = ctx.value(a)
		if err != nil {
			return nil, err
		}
		args.Spans[i] = a.Pos()
	}
	r, err := f.Call(ctx, args)
	if err != nil {
		return nil, &CallError{Func: f.Name(), Err: err, Span: e.Span}
	}
	return r, nil
}

// Show is the default display coercion. Numbers display with the context's
// significant digits, strings and symbols as their text, functions and
// modules as their names. Content displays as itself; content that does not
// come from within span is respanned to it.
func Show(ctx *Context, v Value, span Span) (Content, error) {
	switch v := v.(type) {
	case Num:
		return &Text{Text: formatNum(v.X, ctx.digits), Span: span}, nil
	case Str:
		return &Text{Text: string(v), Span: span}, nil
	case Symbol:
		return &Text{Text: v.Glyph, Span: span}, nil
	case ContentValue:
		if v.Content == nil {
			return &SequenceElem{Span: span}, nil
		}
		if !span.Contains(v.Content.Pos()) {
			return Respan(v.Content, span), nil
		}
		return v.Content, nil
	case *Module:
		return &Text{Text: v.Name, Span: span}, nil
	case Func:
		return &Text{Text: v.Name(), Span: span}, nil
	default:
		panic("mathmode: unknown value type " + v.Kind())
	}
}

// formatNum formats a number with the given significant digits.
func formatNum(x *big.Float, digits int) string {
	if x.IsInf() {
		if x.Signbit() {
			return "-∞"
		}
		return "∞"
	}
	return x.Text('g', digits)
}

// Eval is a shortcut to scan, parse, and build one math-mode span. If scope
// is nil, the default scope is used.
func Eval(src io.RuneScanner, scope *Scope, opts ...ContextOption) (Content, error) {
	if scope == nil {
		scope = DefaultScope()
	}
	nodes, err := Scan(src)
	if err != nil {
		return nil, err
	}
	e, err := Parse(nodes, ParseScope(scope))
	if err != nil {
		return nil, err
	}
	return Build(e, NewContext(scope, opts...))
}

// EvalString is a shortcut to scan, parse, and build a string.
func EvalString(src string, scope *Scope, opts ...ContextOption) (Content, error) {
	return Eval(strings.NewReader(src), scope, opts...)
}

// NotCallableError is an error from calling a value which is not a function.
type NotCallableError struct {
	// Kind is the kind of the called value.
	Kind string
	// Span is the position of the callee.
	Span Span
}

func (err *NotCallableError) Error() string {
	return errpos(err.Span, err.Kind+" is not callable")
}

func (err *NotCallableError) Pos() Span {
	return err.Span
}

// CallError is an error returned by a function for its arguments. CallError
// unwraps to the function's error.
type CallError struct {
	// Func is the name of the function.
	Func string
	// Err is the error from the function.
	Err error
	// Span is the position of the call.
	Span Span
}

func (err *CallError) Error() string {
	return errpos(err.Span, "calling "+err.Func+": "+err.Err.Error())
}

func (err *CallError) Unwrap() error {
	return err.Err
}

func (err *CallError) Pos() Span {
	return err.Span
}
