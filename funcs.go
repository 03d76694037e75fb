package mathmode

import (
	"errors"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a callable value. Calling a function produces a value which is
// display-coerced into content, so functions may compute numbers as well as
// lay out their arguments.
type Func interface {
	Value
	// Name returns the name of the function for display and diagnostics.
	Name() string
	// Call evaluates the function. Call must not modify args and must be a
	// pure function of ctx and args.
	Call(ctx *Context, args Args) (Value, error)
}

// Args is the argument list of a call.
type Args struct {
	// Callee is the position of the called expression.
	Callee Span
	// Span is the position of the entire call.
	Span Span
	// Values holds the argument values. Arguments that are not identifiers,
	// field accesses, or calls are passed as ContentValue.
	Values []Value
	// Spans holds the position of each argument.
	Spans []Span
}

// Len returns the number of arguments.
func (a Args) Len() int {
	return len(a.Values)
}

// Expect checks that the number of arguments is between min and max
// inclusive.
func (a Args) Expect(min, max int) error {
	if n := a.Len(); n < min || n > max {
		return &ArgCountError{Min: min, Max: max, Got: n}
	}
	return nil
}

// Content display-coerces the i'th argument.
func (a Args) Content(ctx *Context, i int) (Content, error) {
	return ctx.display(ctx, a.Values[i], a.Spans[i])
}

// Num converts the i'th argument to a number at the context's precision.
func (a Args) Num(ctx *Context, i int) (*big.Float, error) {
	x, ok := ToNum(a.Values[i], ctx.Prec())
	if !ok {
		return nil, &ArgError{Arg: i + 1, Want: "number", Got: a.Values[i].Kind(), Span: a.Spans[i]}
	}
	return x, nil
}

// ToNum converts a value to a number with the given precision. Strings,
// symbols, and content made only of text are parsed as decimal numbers; ∞ is
// infinity. The result is always a new value.
func ToNum(v Value, prec uint) (*big.Float, bool) {
	var s string
	switch v := v.(type) {
	case Num:
		return new(big.Float).SetPrec(prec).Set(v.X), true
	case Str:
		s = string(v)
	case Symbol:
		s = v.Glyph
	case ContentValue:
		var ok bool
		s, ok = PlainText(v.Content)
		if !ok {
			return nil, false
		}
	default:
		return nil, false
	}
	s = strings.TrimSpace(strings.NewReplacer("−", "-", "∞", "inf").Replace(s))
	if s == "" {
		return nil, false
	}
	r, _, err := new(big.Float).SetPrec(prec).Parse(s, 10)
	switch {
	case err == nil: // do nothing
	case err.Error() == "exponent overflow",
		strings.HasSuffix(err.Error(), ": value out of range"):
		// There isn't realistically any better way to detect this error.
		r = new(big.Float).SetPrec(prec).SetInf(s[0] == '-')
	default:
		return nil, false
	}
	return r, true
}

// Builtin is a function implemented in Go.
type Builtin struct {
	name string
	f    func(ctx *Context, args Args) (Value, error)
}

// NewFunc creates a function from a Go function.
func NewFunc(name string, f func(ctx *Context, args Args) (Value, error)) *Builtin {
	return &Builtin{name: name, f: f}
}

func (*Builtin) Kind() string   { return "function" }
func (f *Builtin) Name() string { return f.name }

func (f *Builtin) Call(ctx *Context, args Args) (Value, error) {
	return f.f(ctx, args)
}

// Monadic wraps a numeric function of one variable into a Func. f must set
// out to its result; its return value is always ignored. If f is called on an
// argument outside f's domain, it should panic with an error of type
// big.ErrNaN, or that unwraps to it.
func Monadic(name string, f func(out, in *big.Float) *big.Float) Func {
	return NewFunc(name, func(ctx *Context, args Args) (r Value, err error) {
		if err := args.Expect(1, 1); err != nil {
			return nil, err
		}
		in, err := args.Num(ctx, 0)
		if err != nil {
			return nil, err
		}
		defer recoverNaN(name, in, 1, &err)
		out := new(big.Float).SetPrec(ctx.Prec())
		f(out, in)
		return Num{X: out}, nil
	})
}

// Dyadic wraps a numeric function of two variables into a Func, in the same
// manner as Monadic.
func Dyadic(name string, f func(out, x, y *big.Float) *big.Float) Func {
	return NewFunc(name, func(ctx *Context, args Args) (r Value, err error) {
		if err := args.Expect(2, 2); err != nil {
			return nil, err
		}
		x, err := args.Num(ctx, 0)
		if err != nil {
			return nil, err
		}
		y, err := args.Num(ctx, 1)
		if err != nil {
			return nil, err
		}
		defer recoverNaN(name, x, 1, &err)
		out := new(big.Float).SetPrec(ctx.Prec())
		f(out, x, y)
		return Num{X: out}, nil
	})
}

// recoverNaN converts a panic with big.ErrNaN into a DomainError.
func recoverNaN(name string, x *big.Float, arg int, err *error) {
	r := recover()
	if r == nil {
		return
	}
	e := r.(error) // panic if not error
	var nan big.ErrNaN
	if errors.As(e, &DomainError{}) {
		*err = e
		return
	}
	if errors.As(e, &nan) {
		*err = DomainError{X: x, Arg: arg, Func: name}
		return
	}
	panic(e)
}

// Op is a text operator like sin or lim. It displays as upright text, and
// calling it juxtaposes its name with its parenthesized arguments.
type Op struct {
	Text string
}

func (*Op) Kind() string   { return "operator" }
func (o *Op) Name() string { return o.Text }

func (o *Op) Call(ctx *Context, args Args) (Value, error) {
	name := &Text{Text: o.Text, Span: args.Callee}
	lr := Span{Start: args.Callee.End, End: args.Span.End}
	items := make([]Content, 0, 2*args.Len())
	for i := range args.Values {
		if i > 0 {
			items = append(items, &Text{Text: ",", Span: Span{Start: args.Spans[i-1].End, End: args.Spans[i].Start}})
		}
		c, err := args.Content(ctx, i)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	var body Content
	if len(items) == 1 {
		body = items[0]
	} else {
		body = &SequenceElem{Items: items, Span: Span{Start: lr.Start + 1, End: lr.End - 1}}
	}
	return ContentValue{Content: &SequenceElem{
		Items: []Content{name, &LrElem{Open: "(", Close: ")", Body: body, Span: lr}},
		Span:  args.Span,
	}}, nil
}

// layoutfuncs are functions which arrange their arguments into elements.
var layoutfuncs = []Func{
	NewFunc("sqrt", func(ctx *Context, args Args) (Value, error) {
		if err := args.Expect(1, 1); err != nil {
			return nil, err
		}
		rad, err := args.Content(ctx, 0)
		if err != nil {
			return nil, err
		}
		return ContentValue{Content: &RootElem{Radicand: rad, Span: args.Span}}, nil
	}),
	NewFunc("root", func(ctx *Context, args Args) (Value, error) {
		if err := args.Expect(2, 2); err != nil {
			return nil, err
		}
		index, err := args.Content(ctx, 0)
		if err != nil {
			return nil, err
		}
		rad, err := args.Content(ctx, 1)
		if err != nil {
			return nil, err
		}
		return ContentValue{Content: &RootElem{Index: index, Radicand: rad, Span: args.Span}}, nil
	}),
	NewFunc("frac", func(ctx *Context, args Args) (Value, error) {
		if err := args.Expect(2, 2); err != nil {
			return nil, err
		}
		num, err := args.Content(ctx, 0)
		if err != nil {
			return nil, err
		}
		denom, err := args.Content(ctx, 1)
		if err != nil {
			return nil, err
		}
		return ContentValue{Content: &FracElem{Num: num, Denom: denom, Span: args.Span}}, nil
	}),
	delimited("abs", "|", "|"),
	delimited("norm", "‖", "‖"),
	delimited("floor", "⌊", "⌋"),
	delimited("ceil", "⌈", "⌉"),
}

// delimited creates a function that wraps its argument in delimiters.
func delimited(name, open, close string) Func {
	return NewFunc(name, func(ctx *Context, args Args) (Value, error) {
		if err := args.Expect(1, 1); err != nil {
			return nil, err
		}
		body, err := args.Content(ctx, 0)
		if err != nil {
			return nil, err
		}
		return ContentValue{Content: &LrElem{Open: open, Close: close, Body: body, Span: args.Span}}, nil
	})
}

// calcPrec is the precision of the constants in the calc module.
const calcPrec = 256

// calcModule creates the calc module.
func calcModule() *Module {
	pi := bigfloat.Pi(new(big.Float).SetPrec(calcPrec))
	one := new(big.Float).SetPrec(calcPrec).SetInt64(1)
	e := bigfloat.Exp(new(big.Float).SetPrec(calcPrec), one)
	tau := new(big.Float).SetPrec(calcPrec).Mul(pi, big.NewFloat(2))
	m := &Module{
		Name: "calc",
		Members: map[string]Value{
			"pi":  Num{X: pi},
			"e":   Num{X: e},
			"tau": Num{X: tau},
			"inf": Num{X: new(big.Float).SetInf(false)},

			"exp": Monadic("exp", bigfloat.Exp),
			"ln": Monadic("ln", func(out, in *big.Float) *big.Float {
				if in.Sign() <= 0 {
					panic(big.ErrNaN{})
				}
				return bigfloat.Log(out, in)
			}),
			"log": Monadic("log", func(out, in *big.Float) *big.Float {
				if in.Sign() <= 0 {
					panic(big.ErrNaN{})
				}
				bigfloat.Log(out, in)
				in.SetFloat64(10).SetPrec(out.Prec())
				bigfloat.Log(in, in)
				return out.Quo(out, in)
			}),
			"sqrt": Monadic("sqrt", (*big.Float).Sqrt),
			"abs":  Monadic("abs", (*big.Float).Abs),
			"pow":  Dyadic("pow", pow),
			"fact": NewFunc("fact", factorial),
		},
	}
	return m
}

// pow sets out to x**y. A negative base needs an integer exponent.
func pow(out, x, y *big.Float) *big.Float {
	switch {
	case y.Sign() == 0:
		return out.SetInt64(1)
	case y.IsInf():
		a := new(big.Float).Abs(x)
		switch c := a.Cmp(big.NewFloat(1)); {
		case c == 0:
			return out.SetInt64(1)
		case (c > 0) != y.Signbit():
			return out.SetInf(false)
		default:
			return out.SetInt64(0)
		}
	}
	neg := false
	if x.Signbit() && x.Sign() != 0 {
		if !y.IsInt() {
			panic(big.ErrNaN{})
		}
		n, _ := y.Int(nil)
		neg = n.Bit(0) == 1
		x = new(big.Float).Neg(x)
	}
	switch {
	case x.Sign() == 0:
		if y.Sign() < 0 {
			out.SetInf(false)
		} else {
			out.SetInt64(0)
		}
	case x.IsInf():
		if y.Sign() < 0 {
			out.SetInt64(0)
		} else {
			out.SetInf(false)
		}
	default:
		// Pow returns a fresh value for some exponents instead of setting out.
		out.Set(bigfloat.Pow(out, x, y))
	}
	if neg && out.Sign() != 0 {
		out.Neg(out)
	}
	return out
}

// maxFact is the largest argument to calc.fact.
const maxFact = 1 << 12

func factorial(ctx *Context, args Args) (Value, error) {
	if err := args.Expect(1, 1); err != nil {
		return nil, err
	}
	x, err := args.Num(ctx, 0)
	if err != nil {
		return nil, err
	}
	if !x.IsInt() || x.Sign() < 0 || x.Cmp(big.NewFloat(maxFact)) > 0 {
		return nil, DomainError{X: x, Arg: 1, Func: "fact"}
	}
	n, _ := x.Int64()
	var r big.Int
	r.MulRange(1, n)
	return Num{X: new(big.Float).SetPrec(ctx.Prec()).SetInt(&r)}, nil
}

// DomainError is an error returned when a function is called on arguments
// outside its domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

// ArgCountError is an error returned when a function is called with the
// wrong number of arguments.
type ArgCountError struct {
	Min, Max int
	Got      int
}

func (err *ArgCountError) Error() string {
	want := strconv.Itoa(err.Min)
	if err.Max != err.Min {
		want += " to " + strconv.Itoa(err.Max)
	}
	return "want " + want + " arguments, got " + strconv.Itoa(err.Got)
}

// ArgError is an error returned when an argument has the wrong kind.
type ArgError struct {
	// Arg is the 1-based index of the argument.
	Arg  int
	Want string
	Got  string
	Span Span
}

func (err *ArgError) Error() string {
	return errpos(err.Span, "argument "+strconv.Itoa(err.Arg)+": want "+err.Want+", got "+err.Got)
}

func (err *ArgError) Pos() Span {
	return err.Span
}
