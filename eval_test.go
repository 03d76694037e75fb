package mathmode_test

import (
	"errors"
	"math/big"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/zephyrtronium/mathmode"
)

func TestBuild(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"letter", "x", `"x"`},
		{"num", "12.5", `"12.5"`},
		{"str", `"if"`, `"if"`},
		{"symbol", "alpha", `"α"`},
		{"variant", "arrow.l", `"←"`},
		{"variant-chain", "arrow.l.r", `"↔"`},
		{"alt", "phi.alt", `"ϕ"`},
		{"frac", "x/y", `(frac "x" "y")`},
		{"attach", "a_b^c", `(attach "a" b:"b" t:"c")`},
		{"prime", "x'", `(attach "x" t:(primes 1))`},
		{"prime-sup", "a'^b", `(attach "a" t:"b" primes:1)`},
		{"group", "(x)", `(lr ( "x" ))`},
		{"norm", "||v||", `(lr ‖ "v" ‖)`},
		{"sqrt", "√x", `(root "x")`},
		{"cbrt", "∛x", `(root ["3"] "x")`},
		{"fact", "n!", `(seq "n" "!")`},
		{"align", "a & b", `(seq "a" " " (align) " " "b")`},
		{"wide", "a\nb", `(seq "a" "\u2003" "b")`},
		{"op", "sin x", `(seq "sin" " " "x")`},
		{"op-call", "sin(x)", `(seq "sin" (lr ( "x" )))`},
		{"op-args", "max(a, b)", `(seq "max" (lr ( (seq "a" "," "b") )))`},
		{"symbol-paren", "pi(x)", `(seq "π" (lr ( "x" )))`},
		{"sqrt-func", "sqrt(x/y)", `(root (frac "x" "y"))`},
		{"root-func", "root(3, x)", `(root ["3"] "x")`},
		{"frac-func", "frac(a, b)", `(frac "a" "b")`},
		{"abs-func", "abs(x)", `(lr | "x" |)`},
		{"floor-func", "floor(x)", `(lr ⌊ "x" ⌋)`},
		{"module", "calc", `"calc"`},
		{"func", "sqrt", `"sqrt"`},
		{"calc-pi", "calc.pi", `"3.141592654"`},
		{"calc-inf", "calc.inf", `"∞"`},
		{"calc-pow", "calc.pow(2, 10)", `"1024"`},
		{"calc-pow-one", "calc.pow(3, 1)", `"3"`},
		{"calc-pow-zero-zero", "calc.pow(0, 0)", `"1"`},
		{"calc-pow-zero", "calc.pow(0, 2)", `"0"`},
		{"calc-pow-zero-neg", "calc.pow(0, -1)", `"∞"`},
		{"calc-pow-inf", "calc.pow(calc.inf, 2)", `"∞"`},
		{"calc-pow-inf-neg", "calc.pow(calc.inf, -1)", `"0"`},
		{"calc-pow-neg-even", "calc.pow(-2, 2)", `"4"`},
		{"calc-pow-neg-odd", "calc.pow(-2, 3)", `"-8"`},
		{"calc-pow-half", "calc.pow(0.5, calc.inf)", `"0"`},
		{"calc-sqrt", "calc.sqrt(2)", `"1.414213562"`},
		{"calc-fact", "calc.fact(5)", `"120"`},
		{"calc-nested", "calc.fact(calc.fact(3))", `"720"`},
		{"calc-exp", "calc.exp(0)", `"1"`},
		{"calc-abs", "calc.abs(-2)", `"2"`},
		{"calc-frac", "frac(1, calc.pi)", `(frac "1" "3.141592654")`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := mathmode.EvalString(c.src, nil)
			if err != nil {
				t.Fatalf("%q failed: %v", c.src, err)
			}
			if got := r.String(); got != c.want {
				t.Errorf("%q built wrong:\n\twant %s\n\tgot  %s", c.src, c.want, got)
			}
		})
	}
}

func TestBuildSpans(t *testing.T) {
	r, err := mathmode.EvalString("x'' + sin(y)", nil)
	if err != nil {
		t.Fatal(err)
	}
	seq := r.(*mathmode.SequenceElem)
	a := seq.Items[0].(*mathmode.AttachElem)
	if p := a.Top.Pos(); p != (mathmode.Span{Start: 1, End: 3}) {
		t.Errorf("primes at wrong span %v", p)
	}
	sub, err := mathmode.EvalString("a_b'", nil)
	if err != nil {
		t.Fatal(err)
	}
	if p := sub.(*mathmode.AttachElem).Top.Pos(); p != (mathmode.Span{Start: 3, End: 4}) {
		t.Errorf("primes after subscript at wrong span %v", p)
	}
	call := seq.Items[4].(*mathmode.SequenceElem)
	if p := call.Pos(); p != (mathmode.Span{Start: 6, End: 12}) {
		t.Errorf("call at wrong span %v", p)
	}
	if p := call.Items[0].Pos(); p != (mathmode.Span{Start: 6, End: 9}) {
		t.Errorf("operator name at wrong span %v", p)
	}
	if p := call.Items[1].Pos(); p != (mathmode.Span{Start: 9, End: 12}) {
		t.Errorf("operator parens at wrong span %v", p)
	}

	f, err := mathmode.EvalString("n!", nil)
	if err != nil {
		t.Fatal(err)
	}
	if p := f.(*mathmode.SequenceElem).Items[1].Pos(); p != (mathmode.Span{Start: 1, End: 2}) {
		t.Errorf("bang at wrong span %v", p)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  error
		span mathmode.Span
		res  []string
	}{
		{"unknown", "nope", new(mathmode.UnresolvedIdentifierError), mathmode.Span{Start: 0, End: 4}, []string{`unknown identifier: "nope"`}},
		{"unknown-inner", "a + nope", new(mathmode.UnresolvedIdentifierError), mathmode.Span{Start: 4, End: 8}, nil},
		{"unknown-arg", "frac(a, nope)", new(mathmode.UnresolvedIdentifierError), mathmode.Span{Start: 8, End: 12}, nil},
		{"unknown-callee", "nope(x)", new(mathmode.UnresolvedIdentifierError), mathmode.Span{Start: 0, End: 4}, nil},
		{"module-field", "calc.nope", new(mathmode.NoSuchFieldError), mathmode.Span{Start: 5, End: 9}, []string{`module has no field "nope"`}},
		{"symbol-field", "alpha.beta", new(mathmode.NoSuchFieldError), mathmode.Span{Start: 6, End: 10}, []string{`symbol has no field "beta"`}},
		{"num-field", "calc.pi.x", new(mathmode.NoSuchFieldError), mathmode.Span{Start: 8, End: 9}, []string{`number has no field`}},
		{"not-callable", "calc.pi(2)", new(mathmode.NotCallableError), mathmode.Span{Start: 0, End: 7}, []string{`number is not callable`}},
		{"domain", "calc.sqrt(-1)", new(mathmode.CallError), mathmode.Span{Start: 0, End: 13}, []string{`calling sqrt: `, `outside domain of sqrt`}},
		{"ln", "calc.ln(0)", new(mathmode.CallError), mathmode.Span{Start: 0, End: 10}, []string{`outside domain of ln`}},
		{"fact", "calc.fact(2.5)", new(mathmode.CallError), mathmode.Span{Start: 0, End: 14}, []string{`outside domain of fact`}},
		{"argcount", "sqrt(a, b)", new(mathmode.CallError), mathmode.Span{Start: 0, End: 10}, []string{`calling sqrt: want 1 arguments, got 2`}},
		{"argkind", "calc.exp(sqrt(2))", new(mathmode.CallError), mathmode.Span{Start: 0, End: 17}, []string{`argument 1: want number, got content`}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := mathmode.EvalString(c.src, nil)
			if r != nil {
				t.Errorf("%q built non-nil %v", c.src, r)
			}
			if reflect.TypeOf(err) != reflect.TypeOf(c.err) {
				t.Fatalf("wrong error type from %q: want %T, got %T (%v)", c.src, c.err, err, err)
			}
			if p := err.(mathmode.SpanError).Pos(); p != c.span {
				t.Errorf("%q: want error at %v, got %v", c.src, c.span, p)
			}
			msg := err.Error()
			for _, re := range c.res {
				if !regexp.MustCompile(re).MatchString(msg) {
					t.Errorf("error message %q does not match %s", msg, re)
				}
			}
		})
	}
}

func TestBuildErrorChains(t *testing.T) {
	_, err := mathmode.EvalString("calc.sqrt(-1)", nil)
	var de mathmode.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("want DomainError in %v", err)
	}
	if de.Func != "sqrt" || de.Arg != 1 || de.X.Cmp(big.NewFloat(-1)) != 0 {
		t.Errorf("wrong domain error %+v", de)
	}

	_, err = mathmode.EvalString("calc.pow(-2, 0.5)", nil)
	if !errors.As(err, &de) {
		t.Errorf("want DomainError for negative base with fractional exponent, got %v", err)
	}

	_, err = mathmode.EvalString("frac(a)", nil)
	var ace *mathmode.ArgCountError
	if !errors.As(err, &ace) {
		t.Fatalf("want ArgCountError in %v", err)
	}
	if ace.Min != 2 || ace.Max != 2 || ace.Got != 1 {
		t.Errorf("wrong arg count error %+v", ace)
	}

	_, err = mathmode.EvalString("calc.exp(x y)", nil)
	var ae *mathmode.ArgError
	if !errors.As(err, &ae) {
		t.Fatalf("want ArgError in %v", err)
	}
	if ae.Span != (mathmode.Span{Start: 9, End: 12}) {
		t.Errorf("argument error at wrong span %v", ae.Span)
	}
}

func TestBuildDeterministic(t *testing.T) {
	srcs := []string{
		"sum_(i=1)^n i^2 = frac(n(n+1)(2n+1), 6)",
		"f'(x) &= lim_(h -> 0) (f(x+h) - f(x))/h",
		"calc.pi calc.e arrow.r.long",
	}
	for _, src := range srcs {
		a, err := mathmode.EvalString(src, nil)
		if err != nil {
			t.Errorf("%q failed: %v", src, err)
			continue
		}
		b, err := mathmode.EvalString(src, nil)
		if err != nil {
			t.Errorf("%q failed the second time: %v", src, err)
			continue
		}
		if !mathmode.ContentEqual(a, b) {
			t.Errorf("%q built differently:\n\t%v\n\t%v", src, a, b)
		}
	}
}

func TestBuildDepth(t *testing.T) {
	src := strings.Repeat("(", 10) + "x" + strings.Repeat(")", 10)
	e, err := mathmode.ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mathmode.Build(e, mathmode.NewContext(nil, mathmode.BuildDepth(5))); err == nil {
		t.Error("deep expression built under a small limit")
	} else if _, ok := err.(*mathmode.NestingError); !ok {
		t.Errorf("want nesting error, got %v", err)
	}
	if _, err := mathmode.Build(e, mathmode.NewContext(nil, mathmode.BuildDepth(11))); err != nil {
		t.Errorf("failed under a sufficient limit: %v", err)
	}

	ctx := mathmode.NewContext(nil, mathmode.BuildDepth(11))
	for i := 0; i < 3; i++ {
		if _, err := mathmode.Build(e, ctx); err != nil {
			t.Errorf("reusing context failed on build %d: %v", i, err)
		}
	}
}

func TestContextOptions(t *testing.T) {
	r, err := mathmode.EvalString("calc.pi", nil, mathmode.Digits(3))
	if err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != `"3.14"` {
		t.Errorf("want 3 digits, got %s", got)
	}

	ctx := mathmode.NewContext(nil, mathmode.Prec(32))
	if ctx.Prec() != 32 {
		t.Errorf("want prec 32, got %d", ctx.Prec())
	}
	if c := ctx.Clone(mathmode.Prec(100)); c.Prec() != 100 || ctx.Prec() != 32 {
		t.Errorf("clone changed the original or ignored its option: %d %d", ctx.Prec(), c.Prec())
	}
	if ctx.Scope() != mathmode.DefaultScope() {
		t.Error("nil scope is not the default scope")
	}

	bracket := func(ctx *mathmode.Context, v mathmode.Value, span mathmode.Span) (mathmode.Content, error) {
		if s, ok := v.(mathmode.Symbol); ok {
			return &mathmode.Text{Text: "<" + s.Glyph + ">", Span: span}, nil
		}
		return mathmode.Show(ctx, v, span)
	}
	r, err = mathmode.EvalString("alpha+x", nil, mathmode.Display(bracket))
	if err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != `(seq "<α>" "+" "x")` {
		t.Errorf("custom display not used: %s", got)
	}
}

func TestBuildScope(t *testing.T) {
	half := &mathmode.FracElem{Num: &mathmode.Text{Text: "1"}, Denom: &mathmode.Text{Text: "2"}}
	scope := mathmode.DefaultScope().With(
		mathmode.Bind("gee", mathmode.Num{X: big.NewFloat(9.8)}),
		mathmode.Bind("half", mathmode.ContentValue{Content: half}),
		mathmode.Bind("name", mathmode.Str("Ω₀")),
	)
	r, err := mathmode.EvalString("gee name", scope)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != `(seq "9.8" " " "Ω₀")` {
		t.Errorf("wrong bound values: %s", got)
	}

	r, err = mathmode.EvalString("x half", scope)
	if err != nil {
		t.Fatal(err)
	}
	f := r.(*mathmode.SequenceElem).Items[2].(*mathmode.FracElem)
	want := mathmode.Span{Start: 2, End: 6}
	if f.Pos() != want || f.Num.Pos() != want || f.Denom.Pos() != want {
		t.Errorf("prebuilt content not respanned: %v %v %v", f.Pos(), f.Num.Pos(), f.Denom.Pos())
	}
	if half.Pos() != (mathmode.Span{}) {
		t.Error("respanning modified the bound content")
	}

	if _, err := mathmode.EvalString("gee", nil); err == nil {
		t.Error("binding leaked into the default scope")
	}
}
