package mathmode_test

import (
	"testing"

	"github.com/zephyrtronium/mathmode"
)

func FuzzEval(f *testing.F) {
	f.Add("x/y")
	f.Add("alpha.alt + arrow.l.r")
	f.Add("sqrt(x) frac(1, 2) abs(-1)")
	f.Add("calc.fact(5) calc.ln(0)")
	f.Add("nope(x)")
	f.Fuzz(func(t *testing.T, s string) {
		c, err := mathmode.EvalString(s, nil)
		if err != nil {
			if _, ok := err.(mathmode.SpanError); !ok {
				t.Errorf("%q: error %v does not have a span", s, err)
			}
			return
		}
		if p := c.Pos(); p.Start < 0 || p.End > len(s) {
			t.Errorf("%q: content span %v outside source", s, p)
		}
	})
}
