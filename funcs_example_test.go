package mathmode_test

import (
	"fmt"
	"math/big"

	"github.com/zephyrtronium/mathmode"
)

func ExampleNewFunc() {
	twice := mathmode.NewFunc("twice", func(ctx *mathmode.Context, args mathmode.Args) (mathmode.Value, error) {
		if err := args.Expect(1, 1); err != nil {
			return nil, err
		}
		c, err := args.Content(ctx, 0)
		if err != nil {
			return nil, err
		}
		return mathmode.ContentValue{Content: &mathmode.SequenceElem{Items: []mathmode.Content{c, c}, Span: args.Span}}, nil
	})
	scope := mathmode.DefaultScope().With(mathmode.Bind("twice", twice))

	c, err := mathmode.EvalString("twice(x) twice(y/2)", scope)
	if err != nil {
		panic(err)
	}
	fmt.Println(c)
	// Output:
	// (seq (seq "x" "x") " " (seq (frac "y" "2") (frac "y" "2")))
}

func ExampleMonadic() {
	cube := mathmode.Monadic("cube", func(out, in *big.Float) *big.Float {
		return out.Mul(in, out.Mul(in, in))
	})
	scope := mathmode.DefaultScope().With(mathmode.Bind("cube", cube))

	c, _ := mathmode.EvalString("cube(3) = cube(calc.sqrt(2))", scope, mathmode.Digits(6))
	fmt.Println(c)
	// Output:
	// (seq "27" " " "=" " " "2.82843")
}
