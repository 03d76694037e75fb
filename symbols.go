package mathmode

import "sync"

// symbols are the named glyphs of the default scope.
var symbols = map[string]Symbol{
	"alpha":   Sym("α"),
	"beta":    Sym("β", "alt", "ϐ"),
	"gamma":   Sym("γ"),
	"delta":   Sym("δ"),
	"epsilon": Sym("ε", "alt", "ϵ"),
	"zeta":    Sym("ζ"),
	"eta":     Sym("η"),
	"theta":   Sym("θ", "alt", "ϑ"),
	"iota":    Sym("ι"),
	"kappa":   Sym("κ", "alt", "ϰ"),
	"lambda":  Sym("λ"),
	"mu":      Sym("μ"),
	"nu":      Sym("ν"),
	"xi":      Sym("ξ"),
	"omicron": Sym("ο"),
	"pi":      Sym("π", "alt", "ϖ"),
	"rho":     Sym("ρ", "alt", "ϱ"),
	"sigma":   Sym("σ", "alt", "ς"),
	"tau":     Sym("τ"),
	"upsilon": Sym("υ"),
	"phi":     Sym("φ", "alt", "ϕ"),
	"chi":     Sym("χ"),
	"psi":     Sym("ψ"),
	"omega":   Sym("ω"),
	"Alpha":   Sym("Α"),
	"Beta":    Sym("Β"),
	"Gamma":   Sym("Γ"),
	"Delta":   Sym("Δ"),
	"Theta":   Sym("Θ"),
	"Lambda":  Sym("Λ"),
	"Xi":      Sym("Ξ"),
	"Pi":      Sym("Π"),
	"Sigma":   Sym("Σ"),
	"Phi":     Sym("Φ"),
	"Psi":     Sym("Ψ"),
	"Omega":   Sym("Ω"),

	"arrow": Sym("→",
		"r", "→", "l", "←", "t", "↑", "b", "↓",
		"l.r", "↔", "r.long", "⟶", "l.long", "⟵", "r.double", "⇒", "l.double", "⇐",
	),
	"plus":     Sym("+", "minus", "±", "circle", "⊕"),
	"minus":    Sym("−", "plus", "∓"),
	"times":    Sym("×", "circle", "⊗"),
	"div":      Sym("÷"),
	"dot":      Sym("⋅", "c", "⋅", "circle", "⊙"),
	"eq":       Sym("=", "not", "≠", "def", "≝"),
	"lt":       Sym("<", "eq", "≤"),
	"gt":       Sym(">", "eq", "≥"),
	"approx":   Sym("≈"),
	"equiv":    Sym("≡"),
	"prop":     Sym("∝"),
	"in":       Sym("∈", "not", "∉"),
	"subset":   Sym("⊂", "eq", "⊆"),
	"supset":   Sym("⊃", "eq", "⊇"),
	"union":    Sym("∪", "big", "⋃"),
	"sect":     Sym("∩", "big", "⋂"),
	"forall":   Sym("∀"),
	"exists":   Sym("∃", "not", "∄"),
	"partial":  Sym("∂"),
	"nabla":    Sym("∇"),
	"emptyset": Sym("∅"),
	"oo":       Sym("∞"),
	"infinity": Sym("∞"),
	"dots":     Sym("…", "h", "…", "c", "⋯", "v", "⋮", "down", "⋱"),
	"sum":      Sym("∑"),
	"product":  Sym("∏"),
	"integral": Sym("∫", "double", "∬", "triple", "∭", "cont", "∮"),
	"NN":       Sym("ℕ"),
	"ZZ":       Sym("ℤ"),
	"QQ":       Sym("ℚ"),
	"RR":       Sym("ℝ"),
	"CC":       Sym("ℂ"),
}

// ops are the text operators of the default scope.
var ops = []string{
	"arccos", "arcsin", "arctan", "arg", "cos", "cosh", "cot", "coth", "csc",
	"deg", "det", "dim", "exp", "gcd", "hom", "inf", "ker", "lcm", "lg", "lim",
	"liminf", "limsup", "ln", "log", "max", "min", "mod", "Pr", "sec", "sin",
	"sinh", "sup", "tan", "tanh",
}

var (
	defscope     *Scope
	defscopeOnce sync.Once
)

// DefaultScope returns the standard math scope: Greek letters and other
// symbols, text operators like sin, layout functions like sqrt and frac, and
// the calc module. The scope is shared; extend it with With.
func DefaultScope() *Scope {
	defscopeOnce.Do(func() {
		vals := make(map[string]Value, len(symbols)+len(ops)+len(layoutfuncs)+1)
		for k, v := range symbols {
			vals[k] = v
		}
		for _, k := range ops {
			vals[k] = &Op{Text: k}
		}
		for _, f := range layoutfuncs {
			vals[f.Name()] = f
		}
		vals["calc"] = calcModule()
		defscope = NewScope(Binds(vals))
	})
	return defscope
}
