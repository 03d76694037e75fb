package mathmode

import (
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Value is a value bound in a math scope. The concrete types are Num, Str,
// Symbol, ContentValue, *Module, and any Func.
type Value interface {
	// Kind names the type of the value for diagnostics.
	Kind() string
}

// Num is a number. The value must not be modified after it is bound.
type Num struct {
	X *big.Float
}

// Str is a string, displayed as upright text.
type Str string

// Symbol is a glyph with named variants. Field access on a symbol selects a
// variant, e.g. arrow.l.
type Symbol struct {
	Glyph    string
	Variants map[string]string
}

// ContentValue is prebuilt content.
type ContentValue struct {
	Content Content
}

// Module is a named collection of values. Field access on a module selects a
// member, e.g. calc.pi.
type Module struct {
	Name    string
	Members map[string]Value
}

func (Num) Kind() string          { return "number" }
func (Str) Kind() string          { return "string" }
func (Symbol) Kind() string       { return "symbol" }
func (ContentValue) Kind() string { return "content" }
func (*Module) Kind() string      { return "module" }

// Sym is a shortcut to create a symbol with variants given as name, glyph
// pairs. Panics if the pairs are uneven.
func Sym(glyph string, variants ...string) Symbol {
	if len(variants)%2 != 0 {
		panic("mathmode: uneven symbol variants for " + glyph)
	}
	s := Symbol{Glyph: glyph}
	if len(variants) > 0 {
		s.Variants = make(map[string]string, len(variants)/2)
		for i := 0; i < len(variants); i += 2 {
			s.Variants[variants[i]] = variants[i+1]
		}
	}
	return s
}

// Scope maps identifiers to values. A Scope is immutable once created, so it
// is safe to share between goroutines.
type Scope struct {
	parent *Scope
	names  map[string]Value
}

// ScopeOption is an option used when creating a scope.
type ScopeOption interface {
	scopeOption()
}

type (
	bindopt struct {
		name string
		val  Value
	}
	bindsopt map[string]Value
)

func (bindopt) scopeOption()  {}
func (bindsopt) scopeOption() {}

// Bind binds a name to a value.
func Bind(name string, val Value) ScopeOption {
	return bindopt{name, val}
}

// Binds binds any number of names.
func Binds(vals map[string]Value) ScopeOption {
	return bindsopt(vals)
}

// NewScope creates a scope with the given bindings.
func NewScope(opts ...ScopeOption) *Scope {
	return (*Scope)(nil).With(opts...)
}

// With creates a new scope which contains the bindings of s together with new
// bindings from opts. Later bindings shadow earlier ones. s is unchanged.
func (s *Scope) With(opts ...ScopeOption) *Scope {
	n := Scope{parent: s, names: make(map[string]Value)}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case bindopt:
			n.names[opt.name] = opt.val
		case bindsopt:
			for k, v := range opt {
				n.names[k] = v
			}
		default:
			panic("mathmode: unknown scope option type")
		}
	}
	return &n
}

// Lookup returns the value bound to a name.
func (s *Scope) Lookup(name string) (Value, bool) {
	for ; s != nil; s = s.parent {
		if v, ok := s.names[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Names returns the sorted list of names bound in the scope.
func (s *Scope) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for ; s != nil; s = s.parent {
		for k := range s.names {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Resolve looks up an identifier. If it is not bound, the error is an
// *UnresolvedIdentifierError with the given span.
func (s *Scope) Resolve(name string, span Span) (Value, error) {
	v, ok := s.Lookup(name)
	if !ok {
		return nil, &UnresolvedIdentifierError{Name: name, Span: span}
	}
	return v, nil
}

// Project selects a field of a value. Symbols project their variants and
// modules their members. Anything else fails with a *NoSuchFieldError.
//
// Variant names of a symbol may contain dots, in which case each field access
// selects one component: arrow.l.r projects l, then r.
func Project(v Value, field Identifier) (Value, error) {
	switch v := v.(type) {
	case Symbol:
		if g, ok := v.Variants[field.Name]; ok {
			return Symbol{Glyph: g, Variants: subvariants(v.Variants, field.Name)}, nil
		}
	case *Module:
		if m, ok := v.Members[field.Name]; ok {
			return m, nil
		}
	}
	return nil, &NoSuchFieldError{Kind: v.Kind(), Field: field.Name, Span: field.Span}
}

// subvariants returns the variants under a prefix with the prefix removed.
func subvariants(vs map[string]string, prefix string) map[string]string {
	var r map[string]string
	prefix += "."
	for k, g := range vs {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if r == nil {
			r = make(map[string]string)
		}
		r[k[len(prefix):]] = g
	}
	return r
}

// UnresolvedIdentifierError is an error from a lookup for an identifier that
// is missing from the math scope.
type UnresolvedIdentifierError struct {
	// Name is the name that was missing.
	Name string
	Span Span
}

func (err *UnresolvedIdentifierError) Error() string {
	return errpos(err.Span, "unknown identifier: "+strconv.Quote(err.Name))
}

func (err *UnresolvedIdentifierError) Pos() Span {
	return err.Span
}

// NoSuchFieldError is an error from a field access on a value without that
// field.
type NoSuchFieldError struct {
	// Kind is the kind of the value.
	Kind  string
	Field string
	// Span is the position of the field name.
	Span Span
}

func (err *NoSuchFieldError) Error() string {
	return errpos(err.Span, err.Kind+" has no field "+strconv.Quote(err.Field))
}

func (err *NoSuchFieldError) Pos() Span {
	return err.Span
}
