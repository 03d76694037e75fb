package mathmode

import "strconv"

// DefaultMaxDepth is the default limit on expression nesting.
const DefaultMaxDepth = 256

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	depthopt int
	scopeopt struct {
		s *Scope
	}
)

// parsectx holds general data for parsing. It is also a ParseOption.
type parsectx struct {
	// maxdepth is the maximum nesting depth of the expression tree.
	maxdepth int
	// scope decides which identifiers are symbols. Symbols followed by
	// parentheses are juxtaposed with them rather than called.
	scope *Scope
}

// MaxDepth limits the nesting depth of parsed expressions. Parsing deeper
// input fails with a *NestingError. Panics if n is not positive.
func MaxDepth(n int) ParseOption {
	if n <= 0 {
		panic("mathmode: invalid max depth " + strconv.Itoa(n))
	}
	return depthopt(n)
}

func (o depthopt) parseOption(p parsectx) parsectx {
	p.maxdepth = int(o)
	return p
}

// ParseScope sets the scope the parser consults to tell symbols from
// functions. The default is DefaultScope().
func ParseScope(s *Scope) ParseOption {
	return scopeopt{s}
}

func (o scopeopt) parseOption(p parsectx) parsectx {
	p.scope = o.s
	return p
}

// ParsingPreset creates a parsing preset that applies several options at once.
// Options applied after a preset override it.
func ParsingPreset(opts ...ParseOption) ParseOption {
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	return &p
}

func (o *parsectx) parseOption(p parsectx) parsectx {
	if o.maxdepth != 0 {
		p.maxdepth = o.maxdepth
	}
	if o.scope != nil {
		p.scope = o.scope
	}
	return p
}
