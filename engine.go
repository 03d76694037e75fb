package mathmode

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Engine evaluates many math-mode spans concurrently. Results are memoized by
// source text, so identical spans are parsed and built once. An Engine is
// safe for concurrent use.
type Engine struct {
	scope  *Scope
	parse  []ParseOption
	build  []ContextOption
	jobs   int
	logger *zap.Logger

	mu    sync.RWMutex
	memo  map[string]Result
	group singleflight.Group
}

// EngineOption is an option used when creating an engine.
type EngineOption interface {
	engineOption(*Engine)
}

type (
	jobsopt   int
	loggeropt struct {
		l *zap.Logger
	}
	parseopts []ParseOption
	buildopts []ContextOption
)

func (o jobsopt) engineOption(e *Engine)   { e.jobs = int(o) }
func (o loggeropt) engineOption(e *Engine) { e.logger = o.l }
func (o parseopts) engineOption(e *Engine) { e.parse = append(e.parse, o...) }
func (o buildopts) engineOption(e *Engine) { e.build = append(e.build, o...) }

// Jobs limits the number of spans evaluated at once. The default is the
// number of CPUs.
func Jobs(n int) EngineOption {
	return jobsopt(n)
}

// Logger sets the logger for the engine. The default discards all logs.
func Logger(l *zap.Logger) EngineOption {
	return loggeropt{l}
}

// WithParseOptions adds options for parsing each span.
func WithParseOptions(opts ...ParseOption) EngineOption {
	return parseopts(opts)
}

// WithContextOptions adds options for building each span.
func WithContextOptions(opts ...ContextOption) EngineOption {
	return buildopts(opts)
}

// Result is the outcome of evaluating one math-mode span. Spans in Expr,
// Content, and Err are relative to the start of Source.
type Result struct {
	Source  string
	Expr    Expr
	Content Content
	Err     error
}

// NewEngine creates an engine that evaluates spans in a scope. If scope is
// nil, the default scope is used.
func NewEngine(scope *Scope, opts ...EngineOption) *Engine {
	if scope == nil {
		scope = DefaultScope()
	}
	e := &Engine{
		scope:  scope,
		jobs:   runtime.NumCPU(),
		logger: zap.NewNop(),
		memo:   make(map[string]Result),
	}
	for _, opt := range opts {
		if opt != nil {
			opt.engineOption(e)
		}
	}
	if e.jobs <= 0 {
		e.jobs = 1
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Eval evaluates one span, using a memoized result if there is one.
func (e *Engine) Eval(src string) Result {
	r, _ := e.eval(src)
	return r
}

func (e *Engine) eval(src string) (r Result, cached bool) {
	e.mu.RLock()
	r, ok := e.memo[src]
	e.mu.RUnlock()
	if ok {
		return r, true
	}
	v, _, shared := e.group.Do(src, func() (any, error) {
		r := e.evaluate(src)
		e.mu.Lock()
		e.memo[src] = r
		e.mu.Unlock()
		return r, nil
	})
	return v.(Result), shared
}

// evaluate scans, parses, and builds one span.
func (e *Engine) evaluate(src string) Result {
	r := Result{Source: src}
	r.Expr, r.Err = e.Parse(src)
	if r.Err != nil {
		return r
	}
	r.Content, r.Err = Build(r.Expr, NewContext(e.scope, e.build...))
	return r
}

// Parse scans and parses one span with the engine's scope and parsing
// options. The result is not memoized.
func (e *Engine) Parse(src string) (Expr, error) {
	nodes, err := ScanString(src)
	if err != nil {
		return nil, err
	}
	opts := make([]ParseOption, 0, len(e.parse)+1)
	opts = append(opts, ParseScope(e.scope))
	opts = append(opts, e.parse...)
	return Parse(nodes, opts...)
}

// EvalAll evaluates each span concurrently. The result at index i belongs to
// srcs[i]. A failure in one span does not affect the others; use Errors to
// collect them. If ctx is canceled, spans not yet evaluated fail with the
// context's error, which EvalAll also returns.
func (e *Engine) EvalAll(ctx context.Context, srcs []string) ([]Result, error) {
	results := make([]Result, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.jobs)
	for i, src := range srcs {
		if err := gctx.Err(); err != nil {
			for j := i; j < len(srcs); j++ {
				results[j] = Result{Source: srcs[j], Err: err}
			}
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Source: src, Err: err}
				return err
			}
			r, cached := e.eval(src)
			results[i] = r
			if r.Err != nil {
				e.logger.Debug("math span failed", zap.Int("index", i), zap.Bool("cached", cached), zap.Error(r.Err))
			} else {
				e.logger.Debug("math span evaluated", zap.Int("index", i), zap.Bool("cached", cached))
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		e.logger.Warn("math evaluation canceled", zap.Int("spans", len(srcs)), zap.Error(err))
	}
	return results, err
}

// Errors combines the failures of all results into one error. The result is
// nil if every span succeeded. Use multierr.Errors to recover the individual
// failures.
func Errors(results []Result) error {
	var err error
	for _, r := range results {
		err = multierr.Append(err, r.Err)
	}
	return err
}
