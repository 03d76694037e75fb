// Package config loads mathmode settings from YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/mathmode"
)

// Config holds the settings for parsing and building math.
type Config struct {
	// MaxDepth limits the nesting depth of parsed expressions.
	MaxDepth int `yaml:"max_depth"`
	// BuildDepth limits the nesting depth while building content.
	BuildDepth int `yaml:"build_depth"`
	// Precision is the precision in bits of numeric calculations.
	Precision uint `yaml:"precision"`
	// Digits is the number of significant digits of displayed numbers.
	Digits int `yaml:"digits"`
	// Jobs limits the number of spans evaluated concurrently.
	Jobs int `yaml:"jobs"`
	// Symbols binds names to glyphs.
	Symbols map[string]string `yaml:"symbols"`
	// Values binds names to numbers written in decimal.
	Values map[string]string `yaml:"values"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		MaxDepth:   mathmode.DefaultMaxDepth,
		BuildDepth: mathmode.DefaultBuildDepth,
		Precision:  64,
		Digits:     10,
		Jobs:       0,
	}
}

// Load reads a configuration file. Settings missing from the file keep their
// defaults. If path is empty, the result is the default configuration.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML configuration. Unknown keys are errors.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	switch {
	case c.MaxDepth <= 0:
		return fmt.Errorf("max_depth must be positive, not %d", c.MaxDepth)
	case c.BuildDepth <= 0:
		return fmt.Errorf("build_depth must be positive, not %d", c.BuildDepth)
	case c.Precision == 0:
		return errors.New("precision must be positive")
	case c.Digits <= 0:
		return fmt.Errorf("digits must be positive, not %d", c.Digits)
	case c.Jobs < 0:
		return fmt.Errorf("jobs must not be negative, not %d", c.Jobs)
	}
	for _, name := range sortedKeys(c.Symbols) {
		if !isName(name) {
			return fmt.Errorf("symbol name %q is not an identifier", name)
		}
		if c.Symbols[name] == "" {
			return fmt.Errorf("symbol %q has no glyph", name)
		}
	}
	for _, name := range sortedKeys(c.Values) {
		if !isName(name) {
			return fmt.Errorf("value name %q is not an identifier", name)
		}
		if _, ok := mathmode.ToNum(mathmode.Str(c.Values[name]), c.Precision); !ok {
			return fmt.Errorf("value %q: %q is not a number", name, c.Values[name])
		}
		if _, dup := c.Symbols[name]; dup {
			return fmt.Errorf("%q is bound as both a symbol and a value", name)
		}
	}
	return nil
}

// isName reports whether s is an identifier that the scanner reads as one
// token: two or more letters.
func isName(s string) bool {
	if utf8.RuneCountInString(s) < 2 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Scope extends base with the configured symbols and values. If base is nil,
// the default scope is extended.
func (c Config) Scope(base *mathmode.Scope) (*mathmode.Scope, error) {
	if base == nil {
		base = mathmode.DefaultScope()
	}
	if len(c.Symbols) == 0 && len(c.Values) == 0 {
		return base, nil
	}
	vals := make(map[string]mathmode.Value, len(c.Symbols)+len(c.Values))
	for name, glyph := range c.Symbols {
		vals[name] = mathmode.Sym(glyph)
	}
	for name, text := range c.Values {
		x, ok := mathmode.ToNum(mathmode.Str(text), c.Precision)
		if !ok {
			return nil, fmt.Errorf("value %q: %q is not a number", name, text)
		}
		vals[name] = mathmode.Num{X: x}
	}
	return base.With(mathmode.Binds(vals)), nil
}

// ParseOptions returns the parsing options for the configuration.
func (c Config) ParseOptions() []mathmode.ParseOption {
	return []mathmode.ParseOption{mathmode.MaxDepth(c.MaxDepth)}
}

// ContextOptions returns the build options for the configuration.
func (c Config) ContextOptions() []mathmode.ContextOption {
	return []mathmode.ContextOption{
		mathmode.BuildDepth(c.BuildDepth),
		mathmode.Prec(c.Precision),
		mathmode.Digits(c.Digits),
	}
}

// Engine creates an engine with the configured scope and options.
func (c Config) Engine(base *mathmode.Scope, logger *zap.Logger) (*mathmode.Engine, error) {
	scope, err := c.Scope(base)
	if err != nil {
		return nil, err
	}
	opts := []mathmode.EngineOption{
		mathmode.WithParseOptions(c.ParseOptions()...),
		mathmode.WithContextOptions(c.ContextOptions()...),
		mathmode.Logger(logger),
	}
	if c.Jobs > 0 {
		opts = append(opts, mathmode.Jobs(c.Jobs))
	}
	return mathmode.NewEngine(scope, opts...), nil
}
