package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zephyrtronium/mathmode"
	"github.com/zephyrtronium/mathmode/internal/config"
)

const defaultTimeout = time.Minute

// errFailed is returned by commands after reporting failed spans.
var errFailed = errors.New("some math spans failed")

// options holds the flags shared by all commands.
type options struct {
	cfgFile string
	debug   bool
	given   []string
	timeout time.Duration
	format  string

	logger *zap.Logger
	cfg    config.Config
}

// newRootCmd creates the command tree.
func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "mathmode",
		Short:         "mathmode - parse and build math-mode notation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "YAML configuration file")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.StringArrayVar(&opts.given, "given", nil, "name=value numeric definition (any number of times)")
	pf.DurationVar(&opts.timeout, "timeout", defaultTimeout, "time limit for evaluation")
	pf.StringVar(&opts.format, "format", "text", "output format, text or yaml")

	root.AddCommand(newEvalCmd(opts))
	root.AddCommand(newDocCmd(opts))
	root.AddCommand(newReplCmd(opts))
	return root
}

// Execute runs the command line.
func Execute() error {
	return newRootCmd().Execute()
}

// setup loads configuration and creates the logger.
func (o *options) setup() error {
	switch o.format {
	case "text", "yaml":
	default:
		return fmt.Errorf("unknown format %q", o.format)
	}
	logger, err := newLogger(o.debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	o.logger = logger
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return err
	}
	for _, d := range o.given {
		name, val, ok := strings.Cut(d, "=")
		if !ok {
			return fmt.Errorf(`definitions must be "name=value", not %q`, d)
		}
		if cfg.Values == nil {
			cfg.Values = make(map[string]string)
		}
		cfg.Values[strings.TrimSpace(name)] = strings.TrimSpace(val)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	o.logger.Debug("configuration loaded", zap.String("file", o.cfgFile), zap.Int("values", len(cfg.Values)), zap.Int("symbols", len(cfg.Symbols)))
	return nil
}

// engine creates an engine from the loaded configuration.
func (o *options) engine() (*mathmode.Engine, error) {
	return o.cfg.Engine(nil, o.logger)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
