package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zephyrtronium/mathmode"
)

const (
	promptMain  = "$ "
	promptCont  = "… "
	historyFile = ".mathmode_history"
	banner      = "mathmode REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands."
)

func newReplCmd(opts *options) *cobra.Command {
	var echo bool
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Build math-mode spans interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.engine()
			if err != nil {
				return err
			}
			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)

			if hist := historyPath(); hist != "" {
				if f, err := os.Open(hist); err == nil {
					_, _ = ln.ReadHistory(f)
					_ = f.Close()
				}
				defer func() {
					f, err := os.Create(hist)
					if err != nil {
						opts.logger.Warn("saving history", zap.Error(err))
						return
					}
					_, _ = ln.WriteHistory(f)
					_ = f.Close()
				}()
			}

			r := &repl{
				e:   e,
				out: cmd.OutOrStdout(),
				p:   newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), "text", echo, false),
			}
			fmt.Fprintln(r.out, banner)
			for {
				src, ok := readSpan(ln, e)
				if !ok {
					fmt.Fprintln(r.out)
					return nil
				}
				if r.line(src) {
					return nil
				}
				if strings.TrimSpace(src) != "" {
					ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
				}
			}
		},
	}
	cmd.Flags().BoolVar(&echo, "echo", false, "print parse trees")
	return cmd
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}

// prompter reads a line of input. *liner.State is a prompter.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// readSpan reads lines until they form a span that is not merely incomplete
// under the parsing rules of e. It returns false at end of input. Aborting a
// prompt discards the lines read so far.
func readSpan(ln prompter, e *mathmode.Engine) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		if !incomplete(e, src) {
			return src, true
		}
	}
}

// incomplete reports whether src fails to parse with e only because it ends
// too early, either with an unclosed delimiter or a trailing operator.
func incomplete(e *mathmode.Engine, src string) bool {
	_, err := e.Parse(src)
	var ue *mathmode.UnbalancedDelimiterError
	if errors.As(err, &ue) {
		return ue.Close == ""
	}
	var de *mathmode.DanglingOperatorError
	if errors.As(err, &de) {
		return de.Span.End >= len(strings.TrimRightFunc(src, unicode.IsSpace))
	}
	return false
}

// repl holds the state of an interactive session.
type repl struct {
	e   *mathmode.Engine
	out io.Writer
	p   *printer
	n   int
}

// line handles one input, either a command or a span to build. It returns
// true when the session should end.
func (r *repl) line(src string) bool {
	src = strings.TrimSpace(src)
	if src == "" {
		return false
	}
	if strings.HasPrefix(src, ":") {
		switch strings.ToLower(src) {
		case ":quit", ":q":
			return true
		case ":help":
			fmt.Fprintln(r.out, "  :quit    Exit the REPL\n  :echo    Toggle printing parse trees\n  :help    Show this help")
		case ":echo":
			r.p.echo = !r.p.echo
			fmt.Fprintf(r.out, "echo %t\n", r.p.echo)
		default:
			fmt.Fprintln(r.out, "unknown command. Type :help for commands.")
		}
		return false
	}
	r.n++
	r.p.result("<repl "+strconv.Itoa(r.n)+">", src, 0, r.e.Eval(src))
	return false
}
