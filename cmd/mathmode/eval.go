package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newEvalCmd(opts *options) *cobra.Command {
	var (
		echo   bool
		inname string
	)
	cmd := &cobra.Command{
		Use:   "eval [math...]",
		Short: "Build math-mode spans given as arguments or input lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs := args
			if len(args) == 0 || inname != "" {
				lines, err := readLines(cmd.InOrStdin(), inname)
				if err != nil {
					return err
				}
				srcs = append(srcs, lines...)
			}
			e, err := opts.engine()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			results, err := e.EvalAll(ctx, srcs)
			if err != nil {
				return err
			}

			out := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.format, echo, false)
			for i, r := range results {
				out.result(fmt.Sprintf("<input %d>", i+1), r.Source, 0, r)
			}
			if err := out.flush(); err != nil {
				opts.logger.Error("writing output", zap.Error(err))
				return err
			}
			if out.failed > 0 {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&echo, "echo", false, "print parse trees")
	cmd.Flags().StringVar(&inname, "in", "", "input file, one span per line (default stdin if no args given)")
	return cmd
}

// readLines reads the non-blank lines of the named file, or of stdin if the
// name is empty or "-".
func readLines(stdin io.Reader, name string) ([]string, error) {
	in := stdin
	if name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	var lines []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}
