package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zephyrtronium/mathmode"
	"github.com/zephyrtronium/mathmode/internal/markup"
)

func newDocCmd(opts *options) *cobra.Command {
	var md bool
	cmd := &cobra.Command{
		Use:   "doc FILE",
		Short: "Build every $...$ math span in a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			doc, err := readDoc(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}
			out := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.format, false, true)

			find := markup.Spans
			if md || isMarkdown(name) {
				find = markup.MarkdownSpans
			}
			spans, err := find(doc)
			var unterminated *markup.UnterminatedError
			if errors.As(err, &unterminated) {
				out.diagnostic(name, doc, unterminated.Offset, mathmode.Span{End: 1}, err)
			}
			opts.logger.Debug("found math spans", zap.String("file", name), zap.Int("spans", len(spans)))

			e, err := opts.engine()
			if err != nil {
				return err
			}
			srcs := make([]string, len(spans))
			for i, s := range spans {
				srcs[i] = s.Text(doc)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			results, err := e.EvalAll(ctx, srcs)
			if err != nil {
				return err
			}
			for i, r := range results {
				out.result(name, doc, spans[i].Start, r)
			}
			if err := out.flush(); err != nil {
				return err
			}
			if out.failed > 0 {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&md, "markdown", false, "ignore dollar signs in Markdown code (implied by .md files)")
	return cmd
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func readDoc(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
