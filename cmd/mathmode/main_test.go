package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/mathmode"
)

func init() {
	color.NoColor = true
}

func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errw bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errw)
	err = cmd.Execute()
	return out.String(), errw.String(), err
}

func TestEval(t *testing.T) {
	cases := []struct {
		name string
		args []string
		in   string
		want string
	}{
		{"attach", []string{"eval", "a_b^c"}, "", `(attach "a" b:"b" t:"c")` + "\n"},
		{"echo", []string{"eval", "--echo", "n!"}, "", `(fact n) : (seq "n" "!")` + "\n"},
		{"stdin", []string{"eval"}, "x/y\n\nalpha\n", `(frac "x" "y")` + "\n" + `"α"` + "\n"},
		{"given", []string{"eval", "--given", "gee = 2", "gee"}, "", `"2"` + "\n"},
		{"calc", []string{"eval", "calc.pow(2, 10)"}, "", `"1024"` + "\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, _, err := run(t, c.in, c.args...)
			require.NoError(t, err)
			assert.Equal(t, c.want, out)
		})
	}
}

func TestEvalFailure(t *testing.T) {
	out, errs, err := run(t, "", "eval", "x", "(y")
	assert.ErrorIs(t, err, errFailed)
	assert.Equal(t, `"x"`+"\n", out)
	assert.Contains(t, errs, "error: ")
	assert.Contains(t, errs, "opening delimiter ( with no closing delimiter")
	assert.Contains(t, errs, "<input 2>:1:1")
	assert.Contains(t, errs, "1 | (y\n  | ^\n")
}

func TestEvalYAML(t *testing.T) {
	out, _, err := run(t, "", "eval", "--format", "yaml", "x'", "(x")
	assert.ErrorIs(t, err, errFailed)
	var recs []record
	require.NoError(t, yaml.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 2)

	assert.Equal(t, "x'", recs[0].Source)
	assert.Equal(t, "(attach x ')", recs[0].Expr)
	require.NotNil(t, recs[0].Content)
	assert.Equal(t, "attach", recs[0].Content.Kind)
	require.NotNil(t, recs[0].Content.Top)
	assert.Equal(t, "primes", recs[0].Content.Top.Kind)
	assert.Equal(t, 1, recs[0].Content.Top.Count)

	assert.Equal(t, "(x", recs[1].Source)
	assert.Nil(t, recs[1].Content)
	assert.NotEmpty(t, recs[1].Error)
}

func TestDoc(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("Let $x/y$ and $sqrt(2)$.\nThen $nope$ fails.\n"), 0o644))
	out, errs, err := run(t, "", "doc", path)
	assert.ErrorIs(t, err, errFailed)
	assert.Equal(t, path+`:1:6: (frac "x" "y")`+"\n"+path+`:1:16: (root "2")`+"\n", out)
	assert.Contains(t, errs, `unknown identifier: "nope"`)
	assert.Contains(t, errs, path+":2:7")
	assert.Contains(t, errs, "2 | Then $nope$ fails.\n  |       ^^^^\n")
}

func TestDocUnterminated(t *testing.T) {
	out, errs, err := run(t, "$a$ and $b", "doc", "-")
	assert.ErrorIs(t, err, errFailed)
	assert.Equal(t, `-:1:2: "a"`+"\n", out)
	assert.Contains(t, errs, "unterminated math span")
	assert.Contains(t, errs, "-:1:9")
}

func TestBadFlags(t *testing.T) {
	_, _, err := run(t, "", "eval", "--format", "json", "x")
	assert.Error(t, err)
	_, _, err = run(t, "", "eval", "--given", "novalue", "x")
	assert.Error(t, err)
	_, _, err = run(t, "", "doc")
	assert.Error(t, err)
}

func TestDocMarkdown(t *testing.T) {
	doc := "Price: `$5`.\n\n```\necho $HOME\n```\n\nLet $x_1$ hold.\n"
	_, _, err := run(t, doc, "doc", "-")
	assert.ErrorIs(t, err, errFailed)

	out, _, err := run(t, doc, "doc", "--markdown", "-")
	require.NoError(t, err)
	assert.Equal(t, `-:7:6: (attach "x" b:"1")`+"\n", out)
}

// lines is a prompter that replays fixed input.
type lines struct {
	in      []string
	prompts []string
}

func (l *lines) Prompt(prompt string) (string, error) {
	l.prompts = append(l.prompts, prompt)
	if len(l.in) == 0 {
		return "", io.EOF
	}
	s := l.in[0]
	l.in = l.in[1:]
	if s == "^C" {
		return "", liner.ErrPromptAborted
	}
	return s, nil
}

func TestReadSpan(t *testing.T) {
	e := mathmode.NewEngine(nil)
	ln := &lines{in: []string{"(a", "+ b)", "x/", "y", "(z", "^C", "w"}}
	src, ok := readSpan(ln, e)
	assert.True(t, ok)
	assert.Equal(t, "(a\n+ b)", src)
	assert.Equal(t, []string{promptMain, promptCont}, ln.prompts)

	src, ok = readSpan(ln, e)
	assert.True(t, ok)
	assert.Equal(t, "x/\ny", src)

	src, ok = readSpan(ln, e)
	assert.True(t, ok)
	assert.Empty(t, src, "aborted input was kept")

	src, ok = readSpan(ln, e)
	assert.True(t, ok)
	assert.Equal(t, "w", src)

	_, ok = readSpan(ln, e)
	assert.False(t, ok)
}

func TestIncomplete(t *testing.T) {
	cases := map[string]bool{
		"x":      false,
		"(x":     true,
		"[a + b": true,
		"x)":     false,
		"a^":     true,
		"a^ ":    true,
		"/b":     false,
		"a^^b":   false,
		"(a|b)":  false,
		"":       false,
	}
	e := mathmode.NewEngine(nil)
	for src, want := range cases {
		assert.Equal(t, want, incomplete(e, src), "%q", src)
	}

	// Input too deep for the configured limit is an error, not a prompt for
	// more lines.
	shallow := mathmode.NewEngine(nil, mathmode.WithParseOptions(mathmode.MaxDepth(2)))
	assert.True(t, incomplete(e, "((x"))
	assert.False(t, incomplete(shallow, "((x"))
}

func TestReplLine(t *testing.T) {
	var out, errw bytes.Buffer
	r := &repl{
		e:   mathmode.NewEngine(nil),
		out: &out,
		p:   newPrinter(&out, &errw, "text", false, false),
	}
	assert.False(t, r.line("  "))
	assert.False(t, r.line("a_b"))
	assert.False(t, r.line(":echo"))
	assert.False(t, r.line("n!"))
	assert.False(t, r.line(":bogus"))
	assert.False(t, r.line("(y]"))
	assert.True(t, r.line(":quit"))

	want := `(attach "a" b:"b")` + "\n" +
		"echo true\n" +
		`(fact n) : (seq "n" "!")` + "\n" +
		"unknown command. Type :help for commands.\n"
	assert.Equal(t, want, out.String())
	assert.Contains(t, errw.String(), "<repl 3>:1:3")
	assert.Equal(t, 3, r.n)
}
