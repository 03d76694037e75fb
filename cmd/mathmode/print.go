package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/mathmode"
	"github.com/zephyrtronium/mathmode/internal/markup"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	exprStyle    = color.New(color.FgGreen)
)

// printer writes results and diagnostics.
type printer struct {
	out, errw io.Writer
	format    string
	echo      bool
	// locate prefixes text results with their position in the document.
	locate bool

	records []record
	failed  int
}

// record is the YAML form of one result.
type record struct {
	Source   string `yaml:"source"`
	Location string `yaml:"location,omitempty"`
	Expr     string `yaml:"expr,omitempty"`
	Content  *node  `yaml:"content,omitempty"`
	Error    string `yaml:"error,omitempty"`
}

// node is the YAML form of a content element.
type node struct {
	Kind     string  `yaml:"kind"`
	Span     string  `yaml:"span"`
	Text     string  `yaml:"text,omitempty"`
	Open     string  `yaml:"open,omitempty"`
	Close    string  `yaml:"close,omitempty"`
	Count    int     `yaml:"count,omitempty"`
	Primes   int     `yaml:"primes,omitempty"`
	Base     *node   `yaml:"base,omitempty"`
	Top      *node   `yaml:"top,omitempty"`
	Bottom   *node   `yaml:"bottom,omitempty"`
	Num      *node   `yaml:"num,omitempty"`
	Denom    *node   `yaml:"denom,omitempty"`
	Index    *node   `yaml:"index,omitempty"`
	Radicand *node   `yaml:"radicand,omitempty"`
	Body     *node   `yaml:"body,omitempty"`
	Items    []*node `yaml:"items,omitempty"`
}

func newPrinter(out, errw io.Writer, format string, echo, locate bool) *printer {
	return &printer{out: out, errw: errw, format: format, echo: echo, locate: locate}
}

// result reports one result. base is the offset of the span's source within
// doc.
func (p *printer) result(name, doc string, base int, r mathmode.Result) {
	line, col, _ := markup.Position(doc, base)
	loc := name + ":" + strconv.Itoa(line) + ":" + strconv.Itoa(col)
	if r.Err != nil {
		var span mathmode.Span
		var se mathmode.SpanError
		if errors.As(r.Err, &se) {
			span = se.Pos()
		}
		p.diagnostic(name, doc, base, span, r.Err)
	}
	switch p.format {
	case "yaml":
		rec := record{Source: r.Source, Location: loc}
		if r.Expr != nil {
			rec.Expr = r.Expr.String()
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		} else {
			rec.Content = toNode(r.Content)
		}
		p.records = append(p.records, rec)
	default:
		if r.Err != nil {
			return
		}
		if p.locate {
			fileStyle.Fprint(p.out, loc)
			fmt.Fprint(p.out, ": ")
		}
		if p.echo {
			exprStyle.Fprint(p.out, r.Expr.String())
			fmt.Fprint(p.out, " : ")
		}
		fmt.Fprintln(p.out, r.Content.String())
	}
}

// diagnostic reports an error with the line of doc it occurred on, underlining
// the span, which is relative to base.
func (p *printer) diagnostic(name, doc string, base int, span mathmode.Span, err error) {
	p.failed++
	start := base + span.Start
	line, col, text := markup.Position(doc, start)
	num := strconv.Itoa(line)
	pad := strings.Repeat(" ", len(num))

	errorStyle.Fprint(p.errw, "error: ")
	messageStyle.Fprintln(p.errw, err.Error())
	lineStyle.Fprint(p.errw, pad+"--> ")
	fileStyle.Fprintf(p.errw, "%s:%d:%d\n", name, line, col)
	lineStyle.Fprintf(p.errw, "%s |\n", pad)
	lineStyle.Fprintf(p.errw, "%s | ", num)
	fmt.Fprintln(p.errw, text)
	lineStyle.Fprintf(p.errw, "%s | ", pad)
	fmt.Fprint(p.errw, underline(text, col-1, span.Len()))
	fmt.Fprintln(p.errw)
}

// underline creates a line of carets under n bytes of text starting at byte
// offset off, aligned by display width.
func underline(text string, off, n int) string {
	if off > len(text) {
		off = len(text)
	}
	end := off + n
	if end > len(text) {
		end = len(text)
	}
	lead := runewidth.StringWidth(text[:off])
	width := runewidth.StringWidth(text[off:end])
	if width < 1 {
		width = 1
	}
	return strings.Repeat(" ", lead) + messageStyle.Sprint(strings.Repeat("^", width))
}

// flush writes buffered output.
func (p *printer) flush() error {
	if p.format != "yaml" {
		return nil
	}
	enc := yaml.NewEncoder(p.out)
	enc.SetIndent(2)
	if err := enc.Encode(p.records); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func toNode(c mathmode.Content) *node {
	if c == nil {
		return nil
	}
	n := &node{Span: c.Pos().String()}
	switch c := c.(type) {
	case *mathmode.Text:
		n.Kind, n.Text = "text", c.Text
	case *mathmode.FracElem:
		n.Kind, n.Num, n.Denom = "frac", toNode(c.Num), toNode(c.Denom)
	case *mathmode.AttachElem:
		n.Kind, n.Base, n.Top, n.Bottom, n.Primes = "attach", toNode(c.Base), toNode(c.Top), toNode(c.Bottom), c.Primes
	case *mathmode.RootElem:
		n.Kind, n.Index, n.Radicand = "root", toNode(c.Index), toNode(c.Radicand)
	case *mathmode.LrElem:
		n.Kind, n.Open, n.Close, n.Body = "lr", c.Open, c.Close, toNode(c.Body)
	case *mathmode.PrimesElem:
		n.Kind, n.Count = "primes", c.Count
	case *mathmode.AlignPointElem:
		n.Kind = "align"
	case *mathmode.SequenceElem:
		n.Kind = "seq"
		for _, it := range c.Items {
			n.Items = append(n.Items, toNode(it))
		}
	}
	return n
}
