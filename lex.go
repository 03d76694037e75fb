package mathmode

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Shorthands contains the multi-character sequences which the lexer scans as
// single shorthand tokens.
var Shorthands = []string{"->", "=>", "<-", "<=", ">=", "!=", ":=", "...", "[|", "|]", "||"}

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	off  int
	last int
	// pending holds tokens scanned ahead of time, in order.
	pending []SyntaxNode
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{src: src}
}

// Scan scans math-mode source text into syntax nodes. Span offsets count bytes
// from the start of src.
func Scan(src io.RuneScanner) ([]SyntaxNode, error) {
	l := lex(src)
	var toks []SyntaxNode
	for {
		tok, err := l.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return toks, nil
			}
			return nil, err
		}
		toks = append(toks, tok)
	}
}

// ScanString is a shortcut to scan a string.
func ScanString(src string) ([]SyntaxNode, error) {
	return Scan(strings.NewReader(src))
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (rune, error) {
	r, sz, err := l.src.ReadRune()
	l.off += sz
	l.last = sz
	return r, err
}

// unreadRune unreads the last rune read from the src. Panics if unreading
// returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.off -= l.last
	l.last = 0
}

// peek reports whether the next rune is want, consuming it if so.
func (l *lexer) peek(want rune) (bool, error) {
	r, err := l.readRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	if r != want {
		l.unreadRune()
		return false, nil
	}
	return true, nil
}

func (l *lexer) leaf(kind SyntaxKind, text string, start int) SyntaxNode {
	return Leaf(kind, text, Span{Start: start, End: l.off})
}

// next scans the next token from the input. At the end of input, the result
// is io.EOF.
func (l *lexer) next() (SyntaxNode, error) {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok, nil
	}
	defer l.buf.Reset()
	start := l.off
	r, err := l.readRune()
	if err != nil {
		return nil, err
	}
	switch {
	case unicode.IsSpace(r):
		l.buf.WriteRune(r)
		if err := l.scanWhile(unicode.IsSpace); err != nil {
			return nil, err
		}
		return l.leaf(SyntaxSpace, l.buf.String(), start), nil
	case unicode.IsLetter(r):
		l.buf.WriteRune(r)
		if err := l.scanWhile(unicode.IsLetter); err != nil {
			return nil, err
		}
		if l.off-start == len(string(r)) {
			return l.leaf(SyntaxText, l.buf.String(), start), nil
		}
		return l.leaf(SyntaxIdent, l.buf.String(), start), nil
	case '0' <= r && r <= '9':
		l.buf.WriteRune(r)
		return l.scanNum(start)
	case r == '"':
		return l.scanStr(start)
	case r == '\\':
		e, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &LexError{Text: `\`, Kind: "escape", Span: Span{Start: start, End: l.off}}
			}
			return nil, err
		}
		return l.leaf(SyntaxEscape, string(e), start), nil
	case r == '\'' || r == '′':
		l.buf.WriteRune(r)
		if err := l.scanWhile(func(r rune) bool { return r == '\'' || r == '′' }); err != nil {
			return nil, err
		}
		return l.leaf(SyntaxPrimes, l.buf.String(), start), nil
	case r == '_':
		return l.leaf(SyntaxUnderscore, "_", start), nil
	case r == '^':
		return l.leaf(SyntaxHat, "^", start), nil
	case r == '/':
		return l.leaf(SyntaxSlash, "/", start), nil
	case r == '&':
		return l.leaf(SyntaxAlign, "&", start), nil
	case r == ',':
		return l.leaf(SyntaxComma, ",", start), nil
	case r == '√', r == '∛', r == '∜':
		return l.leaf(SyntaxRoot, string(r), start), nil
	case r == '.':
		return l.scanDots(start)
	case r == '!':
		return l.shorthand(start, "!", SyntaxBang, '=')
	case r == '-':
		return l.shorthand(start, "-", SyntaxText, '>')
	case r == '<':
		return l.shorthand(start, "<", SyntaxText, '-', '=')
	case r == '>', r == ':':
		return l.shorthand(start, string(r), SyntaxText, '=')
	case r == '=':
		return l.shorthand(start, "=", SyntaxText, '>')
	case r == '[':
		return l.shorthand(start, "[", SyntaxText, '|')
	case r == '|':
		return l.shorthand(start, "|", SyntaxText, ']', '|')
	default:
		return l.leaf(SyntaxText, string(r), start), nil
	}
}

// shorthand scans a shorthand made of the already scanned text and one of the
// given follow runes, or else a single token of the given kind.
func (l *lexer) shorthand(start int, text string, kind SyntaxKind, follow ...rune) (SyntaxNode, error) {
	r, err := l.readRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return l.leaf(kind, text, start), nil
		}
		return nil, err
	}
	for _, f := range follow {
		if r == f {
			return l.leaf(SyntaxShorthand, text+string(r), start), nil
		}
	}
	l.unreadRune()
	return l.leaf(kind, text, start), nil
}

func (l *lexer) scanWhile(pred func(rune) bool) error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if !pred(r) {
			l.unreadRune()
			return nil
		}
		l.buf.WriteRune(r)
	}
}

func (l *lexer) scanNum(start int) (SyntaxNode, error) {
	isdig := func(r rune) bool { return '0' <= r && r <= '9' }
	if err := l.scanWhile(isdig); err != nil {
		return nil, err
	}
	dot, err := l.peek('.')
	if err != nil {
		return nil, err
	}
	if !dot {
		return l.leaf(SyntaxNum, l.buf.String(), start), nil
	}
	// A dot only continues the number if a digit follows it.
	end := l.off - 1
	r, err := l.readRune()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err == nil && isdig(r) {
		l.buf.WriteByte('.')
		l.buf.WriteRune(r)
		if err := l.scanWhile(isdig); err != nil {
			return nil, err
		}
		return l.leaf(SyntaxNum, l.buf.String(), start), nil
	}
	if err == nil {
		l.unreadRune()
	}
	num := Leaf(SyntaxNum, l.buf.String(), Span{Start: start, End: end})
	l.pending = append(l.pending, Leaf(SyntaxDot, ".", Span{Start: end, End: end + 1}))
	return num, nil
}

func (l *lexer) scanDots(start int) (SyntaxNode, error) {
	second, err := l.peek('.')
	if err != nil || !second {
		return l.leaf(SyntaxDot, ".", start), err
	}
	third, err := l.peek('.')
	if err != nil {
		return nil, err
	}
	if third {
		return l.leaf(SyntaxShorthand, "...", start), nil
	}
	l.pending = append(l.pending, Leaf(SyntaxDot, ".", Span{Start: start + 1, End: start + 2}))
	return Leaf(SyntaxDot, ".", Span{Start: start, End: start + 1}), nil
}

func (l *lexer) scanStr(start int) (SyntaxNode, error) {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, l.error("string", start)
			}
			return nil, err
		}
		switch r {
		case '"':
			return l.leaf(SyntaxStr, l.buf.String(), start), nil
		case '\\':
			e, err := l.readRune()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil, l.error("string", start)
				}
				return nil, err
			}
			l.buf.WriteRune(e)
		default:
			l.buf.WriteRune(r)
		}
	}
}

func (l *lexer) error(kind string, start int) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Span: Span{Start: start, End: l.off},
	}
}

// LexError indicates an invalid token. It implements SpanError.
type LexError struct {
	// Text is the token the lexer was scanning when the error occurred.
	Text string
	// Kind is the type of token the lexer was scanning, "string" or "escape".
	Kind string
	// Span is the extent of the invalid token.
	Span Span
}

func (err *LexError) Error() string {
	return errpos(err.Span, "unterminated "+err.Kind+" token: "+strconv.Quote(err.Text))
}

func (err *LexError) Pos() Span {
	return err.Span
}
