package mathmode

import "strconv"

// UnbalancedDelimiterError is an error indicating a delimiter without a
// match. It implements SpanError.
type UnbalancedDelimiterError struct {
	// Span is the position of the unmatched delimiter.
	Span Span
	// Open is the opening delimiter, if any.
	Open string
	// Close is the closing delimiter, if any.
	Close string
}

func (err *UnbalancedDelimiterError) Error() string {
	if err.Open == "" {
		return errpos(err.Span, "closing delimiter "+err.Close+" with no opening delimiter")
	}
	if err.Close == "" {
		return errpos(err.Span, "opening delimiter "+err.Open+" with no closing delimiter")
	}
	return errpos(err.Span, "mismatched delimiters: "+err.Open+"expr"+err.Close)
}

func (err *UnbalancedDelimiterError) Pos() Span {
	return err.Span
}

// DanglingOperatorError is an error indicating an operator that is missing a
// required operand. It implements SpanError.
type DanglingOperatorError struct {
	// Span is the position of the operator.
	Span Span
	// Operator is the operator text.
	Operator string
}

func (err *DanglingOperatorError) Error() string {
	return errpos(err.Span, "missing operand for "+strconv.Quote(err.Operator))
}

func (err *DanglingOperatorError) Pos() Span {
	return err.Span
}

// AmbiguousAttachmentError is an error indicating a second explicit
// subscript or superscript on the same base. It implements SpanError.
type AmbiguousAttachmentError struct {
	// Span is the position of the second attachment, including its operand.
	Span Span
	// Operator is _ or ^.
	Operator string
	// First is the position of the first attachment of the same kind.
	First Span
}

func (err *AmbiguousAttachmentError) Error() string {
	slot := "superscript"
	if err.Operator == "_" {
		slot = "subscript"
	}
	return errpos(err.Span, "ambiguous "+slot+": base already has one at "+err.First.String())
}

func (err *AmbiguousAttachmentError) Pos() Span {
	return err.Span
}

// NestingError is an error indicating an expression nested more deeply than
// allowed. It implements SpanError.
type NestingError struct {
	// Span is the position of the node at which the limit was exceeded.
	Span Span
	// Limit is the maximum nesting depth.
	Limit int
}

func (err *NestingError) Error() string {
	return errpos(err.Span, "expression nested deeper than "+strconv.Itoa(err.Limit))
}

func (err *NestingError) Pos() Span {
	return err.Span
}

// errpos is a shortcut to create an error message with a position.
func errpos(span Span, msg string) string {
	return span.String() + ": " + msg
}

// SpanError is an error with position information. Every error resulting from
// invalid input implements SpanError.
type SpanError interface {
	error
	// Pos returns the span of the construct that caused the error.
	Pos() Span
}

var (
	_ SpanError = (*UnbalancedDelimiterError)(nil)
	_ SpanError = (*DanglingOperatorError)(nil)
	_ SpanError = (*AmbiguousAttachmentError)(nil)
	_ SpanError = (*NestingError)(nil)
	_ SpanError = (*LexError)(nil)
	_ SpanError = (*UnresolvedIdentifierError)(nil)
	_ SpanError = (*NoSuchFieldError)(nil)
	_ SpanError = (*NotCallableError)(nil)
	_ SpanError = (*CallError)(nil)
	_ SpanError = (*ArgError)(nil)
)
