// Package mathmode parses and evaluates inline mathematical notation into a
// tree of typed content elements for a layout pipeline.
//
// The notation is what you'd write between dollar signs in a markup document.
// Juxtaposition is implicit: "2 x y" is a sequence of three atoms. "a/b" is a
// fraction, "a_i^2" attaches a subscript and a superscript to one base, "f'"
// attaches a prime, "n!" is a factorial, and "√x" or "√[3]x" is a root.
// Parentheses that only scope the operand of a fraction, script or root do not
// appear in the output, so "(a+b)/c" has no visible parentheses.
//
// Processing happens in stages: Classify tags the constituents produced by a
// lexer, Parse builds an Expr tree with precedence climbing, and Build lowers
// the tree to Content while resolving identifiers in a Scope. Scan is a small
// reference lexer for source text. Every stage is a pure function of its
// inputs, so results for identical math spans may be cached freely; Engine
// does exactly that for batches of spans.
//
package mathmode
