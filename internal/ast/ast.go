package ast

import "strings"

// Node is the base interface for all expression nodes. The surface
// language has exactly three shapes: an atom, a keyword call, and a
// brace-delimited block kept as raw text.
type Node interface {
	String() string
	nodeMarker()
}

// Atom is an un-parenthesized token: an identifier, an integer literal
// (optionally '-'-prefixed), or a single-quoted string literal.
type Atom struct {
	Value string
}

func (a *Atom) nodeMarker()    {}
func (a *Atom) String() string { return a.Value }

// IsEmpty reports whether the atom carries no text at all.
func (a *Atom) IsEmpty() bool { return a.Value == "" }

// IsStringLiteral reports whether the atom is a single-quoted string.
func (a *Atom) IsStringLiteral() bool {
	return len(a.Value) >= 2 && a.Value[0] == '\'' && a.Value[len(a.Value)-1] == '\''
}

// StringValue returns the literal text with the quote delimiters
// stripped. Escapes like \n are preserved verbatim.
func (a *Atom) StringValue() string {
	return a.Value[1 : len(a.Value)-1]
}

// IsInteger reports whether the atom is a decimal integer literal,
// optionally prefixed with '-'.
func (a *Atom) IsInteger() bool {
	s := a.Value
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Call is a compound expression: <keyword> ( <arg> [, <arg>]* ).
type Call struct {
	Keyword string
	Args    []Node
}

func (c *Call) nodeMarker() {}
func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Keyword + "(" + strings.Join(parts, ", ") + ")"
}

// Block is a brace-delimited argument retained as raw source text.
// Block bodies are split and parsed on demand by the code generator,
// with the same splitter used at the top level.
type Block struct {
	Raw string
}

func (b *Block) nodeMarker()    {}
func (b *Block) String() string { return b.Raw }

// Program is the parsed form of one source file: the top-level
// expressions in source order.
type Program struct {
	File        string
	Expressions []Node
}
