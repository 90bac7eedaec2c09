// Package canon implements the canonical, deterministic text serialization
// of proof content: a YAML-like mapping with a fixed key order implied by
// each content type's schema, with default values omitted. This is the
// reference serializer cargo-crev-style signatures are computed over —
// emitted bytes must be byte-for-byte reproducible from the same content
// value.
//
// The writer here is hand-rolled rather than routed through a generic JSON
// canonicalizer (contrast pkg/canonicalize/jcs.go in the teacher repo, which
// sorts map keys for RFC 8785 JSON): proof bodies are YAML-like text with a
// fixed *schema* order, not alphabetical JSON, so a generic JCS encoder
// doesn't fit. See DESIGN.md.
package canon

import (
	"fmt"
	"strconv"
	"strings"
)

// Field is one key/value pair in a content type's fixed schema order.
// Omit is true when the value equals its schema default and should not be
// emitted at all.
type Field struct {
	Key   string
	Value Value
	Omit  bool
}

// Value is the sum type canon can render: a bare/quoted scalar, a literal
// block scalar (for free-form multi-line comments), a sequence, or a
// nested mapping.
type Value interface {
	isValue()
}

// Scalar is a plain or quoted string/number/bool token.
type Scalar struct {
	Raw string // already-formatted text (numbers, enum words, bools)
}

func (Scalar) isValue() {}

// Str is a string scalar that canon quotes only if required for safe
// round-tripping through a YAML parser.
type Str string

func (Str) isValue() {}

// Literal is a comment-style value always emitted as a literal block
// scalar ("|-"), matching the illustrative body in spec §6.
type Literal string

func (Literal) isValue() {}

// Seq is an ordered sequence of nested mappings or scalars.
type Seq []Value

func (Seq) isValue() {}

// Map is an ordered nested mapping (used for sub-objects like `from` or
// `package`).
type Map []Field

func (Map) isValue() {}

// Serialize renders fields as the canonical body text: UTF-8, with a
// trailing newline, matching spec §3's digest/signature convention of
// hashing "the exact serialized body bytes ... trailing newline included".
func Serialize(fields []Field) []byte {
	var b strings.Builder
	writeMap(&b, fields, 0)
	out := b.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return []byte(out)
}

func writeMap(b *strings.Builder, fields []Field, indent int) {
	pad := strings.Repeat("  ", indent)
	for _, f := range fields {
		if f.Omit {
			continue
		}
		b.WriteString(pad)
		b.WriteString(f.Key)
		b.WriteString(":")
		writeValue(b, f.Value, indent)
	}
}

func writeValue(b *strings.Builder, v Value, indent int) {
	switch t := v.(type) {
	case nil:
		b.WriteString(" null\n")
	case Scalar:
		b.WriteString(" ")
		b.WriteString(t.Raw)
		b.WriteString("\n")
	case Str:
		b.WriteString(" ")
		b.WriteString(quoteIfNeeded(string(t)))
		b.WriteString("\n")
	case Literal:
		b.WriteString(" |-\n")
		pad := strings.Repeat("  ", indent+1)
		lines := strings.Split(strings.TrimRight(string(t), "\n"), "\n")
		for _, line := range lines {
			b.WriteString(pad)
			b.WriteString(line)
			b.WriteString("\n")
		}
	case Seq:
		if len(t) == 0 {
			b.WriteString(" []\n")
			return
		}
		b.WriteString("\n")
		pad := strings.Repeat("  ", indent+1)
		for _, elem := range t {
			switch e := elem.(type) {
			case Map:
				b.WriteString(pad)
				b.WriteString("- ")
				writeInlineMapHead(b, e, indent+1)
			default:
				b.WriteString(pad)
				b.WriteString("- ")
				writeInlineScalar(b, e)
			}
		}
	case Map:
		if len(t) == 0 {
			b.WriteString(" {}\n")
			return
		}
		b.WriteString("\n")
		writeMap(b, t, indent+1)
	default:
		panic(fmt.Sprintf("canon: unhandled value type %T", v))
	}
}

// writeInlineMapHead writes the first field of a sequence-element map on
// the same line as the "- " marker, and the rest indented beneath it.
func writeInlineMapHead(b *strings.Builder, fields []Field, indent int) {
	first := true
	wrote := false
	for _, f := range fields {
		if f.Omit {
			continue
		}
		if first {
			b.WriteString(f.Key)
			b.WriteString(":")
			writeValue(b, f.Value, indent+1)
			first = false
			wrote = true
			continue
		}
		b.WriteString(strings.Repeat("  ", indent+1))
		b.WriteString(f.Key)
		b.WriteString(":")
		writeValue(b, f.Value, indent+1)
		wrote = true
	}
	if !wrote {
		b.WriteString("{}\n")
	}
}

func writeInlineScalar(b *strings.Builder, v Value) {
	switch t := v.(type) {
	case Scalar:
		b.WriteString(t.Raw)
		b.WriteString("\n")
	case Str:
		b.WriteString(quoteIfNeeded(string(t)))
		b.WriteString("\n")
	default:
		panic(fmt.Sprintf("canon: unsupported scalar sequence element %T", v))
	}
}

func quoteIfNeeded(s string) string {
	if !needsQuoting(s) {
		return s
	}
	return strconv.Quote(s)
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	if strings.TrimSpace(s) != s {
		return true
	}
	for _, c := range []string{":", "#", "\"", "'", "\n", "\t", ",", "[", "]", "{", "}"} {
		if strings.Contains(s, c) {
			return true
		}
	}
	switch strings.ToLower(s) {
	case "true", "false", "null", "~", "yes", "no":
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	if len(s) > 0 && strings.ContainsRune("-?:,[]{}#&*!|>'\"%@`", rune(s[0])) {
		return true
	}
	return false
}
