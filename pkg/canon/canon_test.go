package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializeOmitsDefaults(t *testing.T) {
	fields := []Field{
		{Key: "kind", Value: Scalar{Raw: "trust"}},
		{Key: "version", Value: Scalar{Raw: "-1"}},
		{Key: "comment", Value: Literal(""), Omit: true},
	}
	out := string(Serialize(fields))
	assert.Contains(t, out, "kind: trust\n")
	assert.NotContains(t, out, "comment")
}

func TestSerializeLiteralBlockForComment(t *testing.T) {
	fields := []Field{
		{Key: "comment", Value: Literal("line one\nline two")},
	}
	out := string(Serialize(fields))
	assert.Equal(t, "comment: |-\n  line one\n  line two\n", out)
}

func TestSerializeQuotesUrlLikeStrings(t *testing.T) {
	fields := []Field{
		{Key: "source", Value: Str("https://crates.io")},
	}
	out := string(Serialize(fields))
	assert.Contains(t, out, `source: "https://crates.io"`)
}

func TestSerializeLeavesBareWordsUnquoted(t *testing.T) {
	fields := []Field{
		{Key: "trust", Value: Str("medium")},
	}
	out := string(Serialize(fields))
	assert.Equal(t, "trust: medium\n", out)
}

func TestSerializeEmptySeq(t *testing.T) {
	fields := []Field{{Key: "override", Value: Seq{}}}
	out := string(Serialize(fields))
	assert.Equal(t, "override: []\n", out)
}

func TestSerializeNestedMapSequence(t *testing.T) {
	fields := []Field{
		{Key: "issues", Value: Seq{
			Map{
				{Key: "id", Value: Str("CVE-1")},
				{Key: "severity", Value: Scalar{Raw: "medium"}},
			},
		}},
	}
	out := string(Serialize(fields))
	assert.Equal(t, "issues:\n  - id: CVE-1\n    severity: medium\n", out)
}

func TestSerializeAlwaysEndsWithNewline(t *testing.T) {
	out := Serialize([]Field{{Key: "kind", Value: Scalar{Raw: "trust"}}})
	assert.Equal(t, byte('\n'), out[len(out)-1])
}
