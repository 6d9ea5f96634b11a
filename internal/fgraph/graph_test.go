package fgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeSourceAndChain(t *testing.T) {
	g := New()

	bg := g.Add("color",
		nil,
		Str("c", "black"),
		Str("s", "1080x1920"),
		Float("d", 5),
	)
	over := g.Add("overlay",
		[]string{bg.Output(), InputLabel(0, "v")},
		Int("x", 0),
		Int("y", 0),
	)

	got := g.Serialize()
	want := "color=c=black:s=1080x1920:d=5.0000[s1];[s1][0:v]overlay=x=0:y=0[s2]"
	assert.Equal(t, want, got)
	assert.Equal(t, "s2", over.Output())
}

func TestSerializeEscapesLiteralValues(t *testing.T) {
	g := New()
	g.Add("drawtext", []string{"0:v"}, Str("text", "it's 50:50, roughly [ok]"))

	got := g.Serialize()
	assert.Contains(t, got, `text=it\'s 50\:50\, roughly \[ok\]`)
}

func TestSerializeQuotesExpressions(t *testing.T) {
	g := New()
	g.Add("overlay", []string{"a", "b"}, Expr("enable", "gte(t,1.0000)*lt(t,3.0000)"))

	got := g.Serialize()
	assert.Contains(t, got, "enable='gte(t,1.0000)*lt(t,3.0000)'")
}

func TestPositionalArgs(t *testing.T) {
	g := New()
	g.Add("fps", []string{"x"}, Float("", 30))

	assert.Equal(t, "[x]fps=30.0000[s1]", g.Serialize())
}

func TestAddNAllocatesDistinctLabels(t *testing.T) {
	g := New()
	n := g.AddN("split", []string{"in"}, 3)

	require.Len(t, n.Outputs, 3)
	seen := map[string]bool{}
	for _, out := range n.Outputs {
		assert.False(t, seen[out], "duplicate label %s", out)
		seen[out] = true
	}
	assert.Equal(t, "[in]split[s1][s2][s3]", g.Serialize())
}

func TestFind(t *testing.T) {
	g := New()
	g.Add("color", nil)
	g.Add("overlay", []string{"a", "b"})
	g.Add("overlay", []string{"c", "d"})

	assert.Len(t, g.Find("overlay"), 2)
	assert.Len(t, g.Find("xfade"), 0)
	assert.False(t, g.Empty())
	assert.True(t, New().Empty())
}

func TestNodeArgLookup(t *testing.T) {
	g := New()
	n := g.Add("scale", []string{"x"}, Int("w", 1080), Int("h", 1920))

	w, ok := n.Arg("w")
	require.True(t, ok)
	assert.Equal(t, "1080", w)

	_, ok = n.Arg("flags")
	assert.False(t, ok)
}
