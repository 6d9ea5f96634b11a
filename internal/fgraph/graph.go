// Package fgraph models an ffmpeg filter_complex description as a typed
// graph of nodes wired by stream labels. The graph is assembled and inspected
// in memory; textual filter syntax exists only at the Serialize boundary, so
// argument escaping happens in exactly one place.
package fgraph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kfaulkner/weld/pkg/util"
)

// Arg is a single filter argument. Expression-valued args are emitted inside
// single quotes and must not be escaped further, everything else is escaped
// for the filtergraph syntax.
type Arg struct {
	Key   string
	Value string
	Expr  bool
}

// Str builds a plain string argument
func Str(key, value string) Arg {
	return Arg{Key: key, Value: value}
}

// Int builds an integer argument
func Int(key string, value int) Arg {
	return Arg{Key: key, Value: strconv.Itoa(value)}
}

// Float builds a float argument with filter-friendly precision
func Float(key string, value float64) Arg {
	return Arg{Key: key, Value: util.FormatSeconds(value)}
}

// Expr builds a quoted expression argument (timeline enables, scale ramps)
func Expr(key, value string) Arg {
	return Arg{Key: key, Value: value, Expr: true}
}

// Node is one filter instance in the graph
type Node struct {
	Name    string
	Args    []Arg
	Inputs  []string
	Outputs []string
}

// Output returns the node's single output label
func (n *Node) Output() string {
	return n.Outputs[0]
}

// Arg returns the value of the named argument, if present
func (n *Node) Arg(key string) (string, bool) {
	for _, a := range n.Args {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Graph is an ordered arena of filter nodes
type Graph struct {
	nodes    []*Node
	labelSeq int
}

// New creates an empty graph
func New() *Graph {
	return &Graph{}
}

// NewLabel allocates a fresh stream label with the given prefix
func (g *Graph) NewLabel(prefix string) string {
	g.labelSeq++
	return fmt.Sprintf("%s%d", prefix, g.labelSeq)
}

// Add appends a node with one auto-labeled output. A nil inputs slice
// declares a source filter (color, anullsrc).
func (g *Graph) Add(name string, inputs []string, args ...Arg) *Node {
	return g.AddN(name, inputs, 1, args...)
}

// AddN appends a node with n auto-labeled outputs (split, asplit)
func (g *Graph) AddN(name string, inputs []string, n int, args ...Arg) *Node {
	outs := make([]string, n)
	for i := range outs {
		outs[i] = g.NewLabel("s")
	}
	node := &Node{Name: name, Args: args, Inputs: inputs, Outputs: outs}
	g.nodes = append(g.nodes, node)
	return node
}

// Nodes returns the node list in insertion order
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Empty reports whether no node has been added
func (g *Graph) Empty() bool {
	return len(g.nodes) == 0
}

// Find returns all nodes with the given filter name
func (g *Graph) Find(name string) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Name == name {
			out = append(out, n)
		}
	}
	return out
}

// Serialize renders the graph in ffmpeg filter_complex syntax
func (g *Graph) Serialize() string {
	var b strings.Builder
	for i, n := range g.nodes {
		if i > 0 {
			b.WriteByte(';')
		}
		for _, in := range n.Inputs {
			b.WriteByte('[')
			b.WriteString(in)
			b.WriteByte(']')
		}
		b.WriteString(n.Name)
		for j, a := range n.Args {
			if j == 0 {
				b.WriteByte('=')
			} else {
				b.WriteByte(':')
			}
			if a.Key != "" {
				b.WriteString(a.Key)
				b.WriteByte('=')
			}
			if a.Expr {
				b.WriteByte('\'')
				b.WriteString(a.Value)
				b.WriteByte('\'')
			} else {
				b.WriteString(escape(a.Value))
			}
		}
		for _, out := range n.Outputs {
			b.WriteByte('[')
			b.WriteString(out)
			b.WriteByte(']')
		}
	}
	return b.String()
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`:`, `\:`,
	`,`, `\,`,
	`;`, `\;`,
	`[`, `\[`,
	`]`, `\]`,
)

// escape protects a literal value from the filtergraph tokenizer
func escape(v string) string {
	return escaper.Replace(v)
}

// InputLabel returns the label addressing a stream of input file idx:
// "0:v" for video, "0:a" for audio.
func InputLabel(idx int, stream string) string {
	return fmt.Sprintf("%d:%s", idx, stream)
}
