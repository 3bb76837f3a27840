package guess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pcfguess/pkg/errors"
	"github.com/matzehuels/pcfguess/pkg/grammar"
)

// DefaultTreeNodes bounds BuildTree when maxNodes is not positive.
const DefaultTreeNodes = 64

// TreeNode is one point of a generation tree, numbered in pop order.
type TreeNode struct {
	ID int
	// Parent is the ID of the point that generated this one, -1 for the seed.
	Parent int
	// Coordinate is the coordinate the parent advanced, -1 for the seed.
	Coordinate  int
	Indices     []int
	Pivot       int
	Guess       string
	Probability float64
}

// Tree records which parent generated each point of one rule's lattice.
type Tree struct {
	Rule     grammar.Rule
	Strategy string
	Nodes    []TreeNode
	// Truncated is set when points were left in the frontier.
	Truncated bool
}

// BuildTree enumerates rule r of ix with s and records the first maxNodes
// points together with the parent that pushed each of them.
//
// Under a correct strategy every lattice point appears once and the edges
// form a spanning tree of the lattice rooted at the seed.
func BuildTree(ix *grammar.Index, r int, s Strategy, maxNodes int) (*Tree, error) {
	if s == nil {
		s = PivotForward{}
	}
	if maxNodes <= 0 {
		maxNodes = DefaultTreeNodes
	}
	seed, err := Seed(ix, r)
	if err != nil {
		return nil, err
	}

	type origin struct{ parent, coord int }
	pending := map[string]origin{keyOf(seed): {-1, -1}}
	popped := make(map[string]bool)

	t := &Tree{Rule: seed.Rule(), Strategy: s.Name()}
	front := NewFrontier()
	front.Push(seed)

	var children []Point
	for !front.Empty() && len(t.Nodes) < maxNodes {
		p, _ := front.Pop()
		key := keyOf(p)
		o, ok := pending[key]
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal, "point %s popped twice", p)
		}
		delete(pending, key)
		popped[key] = true

		id := len(t.Nodes)
		t.Nodes = append(t.Nodes, TreeNode{
			ID:          id,
			Parent:      o.parent,
			Coordinate:  o.coord,
			Indices:     p.Indices(),
			Pivot:       p.pivot,
			Guess:       Decode(p),
			Probability: p.Probability(),
		})

		children = s.Expand(p, 0, children[:0])
		for _, c := range children {
			ck := keyOf(c)
			if _, dup := pending[ck]; dup || popped[ck] {
				return nil, errors.New(errors.ErrCodeInternal, "point %s pushed twice", c)
			}
			pending[ck] = origin{parent: id, coord: c.pivot}
			front.Push(c)
		}
	}
	t.Truncated = !front.Empty()
	return t, nil
}

func keyOf(p Point) string {
	return fmt.Sprint(p.indices)
}

// ToDOT returns a Graphviz DOT digraph of the tree. Nodes show the guess
// and its probability; edges are labeled with the advanced tag.
func (t *Tree) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph Lattice {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  label=%q;\n", t.Rule.Structure+" ("+t.Strategy+")")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=14, shape=box, style=\"filled,rounded\", fillcolor=white];\n")
	buf.WriteString("  edge [fontsize=10];\n\n")

	for _, n := range t.Nodes {
		label := n.Guess + "\n" + strconv.FormatFloat(n.Probability, 'g', 4, 64)
		fmt.Fprintf(&buf, "  n%d [label=%q];\n", n.ID, label)
	}
	buf.WriteString("\n")
	for _, n := range t.Nodes {
		if n.Parent < 0 {
			continue
		}
		fmt.Fprintf(&buf, "  n%d -> n%d [label=%q];\n", n.Parent, n.ID, t.Rule.Tags[n.Coordinate])
	}

	buf.WriteString("}\n")
	return buf.String()
}

type treeJSON struct {
	Rule     string     `json:"rule"`
	Strategy string     `json:"strategy"`
	Nodes    []nodeJSON `json:"nodes"`
	Edges    []edgeJSON `json:"edges"`
	// Truncated is omitted for complete trees.
	Truncated bool `json:"truncated,omitempty"`
}

type nodeJSON struct {
	ID          int     `json:"id"`
	Guess       string  `json:"guess"`
	Indices     []int   `json:"indices"`
	Pivot       int     `json:"pivot"`
	Probability float64 `json:"probability"`
}

type edgeJSON struct {
	From int    `json:"from"`
	To   int    `json:"to"`
	Tag  string `json:"tag"`
}

// WriteJSON encodes the tree as indented JSON with separate node and edge
// lists.
func (t *Tree) WriteJSON(w io.Writer) error {
	out := treeJSON{
		Rule:      t.Rule.Structure,
		Strategy:  t.Strategy,
		Nodes:     make([]nodeJSON, len(t.Nodes)),
		Edges:     make([]edgeJSON, 0, len(t.Nodes)),
		Truncated: t.Truncated,
	}
	for i, n := range t.Nodes {
		out.Nodes[i] = nodeJSON{ID: n.ID, Guess: n.Guess, Indices: n.Indices, Pivot: n.Pivot, Probability: n.Probability}
		if n.Parent >= 0 {
			out.Edges = append(out.Edges, edgeJSON{From: n.Parent, To: n.ID, Tag: t.Rule.Tags[n.Coordinate]})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// RenderSVG renders ToDOT with the embedded Graphviz library.
func (t *Tree) RenderSVG(ctx context.Context) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(t.ToDOT()))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
