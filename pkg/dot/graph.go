package dot

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrNoOpenCluster is returned by [Graph.CloseCluster] when no cluster
	// scope is open.
	ErrNoOpenCluster = errors.New("no open cluster")

	// ErrUnknownHandle is returned by [Graph.Edge] when an endpoint was not
	// allocated by this graph.
	ErrUnknownHandle = errors.New("unknown node handle")

	// ErrUnclosedCluster is returned by [Graph.Validate] when a cluster scope
	// was opened but never closed.
	ErrUnclosedCluster = errors.New("unclosed cluster")
)

// Attrs is a set of Graphviz attributes. Keys are emitted in sorted order.
type Attrs map[string]string

// Merge returns a new attribute set with the entries of each override
// applied in order over a.
func (a Attrs) Merge(overrides ...Attrs) Attrs {
	out := maps.Clone(a)
	if out == nil {
		out = Attrs{}
	}
	for _, o := range overrides {
		maps.Copy(out, o)
	}
	return out
}

// Handle identifies a drawn node. Handles are only meaningful for the graph
// that allocated them.
type Handle string

// Node is a drawn node.
type Node struct {
	Handle Handle
	Label  string
	Attrs  Attrs
}

// Edge is a drawn connection between two nodes.
type Edge struct {
	From  Handle
	To    Handle
	Attrs Attrs
}

// Cluster is a visual grouping scope. Items holds nested nodes and clusters
// in the order they were emitted.
type Cluster struct {
	ID    string
	Label string
	Attrs Attrs
	Items []any // *Node or *Cluster
}

// Graph is a declarative diagram description: a tree of clusters and nodes
// followed by a flat list of edges. Clusters are opened and closed in a
// strictly nested fashion; nodes are allocated into the innermost open
// cluster.
//
// Handles and cluster ids are sequential, so issuing the same calls in the
// same order yields byte-identical DOT text.
//
// The zero value is not usable - use [New].
type Graph struct {
	Title     string
	Attrs     Attrs
	NodeAttrs Attrs
	EdgeAttrs Attrs

	root     *Cluster
	stack    []*Cluster
	nodes    map[Handle]*Node
	order    []Handle
	edges    []Edge
	clusters int
}

// New creates an empty graph with the given title and graph attributes.
func New(title string, attrs Attrs) *Graph {
	root := &Cluster{}
	return &Graph{
		Title: title,
		Attrs: attrs.Merge(),
		root:  root,
		stack: []*Cluster{root},
		nodes: make(map[Handle]*Node),
	}
}

func (g *Graph) current() *Cluster { return g.stack[len(g.stack)-1] }

// OpenCluster starts a nested cluster inside the current scope. Every call
// must be paired with [Graph.CloseCluster].
func (g *Graph) OpenCluster(label string, attrs Attrs) {
	c := &Cluster{
		ID:    fmt.Sprintf("cluster_%d", g.clusters),
		Label: label,
		Attrs: attrs.Merge(),
	}
	g.clusters++
	cur := g.current()
	cur.Items = append(cur.Items, c)
	g.stack = append(g.stack, c)
}

// CloseCluster ends the innermost open cluster.
func (g *Graph) CloseCluster() error {
	if len(g.stack) == 1 {
		return ErrNoOpenCluster
	}
	g.stack = g.stack[:len(g.stack)-1]
	return nil
}

// Depth returns the number of currently open clusters.
func (g *Graph) Depth() int { return len(g.stack) - 1 }

// Node allocates a node in the current scope and returns its handle.
func (g *Graph) Node(label string, attrs Attrs) Handle {
	h := Handle(fmt.Sprintf("n%d", len(g.order)))
	n := &Node{Handle: h, Label: label, Attrs: attrs.Merge()}
	g.nodes[h] = n
	g.order = append(g.order, h)
	cur := g.current()
	cur.Items = append(cur.Items, n)
	return h
}

// Edge connects two previously allocated nodes.
func (g *Graph) Edge(from, to Handle, attrs Attrs) error {
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, to)
	}
	g.edges = append(g.edges, Edge{From: from, To: to, Attrs: attrs.Merge()})
	return nil
}

// Lookup returns the node behind a handle.
func (g *Graph) Lookup(h Handle) (*Node, bool) {
	n, ok := g.nodes[h]
	return n, ok
}

// Nodes returns all nodes in allocation order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, h := range g.order {
		out[i] = g.nodes[h]
	}
	return out
}

// Edges returns all edges in the order they were added.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Root returns the top-level scope.
func (g *Graph) Root() *Cluster { return g.root }

// Validate reports unbalanced cluster scopes.
func (g *Graph) Validate() error {
	if d := g.Depth(); d != 0 {
		return fmt.Errorf("%w: %d scope(s) still open", ErrUnclosedCluster, d)
	}
	return nil
}

// String renders the graph as Graphviz DOT source.
func (g *Graph) String() string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	if g.Title != "" {
		fmt.Fprintf(&b, "  label=%s;\n", quote(g.Title))
	}
	writeStmts(&b, "  ", g.Attrs)
	if len(g.NodeAttrs) > 0 {
		fmt.Fprintf(&b, "  node [%s];\n", fmtAttrs(g.NodeAttrs))
	}
	if len(g.EdgeAttrs) > 0 {
		fmt.Fprintf(&b, "  edge [%s];\n", fmtAttrs(g.EdgeAttrs))
	}
	writeItems(&b, "  ", g.root.Items)
	if len(g.edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range g.edges {
		if len(e.Attrs) == 0 {
			fmt.Fprintf(&b, "  %s -> %s;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&b, "  %s -> %s [%s];\n", e.From, e.To, fmtAttrs(e.Attrs))
	}
	b.WriteString("}\n")
	return b.String()
}

func writeItems(b *strings.Builder, indent string, items []any) {
	for _, it := range items {
		switch v := it.(type) {
		case *Node:
			attrs := v.Attrs.Merge(Attrs{"label": v.Label})
			fmt.Fprintf(b, "%s%s [%s];\n", indent, v.Handle, fmtAttrs(attrs))
		case *Cluster:
			fmt.Fprintf(b, "%ssubgraph %s {\n", indent, v.ID)
			inner := indent + "  "
			fmt.Fprintf(b, "%slabel=%s;\n", inner, quote(v.Label))
			writeStmts(b, inner, v.Attrs)
			writeItems(b, inner, v.Items)
			fmt.Fprintf(b, "%s}\n", indent)
		}
	}
}

func writeStmts(b *strings.Builder, indent string, attrs Attrs) {
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		fmt.Fprintf(b, "%s%s=%s;\n", indent, k, quote(attrs[k]))
	}
}

func fmtAttrs(attrs Attrs) string {
	parts := make([]string, 0, len(attrs))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		parts = append(parts, k+"="+quote(attrs[k]))
	}
	return strings.Join(parts, ", ")
}

// quote produces a DOT double-quoted string. Graphviz escapes such as \l and
// \n keep their meaning; any other backslash is escaped so user text cannot
// terminate the string early. Real newlines are turned into \n.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 < len(s) && strings.IndexByte(labelEscapes, s[i+1]) >= 0 {
				b.WriteByte(c)
				b.WriteByte(s[i+1])
				i++
				continue
			}
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			b.WriteString(`\n`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// labelEscapes are the letters Graphviz interprets after a backslash in a
// label: line breaks and object-name substitutions.
const labelEscapes = "lnrNGETHL"
