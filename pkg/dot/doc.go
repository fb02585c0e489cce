// Package dot builds declarative diagram descriptions and hands them to
// Graphviz.
//
// # Overview
//
// A [Graph] records a tree of "open cluster / draw node / close cluster"
// calls followed by a flat list of edges. Nothing is laid out here: the
// description is serialised with [Graph.String] and passed to [Render],
// which delegates layout and rasterisation to Graphviz.
//
// # Usage
//
//	g := dot.New("Design", dot.Attrs{"splines": "ortho"})
//	g.OpenCluster("RESOURCE GROUP: RG", nil)
//	a := g.Node("web", dot.Attrs{"shape": "box"})
//	b := g.Node("db", nil)
//	_ = g.CloseCluster()
//	_ = g.Edge(a, b, dot.Attrs{"style": "dashed"})
//	svg, err := dot.Render(ctx, g.String(), dot.FormatSVG)
//
// # Determinism
//
// Node handles ("n0", "n1", ...) and cluster ids ("cluster_0", ...) are
// sequential and attributes are written in sorted key order, so the same
// sequence of calls always produces the same DOT text.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG, PNG
// and JPG rendering. PDF conversion requires librsvg (rsvg-convert).
package dot
