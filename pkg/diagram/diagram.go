// Package diagram turns a grouped component forest into a diagram
// description.
//
// Drawing happens in two strictly ordered passes over one [Canvas]:
//
//  1. [Renderer.Render] walks the forest depth-first, emitting nested
//     clusters and nodes, and fills a [NodeCache] from component key to
//     drawn-node handle.
//  2. [Renderer.ResolveLinks] draws the declared links between cached
//     nodes. Any key may point anywhere in the tree, so this only starts
//     once the traversal is complete.
//
// Problems that leave a useful partial diagram (unsupported kinds,
// duplicate keys, links to unknown keys) are logged and collected in a
// [Report]. Malformed links fail the build.
package diagram

import (
	"github.com/matzehuels/drawtf/pkg/component"
	"github.com/matzehuels/drawtf/pkg/dot"
)

// Diagram is everything needed to draw one picture.
type Diagram struct {
	Name      string
	Direction string // Graphviz rankdir; empty means TB
	Forest    []*component.Component
	Tags      Tags
	Links     []component.Link
}

// Draw renders d into a new [dot.Graph]: the forest, then the links, then
// the free-floating tag annotation. The returned cache holds every drawn
// component node.
func (r *Renderer) Draw(d Diagram) (*dot.Graph, *NodeCache, *Report, error) {
	if err := ValidateLinks(d.Links); err != nil {
		return nil, nil, nil, err
	}

	direction := d.Direction
	if direction == "" {
		direction = "TB"
	}
	g := dot.New(d.Name, GraphAttrs.Merge(dot.Attrs{"rankdir": direction}))

	report := &Report{}
	cache, err := r.Render(g, d.Forest, report)
	if err != nil {
		return nil, nil, nil, err
	}

	links, err := r.ResolveLinks(g, cache, d.Links)
	if err != nil {
		return nil, nil, nil, err
	}
	report.Links = links

	if label := d.Tags.Label(); label != "" {
		g.Node(label, TagAttrs)
	}

	if err := g.Validate(); err != nil {
		return nil, nil, nil, err
	}
	r.Logger.Debug("drawn",
		"nodes", len(g.Nodes()),
		"edges", len(g.Edges()),
		"unsupported", len(report.Unsupported),
		"skipped_links", len(report.Links.Skipped))
	return g, cache, report, nil
}
