package diagram

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/drawtf/pkg/component"
	"github.com/matzehuels/drawtf/pkg/dot"
	"github.com/matzehuels/drawtf/pkg/registry"
)

// RootGroup is the Graphviz "group" attribute given to top-level nodes.
const RootGroup = "root"

// Canvas is the rendering engine the traversal and the link resolver talk
// to. [*dot.Graph] implements it.
type Canvas interface {
	registry.NodeDrawer
	OpenCluster(label string, attrs dot.Attrs)
	CloseCluster() error
	Edge(from, to dot.Handle, attrs dot.Attrs) error
}

// Default presentation attributes.
var (
	GraphAttrs = dot.Attrs{
		"splines":  "ortho",
		"layout":   "dot",
		"fontname": "times bold",
	}
	ClusterAttrs = dot.Attrs{
		"fontsize": "9",
		"margin":   "30.0,1.0",
		"fontname": "times bold",
	}
	TagAttrs = dot.Attrs{
		"shape":    "plaintext",
		"fontsize": "9",
		"fontname": "times italic",
	}
)

// Report collects the non-fatal conditions met while drawing.
type Report struct {
	// Unsupported lists keys of components whose kind has no descriptor.
	Unsupported []string
	// Duplicates lists keys written to the node cache more than once.
	Duplicates []string
	// Links summarises link resolution.
	Links LinkReport
}

// Renderer walks a component forest and draws it.
type Renderer struct {
	Registry *registry.Registry
	Logger   *log.Logger
}

// NewRenderer creates a renderer. A nil logger discards output.
func NewRenderer(reg *registry.Registry, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Renderer{Registry: reg, Logger: logger}
}

// Render draws forest onto canvas in pre-order and returns the populated
// node cache. Leaves become nodes. A cluster opens a scope labelled with its
// kind and name, draws its children inside it and then its own node, so it
// is both a visual boundary and a linkable node.
func (r *Renderer) Render(canvas Canvas, forest []*component.Component, report *Report) (*NodeCache, error) {
	cache := NewNodeCache()
	if report == nil {
		report = &Report{}
	}
	if err := r.draw(canvas, forest, RootGroup, cache, report); err != nil {
		return nil, err
	}
	return cache, nil
}

func (r *Renderer) draw(canvas Canvas, cs []*component.Component, group string, cache *NodeCache, report *Report) error {
	for _, c := range cs {
		if !c.IsCluster() {
			r.node(canvas, c, group, cache, report)
			continue
		}
		canvas.OpenCluster(ClusterLabel(c), ClusterAttrs)
		if err := r.draw(canvas, c.Children, c.Key(), cache, report); err != nil {
			return err
		}
		r.node(canvas, c, group, cache, report)
		if err := canvas.CloseCluster(); err != nil {
			return fmt.Errorf("close cluster %s: %w", c.Key(), err)
		}
	}
	return nil
}

func (r *Renderer) node(canvas Canvas, c *component.Component, group string, cache *NodeCache, report *Report) {
	d, ok := r.Registry.Lookup(c.Kind)
	if !ok {
		r.Logger.Warn("no descriptor for kind, skipping", "kind", c.Kind, "name", c.Name)
		report.Unsupported = append(report.Unsupported, c.Key())
		return
	}
	overrides := dot.Attrs{"group": group}
	for k, v := range c.Style {
		overrides[k] = v
	}
	h := d.Node(canvas, c, overrides)
	if cache.Put(c.Key(), h) {
		r.Logger.Warn("duplicate component key, last node wins", "key", c.Key())
		report.Duplicates = append(report.Duplicates, c.Key())
	}
}

// ClusterLabel returns the upper-cased "kind: name" label of a cluster.
func ClusterLabel(c *component.Component) string {
	return strings.ToUpper(c.Kind + ": " + c.Name)
}
