package azure

import (
	"slices"

	"github.com/matzehuels/drawtf/pkg/component"
	"github.com/matzehuels/drawtf/pkg/dot"
	"github.com/matzehuels/drawtf/pkg/registry"
)

// category selects the shape and fill of a node in place of a service icon.
type category struct {
	shape string
	fill  string
}

var (
	compute     = category{"component", "#FFF4CE"}
	web         = category{"tab", "#DDEBF7"}
	storage     = category{"cylinder", "#E2F0D9"}
	database    = category{"cylinder", "#FCE4D6"}
	network     = category{"hexagon", "#EDEDED"}
	integration = category{"cds", "#E4DFEC"}
	security    = category{"octagon", "#FFE699"}
	monitoring  = category{"note", "#D9E1F2"}
	general     = category{"folder", "#FFFFFF"}
)

// nodeAttrs are the attributes every azure node starts from.
var nodeAttrs = dot.Attrs{
	"fontsize":   "8",
	"fixedsize":  "true",
	"labelloc":   "b",
	"width":      "1",
	"height":     "1.5",
	"imagepos":   "tc",
	"imagescale": "true",
	"margin":     "30.0,1.0",
	"style":      "filled",
}

// resource is a descriptor without grouping capability.
type resource struct {
	kind     string
	cat      category
	height   string // overrides nodeAttrs["height"] when set
	metadata func(component.Attributes) string
}

func (r resource) Identifier() string { return r.kind }

func (r resource) Describe(c *component.Component) string {
	if r.metadata == nil {
		return ""
	}
	return r.metadata(c.Attributes)
}

func (r resource) Node(d registry.NodeDrawer, c *component.Component, overrides dot.Attrs) dot.Handle {
	return registry.Draw(d, registry.Label(c.Name, r.Describe(c)), r.attrs(), overrides)
}

func (r resource) attrs() dot.Attrs {
	a := nodeAttrs.Merge(dot.Attrs{"shape": r.cat.shape, "fillcolor": r.cat.fill})
	if r.height != "" {
		a["height"] = r.height
	}
	return a
}

// owner is a descriptor whose components claim children of other kinds.
type owner struct {
	resource
	children []string
	match    func(owner, child *component.Component) bool
}

// Group returns the pool members of a child kind that match owner.
func (o owner) Group(own *component.Component, pool []*component.Component) []*component.Component {
	var out []*component.Component
	for _, c := range pool {
		if c == own || !slices.Contains(o.children, c.Kind) {
			continue
		}
		if !sameResourceGroup(own, c) {
			continue
		}
		if o.match(own, c) {
			out = append(out, c)
		}
	}
	return out
}

// sameResourceGroup rejects pairs that both name a resource group and name
// different ones; azure names are only unique within a group.
func sameResourceGroup(a, b *component.Component) bool {
	if a.OwnerHint == component.Unparented || b.OwnerHint == component.Unparented {
		return true
	}
	return a.OwnerHint == b.OwnerHint
}
