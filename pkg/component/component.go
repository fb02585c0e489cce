// Package component defines the in-memory model of a diagram build: one
// [Component] per parsed resource instance, and the [Link] records that
// describe explicit edges between components.
//
// Components are created once during ingestion. Their Children are filled
// exactly once, either inline from a declarative config file or by the
// grouping engine, and are read-only afterwards.
package component

import (
	"fmt"
	"maps"
)

// Unparented is the owner hint of a component whose attributes carry no
// resource group reference.
const Unparented = "Unparented"

// ModeManual is the provenance of components declared in a config file
// rather than read from a state export.
const ModeManual = "manual"

// Attributes is the raw property bag of a resource instance.
type Attributes map[string]any

// String returns the value at key if it is a string, and "" otherwise.
// Missing and non-string values are treated the same so descriptors never
// fail on absent optional attributes.
func (a Attributes) String(key string) string {
	if s, ok := a[key].(string); ok {
		return s
	}
	return ""
}

// Strings returns the value at key as a string slice. JSON decoding yields
// []any for arrays; non-string elements are skipped.
func (a Attributes) Strings(key string) []string {
	switch v := a[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Map returns the nested object at key, or nil.
func (a Attributes) Map(key string) map[string]any {
	if m, ok := a[key].(map[string]any); ok {
		return m
	}
	return nil
}

// Component is one resource instance and the components it owns.
//
// The zero value is not usable; create components with [New].
type Component struct {
	Name       string
	Kind       string
	Mode       string
	OwnerHint  string
	Attributes Attributes

	// Style holds caller-supplied node attribute overrides (the "custom"
	// payload of a declarative component).
	Style map[string]string

	// Children is ordered by insertion.
	Children []*Component
}

// New creates a component. An empty owner hint becomes [Unparented], an
// empty mode becomes [ModeManual] and a nil attribute map becomes empty.
func New(name, kind, mode, ownerHint string, attrs Attributes) *Component {
	if ownerHint == "" {
		ownerHint = Unparented
	}
	if mode == "" {
		mode = ModeManual
	}
	if attrs == nil {
		attrs = Attributes{}
	}
	return &Component{
		Name:       name,
		Kind:       kind,
		Mode:       mode,
		OwnerHint:  ownerHint,
		Attributes: attrs,
	}
}

// Key returns the address of the component in the render cache and in link
// records. Keys are expected, but not enforced, to be unique.
func (c *Component) Key() string { return Key(c.Name, c.Kind) }

// Key derives a component key from a name and a kind.
func Key(name, kind string) string { return name + "-" + kind }

// Add appends child to the component's children.
func (c *Component) Add(child *Component) {
	c.Children = append(c.Children, child)
}

// IsCluster reports whether the component owns at least one other component.
func (c *Component) IsCluster() bool { return len(c.Children) > 0 }

// Tags returns the component's "tags" attribute as a string map. Config
// formats may decode numbers and booleans; those are stringified. Null
// values are dropped.
func (c *Component) Tags() map[string]string {
	raw := c.Attributes.Map("tags")
	if len(raw) == 0 {
		if s, ok := c.Attributes["tags"].(map[string]string); ok {
			return maps.Clone(s)
		}
		return nil
	}
	tags := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
		case string:
			tags[k] = v
		default:
			tags[k] = fmt.Sprint(v)
		}
	}
	return tags
}

// Walk calls fn for c and every descendant in pre-order. Walk stops early
// and returns false when fn returns false.
func (c *Component) Walk(fn func(c *Component, depth int) bool) bool {
	return c.walk(fn, 0)
}

func (c *Component) walk(fn func(*Component, int) bool, depth int) bool {
	if !fn(c, depth) {
		return false
	}
	for _, child := range c.Children {
		if !child.walk(fn, depth+1) {
			return false
		}
	}
	return true
}

// Link is a declarative directed edge between two component keys.
// Empty Label, Style and Color mean "use the default".
type Link struct {
	From  string `json:"from" yaml:"from" toml:"from"`
	To    string `json:"to" yaml:"to" toml:"to"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Style string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
}
