// Package state turns terraform state files and declarative diagram configs
// into flat component lists and link records.
//
// Both sources skip kinds the active platform does not support, logging a
// warning per resource, so the grouping and render stages only ever see
// drawable components.
package state

import (
	"encoding/json"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/drawtf/pkg/component"
	"github.com/matzehuels/drawtf/pkg/errors"
)

// Kinds reports whether a resource kind can be drawn.
type Kinds interface {
	Supports(kind string) bool
}

// File is the subset of the terraform state format read by drawtf.
type File struct {
	Version          int        `json:"version"`
	TerraformVersion string     `json:"terraform_version"`
	Serial           int        `json:"serial"`
	Lineage          string     `json:"lineage"`
	Resources        []Resource `json:"resources"`
}

// Resource is one resource block; count and for_each expand to instances.
type Resource struct {
	Mode      string     `json:"mode"`
	Type      string     `json:"type"`
	Name      string     `json:"name"`
	Provider  string     `json:"provider"`
	Module    string     `json:"module,omitempty"`
	Instances []Instance `json:"instances"`
}

// Instance holds the recorded attributes of one resource instance.
type Instance struct {
	SchemaVersion int            `json:"schema_version"`
	Attributes    map[string]any `json:"attributes"`
	IndexKey      any            `json:"index_key,omitempty"`
}

// Parse decodes a state document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidState, err, "parse terraform state")
	}
	return &f, nil
}

// Read loads and decodes the state file at path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "state file %s does not exist", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidState, err, "read state file %s", path)
	}
	return Parse(data)
}

// Components flattens every supported resource instance into a component,
// in state order. A nil file yields no components.
//
// The component name is the instance's "name" attribute when present, else
// the resource's address name. The owner hint is "resource_group_name".
func (f *File) Components(kinds Kinds, logger *log.Logger) []*component.Component {
	if f == nil {
		return nil
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	var out []*component.Component
	for _, r := range f.Resources {
		if !kinds.Supports(r.Type) {
			logger.Warn("resource type is not supported", "kind", r.Type, "name", r.Name)
			continue
		}
		for _, inst := range r.Instances {
			attrs := component.Attributes(inst.Attributes)
			name := r.Name
			if n := attrs.String("name"); n != "" {
				name = n
			}
			c := component.New(name, r.Type, r.Mode, attrs.String("resource_group_name"), attrs)
			logger.Debug("adding resource", "key", c.Key())
			out = append(out, c)
		}
	}
	return out
}
