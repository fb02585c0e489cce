// Package pipeline runs the complete state → diagram pipeline shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Ingest: read the terraform state and the declarative config into a
//     flat component list, dropping unsupported kinds.
//  2. Group: nest the components with the platform's grouping plan.
//  3. Draw: emit the forest, links and tag annotation as DOT.
//  4. Render: rasterise the DOT once per requested format, consulting the
//     artifact cache first.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    StatePath: "terraform.tfstate",
//	    Formats:   []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"encoding/json"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/drawtf/pkg/component"
	"github.com/matzehuels/drawtf/pkg/diagram"
	"github.com/matzehuels/drawtf/pkg/dot"
	"github.com/matzehuels/drawtf/pkg/errors"
	"github.com/matzehuels/drawtf/pkg/grouping"
	"github.com/matzehuels/drawtf/pkg/provider/azure"
	"github.com/matzehuels/drawtf/pkg/registry"
	"github.com/matzehuels/drawtf/pkg/state"
)

// Defaults shared by the CLI and the server.
const (
	DefaultName      = "Design"
	DefaultPlatform  = azure.Name
	DefaultFormat    = dot.FormatPNG
	DefaultDirection = "TB"
)

// Directions are the accepted Graphviz rank directions.
var Directions = []string{"TB", "BT", "LR", "RL"}

// Platform bundles the descriptor set and grouping plan of one cloud.
type Platform struct {
	Name     string
	Registry func() *registry.Registry
	Plan     func() grouping.Plan
}

var platforms = []Platform{
	{Name: azure.Name, Registry: azure.Registry, Plan: azure.Plan},
}

// Platforms returns the supported platform names.
func Platforms() []string {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = p.Name
	}
	return names
}

// FindPlatform looks up a platform by case-insensitive name.
func FindPlatform(name string) (Platform, error) {
	for _, p := range platforms {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Platform{}, errors.New(errors.ErrCodeUnsupported,
		"platform %q is not yet supported (supported: %s)", name, strings.Join(Platforms(), ", "))
}

// Options configures one pipeline run. The JSON form is the request body
// of the HTTP API; file paths are CLI only.
type Options struct {
	Name      string   `json:"name,omitempty"`
	Platform  string   `json:"platform,omitempty"`
	Direction string   `json:"direction,omitempty"`
	Formats   []string `json:"formats,omitempty"`

	// State is an inline terraform state document. It takes precedence
	// over StatePath.
	State      json.RawMessage       `json:"state,omitempty"`
	Components []state.ComponentSpec `json:"components,omitempty"`
	Links      []component.Link      `json:"links,omitempty"`

	StatePath  string `json:"-"`
	ConfigPath string `json:"-"`
	OutputPath string `json:"-"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ApplyConfig fills options from a config file. Values already set win;
// config components and links are appended after existing ones.
func (o *Options) ApplyConfig(cfg *state.Config) {
	if cfg == nil {
		return
	}
	if o.Name == "" {
		o.Name = cfg.Name
	}
	if o.StatePath == "" && len(o.State) == 0 {
		o.StatePath = cfg.State
	}
	if o.OutputPath == "" {
		o.OutputPath = cfg.OutputPath
	}
	o.Components = append(o.Components, cfg.Components...)
	o.Links = append(o.Links, cfg.Links...)
}

// ValidateAndSetDefaults checks the options and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Platform == "" {
		o.Platform = DefaultPlatform
	}
	if _, err := FindPlatform(o.Platform); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	o.Direction = strings.ToUpper(o.Direction)
	if !slices.Contains(Directions, o.Direction) {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid direction %q (must be one of: %s)", o.Direction, strings.Join(Directions, ", "))
	}

	if o.Name == "" {
		o.Name = DefaultName
	}
	if err := errors.ValidateName(o.Name); err != nil {
		return err
	}
	if err := state.ValidateSpecs(o.Components); err != nil {
		return err
	}
	if o.OutputPath == "" {
		o.OutputPath = defaultOutputPath(o.ConfigPath, o.StatePath, o.Name)
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.validated = true
	return nil
}

// defaultOutputPath is the config path without extension, else the state
// path without extension, else the diagram name.
func defaultOutputPath(configPath, statePath, name string) string {
	for _, p := range []string{configPath, statePath} {
		if p != "" {
			return strings.TrimSuffix(p, filepath.Ext(p))
		}
	}
	return name
}

// ValidateFormat checks a single output format.
func ValidateFormat(format string) error {
	if !slices.Contains(dot.Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format %q (must be one of: %s)", format, strings.Join(dot.Formats, ", "))
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Result holds the outputs of a pipeline run.
type Result struct {
	// Options are the effective options after config and defaults.
	Options Options

	// Components is the ingested flat list, in input order.
	Components []*component.Component

	// Forest holds the grouping roots.
	Forest []*component.Component

	// DOT is the Graphviz source of the diagram.
	DOT string

	// Artifacts maps format to rendered bytes.
	Artifacts map[string][]byte

	Report    *diagram.Report
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains sizes and stage timings.
type Stats struct {
	Components int
	Roots      int
	Nodes      int
	Edges      int

	IngestTime time.Duration
	GroupTime  time.Duration
	DrawTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo records artifact cache usage.
type CacheInfo struct {
	// Hits lists the formats served from the cache.
	Hits []string
}

// RenderHit reports whether every artifact came from the cache.
func (r *Result) RenderHit() bool {
	return len(r.CacheInfo.Hits) == len(r.Artifacts) && len(r.Artifacts) > 0
}
