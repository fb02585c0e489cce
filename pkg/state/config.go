package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/drawtf/pkg/component"
	"github.com/matzehuels/drawtf/pkg/errors"
)

// Config file formats, selected by extension.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Config is a declarative diagram description. Every field is optional.
type Config struct {
	Name       string           `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	State      string           `json:"state,omitempty" yaml:"state,omitempty" toml:"state,omitempty"`
	OutputPath string           `json:"outputPath,omitempty" yaml:"outputPath,omitempty" toml:"outputPath,omitempty"`
	Components []ComponentSpec  `json:"components,omitempty" yaml:"components,omitempty" toml:"components,omitempty"`
	Links      []component.Link `json:"links,omitempty" yaml:"links,omitempty" toml:"links,omitempty"`
}

// ComponentSpec declares a component by hand. Nested Components become its
// children directly and are never regrouped.
type ComponentSpec struct {
	Name              string          `json:"name" yaml:"name" toml:"name"`
	Type              string          `json:"type" yaml:"type" toml:"type"`
	Mode              string          `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
	ResourceGroupName string          `json:"resource_group_name,omitempty" yaml:"resource_group_name,omitempty" toml:"resource_group_name,omitempty"`
	Attributes        map[string]any  `json:"attributes,omitempty" yaml:"attributes,omitempty" toml:"attributes,omitempty"`
	Custom            map[string]any  `json:"custom,omitempty" yaml:"custom,omitempty" toml:"custom,omitempty"`
	Components        []ComponentSpec `json:"components,omitempty" yaml:"components,omitempty" toml:"components,omitempty"`
}

// FormatOf returns the config format implied by a file name.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "unsupported config file extension %q (use .json, .yaml, .yml or .toml)", filepath.Ext(path))
}

// LoadConfig reads the config file at path.
func LoadConfig(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file %s does not exist", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config file %s", path)
	}
	return ParseConfig(data, format)
}

// ParseConfig decodes a config document in the given format.
func ParseConfig(data []byte, format string) (*Config, error) {
	var cfg Config
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err = dec.Decode(&cfg); err == io.EOF {
			err = nil
		}
	case FormatTOML:
		_, err = toml.Decode(string(data), &cfg)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s config", format)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	return ValidateSpecs(c.Components)
}

// ValidateSpecs checks that every declared component, nested ones included,
// has a usable name and resource type.
func ValidateSpecs(specs []ComponentSpec) error {
	return validateSpecs(specs, "components")
}

func validateSpecs(specs []ComponentSpec, path string) error {
	for i, s := range specs {
		at := fmt.Sprintf("%s[%d]", path, i)
		if s.Name == "" || s.Type == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: name and type are required", at)
		}
		if err := errors.ValidateName(s.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", at)
		}
		if err := errors.ValidateKind(s.Type); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", at)
		}
		if err := validateSpecs(s.Components, at+".components"); err != nil {
			return err
		}
	}
	return nil
}

// BuildComponents converts specs into components with their declared
// children attached. Specs of unsupported kinds are skipped together with
// their children.
func BuildComponents(specs []ComponentSpec, kinds Kinds, logger *log.Logger) []*component.Component {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	var out []*component.Component
	for _, s := range specs {
		if !kinds.Supports(s.Type) {
			logger.Warn("resource type is not supported", "kind", s.Type, "name", s.Name)
			continue
		}
		c := component.New(s.Name, s.Type, s.Mode, s.ResourceGroupName, component.Attributes(s.Attributes))
		c.Style = style(s.Custom)
		for _, child := range BuildComponents(s.Components, kinds, logger) {
			c.Add(child)
		}
		logger.Debug("adding resource from config", "key", c.Key())
		out = append(out, c)
	}
	return out
}

// style stringifies custom override values; config formats may decode
// numbers and booleans.
func style(custom map[string]any) map[string]string {
	if len(custom) == 0 {
		return nil
	}
	out := make(map[string]string, len(custom))
	for k, v := range custom {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
