package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/drawtf/pkg/errors"
)

const jsonConfig = `{
  "name": "Platform",
  "state": "./terraform.tfstate",
  "outputPath": "out/platform",
  "components": [
    {
      "name": "rg-shared",
      "type": "azurerm_resource_group",
      "attributes": {"location": "westeurope"},
      "custom": {"fillcolor": "#ffffff", "penwidth": 2},
      "components": [
        {"name": "kv", "type": "azurerm_key_vault", "resource_group_name": "rg-shared"},
        {"name": "ghost", "type": "azurerm_unknown"}
      ]
    },
    {"name": "vm", "type": "azurerm_virtual_machine"}
  ],
  "links": [
    {"from": "kv-azurerm_key_vault", "to": "rg-shared-azurerm_resource_group", "label": "reads", "type": "solid", "color": "red"}
  ]
}`

const yamlConfig = `
name: Platform
components:
  - name: rg-shared
    type: azurerm_resource_group
    custom:
      label: Shared
    components:
      - name: kv
        type: azurerm_key_vault
links:
  - from: kv-azurerm_key_vault
    to: rg-shared-azurerm_resource_group
`

const tomlConfig = `
name = "Platform"

[[components]]
name = "rg-shared"
type = "azurerm_resource_group"

  [[components.components]]
  name = "kv"
  type = "azurerm_key_vault"

[[links]]
from = "kv-azurerm_key_vault"
to = "rg-shared-azurerm_resource_group"
type = "bold"
`

func TestParseConfigFormats(t *testing.T) {
	tests := []struct {
		format string
		data   string
	}{
		{FormatJSON, jsonConfig},
		{FormatYAML, yamlConfig},
		{FormatTOML, tomlConfig},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("ParseConfig: %v", err)
			}
			if cfg.Name != "Platform" {
				t.Errorf("name = %q", cfg.Name)
			}
			if len(cfg.Components) == 0 || cfg.Components[0].Name != "rg-shared" {
				t.Fatalf("components = %+v", cfg.Components)
			}
			if len(cfg.Components[0].Components) == 0 || cfg.Components[0].Components[0].Name != "kv" {
				t.Errorf("nested components = %+v", cfg.Components[0].Components)
			}
			if len(cfg.Links) != 1 || cfg.Links[0].From != "kv-azurerm_key_vault" {
				t.Errorf("links = %+v", cfg.Links)
			}
		})
	}
}

func TestBuildComponents(t *testing.T) {
	cfg, err := ParseConfig([]byte(jsonConfig), FormatJSON)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.OutputPath != "out/platform" || cfg.State != "./terraform.tfstate" {
		t.Errorf("paths = %q, %q", cfg.OutputPath, cfg.State)
	}
	if l := cfg.Links[0]; l.Style != "solid" || l.Color != "red" || l.Label != "reads" {
		t.Errorf("link = %+v", l)
	}

	cs := BuildComponents(cfg.Components, supported, nil)
	if len(cs) != 1 {
		t.Fatalf("got %d components, want 1 (unsupported skipped)", len(cs))
	}
	rg := cs[0]
	if len(rg.Children) != 1 || rg.Children[0].Key() != "kv-azurerm_key_vault" {
		t.Errorf("children = %v", rg.Children)
	}
	if rg.Style["fillcolor"] != "#ffffff" || rg.Style["penwidth"] != "2" {
		t.Errorf("style = %v", rg.Style)
	}
	if rg.Attributes.String("location") != "westeurope" {
		t.Errorf("attributes = %v", rg.Attributes)
	}
}

func TestConfigNumericTags(t *testing.T) {
	docs := map[string]string{
		FormatYAML: "components:\n  - name: kv\n    type: azurerm_key_vault\n    attributes:\n      tags:\n        version: 2\n        public: true\n",
		FormatTOML: "[[components]]\nname = \"kv\"\ntype = \"azurerm_key_vault\"\n[components.attributes.tags]\nversion = 2\npublic = true\n",
	}
	for format, doc := range docs {
		cfg, err := ParseConfig([]byte(doc), format)
		if err != nil {
			t.Fatalf("ParseConfig(%s): %v", format, err)
		}
		cs := BuildComponents(cfg.Components, supported, nil)
		if len(cs) != 1 {
			t.Fatalf("%s: got %d components", format, len(cs))
		}
		tags := cs[0].Tags()
		if tags["version"] != "2" || tags["public"] != "true" {
			t.Errorf("%s: tags = %v", format, tags)
		}
	}
}

func TestParseConfigMissingName(t *testing.T) {
	_, err := ParseConfig([]byte(`{"components":[{"type":"azurerm_key_vault"}]}`), FormatJSON)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestParseConfigInvalidType(t *testing.T) {
	for _, doc := range []string{
		`{"components":[{"name":"kv","type":"Key Vault"}]}`,
		`{"components":[{"name":"rg","type":"azurerm_resource_group","components":[{"name":"x\ny","type":"azurerm_key_vault"}]}]}`,
	} {
		_, err := ParseConfig([]byte(doc), FormatJSON)
		if !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("ParseConfig(%s) err = %v, want INVALID_CONFIG", doc, err)
		}
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]string{
		"diagram.json": FormatJSON,
		"diagram.YML":  FormatYAML,
		"d.yaml":       FormatYAML,
		"d.toml":       FormatTOML,
	}
	for path, want := range tests {
		got, err := FormatOf(path)
		if err != nil || got != want {
			t.Errorf("FormatOf(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := FormatOf("diagram.txt"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("FormatOf(txt) err = %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diagram.yaml")
	if err := os.WriteFile(path, []byte(yamlConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Components[0].Custom["label"] != "Shared" {
		t.Errorf("custom = %v", cfg.Components[0].Custom)
	}

	_, err = LoadConfig(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}
