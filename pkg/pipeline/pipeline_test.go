package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/drawtf/pkg/cache"
	"github.com/matzehuels/drawtf/pkg/component"
	"github.com/matzehuels/drawtf/pkg/errors"
	"github.com/matzehuels/drawtf/pkg/state"
)

const testState = `{
  "version": 4,
  "terraform_version": "1.6.0",
  "resources": [
    {"mode": "managed", "type": "azurerm_resource_group", "name": "rg",
     "instances": [{"attributes": {"name": "rg-app", "location": "westeurope", "tags": {"env": "dev"}}}]},
    {"mode": "managed", "type": "azurerm_storage_account", "name": "sa",
     "instances": [{"attributes": {"name": "data", "resource_group_name": "rg-app", "account_tier": "Standard", "tags": {"owner": "ops"}}}]},
    {"mode": "managed", "type": "azurerm_storage_container", "name": "c",
     "instances": [{"attributes": {"name": "blobs", "resource_group_name": "rg-app", "storage_account_name": "data"}}]},
    {"mode": "managed", "type": "azurerm_virtual_machine", "name": "vm",
     "instances": [{"attributes": {"name": "vm1", "resource_group_name": "rg-app"}}]}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", true},
		{"SVG", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Name != DefaultName || opts.Platform != DefaultPlatform || opts.Direction != DefaultDirection {
		t.Errorf("defaults = %q %q %q", opts.Name, opts.Platform, opts.Direction)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != DefaultFormat {
		t.Errorf("formats = %v", opts.Formats)
	}
	if opts.OutputPath != DefaultName {
		t.Errorf("output path = %q, want name", opts.OutputPath)
	}
	if opts.Logger == nil {
		t.Error("logger not defaulted")
	}
	// idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call: %v", err)
	}
}

func TestOutputPathPrecedence(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"explicit", Options{OutputPath: "out/x", ConfigPath: "c.json"}, "out/x"},
		{"config", Options{ConfigPath: "diagrams/app.json", StatePath: "tf/terraform.tfstate"}, "diagrams/app"},
		{"state", Options{StatePath: "tf/terraform.tfstate"}, "tf/terraform"},
		{"name", Options{Name: "Platform"}, "Platform"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if err := opts.ValidateAndSetDefaults(); err != nil {
				t.Fatal(err)
			}
			if opts.OutputPath != tt.want {
				t.Errorf("OutputPath = %q, want %q", opts.OutputPath, tt.want)
			}
		})
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"platform", Options{Platform: "aws"}, errors.ErrCodeUnsupported},
		{"format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"direction", Options{Direction: "diagonal"}, errors.ErrCodeInvalidInput},
		{"name", Options{Name: "two\nlines"}, errors.ErrCodeInvalidInput},
		{"component", Options{Components: []state.ComponentSpec{{Name: "kv"}}}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestApplyConfig(t *testing.T) {
	opts := Options{Name: "FromFlag", Links: []component.Link{{From: "a", To: "b"}}}
	opts.ApplyConfig(&state.Config{
		Name:       "FromConfig",
		State:      "terraform.tfstate",
		OutputPath: "out/diagram",
		Components: []state.ComponentSpec{{Name: "kv", Type: "azurerm_key_vault"}},
		Links:      []component.Link{{From: "c", To: "d"}},
	})
	if opts.Name != "FromFlag" {
		t.Errorf("flag name overridden: %q", opts.Name)
	}
	if opts.StatePath != "terraform.tfstate" || opts.OutputPath != "out/diagram" {
		t.Errorf("paths = %q, %q", opts.StatePath, opts.OutputPath)
	}
	if len(opts.Components) != 1 || len(opts.Links) != 2 || opts.Links[1].From != "c" {
		t.Errorf("components=%v links=%v", opts.Components, opts.Links)
	}
}

func TestFindPlatform(t *testing.T) {
	p, err := FindPlatform("Azure")
	if err != nil {
		t.Fatalf("FindPlatform: %v", err)
	}
	if err := p.Plan().Validate(p.Registry()); err != nil {
		t.Errorf("plan invalid: %v", err)
	}
	if _, err := FindPlatform("gcp"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v", err)
	}
}

func TestPlatformsBuild(t *testing.T) {
	for _, name := range Platforms() {
		p, err := FindPlatform(name)
		if err != nil {
			t.Fatal(err)
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("%s registry: %v", name, r)
				}
			}()
			reg := p.Registry()
			if err := p.Plan().Validate(reg); err != nil {
				t.Errorf("%s plan: %v", name, err)
			}
		}()
	}
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	statePath := writeFile(t, dir, "terraform.tfstate", testState)

	r := NewRunner(nil, nil)
	result, err := r.Execute(context.Background(), Options{
		StatePath: statePath,
		Formats:   []string{"dot"},
		Links:     []component.Link{{From: "blobs-azurerm_storage_container", To: "rg-app-azurerm_resource_group", Label: "lives in"}},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.Components != 3 {
		t.Errorf("components = %d, want 3 (vm unsupported)", result.Stats.Components)
	}
	if len(result.Forest) != 1 || result.Forest[0].Key() != "rg-app-azurerm_resource_group" {
		t.Fatalf("forest = %v", result.Forest)
	}
	for _, want := range []string{
		`"AZURERM_RESOURCE_GROUP: RG-APP"`,
		`"AZURERM_STORAGE_ACCOUNT: DATA"`,
		`Tags: \l`,
		`env: dev \l`,
		`owner: ops \l`,
		`label="lives in"`,
		`style="dashed"`,
	} {
		if !strings.Contains(result.DOT, want) {
			t.Errorf("DOT missing %s", want)
		}
	}
	if string(result.Artifacts["dot"]) != result.DOT {
		t.Error("dot artifact differs from DOT")
	}
	if result.Report.Links.Drawn != 1 {
		t.Errorf("links drawn = %d", result.Report.Links.Drawn)
	}
	if result.Stats.Edges != 1 {
		t.Errorf("edges = %d", result.Stats.Edges)
	}
}

func TestExecuteDeterministic(t *testing.T) {
	r := NewRunner(nil, nil)
	run := func() string {
		res, err := r.Execute(context.Background(), Options{State: []byte(testState), Formats: []string{"dot"}})
		if err != nil {
			t.Fatal(err)
		}
		return res.DOT
	}
	if a, b := run(), run(); a != b {
		t.Errorf("DOT differs between runs:\n%s\n---\n%s", a, b)
	}
}

func TestExecuteConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "terraform.tfstate", testState)
	cfgPath := writeFile(t, dir, "diagram.yaml", `
name: Platform
state: `+filepath.Join(dir, "terraform.tfstate")+`
components:
  - name: shared
    type: azurerm_key_vault
    custom:
      label: Secrets
      fillcolor: red
links:
  - from: shared-azurerm_key_vault
    to: data-azurerm_storage_account
    type: solid
`)
	r := NewRunner(nil, nil)
	res, err := r.Execute(context.Background(), Options{ConfigPath: cfgPath, Formats: []string{"dot"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.Components != 4 {
		t.Errorf("components = %d, want 4", res.Stats.Components)
	}
	last := res.Components[len(res.Components)-1]
	if last.Key() != "shared-azurerm_key_vault" {
		t.Errorf("config component not appended last: %s", last.Key())
	}
	for _, want := range []string{`label="Platform"`, `"Secrets"`, `fillcolor="red"`, `style="solid"`} {
		if !strings.Contains(res.DOT, want) {
			t.Errorf("DOT missing %s", want)
		}
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil)
	ctx := context.Background()

	_, err := r.Execute(ctx, Options{StatePath: filepath.Join(t.TempDir(), "nope.tfstate"), Formats: []string{"dot"}})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing state: %v", err)
	}

	_, err = r.Execute(ctx, Options{State: []byte("{"), Formats: []string{"dot"}})
	if !errors.Is(err, errors.ErrCodeInvalidState) {
		t.Errorf("bad state: %v", err)
	}

	_, err = r.Execute(ctx, Options{Formats: []string{"dot"}, Links: []component.Link{{From: "a"}}})
	if !errors.Is(err, errors.ErrCodeInvalidLink) {
		t.Errorf("malformed link: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.Execute(cancelled, Options{Formats: []string{"dot"}}); err == nil {
		t.Error("cancelled context should fail")
	}
}

func TestRenderUsesCache(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil)

	first, err := r.Execute(ctx, Options{State: []byte(testState), Formats: []string{"dot"}})
	if err != nil {
		t.Fatal(err)
	}
	// A seeded artifact is served without invoking graphviz.
	if err := c.Set(ctx, cache.ArtifactKey("svg", first.DOT), []byte("<svg/>"), time.Hour); err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(ctx, Options{State: []byte(testState), Formats: []string{"svg"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if string(second.Artifacts["svg"]) != "<svg/>" {
		t.Errorf("svg = %q, want cached bytes", second.Artifacts["svg"])
	}
	if !second.RenderHit() {
		t.Error("RenderHit should be true")
	}
}

func TestRenderGraphviz(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering skipped in short mode")
	}
	r := NewRunner(nil, nil)
	res, err := r.Execute(context.Background(), Options{State: []byte(testState), Formats: []string{"svg", "png"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(string(res.Artifacts["svg"]), "<svg") {
		t.Error("svg artifact is not SVG")
	}
	if len(res.Artifacts["png"]) < 8 || string(res.Artifacts["png"][1:4]) != "PNG" {
		t.Error("png artifact lacks PNG signature")
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out", "diagram")
	paths, err := WriteArtifacts(base, []string{"dot", "svg", "png"}, map[string][]byte{
		"dot": []byte("digraph G {}"),
		"svg": []byte("<svg/>"),
	})
	if err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}
	if len(paths) != 2 || paths[0] != base+".dot" || paths[1] != base+".svg" {
		t.Errorf("paths = %v", paths)
	}
	data, _ := os.ReadFile(base + ".svg")
	if string(data) != "<svg/>" {
		t.Errorf("svg content = %q", data)
	}
}

func TestResultOptions(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "app.json", `{"name": "App"}`)
	res, err := NewRunner(nil, nil).Execute(context.Background(), Options{ConfigPath: cfgPath, Formats: []string{"dot"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Options.Name != "App" {
		t.Errorf("name = %q", res.Options.Name)
	}
	if want := filepath.Join(dir, "app"); res.Options.OutputPath != want {
		t.Errorf("output = %q, want %q", res.Options.OutputPath, want)
	}
}
