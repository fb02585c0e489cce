package component

import (
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	c := New("sa", "azurerm_storage_account", "", "", nil)

	if c.OwnerHint != Unparented {
		t.Errorf("OwnerHint = %q, want %q", c.OwnerHint, Unparented)
	}
	if c.Mode != ModeManual {
		t.Errorf("Mode = %q, want %q", c.Mode, ModeManual)
	}
	if c.Attributes == nil {
		t.Error("Attributes should never be nil")
	}
}

func TestKey(t *testing.T) {
	c := New("sa", "azurerm_storage_account", "managed", "rg", nil)
	if got, want := c.Key(), "sa-azurerm_storage_account"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key() must separate name and kind")
	}
}

func TestIsCluster(t *testing.T) {
	parent := New("sa", "azurerm_storage_account", "", "", nil)
	if parent.IsCluster() {
		t.Error("component without children should be a leaf")
	}
	parent.Add(New("c", "azurerm_storage_container", "", "", nil))
	if !parent.IsCluster() {
		t.Error("component with children should be a cluster")
	}
}

func TestAttributes(t *testing.T) {
	a := Attributes{
		"name":             "web",
		"count":            3,
		"address_prefixes": []any{"10.0.1.0/24", 7, "10.0.2.0/24"},
		"typed":            []string{"x"},
		"tags":             map[string]any{"env": "prod"},
	}

	if a.String("name") != "web" {
		t.Error("String() of string value")
	}
	if a.String("count") != "" || a.String("missing") != "" {
		t.Error("String() of non-string or missing value should be empty")
	}
	if got := a.Strings("address_prefixes"); len(got) != 2 || got[1] != "10.0.2.0/24" {
		t.Errorf("Strings() = %v", got)
	}
	if got := a.Strings("typed"); len(got) != 1 {
		t.Errorf("Strings() typed = %v", got)
	}
	if a.Strings("missing") != nil {
		t.Error("Strings() of missing value should be nil")
	}
	if a.Map("tags")["env"] != "prod" || a.Map("name") != nil {
		t.Error("Map()")
	}
}

func TestTags(t *testing.T) {
	c := New("x", "k", "", "", Attributes{"tags": map[string]any{
		"env":     "prod",
		"version": 2,
		"ratio":   1.5,
		"public":  true,
		"empty":   nil,
	}})
	tags := c.Tags()
	want := map[string]string{"env": "prod", "version": "2", "ratio": "1.5", "public": "true"}
	if len(tags) != len(want) {
		t.Errorf("Tags() = %v, want %v", tags, want)
	}
	for k, v := range want {
		if tags[k] != v {
			t.Errorf("Tags()[%q] = %q, want %q", k, tags[k], v)
		}
	}

	typed := New("y", "k", "", "", Attributes{"tags": map[string]string{"owner": "team-a"}})
	if typed.Tags()["owner"] != "team-a" {
		t.Errorf("Tags() typed = %v", typed.Tags())
	}

	if New("z", "k", "", "", nil).Tags() != nil {
		t.Error("Tags() without tags should be nil")
	}
}

func TestWalk(t *testing.T) {
	rg := New("rg", "group", "", "", nil)
	sa := New("sa", "account", "", "", nil)
	c1 := New("c1", "container", "", "", nil)
	c2 := New("c2", "container", "", "", nil)
	rg.Add(sa)
	sa.Add(c1)
	rg.Add(c2)

	var names []string
	var depths []int
	rg.Walk(func(c *Component, depth int) bool {
		names = append(names, c.Name)
		depths = append(depths, depth)
		return true
	})
	want := []string{"rg", "sa", "c1", "c2"}
	wantDepth := []int{0, 1, 2, 1}
	for i := range want {
		if names[i] != want[i] || depths[i] != wantDepth[i] {
			t.Fatalf("Walk() = %v %v, want %v %v", names, depths, want, wantDepth)
		}
	}

	count := 0
	completed := rg.Walk(func(*Component, int) bool {
		count++
		return count < 2
	})
	if completed || count != 2 {
		t.Errorf("Walk() early stop: completed=%v count=%d", completed, count)
	}
}
