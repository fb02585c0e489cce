package azure

import (
	"fmt"
	"strings"

	"github.com/matzehuels/drawtf/pkg/component"
)

// Metadata builders. Each returns "" when its attributes are absent.

func attr(key string) func(component.Attributes) string {
	return func(a component.Attributes) string { return a.String(key) }
}

func prefixed(prefix, key string) func(component.Attributes) string {
	return func(a component.Attributes) string {
		if v := a.String(key); v != "" {
			return prefix + v
		}
		return ""
	}
}

// join renders the non-empty values of keys separated by " / ".
func join(keys ...string) func(component.Attributes) string {
	return func(a component.Attributes) string {
		var parts []string
		for _, k := range keys {
			if v := a.String(k); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, " / ")
	}
}

// list renders the first non-empty string list among keys, or a scalar
// string fallback.
func list(keys ...string) func(component.Attributes) string {
	return func(a component.Attributes) string {
		for _, k := range keys {
			if vs := a.Strings(k); len(vs) > 0 {
				return strings.Join(vs, ", ")
			}
			if v := a.String(k); v != "" {
				return v
			}
		}
		return ""
	}
}

// firstBlock reads field from a nested block, which terraform state encodes
// either as an object or as a single-element list of objects.
func firstBlock(key, field string) func(component.Attributes) string {
	return func(a component.Attributes) string {
		return blockField(a, key, field)
	}
}

func blockField(a component.Attributes, key, field string) string {
	var m map[string]any
	switch v := a[key].(type) {
	case map[string]any:
		m = v
	case []any:
		if len(v) > 0 {
			m, _ = v[0].(map[string]any)
		}
	}
	s, _ := m[field].(string)
	return s
}

func appServicePlanSku(a component.Attributes) string {
	tier, size := blockField(a, "sku", "tier"), blockField(a, "sku", "size")
	switch {
	case tier != "" && size != "":
		return tier + " / " + size
	case tier != "":
		return tier
	}
	return size
}

func hostNames(a component.Attributes) string {
	var names []string
	for _, block := range []string{"gateway", "developer_portal", "management", "portal", "scm"} {
		if h := blockField(a, block, "host_name"); h != "" {
			names = append(names, h)
		}
	}
	return strings.Join(names, "\n")
}

func ruleCount(a component.Attributes) string {
	rules, ok := a["security_rule"].([]any)
	if !ok || len(rules) == 0 {
		return ""
	}
	if len(rules) == 1 {
		return "1 rule"
	}
	return fmt.Sprintf("%d rules", len(rules))
}

// Ownership matchers.

// byName matches when the child's key attribute equals the owner's name.
func byName(key string) func(owner, child *component.Component) bool {
	return func(owner, child *component.Component) bool {
		return child.Attributes.String(key) == owner.Name
	}
}

// byID matches when the child's key attribute is an ARM id ending in
// "/<segment>/<owner name>". Azure ids are case-insensitive.
func byID(key, segment string) func(owner, child *component.Component) bool {
	return func(owner, child *component.Component) bool {
		return idNames(child.Attributes.String(key), segment, owner.Name)
	}
}

func byNameOrID(nameKey, idKey, segment string) func(owner, child *component.Component) bool {
	name, id := byName(nameKey), byID(idKey, segment)
	return func(owner, child *component.Component) bool {
		return name(owner, child) || id(owner, child)
	}
}

// cosmosDatabase matches containers to their database within the same
// account.
func cosmosDatabase(owner, child *component.Component) bool {
	return child.Attributes.String("database_name") == owner.Name &&
		child.Attributes.String("account_name") == owner.Attributes.String("account_name")
}

func idNames(id, segment, name string) bool {
	if id == "" || name == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(id), strings.ToLower("/"+segment+"/"+name))
}
