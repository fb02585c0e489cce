package diagram

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/drawtf/pkg/component"
)

// Tags is a merged tag set that remembers first-seen key order.
type Tags struct {
	keys   []string
	values map[string]string
}

// MergeTags unions the "tags" attribute of every component. On a key
// collision the later component's value wins, while the key keeps the
// position where it was first seen.
func MergeTags(cs []*component.Component) Tags {
	t := Tags{values: make(map[string]string)}
	for _, c := range cs {
		tags := c.Tags()
		if len(tags) == 0 {
			continue
		}
		// Attribute maps are unordered; sort new keys so output is stable.
		for _, k := range slices.Sorted(maps.Keys(tags)) {
			if _, seen := t.values[k]; !seen {
				t.keys = append(t.keys, k)
			}
			t.values[k] = tags[k]
		}
	}
	return t
}

// Len returns the number of distinct tag keys.
func (t Tags) Len() int { return len(t.keys) }

// Get returns the merged value of key.
func (t Tags) Get(key string) (string, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Keys returns tag keys in first-seen order.
func (t Tags) Keys() []string { return append([]string(nil), t.keys...) }

// Label formats the tag set as a left-justified Graphviz label, or "" for an
// empty set.
func (t Tags) Label() string {
	if t.Len() == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`Tags: \l`)
	for _, k := range t.keys {
		b.WriteString(k + ": " + t.values[k] + ` \l`)
	}
	return b.String()
}
