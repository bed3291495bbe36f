package tags

import (
	"sort"
	"strings"

	"github.com/paulmach/osm"
)

// Tags is the key/value attribute set of an OSM element.
// A nil Tags behaves like an empty set.
type Tags map[string]string

// FromOSM converts paulmach/osm tags to a Tags map.
// Later duplicates of a key win, matching how the element would decode from JSON.
func FromOSM(ts osm.Tags) Tags {
	if len(ts) == 0 {
		return nil
	}
	m := make(Tags, len(ts))
	for _, tag := range ts {
		m[tag.Key] = tag.Value
	}
	return m
}

// ToOSM converts the map back to osm.Tags, sorted by key
func (t Tags) ToOSM() osm.Tags {
	if len(t) == 0 {
		return nil
	}
	ts := make(osm.Tags, 0, len(t))
	for _, k := range t.Keys() {
		ts = append(ts, osm.Tag{Key: k, Value: t[k]})
	}
	return ts
}

// Get returns the value for key and whether the key is present
func (t Tags) Get(key string) (string, bool) {
	v, ok := t[key]
	return v, ok
}

// Value returns the value for key, or "" when absent
func (t Tags) Value(key string) string {
	return t[key]
}

// Has reports whether key is present, regardless of its value
func (t Tags) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// HasAny reports whether any of the keys is present
func (t Tags) HasAny(keys ...string) bool {
	for _, k := range keys {
		if _, ok := t[k]; ok {
			return true
		}
	}
	return false
}

// Empty reports whether the set holds no tags
func (t Tags) Empty() bool {
	return len(t) == 0
}

// Keys returns the keys in sorted order
func (t Tags) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the tags as "k=v,k=v" in key order, for diagnostics
func (t Tags) String() string {
	var b strings.Builder
	for i, k := range t.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(t[k])
	}
	return b.String()
}
