package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Group names of the categorical inputs recognised in a feature schema.
const (
	GroupState   = "state"
	GroupClimate = "climate"
	GroupIECC    = "iecc"
)

// GroupSpec ties a categorical input to the feature-name prefix its one-hot columns share.
type GroupSpec struct {
	Name   string
	Prefix string
	Label  string
}

// KnownGroups lists the categorical inputs in the order they are encoded.
func KnownGroups() []GroupSpec {
	return []GroupSpec{
		{Name: GroupState, Prefix: "state_postal_", Label: "State"},
		{Name: GroupClimate, Prefix: "BA_climate_", Label: "Building America Climate Zone"},
		{Name: GroupIECC, Prefix: "IECC_climate_code_", Label: "IECC Climate Code"},
	}
}

// CategoricalGroup is the set of schema positions encoding one categorical input.
type CategoricalGroup struct {
	Name   string
	Prefix string
	Label  string

	members []string
	index   map[string]int
}

// Members returns the valid values in schema order.
func (g *CategoricalGroup) Members() []string {
	return append([]string(nil), g.members...)
}

// Position returns the schema index of the one-hot column for value.
func (g *CategoricalGroup) Position(value string) (int, bool) {
	idx, ok := g.index[value]
	return idx, ok
}

// Contains reports whether value is a member of the group.
func (g *CategoricalGroup) Contains(value string) bool {
	_, ok := g.index[value]
	return ok
}

// FeatureSchema is the ordered feature list the model was fit on. It is immutable once loaded.
type FeatureSchema struct {
	names  []string
	index  map[string]int
	groups []*CategoricalGroup
	onehot map[int]bool
}

// LoadSchema validates the feature order and derives the categorical groups from it.
// A group is present only when at least one feature carries its prefix.
func LoadSchema(names []string) (*FeatureSchema, error) {
	return loadSchema("", names)
}

// LoadSchemaFile reads a JSON array of feature names.
func LoadSchemaFile(path string) (*FeatureSchema, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, schemaErr(path, "read feature order", err)
	}
	var names []string
	if err := json.Unmarshal(payload, &names); err != nil {
		return nil, schemaErr(path, "decode feature order", err)
	}
	return loadSchema(path, names)
}

func loadSchema(source string, names []string) (*FeatureSchema, error) {
	if len(names) == 0 {
		return nil, schemaErr(source, "feature order is empty", nil)
	}

	s := &FeatureSchema{
		names:  append([]string(nil), names...),
		index:  make(map[string]int, len(names)),
		onehot: make(map[int]bool),
	}
	for i, name := range s.names {
		if strings.TrimSpace(name) == "" {
			return nil, schemaErr(source, fmt.Sprintf("empty feature name at position %d", i), nil)
		}
		if _, dup := s.index[name]; dup {
			return nil, schemaErr(source, fmt.Sprintf("duplicate feature %q", name), nil)
		}
		s.index[name] = i
	}

	for _, spec := range KnownGroups() {
		group := &CategoricalGroup{
			Name:   spec.Name,
			Prefix: spec.Prefix,
			Label:  spec.Label,
			index:  make(map[string]int),
		}
		for i, name := range s.names {
			if !strings.HasPrefix(name, spec.Prefix) {
				continue
			}
			member := strings.TrimPrefix(name, spec.Prefix)
			if member == "" {
				return nil, schemaErr(source, fmt.Sprintf("feature %q has no %s value", name, spec.Name), nil)
			}
			group.members = append(group.members, member)
			group.index[member] = i
			s.onehot[i] = true
		}
		if len(group.members) > 0 {
			s.groups = append(s.groups, group)
		}
	}

	return s, nil
}

// RequireGroups fails when any of the named categorical groups has no features in the schema.
func (s *FeatureSchema) RequireGroups(names ...string) error {
	for _, name := range names {
		if _, ok := s.Group(name); ok {
			continue
		}
		prefix := ""
		for _, spec := range KnownGroups() {
			if spec.Name == name {
				prefix = spec.Prefix
			}
		}
		if prefix == "" {
			return schemaErr("", fmt.Sprintf("unknown categorical group %q", name), nil)
		}
		return schemaErr("", fmt.Sprintf("no features for group %s (prefix %s)", name, prefix), nil)
	}
	return nil
}

// Len returns the number of features.
func (s *FeatureSchema) Len() int { return len(s.names) }

// Names returns a copy of the feature order.
func (s *FeatureSchema) Names() []string {
	return append([]string(nil), s.names...)
}

// Index returns the position of a feature.
func (s *FeatureSchema) Index(name string) (int, bool) {
	idx, ok := s.index[name]
	return idx, ok
}

// Groups returns the categorical groups in encoding order.
func (s *FeatureSchema) Groups() []*CategoricalGroup {
	return append([]*CategoricalGroup(nil), s.groups...)
}

// Group looks up a categorical group by name.
func (s *FeatureSchema) Group(name string) (*CategoricalGroup, bool) {
	for _, g := range s.groups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// IsOneHot reports whether the position belongs to a categorical group.
func (s *FeatureSchema) IsOneHot(idx int) bool {
	return s.onehot[idx]
}
