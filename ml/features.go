package ml

import (
	"sort"
)

// RawInput is what a user submitted: numeric attributes by feature name and
// one selected member per categorical group.
type RawInput struct {
	Numeric    map[string]float64
	Categories map[string]string
}

// FeatureVector holds one value per schema feature, in schema order.
type FeatureVector []float64

// HotCount returns how many entries equal 1.0 at one-hot positions of the schema.
func (v FeatureVector) HotCount(schema *FeatureSchema) int {
	n := 0
	for i, value := range v {
		if schema.IsOneHot(i) && value == 1 {
			n++
		}
	}
	return n
}

// BuildFeatureVector maps raw input onto the schema. Features the input does
// not mention stay 0. Numeric names outside the schema are ignored, and so are
// numeric values aimed at one-hot columns. The first group whose selection has
// no schema column fails the build with an *UnknownCategoryError, as does a
// non-empty selection for a group the schema does not encode.
func BuildFeatureVector(schema *FeatureSchema, input RawInput) (FeatureVector, error) {
	vector := make(FeatureVector, schema.Len())

	for name, value := range input.Numeric {
		idx, ok := schema.Index(name)
		if !ok || schema.IsOneHot(idx) {
			continue
		}
		vector[idx] = value
	}

	for _, group := range schema.groups {
		value := input.Categories[group.Name]
		idx, ok := group.Position(value)
		if !ok {
			return nil, &UnknownCategoryError{Group: group.Name, Value: value}
		}
		vector[idx] = 1
	}

	if extra := unknownGroups(schema, input.Categories); len(extra) > 0 {
		return nil, &UnknownCategoryError{Group: extra[0], Value: input.Categories[extra[0]]}
	}

	return vector, nil
}

func unknownGroups(schema *FeatureSchema, categories map[string]string) []string {
	var extra []string
	for name, value := range categories {
		if value == "" {
			continue
		}
		if _, ok := schema.Group(name); !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return extra
}
