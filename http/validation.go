package http

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"occupancy/ml"
)

// requestValidator checks JSON prediction requests against a JSON Schema
// derived from the loaded feature schema. Category membership is left to the
// feature builder so unknown values surface as their own error.
type requestValidator struct {
	schema *gojsonschema.Schema
}

func newRequestValidator(features *ml.FeatureSchema) (*requestValidator, error) {
	properties := map[string]interface{}{
		"numeric": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": map[string]interface{}{"type": "number"},
		},
		"expected_people": map[string]interface{}{
			"type": []string{"string", "number"},
		},
	}
	required := []interface{}{}
	for _, spec := range ml.KnownGroups() {
		properties[spec.Name] = map[string]interface{}{"type": "string"}
		if _, ok := features.Group(spec.Name); ok {
			required = append(required, spec.Name)
		}
	}

	definition := map[string]interface{}{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(definition))
	if err != nil {
		return nil, fmt.Errorf("compile request schema: %w", err)
	}
	return &requestValidator{schema: schema}, nil
}

// Validate returns the schema violations for body, or nil.
func (v *requestValidator) Validate(body []byte) ([]string, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	violations := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		violations[i] = desc.String()
	}
	return violations, nil
}

type validationError struct {
	violations []string
}

func (e *validationError) Error() string {
	return "invalid request: " + strings.Join(e.violations, "; ")
}
