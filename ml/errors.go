package ml

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaLoad marks a schema or model artifact that cannot be served.
	ErrSchemaLoad = errors.New("schema load failed")
	// ErrUnknownCategoryValue marks a categorical selection missing from the schema.
	ErrUnknownCategoryValue = errors.New("unknown category value")
	// ErrClassification marks a failed or malformed classifier call.
	ErrClassification = errors.New("classification failed")
)

// SchemaLoadError is returned when the feature schema or its groups cannot be derived.
// It is fatal at startup.
type SchemaLoadError struct {
	Source string
	Reason string
	Err    error
}

func (e *SchemaLoadError) Error() string {
	msg := "schema load failed"
	if e.Source != "" {
		msg += " (" + e.Source + ")"
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaLoadError) Unwrap() error { return e.Err }

func (e *SchemaLoadError) Is(target error) bool { return target == ErrSchemaLoad }

// UnknownCategoryError names the group and the submitted value that has no schema feature.
type UnknownCategoryError struct {
	Group string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("unknown category value: no %s selected", e.Group)
	}
	return fmt.Sprintf("unknown category value: %s %q is not in the feature schema", e.Group, e.Value)
}

func (e *UnknownCategoryError) Is(target error) bool { return target == ErrUnknownCategoryValue }

// ClassificationError wraps a classifier failure or a malformed model output.
type ClassificationError struct {
	Reason string
	Err    error
}

func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("classification failed: %s: %v", e.Reason, e.Err)
	}
	return "classification failed: " + e.Reason
}

func (e *ClassificationError) Unwrap() error { return e.Err }

func (e *ClassificationError) Is(target error) bool { return target == ErrClassification }

func schemaErr(source, reason string, err error) error {
	return &SchemaLoadError{Source: source, Reason: reason, Err: err}
}

func classificationErr(reason string, err error) error {
	return &ClassificationError{Reason: reason, Err: err}
}
