package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "murphy-scenario.json"

// Schema returns the JSON Schema that scenario documents must satisfy.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// SchemaError lists every violation found in a document.
type SchemaError struct {
	Violations []Violation
}

// Violation is one schema failure, located by JSON pointer.
type Violation struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s: %s", ErrSchemaViolation, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is(err, ErrSchemaViolation) hold.
func (e *SchemaError) Unwrap() error { return ErrSchemaViolation }

func (v Violation) String() string {
	if v.Location == "" {
		return v.Message
	}
	return v.Location + ": " + v.Message
}

// validateValue checks a decoded JSON value against the schema.
func validateValue(v any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("scenario schema: %w", err)
	}
	err = schema.Validate(v)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	out := &SchemaError{}
	collectViolations(verr, out)
	return out
}

// collectViolations keeps the leaves of the error tree; inner nodes only
// summarise their causes.
func collectViolations(err *jsonschema.ValidationError, out *SchemaError) {
	if len(err.Causes) == 0 {
		out.Violations = append(out.Violations, Violation{
			Location: err.InstanceLocation,
			Message:  err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectViolations(cause, out)
	}
}
