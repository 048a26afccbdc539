// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	apperrors "motor-picker/internal/common/errors"
	"motor-picker/pkg/registry"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator checks operation inputs against the schemas in the operation
// registry. Schemas are compiled once; a Validator is safe for concurrent use.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

func NewValidator(reg *registry.OperationRegistry) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(reg.Operations))}
	for _, op := range reg.Operations {
		if len(op.InputSchema) == 0 {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(op.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile input schema for %s: %w", op.ID, err)
		}
		v.schemas[op.ID] = schema
	}
	return v, nil
}

// ValidateJSON validates a raw request body. Bodies that are not JSON give
// PARSE_ERROR, schema violations INVALID_REQUEST.
func (v *Validator) ValidateJSON(operationID string, body []byte) error {
	return v.validate(operationID, gojsonschema.NewBytesLoader(body))
}

// ValidateInput validates already-decoded variables, e.g. a job's variables.
func (v *Validator) ValidateInput(operationID string, input map[string]interface{}) error {
	if input == nil {
		input = map[string]interface{}{}
	}
	return v.validate(operationID, gojsonschema.NewGoLoader(input))
}

func (v *Validator) validate(operationID string, doc gojsonschema.JSONLoader) error {
	schema, ok := v.schemas[operationID]
	if !ok {
		return nil
	}

	result, err := schema.Validate(doc)
	if err != nil {
		return apperrors.NewParseError(err)
	}

	res := toResult(result)
	if res.Valid {
		return nil
	}
	return ToError(res)
}

// ToError flattens a failed result into an INVALID_REQUEST error. The
// individual violations ride along as metadata.
func ToError(res *ValidationResult) *apperrors.StandardError {
	msgs := make([]string, len(res.Errors))
	for i, e := range res.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return apperrors.NewInvalidRequestError(strings.Join(msgs, "; ")).
		WithMetadata("violations", res.Errors)
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	res := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				field = prop
			}
		}
		res.Errors = append(res.Errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return res
}
