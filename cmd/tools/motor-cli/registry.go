// cmd/tools/motor-cli/registry.go
package main

import (
	"fmt"
	"net/http"

	"motor-picker/internal/common/validation"
	"motor-picker/pkg/registry"
)

func validateRegistry(reg *registry.OperationRegistry) error {
	if len(reg.Operations) == 0 {
		return fmt.Errorf("registry contains no operations")
	}

	for _, op := range reg.Operations {
		if op.DisplayName == "" {
			return fmt.Errorf("operation %s missing required field: displayName", op.ID)
		}
		if op.Category == "" {
			return fmt.Errorf("operation %s missing required field: category", op.ID)
		}
		if op.TaskType == "" && op.HTTPRoute == "" {
			return fmt.Errorf("operation %s is neither a task type nor an HTTP route", op.ID)
		}
		if op.HTTPRoute != "" {
			switch op.HTTPMethod {
			case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
			default:
				return fmt.Errorf("operation %s has unsupported httpMethod %q", op.ID, op.HTTPMethod)
			}
		}
		if len(op.ErrorCodes) == 0 {
			return fmt.Errorf("operation %s declares no error codes", op.ID)
		}
	}

	if _, err := validation.NewValidator(reg); err != nil {
		return err
	}
	return nil
}
