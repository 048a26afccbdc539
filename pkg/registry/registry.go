// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Operation ids.
const (
	OpCalculateRequirements = "calculate-motor-requirements"
	OpFindSuitableMotors    = "find-suitable-motors"
	OpSuggestMotors         = "suggest-motors"
	OpRenderReport          = "render-suggestion-report"
)

//go:embed operations.json
var embedded []byte

var (
	defaultOnce sync.Once
	defaultReg  *OperationRegistry
	defaultErr  error
)

// Default returns the registry compiled into the binary.
func Default() (*OperationRegistry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Parse(embedded)
	})
	return defaultReg, defaultErr
}

func LoadRegistry(path string) (*OperationRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a registry document and rejects duplicate ids or task types.
func Parse(data []byte) (*OperationRegistry, error) {
	var reg OperationRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, op := range reg.Operations {
		if op.ID == "" {
			return nil, fmt.Errorf("registry operation without id")
		}
		if ids[op.ID] {
			return nil, fmt.Errorf("duplicate operation id %q", op.ID)
		}
		ids[op.ID] = true
		if op.TaskType != "" {
			if taskTypes[op.TaskType] {
				return nil, fmt.Errorf("duplicate task type %q", op.TaskType)
			}
			taskTypes[op.TaskType] = true
		}
	}
	return &reg, nil
}

func (r *OperationRegistry) Get(id string) (Operation, bool) {
	for _, op := range r.Operations {
		if op.ID == id {
			return op, true
		}
	}
	return Operation{}, false
}

// ByTaskType finds the operation a workflow worker serves.
func (r *OperationRegistry) ByTaskType(taskType string) (Operation, bool) {
	for _, op := range r.Operations {
		if op.TaskType != "" && op.TaskType == taskType {
			return op, true
		}
	}
	return Operation{}, false
}

// TaskTypes lists the operations exposed as workflow workers.
func (r *OperationRegistry) TaskTypes() []string {
	var out []string
	for _, op := range r.Operations {
		if op.TaskType != "" {
			out = append(out, op.TaskType)
		}
	}
	return out
}
