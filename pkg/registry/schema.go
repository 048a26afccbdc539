// pkg/registry/schema.go
package registry

type OperationRegistry struct {
	Version     string      `json:"version"`
	LastUpdated string      `json:"lastUpdated"`
	Operations  []Operation `json:"operations"`
}

// Operation describes one externally callable unit: an HTTP route, a
// workflow task type, or both.
type Operation struct {
	ID           string                 `json:"id"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	Category     string                 `json:"category"`
	Version      string                 `json:"version"`
	TaskType     string                 `json:"taskType,omitempty"`
	HTTPMethod   string                 `json:"httpMethod,omitempty"`
	HTTPRoute    string                 `json:"httpRoute,omitempty"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	ErrorCodes   []string               `json:"errorCodes"`
	Timeout      string                 `json:"timeout"`
	Retries      int                    `json:"retries"`
	Tags         []string               `json:"tags"`
}
