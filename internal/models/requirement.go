// internal/models/requirement.go
package models

// DefaultMaxResults is the suggestion count used when a caller does not set one.
const DefaultMaxResults = 15

// Requirement is one matching query. FilterVoltage is optional; when set only
// entries with exactly that nominal voltage are considered.
type Requirement struct {
	RequiredRPM      float64  `json:"requiredRpm"`
	RequiredTorqueNm float64  `json:"requiredTorqueNm"`
	MaxResults       int      `json:"maxResults,omitempty"`
	FilterVoltage    *float64 `json:"voltage,omitempty"`
}

// Limit returns MaxResults, or DefaultMaxResults when unset.
func (r Requirement) Limit() int {
	if r.MaxResults == 0 {
		return DefaultMaxResults
	}
	return r.MaxResults
}

// Float64 returns a pointer to v. Handy for optional voltage filters.
func Float64(v float64) *float64 {
	return &v
}
