// internal/workers/motors/find-suitable-motors/models.go
package findsuitablemotors

import "motor-picker/internal/models"

// Input uses the same variable names the calculate-motor-requirements worker
// writes, so the two tasks chain without a mapping in the process model.
type Input struct {
	RequiredRPM      float64  `json:"requiredRpm"`
	RequiredTorqueNm float64  `json:"requiredTorqueNm"`
	MaxResults       int      `json:"maxResults,omitempty"`
	Voltage          *float64 `json:"voltage,omitempty"`
}

func (in *Input) requirement() models.Requirement {
	return models.Requirement{
		RequiredRPM:      in.RequiredRPM,
		RequiredTorqueNm: in.RequiredTorqueNm,
		MaxResults:       in.MaxResults,
		FilterVoltage:    in.Voltage,
	}
}

type Output struct {
	Matches        []models.MatchResult `json:"matches"`
	MatchCount     int                  `json:"matchCount"`
	CatalogVersion string               `json:"catalogVersion"`
}
