// internal/models/match.go
package models

// MatchResult is a scored catalog entry that met the basic requirements.
type MatchResult struct {
	Motor             MotorSpec `json:"motor"`
	RPMMatch          float64   `json:"rpmMatch"`
	TorqueMatch       float64   `json:"torqueMatch"`
	OverallScore      float64   `json:"overallScore"`
	RPMUtilization    float64   `json:"rpmUtilization"`
	TorqueUtilization float64   `json:"torqueUtilization"`
}
