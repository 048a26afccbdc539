// internal/workers/motors/calculate-requirements/models.go
package calculaterequirements

import "motor-picker/internal/models"

type Input = models.VehicleInput

// Output carries the full calculation plus the flat requiredRpm,
// requiredTorqueNm, voltage and maxResults variables read by
// find-suitable-motors.
type Output struct {
	Requirements     models.MotorRequirements `json:"requirements"`
	VehicleSpec      models.VehicleSpec       `json:"vehicleSpec"`
	RequiredRPM      float64                  `json:"requiredRpm"`
	RequiredTorqueNm float64                  `json:"requiredTorqueNm"`
	Voltage          *float64                 `json:"voltage,omitempty"`
	MaxResults       int                      `json:"maxResults,omitempty"`
}
