// internal/models/vehicle.go
package models

type SpeedUnit string

const (
	SpeedUnitKph SpeedUnit = "kph"
	SpeedUnitMs  SpeedUnit = "m/s"
)

type ForceUnit string

const (
	ForceUnitNewton ForceUnit = "N"
	ForceUnitKgf    ForceUnit = "kgf"
)

// VehicleInput is what a user types in: speed and force in their chosen units,
// wheel diameter in centimetres and an optional system voltage.
type VehicleInput struct {
	Speed           float64   `json:"speed"`
	SpeedUnit       SpeedUnit `json:"speedUnit"`
	Force           float64   `json:"force"`
	ForceUnit       ForceUnit `json:"forceUnit"`
	WheelDiameterCm float64   `json:"wheelDiameterCm"`
	SystemVoltage   *float64  `json:"systemVoltage,omitempty"`
	MaxResults      int       `json:"maxResults,omitempty"`
}

// VehicleSpec is the SI form of a VehicleInput.
type VehicleSpec struct {
	SpeedMs        float64 `json:"speedMs"`
	ForceN         float64 `json:"forceN"`
	WheelDiameterM float64 `json:"wheelDiameterM"`
}

// MotorRequirements is what the motor has to deliver at the wheel.
type MotorRequirements struct {
	RPM                 float64 `json:"rpm"`
	TorqueNm            float64 `json:"torqueNm"`
	PowerW              float64 `json:"powerW"`
	AngularVelocityRadS float64 `json:"angularVelocityRadS"`
	TorqueKgfCm         float64 `json:"torqueKgfCm"`
	PowerHP             float64 `json:"powerHp"`
}
