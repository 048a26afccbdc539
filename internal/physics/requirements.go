// internal/physics/requirements.go
package physics

import (
	"fmt"
	"math"

	apperrors "motor-picker/internal/common/errors"
	"motor-picker/internal/models"
)

// Normalize converts user-facing units into SI. Empty units default to kph and kgf,
// matching the calculator's initial form state.
func Normalize(in models.VehicleInput) (models.VehicleSpec, error) {
	var spec models.VehicleSpec

	switch in.SpeedUnit {
	case models.SpeedUnitKph, "":
		spec.SpeedMs = KphToMs(in.Speed)
	case models.SpeedUnitMs:
		spec.SpeedMs = in.Speed
	default:
		return spec, apperrors.NewInvalidVehicleSpecError(fmt.Sprintf("unknown speed unit %q", in.SpeedUnit))
	}

	switch in.ForceUnit {
	case models.ForceUnitKgf, "":
		spec.ForceN = KgfToN(in.Force)
	case models.ForceUnitNewton:
		spec.ForceN = in.Force
	default:
		return spec, apperrors.NewInvalidVehicleSpecError(fmt.Sprintf("unknown force unit %q", in.ForceUnit))
	}

	spec.WheelDiameterM = in.WheelDiameterCm / 100
	return spec, nil
}

// CalculateMotorRequirements derives wheel RPM, torque and mechanical power:
//
//	rpm    = speed / (π · diameter) · 60
//	torque = force · diameter / 2
//	power  = torque · rpm · 2π / 60
func CalculateMotorRequirements(spec models.VehicleSpec) (models.MotorRequirements, error) {
	if err := checkPositive("speed", spec.SpeedMs); err != nil {
		return models.MotorRequirements{}, err
	}
	if err := checkPositive("force", spec.ForceN); err != nil {
		return models.MotorRequirements{}, err
	}
	if err := checkPositive("wheel diameter", spec.WheelDiameterM); err != nil {
		return models.MotorRequirements{}, err
	}

	circumference := math.Pi * spec.WheelDiameterM
	rpm := spec.SpeedMs / circumference * 60
	torque := spec.ForceN * spec.WheelDiameterM / 2
	omega := RPMToRadS(rpm)
	power := torque * omega

	return models.MotorRequirements{
		RPM:                 rpm,
		TorqueNm:            torque,
		PowerW:              power,
		AngularVelocityRadS: omega,
		TorqueKgfCm:         NmToKgfcm(torque),
		PowerHP:             WattsToHP(power),
	}, nil
}

// FromVehicleInput runs Normalize and CalculateMotorRequirements.
func FromVehicleInput(in models.VehicleInput) (models.MotorRequirements, error) {
	spec, err := Normalize(in)
	if err != nil {
		return models.MotorRequirements{}, err
	}
	return CalculateMotorRequirements(spec)
}

func checkPositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return apperrors.NewInvalidVehicleSpecError(fmt.Sprintf("%s must be a positive finite number, got %v", name, v))
	}
	return nil
}
