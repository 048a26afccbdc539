package physics

import (
	"math"
	"testing"

	apperrors "motor-picker/internal/common/errors"
	"motor-picker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitConversions(t *testing.T) {
	assert.InDelta(t, 2.7778, KphToMs(10), 1e-4)
	assert.InDelta(t, 36.0, MsToKph(10), 1e-9)
	assert.InDelta(t, 9.80665, KgfToN(1), 1e-9)
	assert.InDelta(t, 1.0, NToKgf(9.80665), 1e-9)
	assert.InDelta(t, 0.0980665, KgfcmToNm(1), 1e-12)
	assert.InDelta(t, 10.0, NmToKgfcm(KgfcmToNm(10)), 1e-9)
	assert.InDelta(t, 0.70307, OzInToKgfcm(10), 1e-9)
	assert.InDelta(t, 2*math.Pi, RPMToRadS(60), 1e-12)
	assert.InDelta(t, 1.0, WattsToHP(745.7), 1e-12)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    models.VehicleInput
		expected models.VehicleSpec
	}{
		{
			name:     "kph and kgf",
			input:    models.VehicleInput{Speed: 36, SpeedUnit: models.SpeedUnitKph, Force: 2, ForceUnit: models.ForceUnitKgf, WheelDiameterCm: 30},
			expected: models.VehicleSpec{SpeedMs: 10, ForceN: 19.6133, WheelDiameterM: 0.3},
		},
		{
			name:     "SI units pass through",
			input:    models.VehicleInput{Speed: 1.5, SpeedUnit: models.SpeedUnitMs, Force: 20, ForceUnit: models.ForceUnitNewton, WheelDiameterCm: 6},
			expected: models.VehicleSpec{SpeedMs: 1.5, ForceN: 20, WheelDiameterM: 0.06},
		},
		{
			name:     "empty units default to kph and kgf",
			input:    models.VehicleInput{Speed: 3.6, Force: 1, WheelDiameterCm: 10},
			expected: models.VehicleSpec{SpeedMs: 1, ForceN: 9.80665, WheelDiameterM: 0.1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected.SpeedMs, spec.SpeedMs, 1e-4)
			assert.InDelta(t, tt.expected.ForceN, spec.ForceN, 1e-4)
			assert.InDelta(t, tt.expected.WheelDiameterM, spec.WheelDiameterM, 1e-9)
		})
	}
}

func TestNormalize_UnknownUnits(t *testing.T) {
	_, err := Normalize(models.VehicleInput{Speed: 1, SpeedUnit: "mph", Force: 1, WheelDiameterCm: 1})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidVehicleSpec))

	_, err = Normalize(models.VehicleInput{Speed: 1, Force: 1, ForceUnit: "lbf", WheelDiameterCm: 1})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidVehicleSpec))
}

func TestCalculateMotorRequirements_DefaultFormValues(t *testing.T) {
	// 10 kph, 1 kgf, 30 cm wheel
	reqs, err := FromVehicleInput(models.VehicleInput{
		Speed: 10, SpeedUnit: models.SpeedUnitKph,
		Force: 1, ForceUnit: models.ForceUnitKgf,
		WheelDiameterCm: 30,
	})
	require.NoError(t, err)

	assert.InDelta(t, 176.8388, reqs.RPM, 1e-3)
	assert.InDelta(t, 1.4710, reqs.TorqueNm, 1e-4)
	assert.InDelta(t, 18.5185, reqs.AngularVelocityRadS, 1e-4)
	assert.InDelta(t, 27.2407, reqs.PowerW, 1e-3)
	assert.InDelta(t, 15.0, reqs.TorqueKgfCm, 1e-9)
	assert.InDelta(t, 27.2407/745.7, reqs.PowerHP, 1e-6)
}

func TestCalculateMotorRequirements_PowerIsTorqueTimesOmega(t *testing.T) {
	reqs, err := CalculateMotorRequirements(models.VehicleSpec{SpeedMs: 0.5, ForceN: 3, WheelDiameterM: 0.08})
	require.NoError(t, err)
	assert.InDelta(t, reqs.TorqueNm*RPMToRadS(reqs.RPM), reqs.PowerW, 1e-9)
	// power at the wheel equals force times linear speed
	assert.InDelta(t, 1.5, reqs.PowerW, 1e-9)
}

func TestCalculateMotorRequirements_RejectsNonPositive(t *testing.T) {
	tests := []struct {
		name string
		spec models.VehicleSpec
	}{
		{"zero speed", models.VehicleSpec{SpeedMs: 0, ForceN: 1, WheelDiameterM: 0.1}},
		{"negative force", models.VehicleSpec{SpeedMs: 1, ForceN: -1, WheelDiameterM: 0.1}},
		{"zero diameter", models.VehicleSpec{SpeedMs: 1, ForceN: 1, WheelDiameterM: 0}},
		{"NaN speed", models.VehicleSpec{SpeedMs: math.NaN(), ForceN: 1, WheelDiameterM: 0.1}},
		{"infinite force", models.VehicleSpec{SpeedMs: 1, ForceN: math.Inf(1), WheelDiameterM: 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateMotorRequirements(tt.spec)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidVehicleSpec))
		})
	}
}
