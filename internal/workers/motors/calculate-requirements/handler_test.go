// internal/workers/motors/calculate-requirements/handler_test.go
package calculaterequirements

import (
	"context"
	"encoding/json"
	"testing"

	apperrors "motor-picker/internal/common/errors"
	"motor-picker/internal/common/logger"
	"motor-picker/internal/common/validation"
	"motor-picker/internal/models"
	"motor-picker/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	v, err := validation.NewValidator(reg)
	require.NoError(t, err)
	return NewHandler(LoadConfig(), v, logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		expectedError  apperrors.ErrorCode
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name: "kph and kgf",
			input: &Input{
				Speed: 5, SpeedUnit: models.SpeedUnitKph,
				Force: 2, ForceUnit: models.ForceUnitKgf,
				WheelDiameterCm: 6.5,
			},
			validateOutput: func(t *testing.T, output *Output) {
				// 5 km/h on a 6.5 cm wheel is about 408 rpm.
				assert.InDelta(t, 408.1, output.Requirements.RPM, 0.5)
				// 2 kgf at a 3.25 cm radius.
				assert.InDelta(t, 0.6374, output.Requirements.TorqueNm, 0.001)
				assert.Equal(t, output.Requirements.RPM, output.RequiredRPM)
				assert.Equal(t, output.Requirements.TorqueNm, output.RequiredTorqueNm)
				assert.InDelta(t, 0.065, output.VehicleSpec.WheelDiameterM, 1e-9)
				assert.Nil(t, output.Voltage)
			},
		},
		{
			name: "SI units carry voltage and limit through",
			input: &Input{
				Speed: 1, SpeedUnit: models.SpeedUnitMs,
				Force: 10, ForceUnit: models.ForceUnitNewton,
				WheelDiameterCm: 10,
				SystemVoltage:   models.Float64(12),
				MaxResults:      5,
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.InDelta(t, 190.99, output.RequiredRPM, 0.01)
				assert.InDelta(t, 0.5, output.RequiredTorqueNm, 1e-9)
				require.NotNil(t, output.Voltage)
				assert.Equal(t, 12.0, *output.Voltage)
				assert.Equal(t, 5, output.MaxResults)
			},
		},
		{
			name:          "zero speed",
			input:         &Input{Speed: 0, Force: 2, WheelDiameterCm: 6.5},
			expectedError: apperrors.ErrCodeInvalidVehicleSpec,
		},
		{
			name:          "unknown unit",
			input:         &Input{Speed: 5, SpeedUnit: "mph", Force: 2, WheelDiameterCm: 6.5},
			expectedError: apperrors.ErrCodeInvalidVehicleSpec,
		},
	}

	h := newTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := h.Execute(context.Background(), tt.input)
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedError, apperrors.As(err).Code)
				return
			}
			require.NoError(t, err)
			tt.validateOutput(t, output)
		})
	}
}

func TestOutput_ChainsIntoRequirement(t *testing.T) {
	h := newTestHandler(t)
	output, err := h.Execute(context.Background(), &Input{
		Speed: 5, Force: 2, WheelDiameterCm: 6.5, SystemVoltage: models.Float64(6), MaxResults: 4,
	})
	require.NoError(t, err)

	data, err := json.Marshal(output)
	require.NoError(t, err)

	var req models.Requirement
	require.NoError(t, json.Unmarshal(data, &req))
	assert.Equal(t, output.RequiredRPM, req.RequiredRPM)
	assert.Equal(t, output.RequiredTorqueNm, req.RequiredTorqueNm)
	assert.Equal(t, 4, req.MaxResults)
	require.NotNil(t, req.FilterVoltage)
	assert.Equal(t, 6.0, *req.FilterVoltage)
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t)
	job := func(vars string) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7, Type: TaskType, Variables: vars}}
	}

	input, err := h.parseInput(job(`{"speed":5,"speedUnit":"kph","force":2,"forceUnit":"kgf","wheelDiameterCm":6.5}`))
	require.NoError(t, err)
	assert.Equal(t, models.SpeedUnitKph, input.SpeedUnit)
	assert.Equal(t, 6.5, input.WheelDiameterCm)

	_, err = h.parseInput(job(`[`))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeParseError))

	_, err = h.parseInput(job(`{"speed":5,"force":-1,"wheelDiameterCm":6.5}`))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRequest))
}
