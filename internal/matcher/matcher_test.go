package matcher

import (
	"context"
	"math"
	"testing"

	"motor-picker/internal/catalog"
	apperrors "motor-picker/internal/common/errors"
	"motor-picker/internal/common/logger"
	"motor-picker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spec(id string, voltage, rpm, torque float64) models.MotorSpec {
	return models.MotorSpec{
		ID:            id,
		Supplier:      "Pololu",
		Series:        models.Series25D,
		MotorType:     "HP 6V",
		GearRatio:     "20:1",
		Voltage:       voltage,
		RPMNoLoad:     rpm,
		TorqueRatedNm: torque,
	}
}

func ids(results []models.MatchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Motor.ID)
	}
	return out
}

func newTestMatcher(t *testing.T, motors ...models.MotorSpec) *Matcher {
	t.Helper()
	cat, err := catalog.New(motors)
	require.NoError(t, err)
	return New(cat, DefaultConfig(), logger.NewTestLogger(t))
}

func TestRPMMatch(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  float64
	}{
		{"peak", 1.0, 100},
		{"lower edge", 0.8, 90},
		{"upper edge", 2.0, 50},
		{"between", 1.5, 75},
		{"just below band", 0.7999, 0},
		{"just above band", 2.0001, 0},
		{"zero", 0, 0},
		{"infinite", math.Inf(1), 0},
		{"nan", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RPMMatch(tt.ratio), 1e-9)
		})
	}
}

func TestTorqueMatch(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  float64
	}{
		{"peak", 1.5, 100},
		{"lower edge", 1.0, 85},
		{"upper edge", 3.0, 55},
		{"double", 2.0, 85},
		{"underpowered", 0.999, 0},
		{"oversized", 3.001, 0},
		{"nan", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TorqueMatch(tt.ratio), 1e-9)
		})
	}
}

func TestScoresAreContinuousInsideBands(t *testing.T) {
	const step = 1e-4
	for r := RPMBandMin; r+step <= RPMBandMax; r += step {
		assert.LessOrEqual(t, math.Abs(RPMMatch(r+step)-RPMMatch(r)), RPMSlope*step+1e-9)
	}
	for r := TorqueBandMin; r+step <= TorqueBandMax; r += step {
		assert.LessOrEqual(t, math.Abs(TorqueMatch(r+step)-TorqueMatch(r)), TorqueSlope*step+1e-9)
	}
}

func TestClassifyUtilization(t *testing.T) {
	assert.Equal(t, WithinRating, ClassifyUtilization(0))
	assert.Equal(t, WithinRating, ClassifyUtilization(100))
	assert.Equal(t, OverRating, ClassifyUtilization(100.01))
	assert.Equal(t, OverRating, ClassifyUtilization(149.99))
	assert.Equal(t, FarOverRating, ClassifyUtilization(150))
	assert.Equal(t, FarOverRating, ClassifyUtilization(400))
}

func TestFindSuitableMotors_Scenarios(t *testing.T) {
	single := []models.MotorSpec{spec("m1", 6, 200, 0.1)}

	tests := []struct {
		name           string
		motors         []models.MotorSpec
		rpm, torque    float64
		maxResults     int
		voltage        *float64
		validateOutput func(t *testing.T, got []models.MatchResult)
	}{
		{
			name:   "exact rpm and 1.5x torque margin",
			motors: single, rpm: 200, torque: 0.0667, maxResults: 15,
			validateOutput: func(t *testing.T, got []models.MatchResult) {
				require.Len(t, got, 1)
				assert.InDelta(t, 100, got[0].OverallScore, 0.05)
				assert.Equal(t, 100.0, got[0].RPMMatch)
				assert.InDelta(t, 100, got[0].RPMUtilization, 1e-9)
				assert.InDelta(t, 66.67, got[0].TorqueUtilization, 0.05)
			},
		},
		{
			name:   "exact peak on both axes",
			motors: single, rpm: 200, torque: 0.1 / 1.5, maxResults: 15,
			validateOutput: func(t *testing.T, got []models.MatchResult) {
				require.Len(t, got, 1)
				assert.InDelta(t, 100, got[0].OverallScore, 1e-9)
				assert.InDelta(t, 100, got[0].TorqueMatch, 1e-9)
			},
		},
		{
			name:   "underpowered torque is dropped",
			motors: single, rpm: 200, torque: 0.15, maxResults: 15,
			validateOutput: func(t *testing.T, got []models.MatchResult) {
				assert.NotNil(t, got)
				assert.Empty(t, got)
			},
		},
		{
			name:   "oversized torque is dropped",
			motors: single, rpm: 200, torque: 0.03, maxResults: 15,
			validateOutput: func(t *testing.T, got []models.MatchResult) {
				assert.Empty(t, got)
			},
		},
		{
			name:   "rpm out of band is dropped even with perfect torque",
			motors: single, rpm: 90, torque: 0.1 / 1.5, maxResults: 15,
			validateOutput: func(t *testing.T, got []models.MatchResult) {
				assert.Empty(t, got)
			},
		},
		{
			name: "voltage filter against a 6V-only catalog",
			motors: []models.MotorSpec{
				spec("a", 6, 200, 0.1),
				spec("b", 6, 210, 0.1),
			},
			rpm: 200, torque: 0.0667, maxResults: 15, voltage: models.Float64(12),
			validateOutput: func(t *testing.T, got []models.MatchResult) {
				assert.NotNil(t, got)
				assert.Empty(t, got)
			},
		},
		{
			name: "voltage filter is exact equality",
			motors: []models.MotorSpec{
				spec("nominal", 12, 200, 0.1),
				spec("lipo", 11.1, 200, 0.1),
			},
			rpm: 200, torque: 0.0667, maxResults: 15, voltage: models.Float64(12),
			validateOutput: func(t *testing.T, got []models.MatchResult) {
				assert.Equal(t, []string{"nominal"}, ids(got))
			},
		},
		{
			name: "top two of five by score",
			motors: []models.MotorSpec{
				spec("r260", 6, 260, 0.15),
				spec("r200", 6, 200, 0.15),
				spec("r280", 6, 280, 0.15),
				spec("r220", 6, 220, 0.15),
				spec("r240", 6, 240, 0.15),
			},
			rpm: 200, torque: 0.1, maxResults: 2,
			validateOutput: func(t *testing.T, got []models.MatchResult) {
				require.Equal(t, []string{"r200", "r220"}, ids(got))
				assert.InDelta(t, 100, got[0].OverallScore, 1e-9)
				assert.InDelta(t, 97.5, got[1].OverallScore, 1e-9)
			},
		},
		{
			name: "ties keep catalog order",
			motors: []models.MotorSpec{
				spec("first", 6, 200, 0.15),
				spec("middle", 6, 200, 0.15),
				spec("second", 6, 200, 0.15),
			},
			rpm: 200, torque: 0.1, maxResults: 15,
			validateOutput: func(t *testing.T, got []models.MatchResult) {
				assert.Equal(t, []string{"first", "middle", "second"}, ids(got))
			},
		},
		{
			name: "invalid entries are skipped",
			motors: []models.MotorSpec{
				spec("no-torque", 6, 200, 0),
				spec("no-rpm", 6, 0, 0.15),
				spec("no-voltage", 0, 200, 0.15),
				spec("ok", 6, 200, 0.15),
			},
			rpm: 200, torque: 0.1, maxResults: 15,
			validateOutput: func(t *testing.T, got []models.MatchResult) {
				assert.Equal(t, []string{"ok"}, ids(got))
			},
		},
		{
			name:   "empty catalog",
			motors: nil, rpm: 200, torque: 0.1, maxResults: 15,
			validateOutput: func(t *testing.T, got []models.MatchResult) {
				assert.NotNil(t, got)
				assert.Empty(t, got)
			},
		},
		{
			name:   "zero limit",
			motors: single, rpm: 200, torque: 0.0667, maxResults: 0,
			validateOutput: func(t *testing.T, got []models.MatchResult) {
				assert.NotNil(t, got)
				assert.Empty(t, got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindSuitableMotors(tt.motors, tt.rpm, tt.torque, tt.maxResults, tt.voltage)
			tt.validateOutput(t, got)
		})
	}
}

func TestFindSuitableMotors_PropertiesOverEmbeddedCatalog(t *testing.T) {
	motors := catalog.Default().Motors()

	for _, rpm := range []float64{30, 90, 150, 300, 500, 1000, 3000} {
		for _, torque := range []float64{0.01, 0.05, 0.1, 0.3, 0.8, 1.5, 3} {
			all := FindSuitableMotors(motors, rpm, torque, len(motors), nil)

			for i, r := range all {
				assert.Greater(t, r.RPMMatch, 0.0)
				assert.Greater(t, r.TorqueMatch, 0.0)

				rpmRatio := r.Motor.RPMNoLoad / rpm
				torqueRatio := r.Motor.TorqueRatedNm / torque
				assert.True(t, rpmRatio >= RPMBandMin && rpmRatio <= RPMBandMax, r.Motor.ID)
				assert.True(t, torqueRatio >= TorqueBandMin && torqueRatio <= TorqueBandMax, r.Motor.ID)

				assert.InDelta(t, (r.RPMMatch+r.TorqueMatch)/2, r.OverallScore, 1e-9)
				assert.InDelta(t, rpm/r.Motor.RPMNoLoad*100, r.RPMUtilization, 1e-9)
				if i > 0 {
					assert.GreaterOrEqual(t, all[i-1].OverallScore, r.OverallScore)
				}
			}

			limited := FindSuitableMotors(motors, rpm, torque, 3, nil)
			assert.LessOrEqual(t, len(limited), 3)
			if len(all) >= 3 {
				assert.Equal(t, ids(all[:3]), ids(limited))
			}

			for _, v := range []float64{6, 12, 24} {
				filtered := FindSuitableMotors(motors, rpm, torque, len(motors), models.Float64(v))
				var want []string
				for _, r := range all {
					if r.Motor.Voltage == v {
						want = append(want, r.Motor.ID)
					}
				}
				if want == nil {
					want = []string{}
				}
				assert.Equal(t, want, ids(filtered), "rpm=%v torque=%v voltage=%v", rpm, torque, v)
			}
		}
	}
}

func TestFindSuitableMotors_AppendingDoesNotReorderExisting(t *testing.T) {
	base := []models.MotorSpec{
		spec("a", 6, 200, 0.15),
		spec("b", 6, 240, 0.2),
		spec("c", 6, 180, 0.12),
	}
	before := FindSuitableMotors(base, 200, 0.1, 15, nil)

	extended := append(append([]models.MotorSpec{}, base...), spec("unrelated", 24, 5000, 10))
	after := FindSuitableMotors(extended, 200, 0.1, 15, nil)

	assert.Equal(t, before, after)
}

func TestMatcher_Find(t *testing.T) {
	many := make([]models.MotorSpec, 0, 20)
	for i := 0; i < 20; i++ {
		many = append(many, spec(string(rune('a'+i)), 6, 200+float64(i), 0.15))
	}
	m := newTestMatcher(t, many...)
	ctx := context.Background()

	got, err := m.Find(ctx, models.Requirement{RequiredRPM: 200, RequiredTorqueNm: 0.1})
	require.NoError(t, err)
	assert.Len(t, got, models.DefaultMaxResults)
	assert.Equal(t, "a", got[0].Motor.ID)

	got, err = m.Find(ctx, models.Requirement{RequiredRPM: 200, RequiredTorqueNm: 0.1, MaxResults: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))

	got, err = m.Find(ctx, models.Requirement{RequiredRPM: 200, RequiredTorqueNm: 0.1, FilterVoltage: models.Float64(12)})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMatcher_FindRejectsInvalidRequirements(t *testing.T) {
	m := newTestMatcher(t, spec("a", 6, 200, 0.15))

	tests := []struct {
		name string
		req  models.Requirement
	}{
		{"zero rpm", models.Requirement{RequiredRPM: 0, RequiredTorqueNm: 0.1}},
		{"negative rpm", models.Requirement{RequiredRPM: -10, RequiredTorqueNm: 0.1}},
		{"nan rpm", models.Requirement{RequiredRPM: math.NaN(), RequiredTorqueNm: 0.1}},
		{"inf rpm", models.Requirement{RequiredRPM: math.Inf(1), RequiredTorqueNm: 0.1}},
		{"zero torque", models.Requirement{RequiredRPM: 200, RequiredTorqueNm: 0}},
		{"nan torque", models.Requirement{RequiredRPM: 200, RequiredTorqueNm: math.NaN()}},
		{"negative limit", models.Requirement{RequiredRPM: 200, RequiredTorqueNm: 0.1, MaxResults: -1}},
		{"limit above cap", models.Requirement{RequiredRPM: 200, RequiredTorqueNm: 0.1, MaxResults: 101}},
		{"zero voltage", models.Requirement{RequiredRPM: 200, RequiredTorqueNm: 0.1, FilterVoltage: models.Float64(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Find(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRequirement), err.Error())
		})
	}
}

func TestMatcher_FindHonorsCancelledContext(t *testing.T) {
	m := newTestMatcher(t, spec("a", 6, 200, 0.15))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Find(ctx, models.Requirement{RequiredRPM: 200, RequiredTorqueNm: 0.1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatcher_ConcurrentFind(t *testing.T) {
	m := New(catalog.Default(), nil, logger.NewNoOpLogger())
	want, err := m.Find(context.Background(), models.Requirement{RequiredRPM: 150, RequiredTorqueNm: 0.3})
	require.NoError(t, err)

	done := make(chan []models.MatchResult, 8)
	for i := 0; i < 8; i++ {
		go func() {
			got, _ := m.Find(context.Background(), models.Requirement{RequiredRPM: 150, RequiredTorqueNm: 0.3})
			done <- got
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, want, <-done)
	}
}
