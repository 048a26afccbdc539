// internal/matcher/score.go
package matcher

import "math"

// Scoring bands. A ratio outside its closed band, or NaN, scores zero, which
// removes the entry from the results.
const (
	RPMBandMin = 0.8
	RPMBandMax = 2.0
	RPMPeak    = 1.0
	// RPMSlope is the score lost per unit of distance from RPMPeak.
	RPMSlope = 50.0

	TorqueBandMin = 1.0
	TorqueBandMax = 3.0
	TorquePeak    = 1.5
	TorqueSlope   = 30.0
)

// RPMMatch scores no-load RPM over required RPM. The peak of 100 is at 1.0;
// the band edges score 90 (0.8) and 50 (2.0).
func RPMMatch(ratio float64) float64 {
	if !(ratio >= RPMBandMin && ratio <= RPMBandMax) {
		return 0
	}
	return 100 - math.Abs(RPMPeak-ratio)*RPMSlope
}

// TorqueMatch scores rated torque over required torque. The peak of 100 is at
// a 1.5x margin; the band edges score 85 (1.0) and 55 (3.0).
func TorqueMatch(ratio float64) float64 {
	if !(ratio >= TorqueBandMin && ratio <= TorqueBandMax) {
		return 0
	}
	return 100 - math.Abs(TorquePeak-ratio)*TorqueSlope
}

// UtilizationBand is the display classification of a utilization percentage.
type UtilizationBand string

const (
	WithinRating  UtilizationBand = "within-rating"
	OverRating    UtilizationBand = "over-rating"
	FarOverRating UtilizationBand = "far-over-rating"
)

// ClassifyUtilization buckets a required/rated percentage: up to 100 is within
// the rating, below 150 is over it, anything else is far over.
func ClassifyUtilization(pct float64) UtilizationBand {
	switch {
	case pct <= 100:
		return WithinRating
	case pct < 150:
		return OverRating
	default:
		return FarOverRating
	}
}
