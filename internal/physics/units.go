// Package physics turns vehicle targets into motor requirements.
package physics

import "math"

const (
	StandardGravity = 9.80665   // m/s², newtons per kilogram-force
	KgfcmPerNm      = 0.0980665 // N·m in one kgf·cm
	KgfcmPerOzIn    = 0.070307  // kgf·cm in one oz·in
	WattsPerHP      = 745.7
)

func KphToMs(kph float64) float64 { return kph / 3.6 }

func MsToKph(ms float64) float64 { return ms * 3.6 }

func KgfToN(kgf float64) float64 { return kgf * StandardGravity }

func NToKgf(n float64) float64 { return n / StandardGravity }

func KgfcmToNm(kgfcm float64) float64 { return kgfcm * KgfcmPerNm }

func NmToKgfcm(nm float64) float64 { return nm / KgfcmPerNm }

func OzInToKgfcm(ozin float64) float64 { return ozin * KgfcmPerOzIn }

// RPMToRadS converts rotations per minute to angular velocity.
func RPMToRadS(rpm float64) float64 { return rpm * 2 * math.Pi / 60 }

func WattsToHP(w float64) float64 { return w / WattsPerHP }
