// internal/models/motor.go
package models

import "fmt"

// Series is the product family a gearmotor belongs to.
type Series string

const (
	SeriesMicroMetal Series = "Micro Metal"
	Series20D        Series = "20D"
	Series25D        Series = "25D"
	Series37D        Series = "37D"
)

// AllSeries lists the known product families in catalog order.
var AllSeries = []Series{SeriesMicroMetal, Series20D, Series25D, Series37D}

// ParseSeries matches a series name exactly as it appears in the catalog.
func ParseSeries(s string) (Series, error) {
	for _, known := range AllSeries {
		if string(known) == s {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown motor series %q", s)
}

// MotorSpec is one catalog entry. Entries are immutable once the catalog is built.
type MotorSpec struct {
	ID                    string  `json:"id" yaml:"id"`
	Supplier              string  `json:"supplier" yaml:"supplier"`
	Series                Series  `json:"series" yaml:"series"`
	MotorType             string  `json:"motorType" yaml:"motor_type"`
	GearRatio             string  `json:"gearRatio" yaml:"gear_ratio"`
	URL                   string  `json:"url" yaml:"url"`
	Voltage               float64 `json:"voltage" yaml:"voltage"`
	FreeRunCurrentA       float64 `json:"freeRunCurrentA" yaml:"free_run_current_a"`
	StallCurrentA         float64 `json:"stallCurrentA" yaml:"stall_current_a"`
	RPMNoLoad             float64 `json:"rpmNoLoad" yaml:"rpm_no_load"`
	TorqueRatedNm         float64 `json:"torqueRatedNm" yaml:"torque_rated_nm"`
	OutputShaftDiameterMM float64 `json:"outputShaftDiameter" yaml:"output_shaft_diameter_mm"`
}

// Valid reports whether the entry satisfies the catalog invariant: positive
// voltage, no-load RPM and rated torque.
func (m MotorSpec) Valid() bool {
	return m.Voltage > 0 && m.RPMNoLoad > 0 && m.TorqueRatedNm > 0
}

// DisplayName renders the entry the way suggestion lists show it,
// e.g. "Pololu 37D - 50:1 12V".
func (m MotorSpec) DisplayName() string {
	return fmt.Sprintf("%s %s - %s %s", m.Supplier, m.Series, m.GearRatio, m.MotorType)
}
