// internal/catalog/embedded.go
package catalog

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"sync"

	"motor-picker/internal/models"
	"motor-picker/internal/physics"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// family is one product table as authored in data/*.yaml. Shared electrical
// and mechanical values live at the family level; each row carries the gear
// ratio, no-load speed and rated torque in kgf·cm.
type family struct {
	Series                models.Series `yaml:"series"`
	Supplier              string        `yaml:"supplier"`
	MotorType             string        `yaml:"motor_type"`
	IDPrefix              string        `yaml:"id_prefix"`
	Voltage               float64       `yaml:"voltage"`
	FreeRunCurrentA       float64       `yaml:"free_run_current_a"`
	StallCurrentA         float64       `yaml:"stall_current_a"`
	OutputShaftDiameterMM float64       `yaml:"output_shaft_diameter_mm"`
	Motors                []struct {
		GearRatio   string  `yaml:"gear_ratio"`
		RPMNoLoad   float64 `yaml:"rpm_no_load"`
		TorqueKgfcm float64 `yaml:"torque_kgfcm"`
		URL         string  `yaml:"url"`
	} `yaml:"motors"`
}

func (f family) specs() []models.MotorSpec {
	out := make([]models.MotorSpec, 0, len(f.Motors))
	for _, row := range f.Motors {
		ratio := strings.TrimSuffix(row.GearRatio, ":1")
		spec := models.MotorSpec{
			ID:                    f.IDPrefix + "-" + ratio,
			Supplier:              f.Supplier,
			Series:                f.Series,
			MotorType:             f.MotorType,
			GearRatio:             row.GearRatio,
			URL:                   row.URL,
			Voltage:               f.Voltage,
			FreeRunCurrentA:       f.FreeRunCurrentA,
			StallCurrentA:         f.StallCurrentA,
			RPMNoLoad:             row.RPMNoLoad,
			TorqueRatedNm:         physics.KgfcmToNm(row.TorqueKgfcm),
			OutputShaftDiameterMM: f.OutputShaftDiameterMM,
		}
		if spec.URL == "" {
			spec.URL = productSearchURL(spec)
		}
		out = append(out, spec)
	}
	return out
}

func productSearchURL(m models.MotorSpec) string {
	q := fmt.Sprintf("%s %s %s gearmotor", m.GearRatio, m.Series, m.MotorType)
	return "https://www.pololu.com/search?query=" + url.QueryEscape(q)
}

// ParseFamilies reads family tables from fsys in lexical file order and
// flattens them into one ordered slice.
func ParseFamilies(fsys fs.FS, dir string) ([]models.MotorSpec, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	var motors []models.MotorSpec
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		var f family
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		if _, err := models.ParseSeries(string(f.Series)); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		motors = append(motors, f.specs()...)
	}
	return motors, nil
}

// LoadEmbedded builds a catalog from the family tables compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	motors, err := ParseFamilies(dataFS, "data")
	if err != nil {
		return nil, err
	}
	return New(motors)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, loading it on first use. The embedded
// tables are validated by tests, so a failure here is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadEmbedded()
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded motor catalog is invalid: %v", defaultErr))
	}
	return defaultCatalog
}

// EmbeddedSource serves the compiled-in catalog.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Load(context.Context) (*Catalog, error) {
	return LoadEmbedded()
}
