// Package catalog holds the read-only gearmotor catalog the matcher scores.
//
// A Catalog is an ordered, immutable collection of MotorSpec records. Product
// families are metadata on each record (the Series field), not a partition:
// every source flattens its families into a single ordered slice.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	apperrors "motor-picker/internal/common/errors"
	"motor-picker/internal/models"
)

type Catalog struct {
	motors  []models.MotorSpec
	index   map[string]int
	version string
}

// New validates the entries and builds a catalog that preserves their order.
// Every entry needs a unique non-empty ID and positive voltage, no-load RPM and
// rated torque; violations are reported together.
func New(motors []models.MotorSpec) (*Catalog, error) {
	c := &Catalog{
		motors: make([]models.MotorSpec, len(motors)),
		index:  make(map[string]int, len(motors)),
	}
	copy(c.motors, motors)

	var defects []string
	for i, m := range c.motors {
		if m.ID == "" {
			defects = append(defects, fmt.Sprintf("entry %d: missing id", i))
			continue
		}
		if _, dup := c.index[m.ID]; dup {
			defects = append(defects, fmt.Sprintf("%s: duplicate id", m.ID))
			continue
		}
		if !m.Valid() {
			defects = append(defects, fmt.Sprintf("%s: voltage=%v rpmNoLoad=%v torqueRatedNm=%v must be positive",
				m.ID, m.Voltage, m.RPMNoLoad, m.TorqueRatedNm))
			continue
		}
		c.index[m.ID] = i
	}
	if len(defects) > 0 {
		return nil, apperrors.NewCatalogInvalidEntryError(firstID(defects), strings.Join(defects, "; ")).
			WithMetadata("defects", len(defects))
	}

	c.version = computeVersion(c.motors)
	return c, nil
}

func firstID(defects []string) string {
	id, _, _ := strings.Cut(defects[0], ":")
	return id
}

// computeVersion fingerprints the catalog contents so caches and search
// indexes can tell snapshots apart.
func computeVersion(motors []models.MotorSpec) string {
	data, _ := json.Marshal(motors)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:6])
}

// Motors returns a copy of the entries in catalog order.
func (c *Catalog) Motors() []models.MotorSpec {
	out := make([]models.MotorSpec, len(c.motors))
	copy(out, c.motors)
	return out
}

func (c *Catalog) Len() int { return len(c.motors) }

func (c *Catalog) Version() string { return c.version }

func (c *Catalog) Get(id string) (models.MotorSpec, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.MotorSpec{}, false
	}
	return c.motors[i], true
}

// Filter returns the entries accepted by keep, in catalog order.
func (c *Catalog) Filter(keep func(models.MotorSpec) bool) []models.MotorSpec {
	out := make([]models.MotorSpec, 0)
	for _, m := range c.motors {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func (c *Catalog) BySeries(series models.Series) []models.MotorSpec {
	return c.Filter(func(m models.MotorSpec) bool { return m.Series == series })
}

// Voltages lists the distinct nominal voltages in ascending order.
func (c *Catalog) Voltages() []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, m := range c.motors {
		if !seen[m.Voltage] {
			seen[m.Voltage] = true
			out = append(out, m.Voltage)
		}
	}
	sort.Float64s(out)
	return out
}
