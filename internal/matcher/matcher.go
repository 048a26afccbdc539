// Package matcher ranks catalog gearmotors against an RPM and torque
// requirement.
package matcher

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"motor-picker/internal/catalog"
	apperrors "motor-picker/internal/common/errors"
	"motor-picker/internal/common/logger"
	"motor-picker/internal/common/metrics"
	"motor-picker/internal/models"
)

// FindSuitableMotors scores every entry against the requirement and returns
// at most maxResults matches, best first. Entries with a different nominal
// voltage (when filterVoltage is set), an out-of-band RPM or torque ratio, or
// non-positive ratings are left out. Ties keep catalog order. The result is
// never nil.
//
// Callers must pass positive requiredRPM and requiredTorqueNm; Matcher.Find
// checks that before calling.
func FindSuitableMotors(motors []models.MotorSpec, requiredRPM, requiredTorqueNm float64, maxResults int, filterVoltage *float64) []models.MatchResult {
	results := make([]models.MatchResult, 0)

	for _, m := range motors {
		if !m.Valid() {
			continue
		}
		if filterVoltage != nil && m.Voltage != *filterVoltage {
			continue
		}

		rpmMatch := RPMMatch(m.RPMNoLoad / requiredRPM)
		torqueMatch := TorqueMatch(m.TorqueRatedNm / requiredTorqueNm)
		if rpmMatch == 0 || torqueMatch == 0 {
			continue
		}

		results = append(results, models.MatchResult{
			Motor:             m,
			RPMMatch:          rpmMatch,
			TorqueMatch:       torqueMatch,
			OverallScore:      (rpmMatch + torqueMatch) / 2,
			RPMUtilization:    requiredRPM / m.RPMNoLoad * 100,
			TorqueUtilization: requiredTorqueNm / m.TorqueRatedNm * 100,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].OverallScore > results[j].OverallScore
	})

	if maxResults < 0 {
		maxResults = 0
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

type Config struct {
	DefaultMaxResults int
	MaxResultsCap     int
}

func DefaultConfig() *Config {
	return &Config{
		DefaultMaxResults: models.DefaultMaxResults,
		MaxResultsCap:     100,
	}
}

// Matcher runs validated queries against one catalog. It holds no mutable
// state and is safe for concurrent use.
type Matcher struct {
	catalog *catalog.Catalog
	config  *Config
	logger  logger.Logger
}

func New(cat *catalog.Catalog, config *Config, log logger.Logger) *Matcher {
	if config == nil {
		config = DefaultConfig()
	}
	return &Matcher{
		catalog: cat,
		config:  config,
		logger:  log.WithFields(map[string]interface{}{"component": "matcher"}),
	}
}

func (m *Matcher) Catalog() *catalog.Catalog { return m.catalog }

// Find validates req, applies the default limit when MaxResults is zero and
// ranks the catalog. Invalid requirements fail with INVALID_REQUIREMENT
// before any entry is scored.
func (m *Matcher) Find(ctx context.Context, req models.Requirement) ([]models.MatchResult, error) {
	if err := m.Validate(req); err != nil {
		metrics.MatchQueries.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := req.MaxResults
	if limit == 0 {
		limit = m.config.DefaultMaxResults
	}

	start := time.Now()
	results := FindSuitableMotors(m.catalog.Motors(), req.RequiredRPM, req.RequiredTorqueNm, limit, req.FilterVoltage)
	elapsed := time.Since(start)

	outcome := "matched"
	if len(results) == 0 {
		outcome = "empty"
	}
	metrics.MatchQueries.WithLabelValues(outcome).Inc()
	metrics.MatchResultsReturned.Observe(float64(len(results)))
	metrics.MatchDuration.Observe(elapsed.Seconds())

	fields := map[string]interface{}{
		"requiredRpm":      req.RequiredRPM,
		"requiredTorqueNm": req.RequiredTorqueNm,
		"limit":            limit,
		"catalogVersion":   m.catalog.Version(),
		"outputCount":      len(results),
		"durationUs":       elapsed.Microseconds(),
	}
	if req.FilterVoltage != nil {
		fields["voltage"] = *req.FilterVoltage
	}
	m.logger.Debug("ranking completed", fields)

	return results, nil
}

// Validate checks the requirement preconditions.
func (m *Matcher) Validate(req models.Requirement) error {
	if !positiveFinite(req.RequiredRPM) {
		return apperrors.NewInvalidRequirementError(fmt.Sprintf("requiredRpm must be a positive finite number, got %v", req.RequiredRPM))
	}
	if !positiveFinite(req.RequiredTorqueNm) {
		return apperrors.NewInvalidRequirementError(fmt.Sprintf("requiredTorqueNm must be a positive finite number, got %v", req.RequiredTorqueNm))
	}
	if req.MaxResults < 0 {
		return apperrors.NewInvalidRequirementError(fmt.Sprintf("maxResults must not be negative, got %d", req.MaxResults))
	}
	if req.MaxResults > m.config.MaxResultsCap {
		return apperrors.NewInvalidRequirementError(fmt.Sprintf("maxResults must not exceed %d, got %d", m.config.MaxResultsCap, req.MaxResults))
	}
	if req.FilterVoltage != nil && !positiveFinite(*req.FilterVoltage) {
		return apperrors.NewInvalidRequirementError(fmt.Sprintf("voltage must be a positive finite number, got %v", *req.FilterVoltage))
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
