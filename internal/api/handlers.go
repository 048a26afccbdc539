// internal/api/handlers.go
package api

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"motor-picker/internal/catalog/search"
	"motor-picker/internal/catalog/xlsx"
	apperrors "motor-picker/internal/common/errors"
	"motor-picker/internal/models"
	"motor-picker/internal/physics"
	"motor-picker/internal/report"
	"motor-picker/pkg/registry"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const readyCheckTimeout = 2 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"time":           time.Now().UTC().Format(time.RFC3339),
		"uptimeSeconds":  int64(time.Since(s.started).Seconds()),
		"catalogVersion": s.matcher.Catalog().Version(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
	defer cancel()

	status, code := "ready", http.StatusOK
	results := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check.Ping(ctx); err != nil {
			results[name] = err.Error()
			status, code = "not ready", http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": results,
	})
}

func (s *Server) handleListMotors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var series models.Series
	if v := q.Get("series"); v != "" {
		parsed, err := models.ParseSeries(v)
		if err != nil {
			writeError(w, r, apperrors.NewInvalidRequestError(err.Error()))
			return
		}
		series = parsed
	}
	voltage, err := parseVoltage(q.Get("voltage"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	cat := s.matcher.Catalog()
	motors := cat.Filter(func(m models.MotorSpec) bool {
		if series != "" && m.Series != series {
			return false
		}
		return voltage == nil || m.Voltage == *voltage
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"motors":         motors,
		"count":          len(motors),
		"catalogVersion": cat.Version(),
	})
}

func (s *Server) handleGetMotor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	m, ok := s.matcher.Catalog().Get(id)
	if !ok {
		writeError(w, r, apperrors.NewMotorNotFoundError(id))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleSearchMotors(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		writeError(w, r, apperrors.NewSearchUnavailableError())
		return
	}

	q := r.URL.Query()
	query := search.Query{Text: q.Get("q")}
	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			writeError(w, r, apperrors.NewInvalidRequestError(fmt.Sprintf("size must be a positive integer, got %q", v)))
			return
		}
		query.Size = size
	}
	if v := q.Get("series"); v != "" {
		series, err := models.ParseSeries(v)
		if err != nil {
			writeError(w, r, apperrors.NewInvalidRequestError(err.Error()))
			return
		}
		query.Series = series
	}
	voltage, err := parseVoltage(q.Get("voltage"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	query.Voltage = voltage

	res, err := s.searcher.Search(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRequirements(w http.ResponseWriter, r *http.Request) {
	var in models.VehicleInput
	if err := s.decodeBody(w, r, registry.OpCalculateRequirements, &in); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := physics.FromVehicleInput(in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	var req models.Requirement
	if err := s.decodeBody(w, r, registry.OpFindSuitableMotors, &req); err != nil {
		writeError(w, r, err)
		return
	}

	matches, err := s.find(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"matches":        matches,
		"matchCount":     len(matches),
		"catalogVersion": s.matcher.Catalog().Version(),
	})
}

type suggestionResponse struct {
	Requirements models.MotorRequirements `json:"requirements"`
	Suggestions  []models.MatchResult     `json:"suggestions"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var in models.VehicleInput
	if err := s.decodeBody(w, r, registry.OpSuggestMotors, &in); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.suggest(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var in models.VehicleInput
	if err := s.decodeBody(w, r, registry.OpRenderReport, &in); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.suggest(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.Generate(&buf, report.Input{
		Vehicle:      &in,
		Requirements: resp.Requirements,
		Voltage:      in.SystemVoltage,
		Suggestions:  resp.Suggestions,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	sendBinary(w, "application/pdf", "motor-suggestions.pdf", buf.Bytes())
}

func (s *Server) handleExportCatalog(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := xlsx.Export(s.matcher.Catalog(), &buf); err != nil {
		writeError(w, r, err)
		return
	}
	sendBinary(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "motor-catalog.xlsx", buf.Bytes())
}

// suggest derives the requirements for a vehicle and ranks the catalog
// against them, filtered by the system voltage when one is given.
func (s *Server) suggest(ctx context.Context, in models.VehicleInput) (*suggestionResponse, error) {
	reqs, err := physics.FromVehicleInput(in)
	if err != nil {
		return nil, err
	}
	matches, err := s.find(ctx, models.Requirement{
		RequiredRPM:      reqs.RPM,
		RequiredTorqueNm: reqs.TorqueNm,
		MaxResults:       in.MaxResults,
		FilterVoltage:    in.SystemVoltage,
	})
	if err != nil {
		return nil, err
	}
	return &suggestionResponse{Requirements: reqs, Suggestions: matches}, nil
}

func (s *Server) find(ctx context.Context, req models.Requirement) ([]models.MatchResult, error) {
	ctx, span := s.obs.StartSpan(ctx, "matcher.find",
		attribute.Float64("motor.required_rpm", req.RequiredRPM),
		attribute.Float64("motor.required_torque_nm", req.RequiredTorqueNm),
		attribute.String("request.id", RequestID(ctx)),
	)
	defer span.End()

	start := time.Now()
	matches, err := s.matcher.Find(ctx, req)
	status := "ok"
	if err != nil {
		status = string(apperrors.As(err).Code)
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
	}
	span.SetAttributes(attribute.Int("motor.match_count", len(matches)))
	s.obs.RecordQuery(ctx, "http", status, time.Since(start), len(matches))
	return matches, err
}

func parseVoltage(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("voltage must be a positive number, got %q", v))
	}
	return &f, nil
}
