// Package api exposes the catalog, the physics calculator and the matcher
// over HTTP.
package api

import (
	"net/http"
	"time"

	"motor-picker/internal/catalog/search"
	"motor-picker/internal/common/config"
	"motor-picker/internal/common/database"
	"motor-picker/internal/common/logger"
	"motor-picker/internal/common/observability"
	"motor-picker/internal/common/validation"
	"motor-picker/internal/matcher"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 1 << 20

// Options wires a Server. Searcher, Validator, Observability and Checks are
// optional.
type Options struct {
	Config        config.ServerConfig
	Matcher       *matcher.Matcher
	Searcher      *search.Searcher
	Validator     *validation.Validator
	Observability *observability.Observability
	Checks        map[string]database.Pinger
	Logger        logger.Logger
}

type Server struct {
	cfg       config.ServerConfig
	matcher   *matcher.Matcher
	searcher  *search.Searcher
	validator *validation.Validator
	obs       *observability.Observability
	checks    map[string]database.Pinger
	limiter   *IPRateLimiter
	logger    logger.Logger
	started   time.Time
}

func NewServer(opts Options) *Server {
	s := &Server{
		cfg:       opts.Config,
		matcher:   opts.Matcher,
		searcher:  opts.Searcher,
		validator: opts.Validator,
		obs:       opts.Observability,
		checks:    opts.Checks,
		logger:    opts.Logger.WithFields(map[string]interface{}{"component": "api"}),
		started:   time.Now(),
	}
	if rl := opts.Config.RateLimit; rl.Enabled && rl.RequestsPerSecond > 0 {
		burst := rl.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = NewIPRateLimiter(rate.Limit(rl.RequestsPerSecond), burst)
	}
	return s
}

// Handler returns the routed API wrapped in recovery and CORS.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, s.accessLogMiddleware)
	if s.limiter != nil {
		r.Use(s.limiter.LimitMiddleware)
	}

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/motors", s.handleListMotors).Methods(http.MethodGet)
	api.HandleFunc("/motors/search", s.handleSearchMotors).Methods(http.MethodGet)
	api.HandleFunc("/motors/{id}", s.handleGetMotor).Methods(http.MethodGet)
	api.HandleFunc("/requirements", s.handleRequirements).Methods(http.MethodPost)
	api.HandleFunc("/matches", s.handleMatches).Methods(http.MethodPost)
	api.HandleFunc("/calculate", s.handleCalculate).Methods(http.MethodPost)
	api.HandleFunc("/reports/pdf", s.handleReport).Methods(http.MethodPost)
	api.HandleFunc("/catalog/export.xlsx", s.handleExportCatalog).Methods(http.MethodGet)

	var h http.Handler = r
	if len(s.cfg.CORSOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.cfg.CORSOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
			handlers.ExposedHeaders([]string{requestIDHeader}),
		)(h)
	}
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
}

// HTTPServer builds the listener with the configured timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Millisecond,
	}
}

type recoveryLogger struct {
	log logger.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error("panic recovered", map[string]interface{}{"panic": v})
}
