// Package bootstrap connects the configured backing services and loads the
// catalog. The server and the command-line tool share it.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"motor-picker/internal/catalog"
	"motor-picker/internal/catalog/pgstore"
	"motor-picker/internal/catalog/search"
	"motor-picker/internal/catalog/xlsx"
	"motor-picker/internal/common/config"
	"motor-picker/internal/common/database"
	"motor-picker/internal/common/logger"
	"motor-picker/internal/common/metrics"
	"motor-picker/internal/common/validation"
	"motor-picker/internal/matcher"
	"motor-picker/pkg/registry"
)

// Retry controls how long Build waits for backing services.
type Retry struct {
	Attempts     int
	InitialDelay time.Duration
}

var DefaultRetry = Retry{Attempts: 10, InitialDelay: 2 * time.Second}

type Deps struct {
	Config        *config.Config
	Postgres      *database.PostgresClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient

	Store     *pgstore.Store
	Source    catalog.Source
	Catalog   *catalog.Catalog
	Matcher   *matcher.Matcher
	Registry  *registry.OperationRegistry
	Validator *validation.Validator
	Searcher  *search.Searcher
	Indexer   *search.Indexer

	// Checks feeds the readiness endpoint.
	Checks map[string]database.Pinger

	logger logger.Logger
}

// Build connects every enabled service, loads the catalog from the
// configured source and wires the matcher. On error everything opened so far
// is closed.
func Build(ctx context.Context, cfg *config.Config, retry Retry, log logger.Logger) (*Deps, error) {
	d := &Deps{
		Config: cfg,
		Checks: make(map[string]database.Pinger),
		logger: log.WithFields(map[string]interface{}{"component": "bootstrap"}),
	}
	if err := d.build(ctx, retry); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Deps) build(ctx context.Context, retry Retry) error {
	cfg := d.Config

	if cfg.Database.Postgres.Enabled {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		d.Postgres = pg
		if err := RetryWithBackoff(ctx, func() error { return pg.Ping(ctx) },
			retry.Attempts, retry.InitialDelay, d.logger, "PostgreSQL connection"); err != nil {
			return err
		}
		d.Store = pgstore.New(pg.DB, d.logger)
		d.Checks["postgres"] = pg
	}

	if cfg.Database.Redis.Enabled {
		rc := database.NewRedis(cfg.Database.Redis)
		d.Redis = rc
		if err := RetryWithBackoff(ctx, func() error { return rc.Ping(ctx) },
			retry.Attempts, retry.InitialDelay, d.logger, "Redis connection"); err != nil {
			return err
		}
		d.Checks["redis"] = rc
	}

	if cfg.Database.Elasticsearch.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		d.Elasticsearch = es
		if err := RetryWithBackoff(ctx, func() error { return es.Ping(ctx) },
			retry.Attempts, retry.InitialDelay, d.logger, "Elasticsearch connection"); err != nil {
			return err
		}
		d.Searcher = search.NewSearcher(es.Client, cfg.Database.Elasticsearch.Index, d.logger)
		d.Indexer = search.NewIndexer(es.Client, cfg.Database.Elasticsearch.Index, d.logger)
		d.Checks["elasticsearch"] = es
	}

	src, err := d.source()
	if err != nil {
		return err
	}
	d.Source = src

	cat, err := src.Load(ctx)
	if err != nil {
		return err
	}
	d.Catalog = cat
	metrics.CatalogEntries.WithLabelValues(src.Name()).Set(float64(cat.Len()))
	d.logger.Info("catalog loaded", map[string]interface{}{
		"source":   src.Name(),
		"entries":  cat.Len(),
		"version":  cat.Version(),
		"voltages": cat.Voltages(),
	})

	d.Matcher = matcher.New(cat, &matcher.Config{
		DefaultMaxResults: cfg.Matcher.DefaultMaxResults,
		MaxResultsCap:     cfg.Matcher.MaxResultsCap,
	}, d.logger)

	reg, err := registry.Default()
	if err != nil {
		return err
	}
	d.Registry = reg
	v, err := validation.NewValidator(reg)
	if err != nil {
		return err
	}
	d.Validator = v
	return nil
}

// source picks the configured catalog source and wraps it in the redis
// snapshot cache when enabled.
func (d *Deps) source() (catalog.Source, error) {
	cfg := d.Config

	var src catalog.Source
	switch cfg.Catalog.Source {
	case config.CatalogSourceEmbedded, "":
		src = catalog.EmbeddedSource{}
	case config.CatalogSourcePostgres:
		if d.Store == nil {
			return nil, fmt.Errorf("catalog source postgres needs database.postgres.enabled")
		}
		src = d.Store
	case config.CatalogSourceXLSX:
		src = xlsx.FileSource{Path: cfg.Catalog.XLSXPath}
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}

	if cfg.Catalog.CacheEnabled && d.Redis != nil {
		ttl := time.Duration(cfg.Catalog.CacheTTL) * time.Second
		src = catalog.NewCachedSource(src, d.Redis.Client, ttl, d.logger)
	}
	return src, nil
}

func (d *Deps) Close() {
	if d.Postgres != nil {
		if err := d.Postgres.Close(); err != nil {
			d.logger.Warn("closing postgres", map[string]interface{}{"error": err})
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.logger.Warn("closing redis", map[string]interface{}{"error": err})
		}
	}
}

// RetryWithBackoff runs operation up to maxRetries times, doubling the delay
// after each failure.
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(operationName+" failed, retrying", map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled after %d attempts: %w", operationName, i+1, ctx.Err())
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
