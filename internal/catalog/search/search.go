// Package search indexes the catalog in Elasticsearch and runs free-text
// lookups over it. Matching itself never goes through the index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"motor-picker/internal/catalog"
	apperrors "motor-picker/internal/common/errors"
	"motor-picker/internal/common/logger"
	"motor-picker/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	DefaultIndex = "motors"
	DefaultSize  = 20
	MaxSize      = 100
)

// Document is what gets stored per catalog entry.
type Document struct {
	models.MotorSpec
	DisplayName    string `json:"displayName"`
	CatalogVersion string `json:"catalogVersion"`
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":             {"type": "keyword"},
      "supplier":       {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "series":         {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "motorType":      {"type": "text"},
      "gearRatio":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "displayName":    {"type": "text"},
      "url":            {"type": "keyword", "index": false},
      "voltage":        {"type": "double"},
      "rpmNoLoad":      {"type": "double"},
      "torqueRatedNm":  {"type": "double"},
      "catalogVersion": {"type": "keyword"}
    }
  }
}`

type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	if index == "" {
		index = DefaultIndex
	}
	return &Indexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search-indexer", "index": index}),
	}
}

// EnsureIndex creates the index with its mapping. An existing index is left
// as it is.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesCreateRequest{
		Index: i.index,
		Body:  strings.NewReader(indexMapping),
	}.Do(ctx, i.client)
	if err != nil {
		return apperrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() && !strings.Contains(readBody(res.Body), "resource_already_exists_exception") {
		return apperrors.NewSearchQueryFailedError(fmt.Errorf("create index %s: %s", i.index, res.Status()))
	}
	return nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// Index upserts every catalog entry with one bulk request keyed by motor id.
func (i *Indexer) Index(ctx context.Context, cat *catalog.Catalog) (int, error) {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, m := range cat.Motors() {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": i.index, "_id": m.ID}}
		if err := enc.Encode(meta); err != nil {
			return 0, err
		}
		doc := Document{MotorSpec: m, DisplayName: m.DisplayName(), CatalogVersion: cat.Version()}
		if err := enc.Encode(doc); err != nil {
			return 0, err
		}
	}

	res, err := esapi.BulkRequest{
		Body:    &body,
		Refresh: "wait_for",
	}.Do(ctx, i.client)
	if err != nil {
		return 0, apperrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, apperrors.NewSearchQueryFailedError(fmt.Errorf("bulk index: %s", res.Status()))
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return 0, apperrors.NewSearchQueryFailedError(fmt.Errorf("decode bulk response: %w", err))
	}

	indexed, failed := 0, 0
	for _, item := range br.Items {
		for _, op := range item {
			if op.Error != nil || op.Status >= 300 {
				failed++
				i.logger.Warn("document rejected", map[string]interface{}{
					"id":     op.ID,
					"status": op.Status,
				})
				continue
			}
			indexed++
		}
	}
	if failed > 0 {
		return indexed, apperrors.NewSearchQueryFailedError(fmt.Errorf("%d of %d documents rejected", failed, failed+indexed)).
			WithMetadata("indexed", indexed)
	}

	i.logger.Info("catalog indexed", map[string]interface{}{
		"documents": indexed,
		"version":   cat.Version(),
	})
	return indexed, nil
}

// Query narrows a free-text lookup. Empty Text matches everything.
type Query struct {
	Text    string
	Series  models.Series
	Voltage *float64
	Size    int
}

type Hit struct {
	Motor models.MotorSpec `json:"motor"`
	Score float64          `json:"score"`
}

type Result struct {
	Hits     []Hit   `json:"hits"`
	Total    int64   `json:"total"`
	MaxScore float64 `json:"maxScore"`
	TookMs   int64   `json:"tookMs"`
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			Score  *float64 `json:"_score"`
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type Searcher struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewSearcher(client *elasticsearch.Client, index string, log logger.Logger) *Searcher {
	if index == "" {
		index = DefaultIndex
	}
	return &Searcher{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search", "index": index}),
	}
}

func (s *Searcher) Search(ctx context.Context, q Query) (*Result, error) {
	size := q.Size
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	body, err := json.Marshal(BuildQuery(q))
	if err != nil {
		return nil, err
	}

	res, err := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}.Do(ctx, s.client)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(fmt.Errorf("search %s: %s", s.index, res.Status()))
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(fmt.Errorf("decode search response: %w", err))
	}

	out := &Result{
		Hits:   make([]Hit, 0, len(sr.Hits.Hits)),
		Total:  sr.Hits.Total.Value,
		TookMs: sr.Took,
	}
	if sr.Hits.MaxScore != nil {
		out.MaxScore = *sr.Hits.MaxScore
	}
	for _, h := range sr.Hits.Hits {
		hit := Hit{Motor: h.Source.MotorSpec}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		out.Hits = append(out.Hits, hit)
	}

	s.logger.Debug("search completed", map[string]interface{}{
		"query":     q.Text,
		"totalHits": out.Total,
		"returned":  len(out.Hits),
	})
	return out, nil
}

// BuildQuery renders the request body for q.
func BuildQuery(q Query) map[string]interface{} {
	var must interface{}
	if text := strings.TrimSpace(q.Text); text != "" {
		must = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     text,
				"fields":    []string{"displayName^3", "id^2", "series^2", "motorType", "gearRatio", "supplier"},
				"type":      "best_fields",
				"operator":  "and",
				"fuzziness": "AUTO",
			},
		}
	} else {
		must = map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	filters := []interface{}{}
	if q.Series != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"series.raw": string(q.Series)},
		})
	}
	if q.Voltage != nil {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"voltage": *q.Voltage},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filters,
			},
		},
	}
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	return string(b)
}
