package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
)

// maxScanSize is the largest result window served by one search. Collections
// beyond it are truncated; the in-memory query engine is not meant for more.
const maxScanSize = 10000

// aggregationBucketLimit caps distinct categories/priorities returned by Aggregate.
const aggregationBucketLimit = 1000

const refreshWaitFor = "wait_for"

// esDocument is the stored _source. Empty fields are omitted so they read back as missing.
type esDocument struct {
	Text            string `json:"text,omitempty"`
	Category        string `json:"category,omitempty"`
	Priority        string `json:"priority,omitempty"`
	Summary         string `json:"summary,omitempty"`
	SuggestedAction string `json:"suggested_action,omitempty"`
	Status          string `json:"status,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

func toDocument(c domain.Complaint) esDocument {
	return esDocument{
		Text:            c.Text,
		Category:        c.Category,
		Priority:        c.Priority,
		Summary:         c.Summary,
		SuggestedAction: c.SuggestedAction,
		Status:          c.Status,
		CreatedAt:       c.CreatedAt,
	}
}

func (d esDocument) complaint(id string) domain.Complaint {
	return domain.Complaint{
		ID:              id,
		Text:            d.Text,
		Category:        d.Category,
		Priority:        d.Priority,
		Summary:         d.Summary,
		SuggestedAction: d.SuggestedAction,
		Status:          d.Status,
		CreatedAt:       d.CreatedAt,
	}
}

// ElasticsearchStorage is a Repository over a single Elasticsearch index.
type ElasticsearchStorage struct {
	client *es.Client
	index  string
	now    func() time.Time
}

// NewElasticsearchStorage creates a repository. An empty index uses CollectionName.
func NewElasticsearchStorage(client *es.Client, index string) *ElasticsearchStorage {
	if index == "" {
		index = CollectionName
	}
	return &ElasticsearchStorage{
		client: client,
		index:  index,
		now:    time.Now,
	}
}

// EnsureIndex creates the index with NewComplaintMapping if it does not exist.
func (s *ElasticsearchStorage) EnsureIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return domain.StoreError("check index", err)
	}
	closeBody(res)

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return domain.StoreError("check index", fmt.Errorf("unexpected status %s", res.Status()))
	}

	body, err := json.Marshal(NewComplaintMapping())
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}

	res, err = s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return domain.StoreError("create index", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return domain.StoreError("create index", responseError(res))
	}
	return nil
}

// Add indexes c with an auto-generated id.
func (s *ElasticsearchStorage) Add(ctx context.Context, c domain.Complaint) (string, error) {
	c = domain.PrepareForWrite(c, s.now())

	body, err := json.Marshal(toDocument(c))
	if err != nil {
		return "", fmt.Errorf("marshal complaint: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithRefresh(refreshWaitFor),
	)
	if err != nil {
		return "", domain.StoreError("index complaint", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return "", domain.StoreError("index complaint", responseError(res))
	}

	var indexed struct {
		ID string `json:"_id"`
	}
	if err = json.NewDecoder(res.Body).Decode(&indexed); err != nil {
		return "", domain.StoreError("decode index response", err)
	}
	return indexed.ID, nil
}

// GetAll returns every complaint, normalized, oldest first.
func (s *ElasticsearchStorage) GetAll(ctx context.Context) ([]domain.Complaint, error) {
	items, err := s.search(ctx, "get all", matchAll())
	if err != nil {
		return nil, err
	}
	return domain.NormalizeAll(items), nil
}

// Find returns stored complaints matching every filter with term queries.
func (s *ElasticsearchStorage) Find(ctx context.Context, filters domain.Filters) ([]domain.Complaint, error) {
	pairs := filters.Pairs()
	if len(pairs) == 0 {
		return s.search(ctx, "find", matchAll())
	}

	terms := make([]map[string]any, 0, len(pairs))
	for _, p := range pairs {
		terms = append(terms, map[string]any{
			"term": map[string]any{string(p.Field): p.Value},
		})
	}
	return s.search(ctx, "find", map[string]any{
		"bool": map[string]any{"filter": terms},
	})
}

func matchAll() map[string]any {
	return map[string]any{"match_all": map[string]any{}}
}

func (s *ElasticsearchStorage) search(ctx context.Context, op string, q map[string]any) ([]domain.Complaint, error) {
	body, err := json.Marshal(map[string]any{
		"query": q,
		"size":  maxScanSize,
		"sort": []map[string]any{
			{"created_at": map[string]any{"order": "asc", "unmapped_type": "date", "missing": "_first"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, domain.StoreError(op, err)
	}
	defer closeBody(res)

	// A missing index is an empty collection.
	if res.StatusCode == http.StatusNotFound {
		return []domain.Complaint{}, nil
	}
	if res.IsError() {
		return nil, domain.StoreError(op, responseError(res))
	}

	var result struct {
		Hits struct {
			Hits []struct {
				ID     string     `json:"_id"`
				Source esDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err = json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, domain.StoreError("decode search response", err)
	}

	items := make([]domain.Complaint, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		items = append(items, hit.Source.complaint(hit.ID))
	}
	return items, nil
}

// UpdateField sends a partial document update for one mutable field.
func (s *ElasticsearchStorage) UpdateField(ctx context.Context, id string, field domain.Field, value string) error {
	if err := CheckUpdate(id, field); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"doc": map[string]string{string(field): value},
	})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	res, err := s.client.Update(
		s.index,
		id,
		bytes.NewReader(body),
		s.client.Update.WithContext(ctx),
		s.client.Update.WithRefresh(refreshWaitFor),
	)
	if err != nil {
		return domain.StoreError("update complaint", err)
	}
	defer closeBody(res)

	if res.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if res.IsError() {
		return domain.StoreError("update complaint", responseError(res))
	}
	return nil
}

// Delete removes id. A 404 is treated as success.
func (s *ElasticsearchStorage) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	res, err := s.client.Delete(
		s.index,
		id,
		s.client.Delete.WithContext(ctx),
		s.client.Delete.WithRefresh(refreshWaitFor),
	)
	if err != nil {
		return domain.StoreError("delete complaint", err)
	}
	defer closeBody(res)

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return domain.StoreError("delete complaint", responseError(res))
	}
	return nil
}

// Aggregate counts complaints with terms aggregations. Missing values count
// towards the normalized default buckets.
func (s *ElasticsearchStorage) Aggregate(ctx context.Context) (domain.Stats, error) {
	body, err := json.Marshal(map[string]any{
		"size":             0,
		"track_total_hits": true,
		"aggs": map[string]any{
			"by_category": termsAgg(domain.FieldCategory, domain.DefaultCategory),
			"by_priority": termsAgg(domain.FieldPriority, domain.DefaultPriority),
		},
	})
	if err != nil {
		return domain.Stats{}, fmt.Errorf("marshal aggregation: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return domain.Stats{}, domain.StoreError("aggregate", err)
	}
	defer closeBody(res)

	if res.StatusCode == http.StatusNotFound {
		return domain.NewStats(), nil
	}
	if res.IsError() {
		return domain.Stats{}, domain.StoreError("aggregate", responseError(res))
	}

	type buckets struct {
		Buckets []struct {
			Key      string `json:"key"`
			DocCount int    `json:"doc_count"`
		} `json:"buckets"`
	}
	var result struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
		} `json:"hits"`
		Aggregations struct {
			ByCategory buckets `json:"by_category"`
			ByPriority buckets `json:"by_priority"`
		} `json:"aggregations"`
	}
	if err = json.NewDecoder(res.Body).Decode(&result); err != nil {
		return domain.Stats{}, domain.StoreError("decode aggregation", err)
	}

	stats := domain.NewStats()
	stats.Total = result.Hits.Total.Value
	for _, b := range result.Aggregations.ByCategory.Buckets {
		stats.ByCategory[defaultIfBlank(b.Key, domain.DefaultCategory)] += b.DocCount
	}
	for _, b := range result.Aggregations.ByPriority.Buckets {
		stats.ByPriority[defaultIfBlank(b.Key, domain.DefaultPriority)] += b.DocCount
	}
	return stats, nil
}

func termsAgg(field domain.Field, missing string) map[string]any {
	return map[string]any{
		"terms": map[string]any{
			"field":   string(field),
			"missing": missing,
			"size":    aggregationBucketLimit,
		},
	}
}

func defaultIfBlank(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Ping checks cluster reachability.
func (s *ElasticsearchStorage) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return domain.StoreError("ping", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return domain.StoreError("ping", responseError(res))
	}
	return nil
}

func responseError(res *esapi.Response) error {
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("elasticsearch returned [%s]: %s", res.Status(), string(body))
}

func closeBody(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_ = res.Body.Close()
	}
}
