package storage_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTransport implements http.RoundTripper for mocking Elasticsearch responses
type mockTransport struct {
	RoundTripFn func(req *http.Request) (*http.Response, error)
	requests    []recordedRequest
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

func (t *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}
	t.requests = append(t.requests, recordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.RawQuery,
		Body:   body,
	})
	return t.RoundTripFn(req)
}

func (t *mockTransport) last() recordedRequest {
	return t.requests[len(t.requests)-1]
}

func esResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"X-Elastic-Product": []string{"Elasticsearch"}},
	}
}

func newESStorage(t *testing.T, fn func(req *http.Request) (*http.Response, error)) (*storage.ElasticsearchStorage, *mockTransport) {
	t.Helper()

	transport := &mockTransport{RoundTripFn: fn}
	client, err := es.NewClient(es.Config{Transport: transport})
	require.NoError(t, err)
	return storage.NewElasticsearchStorage(client, ""), transport
}

func TestElasticsearchStorage_EnsureIndexCreatesMissingIndex(t *testing.T) {
	s, transport := newESStorage(t, func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodHead {
			return esResponse(http.StatusNotFound, ""), nil
		}
		return esResponse(http.StatusOK, `{"acknowledged":true}`), nil
	})

	require.NoError(t, s.EnsureIndex(context.Background()))
	require.Len(t, transport.requests, 2)

	create := transport.last()
	assert.Equal(t, http.MethodPut, create.Method)
	assert.Equal(t, "/complaints", create.Path)

	var mapping storage.ComplaintMapping
	require.NoError(t, json.Unmarshal([]byte(create.Body), &mapping))
	assert.Equal(t, "keyword", mapping.Mappings.Properties.Status.Type)
	assert.Equal(t, "date", mapping.Mappings.Properties.CreatedAt.Type)
}

func TestElasticsearchStorage_EnsureIndexExisting(t *testing.T) {
	s, transport := newESStorage(t, func(*http.Request) (*http.Response, error) {
		return esResponse(http.StatusOK, ""), nil
	})

	require.NoError(t, s.EnsureIndex(context.Background()))
	assert.Len(t, transport.requests, 1)
}

func TestElasticsearchStorage_Add(t *testing.T) {
	s, transport := newESStorage(t, func(*http.Request) (*http.Response, error) {
		return esResponse(http.StatusCreated, `{"_id":"abc123","result":"created"}`), nil
	})

	id, err := s.Add(context.Background(), domain.Complaint{Text: "My bike was stolen", Category: domain.CategoryTheft})
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	req := transport.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/complaints/_doc", req.Path)
	assert.Contains(t, req.Query, "refresh=wait_for")

	var doc map[string]string
	require.NoError(t, json.Unmarshal([]byte(req.Body), &doc))
	assert.Equal(t, domain.CategoryTheft, doc["category"])
	assert.Equal(t, domain.DefaultStatus, doc["status"])
	assert.NotEmpty(t, doc["created_at"])
	assert.NotContains(t, doc, "priority", "empty fields are not stored")
}

const searchHits = `{
  "hits": {
    "total": {"value": 2},
    "hits": [
      {"_id": "1", "_source": {"text": "bike stolen", "category": "Theft", "status": "New", "created_at": "2024-01-01T00:00:00.000000Z"}},
      {"_id": "2", "_source": {"text": "lights out", "priority": "High"}}
    ]
  }
}`

func TestElasticsearchStorage_GetAllNormalizes(t *testing.T) {
	s, transport := newESStorage(t, func(*http.Request) (*http.Response, error) {
		return esResponse(http.StatusOK, searchHits), nil
	})

	items, err := s.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, domain.CategoryTheft, items[0].Category)
	assert.Equal(t, domain.DefaultPriority, items[0].Priority)
	assert.Equal(t, domain.DefaultCategory, items[1].Category)
	assert.Equal(t, domain.DefaultStatus, items[1].Status)

	assert.Equal(t, "/complaints/_search", transport.last().Path)
	assert.Contains(t, transport.last().Body, "match_all")
}

func TestElasticsearchStorage_GetAllMissingIndexIsEmpty(t *testing.T) {
	s, _ := newESStorage(t, func(*http.Request) (*http.Response, error) {
		return esResponse(http.StatusNotFound, `{"error":{"type":"index_not_found_exception"}}`), nil
	})

	items, err := s.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestElasticsearchStorage_FindBuildsTermFilters(t *testing.T) {
	s, transport := newESStorage(t, func(*http.Request) (*http.Response, error) {
		return esResponse(http.StatusOK, searchHits), nil
	})

	items, err := s.Find(context.Background(), domain.Filters{Status: "New", Category: "Theft"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Empty(t, items[1].Category, "find returns records as stored")

	var body struct {
		Query struct {
			Bool struct {
				Filter []map[string]map[string]string `json:"filter"`
			} `json:"bool"`
		} `json:"query"`
	}
	require.NoError(t, json.Unmarshal([]byte(transport.last().Body), &body))
	require.Len(t, body.Query.Bool.Filter, 2)
	assert.Equal(t, "New", body.Query.Bool.Filter[0]["term"]["status"])
	assert.Equal(t, "Theft", body.Query.Bool.Filter[1]["term"]["category"])
}

func TestElasticsearchStorage_UpdateField(t *testing.T) {
	s, transport := newESStorage(t, func(*http.Request) (*http.Response, error) {
		return esResponse(http.StatusOK, `{"result":"updated"}`), nil
	})

	require.NoError(t, s.UpdateField(context.Background(), "abc", domain.FieldStatus, "Resolved"))

	req := transport.last()
	assert.Equal(t, "/complaints/_update/abc", req.Path)
	assert.JSONEq(t, `{"doc":{"status":"Resolved"}}`, req.Body)
}

func TestElasticsearchStorage_UpdateFieldNotFound(t *testing.T) {
	s, _ := newESStorage(t, func(*http.Request) (*http.Response, error) {
		return esResponse(http.StatusNotFound, `{"error":{"type":"document_missing_exception"}}`), nil
	})

	err := s.UpdateField(context.Background(), "missing", domain.FieldStatus, "Resolved")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestElasticsearchStorage_UpdateFieldRejectsImmutable(t *testing.T) {
	s, transport := newESStorage(t, func(*http.Request) (*http.Response, error) {
		return esResponse(http.StatusOK, `{}`), nil
	})

	err := s.UpdateField(context.Background(), "abc", domain.FieldText, "rewritten")
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, transport.requests)
}

func TestElasticsearchStorage_DeleteIgnoresNotFound(t *testing.T) {
	s, transport := newESStorage(t, func(*http.Request) (*http.Response, error) {
		return esResponse(http.StatusNotFound, `{"result":"not_found"}`), nil
	})

	require.NoError(t, s.Delete(context.Background(), "gone"))
	assert.Equal(t, http.MethodDelete, transport.last().Method)
	assert.Equal(t, "/complaints/_doc/gone", transport.last().Path)
}

func TestElasticsearchStorage_Aggregate(t *testing.T) {
	s, transport := newESStorage(t, func(*http.Request) (*http.Response, error) {
		return esResponse(http.StatusOK, `{
  "hits": {"total": {"value": 5}},
  "aggregations": {
    "by_category": {"buckets": [{"key": "Theft", "doc_count": 2}, {"key": "Unknown", "doc_count": 1}, {"key": "", "doc_count": 1}, {"key": "  ", "doc_count": 1}]},
    "by_priority": {"buckets": [{"key": "Medium", "doc_count": 3}, {"key": " ", "doc_count": 1}, {"key": "High", "doc_count": 1}]}
  }
}`), nil
	})

	stats, err := s.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, map[string]int{"Theft": 2, "Unknown": 3}, stats.ByCategory)
	assert.Equal(t, map[string]int{"Medium": 4, "High": 1}, stats.ByPriority)
	assert.True(t, strings.Contains(transport.last().Body, `"missing":"Unknown"`))
}

func TestElasticsearchStorage_ServerErrorIsStoreUnavailable(t *testing.T) {
	s, _ := newESStorage(t, func(*http.Request) (*http.Response, error) {
		return esResponse(http.StatusInternalServerError, `{"error":"boom"}`), nil
	})

	_, err := s.GetAll(context.Background())
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestElasticsearchStorage_TransportErrorIsStoreUnavailable(t *testing.T) {
	s, _ := newESStorage(t, func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	require.ErrorIs(t, s.Ping(context.Background()), domain.ErrStoreUnavailable)
}
