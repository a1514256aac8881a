package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
)

func newTestIndex(t *testing.T, handler http.HandlerFunc, cfg Config) *Index {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	idx, err := NewIndex(client, cfg)
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	return idx
}

func TestSearchSendsRandomFunctionScoreQuery(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotQuery map[string]any
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotQuery); err != nil {
			t.Errorf("decode query: %v", err)
		}
		fmt.Fprint(w, `{"hits":{"hits":[{"_id":"r1","_score":0.9},{"_id":"r2","_score":0.5}]}}`)
	}, Config{Index: "restaurants", Seed: "4"})

	hits, err := idx.Search(context.Background(), "italian")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 || hits[0].ID != "r1" || hits[1].Score != 0.5 {
		t.Fatalf("hits = %+v", hits)
	}
	if gotPath != "/restaurants/_search" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotQuery["size"] != float64(3) {
		t.Fatalf("size = %v, want 3", gotQuery["size"])
	}
	raw, _ := json.Marshal(gotQuery)
	for _, part := range []string{`"random_score":{"field":"_seq_no","seed":"4"}`, `"cuisine":{"query":"italian"}`} {
		if !strings.Contains(string(raw), part) {
			t.Fatalf("query %s missing %s", raw, part)
		}
	}
}

func TestSearchWithoutSeedSendsEmptyRandomScore(t *testing.T) {
	t.Parallel()

	var raw []byte
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		var q map[string]any
		_ = json.NewDecoder(r.Body).Decode(&q)
		raw, _ = json.Marshal(q)
		fmt.Fprint(w, `{"hits":{"hits":[]}}`)
	}, Config{Index: "restaurants", Size: 5})

	hits, err := idx.Search(context.Background(), "klingon")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("hits = %+v, want none", hits)
	}
	if !strings.Contains(string(raw), `"random_score":{}`) || !strings.Contains(string(raw), `"size":5`) {
		t.Fatalf("query = %s", raw)
	}
}

func TestSearchReportsErrorStatus(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"bad query"}`)
	}, Config{Index: "restaurants"})

	if _, err := idx.Search(context.Background(), "italian"); err == nil || !strings.Contains(err.Error(), "bad query") {
		t.Fatalf("Search() error = %v, want status error", err)
	}
}

func TestEnsureIndexCreatesMissingIndex(t *testing.T) {
	t.Parallel()

	var methods []string
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			fmt.Fprint(w, `{"acknowledged":true}`)
		}
	}, Config{Index: "restaurants"})

	if err := idx.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("EnsureIndex() error = %v", err)
	}
	if strings.Join(methods, ",") != "HEAD,PUT" {
		t.Fatalf("methods = %v, want HEAD then PUT", methods)
	}
}

func TestIndexRestaurantUpserts(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]any
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"result":"created"}`)
	}, Config{Index: "restaurants"})

	err := idx.IndexRestaurant(context.Background(), Document{ID: "abc", Cuisine: "italian", Name: "Lupa"})
	if err != nil {
		t.Fatalf("IndexRestaurant() error = %v", err)
	}
	if gotPath != "/restaurants/_update/abc" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody["doc_as_upsert"] != true {
		t.Fatalf("body = %v", gotBody)
	}
}
