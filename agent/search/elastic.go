package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
)

const defaultSize = 3

// Config is read with the ELASTIC prefix. An empty Seed gives a fresh random
// order on every search.
type Config struct {
	Addresses []string `default:"http://localhost:9200" validate:"min=1"`
	Username  string
	Password  string
	Index     string `default:"restaurants" validate:"required"`
	Size      int    `default:"3" validate:"min=1"`
	Seed      string
}

type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Document is the searchable part of a restaurant; the catalog holds the rest.
type Document struct {
	ID      string `json:"id"`
	Cuisine string `json:"cuisine"`
	Name    string `json:"name,omitempty"`
}

func NewClient(cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("init elasticsearch client: %w", err)
	}
	return client, nil
}

// Index searches and loads restaurant documents in one Elasticsearch index.
type Index struct {
	client *elasticsearch.Client
	name   string
	size   int
	seed   string
}

func NewIndex(client *elasticsearch.Client, cfg Config) (*Index, error) {
	if client == nil {
		return nil, errors.New("elasticsearch client is required")
	}
	name := strings.TrimSpace(cfg.Index)
	if name == "" {
		return nil, errors.New("index name is required")
	}
	size := cfg.Size
	if size <= 0 {
		size = defaultSize
	}
	return &Index{client: client, name: name, size: size, seed: strings.TrimSpace(cfg.Seed)}, nil
}

// EnsureIndex creates the index with a keyword-friendly cuisine mapping when
// it does not exist yet.
func (i *Index) EnsureIndex(ctx context.Context) error {
	existsRes, err := i.client.Indices.Exists(
		[]string{i.name},
		i.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index existence: %w", err)
	}
	defer existsRes.Body.Close()

	if existsRes.StatusCode != http.StatusNotFound {
		if existsRes.IsError() {
			resp, _ := io.ReadAll(existsRes.Body)
			return fmt.Errorf("index existence status %s: %s", existsRes.Status(), strings.TrimSpace(string(resp)))
		}
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":      map[string]any{"type": "keyword"},
				"cuisine": map[string]any{"type": "text"},
				"name":    map[string]any{"type": "text"},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal index definition: %w", err)
	}

	createRes, err := i.client.Indices.Create(
		i.name,
		i.client.Indices.Create.WithContext(ctx),
		i.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		resp, _ := io.ReadAll(createRes.Body)
		return fmt.Errorf("create index status %s: %s", createRes.Status(), strings.TrimSpace(string(resp)))
	}
	return nil
}

// IndexRestaurant upserts doc under its id.
func (i *Index) IndexRestaurant(ctx context.Context, doc Document) error {
	if strings.TrimSpace(doc.ID) == "" {
		return errors.New("document id is required")
	}
	body, err := json.Marshal(map[string]any{
		"doc":           doc,
		"doc_as_upsert": true,
	})
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	res, err := i.client.Update(i.name, doc.ID, bytes.NewReader(body), i.client.Update.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		resp, _ := io.ReadAll(res.Body)
		return fmt.Errorf("upsert document %s status %s: %s", doc.ID, res.Status(), strings.TrimSpace(string(resp)))
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID    string  `json:"_id"`
			Score float64 `json:"_score"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns up to the configured number of restaurant ids matching
// cuisine in random order.
func (i *Index) Search(ctx context.Context, cuisine string) ([]Hit, error) {
	cuisine = strings.TrimSpace(cuisine)
	if cuisine == "" {
		return nil, errors.New("cuisine is required")
	}

	body, err := json.Marshal(i.query(cuisine))
	if err != nil {
		return nil, fmt.Errorf("marshal search query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.name),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", i.name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		resp, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search status %s: %s", res.Status(), strings.TrimSpace(string(resp)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

func (i *Index) query(cuisine string) map[string]any {
	random := map[string]any{}
	if i.seed != "" {
		random["seed"] = i.seed
		random["field"] = "_seq_no"
	}
	return map[string]any{
		"size": i.size,
		"query": map[string]any{
			"function_score": map[string]any{
				"query": map[string]any{
					"match": map[string]any{
						"cuisine": map[string]any{"query": cuisine},
					},
				},
				"functions": []any{
					map[string]any{"random_score": random},
				},
				"boost_mode": "replace",
			},
		},
	}
}
