package indexer

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	catalogx "github.com/rayadhanush/Dining-concierge-bot/agent/catalog"
	searchx "github.com/rayadhanush/Dining-concierge-bot/agent/search"
)

type fakeCatalog struct {
	rows      map[string]catalogx.Restaurant
	created   bool
	insertErr map[string]error
}

func newFakeCatalog(existing ...catalogx.Restaurant) *fakeCatalog {
	c := &fakeCatalog{rows: map[string]catalogx.Restaurant{}, insertErr: map[string]error{}}
	for _, r := range existing {
		c.rows[r.ID] = r
	}
	return c
}

func (c *fakeCatalog) CreateTable(ctx context.Context) error {
	c.created = true
	return nil
}

func (c *fakeCatalog) InsertIfAbsent(ctx context.Context, r *catalogx.Restaurant) (bool, error) {
	if err := c.insertErr[r.ID]; err != nil {
		return false, err
	}
	if _, ok := c.rows[r.ID]; ok {
		return false, nil
	}
	c.rows[r.ID] = *r
	return true, nil
}

func (c *fakeCatalog) Each(ctx context.Context, pageSize int, fn func(catalogx.Restaurant) error) error {
	ids := make([]string, 0, len(c.rows))
	for id := range c.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := fn(c.rows[id]); err != nil {
			return err
		}
	}
	return nil
}

type fakeIndex struct {
	ensured bool
	failIDs map[string]bool
	docs    []searchx.Document
}

func (i *fakeIndex) EnsureIndex(ctx context.Context) error {
	i.ensured = true
	return nil
}

func (i *fakeIndex) IndexRestaurant(ctx context.Context, doc searchx.Document) error {
	if i.failIDs[doc.ID] {
		return errors.New("index rejected document")
	}
	i.docs = append(i.docs, doc)
	return nil
}

const exportJSON = `[
  {"id":"r1","Name":"Luigi's","Address":"1 Main St","Cuisine":"Italian","Coordinates":{"latitude":40.7,"longitude":-73.9},"Rating":4.5,"ReviewCount":120,"ZipCode":"10001"},
  {"id":"r2","Name":"Dosa Hut","Address":"2 Main St","Cuisine":"indian","Coordinates":{"latitude":40.7,"longitude":-73.9},"Rating":4.1,"ReviewCount":80,"ZipCode":"10002"},
  {"id":"r3","Name":"","Cuisine":"indian"}
]`

func TestLoaderImportsAndIndexes(t *testing.T) {
	t.Parallel()

	catalog := newFakeCatalog(catalogx.Restaurant{ID: "r2", Name: "Dosa Hut", Cuisine: "indian"})
	index := &fakeIndex{}
	l, err := NewLoader(catalog, index, 10)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	stats, err := l.Run(context.Background(), strings.NewReader(exportJSON))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !catalog.created || !index.ensured {
		t.Fatal("expected table and index to be prepared")
	}
	if stats.Imported != 1 || stats.Skipped != 1 || stats.Indexed != 2 || stats.Failed != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if index.docs[0].ID != "r1" || index.docs[0].Cuisine != "italian" || index.docs[0].Name != "Luigi's" {
		t.Fatalf("first doc = %+v", index.docs[0])
	}
}

func TestLoaderSkipsFailedDocuments(t *testing.T) {
	t.Parallel()

	catalog := newFakeCatalog(
		catalogx.Restaurant{ID: "a", Cuisine: "chinese"},
		catalogx.Restaurant{ID: "b", Cuisine: "chinese"},
	)
	catalog.insertErr["r1"] = errors.New("constraint")
	index := &fakeIndex{failIDs: map[string]bool{"a": true}}
	l, err := NewLoader(catalog, index, 0)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	stats, err := l.Run(context.Background(), strings.NewReader(exportJSON))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// r1 fails to insert, r2 is new, then a fails to index.
	if stats.Imported != 1 || stats.Failed != 2 || stats.Indexed != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestLoaderWithoutImport(t *testing.T) {
	t.Parallel()

	catalog := newFakeCatalog(catalogx.Restaurant{ID: "x", Cuisine: "mexican"})
	index := &fakeIndex{}
	l, err := NewLoader(catalog, index, 5)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	stats, err := l.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Imported != 0 || stats.Indexed != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	if _, err := l.Run(context.Background(), strings.NewReader("{broken")); err == nil {
		t.Fatal("expected decode error for a broken import file")
	}
}

func TestNewLoaderRequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := NewLoader(nil, &fakeIndex{}, 1); err == nil {
		t.Fatal("expected error for nil catalog")
	}
	if _, err := NewLoader(newFakeCatalog(), nil, 1); err == nil {
		t.Fatal("expected error for nil index")
	}
}
