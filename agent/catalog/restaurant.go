package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type Restaurant struct {
	bun.BaseModel `bun:"table:restaurants,alias:r"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Address     string    `bun:"address" json:"address"`
	Cuisine     string    `bun:"cuisine,notnull" json:"cuisine"`
	Latitude    float64   `bun:"latitude" json:"latitude"`
	Longitude   float64   `bun:"longitude" json:"longitude"`
	Rating      float64   `bun:"rating" json:"rating"`
	ReviewCount int       `bun:"review_count" json:"review_count"`
	ZipCode     string    `bun:"zip_code" json:"zip_code"`
	InsertedAt  time.Time `bun:"inserted_at,nullzero,notnull,default:current_timestamp" json:"inserted_at"`
}

// importRecord is the shape written by the directory export.
type importRecord struct {
	ID          string `json:"id"`
	Name        string `json:"Name"`
	Address     string `json:"Address"`
	Cuisine     string `json:"Cuisine"`
	Coordinates struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"Coordinates"`
	Rating      float64 `json:"Rating"`
	ReviewCount int     `json:"ReviewCount"`
	ZipCode     string  `json:"ZipCode"`
}

// DecodeImport reads a JSON array of exported restaurants. Entries without an
// id, name or cuisine are dropped.
func DecodeImport(r io.Reader) ([]Restaurant, error) {
	var records []importRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode restaurant import: %w", err)
	}

	out := make([]Restaurant, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.ID) == "" || strings.TrimSpace(rec.Name) == "" || strings.TrimSpace(rec.Cuisine) == "" {
			continue
		}
		out = append(out, Restaurant{
			ID:          rec.ID,
			Name:        rec.Name,
			Address:     rec.Address,
			Cuisine:     strings.ToLower(strings.TrimSpace(rec.Cuisine)),
			Latitude:    rec.Coordinates.Latitude,
			Longitude:   rec.Coordinates.Longitude,
			Rating:      rec.Rating,
			ReviewCount: rec.ReviewCount,
			ZipCode:     rec.ZipCode,
		})
	}
	return out, nil
}
