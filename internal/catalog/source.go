package catalog

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/citymunch/slack-bot/internal/model"
	"github.com/citymunch/slack-bot/pkg/citymunch"
)

// Source loads a complete catalog snapshot.
type Source interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// APISource loads the catalog from the partner search-hints endpoint.
type APISource struct {
	client citymunch.Client
}

// NewAPISource creates a Source backed by client.
func NewAPISource(client citymunch.Client) *APISource {
	return &APISource{client: client}
}

// Fetch implements Source.
func (s *APISource) Fetch(ctx context.Context) (*Snapshot, error) {
	hints, err := s.client.SearchHints(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: fetch search hints")
	}

	snap := &Snapshot{
		CuisineTypes: make([]string, 0, len(hints.CuisineTypes)),
		Restaurants:  make([]model.RestaurantRef, 0, len(hints.Restaurants)),
	}
	for _, ct := range hints.CuisineTypes {
		snap.CuisineTypes = append(snap.CuisineTypes, ct.Name)
	}
	for _, r := range hints.Restaurants {
		snap.Restaurants = append(snap.Restaurants, model.RestaurantRef{ID: r.ID, Name: r.Name})
	}
	return snap, nil
}

// FileSource loads a fixed snapshot from a YAML file. Useful for local
// development and demos without partner credentials.
type FileSource struct {
	path string
}

// NewFileSource creates a Source reading path on every fetch.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch implements Source.
func (s *FileSource) Fetch(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", s.path)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", s.path)
	}
	return &snap, nil
}

// WriteFile stores snap as YAML at path, in the format FileSource reads.
func WriteFile(path string, snap *Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "catalog: encode snapshot")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "catalog: write %s", path)
	}
	return nil
}
