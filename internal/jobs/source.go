package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
)

// Source lists job postings.
type Source interface {
	List(ctx context.Context) (*Listings, error)
}

// FileSource reads listings from a JSON or YAML file.
type FileSource struct {
	path   string
	logger *zap.Logger
}

// NewFileSource returns a source backed by path.
func NewFileSource(path string, logger *zap.Logger) *FileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{path: path, logger: logger}
}

// List reads and validates all listings from the file.
func (s *FileSource) List(ctx context.Context) (*Listings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading jobs file: %w", err)
	}

	var raw any
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing jobs file %s: %w", s.path, err)
	}

	listings, err := Decode(raw, filepath.Base(s.path))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("jobs loaded from file", zap.String("path", s.path), zap.Int("count", listings.Len()))
	return listings, nil
}

// Decode converts generic decoded JSON/YAML into validated listings. Both a top-level
// list and an object with a "jobs" or "items" list are accepted. Skill lists may be
// given as comma separated strings. Listings without a source get defaultSource.
func Decode(raw any, defaultSource string) (*Listings, error) {
	items, err := unwrapItems(raw)
	if err != nil {
		return nil, err
	}

	listings := &Listings{Items: make([]*Listing, 0, len(items))}
	for i, item := range items {
		listing := &Listing{}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
			WeaklyTypedInput: true,
			Result:           listing,
		})
		if err != nil {
			return nil, fmt.Errorf("creating decoder: %w", err)
		}

		if err := decoder.Decode(item); err != nil {
			return nil, fmt.Errorf("decoding job #%d: %w", i, err)
		}

		listing.Normalize()
		if listing.Source == "" {
			listing.Source = defaultSource
		}

		if err := listing.Validate(); err != nil {
			return nil, fmt.Errorf("job #%d: %w", i, err)
		}

		listings.Items = append(listings.Items, listing)
	}

	return listings, nil
}

func unwrapItems(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range []string{"jobs", "items"} {
			if items, ok := v[key].([]any); ok {
				return items, nil
			}
		}
		return nil, fmt.Errorf("jobs document has no jobs or items list")
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected jobs document type %T", raw)
	}
}

// StaticSource serves a fixed list of listings.
type StaticSource struct {
	Listings []Listing
}

// List returns copies of the configured listings.
func (s StaticSource) List(ctx context.Context) (*Listings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Listings{Items: make([]*Listing, 0, len(s.Listings))}
	for i := range s.Listings {
		l := s.Listings[i]
		out.Items = append(out.Items, &l)
	}
	return out, nil
}
