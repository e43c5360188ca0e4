package jobs

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// ExcludedListings is the content of an exclude file: jobs the user already reviewed.
type ExcludedListings struct {
	Items []*ExcludedListing
}

// ExcludedListing is a single reviewed job.
type ExcludedListing struct {
	ID         string
	URL        string
	Company    string
	ExcludedAt time.Time
}

// ToExcluded converts listings into exclude file entries stamped with now.
func (v *Listings) ToExcluded(now time.Time) *ExcludedListings {
	excluded := &ExcludedListings{}
	for _, l := range v.Items {
		excluded.Items = append(excluded.Items, &ExcludedListing{
			ID:         l.ID,
			URL:        l.URL,
			Company:    l.Company,
			ExcludedAt: now.UTC(),
		})
	}
	return excluded
}

// ExcludedFromFile reads an exclude file. A missing or empty file yields an empty list.
func ExcludedFromFile(path string) (*ExcludedListings, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ExcludedListings{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedListings{}, nil
	}

	var excluded ExcludedListings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds entries whose IDs are not present yet.
func (v *ExcludedListings) Append(s *ExcludedListings) {
	seen := make(map[string]struct{}, len(v.Items))
	for _, item := range v.Items {
		seen[item.ID] = struct{}{}
	}
	for _, item := range s.Items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		v.Items = append(v.Items, item)
	}
}

// IDs returns the excluded job IDs.
func (v *ExcludedListings) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, item := range v.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// ToFile overwrites path with the exclude list.
func (v *ExcludedListings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
