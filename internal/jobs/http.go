package jobs

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	defaultTimeout  = 30 * time.Second
)

// HTTPSource fetches listings from a JSON endpoint.
type HTTPSource struct {
	HTTPClient *http.Client
	UserAgent  string

	url    string
	token  string
	logger *zap.Logger
}

// NewHTTPSource returns a source that GETs listings from endpoint. A non-empty token
// is sent as a bearer token.
func NewHTTPSource(endpoint, token string, logger *zap.Logger) (*HTTPSource, error) {
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid jobs url %q: %w", endpoint, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPSource{
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		UserAgent:  "jobfit",
		url:        endpoint,
		token:      token,
		logger:     logger,
	}, nil
}

// List fetches and validates listings.
func (s *HTTPSource) List(ctx context.Context) (*Listings, error) {
	var raw any
	if err := s.getJSON(ctx, &raw); err != nil {
		return nil, fmt.Errorf("fetching jobs: %w", err)
	}

	host := s.url
	if u, err := url.Parse(s.url); err == nil {
		host = u.Host
	}

	listings, err := Decode(raw, host)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("jobs fetched", zap.String("url", s.url), zap.Int("count", listings.Len()))
	return listings, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("User-Agent", s.UserAgent)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	s.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return json.NewDecoder(reader).Decode(target)
}
