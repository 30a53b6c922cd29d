package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/forayhq/foray/internal/models"
)

const searchTimeout = 20 * time.Second

// SearchService queries a SearXNG-compatible metasearch endpoint.
type SearchService struct {
	baseURL string
	client  *http.Client
}

// NewSearchService creates a SearchService for the given base URL.
func NewSearchService(baseURL string) *SearchService {
	return &SearchService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: searchTimeout},
	}
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search issues a query and returns at most maxResults hits, ranked in the
// order the provider returned them. Results without a URL are dropped.
func (s *SearchService) Search(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json", s.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read path.

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return nil, fmt.Errorf("%w: status %d: %s", models.ErrSearchUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", models.ErrSearchUnavailable, err)
	}

	results := make([]models.SearchResult, 0, maxResults)

	for _, r := range parsed.Results {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}

		results = append(results, models.SearchResult{
			Title:   strings.TrimSpace(r.Title),
			URL:     r.URL,
			Snippet: strings.TrimSpace(r.Content),
			Rank:    len(results) + 1,
		})

		if len(results) >= maxResults {
			break
		}
	}

	return results, nil
}
