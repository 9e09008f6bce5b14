// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/brief-engine/internal/httputil"
	"github.com/pdiddy/brief-engine/pkg/types"
)

// newsAPIBase is the NewsAPI "everything" search endpoint. Declared as a
// var so tests can substitute an httptest server.
var newsAPIBase = "https://newsapi.org/v2/everything"

const defaultHTTPTimeout = 10 * time.Second

// NewsAPIProvider queries NewsAPI for recent English-language articles.
type NewsAPIProvider struct {
	Client     *http.Client
	APIKey     string
	UserAgent  string
	MaxRetries int
}

// NewNewsAPIProvider builds a provider from the trends configuration.
func NewNewsAPIProvider(cfg types.TrendsConfig) *NewsAPIProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &NewsAPIProvider{
		Client:     &http.Client{Timeout: timeout},
		APIKey:     cfg.APIKey,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
}

// Name returns the provider identifier.
func (p *NewsAPIProvider) Name() string { return "newsapi" }

// Headlines queries the everything endpoint sorted by publish date and
// maps each article to a Headline. Rate-limited requests are retried
// through httputil.DoWithRetry.
func (p *NewsAPIProvider) Headlines(ctx context.Context, query string, count int) ([]types.Headline, error) {
	if query == "" {
		return nil, fmt.Errorf("empty NewsAPI query")
	}

	params := url.Values{
		"q":        {query},
		"language": {"en"},
		"sortBy":   {"publishedAt"},
		"pageSize": {strconv.Itoa(count)},
	}
	reqURL := newsAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Api-Key", p.APIKey)
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, p.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("NewsAPI request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NewsAPI returned HTTP %d", resp.StatusCode)
	}

	var nar newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&nar); err != nil {
		return nil, fmt.Errorf("parsing NewsAPI response: %w", err)
	}
	if nar.Status != "ok" {
		return nil, fmt.Errorf("NewsAPI error %s: %s", nar.Code, nar.Message)
	}

	headlines := make([]types.Headline, 0, len(nar.Articles))
	for _, a := range nar.Articles {
		headlines = append(headlines, types.Headline{
			Title:       a.Title,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}
	return headlines, nil
}

// NewsAPI JSON structures.
type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source      newsAPISource `json:"source"`
	Title       string        `json:"title"`
	PublishedAt string        `json:"publishedAt"`
}

type newsAPISource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
