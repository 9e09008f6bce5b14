// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trends queries a news provider for recent articles about a
// (domain, role) pair and renders them as classified prose bullets.
// Implements: prd001-trends (R1-R5);
//
//	docs/ARCHITECTURE § Trends.
package trends

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/brief-engine/internal/logging"
	"github.com/pdiddy/brief-engine/pkg/types"
)

var logger = logging.New("trends")

// DefaultArticleCount is the number of articles requested when the caller
// does not override it.
const DefaultArticleCount = 5

// NoNewsMessage is the digest returned when the provider has no articles
// for a query.
const NoNewsMessage = "No recent news found."

// Provider returns recent headlines matching a keyword query, most recent
// first.
type Provider interface {
	Name() string
	Headlines(ctx context.Context, query string, count int) ([]types.Headline, error)
}

// NewProvider builds the provider selected by cfg.Provider. The newsapi
// provider is the default.
func NewProvider(cfg types.TrendsConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "newsapi":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("newsapi provider requires an API key")
		}
		return NewNewsAPIProvider(cfg), nil
	case "rss":
		if len(cfg.Feeds) == 0 {
			return nil, fmt.Errorf("rss provider requires at least one feed URL")
		}
		return NewRSSProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown trends provider %q", cfg.Provider)
	}
}

// Category labels the narrative shape of one headline and selects its
// bullet template.
type Category string

const (
	CategoryStudy    Category = "study"
	CategoryLaunch   Category = "launch"
	CategoryTrending Category = "trending"
	CategoryEvent    Category = "event"
	CategoryGeneric  Category = "generic"
)

// categoryKeywords is scanned in order; the first set containing a match
// wins, so earlier sets outrank later ones.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryStudy, []string{"study", "research", "paper", "report"}},
	{CategoryLaunch, []string{"launch", "released", "introduced", "approved"}},
	{CategoryTrending, []string{"trending", "viral", "popular", "#"}},
	{CategoryEvent, []string{"conference", "webinar", "workshop", "summit", "event"}},
}

// Classify assigns a headline title to the highest-priority category whose
// keywords appear in it, case-insensitive. Titles matching no set are
// generic.
func Classify(title string) Category {
	lower := strings.ToLower(title)
	for _, set := range categoryKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return set.category
			}
		}
	}
	return CategoryGeneric
}

// Fetcher turns provider headlines into an insights digest.
type Fetcher struct {
	Provider Provider

	// Now supplies the digest header timestamp. Tests freeze it; when nil,
	// time.Now is used.
	Now func() time.Time
}

// New returns a Fetcher reading from p.
func New(p Provider) *Fetcher {
	return &Fetcher{Provider: p, Now: time.Now}
}

// Digest fetches up to count articles for the query "{domain} {role}" and
// renders the classified bullet list under an "Insights as of" header.
// An empty provider result yields NoNewsMessage. Provider and date-parse
// failures are returned as errors; Insights is the fail-soft wrapper that
// renders them as text.
func (f *Fetcher) Digest(ctx context.Context, domain, role string, count int) (string, error) {
	if count <= 0 {
		count = DefaultArticleCount
	}

	query := domain + " " + role
	headlines, err := f.Provider.Headlines(ctx, query, count)
	if err != nil {
		return "", fmt.Errorf("fetching headlines: %w", err)
	}
	if len(headlines) == 0 {
		return NoNewsMessage, nil
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Insights as of %s:", now().Format("January 2006"))
	for _, h := range headlines {
		monthYear, err := publishedMonthYear(h.PublishedAt)
		if err != nil {
			return "", fmt.Errorf("parsing publish date of %q: %w", h.Title, err)
		}
		b.WriteString("\n- ")
		b.WriteString(bullet(h, Classify(h.Title), monthYear, domain, role))
	}
	return b.String(), nil
}

// Insights is the fail-soft surface of Digest: any failure is rendered as
// descriptive text, so downstream stages always receive a usable string,
// error text included.
func (f *Fetcher) Insights(ctx context.Context, domain, role string, count int) string {
	digest, err := f.Digest(ctx, domain, role, count)
	if err != nil {
		logger.WithError(err).WithField("domain", domain).Warn("trend fetch failed")
		return fmt.Sprintf("Error fetching trends: %v", err)
	}
	return digest
}

// publishedMonthYear renders the ISO date prefix of a publish timestamp as
// a month and year ("March 2024").
func publishedMonthYear(publishedAt string) (string, error) {
	if len(publishedAt) < 10 {
		return "", fmt.Errorf("timestamp %q is too short for an ISO date", publishedAt)
	}
	t, err := time.Parse("2006-01-02", publishedAt[:10])
	if err != nil {
		return "", err
	}
	return t.Format("January 2006"), nil
}

// bullet renders one classified headline with its category's phrasing.
func bullet(h types.Headline, cat Category, monthYear, domain, role string) string {
	switch cat {
	case CategoryStudy:
		return fmt.Sprintf("A study published in %s in %s demonstrated: %s.", h.Source, monthYear, h.Title)
	case CategoryLaunch:
		return fmt.Sprintf("In %s, %s launched: %s, impacting %s/%s.", monthYear, h.Source, h.Title, domain, role)
	case CategoryTrending:
		return fmt.Sprintf("Trending on social media: %s is gaining attention among %s/%s.", h.Title, domain, role)
	case CategoryEvent:
		return fmt.Sprintf("Upcoming in %s: %s, relevant to %s/%s.", monthYear, h.Title, role, domain)
	default:
		return fmt.Sprintf("%s (%s, %s)", h.Title, h.Source, monthYear)
	}
}
