// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Implements: prd001-trends R6.1-R6.4 (rss provider);
//
//	docs/ARCHITECTURE § Trends.
package trends

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/brief-engine/pkg/types"
)

// RSSProvider serves headlines from configured feeds, filtered by the
// query terms. It exists for installs without a NewsAPI key.
type RSSProvider struct {
	Parser *gofeed.Parser
	Feeds  []string
}

// NewRSSProvider builds a provider over the configured feed URLs.
func NewRSSProvider(cfg types.TrendsConfig) *RSSProvider {
	parser := gofeed.NewParser()
	if cfg.UserAgent != "" {
		parser.UserAgent = cfg.UserAgent
	}
	return &RSSProvider{Parser: parser, Feeds: cfg.Feeds}
}

// Name returns the provider identifier.
func (p *RSSProvider) Name() string { return "rss" }

// Headlines fetches every configured feed, keeps items whose title or
// description contains any query term (case-insensitive), and returns the
// most recent count items across all feeds. Items without a parseable
// publish date are dropped. A feed that fails to fetch is skipped unless
// nothing else matched, in which case its error is returned.
func (p *RSSProvider) Headlines(ctx context.Context, query string, count int) ([]types.Headline, error) {
	terms := strings.Fields(strings.ToLower(query))

	type dated struct {
		headline types.Headline
		at       time.Time
	}

	var matched []dated
	var lastErr error
	for _, feedURL := range p.Feeds {
		feed, err := p.Parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			logger.WithError(err).WithField("feed", feedURL).Warn("feed fetch failed")
			lastErr = fmt.Errorf("fetching feed %s: %w", feedURL, err)
			continue
		}
		for _, item := range feed.Items {
			if item.PublishedParsed == nil {
				continue
			}
			text := strings.ToLower(item.Title + " " + item.Description)
			if !matchesAny(text, terms) {
				continue
			}
			matched = append(matched, dated{
				headline: types.Headline{
					Title:       item.Title,
					Source:      feed.Title,
					PublishedAt: item.PublishedParsed.Format(time.RFC3339),
				},
				at: *item.PublishedParsed,
			})
		}
	}

	if len(matched) == 0 && lastErr != nil {
		return nil, lastErr
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].at.After(matched[j].at) })
	if count > 0 && len(matched) > count {
		matched = matched[:count]
	}

	headlines := make([]types.Headline, len(matched))
	for i, m := range matched {
		headlines[i] = m.headline
	}
	return headlines, nil
}

// matchesAny reports whether text contains at least one of terms. An empty
// term list matches everything.
func matchesAny(text string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
