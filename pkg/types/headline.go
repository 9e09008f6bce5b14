// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Headline is one article as returned by a news provider. Only the fields
// the trend fetcher consumes are kept.
type Headline struct {
	// Title is the article headline.
	Title string `json:"title"`

	// Source is the publishing outlet's display name.
	Source string `json:"source"`

	// PublishedAt is the publication timestamp. Providers return RFC 3339
	// or similar; only the ISO date prefix (YYYY-MM-DD) is parsed.
	PublishedAt string `json:"published_at"`
}
