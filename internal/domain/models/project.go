package models

import "time"

// Project is a manuscript: an ordered collection of chapters plus the
// publishing metadata needed to produce a distributable artifact.
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Genre     string    `json:"genre,omitempty"`
	Language  string    `json:"language"`
	CoverURL  *string   `json:"cover_url,omitempty"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MetadataVersion identifies the current wire shape of Metadata.
// Stored alongside the JSONB column so older rows can be migrated
// explicitly instead of being passed around as untyped blobs.
const MetadataVersion = 1

// Metadata holds optional publishing metadata. It is parsed once at the
// system boundary; components only ever see this struct.
type Metadata struct {
	Version       int        `json:"version"`
	Identifier    string     `json:"identifier,omitempty"` // ISBN or internal code
	AuthorName    string     `json:"author_name,omitempty"`
	PublisherName string     `json:"publisher_name,omitempty"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	Categories    []string   `json:"categories,omitempty"` // BISAC-style codes
	Keywords      []string   `json:"keywords,omitempty"`
	SeriesName    string     `json:"series_name,omitempty"`
	SeriesNumber  int        `json:"series_number,omitempty"`
	Price         *Price     `json:"price,omitempty"`
	AgeRangeMin   int        `json:"age_range_min,omitempty"`
	AgeRangeMax   int        `json:"age_range_max,omitempty"`
	DRMEnabled    bool       `json:"drm_enabled,omitempty"`
}

// Price is an amount in minor units plus an ISO 4217 currency code.
type Price struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
