package models

import "time"

// Template holds named style parameters for assembly. Templates are
// immutable once an artifact references them; updates create new rows.
type Template struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FontFamily string    `json:"font_family"`
	FontSize   string    `json:"font_size"`   // CSS length, e.g. "12pt"
	LineHeight float64   `json:"line_height"`
	MaxWidth   int       `json:"max_width"`   // px
	Alignment  string    `json:"alignment"`   // "left" | "justify" | "center"
	CreatedAt  time.Time `json:"created_at"`
}
