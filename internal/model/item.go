package model

import (
	"fmt"
	"strings"
	"time"
)

// Item represents a found-object report moving through moderation.
type Item struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	LocationFound string    `json:"location_found"`
	DateFound     string    `json:"date_found"`
	PhotoFilename string    `json:"photo_filename,omitempty"`
	Status        string    `json:"status"`
	ReporterName  string    `json:"reporter_name"`
	ReporterEmail string    `json:"reporter_email"`
	CreatedAt     time.Time `json:"created_at"`
}

// Item statuses.
const (
	ItemStatusPending  = "pending"
	ItemStatusApproved = "approved"
	ItemStatusClaimed  = "claimed"
	ItemStatusArchived = "archived"
)

// ValidItemStatus reports whether status is one of the item statuses.
func ValidItemStatus(status string) bool {
	switch status {
	case ItemStatusPending, ItemStatusApproved, ItemStatusClaimed, ItemStatusArchived:
		return true
	}
	return false
}

// Field length caps for item submissions.
const (
	MaxTitleLen         = 120
	MaxDescriptionLen   = 2000
	MaxCategoryLen      = 60
	MaxLocationLen      = 120
	MaxDateLen          = 10
	MaxReporterNameLen  = 80
	MaxReporterEmailLen = 120
)

// ItemFields holds the caller-supplied fields of an item submission or edit.
type ItemFields struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	LocationFound string `json:"location_found"`
	DateFound     string `json:"date_found"`
	ReporterName  string `json:"reporter_name"`
	ReporterEmail string `json:"reporter_email"`
}

// Clean trims and caps all fields in place, then checks that every
// required field is non-empty and that date_found is an ISO calendar
// date. Date filtering compares date strings lexicographically, which
// is only correct for strict YYYY-MM-DD values, so malformed dates are
// rejected here rather than stored.
func (f *ItemFields) Clean() error {
	f.Title = clip(f.Title, MaxTitleLen)
	f.Description = clip(f.Description, MaxDescriptionLen)
	f.Category = clip(f.Category, MaxCategoryLen)
	f.LocationFound = clip(f.LocationFound, MaxLocationLen)
	f.DateFound = clip(f.DateFound, MaxDateLen)
	f.ReporterName = clip(f.ReporterName, MaxReporterNameLen)
	f.ReporterEmail = clip(f.ReporterEmail, MaxReporterEmailLen)

	required := []struct {
		name, value string
	}{
		{"title", f.Title},
		{"description", f.Description},
		{"category", f.Category},
		{"location_found", f.LocationFound},
		{"date_found", f.DateFound},
		{"reporter_name", f.ReporterName},
		{"reporter_email", f.ReporterEmail},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	if _, err := time.Parse("2006-01-02", f.DateFound); err != nil {
		return fmt.Errorf("date_found must be a valid YYYY-MM-DD date")
	}

	return nil
}

// clip trims surrounding whitespace and truncates to at most max runes.
func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > max {
		s = strings.TrimSpace(string(runes[:max]))
	}
	return s
}
