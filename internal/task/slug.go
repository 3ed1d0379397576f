package task

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	maxSlugLength = 50
	shortIDLength = 8
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// NewID returns a fresh random task ID.
func NewID() string {
	return uuid.NewString()
}

// ShortID returns the leading characters of id used in filenames and listings.
func ShortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

// GenerateSlug converts task text to a filename-friendly slug.
func GenerateSlug(text string) string {
	slug := strings.ToLower(text)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxSlugLength {
		// Truncate at word boundary.
		truncated := slug[:maxSlugLength]
		if slug[maxSlugLength] != '-' {
			if idx := strings.LastIndex(truncated, "-"); idx > 0 {
				truncated = truncated[:idx]
			}
		}
		slug = strings.TrimRight(truncated, "-")
	}

	if slug == "" {
		slug = "task"
	}
	return slug
}

// GenerateFilename creates a task filename from an ID and slug.
func GenerateFilename(id, slug string) string {
	return ShortID(id) + "-" + slug + ".md"
}
