package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default categories. The selectable set is always these plus whatever
// categories the current collection references.
const (
	CategoryLearning = "learning"
	CategoryAI       = "ai"
	CategoryTools    = "tools"
	CategoryDesign   = "design"
	CategoryOther    = "other"

	// CategoryAll is the filter sentinel that lets every category through.
	CategoryAll = "all"
)

// DefaultCategories lists the seeded categories in display order.
var DefaultCategories = []string{
	CategoryLearning,
	CategoryAI,
	CategoryTools,
	CategoryDesign,
	CategoryOther,
}

// ResourceItem is one directory entry.
//
// JSON field names are the storage format and must not change.
type ResourceItem struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned at creation and never reused.
	ID string `json:"id"`

	// CreatedAt breaks ranking ties; strictly increasing inside a collection.
	CreatedAt time.Time `json:"createdAt"`

	// ─────────────────────────────
	// User-editable description
	// ─────────────────────────────

	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`

	// ─────────────────────────────
	// Usage & ranking
	// ─────────────────────────────

	// ClickCount is incremented once per user-initiated visit.
	ClickCount int64 `json:"clickCount"`

	// IsPinned promotes the item above every unpinned one.
	IsPinned bool `json:"isPinned"`
}

// Draft carries the user-editable fields of a create or update.
type Draft struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Normalize trims every field, prefixes scheme-less URLs, defaults the
// category and cleans the tag list.
func (d Draft) Normalize() Draft {
	category := strings.ToLower(strings.TrimSpace(d.Category))
	if category == "" || category == CategoryAll {
		category = CategoryOther
	}
	return Draft{
		Name:        strings.TrimSpace(d.Name),
		URL:         NormalizeURL(d.URL),
		Description: strings.TrimSpace(d.Description),
		Category:    category,
		Tags:        NormalizeTags(d.Tags),
	}
}

// Valid reports whether the draft has a name and a URL.
// Call it on a normalized draft.
func (d Draft) Valid() bool {
	return d.Name != "" && d.URL != ""
}

// Apply copies the draft's fields onto item, leaving identity and usage alone.
func (d Draft) Apply(item *ResourceItem) {
	item.Name = d.Name
	item.URL = d.URL
	item.Description = d.Description
	item.Category = d.Category
	item.Tags = d.Tags
}

// NormalizeURL trims raw and prefixes "https://" when no scheme is present.
// An empty input stays empty.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}

// NormalizeTags trims tags, drops empty ones and removes duplicates,
// keeping the first occurrence.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseTags splits a comma separated tag list as typed in a form.
func ParseTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

// NewID returns a fresh resource identifier.
func NewID() string {
	return uuid.NewString()
}

// NextCreatedAt returns now, or one millisecond past the newest createdAt in
// items when the clock has not moved past it.
func NextCreatedAt(items []ResourceItem, now time.Time) time.Time {
	latest := time.Time{}
	for _, item := range items {
		if item.CreatedAt.After(latest) {
			latest = item.CreatedAt
		}
	}
	if now.After(latest) {
		return now
	}
	return latest.Add(time.Millisecond)
}
