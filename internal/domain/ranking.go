package domain

import (
	"cmp"
	"slices"
	"sort"
	"strings"
)

// Filter is the pair of filter primitives applied to the collection.
// The zero value lets everything through.
type Filter struct {
	Category string // CategoryAll or "" disables the category test
	Query    string // free text, matched case-insensitively
}

// TagFilter is what selecting a tag chip does: search for the tag's exact
// text across every category.
func TagFilter(tag string) Filter {
	return Filter{Category: CategoryAll, Query: tag}
}

// Match reports whether item passes both the category and the search test.
func (f Filter) Match(item ResourceItem) bool {
	return f.matchCategory(item) && f.matchQuery(item)
}

func (f Filter) matchCategory(item ResourceItem) bool {
	if f.Category == "" || f.Category == CategoryAll {
		return true
	}
	return item.Category == f.Category
}

func (f Filter) matchQuery(item ResourceItem) bool {
	q := strings.TrimSpace(f.Query)
	if q == "" {
		return true
	}
	q = strings.ToLower(q)

	return strings.Contains(strings.ToLower(item.Name), q) ||
		strings.Contains(strings.ToLower(item.Description), q) ||
		strings.Contains(strings.ToLower(strings.Join(item.Tags, " ")), q)
}

// Compare orders items for display: pinned first, then higher click count,
// then most recently created. It returns a negative number when a sorts
// before b.
func Compare(a, b ResourceItem) int {
	if a.IsPinned != b.IsPinned {
		if a.IsPinned {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(b.ClickCount, a.ClickCount); c != 0 {
		return c
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

// Rank filters items and sorts the survivors with a single stable sort.
// The input slice is never modified.
func Rank(items []ResourceItem, f Filter) []ResourceItem {
	out := make([]ResourceItem, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			out = append(out, item)
		}
	}
	slices.SortStableFunc(out, Compare)
	return out
}

// Categories returns the default categories followed by any other category
// referenced by items, the extras sorted alphabetically.
func Categories(items []ResourceItem) []string {
	known := make(map[string]bool, len(DefaultCategories))
	out := make([]string, 0, len(DefaultCategories))
	for _, c := range DefaultCategories {
		known[c] = true
		out = append(out, c)
	}

	var extra []string
	for _, item := range items {
		if item.Category == "" || known[item.Category] {
			continue
		}
		known[item.Category] = true
		extra = append(extra, item.Category)
	}
	sort.Strings(extra)

	return append(out, extra...)
}
