package homepage

import (
	"errors"
	"slices"
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// SourceTag is added to every imported draft.
const SourceTag = "homepage"

// ErrNothingToImport is returned when a file has no usable entry.
var ErrNothingToImport = errors.New("homepage: no valid entries found")

// MapBookmarks turns bookmark groups into drafts. The group name becomes the
// category; entries without href are skipped.
func MapBookmarks(cfg BookmarksConfig) ([]domain.Draft, error) {
	var drafts []domain.Draft
	for _, groupMap := range cfg {
		for _, group := range sortedKeys(groupMap) {
			for _, entryMap := range groupMap[group] {
				for _, name := range sortedKeys(entryMap) {
					entries := entryMap[name]
					if len(entries) == 0 {
						continue
					}
					e := entries[0]
					drafts = appendDraft(drafts, group, name, e.Href, e.Description, e.Abbr)
				}
			}
		}
	}
	if len(drafts) == 0 {
		return nil, ErrNothingToImport
	}
	return drafts, nil
}

// MapServices turns service groups into drafts the same way.
func MapServices(cfg ServicesConfig) ([]domain.Draft, error) {
	var drafts []domain.Draft
	for _, groupMap := range cfg {
		for _, group := range sortedKeys(groupMap) {
			for _, svcMap := range groupMap[group] {
				for _, name := range sortedKeys(svcMap) {
					p := svcMap[name]
					drafts = appendDraft(drafts, group, name, p.Href, p.Description, "")
				}
			}
		}
	}
	if len(drafts) == 0 {
		return nil, ErrNothingToImport
	}
	return drafts, nil
}

func appendDraft(drafts []domain.Draft, group, name, href, desc, abbr string) []domain.Draft {
	tags := []string{SourceTag}
	if abbr = strings.TrimSpace(abbr); abbr != "" {
		tags = append(tags, strings.ToLower(abbr))
	}
	d := domain.Draft{
		Name:        name,
		URL:         href,
		Description: desc,
		Category:    group,
		Tags:        tags,
	}.Normalize()
	if !d.Valid() {
		return drafts
	}
	return append(drafts, d)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
