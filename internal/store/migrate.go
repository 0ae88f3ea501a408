package store

import (
	"bytes"
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// record is one stored element, decoded field by field so a single field of
// the wrong type costs that field and not the whole collection. Older
// versions wrote records without createdAt, clickCount or category, with
// numeric ids, millisecond timestamps and comma separated tags.
type record struct {
	fields map[string]json.RawMessage
}

// decode parses a stored payload. ok is false only when the payload is not
// a JSON array at all, which callers treat like a missing key. Elements
// that are not objects come back as nil records.
func decode(data []byte) (records []*record, ok bool) {
	var raw []json.RawMessage
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		return nil, false
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}

	records = make([]*record, len(raw))
	for i, elem := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(elem, &fields); err != nil || fields == nil {
			continue
		}
		records[i] = &record{fields: fields}
	}
	return records, true
}

// str reads a string field. Numbers are accepted in their decimal form.
func (r *record) str(key string) (string, bool) {
	raw, found := r.fields[key]
	if !found {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// clicks reads clickCount from an integer, a float or a numeric string.
// exact is false when the stored value was not a plain integer.
func (r *record) clicks() (n int64, ok, exact bool) {
	raw, found := r.fields["clickCount"]
	if !found {
		return 0, false, false
	}
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true, string(raw) != "null"
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int64(math.Trunc(f)), true, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int64(math.Trunc(f)), true, false
		}
	}
	return 0, false, false
}

// createdAt accepts RFC 3339 strings and Unix milliseconds, as a number or
// a numeric string. exact is false for anything but RFC 3339.
func (r *record) createdAt() (t time.Time, ok, exact bool) {
	raw, found := r.fields["createdAt"]
	if !found || string(raw) == "null" {
		return time.Time{}, false, false
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(int64(ms)).UTC(), true, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, false, false
	}
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		return time.UnixMilli(int64(ms)).UTC(), true, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true, true
	}
	return time.Time{}, false, false
}

// tags reads a string array, skipping non-string entries, or a comma
// separated string.
func (r *record) tags() ([]string, bool) {
	raw, found := r.fields["tags"]
	if !found {
		return nil, false
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var out []string
		clean := true
		for _, elem := range list {
			var tag string
			if err := json.Unmarshal(elem, &tag); err != nil {
				clean = false
				continue
			}
			out = append(out, tag)
		}
		return out, clean
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return domain.ParseTags(s), false
	}
	return nil, false
}

func (r *record) pinned() (bool, bool) {
	raw, found := r.fields["isPinned"]
	if !found {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// migrate turns one loaded record into a fully populated item. It reports
// whether anything had to be repaired. keep is false for records that carry
// no URL: there is nothing left to link to.
func migrate(r *record, now time.Time) (item domain.ResourceItem, repaired, keep bool) {
	if r == nil {
		return item, true, false
	}

	rawURL, _ := r.str("url")
	item.URL = strings.TrimSpace(rawURL)
	if item.URL == "" {
		return item, true, false
	}
	repaired = item.URL != rawURL

	name, _ := r.str("name")
	item.Name = strings.TrimSpace(name)
	if item.Name == "" {
		item.Name = nameFromURL(item.URL)
		repaired = true
	}

	// numeric legacy ids become their decimal text
	id, isString := r.stringField("id")
	item.ID = strings.TrimSpace(id)
	repaired = repaired || !isString || item.ID != id

	desc, ok := r.str("description")
	item.Description = strings.TrimSpace(desc)
	repaired = repaired || (!ok && r.has("description")) || item.Description != desc

	category, ok := r.str("category")
	item.Category = strings.ToLower(strings.TrimSpace(category))
	if !ok || item.Category == "" || item.Category == domain.CategoryAll {
		item.Category = domain.CategoryOther
	}
	repaired = repaired || item.Category != category

	tags, clean := r.tags()
	item.Tags = domain.NormalizeTags(tags)
	repaired = repaired || (!clean && r.has("tags")) || len(item.Tags) != len(tags)

	createdAt, ok, exact := r.createdAt()
	if !ok || createdAt.IsZero() {
		createdAt, exact = now, false
	}
	item.CreatedAt = createdAt
	repaired = repaired || !exact

	clicks, ok, exact := r.clicks()
	if !ok || clicks < 0 {
		clicks, exact = 0, false
	}
	item.ClickCount = clicks
	repaired = repaired || !exact

	pinned, ok := r.pinned()
	item.IsPinned = pinned
	repaired = repaired || (!ok && r.has("isPinned"))

	return item, repaired, true
}

func (r *record) has(key string) bool {
	_, found := r.fields[key]
	return found
}

// stringField is str that also reports whether the value was a JSON string.
func (r *record) stringField(key string) (string, bool) {
	s, ok := r.str(key)
	if !ok {
		return "", false
	}
	var plain string
	return s, json.Unmarshal(r.fields[key], &plain) == nil
}

func nameFromURL(raw string) string {
	if u, err := url.Parse(domain.NormalizeURL(raw)); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return raw
}

// migrateAll repairs every record and restores id uniqueness: a record with
// no id, or an id already taken by an earlier record, gets a fresh one.
// Records without a URL are dropped. repaired counts records that needed
// any change, dropped ones included.
func migrateAll(records []*record, now time.Time) (items []domain.ResourceItem, repaired int) {
	items = make([]domain.ResourceItem, 0, len(records))
	seen := make(map[string]bool, len(records))

	for _, r := range records {
		item, changed, keep := migrate(r, now)
		if !keep {
			repaired++
			continue
		}

		if item.ID == "" || seen[item.ID] {
			item.ID = domain.NewID()
			changed = true
		}
		seen[item.ID] = true

		if changed {
			repaired++
		}
		items = append(items, item)
	}
	return items, repaired
}
