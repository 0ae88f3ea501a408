package seed

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

// entry is one record of catalog.yaml.
type entry struct {
	Name        string   `yaml:"name"`
	URL         string   `yaml:"url"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Tags        []string `yaml:"tags"`
}

var entries = mustParse(catalogYAML)

func mustParse(data []byte) []entry {
	out, err := parse(data)
	if err != nil {
		panic(err)
	}
	return out
}

func parse(data []byte) ([]entry, error) {
	var out []entry
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("seed catalog is empty")
	}
	return out, nil
}

// Len returns the number of catalog entries.
func Len() int { return len(entries) }

// Catalog returns a fresh copy of the default directory.
//
// Every call generates new ids. createdAt grows by one millisecond per entry
// starting at now, so an untouched store ranks in reverse catalog order.
func Catalog(now time.Time) []domain.ResourceItem {
	items := make([]domain.ResourceItem, 0, len(entries))
	for i, e := range entries {
		d := domain.Draft{
			Name:        e.Name,
			URL:         e.URL,
			Description: e.Description,
			Category:    e.Category,
			Tags:        e.Tags,
		}.Normalize()

		item := domain.ResourceItem{
			ID:        domain.NewID(),
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		}
		d.Apply(&item)
		items = append(items, item)
	}
	return items
}
