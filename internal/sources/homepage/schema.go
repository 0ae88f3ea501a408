package homepage

// Homepage groups everything under dynamic keys:
//
//	- Group:
//	    - Entry Name: { href, description, ... }
//
// so both files decode into lists of single-key maps.

// ServicesConfig is the root of services.yaml.
type ServicesConfig []map[string][]map[string]ServiceProps

// ServiceProps holds the fields shelf reads from a service entry.
type ServiceProps struct {
	Href        string `yaml:"href"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// BookmarkEntry is one bookmark. Homepage wraps it in a single-element list.
type BookmarkEntry struct {
	Icon        string `yaml:"icon"`
	Abbr        string `yaml:"abbr"`
	Href        string `yaml:"href"`
	Description string `yaml:"description"`
}

// BookmarksConfig is the root of bookmarks.yaml.
type BookmarksConfig []map[string][]map[string][]BookmarkEntry
