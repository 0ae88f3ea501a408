package favicon

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// Step is a position in the favicon fallback chain.
type Step int

const (
	StepService Step = iota
	StepOrigin
	StepPlaceholder
)

func (s Step) String() string {
	switch s {
	case StepService:
		return "service"
	case StepOrigin:
		return "origin"
	default:
		return "placeholder"
	}
}

// ParseStep is the inverse of Step.String. ok is false for unknown names.
func ParseStep(s string) (Step, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "service":
		return StepService, true
	case "origin":
		return StepOrigin, true
	case "placeholder":
		return StepPlaceholder, true
	default:
		return StepService, false
	}
}

// Config describes the third-party favicon-by-domain service.
type Config struct {
	Service string // e.g. https://www.google.com/s2/favicons
	Size    int    // requested pixel size
}

// Source is what to display for a resource: an image URL, or placeholder text
// when Step is StepPlaceholder.
type Source struct {
	Step Step   `json:"-"`
	Kind string `json:"step"`
	URL  string `json:"url,omitempty"`
	Text string `json:"text,omitempty"`
}

// Chain is the per-element resolution state. It starts at the favicon
// service and only ever moves forward, one attempt per step.
type Chain struct {
	cfg      Config
	name     string
	category string
	origin   *url.URL // nil when the resource URL cannot be parsed
	step     Step
	viaSvc   bool // the service step was built against cfg.Service
}

// NewChain starts a chain for item.
func NewChain(item domain.ResourceItem, cfg Config) *Chain {
	c := &Chain{
		cfg:      cfg,
		name:     item.Name,
		category: item.Category,
		origin:   parseOrigin(item.URL),
	}
	switch {
	case c.origin == nil:
		c.step = StepPlaceholder
	case cfg.Service == "":
		c.step = StepOrigin
	default:
		c.step = StepService
		c.viaSvc = true
	}
	return c
}

// Current returns the source for the current step.
func (c *Chain) Current() Source {
	switch c.step {
	case StepService:
		return Source{Step: StepService, Kind: StepService.String(), URL: c.serviceURL()}
	case StepOrigin:
		return Source{Step: StepOrigin, Kind: StepOrigin.String(), URL: c.origin.String() + "/favicon.ico"}
	default:
		return Source{Step: StepPlaceholder, Kind: StepPlaceholder.String(), Text: Placeholder(c.name, c.category)}
	}
}

// Fail records that the current image failed to load and returns the next
// source. The origin step is only tried after a failure of the configured
// favicon service; the placeholder is terminal.
func (c *Chain) Fail() Source {
	switch c.step {
	case StepService:
		if c.viaSvc {
			c.step = StepOrigin
		} else {
			c.step = StepPlaceholder
		}
	case StepOrigin:
		c.step = StepPlaceholder
	}
	return c.Current()
}

// Advance moves the chain forward to step, as if every earlier step failed.
func (c *Chain) Advance(to Step) Source {
	for c.step < to && c.step != StepPlaceholder {
		c.Fail()
	}
	return c.Current()
}

func (c *Chain) serviceURL() string {
	q := url.Values{}
	q.Set("domain", c.origin.Hostname())
	q.Set("sz", strconv.Itoa(c.cfg.Size))
	return c.cfg.Service + "?" + q.Encode()
}

// parseOrigin returns scheme://host of raw, or nil when raw has no usable host.
func parseOrigin(raw string) *url.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}
}

var categoryEmoji = map[string]string{
	domain.CategoryLearning: "📚",
	domain.CategoryAI:       "🤖",
	domain.CategoryTools:    "🛠️",
	domain.CategoryDesign:   "🎨",
	domain.CategoryOther:    "🔗",
}

// Placeholder is the symbolic fallback: the uppercased first character of
// name, or an emoji keyed by category when name is blank.
func Placeholder(name, category string) string {
	name = strings.TrimSpace(name)
	if name != "" {
		r, _ := utf8.DecodeRuneInString(name)
		return string(unicode.ToUpper(r))
	}
	if e, ok := categoryEmoji[category]; ok {
		return e
	}
	return categoryEmoji[domain.CategoryOther]
}
