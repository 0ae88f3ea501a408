package metadata

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Autofiller pre-populates empty form fields from a Source.
type Autofiller struct {
	source Source
	logger logger.Logger
}

// NewAutofiller creates an autofiller over source.
func NewAutofiller(source Source, log logger.Logger) *Autofiller {
	return &Autofiller{source: source, logger: log}
}

// Fill issues a single lookup for d.URL and copies the result into the
// fields of d that are still empty. It never overwrites user input and never
// fails: on any error d is returned unchanged. A result that arrives after
// ctx is done is discarded the same way. filled reports whether any field
// was set.
func (a *Autofiller) Fill(ctx context.Context, d domain.Draft) (out domain.Draft, filled bool) {
	needName := strings.TrimSpace(d.Name) == ""
	needDesc := strings.TrimSpace(d.Description) == ""
	candidate := domain.NormalizeURL(d.URL)
	if candidate == "" || (!needName && !needDesc) {
		return d, false
	}

	m, err := a.source.Lookup(ctx, candidate)
	if ctx.Err() != nil {
		a.logger.Debug("autofill result discarded", logger.String("url", candidate))
		return d, false
	}
	if err != nil {
		a.logger.Debug("autofill lookup failed",
			logger.String("url", candidate),
			logger.Error(err))
		return d, false
	}

	if title := strings.TrimSpace(m.Title); needName && title != "" {
		d.Name = title
		filled = true
	}
	if desc := strings.TrimSpace(m.Description); needDesc && desc != "" {
		d.Description = desc
		filled = true
	}
	return d, filled
}
