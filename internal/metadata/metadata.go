// Package metadata looks up page titles and descriptions used to pre-fill
// the resource form.
package metadata

import (
	"context"
	"errors"
	"strings"
)

// ErrNoMetadata is returned when a page was reachable but carried neither a
// title nor a description.
var ErrNoMetadata = errors.New("metadata: nothing found")

// Metadata is the collaborator's answer. Both fields are optional.
type Metadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Empty reports whether m carries nothing usable.
func (m Metadata) Empty() bool {
	return strings.TrimSpace(m.Title) == "" && strings.TrimSpace(m.Description) == ""
}

// Source resolves metadata for a candidate URL.
type Source interface {
	Lookup(ctx context.Context, candidate string) (Metadata, error)
}

// Response is the wire shape of the collaborator endpoint: metadata, or an
// error message.
type Response struct {
	Metadata
	Error string `json:"error,omitempty"`
}
