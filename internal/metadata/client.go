package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/utils"
)

// Client calls a remote metadata endpoint: GET <endpoint>?url=<candidate>.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for endpoint. timeout bounds the whole request.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Lookup implements Source.
func (c *Client) Lookup(ctx context.Context, candidate string) (Metadata, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return Metadata{}, fmt.Errorf("invalid metadata endpoint: %w", err)
	}
	q := u.Query()
	q.Set("url", candidate)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Metadata{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("metadata request failed: %w", err)
	}
	defer utils.Close(resp.Body)

	var body Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Metadata{}, fmt.Errorf("metadata endpoint returned HTTP %d", resp.StatusCode)
		}
		return Metadata{}, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if body.Error != "" {
		return Metadata{}, errors.New(body.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return Metadata{}, fmt.Errorf("metadata endpoint returned HTTP %d", resp.StatusCode)
	}
	return body.Metadata, nil
}
