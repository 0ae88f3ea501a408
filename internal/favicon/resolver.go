package favicon

import (
	"context"
	"io"
	"mime"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

// Resolver walks favicon chains by fetching each image URL once. It keeps no
// state between calls.
type Resolver struct {
	cfg      Config
	client   *http.Client
	parallel int
	logger   logger.Logger
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithHTTPClient replaces the client used for image fetches.
func WithHTTPClient(c *http.Client) ResolverOption {
	return func(r *Resolver) { r.client = c }
}

// WithParallelism bounds concurrent resolutions in ResolveAll.
func WithParallelism(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.parallel = n
		}
	}
}

// NewResolver creates a resolver. timeout bounds each image fetch. Images on
// non-public addresses count as failed unless WithHTTPClient lifts that.
func NewResolver(cfg Config, timeout time.Duration, log logger.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cfg:      cfg,
		client:   utils.NewFetchClient(timeout, false),
		parallel: 8,
		logger:   log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Chain starts a fresh chain for item.
func (r *Resolver) Chain(item domain.ResourceItem) *Chain {
	return NewChain(item, r.cfg)
}

// Resolve checks chain from its current step until an image loads or the
// placeholder is reached. A cancelled ctx returns ctx.Err() and the partial
// result must be discarded.
func (r *Resolver) Resolve(ctx context.Context, chain *Chain) (Source, error) {
	src := chain.Current()
	for src.Step != StepPlaceholder {
		ok := r.fetchImage(ctx, src.URL)
		if err := ctx.Err(); err != nil {
			return Source{}, err
		}
		if ok {
			return src, nil
		}
		r.logger.Debug("favicon step failed",
			logger.String("step", src.Kind),
			logger.String("url", src.URL))
		src = chain.Fail()
	}
	return src, nil
}

// ResolveAll resolves every item concurrently and returns the sources keyed
// by item id.
func (r *Resolver) ResolveAll(ctx context.Context, items []domain.ResourceItem) (map[string]Source, error) {
	results := make([]Source, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			src, err := r.Resolve(gctx, r.Chain(item))
			if err != nil {
				return err
			}
			results[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]Source, len(items))
	for i, item := range items {
		out[item.ID] = results[i]
	}
	return out, nil
}

// fetchImage reports whether rawURL answers with a 2xx image-like response.
func (r *Resolver) fetchImage(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "image/*")

	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer utils.Close(resp.Body)
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		// servers often omit the header for .ico files
		return resp.Header.Get("Content-Type") == ""
	}
	return mediaType != "text/html" && mediaType != "application/json"
}
