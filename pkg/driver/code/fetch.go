package code

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"

	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

// DefaultFetchTimeout bounds a single remote fetch when no timeout is
// configured.
const DefaultFetchTimeout = 5 * time.Second

// FetchOptions configures a Fetcher.
type FetchOptions struct {
	// Timeout bounds each remote fetch. Defaults to DefaultFetchTimeout.
	Timeout time.Duration

	// CacheTTL enables caching of fetched content keyed by resolved
	// location. Zero disables the cache entirely.
	CacheTTL time.Duration

	// RatePerSecond throttles remote fetches. Zero means unthrottled.
	RatePerSecond float64

	// Client overrides the HTTP client; mainly for tests. Its own Timeout
	// is left untouched — deadlines come from the per-request context.
	Client *http.Client

	// Logger is optional.
	Logger *slog.Logger
}

// Fetcher retrieves content from resolved locations. It serves both Read
// and Ingest, which guarantees the two operations share addressing and
// failure semantics exactly.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	cache   *ttlcache.Cache[string, string]
	logger  *slog.Logger
}

// NewFetcher builds a fetcher from options.
func NewFetcher(opts FetchOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	f := &Fetcher{
		client:  opts.Client,
		timeout: opts.Timeout,
		logger:  opts.Logger.With("component", "fetcher"),
	}
	if opts.RatePerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	if opts.CacheTTL > 0 {
		f.cache = ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](opts.CacheTTL),
		)
		go f.cache.Start()
	}
	return f
}

// Close stops the cache janitor, if any.
func (f *Fetcher) Close() {
	if f.cache != nil {
		f.cache.Stop()
	}
}

// Fetch retrieves the content at a resolved location as text.
//
// Error mapping:
//   - missing local file            -> CodeNotFound
//   - network failure / non-2xx     -> CodeBadGateway
//   - deadline exceeded             -> CodeGatewayTimeout
//   - unsupported scheme            -> CodeInternal (configuration error;
//     the mount table should have made this unrepresentable)
func (f *Fetcher) Fetch(ctx context.Context, path, location string) (string, error) {
	if f.cache != nil {
		if item := f.cache.Get(location); item != nil {
			return item.Value(), nil
		}
	}

	u, err := url.Parse(location)
	if err != nil {
		return "", vfs.Internal(path, fmt.Errorf("unparseable location %q: %w", location, err))
	}

	var content string
	switch u.Scheme {
	case "https":
		content, err = f.fetchRemote(ctx, path, location)
	case "file":
		content, err = f.fetchLocal(path, u)
	default:
		return "", vfs.Internal(path, fmt.Errorf("unsupported scheme %q in %q", u.Scheme, location))
	}
	if err != nil {
		return "", err
	}

	if f.cache != nil {
		f.cache.Set(location, content, ttlcache.DefaultTTL)
	}
	return content, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, path, location string) (string, error) {
	if f.limiter != nil {
		// Wait also fails on plain cancellation, which is not a timeout.
		if err := f.limiter.Wait(ctx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return "", vfs.GatewayTimeout(path, err)
			}
			return "", vfs.BadGateway(path, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", vfs.Internal(path, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", vfs.GatewayTimeout(path, err)
		}
		return "", vfs.BadGateway(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", vfs.BadGateway(path, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, location))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", vfs.GatewayTimeout(path, err)
		}
		return "", vfs.BadGateway(path, err)
	}

	f.logger.Debug("fetched", "location", location, "bytes", len(body))
	return string(body), nil
}

func (f *Fetcher) fetchLocal(path string, u *url.URL) (string, error) {
	body, err := os.ReadFile(u.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", vfs.NotFound(path)
		}
		return "", vfs.Internal(path, err)
	}
	return string(body), nil
}
