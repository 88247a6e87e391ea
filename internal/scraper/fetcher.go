package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"rentwatch/internal/sites"
)

// ErrSiteDisabled is returned when a fetch is requested for a site whose
// enabled gate is off.
var ErrSiteDisabled = errors.New("site is disabled")

// NetworkError reports a transport-level fetch failure: timeout, refused
// connection, DNS.
type NetworkError struct {
	Site string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Site, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx response from a site.
type StatusError struct {
	Site string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.Site, e.Code)
}

// Fetcher retrieves the raw search document for one site.
type Fetcher interface {
	Fetch(ctx context.Context, site sites.Site) ([]byte, error)
}

// HTTPFetcher issues a single GET per site with a bounded timeout and the
// configured user agent. A mandatory delay before each request throttles the
// global outbound rate: sites are fetched one at a time.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	delay     time.Duration
}

func NewHTTPFetcher(settings sites.Settings, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: settings.UserAgent,
		delay:     settings.Delay(),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, site sites.Site) ([]byte, error) {
	if !site.Enabled {
		return nil, ErrSiteDisabled
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, &NetworkError{Site: site.Name, Err: ctx.Err()}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, site.SearchURL, nil)
	if err != nil {
		return nil, &NetworkError{Site: site.Name, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Site: site.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Site: site.Name, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Site: site.Name, Err: err}
	}
	return body, nil
}
