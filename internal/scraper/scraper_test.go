package scraper

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"rentwatch/internal/monitoring"
	"rentwatch/internal/sites"
)

// Shared across the package's tests: promauto registers collectors globally,
// so NewMetrics must run once per test binary.
var testMetrics = monitoring.NewMetrics()

// stubFetcher serves canned documents or errors per site name, honoring the
// fetcher contract for disabled sites.
type stubFetcher struct {
	pages map[string]string
	errs  map[string]error
}

func (f *stubFetcher) Fetch(_ context.Context, site sites.Site) ([]byte, error) {
	if !site.Enabled {
		return nil, ErrSiteDisabled
	}
	if err, ok := f.errs[site.Name]; ok {
		return nil, err
	}
	return []byte(f.pages[site.Name]), nil
}

func namedSite(name string) sites.Site {
	s := testSite()
	s.Name = name
	return s
}

func TestScrapeAllIsolatesSiteFailures(t *testing.T) {
	siteA := namedSite("site-a")
	siteB := namedSite("site-b")

	fetcher := &stubFetcher{
		pages: map[string]string{"site-b": sampleHTML},
		errs:  map[string]error{"site-a": &NetworkError{Site: "site-a", Err: context.DeadlineExceeded}},
	}
	s := New(fetcher, testMetrics, zap.NewNop())

	listings := s.ScrapeAll(context.Background(), []sites.Site{siteA, siteB})
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings from site-b despite site-a failure, got %d", len(listings))
	}
	for _, l := range listings {
		if l.Source != "site-b" {
			t.Errorf("unexpected source %q", l.Source)
		}
	}
}

func TestScrapeAllSkipsDisabledSites(t *testing.T) {
	enabled := namedSite("enabled-site")
	disabled := namedSite("disabled-site")
	disabled.Enabled = false

	fetcher := &stubFetcher{pages: map[string]string{
		"enabled-site":  sampleHTML,
		"disabled-site": sampleHTML,
	}}
	s := New(fetcher, testMetrics, zap.NewNop())

	listings := s.ScrapeAll(context.Background(), []sites.Site{disabled, enabled})
	for _, l := range listings {
		if l.Source == "disabled-site" {
			t.Fatal("disabled site was scraped")
		}
	}
	if len(listings) != 2 {
		t.Errorf("expected 2 listings from the enabled site, got %d", len(listings))
	}
}

func TestScrapeAllPreservesConfiguredOrder(t *testing.T) {
	first := namedSite("first")
	second := namedSite("second")

	fetcher := &stubFetcher{pages: map[string]string{
		"first":  sampleHTML,
		"second": sampleHTML,
	}}
	s := New(fetcher, testMetrics, zap.NewNop())

	listings := s.ScrapeAll(context.Background(), []sites.Site{first, second})
	if len(listings) != 4 {
		t.Fatalf("expected 4 listings, got %d", len(listings))
	}
	if listings[0].Source != "first" || listings[3].Source != "second" {
		t.Error("aggregated drafts not in configured site order")
	}
}
