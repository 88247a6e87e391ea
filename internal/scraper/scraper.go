// Package scraper implements the scrape half of the pipeline: fetching site
// search pages, extracting listing drafts from them, and isolating per-site
// failures so one bad site never aborts a batch.
package scraper

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"rentwatch/internal/domain"
	"rentwatch/internal/monitoring"
	"rentwatch/internal/sites"
)

// Scraper drives fetching and extraction across all configured sites.
type Scraper struct {
	fetcher Fetcher
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func New(fetcher Fetcher, m *monitoring.Metrics, l *zap.Logger) *Scraper {
	return &Scraper{fetcher: fetcher, metrics: m, logger: l}
}

// ScrapeAll visits rule sets sequentially in configured order and aggregates
// their drafts into one flat slice. A fetch or extraction failure for one
// site is logged and treated as zero results for that site; subsequent sites
// are still scraped.
func (s *Scraper) ScrapeAll(ctx context.Context, ruleSets []sites.Site) []domain.Listing {
	var all []domain.Listing
	for _, site := range ruleSets {
		listings, err := s.scrapeSite(ctx, site)
		if err != nil {
			if errors.Is(err, ErrSiteDisabled) {
				s.logger.Info("skipping disabled site", zap.String("site", site.Name))
				continue
			}
			s.metrics.IncErrorsTotal(errorType(err))
			s.logger.Error("site scrape failed",
				zap.String("site", site.Name),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("scraped site",
			zap.String("site", site.Name),
			zap.Int("listings", len(listings)),
		)
		all = append(all, listings...)
	}
	s.logger.Info("scrape batch complete", zap.Int("total", len(all)))
	return all
}

func (s *Scraper) scrapeSite(ctx context.Context, site sites.Site) ([]domain.Listing, error) {
	body, err := s.fetcher.Fetch(ctx, site)
	if err != nil {
		return nil, err
	}

	listings, dropped, err := ExtractListings(body, site)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		s.logger.Warn("dropped incomplete candidates",
			zap.String("site", site.Name),
			zap.Int("dropped", dropped),
		)
	}
	s.metrics.AddExtracted(site.Name, len(listings))
	return listings, nil
}

func errorType(err error) string {
	var netErr *NetworkError
	var statusErr *StatusError
	switch {
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &statusErr):
		return "http_status"
	default:
		return "extract"
	}
}
