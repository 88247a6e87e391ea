package scraper

import (
	"testing"

	"rentwatch/internal/domain"
	"rentwatch/internal/sites"
)

func testSite() sites.Site {
	return sites.Site{
		Name:      "testsite",
		Enabled:   true,
		BaseURL:   "https://example.com",
		SearchURL: "https://example.com/search",
		Selectors: map[string]string{
			sites.FieldListingContainer: "div.listing",
			sites.FieldTitle:            "h2.title",
			sites.FieldPrice:            "span.price",
			sites.FieldLocation:         "span.loc",
			sites.FieldLink:             "a.more",
		},
	}
}

const sampleHTML = `<html><body>
<div class="listing">
  <h2 class="title">  Cozy   2BR
 Apartment </h2>
  <span class="price">AED 85,000 / year</span>
  <span class="loc">Dubai Marina</span>
  <a class="more" href="/rent/123">View</a>
</div>
<div class="listing">
  <h2 class="title">   </h2>
  <a class="more" href="/rent/456">View</a>
</div>
<div class="listing">
  <h2 class="title">Studio in JLT</h2>
  <a class="more" href="https://other.example.com/rent/789">View</a>
</div>
</body></html>`

func TestExtractListingsDropsUntitledCandidate(t *testing.T) {
	listings, dropped, err := ExtractListings([]byte(sampleHTML), testSite())
	if err != nil {
		t.Fatalf("ExtractListings returned error: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings (one dropped for empty title), got %d", len(listings))
	}
	if dropped != 1 {
		t.Errorf("expected 1 dropped candidate, got %d", dropped)
	}
}

func TestExtractListingsNormalizesFields(t *testing.T) {
	listings, _, err := ExtractListings([]byte(sampleHTML), testSite())
	if err != nil {
		t.Fatalf("ExtractListings returned error: %v", err)
	}

	first := listings[0]
	if first.Title != "Cozy 2BR Apartment" {
		t.Errorf("title not normalized: %q", first.Title)
	}
	if first.Price != "AED 85,000 / year" {
		t.Errorf("unexpected price: %q", first.Price)
	}
	if first.Location != "Dubai Marina" {
		t.Errorf("unexpected location: %q", first.Location)
	}
	if first.Source != "testsite" {
		t.Errorf("unexpected source: %q", first.Source)
	}
	if first.Description != "" {
		t.Errorf("description should default to empty, got %q", first.Description)
	}
	if first.ExternalID != ExternalID(first.URL, first.Title) {
		t.Error("external ID does not match URL+title digest")
	}
}

func TestExtractListingsResolvesRelativeLinks(t *testing.T) {
	listings, _, err := ExtractListings([]byte(sampleHTML), testSite())
	if err != nil {
		t.Fatalf("ExtractListings returned error: %v", err)
	}

	if got := listings[0].URL; got != "https://example.com/rent/123" {
		t.Errorf("relative href not joined against base URL: %q", got)
	}
	if got := listings[1].URL; got != "https://other.example.com/rent/789" {
		t.Errorf("absolute href was rewritten: %q", got)
	}
}

func TestExtractListingsSentinelForMissingOptionalFields(t *testing.T) {
	listings, _, err := ExtractListings([]byte(sampleHTML), testSite())
	if err != nil {
		t.Fatalf("ExtractListings returned error: %v", err)
	}

	// bedrooms/area have no selector in the schema; the second record also
	// has no price element.
	first, second := listings[0], listings[1]
	if first.Bedrooms != domain.NotAvailable || first.Area != domain.NotAvailable {
		t.Errorf("missing schema selectors should yield sentinel, got %q/%q", first.Bedrooms, first.Area)
	}
	if second.Price != domain.NotAvailable {
		t.Errorf("unmatched price selector should yield sentinel, got %q", second.Price)
	}
}

func TestExtractListingsDropsCandidateWithoutLink(t *testing.T) {
	html := `<html><body>
<div class="listing"><h2 class="title">Orphan listing</h2></div>
<div class="listing">
  <h2 class="title">Linked listing</h2>
  <a class="more" href="/rent/1">View</a>
</div>
</body></html>`

	listings, dropped, err := ExtractListings([]byte(html), testSite())
	if err != nil {
		t.Fatalf("ExtractListings returned error: %v", err)
	}
	if len(listings) != 1 || dropped != 1 {
		t.Fatalf("expected 1 listing and 1 drop, got %d and %d", len(listings), dropped)
	}
	if listings[0].Title != "Linked listing" {
		t.Errorf("wrong candidate survived: %q", listings[0].Title)
	}
}

func TestExtractListingsEmptyDocument(t *testing.T) {
	listings, dropped, err := ExtractListings([]byte("<html><body></body></html>"), testSite())
	if err != nil {
		t.Fatalf("ExtractListings returned error: %v", err)
	}
	if len(listings) != 0 || dropped != 0 {
		t.Errorf("expected no listings from empty document, got %d (%d dropped)", len(listings), dropped)
	}
}
