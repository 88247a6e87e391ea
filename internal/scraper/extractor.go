package scraper

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rentwatch/internal/domain"
	"rentwatch/internal/sites"
)

// ExtractListings parses one fetched document with the site's selector map
// and returns zero or more normalized listing drafts. Candidates with an
// empty title or no resolvable link are dropped; the dropped count is
// returned so the caller can log it. Document order is preserved.
func ExtractListings(htmlContent []byte, site sites.Site) ([]domain.Listing, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlContent))
	if err != nil {
		return nil, 0, err
	}
	base, err := url.Parse(site.BaseURL)
	if err != nil {
		return nil, 0, err
	}

	var listings []domain.Listing
	dropped := 0
	doc.Find(site.Selectors[sites.FieldListingContainer]).Each(func(_ int, container *goquery.Selection) {
		l, ok := extractOne(container, site, base)
		if !ok {
			dropped++
			return
		}
		listings = append(listings, l)
	})
	return listings, dropped, nil
}

func extractOne(container *goquery.Selection, site sites.Site, base *url.URL) (domain.Listing, bool) {
	// A listing without a title is not a listing.
	title := Normalize(selectText(container, site.Selectors[sites.FieldTitle]))
	if title == "" {
		return domain.Listing{}, false
	}

	// No URL means no actionable listing.
	link := resolveLink(container, site.Selectors[sites.FieldLink], base)
	if link == "" {
		return domain.Listing{}, false
	}

	return domain.Listing{
		ExternalID: ExternalID(link, title),
		Source:     site.Name,
		Title:      title,
		Price:      optionalField(container, site.Selectors[sites.FieldPrice]),
		Location:   optionalField(container, site.Selectors[sites.FieldLocation]),
		Bedrooms:   optionalField(container, site.Selectors[sites.FieldBedrooms]),
		Area:       optionalField(container, site.Selectors[sites.FieldArea]),
		URL:        link,
	}, true
}

// selectText returns the text of the first element matching selector inside
// the container, or "" when the selector is absent from the schema.
func selectText(container *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return container.Find(selector).First().Text()
}

// optionalField resolves a non-mandatory field, substituting the N/A
// sentinel when the selector is missing or matches nothing.
func optionalField(container *goquery.Selection, selector string) string {
	v := Normalize(selectText(container, selector))
	if v == "" {
		return domain.NotAvailable
	}
	return v
}

// resolveLink extracts the href of the link element and joins relative
// references against the site's base URL.
func resolveLink(container *goquery.Selection, selector string, base *url.URL) string {
	if selector == "" {
		return ""
	}
	href, ok := container.Find(selector).First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
