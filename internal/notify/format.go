package notify

import (
	"fmt"
	"html"
	"strings"

	"rentwatch/internal/domain"
)

const divider = "━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// FormatHeader builds the one-per-batch summary message.
func FormatHeader(count int) string {
	return fmt.Sprintf("🔔 <b>New rental listings found: %d</b>", count)
}

// FormatListing renders one listing as a Telegram HTML message. Price is
// always shown; location, bedrooms and area are suppressed when they carry
// the N/A sentinel.
func FormatListing(l domain.StoredListing) string {
	var b strings.Builder
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "🏠 <b>%s</b>\n", html.EscapeString(l.Title))
	b.WriteString(divider + "\n\n")

	fmt.Fprintf(&b, "💰 <b>Price:</b> %s\n", html.EscapeString(l.Price))
	if l.Location != "" && l.Location != domain.NotAvailable {
		fmt.Fprintf(&b, "📍 <b>Location:</b> %s\n", html.EscapeString(l.Location))
	}
	if l.Bedrooms != "" && l.Bedrooms != domain.NotAvailable {
		fmt.Fprintf(&b, "🛏 <b>Bedrooms:</b> %s\n", html.EscapeString(l.Bedrooms))
	}
	if l.Area != "" && l.Area != domain.NotAvailable {
		fmt.Fprintf(&b, "📐 <b>Area:</b> %s\n", html.EscapeString(l.Area))
	}

	fmt.Fprintf(&b, "\n🌐 <b>Source:</b> %s\n", html.EscapeString(l.Source))
	fmt.Fprintf(&b, "🔗 <a href='%s'>Open listing</a>\n", l.URL)
	b.WriteString(divider)
	return b.String()
}

// FormatOverflow reports how many pending listings did not fit into this
// batch. Informational only; they stay pending for the next batch.
func FormatOverflow(n int) string {
	return fmt.Sprintf("⚠️ %d more listings are pending and will be sent in the next batch.", n)
}
