package domain

import "time"

// NotAvailable is the sentinel for optional listing fields that could not be
// extracted. Formatting treats it the same as absence.
const NotAvailable = "N/A"

// Listing is a freshly extracted, not-yet-persisted record from one scan pass.
type Listing struct {
	ExternalID  string `json:"external_id"`
	Source      string `json:"source"`
	Title       string `json:"title"`
	Price       string `json:"price"`
	Location    string `json:"location"`
	Bedrooms    string `json:"bedrooms"`
	Area        string `json:"area"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// StoredListing is a persisted listing with its lifecycle state.
// ExternalID is unique across all stored listings and is the sole join key
// between scan output and stored state.
type StoredListing struct {
	Listing
	ID        int64     `json:"id"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	IsActive  bool      `json:"is_active"`
	Notified  bool      `json:"notified"`
}

// Stats summarizes the state of the listing store.
type Stats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Notified int64 `json:"notified"`
	Pending  int64 `json:"pending"`
}

// ScanReport is the outcome of one scan batch.
type ScanReport struct {
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
	Scraped   int       `json:"scraped"`
	New       int       `json:"new"`
	Notified  int       `json:"notified"`
	Overflow  int       `json:"overflow"`
}
